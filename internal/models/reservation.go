package models

import "time"

type ReservationStatus string

const (
	StatusActive    ReservationStatus = "Activa"
	StatusCompleted ReservationStatus = "Completada"
	StatusCancelled ReservationStatus = "Cancelada"
)

// Terminal reports whether the status admits no further transitions.
// Only Active reservations can still be cancelled.
func (s ReservationStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Passenger struct {
	Name     string `json:"nombre"`
	Document string `json:"documento"`
}

// Reservation is a passenger booking as returned by the backend's reservas
// query. Travel date is a calendar date (YYYY-MM-DD) and departure time a
// local clock time (HH:MM); the backend reports no timezone.
type Reservation struct {
	ID            string            `json:"id"`
	TravelDate    string            `json:"fechaViaje"`
	DepartureTime string            `json:"horaSalida"`
	Route         string            `json:"ruta"`
	Stops         []string          `json:"paradas"`
	Bus           string            `json:"busAsignado"`
	Seats         []string          `json:"asientosTomados"`
	Passengers    []Passenger       `json:"pasajeros"`
	Status        ReservationStatus `json:"estado"`
	Origin        string            `json:"origen"`
	Destination   string            `json:"destino"`
}

// DepartureInstant combines the travel date and departure time into a single
// instant in local time.
func (r Reservation) DepartureInstant() (time.Time, error) {
	return time.ParseInLocation("2006-01-02T15:04", r.TravelDate+"T"+r.DepartureTime, time.Local)
}
