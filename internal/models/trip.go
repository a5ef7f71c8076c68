package models

// Trip is a single scheduled bus departure as returned by the backend's
// buscarViajes query. JSON tags follow the backend wire contract.
type Trip struct {
	ID             string `json:"id"`
	Origin         string `json:"origen"`
	Destination    string `json:"destino"`
	Date           string `json:"fecha"`
	DepartureTime  string `json:"horaSalida"`
	ArrivalTime    string `json:"horaLlegada"`
	TotalSeats     int    `json:"cuposTotales"`
	AvailableSeats int    `json:"cuposDisponibles"`
	Status         string `json:"estado"`
}
