package graphql

// Operation is one named query or mutation of the booking backend. Auth
// marks the reservation-path operations that carry the session bearer
// token; the search and account paths send none.
type Operation struct {
	Name     string
	Document string
	Auth     bool
}

var (
	SearchTrips       = Operation{Name: "buscarViajes", Document: searchTripsDocument}
	ListReservations  = Operation{Name: "reservas", Document: listReservationsDocument, Auth: true}
	CancelReservation = Operation{Name: "cancelarReserva", Document: cancelReservationDocument, Auth: true}
	Login             = Operation{Name: "login", Document: loginDocument}
	RegisterPassenger = Operation{Name: "registerPasajero", Document: registerPassengerDocument}
)

const searchTripsDocument = `
query BuscarViajes($input: BuscarViajesInput!) {
  buscarViajes(input: $input) {
    id
    origen
    destino
    fecha
    horaSalida
    horaLlegada
    cuposTotales
    cuposDisponibles
    estado
  }
}`

const listReservationsDocument = `
query GetMyReservations($userId: ID!) {
  reservas(userId: $userId) {
    id
    fechaViaje
    horaSalida
    ruta
    paradas
    busAsignado
    asientosTomados
    pasajeros {
      nombre
      documento
    }
    estado
    origen
    destino
  }
}`

const cancelReservationDocument = `
mutation CancelReservation($reservaId: ID!, $motivo: String) {
  cancelarReserva(reservaId: $reservaId, motivo: $motivo) {
    id
    estado
  }
}`

const loginDocument = `
mutation LoginPasajero($username: String!, $password: String!) {
  login(input: {username: $username, password: $password}) {
    success
    message
    token
  }
}`

const registerPassengerDocument = `
mutation RegisterPasajero($input: RegisterPasajeroInput!) {
  registerPasajero(input: $input) {
    success
    message
    pasajero {
      id
      username
      email
    }
  }
}`
