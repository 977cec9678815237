package domain

// Status es el estado del proveedor de autenticación externo.
type Status string

const (
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
)

// ParseStatus convierte un valor arbitrario en Status.
// Cualquier valor desconocido se considera unauthenticated.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusLoading, StatusAuthenticated:
		return Status(s)
	default:
		return StatusUnauthenticated
	}
}

// Session es la sesión entregada por el proveedor. Una sesión sin User
// equivale a no tener sesión.
type Session struct {
	User *User `json:"user,omitempty"`
}

// Snapshot es el par (sesión, estado) tal como lo entrega el proveedor,
// en una sola pieza.
type Snapshot struct {
	Session *Session
	Status  Status
}

// AuthState es la vista derivada que consume la UI.
type AuthState struct {
	User            *User `json:"user,omitempty"`
	IsLoading       bool  `json:"isLoading"`
	IsAuthenticated bool  `json:"isAuthenticated"`
}

// Project calcula el AuthState a partir de un único Snapshot.
func Project(s Snapshot) AuthState {
	state := AuthState{
		IsLoading:       s.Status == StatusLoading,
		IsAuthenticated: s.Status == StatusAuthenticated,
	}
	if s.Session != nil && s.Session.User != nil {
		state.User = s.Session.User
	}
	return state
}

// Consistent es falso cuando el proveedor dice authenticated pero no hay usuario.
func (a AuthState) Consistent() bool {
	return !a.IsAuthenticated || a.User != nil
}
