package secondary

import (
	"net/http"

	domain "juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/markbates/goth"
)

// SessionSource es la capacidad "observar la sesión actual". Cada llamada a
// Current devuelve el par (sesión, estado) completo en un solo valor.
type SessionSource interface {
	Current() domain.Snapshot
}

// SessionSourceFunc adapta una función a SessionSource.
type SessionSourceFunc func() domain.Snapshot

func (f SessionSourceFunc) Current() domain.Snapshot { return f() }

// SessionFeed es un SessionSource que además avisa cuando el par cambia.
// La función de cancelación que devuelve Subscribe es idempotente.
type SessionFeed interface {
	SessionSource
	Subscribe(fn func(domain.Snapshot)) (cancel func())
}

// AuthPort es la interfaz del puerto secundario (Autenticación/Goth).
// Define cómo la capa web lee y modifica la sesión del proveedor externo.
type AuthPort interface {
	Snapshot(r *http.Request) domain.Snapshot
	ForRequest(r *http.Request) SessionSource
	SessionID(r *http.Request) string
	EnsureSessionID(w http.ResponseWriter, r *http.Request) (string, error)
	MarkPending(w http.ResponseWriter, r *http.Request) error
	Establish(w http.ResponseWriter, r *http.Request, user goth.User) error
	Logout(w http.ResponseWriter, r *http.Request) error
}

// SessionHub reparte los Snapshots por sesión de navegador, para que la UI
// se entere de los cambios sin volver a preguntar.
type SessionHub interface {
	// Acquire devuelve el feed de la sesión key, creándolo con initial si no
	// existía. release debe llamarse al terminar de usarlo.
	Acquire(key string, initial domain.Snapshot) (feed SessionFeed, release func())
	Publish(key string, s domain.Snapshot)
}
