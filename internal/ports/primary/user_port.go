package primary

import (
	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"
)

// UserPort es la interfaz del puerto primario (la API/Web).
// Define los métodos que el Adaptador Gin llamará en la capa de servicio.
type UserPort interface {
	AuthState(src secondary.SessionSource) domain.AuthState
	GetLoggedInUser(src secondary.SessionSource) (*domain.User, error)
	Watch(feed secondary.SessionFeed, fn func(domain.AuthState)) (cancel func())
}
