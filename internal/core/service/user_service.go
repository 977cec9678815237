package service

import (
	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"

	"go.uber.org/zap"
)

// UserService implementa la lógica de negocio sobre la sesión del usuario.
type UserService struct {
	logger *zap.Logger
}

// NewUserService crea una nueva instancia del servicio.
func NewUserService(logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{logger: logger}
}

// AuthState proyecta la sesión de la fuente indicada.
func (s *UserService) AuthState(src secondary.SessionSource) domain.AuthState {
	return NewSessionProjector(src, s.logger).State()
}

// GetLoggedInUser devuelve el usuario sólo si el estado es authenticated y
// además la sesión trae un usuario.
func (s *UserService) GetLoggedInUser(src secondary.SessionSource) (*domain.User, error) {
	state := s.AuthState(src)
	if !state.IsAuthenticated || state.User == nil {
		return nil, domain.ErrNotAuthenticated
	}
	return state.User, nil
}

// Watch avisa a fn con la proyección de cada Snapshot que publique el feed.
func (s *UserService) Watch(feed secondary.SessionFeed, fn func(domain.AuthState)) func() {
	return NewSessionProjector(feed, s.logger).Watch(feed, fn)
}
