package service

import (
	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"

	"go.uber.org/zap"
)

// SessionProjector deriva el AuthState a partir de la sesión que entrega
// el proveedor. No guarda estado propio: cada lectura va a la fuente.
type SessionProjector struct {
	src    secondary.SessionSource
	logger *zap.Logger
}

// NewSessionProjector crea un proyector sobre la fuente indicada.
func NewSessionProjector(src secondary.SessionSource, logger *zap.Logger) *SessionProjector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionProjector{src: src, logger: logger}
}

// State lee un único Snapshot y lo proyecta.
func (p *SessionProjector) State() domain.AuthState {
	return p.project(p.src.Current())
}

// Watch invoca fn con una proyección nueva cada vez que el feed publica un
// Snapshot. Devuelve la función para dejar de escuchar.
func (p *SessionProjector) Watch(feed secondary.SessionFeed, fn func(domain.AuthState)) func() {
	return feed.Subscribe(func(s domain.Snapshot) {
		fn(p.project(s))
	})
}

func (p *SessionProjector) project(s domain.Snapshot) domain.AuthState {
	state := domain.Project(s)
	if !state.Consistent() {
		p.logger.Warn("session provider reports authenticated without user",
			zap.String("status", string(s.Status)))
	}
	return state
}
