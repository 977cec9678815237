package primary

import (
	"net/http"

	"juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionEvent = "session"

// sessionEventsHandler mantiene abierto un stream SSE y envía la proyección
// cada vez que cambia la sesión del navegador (login, callback, logout).
// El primer evento es siempre el estado actual. Un navegador sin sesión
// recibe aquí su sid, así el stream sigue abierto y ve su propio login.
func (a *GinAdapter) sessionEventsHandler(c *gin.Context) {
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	if a.hub == nil {
		c.SSEvent(sessionEvent, AuthStateFrom(c))
		return
	}

	sid, err := a.auth.EnsureSessionID(c.Writer, c.Request)
	if err != nil {
		a.logger.Error("failed to issue session id", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}

	feed, release := a.hub.Acquire(sid, a.auth.Snapshot(c.Request))
	defer release()

	updates := make(chan domain.AuthState, 1)
	stop := a.userService.Watch(feed, func(state domain.AuthState) {
		offerLatest(updates, state)
	})
	defer stop()

	c.Status(http.StatusOK)
	c.SSEvent(sessionEvent, a.userService.AuthState(feed))
	c.Writer.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state := <-updates:
			c.SSEvent(sessionEvent, state)
			c.Writer.Flush()
		}
	}
}

// offerLatest deja state en ch descartando lo que el cliente no llegó a
// leer: sólo interesa el último estado. Un único productor por canal.
func offerLatest(ch chan domain.AuthState, state domain.AuthState) {
	for {
		select {
		case ch <- state:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
