package primary

import (
	"net/http"
	"time"

	"juansecalvinio/storefront-auth/internal/core/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Claves del contexto de gin.
const (
	requestIDKey = "request_id"
	authStateKey = "auth_state"
	userKey      = "user"
)

// RequestID asigna un ID único a cada request.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = "req_" + uuid.New().String()[:12]
		}
		c.Set(requestIDKey, requestID)
		c.Header("X-Request-ID", requestID)
		c.Next()
	}
}

// AccessLog registra cada request con zap.
func AccessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

// CORSMiddleware permite al frontend llamar a la API con cookies.
func CORSMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// SessionState proyecta la sesión del request una sola vez y la deja en el
// contexto para los handlers.
func (a *GinAdapter) SessionState() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(authStateKey, a.userService.AuthState(a.auth.ForRequest(c.Request)))
		c.Next()
	}
}

// AuthStateFrom devuelve la proyección guardada por SessionState. Sin ella,
// el request se trata como unauthenticated.
func AuthStateFrom(c *gin.Context) domain.AuthState {
	v, _ := c.Get(authStateKey)
	state, _ := v.(domain.AuthState)
	return state
}

// RequireAuth corta el request con 401 si no hay un usuario autenticado.
func (a *GinAdapter) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := a.userService.GetLoggedInUser(a.auth.ForRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No autorizado o sesión expirada."})
			return
		}
		c.Set(userKey, user)
		c.Next()
	}
}

// UserFrom devuelve el usuario que dejó RequireAuth.
func UserFrom(c *gin.Context) (*domain.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok && user != nil
}
