package primary

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"juansecalvinio/storefront-auth/internal/ports/primary"
	"juansecalvinio/storefront-auth/internal/ports/secondary"

	"github.com/gin-gonic/gin"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"go.uber.org/zap"
)

// Options agrupa la configuración web del adaptador.
type Options struct {
	// FrontendURL es el origen permitido por CORS.
	FrontendURL string
	// LoginRedirect es a dónde vuelve el navegador después del callback.
	LoginRedirect string
	// AvatarHosts son los hosts permitidos por el proxy de avatares.
	AvatarHosts []string
}

// DefaultAvatarHosts es la whitelist del proxy de avatares.
var DefaultAvatarHosts = []string{
	"lh3.googleusercontent.com",
	"googleusercontent.com",
	"avatars.githubusercontent.com",
}

// GinAdapter es el Adaptador que expone la API web usando Gin.
type GinAdapter struct {
	userService primary.UserPort
	auth        secondary.AuthPort
	hub         secondary.SessionHub
	opts        Options
	logger      *zap.Logger
	httpClient  *http.Client

	// Flujo OAuth de gothic; reemplazable en tests.
	authURL      func(w http.ResponseWriter, r *http.Request) (string, error)
	completeAuth func(w http.ResponseWriter, r *http.Request) (goth.User, error)
	endAuth      func(w http.ResponseWriter, r *http.Request) error
}

// NewGinAdapter crea una nueva instancia y establece las dependencias.
func NewGinAdapter(userPort primary.UserPort, auth secondary.AuthPort, hub secondary.SessionHub, opts Options, logger *zap.Logger) *GinAdapter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(opts.AvatarHosts) == 0 {
		opts.AvatarHosts = DefaultAvatarHosts
	}
	return &GinAdapter{
		userService:  userPort,
		auth:         auth,
		hub:          hub,
		opts:         opts,
		logger:       logger,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		authURL:      gothic.GetAuthURL,
		completeAuth: gothic.CompleteUserAuth,
		endAuth:      gothic.Logout,
	}
}

// RegisterRoutes configura todas las rutas de la API.
func (a *GinAdapter) RegisterRoutes(router *gin.Engine) {
	router.Use(RequestID(), AccessLog(a.logger), CORSMiddleware(a.opts.FrontendURL))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Rutas de Goth (Autenticación)
	authGroup := router.Group("/auth")
	{
		authGroup.GET("/:provider", a.beginAuthHandler)
		authGroup.GET("/:provider/callback", a.completeAuthHandler)
	}

	// Estado de sesión para la UI
	sessionGroup := router.Group("/session", a.SessionState())
	{
		sessionGroup.GET("", a.sessionHandler)
		sessionGroup.GET("/events", a.sessionEventsHandler)
	}

	// Rutas Protegidas
	router.GET("/user", a.RequireAuth(), a.userHandler)
	router.GET("/logout/:provider", a.logoutHandler)

	// Avatar proxy (evita problemas CORS/ORB y hotlinking)
	router.GET("/avatar", a.avatarHandler)
}

// sessionHandler devuelve la proyección {user, isLoading, isAuthenticated}.
// Una sesión ausente no es un error: siempre 200.
func (a *GinAdapter) sessionHandler(c *gin.Context) {
	c.JSON(http.StatusOK, AuthStateFrom(c))
}

func (a *GinAdapter) userHandler(c *gin.Context) {
	user, ok := UserFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No autorizado o sesión expirada."})
		return
	}
	c.JSON(http.StatusOK, user)
}

// Handlers de Autenticación Goth

// beginAuthHandler arma la URL del proveedor antes de tocar la sesión: si
// goth no conoce el proveedor o no puede iniciar el flujo, la sesión no
// queda marcada como login en curso.
func (a *GinAdapter) beginAuthHandler(c *gin.Context) {
	provider := withProviderQuery(c)

	authURL, err := a.authURL(c.Writer, c.Request)
	if err != nil {
		a.logger.Warn("failed to begin authentication", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := a.auth.MarkPending(c.Writer, c.Request); err != nil {
		a.logger.Error("failed to mark session pending", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
		return
	}
	a.publish(c.Request)

	c.Redirect(http.StatusTemporaryRedirect, authURL)
}

func (a *GinAdapter) completeAuthHandler(c *gin.Context) {
	provider := withProviderQuery(c)

	user, err := a.completeAuth(c.Writer, c.Request)
	if err != nil {
		a.logger.Warn("failed to complete authentication",
			zap.String("provider", provider), zap.Error(err))
		// Sin usuario, el login en curso termina como unauthenticated.
		if err := a.auth.Logout(c.Writer, c.Request); err != nil {
			a.logger.Error("failed to clear pending session", zap.Error(err))
		}
		a.publish(c.Request)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error completing authentication"})
		return
	}

	if err := a.auth.Establish(c.Writer, c.Request, user); err != nil {
		a.logger.Error("failed to save session", zap.String("provider", provider), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving session"})
		return
	}
	a.publish(c.Request)

	a.logger.Info("user signed in", zap.String("provider", provider), zap.String("user_id", user.UserID))
	c.Redirect(http.StatusTemporaryRedirect, a.opts.LoginRedirect)
}

func (a *GinAdapter) logoutHandler(c *gin.Context) {
	withProviderQuery(c)

	if err := a.endAuth(c.Writer, c.Request); err != nil {
		a.logger.Warn("gothic logout failed", zap.Error(err))
	}
	if err := a.auth.Logout(c.Writer, c.Request); err != nil {
		a.logger.Error("failed to expire session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error handling logout"})
		return
	}
	a.publish(c.Request)

	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

// publish avisa a los suscriptores de la sesión del request del nuevo par.
func (a *GinAdapter) publish(r *http.Request) {
	if a.hub == nil {
		return
	}
	a.hub.Publish(a.auth.SessionID(r), a.auth.Snapshot(r))
}

// avatarHandler proxya una imagen remota al cliente. Se aplica una whitelist
// de hosts para evitar SSRF y se devuelven cabeceras de cache.
func (a *GinAdapter) avatarHandler(c *gin.Context) {
	imgURL := c.Query("url")
	if imgURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	parsed, err := url.Parse(imgURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "https" && parsed.Scheme != "http") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid url"})
		return
	}

	if !hostAllowed(parsed.Hostname(), a.opts.AvatarHosts) {
		c.JSON(http.StatusForbidden, gin.H{"error": "host not allowed"})
		return
	}

	req, err := http.NewRequestWithContext(c.Request.Context(), http.MethodGet, parsed.String(), nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build request"})
		return
	}
	// Agregar header User-Agent para evitar ciertos rechazos por hotlinking
	req.Header.Set("User-Agent", "storefront-auth-proxy/1.0")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		a.logger.Warn("avatar fetch failed", zap.String("host", parsed.Hostname()), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch image"})
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream returned non-200"})
		return
	}

	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = "image/*"
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, resp.ContentLength, ct, resp.Body, nil)
}

// hostAllowed acepta el host exacto o un subdominio de alguno permitido.
func hostAllowed(host string, allowed []string) bool {
	for _, h := range allowed {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// withProviderQuery copia el parámetro :provider a la query, que es donde
// gothic lo busca.
func withProviderQuery(c *gin.Context) string {
	provider := c.Param("provider")
	q := c.Request.URL.Query()
	q.Set("provider", provider)
	c.Request.URL.RawQuery = q.Encode()
	return provider
}
