package secondary

import (
	"fmt"
	"net/http"
	"time"

	"juansecalvinio/storefront-auth/internal/core/domain"
	"juansecalvinio/storefront-auth/internal/ports/secondary"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
)

// SessionName es el nombre de la cookie de sesión de la tienda.
const SessionName = "gothic_session"

// Claves guardadas en la sesión.
const (
	keySessionID = "sid"
	keyPendingAt = "auth_pending_at"
	keyUserID    = "user_id"
	keyName      = "user_name"
	keyEmail     = "user_email"
	keyPicture   = "user_picture"
	keyProvider  = "user_provider"
)

// GothAdapter es el Adaptador para la autenticación externa (Goth/Google).
// Traduce la sesión de gorilla al par (sesión, estado) del dominio.
type GothAdapter struct {
	store      sessions.Store
	pendingTTL time.Duration
	now        func() time.Time
}

// DefaultPendingTTL es cuánto dura un login en curso sin callback. Pasado
// ese tiempo (pestaña cerrada en la pantalla de consentimiento) la sesión
// vuelve a unauthenticated.
const DefaultPendingTTL = 10 * time.Minute

// NewGothAdapter crea una nueva instancia del adaptador.
func NewGothAdapter(store sessions.Store) *GothAdapter {
	return &GothAdapter{store: store, pendingTTL: DefaultPendingTTL, now: time.Now}
}

var _ secondary.AuthPort = (*GothAdapter)(nil)

// Snapshot lee la sesión del request. Una cookie ausente o ilegible se
// considera unauthenticated, nunca un error.
func (a *GothAdapter) Snapshot(r *http.Request) domain.Snapshot {
	session, _ := a.store.Get(r, SessionName)
	if session == nil {
		return domain.Snapshot{Status: domain.StatusUnauthenticated}
	}

	id, _ := session.Values[keyUserID].(string)
	if id == "" {
		if a.pending(session) {
			return domain.Snapshot{Status: domain.StatusLoading}
		}
		return domain.Snapshot{Status: domain.StatusUnauthenticated}
	}

	// Anti-Corrupción: valores de la cookie -> entidad de dominio.
	user := &domain.User{
		ID:       id,
		Name:     stringValue(session.Values[keyName]),
		Email:    stringValue(session.Values[keyEmail]),
		Picture:  stringValue(session.Values[keyPicture]),
		Provider: stringValue(session.Values[keyProvider]),
	}
	return domain.Snapshot{
		Session: &domain.Session{User: user},
		Status:  domain.StatusAuthenticated,
	}
}

// ForRequest ata el adaptador a un request concreto.
func (a *GothAdapter) ForRequest(r *http.Request) secondary.SessionSource {
	return secondary.SessionSourceFunc(func() domain.Snapshot {
		return a.Snapshot(r)
	})
}

// SessionID devuelve el identificador de la sesión del navegador, si existe.
func (a *GothAdapter) SessionID(r *http.Request) string {
	session, _ := a.store.Get(r, SessionName)
	if session == nil {
		return ""
	}
	return stringValue(session.Values[keySessionID])
}

// MarkPending marca la sesión como "login en curso" antes de redirigir al
// proveedor.
func (a *GothAdapter) MarkPending(w http.ResponseWriter, r *http.Request) error {
	session, err := a.load(r)
	if err != nil {
		return err
	}
	session.Options.SameSite = http.SameSiteLaxMode // Importante para cookies cross-site
	ensureSessionID(session)
	session.Values[keyPendingAt] = a.now().Unix()
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save pending session: %w", err)
	}
	return nil
}

// Establish guarda el usuario que devolvió goth y limpia la marca de login en curso.
func (a *GothAdapter) Establish(w http.ResponseWriter, r *http.Request, user goth.User) error {
	if user.UserID == "" {
		return fmt.Errorf("establish session: provider %q returned empty user id", user.Provider)
	}
	session, err := a.load(r)
	if err != nil {
		return err
	}
	ensureSessionID(session)
	delete(session.Values, keyPendingAt)
	session.Values[keyUserID] = user.UserID
	session.Values[keyName] = user.Name
	session.Values[keyEmail] = user.Email
	session.Values[keyPicture] = user.AvatarURL
	session.Values[keyProvider] = user.Provider

	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// EnsureSessionID devuelve el id de la sesión del navegador, creándolo (y
// guardando la cookie) si todavía no existe.
func (a *GothAdapter) EnsureSessionID(w http.ResponseWriter, r *http.Request) (string, error) {
	session, err := a.load(r)
	if err != nil {
		return "", err
	}
	if sid := stringValue(session.Values[keySessionID]); sid != "" {
		return sid, nil
	}
	ensureSessionID(session)
	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("save session id: %w", err)
	}
	return stringValue(session.Values[keySessionID]), nil
}

// Logout borra los datos del usuario y expira la cookie.
func (a *GothAdapter) Logout(w http.ResponseWriter, r *http.Request) error {
	session, err := a.load(r)
	if err != nil {
		return err
	}
	for _, k := range []string{keyPendingAt, keyUserID, keyName, keyEmail, keyPicture, keyProvider} {
		delete(session.Values, k)
	}
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session: %w", err)
	}
	return nil
}

// load devuelve la sesión del request. Si la cookie no se puede decodificar
// (secreto rotado, cookie corrupta) se parte de una sesión nueva.
func (a *GothAdapter) load(r *http.Request) (*sessions.Session, error) {
	session, err := a.store.Get(r, SessionName)
	if session != nil {
		return session, nil
	}
	if err == nil {
		err = fmt.Errorf("store returned no session")
	}
	return nil, fmt.Errorf("load session: %w", err)
}

// pending indica si hay un login en curso que todavía no venció.
func (a *GothAdapter) pending(session *sessions.Session) bool {
	at, ok := session.Values[keyPendingAt].(int64)
	if !ok {
		return false
	}
	return a.now().Sub(time.Unix(at, 0)) <= a.pendingTTL
}

func ensureSessionID(session *sessions.Session) {
	if stringValue(session.Values[keySessionID]) == "" {
		session.Values[keySessionID] = uuid.NewString()
	}
}

func stringValue(v interface{}) string {
	s, _ := v.(string)
	return s
}
