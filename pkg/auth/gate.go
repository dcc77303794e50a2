package auth

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
)

// SessionStore is the cookie side of the gate.
type SessionStore interface {
	Save(w http.ResponseWriter, identity model.Identity) (Session, error)
	Load(r *http.Request) (Session, error)
	Clear(w http.ResponseWriter)
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithLoginPath overrides where unauthenticated requests are sent.
func WithLoginPath(path string) GateOption {
	return func(g *Gate) {
		if path != "" {
			g.loginPath = path
		}
	}
}

// WithLogoutHook registers fn to run with the session id on every hard
// logout, so server-side state tied to the session can be dropped.
func WithLogoutHook(fn func(sessionID string)) GateOption {
	return func(g *Gate) {
		if fn != nil {
			g.hooks = append(g.hooks, fn)
		}
	}
}

// WithGateLogger sets the logger used for gate decisions.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// Gate admits requests that carry a cached identity.
type Gate struct {
	store     SessionStore
	loginPath string
	hooks     []func(sessionID string)
	logger    *slog.Logger
}

// NewGate builds a gate over store.
func NewGate(store SessionStore, options ...GateOption) *Gate {
	g := &Gate{
		store:     store,
		loginPath: "/",
		logger:    slog.Default(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(g)
	}
	return g
}

// Require redirects requests without a session to the login path and places
// the session in the request context otherwise.
func (g *Gate) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := g.store.Load(r)
		if err != nil {
			g.logger.DebugContext(r.Context(), "gate: no session", slog.String("path", r.URL.Path), slog.Any("error", err))
			http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Session returns the session of r without enforcing it.
func (g *Gate) Session(r *http.Request) (Session, bool) {
	if s, ok := FromContext(r.Context()); ok {
		return s, true
	}
	s, err := g.store.Load(r)
	if err != nil {
		return Session{}, false
	}
	return s, true
}

// Login caches identity in a new session.
func (g *Gate) Login(w http.ResponseWriter, identity model.Identity) (Session, error) {
	return g.store.Save(w, identity)
}

// HardLogout clears the cached identity, drops the state tied to the session
// and sends the user to the login path.
func (g *Gate) HardLogout(w http.ResponseWriter, r *http.Request) {
	if s, ok := g.Session(r); ok {
		for _, hook := range g.hooks {
			hook(s.ID)
		}
		g.logger.InfoContext(r.Context(), "gate: hard logout", slog.String("session", s.ID))
	}
	g.store.Clear(w)
	http.Redirect(w, r, g.loginPath, http.StatusSeeOther)
}

// ValidCSRF reports whether r echoes the CSRF token of its session.
func ValidCSRF(r *http.Request, s Session) bool {
	token := r.PostFormValue(render.CSRFFieldName)
	if token == "" || s.CSRF == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.CSRF)) == 1
}
