// Package server is the web front end of formflow. It serves the login view,
// walks the user through the sections of the fetched form one request at a
// time and submits the collected values to the remote service.
package server

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla"
	"github.com/goliatone/go-formflow/pkg/session"
)

// Route paths.
const (
	PathLogin  = "/"
	PathForm   = "/form"
	PathFields = "/form/fields/"
	PathLogout = "/logout"
	PathAssets = "/assets/"
	PathHealth = "/healthz"
)

// Remote is the subset of the remote client the server calls.
type Remote interface {
	CreateIdentity(ctx context.Context, identity model.Identity) error
	FetchForm(ctx context.Context, rollNumber string) (model.FormSchema, error)
	SubmitForm(ctx context.Context, rollNumber string, values model.Values) error
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger for requests and flow events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRenderer replaces the HTML renderer.
func WithRenderer(renderer render.Renderer) Option {
	return func(s *Server) {
		if renderer != nil {
			s.renderer = renderer
		}
	}
}

// WithAssets replaces the static files served under PathAssets.
func WithAssets(assets fs.FS) Option {
	return func(s *Server) {
		if assets != nil {
			s.assets = assets
		}
	}
}

// WithTransitionDelay sets the section transition delay of new form
// sessions.
func WithTransitionDelay(delay time.Duration) Option {
	return func(s *Server) {
		s.delay = delay
	}
}

// DefaultIdleTimeout is how long the form session of an inactive browser
// session is kept.
const DefaultIdleTimeout = 2 * time.Hour

// WithIdleTimeout sets how long an inactive browser session keeps its form
// session. Zero or less keeps them until logout.
func WithIdleTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.idle = timeout
	}
}

// Server handles the HTTP routes of the application.
type Server struct {
	remote   Remote
	gate     *auth.Gate
	renderer render.Renderer
	assets   fs.FS
	flows    *flowRegistry
	logger   *slog.Logger
	delay    time.Duration
	idle     time.Duration
	router   chi.Router
}

// New builds a server calling remote and caching identities in store.
func New(remote Remote, store auth.SessionStore, options ...Option) (*Server, error) {
	if remote == nil {
		return nil, fmt.Errorf("server: remote client is required")
	}
	if store == nil {
		return nil, fmt.Errorf("server: session store is required")
	}

	s := &Server{
		remote: remote,
		logger: slog.Default(),
		delay:  session.DefaultTransitionDelay,
		idle:   DefaultIdleTimeout,
		router: chi.NewRouter(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	s.flows = newFlowRegistry(s.idle)

	if s.renderer == nil {
		renderer, err := vanilla.New(vanilla.WithRoutes(PathLogout, PathFields))
		if err != nil {
			return nil, fmt.Errorf("server: %w", err)
		}
		s.renderer = renderer
	}
	if s.assets == nil {
		s.assets = vanilla.AssetsFS()
	}

	s.gate = auth.NewGate(store,
		auth.WithLoginPath(PathLogin),
		auth.WithLogoutHook(s.flows.drop),
		auth.WithGateLogger(s.logger),
	)
	s.routes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)

	s.router.Get(PathHealth, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.router.Handle(PathAssets+"*", http.StripPrefix(PathAssets, http.FileServer(http.FS(s.assets))))

	s.router.Get(PathLogin, s.showLogin)
	s.router.Post(PathLogin, s.login)

	s.router.Group(func(r chi.Router) {
		r.Use(s.gate.Require)
		r.Get(PathForm, s.showForm)
		r.With(s.requireCSRF).Post(PathForm, s.postForm)
		r.With(s.requireCSRF).Post(PathFields+"{fieldID}", s.changeField)
		r.With(s.requireCSRF).Post(PathLogout, s.logout)
	})
}

// logRequests records method, path, status and duration of every request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.InfoContext(r.Context(), "request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", ww.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// requireCSRF rejects posts whose _csrf field does not match the session.
func (s *Server) requireCSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := auth.FromContext(r.Context())
		if !ok || !auth.ValidCSRF(r, sess) {
			s.logger.WarnContext(r.Context(), "csrf token mismatch", slog.String("path", r.URL.Path))
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writePage renders page with the configured renderer.
func (s *Server) writePage(w http.ResponseWriter, r *http.Request, status int, page render.Page) {
	body, err := s.renderer.Render(r.Context(), page)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "render page", slog.String("view", string(page.View)), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}
