// Package formflow wires the web front end of the multi-step form renderer:
// a remote client for the form service, a signed cookie identity store and
// the HTTP handler serving the login, section and confirmation views.
//
// Most applications only need NewHandler:
//
//	handler, err := formflow.NewHandler(formflow.Options{
//		BaseURL: "https://forms.example.com",
//		Secret:  os.Getenv("SESSION_SECRET"),
//	})
//	http.ListenAndServe(":8080", handler)
package formflow

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-formflow/internal/server"
	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/remote"
	"github.com/goliatone/go-formflow/pkg/session"
)

// FormSchema aliases model.FormSchema for callers that only import the root
// package.
type FormSchema = model.FormSchema

// Identity aliases model.Identity.
type Identity = model.Identity

// Values aliases model.Values, the payload sent on submission.
type Values = model.Values

// Paths aliases remote.Paths.
type Paths = remote.Paths

// Options configures NewHandler. Zero values select the defaults of the
// underlying packages.
type Options struct {
	// BaseURL of the form service. Defaults to remote.DefaultBaseURL.
	BaseURL string
	// Paths overrides individual endpoint paths.
	Paths Paths
	// Timeout bounds each remote call.
	Timeout time.Duration
	// Contract replaces the embedded response contract, see LoadContract.
	Contract *remote.Contract

	// Secret signs the session cookie. Required, at least 16 bytes.
	Secret       string
	CookieName   string
	SecureCookie bool

	// TransitionDelay between a navigation request and the section change.
	// Nil keeps session.DefaultTransitionDelay.
	TransitionDelay *time.Duration
	// IdleTimeout evicts the form session of an inactive browser session.
	// Zero keeps server.DefaultIdleTimeout, negative disables eviction.
	IdleTimeout time.Duration

	Logger *slog.Logger
}

// NewHandler builds the web application handler.
func NewHandler(opts Options) (http.Handler, error) {
	if opts.Secret == "" {
		return nil, errors.New("formflow: session secret is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	client, err := remote.New(opts.BaseURL,
		remote.WithPaths(opts.Paths),
		remote.WithTimeout(opts.Timeout),
		remote.WithContract(opts.Contract),
		remote.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("formflow: %w", err)
	}

	store, err := auth.NewCookieStore(opts.Secret,
		auth.WithCookieName(opts.CookieName),
		auth.WithSecureCookie(opts.SecureCookie),
	)
	if err != nil {
		return nil, fmt.Errorf("formflow: %w", err)
	}

	delay := session.DefaultTransitionDelay
	if opts.TransitionDelay != nil {
		delay = *opts.TransitionDelay
	}
	idle := server.DefaultIdleTimeout
	if opts.IdleTimeout != 0 {
		idle = opts.IdleTimeout
	}
	return server.New(client, store,
		server.WithLogger(logger),
		server.WithTransitionDelay(delay),
		server.WithIdleTimeout(idle),
	)
}
