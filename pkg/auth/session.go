package auth

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Session is the cached login of one browser session.
type Session struct {
	// ID identifies the browser session. Flow state kept on the server is
	// keyed by it.
	ID       string
	Identity model.Identity
	// CSRF is the token every form post must echo back.
	CSRF string
}

type sessionKey struct{}

// WithSession returns a copy of ctx carrying s.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// FromContext returns the session placed in ctx by Gate.Require.
func FromContext(ctx context.Context) (Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(Session)
	return s, ok
}
