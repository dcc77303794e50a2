package auth

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/goliatone/go-formflow/pkg/model"
)

// DefaultCookieName is the name of the session cookie.
const DefaultCookieName = "formflow_session"

var (
	// ErrNoSession is returned when the request carries no usable session
	// cookie.
	ErrNoSession = errors.New("auth: no session")
	// ErrInvalidToken is returned when the cookie fails verification.
	ErrInvalidToken = errors.New("auth: invalid session token")
)

type claims struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	CSRF       string `json:"csrf"`
	jwt.RegisteredClaims
}

// CookieOption configures a CookieStore.
type CookieOption func(*CookieStore)

// WithCookieName overrides DefaultCookieName.
func WithCookieName(name string) CookieOption {
	return func(s *CookieStore) {
		if name != "" {
			s.name = name
		}
	}
}

// WithSecureCookie marks the cookie Secure, for deployments behind TLS.
func WithSecureCookie(secure bool) CookieOption {
	return func(s *CookieStore) {
		s.secure = secure
	}
}

// CookieStore keeps the identity in an HS256 signed session cookie. The cookie
// has no expiry so it ends with the browser session.
type CookieStore struct {
	secret []byte
	name   string
	secure bool
	now    func() time.Time
}

// NewCookieStore builds a store signing cookies with secret.
func NewCookieStore(secret string, options ...CookieOption) (*CookieStore, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: session secret must be at least 16 bytes")
	}
	s := &CookieStore{
		secret: []byte(secret),
		name:   DefaultCookieName,
		now:    time.Now,
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Save issues a new session for identity and writes its cookie.
func (s *CookieStore) Save(w http.ResponseWriter, identity model.Identity) (Session, error) {
	identity = identity.Normalize()
	if identity.Empty() {
		return Session{}, errors.New("auth: identity has no roll number")
	}

	session := Session{
		ID:       uuid.NewString(),
		Identity: identity,
		CSRF:     uuid.NewString(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RollNumber: identity.RollNumber,
		Name:       identity.Name,
		CSRF:       session.CSRF,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:       session.ID,
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	})
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign session: %w", err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    signed,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return session, nil
}

// Load reads and verifies the session cookie of r.
func (s *CookieStore) Load(r *http.Request) (Session, error) {
	cookie, err := r.Cookie(s.name)
	if err != nil || cookie.Value == "" {
		return Session{}, ErrNoSession
	}

	parsed, err := jwt.ParseWithClaims(cookie.Value, &claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.ID == "" || c.RollNumber == "" {
		return Session{}, ErrInvalidToken
	}
	return Session{
		ID:       c.ID,
		Identity: model.Identity{RollNumber: c.RollNumber, Name: c.Name},
		CSRF:     c.CSRF,
	}, nil
}

// Clear expires the session cookie.
func (s *CookieStore) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
