// Package devserver is a local stand-in for the remote form service. It
// registers identities, serves one schema to every registered roll number and
// records submissions, using the same endpoints and payloads as the hosted
// service.
package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/remote"
)

// Submission is one recorded form submission.
type Submission struct {
	RollNumber string
	Values     model.Values
	Received   time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithPaths serves the endpoints under custom paths. Empty entries keep
// their default.
func WithPaths(paths remote.Paths) Option {
	return func(s *Server) {
		if paths.CreateIdentity != "" {
			s.paths.CreateIdentity = paths.CreateIdentity
		}
		if paths.FetchForm != "" {
			s.paths.FetchForm = paths.FetchForm
		}
		if paths.SubmitForm != "" {
			s.paths.SubmitForm = paths.SubmitForm
		}
	}
}

// Server implements the remote contract in memory.
type Server struct {
	schema   model.FormSchema
	paths    remote.Paths
	logger   *slog.Logger
	validate *validator.Validate
	now      func() time.Time

	mu          sync.RWMutex
	identities  map[string]model.Identity
	submissions []Submission
}

// New builds a server handing out schema.
func New(schema model.FormSchema, options ...Option) (*Server, error) {
	if err := schema.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		schema:     schema,
		paths:      remote.DefaultPaths(),
		logger:     slog.Default(),
		validate:   newValidator(),
		now:        time.Now,
		identities: make(map[string]model.Identity),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s, nil
}

// Handler returns the HTTP handler of the service.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Post(s.paths.CreateIdentity, s.createIdentity)
	r.Get(s.paths.FetchForm, s.fetchForm)
	r.Post(s.paths.SubmitForm, s.submitForm)
	return r
}

// Submissions returns the recorded submissions in arrival order.
func (s *Server) Submissions() []Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Submission, len(s.submissions))
	for i, sub := range s.submissions {
		out[i] = Submission{RollNumber: sub.RollNumber, Values: sub.Values.Clone(), Received: sub.Received}
	}
	return out
}

// Forget drops a registered roll number, so later calls for it are answered
// with 401.
func (s *Server) Forget(rollNumber string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.identities, rollNumber)
}

// Registered reports whether rollNumber has an identity.
func (s *Server) Registered(rollNumber string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.identities[rollNumber]
	return ok
}

type identityRequest struct {
	RollNumber string `json:"rollNumber" validate:"required,min=3"`
	Name       string `json:"name" validate:"required,min=2"`
}

type submitRequest struct {
	RollNumber string       `json:"rollNumber" validate:"required"`
	FormData   model.Values `json:"formData"`
}

type outcome struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type problem struct {
	Message string `json:"message"`
}

func (s *Server) createIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, problem{Message: "Invalid request body"})
		return
	}
	req.RollNumber = strings.TrimSpace(req.RollNumber)
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, problem{Message: validationMessage(err)})
		return
	}

	s.mu.Lock()
	s.identities[req.RollNumber] = model.Identity{RollNumber: req.RollNumber, Name: req.Name}
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "devserver: identity registered", slog.String("roll_number", req.RollNumber))
	s.writeJSON(w, r, http.StatusOK, outcome{Success: true, Message: "User created successfully"})
}

func (s *Server) fetchForm(w http.ResponseWriter, r *http.Request) {
	roll := strings.TrimSpace(r.URL.Query().Get("rollNumber"))
	if !s.Registered(roll) {
		s.writeJSON(w, r, http.StatusUnauthorized, problem{Message: "Unauthorized"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, struct {
		Form model.FormSchema `json:"form"`
	}{Form: s.schema})
}

func (s *Server) submitForm(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, problem{Message: "Invalid request body"})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, problem{Message: validationMessage(err)})
		return
	}
	if !s.Registered(req.RollNumber) {
		s.writeJSON(w, r, http.StatusUnauthorized, problem{Message: "Unauthorized"})
		return
	}

	s.mu.Lock()
	s.submissions = append(s.submissions, Submission{
		RollNumber: req.RollNumber,
		Values:     req.FormData.Clone(),
		Received:   s.now(),
	})
	s.mu.Unlock()

	s.logger.InfoContext(r.Context(), "devserver: form submitted",
		slog.String("roll_number", req.RollNumber),
		slog.Int("fields", len(req.FormData)),
	)
	s.writeJSON(w, r, http.StatusOK, outcome{Success: true, Message: "Form submitted successfully"})
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.ErrorContext(r.Context(), "devserver: write response", slog.Any("error", err))
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid request"
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
