package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/remote"
	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
	"github.com/goliatone/go-formflow/pkg/validation"
)

const msgLoginRequired = "Please login to access the form"

// Form actions posted by the navigation buttons.
const (
	actionNext   = "next"
	actionPrev   = "prev"
	actionSubmit = "submit"
)

func (s *Server) showLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.gate.Session(r); ok {
		redirect(w, r, PathForm)
		return
	}
	s.writePage(w, r, http.StatusOK, render.LoginPage(render.LoginView{}, render.WithAction(PathLogin)))
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	input := validation.NewLoginInput(r.PostForm.Get("rollNumber"), r.PostForm.Get("name"))
	view := render.LoginView{RollNumber: input.RollNumber, Name: input.Name}

	if msg := validation.Login(input); msg != "" {
		s.writePage(w, r, http.StatusUnprocessableEntity, render.LoginPage(view, render.WithAction(PathLogin), render.WithAlert(msg)))
		return
	}

	identity := model.Identity{RollNumber: input.RollNumber, Name: input.Name}
	if err := s.remote.CreateIdentity(detach(r.Context()), identity); err != nil {
		msg := remote.Message(remote.OpCreateIdentity, err)
		s.writePage(w, r, http.StatusBadGateway, render.LoginPage(view, render.WithAction(PathLogin), render.WithAlert(msg)))
		return
	}

	sess, err := s.gate.Login(w, identity)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "cache identity", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.logger.InfoContext(r.Context(), "identity created",
		slog.String("session", sess.ID),
		slog.String("roll_number", identity.RollNumber),
	)
	redirect(w, r, PathForm)
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	sess, ok := auth.FromContext(r.Context())
	if !ok {
		s.writePage(w, r, http.StatusUnauthorized, render.LoadErrorPage(msgLoginRequired, render.WithAction(PathLogin)))
		return
	}

	f := s.flows.get(sess.ID)
	state, err := s.load(r.Context(), f, sess)
	if err != nil {
		if remote.IsUnauthorized(err) {
			s.gate.HardLogout(w, r)
			return
		}
		page := render.LoadErrorPage(remote.Message(remote.OpFetchForm, err),
			render.WithAction(PathForm),
			render.WithHiddenFields(render.CSRFToken(sess.CSRF)),
		)
		s.writePage(w, r, http.StatusBadGateway, page)
		return
	}

	snap := state.Snapshot()
	hidden := []render.HiddenField{render.CSRFToken(sess.CSRF)}
	if snap.Version != "" {
		hidden = append(hidden, render.VersionField(snap.Version))
	}
	if snap.Submitted {
		s.writePage(w, r, http.StatusOK, render.SubmittedPage(snap.FormTitle, render.WithHiddenFields(hidden...)))
		return
	}

	page, err := render.BuildPage(snap,
		render.WithAction(PathForm),
		render.WithAlert(f.takeAlert()),
		render.WithHiddenFields(hidden...),
	)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "build page", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	s.writePage(w, r, http.StatusOK, page)
}

// load returns the form session of f, fetching the schema on first use. The
// flow lock is held during the fetch so only one request reaches the remote
// service. Failed fetches are not cached.
func (s *Server) load(ctx context.Context, f *flow, sess auth.Session) (*session.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != nil {
		return f.state, nil
	}
	schema, err := s.remote.FetchForm(detach(ctx), sess.Identity.RollNumber)
	if err != nil {
		return nil, err
	}
	state, err := session.New(schema, session.WithTransitionDelay(s.delay))
	if err != nil {
		return nil, &remote.Error{Op: remote.OpFetchForm, Kind: remote.KindMalformed, Err: err}
	}
	f.state = state
	s.logger.InfoContext(ctx, "form loaded",
		slog.String("session", sess.ID),
		slog.String("form", schema.Title),
		slog.Int("sections", len(schema.Sections)),
	)
	return state, nil
}

func (s *Server) postForm(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	f := s.flows.get(sess.ID)
	state := f.session()
	if state == nil {
		redirect(w, r, PathForm)
		return
	}

	if !currentSection(r, state.Index()) {
		s.logger.DebugContext(r.Context(), "stale form post dropped",
			slog.String("session", sess.ID),
			slog.String("posted", r.PostForm.Get(render.SectionFieldName)),
			slog.Int("active", state.Index()),
		)
		redirect(w, r, PathForm)
		return
	}

	if err := applySection(state, r); err != nil {
		s.logger.WarnContext(r.Context(), "apply section values", slog.Any("error", err))
	}

	switch action := r.PostForm.Get("action"); action {
	case actionNext:
		s.navigate(r, state, state.Next)
	case actionPrev:
		s.navigate(r, state, state.Prev)
	case actionSubmit:
		if s.submit(w, r, f, state, sess) {
			return
		}
	default:
		s.logger.DebugContext(r.Context(), "unknown form action", slog.String("action", action))
	}
	redirect(w, r, PathForm)
}

// currentSection reports whether the post was rendered for the active
// section. A post rendered for another section is dropped without touching
// any value.
func currentSection(r *http.Request, active int) bool {
	posted, err := strconv.Atoi(r.PostForm.Get(render.SectionFieldName))
	return err == nil && posted == active
}

// applySection feeds the posted values of the active section into the
// session as change events. Only values that differ are applied so the
// error of an untouched field is kept.
func applySection(state *session.State, r *http.Request) error {
	snap := state.Snapshot()
	var errs []error
	for _, field := range snap.Section.Fields {
		posted, present := r.PostForm[field.ID]
		if field.Type.MultiValued() {
			errs = append(errs, state.SetSelection(field.ID, posted))
			continue
		}
		if !present {
			continue
		}
		value := ""
		if len(posted) > 0 {
			value = posted[0]
		}
		if snap.Values[field.ID].String() == value {
			continue
		}
		errs = append(errs, state.Change(field.ID, value))
	}
	return errors.Join(errs...)
}

// navigate runs a section transition and waits for it to settle, so the
// redirected request renders the new section.
func (s *Server) navigate(r *http.Request, state *session.State, move func() error) {
	err := move()
	switch {
	case err == nil:
		if err := state.AwaitSettled(r.Context()); err != nil {
			s.logger.DebugContext(r.Context(), "transition wait interrupted", slog.Any("error", err))
		}
	case session.IsValidation(err):
		s.logger.DebugContext(r.Context(), "section invalid", slog.Any("error", err))
	case errors.Is(err, session.ErrTransitionPending):
		// a transition is already running; this trigger is dropped
	default:
		s.logger.DebugContext(r.Context(), "navigation rejected", slog.Any("error", err))
	}
}

// submit sends the collected values. It reports whether it already wrote the
// response.
func (s *Server) submit(w http.ResponseWriter, r *http.Request, f *flow, state *session.State, sess auth.Session) bool {
	values, err := state.BeginSubmit()
	if err != nil {
		s.logger.DebugContext(r.Context(), "submit rejected", slog.Any("error", err))
		return false
	}

	err = s.remote.SubmitForm(detach(r.Context()), sess.Identity.RollNumber, values)
	state.FinishSubmit(err)
	if err == nil {
		s.logger.InfoContext(r.Context(), "form submitted", slog.String("session", sess.ID))
		return false
	}
	if remote.IsUnauthorized(err) {
		s.gate.HardLogout(w, r)
		return true
	}
	f.setAlert(remote.Message(remote.OpSubmitForm, err))
	return false
}

func (s *Server) changeField(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())
	state := s.flows.get(sess.ID).session()
	if state == nil {
		http.Error(w, http.StatusText(http.StatusConflict), http.StatusConflict)
		return
	}

	fieldID := chi.URLParam(r, "fieldID")
	if err := state.Change(fieldID, r.PostForm.Get("value")); err != nil {
		if errors.Is(err, model.ErrUnknownField) {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		s.logger.ErrorContext(r.Context(), "apply change", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.gate.HardLogout(w, r)
}

// detach keeps request values but drops cancellation: remote calls run to
// completion even when the browser goes away, and their result is discarded.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}
