package server

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/internal/devserver"
	"github.com/goliatone/go-formflow/internal/logging"
	"github.com/goliatone/go-formflow/pkg/auth"
	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/remote"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

const testSecret = "0123456789abcdef0123456789abcdef"

var (
	csrfPattern    = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)
	sectionPattern = regexp.MustCompile(`name="section" value="([^"]+)"`)
)

type harness struct {
	t      *testing.T
	server *Server
	app    *httptest.Server
	client *http.Client
}

func newHarness(t *testing.T, rem Remote) *harness {
	t.Helper()

	store, err := auth.NewCookieStore(testSecret)
	if err != nil {
		t.Fatalf("cookie store: %v", err)
	}
	srv, err := New(rem, store, WithLogger(logging.Discard()), WithTransitionDelay(0))
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	app := httptest.NewServer(srv)
	t.Cleanup(app.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &harness{t: t, server: srv, app: app, client: &http.Client{Jar: jar}}
}

// newDevHarness wires the server to a development remote service over HTTP.
func newDevHarness(t *testing.T) (*harness, *devserver.Server) {
	t.Helper()

	dev, err := devserver.New(testsupport.TwoSectionSchema(), devserver.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("devserver: %v", err)
	}
	devHTTP := httptest.NewServer(dev.Handler())
	t.Cleanup(devHTTP.Close)

	client, err := remote.New(devHTTP.URL, remote.WithLogger(logging.Discard()))
	if err != nil {
		t.Fatalf("remote client: %v", err)
	}
	return newHarness(t, client), dev
}

type page struct {
	status int
	path   string
	body   string
}

func (h *harness) read(resp *http.Response, err error) page {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("request: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		h.t.Fatalf("read body: %v", err)
	}
	return page{status: resp.StatusCode, path: resp.Request.URL.Path, body: string(body)}
}

func (h *harness) get(path string) page {
	h.t.Helper()
	return h.read(h.client.Get(h.app.URL + path))
}

func (h *harness) post(path string, form url.Values) page {
	h.t.Helper()
	return h.read(h.client.PostForm(h.app.URL+path, form))
}

// postWithCSRF posts form with the token and the section index taken from
// from, the way a browser submits the rendered page.
func (h *harness) postWithCSRF(path string, from page, form url.Values) page {
	h.t.Helper()
	match := csrfPattern.FindStringSubmatch(from.body)
	if match == nil {
		h.t.Fatalf("no csrf token in page:\n%s", from.body)
	}
	form.Set("_csrf", match[1])
	if section := sectionPattern.FindStringSubmatch(from.body); section != nil && form.Get("section") == "" {
		form.Set("section", section[1])
	}
	return h.post(path, form)
}

// onlyFlow returns the single flow of the harness.
func (h *harness) onlyFlow() *flow {
	h.t.Helper()
	h.server.flows.mu.Lock()
	defer h.server.flows.mu.Unlock()
	if len(h.server.flows.flows) != 1 {
		h.t.Fatalf("expected one flow, got %d", len(h.server.flows.flows))
	}
	for _, f := range h.server.flows.flows {
		return f
	}
	return nil
}

func (h *harness) login(roll, name string) page {
	h.t.Helper()
	return h.post(PathLogin, url.Values{"rollNumber": {roll}, "name": {name}})
}

func assertContains(t *testing.T, p page, fragments ...string) {
	t.Helper()
	for _, fragment := range fragments {
		if !strings.Contains(p.body, fragment) {
			t.Fatalf("expected %q in %s (status %d):\n%s", fragment, p.path, p.status, p.body)
		}
	}
}

func sectionOne() url.Values {
	return url.Values{
		"fullName": {"Ada"},
		"email":    {"ada@example.com"},
		"phone":    {"1234567890"},
		"action":   {"next"},
	}
}

func TestEndToEndFlow(t *testing.T) {
	h, dev := newDevHarness(t)

	p := h.get(PathLogin)
	assertContains(t, p, `data-testid="login-button"`)

	p = h.login("abc", "Al")
	if p.path != PathForm || p.status != http.StatusOK {
		t.Fatalf("expected form after login, got %s (%d)", p.path, p.status)
	}
	assertContains(t, p, "Section 1 of 2", `aria-valuenow="50"`, "Personal Details")

	p = h.postWithCSRF(PathForm, p, url.Values{"action": {"next"}})
	assertContains(t, p, "Section 1 of 2", "This field is required", `aria-invalid="true"`)

	p = h.postWithCSRF(PathForm, p, sectionOne())
	assertContains(t, p, "Section 2 of 2", `aria-valuenow="100"`, "Preferences", `value="submit"`)

	p = h.postWithCSRF(PathForm, p, url.Values{
		"bio":    {""},
		"track":  {"backend"},
		"level":  {"senior"},
		"langs":  {"go", "js"},
		"action": {"submit"},
	})
	assertContains(t, p, "Form submitted successfully")

	subs := dev.Submissions()
	if len(subs) != 1 {
		t.Fatalf("expected one submission, got %d", len(subs))
	}
	want := model.Values{
		"fullName": model.TextValue("Ada"),
		"email":    model.TextValue("ada@example.com"),
		"phone":    model.TextValue("1234567890"),
		"dob":      model.TextValue(""),
		"bio":      model.TextValue(""),
		"track":    model.TextValue("backend"),
		"level":    model.TextValue("senior"),
		"langs":    model.SelectionValue("go", "js"),
	}
	if subs[0].RollNumber != "abc" {
		t.Fatalf("unexpected roll number %q", subs[0].RollNumber)
	}
	if diff := cmp.Diff(want, subs[0].Values); diff != "" {
		t.Fatalf("submitted values mismatch (-want +got):\n%s", diff)
	}
}

func TestPreviousKeepsValues(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.login("abc", "Al")
	p = h.postWithCSRF(PathForm, p, sectionOne())
	assertContains(t, p, "Section 2 of 2")

	p = h.postWithCSRF(PathForm, p, url.Values{"track": {"frontend"}, "action": {"prev"}})
	assertContains(t, p, "Section 1 of 2", `value="Ada"`, `value="ada@example.com"`)

	p = h.postWithCSRF(PathForm, p, sectionOne())
	assertContains(t, p, "Section 2 of 2", `value="frontend" selected`)
}

func TestUnauthorizedSubmitLogsOut(t *testing.T) {
	h, dev := newDevHarness(t)

	p := h.login("abc", "Al")
	p = h.postWithCSRF(PathForm, p, sectionOne())
	assertContains(t, p, "Section 2 of 2")
	if h.server.flows.len() != 1 {
		t.Fatalf("expected one flow, got %d", h.server.flows.len())
	}

	dev.Forget("abc")
	p = h.postWithCSRF(PathForm, p, url.Values{
		"track":  {"backend"},
		"level":  {"junior"},
		"langs":  {"go"},
		"action": {"submit"},
	})
	if p.path != PathLogin {
		t.Fatalf("expected login view after 401, got %s", p.path)
	}
	assertContains(t, p, `data-testid="login-button"`)
	if h.server.flows.len() != 0 {
		t.Fatalf("expected flow to be dropped, got %d", h.server.flows.len())
	}

	p = h.get(PathForm)
	if p.path != PathLogin {
		t.Fatalf("expected gate to redirect to login, got %s", p.path)
	}
	if len(dev.Submissions()) != 0 {
		t.Fatalf("rejected submission must not be recorded")
	}
}

func TestStaleSectionPostIsDropped(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.login("abc", "Al")
	p = h.postWithCSRF(PathForm, p, sectionOne())
	assertContains(t, p, "Section 2 of 2", `name="section" value="1"`)

	sectionOnePage := h.postWithCSRF(PathForm, p, url.Values{
		"track":  {"backend"},
		"level":  {"junior"},
		"langs":  {"go"},
		"action": {"prev"},
	})
	assertContains(t, sectionOnePage, "Section 1 of 2", `name="section" value="0"`)

	// Next clicked twice on the same rendered page.
	p = h.postWithCSRF(PathForm, sectionOnePage, sectionOne())
	assertContains(t, p, "Section 2 of 2")
	p = h.postWithCSRF(PathForm, sectionOnePage, sectionOne())
	assertContains(t, p, "Section 2 of 2", `value="go" checked`)

	state := h.onlyFlow().session()
	if state.Index() != 1 {
		t.Fatalf("expected to stay on the second section, got %d", state.Index())
	}
	want := model.SelectionValue("go")
	if got := state.Values()["langs"]; !got.Equal(want) {
		t.Fatalf("langs = %v, want %v", got, want)
	}
}

func TestPostWithoutSectionIsDropped(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.login("abc", "Al")
	form := sectionOne()
	form.Set("section", "not-a-number")
	p = h.postWithCSRF(PathForm, p, form)
	assertContains(t, p, "Section 1 of 2")

	if got := h.onlyFlow().session().Values()["fullName"]; got.String() != "" {
		t.Fatalf("expected dropped post to leave fullName empty, got %q", got.String())
	}
}

func TestGateRedirectsAnonymousRequests(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.get(PathForm)
	if p.path != PathLogin {
		t.Fatalf("expected redirect to login, got %s", p.path)
	}

	h.login("abc", "Al")
	p = h.get(PathLogin)
	if p.path != PathForm {
		t.Fatalf("expected authenticated login visit to land on the form, got %s", p.path)
	}
}

func TestLoginValidation(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.login(" ab ", "Al")
	if p.status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", p.status)
	}
	assertContains(t, p, "Roll number must be at least 3 characters", `value="ab"`)

	p = h.login("abc", "")
	assertContains(t, p, "Name is required")
}

func TestCSRFRequired(t *testing.T) {
	h, _ := newDevHarness(t)
	h.login("abc", "Al")

	p := h.post(PathForm, url.Values{"action": {"next"}, "_csrf": {"forged"}})
	if p.status != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", p.status)
	}
	p = h.post(PathLogout, url.Values{})
	if p.status != http.StatusForbidden {
		t.Fatalf("expected 403 on logout without token, got %d", p.status)
	}
}

func TestFieldChangeEndpoint(t *testing.T) {
	h, _ := newDevHarness(t)
	p := h.login("abc", "Al")

	// Next with an empty section records errors, a single change clears one.
	p = h.postWithCSRF(PathForm, p, url.Values{"action": {"next"}})
	assertContains(t, p, `id="fullName-error"`)

	changed := h.postWithCSRF(PathFields+"fullName", p, url.Values{"value": {"Ada"}})
	if changed.status != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", changed.status)
	}
	missing := h.postWithCSRF(PathFields+"nope", p, url.Values{"value": {"x"}})
	if missing.status != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown field, got %d", missing.status)
	}

	p = h.get(PathForm)
	assertContains(t, p, `value="Ada"`, `id="email-error"`)
	if strings.Contains(p.body, `id="fullName-error"`) {
		t.Fatalf("expected fullName error to be cleared:\n%s", p.body)
	}
}

func TestLogout(t *testing.T) {
	h, _ := newDevHarness(t)
	p := h.login("abc", "Al")

	p = h.postWithCSRF(PathLogout, p, url.Values{})
	if p.path != PathLogin {
		t.Fatalf("expected login after logout, got %s", p.path)
	}
	if h.server.flows.len() != 0 {
		t.Fatalf("expected flows to be dropped")
	}
}

func TestHealthAndAssets(t *testing.T) {
	h, _ := newDevHarness(t)

	p := h.get(PathHealth)
	if p.status != http.StatusOK || p.body != "ok" {
		t.Fatalf("unexpected health response %d %q", p.status, p.body)
	}
	p = h.get(PathAssets + "formflow.css")
	assertContains(t, p, ".slide-in-right")
}

// stubRemote serves a fixed schema and returns scripted failures.
type stubRemote struct {
	mu         sync.Mutex
	fetchErr   error
	submitErr  error
	fetchCalls int
}

func (s *stubRemote) CreateIdentity(context.Context, model.Identity) error {
	return nil
}

func (s *stubRemote) FetchForm(context.Context, string) (model.FormSchema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetchCalls++
	if s.fetchErr != nil {
		return model.FormSchema{}, s.fetchErr
	}
	return testsupport.TwoSectionSchema(), nil
}

func (s *stubRemote) SubmitForm(context.Context, string, model.Values) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitErr
}

func TestFetchFailureShowsLoadError(t *testing.T) {
	stub := &stubRemote{fetchErr: &remote.Error{Op: remote.OpFetchForm, Kind: remote.KindUnreachable}}
	h := newHarness(t, stub)

	p := h.login("abc", "Al")
	if p.status != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", p.status)
	}
	assertContains(t, p, "No response from server. Please check your internet connection.", "Try again")
	if strings.Contains(p.body, "Section 1 of") {
		t.Fatalf("form must not render after a failed fetch")
	}

	stub.mu.Lock()
	stub.fetchErr = nil
	stub.mu.Unlock()

	p = h.get(PathForm)
	assertContains(t, p, "Section 1 of 2")
	h.get(PathForm)
	stub.mu.Lock()
	calls := stub.fetchCalls
	stub.mu.Unlock()
	if calls != 2 {
		t.Fatalf("expected the schema to be fetched once after the failure, got %d calls", calls)
	}
}

func TestUnauthorizedFetchLogsOut(t *testing.T) {
	stub := &stubRemote{fetchErr: &remote.Error{
		Op:     remote.OpFetchForm,
		Kind:   remote.KindServerRejected,
		Status: http.StatusUnauthorized,
	}}
	h := newHarness(t, stub)

	p := h.login("abc", "Al")
	if p.path != PathLogin || p.status != http.StatusOK {
		t.Fatalf("expected login view after 401, got %s (%d)", p.path, p.status)
	}
	assertContains(t, p, `data-testid="login-button"`)

	appURL, err := url.Parse(h.app.URL)
	if err != nil {
		t.Fatalf("parse app url: %v", err)
	}
	for _, cookie := range h.client.Jar.Cookies(appURL) {
		if cookie.Name == auth.DefaultCookieName {
			t.Fatalf("expected session cookie to be cleared, got %q", cookie.Value)
		}
	}
	if h.server.flows.len() != 0 {
		t.Fatalf("expected flow to be dropped, got %d", h.server.flows.len())
	}

	p = h.get(PathForm)
	if p.path != PathLogin {
		t.Fatalf("expected gate to redirect to login, got %s", p.path)
	}
}

func TestSubmitFailureKeepsLastSection(t *testing.T) {
	stub := &stubRemote{submitErr: &remote.Error{
		Op:      remote.OpSubmitForm,
		Kind:    remote.KindServerRejected,
		Status:  http.StatusInternalServerError,
		Message: "Storage is down",
	}}
	h := newHarness(t, stub)

	p := h.login("abc", "Al")
	p = h.postWithCSRF(PathForm, p, sectionOne())
	p = h.postWithCSRF(PathForm, p, url.Values{
		"track":  {"backend"},
		"level":  {"junior"},
		"langs":  {"go"},
		"action": {"submit"},
	})

	assertContains(t, p, "Storage is down", "Section 2 of 2", `role="alert"`)
	if strings.Contains(p.body, " disabled") {
		t.Fatalf("submit control must be enabled after a failure:\n%s", p.body)
	}

	p = h.get(PathForm)
	if strings.Contains(p.body, "Storage is down") {
		t.Fatalf("alert must only be shown once")
	}
}
