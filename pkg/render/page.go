package render

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/session"
)

// View identifies which screen a Page describes.
type View string

const (
	ViewLogin     View = "login"
	ViewForm      View = "form"
	ViewLoadError View = "load-error"
	ViewSubmitted View = "submitted"
)

// SelectPlaceholder is the label of the empty entry every select widget
// starts with.
const SelectPlaceholder = "Select an option"

// Transition classes applied to the section container while it slides.
const (
	ClassSlideOutLeft  = "slide-out-left"
	ClassSlideInRight  = "slide-in-right"
	ClassSlideOutRight = "slide-out-right"
	ClassSlideInLeft   = "slide-in-left"
)

// Page is the renderer-agnostic view model of one screen. Exactly one of
// Login, Form and Message is relevant, depending on View.
type Page struct {
	View    View          `json:"view"`
	Title   string        `json:"title"`
	Alert   string        `json:"alert,omitempty"`
	Message string        `json:"message,omitempty"`
	Action  string        `json:"action,omitempty"`
	Hidden  []HiddenField `json:"hidden,omitempty"`
	Login   *LoginView    `json:"login,omitempty"`
	Form    *FormView     `json:"form,omitempty"`
}

// LoginView carries the login inputs echoed back after a failed attempt.
type LoginView struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
	Loading    bool   `json:"loading"`
}

// FormView describes the active section of the form.
type FormView struct {
	Title              string      `json:"title"`
	Version            string      `json:"version,omitempty"`
	SectionTitle       string      `json:"sectionTitle"`
	SectionDescription string      `json:"sectionDescription,omitempty"`
	Counter            string      `json:"counter"`
	Number             int         `json:"number"`
	Total              int         `json:"total"`
	Progress           int         `json:"progress"`
	Fields             []FieldView `json:"fields"`
	ShowPrev           bool        `json:"showPrev"`
	ShowNext           bool        `json:"showNext"`
	ShowSubmit         bool        `json:"showSubmit"`
	Submitting         bool        `json:"submitting"`
	SubmitLabel        string      `json:"submitLabel"`
	TransitionClass    string      `json:"transitionClass,omitempty"`
}

// FieldView is one rendered field with its current value and error.
type FieldView struct {
	ID          string          `json:"id"`
	Label       string          `json:"label"`
	Type        model.FieldType `json:"type"`
	Widget      Widget          `json:"widget"`
	Required    bool            `json:"required"`
	Placeholder string          `json:"placeholder,omitempty"`
	MinLength   int             `json:"minLength,omitempty"`
	MaxLength   int             `json:"maxLength,omitempty"`
	Value       string          `json:"value"`
	Options     []OptionView    `json:"options,omitempty"`
	Error       string          `json:"error,omitempty"`
	ErrorID     string          `json:"errorId"`
	Invalid     bool            `json:"invalid"`
	DescribedBy string          `json:"describedBy,omitempty"`
	DataTestID  string          `json:"dataTestId,omitempty"`
}

// OptionView is one option of a select, radio or checkbox widget.
type OptionView struct {
	ID         string `json:"id"`
	Value      string `json:"value"`
	Label      string `json:"label"`
	Checked    bool   `json:"checked"`
	DataTestID string `json:"dataTestId,omitempty"`
}

// PageOption customises a Page after its view model is built.
type PageOption func(*Page)

// WithAlert shows msg at the top of the view. Blank messages are ignored.
func WithAlert(msg string) PageOption {
	return func(p *Page) {
		p.Alert = strings.TrimSpace(msg)
	}
}

// WithAction sets the URL the page's form posts to.
func WithAction(action string) PageOption {
	return func(p *Page) {
		p.Action = action
	}
}

// WithHiddenFields merges hidden inputs into the page. They are kept sorted by
// name.
func WithHiddenFields(fields ...HiddenField) PageOption {
	return func(p *Page) {
		base := make(map[string]string, len(p.Hidden))
		for _, field := range p.Hidden {
			base[field.Name] = field.Value
		}
		p.Hidden = SortedHiddenFields(MergeHiddenFields(base, fields...))
	}
}

func apply(page *Page, options []PageOption) {
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(page)
	}
}

// LoginPage builds the login screen.
func LoginPage(login LoginView, options ...PageOption) Page {
	page := Page{
		View:  ViewLogin,
		Title: "Login",
		Login: &login,
	}
	apply(&page, options)
	return page
}

// LoadErrorPage builds the screen shown when the form could not be fetched.
func LoadErrorPage(message string, options ...PageOption) Page {
	page := Page{
		View:    ViewLoadError,
		Title:   "Form unavailable",
		Message: message,
	}
	apply(&page, options)
	return page
}

// SubmittedPage builds the confirmation screen shown after a successful
// submission.
func SubmittedPage(formTitle string, options ...PageOption) Page {
	page := Page{
		View:    ViewSubmitted,
		Title:   formTitle,
		Message: "Form submitted successfully",
	}
	apply(&page, options)
	return page
}

// BuildPage turns a session snapshot into the form screen.
func BuildPage(snap session.Snapshot, options ...PageOption) (Page, error) {
	fields := make([]FieldView, 0, len(snap.Section.Fields))
	for _, field := range snap.Section.Fields {
		view, err := buildField(field, snap.Values[field.ID], snap.Errors[field.ID])
		if err != nil {
			return Page{}, err
		}
		fields = append(fields, view)
	}

	submitLabel := "Submit"
	if snap.Submitting {
		submitLabel = "Submitting..."
	}

	form := &FormView{
		Title:              snap.FormTitle,
		Version:            snap.Version,
		SectionTitle:       snap.Section.Title,
		SectionDescription: snap.Section.Description,
		Counter:            fmt.Sprintf("Section %d of %d", snap.Index+1, snap.Total),
		Number:             snap.Index + 1,
		Total:              snap.Total,
		Progress:           snap.Progress,
		Fields:             fields,
		ShowPrev:           !snap.First(),
		ShowNext:           !snap.Last(),
		ShowSubmit:         snap.Last(),
		Submitting:         snap.Submitting,
		SubmitLabel:        submitLabel,
		TransitionClass:    TransitionClass(snap.Phase, snap.Direction),
	}

	page := Page{
		View:   ViewForm,
		Title:  snap.FormTitle,
		Form:   form,
		Hidden: []HiddenField{SectionField(snap.Index)},
	}
	apply(&page, options)
	return page, nil
}

// TransitionClass returns the CSS class for the section container: the
// outgoing slide while a transition is pending, the incoming slide once it
// settled.
func TransitionClass(phase session.Phase, direction session.Direction) string {
	switch {
	case phase == session.PhaseTransitioning && direction == session.DirectionForward:
		return ClassSlideOutLeft
	case phase == session.PhaseTransitioning && direction == session.DirectionBackward:
		return ClassSlideOutRight
	case phase == session.PhaseSettled && direction == session.DirectionForward:
		return ClassSlideInRight
	case phase == session.PhaseSettled && direction == session.DirectionBackward:
		return ClassSlideInLeft
	default:
		return ""
	}
}

func buildField(field model.Field, value model.Value, errMsg string) (FieldView, error) {
	widget, err := WidgetFor(field.Type)
	if err != nil {
		return FieldView{}, fmt.Errorf("render: field %q: %w", field.ID, err)
	}

	view := FieldView{
		ID:          field.ID,
		Label:       field.Label,
		Type:        field.Type,
		Widget:      widget,
		Required:    field.Required,
		Placeholder: field.Placeholder,
		MinLength:   field.MinLength,
		MaxLength:   field.MaxLength,
		Value:       value.String(),
		Error:       errMsg,
		ErrorID:     ErrorID(field.ID),
		Invalid:     errMsg != "",
		DataTestID:  field.DataTestID,
	}
	if view.Invalid {
		view.DescribedBy = view.ErrorID
	}

	if field.Type.HasOptions() {
		view.Options = make([]OptionView, 0, len(field.Options))
		for _, option := range field.Options {
			view.Options = append(view.Options, OptionView{
				ID:         OptionID(field.ID, option.Value),
				Value:      option.Value,
				Label:      option.Label,
				Checked:    value.Contains(option.Value),
				DataTestID: option.DataTestID,
			})
		}
	}
	return view, nil
}

// ErrorID is the id of the element holding a field's inline error.
func ErrorID(fieldID string) string {
	return fieldID + "-error"
}

// OptionID is the id of the input rendered for one radio or checkbox option.
func OptionID(fieldID, value string) string {
	return fieldID + "-" + value
}
