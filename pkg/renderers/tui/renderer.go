package tui

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-formflow/pkg/render"
	"github.com/goliatone/go-formflow/pkg/session"
)

const (
	actionPrev   = "Previous"
	actionNext   = "Next"
	actionSubmit = "Submit"
)

// Renderer drives a form session from the terminal: it prints the active
// section, prompts for every field and offers the navigation controls the
// section allows.
type Renderer struct {
	driver   PromptDriver
	describe ErrorDescriber
	theme    Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with the survey driver by default.
func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		driver: NewSurveyDriver(nil),
		describe: func(err error) (string, bool) {
			return err.Error(), false
		},
		theme: Theme{AlertPrefix: "! ", ErrorPrefix: "x "},
	}

	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}

	if r.driver == nil {
		return nil, errors.New("tui: prompt driver is nil")
	}
	return r, nil
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return "tui"
}

// ContentType reports the format produced by Render.
func (r *Renderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render prints page as plain text.
func (r *Renderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	var b strings.Builder

	if page.View == render.ViewForm {
		form := page.Form
		if form == nil {
			return nil, errors.New("tui: form view without form")
		}
		fmt.Fprintf(&b, "%s\n%s (%d%%)\n", form.Title, form.Counter, form.Progress)
		if page.Alert != "" {
			fmt.Fprintf(&b, "%s%s\n", r.theme.AlertPrefix, page.Alert)
		}
		fmt.Fprintf(&b, "\n%s\n", form.SectionTitle)
		if desc := plainText(form.SectionDescription); desc != "" {
			fmt.Fprintf(&b, "%s\n", desc)
		}
		for _, field := range form.Fields {
			marker := ""
			if field.Required {
				marker = " *"
			}
			fmt.Fprintf(&b, "  %s%s: %s\n", field.Label, marker, displayValue(field))
			if field.Error != "" {
				fmt.Fprintf(&b, "    %s%s\n", r.theme.ErrorPrefix, field.Error)
			}
		}
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "%s\n", page.Title)
	if page.Alert != "" {
		fmt.Fprintf(&b, "%s%s\n", r.theme.AlertPrefix, page.Alert)
	}
	if page.Message != "" {
		fmt.Fprintf(&b, "%s\n", page.Message)
	}
	return []byte(b.String()), nil
}

// Run loops over the sections of state until the form is submitted, the
// context ends or a fatal submission error occurs.
func (r *Renderer) Run(ctx context.Context, state *session.State, submit SubmitFunc) error {
	if state == nil {
		return errors.New("tui: session is required")
	}
	if submit == nil {
		return errors.New("tui: submit function is required")
	}

	alert := ""
	for {
		if err := state.AwaitSettled(ctx); err != nil {
			return err
		}

		page, err := render.BuildPage(state.Snapshot(), render.WithAlert(alert))
		if err != nil {
			return err
		}
		text, err := r.Render(ctx, page)
		if err != nil {
			return err
		}
		if err := r.driver.Info(ctx, string(text)); err != nil {
			return err
		}

		for _, field := range page.Form.Fields {
			if err := r.promptField(ctx, state, field); err != nil {
				return err
			}
		}

		action, err := r.chooseAction(ctx, page.Form)
		if err != nil {
			return err
		}
		alert = ""

		switch action {
		case actionPrev:
			if err := state.Prev(); err != nil && !errors.Is(err, session.ErrTransitionPending) {
				return err
			}
		case actionNext:
			err := state.Next()
			if err != nil && !session.IsValidation(err) && !errors.Is(err, session.ErrTransitionPending) {
				return err
			}
		case actionSubmit:
			values, err := state.BeginSubmit()
			if session.IsValidation(err) {
				continue
			}
			if err != nil {
				return err
			}

			err = submit(ctx, values)
			state.FinishSubmit(err)
			if err == nil {
				done := render.SubmittedPage(page.Form.Title)
				text, _ := r.Render(ctx, done)
				return r.driver.Info(ctx, string(text))
			}
			msg, fatal := r.describe(err)
			if fatal {
				return err
			}
			alert = msg
		}
	}
}

func (r *Renderer) promptField(ctx context.Context, state *session.State, field render.FieldView) error {
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch field.Widget {
	case render.WidgetInput:
		value, err := r.driver.Input(ctx, InputConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Error,
		})
		if err != nil {
			return err
		}
		return change(state, field, value)

	case render.WidgetTextArea:
		value, err := r.driver.TextArea(ctx, TextAreaConfig{
			Message: message,
			Default: field.Value,
			Help:    field.Error,
		})
		if err != nil {
			return err
		}
		return change(state, field, value)

	case render.WidgetSelect:
		options := []string{render.SelectPlaceholder}
		current := 0
		for i, option := range field.Options {
			options = append(options, option.Label)
			if option.Checked {
				current = i + 1
			}
		}
		choice, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      options,
			DefaultIndex: current,
			Help:         field.Error,
		})
		if err != nil {
			return err
		}
		value := ""
		if choice > 0 && choice <= len(field.Options) {
			value = field.Options[choice-1].Value
		}
		return change(state, field, value)

	case render.WidgetRadioGroup:
		current := -1
		for i, option := range field.Options {
			if option.Checked {
				current = i
			}
		}
		choice, err := r.driver.Select(ctx, SelectConfig{
			Message:      message,
			Options:      optionLabels(field),
			DefaultIndex: current,
			Help:         field.Error,
		})
		if err != nil {
			return err
		}
		if choice < 0 || choice >= len(field.Options) {
			return nil
		}
		return change(state, field, field.Options[choice].Value)

	case render.WidgetCheckboxGroup:
		var defaults []int
		for i, option := range field.Options {
			if option.Checked {
				defaults = append(defaults, i)
			}
		}
		picks, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  optionLabels(field),
			Defaults: defaults,
			Help:     field.Error,
		})
		if err != nil {
			return err
		}
		selected := make([]string, 0, len(picks))
		for _, idx := range picks {
			if idx >= 0 && idx < len(field.Options) {
				selected = append(selected, field.Options[idx].Value)
			}
		}
		return state.SetSelection(field.ID, selected)

	default:
		return fmt.Errorf("tui: unsupported widget %s for field %q", field.Widget, field.ID)
	}
}

func (r *Renderer) chooseAction(ctx context.Context, form *render.FormView) (string, error) {
	var actions []string
	if form.ShowPrev {
		actions = append(actions, actionPrev)
	}
	if form.ShowNext {
		actions = append(actions, actionNext)
	}
	if form.ShowSubmit {
		actions = append(actions, actionSubmit)
	}

	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:      form.Counter,
		Options:      actions,
		DefaultIndex: len(actions) - 1,
	})
	if err != nil {
		return "", err
	}
	if choice < 0 || choice >= len(actions) {
		return "", fmt.Errorf("tui: invalid action %d", choice)
	}
	return actions[choice], nil
}

// change only forwards edits, so an untouched field keeps its error.
func change(state *session.State, field render.FieldView, value string) error {
	if value == field.Value {
		return nil
	}
	return state.Change(field.ID, value)
}

func optionLabels(field render.FieldView) []string {
	labels := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		labels = append(labels, option.Label)
	}
	return labels
}

func displayValue(field render.FieldView) string {
	var parts []string
	switch field.Widget {
	case render.WidgetSelect, render.WidgetRadioGroup, render.WidgetCheckboxGroup:
		for _, option := range field.Options {
			if option.Checked {
				parts = append(parts, option.Label)
			}
		}
	default:
		if field.Value != "" {
			parts = append(parts, field.Value)
		}
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ", ")
}

var (
	plainPolicyOnce sync.Once
	plainPolicy     *bluemonday.Policy
)

func plainText(raw string) string {
	plainPolicyOnce.Do(func() {
		plainPolicy = bluemonday.StrictPolicy()
	})
	return strings.TrimSpace(html.UnescapeString(plainPolicy.Sanitize(raw)))
}
