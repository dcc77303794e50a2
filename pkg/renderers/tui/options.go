package tui

import (
	"context"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Theme captures optional prefixes the renderer applies when printing
// messages.
type Theme struct {
	AlertPrefix string
	ErrorPrefix string
}

// ErrorDescriber turns a submission error into the alert shown above the final
// section. fatal stops the section loop and returns the error to the caller.
type ErrorDescriber func(err error) (message string, fatal bool)

// SubmitFunc sends the collected values.
type SubmitFunc func(ctx context.Context, values model.Values) error

// Option configures the TUI renderer.
type Option func(*Renderer)

// WithPromptDriver overrides the prompt driver used by the renderer.
func WithPromptDriver(driver PromptDriver) Option {
	return func(r *Renderer) {
		if driver != nil {
			r.driver = driver
		}
	}
}

// WithErrorDescriber overrides how submission failures are reported.
func WithErrorDescriber(fn ErrorDescriber) Option {
	return func(r *Renderer) {
		if fn != nil {
			r.describe = fn
		}
	}
}

// WithTheme applies optional message prefixes.
func WithTheme(theme Theme) Option {
	return func(r *Renderer) {
		r.theme = theme
	}
}
