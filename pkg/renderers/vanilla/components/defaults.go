package components

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-formflow/pkg/render"
)

const (
	templatePrefix = "templates/components/"

	// StylesheetPath and ScriptPath are relative to the assets mount point.
	StylesheetPath = "formflow.css"
	ScriptPath     = "formflow.js"
)

// NewDefaultRegistry constructs a registry with one template-backed component
// per widget.
func NewDefaultRegistry() *Registry {
	registry := New()

	shared := []string{StylesheetPath}
	changes := []Script{{Src: ScriptPath, Defer: true}}

	for _, name := range []string{NameInput, NameTextarea, NameSelect, NameRadio, NameCheckbox} {
		registry.MustRegister(name, Descriptor{
			Renderer:    templateComponentRenderer(templatePrefix + name + ".tmpl"),
			Stylesheets: shared,
			Scripts:     changes,
		})
	}
	return registry
}

func templateComponentRenderer(templateName string) Renderer {
	return func(buf *bytes.Buffer, field render.FieldView, data ComponentData) error {
		if data.Template == nil {
			return fmt.Errorf("components: template renderer not configured for %q", templateName)
		}

		payload := map[string]any{
			"field":       field,
			"config":      data.Config,
			"placeholder": render.SelectPlaceholder,
		}
		rendered, err := data.Template.RenderTemplate(templateName, payload)
		if err != nil {
			return fmt.Errorf("components: render template %q: %w", templateName, err)
		}
		buf.WriteString(rendered)
		return nil
	}
}
