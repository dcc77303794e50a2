package vanilla

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/goliatone/go-formflow/pkg/render"
	rendertemplate "github.com/goliatone/go-formflow/pkg/render/template"
	"github.com/goliatone/go-formflow/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formflow/pkg/renderers/vanilla/components"
)

const pageTemplate = "templates/page.tmpl"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	assetsPrefix     string
	logoutPath       string
	fieldEndpoint    string
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithComponentRegistry replaces the default widget components.
func WithComponentRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithAssetsPrefix sets the URL prefix stylesheets and scripts are served
// under. Defaults to "/assets/".
func WithAssetsPrefix(prefix string) Option {
	return func(cfg *config) {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			return
		}
		if !strings.HasSuffix(prefix, "/") {
			prefix += "/"
		}
		cfg.assetsPrefix = prefix
	}
}

// WithRoutes sets the logout action and the endpoint prefix single field
// changes are posted to.
func WithRoutes(logoutPath, fieldEndpoint string) Option {
	return func(cfg *config) {
		if logoutPath != "" {
			cfg.logoutPath = logoutPath
		}
		if fieldEndpoint != "" {
			cfg.fieldEndpoint = fieldEndpoint
		}
	}
}

// Renderer renders pages as HTML documents.
type Renderer struct {
	templates     rendertemplate.TemplateRenderer
	registry      *components.Registry
	assetsPrefix  string
	logoutPath    string
	fieldEndpoint string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS:    TemplatesFS(),
		assetsPrefix:  "/assets/",
		logoutPath:    "/logout",
		fieldEndpoint: "/form/fields/",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(
			gotemplate.WithFS(cfg.templateFS),
			gotemplate.WithExtension(".tmpl"),
			gotemplate.WithFilter("sanitize", filterSanitize),
		)
		if err != nil {
			return nil, fmt.Errorf("vanilla renderer: configure template renderer: %w", err)
		}
		renderer = engine
	} else {
		// Custom renderers still need the filter the page template uses.
		_ = renderer.RegisterFilter("sanitize", func(input any, _ any) (any, error) {
			return SanitizeDescription(fmt.Sprint(input)), nil
		})
	}

	return &Renderer{
		templates:     renderer,
		registry:      cfg.registry,
		assetsPrefix:  cfg.assetsPrefix,
		logoutPath:    cfg.logoutPath,
		fieldEndpoint: cfg.fieldEndpoint,
	}, nil
}

func (r *Renderer) Name() string {
	return "vanilla"
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render produces a complete HTML document for page.
func (r *Renderer) Render(_ context.Context, page render.Page) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("vanilla renderer: template renderer is nil")
	}

	fields, used, err := r.renderFields(page)
	if err != nil {
		return nil, err
	}
	if len(used) == 0 {
		used = []string{components.NameInput}
	}
	stylesheets, scripts := r.registry.Assets(used)

	result, err := r.templates.RenderTemplate(pageTemplate, map[string]any{
		"page":          page,
		"fields":        fields,
		"stylesheets":   stylesheets,
		"scripts":       scriptData(scripts),
		"assets":        r.assetsPrefix,
		"logout":        r.logoutPath,
		"fieldEndpoint": r.fieldEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: render template: %w", err)
	}
	return []byte(result), nil
}

func (r *Renderer) renderFields(page render.Page) ([]string, []string, error) {
	if page.View != render.ViewForm || page.Form == nil {
		return nil, nil, nil
	}

	out := make([]string, 0, len(page.Form.Fields))
	var used []string
	for _, field := range page.Form.Fields {
		name := field.Widget.String()
		descriptor, ok := r.registry.Descriptor(name)
		if !ok {
			return nil, nil, fmt.Errorf("vanilla renderer: component %q not registered for field %q", name, field.ID)
		}

		var buf bytes.Buffer
		data := components.ComponentData{Template: r.templates}
		if err := descriptor.Renderer(&buf, field, data); err != nil {
			return nil, nil, fmt.Errorf("vanilla renderer: render component %q for field %q: %w", name, field.ID, err)
		}
		out = append(out, buf.String())
		used = append(used, name)
	}
	return out, used, nil
}

func scriptData(scripts []components.Script) []map[string]any {
	out := make([]map[string]any, 0, len(scripts))
	for _, script := range scripts {
		out = append(out, map[string]any{
			"src":   script.Src,
			"defer": script.Defer,
		})
	}
	return out
}
