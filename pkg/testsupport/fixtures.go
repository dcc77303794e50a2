package testsupport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

// TwoSectionSchema returns the schema used across package tests: a personal
// details section followed by a preferences section covering every field
// type.
func TwoSectionSchema() model.FormSchema {
	return model.FormSchema{
		Title:   "Student Registration",
		Version: "1.0",
		Sections: []model.Section{
			{
				Title:       "Personal Details",
				Description: "Tell us about <strong>yourself</strong>.",
				Fields: []model.Field{
					{ID: "fullName", Type: model.FieldTypeText, Label: "Full Name", Required: true, MinLength: 2, Placeholder: "Jane Doe", DataTestID: "name-input"},
					{ID: "email", Type: model.FieldTypeEmail, Label: "Email", Required: true},
					{ID: "phone", Type: model.FieldTypeTel, Label: "Phone", Required: true},
					{ID: "dob", Type: model.FieldTypeDate, Label: "Date of Birth"},
				},
			},
			{
				Title:       "Preferences",
				Description: "Pick what you like.",
				Fields: []model.Field{
					{ID: "bio", Type: model.FieldTypeTextarea, Label: "Bio", MaxLength: 200},
					{ID: "track", Type: model.FieldTypeDropdown, Label: "Track", Required: true, Options: []model.Option{
						{Value: "backend", Label: "Backend"},
						{Value: "frontend", Label: "Frontend"},
					}},
					{ID: "level", Type: model.FieldTypeRadio, Label: "Level", Required: true, Options: []model.Option{
						{Value: "junior", Label: "Junior"},
						{Value: "senior", Label: "Senior"},
					}},
					{ID: "langs", Type: model.FieldTypeCheckbox, Label: "Languages", Required: true, Options: []model.Option{
						{Value: "go", Label: "Go", DataTestID: "lang-go"},
						{Value: "js", Label: "JavaScript"},
						{Value: "x", Label: "Other"},
					}},
				},
			},
		},
	}
}

// LoadSchema reads a JSON schema fixture.
func LoadSchema(t *testing.T, path string) model.FormSchema {
	t.Helper()

	schema, err := LoadSchemaFromPath(path)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	return schema
}

// LoadSchemaFromPath reads a JSON schema fixture without requiring a
// testing.T, for setup code running outside a test.
func LoadSchemaFromPath(path string) (model.FormSchema, error) {
	if path == "" {
		return model.FormSchema{}, errors.New("testsupport: schema path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("testsupport: read schema: %w", err)
	}
	var out model.FormSchema
	if err := json.Unmarshal(data, &out); err != nil {
		return model.FormSchema{}, fmt.Errorf("testsupport: unmarshal schema: %w", err)
	}
	return out, nil
}

// WriteGolden writes arbitrary data to a golden file when UPDATE_GOLDENS is set.
func WriteGolden(t *testing.T, path string, value any) {
	t.Helper()

	if os.Getenv("UPDATE_GOLDENS") == "" {
		return
	}
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		t.Fatalf("marshal golden: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir golden dir: %v", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("write golden: %v", err)
	}
}

// CompareGolden returns a diff string if the values differ.
func CompareGolden(want, got any) string {
	return cmp.Diff(want, got)
}

// MustReadGolden reads a golden file and returns its raw bytes.
func MustReadGolden(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read golden: %v", err)
	}
	return data
}

// MustReadGoldenString reads a golden file and returns its string content.
func MustReadGoldenString(t *testing.T, path string) string {
	t.Helper()
	return string(MustReadGolden(t, path))
}

// Context returns a background context for tests.
func Context() context.Context {
	return context.Background()
}

// CaptureTemplateOutput executes a render function that writes to an
// io.Writer, returning both the string result and the writer contents.
func CaptureTemplateOutput(t *testing.T, render func(io.Writer) (string, error)) (string, string) {
	t.Helper()

	var buf bytes.Buffer
	out, err := render(&buf)
	if err != nil {
		t.Fatalf("render template: %v", err)
	}

	return out, buf.String()
}
