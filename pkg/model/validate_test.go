package model_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/testsupport"
)

func TestValidateFixture(t *testing.T) {
	schema := testsupport.LoadSchema(t, filepath.Join("testdata", "registration.json"))
	if err := schema.Validate(); err != nil {
		t.Fatalf("expected fixture to be valid: %v", err)
	}
	if len(schema.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(schema.Sections))
	}
	field, ok := schema.Field("langs")
	if !ok || field.Type != model.FieldTypeCheckbox || field.Options[0].DataTestID != "lang-go" {
		t.Fatalf("unexpected checkbox field: %#v", field)
	}
}

func TestValidateRejectsMalformedSchemas(t *testing.T) {
	cases := []struct {
		name   string
		schema model.FormSchema
		want   string
	}{
		{
			name:   "no sections",
			schema: model.FormSchema{Title: "x"},
			want:   "no sections",
		},
		{
			name: "missing id",
			schema: model.FormSchema{Sections: []model.Section{{Fields: []model.Field{
				{Type: model.FieldTypeText},
			}}}},
			want: "field id is required",
		},
		{
			name: "duplicate id across sections",
			schema: model.FormSchema{Sections: []model.Section{
				{Fields: []model.Field{{ID: "a", Type: model.FieldTypeText}}},
				{Fields: []model.Field{{ID: "a", Type: model.FieldTypeEmail}}},
			}},
			want: `duplicate field id "a"`,
		},
		{
			name: "unknown type",
			schema: model.FormSchema{Sections: []model.Section{{Fields: []model.Field{
				{ID: "a", Type: model.FieldType("color")},
			}}}},
			want: "unsupported type",
		},
		{
			name: "choice without options",
			schema: model.FormSchema{Sections: []model.Section{{Fields: []model.Field{
				{ID: "a", Type: model.FieldTypeRadio},
			}}}},
			want: "requires options",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.schema.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
