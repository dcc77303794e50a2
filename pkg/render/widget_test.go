package render_test

import (
	"testing"

	"github.com/goliatone/go-formflow/pkg/model"
	"github.com/goliatone/go-formflow/pkg/render"
)

func TestWidgetForCoversEveryFieldType(t *testing.T) {
	want := map[model.FieldType]render.Widget{
		model.FieldTypeText:     render.WidgetInput,
		model.FieldTypeTel:      render.WidgetInput,
		model.FieldTypeEmail:    render.WidgetInput,
		model.FieldTypeDate:     render.WidgetInput,
		model.FieldTypeTextarea: render.WidgetTextArea,
		model.FieldTypeDropdown: render.WidgetSelect,
		model.FieldTypeRadio:    render.WidgetRadioGroup,
		model.FieldTypeCheckbox: render.WidgetCheckboxGroup,
	}

	for _, fieldType := range model.FieldTypes() {
		got, err := render.WidgetFor(fieldType)
		if err != nil {
			t.Fatalf("WidgetFor(%q): %v", fieldType, err)
		}
		if got != want[fieldType] {
			t.Fatalf("WidgetFor(%q) = %s, want %s", fieldType, got, want[fieldType])
		}
	}
}

func TestWidgetForUnknownType(t *testing.T) {
	if _, err := render.WidgetFor("color"); err == nil {
		t.Fatalf("expected error for unknown field type")
	}
}

func TestWidgetMarshalText(t *testing.T) {
	text, err := render.WidgetCheckboxGroup.MarshalText()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(text) != "checkbox" {
		t.Fatalf("unexpected text %q", text)
	}
}
