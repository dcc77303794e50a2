package model

import (
	"encoding/json"
	"testing"
)

func TestValueJSONShape(t *testing.T) {
	values := Values{
		"name":  TextValue("Ada"),
		"langs": SelectionValue("go", "js"),
		"none":  SelectionValue(),
	}
	payload, err := json.Marshal(values)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"langs":["go","js"],"name":"Ada","none":[]}`
	if string(payload) != want {
		t.Fatalf("unexpected payload\nwant: %s\n got: %s", want, payload)
	}

	var decoded Values
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded["langs"].IsSelection() || decoded["name"].IsSelection() {
		t.Fatalf("variants not preserved: %#v", decoded)
	}
}

func TestValueUnmarshalRejectsNumbers(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`42`), &v); err == nil {
		t.Fatalf("expected error for numeric value")
	}
}

func TestToggle(t *testing.T) {
	v := SelectionValue("a")
	v = v.Toggle("b")
	if !v.Contains("b") || v.Len() != 2 {
		t.Fatalf("expected b to be added, got %v", v.Selected())
	}
	v = v.Toggle("a")
	if v.Contains("a") || v.Len() != 1 {
		t.Fatalf("expected a to be removed, got %v", v.Selected())
	}

	text := TextValue("a")
	if got := text.Toggle("b"); !got.Equal(text) {
		t.Fatalf("toggle on text value must be a no-op")
	}
}

func TestNewValuesCoversAllSections(t *testing.T) {
	schema := FormSchema{Sections: []Section{
		{Fields: []Field{{ID: "a", Type: FieldTypeText}}},
		{Fields: []Field{{ID: "b", Type: FieldTypeCheckbox, Options: []Option{{Value: "x"}}}}},
	}}
	values := NewValues(schema)
	if len(values) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(values))
	}
	if values["a"].IsSelection() || !values["b"].IsSelection() {
		t.Fatalf("unexpected zero values: %#v", values)
	}
}
