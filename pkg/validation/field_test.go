package validation

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formflow/pkg/model"
)

func TestFieldRequired(t *testing.T) {
	textField := model.Field{ID: "name", Type: model.FieldTypeText, Required: true}
	boxField := model.Field{ID: "tags", Type: model.FieldTypeCheckbox, Required: true}

	cases := []struct {
		name  string
		value model.Value
		field model.Field
		want  string
	}{
		{name: "empty string", value: model.TextValue(""), field: textField, want: MessageRequired},
		{name: "empty selection", value: model.SelectionValue(), field: boxField, want: MessageRequired},
		{name: "text present", value: model.TextValue("Ada"), field: textField, want: ""},
		{name: "selection present", value: model.SelectionValue("x"), field: boxField, want: ""},
		{name: "optional empty", value: model.TextValue(""), field: model.Field{ID: "nick", Type: model.FieldTypeText}, want: ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Field(tc.value, tc.field); got != tc.want {
				t.Fatalf("Field() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFieldLengthBounds(t *testing.T) {
	field := model.Field{ID: "code", Type: model.FieldTypeText, MinLength: 3, MaxLength: 5}

	cases := map[string]string{
		"ab":     "Minimum length is 3 characters",
		"abc":    "",
		"abcde":  "",
		"abcdef": "Maximum length is 5 characters",
	}
	for input, want := range cases {
		if got := Field(model.TextValue(input), field); got != want {
			t.Fatalf("Field(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFieldLengthCountsRunes(t *testing.T) {
	field := model.Field{ID: "city", Type: model.FieldTypeText, MinLength: 3}
	if got := Field(model.TextValue("Åre"), field); got != "" {
		t.Fatalf("expected three-rune value to satisfy minLength, got %q", got)
	}
}

func TestFieldZeroBoundsAreIgnored(t *testing.T) {
	field := model.Field{ID: "free", Type: model.FieldTypeText, MinLength: 0, MaxLength: 0}
	if got := Field(model.TextValue("anything goes"), field); got != "" {
		t.Fatalf("expected zero bounds to be ignored, got %q", got)
	}
}

func TestFieldRequiredWinsOverMinLength(t *testing.T) {
	field := model.Field{ID: "bio", Type: model.FieldTypeTextarea, Required: true, MinLength: 10}
	if got := Field(model.TextValue(""), field); got != MessageRequired {
		t.Fatalf("expected required message first, got %q", got)
	}
}

func TestFieldEmail(t *testing.T) {
	field := model.Field{ID: "email", Type: model.FieldTypeEmail}

	cases := map[string]string{
		"a@b.co":   "",
		"a@b":      MessageInvalidEmail,
		"a.com":    MessageInvalidEmail,
		"a b@c.de": MessageInvalidEmail,
		"":         "",
	}
	for input, want := range cases {
		if got := Field(model.TextValue(input), field); got != want {
			t.Fatalf("Field(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFieldPhone(t *testing.T) {
	field := model.Field{ID: "phone", Type: model.FieldTypeTel}

	cases := map[string]string{
		"1234567890":  "",
		"123":         MessageInvalidPhone,
		"12345678901": MessageInvalidPhone,
		"12345abcde":  MessageInvalidPhone,
		"":            "",
	}
	for input, want := range cases {
		if got := Field(model.TextValue(input), field); got != want {
			t.Fatalf("Field(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestFieldCheckboxLengthCountsSelections(t *testing.T) {
	field := model.Field{ID: "langs", Type: model.FieldTypeCheckbox, MinLength: 2, Options: []model.Option{{Value: "go"}, {Value: "js"}}}
	if got := Field(model.SelectionValue("go"), field); got != "Minimum length is 2 characters" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := Field(model.SelectionValue("go", "js"), field); got != "" {
		t.Fatalf("expected two selections to pass, got %q", got)
	}
}

func TestSection(t *testing.T) {
	fields := []model.Field{
		{ID: "name", Type: model.FieldTypeText, Required: true},
		{ID: "email", Type: model.FieldTypeEmail, Required: true},
		{ID: "phone", Type: model.FieldTypeTel},
	}
	values := model.Values{
		"name":  model.TextValue("Ada"),
		"email": model.TextValue("not-an-email"),
		"phone": model.TextValue(""),
	}

	got := Section(values, fields)
	want := model.ErrorMap{"email": MessageInvalidEmail}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("section errors mismatch (-want +got):\n%s", diff)
	}

	values["email"] = model.TextValue("ada@example.com")
	if got := Section(values, fields); len(got) != 0 {
		t.Fatalf("expected valid section, got %v", got)
	}
}
