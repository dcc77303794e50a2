package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"unicode/utf8"
)

// Value holds the current input of one field: free text for most field types,
// or an ordered selection of option values for checkbox fields.
type Value struct {
	text     string
	selected []string
	multi    bool
}

// TextValue returns a single-string value.
func TextValue(text string) Value {
	return Value{text: text}
}

// SelectionValue returns a multi-valued selection. Duplicates are dropped while
// keeping first-seen order.
func SelectionValue(values ...string) Value {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return Value{selected: out, multi: true}
}

// ZeroValue returns the initial value for a field of type t.
func ZeroValue(t FieldType) Value {
	if t.MultiValued() {
		return SelectionValue()
	}
	return TextValue("")
}

// IsSelection reports whether the value is multi-valued.
func (v Value) IsSelection() bool {
	return v.multi
}

// String returns the text of a single value. Selections return "".
func (v Value) String() string {
	return v.text
}

// Selected returns a copy of the selected option values.
func (v Value) Selected() []string {
	if !v.multi {
		return nil
	}
	return append([]string{}, v.selected...)
}

// Len is the length the validator measures: characters for text, number of
// selected options for selections.
func (v Value) Len() int {
	if v.multi {
		return len(v.selected)
	}
	return utf8.RuneCountInString(v.text)
}

// IsEmpty reports whether the value is an empty string or empty selection.
func (v Value) IsEmpty() bool {
	return v.Len() == 0
}

// Contains reports whether option is part of the selection, or equals the
// text for single values.
func (v Value) Contains(option string) bool {
	if v.multi {
		return slices.Contains(v.selected, option)
	}
	return v.text == option
}

// Toggle adds option to the selection when absent and removes it when
// present. Toggling a text value is a no-op.
func (v Value) Toggle(option string) Value {
	if !v.multi {
		return v
	}
	if idx := slices.Index(v.selected, option); idx >= 0 {
		next := make([]string, 0, len(v.selected)-1)
		next = append(next, v.selected[:idx]...)
		next = append(next, v.selected[idx+1:]...)
		return Value{selected: next, multi: true}
	}
	next := append(append([]string{}, v.selected...), option)
	return Value{selected: next, multi: true}
}

// Equal compares two values including their variant.
func (v Value) Equal(other Value) bool {
	if v.multi != other.multi {
		return false
	}
	if v.multi {
		return slices.Equal(v.selected, other.selected)
	}
	return v.text == other.text
}

// MarshalJSON encodes text as a JSON string and selections as an array.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.multi {
		selected := v.selected
		if selected == nil {
			selected = []string{}
		}
		return json.Marshal(selected)
	}
	return json.Marshal(v.text)
}

// UnmarshalJSON accepts a JSON string or an array of strings.
func (v *Value) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*v = TextValue(text)
		return nil
	}
	var selected []string
	if err := json.Unmarshal(data, &selected); err == nil {
		*v = SelectionValue(selected...)
		return nil
	}
	return fmt.Errorf("model: value must be a string or an array of strings, got %s", string(data))
}

// Values maps field ids to their current input. It is the FormValues payload
// sent on submission.
type Values map[string]Value

// NewValues seeds an entry for every field of every section of the schema.
func NewValues(schema FormSchema) Values {
	values := make(Values, schema.FieldCount())
	for _, section := range schema.Sections {
		for _, field := range section.Fields {
			values[field.ID] = ZeroValue(field.Type)
		}
	}
	return values
}

// Clone returns a deep copy.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	out := make(Values, len(v))
	for id, value := range v {
		if value.multi {
			out[id] = SelectionValue(value.selected...)
			continue
		}
		out[id] = value
	}
	return out
}

// ErrorMap maps field ids to a human readable validation message.
type ErrorMap map[string]string

// Clone returns a copy of the map.
func (e ErrorMap) Clone() ErrorMap {
	out := make(ErrorMap, len(e))
	for id, msg := range e {
		out[id] = msg
	}
	return out
}

// ErrUnknownField is returned when an operation names a field id that is not
// part of the schema.
var ErrUnknownField = errors.New("model: unknown field")
