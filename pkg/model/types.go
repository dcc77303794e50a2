package model

import "strings"

// FieldType enumerates the field kinds a form schema may declare. The set is
// closed: schemas naming any other type are rejected by FormSchema.Validate.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTel      FieldType = "tel"
	FieldTypeEmail    FieldType = "email"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeDate     FieldType = "date"
	FieldTypeDropdown FieldType = "dropdown"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
)

// FieldTypes lists every supported field type in declaration order.
func FieldTypes() []FieldType {
	return []FieldType{
		FieldTypeText,
		FieldTypeTel,
		FieldTypeEmail,
		FieldTypeTextarea,
		FieldTypeDate,
		FieldTypeDropdown,
		FieldTypeRadio,
		FieldTypeCheckbox,
	}
}

// Known reports whether t is one of the supported field types.
func (t FieldType) Known() bool {
	for _, candidate := range FieldTypes() {
		if candidate == t {
			return true
		}
	}
	return false
}

// HasOptions reports whether fields of this type pick from a list of options.
func (t FieldType) HasOptions() bool {
	switch t {
	case FieldTypeDropdown, FieldTypeRadio, FieldTypeCheckbox:
		return true
	default:
		return false
	}
}

// MultiValued reports whether the field collects a selection rather than a
// single string.
func (t FieldType) MultiValued() bool {
	return t == FieldTypeCheckbox
}

// Option is a selectable entry of a dropdown, radio or checkbox field.
type Option struct {
	Value      string `json:"value" yaml:"value"`
	Label      string `json:"label" yaml:"label"`
	DataTestID string `json:"dataTestId,omitempty" yaml:"dataTestId,omitempty"`
}

// Field describes a single input of a form section. MinLength and MaxLength
// are ignored when zero.
type Field struct {
	ID          string    `json:"fieldId" yaml:"fieldId"`
	Type        FieldType `json:"type" yaml:"type"`
	Label       string    `json:"label" yaml:"label"`
	Required    bool      `json:"required" yaml:"required"`
	MinLength   int       `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength   int       `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
	Placeholder string    `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []Option  `json:"options,omitempty" yaml:"options,omitempty"`
	DataTestID  string    `json:"dataTestId,omitempty" yaml:"dataTestId,omitempty"`
}

// HasOption reports whether value is one of the field's option values.
func (f Field) HasOption(value string) bool {
	for _, option := range f.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

// Section groups the fields shown together on one page of the form.
type Section struct {
	Title       string  `json:"title" yaml:"title"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Fields      []Field `json:"fields" yaml:"fields"`
}

// FormSchema is the form definition fetched from the remote service. It is
// treated as immutable once fetched.
type FormSchema struct {
	Title    string    `json:"formTitle" yaml:"formTitle"`
	Version  string    `json:"version,omitempty" yaml:"version,omitempty"`
	Sections []Section `json:"sections" yaml:"sections"`
}

// Field looks up a field by id across all sections.
func (s FormSchema) Field(id string) (Field, bool) {
	for _, section := range s.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return Field{}, false
}

// FieldCount returns the number of fields across all sections.
func (s FormSchema) FieldCount() int {
	total := 0
	for _, section := range s.Sections {
		total += len(section.Fields)
	}
	return total
}

// Identity is the credential created at login and cached for the rest of the
// browser session.
type Identity struct {
	RollNumber string `json:"rollNumber"`
	Name       string `json:"name"`
}

// Normalize returns a copy with surrounding whitespace removed.
func (i Identity) Normalize() Identity {
	return Identity{
		RollNumber: strings.TrimSpace(i.RollNumber),
		Name:       strings.TrimSpace(i.Name),
	}
}

// Empty reports whether the identity carries no roll number.
func (i Identity) Empty() bool {
	return strings.TrimSpace(i.RollNumber) == ""
}
