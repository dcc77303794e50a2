package render

import (
	"fmt"

	"github.com/goliatone/go-formflow/pkg/model"
)

// Widget is the control a field renders as. The set is closed and every
// FieldType maps to exactly one widget.
type Widget int

const (
	WidgetInput Widget = iota
	WidgetTextArea
	WidgetSelect
	WidgetRadioGroup
	WidgetCheckboxGroup
)

var widgetNames = [...]string{
	WidgetInput:         "input",
	WidgetTextArea:      "textarea",
	WidgetSelect:        "select",
	WidgetRadioGroup:    "radio",
	WidgetCheckboxGroup: "checkbox",
}

// String returns the component name renderers use to look the widget up.
func (w Widget) String() string {
	if w < 0 || int(w) >= len(widgetNames) {
		return fmt.Sprintf("widget(%d)", int(w))
	}
	return widgetNames[w]
}

// MarshalText lets template contexts see the component name instead of the
// ordinal.
func (w Widget) MarshalText() ([]byte, error) {
	return []byte(w.String()), nil
}

// WidgetFor maps a field type to its widget.
func WidgetFor(t model.FieldType) (Widget, error) {
	switch t {
	case model.FieldTypeTextarea:
		return WidgetTextArea, nil
	case model.FieldTypeDropdown:
		return WidgetSelect, nil
	case model.FieldTypeRadio:
		return WidgetRadioGroup, nil
	case model.FieldTypeCheckbox:
		return WidgetCheckboxGroup, nil
	case model.FieldTypeText, model.FieldTypeTel, model.FieldTypeEmail, model.FieldTypeDate:
		return WidgetInput, nil
	default:
		return 0, fmt.Errorf("render: no widget for field type %q", t)
	}
}
