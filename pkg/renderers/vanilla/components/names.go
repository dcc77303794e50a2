package components

// Canonical component names used by the vanilla renderer and default registry.
// They match render.Widget.String.
const (
	NameInput    = "input"
	NameTextarea = "textarea"
	NameSelect   = "select"
	NameRadio    = "radio"
	NameCheckbox = "checkbox"
)
