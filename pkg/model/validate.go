package model

import (
	"errors"
	"fmt"
	"strings"
)

var (
	errNoSections     = errors.New("model: form has no sections")
	errFieldIDMissing = errors.New("model: field id is required")
)

// Validate checks the structural shape of a fetched schema: at least one
// section, unique non-empty field ids, known field types and options for the
// choice fields.
func (s FormSchema) Validate() error {
	if len(s.Sections) == 0 {
		return errNoSections
	}

	seen := make(map[string]struct{}, s.FieldCount())
	for si, section := range s.Sections {
		for fi, field := range section.Fields {
			id := strings.TrimSpace(field.ID)
			if id == "" {
				return fmt.Errorf("%w (section %d, field %d)", errFieldIDMissing, si, fi)
			}
			if _, exists := seen[id]; exists {
				return fmt.Errorf("model: duplicate field id %q", id)
			}
			seen[id] = struct{}{}

			if !field.Type.Known() {
				return fmt.Errorf("model: field %q has unsupported type %q", id, field.Type)
			}
			if field.Type.HasOptions() && len(field.Options) == 0 {
				return fmt.Errorf("model: field %q of type %q requires options", id, field.Type)
			}
			if field.MinLength < 0 || field.MaxLength < 0 {
				return fmt.Errorf("model: field %q has negative length bounds", id)
			}
		}
	}
	return nil
}
