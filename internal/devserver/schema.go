package devserver

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/model"
)

// LoadSchema reads a form schema from a JSON or YAML file. Both formats use
// the wire field names (formTitle, fieldId, ...).
func LoadSchema(path string) (model.FormSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.FormSchema{}, fmt.Errorf("devserver: read schema: %w", err)
	}
	return ParseSchema(data)
}

// ParseSchema decodes and validates a schema document. JSON input is
// accepted because it is valid YAML.
func ParseSchema(data []byte) (model.FormSchema, error) {
	var schema model.FormSchema
	if err := yaml.Unmarshal(data, &schema); err != nil {
		return model.FormSchema{}, fmt.Errorf("devserver: decode schema: %w", err)
	}
	if err := schema.Validate(); err != nil {
		return model.FormSchema{}, fmt.Errorf("devserver: %w", err)
	}
	return schema, nil
}
