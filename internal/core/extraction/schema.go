package extraction

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// ResponseSchema renders the JSON Schema of the reply the AI parser expects.
func ResponseSchema() (string, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&aiGraph{})

	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to render response schema: %w", err)
	}
	return string(b), nil
}
