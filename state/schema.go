package state

//go:generate sh -c "cd .. && go run ./tools/schema-generator/"

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// SchemaID is the canonical identifier of the state file schema.
const SchemaID = "https://github.com/grovetools/toolchange/state.schema.json"

// GenerateSchema reflects TrackingState into a JSON Schema document.
// The output is committed as state.schema.json and embedded for validation.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Unknown fields are tolerated on load.
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
		FieldNameTag:               "json",
	}

	schema := r.Reflect(&TrackingState{})
	schema.ID = jsonschema.ID(SchemaID)
	schema.Title = "Tool Change Tracking State"
	schema.Description = "Ordered tool changes of one print job and the progress cursor."

	return json.MarshalIndent(schema, "", "  ")
}
