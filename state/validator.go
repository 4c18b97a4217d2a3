package state

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/grovetools/toolchange/errors"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed state.schema.json
var embeddedSchemaData []byte

const schemaResource = SchemaID

// Validator validates decoded state documents against the embedded JSON Schema.
type Validator struct {
	schema *jsonschema.Schema
}

var (
	defaultValidator    *Validator
	defaultValidatorErr error
	defaultValidatorMu  sync.Once
)

// DefaultValidator returns the process-wide validator, compiling it on first use.
func DefaultValidator() (*Validator, error) {
	defaultValidatorMu.Do(func() {
		defaultValidator, defaultValidatorErr = NewValidator(embeddedSchemaData)
	})
	return defaultValidator, defaultValidatorErr
}

// NewValidator compiles a validator from schema bytes. A schema that cannot be
// compiled means the JSON capability the tracker relies on is unavailable.
func NewValidator(schemaData []byte) (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaResource, strings.NewReader(string(schemaData))); err != nil {
		return nil, errors.DependencyMissing("state JSON schema", err)
	}

	schema, err := compiler.Compile(schemaResource)
	if err != nil {
		return nil, errors.DependencyMissing("state JSON schema", err)
	}

	return &Validator{schema: schema}, nil
}

// Validate checks a value produced by json.Unmarshal into interface{}.
func (v *Validator) Validate(doc interface{}) error {
	if err := v.schema.Validate(doc); err != nil {
		if validationErr, ok := err.(*jsonschema.ValidationError); ok {
			var messages []string
			collectErrors(validationErr, &messages)
			if len(messages) == 0 {
				return fmt.Errorf("schema validation failed: %s", validationErr.Message)
			}
			return fmt.Errorf("schema validation failed: %s", strings.Join(messages, "; "))
		}
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

// collectErrors recursively collects leaf validation messages
func collectErrors(err *jsonschema.ValidationError, messages *[]string) {
	if len(err.Causes) == 0 {
		location := err.InstanceLocation
		if location == "" {
			location = "/"
		}
		*messages = append(*messages, fmt.Sprintf("%s: %s", location, err.Message))
		return
	}
	for _, cause := range err.Causes {
		collectErrors(cause, messages)
	}
}
