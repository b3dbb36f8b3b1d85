package commands

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/invopop/jsonschema"
)

// ToolV0 is a navigation command exposed as a callable tool for a
// voice-intent dispatcher. Parameters is the JSON schema of the tool's
// argument object; Execute parses a raw JSON argument string and returns
// the short status phrase for the voice interface to speak.
type ToolV0 struct {
	Name        string
	Description string
	Parameters  *jsonschema.Schema
	Execute     func(arguments string) (string, error)
}

// NewTool builds a ToolV0 whose parameter schema is reflected from the
// handler's argument struct.
func NewTool[T any](name, description string, handler func(T) (string, error)) ToolV0 {
	reflector := jsonschema.Reflector{DoNotReference: true}

	var arguments T
	var schema *jsonschema.Schema
	if reflect.TypeOf(arguments).Kind() == reflect.Ptr {
		schema = reflector.ReflectFromType(reflect.TypeOf(arguments).Elem())
	} else {
		schema = reflector.Reflect(arguments)
	}

	return ToolV0{
		Name:        name,
		Description: description,
		Parameters:  schema,
		Execute: func(rawArguments string) (string, error) {
			var parsed T
			if rawArguments != "" {
				if err := json.Unmarshal([]byte(rawArguments), &parsed); err != nil {
					return "", fmt.Errorf("failed to parse arguments for tool %q: %w", name, err)
				}
			}
			return handler(parsed)
		},
	}
}
