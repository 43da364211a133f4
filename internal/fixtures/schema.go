package fixtures

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrSchemaViolation = errors.New("fixtures: seed does not match schema")

// Violation is one schema failure, located by JSON pointer into the seed.
type Violation struct {
	Path    string
	Message string
}

// SchemaError lists every violation found in a seed document.
type SchemaError struct {
	Violations []Violation
}

func (e *SchemaError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "/"
		}
		parts = append(parts, path+": "+v.Message)
	}
	return ErrSchemaViolation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *SchemaError) Unwrap() error { return ErrSchemaViolation }

func compileSchema(name string, raw []byte) (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(name, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("fixtures: load schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("fixtures: compile schema %s: %w", name, err)
	}
	return schema, nil
}

// checkSchema validates a YAML decoded document. It goes through JSON first
// so maps and numbers have the shapes the validator expects.
func checkSchema(schema *jsonschema.Schema, document any) error {
	encoded, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("fixtures: normalise seed: %w", err)
	}
	decoder := json.NewDecoder(bytes.NewReader(encoded))
	decoder.UseNumber()
	var normalized any
	if err := decoder.Decode(&normalized); err != nil {
		return fmt.Errorf("fixtures: normalise seed: %w", err)
	}

	err = schema.Validate(normalized)
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	out := &SchemaError{}
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			out.Violations = append(out.Violations, Violation{Path: node.InstanceLocation, Message: node.Message})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(verr)
	return out
}
