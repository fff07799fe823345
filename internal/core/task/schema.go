package task

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var recordSchema string

const recordSchemaURL = "tick://task.schema.json"

var compileRecordSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	if err := compiler.AddResource(recordSchemaURL, strings.NewReader(recordSchema)); err != nil {
		return nil, fmt.Errorf("add task schema: %w", err)
	}
	return compiler.Compile(recordSchemaURL)
})

// CheckRecord validates a single exported task record. Schema violations
// are returned as a *ValidationError naming the first offending field.
func CheckRecord(raw json.RawMessage) error {
	schema, err := compileRecordSchema()
	if err != nil {
		return fmt.Errorf("compile task schema: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &ValidationError{Field: "record", Message: fmt.Sprintf("malformed record: %v", err)}
	}

	if err := schema.Validate(doc); err != nil {
		return schemaError(err)
	}
	return nil
}

func schemaError(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Field: "record", Message: err.Error()}
	}

	leaf := firstLeaf(ve)
	field := strings.TrimPrefix(leaf.InstanceLocation, "/")
	if field == "" {
		field = "record"
	}
	return &ValidationError{Field: field, Message: fmt.Sprintf("%s: %s", field, leaf.Message)}
}

func firstLeaf(ve *jsonschema.ValidationError) *jsonschema.ValidationError {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
