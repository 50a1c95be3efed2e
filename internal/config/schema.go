package config

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	kjsonschema "github.com/kaptinlin/jsonschema"

	"github.com/docforge/docforge/internal/diag"
)

// keywordCodes maps a JSON Schema validation keyword to the stable
// Q-1-nn diagnostic code it produces.
var keywordCodes = map[string]string{
	"required":             "Q-1-11",
	"type":                 "Q-1-12",
	"enum":                 "Q-1-13",
	"pattern":              "Q-1-14",
	"minimum":              "Q-1-15",
	"maximum":              "Q-1-15",
	"minLength":            "Q-1-15",
	"maxLength":            "Q-1-15",
	"additionalProperties": "Q-1-16",
}

// SchemaFor reflects a Go struct describing a configuration shape
// (project metadata, format options, ...) into a JSON Schema document.
func SchemaFor(v any) *jsonschema.Schema {
	r := &jsonschema.Reflector{ExpandedStruct: true, DoNotReference: true}
	return r.Reflect(v)
}

// CompiledSchema wraps a compiled validator for repeated use across
// documents sharing the same configuration shape.
type CompiledSchema struct {
	schema *kjsonschema.Schema
}

// CompileSchema compiles a JSON Schema document, typically one produced
// by SchemaFor, for repeated validation.
func CompileSchema(schema *jsonschema.Schema) (*CompiledSchema, error) {
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("config: marshaling schema: %w", err)
	}
	compiler := kjsonschema.NewCompiler()
	compiled, err := compiler.Compile(raw)
	if err != nil {
		return nil, fmt.Errorf("config: compiling schema: %w", err)
	}
	return &CompiledSchema{schema: compiled}, nil
}

// Validate checks cv against the compiled schema, translating each
// violation into a ValidationDiagnostic carrying cv's own source
// location (schema validation errors describe a JSON Pointer into the
// instance, not a byte range, so every emitted diagnostic points at the
// validated node as a whole rather than the specific failing key).
func (s *CompiledSchema) Validate(cv ConfigValue) []diag.Diagnostic {
	result := s.schema.Validate(cv.PlainValue())
	if result.IsValid() {
		return nil
	}

	var out []diag.Diagnostic
	flattenSchemaErrors(result.ToList(), cv, &out)
	return out
}

func flattenSchemaErrors(list *kjsonschema.List, cv ConfigValue, out *[]diag.Diagnostic) {
	if list == nil {
		return
	}
	for keyword, msg := range list.Errors {
		code := keywordCodes[keyword]
		if code == "" {
			code = "Q-1-10"
		}
		b := diag.New(diag.Error, "configuration does not match its schema").
			Code(code).
			Problem(msg)
		if cv.SourceInfo.Length() > 0 || cv.SourceInfo.Kind != 0 {
			b = b.At(cv.SourceInfo)
		}
		*out = append(*out, b.Build())
	}
	for _, d := range list.Details {
		flattenSchemaErrors(d, cv, out)
	}
}
