package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sourcemap"
)

type projectMeta struct {
	Title string `json:"title" jsonschema:"required"`
	TOC   bool   `json:"toc"`
}

func TestSchemaValidateAcceptsConformingDocument(t *testing.T) {
	schema := SchemaFor(&projectMeta{})
	compiled, err := CompileSchema(schema)
	require.NoError(t, err)

	si := sourcemap.SourceInfo{}
	m := NewOrderedMap()
	m.Set("title", NewScalar("My Book", si))
	m.Set("toc", NewScalar(true, si))
	cv := ConfigValue{Kind: KindMap, Map: m, SourceInfo: si}

	diags := compiled.Validate(cv)
	require.Empty(t, diags)
}

func TestSchemaValidateRejectsMissingRequired(t *testing.T) {
	schema := SchemaFor(&projectMeta{})
	compiled, err := CompileSchema(schema)
	require.NoError(t, err)

	si := sourcemap.SourceInfo{}
	m := NewOrderedMap()
	m.Set("toc", NewScalar(true, si))
	cv := ConfigValue{Kind: KindMap, Map: m, SourceInfo: si}

	diags := compiled.Validate(cv)
	require.NotEmpty(t, diags)
}
