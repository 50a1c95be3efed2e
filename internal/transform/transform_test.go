package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

func TestCalloutConversion(t *testing.T) {
	// ::: {.callout-warning}
	// ## Title
	//
	// Body
	// :::
	doc := &ast.Document{
		Blocks: []ast.Block{
			ast.Div{
				Attr: ast.Attr{Classes: []string{"callout-warning"}},
				Blocks: []ast.Block{
					ast.Header{Level: 2, Inlines: []ast.Inline{ast.Str{Text: "Title"}}},
					ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "Body"}}},
				},
			},
		},
	}
	ctx := &RenderContext{Document: doc, Diagnostics: &diag.Bag{}}
	require.NoError(t, Run([]AstTransform{Callout{}}, ctx))

	require.Len(t, doc.Blocks, 1)
	cn, ok := doc.Blocks[0].(ast.CustomBlockNode)
	require.True(t, ok)
	require.Equal(t, "Callout", cn.TypeName)
	require.Equal(t, "warning", cn.PlainData["type"])
	require.Equal(t, []ast.Inline{ast.Str{Text: "Title"}}, cn.Slots["title"].Inlines)
	require.Len(t, cn.Slots["content"].Blocks, 1)
}

func TestTOCGeneration(t *testing.T) {
	doc := &ast.Document{
		Meta: config.ConfigValue{Kind: config.KindNull},
		Blocks: []ast.Block{
			ast.Header{Level: 1, Inlines: []ast.Inline{ast.Str{Text: "Intro"}}},
			ast.Header{Level: 2, Inlines: []ast.Inline{ast.Str{Text: "Sub Section"}}},
		},
	}
	format := config.ConfigValue{Kind: config.KindMap, Map: config.NewOrderedMap()}
	format.Map.Set("toc", config.NewScalar(true, sourcemap.SourceInfo{}))

	ctx := &RenderContext{Document: doc, Format: format, Diagnostics: &diag.Bag{}}
	require.NoError(t, Run([]AstTransform{TOC{}}, ctx))

	nav, ok := getKey(doc.Meta, "navigation")
	require.True(t, ok)
	toc, ok := getKey(nav, "toc")
	require.True(t, ok)
	entries, ok := getKey(toc, "entries")
	require.True(t, ok)
	require.Len(t, entries.Array, 1)
	root := entries.Array[0]
	title, _ := getKey(root, "title")
	require.Equal(t, "Intro", title.Scalar)
	children, _ := getKey(root, "children")
	require.Len(t, children.Array, 1)
}

func TestTOCSkipsWhenAlreadyPresent(t *testing.T) {
	existing := config.NewOrderedMap()
	existing.Set("toc", config.NewScalar("already-there", sourcemap.SourceInfo{}))
	nav := config.ConfigValue{Kind: config.KindMap, Map: existing}
	metaMap := config.NewOrderedMap()
	metaMap.Set("navigation", nav)
	doc := &ast.Document{
		Meta: config.ConfigValue{Kind: config.KindMap, Map: metaMap},
		Blocks: []ast.Block{
			ast.Header{Level: 1, Inlines: []ast.Inline{ast.Str{Text: "Intro"}}},
		},
	}
	format := config.ConfigValue{Kind: config.KindMap, Map: config.NewOrderedMap()}
	format.Map.Set("toc", config.NewScalar(true, sourcemap.SourceInfo{}))

	ctx := &RenderContext{Document: doc, Format: format, Diagnostics: &diag.Bag{}}
	require.NoError(t, Run([]AstTransform{TOC{}}, ctx))

	navOut, _ := getKey(doc.Meta, "navigation")
	tocOut, _ := getKey(navOut, "toc")
	require.Equal(t, "already-there", tocOut.Scalar)
}
