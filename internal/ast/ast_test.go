package ast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sourcemap"
)

func TestStructuralHashIgnoresSourceInfo(t *testing.T) {
	siA := sourcemap.NewOriginal(0, sourcemap.Range{Start: 0, End: 5})
	siB := sourcemap.NewOriginal(1, sourcemap.Range{Start: 100, End: 105})

	a := Paragraph{Inlines: []Inline{Str{Text: "hello", SI: siA}}, SI: siA}
	b := Paragraph{Inlines: []Inline{Str{Text: "hello", SI: siB}}, SI: siB}

	require.Equal(t, StructuralHash(a), StructuralHash(b))
}

func TestStructuralHashDiffersOnContent(t *testing.T) {
	si := sourcemap.SourceInfo{}
	a := Paragraph{Inlines: []Inline{Str{Text: "hello", SI: si}}}
	b := Paragraph{Inlines: []Inline{Str{Text: "world", SI: si}}}

	require.NotEqual(t, StructuralHash(a), StructuralHash(b))
}

func TestDocumentWalkRecursesContainers(t *testing.T) {
	si := sourcemap.SourceInfo{}
	doc := &Document{
		Blocks: []Block{
			Div{Blocks: []Block{Paragraph{Inlines: []Inline{Str{Text: "inner", SI: si}}, SI: si}}, SI: si},
		},
	}

	var seen []Block
	doc.Walk(func(b Block) bool {
		seen = append(seen, b)
		return true
	})
	require.Len(t, seen, 2)
	_, isDiv := seen[0].(Div)
	require.True(t, isDiv)
	_, isPara := seen[1].(Paragraph)
	require.True(t, isPara)
}

func TestCustomNodeImplementsConfigMarkerInterfaces(t *testing.T) {
	var _ Block = CustomBlockNode{}
	var _ Inline = CustomInlineNode{}
}
