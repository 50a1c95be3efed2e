package writer

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/reader"
	"github.com/docforge/docforge/internal/sourcemap"
)

func TestWriteHTMLEscapesAndDispatches(t *testing.T) {
	doc := &ast.Document{
		Blocks: []ast.Block{
			ast.Paragraph{Inlines: []ast.Inline{
				ast.Str{Text: "<tom & jerry>"},
				ast.Space{},
				ast.Emph{Inlines: []ast.Inline{ast.Str{Text: "ok"}}},
			}},
		},
	}
	w := NewHTMLWriter()
	out, diags := w.WriteHTML(doc)
	require.Empty(t, diags)
	require.Contains(t, out, "&lt;tom &amp; jerry&gt;")
	require.Contains(t, out, "<em>ok</em>")
}

func TestWriteHTMLUnknownCustomNodeFallsBack(t *testing.T) {
	doc := &ast.Document{
		Blocks: []ast.Block{
			ast.CustomBlockNode{
				TypeName: "tabset",
				Attr:     ast.Attr{Classes: []string{"tabset"}},
				Slots: map[string]ast.Slot{
					"content": {Kind: ast.SlotBlocks, Blocks: []ast.Block{
						ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "body"}}},
					}},
				},
			},
		},
	}
	w := NewHTMLWriter()
	out, _ := w.WriteHTML(doc)
	require.Contains(t, out, `class="tabset"`)
	require.Contains(t, out, "body")
}

func TestWritePlainIsIdempotent(t *testing.T) {
	doc := &ast.Document{
		Blocks: []ast.Block{
			ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "hello"}, ast.Space{}, ast.Str{Text: "world"}}},
			ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "second"}}},
		},
	}
	first := WritePlain(doc)
	require.Equal(t, "hello world\n\nsecond", first)

	// Re-parsing the plaintext output (two paragraphs) and
	// re-rendering it must reproduce the same text (invariant 6).
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("out.txt", []byte(first))
	reparsed, _, _, err := reader.Read([]byte(first), file, reg, reader.Options{})
	require.NoError(t, err)
	require.Equal(t, first, WritePlain(reparsed))
}

func TestWriteJSONRoundTrip(t *testing.T) {
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("doc.md", []byte("*x*"))
	doc := &ast.Document{
		Meta: config.ConfigValue{Kind: config.KindNull},
		Blocks: []ast.Block{
			ast.Paragraph{
				Inlines: []ast.Inline{
					ast.Emph{
						Inlines: []ast.Inline{
							ast.Str{Text: "x", SI: sourcemap.NewOriginal(file, sourcemap.Range{Start: 1, End: 2})},
						},
						SI: sourcemap.NewOriginal(file, sourcemap.Range{Start: 0, End: 3}),
					},
				},
				SI: sourcemap.NewOriginal(file, sourcemap.Range{Start: 0, End: 3}),
			},
		},
	}

	data, diags, err := WriteJSON(doc, reg)
	require.NoError(t, err)
	require.Empty(t, diags)

	reg2 := sourcemap.NewRegistry()
	got, err := reader.ReadJSON(data, reg2)
	require.NoError(t, err)
	require.Len(t, got.Blocks, 1)
	para, ok := got.Blocks[0].(ast.Paragraph)
	require.True(t, ok)
	emph, ok := para.Inlines[0].(ast.Emph)
	require.True(t, ok)
	str, ok := emph.Inlines[0].(ast.Str)
	require.True(t, ok)
	require.Equal(t, "x", str.Text)
	require.Equal(t, 1, str.SI.StartOffset())
}
