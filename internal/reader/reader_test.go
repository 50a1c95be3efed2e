package reader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/sourcemap"
)

func readSrc(t *testing.T, src string, opts Options) (*ast.Document, *sourcemap.Registry) {
	t.Helper()
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("test.qmd", []byte(src))
	doc, _, diags, err := Read([]byte(src), file, reg, opts)
	require.NoError(t, err)
	require.Empty(t, diags)
	return doc, reg
}

func TestReadSimpleDocument(t *testing.T) {
	doc, _ := readSrc(t, "# Hello\n\nWorld.\n", Options{})
	require.Len(t, doc.Blocks, 2)

	h, ok := doc.Blocks[0].(ast.Header)
	require.True(t, ok)
	require.Equal(t, 1, h.Level)
	require.Equal(t, "Hello", h.Inlines[0].(ast.Str).Text)
	require.Equal(t, 0, h.SourceInfo().StartOffset())

	p, ok := doc.Blocks[1].(ast.Paragraph)
	require.True(t, ok)
	require.Equal(t, "World", p.Inlines[0].(ast.Str).Text)
}

func TestFrontMatterValueOffset(t *testing.T) {
	doc, _ := readSrc(t, "---\ntitle: metadata1\n---\n", Options{})
	require.Equal(t, 0, len(doc.Blocks))

	require.Equal(t, config.KindMap, doc.Meta.Kind)
	title, ok := doc.Meta.Map.Get("title")
	require.True(t, ok)

	require.Equal(t, config.KindPandocInlines, title.Kind)
	require.Len(t, title.Inlines, 1)
	str, ok := title.Inlines[0].(ast.Str)
	require.True(t, ok)
	require.Equal(t, "metadata1", str.Text)
	require.Equal(t, 11, str.SourceInfo().StartOffset())
}

func TestTightVsLooseList(t *testing.T) {
	tight, _ := readSrc(t, "- a\n- b\n", Options{})
	require.Len(t, tight.Blocks, 1)
	bl, ok := tight.Blocks[0].(ast.BulletList)
	require.True(t, ok)
	require.Len(t, bl.Items, 2)
	for _, item := range bl.Items {
		require.Len(t, item, 1)
		_, isPlain := item[0].(ast.Plain)
		require.True(t, isPlain)
	}

	loose, _ := readSrc(t, "- a\n\n- b\n", Options{})
	require.Len(t, loose.Blocks, 1)
	bl2, ok := loose.Blocks[0].(ast.BulletList)
	require.True(t, ok)
	require.Len(t, bl2.Items, 2)
	for _, item := range bl2.Items {
		require.Len(t, item, 1)
		_, isPara := item[0].(ast.Paragraph)
		require.True(t, isPara)
	}
}

func TestOrderedListStart(t *testing.T) {
	doc, _ := readSrc(t, "5. x\n6. y\n", Options{})
	require.Len(t, doc.Blocks, 1)
	ol, ok := doc.Blocks[0].(ast.OrderedList)
	require.True(t, ok)
	require.Equal(t, 5, ol.Start)
	require.Equal(t, ast.DelimiterPeriod, ol.Delimiter)
	require.Len(t, ol.Items, 2)
}

func TestFencedCodeBlockInfoString(t *testing.T) {
	doc, _ := readSrc(t, "```python extra info\nprint(1)\n```\n", Options{})
	require.Len(t, doc.Blocks, 1)
	cb, ok := doc.Blocks[0].(ast.CodeBlock)
	require.True(t, ok)
	require.Equal(t, []string{"python"}, cb.Attr.Classes)
	info, ok := cb.Attr.Get("info")
	require.True(t, ok)
	require.Equal(t, "extra info", info)
	require.Equal(t, "print(1)\n", cb.Text)
}

func TestEmphasisWhitespaceSplit(t *testing.T) {
	doc, _ := readSrc(t, "_ x _\n", Options{})
	p := doc.Blocks[0].(ast.Paragraph)
	require.GreaterOrEqual(t, len(p.Inlines), 1)
}
