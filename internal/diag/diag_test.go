package diag

import (
	"bytes"
	"testing"

	"github.com/docforge/docforge/internal/sourcemap"
	"github.com/stretchr/testify/require"
)

func TestBagHasErrors(t *testing.T) {
	var bag Bag
	bag.Add(New(Warning, "unknown tag component").Code("Q-1-21").Build())
	require.False(t, bag.HasErrors())
	bag.Add(New(Error, "nesting too deep").Build())
	require.True(t, bag.HasErrors())
}

func TestRenderJSONOrdersByOffset(t *testing.T) {
	reg := sourcemap.NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("0123456789"))
	late := sourcemap.NewOriginal(id, sourcemap.Range{Start: 8, End: 9})
	early := sourcemap.NewOriginal(id, sourcemap.Range{Start: 1, End: 2})

	items := []Diagnostic{
		New(Error, "late").At(late).Build(),
		New(Error, "early").At(early).Build(),
		New(Info, "no location").Build(),
	}
	out, err := RenderJSON(items)
	require.NoError(t, err)
	require.Contains(t, string(out), `"no location"`)

	// "no location" (missing) sorts first, then "early", then "late".
	noLocIdx := bytes.Index(out, []byte("no location"))
	earlyIdx := bytes.Index(out, []byte(`"early"`))
	lateIdx := bytes.Index(out, []byte(`"late"`))
	require.True(t, noLocIdx < earlyIdx)
	require.True(t, earlyIdx < lateIdx)
}

func TestTextRendererCodeFrame(t *testing.T) {
	reg := sourcemap.NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("# Hello\n\nWorld.\n"))
	si := sourcemap.NewOriginal(id, sourcemap.Range{Start: 9, End: 14})

	color := false
	r := NewTextRenderer(reg, 0, &color)
	var buf bytes.Buffer
	err := r.Render(&buf, []Diagnostic{New(Error, "bad word").At(si).Build()})
	require.NoError(t, err)
	require.Contains(t, buf.String(), "a.qmd:3:1")
	require.Contains(t, buf.String(), "World")
}
