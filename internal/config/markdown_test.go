package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// fakeInline is a minimal PandocInline stand-in so this package can
// exercise the coercion path without importing ast (which would be the
// exact cycle MarkdownParser's indirection exists to avoid).
type fakeInline struct {
	text string
	si   sourcemap.SourceInfo
}

func (fakeInline) IsPandocInline() {}

func withFakeMarkdownParser(t *testing.T) {
	t.Helper()
	prev := markdownParser
	SetMarkdownParser(func(text string, file sourcemap.FileID, base int) []PandocInline {
		return []PandocInline{fakeInline{text: text, si: sourcemap.NewOriginal(file, sourcemap.Range{Start: base, End: base + len(text)})}}
	})
	t.Cleanup(func() { markdownParser = prev })
}

func TestDecodeYAMLMarkdownTagCoercesToPandocInlines(t *testing.T) {
	withFakeMarkdownParser(t)

	src := []byte("headline: !md Hello\n")
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", src)
	bag := &diag.Bag{}

	v, err := DecodeYAML(src, file, reg, bag)
	require.NoError(t, err)

	headline, ok := v.Map.Get("headline")
	require.True(t, ok)
	require.Equal(t, KindPandocInlines, headline.Kind)
	require.Len(t, headline.Inlines, 1)
	require.Equal(t, "Hello", headline.Inlines[0].(fakeInline).text)
}

func TestDecodeYAMLMarkdownTagNoopWithoutParser(t *testing.T) {
	src := []byte("headline: !md Hello\n")
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", src)
	bag := &diag.Bag{}

	v, err := DecodeYAML(src, file, reg, bag)
	require.NoError(t, err)

	headline, ok := v.Map.Get("headline")
	require.True(t, ok)
	require.Equal(t, KindScalar, headline.Kind)
	require.Equal(t, "Hello", headline.Scalar)
}

func TestAsInlinesLazilyParsesPlainScalar(t *testing.T) {
	withFakeMarkdownParser(t)

	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", []byte("Plain text"))
	si := sourcemap.NewOriginal(file, sourcemap.Range{Start: 0, End: 10})
	v := NewScalar("Plain text", si)

	inlines, ok := v.AsInlines()
	require.True(t, ok)
	require.Len(t, inlines, 1)
	require.Equal(t, "Plain text", inlines[0].(fakeInline).text)
	// AsInlines doesn't mutate the source value.
	require.Equal(t, KindScalar, v.Kind)
}
