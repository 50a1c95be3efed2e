package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryIdempotent(t *testing.T) {
	reg := NewRegistry()
	id1 := reg.RegisterFile("a.qmd", []byte("hello"))
	id2 := reg.RegisterFile("a.qmd", []byte("ignored"))
	require.Equal(t, id1, id2)

	entry, err := reg.GetFile(id1)
	require.NoError(t, err)
	require.Equal(t, "hello", string(entry.Content))
}

func TestOffsetToLocation(t *testing.T) {
	reg := NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("# Hello\n\nWorld.\n"))
	entry, err := reg.GetFile(id)
	require.NoError(t, err)

	loc := entry.OffsetToLocation(9)
	require.Equal(t, Location{Offset: 9, Row: 2, Column: 0}, loc)

	off, ok := entry.LocationToOffset(2, 0)
	require.True(t, ok)
	require.Equal(t, 9, off)
}

func TestMapOffsetOriginal(t *testing.T) {
	reg := NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("---\ntitle: metadata1\n---\n"))

	si := NewOriginal(id, Range{Start: 11, End: 20})
	mapped, ok := MapOffset(si, 0, reg)
	require.True(t, ok)
	require.Equal(t, 1, mapped.Location.Row)
	require.Equal(t, 7, mapped.Location.Column)
}

func TestMapOffsetSubstring(t *testing.T) {
	reg := NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("*italic words*"))
	parent := NewOriginal(id, Range{Start: 1, End: 13})
	sub := NewSubstring(parent, 1, 5) // "talic"
	mapped, ok := MapOffset(sub, 0, reg)
	require.True(t, ok)
	require.Equal(t, 2, mapped.Location.Offset)
}

func TestMapOffsetConcat(t *testing.T) {
	reg := NewRegistry()
	id := reg.RegisterFile("a.qmd", []byte("abcdefgh"))
	p1 := NewOriginal(id, Range{Start: 0, End: 3}) // abc
	p2 := NewOriginal(id, Range{Start: 5, End: 8}) // fgh

	concat := NewConcat([]ConcatPiece{
		{Piece: p1, OffsetInConcat: 0},
		{Piece: p2, OffsetInConcat: 3},
	})
	require.Equal(t, 6, concat.Length())

	mapped, ok := MapOffset(concat, 4, reg)
	require.True(t, ok)
	require.Equal(t, 6, mapped.Location.Offset) // 'g'
}

func TestMapOffsetFilterProvenance(t *testing.T) {
	reg := NewRegistry()
	fp := NewFilterProvenance("toc")
	_, ok := MapOffset(fp, 0, reg)
	require.False(t, ok)
}
