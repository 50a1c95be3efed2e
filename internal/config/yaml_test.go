package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

func TestDecodeYAMLScalarsAndOrder(t *testing.T) {
	src := []byte("title: Hello\ntoc: true\ncount: 3\n")
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", src)
	bag := &diag.Bag{}

	v, err := DecodeYAML(src, file, reg, bag)
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind)
	require.False(t, bag.HasErrors())

	title, ok := v.Map.Get("title")
	require.True(t, ok)
	require.Equal(t, "Hello", title.Scalar)

	toc, ok := v.Map.Get("toc")
	require.True(t, ok)
	require.Equal(t, true, toc.Scalar)

	count, ok := v.Map.Get("count")
	require.True(t, ok)
	require.Equal(t, int64(3), count.Scalar)

	// Key order preserved.
	var keys []string
	for pair := v.Map.Oldest(); pair != nil; pair = pair.Next() {
		keys = append(keys, pair.Key)
	}
	require.Equal(t, []string{"title", "toc", "count"}, keys)
}

func TestDecodeYAMLTagsAndInterpretation(t *testing.T) {
	src := []byte("format: !prefer html\nincludes: !concat\n  - one.qmd\nbanner: !path assets/banner.png\n")
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", src)
	bag := &diag.Bag{}

	v, err := DecodeYAML(src, file, reg, bag)
	require.NoError(t, err)

	format, ok := v.Map.Get("format")
	require.True(t, ok)
	require.Equal(t, MergePrefer, format.MergeOp)

	includes, ok := v.Map.Get("includes")
	require.True(t, ok)
	require.Equal(t, MergeConcat, includes.MergeOp)

	banner, ok := v.Map.Get("banner")
	require.True(t, ok)
	require.Equal(t, KindPath, banner.Kind)
	require.Equal(t, "assets/banner.png", banner.Path)
}

func TestDecodeYAMLInvalidTagComponentWarns(t *testing.T) {
	src := []byte("x: !preferr 1\n")
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("book.yml", src)
	bag := &diag.Bag{}

	_, err := DecodeYAML(src, file, reg, bag)
	require.NoError(t, err)
	require.NotEmpty(t, bag.Items())
	require.Equal(t, "Q-1-21", bag.Items()[0].Code)
}
