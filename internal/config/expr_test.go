package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sourcemap"
)

func TestExprCacheEvalAndCompileOnce(t *testing.T) {
	cache := NewExprCache()

	input := map[string]any{"title": "Hello", "count": int64(3)}

	v, err := cache.Eval(".title", input)
	require.NoError(t, err)
	require.Equal(t, "Hello", v)

	// Same source string reuses the compiled query.
	v2, err := cache.Eval(".title", input)
	require.NoError(t, err)
	require.Equal(t, 1, len(cache.queries))
	_ = v2
}

func TestConfigValuePlainValue(t *testing.T) {
	si := sourcemap.SourceInfo{}
	m := NewOrderedMap()
	m.Set("title", NewScalar("Hello", si))
	m.Set("tags", ConfigValue{Kind: KindArray, Array: []ConfigValue{
		NewScalar("a", si), NewScalar("b", si),
	}})
	cv := ConfigValue{Kind: KindMap, Map: m}

	plain := cv.PlainValue()
	asMap, ok := plain.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Hello", asMap["title"])
	require.Equal(t, []any{"a", "b"}, asMap["tags"])
}
