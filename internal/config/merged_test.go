package config

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/sourcemap"
)

func mapOf(pairs ...any) ConfigValue {
	m := NewOrderedMap()
	for i := 0; i < len(pairs); i += 2 {
		m.Set(pairs[i].(string), pairs[i+1].(ConfigValue))
	}
	return ConfigValue{Kind: KindMap, Map: m}
}

func TestMergedConfigGetAndContains(t *testing.T) {
	si := sourcemap.SourceInfo{}
	base := mapOf("title", NewScalar("Base", si), "toc", NewScalar(false, si))
	override := mapOf("title", NewScalar("Override", si))

	mc := NewMergedConfig([]ConfigValue{base, override})

	v, ok := mc.Get([]string{"title"})
	require.True(t, ok)
	require.Equal(t, "Override", v.Scalar)

	require.True(t, mc.Contains([]string{"toc"}))
	require.False(t, mc.Contains([]string{"missing"}))
}

func TestMergedConfigCursor(t *testing.T) {
	si := sourcemap.SourceInfo{}
	inner := mapOf("depth", NewScalar(int64(1), si))
	top := mapOf("nested", inner)

	mc := NewMergedConfig([]ConfigValue{top})
	v, ok := mc.Cursor().Key("nested").Key("depth").Value()
	require.True(t, ok)
	require.Equal(t, int64(1), v.Scalar)
}

func TestMergedConfigMaterializeNestingTooDeep(t *testing.T) {
	si := sourcemap.SourceInfo{}
	// Build a chain 5 maps deep: a -> b -> c -> d -> e
	leaf := mapOf("e", NewScalar("leaf", si))
	d := mapOf("d", leaf)
	c := mapOf("c", d)
	b := mapOf("b", c)
	a := mapOf("a", b)

	mc := NewMergedConfig([]ConfigValue{a})

	_, err := mc.Materialize(3)
	require.Error(t, err)
	var tooDeep *NestingTooDeepError
	require.ErrorAs(t, err, &tooDeep)
	require.Equal(t, 3, tooDeep.MaxDepth)

	v, err := mc.Materialize(10)
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind)
}
