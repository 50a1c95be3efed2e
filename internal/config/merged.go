package config

import "fmt"

// DefaultMaxDepth is materialize's default nesting bound.
const DefaultMaxDepth = 256

// NestingTooDeepError reports that a MergedConfig's tree exceeds the
// bound passed to Materialize.
type NestingTooDeepError struct {
	MaxDepth int
	Path     []string
}

func (e *NestingTooDeepError) Error() string {
	return fmt.Sprintf("config: nesting exceeds max depth %d at %v", e.MaxDepth, e.Path)
}

// MergedConfig is a logical view over an ordered sequence of ConfigValue
// layers (earlier = lower precedence).
type MergedConfig struct {
	layers []ConfigValue
	merged *ConfigValue // memoized eager merge; merge is pure so caching is safe
}

// NewMergedConfig builds a view over layers. The slice is retained but
// never mutated.
func NewMergedConfig(layers []ConfigValue) *MergedConfig {
	return &MergedConfig{layers: append([]ConfigValue(nil), layers...)}
}

func (m *MergedConfig) full() ConfigValue {
	if m.merged == nil {
		v := MergeLayers(m.layers)
		m.merged = &v
	}
	return *m.merged
}

// Contains reports whether path resolves to a non-null value.
func (m *MergedConfig) Contains(path []string) bool {
	v, ok := m.Get(path)
	return ok && v.Kind != KindNull
}

// Get walks the merged view down path (map keys only — array indices
// are addressed via Cursor.Index), returning the resolved ConfigValue.
func (m *MergedConfig) Get(path []string) (ConfigValue, bool) {
	cur := m.full()
	for _, seg := range path {
		if cur.Kind != KindMap || cur.Map == nil {
			return ConfigValue{}, false
		}
		next, ok := cur.Map.Get(seg)
		if !ok {
			return ConfigValue{}, false
		}
		cur = next
	}
	return cur, true
}

// Materialize converts the lazy view into an owned ConfigValue tree,
// failing with NestingTooDeepError if any path exceeds maxDepth. A
// maxDepth of 0 uses DefaultMaxDepth.
func (m *MergedConfig) Materialize(maxDepth int) (ConfigValue, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	v := m.full()
	if path, depth := deepestPath(v, nil, 0); depth > maxDepth {
		return ConfigValue{}, &NestingTooDeepError{MaxDepth: maxDepth, Path: path}
	}
	return v, nil
}

// deepestPath returns the path to, and depth of, the deepest node under v.
func deepestPath(v ConfigValue, path []string, depth int) ([]string, int) {
	bestPath, bestDepth := path, depth

	switch v.Kind {
	case KindMap:
		if v.Map != nil {
			for pair := v.Map.Oldest(); pair != nil; pair = pair.Next() {
				childPath := append(append([]string(nil), path...), pair.Key)
				p, d := deepestPath(pair.Value, childPath, depth+1)
				if d > bestDepth {
					bestPath, bestDepth = p, d
				}
			}
		}
	case KindArray:
		for _, item := range v.Array {
			p, d := deepestPath(item, path, depth+1)
			if d > bestDepth {
				bestPath, bestDepth = p, d
			}
		}
	}
	return bestPath, bestDepth
}

// Cursor supports stepping into map keys / array indices of the merged view.
type Cursor struct {
	cfg  *MergedConfig
	path []string
}

// Cursor returns a cursor rooted at the merged view's top level.
func (m *MergedConfig) Cursor() *Cursor {
	return &Cursor{cfg: m}
}

// Key steps into a map key, returning a new cursor.
func (c *Cursor) Key(name string) *Cursor {
	return &Cursor{cfg: c.cfg, path: append(append([]string(nil), c.path...), name)}
}

// Value resolves the cursor's current path against the merged view.
func (c *Cursor) Value() (ConfigValue, bool) {
	return c.cfg.Get(c.path)
}

// Index steps into an array element, returning the resolved element (or
// false if the current path doesn't resolve to an array, or the index
// is out of range).
func (c *Cursor) Index(i int) (ConfigValue, bool) {
	v, ok := c.cfg.Get(c.path)
	if !ok || v.Kind != KindArray || i < 0 || i >= len(v.Array) {
		return ConfigValue{}, false
	}
	return v.Array[i], true
}
