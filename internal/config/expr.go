package config

import (
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

// ExprCache compiles and caches !expr query strings, so a tag referenced
// from many documents (or many times within one) is parsed once.
type ExprCache struct {
	mu      sync.Mutex
	queries map[string]*gojq.Query
}

// NewExprCache returns an empty cache.
func NewExprCache() *ExprCache {
	return &ExprCache{queries: make(map[string]*gojq.Query)}
}

func (c *ExprCache) compile(src string) (*gojq.Query, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if q, ok := c.queries[src]; ok {
		return q, nil
	}
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("config: parsing expr %q: %w", src, err)
	}
	c.queries[src] = q
	return q, nil
}

// Eval runs a compiled !expr query against input (typically the
// top-level merged config tree rendered to plain Go values via
// ConfigValue.PlainValue), returning its first result.
func (c *ExprCache) Eval(src string, input any) (any, error) {
	q, err := c.compile(src)
	if err != nil {
		return nil, err
	}

	iter := q.Run(input)
	v, ok := iter.Next()
	if !ok {
		return nil, fmt.Errorf("config: expr %q produced no result", src)
	}
	if err, ok := v.(error); ok {
		return nil, fmt.Errorf("config: evaluating expr %q: %w", src, err)
	}
	return v, nil
}

// PlainValue converts a ConfigValue tree into plain Go values (string,
// bool, int64, float64, nil, []any, map[string]any) suitable as gojq
// input. PandocInlines/Blocks collapse to nil: expressions do not
// reach into rendered AST content.
func (c ConfigValue) PlainValue() any {
	switch c.Kind {
	case KindNull:
		return nil
	case KindScalar:
		return c.Scalar
	case KindPath:
		return c.Path
	case KindGlob:
		return c.Glob
	case KindExpr:
		return c.Expr
	case KindArray:
		out := make([]any, len(c.Array))
		for i, item := range c.Array {
			out[i] = item.PlainValue()
		}
		return out
	case KindMap:
		out := make(map[string]any)
		if c.Map != nil {
			for pair := c.Map.Oldest(); pair != nil; pair = pair.Next() {
				out[pair.Key] = pair.Value.PlainValue()
			}
		}
		return out
	default:
		return nil
	}
}
