// Package config implements the layered, source-mapped configuration
// value (C4): a lazy merge of tagged YAML layers with explicit merge
// operators and interpretation hints, materializable into an owned tree.
package config

import (
	orderedmap "github.com/pb33f/ordered-map/v2"

	"github.com/docforge/docforge/internal/sourcemap"
)

// PandocInline and PandocBlock are implemented by the ast package's
// concrete Inline/Block node types. config deliberately does not import
// ast (ast imports config, for the Document.Meta field) — these marker
// interfaces let a ConfigValue carry rendered AST content without a
// reverse dependency.
type PandocInline interface{ IsPandocInline() }
type PandocBlock interface{ IsPandocBlock() }

// MergeOp is the explicit merge operator carried by a YAML tag.
type MergeOp int

const (
	// MergeReplace is the default: B wins over A unless A was tagged !prefer.
	MergeReplace MergeOp = iota
	MergePrefer
	MergeConcat
)

// Interpretation is a YAML tag hint describing how a scalar should be
// coerced when a consumer requests a documentary form.
type Interpretation int

const (
	InterpNone Interpretation = iota
	InterpMarkdown
	InterpPlainString
	InterpPath
	InterpGlob
	InterpExpr
)

// ValueKind discriminates the ConfigValue payload variants.
type ValueKind int

const (
	KindNull ValueKind = iota
	KindScalar
	KindArray
	KindMap
	KindPandocInlines
	KindPandocBlocks
	KindPath
	KindGlob
	KindExpr
)

// OrderedMap is the key-ordered map backing ConfigValue's Map variant;
// key insertion order is preserved exactly as the source YAML wrote it.
type OrderedMap = orderedmap.OrderedMap[string, ConfigValue]

// NewOrderedMap constructs an empty OrderedMap.
func NewOrderedMap() *OrderedMap { return orderedmap.New[string, ConfigValue]() }

// ConfigValue is one source-mapped, tag-annotated layer value (C4).
type ConfigValue struct {
	Kind ValueKind

	Scalar  any // string, bool, int64, float64, or nil
	Array   []ConfigValue
	Map     *OrderedMap
	Inlines []PandocInline
	Blocks  []PandocBlock
	Path    string
	Glob    string
	Expr    string

	SourceInfo sourcemap.SourceInfo
	// KeySourceInfo is set on Map-entry values, pointing at the YAML key
	// token rather than the value token; nil for non-map-entry values.
	KeySourceInfo *sourcemap.SourceInfo

	MergeOp        MergeOp
	Interpretation Interpretation
}

// Null returns a KindNull ConfigValue at the given source location.
func Null(si sourcemap.SourceInfo) ConfigValue {
	return ConfigValue{Kind: KindNull, SourceInfo: si}
}

// NewScalar wraps a plain scalar value.
func NewScalar(v any, si sourcemap.SourceInfo) ConfigValue {
	return ConfigValue{Kind: KindScalar, Scalar: v, SourceInfo: si}
}

// IsTruthy reports whether the value is non-null/non-empty, used by
// consumers that need a boolean view (e.g. "toc: true" checks).
func (c ConfigValue) IsTruthy() bool {
	switch c.Kind {
	case KindNull:
		return false
	case KindScalar:
		switch v := c.Scalar.(type) {
		case bool:
			return v
		case string:
			return v != ""
		case nil:
			return false
		default:
			return true
		}
	case KindArray:
		return len(c.Array) > 0
	case KindMap:
		return c.Map != nil && c.Map.Len() > 0
	default:
		return true
	}
}
