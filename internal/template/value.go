// Package template implements the templated text writer (C7): a
// three-pass parse -> Doc IR -> render template engine with partials,
// conditionals, for-loops and pipes, evaluated against the document
// metadata. NodeNesting and NodeBreakableSpace are declared, but the
// parser produces neither and the evaluator renders them empty.
package template

import "strings"

// ValueKind discriminates a TemplateValue's payload.
type ValueKind int

const (
	Null ValueKind = iota
	Bool
	String
	List
	Map
)

// Value is one value in a template evaluation context. Map entries are
// unordered, matching spec.md §4.6.
type Value struct {
	Kind ValueKind
	Bool bool
	Str  string
	List []Value
	Map  map[string]Value
}

// NullValue is the canonical null/absent value.
var NullValue = Value{Kind: Null}

func BoolValue(b bool) Value  { return Value{Kind: Bool, Bool: b} }
func StringValue(s string) Value { return Value{Kind: String, Str: s} }
func ListValue(items []Value) Value { return Value{Kind: List, List: items} }
func MapValue(m map[string]Value) Value { return Value{Kind: Map, Map: m} }

// Truthy implements spec.md §4.6/§8 truthiness: Null, false, "", [],
// {} are falsy; everything else (notably the string "false") is truthy.
func (v Value) Truthy() bool {
	switch v.Kind {
	case Null:
		return false
	case Bool:
		return v.Bool
	case String:
		return v.Str != ""
	case List:
		return len(v.List) > 0
	case Map:
		return len(v.Map) > 0
	default:
		return false
	}
}

// AsString renders a scalar-ish value for direct interpolation; lists
// and maps render empty (they must go through a for-loop or an
// explicit pipe instead).
func (v Value) AsString() string {
	switch v.Kind {
	case Bool:
		if v.Bool {
			return "true"
		}
		return "false"
	case String:
		return v.Str
	default:
		return ""
	}
}

// Context is a name -> Value environment. get_path supports both
// dotted-string and pre-split segment paths.
type Context struct {
	vars   map[string]Value
	parent *Context
}

// NewContext builds a root context from a flat variable map.
func NewContext(vars map[string]Value) *Context {
	return &Context{vars: vars}
}

// Child returns a new context that shadows names in overrides while
// falling back to the receiver for everything else — used to bind a
// for-loop variable (and the literal name "it") without mutating the
// enclosing context.
func (c *Context) Child(overrides map[string]Value) *Context {
	return &Context{vars: overrides, parent: c}
}

// GetPath resolves a path of segments, supporting a single dotted
// string segment too (split lazily).
func (c *Context) GetPath(segments []string) (Value, bool) {
	if len(segments) == 1 && strings.Contains(segments[0], ".") {
		segments = strings.Split(segments[0], ".")
	}
	if len(segments) == 0 {
		return NullValue, false
	}
	cur, ok := c.lookup(segments[0])
	if !ok {
		return NullValue, false
	}
	for _, seg := range segments[1:] {
		if cur.Kind != Map {
			return NullValue, false
		}
		next, ok := cur.Map[seg]
		if !ok {
			return NullValue, false
		}
		cur = next
	}
	return cur, true
}

func (c *Context) lookup(name string) (Value, bool) {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if v, ok := ctx.vars[name]; ok {
			return v, true
		}
	}
	return NullValue, false
}
