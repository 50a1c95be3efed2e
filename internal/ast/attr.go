package ast

import "github.com/docforge/docforge/internal/sourcemap"

// Attr is a Pandoc-style attribute set: an id, an ordered list of
// classes, and an ordered list of key/value pairs.
type Attr struct {
	ID      string
	Classes []string
	KV      []KeyValue

	// Source maps each piece of Attr back to its own source region.
	// It may be nil (or partially populated) when the attr was
	// synthesized rather than parsed.
	Source *AttrSourceInfo
}

// KeyValue is one ordered key/value attribute pair.
type KeyValue struct {
	Key   string
	Value string
}

// Get returns the value for key and whether it was present.
func (a Attr) Get(key string) (string, bool) {
	for _, kv := range a.KV {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return "", false
}

// HasClass reports whether class is present among Classes.
func (a Attr) HasClass(class string) bool {
	for _, c := range a.Classes {
		if c == class {
			return true
		}
	}
	return false
}

// AttrSourceInfo maps each component of an Attr back to its source
// region. Any field may be nil/empty when that component has no
// recoverable origin (e.g. synthesized by a transform).
type AttrSourceInfo struct {
	ID      *sourcemap.SourceInfo
	Classes []sourcemap.SourceInfo // parallel to Attr.Classes
	KV      []KeyValueSourceInfo   // parallel to Attr.KV
}

// KeyValueSourceInfo locates one key/value attribute pair's key and
// value tokens independently.
type KeyValueSourceInfo struct {
	Key   sourcemap.SourceInfo
	Value sourcemap.SourceInfo
}
