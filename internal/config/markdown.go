package config

import "github.com/docforge/docforge/internal/sourcemap"

// MarkdownParser lowers markdown source text anchored at file/base into
// Pandoc inlines. config cannot import the reader package directly (the
// reader already imports config, for Document.Meta), so a !md-tagged or
// schema-position markdown scalar can only be coerced through this
// injected indirection; the reader package installs its inline scanner
// here from an init.
type MarkdownParser func(text string, file sourcemap.FileID, base int) []PandocInline

var markdownParser MarkdownParser

// SetMarkdownParser installs the package-wide markdown-to-inlines
// function used by InterpMarkdown coercion.
func SetMarkdownParser(p MarkdownParser) { markdownParser = p }

// coerceMarkdown lowers a KindScalar string value in place to
// KindPandocInlines, anchoring the parsed inlines at the scalar's own
// source offset. It is a no-op if no parser has been installed, the
// value isn't a scalar string, or its source info has no resolvable
// origin file (e.g. synthesized values) — such values are left as
// plain scalars rather than losing their content.
func coerceMarkdown(v *ConfigValue) {
	if markdownParser == nil || v.Kind != KindScalar {
		return
	}
	s, ok := v.Scalar.(string)
	if !ok {
		return
	}
	file, ok := v.SourceInfo.OriginFile()
	if !ok {
		return
	}
	v.Kind = KindPandocInlines
	v.Scalar = nil
	v.Inlines = markdownParser(s, file, v.SourceInfo.StartOffset())
}

// CoerceMarkdown lowers v in place to KindPandocInlines, for callers
// (the reader, applying position-within-schema interpretation to
// fields like a document's "title" that are markdown by convention
// even without an explicit !md tag) that know a value is markdown from
// context the config package itself doesn't have.
func CoerceMarkdown(v *ConfigValue) {
	v.Interpretation = InterpMarkdown
	coerceMarkdown(v)
}

// AsInlines returns c's content as Pandoc inlines, lazily parsing a
// scalar string through the installed MarkdownParser if c hasn't
// already been coerced to KindPandocInlines (e.g. a generic-string
// ConfigValue a template pipe wants to render as markdown). Returns
// nil, false for values with no textual content.
func (c ConfigValue) AsInlines() ([]PandocInline, bool) {
	switch c.Kind {
	case KindPandocInlines:
		return c.Inlines, true
	case KindScalar:
		s, ok := c.Scalar.(string)
		if !ok || markdownParser == nil {
			return nil, false
		}
		file, ok := c.SourceInfo.OriginFile()
		if !ok {
			return nil, false
		}
		return markdownParser(s, file, c.SourceInfo.StartOffset()), true
	default:
		return nil, false
	}
}
