// Package ast defines the Pandoc-compatible document tree (C5): tagged
// Block/Inline variants, Attr with optional per-component source info,
// and the open-ended CustomNode extension point. Every node carries a
// sourcemap.SourceInfo so diagnostics and the JSON writer's location
// extension can always point back to real input bytes.
package ast

import "github.com/docforge/docforge/internal/sourcemap"

// Inline is any inline-position node. Every concrete type below
// implements it, plus config.PandocInline via the same IsPandocInline
// method, so a ConfigValue can carry rendered inline content without
// config importing this package.
type Inline interface {
	IsPandocInline()
	SourceInfo() sourcemap.SourceInfo
}

// QuoteType discriminates Quoted's delimiter style.
type QuoteType int

const (
	SingleQuote QuoteType = iota
	DoubleQuote
)

// MathType discriminates Math's rendering mode.
type MathType int

const (
	InlineMath MathType = iota
	DisplayMath
)

type Str struct {
	Text string
	SI   sourcemap.SourceInfo
}

type Space struct{ SI sourcemap.SourceInfo }
type SoftBreak struct{ SI sourcemap.SourceInfo }
type LineBreak struct{ SI sourcemap.SourceInfo }

type Emph struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Strong struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Strikeout struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Super struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Sub struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type SmallCaps struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Underline struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Quoted struct {
	Type    QuoteType
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Link struct {
	Attr    Attr
	Inlines []Inline // link text
	Target  string
	Title   string
	SI      sourcemap.SourceInfo
}

type Image struct {
	Attr    Attr
	Inlines []Inline // alt text
	Target  string
	Title   string
	SI      sourcemap.SourceInfo
}

type Code struct {
	Attr Attr
	Text string
	SI   sourcemap.SourceInfo
}

type Math struct {
	Type MathType
	Text string
	SI   sourcemap.SourceInfo
}

type RawInline struct {
	Format string
	Text   string
	SI     sourcemap.SourceInfo
}

type Span struct {
	Attr    Attr
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

// Note holds a footnote/endnote body, which is a block sequence even
// though Note itself occupies inline position.
type Note struct {
	Blocks []Block
	SI     sourcemap.SourceInfo
}

// Citation is one entry within a Cite.
type Citation struct {
	ID     string
	Prefix []Inline
	Suffix []Inline
}

type Cite struct {
	Citations []Citation
	Inlines   []Inline // the rendered/fallback text
	SI        sourcemap.SourceInfo
}

// Shortcode is a `{{< name arg... >}}` invocation left unresolved (or
// resolved in place, depending on the reader's mode) in the tree.
type Shortcode struct {
	Name string
	Args []string
	KV   []KeyValue
	SI   sourcemap.SourceInfo
}

// NoteReference is a reference-style footnote marker ("[^label]")
// before it has been resolved to a Note body.
type NoteReference struct {
	Label string
	SI    sourcemap.SourceInfo
}

type Insert struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Delete struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Highlight struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type EditComment struct {
	Inlines []Inline
	Author  string
	SI      sourcemap.SourceInfo
}

func (Str) IsPandocInline()           {}
func (Space) IsPandocInline()         {}
func (SoftBreak) IsPandocInline()     {}
func (LineBreak) IsPandocInline()     {}
func (Emph) IsPandocInline()          {}
func (Strong) IsPandocInline()        {}
func (Strikeout) IsPandocInline()     {}
func (Super) IsPandocInline()         {}
func (Sub) IsPandocInline()           {}
func (SmallCaps) IsPandocInline()     {}
func (Underline) IsPandocInline()     {}
func (Quoted) IsPandocInline()        {}
func (Link) IsPandocInline()          {}
func (Image) IsPandocInline()         {}
func (Code) IsPandocInline()          {}
func (Math) IsPandocInline()          {}
func (RawInline) IsPandocInline()     {}
func (Span) IsPandocInline()          {}
func (Note) IsPandocInline()          {}
func (Cite) IsPandocInline()          {}
func (Shortcode) IsPandocInline()     {}
func (NoteReference) IsPandocInline() {}
func (Insert) IsPandocInline()        {}
func (Delete) IsPandocInline()        {}
func (Highlight) IsPandocInline()     {}
func (EditComment) IsPandocInline()   {}

func (n Str) SourceInfo() sourcemap.SourceInfo           { return n.SI }
func (n Space) SourceInfo() sourcemap.SourceInfo         { return n.SI }
func (n SoftBreak) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n LineBreak) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n Emph) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Strong) SourceInfo() sourcemap.SourceInfo        { return n.SI }
func (n Strikeout) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n Super) SourceInfo() sourcemap.SourceInfo         { return n.SI }
func (n Sub) SourceInfo() sourcemap.SourceInfo           { return n.SI }
func (n SmallCaps) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n Underline) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n Quoted) SourceInfo() sourcemap.SourceInfo        { return n.SI }
func (n Link) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Image) SourceInfo() sourcemap.SourceInfo         { return n.SI }
func (n Code) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Math) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n RawInline) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n Span) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Note) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Cite) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Shortcode) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n NoteReference) SourceInfo() sourcemap.SourceInfo { return n.SI }
func (n Insert) SourceInfo() sourcemap.SourceInfo        { return n.SI }
func (n Delete) SourceInfo() sourcemap.SourceInfo        { return n.SI }
func (n Highlight) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n EditComment) SourceInfo() sourcemap.SourceInfo   { return n.SI }
