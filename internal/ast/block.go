package ast

import "github.com/docforge/docforge/internal/sourcemap"

// Block is any block-position node. Every concrete type below
// implements it, plus config.PandocBlock via the same IsPandocBlock
// method.
type Block interface {
	IsPandocBlock()
	SourceInfo() sourcemap.SourceInfo
}

type Paragraph struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Plain struct {
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type Header struct {
	Level   int
	Attr    Attr
	Inlines []Inline
	SI      sourcemap.SourceInfo
}

type CodeBlock struct {
	Attr Attr
	Text string
	SI   sourcemap.SourceInfo
}

type BlockQuote struct {
	Blocks []Block
	SI     sourcemap.SourceInfo
}

type BulletList struct {
	Items [][]Block
	SI    sourcemap.SourceInfo
}

// OrderedListDelimiter is the punctuation following an ordered list
// marker ("1." vs "1)").
type OrderedListDelimiter int

const (
	DelimiterPeriod OrderedListDelimiter = iota
	DelimiterParen
)

// OrderedListStyle is the marker's numbering style.
type OrderedListStyle int

const (
	StyleDecimal OrderedListStyle = iota
	StyleLowerAlpha
	StyleUpperAlpha
	StyleLowerRoman
	StyleUpperRoman
)

type OrderedList struct {
	Start     int
	Style     OrderedListStyle
	Delimiter OrderedListDelimiter
	Items     [][]Block
	SI        sourcemap.SourceInfo
}

// DefinitionItem is one term/definitions pair in a DefinitionList.
type DefinitionItem struct {
	Term []Inline
	Defs [][]Block
}

type DefinitionList struct {
	Items []DefinitionItem
	SI    sourcemap.SourceInfo
}

type Div struct {
	Attr   Attr
	Blocks []Block
	SI     sourcemap.SourceInfo
}

// TableCell is one cell of a Table; RowSpan/ColSpan default to 1.
type TableCell struct {
	Attr    Attr
	Blocks  []Block
	RowSpan int
	ColSpan int
}

// TableAlignment is a column's horizontal alignment.
type TableAlignment int

const (
	AlignDefault TableAlignment = iota
	AlignLeft
	AlignCenter
	AlignRight
)

type TableColumnSpec struct {
	Alignment   TableAlignment
	WidthFactor float64 // 0 means "unspecified"
}

type Table struct {
	Attr    Attr
	Caption []Block
	Columns []TableColumnSpec
	Head    []TableCell
	Rows    [][]TableCell
	Foot    []TableCell
	SI      sourcemap.SourceInfo
}

type Figure struct {
	Attr    Attr
	Caption []Block
	Blocks  []Block
	SI      sourcemap.SourceInfo
}

type HorizontalRule struct{ SI sourcemap.SourceInfo }

type RawBlock struct {
	Format string
	Text   string
	SI     sourcemap.SourceInfo
}

type LineBlock struct {
	Lines [][]Inline
	SI    sourcemap.SourceInfo
}

func (Paragraph) IsPandocBlock()      {}
func (Plain) IsPandocBlock()          {}
func (Header) IsPandocBlock()         {}
func (CodeBlock) IsPandocBlock()      {}
func (BlockQuote) IsPandocBlock()     {}
func (BulletList) IsPandocBlock()     {}
func (OrderedList) IsPandocBlock()    {}
func (DefinitionList) IsPandocBlock() {}
func (Div) IsPandocBlock()            {}
func (Table) IsPandocBlock()          {}
func (Figure) IsPandocBlock()         {}
func (HorizontalRule) IsPandocBlock() {}
func (RawBlock) IsPandocBlock()       {}
func (LineBlock) IsPandocBlock()      {}

func (n Paragraph) SourceInfo() sourcemap.SourceInfo      { return n.SI }
func (n Plain) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Header) SourceInfo() sourcemap.SourceInfo         { return n.SI }
func (n CodeBlock) SourceInfo() sourcemap.SourceInfo      { return n.SI }
func (n BlockQuote) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n BulletList) SourceInfo() sourcemap.SourceInfo     { return n.SI }
func (n OrderedList) SourceInfo() sourcemap.SourceInfo    { return n.SI }
func (n DefinitionList) SourceInfo() sourcemap.SourceInfo { return n.SI }
func (n Div) SourceInfo() sourcemap.SourceInfo            { return n.SI }
func (n Table) SourceInfo() sourcemap.SourceInfo          { return n.SI }
func (n Figure) SourceInfo() sourcemap.SourceInfo         { return n.SI }
func (n HorizontalRule) SourceInfo() sourcemap.SourceInfo { return n.SI }
func (n RawBlock) SourceInfo() sourcemap.SourceInfo       { return n.SI }
func (n LineBlock) SourceInfo() sourcemap.SourceInfo      { return n.SI }
