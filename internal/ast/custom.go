package ast

import "github.com/docforge/docforge/internal/sourcemap"

// SlotKind discriminates what a CustomNode's named Slot holds.
type SlotKind int

const (
	SlotInline SlotKind = iota
	SlotBlock
	SlotInlines
	SlotBlocks
)

// Slot is one named child of a CustomNode. Exactly the field matching
// Kind is populated.
type Slot struct {
	Kind    SlotKind
	Inline  Inline
	Block   Block
	Inlines []Inline
	Blocks  []Block
}

// CustomBlockNode is the open-ended block-position extension point
// (C5/C9): transforms promote a plain Div/Span into one of these
// instead of the core variant set growing a new case per extension
// (e.g. Callout, Tabset).
type CustomBlockNode struct {
	TypeName  string
	Attr      Attr
	Slots     map[string]Slot
	PlainData map[string]any // arbitrary typed fields, e.g. {appearance, collapse, icon}
	SI        sourcemap.SourceInfo
}

func (CustomBlockNode) IsPandocBlock()                    {}
func (n CustomBlockNode) SourceInfo() sourcemap.SourceInfo { return n.SI }

// CustomInlineNode is CustomBlockNode's inline-position counterpart.
type CustomInlineNode struct {
	TypeName  string
	Attr      Attr
	Slots     map[string]Slot
	PlainData map[string]any
	SI        sourcemap.SourceInfo
}

func (CustomInlineNode) IsPandocInline()                    {}
func (n CustomInlineNode) SourceInfo() sourcemap.SourceInfo { return n.SI }
