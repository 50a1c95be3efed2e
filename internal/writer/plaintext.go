package writer

import (
	"strings"

	"github.com/docforge/docforge/internal/ast"
)

// WritePlain renders doc to plain text (spec.md §4.7): one space per
// Space inline, one newline per SoftBreak, two per LineBreak/block
// boundary, and the caption content (not the URL) for links/images.
// Raw inlines and raw blocks are dropped whatever their format rather
// than leaked verbatim, which makes the writer
// idempotent when re-run on its own output (invariant 6).
func WritePlain(doc *ast.Document) string {
	var b strings.Builder
	writePlainBlocks(&b, doc.Blocks)
	return strings.TrimRight(b.String(), "\n")
}

func writePlainBlocks(b *strings.Builder, blocks []ast.Block) {
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n\n")
		}
		writePlainBlock(b, block)
	}
}

func writePlainBlock(b *strings.Builder, block ast.Block) {
	switch n := block.(type) {
	case ast.Paragraph:
		writePlainInlines(b, n.Inlines)
	case ast.Plain:
		writePlainInlines(b, n.Inlines)
	case ast.Header:
		writePlainInlines(b, n.Inlines)
	case ast.CodeBlock:
		b.WriteString(n.Text)
	case ast.BlockQuote:
		writePlainBlocks(b, n.Blocks)
	case ast.BulletList:
		for i, item := range n.Items {
			if i > 0 {
				b.WriteByte('\n')
			}
			writePlainBlocks(b, item)
		}
	case ast.OrderedList:
		for i, item := range n.Items {
			if i > 0 {
				b.WriteByte('\n')
			}
			writePlainBlocks(b, item)
		}
	case ast.DefinitionList:
		for i, item := range n.Items {
			if i > 0 {
				b.WriteByte('\n')
			}
			writePlainInlines(b, item.Term)
			for _, def := range item.Defs {
				b.WriteByte('\n')
				writePlainBlocks(b, def)
			}
		}
	case ast.Div:
		writePlainBlocks(b, n.Blocks)
	case ast.Table:
		writePlainTable(b, n)
	case ast.Figure:
		writePlainBlocks(b, n.Blocks)
		if len(n.Caption) > 0 {
			b.WriteByte('\n')
			writePlainBlocks(b, n.Caption)
		}
	case ast.HorizontalRule:
		// no textual representation
	case ast.RawBlock:
		// raw content is format-specific; dropped for plain text
	case ast.LineBlock:
		for i, line := range n.Lines {
			if i > 0 {
				b.WriteByte('\n')
			}
			writePlainInlines(b, line)
		}
	case ast.CustomBlockNode:
		if slot, ok := n.Slots["content"]; ok {
			switch slot.Kind {
			case ast.SlotBlocks:
				writePlainBlocks(b, slot.Blocks)
			case ast.SlotBlock:
				if slot.Block != nil {
					writePlainBlock(b, slot.Block)
				}
			}
		}
	}
}

func writePlainTable(b *strings.Builder, t ast.Table) {
	writePlainRow := func(cells []ast.TableCell) {
		for i, c := range cells {
			if i > 0 {
				b.WriteByte('\t')
			}
			writePlainBlocks(b, c.Blocks)
		}
	}
	if len(t.Head) > 0 {
		writePlainRow(t.Head)
		b.WriteByte('\n')
	}
	for i, row := range t.Rows {
		if i > 0 {
			b.WriteByte('\n')
		}
		writePlainRow(row)
	}
}

func writePlainInlines(b *strings.Builder, inlines []ast.Inline) {
	for _, in := range inlines {
		writePlainInline(b, in)
	}
}

func writePlainInline(b *strings.Builder, in ast.Inline) {
	switch n := in.(type) {
	case ast.Str:
		b.WriteString(n.Text)
	case ast.Space:
		b.WriteByte(' ')
	case ast.SoftBreak:
		b.WriteByte('\n')
	case ast.LineBreak:
		b.WriteString("\n\n")
	case ast.Emph:
		writePlainInlines(b, n.Inlines)
	case ast.Strong:
		writePlainInlines(b, n.Inlines)
	case ast.Strikeout:
		writePlainInlines(b, n.Inlines)
	case ast.Super:
		writePlainInlines(b, n.Inlines)
	case ast.Sub:
		writePlainInlines(b, n.Inlines)
	case ast.SmallCaps:
		writePlainInlines(b, n.Inlines)
	case ast.Underline:
		writePlainInlines(b, n.Inlines)
	case ast.Insert:
		writePlainInlines(b, n.Inlines)
	case ast.Delete:
		writePlainInlines(b, n.Inlines)
	case ast.Highlight:
		writePlainInlines(b, n.Inlines)
	case ast.EditComment:
		writePlainInlines(b, n.Inlines)
	case ast.Quoted:
		writePlainInlines(b, n.Inlines)
	case ast.Link:
		writePlainInlines(b, n.Inlines)
	case ast.Image:
		writePlainInlines(b, n.Inlines)
	case ast.Code:
		b.WriteString(n.Text)
	case ast.Math:
		b.WriteString(n.Text)
	case ast.RawInline:
		// dropped: format-specific, not plain text
	case ast.Span:
		writePlainInlines(b, n.Inlines)
	case ast.Note:
		// footnote bodies don't flow into the main plain-text stream
	case ast.Cite:
		writePlainInlines(b, n.Inlines)
	case ast.Shortcode:
		// unresolved shortcodes carry no plain-text representation
	case ast.NoteReference:
		// marker only; the referenced note body isn't inlined here
	case ast.CustomInlineNode:
		if slot, ok := n.Slots["content"]; ok {
			switch slot.Kind {
			case ast.SlotInlines:
				writePlainInlines(b, slot.Inlines)
			case ast.SlotInline:
				if slot.Inline != nil {
					writePlainInline(b, slot.Inline)
				}
			}
		}
	}
}
