// Package writer implements the AST -> output writers (C8): HTML,
// plaintext and JSON, each preserving diagnostics and (JSON only)
// source-info through serialization.
package writer

import (
	"fmt"
	"strings"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/diag"
)

// CustomBlockRenderer renders one recognized CustomBlockNode type_name
// to HTML; writers that don't recognize a type_name fall back to
// rendering its "content" slot (or a Div-equivalent of its attrs) so
// the writer never panics on an extension node (spec.md §4.7).
type CustomBlockRenderer func(w *HTMLWriter, n ast.CustomBlockNode) string

// HTMLWriter walks a Document and renders it to HTML, dispatching
// recognized CustomNode variants (e.g. Callout) via a type_name
// registry supplied by the caller (the concrete set of extension node
// renderers is out of this component's scope per spec.md §1).
type HTMLWriter struct {
	CustomBlocks map[string]CustomBlockRenderer
	bag          diag.Bag
}

// NewHTMLWriter builds a writer with an empty custom-node registry.
func NewHTMLWriter() *HTMLWriter {
	return &HTMLWriter{CustomBlocks: map[string]CustomBlockRenderer{}}
}

// WriteHTML renders doc to an HTML string plus any diagnostics
// accumulated while walking it (malformed CustomNode slots, etc.).
func (w *HTMLWriter) WriteHTML(doc *ast.Document) (string, []diag.Diagnostic) {
	var b strings.Builder
	w.writeBlocks(&b, doc.Blocks)
	return b.String(), w.bag.Items()
}

func (w *HTMLWriter) writeBlocks(b *strings.Builder, blocks []ast.Block) {
	for _, block := range blocks {
		w.writeBlock(b, block)
	}
}

func (w *HTMLWriter) writeBlock(b *strings.Builder, block ast.Block) {
	switch n := block.(type) {
	case ast.Paragraph:
		b.WriteString("<p>")
		w.writeInlines(b, n.Inlines)
		b.WriteString("</p>\n")
	case ast.Plain:
		w.writeInlines(b, n.Inlines)
		b.WriteByte('\n')
	case ast.Header:
		tag := fmt.Sprintf("h%d", clampHeading(n.Level))
		b.WriteString("<" + tag)
		writeAttr(b, n.Attr)
		b.WriteString(">")
		w.writeInlines(b, n.Inlines)
		b.WriteString("</" + tag + ">\n")
	case ast.CodeBlock:
		b.WriteString("<pre><code")
		writeAttr(b, n.Attr)
		b.WriteString(">")
		b.WriteString(escapeText(n.Text))
		b.WriteString("</code></pre>\n")
	case ast.BlockQuote:
		b.WriteString("<blockquote>\n")
		w.writeBlocks(b, n.Blocks)
		b.WriteString("</blockquote>\n")
	case ast.BulletList:
		b.WriteString("<ul>\n")
		for _, item := range n.Items {
			b.WriteString("<li>")
			w.writeBlocks(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</ul>\n")
	case ast.OrderedList:
		start := ""
		if n.Start != 1 {
			start = fmt.Sprintf(" start=\"%d\"", n.Start)
		}
		b.WriteString("<ol" + start + ">\n")
		for _, item := range n.Items {
			b.WriteString("<li>")
			w.writeBlocks(b, item)
			b.WriteString("</li>\n")
		}
		b.WriteString("</ol>\n")
	case ast.DefinitionList:
		b.WriteString("<dl>\n")
		for _, item := range n.Items {
			b.WriteString("<dt>")
			w.writeInlines(b, item.Term)
			b.WriteString("</dt>\n")
			for _, def := range item.Defs {
				b.WriteString("<dd>")
				w.writeBlocks(b, def)
				b.WriteString("</dd>\n")
			}
		}
		b.WriteString("</dl>\n")
	case ast.Div:
		b.WriteString("<div")
		writeAttr(b, n.Attr)
		b.WriteString(">\n")
		w.writeBlocks(b, n.Blocks)
		b.WriteString("</div>\n")
	case ast.Table:
		w.writeTable(b, n)
	case ast.Figure:
		b.WriteString("<figure")
		writeAttr(b, n.Attr)
		b.WriteString(">\n")
		w.writeBlocks(b, n.Blocks)
		if len(n.Caption) > 0 {
			b.WriteString("<figcaption>\n")
			w.writeBlocks(b, n.Caption)
			b.WriteString("</figcaption>\n")
		}
		b.WriteString("</figure>\n")
	case ast.HorizontalRule:
		b.WriteString("<hr />\n")
	case ast.RawBlock:
		if n.Format == "html" {
			b.WriteString(n.Text)
		}
	case ast.LineBlock:
		b.WriteString("<div class=\"line-block\">\n")
		for _, line := range n.Lines {
			w.writeInlines(b, line)
			b.WriteString("<br />\n")
		}
		b.WriteString("</div>\n")
	case ast.CustomBlockNode:
		w.writeCustomBlock(b, n)
	default:
		w.bag.Add(diag.New(diag.Warning, "unrecognized block node in HTML writer").Build())
	}
}

func (w *HTMLWriter) writeCustomBlock(b *strings.Builder, n ast.CustomBlockNode) {
	if renderer, ok := w.CustomBlocks[n.TypeName]; ok {
		b.WriteString(renderer(w, n))
		return
	}
	// Unknown CustomNode: fall back to the "content" slot, or an
	// attr-classed Div-equivalent, so the writer never panics.
	b.WriteString("<div")
	writeAttr(b, n.Attr)
	b.WriteString(">\n")
	if slot, ok := n.Slots["content"]; ok {
		switch slot.Kind {
		case ast.SlotBlocks:
			w.writeBlocks(b, slot.Blocks)
		case ast.SlotBlock:
			if slot.Block != nil {
				w.writeBlock(b, slot.Block)
			}
		}
	}
	b.WriteString("</div>\n")
}

func (w *HTMLWriter) writeTable(b *strings.Builder, t ast.Table) {
	b.WriteString("<table")
	writeAttr(b, t.Attr)
	b.WriteString(">\n")
	if len(t.Caption) > 0 {
		b.WriteString("<caption>")
		w.writeBlocks(b, t.Caption)
		b.WriteString("</caption>\n")
	}
	if len(t.Head) > 0 {
		b.WriteString("<thead><tr>\n")
		w.writeTableCells(b, t.Head, "th")
		b.WriteString("</tr></thead>\n")
	}
	b.WriteString("<tbody>\n")
	for _, row := range t.Rows {
		b.WriteString("<tr>\n")
		w.writeTableCells(b, row, "td")
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n")
	if len(t.Foot) > 0 {
		b.WriteString("<tfoot><tr>\n")
		w.writeTableCells(b, t.Foot, "td")
		b.WriteString("</tr></tfoot>\n")
	}
	b.WriteString("</table>\n")
}

func (w *HTMLWriter) writeTableCells(b *strings.Builder, cells []ast.TableCell, tag string) {
	for _, c := range cells {
		b.WriteString("<" + tag)
		if c.RowSpan > 1 {
			b.WriteString(fmt.Sprintf(" rowspan=\"%d\"", c.RowSpan))
		}
		if c.ColSpan > 1 {
			b.WriteString(fmt.Sprintf(" colspan=\"%d\"", c.ColSpan))
		}
		writeAttr(b, c.Attr)
		b.WriteString(">")
		w.writeBlocks(b, c.Blocks)
		b.WriteString("</" + tag + ">\n")
	}
}

func (w *HTMLWriter) writeInlines(b *strings.Builder, inlines []ast.Inline) {
	for _, in := range inlines {
		w.writeInline(b, in)
	}
}

func (w *HTMLWriter) writeInline(b *strings.Builder, in ast.Inline) {
	switch n := in.(type) {
	case ast.Str:
		b.WriteString(escapeText(n.Text))
	case ast.Space:
		b.WriteByte(' ')
	case ast.SoftBreak:
		b.WriteByte('\n')
	case ast.LineBreak:
		b.WriteString("<br />\n")
	case ast.Emph:
		wrap(b, "em", "", n.Inlines, w.writeInlines)
	case ast.Strong:
		wrap(b, "strong", "", n.Inlines, w.writeInlines)
	case ast.Strikeout:
		wrap(b, "del", "", n.Inlines, w.writeInlines)
	case ast.Super:
		wrap(b, "sup", "", n.Inlines, w.writeInlines)
	case ast.Sub:
		wrap(b, "sub", "", n.Inlines, w.writeInlines)
	case ast.SmallCaps:
		b.WriteString("<span style=\"font-variant:small-caps;\">")
		w.writeInlines(b, n.Inlines)
		b.WriteString("</span>")
	case ast.Underline:
		wrap(b, "u", "", n.Inlines, w.writeInlines)
	case ast.Insert:
		wrap(b, "ins", "", n.Inlines, w.writeInlines)
	case ast.Delete:
		wrap(b, "del", "", n.Inlines, w.writeInlines)
	case ast.Highlight:
		wrap(b, "mark", "", n.Inlines, w.writeInlines)
	case ast.EditComment:
		wrap(b, "span", " class=\"edit-comment\"", n.Inlines, w.writeInlines)
	case ast.Quoted:
		open, close := "“", "”"
		if n.Type == ast.SingleQuote {
			open, close = "‘", "’"
		}
		b.WriteString(open)
		w.writeInlines(b, n.Inlines)
		b.WriteString(close)
	case ast.Link:
		b.WriteString("<a href=\"" + escapeAttrValue(n.Target) + "\"")
		if n.Title != "" {
			b.WriteString(" title=\"" + escapeAttrValue(n.Title) + "\"")
		}
		writeAttr(b, n.Attr)
		b.WriteString(">")
		w.writeInlines(b, n.Inlines)
		b.WriteString("</a>")
	case ast.Image:
		b.WriteString("<img src=\"" + escapeAttrValue(n.Target) + "\" alt=\"")
		var alt strings.Builder
		w.writeInlines(&alt, n.Inlines)
		b.WriteString(escapeAttrValue(alt.String()))
		b.WriteString("\"")
		if n.Title != "" {
			b.WriteString(" title=\"" + escapeAttrValue(n.Title) + "\"")
		}
		writeAttr(b, n.Attr)
		b.WriteString(" />")
	case ast.Code:
		b.WriteString("<code")
		writeAttr(b, n.Attr)
		b.WriteString(">")
		b.WriteString(escapeText(n.Text))
		b.WriteString("</code>")
	case ast.Math:
		delim := "\\(" + n.Text + "\\)"
		if n.Type == ast.DisplayMath {
			delim = "\\[" + n.Text + "\\]"
		}
		b.WriteString(delim)
	case ast.RawInline:
		if n.Format == "html" {
			b.WriteString(n.Text)
		}
	case ast.Span:
		b.WriteString("<span")
		writeAttr(b, n.Attr)
		b.WriteString(">")
		w.writeInlines(b, n.Inlines)
		b.WriteString("</span>")
	case ast.Note:
		b.WriteString("<span class=\"note\">")
		w.writeBlocks(b, n.Blocks)
		b.WriteString("</span>")
	case ast.Cite:
		w.writeInlines(b, n.Inlines)
	case ast.Shortcode:
		b.WriteString(fmt.Sprintf("<!-- shortcode:%s -->", escapeText(n.Name)))
	case ast.NoteReference:
		b.WriteString(fmt.Sprintf("<sup id=\"fnref-%s\"><a href=\"#fn-%s\">%s</a></sup>",
			escapeAttrValue(n.Label), escapeAttrValue(n.Label), escapeText(n.Label)))
	case ast.CustomInlineNode:
		w.writeCustomInline(b, n)
	default:
		w.bag.Add(diag.New(diag.Warning, "unrecognized inline node in HTML writer").Build())
	}
}

func (w *HTMLWriter) writeCustomInline(b *strings.Builder, n ast.CustomInlineNode) {
	b.WriteString("<span")
	writeAttr(b, n.Attr)
	b.WriteString(">")
	if slot, ok := n.Slots["content"]; ok {
		switch slot.Kind {
		case ast.SlotInlines:
			w.writeInlines(b, slot.Inlines)
		case ast.SlotInline:
			if slot.Inline != nil {
				w.writeInline(b, slot.Inline)
			}
		}
	}
	b.WriteString("</span>")
}

func wrap(b *strings.Builder, tag, attrs string, inlines []ast.Inline, write func(*strings.Builder, []ast.Inline)) {
	b.WriteString("<" + tag + attrs + ">")
	write(b, inlines)
	b.WriteString("</" + tag + ">")
}

func clampHeading(level int) int {
	if level < 1 {
		return 1
	}
	if level > 6 {
		return 6
	}
	return level
}

func writeAttr(b *strings.Builder, a ast.Attr) {
	if a.ID != "" {
		b.WriteString(" id=\"" + escapeAttrValue(a.ID) + "\"")
	}
	if len(a.Classes) > 0 {
		b.WriteString(" class=\"" + escapeAttrValue(strings.Join(a.Classes, " ")) + "\"")
	}
	for _, kv := range a.KV {
		b.WriteString(" " + kv.Key + "=\"" + escapeAttrValue(kv.Value) + "\"")
	}
}

func escapeText(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}

func escapeAttrValue(s string) string {
	r := strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
