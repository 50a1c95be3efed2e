package writer

import (
	"github.com/tidwall/sjson"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// WriteJSON serializes doc to the Pandoc-compatible "t"/"c" JSON shape,
// extended with a per-node "l" location object and a top-level
// "astContext.filenames" table (spec.md §4.7). The buffer is built up
// incrementally with sjson.SetBytes rather than through a parallel
// struct tree, so the location extension can be injected at exactly
// the node path it documents.
func WriteJSON(doc *ast.Document, reg *sourcemap.Registry) ([]byte, []diag.Diagnostic, error) {
	e := &jsonEncoder{buf: []byte("{}"), reg: reg}
	e.encodeMeta("meta", doc.Meta)
	e.encodeBlocks("blocks", doc.Blocks)
	e.set("astContext.filenames", reg.Paths())
	if e.err != nil {
		return nil, nil, e.err
	}
	return e.buf, nil, nil
}

type jsonEncoder struct {
	buf []byte
	reg *sourcemap.Registry
	err error
}

func (e *jsonEncoder) set(path string, val any) {
	if e.err != nil {
		return
	}
	b, err := sjson.SetBytes(e.buf, path, val)
	if err != nil {
		e.err = err
		return
	}
	e.buf = b
}

func (e *jsonEncoder) setLoc(path string, si sourcemap.SourceInfo) {
	if loc, ok := locationValue(si, e.reg); ok {
		e.set(path+".l", loc)
	}
}

// locationValue resolves si's start/end into registered-file locations;
// it returns ok=false for FilterProvenance (or any span MapOffset can't
// resolve), in which case the caller simply omits "l" for that node.
func locationValue(si sourcemap.SourceInfo, reg *sourcemap.Registry) (map[string]any, bool) {
	start, ok := sourcemap.MapOffset(si, 0, reg)
	if !ok {
		return nil, false
	}
	end, ok := sourcemap.MapOffset(si, si.Length(), reg)
	if !ok {
		return nil, false
	}
	return map[string]any{
		"start":         locPoint(start.Location),
		"end":           locPoint(end.Location),
		"filenameIndex": int(start.File),
	}, true
}

func locPoint(l sourcemap.Location) map[string]any {
	return map[string]any{"offset": l.Offset, "row": l.Row, "column": l.Column}
}

func attrTuple(a ast.Attr) [3]any {
	kv := make([][2]string, len(a.KV))
	for i, p := range a.KV {
		kv[i] = [2]string{p.Key, p.Value}
	}
	classes := a.Classes
	if classes == nil {
		classes = []string{}
	}
	if kv == nil {
		kv = [][2]string{}
	}
	return [3]any{a.ID, classes, kv}
}

func (e *jsonEncoder) encodeBlocks(path string, blocks []ast.Block) {
	if len(blocks) == 0 {
		e.set(path, []any{})
		return
	}
	for i, b := range blocks {
		e.encodeBlock(arrIdx(path, i), b)
	}
}

func arrIdx(path string, i int) string {
	return path + "." + itoa(i)
}

func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	neg := i < 0
	if neg {
		i = -i
	}
	var digits []byte
	for i > 0 {
		digits = append([]byte{byte('0' + i%10)}, digits...)
		i /= 10
	}
	if neg {
		return "-" + string(digits)
	}
	return string(digits)
}

func (e *jsonEncoder) encodeBlock(path string, b ast.Block) {
	switch n := b.(type) {
	case ast.Paragraph:
		e.set(path+".t", "Para")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Plain:
		e.set(path+".t", "Plain")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Header:
		e.set(path+".t", "Header")
		e.set(path+".c.0", n.Level)
		e.set(path+".c.1", attrTuple(n.Attr))
		e.encodeInlines(path+".c.2", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.CodeBlock:
		e.set(path+".t", "CodeBlock")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.set(path+".c.1", n.Text)
		e.setLoc(path, n.SI)
	case ast.BlockQuote:
		e.set(path+".t", "BlockQuote")
		e.encodeBlocks(path+".c", n.Blocks)
		e.setLoc(path, n.SI)
	case ast.BulletList:
		e.set(path+".t", "BulletList")
		if len(n.Items) == 0 {
			e.set(path+".c", []any{})
		}
		for i, item := range n.Items {
			e.encodeBlocks(arrIdx(path+".c", i), item)
		}
		e.setLoc(path, n.SI)
	case ast.OrderedList:
		e.set(path+".t", "OrderedList")
		e.set(path+".c.0.0", n.Start)
		e.set(path+".c.0.1", int(n.Style))
		e.set(path+".c.0.2", int(n.Delimiter))
		if len(n.Items) == 0 {
			e.set(path+".c.1", []any{})
		}
		for i, item := range n.Items {
			e.encodeBlocks(arrIdx(path+".c.1", i), item)
		}
		e.setLoc(path, n.SI)
	case ast.DefinitionList:
		e.set(path+".t", "DefinitionList")
		if len(n.Items) == 0 {
			e.set(path+".c", []any{})
		}
		for i, item := range n.Items {
			itemPath := arrIdx(path+".c", i)
			e.encodeInlines(itemPath+".0", item.Term)
			if len(item.Defs) == 0 {
				e.set(itemPath+".1", []any{})
			}
			for j, def := range item.Defs {
				e.encodeBlocks(arrIdx(itemPath+".1", j), def)
			}
		}
		e.setLoc(path, n.SI)
	case ast.Div:
		e.set(path+".t", "Div")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.encodeBlocks(path+".c.1", n.Blocks)
		e.setLoc(path, n.SI)
	case ast.Table:
		e.set(path+".t", "Table")
		e.set(path+".c.attr", attrTuple(n.Attr))
		e.encodeBlocks(path+".c.caption", n.Caption)
		cols := make([]any, len(n.Columns))
		for i, c := range n.Columns {
			cols[i] = map[string]any{"alignment": int(c.Alignment), "widthFactor": c.WidthFactor}
		}
		e.set(path+".c.columns", cols)
		e.encodeCells(path+".c.head", n.Head)
		if len(n.Rows) == 0 {
			e.set(path+".c.rows", []any{})
		}
		for i, row := range n.Rows {
			e.encodeCells(arrIdx(path+".c.rows", i), row)
		}
		e.encodeCells(path+".c.foot", n.Foot)
		e.setLoc(path, n.SI)
	case ast.Figure:
		e.set(path+".t", "Figure")
		e.set(path+".c.attr", attrTuple(n.Attr))
		e.encodeBlocks(path+".c.caption", n.Caption)
		e.encodeBlocks(path+".c.blocks", n.Blocks)
		e.setLoc(path, n.SI)
	case ast.HorizontalRule:
		e.set(path+".t", "HorizontalRule")
		e.setLoc(path, n.SI)
	case ast.RawBlock:
		e.set(path+".t", "RawBlock")
		e.set(path+".c.0", n.Format)
		e.set(path+".c.1", n.Text)
		e.setLoc(path, n.SI)
	case ast.LineBlock:
		e.set(path+".t", "LineBlock")
		if len(n.Lines) == 0 {
			e.set(path+".c", []any{})
		}
		for i, line := range n.Lines {
			e.encodeInlines(arrIdx(path+".c", i), line)
		}
		e.setLoc(path, n.SI)
	case ast.CustomBlockNode:
		e.set(path+".t", "CustomBlock")
		e.set(path+".typeName", n.TypeName)
		e.set(path+".attr", attrTuple(n.Attr))
		e.encodeSlots(path+".slots", n.Slots)
		if n.PlainData != nil {
			e.set(path+".plainData", n.PlainData)
		}
		e.setLoc(path, n.SI)
	}
}

func (e *jsonEncoder) encodeCells(path string, cells []ast.TableCell) {
	if len(cells) == 0 {
		e.set(path, []any{})
		return
	}
	for i, c := range cells {
		cp := arrIdx(path, i)
		e.set(cp+".attr", attrTuple(c.Attr))
		e.set(cp+".rowSpan", c.RowSpan)
		e.set(cp+".colSpan", c.ColSpan)
		e.encodeBlocks(cp+".blocks", c.Blocks)
	}
}

func (e *jsonEncoder) encodeSlots(path string, slots map[string]ast.Slot) {
	for name, slot := range slots {
		sp := path + "." + name
		e.set(sp+".kind", int(slot.Kind))
		switch slot.Kind {
		case ast.SlotInline:
			if slot.Inline != nil {
				e.encodeInline(sp+".value", slot.Inline)
			}
		case ast.SlotBlock:
			if slot.Block != nil {
				e.encodeBlock(sp+".value", slot.Block)
			}
		case ast.SlotInlines:
			e.encodeInlines(sp+".value", slot.Inlines)
		case ast.SlotBlocks:
			e.encodeBlocks(sp+".value", slot.Blocks)
		}
	}
}

func (e *jsonEncoder) encodeInlines(path string, inlines []ast.Inline) {
	if len(inlines) == 0 {
		e.set(path, []any{})
		return
	}
	for i, in := range inlines {
		e.encodeInline(arrIdx(path, i), in)
	}
}

func (e *jsonEncoder) encodeInline(path string, in ast.Inline) {
	switch n := in.(type) {
	case ast.Str:
		e.set(path+".t", "Str")
		e.set(path+".c", n.Text)
		e.setLoc(path, n.SI)
	case ast.Space:
		e.set(path+".t", "Space")
		e.setLoc(path, n.SI)
	case ast.SoftBreak:
		e.set(path+".t", "SoftBreak")
		e.setLoc(path, n.SI)
	case ast.LineBreak:
		e.set(path+".t", "LineBreak")
		e.setLoc(path, n.SI)
	case ast.Emph:
		e.set(path+".t", "Emph")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Strong:
		e.set(path+".t", "Strong")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Strikeout:
		e.set(path+".t", "Strikeout")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Super:
		e.set(path+".t", "Superscript")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Sub:
		e.set(path+".t", "Subscript")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.SmallCaps:
		e.set(path+".t", "SmallCaps")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Underline:
		e.set(path+".t", "Underline")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Insert:
		e.set(path+".t", "Insert")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Delete:
		e.set(path+".t", "Delete")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Highlight:
		e.set(path+".t", "Highlight")
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.EditComment:
		e.set(path+".t", "EditComment")
		e.set(path+".author", n.Author)
		e.encodeInlines(path+".c", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Quoted:
		e.set(path+".t", "Quoted")
		e.set(path+".c.0", int(n.Type))
		e.encodeInlines(path+".c.1", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Link:
		e.set(path+".t", "Link")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.encodeInlines(path+".c.1", n.Inlines)
		e.set(path+".c.2", [2]string{n.Target, n.Title})
		e.setLoc(path, n.SI)
	case ast.Image:
		e.set(path+".t", "Image")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.encodeInlines(path+".c.1", n.Inlines)
		e.set(path+".c.2", [2]string{n.Target, n.Title})
		e.setLoc(path, n.SI)
	case ast.Code:
		e.set(path+".t", "Code")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.set(path+".c.1", n.Text)
		e.setLoc(path, n.SI)
	case ast.Math:
		e.set(path+".t", "Math")
		e.set(path+".c.0", int(n.Type))
		e.set(path+".c.1", n.Text)
		e.setLoc(path, n.SI)
	case ast.RawInline:
		e.set(path+".t", "RawInline")
		e.set(path+".c.0", n.Format)
		e.set(path+".c.1", n.Text)
		e.setLoc(path, n.SI)
	case ast.Span:
		e.set(path+".t", "Span")
		e.set(path+".c.0", attrTuple(n.Attr))
		e.encodeInlines(path+".c.1", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Note:
		e.set(path+".t", "Note")
		e.encodeBlocks(path+".c", n.Blocks)
		e.setLoc(path, n.SI)
	case ast.Cite:
		e.set(path+".t", "Cite")
		citations := make([]any, len(n.Citations))
		for i, c := range n.Citations {
			citations[i] = map[string]any{"id": c.ID}
		}
		e.set(path+".c.0", citations)
		e.encodeInlines(path+".c.1", n.Inlines)
		e.setLoc(path, n.SI)
	case ast.Shortcode:
		e.set(path+".t", "Shortcode")
		e.set(path+".name", n.Name)
		e.set(path+".args", n.Args)
		e.setLoc(path, n.SI)
	case ast.NoteReference:
		e.set(path+".t", "NoteReference")
		e.set(path+".label", n.Label)
		e.setLoc(path, n.SI)
	case ast.CustomInlineNode:
		e.set(path+".t", "CustomInline")
		e.set(path+".typeName", n.TypeName)
		e.set(path+".attr", attrTuple(n.Attr))
		e.encodeSlots(path+".slots", n.Slots)
		if n.PlainData != nil {
			e.set(path+".plainData", n.PlainData)
		}
		e.setLoc(path, n.SI)
	}
}

func (e *jsonEncoder) encodeMeta(path string, cv config.ConfigValue) {
	switch cv.Kind {
	case config.KindNull:
		e.set(path, nil)
	case config.KindScalar:
		e.set(path, cv.Scalar)
	case config.KindArray:
		if len(cv.Array) == 0 {
			e.set(path, []any{})
		}
		for i, item := range cv.Array {
			e.encodeMeta(arrIdx(path, i), item)
		}
	case config.KindMap:
		e.set(path, map[string]any{})
		if cv.Map != nil {
			for pair := cv.Map.Oldest(); pair != nil; pair = pair.Next() {
				e.encodeMeta(path+"."+pair.Key, pair.Value)
			}
		}
	case config.KindPandocInlines:
		inlines := make([]ast.Inline, 0, len(cv.Inlines))
		for _, p := range cv.Inlines {
			if in, ok := p.(ast.Inline); ok {
				inlines = append(inlines, in)
			}
		}
		e.encodeInlines(path, inlines)
	case config.KindPandocBlocks:
		blocks := make([]ast.Block, 0, len(cv.Blocks))
		for _, p := range cv.Blocks {
			if b, ok := p.(ast.Block); ok {
				blocks = append(blocks, b)
			}
		}
		e.encodeBlocks(path, blocks)
	case config.KindPath:
		e.set(path, cv.Path)
	case config.KindGlob:
		e.set(path, cv.Glob)
	case config.KindExpr:
		e.set(path, cv.Expr)
	}
}
