package reader

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/sourcemap"
)

// ReadJSON reconstructs a Document from the JSON shape produced by
// writer.WriteJSON, resolving each node's "l" location object back
// into a SourceInfo registered against reg. A node missing "l"
// (hand-authored JSON, or a node synthesized after the original parse)
// degrades to a FilterProvenance SourceInfo rather than failing the
// read, which is what keeps invariant 5's round trip total.
func ReadJSON(data []byte, reg *sourcemap.Registry) (*ast.Document, error) {
	root := gjson.ParseBytes(data)

	var filenames []string
	root.Get("astContext.filenames").ForEach(func(_, v gjson.Result) bool {
		filenames = append(filenames, v.String())
		return true
	})
	fileIDs := make([]sourcemap.FileID, len(filenames))
	for i, p := range filenames {
		fileIDs[i] = reg.RegisterFile(p, nil)
	}

	d := &jsonDecoder{fileIDs: fileIDs}
	return &ast.Document{
		Meta:   d.decodeMeta(root.Get("meta")),
		Blocks: d.decodeBlocks(root.Get("blocks")),
	}, nil
}

type jsonDecoder struct {
	fileIDs []sourcemap.FileID
}

func (d *jsonDecoder) decodeSI(v gjson.Result) sourcemap.SourceInfo {
	l := v.Get("l")
	if !l.Exists() {
		return sourcemap.NewFilterProvenance("json-import")
	}
	idx := int(l.Get("filenameIndex").Int())
	if idx < 0 || idx >= len(d.fileIDs) {
		return sourcemap.NewFilterProvenance("json-import")
	}
	start := int(l.Get("start.offset").Int())
	end := int(l.Get("end.offset").Int())
	return sourcemap.NewOriginal(d.fileIDs[idx], sourcemap.Range{Start: start, End: end})
}

func (d *jsonDecoder) decodeAttr(v gjson.Result) ast.Attr {
	if !v.Exists() {
		return ast.Attr{}
	}
	id := v.Get("0").String()
	var classes []string
	for _, c := range v.Get("1").Array() {
		classes = append(classes, c.String())
	}
	var kv []ast.KeyValue
	for _, pair := range v.Get("2").Array() {
		elems := pair.Array()
		if len(elems) == 2 {
			kv = append(kv, ast.KeyValue{Key: elems[0].String(), Value: elems[1].String()})
		}
	}
	return ast.Attr{ID: id, Classes: classes, KV: kv}
}

func (d *jsonDecoder) decodeCells(v gjson.Result) []ast.TableCell {
	var out []ast.TableCell
	for _, c := range v.Array() {
		out = append(out, ast.TableCell{
			Attr:    d.decodeAttr(c.Get("attr")),
			Blocks:  d.decodeBlocks(c.Get("blocks")),
			RowSpan: int(c.Get("rowSpan").Int()),
			ColSpan: int(c.Get("colSpan").Int()),
		})
	}
	return out
}

func (d *jsonDecoder) decodeSlots(v gjson.Result) map[string]ast.Slot {
	out := map[string]ast.Slot{}
	v.ForEach(func(key, val gjson.Result) bool {
		kind := ast.SlotKind(val.Get("kind").Int())
		slot := ast.Slot{Kind: kind}
		switch kind {
		case ast.SlotInline:
			slot.Inline = d.decodeInline(val.Get("value"))
		case ast.SlotBlock:
			slot.Block = d.decodeBlock(val.Get("value"))
		case ast.SlotInlines:
			slot.Inlines = d.decodeInlines(val.Get("value"))
		case ast.SlotBlocks:
			slot.Blocks = d.decodeBlocks(val.Get("value"))
		}
		out[key.String()] = slot
		return true
	})
	return out
}

func decodePlainData(v gjson.Result) map[string]any {
	if !v.Exists() {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(v.Raw), &m); err != nil {
		return nil
	}
	return m
}

func (d *jsonDecoder) decodeBlocks(v gjson.Result) []ast.Block {
	arr := v.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]ast.Block, 0, len(arr))
	for _, item := range arr {
		out = append(out, d.decodeBlock(item))
	}
	return out
}

func (d *jsonDecoder) decodeBlock(v gjson.Result) ast.Block {
	t := v.Get("t").String()
	si := d.decodeSI(v)
	c := v.Get("c")
	switch t {
	case "Para":
		return ast.Paragraph{Inlines: d.decodeInlines(c), SI: si}
	case "Plain":
		return ast.Plain{Inlines: d.decodeInlines(c), SI: si}
	case "Header":
		return ast.Header{
			Level:   int(c.Get("0").Int()),
			Attr:    d.decodeAttr(c.Get("1")),
			Inlines: d.decodeInlines(c.Get("2")),
			SI:      si,
		}
	case "CodeBlock":
		return ast.CodeBlock{Attr: d.decodeAttr(c.Get("0")), Text: c.Get("1").String(), SI: si}
	case "BlockQuote":
		return ast.BlockQuote{Blocks: d.decodeBlocks(c), SI: si}
	case "BulletList":
		items := c.Array()
		out := make([][]ast.Block, len(items))
		for i, it := range items {
			out[i] = d.decodeBlocks(it)
		}
		return ast.BulletList{Items: out, SI: si}
	case "OrderedList":
		items := c.Get("1").Array()
		out := make([][]ast.Block, len(items))
		for i, it := range items {
			out[i] = d.decodeBlocks(it)
		}
		return ast.OrderedList{
			Start:     int(c.Get("0.0").Int()),
			Style:     ast.OrderedListStyle(c.Get("0.1").Int()),
			Delimiter: ast.OrderedListDelimiter(c.Get("0.2").Int()),
			Items:     out,
			SI:        si,
		}
	case "DefinitionList":
		items := c.Array()
		out := make([]ast.DefinitionItem, len(items))
		for i, it := range items {
			defsArr := it.Get("1").Array()
			defs := make([][]ast.Block, len(defsArr))
			for j, def := range defsArr {
				defs[j] = d.decodeBlocks(def)
			}
			out[i] = ast.DefinitionItem{Term: d.decodeInlines(it.Get("0")), Defs: defs}
		}
		return ast.DefinitionList{Items: out, SI: si}
	case "Div":
		return ast.Div{Attr: d.decodeAttr(c.Get("0")), Blocks: d.decodeBlocks(c.Get("1")), SI: si}
	case "Table":
		var cols []ast.TableColumnSpec
		for _, cc := range c.Get("columns").Array() {
			cols = append(cols, ast.TableColumnSpec{
				Alignment:   ast.TableAlignment(cc.Get("alignment").Int()),
				WidthFactor: cc.Get("widthFactor").Float(),
			})
		}
		var rows [][]ast.TableCell
		for _, r := range c.Get("rows").Array() {
			rows = append(rows, d.decodeCells(r))
		}
		return ast.Table{
			Attr:    d.decodeAttr(c.Get("attr")),
			Caption: d.decodeBlocks(c.Get("caption")),
			Columns: cols,
			Head:    d.decodeCells(c.Get("head")),
			Rows:    rows,
			Foot:    d.decodeCells(c.Get("foot")),
			SI:      si,
		}
	case "Figure":
		return ast.Figure{
			Attr:    d.decodeAttr(c.Get("attr")),
			Caption: d.decodeBlocks(c.Get("caption")),
			Blocks:  d.decodeBlocks(c.Get("blocks")),
			SI:      si,
		}
	case "HorizontalRule":
		return ast.HorizontalRule{SI: si}
	case "RawBlock":
		return ast.RawBlock{Format: c.Get("0").String(), Text: c.Get("1").String(), SI: si}
	case "LineBlock":
		lines := c.Array()
		out := make([][]ast.Inline, len(lines))
		for i, l := range lines {
			out[i] = d.decodeInlines(l)
		}
		return ast.LineBlock{Lines: out, SI: si}
	case "CustomBlock":
		return ast.CustomBlockNode{
			TypeName:  v.Get("typeName").String(),
			Attr:      d.decodeAttr(v.Get("attr")),
			Slots:     d.decodeSlots(v.Get("slots")),
			PlainData: decodePlainData(v.Get("plainData")),
			SI:        si,
		}
	}
	return ast.Paragraph{SI: si}
}

func (d *jsonDecoder) decodeInlines(v gjson.Result) []ast.Inline {
	arr := v.Array()
	if len(arr) == 0 {
		return nil
	}
	out := make([]ast.Inline, 0, len(arr))
	for _, item := range arr {
		out = append(out, d.decodeInline(item))
	}
	return out
}

func (d *jsonDecoder) decodeInline(v gjson.Result) ast.Inline {
	t := v.Get("t").String()
	si := d.decodeSI(v)
	c := v.Get("c")
	switch t {
	case "Str":
		return ast.Str{Text: c.String(), SI: si}
	case "Space":
		return ast.Space{SI: si}
	case "SoftBreak":
		return ast.SoftBreak{SI: si}
	case "LineBreak":
		return ast.LineBreak{SI: si}
	case "Emph":
		return ast.Emph{Inlines: d.decodeInlines(c), SI: si}
	case "Strong":
		return ast.Strong{Inlines: d.decodeInlines(c), SI: si}
	case "Strikeout":
		return ast.Strikeout{Inlines: d.decodeInlines(c), SI: si}
	case "Superscript":
		return ast.Super{Inlines: d.decodeInlines(c), SI: si}
	case "Subscript":
		return ast.Sub{Inlines: d.decodeInlines(c), SI: si}
	case "SmallCaps":
		return ast.SmallCaps{Inlines: d.decodeInlines(c), SI: si}
	case "Underline":
		return ast.Underline{Inlines: d.decodeInlines(c), SI: si}
	case "Insert":
		return ast.Insert{Inlines: d.decodeInlines(c), SI: si}
	case "Delete":
		return ast.Delete{Inlines: d.decodeInlines(c), SI: si}
	case "Highlight":
		return ast.Highlight{Inlines: d.decodeInlines(c), SI: si}
	case "EditComment":
		return ast.EditComment{Inlines: d.decodeInlines(c), Author: v.Get("author").String(), SI: si}
	case "Quoted":
		return ast.Quoted{Type: ast.QuoteType(c.Get("0").Int()), Inlines: d.decodeInlines(c.Get("1")), SI: si}
	case "Link":
		return ast.Link{
			Attr:    d.decodeAttr(c.Get("0")),
			Inlines: d.decodeInlines(c.Get("1")),
			Target:  c.Get("2.0").String(),
			Title:   c.Get("2.1").String(),
			SI:      si,
		}
	case "Image":
		return ast.Image{
			Attr:    d.decodeAttr(c.Get("0")),
			Inlines: d.decodeInlines(c.Get("1")),
			Target:  c.Get("2.0").String(),
			Title:   c.Get("2.1").String(),
			SI:      si,
		}
	case "Code":
		return ast.Code{Attr: d.decodeAttr(c.Get("0")), Text: c.Get("1").String(), SI: si}
	case "Math":
		return ast.Math{Type: ast.MathType(c.Get("0").Int()), Text: c.Get("1").String(), SI: si}
	case "RawInline":
		return ast.RawInline{Format: c.Get("0").String(), Text: c.Get("1").String(), SI: si}
	case "Span":
		return ast.Span{Attr: d.decodeAttr(c.Get("0")), Inlines: d.decodeInlines(c.Get("1")), SI: si}
	case "Note":
		return ast.Note{Blocks: d.decodeBlocks(c), SI: si}
	case "Cite":
		var cites []ast.Citation
		for _, cc := range c.Get("0").Array() {
			cites = append(cites, ast.Citation{ID: cc.Get("id").String()})
		}
		return ast.Cite{Citations: cites, Inlines: d.decodeInlines(c.Get("1")), SI: si}
	case "Shortcode":
		var args []string
		for _, a := range v.Get("args").Array() {
			args = append(args, a.String())
		}
		return ast.Shortcode{Name: v.Get("name").String(), Args: args, SI: si}
	case "NoteReference":
		return ast.NoteReference{Label: v.Get("label").String(), SI: si}
	case "CustomInline":
		return ast.CustomInlineNode{
			TypeName:  v.Get("typeName").String(),
			Attr:      d.decodeAttr(v.Get("attr")),
			Slots:     d.decodeSlots(v.Get("slots")),
			PlainData: decodePlainData(v.Get("plainData")),
			SI:        si,
		}
	}
	return ast.Str{SI: si}
}

// decodeMeta rebuilds a ConfigValue tree from plain JSON, inferring
// KindPandocInlines when an array's elements carry a "t" discriminator
// the way every encoded Inline/Block node does. Per-field source
// locations aren't part of the JSON meta shape, so reconstructed
// ConfigValues carry a FilterProvenance SourceInfo.
func (d *jsonDecoder) decodeMeta(v gjson.Result) config.ConfigValue {
	synth := sourcemap.NewFilterProvenance("json-import")
	switch {
	case !v.Exists() || v.Type == gjson.Null:
		return config.Null(synth)
	case v.IsObject():
		m := config.NewOrderedMap()
		v.ForEach(func(k, val gjson.Result) bool {
			m.Set(k.String(), d.decodeMeta(val))
			return true
		})
		return config.ConfigValue{Kind: config.KindMap, Map: m, SourceInfo: synth}
	case v.IsArray():
		arr := v.Array()
		if len(arr) > 0 && arr[0].Get("t").Exists() {
			inlines := make([]config.PandocInline, 0, len(arr))
			for _, item := range arr {
				inlines = append(inlines, d.decodeInline(item))
			}
			return config.ConfigValue{Kind: config.KindPandocInlines, Inlines: inlines, SourceInfo: synth}
		}
		items := make([]config.ConfigValue, 0, len(arr))
		for _, item := range arr {
			items = append(items, d.decodeMeta(item))
		}
		return config.ConfigValue{Kind: config.KindArray, Array: items, SourceInfo: synth}
	default:
		return config.NewScalar(v.Value(), synth)
	}
}
