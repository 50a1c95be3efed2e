package ast

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/zeebo/xxh3"
)

// StructuralHash computes a hash of a Block or Inline's structure,
// explicitly excluding SourceInfo — two nodes that differ only in
// where their bytes came from hash identically. Used by the
// reconciler (C11) to recognize unchanged subtrees across an execute
// pass without per-node equality checks.
func StructuralHash(node any) uint64 {
	var buf []byte
	buf = encodeNode(buf, node)
	return xxh3.Hash(buf)
}

func encodeNode(buf []byte, node any) []byte {
	switch n := node.(type) {
	case nil:
		return append(buf, 'N')
	case Block:
		return encodeBlock(buf, n)
	case Inline:
		return encodeInline(buf, n)
	default:
		return append(buf, fmt.Sprintf("?%T", node)...)
	}
}

func encodeTag(buf []byte, tag string) []byte {
	buf = append(buf, tag...)
	return append(buf, ':')
}

func encodeStr(buf []byte, s string) []byte {
	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(s)))
	buf = append(buf, lenBuf[:]...)
	return append(buf, s...)
}

func encodeAttr(buf []byte, a Attr) []byte {
	buf = encodeStr(buf, a.ID)
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(a.Classes)))
	buf = append(buf, n[:]...)
	for _, c := range a.Classes {
		buf = encodeStr(buf, c)
	}
	binary.LittleEndian.PutUint64(n[:], uint64(len(a.KV)))
	buf = append(buf, n[:]...)
	for _, kv := range a.KV {
		buf = encodeStr(buf, kv.Key)
		buf = encodeStr(buf, kv.Value)
	}
	return buf
}

func encodeInlines(buf []byte, items []Inline) []byte {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(items)))
	buf = append(buf, n[:]...)
	for _, it := range items {
		buf = encodeInline(buf, it)
	}
	return buf
}

func encodeBlocks(buf []byte, items []Block) []byte {
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(items)))
	buf = append(buf, n[:]...)
	for _, it := range items {
		buf = encodeBlock(buf, it)
	}
	return buf
}

func encodeInline(buf []byte, in Inline) []byte {
	switch n := in.(type) {
	case Str:
		buf = encodeTag(buf, "Str")
		return encodeStr(buf, n.Text)
	case Space:
		return encodeTag(buf, "Space")
	case SoftBreak:
		return encodeTag(buf, "SoftBreak")
	case LineBreak:
		return encodeTag(buf, "LineBreak")
	case Emph:
		return encodeInlines(encodeTag(buf, "Emph"), n.Inlines)
	case Strong:
		return encodeInlines(encodeTag(buf, "Strong"), n.Inlines)
	case Strikeout:
		return encodeInlines(encodeTag(buf, "Strikeout"), n.Inlines)
	case Super:
		return encodeInlines(encodeTag(buf, "Super"), n.Inlines)
	case Sub:
		return encodeInlines(encodeTag(buf, "Sub"), n.Inlines)
	case SmallCaps:
		return encodeInlines(encodeTag(buf, "SmallCaps"), n.Inlines)
	case Underline:
		return encodeInlines(encodeTag(buf, "Underline"), n.Inlines)
	case Quoted:
		buf = encodeTag(buf, "Quoted")
		buf = append(buf, byte(n.Type))
		return encodeInlines(buf, n.Inlines)
	case Link:
		buf = encodeTag(buf, "Link")
		buf = encodeAttr(buf, n.Attr)
		buf = encodeStr(buf, n.Target)
		buf = encodeStr(buf, n.Title)
		return encodeInlines(buf, n.Inlines)
	case Image:
		buf = encodeTag(buf, "Image")
		buf = encodeAttr(buf, n.Attr)
		buf = encodeStr(buf, n.Target)
		buf = encodeStr(buf, n.Title)
		return encodeInlines(buf, n.Inlines)
	case Code:
		buf = encodeTag(buf, "Code")
		buf = encodeAttr(buf, n.Attr)
		return encodeStr(buf, n.Text)
	case Math:
		buf = encodeTag(buf, "Math")
		buf = append(buf, byte(n.Type))
		return encodeStr(buf, n.Text)
	case RawInline:
		buf = encodeTag(buf, "RawInline")
		buf = encodeStr(buf, n.Format)
		return encodeStr(buf, n.Text)
	case Span:
		buf = encodeTag(buf, "Span")
		buf = encodeAttr(buf, n.Attr)
		return encodeInlines(buf, n.Inlines)
	case Note:
		return encodeBlocks(encodeTag(buf, "Note"), n.Blocks)
	case Cite:
		buf = encodeTag(buf, "Cite")
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Citations)))
		buf = append(buf, cnt[:]...)
		for _, c := range n.Citations {
			buf = encodeStr(buf, c.ID)
			buf = encodeInlines(buf, c.Prefix)
			buf = encodeInlines(buf, c.Suffix)
		}
		return encodeInlines(buf, n.Inlines)
	case Shortcode:
		buf = encodeTag(buf, "Shortcode")
		buf = encodeStr(buf, n.Name)
		for _, a := range n.Args {
			buf = encodeStr(buf, a)
		}
		return buf
	case NoteReference:
		buf = encodeTag(buf, "NoteReference")
		return encodeStr(buf, n.Label)
	case Insert:
		return encodeInlines(encodeTag(buf, "Insert"), n.Inlines)
	case Delete:
		return encodeInlines(encodeTag(buf, "Delete"), n.Inlines)
	case Highlight:
		return encodeInlines(encodeTag(buf, "Highlight"), n.Inlines)
	case EditComment:
		buf = encodeTag(buf, "EditComment")
		buf = encodeStr(buf, n.Author)
		return encodeInlines(buf, n.Inlines)
	case CustomInlineNode:
		return encodeCustom(encodeTag(buf, "CustomInline"), n.TypeName, n.Attr, n.Slots)
	default:
		return append(buf, fmt.Sprintf("?inline:%T", in)...)
	}
}

func encodeBlock(buf []byte, b Block) []byte {
	switch n := b.(type) {
	case Paragraph:
		return encodeInlines(encodeTag(buf, "Paragraph"), n.Inlines)
	case Plain:
		return encodeInlines(encodeTag(buf, "Plain"), n.Inlines)
	case Header:
		buf = encodeTag(buf, "Header")
		buf = append(buf, byte(n.Level))
		buf = encodeAttr(buf, n.Attr)
		return encodeInlines(buf, n.Inlines)
	case CodeBlock:
		buf = encodeTag(buf, "CodeBlock")
		buf = encodeAttr(buf, n.Attr)
		return encodeStr(buf, n.Text)
	case BlockQuote:
		return encodeBlocks(encodeTag(buf, "BlockQuote"), n.Blocks)
	case BulletList:
		buf = encodeTag(buf, "BulletList")
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Items)))
		buf = append(buf, cnt[:]...)
		for _, item := range n.Items {
			buf = encodeBlocks(buf, item)
		}
		return buf
	case OrderedList:
		buf = encodeTag(buf, "OrderedList")
		buf = append(buf, byte(n.Start), byte(n.Style), byte(n.Delimiter))
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Items)))
		buf = append(buf, cnt[:]...)
		for _, item := range n.Items {
			buf = encodeBlocks(buf, item)
		}
		return buf
	case DefinitionList:
		buf = encodeTag(buf, "DefinitionList")
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Items)))
		buf = append(buf, cnt[:]...)
		for _, item := range n.Items {
			buf = encodeInlines(buf, item.Term)
			for _, def := range item.Defs {
				buf = encodeBlocks(buf, def)
			}
		}
		return buf
	case Div:
		buf = encodeTag(buf, "Div")
		buf = encodeAttr(buf, n.Attr)
		return encodeBlocks(buf, n.Blocks)
	case Table:
		buf = encodeTag(buf, "Table")
		buf = encodeAttr(buf, n.Attr)
		buf = encodeBlocks(buf, n.Caption)
		for _, col := range n.Columns {
			buf = append(buf, byte(col.Alignment))
		}
		buf = encodeTableCells(buf, n.Head)
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Rows)))
		buf = append(buf, cnt[:]...)
		for _, row := range n.Rows {
			buf = encodeTableCells(buf, row)
		}
		return encodeTableCells(buf, n.Foot)
	case Figure:
		buf = encodeTag(buf, "Figure")
		buf = encodeAttr(buf, n.Attr)
		buf = encodeBlocks(buf, n.Caption)
		return encodeBlocks(buf, n.Blocks)
	case HorizontalRule:
		return encodeTag(buf, "HorizontalRule")
	case RawBlock:
		buf = encodeTag(buf, "RawBlock")
		buf = encodeStr(buf, n.Format)
		return encodeStr(buf, n.Text)
	case LineBlock:
		buf = encodeTag(buf, "LineBlock")
		var cnt [8]byte
		binary.LittleEndian.PutUint64(cnt[:], uint64(len(n.Lines)))
		buf = append(buf, cnt[:]...)
		for _, line := range n.Lines {
			buf = encodeInlines(buf, line)
		}
		return buf
	case CustomBlockNode:
		return encodeCustom(encodeTag(buf, "CustomBlock"), n.TypeName, n.Attr, n.Slots)
	default:
		return append(buf, fmt.Sprintf("?block:%T", b)...)
	}
}

func encodeTableCells(buf []byte, cells []TableCell) []byte {
	var cnt [8]byte
	binary.LittleEndian.PutUint64(cnt[:], uint64(len(cells)))
	buf = append(buf, cnt[:]...)
	for _, cell := range cells {
		buf = encodeAttr(buf, cell.Attr)
		buf = append(buf, byte(cell.RowSpan), byte(cell.ColSpan))
		buf = encodeBlocks(buf, cell.Blocks)
	}
	return buf
}

func encodeCustom(buf []byte, typeName string, attr Attr, slots map[string]Slot) []byte {
	buf = encodeStr(buf, typeName)
	buf = encodeAttr(buf, attr)

	names := make([]string, 0, len(slots))
	for name := range slots {
		names = append(names, name)
	}
	sort.Strings(names)

	var cnt [8]byte
	binary.LittleEndian.PutUint64(cnt[:], uint64(len(names)))
	buf = append(buf, cnt[:]...)
	for _, name := range names {
		buf = encodeStr(buf, name)
		slot := slots[name]
		buf = append(buf, byte(slot.Kind))
		switch slot.Kind {
		case SlotInline:
			buf = encodeInline(buf, slot.Inline)
		case SlotBlock:
			buf = encodeBlock(buf, slot.Block)
		case SlotInlines:
			buf = encodeInlines(buf, slot.Inlines)
		case SlotBlocks:
			buf = encodeBlocks(buf, slot.Blocks)
		}
	}
	return buf
}
