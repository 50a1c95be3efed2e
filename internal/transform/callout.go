package transform

import (
	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/sourcemap"
)

// calloutKinds are the recognized callout-{kind} class suffixes
// (spec.md §4.8).
var calloutKinds = map[string]bool{
	"note": true, "warning": true, "tip": true, "caution": true, "important": true,
}

// Callout converts any Div whose class list includes callout-{kind}
// into a CustomBlockNode, lifting the first Header of level >= 2 into a
// title slot and the rest of the content into a content slot
// (spec.md §4.8, scenario S5).
type Callout struct{}

func (Callout) Name() string { return "callout" }

func (Callout) Transform(ctx *RenderContext) error {
	ctx.Document.Blocks = transformCalloutBlocks(ctx.Document.Blocks)
	return nil
}

func calloutKind(attr ast.Attr) (string, bool) {
	for _, c := range attr.Classes {
		const prefix = "callout-"
		if len(c) > len(prefix) && c[:len(prefix)] == prefix {
			kind := c[len(prefix):]
			if calloutKinds[kind] {
				return kind, true
			}
		}
	}
	return "", false
}

func transformCalloutBlocks(blocks []ast.Block) []ast.Block {
	if blocks == nil {
		return nil
	}
	out := make([]ast.Block, len(blocks))
	for i, b := range blocks {
		out[i] = transformCalloutBlock(b)
	}
	return out
}

// transformCalloutBlock recurses into every block container this
// transform doesn't itself rewrite, per the AstTransform contract that
// a transform must not silently skip nested content.
func transformCalloutBlock(b ast.Block) ast.Block {
	switch n := b.(type) {
	case ast.Div:
		if kind, ok := calloutKind(n.Attr); ok {
			return buildCallout(n.Attr, n.Blocks, kind, n.SI)
		}
		n.Blocks = transformCalloutBlocks(n.Blocks)
		return n
	case ast.BlockQuote:
		n.Blocks = transformCalloutBlocks(n.Blocks)
		return n
	case ast.BulletList:
		for i := range n.Items {
			n.Items[i] = transformCalloutBlocks(n.Items[i])
		}
		return n
	case ast.OrderedList:
		for i := range n.Items {
			n.Items[i] = transformCalloutBlocks(n.Items[i])
		}
		return n
	case ast.DefinitionList:
		for i := range n.Items {
			for j := range n.Items[i].Defs {
				n.Items[i].Defs[j] = transformCalloutBlocks(n.Items[i].Defs[j])
			}
		}
		return n
	case ast.Figure:
		n.Caption = transformCalloutBlocks(n.Caption)
		n.Blocks = transformCalloutBlocks(n.Blocks)
		return n
	case ast.Table:
		n.Caption = transformCalloutBlocks(n.Caption)
		for i := range n.Head {
			n.Head[i].Blocks = transformCalloutBlocks(n.Head[i].Blocks)
		}
		for i := range n.Rows {
			for j := range n.Rows[i] {
				n.Rows[i][j].Blocks = transformCalloutBlocks(n.Rows[i][j].Blocks)
			}
		}
		for i := range n.Foot {
			n.Foot[i].Blocks = transformCalloutBlocks(n.Foot[i].Blocks)
		}
		return n
	case ast.CustomBlockNode:
		for name, slot := range n.Slots {
			switch slot.Kind {
			case ast.SlotBlocks:
				slot.Blocks = transformCalloutBlocks(slot.Blocks)
			case ast.SlotBlock:
				if slot.Block != nil {
					slot.Block = transformCalloutBlock(slot.Block)
				}
			}
			n.Slots[name] = slot
		}
		return n
	default:
		return b
	}
}

func buildCallout(attr ast.Attr, blocks []ast.Block, kind string, si sourcemap.SourceInfo) ast.CustomBlockNode {
	blocks = transformCalloutBlocks(blocks)

	var title []ast.Inline
	var content []ast.Block
	titleTaken := false
	for _, b := range blocks {
		if !titleTaken {
			if h, ok := b.(ast.Header); ok && h.Level >= 2 {
				title = h.Inlines
				titleTaken = true
				continue
			}
		}
		content = append(content, b)
	}

	slots := map[string]ast.Slot{
		"content": {Kind: ast.SlotBlocks, Blocks: content},
	}
	if titleTaken {
		slots["title"] = ast.Slot{Kind: ast.SlotInlines, Inlines: title}
	}

	appearance, _ := attr.Get("appearance")
	collapse, _ := attr.Get("collapse")
	icon, _ := attr.Get("icon")

	return ast.CustomBlockNode{
		TypeName: "Callout",
		Attr:     attr,
		Slots:    slots,
		PlainData: map[string]any{
			"type":       kind,
			"appearance": appearance,
			"collapse":   collapse,
			"icon":       icon,
		},
		SI: si,
	}
}
