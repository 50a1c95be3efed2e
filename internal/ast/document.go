package ast

import "github.com/docforge/docforge/internal/config"

// Document is the root of the tree: source-mapped front-matter
// metadata plus an ordered block sequence.
type Document struct {
	Meta   config.ConfigValue
	Blocks []Block
}

// Walk visits every block in document order, recursing into block
// containers; fn returning false stops descent into that block's
// children (siblings still continue).
func (d *Document) Walk(fn func(Block) bool) {
	walkBlocks(d.Blocks, fn)
}

func walkBlocks(blocks []Block, fn func(Block) bool) {
	for _, b := range blocks {
		if !fn(b) {
			continue
		}
		switch n := b.(type) {
		case BlockQuote:
			walkBlocks(n.Blocks, fn)
		case Div:
			walkBlocks(n.Blocks, fn)
		case Figure:
			walkBlocks(n.Caption, fn)
			walkBlocks(n.Blocks, fn)
		case BulletList:
			for _, item := range n.Items {
				walkBlocks(item, fn)
			}
		case OrderedList:
			for _, item := range n.Items {
				walkBlocks(item, fn)
			}
		case DefinitionList:
			for _, item := range n.Items {
				for _, def := range item.Defs {
					walkBlocks(def, fn)
				}
			}
		case Table:
			for _, cell := range n.Head {
				walkBlocks(cell.Blocks, fn)
			}
			for _, row := range n.Rows {
				for _, cell := range row {
					walkBlocks(cell.Blocks, fn)
				}
			}
			for _, cell := range n.Foot {
				walkBlocks(cell.Blocks, fn)
			}
		case CustomBlockNode:
			for _, slot := range n.Slots {
				switch slot.Kind {
				case SlotBlock:
					if slot.Block != nil {
						walkBlocks([]Block{slot.Block}, fn)
					}
				case SlotBlocks:
					walkBlocks(slot.Blocks, fn)
				}
			}
		}
	}
}
