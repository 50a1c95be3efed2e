// Package reconcile merges an AST re-parsed from an engine's executed
// markdown output back against the document's original AST (C11),
// so that blocks execution left untouched keep their original source
// provenance instead of the synthesized spans a fresh parse assigns.
package reconcile

import (
	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
)

// PlanKind classifies how one position in the reconciled output was
// produced.
type PlanKind int

const (
	// KeepOriginal reuses an original block verbatim, including its
	// SourceInfo, because an executed block hashed identically to it.
	KeepOriginal PlanKind = iota
	// UseExecuted takes the executed block as-is: nothing in the
	// original tree matched it, so it carries whatever (synthesized)
	// provenance the re-parse gave it.
	UseExecuted
	// RecurseIntoContainer means the two blocks are same-type
	// containers whose own content differs but whose children were
	// reconciled individually; the result keeps the original
	// container's own attributes and SourceInfo with merged children.
	RecurseIntoContainer
)

// PlanEntry records one decision the reconciler made, for diagnostics
// or testing; Result is the block actually emitted.
type PlanEntry struct {
	Kind   PlanKind
	Result ast.Block
}

// InlinePlanEntry is PlanEntry's inline-sequence counterpart.
type InlinePlanEntry struct {
	Kind   PlanKind
	Result ast.Inline
}

// Document reconciles executed against original, returning a new
// Document whose Blocks interleave kept-original and taken-executed
// content, preferring original provenance wherever structurally
// possible. Meta is taken from executed when present (frontmatter can
// itself be templated), falling back to original's otherwise.
func Document(original, executed *ast.Document) *ast.Document {
	meta := executed.Meta
	if meta.Kind == config.KindNull {
		meta = original.Meta
	}
	blocks, _ := ReconcileBlocks(original.Blocks, executed.Blocks)
	return &ast.Document{Meta: meta, Blocks: blocks}
}

// ReconcileBlocks aligns executed against original at this level,
// matching blocks by structural hash in original document order and
// recursing into same-type containers that don't hash-match whole.
// It returns the merged block list and the plan that produced it.
func ReconcileBlocks(original, executed []ast.Block) ([]ast.Block, []PlanEntry) {
	origHashes := make([]uint64, len(original))
	byHash := map[uint64][]int{}
	for i, b := range original {
		h := ast.StructuralHash(b)
		origHashes[i] = h
		byHash[h] = append(byHash[h], i)
	}

	result := make([]ast.Block, 0, len(executed))
	plan := make([]PlanEntry, 0, len(executed))
	lastOrig := -1

	for _, eb := range executed {
		h := ast.StructuralHash(eb)
		if idx, ok := takeCandidate(byHash, h, lastOrig); ok {
			result = append(result, original[idx])
			plan = append(plan, PlanEntry{Kind: KeepOriginal, Result: original[idx]})
			lastOrig = idx
			continue
		}

		if lastOrig+1 < len(original) {
			ob := original[lastOrig+1]
			if merged, ok := recurseContainer(ob, eb); ok {
				result = append(result, merged)
				plan = append(plan, PlanEntry{Kind: RecurseIntoContainer, Result: merged})
				lastOrig++
				continue
			}
		}

		result = append(result, eb)
		plan = append(plan, PlanEntry{Kind: UseExecuted, Result: eb})
	}

	return result, plan
}

// ReconcileInlines aligns executed against original inline sequences,
// mirroring ReconcileBlocks exactly: spec.md §4.10 applies the same
// hash-match/recurse/use-executed algorithm to inline sequences as to
// block sequences.
func ReconcileInlines(original, executed []ast.Inline) ([]ast.Inline, []InlinePlanEntry) {
	byHash := map[uint64][]int{}
	for i, n := range original {
		h := ast.StructuralHash(n)
		byHash[h] = append(byHash[h], i)
	}

	result := make([]ast.Inline, 0, len(executed))
	plan := make([]InlinePlanEntry, 0, len(executed))
	lastOrig := -1

	for _, en := range executed {
		h := ast.StructuralHash(en)
		if idx, ok := takeCandidate(byHash, h, lastOrig); ok {
			result = append(result, original[idx])
			plan = append(plan, InlinePlanEntry{Kind: KeepOriginal, Result: original[idx]})
			lastOrig = idx
			continue
		}

		if lastOrig+1 < len(original) {
			on := original[lastOrig+1]
			if merged, ok := recurseInlineContainer(on, en); ok {
				result = append(result, merged)
				plan = append(plan, InlinePlanEntry{Kind: RecurseIntoContainer, Result: merged})
				lastOrig++
				continue
			}
		}

		result = append(result, en)
		plan = append(plan, InlinePlanEntry{Kind: UseExecuted, Result: en})
	}

	return result, plan
}

// recurseInlineContainer is recurseContainer's inline-container
// counterpart: same-concrete-type inline containers whose own content
// differs merge by reconciling their children, keeping the original's
// own attributes and SourceInfo. Note is included because, although it
// occupies inline position, its body is a block sequence.
func recurseInlineContainer(orig, exec ast.Inline) (ast.Inline, bool) {
	switch o := orig.(type) {
	case ast.Emph:
		e, ok := exec.(ast.Emph)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Strong:
		e, ok := exec.(ast.Strong)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Strikeout:
		e, ok := exec.(ast.Strikeout)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Super:
		e, ok := exec.(ast.Super)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Sub:
		e, ok := exec.(ast.Sub)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.SmallCaps:
		e, ok := exec.(ast.SmallCaps)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Underline:
		e, ok := exec.(ast.Underline)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Quoted:
		e, ok := exec.(ast.Quoted)
		if !ok || o.Type != e.Type {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Span:
		e, ok := exec.(ast.Span)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Link:
		e, ok := exec.(ast.Link)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Image:
		e, ok := exec.(ast.Image)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Insert:
		e, ok := exec.(ast.Insert)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Delete:
		e, ok := exec.(ast.Delete)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Highlight:
		e, ok := exec.(ast.Highlight)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.EditComment:
		e, ok := exec.(ast.EditComment)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Cite:
		e, ok := exec.(ast.Cite)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Note:
		e, ok := exec.(ast.Note)
		if !ok {
			return nil, false
		}
		o.Blocks, _ = ReconcileBlocks(o.Blocks, e.Blocks)
		return o, true

	default:
		return nil, false
	}
}

// takeCandidate returns the smallest original index with hash h that
// is still after lastOrig (preserving relative document order), and
// removes it from the pool so it isn't reused for a later block.
func takeCandidate(byHash map[uint64][]int, h uint64, lastOrig int) (int, bool) {
	candidates := byHash[h]
	for i, idx := range candidates {
		if idx > lastOrig {
			byHash[h] = append(candidates[:i], candidates[i+1:]...)
			return idx, true
		}
	}
	return 0, false
}

// recurseContainer merges two same-concrete-type container blocks by
// reconciling their children, keeping the original's own attributes
// and SourceInfo. It reports ok=false for leaf blocks or type
// mismatches, where whole-block replacement is the only option.
func recurseContainer(orig, exec ast.Block) (ast.Block, bool) {
	switch o := orig.(type) {
	case ast.Paragraph:
		e, ok := exec.(ast.Paragraph)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Plain:
		e, ok := exec.(ast.Plain)
		if !ok {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.Header:
		e, ok := exec.(ast.Header)
		if !ok || o.Level != e.Level {
			return nil, false
		}
		o.Inlines, _ = ReconcileInlines(o.Inlines, e.Inlines)
		return o, true

	case ast.BlockQuote:
		e, ok := exec.(ast.BlockQuote)
		if !ok {
			return nil, false
		}
		children, _ := ReconcileBlocks(o.Blocks, e.Blocks)
		o.Blocks = children
		return o, true

	case ast.Div:
		e, ok := exec.(ast.Div)
		if !ok {
			return nil, false
		}
		children, _ := ReconcileBlocks(o.Blocks, e.Blocks)
		o.Blocks = children
		return o, true

	case ast.Figure:
		e, ok := exec.(ast.Figure)
		if !ok {
			return nil, false
		}
		o.Blocks, _ = ReconcileBlocks(o.Blocks, e.Blocks)
		return o, true

	case ast.BulletList:
		e, ok := exec.(ast.BulletList)
		if !ok || len(o.Items) != len(e.Items) {
			return nil, false
		}
		items := make([][]ast.Block, len(o.Items))
		for i := range o.Items {
			items[i], _ = ReconcileBlocks(o.Items[i], e.Items[i])
		}
		o.Items = items
		return o, true

	case ast.OrderedList:
		e, ok := exec.(ast.OrderedList)
		if !ok || len(o.Items) != len(e.Items) {
			return nil, false
		}
		items := make([][]ast.Block, len(o.Items))
		for i := range o.Items {
			items[i], _ = ReconcileBlocks(o.Items[i], e.Items[i])
		}
		o.Items = items
		return o, true

	case ast.DefinitionList:
		e, ok := exec.(ast.DefinitionList)
		if !ok || len(o.Items) != len(e.Items) {
			return nil, false
		}
		items := make([]ast.DefinitionItem, len(o.Items))
		for i := range o.Items {
			item := o.Items[i]
			if len(item.Defs) == len(e.Items[i].Defs) {
				defs := make([][]ast.Block, len(item.Defs))
				for j := range item.Defs {
					defs[j], _ = ReconcileBlocks(item.Defs[j], e.Items[i].Defs[j])
				}
				item.Defs = defs
			}
			items[i] = item
		}
		o.Items = items
		return o, true

	case ast.Table:
		e, ok := exec.(ast.Table)
		if !ok {
			return nil, false
		}
		o.Head = reconcileCells(o.Head, e.Head)
		o.Foot = reconcileCells(o.Foot, e.Foot)
		if len(o.Rows) == len(e.Rows) {
			rows := make([][]ast.TableCell, len(o.Rows))
			for i := range o.Rows {
				rows[i] = reconcileCells(o.Rows[i], e.Rows[i])
			}
			o.Rows = rows
		}
		return o, true

	default:
		return nil, false
	}
}

func reconcileCells(orig, exec []ast.TableCell) []ast.TableCell {
	if len(orig) != len(exec) {
		return orig
	}
	out := make([]ast.TableCell, len(orig))
	for i, cell := range orig {
		cell.Blocks, _ = ReconcileBlocks(cell.Blocks, exec[i].Blocks)
		out[i] = cell
	}
	return out
}
