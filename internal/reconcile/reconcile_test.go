package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/sourcemap"
)

func withSI(offset int) sourcemap.SourceInfo {
	reg := sourcemap.NewRegistry()
	file := reg.RegisterFile("doc.md", []byte("0123456789"))
	return sourcemap.NewOriginal(file, sourcemap.Range{Start: offset, End: offset + 1})
}

func TestReconcileKeepsUnchangedBlockOriginalSourceInfo(t *testing.T) {
	original := []ast.Block{
		ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "hello"}}, SI: withSI(0)},
	}
	executed := []ast.Block{
		ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "hello"}}, SI: withSI(99)},
	}

	merged, plan := ReconcileBlocks(original, executed)
	require.Len(t, merged, 1)
	require.Equal(t, KeepOriginal, plan[0].Kind)
	require.Equal(t, original[0].SourceInfo(), merged[0].SourceInfo())
}

func TestReconcileUsesExecutedForNewBlock(t *testing.T) {
	original := []ast.Block{}
	executed := []ast.Block{
		ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "output"}}, SI: withSI(5)},
	}

	merged, plan := ReconcileBlocks(original, executed)
	require.Len(t, merged, 1)
	require.Equal(t, UseExecuted, plan[0].Kind)
	require.Equal(t, "output", merged[0].(ast.Paragraph).Inlines[0].(ast.Str).Text)
}

func TestReconcileRecursesIntoMatchingContainer(t *testing.T) {
	origInner := ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "kept"}}, SI: withSI(0)}
	execInner := ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "kept"}}, SI: withSI(50)}
	execNew := ast.Paragraph{Inlines: []ast.Inline{ast.Str{Text: "new"}}, SI: withSI(51)}

	original := []ast.Block{
		ast.Div{Attr: ast.Attr{Classes: []string{"note"}}, Blocks: []ast.Block{origInner}, SI: withSI(1)},
	}
	executed := []ast.Block{
		ast.Div{Attr: ast.Attr{Classes: []string{"note"}}, Blocks: []ast.Block{execInner, execNew}, SI: withSI(2)},
	}

	merged, plan := ReconcileBlocks(original, executed)
	require.Len(t, merged, 1)
	require.Equal(t, RecurseIntoContainer, plan[0].Kind)
	div := merged[0].(ast.Div)
	require.Len(t, div.Blocks, 2)
	require.Equal(t, origInner.SI, div.Blocks[0].SourceInfo())
	require.Equal(t, "new", div.Blocks[1].(ast.Paragraph).Inlines[0].(ast.Str).Text)
	// Container itself keeps the original's own attributes and location.
	require.Equal(t, original[0].SourceInfo(), div.SourceInfo())
}

func TestReconcileRecursesIntoParagraphInlines(t *testing.T) {
	original := []ast.Block{
		ast.Paragraph{
			Inlines: []ast.Inline{
				ast.Str{Text: "hello", SI: withSI(0)},
				ast.Space{SI: withSI(1)},
				ast.Str{Text: "world", SI: withSI(2)},
			},
			SI: withSI(3),
		},
	}
	executed := []ast.Block{
		ast.Paragraph{
			Inlines: []ast.Inline{
				ast.Str{Text: "hello", SI: withSI(50)},
				ast.Space{SI: withSI(51)},
				ast.Str{Text: "world", SI: withSI(52)},
				ast.Str{Text: "!", SI: withSI(53)},
			},
			SI: withSI(54),
		},
	}

	merged, plan := ReconcileBlocks(original, executed)
	require.Len(t, merged, 1)
	require.Equal(t, RecurseIntoContainer, plan[0].Kind)

	p := merged[0].(ast.Paragraph)
	require.Len(t, p.Inlines, 4)
	require.Equal(t, withSI(0), p.Inlines[0].SourceInfo())
	require.Equal(t, withSI(1), p.Inlines[1].SourceInfo())
	require.Equal(t, withSI(2), p.Inlines[2].SourceInfo())
	require.Equal(t, "!", p.Inlines[3].(ast.Str).Text)
	require.Equal(t, withSI(53), p.Inlines[3].SourceInfo())
	// The paragraph itself keeps the original's own location.
	require.Equal(t, original[0].SourceInfo(), p.SourceInfo())
}

func TestReconcileInlinesRecursesIntoEmph(t *testing.T) {
	original := []ast.Inline{
		ast.Emph{Inlines: []ast.Inline{ast.Str{Text: "kept", SI: withSI(0)}}, SI: withSI(1)},
	}
	executed := []ast.Inline{
		ast.Emph{
			Inlines: []ast.Inline{
				ast.Str{Text: "kept", SI: withSI(50)},
				ast.Str{Text: "new", SI: withSI(51)},
			},
			SI: withSI(52),
		},
	}

	merged, plan := ReconcileInlines(original, executed)
	require.Len(t, merged, 1)
	require.Equal(t, RecurseIntoContainer, plan[0].Kind)

	em := merged[0].(ast.Emph)
	require.Len(t, em.Inlines, 2)
	require.Equal(t, withSI(0), em.Inlines[0].SourceInfo())
	require.Equal(t, "new", em.Inlines[1].(ast.Str).Text)
	require.Equal(t, original[0].SourceInfo(), em.SourceInfo())
}

func TestDocumentPrefersExecutedMetaWhenPresent(t *testing.T) {
	orig := &ast.Document{Meta: config.NewScalar("original", sourcemap.SourceInfo{})}
	exec := &ast.Document{Meta: config.NewScalar("executed", sourcemap.SourceInfo{}), Blocks: []ast.Block{}}
	doc := Document(orig, exec)
	require.NotNil(t, doc)
	require.Equal(t, "executed", doc.Meta.Scalar)
}
