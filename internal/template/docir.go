package template

import "strings"

// DocKind discriminates one Doc IR value (spec.md §4.6 step 2): a
// language-neutral intermediate form between evaluation and rendering,
// shaped so a future width-aware renderer can reflow it.
type DocKind int

const (
	DocText DocKind = iota
	DocConcat
	DocGroup
	DocNest
	DocSoftBreak
	DocEmpty
)

// Doc is one Doc IR node.
type Doc struct {
	Kind     DocKind
	Text     string
	Children []Doc
	Indent   int // DocNest
}

func Text(s string) Doc            { return Doc{Kind: DocText, Text: s} }
func Concat(children ...Doc) Doc   { return Doc{Kind: DocConcat, Children: children} }
func Group(children ...Doc) Doc    { return Doc{Kind: DocGroup, Children: children} }
func Nest(indent int, child Doc) Doc { return Doc{Kind: DocNest, Indent: indent, Children: []Doc{child}} }
func SoftBreak() Doc               { return Doc{Kind: DocSoftBreak} }
func Empty() Doc                   { return Doc{Kind: DocEmpty} }

// Render flattens a Doc IR tree into its final text form (spec.md
// §4.6 step 3). The hand-rolled scanner/evaluator never produces
// Groups requiring reflow decisions today, so Render is a direct,
// non-backtracking walk: Nest adds leading indentation after every
// soft break within its subtree.
func Render(d Doc) string {
	var b strings.Builder
	renderInto(&b, d, 0)
	return b.String()
}

func renderInto(b *strings.Builder, d Doc, indent int) {
	switch d.Kind {
	case DocText:
		b.WriteString(d.Text)
	case DocConcat, DocGroup:
		for _, c := range d.Children {
			renderInto(b, c, indent)
		}
	case DocNest:
		newIndent := indent + d.Indent
		for _, c := range d.Children {
			renderInto(b, c, newIndent)
		}
	case DocSoftBreak:
		b.WriteByte('\n')
		if indent > 0 {
			b.WriteString(strings.Repeat(" ", indent))
		}
	case DocEmpty:
	}
}
