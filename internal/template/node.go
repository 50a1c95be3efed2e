package template

import "github.com/docforge/docforge/internal/sourcemap"

// NodeKind discriminates one parsed template node (spec.md §4.6 step 1).
type NodeKind int

const (
	NodeLiteral NodeKind = iota
	NodeVariable
	NodeConditional
	NodeForLoop
	NodePartial
	NodeNesting
	NodeBreakableSpace
)

// Branch is one (cond, body) arm of a Conditional node; the final
// else-branch (if present) is stored on the Conditional itself, in
// Node.Else with HasElse set.
type Branch struct {
	CondPath []string
	Body     []Node
}

// Node is one parsed template construct, carrying the source region it
// came from so template diagnostics point back into the template file.
type Node struct {
	Kind NodeKind
	SI   sourcemap.SourceInfo

	// NodeLiteral
	Text string

	// NodeVariable
	VarPath []string
	Pipes   []string
	Sep     *string // non-nil when the [sep] form was used

	// NodeConditional
	Branches []Branch
	Else     []Node
	HasElse  bool

	// NodeForLoop
	ForVar  []string
	ForBody []Node
	ForSep  []Node

	// NodePartial
	PartialName string
	PartialVar  []string

	// NodeNesting / NodeBreakableSpace
	Children []Node
}

// Template is a compiled template: a parsed node list plus the
// partial recursion-depth bound Parse records (DefaultMaxPartialDepth).
// Evaluate applies DefaultMaxPartialDepth itself and does not read
// MaxPartialDepth.
type Template struct {
	Nodes        []Node
	MaxPartialDepth int
}

// DefaultMaxPartialDepth bounds partial recursion (spec.md §4.6).
const DefaultMaxPartialDepth = 50
