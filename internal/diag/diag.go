// Package diag implements structured diagnostics (C2): messages with a
// kind, optional stable code, details and hints, renderable to JSON or
// to annotated text with source code frames.
package diag

import "github.com/docforge/docforge/internal/sourcemap"

// Kind classifies a diagnostic or detail item.
type Kind int

const (
	Error Kind = iota
	Warning
	Info
	Note
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Warning:
		return "warning"
	case Info:
		return "info"
	case Note:
		return "note"
	default:
		return "unknown"
	}
}

// Detail is one supporting item attached to a Diagnostic.
type Detail struct {
	Kind     Kind
	Content  string
	Location *sourcemap.SourceInfo
}

// Diagnostic is a structured message collected in a stage buffer and
// flowed to the end of the pipeline — never thrown for user errors.
type Diagnostic struct {
	Kind     Kind
	Code     string // stable code, e.g. "Q-1-11"; empty when the diagnostic has none
	Title    string
	Problem  string
	Details  []Detail
	Hints    []string
	Location *sourcemap.SourceInfo
}

// Builder incrementally constructs a Diagnostic.
type Builder struct {
	d Diagnostic
}

// New starts building a diagnostic of the given kind with a required title.
func New(kind Kind, title string) *Builder {
	return &Builder{d: Diagnostic{Kind: kind, Title: title}}
}

func (b *Builder) Code(code string) *Builder {
	b.d.Code = code
	return b
}

func (b *Builder) Problem(problem string) *Builder {
	b.d.Problem = problem
	return b
}

func (b *Builder) At(loc sourcemap.SourceInfo) *Builder {
	b.d.Location = &loc
	return b
}

func (b *Builder) Detail(kind Kind, content string, loc *sourcemap.SourceInfo) *Builder {
	b.d.Details = append(b.d.Details, Detail{Kind: kind, Content: content, Location: loc})
	return b
}

func (b *Builder) Hint(hint string) *Builder {
	b.d.Hints = append(b.d.Hints, hint)
	return b
}

// Build finalizes the diagnostic.
func (b *Builder) Build() Diagnostic {
	return b.d
}

// Bag accumulates diagnostics for one stage or pass. It is the
// "collection policy" described in spec.md §4.2/§7: stages append to
// it and must keep whatever was appended even if they later fail.
type Bag struct {
	items []Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

// Addf is a convenience for Add(New(kind, title).Build()).
func (b *Bag) Addf(kind Kind, title string) { b.Add(New(kind, title).Build()) }

// Items returns the accumulated diagnostics.
func (b *Bag) Items() []Diagnostic { return b.items }

// HasErrors reports whether any accumulated diagnostic is Error-kind —
// the exit-code convention from spec.md §6/§7.
func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Kind == Error {
			return true
		}
	}
	return false
}

// Extend appends all diagnostics from other.
func (b *Bag) Extend(other *Bag) {
	if other == nil {
		return
	}
	b.items = append(b.items, other.items...)
}
