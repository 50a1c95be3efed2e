package template

import (
	"strings"

	"github.com/docforge/docforge/internal/diag"
)

// PartialResolver locates a named partial template, compiling it once
// and caching it for reuse across a render (spec.md §4.6).
type PartialResolver interface {
	Resolve(name string) (*Template, bool)
}

// Options controls one Evaluate call.
type Options struct {
	Strict   bool
	Partials PartialResolver
	// Pipes overrides/extends the built-in pipe function registry.
	Pipes map[string]func(Value) Value
}

var builtinPipes = map[string]func(Value) Value{
	"upper": func(v Value) Value { return StringValue(strings.ToUpper(v.AsString())) },
	"lower": func(v Value) Value { return StringValue(strings.ToLower(v.AsString())) },
	"trim":  func(v Value) Value { return StringValue(strings.TrimSpace(v.AsString())) },
}

func (o Options) pipe(name string) (func(Value) Value, bool) {
	if o.Pipes != nil {
		if fn, ok := o.Pipes[name]; ok {
			return fn, true
		}
	}
	fn, ok := builtinPipes[name]
	return fn, ok
}

// evaluator threads the diagnostic bag and partial-recursion depth
// through one Evaluate call.
type evaluator struct {
	opts  Options
	bag   *diag.Bag
	depth int
}

// Evaluate runs a compiled Template's node list against ctx, producing
// a Doc IR tree (spec.md §4.6 step 2) plus any diagnostics (missing
// strict-mode variables, partial-recursion overflow).
func Evaluate(t *Template, ctx *Context, opts Options) (Doc, []diag.Diagnostic) {
	bag := &diag.Bag{}
	e := &evaluator{opts: opts, bag: bag}
	doc := e.evalNodes(t.Nodes, ctx)
	return doc, bag.Items()
}

func (e *evaluator) evalNodes(nodes []Node, ctx *Context) Doc {
	children := make([]Doc, 0, len(nodes))
	for _, n := range nodes {
		children = append(children, e.evalNode(n, ctx))
	}
	return Concat(children...)
}

func (e *evaluator) evalNode(n Node, ctx *Context) Doc {
	switch n.Kind {
	case NodeLiteral:
		return textWithBreaks(n.Text)

	case NodeVariable:
		return e.evalVariable(n, ctx)

	case NodeConditional:
		for _, br := range n.Branches {
			v, _ := ctx.GetPath(br.CondPath)
			if v.Truthy() {
				return e.evalNodes(br.Body, ctx)
			}
		}
		if n.HasElse {
			return e.evalNodes(n.Else, ctx)
		}
		return Empty()

	case NodeForLoop:
		return e.evalForLoop(n, ctx)

	case NodePartial:
		return e.evalPartial(n, ctx)

	default:
		return Empty()
	}
}

// textWithBreaks splits a literal on newlines into Text/SoftBreak Doc
// nodes so Render's indent-on-break logic applies uniformly to literal
// template text, not only to loop/conditional output.
func textWithBreaks(s string) Doc {
	lines := strings.Split(s, "\n")
	if len(lines) == 1 {
		return Text(s)
	}
	parts := make([]Doc, 0, len(lines)*2-1)
	for i, line := range lines {
		if i > 0 {
			parts = append(parts, SoftBreak())
		}
		parts = append(parts, Text(line))
	}
	return Concat(parts...)
}

func (e *evaluator) evalVariable(n Node, ctx *Context) Doc {
	v, ok := ctx.GetPath(n.VarPath)
	if !ok {
		if e.opts.Strict {
			e.bag.Add(diag.New(diag.Warning, "undefined template variable").
				Code("Q-10-2").
				Problem(strings.Join(n.VarPath, ".")).
				At(n.SI).
				Build())
		}
		return Empty()
	}
	for _, name := range n.Pipes {
		if fn, ok := e.opts.pipe(name); ok {
			v = fn(v)
		}
	}
	if v.Kind == List && n.Sep != nil {
		parts := make([]Doc, 0, len(v.List)*2-1)
		for i, item := range v.List {
			if i > 0 {
				parts = append(parts, Text(*n.Sep))
			}
			parts = append(parts, Text(item.AsString()))
		}
		return Concat(parts...)
	}
	return Text(v.AsString())
}

// loopItems expands a ForLoop's source value into the bindings to
// iterate over, per spec.md §4.6/§8: a List iterates its items; a Map
// iterates once bound to the whole map; a truthy scalar iterates once
// bound to itself; anything falsy iterates zero times.
func loopItems(v Value) []Value {
	switch v.Kind {
	case List:
		return v.List
	case Map:
		if len(v.Map) == 0 {
			return nil
		}
		return []Value{v}
	default:
		if v.Truthy() {
			return []Value{v}
		}
		return nil
	}
}

func (e *evaluator) evalForLoop(n Node, ctx *Context) Doc {
	v, ok := ctx.GetPath(n.ForVar)
	if !ok {
		return Empty()
	}
	items := loopItems(v)
	if len(items) == 0 {
		return Empty()
	}

	varName := "it"
	if len(n.ForVar) > 0 {
		varName = n.ForVar[len(n.ForVar)-1]
	}

	var parts []Doc
	for i, item := range items {
		if i > 0 && n.ForSep != nil {
			parts = append(parts, e.evalNodes(n.ForSep, ctx))
		}
		loopCtx := ctx.Child(map[string]Value{varName: item, "it": item})
		parts = append(parts, e.evalNodes(n.ForBody, loopCtx))
	}
	return Concat(parts...)
}

func (e *evaluator) evalPartial(n Node, ctx *Context) Doc {
	if e.opts.Partials == nil {
		return Empty()
	}
	if e.depth >= DefaultMaxPartialDepth {
		e.bag.Add(diag.New(diag.Error, "partial recursion limit exceeded").
			Problem(n.PartialName).
			At(n.SI).
			Build())
		return Empty()
	}
	tmpl, ok := e.opts.Partials.Resolve(n.PartialName)
	if !ok {
		e.bag.Add(diag.New(diag.Error, "unknown partial").
			Problem(n.PartialName).
			At(n.SI).
			Build())
		return Empty()
	}

	partialCtx := ctx
	if len(n.PartialVar) > 0 {
		if v, ok := ctx.GetPath(n.PartialVar); ok {
			partialCtx = ctx.Child(map[string]Value{"it": v})
		}
	}

	child := &evaluator{opts: e.opts, bag: e.bag, depth: e.depth + 1}
	return child.evalNodes(tmpl.Nodes, partialCtx)
}
