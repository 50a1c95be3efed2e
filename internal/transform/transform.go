// Package transform implements the AstTransform framework (C9): a
// named, ordered pass over a Document that edits it in place, plus two
// concrete transforms (Callout, TOC generation) exercising the
// contract end to end.
package transform

import (
	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
)

// RenderContext is the mutable state one Transform call sees: immutable
// project/format configuration and the document under transformation,
// plus a diagnostics bag transforms may append to.
type RenderContext struct {
	Project     config.ConfigValue
	Format      config.ConfigValue
	Document    *ast.Document
	Diagnostics *diag.Bag
}

// AstTransform is one named pass over a RenderContext's Document.
// Implementations walk and edit ctx.Document.Blocks/Meta in place;
// returning an error aborts the remaining transform list.
type AstTransform interface {
	Name() string
	Transform(ctx *RenderContext) error
}

// Run applies transforms in order, stopping at the first error.
func Run(transforms []AstTransform, ctx *RenderContext) error {
	for _, t := range transforms {
		if err := t.Transform(ctx); err != nil {
			return err
		}
	}
	return nil
}

func getKey(v config.ConfigValue, key string) (config.ConfigValue, bool) {
	if v.Kind != config.KindMap || v.Map == nil {
		return config.ConfigValue{}, false
	}
	return v.Map.Get(key)
}

func plainText(inlines []ast.Inline) string {
	var out []byte
	for _, in := range inlines {
		switch n := in.(type) {
		case ast.Str:
			out = append(out, n.Text...)
		case ast.Space, ast.SoftBreak:
			out = append(out, ' ')
		case ast.Emph:
			out = append(out, plainText(n.Inlines)...)
		case ast.Strong:
			out = append(out, plainText(n.Inlines)...)
		case ast.Code:
			out = append(out, n.Text...)
		case ast.Span:
			out = append(out, plainText(n.Inlines)...)
		}
	}
	return string(out)
}
