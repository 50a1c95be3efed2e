package transform

import (
	"strings"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/sourcemap"
)

const defaultTOCDepth = 3

var tocSI = sourcemap.NewFilterProvenance("toc-transform")

// TOC reads the "toc" format metadata key; when it's true or "auto"
// and the document doesn't already carry navigation.toc, it walks
// block-level Headers, builds a tree limited by toc-depth, and inserts
// navigation.toc = {title, entries: [...]} into the document meta
// (spec.md §4.8).
type TOC struct{}

func (TOC) Name() string { return "toc" }

func (TOC) Transform(ctx *RenderContext) error {
	tocVal, ok := getKey(ctx.Format, "toc")
	if !ok || !tocEnabled(tocVal) {
		return nil
	}
	if hasNavigationTOC(ctx.Document.Meta) {
		return nil
	}

	depth := defaultTOCDepth
	if dv, ok := getKey(ctx.Format, "toc-depth"); ok {
		if i, ok := dv.Scalar.(int64); ok && i > 0 {
			depth = int(i)
		}
	}
	title := "Contents"
	if tv, ok := getKey(ctx.Format, "toc-title"); ok {
		if s, ok := tv.Scalar.(string); ok && s != "" {
			title = s
		}
	}

	roots := buildHeaderTree(ctx.Document, depth)
	toc := config.NewOrderedMap()
	toc.Set("title", config.NewScalar(title, tocSI))
	toc.Set("entries", entriesToConfigValue(roots))
	tocValue := config.ConfigValue{Kind: config.KindMap, Map: toc, SourceInfo: tocSI}

	ctx.Document.Meta = config.InsertPath(ctx.Document.Meta, []string{"navigation", "toc"}, tocValue)
	return nil
}

func tocEnabled(v config.ConfigValue) bool {
	if v.Kind != config.KindScalar {
		return false
	}
	switch s := v.Scalar.(type) {
	case bool:
		return s
	case string:
		return s == "auto" || s == "true"
	}
	return false
}

func hasNavigationTOC(meta config.ConfigValue) bool {
	nav, ok := getKey(meta, "navigation")
	if !ok {
		return false
	}
	toc, ok := getKey(nav, "toc")
	return ok && toc.Kind != config.KindNull
}

type tocEntry struct {
	ID       string
	Title    string
	Level    int
	Children []*tocEntry
}

func buildHeaderTree(doc *ast.Document, maxDepth int) []*tocEntry {
	var roots []*tocEntry
	var stack []*tocEntry
	doc.Walk(func(b ast.Block) bool {
		h, ok := b.(ast.Header)
		if !ok || h.Level > maxDepth {
			return true
		}
		entry := &tocEntry{ID: headerID(h), Title: plainText(h.Inlines), Level: h.Level}
		for len(stack) > 0 && stack[len(stack)-1].Level >= entry.Level {
			stack = stack[:len(stack)-1]
		}
		if len(stack) == 0 {
			roots = append(roots, entry)
		} else {
			parent := stack[len(stack)-1]
			parent.Children = append(parent.Children, entry)
		}
		stack = append(stack, entry)
		return true
	})
	return roots
}

func headerID(h ast.Header) string {
	if h.Attr.ID != "" {
		return h.Attr.ID
	}
	return slugify(plainText(h.Inlines))
}

func slugify(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash && b.Len() > 0 {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

func entriesToConfigValue(entries []*tocEntry) config.ConfigValue {
	arr := make([]config.ConfigValue, len(entries))
	for i, e := range entries {
		m := config.NewOrderedMap()
		m.Set("id", config.NewScalar(e.ID, tocSI))
		m.Set("title", config.NewScalar(e.Title, tocSI))
		m.Set("level", config.NewScalar(int64(e.Level), tocSI))
		m.Set("children", entriesToConfigValue(e.Children))
		arr[i] = config.ConfigValue{Kind: config.KindMap, Map: m, SourceInfo: tocSI}
	}
	return config.ConfigValue{Kind: config.KindArray, Array: arr, SourceInfo: tocSI}
}
