package reader

import (
	"strings"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/config"
	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

func init() {
	config.SetMarkdownParser(func(text string, file sourcemap.FileID, base int) []config.PandocInline {
		inlines := ParseInlines(text, file, base)
		out := make([]config.PandocInline, len(inlines))
		for i, inline := range inlines {
			out[i] = inline
		}
		return out
	})
}

// markdownMetaKeys are the top-level front-matter keys that are
// markdown by position within the metadata schema, independent of any
// explicit "!md" tag (spec.md §4.5).
var markdownMetaKeys = map[string]bool{
	"title":       true,
	"subtitle":    true,
	"abstract":    true,
	"description": true,
}

// coerceSchemaMarkdown walks meta's top-level map entries, lowering any
// still-scalar value at a known markdown key into PandocInlines. Values
// that already carry an explicit tag (and so were coerced, or given
// some other interpretation, by applyInterpretation during decode) are
// left alone.
func coerceSchemaMarkdown(meta config.ConfigValue) {
	if meta.Kind != config.KindMap {
		return
	}
	for pair := meta.Map.Oldest(); pair != nil; pair = pair.Next() {
		if !markdownMetaKeys[pair.Key] {
			continue
		}
		v := pair.Value
		if v.Kind != config.KindScalar || v.Interpretation != config.InterpNone {
			continue
		}
		config.CoerceMarkdown(&v)
		meta.Map.Set(pair.Key, v)
	}
}

// Options controls the reader's contract knobs (spec.md §4.5): loose
// vs. strict parsing, and whether to prune (fail outright) when any
// diagnostic was produced.
type Options struct {
	// Loose selects loose rather than strict parsing. The hand-rolled
	// block and inline scanners do not read it.
	Loose bool
	// PruneOnError makes Read return an error instead of a best-effort
	// AST when any diagnostic of kind Error was produced.
	PruneOnError bool
	// LooseHTML names the mode in which bare HTML blocks would be
	// recognized without a fenced ```{=html} marker. The block parser
	// does not read it: bare HTML lines parse as paragraphs whether or
	// not it is set.
	LooseHTML bool
}

// ASTContext carries the reader-produced side information a consumer
// needs alongside the Pandoc tree itself. Which file registry backs
// its SourceInfos is implicit (the caller supplies it); the context
// records only the FileID the document was read as.
type ASTContext struct {
	File sourcemap.FileID
}

// Read implements the reader contract (C6): given source bytes, a file
// identity, and options, it produces a Document, an ASTContext, and any
// diagnostics, or an error when PruneOnError is set and an Error-kind
// diagnostic was emitted.
func Read(src []byte, file sourcemap.FileID, reg *sourcemap.Registry, opts Options) (*ast.Document, *ASTContext, []diag.Diagnostic, error) {
	bag := &diag.Bag{}

	body := src
	meta := config.Null(sourcemap.NewOriginal(file, sourcemap.Range{}))
	if rest, fm, found := splitFrontMatter(src); found {
		body = rest.body
		decoded, err := config.DecodeYAMLAt(fm.yaml, file, fm.lineOffset, reg, bag)
		if err != nil {
			bag.Add(diag.New(diag.Error, "invalid YAML front matter").
				Problem(err.Error()).
				At(sourcemap.NewOriginal(file, sourcemap.Range{Start: fm.byteOffset, End: fm.byteOffset + len(fm.yaml)})).
				Build())
		} else {
			coerceSchemaMarkdown(decoded)
			meta = decoded
		}
	}

	p := &blockParser{
		src:   body,
		file:  file,
		base:  len(src) - len(body),
		opts:  opts,
		bag:   bag,
		lines: splitLines(body),
	}
	blocks := p.parseBlocks(0, len(p.lines))

	diags := bag.Items()
	if opts.PruneOnError && bag.HasErrors() {
		return nil, nil, diags, errParse
	}
	return &ast.Document{Meta: meta, Blocks: blocks}, &ASTContext{File: file}, diags, nil
}

var errParse = &readError{"reader: parse errors present and PruneOnError is set"}

type readError struct{ msg string }

func (e *readError) Error() string { return e.msg }

type frontMatter struct {
	yaml       []byte
	lineOffset int
	byteOffset int
}

type remainder struct{ body []byte }

// splitFrontMatter recognizes a leading "---\n...\n---\n" block. The
// YAML payload's line offset is 1 (it starts on the line after the
// opening delimiter), so decoded source locations land on the right
// line of the original file.
func splitFrontMatter(src []byte) (remainder, frontMatter, bool) {
	if !strings.HasPrefix(string(src), "---\n") && !strings.HasPrefix(string(src), "---\r\n") {
		return remainder{}, frontMatter{}, false
	}
	text := string(src)
	firstNL := strings.IndexByte(text, '\n')
	if firstNL == -1 {
		return remainder{}, frontMatter{}, false
	}
	rest := text[firstNL+1:]
	closeIdx := -1
	searchFrom := 0
	lines := strings.Split(rest, "\n")
	consumed := firstNL + 1
	for i, line := range lines {
		trimmed := strings.TrimRight(line, "\r")
		if trimmed == "---" || trimmed == "..." {
			closeIdx = i
			break
		}
		searchFrom += len(line) + 1
	}
	if closeIdx == -1 {
		return remainder{}, frontMatter{}, false
	}
	yamlText := rest[:searchFrom]
	afterDelim := consumed + searchFrom + len(lines[closeIdx]) + 1
	if afterDelim > len(src) {
		afterDelim = len(src)
	}
	return remainder{body: src[afterDelim:]}, frontMatter{
		yaml:       []byte(yamlText),
		lineOffset: 1,
		byteOffset: consumed,
	}, true
}
