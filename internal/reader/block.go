package reader

import (
	"strings"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// blockParser turns a pre-classified line stream into the block-level
// AST, delegating inline content to ParseInlines. It operates on line
// index ranges so block containers (blockquotes, list items) can
// recurse over a sub-range of the same line table without re-slicing
// source bytes.
type blockParser struct {
	src   []byte
	file  sourcemap.FileID
	base  int // byte offset of src within the original registered file
	opts  Options
	bag   *diag.Bag
	lines []lineSpan
}

func (p *blockParser) raw(i int) string {
	return string(p.src[p.lines[i].start:p.lines[i].end])
}

func (p *blockParser) lineSI(i int) sourcemap.SourceInfo {
	return sourcemap.NewOriginal(p.file, sourcemap.Range{
		Start: p.base + p.lines[i].start,
		End:   p.base + p.lines[i].end,
	})
}

func (p *blockParser) rangeSI(from, to int) sourcemap.SourceInfo {
	if to <= from {
		return p.lineSI(from)
	}
	return sourcemap.NewOriginal(p.file, sourcemap.Range{
		Start: p.base + p.lines[from].start,
		End:   p.base + p.lines[to-1].end,
	})
}

// parseBlocks consumes lines [start, end) producing a block sequence.
func (p *blockParser) parseBlocks(start, end int) []ast.Block {
	var blocks []ast.Block
	i := start
	for i < end {
		if isBlank(p.raw(i)) {
			i++
			continue
		}
		var b ast.Block
		var next int
		switch {
		case fenceMarker(p.raw(i)) != "":
			b, next = p.parseFence(i, end)
		case isATXHeading(p.raw(i)):
			b, next = p.parseHeading(i)
		case isThematicBreak(p.raw(i)):
			b, next = p.parseThematicBreak(i)
		case isBlockquote(p.raw(i)):
			b, next = p.parseBlockquote(i, end)
		case isBulletListMarker(p.raw(i)) || isOrderedListMarker(p.raw(i)):
			b, next = p.parseList(i, end)
		default:
			b, next = p.parseParagraph(i, end)
		}
		blocks = append(blocks, b)
		i = next
	}
	return blocks
}

func (p *blockParser) parseHeading(i int) (ast.Block, int) {
	raw := p.raw(i)
	level, text := headingLevelAndText(raw)
	textOffset := headingTextOffset(raw)
	inlines := parseInlinesAt(text, p.file, p.base+p.lines[i].start+textOffset)
	return ast.Header{Level: level, Inlines: inlines, SI: p.lineSI(i)}, i + 1
}

func (p *blockParser) parseThematicBreak(i int) (ast.Block, int) {
	return ast.HorizontalRule{SI: p.lineSI(i)}, i + 1
}

func (p *blockParser) parseFence(i, end int) (ast.Block, int) {
	openRaw := p.raw(i)
	fence := fenceMarker(openRaw)
	info := fenceInfo(openRaw)
	lang, extra := splitFenceInfo(info)

	j := i + 1
	var bodyLines []string
	closed := false
	for j < end {
		if isFenceClose(p.raw(j), fence) {
			closed = true
			break
		}
		bodyLines = append(bodyLines, p.raw(j))
		j++
	}
	if !closed {
		p.bag.Add(diag.New(diag.Error, "unterminated fenced code block").
			Problem(lookupError(StateInFence, TokenEOF)).
			At(p.lineSI(i)).
			Build())
	}

	attr := ast.Attr{}
	if lang != "" {
		attr.Classes = append(attr.Classes, lang)
	}
	if extra != "" {
		attr.KV = append(attr.KV, ast.KeyValue{Key: "info", Value: extra})
	}

	text := strings.Join(bodyLines, "\n")
	if len(bodyLines) > 0 {
		text += "\n"
	}
	nextIdx := end
	if closed {
		nextIdx = j + 1
	}
	si := p.rangeSI(i, nextIdx)
	return ast.CodeBlock{Attr: attr, Text: text, SI: si}, nextIdx
}

func splitFenceInfo(info string) (lang, extra string) {
	info = strings.TrimSpace(info)
	if info == "" {
		return "", ""
	}
	idx := strings.IndexAny(info, " \t")
	if idx == -1 {
		return info, ""
	}
	return info[:idx], strings.TrimSpace(info[idx+1:])
}

func (p *blockParser) parseBlockquote(i, end int) (ast.Block, int) {
	j := i
	var stripped strings.Builder
	var subLines []lineSpan
	for j < end && isBlockquote(p.raw(j)) {
		content := blockquoteContent(p.raw(j))
		start := stripped.Len()
		stripped.WriteString(content)
		stripped.WriteByte('\n')
		subLines = append(subLines, lineSpan{start, start + len(content)})
		j++
	}
	sub := &blockParser{
		src:   []byte(stripped.String()),
		file:  p.file,
		base:  p.base + p.lines[i].start, // approximate: good enough for this hand-rolled scanner
		opts:  p.opts,
		bag:   p.bag,
		lines: subLines,
	}
	blocks := sub.parseBlocks(0, len(subLines))
	return ast.BlockQuote{Blocks: blocks, SI: p.rangeSI(i, j)}, j
}

// startsNewBlock is a conservative check used by parseList and
// parseParagraph to avoid eating an unrelated following block.
func startsNewBlock(line string) bool {
	return isATXHeading(line) || fenceMarker(line) != "" || isThematicBreak(line)
}

func (p *blockParser) parseList(i, end int) (ast.Block, int) {
	ordered := isOrderedListMarker(p.raw(i))
	var items [][]ast.Block
	start := 1
	var style ast.OrderedListStyle
	var delim ast.OrderedListDelimiter
	listLoose := false

	j := i
	for j < end {
		raw := p.raw(j)
		if isBlank(raw) {
			// A blank line followed by another item of the same kind
			// continues the list (and makes it loose); anything else
			// ends it.
			k := j + 1
			for k < end && isBlank(p.raw(k)) {
				k++
			}
			if k >= end || !((ordered && isOrderedListMarker(p.raw(k))) || (!ordered && isBulletListMarker(p.raw(k)))) {
				break
			}
			listLoose = true
			j = k
			continue
		}
		matches := (ordered && isOrderedListMarker(raw)) || (!ordered && isBulletListMarker(raw))
		if !matches {
			break
		}
		var content string
		if ordered {
			n, d, c := orderedListContent(raw)
			if len(items) == 0 {
				start = n
				delim = orderedDelim(d)
				style = ast.StyleDecimal
			}
			content = c
		} else {
			_, c := bulletListContent(raw)
			content = c
		}
		itemStart := j
		itemLines := []string{content}
		j++
		loose := false
		for j < end {
			nr := p.raw(j)
			if isBlank(nr) {
				k := j + 1
				for k < end && isBlank(p.raw(k)) {
					k++
				}
				if k < end && !((ordered && isOrderedListMarker(p.raw(k))) || (!ordered && isBulletListMarker(p.raw(k)))) &&
					(strings.HasPrefix(p.raw(k), "  ") || strings.HasPrefix(p.raw(k), "\t")) {
					loose = true
					itemLines = append(itemLines, "")
					j = k
					continue
				}
				break
			}
			if (ordered && isOrderedListMarker(nr)) || (!ordered && isBulletListMarker(nr)) {
				break
			}
			if startsNewBlock(nr) {
				break
			}
			itemLines = append(itemLines, strings.TrimPrefix(strings.TrimPrefix(nr, "  "), "\t"))
			j++
		}
		itemBlocks := p.parseItemLines(itemLines, loose, itemStart)
		items = append(items, itemBlocks)
	}

	if listLoose {
		for _, item := range items {
			for bi, blk := range item {
				if pl, ok := blk.(ast.Plain); ok {
					item[bi] = ast.Paragraph{Inlines: pl.Inlines, SI: pl.SI}
				}
			}
		}
	}

	si := p.rangeSI(i, j)
	if ordered {
		return ast.OrderedList{Start: start, Style: style, Delimiter: delim, Items: items, SI: si}, j
	}
	return ast.BulletList{Items: items, SI: si}, j
}

func orderedDelim(b byte) ast.OrderedListDelimiter {
	if b == ')' {
		return ast.DelimiterParen
	}
	return ast.DelimiterPeriod
}

// parseItemLines reparses one list item's already marker-stripped
// lines as a nested block sequence; a tight (non-loose) single
// paragraph item collapses its Paragraph to a Plain, per spec.md §4.5.
func (p *blockParser) parseItemLines(lines []string, loose bool, anchorLine int) []ast.Block {
	joined := strings.Join(lines, "\n")
	subLines := make([]lineSpan, 0, len(lines))
	off := 0
	for _, l := range lines {
		subLines = append(subLines, lineSpan{off, off + len(l)})
		off += len(l) + 1
	}
	sub := &blockParser{
		src:   []byte(joined),
		file:  p.file,
		base:  p.base + p.lines[anchorLine].start,
		opts:  p.opts,
		bag:   p.bag,
		lines: subLines,
	}
	blocks := sub.parseBlocks(0, len(subLines))
	if !loose && len(blocks) == 1 {
		if para, ok := blocks[0].(ast.Paragraph); ok {
			blocks[0] = ast.Plain{Inlines: para.Inlines, SI: para.SI}
		}
	}
	return blocks
}

func (p *blockParser) parseParagraph(i, end int) (ast.Block, int) {
	j := i
	var texts []string
	for j < end && !isBlank(p.raw(j)) && !startsNewBlock(p.raw(j)) &&
		!isBulletListMarker(p.raw(j)) && !isOrderedListMarker(p.raw(j)) && !isBlockquote(p.raw(j)) {
		texts = append(texts, p.raw(j))
		j++
	}
	if len(texts) == 0 {
		texts = append(texts, p.raw(i))
		j = i + 1
	}
	joined := strings.Join(texts, "\n")
	inlines := parseInlinesAt(joined, p.file, p.base+p.lines[i].start)
	return ast.Paragraph{Inlines: inlines, SI: p.rangeSI(i, j)}, j
}

func parseInlinesAt(text string, file sourcemap.FileID, base int) []ast.Inline {
	return ParseInlines(text, file, base)
}
