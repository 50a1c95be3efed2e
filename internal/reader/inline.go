package reader

import (
	"strings"
	"unicode/utf8"

	"github.com/docforge/docforge/internal/ast"
	"github.com/docforge/docforge/internal/sourcemap"
)

// inlineScanner parses one logical span of source text (already joined
// across its soft-wrapped lines) into Inlines, source-mapping every
// node back to file via base, the text's starting byte offset.
type inlineScanner struct {
	text string
	pos  int
	file sourcemap.FileID
	base int
}

func newInlineScanner(text string, file sourcemap.FileID, base int) *inlineScanner {
	return &inlineScanner{text: text, file: file, base: base}
}

func (s *inlineScanner) si(start, end int) sourcemap.SourceInfo {
	return sourcemap.NewOriginal(s.file, sourcemap.Range{Start: s.base + start, End: s.base + end})
}

// ParseInlines parses text appearing at byte offset base within file.
func ParseInlines(text string, file sourcemap.FileID, base int) []ast.Inline {
	s := newInlineScanner(text, file, base)
	return s.run()
}

func (s *inlineScanner) run() []ast.Inline {
	var out []ast.Inline
	var textStart int
	var textBuf strings.Builder

	flush := func(end int) {
		if textBuf.Len() == 0 {
			return
		}
		out = append(out, ast.Str{Text: applySmartQuotes(textBuf.String()), SI: s.si(textStart, end)})
		textBuf.Reset()
	}

	for s.pos < len(s.text) {
		c := s.text[s.pos]

		switch {
		case c == '\\' && s.pos+1 < len(s.text):
			flush(s.pos)
			esc := s.text[s.pos+1]
			if esc == '\n' {
				out = append(out, ast.LineBreak{SI: s.si(s.pos, s.pos+2)})
			} else {
				out = append(out, ast.Str{Text: string(esc), SI: s.si(s.pos, s.pos+2)})
			}
			s.pos += 2
			textStart = s.pos

		case c == '`':
			flush(s.pos)
			node, ok := s.scanCodeSpan()
			if ok {
				out = append(out, node)
			} else {
				textBuf.WriteByte(c)
				s.pos++
			}
			textStart = s.pos

		case c == '*' || c == '_':
			flush(s.pos)
			node, consumed := s.scanEmphasis(c)
			if consumed > 0 {
				out = append(out, node...)
			} else {
				textBuf.WriteByte(c)
				s.pos++
			}
			textStart = s.pos

		case c == '[':
			flush(s.pos)
			node, ok := s.scanLink(false)
			if ok {
				out = append(out, node)
			} else {
				textBuf.WriteByte(c)
				s.pos++
			}
			textStart = s.pos

		case c == '!' && s.pos+1 < len(s.text) && s.text[s.pos+1] == '[':
			flush(s.pos)
			s.pos++
			node, ok := s.scanLink(true)
			if ok {
				out = append(out, node)
			} else {
				textBuf.WriteByte('!')
			}
			textStart = s.pos

		case c == '\n':
			flush(s.pos)
			// Hard break: preceding two spaces already accumulated in a
			// flushed Str would need trimming; kept simple, a trailing
			// backslash marks a hard break instead.
			out = append(out, ast.SoftBreak{SI: s.si(s.pos, s.pos+1)})
			s.pos++
			textStart = s.pos

		case c == ' ':
			// Accumulate into the text run; emphasis handling below
			// pulls surrounding whitespace back out per the spec's
			// delimiter-flanking rule.
			textBuf.WriteByte(c)
			s.pos++

		case strings.IndexByte(".,;:!?", c) >= 0:
			// Punctuation forms its own Str, so "World." reads as
			// Str("World"), Str(".").
			flush(s.pos)
			out = append(out, ast.Str{Text: string(c), SI: s.si(s.pos, s.pos+1)})
			s.pos++
			textStart = s.pos

		default:
			_, size := utf8.DecodeRuneInString(s.text[s.pos:])
			textBuf.WriteString(s.text[s.pos : s.pos+size])
			s.pos += size
		}
	}
	flush(s.pos)
	return out
}

// scanCodeSpan consumes a backtick-delimited code span starting at
// s.pos, which must be '`'.
func (s *inlineScanner) scanCodeSpan() (ast.Inline, bool) {
	start := s.pos
	n := 0
	for s.pos < len(s.text) && s.text[s.pos] == '`' {
		n++
		s.pos++
	}
	fence := strings.Repeat("`", n)
	contentStart := s.pos
	idx := strings.Index(s.text[s.pos:], fence)
	for idx != -1 {
		closeStart := s.pos + idx
		closeEnd := closeStart + n
		// Reject a closing run that is itself part of a longer backtick run.
		if closeEnd < len(s.text) && s.text[closeEnd] == '`' {
			next := strings.Index(s.text[closeEnd:], fence)
			if next == -1 {
				break
			}
			idx = closeEnd + next - s.pos
			continue
		}
		content := s.text[contentStart:closeStart]
		if strings.HasPrefix(content, " ") && strings.HasSuffix(content, " ") && strings.TrimSpace(content) != "" {
			content = content[1 : len(content)-1]
		}
		node := ast.Code{Text: content, SI: s.si(start, closeEnd)}
		s.pos = closeEnd
		return node, true
	}
	s.pos = start
	return nil, false
}

// scanEmphasis handles a contiguous run of the delimiter rune marker
// ('*' or '_'), matching single vs. double runs against the nearest
// same-length closing run. Whitespace immediately inside the opening
// or closing delimiter is split off into its own Space inline with a
// source range covering exactly those bytes, per the flanking rule.
func (s *inlineScanner) scanEmphasis(marker byte) ([]ast.Inline, int) {
	start := s.pos
	n := 0
	for s.pos < len(s.text) && s.text[s.pos] == marker {
		n++
		s.pos++
	}
	if n > 2 {
		s.pos = start
		return nil, 0
	}
	run := strings.Repeat(string(marker), n)
	contentStart := s.pos
	closeIdx := strings.Index(s.text[s.pos:], run)
	if closeIdx == -1 {
		s.pos = start
		return nil, 0
	}
	closeStart := s.pos + closeIdx
	closeEnd := closeStart + n
	inner := s.text[contentStart:closeStart]

	var out []ast.Inline
	innerOffset := contentStart
	leading := len(inner) - len(strings.TrimLeft(inner, " \t"))
	if leading > 0 {
		out = append(out, ast.Space{SI: s.si(innerOffset, innerOffset+leading)})
	}
	trimmed := strings.TrimLeft(inner, " \t")
	trailing := len(trimmed) - len(strings.TrimRight(trimmed, " \t"))
	core := strings.TrimRight(trimmed, " \t")
	coreStart := innerOffset + leading
	children := ParseInlines(core, s.file, s.base+coreStart)

	var node ast.Inline
	si := s.si(start, closeEnd)
	if n == 2 {
		node = ast.Strong{Inlines: children, SI: si}
	} else {
		node = ast.Emph{Inlines: children, SI: si}
	}
	out = append(out, node)
	if trailing > 0 {
		trailStart := coreStart + len(core)
		out = append(out, ast.Space{SI: s.si(trailStart, trailStart+trailing)})
	}

	s.pos = closeEnd
	return out, n
}

// scanLink handles both "[text](target "title")" and, when image is
// true, the "![alt](target "title")" form (the leading '!' has
// already been consumed by the caller).
func (s *inlineScanner) scanLink(image bool) (ast.Inline, bool) {
	start := s.pos
	if s.text[s.pos] != '[' {
		return nil, false
	}
	closeBracket := matchBracket(s.text, s.pos)
	if closeBracket == -1 {
		return nil, false
	}
	label := s.text[s.pos+1 : closeBracket]
	pos := closeBracket + 1
	if pos >= len(s.text) || s.text[pos] != '(' {
		return nil, false
	}
	closeParen := strings.Index(s.text[pos:], ")")
	if closeParen == -1 {
		return nil, false
	}
	closeParen += pos
	dest := s.text[pos+1 : closeParen]

	target, title := splitDestTitle(dest)

	labelOffset := s.pos + 1
	children := ParseInlines(label, s.file, s.base+labelOffset)
	si := s.si(start, closeParen+1)
	s.pos = closeParen + 1

	if image {
		return ast.Image{Inlines: children, Target: target, Title: title, SI: si}, true
	}
	return ast.Link{Inlines: children, Target: target, Title: title, SI: si}, true
}

func matchBracket(text string, open int) int {
	depth := 0
	for i := open; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitDestTitle(dest string) (target, title string) {
	dest = strings.TrimSpace(dest)
	if idx := strings.IndexAny(dest, " \t"); idx != -1 {
		target = dest[:idx]
		rest := strings.TrimSpace(dest[idx+1:])
		rest = strings.Trim(rest, `"'`)
		title = rest
		return
	}
	return dest, ""
}

// applySmartQuotes converts straight apostrophes within a plain text
// run into the typographic right single quotation mark; it is only
// applied to Str content, never to code/raw content.
func applySmartQuotes(text string) string {
	return strings.ReplaceAll(text, "'", "’")
}
