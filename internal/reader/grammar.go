// Package reader implements the source-to-AST reader (C6): a
// line-oriented block scanner and inline scanner standing in for the
// concrete markup grammar (explicitly out of scope upstream), plus a
// lossless JSON reader for the Pandoc-compatible wire format.
package reader

// TokenKind classifies one scanned line for the block-level parser.
type TokenKind int

const (
	TokenBlank TokenKind = iota
	TokenATXHeading
	TokenFenceMarker
	TokenBlockquoteMarker
	TokenBulletListMarker
	TokenOrderedListMarker
	TokenThematicBreak
	TokenText
	TokenEOF
)

// Token is one scanned source line, already classified.
type Token struct {
	Kind TokenKind
	Line int // 0-based
	// Raw is the full line text (including its leading marker, if any).
	Raw string
	// StartOffset/EndOffset bound Raw within the scanned buffer.
	StartOffset int
	EndOffset   int
}

// ParseState is the scanner's own position in its line-classification
// state machine; it has nothing to do with the consuming parser's
// block nesting, only with what the scanner needed to know to
// classify the token it just returned (mirroring a tree-sitter
// external scanner's notion of lexer state between tokens).
type ParseState int

const (
	StateBlockStart ParseState = iota
	StateInFence
	StateDone
)

// Grammar is a pull-based token stream shaped like a tree-sitter
// parse-state stream (Advance() rather than a slice). NewGrammar's
// lineScanner implements it; the block parser does not consume a
// Grammar and classifies lines with the classify.go predicates
// directly.
type Grammar interface {
	// Advance returns the next token and the scanner's state after
	// producing it. Once every line has been returned, each further
	// call returns a TokenEOF token; lineScanner reports ok=true on
	// every call.
	Advance() (Token, ParseState, bool)
}

// lineScanner is the hand-rolled Grammar implementation: it classifies
// each line independently, tracking only whether it is inside a fenced
// code block (where classification besides the closing fence is
// suppressed — fence interiors are always TokenText).
type lineScanner struct {
	src    []byte
	lines  []lineSpan
	idx    int
	state  ParseState
	fence  string // the opening fence's exact marker, e.g. "```" or "~~~~"
}

type lineSpan struct {
	start, end int // end excludes the newline
}

// NewGrammar builds the default hand-rolled scanner over src.
func NewGrammar(src []byte) Grammar {
	return &lineScanner{src: src, lines: splitLines(src), state: StateBlockStart}
}

func splitLines(src []byte) []lineSpan {
	var spans []lineSpan
	start := 0
	for i, b := range src {
		if b == '\n' {
			end := i
			if end > start && src[end-1] == '\r' {
				end--
			}
			spans = append(spans, lineSpan{start, end})
			start = i + 1
		}
	}
	if start <= len(src) {
		end := len(src)
		if end > start && src[end-1] == '\r' {
			end--
		}
		spans = append(spans, lineSpan{start, end})
	}
	return spans
}

func (s *lineScanner) Advance() (Token, ParseState, bool) {
	if s.idx >= len(s.lines) {
		s.state = StateDone
		return Token{Kind: TokenEOF, Line: s.idx, StartOffset: len(s.src), EndOffset: len(s.src)}, s.state, true
	}

	span := s.lines[s.idx]
	raw := string(s.src[span.start:span.end])
	line := s.idx
	s.idx++

	tok := Token{Raw: raw, Line: line, StartOffset: span.start, EndOffset: span.end}

	if s.state == StateInFence {
		if isFenceClose(raw, s.fence) {
			tok.Kind = TokenFenceMarker
			s.state = StateBlockStart
		} else {
			tok.Kind = TokenText
		}
		return tok, s.state, true
	}

	switch {
	case isBlank(raw):
		tok.Kind = TokenBlank
	case isATXHeading(raw):
		tok.Kind = TokenATXHeading
	case fenceMarker(raw) != "":
		tok.Kind = TokenFenceMarker
		s.fence = fenceMarker(raw)
		s.state = StateInFence
	case isThematicBreak(raw):
		tok.Kind = TokenThematicBreak
	case isBlockquote(raw):
		tok.Kind = TokenBlockquoteMarker
	case isOrderedListMarker(raw):
		tok.Kind = TokenOrderedListMarker
	case isBulletListMarker(raw):
		tok.Kind = TokenBulletListMarker
	default:
		tok.Kind = TokenText
	}

	return tok, s.state, true
}
