package reader

import "fmt"

// errorKey is the (lr_state, symbol) lookup key spec.md describes for
// the reader's diagnostic table: our scanner's own ParseState stands
// in for "lr_state", and the unexpected TokenKind stands in for
// "symbol".
type errorKey struct {
	state ParseState
	kind  TokenKind
}

var errorTable = map[errorKey]string{
	{StateInFence, TokenEOF}: "unterminated fenced code block: reached end of input before a closing fence",
}

// lookupError returns the stable diagnostic message for an
// (state, kind) pair, falling back to a generic message when the
// combination has no specific entry.
func lookupError(state ParseState, kind TokenKind) string {
	if msg, ok := errorTable[errorKey{state, kind}]; ok {
		return msg
	}
	return fmt.Sprintf("unexpected token in reader state %d", state)
}
