package reader

import "strings"

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func isATXHeading(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(strings.TrimLeft(line, " "))-len(trimmed) > 3 {
		return false
	}
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	if i == 0 || i > 6 {
		return false
	}
	return i == len(trimmed) || trimmed[i] == ' ' || trimmed[i] == '\t'
}

// headingLevelAndText splits an already-classified ATX heading line
// into its level and inline content (with a trailing run of '#'
// closing markers stripped, per the common ATX convention).
func headingLevelAndText(line string) (int, string) {
	trimmed := strings.TrimLeft(line, " ")
	i := 0
	for i < len(trimmed) && trimmed[i] == '#' {
		i++
	}
	rest := strings.TrimLeft(trimmed[i:], " \t")
	rest = strings.TrimRight(rest, " \t")
	rest = strings.TrimRight(rest, "#")
	rest = strings.TrimRight(rest, " \t")
	return i, rest
}

// headingTextOffset returns the byte offset within line where the
// heading's inline content begins (after "#"s and the following
// whitespace run).
func headingTextOffset(line string) int {
	trimmedLeft := strings.TrimLeft(line, " ")
	leadSpaces := len(line) - len(trimmedLeft)
	i := 0
	for i < len(trimmedLeft) && trimmedLeft[i] == '#' {
		i++
	}
	contentStart := leadSpaces + i
	for contentStart < len(line) && (line[contentStart] == ' ' || line[contentStart] == '\t') {
		contentStart++
	}
	return contentStart
}

// fenceMarker returns the fence string ("```"/"~~~" repeated) if line
// opens a fenced code block, else "".
func fenceMarker(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	for _, ch := range []byte{'`', '~'} {
		n := 0
		for n < len(trimmed) && trimmed[n] == ch {
			n++
		}
		if n >= 3 {
			return strings.Repeat(string(ch), n)
		}
	}
	return ""
}

func isFenceClose(line, fence string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < len(fence) {
		return false
	}
	return strings.HasPrefix(trimmed, fence) && strings.Trim(trimmed, string(fence[0])) == ""
}

// fenceInfo splits a fence-open line's info string (language + attrs)
// off its marker.
func fenceInfo(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	i := 0
	var marker byte
	if len(trimmed) > 0 {
		marker = trimmed[0]
	}
	for i < len(trimmed) && trimmed[i] == marker {
		i++
	}
	return strings.TrimSpace(trimmed[i:])
}

func isThematicBreak(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 3 {
		return false
	}
	marker := trimmed[0]
	if marker != '-' && marker != '*' && marker != '_' {
		return false
	}
	count := 0
	for _, r := range trimmed {
		switch r {
		case rune(marker):
			count++
		case ' ', '\t':
		default:
			return false
		}
	}
	return count >= 3
}

func isBlockquote(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	return strings.HasPrefix(trimmed, ">")
}

// blockquoteContent strips one level of "> " marker.
func blockquoteContent(line string) string {
	trimmed := strings.TrimLeft(line, " ")
	trimmed = strings.TrimPrefix(trimmed, ">")
	trimmed = strings.TrimPrefix(trimmed, " ")
	return trimmed
}

func isBulletListMarker(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	if len(trimmed) < 2 {
		return false
	}
	if trimmed[0] != '-' && trimmed[0] != '*' && trimmed[0] != '+' {
		return false
	}
	return trimmed[1] == ' ' || trimmed[1] == '\t'
}

// bulletListContent returns the marker rune and the content after it.
func bulletListContent(line string) (byte, string) {
	trimmed := strings.TrimLeft(line, " ")
	marker := trimmed[0]
	return marker, strings.TrimLeft(trimmed[1:], " \t")
}

func isOrderedListMarker(line string) bool {
	trimmed := strings.TrimLeft(line, " ")
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	if i == 0 || i > 9 {
		return false
	}
	if i >= len(trimmed) {
		return false
	}
	if trimmed[i] != '.' && trimmed[i] != ')' {
		return false
	}
	if i+1 >= len(trimmed) {
		return false
	}
	return trimmed[i+1] == ' ' || trimmed[i+1] == '\t'
}

// orderedListContent returns the start number, the delimiter byte and
// the content after the marker.
func orderedListContent(line string) (int, byte, string) {
	trimmed := strings.TrimLeft(line, " ")
	i := 0
	for i < len(trimmed) && trimmed[i] >= '0' && trimmed[i] <= '9' {
		i++
	}
	n := 0
	for _, r := range trimmed[:i] {
		n = n*10 + int(r-'0')
	}
	delim := trimmed[i]
	return n, delim, strings.TrimLeft(trimmed[i+1:], " \t")
}
