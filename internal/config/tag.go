package config

import (
	"sort"
	"strings"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// ParsedTag is the result of parsing a YAML tag suffix.
type ParsedTag struct {
	MergeOp        MergeOp
	HasMergeOp     bool
	Interpretation Interpretation
	HasInterp      bool
	HadErrors      bool
}

var mergeOpComponents = map[string]MergeOp{
	"prefer": MergePrefer,
	"concat": MergeConcat,
}

var interpComponents = map[string]Interpretation{
	"md":   InterpMarkdown,
	"str":  InterpPlainString,
	"path": InterpPath,
	"glob": InterpGlob,
	"expr": InterpExpr,
}

// typoDictionary maps common misspellings to the nearest valid component,
// used to generate Q-1-21 "did you mean" hints.
var typoDictionary = map[string]string{
	"preferr":  "prefer",
	"prefere":  "prefer",
	"concet":   "concat",
	"concatt":  "concat",
	"markdown": "md",
	"string":   "str",
	"pth":      "path",
	"globb":    "glob",
	"exp":      "expr",
	"exprr":    "expr",
}

// ParseTag parses a YAML tag suffix (everything after "!") into its
// merge-op and interpretation components. An empty tag is itself an
// error (Q-1-24). Components are underscore-separated and may appear
// in any order; at most one merge-op and one interpretation may be
// given (Q-1-28 on conflicting merge-ops). Unknown components emit a
// warning (Q-1-21) rather than an error. Empty/whitespace components
// are errors (Q-1-24/25); non-alphanumeric-non-underscore characters
// are errors (Q-1-26).
func ParseTag(tag string, loc sourcemap.SourceInfo, bag *diag.Bag) ParsedTag {
	var result ParsedTag

	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		result.HadErrors = true
		bag.Add(diag.New(diag.Error, "empty configuration tag").
			Code("Q-1-24").At(loc).
			Problem("a YAML tag must name at least one merge or interpretation component").
			Build())
		return result
	}

	parts := strings.Split(trimmed, "_")
	for _, part := range parts {
		if strings.TrimSpace(part) == "" {
			result.HadErrors = true
			bag.Add(diag.New(diag.Error, "empty tag component").
				Code("Q-1-25").At(loc).Build())
			continue
		}
		if !isAlnumUnderscore(part) {
			result.HadErrors = true
			bag.Add(diag.New(diag.Error, "invalid character in tag component").
				Code("Q-1-26").At(loc).
				Problem("tag component \"" + part + "\" contains characters other than letters, digits and underscores").
				Build())
			continue
		}

		lower := strings.ToLower(part)
		if op, ok := mergeOpComponents[lower]; ok {
			if result.HasMergeOp {
				result.HadErrors = true
				bag.Add(diag.New(diag.Error, "conflicting merge operators in tag").
					Code("Q-1-28").At(loc).Build())
				continue
			}
			result.MergeOp, result.HasMergeOp = op, true
			continue
		}
		if interp, ok := interpComponents[lower]; ok {
			result.Interpretation, result.HasInterp = interp, true
			continue
		}

		// Unknown component: warning with a near-match suggestion.
		hint := suggestComponent(lower)
		b := diag.New(diag.Warning, "unknown tag component \""+part+"\"").Code("Q-1-21").At(loc)
		if hint != "" {
			b = b.Hint("did you mean \"" + hint + "\"?")
		}
		bag.Add(b.Build())
	}

	return result
}

func isAlnumUnderscore(s string) bool {
	for _, r := range s {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return false
		}
	}
	return true
}

func suggestComponent(lower string) string {
	if v, ok := typoDictionary[lower]; ok {
		return v
	}
	// Fall back to the closest known component by edit distance.
	best, bestDist := "", -1
	consider := func(name string) {
		d := levenshtein(lower, name)
		if bestDist == -1 || d < bestDist {
			best, bestDist = name, d
		}
	}
	names := make([]string, 0, len(mergeOpComponents)+len(interpComponents))
	for n := range mergeOpComponents {
		names = append(names, n)
	}
	for n := range interpComponents {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		consider(n)
	}
	if bestDist >= 0 && bestDist <= 2 {
		return best
	}
	return ""
}

func levenshtein(a, b string) int {
	if a == b {
		return 0
	}
	ra, rb := []rune(a), []rune(b)
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
