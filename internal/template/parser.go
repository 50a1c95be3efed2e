package template

import (
	"fmt"
	"strings"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// Parse compiles src into a Template (spec.md §4.6 step 1: parse). file
// and base locate src within the registry so every Node's SourceInfo
// points back to real template bytes.
func Parse(src string, file sourcemap.FileID, base int) (*Template, []diag.Diagnostic, error) {
	p := &parser{src: src, file: file, base: base}
	nodes, term, err := p.parseUntil()
	if err != nil {
		return nil, p.bag.Items(), err
	}
	if term != "" {
		p.errorf(p.pos, "unexpected $%s$ with no matching opener", term)
	}
	return &Template{Nodes: nodes, MaxPartialDepth: DefaultMaxPartialDepth}, p.bag.Items(), nil
}

type parser struct {
	src  string
	file sourcemap.FileID
	base int
	pos  int
	bag  diag.Bag

	// lastArgs stashes an "elseif(cond)" call's parenthesized argument
	// text across the single return-value channel parseUntil otherwise
	// uses for terminator keywords.
	lastArgs string
}

func (p *parser) si(start, end int) sourcemap.SourceInfo {
	return sourcemap.NewOriginal(p.file, sourcemap.Range{Start: p.base + start, End: p.base + end})
}

func (p *parser) errorf(pos int, format string, args ...any) {
	si := p.si(pos, pos)
	p.bag.Add(diag.New(diag.Error, "template parse error").
		Problem(fmt.Sprintf(format, args...)).
		At(si).
		Build())
}

// parseUntil parses literal text and tags up to EOF or a structural
// terminator tag (else/elseif/endif/endfor/sep), returning the nodes
// gathered and the terminator's bare keyword ("elseif"/"else"/"endif"/
// "endfor"/"sep", or "" at EOF). An "elseif(cond)" terminator leaves
// its parenthesized argument text in p.lastArgs.
func (p *parser) parseUntil() ([]Node, string, error) {
	var nodes []Node
	var lit strings.Builder
	litStart := p.pos

	flush := func() {
		if lit.Len() == 0 {
			return
		}
		nodes = append(nodes, Node{Kind: NodeLiteral, Text: lit.String(), SI: p.si(litStart, p.pos)})
		lit.Reset()
	}

	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if c != '$' {
			lit.WriteByte(c)
			p.pos++
			continue
		}

		// "$$" => literal "$".
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == '$' {
			lit.WriteByte('$')
			p.pos += 2
			continue
		}

		// "$-- comment" runs to end of line, consuming the newline.
		if strings.HasPrefix(p.src[p.pos:], "$--") {
			flush()
			nl := strings.IndexByte(p.src[p.pos:], '\n')
			if nl == -1 {
				p.pos = len(p.src)
			} else {
				p.pos += nl + 1
			}
			litStart = p.pos
			continue
		}

		// "${...}" brace form: always a Variable.
		if p.pos+1 < len(p.src) && p.src[p.pos+1] == '{' {
			flush()
			start := p.pos
			close := strings.IndexByte(p.src[p.pos+2:], '}')
			if close == -1 {
				p.errorf(p.pos, "unterminated ${...} template variable")
				p.pos = len(p.src)
				break
			}
			content := p.src[p.pos+2 : p.pos+2+close]
			p.pos = p.pos + 2 + close + 1
			nodes = append(nodes, p.variableNode(content, p.si(start, p.pos)))
			litStart = p.pos
			continue
		}

		// "$...$" generic tag form.
		start := p.pos
		closeRel := strings.IndexByte(p.src[p.pos+1:], '$')
		if closeRel == -1 {
			p.errorf(p.pos, "unterminated $...$ template tag")
			p.pos = len(p.src)
			break
		}
		content := p.src[p.pos+1 : p.pos+1+closeRel]
		p.pos = p.pos + 1 + closeRel + 1
		si := p.si(start, p.pos)

		flush()
		keyword, args := splitKeyword(content)

		switch {
		case keyword == "if":
			cond := parsePath(args)
			body, term, err := p.parseUntil()
			if err != nil {
				return nodes, "", err
			}
			branches := []Branch{{CondPath: cond, Body: body}}
			for term == "elseif" {
				elseifArgs := p.lastArgs
				body2, term2, err := p.parseUntil()
				if err != nil {
					return nodes, "", err
				}
				branches = append(branches, Branch{CondPath: parsePath(elseifArgs), Body: body2})
				term = term2
			}
			node := Node{Kind: NodeConditional, Branches: branches, SI: si}
			if term == "else" {
				elseBody, term2, err := p.parseUntil()
				if err != nil {
					return nodes, "", err
				}
				node.Else = elseBody
				node.HasElse = true
				term = term2
			}
			if term != "endif" {
				p.errorf(p.pos, "expected $endif$, got %q", term)
			}
			nodes = append(nodes, node)
			litStart = p.pos

		case keyword == "elseif":
			p.lastArgs = args
			return nodes, "elseif", nil

		case content == "else":
			return nodes, "else", nil

		case content == "endif":
			return nodes, "endif", nil

		case keyword == "for":
			forVar := parsePath(args)
			body, term, err := p.parseUntil()
			if err != nil {
				return nodes, "", err
			}
			node := Node{Kind: NodeForLoop, ForVar: forVar, ForBody: body, SI: si}
			if term == "sep" {
				sepBody, term2, err := p.parseUntil()
				if err != nil {
					return nodes, "", err
				}
				node.ForSep = sepBody
				term = term2
			}
			if term != "endfor" {
				p.errorf(p.pos, "expected $endfor$, got %q", term)
			}
			nodes = append(nodes, node)
			litStart = p.pos

		case content == "sep":
			return nodes, "sep", nil

		case content == "endfor":
			return nodes, "endfor", nil

		case strings.HasPrefix(content, ">"):
			name, varName := parsePartialCall(content[1:])
			nodes = append(nodes, Node{Kind: NodePartial, PartialName: name, PartialVar: varName, SI: si})
			litStart = p.pos

		case keyword == "partial":
			name, varName := parsePartialArgs(args)
			nodes = append(nodes, Node{Kind: NodePartial, PartialName: name, PartialVar: varName, SI: si})
			litStart = p.pos

		default:
			nodes = append(nodes, p.variableNode(content, si))
			litStart = p.pos
		}
	}
	flush()
	return nodes, "", nil
}

func (p *parser) variableNode(content string, si sourcemap.SourceInfo) Node {
	body := content
	var sep *string
	if open := strings.IndexByte(body, '['); open != -1 && strings.HasSuffix(body, "]") {
		s := body[open+1 : len(body)-1]
		sep = &s
		body = body[:open]
	}
	parts := strings.Split(body, "|")
	path := parsePath(parts[0])
	var pipes []string
	if len(parts) > 1 {
		pipes = append(pipes, parts[1:]...)
	}
	return Node{Kind: NodeVariable, VarPath: path, Pipes: pipes, Sep: sep, SI: si}
}

func parsePath(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return strings.Split(s, ".")
}

// splitKeyword splits a tag body like "if(x.y)" into ("if", "x.y"); a
// body with no parenthesized call returns ("", body).
func splitKeyword(content string) (keyword, args string) {
	open := strings.IndexByte(content, '(')
	if open == -1 || !strings.HasSuffix(content, ")") {
		return "", content
	}
	return content[:open], content[open+1 : len(content)-1]
}

// parsePartialArgs splits a "$partial(name, var)$" call's parenthesized
// argument text into the partial name and an optional bound-variable
// path.
func parsePartialArgs(args string) (name string, varName []string) {
	parts := strings.SplitN(args, ",", 2)
	name = strings.Trim(strings.TrimSpace(parts[0]), `"'`)
	if len(parts) > 1 {
		varName = parsePath(parts[1])
	}
	return name, varName
}

// parsePartialCall splits a "$>partialname(var)$" call (rest is
// everything after the leading '>') into name and optional bound var.
func parsePartialCall(rest string) (name string, varName []string) {
	open := strings.IndexByte(rest, '(')
	if open == -1 {
		return strings.TrimSpace(rest), nil
	}
	name = strings.TrimSpace(rest[:open])
	closeIdx := strings.LastIndexByte(rest, ')')
	if closeIdx == -1 || closeIdx < open {
		return name, nil
	}
	if inner := strings.TrimSpace(rest[open+1 : closeIdx]); inner != "" {
		varName = parsePath(inner)
	}
	return name, varName
}
