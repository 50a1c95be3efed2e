package config

import (
	"fmt"
	"strconv"
	"strings"

	yaml "gopkg.in/yaml.v3"

	"github.com/docforge/docforge/internal/diag"
	"github.com/docforge/docforge/internal/sourcemap"
)

// yamlDecoder carries the state threaded through one DecodeYAML call:
// the destination file/registry/diagnostic bag, plus a line offset for
// the case where the YAML bytes being parsed are a substring of a
// larger registered file (e.g. front matter embedded in a markdown
// document) rather than the whole file.
type yamlDecoder struct {
	file       sourcemap.FileID
	reg        *sourcemap.Registry
	bag        *diag.Bag
	lineOffset int
}

// DecodeYAML converts a parsed YAML document into a ConfigValue tree,
// source-mapping every node (keys at the key token's start, values at
// the value token's start, per the scalar/key convention used
// throughout the configuration layer) back into file. Tag suffixes
// ("!prefer_md", "!concat", ...) are parsed via ParseTag and recorded
// as the node's MergeOp/Interpretation.
func DecodeYAML(src []byte, file sourcemap.FileID, reg *sourcemap.Registry, bag *diag.Bag) (ConfigValue, error) {
	return DecodeYAMLAt(src, file, 0, reg, bag)
}

// DecodeYAMLAt is DecodeYAML for the case where src is a substring of
// file starting at 0-based line lineOffset (e.g. front-matter bytes
// embedded after a "---" delimiter line) — every reported position is
// shifted so it lands on file's own line table.
func DecodeYAMLAt(src []byte, file sourcemap.FileID, lineOffset int, reg *sourcemap.Registry, bag *diag.Bag) (ConfigValue, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return ConfigValue{}, fmt.Errorf("config: parsing yaml: %w", err)
	}
	d := &yamlDecoder{file: file, reg: reg, bag: bag, lineOffset: lineOffset}
	if len(doc.Content) == 0 {
		return Null(sourcemap.NewOriginal(file, sourcemap.Range{})), nil
	}
	return d.nodeToConfigValue(doc.Content[0]), nil
}

func (d *yamlDecoder) nodeLocation(n *yaml.Node) sourcemap.SourceInfo {
	entry, err := d.reg.GetFile(d.file)
	if err != nil {
		return sourcemap.SourceInfo{}
	}
	start, ok := entry.LocationToOffset(d.lineOffset+n.Line-1, n.Column-1)
	if !ok {
		return sourcemap.SourceInfo{}
	}
	length := len(n.Value)
	if length == 0 {
		length = 1
	}
	end := start + length
	if end > len(entry.Content) {
		end = len(entry.Content)
	}
	return sourcemap.NewOriginal(d.file, sourcemap.Range{Start: start, End: end})
}

// nodeToConfigValue dispatches on yaml.Node.Kind. Aliases are resolved
// transparently (YAML anchors/aliases are not a first-class config
// concept; they collapse to their referent's value at the alias site,
// but keep the alias's own source location).
func (d *yamlDecoder) nodeToConfigValue(n *yaml.Node) ConfigValue {
	if n.Kind == yaml.AliasNode && n.Alias != nil {
		v := d.nodeToConfigValue(n.Alias)
		v.SourceInfo = d.nodeLocation(n)
		return v
	}

	si := d.nodeLocation(n)
	tag := d.parsedTagFor(n, si)

	var v ConfigValue
	switch n.Kind {
	case yaml.ScalarNode:
		v = scalarNodeToConfigValue(n, si)
	case yaml.SequenceNode:
		v = d.sequenceNodeToConfigValue(n, si)
	case yaml.MappingNode:
		v = d.mappingNodeToConfigValue(n, si)
	default:
		v = Null(si)
	}

	if tag.HasMergeOp {
		v.MergeOp = tag.MergeOp
	}
	if tag.HasInterp {
		v.Interpretation = tag.Interpretation
		applyInterpretation(&v)
	}
	return v
}

// parsedTagFor parses the node's explicit tag suffix, if it names one
// of our custom tags (everything past the leading "!"). Plain YAML
// core tags ("!!str", "!!map", ...) are left alone.
func (d *yamlDecoder) parsedTagFor(n *yaml.Node, si sourcemap.SourceInfo) ParsedTag {
	if n.Tag == "" || strings.HasPrefix(n.Tag, "!!") || !strings.HasPrefix(n.Tag, "!") {
		return ParsedTag{}
	}
	return ParseTag(strings.TrimPrefix(n.Tag, "!"), si, d.bag)
}

func applyInterpretation(v *ConfigValue) {
	if v.Kind != KindScalar {
		return
	}
	s, _ := v.Scalar.(string)
	switch v.Interpretation {
	case InterpMarkdown:
		coerceMarkdown(v)
	case InterpPath:
		v.Kind, v.Path = KindPath, s
	case InterpGlob:
		v.Kind, v.Glob = KindGlob, s
	case InterpExpr:
		v.Kind, v.Expr = KindExpr, s
	}
}

func scalarNodeToConfigValue(n *yaml.Node, si sourcemap.SourceInfo) ConfigValue {
	if n.Tag == "!!null" || (n.Tag == "" && n.Value == "") {
		return Null(si)
	}
	switch n.Tag {
	case "!!bool":
		b, err := strconv.ParseBool(n.Value)
		if err != nil {
			return NewScalar(n.Value, si)
		}
		return NewScalar(b, si)
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 10, 64)
		if err != nil {
			return NewScalar(n.Value, si)
		}
		return NewScalar(i, si)
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return NewScalar(n.Value, si)
		}
		return NewScalar(f, si)
	default:
		return NewScalar(n.Value, si)
	}
}

func (d *yamlDecoder) sequenceNodeToConfigValue(n *yaml.Node, si sourcemap.SourceInfo) ConfigValue {
	items := make([]ConfigValue, 0, len(n.Content))
	for _, child := range n.Content {
		items = append(items, d.nodeToConfigValue(child))
	}
	return ConfigValue{Kind: KindArray, Array: items, SourceInfo: si}
}

func (d *yamlDecoder) mappingNodeToConfigValue(n *yaml.Node, si sourcemap.SourceInfo) ConfigValue {
	m := NewOrderedMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valNode := n.Content[i], n.Content[i+1]
		keySI := d.nodeLocation(keyNode)
		val := d.nodeToConfigValue(valNode)
		val.KeySourceInfo = &keySI
		m.Set(keyNode.Value, val)
	}
	return ConfigValue{Kind: KindMap, Map: m, SourceInfo: si}
}
