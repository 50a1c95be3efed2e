package diag

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"charm.land/lipgloss/v2"
	"github.com/docforge/docforge/internal/sourcemap"
	"github.com/mattn/go-isatty"
)

// TextRenderer renders diagnostics as annotated text with code frames,
// the way a compiler front-end does. Columns are byte offsets within
// the line unless DisplayWidth is set, in which case they are
// converted to rune counts for display only (spec.md §4.2).
type TextRenderer struct {
	Registry     *sourcemap.Registry
	Color        bool // whether NewTextRenderer enabled colored styles
	DisplayWidth bool

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	locStyle     lipgloss.Style
}

// NewTextRenderer builds a renderer, auto-detecting color support from
// fd (typically os.Stderr.Fd()) via isatty when colorForce is nil.
func NewTextRenderer(reg *sourcemap.Registry, fd uintptr, colorForce *bool) *TextRenderer {
	color := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	if colorForce != nil {
		color = *colorForce
	}
	r := &TextRenderer{Registry: reg, Color: color}
	r.errorStyle = lipgloss.NewStyle().Bold(true)
	r.warningStyle = lipgloss.NewStyle().Bold(true)
	r.infoStyle = lipgloss.NewStyle().Bold(true)
	r.locStyle = lipgloss.NewStyle().Faint(true)
	if color {
		r.errorStyle = r.errorStyle.Foreground(lipgloss.Color("9"))
		r.warningStyle = r.warningStyle.Foreground(lipgloss.Color("11"))
		r.infoStyle = r.infoStyle.Foreground(lipgloss.Color("12"))
	}
	return r
}

func (r *TextRenderer) kindStyle(k Kind) lipgloss.Style {
	switch k {
	case Error:
		return r.errorStyle
	case Warning:
		return r.warningStyle
	default:
		return r.infoStyle
	}
}

// Render writes diagnostics to w, sorted by file and offset.
func (r *TextRenderer) Render(w io.Writer, items []Diagnostic) error {
	bw := bufio.NewWriter(w)
	defer bw.Flush()

	sorted := append([]Diagnostic(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		fi, oi := r.sortKey(sorted[i].Location)
		fj, oj := r.sortKey(sorted[j].Location)
		if fi != fj {
			return fi < fj
		}
		return oi < oj
	})

	for _, d := range sorted {
		if err := r.renderOne(bw, d); err != nil {
			return err
		}
	}
	return nil
}

func (r *TextRenderer) sortKey(si *sourcemap.SourceInfo) (file int32, offset int) {
	if si == nil || si.Kind != sourcemap.KindOriginal {
		return -1, -1
	}
	return int32(si.File), si.Range.Start
}

func (r *TextRenderer) renderOne(w io.Writer, d Diagnostic) error {
	style := r.kindStyle(d.Kind)
	prefix := style.Render(fmt.Sprintf("%s:", d.Kind))
	if d.Code != "" {
		prefix = style.Render(fmt.Sprintf("%s[%s]:", d.Kind, d.Code))
	}
	fmt.Fprintf(w, "%s %s\n", prefix, d.Title)

	if loc, frame, ok := r.codeFrame(d.Location); ok {
		fmt.Fprintf(w, "  %s\n", r.locStyle.Render(loc))
		fmt.Fprint(w, frame)
	} else if d.Location != nil && d.Location.Kind == sourcemap.KindFilterProvenance {
		fmt.Fprintf(w, "  %s\n", r.locStyle.Render(fmt.Sprintf("in output from filter `%s`", d.Location.Filter)))
	}

	if d.Problem != "" {
		fmt.Fprintf(w, "  %s\n", d.Problem)
	}
	for _, det := range d.Details {
		fmt.Fprintf(w, "  %s: %s\n", det.Kind, det.Content)
	}
	for _, hint := range d.Hints {
		fmt.Fprintf(w, "  hint: %s\n", hint)
	}
	fmt.Fprintln(w)
	return nil
}

// codeFrame renders "filename:row+1:col+1" plus a source snippet with
// markers under the start/end positions, for any diagnostic with a
// resolvable Original location.
func (r *TextRenderer) codeFrame(si *sourcemap.SourceInfo) (header, frame string, ok bool) {
	if si == nil || r.Registry == nil {
		return "", "", false
	}
	mapped, resolved := sourcemap.MapOffset(*si, 0, r.Registry)
	if !resolved {
		return "", "", false
	}
	entry, err := r.Registry.GetFile(mapped.File)
	if err != nil {
		return "", "", false
	}

	header = fmt.Sprintf("%s:%d:%d", entry.Path, mapped.Location.Row+1, mapped.Location.Column+1)

	lines := strings.Split(string(entry.Content), "\n")
	if mapped.Location.Row < 0 || mapped.Location.Row >= len(lines) {
		return header, "", true
	}
	line := lines[mapped.Location.Row]

	col := mapped.Location.Column
	width := 1
	if end, endOK := sourcemap.MapOffset(*si, si.Length()-1, r.Registry); endOK && end.Location.Row == mapped.Location.Row {
		width = max(end.Location.Column-col+1, 1)
	}
	if r.DisplayWidth {
		// Display-width conversion only affects the caret row, not the
		// stored byte columns used for header/JSON output.
		startByte := min(col, len(line))
		endByte := min(col+width, len(line))
		width = max(utf8.RuneCountInString(line[startByte:endByte]), 1)
		col = utf8.RuneCountInString(line[:startByte])
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %d | %s\n", mapped.Location.Row+1, line)
	gutter := len(fmt.Sprintf("%d", mapped.Location.Row+1)) + 4
	b.WriteString(strings.Repeat(" ", gutter+col))
	b.WriteString(strings.Repeat("^", width))
	b.WriteString("\n")

	return header, b.String(), true
}
