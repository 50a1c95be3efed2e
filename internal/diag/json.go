package diag

import (
	"encoding/json"
	"sort"

	"github.com/docforge/docforge/internal/sourcemap"
)

// jsonLocation is the stable JSON schema for a resolvable Original location.
type jsonLocation struct {
	FileID      int32 `json:"file_id"`
	StartOffset int   `json:"start_offset"`
	EndOffset   int   `json:"end_offset"`
}

type jsonDetail struct {
	Kind     string        `json:"kind"`
	Content  string        `json:"content"`
	Location *jsonLocation `json:"location,omitempty"`
}

type jsonDiagnostic struct {
	Kind     string        `json:"kind"`
	Code     string        `json:"code,omitempty"`
	Title    string        `json:"title"`
	Problem  string        `json:"problem,omitempty"`
	Details  []jsonDetail  `json:"details,omitempty"`
	Hints    []string      `json:"hints,omitempty"`
	Location *jsonLocation `json:"location,omitempty"`

	startOffset int // sort key; -1 when missing, sorts first
}

func toJSONLocation(si *sourcemap.SourceInfo) *jsonLocation {
	if si == nil || si.Kind != sourcemap.KindOriginal {
		return nil
	}
	return &jsonLocation{
		FileID:      int32(si.File),
		StartOffset: si.Range.Start,
		EndOffset:   si.Range.End,
	}
}

// RenderJSON renders diagnostics to the stable JSON schema, ordered by
// location.start_offset (diagnostics with no resolvable location sort
// first).
func RenderJSON(items []Diagnostic) ([]byte, error) {
	out := make([]jsonDiagnostic, len(items))
	for i, d := range items {
		jd := jsonDiagnostic{
			Kind:    d.Kind.String(),
			Code:    d.Code,
			Title:   d.Title,
			Problem: d.Problem,
			Hints:   d.Hints,
		}
		jd.Location = toJSONLocation(d.Location)
		if jd.Location != nil {
			jd.startOffset = jd.Location.StartOffset
		} else {
			jd.startOffset = -1
		}
		for _, det := range d.Details {
			jd.Details = append(jd.Details, jsonDetail{
				Kind:     det.Kind.String(),
				Content:  det.Content,
				Location: toJSONLocation(det.Location),
			})
		}
		out[i] = jd
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].startOffset < out[j].startOffset
	})

	return json.MarshalIndent(out, "", "  ")
}
