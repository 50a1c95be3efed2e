package sourcemap

// SourceInfo composably describes where the bytes of a derived buffer
// came from in one or more original files. Exactly one of the four
// variants is populated; Kind reports which.
type SourceInfo struct {
	Kind Kind

	// Original
	File  FileID
	Range Range

	// Substring
	Parent *SourceInfo
	Offset int
	Length int

	// Concat
	Pieces []ConcatPiece

	// FilterProvenance
	Filter string
}

// Kind discriminates the SourceInfo variants.
type Kind int

const (
	// KindOriginal is a span in a registered file.
	KindOriginal Kind = iota
	// KindSubstring is a window into a parent SourceInfo.
	KindSubstring
	// KindConcat is a derived buffer assembled from several regions in order.
	KindConcat
	// KindFilterProvenance marks content synthesized by a named transformation.
	KindFilterProvenance
)

// ConcatPiece is one region contributing to a Concat SourceInfo.
// OffsetInConcat values must be strictly increasing across Pieces.
type ConcatPiece struct {
	Piece         SourceInfo
	OffsetInConcat int
}

// NewOriginal builds an Original SourceInfo.
func NewOriginal(file FileID, rng Range) SourceInfo {
	return SourceInfo{Kind: KindOriginal, File: file, Range: rng}
}

// NewSubstring builds a Substring SourceInfo: a window [offset, offset+length)
// into parent, where offset is relative to the parent's own range.
func NewSubstring(parent SourceInfo, offset, length int) SourceInfo {
	p := parent
	return SourceInfo{Kind: KindSubstring, Parent: &p, Offset: offset, Length: length}
}

// NewConcat builds a Concat SourceInfo from ordered pieces.
func NewConcat(pieces []ConcatPiece) SourceInfo {
	return SourceInfo{Kind: KindConcat, Pieces: pieces}
}

// NewFilterProvenance builds a SourceInfo tagging content synthesized
// by the named transformation; it carries no original bytes.
func NewFilterProvenance(filter string) SourceInfo {
	return SourceInfo{Kind: KindFilterProvenance, Filter: filter}
}

// StartOffset returns the byte offset at which this SourceInfo begins
// in the file it descends from, following Substring parents and a
// Concat's first piece; FilterProvenance (and an empty Concat) return 0.
func (s SourceInfo) StartOffset() int {
	switch s.Kind {
	case KindOriginal:
		return s.Range.Start
	case KindSubstring:
		return s.Parent.StartOffset() + s.Offset
	case KindConcat:
		if len(s.Pieces) == 0 {
			return 0
		}
		return s.Pieces[0].Piece.StartOffset()
	default:
		return 0
	}
}

// EndOffset returns StartOffset() + Length().
func (s SourceInfo) EndOffset() int {
	return s.StartOffset() + s.Length()
}

// Length returns the number of bytes this SourceInfo covers.
func (s SourceInfo) Length() int {
	switch s.Kind {
	case KindOriginal:
		return s.Range.Len()
	case KindSubstring:
		return s.Length
	case KindConcat:
		total := 0
		for _, p := range s.Pieces {
			total += p.Piece.Length()
		}
		return total
	default:
		return 0
	}
}

// OriginFile returns the FileID of the ultimate Original SourceInfo s
// descends from, following Substring parents and a Concat's first
// piece. ok is false for FilterProvenance, which has no origin file.
func (s SourceInfo) OriginFile() (file FileID, ok bool) {
	switch s.Kind {
	case KindOriginal:
		return s.File, true
	case KindSubstring:
		return s.Parent.OriginFile()
	case KindConcat:
		if len(s.Pieces) == 0 {
			return 0, false
		}
		return s.Pieces[0].Piece.OriginFile()
	default:
		return 0, false
	}
}

// Mapped is the result of resolving a local offset to its ultimate
// origin in a registered file.
type Mapped struct {
	File     FileID
	Location Location
}

// MapOffset resolves offsetInSelf (an offset local to this SourceInfo's
// own buffer) back to a Location in a registered file. It returns
// ok=false when the SourceInfo is FilterProvenance, or when the offset
// falls outside any resolvable piece.
func MapOffset(s SourceInfo, offsetInSelf int, reg *Registry) (Mapped, bool) {
	switch s.Kind {
	case KindOriginal:
		abs := s.Range.Start + offsetInSelf
		if abs < s.Range.Start || abs > s.Range.End {
			return Mapped{}, false
		}
		entry, err := reg.GetFile(s.File)
		if err != nil {
			return Mapped{}, false
		}
		return Mapped{File: s.File, Location: entry.OffsetToLocation(abs)}, true

	case KindSubstring:
		if offsetInSelf < 0 || offsetInSelf > s.Length {
			return Mapped{}, false
		}
		return MapOffset(*s.Parent, s.Offset+offsetInSelf, reg)

	case KindConcat:
		if len(s.Pieces) == 0 {
			return Mapped{}, false
		}
		// Find the piece whose [OffsetInConcat, OffsetInConcat+len) range
		// contains offsetInSelf. An offset on the boundary between two
		// pieces resolves to the later piece, whose range contains it.
		idx := -1
		for i, p := range s.Pieces {
			pieceLen := p.Piece.Length()
			if offsetInSelf < p.OffsetInConcat {
				break
			}
			if offsetInSelf < p.OffsetInConcat+pieceLen || (pieceLen == 0 && offsetInSelf == p.OffsetInConcat) {
				idx = i
			}
			if offsetInSelf < p.OffsetInConcat+pieceLen {
				break
			}
		}
		if idx == -1 {
			// offsetInSelf landed exactly on the end of the last piece, or
			// before the first — try the nearest earlier piece.
			for i := len(s.Pieces) - 1; i >= 0; i-- {
				if s.Pieces[i].OffsetInConcat <= offsetInSelf {
					idx = i
					break
				}
			}
		}
		if idx == -1 {
			return Mapped{}, false
		}
		p := s.Pieces[idx]
		return MapOffset(p.Piece, offsetInSelf-p.OffsetInConcat, reg)

	default: // KindFilterProvenance
		return Mapped{}, false
	}
}
