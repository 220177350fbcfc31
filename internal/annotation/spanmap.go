package annotation

import (
	"errors"
	"go/token"
)

// Span is a half-open source range.
type Span struct {
	Pos token.Pos
	End token.Pos
}

// ErrOutsideDoc is returned when a character range overlaps no fragment.
// It indicates the caller mapped ranges produced from a different document.
var ErrOutsideDoc = errors.New("character range maps to no documentation fragment")

// MapRange converts the character range [lo, hi) within the logical
// documentation text back into source spans. Fragments are walked in order
// with a running offset; each fragment contributing a non-empty portion of
// the range yields one candidate span, and source-adjacent spans are merged.
func (d *Doc) MapRange(lo, hi int) ([]Span, error) {
	var spans []Span
	offset := 0
	for _, f := range d.Frags {
		n := len(f.Text)
		s := lo
		if offset > s {
			s = offset
		}
		e := hi
		if offset+n < e {
			e = offset + n
		}
		if s < e {
			base := f.Pos + token.Pos(f.Prefix)
			spans = append(spans, Span{
				Pos: base + token.Pos(s-offset),
				End: base + token.Pos(e-offset),
			})
		}
		offset += n + 1 // the injected join newline
	}

	if len(spans) == 0 {
		return nil, ErrOutsideDoc
	}

	return mergeAdjacent(spans), nil
}

// MapAll returns the spans covering the full logical text.
func (d *Doc) MapAll() ([]Span, error) {
	return d.MapRange(0, len(d.Text))
}

// mergeAdjacent combines spans whose source ranges touch, so diagnostics
// quote one contiguous region instead of per-line slivers.
func mergeAdjacent(spans []Span) []Span {
	out := spans[:0]
	for _, sp := range spans {
		if len(out) > 0 && out[len(out)-1].End == sp.Pos {
			out[len(out)-1].End = sp.End

			continue
		}
		out = append(out, sp)
	}

	return out
}
