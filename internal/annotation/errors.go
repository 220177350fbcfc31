package annotation

import (
	"fmt"

	"github.com/oblicheck/oblicheck/internal/condition"
)

// Range is a half-open character range within the logical documentation text.
type Range struct {
	Lo, Hi int
}

// ErrorKind classifies annotation parse failures.
type ErrorKind int

const (
	// NoDocString: the item has no documentation text at all. Raised by
	// callers, not the parser; recoverable.
	NoDocString ErrorKind = iota
	// NoMarkerPattern: the section marker never occurs. Recoverable.
	NoMarkerPattern
	// MultipleMarkerPatterns: the marker occurs more than once.
	MultipleMarkerPatterns
	// EmptyMarker: the section exists but has no bullet entries.
	EmptyMarker
	// NonMatchingBullets: the section mixes '-' and '*' bullet styles.
	NonMatchingBullets
	// NoColon: a bullet has no ':' separating name from description.
	NoColon
	// InvalidConditionName: a bullet's pre-colon text is not a valid name.
	InvalidConditionName
)

func (k ErrorKind) String() string {
	switch k {
	case NoDocString:
		return "no documentation"
	case NoMarkerPattern:
		return "no section marker"
	case MultipleMarkerPatterns:
		return "multiple section markers"
	case EmptyMarker:
		return "section declares no conditions"
	case NonMatchingBullets:
		return "section mixes bullet styles"
	case NoColon:
		return "bullet is missing a ':' separator"
	case InvalidConditionName:
		return "invalid condition name"
	default:
		return fmt.Sprintf("unknown-kind(%d)", int(k))
	}
}

// ParseError is a failed section parse. Ranges are kind-specific: every
// marker match for MultipleMarkerPatterns, the first occurrence of each
// bullet style for NonMatchingBullets, the offending bullet or name
// otherwise. All ranges index the logical documentation text and can be
// turned into source spans through Doc.MapRange.
type ParseError struct {
	Kind   ErrorKind
	Ranges []Range

	// InsertColonAt is the offset just after the bullet's first word,
	// where a colon could be inserted (NoColon only).
	InsertColonAt int

	// Raw is the rejected name text (InvalidConditionName only).
	Raw        string
	NameReason condition.InvalidNameReason
}

func (e *ParseError) Error() string {
	switch e.Kind {
	case InvalidConditionName:
		return fmt.Sprintf("invalid condition name %q: %s", e.Raw, e.NameReason)
	default:
		return e.Kind.String()
	}
}

// Recoverable reports whether callers should treat the item as simply
// unannotated rather than surfacing an error.
func (e *ParseError) Recoverable() bool {
	return e.Kind == NoDocString || e.Kind == NoMarkerPattern
}
