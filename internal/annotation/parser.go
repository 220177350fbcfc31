package annotation

import (
	"regexp"
	"strings"

	"github.com/oblicheck/oblicheck/internal/condition"
)

// sectionEndPat matches the first boundary after a marker: another header
// line at any nesting depth, or a blank line.
var sectionEndPat = regexp.MustCompile(`\n[ \t]*(#|\r?\n)`)

var (
	hyphenBulletPat   = regexp.MustCompile(`(^|\n)[ \t]*-`)
	asteriskBulletPat = regexp.MustCompile(`(^|\n)[ \t]*\*`)
)

// Entry is one parsed "name: description" bullet.
type Entry struct {
	Name  condition.Name
	Text  string // description/explanation, trimmed
	Range Range  // the bullet body within the logical doc text
}

// Section is a parsed marker-delimited section.
type Section struct {
	Entries []Entry
	// None is set when the section body is the literal word "none": the
	// section is well-formed but declares no conditions and creates no
	// obligation.
	None bool
	Body Range
}

// FindSection locates the unique occurrence of marker in text and returns
// the raw section body, truncated at the next header or blank line, together
// with the body's base offset. Only marker-count failures are possible here.
func FindSection(text string, marker *regexp.Regexp) (string, int, *ParseError) {
	matches := marker.FindAllStringIndex(text, -1)
	switch {
	case len(matches) == 0:
		return "", 0, &ParseError{Kind: NoMarkerPattern}
	case len(matches) > 1:
		ranges := make([]Range, len(matches))
		for i, m := range matches {
			ranges[i] = Range{Lo: m[0], Hi: m[1]}
		}

		return "", 0, &ParseError{Kind: MultipleMarkerPatterns, Ranges: ranges}
	}

	base := matches[0][1]
	body := text[base:]
	if end := sectionEndPat.FindStringIndex(body); end != nil {
		body = body[:end[0]]
	}

	return body, base, nil
}

// ParseSection parses the marker-delimited bulleted list in text into
// entries in source order. Any single bullet failure aborts the whole parse
// with that one error.
func ParseSection(text string, marker *regexp.Regexp) (*Section, *ParseError) {
	body, base, err := FindSection(text, marker)
	if err != nil {
		return nil, err
	}

	sec := &Section{Body: Range{Lo: base, Hi: base + len(body)}}

	if strings.EqualFold(strings.TrimSpace(body), "none") {
		sec.None = true

		return sec, nil
	}

	bulletPat, err := chooseBullet(body, base)
	if err != nil {
		return nil, err
	}

	matches := bulletPat.FindAllStringIndex(body, -1)
	for i, m := range matches {
		start := m[1]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		entry, err := parseBullet(body[start:end], base+start)
		if err != nil {
			return nil, err
		}
		sec.Entries = append(sec.Entries, entry)
	}

	return sec, nil
}

// chooseBullet determines which bullet style the section uses.
func chooseBullet(body string, base int) (*regexp.Regexp, *ParseError) {
	hyphen := hyphenBulletPat.FindStringIndex(body)
	asterisk := asteriskBulletPat.FindStringIndex(body)

	switch {
	case hyphen != nil && asterisk != nil:
		// Report the first occurrence of each style, earliest first, so the
		// caller can suggest normalizing to whichever came first.
		first := Range{Lo: base + hyphen[1] - 1, Hi: base + hyphen[1]}
		second := Range{Lo: base + asterisk[1] - 1, Hi: base + asterisk[1]}
		if asterisk[0] < hyphen[0] {
			first, second = second, first
		}

		return nil, &ParseError{Kind: NonMatchingBullets, Ranges: []Range{first, second}}
	case hyphen != nil:
		return hyphenBulletPat, nil
	case asterisk != nil:
		return asteriskBulletPat, nil
	default:
		return nil, &ParseError{
			Kind:   EmptyMarker,
			Ranges: []Range{{Lo: base, Hi: base + len(body)}},
		}
	}
}

// parseBullet parses one bullet body (the text between two bullet prefixes)
// into a named entry. raw keeps surrounding whitespace so ranges stay exact;
// base is raw's offset within the logical doc text.
func parseBullet(raw string, base int) (Entry, *ParseError) {
	lead := len(raw) - len(strings.TrimLeft(raw, " \t\r\n"))
	trimmed := strings.TrimSpace(raw)
	lo := base + lead
	hi := lo + len(trimmed)

	colon := strings.Index(trimmed, ":")
	if colon == -1 {
		wordEnd := strings.IndexAny(trimmed, " \t\r\n")
		if wordEnd == -1 {
			wordEnd = len(trimmed)
		}

		return Entry{}, &ParseError{
			Kind:          NoColon,
			Ranges:        []Range{{Lo: lo, Hi: hi}},
			InsertColonAt: lo + wordEnd,
		}
	}

	// The name is deliberately not trimmed: "nn :" should surface as a
	// trailing-whitespace name, with a precise range.
	name := trimmed[:colon]
	parsed, nameErr := condition.NewName(name)
	if nameErr != nil {
		invalid := nameErr.(*condition.InvalidNameError)

		return Entry{}, &ParseError{
			Kind:       InvalidConditionName,
			Ranges:     []Range{{Lo: lo, Hi: lo + len(name)}},
			Raw:        name,
			NameReason: invalid.Reason,
		}
	}

	return Entry{
		Name:  parsed,
		Text:  strings.TrimSpace(trimmed[colon+1:]),
		Range: Range{Lo: lo, Hi: hi},
	}, nil
}
