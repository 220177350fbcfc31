// Package condition defines the named-condition vocabulary shared by
// requirement and justification annotations.
package condition

import (
	"fmt"
	"strings"
)

// InvalidNameReason explains why a raw string is not a valid condition name.
type InvalidNameReason int

const (
	// TrailingWhitespace means the raw text is a single word surrounded by
	// stray whitespace.
	TrailingWhitespace InvalidNameReason = iota
	// MultipleWords means the raw text splits into two or more words.
	MultipleWords
)

func (r InvalidNameReason) String() string {
	switch r {
	case TrailingWhitespace:
		return "trailing whitespace"
	case MultipleWords:
		return "multiple words"
	default:
		return fmt.Sprintf("unknown-reason(%d)", int(r))
	}
}

// InvalidNameError reports a rejected condition name together with the
// rejection reason.
type InvalidNameError struct {
	Raw    string
	Reason InvalidNameReason
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid condition name %q: %s", e.Raw, e.Reason)
}

// Name is a validated condition identifier: exactly one non-whitespace token.
// Hyphens and underscores are permitted.
type Name struct {
	s string
}

const invalidWhitespace = " \t\n\r"

// NewName validates raw as a condition name.
func NewName(raw string) (Name, error) {
	if !strings.ContainsAny(raw, invalidWhitespace) {
		return Name{s: raw}, nil
	}

	words := strings.FieldsFunc(raw, func(r rune) bool {
		return strings.ContainsRune(invalidWhitespace, r)
	})

	reason := MultipleWords
	if len(words) == 1 {
		// No other words, just stray whitespace around one token.
		reason = TrailingWhitespace
	}

	return Name{}, &InvalidNameError{Raw: raw, Reason: reason}
}

// MustName is a test and table helper; it panics on invalid input.
func MustName(raw string) Name {
	n, err := NewName(raw)
	if err != nil {
		panic(err)
	}

	return n
}

func (n Name) String() string { return n.s }

// Requirement is a named precondition a function declares callers must
// satisfy, attached to a function definition.
type Requirement struct {
	Name        Name
	Description string
}

// Justification asserts, at a call site or enclosing block, that the named
// precondition has been satisfied.
type Justification struct {
	Name        Name
	Explanation string
}

// ObligationKind selects how a caller discharges a callee's requirements.
// The kind is a run-mode decision, global to the whole analysis.
type ObligationKind int

const (
	// ConsiderProperty requires some acknowledgment from the caller; the
	// condition names are not checked (coarse mode).
	ConsiderProperty ObligationKind = iota
	// ConsiderConditions requires the caller's justification to name each
	// declared condition (fine-grained mode).
	ConsiderConditions
)

// Obligation is the caller-facing consequence of a function's requirements.
type Obligation struct {
	Kind       ObligationKind
	Conditions []Requirement // set only for ConsiderConditions
}
