// Package property defines the checkable property axes. The set is closed:
// every property is a tagged constant so axiom handling stays exhaustively
// matchable, and no state is shared between properties within a run.
package property

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"regexp"
	"strings"

	"github.com/oblicheck/oblicheck/internal/condition"
)

// Property is one independently-checked axis of risk.
type Property int

const (
	// Safety checks operations on package unsafe.
	Safety Property = iota
	// Panics checks explicit panic sites.
	Panics
)

// All returns every known property.
func All() []Property {
	return []Property{Safety, Panics}
}

// ParseList parses a comma-separated property list (e.g. "safety,panics").
func ParseList(s string) ([]Property, error) {
	var out []Property
	seen := make(map[Property]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		var p Property
		switch part {
		case "safety":
			p = Safety
		case "panics":
			p = Panics
		default:
			return nil, fmt.Errorf("unknown property %q", part)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no properties selected from %q", s)
	}

	return out, nil
}

func (p Property) Name() string {
	switch p {
	case Safety:
		return "safety"
	case Panics:
		return "panics"
	default:
		return fmt.Sprintf("unknown-property(%d)", int(p))
	}
}

// Requirement sections are introduced by a header line alone on its line,
// at any nesting depth; justification sections by a bare "Keyword:" line.
var (
	safetyReqMarker  = regexp.MustCompile(`(?mi)^[ \t]*#+ safety[ \t]*$`)
	safetyJustMarker = regexp.MustCompile(`(?mi)^[ \t]*safety:`)
	panicsReqMarker  = regexp.MustCompile(`(?mi)^[ \t]*#+ panics[ \t]*$`)
	panicsJustMarker = regexp.MustCompile(`(?mi)^[ \t]*panics:`)
)

// RequirementMarker returns the pattern introducing a requirement section on
// a function definition.
func (p Property) RequirementMarker() *regexp.Regexp {
	if p == Panics {
		return panicsReqMarker
	}

	return safetyReqMarker
}

// JustificationMarker returns the pattern introducing a justification
// section at a call site or enclosing block.
func (p Property) JustificationMarker() *regexp.Regexp {
	if p == Panics {
		return panicsJustMarker
	}

	return safetyJustMarker
}

// FindAxioms inspects a function body for the property's inherently risky
// operations.
func (p Property) FindAxioms(info *types.Info, body *ast.BlockStmt) []Axiom {
	if body == nil {
		return nil
	}

	switch p {
	case Safety:
		return findSafetyAxioms(info, body)
	case Panics:
		return findPanicAxioms(info, body)
	default:
		return nil
	}
}

// NeedsStructuralCheck reports whether a trusted function's shape should be
// validated against its annotation.
func (p Property) NeedsStructuralCheck() bool {
	return p == Safety
}

// BodyExhibits reports whether the body performs any operation of this
// property's kind at all. Used to flag misleading annotations: declaring
// safety requirements on a function that never touches unsafe.
func (p Property) BodyExhibits(info *types.Info, body *ast.BlockStmt) bool {
	if body == nil {
		return false
	}

	switch p {
	case Safety:
		return usesUnsafe(info, body)
	default:
		return true
	}
}

// AxiomKind names one risky-operation pattern.
type AxiomKind int

const (
	// UnsafeConversion is a conversion to unsafe.Pointer.
	UnsafeConversion AxiomKind = iota
	// UnsafeDeref is a dereference of a pointer obtained from unsafe.Pointer.
	UnsafeDeref
	// UnsafeArith is pointer arithmetic: unsafe.Add, unsafe.Slice and friends.
	UnsafeArith
	// ExplicitPanic is a call to the panic builtin.
	ExplicitPanic
	// LogPanic is a call to log.Panic, log.Panicf or log.Panicln.
	LogPanic
)

func (k AxiomKind) String() string {
	switch k {
	case UnsafeConversion:
		return "unsafe.Pointer conversion"
	case UnsafeDeref:
		return "raw pointer dereference"
	case UnsafeArith:
		return "unsafe pointer arithmetic"
	case ExplicitPanic:
		return "explicit panic"
	case LogPanic:
		return "panicking log call"
	default:
		return fmt.Sprintf("unknown-axiom(%d)", int(k))
	}
}

// Axiom is a located occurrence of a risky operation inside a function body.
type Axiom struct {
	Kind AxiomKind
	Pos  token.Pos
	End  token.Pos
}

// Known describes an axiom's requirements when the table knows them:
// either it always violates the property, or it violates unless the named
// conditions are satisfied by the caller.
type Known struct {
	Unconditional bool
	Conditions    []condition.Requirement
}

// Known returns the canned requirements for well-known axioms, or nil when
// the requirements are undetermined.
func (a Axiom) Known() *Known {
	switch a.Kind {
	case UnsafeDeref:
		return &Known{Conditions: []condition.Requirement{
			{Name: condition.MustName("ptr-valid"), Description: "the pointer must point to a valid, live allocation"},
			{Name: condition.MustName("ptr-aligned"), Description: "the pointer must be properly aligned for the target type"},
		}}
	case UnsafeArith:
		return &Known{Conditions: []condition.Requirement{
			{Name: condition.MustName("in-bounds"), Description: "the result must stay within the original allocation"},
		}}
	case ExplicitPanic, LogPanic:
		return &Known{Unconditional: true}
	default:
		return nil
	}
}
