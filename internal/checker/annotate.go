package checker

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"

	"github.com/oblicheck/oblicheck/internal/annotation"
	"github.com/oblicheck/oblicheck/internal/condition"
	"github.com/oblicheck/oblicheck/internal/funcname"
)

// funcRequirements is the resolved requirement annotation of one function for
// one property.
type funcRequirements struct {
	// annotated marks the function as trusted: it carries a requirement
	// section (possibly malformed) and its body is not inspected.
	annotated bool
	// none is set when the section body is the literal "none": well-formed,
	// creates no obligation.
	none bool
	// parseFailed marks a malformed local section; the error has already
	// been reported, the function creates no obligation.
	parseFailed  bool
	fromOverride bool
	conds        []condition.Requirement
}

// obligates reports whether calls into this function require a justification.
func (r *funcRequirements) obligates() bool {
	return r.annotated && !r.none && !r.parseFailed && len(r.conds) > 0
}

// requirementsOf resolves and memoizes the requirement annotation of fn:
// the doc comment of its local declaration or interface method first, the
// override file second.
func (pr *propertyRun) requirementsOf(fn *types.Func) *funcRequirements {
	if r, ok := pr.reqs[fn]; ok {
		return r
	}

	var cg *ast.CommentGroup
	errPos := fn.Pos()
	if decl := pr.w.DeclOf(fn); decl != nil {
		cg = decl.Doc
		errPos = decl.Name.Pos()
	} else if doc, ok := pr.c.ifaceDocs[fn]; ok {
		cg = doc
	}

	r := pr.parseRequirements(fn, cg, errPos)
	pr.reqs[fn] = r

	return r
}

func (pr *propertyRun) parseRequirements(fn *types.Func, cg *ast.CommentGroup, errPos token.Pos) *funcRequirements {
	if doc := annotation.FromComments(cg); doc != nil {
		sec, perr := annotation.ParseSection(doc.Text, pr.prop.RequirementMarker())
		switch {
		case perr == nil:
			return sectionRequirements(sec, false)
		case !perr.Recoverable():
			pr.reportParseError(doc, perr, errPos,
				fmt.Sprintf("malformed %s requirement section on %s", pr.prop.Name(), funcname.Display(fn)))

			return &funcRequirements{annotated: true, parseFailed: true}
		}
	}

	text, ok := pr.c.overrides.Lookup(fn)
	if !ok {
		return &funcRequirements{}
	}

	sec, perr := annotation.ParseSection(text, pr.prop.RequirementMarker())
	switch {
	case perr == nil:
		return sectionRequirements(sec, true)
	case perr.Recoverable():
		// The override entry has no section for this property.
		return &funcRequirements{}
	default:
		pos := pr.c.packagePos()
		pr.c.report(Record{
			Pos: pos, End: pos, Severity: SeverityWarning,
			Message: fmt.Sprintf(
				"override entry for %s: malformed %s requirement section: %v; treating the function as unannotated",
				fn.FullName(), pr.prop.Name(), perr),
		})

		return &funcRequirements{}
	}
}

func sectionRequirements(sec *annotation.Section, fromOverride bool) *funcRequirements {
	r := &funcRequirements{
		annotated:    true,
		none:         sec.None,
		fromOverride: fromOverride,
	}
	for _, e := range sec.Entries {
		r.conds = append(r.conds, condition.Requirement{Name: e.Name, Description: e.Text})
	}

	return r
}

// reportParseError turns a hard parse error into a record, mapping the
// error's character ranges back to source spans.
func (pr *propertyRun) reportParseError(doc *annotation.Doc, perr *annotation.ParseError, fallback token.Pos, subject string) {
	rec := Record{
		Severity: SeverityError,
		Message:  fmt.Sprintf("%s: %v", subject, perr),
	}

	var spans []annotation.Span
	for _, r := range perr.Ranges {
		s, err := doc.MapRange(r.Lo, r.Hi)
		if err != nil {
			continue
		}
		spans = append(spans, s...)
	}

	if len(spans) == 0 {
		rec.Pos, rec.End = fallback, fallback
	} else {
		rec.Pos, rec.End = spans[0].Pos, spans[0].End
		for _, s := range spans[1:] {
			rec.Notes = append(rec.Notes, Note{Pos: s.Pos, End: s.End, Message: secondaryNote(perr.Kind)})
		}
	}

	if perr.Kind == annotation.NoColon {
		if s, err := doc.MapRange(perr.InsertColonAt, perr.InsertColonAt+1); err == nil && len(s) > 0 {
			rec.Notes = append(rec.Notes, Note{
				Pos: s[0].Pos, End: s[0].Pos,
				Message: "insert ':' after the condition name here",
			})
		}
	}

	pr.c.report(rec)
}

func secondaryNote(k annotation.ErrorKind) string {
	switch k {
	case annotation.MultipleMarkerPatterns:
		return "the marker occurs again here"
	case annotation.NonMatchingBullets:
		return "the other bullet style is used here"
	default:
		return "also part of this section"
	}
}
