package checker

import (
	"fmt"
	"go/ast"
	"go/token"
	"strings"

	"golang.org/x/tools/go/ast/astutil"

	"github.com/oblicheck/oblicheck/internal/annotation"
	"github.com/oblicheck/oblicheck/internal/condition"
)

// justification is one parsed justification section found in scope.
type justification struct {
	entries []condition.Justification
	// prose is the free-form section body when it has no bullet structure.
	prose string
	// malformed marks a section whose parse error was already reported; it
	// discharges anything so the same site is not flagged twice.
	malformed bool
}

// justified reports whether pos carries an in-scope justification discharging
// every required condition. With no required conditions the presence of any
// justification suffices.
func (pr *propertyRun) justified(decl *ast.FuncDecl, pos token.Pos, conds []condition.Requirement) bool {
	justs := pr.justificationsAt(decl, pos)
	if len(justs) == 0 {
		return false
	}

	for _, cond := range conds {
		if !pr.covered(justs, cond.Name) {
			return false
		}
	}

	return true
}

// justificationsAt collects every justification attached to pos or one of its
// ancestor nodes, stopping at the enclosing function declaration. The
// function's own doc comment participates through the comment map like any
// other attachment point.
func (pr *propertyRun) justificationsAt(decl *ast.FuncDecl, pos token.Pos) []justification {
	file := pr.c.fileOf(decl.Pos())
	if file == nil {
		return nil
	}
	cm := pr.c.commentMap(file)

	path, _ := astutil.PathEnclosingInterval(file, pos, pos)

	var out []justification
	for _, node := range path {
		for _, cg := range cm[node] {
			if j := pr.parseJustification(cg); j != nil {
				out = append(out, *j)
			}
		}
		if node == ast.Node(decl) {
			break
		}
	}

	return out
}

// parseJustification parses one comment group as a justification section.
// Returns nil when the group carries no section for this property. A section
// without bullet structure is legal: its body is kept as free-form prose for
// the coverage fallback.
func (pr *propertyRun) parseJustification(cg *ast.CommentGroup) *justification {
	doc := annotation.FromComments(cg)
	if doc == nil {
		return nil
	}

	sec, perr := annotation.ParseSection(doc.Text, pr.prop.JustificationMarker())
	if perr != nil {
		switch {
		case perr.Recoverable():
			return nil
		case perr.Kind == annotation.EmptyMarker:
			body, _, _ := annotation.FindSection(doc.Text, pr.prop.JustificationMarker())

			return &justification{prose: strings.TrimSpace(body)}
		default:
			if !pr.badJust[cg] {
				pr.badJust[cg] = true
				pr.reportParseError(doc, perr, cg.Pos(),
					fmt.Sprintf("malformed %s justification", pr.prop.Name()))
			}

			return &justification{malformed: true}
		}
	}

	j := &justification{}
	for _, e := range sec.Entries {
		j.entries = append(j.entries, condition.Justification{Name: e.Name, Explanation: e.Text})
	}
	if sec.None {
		j.prose = "none"
	}

	return j
}

// covered reports whether any in-scope justification discharges name: an
// explicit bullet with the exact name always does; free-form prose counts
// only through the buzzword fallback.
func (pr *propertyRun) covered(justs []justification, name condition.Name) bool {
	for _, j := range justs {
		if j.malformed {
			return true
		}
		for _, e := range j.entries {
			if e.Name == name {
				return true
			}
		}
		if pr.c.cfg.Buzzwords && len(j.entries) == 0 && j.prose != "" && proseMentions(j.prose, name.String()) {
			return true
		}
	}

	return false
}

// buzzwordSynonyms widens the prose fallback for well-known condition names.
// Deliberately soft: an explicit bullet is always preferred, and the whole
// fallback can be switched off.
var buzzwordSynonyms = map[string][]string{
	"ptr-valid":   {"valid", "live"},
	"ptr-aligned": {"aligned", "alignment"},
	"in-bounds":   {"bounds", "in range"},
	"nn":          {"non-null", "non-nil", "not nil"},
}

func proseMentions(prose, name string) bool {
	prose = strings.ToLower(prose)
	if strings.Contains(prose, strings.ToLower(name)) {
		return true
	}
	for _, syn := range buzzwordSynonyms[name] {
		if strings.Contains(prose, syn) {
			return true
		}
	}

	return false
}
