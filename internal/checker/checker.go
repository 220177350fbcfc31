// Package checker ties the annotation parser, the span mapper and the
// reachability walker together into the per-function consistency check.
package checker

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/oblicheck/oblicheck/internal/condition"
	"github.com/oblicheck/oblicheck/internal/funcname"
	"github.com/oblicheck/oblicheck/internal/override"
	"github.com/oblicheck/oblicheck/internal/property"
	"github.com/oblicheck/oblicheck/internal/reach"
)

// Config is the immutable run configuration. The driver builds it once from
// flags; nothing in the core mutates it or reads configuration from anywhere
// else.
type Config struct {
	Properties    []property.Property
	FineGrained   bool
	Buzzwords     bool
	OverridesPath string
	Logger        *zap.Logger
}

// Severity distinguishes hard failures from advisory findings.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}

	return "error"
}

// Note is a secondary message with its own span.
type Note struct {
	Pos, End token.Pos
	Message  string
}

// Record is one structured diagnostic. The core never renders text; the
// driver adapts records to the analysis reporter.
type Record struct {
	Pos, End token.Pos
	Severity Severity
	Message  string
	Notes    []Note
}

// Checker runs the consistency check over one package.
type Checker struct {
	pass   *analysis.Pass
	cfg    Config
	logger *zap.Logger

	overrides   *override.File
	commentMaps map[*ast.File]ast.CommentMap

	// Locally declared interface methods: their doc comments carry the
	// contract that implementations are checked against.
	ifaces    []ifaceMethod
	ifaceDocs map[*types.Func]*ast.CommentGroup

	records []Record
}

type ifaceMethod struct {
	fn    *types.Func
	owner *types.TypeName
	iface *types.Interface
	pos   token.Pos
}

// Run executes the check for every configured property and returns the
// diagnostics in emission order. The result is pass/fail per package: any
// error-severity record fails the package, but checking always continues so
// independent issues surface in one run.
func Run(pass *analysis.Pass, cfg Config) []Record {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Checker{
		pass:        pass,
		cfg:         cfg,
		logger:      logger,
		commentMaps: make(map[*ast.File]ast.CommentMap),
		ifaceDocs:   make(map[*types.Func]*ast.CommentGroup),
	}

	c.loadOverrides()
	c.indexInterfaces()

	for _, prop := range cfg.Properties {
		c.runProperty(prop)
	}

	return c.records
}

func (c *Checker) report(rec Record) {
	c.records = append(c.records, rec)
}

// packagePos anchors file-level diagnostics that have no natural span.
func (c *Checker) packagePos() token.Pos {
	if len(c.pass.Files) > 0 {
		return c.pass.Files[0].Name.Pos()
	}

	return token.NoPos
}

func (c *Checker) loadOverrides() {
	path := c.cfg.OverridesPath
	if path == "" {
		c.overrides = &override.File{}

		return
	}

	f, problems, err := override.Load(path)
	if err != nil {
		pos := c.packagePos()
		c.report(Record{
			Pos: pos, End: pos, Severity: SeverityWarning,
			Message: fmt.Sprintf("cannot read override file %s: %v", path, err),
		})
		c.overrides = &override.File{}

		return
	}

	for _, p := range problems {
		pos := c.packagePos()
		c.report(Record{
			Pos: pos, End: pos, Severity: SeverityWarning,
			Message: fmt.Sprintf("override file %s: %s; treating the entry as unannotated", path, p),
		})
	}

	c.overrides = f
	c.logger.Debug("loaded overrides", zap.String("path", path), zap.Int("entries", f.Len()))
}

// indexInterfaces records every locally declared interface method together
// with its doc comment.
func (c *Checker) indexInterfaces() {
	for _, file := range c.pass.Files {
		for _, decl := range file.Decls {
			gd, ok := decl.(*ast.GenDecl)
			if !ok || gd.Tok != token.TYPE {
				continue
			}
			for _, spec := range gd.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				it, ok := ts.Type.(*ast.InterfaceType)
				if !ok {
					continue
				}
				owner, ok := c.pass.TypesInfo.Defs[ts.Name].(*types.TypeName)
				if !ok {
					continue
				}
				iface, ok := owner.Type().Underlying().(*types.Interface)
				if !ok {
					continue
				}

				for _, m := range it.Methods.List {
					if len(m.Names) == 0 {
						continue // embedded interface
					}
					fn, ok := c.pass.TypesInfo.Defs[m.Names[0]].(*types.Func)
					if !ok {
						continue
					}
					c.ifaces = append(c.ifaces, ifaceMethod{
						fn:    fn,
						owner: owner,
						iface: iface,
						pos:   m.Names[0].Pos(),
					})
					if m.Doc != nil {
						c.ifaceDocs[fn] = m.Doc
					}
				}
			}
		}
	}
}

func (c *Checker) fileOf(pos token.Pos) *ast.File {
	for _, f := range c.pass.Files {
		if f.FileStart <= pos && pos < f.FileEnd {
			return f
		}
	}

	return nil
}

func (c *Checker) commentMap(file *ast.File) ast.CommentMap {
	if cm, ok := c.commentMaps[file]; ok {
		return cm
	}
	cm := ast.NewCommentMap(c.pass.Fset, file, file.Comments)
	c.commentMaps[file] = cm

	return cm
}

// propertyRun is the per-property state: requirement parses are memoized per
// function, justification parse errors are reported once per comment group.
// Properties share nothing else within a run.
type propertyRun struct {
	c       *Checker
	prop    property.Property
	w       *reach.Walker
	reqs    map[*types.Func]*funcRequirements
	badJust map[*ast.CommentGroup]bool
}

func (c *Checker) runProperty(prop property.Property) {
	pr := &propertyRun{
		c:       c,
		prop:    prop,
		w:       reach.NewWalker(c.pass, c.logger),
		reqs:    make(map[*types.Func]*funcRequirements),
		badJust: make(map[*ast.CommentGroup]bool),
	}

	entries := pr.w.EntryPoints(prop.Name())
	nodes := pr.w.Reachable(entries)
	c.logger.Debug("checking property",
		zap.String("property", prop.Name()),
		zap.Int("entry_points", len(entries)),
		zap.Int("reachable", len(nodes)))

	for _, n := range nodes {
		pr.checkFunction(n)
	}
}

// checkFunction applies the per-function state machine: a function with its
// own well-formed requirement section is trusted (body not inspected, callees
// still reachable through the walker); everything else gets the axiom scan
// and obligated-call classification.
func (pr *propertyRun) checkFunction(n *reach.Node) {
	if n.Decl == nil {
		return
	}

	req := pr.requirementsOf(n.Fn)
	if req.annotated {
		pr.checkInterfaceContract(n, req)
		pr.checkStructure(n, req)

		return
	}

	pr.checkUntrusted(n)
}

// checkInterfaceContract verifies that a method does not declare obligations
// its interface method leaves undeclared: the interface signature is the
// contract, a stricter implementation is disallowed.
func (pr *propertyRun) checkInterfaceContract(n *reach.Node, req *funcRequirements) {
	if !req.obligates() {
		return
	}
	recv := n.Fn.Type().(*types.Signature).Recv()
	if recv == nil {
		return
	}

	for _, im := range pr.c.ifaces {
		if im.fn == n.Fn || im.fn.Name() != n.Fn.Name() {
			continue
		}
		if !implementsInterface(recv.Type(), im.iface) {
			continue
		}

		if pr.impliedBy(req, pr.requirementsOf(im.fn)) {
			continue
		}

		pr.c.report(Record{
			Pos: n.Decl.Name.Pos(), End: n.Decl.Name.End(),
			Severity: SeverityError,
			Message: fmt.Sprintf(
				"%s declares %s requirements that interface method (%s).%s does not declare",
				funcname.Display(n.Fn), pr.prop.Name(), im.owner.Name(), im.fn.Name()),
			Notes: []Note{{Pos: im.pos, End: im.pos, Message: "interface method declared here"}},
		})
	}
}

// impliedBy reports whether every obligation of impl is already implied by
// the interface method's declaration. In coarse mode any obligation on the
// interface side suffices; fine-grained mode compares condition names.
func (pr *propertyRun) impliedBy(impl, iface *funcRequirements) bool {
	if iface.parseFailed {
		// Already reported; do not cascade into a mismatch.
		return true
	}
	if !iface.obligates() {
		return false
	}
	if !pr.c.cfg.FineGrained {
		return true
	}

	declared := make(map[condition.Name]bool, len(iface.conds))
	for _, cond := range iface.conds {
		declared[cond.Name] = true
	}
	for _, cond := range impl.conds {
		if !declared[cond.Name] {
			return false
		}
	}

	return true
}

func implementsInterface(t types.Type, iface *types.Interface) bool {
	if types.Implements(t, iface) {
		return true
	}
	if _, isPtr := t.Underlying().(*types.Pointer); !isPtr {
		return types.Implements(types.NewPointer(t), iface)
	}

	return false
}

// checkStructure flags misleading annotations: a function declaring safety
// requirements whose body neither performs an unsafe operation nor forwards
// to an obligated callee.
func (pr *propertyRun) checkStructure(n *reach.Node, req *funcRequirements) {
	if !pr.prop.NeedsStructuralCheck() || !req.obligates() || req.fromOverride {
		return
	}
	if pr.prop.BodyExhibits(pr.c.pass.TypesInfo, n.Decl.Body) {
		return
	}
	for _, call := range n.Calls {
		if pr.requirementsOf(call.Callee).obligates() {
			return
		}
	}

	pr.c.report(Record{
		Pos: n.Decl.Name.Pos(), End: n.Decl.Name.End(),
		Severity: SeverityWarning,
		Message: fmt.Sprintf(
			"%s declares %s requirements, but its body performs no unsafe operation and makes no obligated call",
			funcname.Display(n.Fn), pr.prop.Name()),
	})
}

// checkUntrusted scans the body for axioms, classifies outgoing calls, and
// emits one aggregated diagnostic when anything is left unjustified.
func (pr *propertyRun) checkUntrusted(n *reach.Node) {
	var unresolvedAxioms []property.Axiom
	for _, ax := range pr.prop.FindAxioms(pr.c.pass.TypesInfo, n.Decl.Body) {
		if !pr.justified(n.Decl, ax.Pos, pr.axiomConditions(ax)) {
			unresolvedAxioms = append(unresolvedAxioms, ax)
		}
	}

	type unresolvedCall struct {
		callee *types.Func
		conds  []condition.Requirement
		sites  []token.Pos
	}
	var unresolvedCalls []unresolvedCall
	for _, call := range n.Calls {
		creq := pr.requirementsOf(call.Callee)
		if !creq.obligates() {
			continue
		}
		var sites []token.Pos
		for _, site := range call.Sites {
			if !pr.justified(n.Decl, site, pr.callConditions(creq)) {
				sites = append(sites, site)
			}
		}
		if len(sites) > 0 {
			unresolvedCalls = append(unresolvedCalls, unresolvedCall{
				callee: call.Callee,
				conds:  creq.conds,
				sites:  sites,
			})
		}
	}

	if len(unresolvedAxioms) == 0 && len(unresolvedCalls) == 0 {
		return
	}

	var parts []string
	if len(unresolvedAxioms) > 0 {
		parts = append(parts, fmt.Sprintf("%d unjustified %s-relevant operation(s)",
			len(unresolvedAxioms), pr.prop.Name()))
	}
	if len(unresolvedCalls) > 0 {
		total := 0
		for _, uc := range unresolvedCalls {
			total += len(uc.sites)
		}
		parts = append(parts, fmt.Sprintf("%d unjustified obligated call(s)", total))
	}

	rec := Record{
		Pos: n.Decl.Name.Pos(), End: n.Decl.Name.End(),
		Severity: SeverityError,
		Message: fmt.Sprintf("%s directly contains %s, but is not annotated for %s",
			funcname.Display(n.Fn), strings.Join(parts, " and "), pr.prop.Name()),
	}

	for _, hop := range n.Path {
		rec.Notes = append(rec.Notes, Note{
			Pos: hop.Pos, End: hop.Pos,
			Message: fmt.Sprintf("reached through this call in %s", funcname.Display(hop.Caller)),
		})
	}
	for _, ax := range unresolvedAxioms {
		rec.Notes = append(rec.Notes, Note{Pos: ax.Pos, End: ax.End, Message: axiomNote(ax)})
	}
	for _, uc := range unresolvedCalls {
		label := funcname.Display(uc.callee) + " is called here"
		if pr.c.cfg.FineGrained && len(uc.conds) > 0 {
			label += "; requires: " + condNames(uc.conds)
		}
		for _, site := range uc.sites {
			rec.Notes = append(rec.Notes, Note{Pos: site, End: site, Message: label})
		}
	}

	pr.c.report(rec)
}

// axiomConditions returns the conditions a justification must name to
// discharge the axiom. Coarse mode and axioms with undetermined or
// unconditional requirements only need an acknowledgment.
func (pr *propertyRun) axiomConditions(ax property.Axiom) []condition.Requirement {
	if !pr.c.cfg.FineGrained {
		return nil
	}
	if k := ax.Known(); k != nil && !k.Unconditional {
		return k.Conditions
	}

	return nil
}

func (pr *propertyRun) callConditions(creq *funcRequirements) []condition.Requirement {
	if !pr.c.cfg.FineGrained {
		return nil
	}

	return creq.conds
}

func axiomNote(ax property.Axiom) string {
	msg := "unjustified " + ax.Kind.String()
	k := ax.Known()
	switch {
	case k == nil:
	case k.Unconditional:
		msg += "; always requires acknowledgment"
	default:
		msg += "; requires: " + condNames(k.Conditions)
	}

	return msg
}

func condNames(conds []condition.Requirement) string {
	names := make([]string, len(conds))
	for i, cond := range conds {
		names[i] = cond.Name.String()
	}

	return strings.Join(names, ", ")
}
