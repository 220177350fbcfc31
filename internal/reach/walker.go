// Package reach builds the reachable call graph outward from the entry-point
// set, recording one shortest witness path per function.
package reach

import (
	"go/ast"
	"go/token"
	"go/types"
	"slices"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/oblicheck/oblicheck/internal/directive"
)

// Hop is one edge of a witness path: the caller and the call position.
type Hop struct {
	Caller *types.Func
	Pos    token.Pos
}

// Call groups every call site from one function to a single callee,
// in discovery order.
type Call struct {
	Callee *types.Func
	Sites  []token.Pos
}

// Node is a reachable function: the function itself, the BFS-shortest path
// of calls back to an entry point, and its outgoing calls grouped by callee.
type Node struct {
	Fn    *types.Func
	Decl  *ast.FuncDecl
	Path  []Hop
	Calls []Call
}

// Walker explores the static call graph of one package.
type Walker struct {
	pass   *analysis.Pass
	logger *zap.Logger
	decls  map[*types.Func]*ast.FuncDecl
}

// NewWalker indexes the function declarations of the pass.
func NewWalker(pass *analysis.Pass, logger *zap.Logger) *Walker {
	w := &Walker{
		pass:   pass,
		logger: logger,
		decls:  make(map[*types.Func]*ast.FuncDecl),
	}

	for _, file := range pass.Files {
		for _, decl := range file.Decls {
			fd, ok := decl.(*ast.FuncDecl)
			if !ok || fd.Body == nil {
				continue
			}
			if fn, ok := pass.TypesInfo.Defs[fd.Name].(*types.Func); ok {
				w.decls[fn] = fd
			}
		}
	}

	return w
}

// DeclOf returns the declaration of a function defined in the analyzed
// package, or nil.
func (w *Walker) DeclOf(fn *types.Func) *ast.FuncDecl {
	return w.decls[fn]
}

// EntryPoints collects the traversal roots for one property: functions
// carrying an entrypoint directive, widened by the package-wide opt-in mode.
// The result is sorted by fully-qualified name so traversal and diagnostics
// are reproducible across runs.
func (w *Walker) EntryPoints(property string) []*types.Func {
	mode := directive.PackageMode(w.pass.Files)

	var entries []*types.Func
	for fn, decl := range w.decls {
		switch {
		case directive.IsEntryPoint(decl, property):
		case mode == directive.ModeAll:
		case mode == directive.ModePublic && ast.IsExported(fn.Name()):
		default:
			continue
		}
		entries = append(entries, fn)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].FullName() < entries[j].FullName()
	})

	w.logger.Debug("collected entry points",
		zap.String("property", property),
		zap.Int("count", len(entries)))

	return entries
}

// Reachable walks the call graph breadth-first from the entry points.
// The first visit of a function wins, which makes the recorded path shortest
// in edge count and guarantees termination on cyclic call graphs. The result
// is sorted by fully-qualified name.
func (w *Walker) Reachable(entries []*types.Func) []*Node {
	visited := make(map[*types.Func]*Node)

	queue := make([]*Node, 0, len(entries))
	for _, fn := range entries {
		queue = append(queue, &Node{Fn: fn})
	}

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]

		if _, ok := visited[n.Fn]; ok {
			continue
		}

		n.Decl = w.decls[n.Fn]
		if n.Decl == nil {
			// Interface methods and the like: reachable, but there is no
			// body to expand. Not descended into implementations.
			visited[n.Fn] = n

			continue
		}

		w.logger.Debug("visiting function",
			zap.String("func", n.Fn.FullName()),
			zap.Int("path_len", len(n.Path)))

		queue = append(queue, w.visitBody(n)...)
		visited[n.Fn] = n
	}

	out := make([]*Node, 0, len(visited))
	for _, n := range visited {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Fn.FullName() < out[j].Fn.FullName()
	})

	return out
}

// visitBody records every outgoing call of n and returns the worklist items
// for callees defined in the analyzed package.
func (w *Walker) visitBody(n *Node) []*Node {
	var next []*Node
	callIdx := make(map[*types.Func]int)

	ast.Inspect(n.Decl.Body, func(node ast.Node) bool {
		call, ok := node.(*ast.CallExpr)
		if !ok {
			return true
		}

		callee := Callee(w.pass.TypesInfo, call)
		if callee == nil {
			return true
		}

		idx, seen := callIdx[callee]
		if !seen {
			idx = len(n.Calls)
			callIdx[callee] = idx
			n.Calls = append(n.Calls, Call{Callee: callee})
		}
		n.Calls[idx].Sites = append(n.Calls[idx].Sites, call.Pos())

		if _, local := w.decls[callee]; local {
			next = append(next, &Node{
				Fn:   callee,
				Path: append(slices.Clone(n.Path), Hop{Caller: n.Fn, Pos: call.Pos()}),
			})
		}

		return true
	})

	return next
}

// Callee resolves the static target of a call expression, or nil when the
// target cannot be determined (indirect calls, builtins, conversions).
func Callee(info *types.Info, call *ast.CallExpr) *types.Func {
	switch fun := unparen(call.Fun).(type) {
	case *ast.Ident:
		if f, ok := info.Uses[fun].(*types.Func); ok {
			return f
		}

	case *ast.SelectorExpr:
		if sel := info.Selections[fun]; sel != nil {
			if f, ok := sel.Obj().(*types.Func); ok {
				return f
			}
		} else if f, ok := info.Uses[fun.Sel].(*types.Func); ok {
			return f
		}
	}

	return nil
}

func unparen(e ast.Expr) ast.Expr {
	for {
		p, ok := e.(*ast.ParenExpr)
		if !ok {
			return e
		}
		e = p.X
	}
}
