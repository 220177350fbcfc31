package property

import (
	"go/ast"
	"go/types"
)

// arithFuncs are the unsafe package functions that manufacture or move raw
// pointers. Sizeof/Alignof/Offsetof are excluded: they never touch memory.
var arithFuncs = map[string]bool{
	"Add":        true,
	"Slice":      true,
	"SliceData":  true,
	"String":     true,
	"StringData": true,
}

func findSafetyAxioms(info *types.Info, body *ast.BlockStmt) []Axiom {
	var axioms []Axiom

	// Conversions already reported as part of an enclosing dereference.
	consumed := make(map[ast.Node]bool)

	ast.Inspect(body, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.StarExpr:
			inner, ok := derefOfRawPointer(info, node)
			if !ok {
				return true
			}
			axioms = append(axioms, Axiom{Kind: UnsafeDeref, Pos: node.Pos(), End: node.End()})
			if inner != nil {
				consumed[inner] = true
			}

		case *ast.CallExpr:
			if consumed[node] {
				return true
			}
			name, ok := unsafeSelector(info, node.Fun)
			if !ok {
				return true
			}
			switch {
			case name == "Pointer":
				axioms = append(axioms, Axiom{Kind: UnsafeConversion, Pos: node.Pos(), End: node.End()})
			case arithFuncs[name]:
				axioms = append(axioms, Axiom{Kind: UnsafeArith, Pos: node.Pos(), End: node.End()})
			}
		}

		return true
	})

	return axioms
}

// derefOfRawPointer matches `*(*T)(p)` where p has type unsafe.Pointer.
// It returns the inner unsafe.Pointer conversion call, if the argument is
// one, so the caller can avoid double-reporting it.
func derefOfRawPointer(info *types.Info, star *ast.StarExpr) (ast.Node, bool) {
	x := unparen(star.X)

	call, ok := x.(*ast.CallExpr)
	if !ok || len(call.Args) != 1 {
		return nil, false
	}

	// The outer expression must be a conversion to a pointer type, not a
	// function call.
	tv, ok := info.Types[call.Fun]
	if !ok || !tv.IsType() {
		return nil, false
	}
	if _, ok := tv.Type.Underlying().(*types.Pointer); !ok {
		return nil, false
	}

	arg := unparen(call.Args[0])
	if !isUnsafePointer(info, arg) {
		return nil, false
	}

	if inner, ok := arg.(*ast.CallExpr); ok {
		if name, isUnsafe := unsafeSelector(info, inner.Fun); isUnsafe && name == "Pointer" {
			return inner, true
		}
	}

	return nil, true
}

// unsafeSelector reports whether fun is a selector into package unsafe,
// returning the selected name.
func unsafeSelector(info *types.Info, fun ast.Expr) (string, bool) {
	sel, ok := unparen(fun).(*ast.SelectorExpr)
	if !ok {
		return "", false
	}

	ident, ok := sel.X.(*ast.Ident)
	if !ok {
		return "", false
	}

	pkgName, ok := info.Uses[ident].(*types.PkgName)
	if !ok || pkgName.Imported().Path() != "unsafe" {
		return "", false
	}

	return sel.Sel.Name, true
}

func isUnsafePointer(info *types.Info, expr ast.Expr) bool {
	tv, ok := info.Types[expr]
	if !ok || tv.Type == nil {
		return false
	}

	basic, ok := tv.Type.Underlying().(*types.Basic)

	return ok && basic.Kind() == types.UnsafePointer
}

// usesUnsafe reports whether the body references package unsafe anywhere.
func usesUnsafe(info *types.Info, body *ast.BlockStmt) bool {
	found := false
	ast.Inspect(body, func(n ast.Node) bool {
		if found {
			return false
		}
		if _, ok := unsafeSelector(info, asExpr(n)); ok {
			found = true

			return false
		}

		return true
	})

	return found
}

func asExpr(n ast.Node) ast.Expr {
	if e, ok := n.(ast.Expr); ok {
		return e
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
