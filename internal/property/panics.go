package property

import (
	"go/ast"
	"go/types"
)

var logPanicFuncs = map[string]bool{
	"Panic":   true,
	"Panicf":  true,
	"Panicln": true,
}

func findPanicAxioms(info *types.Info, body *ast.BlockStmt) []Axiom {
	var axioms []Axiom

	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}

		switch fun := unparen(call.Fun).(type) {
		case *ast.Ident:
			if builtin, ok := info.Uses[fun].(*types.Builtin); ok && builtin.Name() == "panic" {
				axioms = append(axioms, Axiom{Kind: ExplicitPanic, Pos: call.Pos(), End: call.End()})
			}

		case *ast.SelectorExpr:
			fn, ok := info.Uses[fun.Sel].(*types.Func)
			if !ok || fn.Pkg() == nil {
				return true
			}
			if fn.Pkg().Path() == "log" && logPanicFuncs[fn.Name()] {
				axioms = append(axioms, Axiom{Kind: LogPanic, Pos: call.Pos(), End: call.End()})
			}
		}

		return true
	})

	return axioms
}
