// Package directive handles //oblicheck: opt-in markers. Entry-point
// selection is the only concern here; the annotation micro-language lives in
// the annotation package.
package directive

import (
	"go/ast"
	"strings"
)

const (
	entrypointToken = "oblicheck:entrypoint"
	checkToken      = "oblicheck:check"
)

// Mode is the file/package-wide opt-in mode.
type Mode int

const (
	// ModeNone: only explicitly marked functions are entry points.
	ModeNone Mode = iota
	// ModePublic: every exported local function is an entry point.
	ModePublic
	// ModeAll: every local function is an entry point.
	ModeAll
)

// FileMode scans a file's comments for an //oblicheck:check directive.
//
// Supported formats:
//   - //oblicheck:check all
//   - //oblicheck:check public
//   - //oblicheck:check all - reason
func FileMode(file *ast.File) Mode {
	mode := ModeNone
	for _, cg := range file.Comments {
		for _, c := range cg.List {
			rest, ok := directiveRest(c.Text, checkToken)
			if !ok {
				continue
			}
			switch firstWord(rest) {
			case "all":
				mode = ModeAll
			case "public":
				if mode == ModeNone {
					mode = ModePublic
				}
			}
		}
	}

	return mode
}

// PackageMode combines the modes of all files; the widest opt-in wins.
func PackageMode(files []*ast.File) Mode {
	mode := ModeNone
	for _, f := range files {
		if m := FileMode(f); m > mode {
			mode = m
		}
	}

	return mode
}

// IsEntryPoint reports whether decl carries an //oblicheck:entrypoint
// directive in its doc comment for the given property.
//
// Supported formats:
//   - //oblicheck:entrypoint                 -> entry point for every property
//   - //oblicheck:entrypoint safety          -> entry point for one property
//   - //oblicheck:entrypoint safety,panics   -> several properties
//   - //oblicheck:entrypoint - reason        -> every property, with comment
func IsEntryPoint(decl *ast.FuncDecl, property string) bool {
	if decl.Doc == nil {
		return false
	}

	for _, c := range decl.Doc.List {
		rest, ok := directiveRest(c.Text, entrypointToken)
		if !ok {
			continue
		}
		if rest == "" {
			return true
		}
		for _, part := range strings.Split(rest, ",") {
			if strings.TrimSpace(part) == property {
				return true
			}
		}
	}

	return false
}

// directiveRest strips the comment marker and the directive token, returning
// the remaining arguments with any trailing human-readable comment removed.
func directiveRest(text, token string) (string, bool) {
	text = strings.TrimPrefix(text, "//")
	text = strings.TrimSpace(text)

	if text != token && !strings.HasPrefix(text, token+" ") {
		return "", false
	}

	rest := strings.TrimSpace(strings.TrimPrefix(text, token))

	// Stop at comment markers: " - " or " //".
	if idx := strings.Index(rest, " - "); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.Index(rest, " //"); idx >= 0 {
		rest = rest[:idx]
	}
	if strings.HasPrefix(rest, "- ") || rest == "-" {
		rest = ""
	}

	return strings.TrimSpace(rest), true
}

func firstWord(s string) string {
	if idx := strings.IndexAny(s, " \t"); idx >= 0 {
		return s[:idx]
	}

	return s
}
