// Package annotation locates and parses the requirement/justification
// micro-language embedded in documentation comments.
package annotation

import (
	"go/ast"
	"go/token"
	"strings"
)

// Fragment is one raw comment line. Pos is where the line begins in the
// source and Prefix counts the marker characters consumed before the text
// starts ("//" on line comments, "/*" on the first block-comment line).
type Fragment struct {
	Pos    token.Pos
	Prefix int
	Text   string
}

// Doc is the logical documentation text for one item: the newline-joined
// concatenation of every comment-line fragment. Character offsets into Text
// can be mapped back to source spans via MapRange.
type Doc struct {
	Text  string
	Frags []Fragment
}

// FromComments assembles the logical documentation text of a comment group.
// Returns nil when the group contributes no text at all.
func FromComments(cg *ast.CommentGroup) *Doc {
	if cg == nil || len(cg.List) == 0 {
		return nil
	}

	var frags []Fragment
	for _, c := range cg.List {
		frags = append(frags, split(c)...)
	}
	if len(frags) == 0 {
		return nil
	}

	texts := make([]string, len(frags))
	for i, f := range frags {
		texts[i] = f.Text
	}

	return &Doc{
		Text:  strings.Join(texts, "\n"),
		Frags: frags,
	}
}

// split breaks one comment token into per-line fragments.
func split(c *ast.Comment) []Fragment {
	text := c.Text

	if strings.HasPrefix(text, "//") {
		return []Fragment{{Pos: c.Pos(), Prefix: 2, Text: text[2:]}}
	}

	// Block comment: strip the closing marker, keep the opener as the first
	// line's prefix, and emit each inner line as its own fragment so offsets
	// survive the join.
	body := strings.TrimSuffix(text, "*/")
	var frags []Fragment
	lineStart := 0
	for {
		prefix := 0
		if lineStart == 0 {
			prefix = 2
		}
		nl := strings.IndexByte(body[lineStart:], '\n')
		if nl == -1 {
			frags = append(frags, Fragment{
				Pos:    c.Pos() + token.Pos(lineStart),
				Prefix: prefix,
				Text:   body[lineStart+prefix:],
			})

			break
		}
		frags = append(frags, Fragment{
			Pos:    c.Pos() + token.Pos(lineStart),
			Prefix: prefix,
			Text:   body[lineStart+prefix : lineStart+nl],
		})
		lineStart += nl + 1
	}

	return frags
}
