// Package override loads the file that attaches requirement sections to
// functions whose source cannot carry documentation, e.g. dependencies.
//
// The file is YAML: a top-level mapping from fully-qualified function name
// to an entry holding exactly one string-valued "requirements" field, itself
// containing standard requirement-section syntax:
//
//	example.com/pkg.Frob:
//	  requirements: |
//	    # Safety
//	     - nn: the pointer must be non-null
package override

import (
	"fmt"
	"go/types"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/oblicheck/oblicheck/internal/funcname"
)

// Problem is a file-level schema complaint about one entry. Problems degrade
// the entry to "unannotated"; they never abort the run.
type Problem struct {
	Key    string // offending function-name key, empty for file-wide issues
	Reason string
}

func (p Problem) String() string {
	if p.Key == "" {
		return p.Reason
	}

	return fmt.Sprintf("entry %q: %s", p.Key, p.Reason)
}

type entry struct {
	key          string
	spec         funcname.Spec
	requirements string
}

// File is a loaded set of overrides.
type File struct {
	entries []entry
}

// Load reads the override file at path. A missing file is not an error: it
// yields an empty File. Schema violations are returned as Problems alongside
// whatever entries were well-formed.
func Load(path string) (*File, []Problem, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{}, nil, nil
		}

		return nil, nil, err
	}

	return parse(text)
}

func parse(text []byte) (*File, []Problem, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(text, &root); err != nil {
		return &File{}, []Problem{{Reason: fmt.Sprintf("not valid YAML: %v", err)}}, nil
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return &File{}, nil, nil // empty file
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return &File{}, []Problem{{Reason: "expected a mapping of function names at the top level"}}, nil
	}

	f := &File{}
	var problems []Problem
	for i := 0; i+1 < len(doc.Content); i += 2 {
		keyNode, valNode := doc.Content[i], doc.Content[i+1]
		key := keyNode.Value

		req, problem := parseEntry(valNode)
		if problem != "" {
			problems = append(problems, Problem{Key: key, Reason: problem})

			continue
		}

		f.entries = append(f.entries, entry{
			key:          key,
			spec:         funcname.Parse(key),
			requirements: req,
		})
	}

	return f, problems, nil
}

// parseEntry validates one entry node: a mapping with exactly one
// "requirements" key holding a string.
func parseEntry(node *yaml.Node) (string, string) {
	if node.Kind != yaml.MappingNode {
		return "", "expected a mapping with a single \"requirements\" field"
	}
	if len(node.Content) != 2 {
		return "", "expected exactly one \"requirements\" field"
	}
	if node.Content[0].Value != "requirements" {
		return "", fmt.Sprintf("unexpected field %q, want \"requirements\"", node.Content[0].Value)
	}

	val := node.Content[1]
	if val.Kind != yaml.ScalarNode || val.Tag == "!!map" || val.Tag == "!!seq" {
		return "", "\"requirements\" must be a string"
	}

	return val.Value, ""
}

// Lookup returns the override requirement-section text for fn, if any.
func (f *File) Lookup(fn *types.Func) (string, bool) {
	for _, e := range f.entries {
		if e.spec.Matches(fn) {
			return e.requirements, true
		}
	}

	return "", false
}

// Len reports how many well-formed entries were loaded.
func (f *File) Len() int { return len(f.entries) }
