// Command oblicheck is a linter that checks justification annotations on
// risky operations and obligated calls.
package main

import (
	"golang.org/x/tools/go/analysis/singlechecker"

	"github.com/oblicheck/oblicheck"
)

func main() {
	singlechecker.Main(oblicheck.Analyzer)
}
