// Package oblicheck provides a go/analysis based analyzer verifying that
// reachable risky operations and calls to obligation-declaring functions
// carry matching justification annotations.
package oblicheck

import (
	"flag"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/tools/go/analysis"

	"github.com/oblicheck/oblicheck/internal/checker"
	"github.com/oblicheck/oblicheck/internal/property"
)

// Flags for the analyzer.
var (
	propertyList  string
	fineGrained   bool
	buzzwords     bool
	overridesPath string
	debug         bool
)

func init() {
	Analyzer.Flags.StringVar(&propertyList, "property", "safety",
		"comma-separated list of properties to check (safety, panics)")
	Analyzer.Flags.BoolVar(&fineGrained, "fine-grained", false,
		"require justifications to name each declared condition")
	Analyzer.Flags.StringVar(&overridesPath, "overrides", "oblicheck.yaml",
		"path to the YAML file attaching requirement sections to functions whose source cannot carry them (missing file means no overrides)")
	Analyzer.Flags.BoolVar(&buzzwords, "buzzwords", true,
		"let free-form justification prose cover a condition by mentioning its name or a known synonym")
	Analyzer.Flags.BoolVar(&debug, "debug", false, "verbose walk and check tracing")
}

// Analyzer is the main analyzer for oblicheck.
var Analyzer = &analysis.Analyzer{
	Name:  "oblicheck",
	Doc:   "checks that reachable risky operations and obligated calls carry matching justification annotations",
	Run:   run,
	Flags: flag.FlagSet{},
}

func run(pass *analysis.Pass) (any, error) {
	props, err := property.ParseList(propertyList)
	if err != nil {
		return nil, fmt.Errorf("-property: %w", err)
	}

	logger := zap.NewNop()
	if debug {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
	}

	cfg := checker.Config{
		Properties:    props,
		FineGrained:   fineGrained,
		Buzzwords:     buzzwords,
		OverridesPath: overridesPath,
		Logger:        logger,
	}

	// The core builds structured records; severity travels in the category.
	for _, rec := range checker.Run(pass, cfg) {
		diag := analysis.Diagnostic{
			Pos:      rec.Pos,
			End:      rec.End,
			Category: rec.Severity.String(),
			Message:  rec.Message,
		}
		for _, note := range rec.Notes {
			diag.Related = append(diag.Related, analysis.RelatedInformation{
				Pos:     note.Pos,
				End:     note.End,
				Message: note.Message,
			})
		}
		pass.Report(diag)
	}

	return nil, nil
}
