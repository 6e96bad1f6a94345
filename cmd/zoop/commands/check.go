package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zig-whatwg/zoop/internal/engine"
	"github.com/zig-whatwg/zoop/internal/project"
)

var checkCmd = &cobra.Command{
	Use:   "check [dir]",
	Short: "Validate a project without writing output",
	Long: `Check runs the full pipeline (scan, resolve, flatten) over the project
and reports every diagnostic, but never writes generated files. Useful as a
fast pre-commit or CI gate.`,
	Args: cobra.MaximumNArgs(1),
	Run:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := project.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	units, err := project.Discover(root, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	res, genErr := engine.Generate(units, engine.Options{
		MaxFieldCount: cfg.MaxFieldCount,
		GetterPrefix:  cfg.GetterPrefix,
		SetterPrefix:  cfg.SetterPrefix,
	})
	printDiagnostics(res)
	if genErr != nil {
		os.Exit(1)
	}
	fmt.Printf("OK: %d unit(s), no problems found\n", len(units))
}
