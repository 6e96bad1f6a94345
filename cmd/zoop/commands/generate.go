package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/zig-whatwg/zoop/internal/engine"
	"github.com/zig-whatwg/zoop/internal/project"
)

var (
	generateOut     string
	generateWatch   bool
	generateVerbose bool
)

var generateCmd = &cobra.Command{
	Use:   "generate [dir]",
	Short: "Generate expanded Zig structs from .zoop units",
	Long: `Generate discovers .zoop source units under the project directory,
runs the generation pipeline, and writes one .zig file per input unit into
the configured output directory.

Configuration comes from zoop.toml in the project directory; every setting
has a default, so the file is optional.

Examples:
  zoop generate                   # Current directory
  zoop generate ./src             # Explicit project directory
  zoop generate --out gen         # Override the output directory
  zoop generate --watch           # Regenerate on source changes`,
	Args: cobra.MaximumNArgs(1),
	Run:  runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "", "Output directory (overrides zoop.toml)")
	generateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate whenever a source unit changes")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print per-unit progress")
}

func runGenerate(cmd *cobra.Command, args []string) {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	cfg, err := project.LoadConfig(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if generateOut != "" {
		cfg.OutDir = generateOut
	}

	if !generateWatch {
		if err := generateOnce(root, cfg); err != nil {
			os.Exit(1)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Watching %s for changes (Ctrl-C to stop)\n", root)
	err = project.Watch(ctx, root, cfg, func() {
		// A broken source keeps the watch alive; the next save retries.
		_ = generateOnce(root, cfg)
	})
	if err != nil && err != context.Canceled {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// generateOnce runs one full discovery and generation pass and writes the
// output files. Output is all-or-nothing: any pipeline error means nothing
// is written.
func generateOnce(root string, cfg project.Config) error {
	units, err := project.Discover(root, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	if len(units) == 0 {
		fmt.Fprintln(os.Stderr, "Error: no .zoop units found")
		return fmt.Errorf("no units")
	}

	res, genErr := engine.Generate(units, engine.Options{
		MaxFieldCount: cfg.MaxFieldCount,
		GetterPrefix:  cfg.GetterPrefix,
		SetterPrefix:  cfg.SetterPrefix,
	})
	printDiagnostics(res)
	if genErr != nil {
		fmt.Fprintln(os.Stderr, "Error: generation failed, no output written")
		return genErr
	}

	outDir := filepath.Join(root, cfg.OutDir)
	if err := os.MkdirAll(outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	for _, u := range res.Units {
		path := filepath.Join(outDir, u.Unit+".zig")
		if err := os.WriteFile(path, []byte(u.Content), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error: writing %s: %v\n", path, err)
			return err
		}
		if generateVerbose {
			fmt.Printf("Generated %s\n", path)
		}
	}
	fmt.Printf("Generated %d unit(s) to %s\n", len(res.Units), outDir)
	return nil
}

// printDiagnostics reports every collected problem to stderr.
func printDiagnostics(res *engine.Result) {
	if res == nil {
		return
	}
	for _, d := range res.Diagnostics {
		fmt.Fprintln(os.Stderr, d.Message)
	}
}
