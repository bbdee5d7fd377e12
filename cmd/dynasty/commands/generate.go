package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dynasty/classgen"
	"github.com/teranos/dynasty/logger"
)

var (
	generateDryRun bool
	generateWatch  bool
	generateClean  bool
)

// GenerateCmd rewrites annotated structs and writes companion files
var GenerateCmd = &cobra.Command{
	Use:   "generate [packages|files...]",
	Short: "Inject base fields and write companion files",
	Long: `Process annotated structs in the given packages or files.

Arguments ending in .go are processed as files, grouped by directory;
anything else is a package pattern (./..., ./zoo). Without arguments the
package in the current directory is processed.

For each source file with directives, dynasty
  - injects the base field as the first field of inheriting structs
  - writes <file>_dynasty.go implementing class.Class and class.Inherits

Runs are idempotent: nothing is written when the output is current.

Examples:
  dynasty generate                    # Current package
  dynasty generate ./...              # Every package in the module
  dynasty generate zoo.go             # A single file
  dynasty generate --dry-run ./...    # Show what would change
  dynasty generate --watch            # Regenerate on save
  //go:generate dynasty generate      # From go generate`,
	RunE: runGenerate,
}

func init() {
	GenerateCmd.Flags().BoolVar(&generateDryRun, "dry-run", false, "Report what would change without writing")
	GenerateCmd.Flags().BoolVarP(&generateWatch, "watch", "w", false, "Regenerate when sources change")
	GenerateCmd.Flags().BoolVar(&generateClean, "clean", false, "Remove stale companion files")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, gen, err := setup()
	if err != nil {
		return err
	}
	clean := generateClean || cfg.Generate.Clean
	out := cmd.OutOrStdout()

	if generateDryRun {
		_, outputs, err := processAll(gen, args)
		if err != nil {
			return err
		}
		res, err := gen.Check(outputs)
		if err != nil {
			return err
		}
		printDryRun(out, res)
		return nil
	}

	pkgs, err := generateOnce(out, gen, args, clean, nil)
	if err != nil || !generateWatch {
		return err
	}

	dirs := make([]string, 0, len(pkgs))
	for _, pkg := range pkgs {
		dirs = append(dirs, pkg.Dir)
	}

	var watcher *classgen.Watcher
	debounce := time.Duration(cfg.Watch.DebounceMS) * time.Millisecond
	watcher, err = gen.NewWatcher(dirs, debounce, func(ctx context.Context) error {
		_, err := generateOnce(out, gen, args, clean, watcher)
		return err
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(out, "%s Watching %d director%s (Ctrl-C to stop)\n", pterm.Cyan("⟳"), len(dirs), plural(len(dirs), "y", "ies"))
	logger.Infow("Watching for changes", "dirs", dirs, "debounce", debounce.String())
	return watcher.Run(ctx)
}

// generateOnce runs one full generation. With a watcher, the files about to
// be written are marked so the watcher ignores them.
func generateOnce(out io.Writer, gen *classgen.Generator, args []string, clean bool, watcher *classgen.Watcher) ([]*classgen.Package, error) {
	pkgs, outputs, err := processAll(gen, args)
	if err != nil {
		return nil, err
	}

	if watcher != nil {
		for _, o := range outputs {
			if o.Rewritten != nil {
				watcher.MarkOwnWrites(o.Source)
			}
		}
	}

	res, err := gen.Write(outputs, clean)
	if err != nil {
		return nil, err
	}
	printWriteResult(out, res)
	return pkgs, nil
}

func printWriteResult(out io.Writer, res *classgen.WriteResult) {
	for _, f := range res.Rewritten {
		fmt.Fprintf(out, "%s Injected base fields into %s\n", pterm.Green("✓"), f)
	}
	for _, f := range res.Written {
		fmt.Fprintf(out, "%s Generated %s\n", pterm.Green("✓"), f)
	}
	for _, f := range res.Removed {
		fmt.Fprintf(out, "%s Removed stale %s\n", pterm.Green("✓"), f)
	}
	for _, f := range res.Stale {
		fmt.Fprintf(out, "%s Stale %s (run with --clean to remove)\n", pterm.Yellow("⚠"), f)
	}
	if len(res.Rewritten)+len(res.Written)+len(res.Removed) == 0 {
		fmt.Fprintf(out, "%s Generated code is up to date (%d file%s)\n",
			pterm.Green("✓"), len(res.Unchanged), plural(len(res.Unchanged), "", "s"))
	}
}

func printDryRun(out io.Writer, res *classgen.CheckResult) {
	if res.UpToDate {
		fmt.Fprintf(out, "%s Nothing to do\n", pterm.Green("✓"))
		return
	}
	fmt.Fprintln(out, "Would change:")
	for _, p := range res.Problems {
		fmt.Fprintf(out, "  - %s (%s)\n", p.File, p.Reason)
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
