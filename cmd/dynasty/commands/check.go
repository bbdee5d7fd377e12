package commands

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/dynasty/errors"
)

// CheckCmd checks if generated code is up to date
var CheckCmd = &cobra.Command{
	Use:   "check [packages|files...]",
	Short: "Check if generated code is up to date",
	Long: `Check that annotated sources and companion files match what
dynasty generate would produce, without writing anything.

Reported problems:
  - base field not injected into an inheriting struct
  - companion file missing, different or stale
  - companion file written by a newer, incompatible dynasty

Exit codes:
  0 - Generated code is up to date
  1 - Generated code is out of date, or an error occurred

Examples:
  dynasty check ./...    # Use in CI after go generate`,
	RunE: runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, gen, err := setup()
	if err != nil {
		return err
	}
	_, outputs, err := processAll(gen, args)
	if err != nil {
		return err
	}

	res, err := gen.Check(outputs)
	if err != nil {
		return errors.Wrap(err, "failed to check generated code")
	}

	out := cmd.OutOrStdout()
	if res.UpToDate {
		fmt.Fprintf(out, "%s Generated code is up to date\n", pterm.Green("✓"))
		return nil
	}

	fmt.Fprintf(out, "%s Generated code is out of date.\n", pterm.Red("✗"))
	for _, p := range res.Problems {
		fmt.Fprintf(out, "  - %s: %s\n", p.File, p.Reason)
	}
	return errors.WithHint(
		errors.Newf("%d file%s out of date", len(res.Problems), plural(len(res.Problems), "", "s")),
		"run 'dynasty generate' to update",
	)
}
