package main

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/mempool/internal/script"
)

var demoName string

func init() {
	cmd := newDemoCmd()
	cmd.Flags().StringVar(&demoName, "name", "", "Run only the named scenario")
	rootCmd.AddCommand(cmd)
}

func newDemoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in placement scenarios",
		Long: `The demo command runs the built-in scripts that show first-fit
placement, best-fit reuse of an exact hole, and coalescing of adjacent gaps.

Example:
  poolctl demo
  poolctl demo --name best-fit --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo()
		},
	}
	return cmd
}

func runDemo() error {
	scenarios, err := script.Scenarios()
	if err != nil {
		return err
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	var reports []scriptReport
	for _, s := range scenarios {
		if demoName != "" && s.Name != demoName {
			continue
		}
		cmds, err := script.ParseString(s.Source)
		if err != nil {
			return errors.Wrapf(err, "scenario %s", s.Name)
		}
		report, err := execScript(reg, s.Name, cmds, true, true)
		if err != nil {
			return errors.Wrapf(err, "scenario %s", s.Name)
		}
		reports = append(reports, report)
	}
	if len(reports) == 0 {
		return errors.Newf("unknown scenario %q", demoName)
	}

	if jsonOut {
		return printJSON(reports)
	}
	for i, r := range reports {
		if i > 0 {
			printInfo("\n")
		}
		if err := emitReport(r); err != nil {
			return err
		}
	}
	return nil
}
