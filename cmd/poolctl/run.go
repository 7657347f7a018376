package main

import (
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/pavanmanishd/mempool"
	"github.com/pavanmanishd/mempool/internal/script"
)

var (
	runStopOnError bool
	runKeepOpen    bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runStopOnError, "stop-on-error", false, "Stop at the first command that fails")
	cmd.Flags().BoolVar(&runKeepOpen, "keep-open", false, "Do not release pools the script leaves open")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Execute a pool script",
		Long: `The run command executes a pool script line by line and prints the
outcome of every command. Use "-" to read the script from stdin.

Script commands:
  open <pool> <size> <first-fit|best-fit>
  alloc <pool> <label> <size>
  free <pool> <label>
  inspect <pool>
  validate <pool>
  close <pool>

Example:
  poolctl run workload.pool
  poolctl run workload.pool --stop-on-error
  poolctl run workload.pool --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args)
		},
	}
	return cmd
}

// scriptReport is the JSON form of one script run.
type scriptReport struct {
	Script  string                  `json:"script"`
	Results []script.Result         `json:"results"`
	Failed  int                     `json:"failed"`
	Leaked  []string                `json:"leaked,omitempty"`
	Metrics mempool.RegistryMetrics `json:"registry"`
	Error   string                  `json:"error,omitempty"`
}

func runScript(args []string) error {
	path := args[0]

	var cmds []script.Command
	var err error
	if path == "-" {
		cmds, err = script.Parse(os.Stdin)
	} else {
		f, openErr := os.Open(path)
		if openErr != nil {
			return errors.Wrap(openErr, "open script")
		}
		defer f.Close()
		cmds, err = script.Parse(f)
	}
	if err != nil {
		return errors.Wrapf(err, "parse %s", path)
	}
	printVerbose("Parsed %d command(s) from %s\n", len(cmds), path)

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	defer reg.Shutdown()

	report, runErr := execScript(reg, path, cmds, runStopOnError, !runKeepOpen)
	if err := emitReport(report); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if report.Failed > 0 {
		return errors.Newf("%d command(s) failed", report.Failed)
	}
	return nil
}

// execScript runs cmds on reg and, when release is set, frees whatever the
// script left behind.
func execScript(reg *mempool.Registry, name string, cmds []script.Command, stop, release bool) (scriptReport, error) {
	runner := script.NewRunner(reg, newLogger())
	runner.StopOnError = stop

	report := scriptReport{Script: name}
	results, runErr := runner.Run(cmds)
	report.Results = results
	for _, r := range results {
		if r.Error != "" {
			report.Failed++
		}
	}
	report.Leaked = runner.Open()
	report.Metrics = reg.Metrics()
	if runErr != nil {
		report.Error = runErr.Error()
	}
	if release {
		if err := runner.Release(); err != nil {
			return report, errors.Wrap(err, "release script pools")
		}
	}
	return report, runErr
}

func emitReport(report scriptReport) error {
	if jsonOut {
		return printJSON(report)
	}
	printInfo("== %s\n", report.Script)
	for _, r := range report.Results {
		printInfo("%s\n", r.String())
	}
	if len(report.Leaked) > 0 {
		printInfo("pools left open: %v\n", report.Leaked)
	}
	printVerbose("registry: %d open pool(s), %d of %d bytes allocated\n",
		report.Metrics.OpenPools, report.Metrics.AllocSize, report.Metrics.TotalSize)
	return nil
}
