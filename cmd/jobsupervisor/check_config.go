package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/devtud/jobsupervisor/internal/config"
)

var checkConfigCmd = &cobra.Command{
	Use:   "check-config",
	Short: "Validate the configuration file and exit",
	Long: `Loads the configuration the same way serve does (YAML file, then
defaults for unset fields, then JOBSUPERVISOR_GLOBAL_*/JOBSUPERVISOR_JOB_*_*
environment overrides) and reports validation errors, warnings and suggestions without
starting the supervisor.`,
	Run: runCheckConfig,
}

var checkConfigStrict bool

func init() {
	checkConfigCmd.Flags().BoolVar(&checkConfigStrict, "strict", false, "exit non-zero on warnings, not just errors")
}

func runCheckConfig(cmd *cobra.Command, args []string) {
	cfg, err := config.LoadPath(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration load failed: %v\n", err)
		os.Exit(1)
	}

	result, err := cfg.ValidateComprehensive()
	if err != nil {
		fmt.Print(config.FormatValidationReport(result, cfg))
		os.Exit(1)
	}

	fmt.Print(config.FormatValidationReport(result, cfg))
	fmt.Printf("\nconfig version: %s, jobs declared: %d, tick interval: %dms\n",
		cfg.Version, len(cfg.Jobs), cfg.Global.TickIntervalMS)

	if checkConfigStrict && result.HasWarnings() {
		fmt.Fprintln(os.Stderr, "validation failed in strict mode: warnings present")
		os.Exit(1)
	}
}
