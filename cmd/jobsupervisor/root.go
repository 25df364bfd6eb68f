package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var cfgFile string

// rootCmd is the base command. With no subcommand it behaves like serve,
// mirroring the teacher's "no subcommand defaults to serve" convention.
var rootCmd = &cobra.Command{
	Use:   "jobsupervisor",
	Short: "In-process cron-style job supervisor with an HTTP control plane",
	Long: `jobsupervisor runs a registry of named asynchronous jobs through a
lifecycle (registered -> pending -> running -> finished/failed/cancelled),
rescheduling cron-bound jobs after each completion, and exposes that
registry over an HTTP control plane:

  GET /api/jobs                  list all jobs
  GET /api/jobs/{name}           get one job
  GET /api/jobs/{name}/start     start a job immediately
  GET /api/jobs/{name}/cancel    cooperatively cancel a running job
  GET /api/log-stream            NDJSON stream of lifecycle events

Examples:
  jobsupervisor serve                  # start the daemon
  jobsupervisor check-config           # validate jobsupervisor.yaml and exit
  jobsupervisor version                # print build info`,
	Version: version,
	Run: func(cmd *cobra.Command, args []string) {
		runServe(cmd, args)
	},
}

// Execute runs the root command, exiting the process on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "path to configuration file (default: JOBSUPERVISOR_CONFIG env var, then /etc/jobsupervisor/jobsupervisor.yaml, then ./jobsupervisor.yaml)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(checkConfigCmd)
}
