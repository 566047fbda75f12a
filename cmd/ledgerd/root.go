/*
root.go - CLI entry point

PURPOSE:
  Defines the `ledgerd` command tree: a one-shot `run` subcommand that
  mirrors the original CLI's behavior (read a CSV, print the resulting
  account snapshots to stdout), and a `serve` subcommand that keeps the
  Engine alive behind the read-only admin HTTP surface while reading
  events from stdin.

CONFIGURATION:
  The persistent --log-level flag binds through viper so the
  LEDGERD_LOG_LEVEL environment variable works as a fallback, following the teacher pack's
  cobra+viper convention (see DESIGN.md).

SEE ALSO:
  - run.go: `ledgerd run <file>`
  - serve.go: `ledgerd serve`
*/
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:   "ledgerd",
	Short: "ledgerd - a toy payment settlement engine",
	Long: `ledgerd replays a stream of deposit/withdrawal/dispute/resolve/
chargeback events against a transaction ledger and reports the
resulting per-client account balances.`,
	Version: "0.1.0",
}

// Execute runs the command tree. Called once from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
}

func initConfig() {
	viper.SetEnvPrefix("ledgerd")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}
