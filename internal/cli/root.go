// Package cli provides the command-line interface for the bridge service.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register source connectors.
	_ "github.com/leapstack-labs/leapbridge/pkg/sources/postgres"
	_ "github.com/leapstack-labs/leapbridge/pkg/sources/sqlite"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "leapbridge",
		Short: "LeapBridge - SQL command bridge",
		Long: `LeapBridge accepts envelope-encoded SQL commands over HTTP, runs them
against a relational source store, and replicates query results into an
analytical warehouse.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
Built with Go and DuckDB
`)

	// Global persistent flags; the dotted config keys they map to are
	// resolved in internal/cli/config.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./leapbridge.yaml)")
	rootCmd.PersistentFlags().Int("port", 0, "HTTP listen port")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().String("source-type", "", "Source store engine (postgres|sqlite)")
	rootCmd.PersistentFlags().String("source-host", "", "Source store host")
	rootCmd.PersistentFlags().Int("source-port", 0, "Source store port")
	rootCmd.PersistentFlags().String("source-user", "", "Source store user")
	rootCmd.PersistentFlags().String("source-password", "", "Source store password")
	rootCmd.PersistentFlags().String("source-database", "", "Source store database name")
	rootCmd.PersistentFlags().String("source-path", "", "Source database file (sqlite)")
	rootCmd.PersistentFlags().String("warehouse-path", "", "Warehouse database file (empty for in-memory)")
	rootCmd.PersistentFlags().String("warehouse-context", "", "Warehouse compute context selected at startup")

	rootCmd.AddCommand(NewServeCommand())
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
