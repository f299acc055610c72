package cli

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbridge/internal/cli/config"
)

// NewConfigCommand creates the config command, a diagnostic printout of
// the resolved configuration with credentials masked.
func NewConfigCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Setting", "Value"})
			for _, s := range cfg.Summary() {
				t.AppendRow(table.Row{s.Key, s.Value})
			}
			t.Render()
			return nil
		},
	}
}
