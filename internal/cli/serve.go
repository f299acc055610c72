package cli

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapbridge/internal/bridge"
	"github.com/leapstack-labs/leapbridge/internal/cli/config"
	"github.com/leapstack-labs/leapbridge/internal/server"
	"github.com/leapstack-labs/leapbridge/internal/warehouse"
	"github.com/leapstack-labs/leapbridge/pkg/source"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the bridge server",
		Long: `Starts the HTTP bridge server.

At startup the warehouse session is created and its compute context is
selected; a failure there is fatal. Source-store connectivity is checked
once for diagnostics only and does not block startup.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: config.ParseLevel(cfg.LogLevel),
			}))
			slog.SetDefault(logger)

			for _, s := range cfg.Summary() {
				logger.Debug("config", slog.String("key", s.Key), slog.String("value", s.Value))
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// The warehouse session lives for the whole process. Creating it
			// or selecting its context can fail the process before any
			// traffic is accepted.
			session, err := warehouse.Connect(ctx, cfg.Warehouse, logger)
			if err != nil {
				return err
			}
			defer func() { _ = session.Close() }()

			if cfg.Warehouse.Context != "" {
				if err := session.UseContext(ctx, cfg.Warehouse.Context); err != nil {
					return err
				}
			}

			connector, err := source.NewConnector(cfg.Source, logger)
			if err != nil {
				return err
			}

			b := bridge.New(bridge.Config{
				Connector: connector,
				SourceCfg: cfg.Source,
				Session:   session,
				Logger:    logger,
			})

			// Diagnostic only: log and keep going, asymmetric with the
			// fatal warehouse-context selection above.
			if err := b.VerifySource(ctx); err != nil {
				logger.Error("source connectivity check failed", slog.Any("error", err))
			}

			srv := server.NewServer(server.Config{
				Bridge: b,
				Port:   cfg.Port,
				Logger: logger,
			})
			return srv.Serve(ctx)
		},
	}
}
