package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/marcus/notif/internal/api"
	"github.com/marcus/notif/internal/config"
	"github.com/marcus/notif/internal/db"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the notifications HTTP API",
	Long: `Serve the notifications HTTP API under /api/notifications/v1.

The listen address comes from --addr, NOTIF_LISTEN_ADDR or the config file.
Logging follows NOTIF_LOG_FORMAT (json or text) and NOTIF_LOG_LEVEL.`,
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := serveConfig(getBaseDir())
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.ListenAddr = addr
		}
		slog.SetDefault(newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel))

		store, err := db.Open(getBaseDir())
		if err != nil {
			return err
		}
		defer store.Close()

		srv, err := api.NewServer(cfg, store)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := srv.Start(); err != nil {
			return err
		}
		slog.Info("server started", "addr", srv.Addr().String())

		<-ctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// serveConfig layers the project config file under the API environment
func serveConfig(baseDir string) api.Config {
	cfg := api.LoadConfig()
	cfg.ListenAddr = config.GetListenAddr(baseDir)
	if cfg.WebhookSecret == "" {
		cfg.WebhookSecret = config.GetWebhookSecret(baseDir)
	}
	cfg.WebhookTimeout = time.Duration(config.GetWebhookTimeout(baseDir)) * time.Second
	return cfg
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Listen address (overrides config and NOTIF_LISTEN_ADDR)")
}
