package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/furkancmc/prodrisk/internal/logging"
	"github.com/furkancmc/prodrisk/internal/server"
)

// NewServeCmd constructs the `prodrisk serve` command, which starts the HTTP
// server exposing search, details, stats, and the dashboard feed.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the prodrisk HTTP server",
		Long: `Start the prodrisk HTTP server.

The server exposes a REST API for semantic search, product details with risk
analysis, per-category statistics, the brand list, and the dashboard sales
feed, plus Prometheus metrics on /metrics.

Examples:
  prodrisk serve
  prodrisk serve --port 9090
  EMBEDDING_PROVIDER=ollama prodrisk serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Flags win over env; env fills in when the flag is untouched.
			if !cmd.Flags().Changed("host") {
				if v := os.Getenv("PRODRISK_HOST"); v != "" {
					host = v
				}
			}
			if !cmd.Flags().Changed("port") {
				if v := envInt("PRODRISK_PORT", 0); v != 0 {
					port = v
				}
			}

			log.Info("serve starting",
				slog.String("embedding_provider", os.Getenv("EMBEDDING_PROVIDER")))

			eng, st, enc, err := buildEngine(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer st.Close()

			pingers := []server.Pinger{
				server.NewStorePinger(st),
				server.NewEncoderPinger(enc),
			}

			srv, err := server.New(eng, &server.Config{
				Host:      host,
				Port:      port,
				Logger:    log,
				Pingers:   pingers,
				APIKey:    os.Getenv("PRODRISK_API_KEY"),
				RateLimit: envFloat("PRODRISK_RATE_LIMIT", 0),
				RateBurst: envInt("PRODRISK_RATE_BURST", 0),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8090, "TCP port to listen on")

	return cmd
}
