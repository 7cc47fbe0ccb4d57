// Command nexumd is the routing daemon: it hosts the in-memory domain
// routing table behind a Unix-domain socket.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/edhor1608/Nexum/internal/config"
	"github.com/edhor1608/Nexum/internal/log"
	"github.com/edhor1608/Nexum/internal/metrics"
	"github.com/edhor1608/Nexum/internal/routing"
)

var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "nexumd",
	Short: "Nexum routing daemon",
	Long: `nexumd hosts the domain-to-upstream routing table that nexumctl
and the restore orchestrator consult to register and resolve capsule
routes over a Unix-domain socket.`,
}

func init() {
	var err error
	cfg, err = config.New()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.BindFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cobra.OnInitialize(initLogging)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	log.Init(log.Config{
		Level:      log.Level(cfg.LogLevel()),
		JSONOutput: cfg.LogJSON(),
	})
}

var metricsAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the routing daemon",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("socket", "", "Unix-domain socket path (defaults to the resolved runtime-dir socket)")
	serveCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "127.0.0.1:9090", "Listen address for the Prometheus /metrics endpoint")
}

func runServe(cmd *cobra.Command, args []string) error {
	socketPath, _ := cmd.Flags().GetString("socket")
	if socketPath == "" {
		socketPath = cfg.SocketPath()
	}

	daemon := routing.NewDaemon(socketPath, log.Logger)

	go func() {
		http.Handle("/metrics", metrics.Handler())
		if err := http.ListenAndServe(metricsAddr, nil); err != nil && err != http.ErrServerClosed {
			log.Logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	log.Logger.Info().Str("addr", metricsAddr).Msg("metrics endpoint listening")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Logger.Info().Msg("shutdown signal received")
		cancel()
	}()

	if err := daemon.Serve(ctx); err != nil {
		return fmt.Errorf("nexumd: serve: %w", err)
	}
	return nil
}
