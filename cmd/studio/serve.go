package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the generation API without opening a window",
	Long: `Starts only the HTTP API: POST /api/generate answers a conversation with an explanation
and a scene script, GET /metrics exposes Prometheus metrics and GET /healthz reports liveness.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.log.Sync() //nolint:errcheck

		addr := a.prefs.HTTPAddr
		if addr == "" {
			addr = ":8080"
		}
		stop := serveBackground(a, addr)

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
		sig := <-shutdown
		a.log.Info("shutting down", zap.String("signal", sig.String()))
		stop()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
}
