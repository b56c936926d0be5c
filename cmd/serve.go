package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iksnae/persona-chat/internal"
	"github.com/iksnae/persona-chat/internal/completion"
	"github.com/spf13/cobra"
)

var serveAddr string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat route other clients can use as their endpoint",
	Long: `Serve POST /api/chat, GET /healthz and GET /metrics.

The route builds the persona prompt and calls the model API with the
configured key, so clients started with --endpoint need no key of their own.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		addr := serveAddr
		if addr == "" {
			addr = cfg.ServeAddr
		}

		client := cfg.DirectClient()
		if !client.Configured() {
			internal.PrintWarning("No API key configured; /api/chat will answer with an error")
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return completion.NewServer(client, cfg.Timeout).ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config, 127.0.0.1:8787)")
}
