package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/bz888/agent-relay/internal/api/server"
	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP relay",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.InitLogger(flags.Dev, flags.LogPath, nil)
		localLogger := logger.NewLogger("serve")
		defer localLogger.Close()

		cfg, err := config.Load(flags.ConfigPath)
		if err != nil {
			return err
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}
