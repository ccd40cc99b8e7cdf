package cmd

import (
	"context"

	"github.com/bz888/agent-relay/internal/api"
	"github.com/bz888/agent-relay/internal/api/server"
	"github.com/bz888/agent-relay/internal/config"
	"github.com/bz888/agent-relay/internal/logger"
	"github.com/bz888/agent-relay/internal/ui"
	"github.com/spf13/cobra"
)

var withServer bool

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat widget",
	RunE: func(cmd *cobra.Command, args []string) error {
		ui.Init(flags.Dev)
		debugConsole, err := ui.GetDebugConsole()
		if err != nil {
			return err
		}
		logger.InitLogger(flags.Dev, flags.LogPath, debugConsole)

		cfg, err := config.Load(flags.ConfigPath)
		if err != nil {
			return err
		}

		if withServer {
			srv, err := server.New(cfg)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			go func() {
				if err := srv.Run(ctx); err != nil {
					logger.NewLogger("chat").Err(err).Error("In-process relay stopped")
				}
			}()
		}

		return ui.Run(api.NewClient(cfg))
	},
}

func init() {
	chatCmd.Flags().BoolVar(&withServer, "with-server", false, "Also run the relay in-process")
}
