package cmd

import (
	"os"

	"github.com/bz888/agent-relay/internal/config"
	"github.com/spf13/cobra"
)

var flags config.Flags

var rootCmd = &cobra.Command{
	Use:          "agent-relay",
	Short:        "Relay chat turns to a streaming LLM API and answer in one piece",
	SilenceUsage: true,
}

func init() {
	flags.Bind(rootCmd)
	rootCmd.AddCommand(serveCmd, chatCmd)
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
