package config

import "github.com/spf13/cobra"

// Flags are the process-wide switches shared by every command.
type Flags struct {
	Dev        bool
	LogPath    string
	ConfigPath string
}

func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&f.Dev, "dev", false, "Development mode")
	cmd.PersistentFlags().StringVar(&f.LogPath, "log-path", "", "Path to save the log file")
	cmd.PersistentFlags().StringVar(&f.ConfigPath, "config", "", "Path to a YAML config file")
}
