package main

import (
	"github.com/spf13/cobra"

	"github.com/cancetinsoy/stormenv/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	logLevelFlag  string
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "stormenv",
	Short: "Step through Storm-style explicit MDP files as an environment",
	Long: "Stormenv loads an explicit MDP (.tra transition file, optional .tra.rew\n" +
		"reward and .lab label files) and drives it as a seeded reset/step\n" +
		"environment for discrete RL experiments.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(logLevelFlag)
		if err != nil {
			return err
		}
		logging.Init(level, logFormatFlag)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "text", "log format: text or json")
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(rolloutCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.Version = version
}
