package cmd

import (
	"github.com/spf13/cobra"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=...".
var Version = "dev"

var configDir string

var rootCmd = &cobra.Command{
	Use:           "camlink",
	Short:         "camlink: room coordination and relay for remote camera control",
	Long:          `HTTP + WebSocket server pairing a host and camera clients through 6-character room codes.`,
	RunE:          runServe, // default: same as "camlink serve"
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", "./config", "directory holding config.yaml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and returns the error (for main to log).
func Execute() error {
	return rootCmd.Execute()
}
