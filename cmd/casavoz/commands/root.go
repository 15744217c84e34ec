package commands

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "casavoz",
	Short: "Live property walkthrough sessions",
	Long: `casavoz runs live audio/video walkthrough conversations.

The call command joins a session as a client: it streams PCM audio from a
file (or stdin) as the microphone, plays the assistant's audio into an
output file, and prints the conversation transcript. The gateway command
runs the relay server that bridges clients to the model.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

var verbose bool

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(callCmd)
	rootCmd.AddCommand(gatewayCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
