package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/casavoz/casavoz/pkg/gateway"
)

var gatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the realtime relay server",
	Long: `Run the websocket relay that bridges live clients to the model.

Configuration comes from a yaml file:

  listen: ":8787"
  path: /live
  model: gemini-2.0-flash-live-001
  api_key: ...          # or GEMINI_API_KEY
  system_prompt: ...    # optional override

Example:
  casavoz gateway -f gateway.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		listen, _ := cmd.Flags().GetString("listen")

		var cfg *gateway.Config
		if configPath != "" {
			loaded, err := gateway.LoadConfig(configPath)
			if err != nil {
				return err
			}
			cfg = loaded
		} else {
			cfg = &gateway.Config{}
		}
		if listen != "" {
			cfg.Listen = listen
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv, err := gateway.New(ctx, cfg)
		if err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	gatewayCmd.Flags().StringP("config", "f", "", "Path to the yaml config file")
	gatewayCmd.Flags().String("listen", "", "Override the listen address")
}
