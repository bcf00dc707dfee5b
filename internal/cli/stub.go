package cli

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/studentlink-portal/internal/stubserver"
)

func newStubCmd(app *App) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "stub",
		Short: "Run the bundled in-memory demo backend",
		Long: `Runs a self-contained backend speaking the portal's REST and websocket
contracts. All data lives in memory and resets on restart. Every seeded
account accepts the demo password printed on startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.bootstrap(); err != nil {
				return err
			}

			cfg := app.cfg.Stub
			if port != 0 {
				cfg.Port = port
			}
			srv, err := stubserver.New(cfg, app.logger, app.metrics)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}
