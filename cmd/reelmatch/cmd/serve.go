package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hubenschmidt/reelmatch"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Load the catalog and serve the web UI and API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	app, err := reelmatch.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	srv, err := app.Server()
	if err != nil {
		return err
	}
	return srv.Run(cmd.Context())
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}
