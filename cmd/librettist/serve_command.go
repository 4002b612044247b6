package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"librettist/internal/server"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the pipeline HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if port == "" {
				port = cfg.Server.Port
			}

			srv, err := server.New(cfg)
			if err != nil {
				return err
			}

			slog.Info("starting server", "port", port)
			return srv.Start(port)
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Port to listen on (defaults to the configured port)")
	return cmd
}
