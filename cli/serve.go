package main

import (
	"github.com/spf13/cobra"

	"ytshorts/server"
)

func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve feeds over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = flags.cfg.Server.Addr
			}

			a, err := newApp(cmd.Context(), flags.cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(a.builder,
				server.WithLogger(a.logger),
				server.WithMetricsHandler(a.metrics.Handler()),
				server.WithRetryAfter(a.gate.Cooldown()),
			)
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config server.addr)")
	return cmd
}
