package cli

import (
	"fmt"
	"log"
	"net"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"autosearch/internal/eventbus"
	"autosearch/internal/server"
)

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve suggestions over HTTP",
		Long: "Serve the configured source over HTTP.\n\n" +
			"  GET /suggestions?q=TEXT[&limit=N]\n" +
			"  GET /healthz",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				opts.cfg.Server.Addr = addr
			}
			return opts.runServe(cmd)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func (o *options) runServe(cmd *cobra.Command) error {
	ctx := cmd.Context()
	bus := eventbus.NewWithLogger(log.Default())
	defer bus.Close()

	exec, err := buildExecutor(ctx, o.cfg, bus, log.Default())
	if err != nil {
		return err
	}
	defer exec.Close()

	ln, err := net.Listen("tcp", o.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", o.cfg.Server.Addr, err)
	}

	if !o.cfg.Log.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", exec.Description(), ln.Addr())
	return server.New(exec, o.cfg.Widget.SuggestionsLimit, log.Default()).Serve(ctx, ln)
}
