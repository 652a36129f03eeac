package commands

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/starbridge-labs/starbridge/internal/cli/config"
	"github.com/starbridge-labs/starbridge/internal/preview"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a live-reloading ERD preview",
		Long: `Start a local web server that renders the entity-relationship diagram
and the warehouse catalog.

The page reloads automatically when a CSV in the data directory or the
config file changes. The raw diagram is available at /erd.mermaid.`,
		Example: `  # Serve on the default address
  starbridge serve

  # Serve on another port
  starbridge serve --addr :8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", preview.DefaultAddr, "Listen address")

	return cmd
}

func runServe(cmd *cobra.Command, addr string) error {
	cc, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	srv := preview.NewServer(preview.Config{
		Addr:       addr,
		Engine:     cc.Engine,
		DataDir:    cc.Cfg.DataDir,
		ConfigFile: config.GetConfigFileUsed(),
		Logger:     cc.Logger,
	})

	cc.Renderer.Success("Preview server listening on http://" + displayAddr(addr))
	cc.Renderer.Muted("Press Ctrl+C to stop")

	return srv.Serve(cmd.Context())
}

// displayAddr makes a bare ":port" listen address printable.
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
