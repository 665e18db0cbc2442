package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goap/infrastructure/logging"
	"github.com/felixgeelhaar/goap/infrastructure/mcp"
)

type mcpOptions struct {
	serviceOptions

	http string
}

// newMCPCmd creates the mcp command.
func (a *App) newMCPCmd() *cobra.Command {
	opts := &mcpOptions{}

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the planner over the Model Context Protocol",
		Long: `Serve the planner as an MCP server on stdin/stdout, or over HTTP with --http.

Tools:
  plan      plan for a configuration object and return the plan as JSON
  validate  list every problem in a configuration object
  schema    return the configuration JSON Schema

Examples:
  goap mcp
  goap mcp --cache badger --cache-dsn ./plans --metrics prometheus
  goap mcp --http :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.serveMCP(cmd.Context(), opts)
		},
	}

	opts.serviceOptions.register(cmd)
	cmd.Flags().StringVar(&opts.http, "http", "", "Serve over HTTP on this address instead of stdio")

	return cmd
}

func (a *App) serveMCP(ctx context.Context, opts *mcpOptions) error {
	sess, err := a.openSession(ctx, &opts.serviceOptions)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	srv := mcp.NewPlannerServer(mcp.ServerConfig{
		Name:        "goap",
		Version:     Version,
		Description: "Goal-oriented action planner",
		Planner:     sess.service,
		Loader:      a.loader(false),
	})
	srv.Use(mcp.Recover(), mcp.RequestID())

	if opts.http != "" {
		logging.Info().Add(logging.Str("addr", opts.http)).Msg("serving MCP over HTTP")
		return srv.ServeHTTP(ctx, opts.http)
	}
	logging.Info().Msg("serving MCP over stdio")
	return srv.ServeStdio(ctx)
}
