package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	domainconfig "github.com/felixgeelhaar/goap/domain/config"
	"github.com/felixgeelhaar/goap/domain/planning"
)

// validateOptions holds options for the validate command.
type validateOptions struct {
	strictEnv    bool
	strictFields bool
}

// newValidateCmd creates the validate command.
func (a *App) newValidateCmd() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a configuration file",
		Long: `Validate a planner configuration file without searching.

This command checks:
  - File format (YAML or JSON)
  - Goal kinds, targets and weights
  - Action labels, durations and deltas
  - Plan settings (algorithm, solution, max_depth, max_steps, hybrid)
  - Environment variable references (with --strict-env)

Every problem found is listed, not only the first.

Examples:
  goap validate survival.yaml
  goap validate survival.yaml --strict-env --strict-fields`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.validateConfig(args[0], opts)
		},
	}

	cmd.Flags().BoolVar(&opts.strictEnv, "strict-env", false, "Fail on undefined environment variables")
	cmd.Flags().BoolVar(&opts.strictFields, "strict-fields", false, "Reject fields the document does not define")

	return cmd
}

func (a *App) validateConfig(path string, opts *validateOptions) error {
	loader := a.loader(opts.strictEnv)
	loader.StrictFields = opts.strictFields

	var req planning.Request
	doc, err := loader.LoadFile(path)
	if err == nil {
		req, err = doc.Request()
	}
	if err != nil {
		var verrs domainconfig.ValidationErrors
		if errors.As(err, &verrs) {
			fmt.Fprintf(a.stderr, "✗ %s has %d problem(s):\n", path, len(verrs))
			for _, v := range verrs {
				fmt.Fprintf(a.stderr, "  - %s\n", v.Error())
			}
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(a.stdout, "✓ Configuration is valid\n")
	fmt.Fprintf(a.stdout, "  Properties: %d\n", req.Initial.Len())
	fmt.Fprintf(a.stdout, "  Goals: %d\n", len(req.Goals))
	fmt.Fprintf(a.stdout, "  Actions: %d\n", req.Actions.Len())
	fmt.Fprintf(a.stdout, "  Search: %s/%s, max depth %d", req.Algorithm, req.Mode, req.Bound)
	if req.MaxSteps > 0 {
		fmt.Fprintf(a.stdout, ", max steps %d", req.MaxSteps)
	}
	fmt.Fprintln(a.stdout)
	if req.Algorithm == planning.Hybrid {
		s := req.HybridSchedule()
		fmt.Fprintf(a.stdout, "  Hybrid schedule: alpha %g, knee %g\n", s.Alpha, s.Knee)
	}
	fmt.Fprintf(a.stdout, "  Initial discontentment: %s\n", formatNumber(req.Goals.Discontentment(req.Initial)))

	return nil
}
