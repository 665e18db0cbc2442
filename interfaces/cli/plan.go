package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	domainconfig "github.com/felixgeelhaar/goap/domain/config"
	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/infrastructure/config"
	"github.com/felixgeelhaar/goap/infrastructure/logging"
)

// planOptions holds the flags of the root command.
type planOptions struct {
	serviceOptions

	json      bool
	noColor   bool
	watch     bool
	strictEnv bool

	algorithm string
	solution  string
	maxDepth  int
	maxSteps  int
}

// newPlanCmd creates the root command, which plans for a configuration file.
func (a *App) newPlanCmd() *cobra.Command {
	opts := &planOptions{}

	cmd := &cobra.Command{
		Use:   "goap <config>",
		Short: "Goal-oriented action planner",
		Long: `goap searches for the sequence of actions that leaves an agent least
discontented, given its current state, weighted goals over that state and
a catalogue of actions with durations and effects.

The configuration file is YAML or JSON; "-" reads YAML from stdin.

Examples:
  # Plan and print a table of steps
  goap survival.yaml

  # Override the search settings of the file
  goap survival.yaml --algorithm Hybrid --solution Fast --max-depth 8

  # Emit JSON and re-plan whenever the file changes
  goap survival.yaml --json --watch

  # Memoize plans in redis and export traces over OTLP
  goap survival.yaml --cache redis --cache-dsn redis://localhost:6379/0 --trace otlp`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPlan(cmd.Context(), args[0], opts)
		},
	}

	opts.serviceOptions.register(cmd)
	f := cmd.Flags()
	f.BoolVar(&opts.json, "json", false, "Print the plan as JSON")
	f.BoolVar(&opts.noColor, "no-color", false, "Disable colored output")
	f.BoolVarP(&opts.watch, "watch", "w", false, "Re-plan whenever the configuration file changes")
	f.BoolVar(&opts.strictEnv, "strict-env", false, "Fail on undefined environment variables in the configuration")
	f.StringVar(&opts.algorithm, "algorithm", "", "Override plan.algorithm (Traditional, EfficiencyBased, Hybrid)")
	f.StringVar(&opts.solution, "solution", "", "Override plan.solution (Best, Fast)")
	f.IntVar(&opts.maxDepth, "max-depth", 0, "Override plan.max_depth")
	f.IntVar(&opts.maxSteps, "max-steps", 0, "Override plan.max_steps")

	return cmd
}

func (a *App) runPlan(ctx context.Context, path string, opts *planOptions) error {
	if opts.watch && path == config.StdinPath {
		return fmt.Errorf("--watch needs a file, not stdin")
	}

	sess, err := a.openSession(ctx, &opts.serviceOptions)
	if err != nil {
		return err
	}
	defer sess.close(ctx)

	var renderer Renderer = NewTextRenderer(a.stdout, opts.noColor)
	if opts.json {
		renderer = JSONRenderer{}
	}

	loader := a.loader(opts.strictEnv)
	planOnce := func() error {
		req, err := loadRequest(loader, path, opts)
		if err != nil {
			return err
		}
		plan, err := sess.service.Plan(ctx, req)
		if err != nil {
			return err
		}
		return renderer.Render(a.stdout, plan)
	}

	if !opts.watch {
		return planOnce()
	}

	if err := planOnce(); err != nil {
		fmt.Fprintf(a.stderr, "Error: %v\n", err)
	}
	logging.Info().Add(logging.Path(path)).Msg("watching for changes")
	return watchFile(ctx, path, watchDebounce, func() {
		fmt.Fprintf(a.stdout, "\n--- %s ---\n", time.Now().Format(time.TimeOnly))
		if err := planOnce(); err != nil {
			fmt.Fprintf(a.stderr, "Error: %v\n", err)
		}
	})
}

// loadRequest loads path and applies flag overrides.
func loadRequest(loader *config.Loader, path string, opts *planOptions) (planning.Request, error) {
	doc, err := loader.LoadFile(path)
	if err != nil {
		return planning.Request{}, err
	}
	applyOverrides(doc, opts)

	// Overrides bypass the loader, so the result is validated again.
	if errs := domainconfig.NewValidator().Validate(doc); errs.HasErrors() {
		return planning.Request{}, fmt.Errorf("%w: %w", domainconfig.ErrValidationFailed, errs)
	}
	return doc.Request()
}

func applyOverrides(doc *domainconfig.Document, opts *planOptions) {
	if opts.algorithm != "" {
		doc.Plan.Algorithm = opts.algorithm
	}
	if opts.solution != "" {
		doc.Plan.Solution = opts.solution
	}
	if opts.maxDepth != 0 {
		doc.Plan.MaxDepth = opts.maxDepth
	}
	if opts.maxSteps != 0 {
		doc.Plan.MaxSteps = opts.maxSteps
	}
}

func (a *App) loader(strictEnv bool) *config.Loader {
	return config.NewLoaderWithOptions(config.WithStrictEnv(strictEnv), config.WithStdin(a.stdin))
}
