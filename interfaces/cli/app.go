// Package cli provides the goap command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/goap"
	"github.com/felixgeelhaar/goap/infrastructure/logging"
)

// Version information set at build time.
var (
	Version   = goap.Version
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Environment fallbacks for flags.
const (
	EnvCache        = "GOAP_CACHE"
	EnvCacheDSN     = "GOAP_CACHE_DSN"
	EnvOTLPEndpoint = "GOAP_OTLP_ENDPOINT"
)

// App represents the CLI application.
type App struct {
	root   *cobra.Command
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logLevel  string
	logFormat string
}

// New creates the CLI application.
func New() *App {
	app := &App{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}

	app.root = app.newPlanCmd()
	app.root.PersistentFlags().StringVar(&app.logLevel, "log-level", "warn", "Log level (trace, debug, info, warn, error)")
	app.root.PersistentFlags().StringVar(&app.logFormat, "log-format", "console", "Log format (console or json)")
	app.root.PersistentPreRunE = func(*cobra.Command, []string) error {
		return app.initLogging()
	}

	app.root.AddCommand(
		app.newVersionCmd(),
		app.newValidateCmd(),
		app.newSchemaCmd(),
		app.newMCPCmd(),
	)

	return app
}

// WithOutput sets custom output writers.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	a.root.SetOut(stdout)
	a.root.SetErr(stderr)
	return a
}

// WithInput sets the reader used for the "-" configuration path.
func (a *App) WithInput(stdin io.Reader) *App {
	a.stdin = stdin
	a.root.SetIn(stdin)
	return a
}

// Execute runs the CLI application.
func (a *App) Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return a.root.ExecuteContext(ctx)
}

// ExecuteWithArgs runs the CLI with specific arguments.
func (a *App) ExecuteWithArgs(ctx context.Context, args []string) error {
	a.root.SetArgs(args)
	return a.Execute(ctx)
}

func (a *App) initLogging() error {
	if !logging.ValidLevel(a.logLevel) {
		return fmt.Errorf("unknown log level %q", a.logLevel)
	}
	if a.logFormat != "console" && a.logFormat != "json" {
		return fmt.Errorf("unknown log format %q (want console or json)", a.logFormat)
	}
	logging.Init(logging.Config{
		Level:  a.logLevel,
		Format: a.logFormat,
		Output: a.stderr,
	})
	return nil
}

func (a *App) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			fmt.Fprintf(a.stdout, "goap version %s\n", Version)
			fmt.Fprintf(a.stdout, "  Git commit: %s\n", GitCommit)
			fmt.Fprintf(a.stdout, "  Build date: %s\n", BuildDate)
		},
	}
}

// envOr returns the environment value for key when flag is empty.
func envOr(flag, key string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(key)
}
