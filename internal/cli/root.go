// Package cli implements the apidebug terminal client.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/api-debugger/internal/backend"
	"github.com/api-debugger/internal/config"
	"github.com/api-debugger/internal/formatter"
	"github.com/api-debugger/internal/logger"
	"github.com/api-debugger/internal/rules"
	"github.com/api-debugger/pkg/sanitizer"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// ErrDiagnosisFailed is returned after a failed diagnosis has been printed.
var ErrDiagnosisFailed = errors.New("diagnosis failed")

// globalOptions holds the persistent flags shared by every command.
type globalOptions struct {
	apiURL       string
	timeout      time.Duration
	mock         bool
	outputFormat string
	verbose      bool

	out    io.Writer
	errOut io.Writer
}

// NewRootCmd builds the apidebug command tree.
func NewRootCmd(version string) *cobra.Command {
	opts := &globalOptions{out: os.Stdout, errOut: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "apidebug",
		Short: "AI-assisted API integration debugging",
		Long: `apidebug sends a description of a failing API call to the diagnostic
backend and prints the root cause and a suggested fix.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			opts.errOut = cmd.ErrOrStderr()
			if !slices.Contains(formatter.Formats, opts.outputFormat) {
				return fmt.Errorf("unknown output format %q (want human, json or yaml)", opts.outputFormat)
			}
			return nil
		},
	}

	// Disable automatic 'completion' command added by cobra
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiURL, "api-url", "", "Diagnostic backend URL (default $API_URL or "+config.DefaultBackendURL+")")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Backend call timeout (default $BACKEND_TIMEOUT or 2m)")
	flags.BoolVar(&opts.mock, "mock", false, "Diagnose locally with built-in rules instead of calling the backend")
	flags.StringVarP(&opts.outputFormat, "output", "o", "human", "Output format (human, json, yaml)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(
		newDebugCmd(opts),
		newExampleCmd(opts),
		newHealthCmd(opts),
		newTestRequestCmd(opts),
		newVersionCmd(version),
	)

	return rootCmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "apidebug version %s\n", version)
		},
	}
}

// config resolves defaults, then the environment, then flags.
func (o *globalOptions) config() (*config.Config, error) {
	cfg := config.Default()
	cfg.ApplyEnv()

	if o.apiURL != "" {
		cfg.Backend.BaseURL = o.apiURL
	}
	if o.timeout > 0 {
		cfg.Backend.Timeout = o.timeout
	}
	if o.mock {
		cfg.Backend.MockMode = true
	}

	if err := cfg.ValidateClient(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// client builds the backend client along with its sanitizer and logger.
func (o *globalOptions) client() (backend.Client, *sanitizer.Sanitizer, *zap.Logger, error) {
	cfg, err := o.config()
	if err != nil {
		return nil, nil, nil, err
	}

	zapLogger, err := logger.NewCLI(o.verbose)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	s := sanitizer.New(cfg.Log.MaxBodySize)
	if cfg.Backend.MockMode {
		zapLogger.Warn("running in mock mode - diagnoses come from built-in rules")
		engine := rules.NewEngine(rules.DefaultRules(), rules.DefaultThreshold, zapLogger)
		return backend.NewMockClient(engine, zapLogger), s, zapLogger, nil
	}
	return backend.NewHTTPClient(&cfg.Backend, s, zapLogger), s, zapLogger, nil
}

func (o *globalOptions) human() bool {
	return o.outputFormat == "human"
}

func printError(w io.Writer, msg string) {
	red := color.New(color.FgRed)
	red.Fprintf(w, "✗ %s\n", msg)
}
