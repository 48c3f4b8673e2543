package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/api-debugger/internal/form"
	"github.com/api-debugger/internal/formatter"
	"github.com/api-debugger/internal/render"
	"github.com/api-debugger/internal/service"
	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type debugOptions struct {
	*globalOptions

	example string
	fields  form.Fields
}

func newDebugCmd(global *globalOptions) *cobra.Command {
	opts := &debugOptions{globalOptions: global}

	cmd := &cobra.Command{
		Use:   "debug [ISSUE]",
		Short: "Diagnose a failing API call",
		Long: `Describe an API integration problem and get the root cause and a fix.

Examples:
  # Describe the problem and the failing call
  apidebug debug "Getting 401 on /user" --url https://api.github.com/user \
    --headers '{"Authorization": "Bearer expired"}' --status 401 --auth bearer

  # Start from a canned scenario and override a field
  apidebug debug --example 429 --url https://api.example.com/search

  # Machine-readable output
  apidebug debug "timeouts on POST /orders" -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.example, "example", "", "Load a canned scenario first (401, 400, 429)")
	f.StringVarP(&opts.fields.Method, "method", "X", "GET", "HTTP method of the failing call")
	f.StringVar(&opts.fields.URL, "url", "", "URL of the failing call")
	f.StringVarP(&opts.fields.Headers, "headers", "H", "", "Request headers as a JSON object")
	f.StringVarP(&opts.fields.Body, "body", "d", "", "Request body as JSON")
	f.StringVar(&opts.fields.StatusCode, "status", "", "Response status code")
	f.StringVar(&opts.fields.ResponseBody, "response-body", "", "Response body")
	f.StringVar(&opts.fields.AuthType, "auth", "", "Authentication type (bearer, api_key, oauth2, basic)")

	return cmd
}

// resolveFields merges the example, the positional issue and any flags the
// user set explicitly, in that order.
func (o *debugOptions) resolveFields(cmd *cobra.Command, args []string) (form.Fields, error) {
	fields := form.Fields{Method: "GET"}
	if o.example != "" {
		ex, err := form.LoadExample(o.example)
		if err != nil {
			return form.Fields{}, err
		}
		fields = ex
	}
	if len(args) == 1 {
		fields.Issue = args[0]
	}

	overrides := map[string]*string{
		"method":        &fields.Method,
		"url":           &fields.URL,
		"headers":       &fields.Headers,
		"body":          &fields.Body,
		"status":        &fields.StatusCode,
		"response-body": &fields.ResponseBody,
		"auth":          &fields.AuthType,
	}
	values := map[string]string{
		"method":        o.fields.Method,
		"url":           o.fields.URL,
		"headers":       o.fields.Headers,
		"body":          o.fields.Body,
		"status":        o.fields.StatusCode,
		"response-body": o.fields.ResponseBody,
		"auth":          o.fields.AuthType,
	}
	for name, target := range overrides {
		if cmd.Flags().Changed(name) {
			*target = values[name]
		}
	}
	return fields, nil
}

func (o *debugOptions) run(cmd *cobra.Command, args []string) error {
	fields, err := o.resolveFields(cmd, args)
	if err != nil {
		return err
	}

	client, s, zapLogger, err := o.client()
	if err != nil {
		return err
	}
	defer zapLogger.Sync()

	if o.human() {
		printHeader(o.errOut, fields)
	}

	debugger := service.NewDebugger(client, s, zapLogger)
	if o.human() {
		sp := spinner.New(spinner.CharSets[11], 100*time.Millisecond, spinner.WithWriter(o.errOut))
		sp.Suffix = " " + render.ProgressText
		debugger.Observe(func(state service.State) {
			if state.Phase == service.PhaseInFlight {
				sp.Start()
				return
			}
			sp.Stop()
		})
	}

	state := debugger.Submit(cmd.Context(), fields)
	if err := formatter.DisplayState(o.out, state, o.outputFormat, o.verbose); err != nil {
		return err
	}
	if state.Phase == service.PhaseFailed {
		return ErrDiagnosisFailed
	}
	return nil
}

func printHeader(w io.Writer, fields form.Fields) {
	cyan := color.New(color.FgCyan, color.Bold)
	fmt.Fprintln(w)
	cyan.Fprintln(w, "API Integration Debugger")
	fmt.Fprintf(w, "Issue: %s\n", fields.Issue)
	if strings.TrimSpace(fields.URL) != "" {
		fmt.Fprintf(w, "Request: %s %s\n", fields.Method, fields.URL)
	}
	if strings.TrimSpace(fields.StatusCode) != "" {
		fmt.Fprintf(w, "Status: %s\n", fields.StatusCode)
	}
}
