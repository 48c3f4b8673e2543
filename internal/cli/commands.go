package cli

import (
	"fmt"
	"strings"

	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/form"
	"github.com/api-debugger/internal/formatter"
	"github.com/spf13/cobra"
)

func newExampleCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "example [KIND]",
		Short: "Show the canned scenarios or the fields of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return formatter.Display(opts.out, form.Examples(), opts.outputFormat)
			}
			fields, err := form.LoadExample(args[0])
			if err != nil {
				return err
			}
			return formatter.Display(opts.out, fields, opts.outputFormat)
		},
	}
}

func newHealthCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the diagnostic backend is up",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, zapLogger, err := opts.client()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			body, err := client.Health(cmd.Context())
			if err != nil {
				printError(opts.errOut, domain.UserMessage(err))
				return ErrDiagnosisFailed
			}
			return formatter.DisplayRaw(opts.out, body, opts.outputFormat)
		},
	}
}

func newTestRequestCmd(opts *globalOptions) *cobra.Command {
	var fields form.Fields

	cmd := &cobra.Command{
		Use:   "test-request",
		Short: "Ask the backend to replay a request and report what came back",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(fields.URL) == "" {
				return fmt.Errorf("--url is required")
			}
			req, err := form.Build(form.Fields{
				Issue:   "test request",
				Method:  fields.Method,
				URL:     fields.URL,
				Headers: fields.Headers,
				Body:    fields.Body,
			})
			if err != nil {
				return err
			}

			client, _, zapLogger, err := opts.client()
			if err != nil {
				return err
			}
			defer zapLogger.Sync()

			body, err := client.TestRequest(cmd.Context(), req.APIRequest)
			if err != nil {
				printError(opts.errOut, domain.UserMessage(err))
				return ErrDiagnosisFailed
			}
			return formatter.DisplayRaw(opts.out, body, opts.outputFormat)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&fields.Method, "method", "X", "GET", "HTTP method")
	f.StringVar(&fields.URL, "url", "", "URL to call")
	f.StringVarP(&fields.Headers, "headers", "H", "", "Request headers as a JSON object")
	f.StringVarP(&fields.Body, "body", "d", "", "Request body as JSON")

	return cmd
}
