// Package form turns the raw debug form fields into a DiagnosticRequest.
//
// Inclusion rules:
//   - api_request is present iff a URL was supplied
//   - api_response is present iff a status code was supplied
//   - auth_type is present iff an auth type was selected
//
// Malformed headers or body text is a validation error and the request is never built.
package form

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/api-debugger/internal/domain"
	"github.com/go-playground/validator/v10"
)

// Fields holds the raw, user-typed values of the debug form.
type Fields struct {
	Issue        string `json:"issue" yaml:"issue" form:"issue"`
	Method       string `json:"method" yaml:"method" form:"method"`
	URL          string `json:"url" yaml:"url" form:"url"`
	Headers      string `json:"headers" yaml:"headers" form:"headers"`
	Body         string `json:"body" yaml:"body" form:"body"`
	StatusCode   string `json:"status_code" yaml:"status_code" form:"status_code"`
	ResponseBody string `json:"response_body" yaml:"response_body" form:"response_body"`
	AuthType     string `json:"auth_type" yaml:"auth_type" form:"auth_type"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Build assembles a fresh DiagnosticRequest from the form fields.
func Build(f Fields) (*domain.DiagnosticRequest, error) {
	if strings.TrimSpace(f.Issue) == "" {
		return nil, domain.NewValidationError("issue", domain.ErrEmptyIssue)
	}

	req := &domain.DiagnosticRequest{
		IssueDescription: f.Issue,
	}

	if strings.TrimSpace(f.URL) != "" {
		apiReq, err := buildAPIRequest(f)
		if err != nil {
			return nil, err
		}
		req.APIRequest = apiReq
	}

	if strings.TrimSpace(f.StatusCode) != "" {
		code, err := strconv.Atoi(strings.TrimSpace(f.StatusCode))
		if err != nil {
			return nil, domain.NewValidationError("status_code", domain.ErrInvalidStatusCode)
		}
		req.APIResponse = &domain.APIResponse{
			StatusCode: code,
			Body:       f.ResponseBody,
		}
	}

	if strings.TrimSpace(f.AuthType) != "" {
		auth := domain.AuthType(strings.TrimSpace(f.AuthType))
		req.AuthType = &auth
	}

	if err := validate.Struct(req); err != nil {
		return nil, translate(err)
	}

	return req, nil
}

func buildAPIRequest(f Fields) (*domain.APIRequest, error) {
	apiReq := &domain.APIRequest{
		Method:  domain.ParseMethod(f.Method),
		URL:     strings.TrimSpace(f.URL),
		Headers: map[string]string{},
	}

	if strings.TrimSpace(f.Headers) != "" {
		if err := json.Unmarshal([]byte(f.Headers), &apiReq.Headers); err != nil {
			return nil, domain.NewValidationError("headers",
				fmt.Errorf("%w: %v", domain.ErrMalformedHeaders, err))
		}
		// "null" decodes into a nil map
		if apiReq.Headers == nil {
			return nil, domain.NewValidationError("headers", domain.ErrMalformedHeaders)
		}
	}

	if strings.TrimSpace(f.Body) != "" {
		var body any
		if err := json.Unmarshal([]byte(f.Body), &body); err != nil {
			return nil, domain.NewValidationError("body",
				fmt.Errorf("%w: %v", domain.ErrMalformedBody, err))
		}
		apiReq.Body = body
	}

	return apiReq, nil
}

// translate maps validator failures onto the domain sentinels.
func translate(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidationError("request", err)
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "IssueDescription":
		return domain.NewValidationError("issue", domain.ErrEmptyIssue)
	case "Method":
		return domain.NewValidationError("method",
			fmt.Errorf("%w: %v", domain.ErrInvalidMethod, fe.Value()))
	case "StatusCode":
		return domain.NewValidationError("status_code", domain.ErrInvalidStatusCode)
	case "AuthType":
		return domain.NewValidationError("auth_type",
			fmt.Errorf("%w: %v", domain.ErrInvalidAuthType, derefAuth(fe.Value())))
	default:
		return domain.NewValidationError(strings.ToLower(fe.Field()), fmt.Errorf("%s failed %q", fe.Field(), fe.Tag()))
	}
}

func derefAuth(v any) any {
	if p, ok := v.(*domain.AuthType); ok && p != nil {
		return *p
	}
	return v
}
