// Package domain contains the core domain models and types.
// These models describe the exchange with the diagnostic backend and are
// independent of any transport or presentation concerns.
package domain

import "strings"

// HTTPMethod is the method of the API call being diagnosed.
type HTTPMethod string

const (
	MethodGet    HTTPMethod = "GET"
	MethodPost   HTTPMethod = "POST"
	MethodPut    HTTPMethod = "PUT"
	MethodPatch  HTTPMethod = "PATCH"
	MethodDelete HTTPMethod = "DELETE"
)

// Methods lists the methods accepted by the debug form, in display order.
var Methods = []HTTPMethod{MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete}

// IsValid checks if the method is one of the supported values.
func (m HTTPMethod) IsValid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	default:
		return false
	}
}

// ParseMethod normalizes user input into an HTTPMethod. Blank input means GET.
func ParseMethod(s string) HTTPMethod {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return MethodGet
	}
	return HTTPMethod(s)
}

// AuthType is the authentication scheme used by the API being diagnosed.
type AuthType string

const (
	AuthBearer AuthType = "bearer"
	AuthAPIKey AuthType = "api_key"
	AuthOAuth2 AuthType = "oauth2"
	AuthBasic  AuthType = "basic"
)

// AuthTypes lists the selectable auth types with their display labels.
var AuthTypes = []struct {
	Type  AuthType
	Label string
}{
	{AuthBearer, "Bearer Token"},
	{AuthAPIKey, "API Key"},
	{AuthOAuth2, "OAuth2"},
	{AuthBasic, "Basic Auth"},
}

// IsValid checks if the auth type is one of the supported values.
func (a AuthType) IsValid() bool {
	switch a {
	case AuthBearer, AuthAPIKey, AuthOAuth2, AuthBasic:
		return true
	default:
		return false
	}
}

// APIRequest describes the request the user made against their API.
type APIRequest struct {
	Method  HTTPMethod        `json:"method" yaml:"method" validate:"required,oneof=GET POST PUT PATCH DELETE"`
	URL     string            `json:"url" yaml:"url" validate:"required"`
	Headers map[string]string `json:"headers" yaml:"headers"`
	Body    any               `json:"body,omitempty" yaml:"body,omitempty"`
	Params  map[string]string `json:"params,omitempty" yaml:"params,omitempty"`
}

// APIResponse describes what the user's API answered.
type APIResponse struct {
	StatusCode int               `json:"status_code" yaml:"status_code" validate:"min=100,max=599"`
	Headers    map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Body       string            `json:"body" yaml:"body"`
	Error      string            `json:"error,omitempty" yaml:"error,omitempty"`
}

// DiagnosticRequest is the unit of work sent to the diagnostic backend.
// Optional members are omitted from the wire when absent.
type DiagnosticRequest struct {
	IssueDescription string            `json:"issue_description" yaml:"issue_description" validate:"required"`
	APIRequest       *APIRequest       `json:"api_request,omitempty" yaml:"api_request,omitempty"`
	APIResponse      *APIResponse      `json:"api_response,omitempty" yaml:"api_response,omitempty"`
	OpenAPISpec      any               `json:"openapi_spec,omitempty" yaml:"openapi_spec,omitempty"`
	AuthType         *AuthType         `json:"auth_type,omitempty" yaml:"auth_type,omitempty" validate:"omitempty,oneof=bearer api_key oauth2 basic"`
	AuthCredentials  map[string]string `json:"auth_credentials,omitempty" yaml:"auth_credentials,omitempty"`
}

// DiagnosticResponse is the diagnosis returned by the backend.
type DiagnosticResponse struct {
	// RootCause is plain text; empty means "not rendered".
	RootCause string `json:"root_cause,omitempty" yaml:"root_cause,omitempty"`

	// Solution is markdown.
	Solution string `json:"solution,omitempty" yaml:"solution,omitempty"`

	// AnalysisResults is shown verbatim for inspection.
	AnalysisResults map[string]any `json:"analysis_results,omitempty" yaml:"analysis_results,omitempty"`

	Status string `json:"status" yaml:"status"`
}
