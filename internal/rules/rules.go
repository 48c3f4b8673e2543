// Package rules provides rule-based diagnosis of common API integration failures.
// The rules back the offline mock backend: they recognise well-known
// status codes and error texts and answer with a canned diagnosis.
package rules

import (
	"regexp"
	"strings"

	"github.com/api-debugger/internal/domain"
)

// Rule represents a single diagnosis rule.
type Rule struct {
	// ID is the unique identifier for this rule.
	ID string

	// Name is a human-readable name for the rule.
	Name string

	// StatusCodes match api_response.status_code. Empty means any status.
	StatusCodes []int

	// AuthTypes restrict the rule to these auth types. Empty means any.
	AuthTypes []domain.AuthType

	// Keywords are simple string matches (case-insensitive) against the
	// issue description and response body.
	Keywords []string

	// Patterns are regex patterns matched against the same text.
	Patterns []*regexp.Regexp

	// Confidence is the confidence level when this rule matches (0.0-1.0).
	Confidence float64

	// Response is the canned diagnosis.
	Response *domain.DiagnosticResponse
}

// Match checks if the diagnostic request matches this rule.
// A rule with status codes matches on status; text is only consulted when
// no status was supplied. Rules without status codes match on text.
func (r *Rule) Match(req *domain.DiagnosticRequest) bool {
	if len(r.AuthTypes) > 0 {
		if req.AuthType == nil || !containsAuth(r.AuthTypes, *req.AuthType) {
			return false
		}
	}

	if len(r.StatusCodes) > 0 && req.APIResponse != nil {
		return containsInt(r.StatusCodes, req.APIResponse.StatusCode)
	}

	return r.matchText(searchText(req))
}

func (r *Rule) matchText(text string) bool {
	lower := strings.ToLower(text)

	// Check keywords first (faster)
	for _, kw := range r.Keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}

	for _, pattern := range r.Patterns {
		if pattern.MatchString(text) {
			return true
		}
	}

	return false
}

func searchText(req *domain.DiagnosticRequest) string {
	text := req.IssueDescription
	if req.APIResponse != nil {
		text += "\n" + req.APIResponse.Body
	}
	return text
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsAuth(list []domain.AuthType, v domain.AuthType) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// DefaultRules returns the built-in set of rules, most specific first.
func DefaultRules() []*Rule {
	return []*Rule{
		expiredBearerToken(),
		unauthorized(),
		forbidden(),
		validationFailure(),
		rateLimited(),
		notFound(),
		corsBlocked(),
		serverError(),
	}
}

func expiredBearerToken() *Rule {
	return &Rule{
		ID:          "expired_bearer_token",
		Name:        "Expired or Invalid Bearer Token",
		StatusCodes: []int{401},
		AuthTypes:   []domain.AuthType{domain.AuthBearer, domain.AuthOAuth2},
		Confidence:  0.95,
		Response: &domain.DiagnosticResponse{
			RootCause: "The bearer token sent in the Authorization header is expired, revoked or was issued for a different API.",
			Solution: "**Refresh the access token** and retry.\n\n" +
				"1. Request a new token from the issuer (or use the refresh token flow).\n" +
				"2. Send it as `Authorization: Bearer <token>` with exactly one space.\n" +
				"3. Check the token's `exp` claim and scopes before calling the API.",
			AnalysisResults: map[string]any{
				"category":    "authentication",
				"rule":        "expired_bearer_token",
				"auth_scheme": "bearer",
			},
			Status: "success",
		},
	}
}

func unauthorized() *Rule {
	return &Rule{
		ID:          "unauthorized",
		Name:        "Missing or Rejected Credentials",
		StatusCodes: []int{401},
		Keywords:    []string{"unauthorized", "bad credentials", "invalid api key"},
		Confidence:  0.85,
		Response: &domain.DiagnosticResponse{
			RootCause: "The API did not accept the credentials sent with the request, or no credentials were sent.",
			Solution: "**Send valid credentials** in the form the API expects.\n\n" +
				"- Confirm the header name (`Authorization`, `X-API-Key`, ...) against the API docs.\n" +
				"- Make sure the key belongs to the environment you are calling.",
			AnalysisResults: map[string]any{
				"category": "authentication",
				"rule":     "unauthorized",
			},
			Status: "success",
		},
	}
}

func forbidden() *Rule {
	return &Rule{
		ID:          "forbidden",
		Name:        "Insufficient Permissions",
		StatusCodes: []int{403},
		Keywords:    []string{"forbidden", "insufficient scope", "permission denied"},
		Confidence:  0.85,
		Response: &domain.DiagnosticResponse{
			RootCause: "The credentials were recognised but do not grant access to this resource.",
			Solution: "**Grant the missing permission or scope.**\n\n" +
				"- Request a token with the scopes listed for this endpoint.\n" +
				"- Check IP allow-lists and organisation policies.",
			AnalysisResults: map[string]any{
				"category": "authorization",
				"rule":     "forbidden",
			},
			Status: "success",
		},
	}
}

func validationFailure() *Rule {
	return &Rule{
		ID:          "validation_failure",
		Name:        "Request Validation Failure",
		StatusCodes: []int{400, 422},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)\b(validation|invalid|must be|required field)\b`),
		},
		Confidence: 0.8,
		Response: &domain.DiagnosticResponse{
			RootCause: "The request body does not match the schema the API expects.",
			Solution: "**Fix the payload to match the schema.**\n\n" +
				"- Send numbers as numbers, not strings (e.g. `\"age\": 25`).\n" +
				"- Validate formats such as email addresses before sending.\n" +
				"- Set `Content-Type: application/json` when sending JSON.",
			AnalysisResults: map[string]any{
				"category": "validation",
				"rule":     "validation_failure",
			},
			Status: "success",
		},
	}
}

func rateLimited() *Rule {
	return &Rule{
		ID:          "rate_limited",
		Name:        "Rate Limit Exceeded",
		StatusCodes: []int{429},
		Keywords:    []string{"rate limit", "too many requests", "throttl"},
		Confidence:  0.95,
		Response: &domain.DiagnosticResponse{
			RootCause: "The client exceeded the API's request quota for the current window.",
			Solution: "**Back off and retry later.**\n\n" +
				"1. Honour the `Retry-After` header when present.\n" +
				"2. Add exponential backoff with jitter to the client.\n" +
				"3. Cache responses or batch calls to reduce volume.",
			AnalysisResults: map[string]any{
				"category": "rate_limiting",
				"rule":     "rate_limited",
			},
			Status: "success",
		},
	}
}

func notFound() *Rule {
	return &Rule{
		ID:          "not_found",
		Name:        "Resource or Route Not Found",
		StatusCodes: []int{404},
		Keywords:    []string{"not found", "no route"},
		Confidence:  0.8,
		Response: &domain.DiagnosticResponse{
			RootCause: "The URL does not resolve to a resource: the path, API version or identifier is wrong.",
			Solution: "**Check the URL.**\n\n" +
				"- Compare the path and version prefix with the API reference.\n" +
				"- Make sure the resource id exists in this environment.",
			AnalysisResults: map[string]any{
				"category": "routing",
				"rule":     "not_found",
			},
			Status: "success",
		},
	}
}

func corsBlocked() *Rule {
	return &Rule{
		ID:       "cors_blocked",
		Name:     "Blocked by CORS Policy",
		Keywords: []string{"cors", "access-control-allow-origin"},
		Patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)blocked by cors policy`),
		},
		Confidence: 0.9,
		Response: &domain.DiagnosticResponse{
			RootCause: "The browser blocked the response because the API did not allow this origin.",
			Solution: "**Allow the origin on the server** or call the API from a backend.\n\n" +
				"- Return `Access-Control-Allow-Origin` for your origin.\n" +
				"- Answer preflight `OPTIONS` requests with the allowed methods and headers.",
			AnalysisResults: map[string]any{
				"category": "cors",
				"rule":     "cors_blocked",
			},
			Status: "success",
		},
	}
}

func serverError() *Rule {
	return &Rule{
		ID:          "server_error",
		Name:        "Upstream Server Error",
		StatusCodes: []int{500, 502, 503, 504},
		Keywords:    []string{"internal server error", "bad gateway", "service unavailable", "gateway timeout"},
		Confidence:  0.8,
		Response: &domain.DiagnosticResponse{
			RootCause: "The API failed while handling the request; the problem is most likely on the server side.",
			Solution: "**Retry with backoff and contact the provider if it persists.**\n\n" +
				"- Check the provider's status page.\n" +
				"- Capture the request id from the response headers for support.",
			AnalysisResults: map[string]any{
				"category": "server",
				"rule":     "server_error",
			},
			Status: "success",
		},
	}
}
