package form

import (
	"encoding/json"
	"fmt"

	"github.com/api-debugger/internal/domain"
)

// Example identifies one of the canned failure scenarios.
type Example struct {
	Kind  string `json:"kind" yaml:"kind"`
	Label string `json:"label" yaml:"label"`
}

// Examples lists the canned scenarios in display order.
func Examples() []Example {
	return []Example{
		{Kind: "401", Label: "Auth Error"},
		{Kind: "400", Label: "Validation Error"},
		{Kind: "429", Label: "Rate Limit"},
	}
}

// LoadExample returns the fixed field values for a canned scenario.
// The result is identical on every call and replaces the whole form.
func LoadExample(kind string) (Fields, error) {
	switch kind {
	case "401":
		return Fields{
			Issue:        "Getting 401 Unauthorized error when trying to access the API",
			Method:       string(domain.MethodGet),
			URL:          "https://api.github.com/user",
			Headers:      indent(map[string]string{"Authorization": "Bearer expired_token_123"}),
			Body:         "",
			StatusCode:   "401",
			ResponseBody: indent(map[string]string{"message": "Bad credentials"}),
			AuthType:     string(domain.AuthBearer),
		}, nil
	case "400":
		return Fields{
			Issue:   "API returns 400 Bad Request with validation error",
			Method:  string(domain.MethodPost),
			URL:     "https://api.example.com/users",
			Headers: indent(map[string]string{"Content-Type": "application/json"}),
			Body: indentOrdered(
				[2]string{"name", `"John"`},
				[2]string{"age", `"twenty-five"`},
				[2]string{"email", `"invalid-email"`},
			),
			StatusCode:   "400",
			ResponseBody: indent(map[string]string{"error": "age must be integer, email format invalid"}),
			AuthType:     "",
		}, nil
	case "429":
		return Fields{
			Issue:        "Getting rate limited by the API",
			Method:       string(domain.MethodGet),
			URL:          "https://api.example.com/data",
			Headers:      indent(map[string]string{"X-API-Key": "my-key"}),
			Body:         "",
			StatusCode:   "429",
			ResponseBody: indent(map[string]string{"error": "Rate limit exceeded. Try again in 60 seconds"}),
			AuthType:     string(domain.AuthAPIKey),
		}, nil
	default:
		return Fields{}, fmt.Errorf("%w: %q", domain.ErrUnknownExample, kind)
	}
}

// indent renders a single-key object the way the form shows JSON: two-space indented.
func indent(v map[string]string) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// indentOrdered keeps key order, which encoding/json would sort for maps.
// Values must already be JSON encoded.
func indentOrdered(pairs ...[2]string) string {
	out := "{\n"
	for i, p := range pairs {
		key, _ := json.Marshal(p[0])
		out += "  " + string(key) + ": " + p[1]
		if i < len(pairs)-1 {
			out += ","
		}
		out += "\n"
	}
	return out + "}"
}
