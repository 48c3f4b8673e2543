// Package sanitizer masks credentials in API request data before it is logged or displayed.
package sanitizer

import (
	"regexp"
	"strings"
)

// Sanitizer masks secrets and enforces a size limit on logged text.
type Sanitizer struct {
	patterns []*regexp.Regexp
	maxSize  int
}

// Pattern definitions for credentials that commonly appear in API requests.
var defaultPatterns = []*regexp.Regexp{
	// Authorization header values
	regexp.MustCompile(`(?i)(bearer\s+)[a-zA-Z0-9_\-\.=~+/]+`),
	regexp.MustCompile(`(?i)(basic\s+)[a-zA-Z0-9+/=]{8,}`),

	// API keys in JSON, headers or query strings
	regexp.MustCompile(`(?i)"?(x-api-key|api[_-]?key|apikey)"?\s*[:=]\s*"?([a-zA-Z0-9_\-]{4,})"?`),
	regexp.MustCompile(`(?i)"?(client[_-]?secret|secret[_-]?key)"?\s*[:=]\s*"?([a-zA-Z0-9_\-]{8,})"?`),

	// OAuth tokens in query strings and bodies
	regexp.MustCompile(`(?i)(access_token|refresh_token|id_token)=([^&\s"]+)`),
	regexp.MustCompile(`(?i)"(access_token|refresh_token|id_token)"\s*:\s*"([^"]+)"`),

	// Passwords
	regexp.MustCompile(`(?i)"?(password|passwd|pwd)"?\s*[:=]\s*"?([^\s"',}]{4,})"?`),

	// Credentials embedded in URLs
	regexp.MustCompile(`(?i)(https?)://[^/\s:@]+:[^/\s@]+@`),

	// Well-known token formats
	regexp.MustCompile(`gh[pousr]_[a-zA-Z0-9]{36}`),
	regexp.MustCompile(`(?i)AKIA[0-9A-Z]{16}`),
	regexp.MustCompile(`sk-[a-zA-Z0-9_\-]{20,}`),
	regexp.MustCompile(`xox[baprs]-[0-9a-zA-Z-]+`),

	// JWT tokens
	regexp.MustCompile(`eyJ[a-zA-Z0-9_-]*\.eyJ[a-zA-Z0-9_-]*\.[a-zA-Z0-9_-]*`),
}

// sensitiveHeaders are masked wholesale by MaskHeaders.
var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
}

// New creates a new Sanitizer with default patterns.
func New(maxSize int) *Sanitizer {
	return &Sanitizer{
		patterns: defaultPatterns,
		maxSize:  maxSize,
	}
}

// Mask trims s, truncates it to the size limit and masks secrets.
func (s *Sanitizer) Mask(text string) string {
	text = strings.TrimSpace(text)
	if s.maxSize > 0 && len(text) > s.maxSize {
		text = text[:s.maxSize] + "...[truncated]"
	}
	return s.maskSecrets(text)
}

// MaskHeaders returns a copy of headers with credential-bearing values redacted.
func (s *Sanitizer) MaskHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			out[k] = maskValue(v)
			continue
		}
		out[k] = s.maskSecrets(v)
	}
	return out
}

// CountSecrets returns how many secret-looking substrings text contains.
func (s *Sanitizer) CountSecrets(text string) int {
	n := 0
	for _, pattern := range s.patterns {
		n += len(pattern.FindAllStringIndex(text, -1))
	}
	return n
}

// maskSecrets replaces sensitive patterns with masked versions.
func (s *Sanitizer) maskSecrets(text string) string {
	result := text

	for _, pattern := range s.patterns {
		result = pattern.ReplaceAllStringFunc(result, maskValue)
	}

	return result
}

// maskValue creates a masked version of a matched secret, keeping the key or
// scheme so the log still says what was there.
func maskValue(match string) string {
	if len(match) <= 8 {
		return "[REDACTED]"
	}

	lower := strings.ToLower(match)
	for _, scheme := range []string{"bearer ", "basic "} {
		if strings.HasPrefix(lower, scheme) {
			return match[:len(scheme)] + "[REDACTED]"
		}
	}

	if idx := strings.Index(match, "://"); idx != -1 {
		return match[:idx+3] + "[REDACTED]@"
	}

	if idx := strings.IndexAny(match, ":="); idx != -1 {
		return match[:idx+1] + "[REDACTED]"
	}

	if len(match) > 10 {
		return match[:4] + "****" + match[len(match)-4:]
	}

	return "[REDACTED]"
}
