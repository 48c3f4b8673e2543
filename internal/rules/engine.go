// Package rules provides rule-based diagnosis of common API integration failures.
package rules

import (
	"github.com/api-debugger/internal/domain"
	"go.uber.org/zap"
)

// DefaultThreshold is the minimum confidence a match needs to be used.
const DefaultThreshold = 0.8

// Match is a rule that matched a request.
type Match struct {
	// RuleID is the unique identifier of the matched rule.
	RuleID string

	// Confidence indicates how confident the rule match is (0.0 - 1.0).
	Confidence float64

	// Response is the canned diagnosis from the rule.
	Response *domain.DiagnosticResponse
}

// Engine applies rules to diagnostic requests.
type Engine struct {
	rules               []*Rule
	confidenceThreshold float64
	logger              *zap.Logger
}

// NewEngine creates a new rule engine with the provided configuration.
func NewEngine(rules []*Rule, confidenceThreshold float64, logger *zap.Logger) *Engine {
	return &Engine{
		rules:               rules,
		confidenceThreshold: confidenceThreshold,
		logger:              logger.Named("rule_engine"),
	}
}

// Analyze applies all rules to the request and returns matches in rule order.
func (e *Engine) Analyze(req *domain.DiagnosticRequest) []Match {
	var matches []Match

	for _, rule := range e.rules {
		if rule.Match(req) {
			e.logger.Debug("rule matched",
				zap.String("rule_id", rule.ID),
				zap.Float64("confidence", rule.Confidence),
			)

			matches = append(matches, Match{
				RuleID:     rule.ID,
				Confidence: rule.Confidence,
				Response:   rule.Response,
			})
		}
	}

	return matches
}

// GetBestMatch returns the highest confidence match that reaches the threshold.
// Ties go to the earlier rule. Returns nil if no match reaches the threshold.
func (e *Engine) GetBestMatch(matches []Match) *Match {
	var best *Match
	for i := range matches {
		match := &matches[i]
		if match.Confidence < e.confidenceThreshold {
			continue
		}
		if best == nil || match.Confidence > best.Confidence {
			best = match
		}
	}

	return best
}

// Diagnose returns a copy of the best rule's diagnosis, or a generic one
// when nothing matches well enough.
func (e *Engine) Diagnose(req *domain.DiagnosticRequest) *domain.DiagnosticResponse {
	best := e.GetBestMatch(e.Analyze(req))
	if best == nil {
		return unknownDiagnosis(req)
	}

	resp := *best.Response
	resp.AnalysisResults = make(map[string]any, len(best.Response.AnalysisResults)+1)
	for k, v := range best.Response.AnalysisResults {
		resp.AnalysisResults[k] = v
	}
	resp.AnalysisResults["confidence"] = best.Confidence
	return &resp
}

func unknownDiagnosis(req *domain.DiagnosticRequest) *domain.DiagnosticResponse {
	analysis := map[string]any{
		"category": "unknown",
	}
	if req.APIResponse != nil {
		analysis["status_code"] = req.APIResponse.StatusCode
	}
	return &domain.DiagnosticResponse{
		RootCause: "No known failure pattern matched this request.",
		Solution: "Add the **status code** and **response body** to the form, " +
			"or disable mock mode to ask the diagnostic backend.",
		AnalysisResults: analysis,
		Status:          "success",
	}
}
