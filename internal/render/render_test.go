package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/api-debugger/internal/domain"
	"github.com/api-debugger/internal/service"
)

func TestRender_Phases(t *testing.T) {
	tests := []struct {
		name            string
		state           service.State
		wantPlaceholder bool
		wantProgress    bool
		wantError       string
	}{
		{name: "idle", state: service.Idle(), wantPlaceholder: true},
		{name: "in flight", state: service.InFlight(nil), wantProgress: true},
		{
			name:      "failed",
			state:     service.Failed(nil, errors.New("Agent pipeline failed")),
			wantError: "Agent pipeline failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(tt.state)

			if (v.Placeholder != nil) != tt.wantPlaceholder {
				t.Errorf("placeholder = %v, want %v", v.Placeholder, tt.wantPlaceholder)
			}
			if (v.Progress != nil) != tt.wantProgress {
				t.Errorf("progress = %v, want %v", v.Progress, tt.wantProgress)
			}
			if tt.wantError == "" && v.Error != nil {
				t.Errorf("unexpected error slot %+v", v.Error)
			}
			if tt.wantError != "" && (v.Error == nil || v.Error.Message != tt.wantError) {
				t.Errorf("error slot = %+v, want %q", v.Error, tt.wantError)
			}
			if v.RootCause != nil || v.Solution != nil || v.Analysis != nil || v.Complete {
				t.Errorf("result slots must be empty outside succeeded: %+v", v)
			}
		})
	}
}

func TestRender_RoundTrip(t *testing.T) {
	v := Render(service.Succeeded(nil, &domain.DiagnosticResponse{
		RootCause:       "X",
		Solution:        "**Y**",
		AnalysisResults: map[string]any{"a": 1},
	}))

	if v.RootCause == nil || *v.RootCause != "X" {
		t.Errorf("root cause = %v", v.RootCause)
	}
	if v.Solution == nil || !strings.Contains(string(v.Solution.HTML), "<strong>Y</strong>") {
		t.Errorf("solution = %+v", v.Solution)
	}
	if v.Analysis == nil || v.Analysis.JSON != "{\n  \"a\": 1\n}" {
		t.Errorf("analysis = %+v", v.Analysis)
	}
	if !v.Analysis.Collapsed {
		t.Error("analysis should start collapsed")
	}
	if !v.Complete {
		t.Error("complete badge missing")
	}
	if v.Placeholder != nil || v.Progress != nil || v.Error != nil {
		t.Errorf("non-result slots should be empty: %+v", v)
	}
}

func TestRender_EmptyFieldSuppression(t *testing.T) {
	tests := []struct {
		name          string
		resp          *domain.DiagnosticResponse
		wantRootCause bool
		wantSolution  bool
		wantAnalysis  bool
	}{
		{
			name:          "no solution",
			resp:          &domain.DiagnosticResponse{RootCause: "X", AnalysisResults: map[string]any{"a": 1}},
			wantRootCause: true,
			wantAnalysis:  true,
		},
		{
			name:         "blank root cause",
			resp:         &domain.DiagnosticResponse{RootCause: "  ", Solution: "fix it"},
			wantSolution: true,
		},
		{
			name:          "empty analysis map",
			resp:          &domain.DiagnosticResponse{RootCause: "X", AnalysisResults: map[string]any{}},
			wantRootCause: true,
		},
		{
			name: "nothing",
			resp: &domain.DiagnosticResponse{Status: "success"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Render(service.Succeeded(nil, tt.resp))
			if (v.RootCause != nil) != tt.wantRootCause {
				t.Errorf("root cause present = %v, want %v", v.RootCause != nil, tt.wantRootCause)
			}
			if (v.Solution != nil) != tt.wantSolution {
				t.Errorf("solution present = %v, want %v", v.Solution != nil, tt.wantSolution)
			}
			if (v.Analysis != nil) != tt.wantAnalysis {
				t.Errorf("analysis present = %v, want %v", v.Analysis != nil, tt.wantAnalysis)
			}
		})
	}
}

func TestMarkdown_NoRawHTML(t *testing.T) {
	out := string(Markdown("hello <script>alert(1)</script>"))
	if strings.Contains(out, "<script>") {
		t.Errorf("raw html passed through: %s", out)
	}
}
