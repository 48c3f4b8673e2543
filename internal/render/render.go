// Package render projects a diagnostic state onto display slots.
package render

import (
	"bytes"
	"encoding/json"
	"html/template"
	"strings"

	"github.com/api-debugger/internal/service"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

const (
	PlaceholderTitle = "Ready to Debug"
	PlaceholderText  = "Fill in the form and click Debug API to get AI-powered analysis"
	ProgressText     = "Analyzing your API issue..."
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Placeholder is shown before anything has been submitted.
type Placeholder struct {
	Title string `json:"title" yaml:"title"`
	Text  string `json:"text" yaml:"text"`
}

// Progress is shown while the backend call is outstanding.
type Progress struct {
	Text string `json:"text" yaml:"text"`
}

// ErrorBlock carries the failure message verbatim.
type ErrorBlock struct {
	Message string `json:"message" yaml:"message"`
}

// Solution keeps the markdown source next to its HTML rendering.
type Solution struct {
	Markdown string        `json:"markdown" yaml:"markdown"`
	HTML     template.HTML `json:"html" yaml:"-"`
}

// Analysis is the pretty-printed analysis payload, collapsed by default.
type Analysis struct {
	JSON      string `json:"json" yaml:"json"`
	Collapsed bool   `json:"collapsed" yaml:"collapsed"`
}

// View holds the slots for one state. A nil slot is not shown.
type View struct {
	Placeholder *Placeholder `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Progress    *Progress    `json:"progress,omitempty" yaml:"progress,omitempty"`
	Error       *ErrorBlock  `json:"error,omitempty" yaml:"error,omitempty"`
	RootCause   *string      `json:"root_cause,omitempty" yaml:"root_cause,omitempty"`
	Solution    *Solution    `json:"solution,omitempty" yaml:"solution,omitempty"`
	Analysis    *Analysis    `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Complete    bool         `json:"complete" yaml:"complete"`
}

// Render maps a state to its view. It has no side effects.
func Render(s service.State) View {
	switch s.Phase {
	case service.PhaseInFlight:
		return View{Progress: &Progress{Text: ProgressText}}
	case service.PhaseFailed:
		return View{Error: &ErrorBlock{Message: s.Message}}
	case service.PhaseSucceeded:
		return renderResponse(s)
	default:
		return View{Placeholder: &Placeholder{Title: PlaceholderTitle, Text: PlaceholderText}}
	}
}

func renderResponse(s service.State) View {
	v := View{Complete: true}
	resp := s.Response
	if resp == nil {
		return v
	}

	if strings.TrimSpace(resp.RootCause) != "" {
		rc := resp.RootCause
		v.RootCause = &rc
	}
	if strings.TrimSpace(resp.Solution) != "" {
		v.Solution = &Solution{
			Markdown: resp.Solution,
			HTML:     Markdown(resp.Solution),
		}
	}
	if len(resp.AnalysisResults) > 0 {
		if out, err := json.MarshalIndent(resp.AnalysisResults, "", "  "); err == nil {
			v.Analysis = &Analysis{JSON: string(out), Collapsed: true}
		}
	}
	return v
}

// Markdown converts markdown to HTML. Raw HTML in the source is not passed through.
func Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}
