// Package formatter prints diagnostic results for the terminal client.
package formatter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/api-debugger/internal/render"
	"github.com/api-debugger/internal/service"
	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

// Formats lists the accepted --output values.
var Formats = []string{"human", "json", "yaml"}

// DisplayState prints the state of a finished submission.
func DisplayState(w io.Writer, state service.State, format string, verbose bool) error {
	view := render.Render(state)
	switch format {
	case "json":
		return displayJSON(w, stateOutput{State: state, View: view})
	case "yaml":
		return displayYAML(w, stateOutput{State: state, View: view})
	case "human":
		fallthrough
	default:
		displayHuman(w, view, verbose)
	}
	return nil
}

// Display prints any value, using YAML for human output.
func Display(w io.Writer, v any, format string) error {
	if format == "json" {
		return displayJSON(w, v)
	}
	return displayYAML(w, v)
}

// DisplayRaw prints a JSON payload passed through from the backend.
func DisplayRaw(w io.Writer, raw json.RawMessage, format string) error {
	if format == "json" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			fmt.Fprintln(w, string(raw))
			return nil
		}
		fmt.Fprintln(w, buf.String())
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		fmt.Fprintln(w, string(raw))
		return nil
	}
	return displayYAML(w, decoded)
}

type stateOutput struct {
	State service.State `json:"state" yaml:"state"`
	View  render.View   `json:"view" yaml:"view"`
}

func displayJSON(w io.Writer, v any) error {
	output, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, string(output))
	return nil
}

func displayYAML(w io.Writer, v any) error {
	output, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Fprint(w, string(output))
	return nil
}

func displayHuman(w io.Writer, view render.View, verbose bool) {
	red := color.New(color.FgRed, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	cyan := color.New(color.FgCyan, color.Bold)
	white := color.New(color.FgWhite, color.Bold)

	fmt.Fprintln(w)

	if p := view.Placeholder; p != nil {
		white.Fprintln(w, p.Title)
		fmt.Fprintf(w, "   %s\n", p.Text)
		return
	}
	if p := view.Progress; p != nil {
		fmt.Fprintf(w, "   %s\n", p.Text)
		return
	}
	if e := view.Error; e != nil {
		red.Fprintln(w, "ERROR:")
		fmt.Fprintf(w, "   %s\n", e.Message)
		return
	}

	if view.Complete {
		green.Fprintln(w, "ANALYSIS COMPLETE")
		fmt.Fprintln(w)
	}

	if view.RootCause != nil {
		red.Fprintln(w, "ROOT CAUSE:")
		fmt.Fprintln(w, wrapText(*view.RootCause, 80, "   "))
		fmt.Fprintln(w)
	}

	if view.Solution != nil {
		cyan.Fprintln(w, "SOLUTION:")
		fmt.Fprintln(w, Markdown(view.Solution.Markdown, "   "))
		fmt.Fprintln(w)
	}

	if view.Analysis != nil && verbose {
		white.Fprintln(w, "DETAILED ANALYSIS:")
		for _, line := range strings.Split(view.Analysis.JSON, "\n") {
			fmt.Fprintf(w, "   %s\n", line)
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, strings.Repeat("─", 80))
	if view.Analysis != nil && !verbose {
		fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -v to include the detailed analysis"))
	}
	fmt.Fprintf(w, "%s\n", color.HiBlackString("Run with -o json or -o yaml for machine-readable output"))
}

func wrapText(text string, width int, indent string) string {
	var result strings.Builder
	lines := strings.Split(text, "\n")

	for _, line := range lines {
		words := strings.Fields(line)
		if len(words) == 0 {
			result.WriteString("\n")
			continue
		}

		currentLine := indent
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				result.WriteString(currentLine + "\n")
				currentLine = indent + word
			} else if currentLine == indent {
				currentLine += word
			} else {
				currentLine += " " + word
			}
		}

		if currentLine != indent {
			result.WriteString(currentLine + "\n")
		}
	}

	return strings.TrimSuffix(result.String(), "\n")
}
