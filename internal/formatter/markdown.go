package formatter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM)).Parser()

// Markdown renders markdown for the terminal, styling it with ANSI colors.
// Every output line starts with indent. Raw HTML is dropped.
func Markdown(src, indent string) string {
	source := []byte(src)
	t := &terminal{
		source:  source,
		bold:    color.New(color.Bold).SprintFunc(),
		italic:  color.New(color.Italic).SprintFunc(),
		code:    color.New(color.FgYellow).SprintFunc(),
		heading: color.New(color.FgCyan, color.Bold, color.Underline).SprintFunc(),
		link:    color.New(color.FgBlue, color.Underline).SprintFunc(),
	}

	var lines []string
	t.blocks(markdownParser.Parse(text.NewReader(source)), indent, true, &lines)
	return strings.Join(lines, "\n")
}

type terminal struct {
	source []byte

	bold, italic, code, heading, link func(a ...interface{}) string
}

func (t *terminal) blocks(parent ast.Node, prefix string, top bool, out *[]string) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		t.block(n, prefix, top, out)
	}
}

func (t *terminal) block(n ast.Node, prefix string, top bool, out *[]string) {
	switch n := n.(type) {
	case *ast.Heading:
		t.separate(out, top)
		t.lines(out, prefix, t.heading(t.inlines(n)))
	case *ast.Paragraph:
		t.separate(out, top)
		t.lines(out, prefix, t.inlines(n))
	case *ast.TextBlock:
		t.lines(out, prefix, t.inlines(n))
	case *ast.List:
		t.separate(out, top)
		number := n.Start
		for item := n.FirstChild(); item != nil; item = item.NextSibling() {
			marker := "• "
			if n.IsOrdered() {
				marker = fmt.Sprintf("%d. ", number)
				number++
			}
			pad := strings.Repeat(" ", utf8.RuneCountInString(marker))

			var sub []string
			t.blocks(item, "", false, &sub)
			for i, line := range sub {
				if i == 0 {
					line = marker + line
				} else {
					line = pad + line
				}
				*out = append(*out, prefix+line)
			}
		}
	case *ast.FencedCodeBlock, *ast.CodeBlock:
		t.separate(out, top)
		segments := n.Lines()
		for i := 0; i < segments.Len(); i++ {
			seg := segments.At(i)
			line := strings.TrimRight(string(seg.Value(t.source)), "\r\n")
			*out = append(*out, prefix+"  "+t.code(line))
		}
	case *ast.Blockquote:
		t.separate(out, top)
		t.blocks(n, prefix+"│ ", false, out)
	case *ast.ThematicBreak:
		t.separate(out, top)
		*out = append(*out, prefix+strings.Repeat("─", 40))
	case *ast.HTMLBlock:
	case *east.TableHeader, *east.TableRow:
		var cells []string
		for cell := n.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, t.inlines(cell))
		}
		row := strings.Join(cells, " │ ")
		if _, ok := n.(*east.TableHeader); ok {
			t.separate(out, top)
			row = t.bold(row)
		}
		*out = append(*out, prefix+row)
	default:
		if c := n.FirstChild(); c != nil && c.Type() == ast.TypeInline {
			t.lines(out, prefix, t.inlines(n))
			return
		}
		t.blocks(n, prefix, top, out)
	}
}

func (t *terminal) inlines(parent ast.Node) string {
	var b strings.Builder
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		b.WriteString(t.inline(n))
	}
	return b.String()
}

func (t *terminal) inline(n ast.Node) string {
	switch n := n.(type) {
	case *ast.Text:
		s := string(n.Segment.Value(t.source))
		if n.SoftLineBreak() || n.HardLineBreak() {
			s += "\n"
		}
		return s
	case *ast.String:
		return string(n.Value)
	case *ast.CodeSpan:
		return t.code(t.inlines(n))
	case *ast.Emphasis:
		if n.Level >= 2 {
			return t.bold(t.inlines(n))
		}
		return t.italic(t.inlines(n))
	case *ast.Link:
		label := t.inlines(n)
		dest := string(n.Destination)
		if label == "" || label == dest {
			return t.link(dest)
		}
		return label + " (" + t.link(dest) + ")"
	case *ast.AutoLink:
		return t.link(string(n.URL(t.source)))
	case *ast.RawHTML:
		return ""
	default:
		return t.inlines(n)
	}
}

// lines appends s split on newlines, each prefixed.
func (t *terminal) lines(out *[]string, prefix, s string) {
	for _, line := range strings.Split(s, "\n") {
		*out = append(*out, prefix+line)
	}
}

// separate puts a blank line between top-level blocks.
func (t *terminal) separate(out *[]string, top bool) {
	if top && len(*out) > 0 && (*out)[len(*out)-1] != "" {
		*out = append(*out, "")
	}
}
