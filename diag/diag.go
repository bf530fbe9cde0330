// Package diag renders parse errors against their source text in a compact,
// rustc-like multi-line layout.
package diag

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dhamidi/combi/span"
	"github.com/fatih/color"
)

// Diagnostic is a message attached to a span of source text.
type Diagnostic struct {
	Message string
	Label   string
	Span    span.Span
	Notes   []string
}

type Option func(*Renderer)

// WithColor enables or disables ANSI colours. Colours are off by default so
// that the output is stable plain text.
func WithColor(enabled bool) Option {
	return func(r *Renderer) {
		r.color = enabled
	}
}

// Renderer formats diagnostics.
type Renderer struct {
	color  bool
	header *color.Color
	accent *color.Color
	gutter *color.Color
}

func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		header: color.New(color.FgRed, color.Bold),
		accent: color.New(color.FgRed),
		gutter: color.New(color.FgBlue, color.Bold),
	}
	for _, opt := range opts {
		opt(r)
	}
	for _, c := range []*color.Color{r.header, r.accent, r.gutter} {
		if r.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return r
}

// Render writes d to w using a plain renderer.
func Render(w io.Writer, d Diagnostic) error {
	return NewRenderer().Render(w, d)
}

// String renders d as plain text.
func String(d Diagnostic) string {
	return NewRenderer().String(d)
}

func (r *Renderer) String(d Diagnostic) string {
	var b strings.Builder
	r.write(&b, d)
	return b.String()
}

func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	_, err := io.WriteString(w, r.String(d))
	return err
}

func (r *Renderer) write(b *strings.Builder, d Diagnostic) {
	sp := d.Span
	startLine, endLine := sp.Start.Page.Line, sp.End.Page.Line
	width := len(strconv.Itoa(endLine))
	pad := strings.Repeat(" ", width)
	bar := r.gutter.Sprint(pad + " |")

	fmt.Fprintf(b, "%s: %s\n", r.header.Sprint("error"), d.Message)
	fmt.Fprintf(b, "%s%s %s\n", pad, r.gutter.Sprint("-->"), sp)
	fmt.Fprintf(b, "%s \n", bar)

	var lines []string
	for piece := range sp.WidenToLine().SplitLines() {
		lines = append(lines, strings.TrimRight(piece.Text(), "\r\n"))
	}

	number := func(n int) string {
		return r.gutter.Sprint(fmt.Sprintf("%*d |", width, n))
	}

	if startLine == endLine || len(lines) < 2 {
		text := ""
		if len(lines) > 0 {
			text = lines[0]
		}
		fmt.Fprintf(b, "%s %s\n", number(startLine), text)
		carets := sp.End.Page.Column - sp.Start.Page.Column
		if carets < 1 {
			carets = 1
		}
		marker := strings.Repeat(" ", sp.Start.Page.Column) + r.accent.Sprint(strings.Repeat("^", carets))
		fmt.Fprintf(b, "%s %s%s\n", bar, marker, r.label(d.Label))
	} else {
		for i, text := range lines {
			line := startLine + i
			switch {
			case i == 0:
				fmt.Fprintf(b, "%s %s %s\n", number(line), r.accent.Sprint("/"), text)
			case i == len(lines)-1:
				fmt.Fprintf(b, "%s %s %s\n", number(line), r.accent.Sprint("|"), text)
			default:
				fmt.Fprintf(b, "%s %s  %s\n", number(line), r.accent.Sprint("|"), text)
			}
		}
		tail := r.accent.Sprint("|" + strings.Repeat("_", sp.End.Page.Column) + "^")
		fmt.Fprintf(b, "%s %s%s\n", bar, tail, r.label(d.Label))
	}

	for _, note := range d.Notes {
		fmt.Fprintf(b, "%s = note: %s\n", pad, note)
	}
}

func (r *Renderer) label(label string) string {
	if label == "" {
		return ""
	}
	return " " + r.accent.Sprint(label)
}
