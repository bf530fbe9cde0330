package diag

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dhamidi/combi/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSingleLine(t *testing.T) {
	src := span.New("abcd")
	d := Diagnostic{
		Message: "unrecognized token",
		Label:   "symbol not recognized",
		Span:    src.SpanBytes(0, 4),
	}

	want := "error: unrecognized token\n" +
		" --> (0:0-0:4, bytes 0-4)\n" +
		"  | \n" +
		"0 | abcd\n" +
		"  | ^^^^ symbol not recognized\n"
	assert.Equal(t, want, String(d))
}

func TestRenderAlignsCaretsToColumn(t *testing.T) {
	src := span.New("let x = ;\n")
	d := Diagnostic{Message: "unexpected token", Label: "expected an expression", Span: src.SpanBytes(8, 9)}

	want := "error: unexpected token\n" +
		" --> (0:8-0:9, bytes 8-9)\n" +
		"  | \n" +
		"0 | let x = ;\n" +
		"  |         ^ expected an expression\n"
	assert.Equal(t, want, String(d))
}

func TestRenderZeroWidth(t *testing.T) {
	src := span.New("ab")
	d := Diagnostic{Message: "unexpected end of text", Label: "expected c", Span: src.SpanBytes(2, 2)}

	out := String(d)
	assert.True(t, strings.HasSuffix(out, "  |   ^ expected c\n"), out)
}

func TestRenderMultiLine(t *testing.T) {
	src := span.New("ab\ncd\nef")
	d := Diagnostic{Message: "unclosed group", Label: "here", Span: src.SpanBytes(1, 7)}

	want := "error: unclosed group\n" +
		" --> (0:1-2:1, bytes 1-7)\n" +
		"  | \n" +
		"0 | / ab\n" +
		"1 | |  cd\n" +
		"2 | | ef\n" +
		"  | |_^ here\n"
	assert.Equal(t, want, String(d))
}

func TestRenderGutterWidth(t *testing.T) {
	src := span.New(strings.Repeat("x\n", 10) + "bad")
	start := src.Len() - 3
	d := Diagnostic{Message: "oops", Span: src.SpanBytes(start, start+3)}

	want := "error: oops\n" +
		"  --> (10:0-10:3, bytes 20-23)\n" +
		"   | \n" +
		"10 | bad\n" +
		"   | ^^^\n"
	assert.Equal(t, want, String(d))
}

func TestRenderNotes(t *testing.T) {
	src := span.New("abcd")
	d := Diagnostic{Message: "m", Label: "l", Span: src.SpanBytes(1, 2), Notes: []string{"first", "second"}}

	out := String(d)
	assert.Contains(t, out, "  = note: first\n")
	assert.True(t, strings.HasSuffix(out, "  = note: second\n"))
}

func TestRenderColor(t *testing.T) {
	src := span.New("abcd")
	d := Diagnostic{Message: "m", Label: "l", Span: src.SpanBytes(0, 1)}

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(WithColor(true)).Render(&buf, d))
	assert.Contains(t, buf.String(), "\x1b[")
	assert.NotContains(t, String(d), "\x1b[")
}
