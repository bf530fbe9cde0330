package calc

import (
	"strconv"
	"testing"

	"github.com/dhamidi/combi/diag"
	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenKinds(t *testing.T, text string) []TokenKind {
	t.Helper()
	lex := parse.NewLexer[TokenKind](span.New(text), Scanner)
	var got []TokenKind
	for !lex.AtEnd() {
		tok, err := lex.Next()
		require.NoError(t, err)
		got = append(got, tok.Kind)
	}
	return got
}

func TestScanner(t *testing.T) {
	tests := []struct {
		input string
		want  []TokenKind
	}{
		{"x1 = 2.5e3;", []TokenKind{TokenIdent, TokenWhitespace, TokenAssign, TokenWhitespace, TokenNumber, TokenSemicolon}},
		{"# note\n-.5", []TokenKind{TokenComment, TokenWhitespace, TokenMinus, TokenNumber}},
		{"max(a,b)", []TokenKind{TokenIdent, TokenLParen, TokenIdent, TokenComma, TokenIdent, TokenRParen}},
		{"1e", []TokenKind{TokenNumber, TokenIdent}},
		{"*/+", []TokenKind{TokenStar, TokenSlash, TokenPlus}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, tokenKinds(t, tt.input))
		})
	}
}

func TestParseExpr(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"--x / 4", "((-(-x)) / 4)"},
		{"max(1, abs(-2), y)", "max(1, abs((-2)), y)"},
		{"f()", "f()"},
		{"  2.5e1 # trailing", "25"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			e, err := ParseExpr(span.New(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.String())
		})
	}
}

func TestParseExprSpans(t *testing.T) {
	e, err := ParseExpr(span.New("a + f(b,\n  c)"))
	require.NoError(t, err)
	bin := e.(*Binary)
	assert.Equal(t, "a + f(b,\n  c)", bin.Span().Text())
	assert.Equal(t, "f(b,\n  c)", bin.Right.Span().Text())
	assert.Equal(t, 1, bin.Right.Span().End.Page.Line)
}

func TestParseExprErrors(t *testing.T) {
	tests := []struct {
		input string
		kind  parse.Kind
		label string
		at    int
	}{
		{"1 +", parse.KindUnexpectedEnd, "expected expression", 3},
		{"1 + )", parse.KindUnexpected, "expected expression, found ')'", 4},
		{"(1 + 2", parse.KindUnexpectedEnd, "expected ')'", 6},
		{"1 2", parse.KindExpectedEnd, "unexpected number", 2},
		{"1 $ 2", parse.KindUnrecognized, "symbol not recognized", 2},
		{"1e999", parse.KindValidation, "strconv.ParseFloat: parsing \"1e999\": value out of range", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := ParseExpr(span.New(tt.input))
			require.Error(t, err)
			var perr *parse.Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.kind, perr.Kind)
			assert.Equal(t, tt.label, perr.Label)
			assert.Equal(t, tt.at, perr.Span.Start.Byte)
		})
	}
}

func TestParseGroupContext(t *testing.T) {
	_, err := ParseExpr(span.New("(1 + )"))
	require.Error(t, err)
	d := err.(*parse.Error).DiagnosticWithCauses()
	assert.Equal(t, "unexpected token", d.Message)
	assert.Equal(t, []string{"in parenthesized expression at (0:5-0:6, bytes 5-6)"}, d.Notes)
}

func TestParseProgram(t *testing.T) {
	prog, diags, err := Parse(span.New("x = 4;\n# comment\ny = x * 2;\nmax(x, y)"))
	require.NoError(t, err)
	assert.Empty(t, diags)
	require.Len(t, prog.Statements, 3)
	assert.Equal(t, "x = 4;\ny = (x * 2);\nmax(x, y);\n", prog.String())
	assert.Equal(t, "y = x * 2", prog.Statements[1].At.Text())
}

func TestParseRecovers(t *testing.T) {
	text := "a = 1;\nb = ;\nc = min(a, ?, 2);\nd = a 3;\ne = 5"
	prog, diags, err := Parse(span.New(text))
	require.NoError(t, err)
	require.Len(t, prog.Statements, 5)
	require.Len(t, diags, 3)

	assert.Equal(t, "expected expression, found ';'", diags[0].Label)
	assert.Equal(t, 1, diags[0].Span.Start.Page.Line)

	assert.Equal(t, parse.KindUnrecognized, diags[1].Kind)
	assert.Equal(t, "?", diags[1].Span.Text())
	assert.Equal(t, "in call arguments", diags[1].DiagnosticWithCauses().Notes[0][:len("in call arguments")])

	assert.Equal(t, parse.KindBoundary, diags[2].Kind)
	assert.Equal(t, "expected a delimiter, found number", diags[2].Label)

	assert.True(t, prog.Statements[0].Valid())
	assert.False(t, prog.Statements[1].Valid())
	assert.Equal(t, "c = min(a, <error>, 2)", prog.Statements[2].String())
	assert.False(t, prog.Statements[2].Valid())
	assert.False(t, prog.Statements[3].Valid())
	assert.Equal(t, "e = 5", prog.Statements[4].String())
}

func TestDiagnosticRendering(t *testing.T) {
	_, diags, err := Parse(span.New("x = 1;\ny = (x +;\n"))
	require.NoError(t, err)
	require.Len(t, diags, 1)

	want := "error: unexpected token\n" +
		" --> (1:8-1:9, bytes 15-16)\n" +
		"  | \n" +
		"1 | y = (x +;\n" +
		"  |         ^ expected expression, found ';'\n"
	assert.Equal(t, want, diag.String(diags[0].Diagnostic()))
}

func TestEval(t *testing.T) {
	prog, diags, err := Parse(span.New("x = 3; y = -x * 2 + 1; min(x, y, 10) / 2; abs(y)"))
	require.NoError(t, err)
	require.Empty(t, diags)

	env := Env{}
	out, err := Eval(prog, env)
	require.NoError(t, err)

	var got []string
	for _, o := range out {
		got = append(got, o.String())
	}
	assert.Equal(t, []string{"x = 3", "y = -5", "-2.5", "5"}, got)
	assert.Equal(t, Env{"x": 3, "y": -5}, env)
}

func TestEvalErrors(t *testing.T) {
	tests := []struct {
		input   string
		message string
		label   string
		text    string
	}{
		{"1 + z", "undefined variable z", "not assigned before use", "z"},
		{"x = 0; 4 / (x * 2)", "division by zero", "this evaluates to 0", "x * 2"},
		{"pow(2, 3)", "unknown function pow", "expected one of abs, max, min", "pow(2, 3)"},
		{"abs(1, 2)", "wrong number of arguments to abs", "found 2, expected 1", "abs(1, 2)"},
		{"min()", "wrong number of arguments to min", "found 0, expected at least 1", "min()"},
		{"1; 2 3", "cannot evaluate a statement with syntax errors", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			prog, _, err := Parse(span.New(tt.input))
			require.NoError(t, err)
			_, err = Eval(prog, Env{})
			require.Error(t, err)
			perr := err.(*parse.Error)
			assert.Equal(t, tt.message, perr.Message)
			assert.Equal(t, tt.label, perr.Label)
			assert.Equal(t, tt.text, perr.Span.Text())
		})
	}
}

func TestOutputString(t *testing.T) {
	assert.Equal(t, strconv.FormatFloat(0.1+0.2, 'g', -1, 64), Output{Value: 0.1 + 0.2}.String())
	assert.Equal(t, "n = 1e+21", Output{Target: "n", Value: 1e21}.String())
}
