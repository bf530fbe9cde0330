package ebnfscan

import (
	"io"
	"strings"
	"testing"

	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tokens = `
Ident   = letter { letter | digit } .
Number  = digit { digit } [ "." digit { digit } ] .
Space   = " " { " " } .
Arrow   = "->" .
Minus   = "-" .
Keyword = "let" .
letter  = "a" … "z" | "_" .
digit   = "0" … "9" .
`

func load(t *testing.T, grammar string) *Scanner {
	t.Helper()
	s, err := Load("test.ebnf", strings.NewReader(grammar))
	require.NoError(t, err)
	return s
}

type token struct {
	Kind string
	Text string
}

func scanAll(t *testing.T, s *Scanner, text string) []token {
	t.Helper()
	lex := parse.NewLexer[string](span.New(text), s, parse.WithFilter(func(k string) bool { return k != "Space" }))
	var got []token
	for {
		tok, err := lex.Next()
		if err == io.EOF {
			return got
		}
		require.NoError(t, err)
		got = append(got, token{tok.Kind, tok.Text()})
	}
}

func TestKinds(t *testing.T) {
	s := load(t, tokens)
	assert.Equal(t, []string{"Arrow", "Ident", "Keyword", "Minus", "Number", "Space"}, s.Kinds())
}

func TestScan(t *testing.T) {
	s := load(t, tokens)
	tests := []struct {
		input string
		want  []token
	}{
		{"abc", []token{{"Ident", "abc"}}},
		{"x1 42", []token{{"Ident", "x1"}, {"Number", "42"}}},
		{"3.25", []token{{"Number", "3.25"}}},
		{"a->b", []token{{"Ident", "a"}, {"Arrow", "->"}, {"Ident", "b"}}},
		{"a - b", []token{{"Ident", "a"}, {"Minus", "-"}, {"Ident", "b"}}},
		// Ident and Keyword both match three bytes; Ident sorts first.
		{"let", []token{{"Ident", "let"}}},
		{"letter", []token{{"Ident", "letter"}}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, scanAll(t, s, tt.input))
		})
	}
}

func TestScanUnrecognized(t *testing.T) {
	s := load(t, tokens)
	lex := parse.NewLexer[string](span.New("a ?"), s)
	_, err := lex.Next()
	require.NoError(t, err)
	_, err = lex.Next()
	require.NoError(t, err)
	_, err = lex.Next()
	assert.True(t, parse.IsKind(err, parse.KindUnrecognized))
}

func TestScanRecursiveProduction(t *testing.T) {
	s := load(t, `
Nested = "(" [ Nested ] ")" .
Loop   = Loop "x" | "y" .
`)
	assert.Equal(t, []token{{"Nested", "((()))"}, {"Loop", "y"}}, scanAll(t, s, "((()))y"))
}

func TestLoadErrors(t *testing.T) {
	_, err := Load("bad.ebnf", strings.NewReader(`Ident = "a" `))
	assert.ErrorContains(t, err, "parse grammar")

	_, err = Load("none.ebnf", strings.NewReader(`ident = "a" .`))
	assert.ErrorContains(t, err, "no token productions")

	_, err = Load("undefined.ebnf", strings.NewReader(`Ident = letter .`))
	assert.ErrorContains(t, err, "undefined production letter")

	_, err = LoadFile("testdata/missing.ebnf")
	assert.ErrorContains(t, err, "open grammar")
}
