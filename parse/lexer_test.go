package parse

import (
	"io"
	"testing"

	"github.com/dhamidi/combi/span"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type kind int

const (
	kA kind = iota
	kB
	kC
	kComma
	kSemi
	kLParen
	kRParen
	kNum
	kSpace
)

var kindText = [...]string{"a", "b", "c", "','", "';'", "'('", "')'", "number", "space"}

func (k kind) String() string {
	return kindText[k]
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

var scanTest = ScanFunc[kind](func(src span.Source, at span.Pos) (kind, span.Pos, bool) {
	t := src.Text()[at.Byte:]
	single := map[byte]kind{'a': kA, 'b': kB, 'c': kC, ',': kComma, ';': kSemi, '(': kLParen, ')': kRParen}
	if k, ok := single[t[0]]; ok {
		return k, src.Advance(at, 1), true
	}
	run := func(pred func(byte) bool) int {
		n := 0
		for n < len(t) && pred(t[n]) {
			n++
		}
		return n
	}
	if n := run(isSpace); n > 0 {
		return kSpace, src.Advance(at, n), true
	}
	if n := run(isDigit); n > 0 {
		return kNum, src.Advance(at, n), true
	}
	return 0, at, false
})

func notSpace(k kind) bool {
	return k != kSpace
}

func lexerFor(text string) Lexer[kind] {
	return NewLexer(span.New(text), scanTest, WithFilter(notSpace))
}

func kinds(t *testing.T, lex Lexer[kind]) []kind {
	t.Helper()
	var got []kind
	for {
		tok, err := lex.Next()
		if err == io.EOF {
			return got
		}
		require.NoError(t, err)
		got = append(got, tok.Kind)
	}
}

func TestLexerNext(t *testing.T) {
	tests := []struct {
		input string
		want  []kind
	}{
		{"", nil},
		{"abc", []kind{kA, kB, kC}},
		{"a b,c", []kind{kA, kB, kComma, kC}},
		{"  (12 ; a)  ", []kind{kLParen, kNum, kSemi, kA, kRParen}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(t, lexerFor(tt.input)))
		})
	}
}

func TestLexerTokenSpans(t *testing.T) {
	lex := lexerFor("a\n  12")
	tok, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, "a", tok.Text())

	tok, err = lex.Next()
	require.NoError(t, err)
	assert.Equal(t, kNum, tok.Kind)
	assert.Equal(t, "(1:2-1:4, bytes 4-6)", tok.Span.String())
	assert.Equal(t, 6, lex.Pos().Byte)
	assert.Equal(t, 2, lex.Taken())
}

func TestLexerPeekIsIdempotent(t *testing.T) {
	lex := lexerFor(" a b")
	first, err := lex.Peek()
	require.NoError(t, err)
	second, err := lex.Peek()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, lex.Pos().Byte)
	assert.Equal(t, 0, lex.Taken())
}

func TestLexerUnrecognized(t *testing.T) {
	lex := lexerFor("a ?b")
	_, err := lex.Next()
	require.NoError(t, err)

	_, err = lex.Next()
	require.Error(t, err)
	assert.True(t, IsKind(err, KindUnrecognized))
	assert.True(t, lex.Faulted())
	assert.Equal(t, "(0:2-0:3, bytes 2-3)", err.(*Error).Span.String())

	_, again := lex.Next()
	assert.Equal(t, err, again)
	assert.False(t, lex.AtEnd())

	require.NoError(t, lex.Skip())
	assert.Equal(t, 2, lex.Taken())
	tok, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, kB, tok.Kind)
	assert.ErrorIs(t, lex.Skip(), io.EOF)
}

func TestLexerFilter(t *testing.T) {
	lex := lexerFor("a b")
	keep := lex.TakeFilter()
	require.NotNil(t, keep)
	assert.Equal(t, []kind{kA, kSpace, kB}, kinds(t, lex))

	lex.SetFilter(keep)
	assert.Equal(t, []kind{kA, kB}, kinds(t, lex))
}

func TestLexerCopyIsIndependent(t *testing.T) {
	lex := lexerFor("a b c")
	clone := lex
	_, err := clone.Next()
	require.NoError(t, err)
	_, err = clone.Next()
	require.NoError(t, err)

	assert.Equal(t, 0, lex.Pos().Byte)
	tok, err := lex.Next()
	require.NoError(t, err)
	assert.Equal(t, kA, tok.Kind)
	assert.Equal(t, 3, clone.Pos().Byte)
}

func TestLexerSubJoin(t *testing.T) {
	lex := lexerFor("a  b c a")
	_, err := lex.Next()
	require.NoError(t, err)

	sub := lex.Sub()
	_, err = sub.Next()
	require.NoError(t, err)
	_, err = sub.Next()
	require.NoError(t, err)
	assert.Equal(t, "b c", sub.Consumed().Text())

	joined := lex.Join(sub)
	assert.Equal(t, "a  b c", joined.Consumed().Text())
	assert.Equal(t, sub.Pos(), joined.Pos())

	tok, err := joined.Next()
	require.NoError(t, err)
	assert.Equal(t, kA, tok.Kind)
	assert.Equal(t, 7, tok.Span.Start.Byte)
}

func TestLexerSubConsumedNothing(t *testing.T) {
	lex := lexerFor("a b")
	_, err := lex.Next()
	require.NoError(t, err)
	sub := lex.Sub()
	consumed := sub.Consumed()
	assert.True(t, consumed.IsEmpty())
	assert.Equal(t, 1, consumed.Start.Byte)
}

func TestLexerZeroWidthScanIsUnrecognized(t *testing.T) {
	stuck := ScanFunc[kind](func(src span.Source, at span.Pos) (kind, span.Pos, bool) {
		return kA, at, true
	})
	lex := NewLexer[kind](span.New("x"), stuck)
	_, err := lex.Next()
	assert.True(t, IsKind(err, KindUnrecognized))
}
