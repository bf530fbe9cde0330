package calc

import (
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
)

type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenComment

	// Literals
	TokenIdent
	TokenNumber

	// Operators and punctuation
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenAssign
	TokenLParen
	TokenRParen
	TokenComma
	TokenSemicolon
)

var tokenNames = map[TokenKind]string{
	TokenWhitespace: "whitespace",
	TokenComment:    "comment",
	TokenIdent:      "identifier",
	TokenNumber:     "number",
	TokenPlus:       "'+'",
	TokenMinus:      "'-'",
	TokenStar:       "'*'",
	TokenSlash:      "'/'",
	TokenAssign:     "'='",
	TokenLParen:     "'('",
	TokenRParen:     "')'",
	TokenComma:      "','",
	TokenSemicolon:  "';'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return "unknown"
}

var punctuation = map[byte]TokenKind{
	'+': TokenPlus,
	'-': TokenMinus,
	'*': TokenStar,
	'/': TokenSlash,
	'=': TokenAssign,
	'(': TokenLParen,
	')': TokenRParen,
	',': TokenComma,
	';': TokenSemicolon,
}

// Visible reports whether a token kind takes part in the grammar.
func Visible(k TokenKind) bool {
	return k != TokenWhitespace && k != TokenComment
}

// Scanner recognises calculator tokens.
var Scanner = parse.ScanFunc[TokenKind](scan)

// NewLexer returns a lexer over src that hides whitespace and comments.
func NewLexer(src span.Source) parse.Lexer[TokenKind] {
	return parse.NewLexer[TokenKind](src, Scanner, parse.WithFilter(Visible))
}

func scan(src span.Source, at span.Pos) (TokenKind, span.Pos, bool) {
	input := src.Text()[at.Byte:]
	ch, size := utf8.DecodeRuneInString(input)

	switch {
	case unicode.IsSpace(ch):
		n := size
		for n < len(input) {
			r, s := utf8.DecodeRuneInString(input[n:])
			if !unicode.IsSpace(r) {
				break
			}
			n += s
		}
		return TokenWhitespace, src.Advance(at, n), true

	case ch == '#':
		n := 1
		for n < len(input) && input[n] != '\n' && input[n] != '\r' {
			n++
		}
		return TokenComment, src.Advance(at, n), true

	case isDigit(input[0]) || (input[0] == '.' && len(input) > 1 && isDigit(input[1])):
		return TokenNumber, src.Advance(at, scanNumber(input)), true

	case ch == '_' || unicode.IsLetter(ch):
		n := size
		for n < len(input) {
			r, s := utf8.DecodeRuneInString(input[n:])
			if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
				break
			}
			n += s
		}
		return TokenIdent, src.Advance(at, n), true
	}

	if kind, ok := punctuation[input[0]]; ok {
		return kind, src.Advance(at, 1), true
	}
	return 0, at, false
}

// scanNumber returns the length of the number literal at the start of input:
// digits, an optional fraction and an optional exponent.
func scanNumber(input string) int {
	n := 0
	digits := func() {
		for n < len(input) && isDigit(input[n]) {
			n++
		}
	}
	digits()
	if n < len(input) && input[n] == '.' {
		n++
		digits()
	}
	if n < len(input) && (input[n] == 'e' || input[n] == 'E') {
		m := n + 1
		if m < len(input) && (input[m] == '+' || input[m] == '-') {
			m++
		}
		if m < len(input) && isDigit(input[m]) {
			n = m
			digits()
		}
	}
	return n
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
