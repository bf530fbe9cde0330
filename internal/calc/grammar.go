package calc

import (
	"strconv"

	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("combi.calc")

type (
	lexer          = parse.Lexer[TokenKind]
	token          = parse.Token[TokenKind]
	operation      = parse.Pair[token, Expr]
	operationChain = parse.Pair[Expr, []operation]
	statementParts = parse.Pair[parse.Optional[token], Expr]
	callSuffix     = parse.Pair[token, parse.Optional[[]Expr]]
)

type grammar struct {
	program parse.Parser[TokenKind, []Statement]
	expr    parse.Parser[TokenKind, Expr]
	unary   parse.Parser[TokenKind, Expr]
}

var calcGrammar = newGrammar()

func newGrammar() *grammar {
	g := &grammar{}
	expr := func(lex lexer, ctx parse.Context) parse.Result[TokenKind, Expr] {
		return g.expr(lex, ctx)
	}
	unary := func(lex lexer, ctx parse.Context) parse.Result[TokenKind, Expr] {
		return g.unary(lex, ctx)
	}

	number := parse.TryMap(parse.One(TokenNumber), func(tok token) (Expr, error) {
		v, err := strconv.ParseFloat(tok.Text(), 64)
		return &Number{Value: v, At: tok.Span}, err
	})

	args := parse.Scoped(
		parse.Bracket(
			parse.One(TokenLParen),
			parse.DelimitedList(parse.Parser[TokenKind, Expr](expr), TokenComma, parse.In(TokenRParen), 0, -1),
			parse.One(TokenRParen),
		),
		parse.Label(parse.LevelNone, "in call arguments", ""),
	)

	identifier := parse.Map(parse.Spanned(parse.Both(parse.One(TokenIdent), parse.Atomic(args))),
		func(l parse.Located[callSuffix]) Expr {
			name := l.Value.First.Text()
			if !l.Value.Second.Some {
				return &Variable{Name: name, At: l.Span}
			}
			return &Call{Name: name, Args: l.Value.Second.Value, At: l.Span}
		})

	group := parse.Scoped(
		parse.Bracket(parse.One(TokenLParen), parse.Parser[TokenKind, Expr](expr), parse.One(TokenRParen)),
		parse.Label(parse.LevelNone, "in parenthesized expression", ""),
	)

	negation := parse.Map(parse.Spanned(parse.Right(parse.One(TokenMinus), parse.Parser[TokenKind, Expr](unary))),
		func(l parse.Located[Expr]) Expr {
			return &Unary{Op: TokenMinus, Operand: l.Value, At: l.Span}
		})

	g.unary = parse.Choice(negation, number, identifier, group)
	operand := expecting(g.unary, "expression")

	term := parse.Map(
		parse.Both(operand, parse.Repeat(parse.Both(parse.Any(TokenStar, TokenSlash), operand), 0, -1)),
		fold,
	)
	g.expr = parse.Map(
		parse.Both(term, parse.Repeat(parse.Both(parse.Any(TokenPlus, TokenMinus), term), 0, -1)),
		fold,
	)

	target := parse.Maybe(parse.Left(parse.One(TokenIdent), parse.One(TokenAssign)))
	statement := parse.Map(parse.Spanned(parse.Both(target, g.expr)),
		func(l parse.Located[statementParts]) Statement {
			s := Statement{Value: l.Value.Second, At: l.Span}
			if l.Value.First.Some {
				s.Target = l.Value.First.Value.Text()
			}
			return s
		})

	g.program = parse.DelimitedList(statement, TokenSemicolon, nil, 0, -1)
	return g
}

// fold builds a left-associative chain of binary operations.
func fold(chain operationChain) Expr {
	x := chain.First
	for _, op := range chain.Second {
		x = &Binary{
			Op:    op.First.Kind,
			Left:  x,
			Right: op.Second,
			At:    x.Span().Enclose(op.Second.Span()),
		}
	}
	return x
}

// expecting rewrites the expectation of a failure of p that consumed
// nothing, so that it names what was expected instead of its first token.
func expecting[V any](p parse.Parser[TokenKind, V], what string) parse.Parser[TokenKind, V] {
	return func(lex lexer, ctx parse.Context) parse.Result[TokenKind, V] {
		r := p(lex, ctx)
		if r.Ok() || r.Lexer.Taken() != lex.Taken() {
			return r
		}
		switch r.Err.Kind {
		case parse.KindUnexpected:
			e := *r.Err
			e.Expected = []string{what}
			e.Label = "expected " + what + ", found " + e.Found
			r.Err = &e
		case parse.KindUnexpectedEnd:
			e := *r.Err
			e.Expected = []string{what}
			e.Label = "expected " + what
			r.Err = &e
		}
		return r
	}
}

// Parse parses a program. Syntax errors the parser recovered from are
// returned as diagnostics along with a program in which the statements or
// arguments concerned are missing. The error is set only when parsing could
// not recover.
func Parse(src span.Source) (*Program, []*parse.Error, error) {
	var diagnostics parse.Collector
	ctx := parse.NewContext(parse.WithSink(&diagnostics))
	r := parse.Run(calcGrammar.program, NewLexer(src), ctx)

	prog := &Program{Source: src, Statements: r.Value}
	log.Debugf("parsed %s: %d statements, %d diagnostics", src.Name(), len(prog.Statements), diagnostics.Len())
	if !r.Ok() {
		return prog, diagnostics.Errors(), r.Err
	}
	return prog, diagnostics.Errors(), nil
}

// ParseExpr parses a single expression that must span the whole source.
// It does not recover from errors.
func ParseExpr(src span.Source) (Expr, error) {
	return parse.Finish(parse.Run(calcGrammar.expr, NewLexer(src), parse.NewContext()))
}
