package parse

import "github.com/dhamidi/combi/span"

// Located pairs a value with the span it was parsed from.
type Located[V any] struct {
	Value V
	Span  span.Span
}

// Spanned runs p in a nested lexer scope and returns its value together with
// the exact span p consumed, filtered tokens between its first and last
// visible token included.
func Spanned[T comparable, V any](p Parser[T, V]) Parser[T, Located[V]] {
	return func(lex Lexer[T], ctx Context) Result[T, Located[V]] {
		r := p(lex.Sub(), ctx)
		if !r.Ok() {
			return Fail[Located[V]](lex.Join(r.Lexer), r.Err)
		}
		return Success(lex.Join(r.Lexer), Located[V]{Value: r.Value, Span: r.Lexer.Consumed()})
	}
}

// Text returns the source text consumed by p.
func Text[T comparable, V any](p Parser[T, V]) Parser[T, string] {
	return Map(Spanned(p), func(l Located[V]) string {
		return l.Span.Text()
	})
}
