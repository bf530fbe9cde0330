package parse

import (
	"errors"
	"io"

	"github.com/dhamidi/combi/span"
)

// Pair holds the values of Both.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Optional is the value of Maybe and Atomic.
type Optional[V any] struct {
	Value V
	Some  bool
}

// One matches a single token of the given kind.
func One[T comparable](kind T) Parser[T, Token[T]] {
	return func(lex Lexer[T], ctx Context) Result[T, Token[T]] {
		next := lex
		tok, err := next.Next()
		if err != nil {
			return Fail[Token[T]](lex, lexError(next, err, kind))
		}
		if tok.Kind != kind {
			return Fail[Token[T]](lex, unexpected(tok, kind))
		}
		return Success(next, tok)
	}
}

// Any matches a single token of any of the given kinds, trying them in
// order.
func Any[T comparable](kinds ...T) Parser[T, Token[T]] {
	return func(lex Lexer[T], ctx Context) Result[T, Token[T]] {
		var last Result[T, Token[T]]
		for _, kind := range kinds {
			last = One(kind)(lex, ctx)
			if last.Ok() {
				return last
			}
		}
		next := lex
		tok, err := next.Next()
		if err != nil {
			return Fail[Token[T]](lex, lexError(next, err, kinds...))
		}
		return Fail[Token[T]](lex, unexpected(tok, kinds...))
	}
}

// Seq matches the given kinds in order and returns the span they cover.
func Seq[T comparable](kinds ...T) Parser[T, span.Span] {
	return func(lex Lexer[T], ctx Context) Result[T, span.Span] {
		cur := lex.Sub()
		for _, kind := range kinds {
			r := One(kind)(cur, ctx)
			if !r.Ok() {
				return Fail[span.Span](lex.Join(r.Lexer), r.Err)
			}
			cur = r.Lexer
		}
		return Success(lex.Join(cur), cur.Consumed())
	}
}

// End succeeds only when no visible token remains.
func End[T comparable]() Parser[T, struct{}] {
	return func(lex Lexer[T], ctx Context) Result[T, struct{}] {
		next := lex
		tok, err := next.Next()
		switch {
		case errors.Is(err, io.EOF):
			return Success(next, struct{}{})
		case err != nil:
			return Fail[struct{}](lex, lexError[T](next, err))
		}
		return Fail[struct{}](lex, expectedEnd(tok))
	}
}

// Pure succeeds with v without consuming anything.
func Pure[T comparable, V any](v V) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		return Success(lex, v)
	}
}

// Map transforms the value of p.
func Map[T comparable, V, W any](p Parser[T, V], f func(V) W) Parser[T, W] {
	return func(lex Lexer[T], ctx Context) Result[T, W] {
		return MapValue(p(lex, ctx), f)
	}
}

// Value replaces the value of p with v.
func Value[T comparable, V, W any](p Parser[T, V], v W) Parser[T, W] {
	return Map(p, func(V) W { return v })
}

// TryMap converts the value of p with a fallible function. A conversion error
// becomes a KindValidation error over the span consumed by p, wrapping the
// original error.
func TryMap[T comparable, V, W any](p Parser[T, V], f func(V) (W, error)) Parser[T, W] {
	return func(lex Lexer[T], ctx Context) Result[T, W] {
		r := p(lex.Sub(), ctx)
		if !r.Ok() {
			return Fail[W](lex.Join(r.Lexer), r.Err)
		}
		w, err := f(r.Value)
		if err != nil {
			return Fail[W](lex.Join(r.Lexer), &Error{
				Kind:    KindValidation,
				Message: "invalid value",
				Label:   err.Error(),
				Span:    r.Lexer.Consumed(),
				Cause:   err,
			})
		}
		return Success(lex.Join(r.Lexer), w)
	}
}

// Left runs a then b and keeps the value of a.
func Left[T comparable, A, B any](a Parser[T, A], b Parser[T, B]) Parser[T, A] {
	return func(lex Lexer[T], ctx Context) Result[T, A] {
		ra := a(lex, ctx)
		if !ra.Ok() {
			return ra
		}
		rb := b(ra.Lexer, ctx)
		if !rb.Ok() {
			return Fail[A](rb.Lexer, rb.Err)
		}
		return Success(rb.Lexer, ra.Value)
	}
}

// Right runs a then b and keeps the value of b.
func Right[T comparable, A, B any](a Parser[T, A], b Parser[T, B]) Parser[T, B] {
	return func(lex Lexer[T], ctx Context) Result[T, B] {
		ra := a(lex, ctx)
		if !ra.Ok() {
			return Fail[B](ra.Lexer, ra.Err)
		}
		return b(ra.Lexer, ctx)
	}
}

// Both runs a then b and keeps both values.
func Both[T comparable, A, B any](a Parser[T, A], b Parser[T, B]) Parser[T, Pair[A, B]] {
	return func(lex Lexer[T], ctx Context) Result[T, Pair[A, B]] {
		ra := a(lex, ctx)
		if !ra.Ok() {
			return Fail[Pair[A, B]](ra.Lexer, ra.Err)
		}
		rb := b(ra.Lexer, ctx)
		if !rb.Ok() {
			return Fail[Pair[A, B]](rb.Lexer, rb.Err)
		}
		return Success(rb.Lexer, Pair[A, B]{First: ra.Value, Second: rb.Value})
	}
}

// Bracket runs open, center and close in order and keeps the value of
// center.
func Bracket[T comparable, A, B, C any](open Parser[T, A], center Parser[T, B], close Parser[T, C]) Parser[T, B] {
	return Right(open, Left(center, close))
}

// Maybe never fails: a failure of p becomes an empty Optional with the lexer
// rewound to where p started, however much p consumed.
func Maybe[T comparable, V any](p Parser[T, V]) Parser[T, Optional[V]] {
	return func(lex Lexer[T], ctx Context) Result[T, Optional[V]] {
		r := p(lex, ctx)
		if !r.Ok() {
			return Success(lex, Optional[V]{})
		}
		return Success(r.Lexer, Optional[V]{Value: r.Value, Some: true})
	}
}

// Atomic commits to p once p moves past any input. A failure that ends where
// it started becomes an empty Optional; any other failure is returned as is.
func Atomic[T comparable, V any](p Parser[T, V]) Parser[T, Optional[V]] {
	return func(lex Lexer[T], ctx Context) Result[T, Optional[V]] {
		r := p(lex, ctx)
		if r.Ok() {
			return Success(r.Lexer, Optional[V]{Value: r.Value, Some: true})
		}
		if r.Lexer.Taken() == lex.Taken() {
			return Success(lex, Optional[V]{})
		}
		return Fail[Optional[V]](r.Lexer, r.Err)
	}
}

// Choice tries each alternative in order with Atomic semantics: the first
// success wins and the first failure that consumed input is final. When
// every alternative fails without consuming input, the reported error is the
// most specific one, ties being resolved by the context's TieBreak.
func Choice[T comparable, V any](alternatives ...Parser[T, V]) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		var best *Error
		for _, alt := range alternatives {
			r := alt(lex, ctx)
			if r.Ok() || r.Lexer.Taken() != lex.Taken() {
				return r
			}
			if best == nil {
				best = r.Err
			} else {
				best = ctx.TieBreak().pick(best, r.Err)
			}
		}
		if best == nil {
			best = Errorf(span.At(lex.Source(), lex.Pos()), "no alternatives")
		}
		return Fail[V](lex, best)
	}
}

// Scoped runs p with t pushed on the context and decorates a failure of p
// with t on the way out.
func Scoped[T comparable, V any](p Parser[T, V], t Transform) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		r := p(lex, ctx.Push(t))
		if !r.Ok() && !ctx.Locked() && t != nil {
			r.Err = t(r.Err)
		}
		return r
	}
}

// Locked runs p with a locked context, so that transforms pushed inside p
// are ignored.
func Locked[T comparable, V any](p Parser[T, V]) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		return p(lex, ctx.Lock())
	}
}

// Unfiltered runs p with the lexer filter removed and reinstalls it on the
// resulting lexer.
func Unfiltered[T comparable, V any](p Parser[T, V]) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		keep := lex.TakeFilter()
		r := p(lex, ctx)
		r.Lexer.SetFilter(keep)
		return r
	}
}
