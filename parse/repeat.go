package parse

import (
	"errors"
	"fmt"
	"io"

	"github.com/dhamidi/combi/span"
)

// maxPrealloc caps the capacity reserved from a declared repetition bound.
const maxPrealloc = 16

func capacity(low, high int) int {
	n := low
	if high > n {
		n = high
	}
	if n > maxPrealloc {
		n = maxPrealloc
	}
	if n < 0 {
		n = 0
	}
	return n
}

// UpTo runs p and requires it to stop right before a token matching stop or
// at the end of the text. Overrunning is a KindBoundary error.
func UpTo[T comparable, V any](p Parser[T, V], stop func(T) bool) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		r := p(lex, ctx)
		if !r.Ok() {
			return r
		}
		tok, err := r.Lexer.Peek()
		switch {
		case errors.Is(err, io.EOF):
			return r
		case err != nil:
			return Fail[V](r.Lexer, lexError(r.Lexer, err))
		case stop(tok.Kind):
			return r
		}
		return Fail[V](r.Lexer, &Error{
			Kind:    KindBoundary,
			Message: "unexpected token after item",
			Label:   "expected a delimiter, found " + fmt.Sprint(tok.Kind),
			Span:    tok.Span,
			Found:   fmt.Sprint(tok.Kind),
		})
	}
}

// DelimitedList parses items separated by sep until the text is exhausted,
// abort matches the next token or high items were collected (high < 0 means
// no upper bound). A trailing separator is accepted.
//
// Each item must end on a separator, an abort token or the end of the text.
// A failing item is recovered by skipping to the next such token when the
// context has a sink: the zero value of V takes its place and the error goes
// to the sink. Collecting fewer than low items is a KindCount error, also
// sent to the sink when there is one.
func DelimitedList[T comparable, V any](item Parser[T, V], sep T, abort func(T) bool, low, high int) Parser[T, []V] {
	if abort == nil {
		abort = func(T) bool { return false }
	}
	boundary := func(k T) bool { return k == sep || abort(k) }
	var placeholder V
	guarded := Recoverable(UpTo(item, boundary), Before(boundary), placeholder)

	return func(lex Lexer[T], ctx Context) Result[T, []V] {
		items := make([]V, 0, capacity(low, high))
		cur := lex
		for high < 0 || len(items) < high {
			tok, err := cur.Peek()
			if errors.Is(err, io.EOF) || (err == nil && abort(tok.Kind)) {
				break
			}
			r := guarded(cur, ctx)
			if !r.Ok() {
				return Fail[[]V](r.Lexer, r.Err)
			}
			items = append(items, r.Value)
			cur = r.Lexer
			if high >= 0 && len(items) >= high {
				break
			}
			next := cur
			if tok, err := next.Next(); err != nil || tok.Kind != sep {
				break
			}
			cur = next
		}
		if len(items) < low {
			cerr := countError(lex.Source().Span(lex.Pos(), cur.Pos()), len(items), low, high)
			if undelivered := ctx.Send(cerr); undelivered != nil {
				return Fail[[]V](cur, undelivered)
			}
		}
		return Success(cur, items)
	}
}

// Repeat applies p until it fails without consuming input or high values were
// collected (high < 0 means no upper bound). A failure after consuming input
// is returned. An iteration that succeeds without advancing the cursor is a
// KindNoProgress error.
func Repeat[T comparable, V any](p Parser[T, V], low, high int) Parser[T, []V] {
	return func(lex Lexer[T], ctx Context) Result[T, []V] {
		values := make([]V, 0, capacity(low, high))
		cur := lex
		for high < 0 || len(values) < high {
			r := p(cur, ctx)
			if !r.Ok() {
				if r.Lexer.Taken() != cur.Taken() {
					return Fail[[]V](r.Lexer, r.Err)
				}
				break
			}
			if r.Lexer.Pos().Byte == cur.Pos().Byte {
				return Fail[[]V](r.Lexer, noProgress(r.Lexer, cur.Pos()))
			}
			values = append(values, r.Value)
			cur = r.Lexer
		}
		if len(values) < low {
			cerr := countError(lex.Source().Span(lex.Pos(), cur.Pos()), len(values), low, high)
			if undelivered := ctx.Send(cerr); undelivered != nil {
				return Fail[[]V](cur, undelivered)
			}
		}
		return Success(cur, values)
	}
}

func countError(sp span.Span, found, low, high int) *Error {
	return &Error{
		Kind:    KindCount,
		Message: "too few items",
		Label:   fmt.Sprintf("found %d, expected at least %d", found, low),
		Span:    sp,
		Count:   found,
		Min:     low,
		Max:     high,
	}
}

func noProgress[T comparable](lex Lexer[T], at span.Pos) *Error {
	return &Error{
		Kind:    KindNoProgress,
		Message: "repetition made no progress",
		Label:   "item matched empty input",
		Span:    span.At(lex.Source(), at),
	}
}
