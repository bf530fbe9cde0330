package parse

import (
	"errors"
	"fmt"
	"io"

	"github.com/tliron/commonlog"
)

// RecoverAction is the verdict of a Resync step.
type RecoverAction int

const (
	// Continue skips the token and keeps scanning.
	Continue RecoverAction = iota
	// StopBefore resumes parsing at the token.
	StopBefore
	// StopAfter consumes the token and resumes parsing after it.
	StopAfter
)

// ErrNoResync is returned by a Resync that cannot find a resynchronization
// point.
var ErrNoResync = errors.New("no resynchronization point")

// Resync is a stateful step function consulted once per visible token while
// recovering. It is called with end set once the text is exhausted; a nil
// error then accepts the end of text as the resynchronization point.
type Resync[T comparable] func(tok T, end bool) (RecoverAction, error)

// Recovery creates a fresh Resync for every recovery attempt.
type Recovery[T comparable] func() Resync[T]

// Before resynchronizes in front of the first token matching stop, or at the
// end of the text.
func Before[T comparable](stop func(T) bool) Recovery[T] {
	return func() Resync[T] {
		return func(tok T, end bool) (RecoverAction, error) {
			if end || stop(tok) {
				return StopBefore, nil
			}
			return Continue, nil
		}
	}
}

// After resynchronizes just after the n-th occurrence of kind. Reaching the
// end of the text first is an error.
func After[T comparable](kind T, n int) Recovery[T] {
	return func() Resync[T] {
		seen := 0
		return func(tok T, end bool) (RecoverAction, error) {
			if end {
				return Continue, fmt.Errorf("%w: end of text before %v", ErrNoResync, kind)
			}
			if tok == kind {
				seen++
				if seen >= n {
					return StopAfter, nil
				}
			}
			return Continue, nil
		}
	}
}

// Recoverable runs p and, when it fails and the context has a sink, skips
// tokens until recovery finds a resynchronization point, reports the error to
// the sink and succeeds with placeholder. Without a sink the failure of p is
// returned unchanged.
func Recoverable[T comparable, V any](p Parser[T, V], recovery Recovery[T], placeholder V) Parser[T, V] {
	return func(lex Lexer[T], ctx Context) Result[T, V] {
		r := p(lex, ctx)
		if r.Ok() || !ctx.HasSink() {
			return r
		}
		resumed, rerr := recoverFrom(r.Lexer, recovery)
		if rerr != nil {
			return Fail[V](resumed, &Error{
				Kind:    KindRecoverFailed,
				Message: "cannot recover from previous error",
				Label:   rerr.Error(),
				Span:    lex.Source().Span(r.Lexer.Pos(), resumed.Pos()),
				Cause:   r.Err,
			})
		}
		if undelivered := ctx.Send(r.Err); undelivered != nil {
			return Fail[V](r.Lexer, undelivered)
		}
		commonlog.GetLogger("combi.parse").Debugf("resumed at %s after %s", resumed.Pos(), r.Err.Message)
		return Success(resumed, placeholder)
	}
}

func recoverFrom[T comparable](lex Lexer[T], recovery Recovery[T]) (Lexer[T], error) {
	step := recovery()
	for {
		tok, err := lex.Peek()
		if errors.Is(err, io.EOF) {
			var zero T
			if _, serr := step(zero, true); serr != nil {
				return lex, serr
			}
			return lex, nil
		}
		if err != nil {
			_ = lex.Skip()
			continue
		}
		action, serr := step(tok.Kind, false)
		if serr != nil {
			return lex, serr
		}
		switch action {
		case StopBefore:
			return lex, nil
		case StopAfter:
			_, _ = lex.Next()
			return lex, nil
		}
		_, _ = lex.Next()
	}
}
