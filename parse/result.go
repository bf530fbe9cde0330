package parse

// Parser is the signature shared by every combinator and grammar rule.
type Parser[T comparable, V any] func(lex Lexer[T], ctx Context) Result[T, V]

// Result is the outcome of running a Parser. It is a success when Err is nil,
// in which case Lexer is the continuation. On failure Lexer is the state at
// which the failure was detected and Value is meaningless.
type Result[T comparable, V any] struct {
	Lexer Lexer[T]
	Value V
	Err   *Error
}

func Success[T comparable, V any](lex Lexer[T], value V) Result[T, V] {
	return Result[T, V]{Lexer: lex, Value: value}
}

func Fail[V any, T comparable](lex Lexer[T], err *Error) Result[T, V] {
	return Result[T, V]{Lexer: lex, Err: err}
}

func (r Result[T, V]) Ok() bool {
	return r.Err == nil
}

// PushContext decorates a failure with ctx (see Error.PushContext). Successes
// are returned unchanged.
func (r Result[T, V]) PushContext(ctx *Error) Result[T, V] {
	if r.Err != nil {
		r.Err = r.Err.PushContext(ctx)
	}
	return r
}

// MapValue transforms the value of a success.
func MapValue[T comparable, V, W any](r Result[T, V], f func(V) W) Result[T, W] {
	if r.Err != nil {
		return Fail[W](r.Lexer, r.Err)
	}
	return Success(r.Lexer, f(r.Value))
}

// Finish drops the lexer of a result.
func Finish[T comparable, V any](r Result[T, V]) (V, error) {
	if r.Err != nil {
		return r.Value, r.Err
	}
	return r.Value, nil
}

// Run applies p to lex and requires that only filtered tokens remain
// afterwards.
func Run[T comparable, V any](p Parser[T, V], lex Lexer[T], ctx Context) Result[T, V] {
	return Left(p, End[T]())(lex, ctx)
}
