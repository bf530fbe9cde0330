package parse

import (
	"errors"
	"io"
	"unicode/utf8"

	"github.com/dhamidi/combi/span"
)

// scope tracks the visible tokens consumed since a Sub call.
type scope struct {
	start   span.Pos
	first   span.Pos
	last    span.Pos
	entered bool
}

// Lexer is a pull-based token stream over a Source. It is a plain value:
// assigning it to another variable takes a snapshot that can be resumed
// independently of the original.
type Lexer[T comparable] struct {
	src     span.Source
	scanner Scanner[T]
	cursor  span.Pos
	keep    func(T) bool
	fault   bool
	taken   int
	scope   scope
}

type LexerOption[T comparable] func(*Lexer[T])

// WithFilter installs a filter at construction time (see SetFilter).
func WithFilter[T comparable](keep func(T) bool) LexerOption[T] {
	return func(l *Lexer[T]) {
		l.keep = keep
	}
}

// NewLexer returns a lexer positioned at the start of src.
func NewLexer[T comparable](src span.Source, scanner Scanner[T], opts ...LexerOption[T]) Lexer[T] {
	l := Lexer[T]{
		src:     src,
		scanner: scanner,
		cursor:  src.Start(),
	}
	l.scope.start = l.cursor
	for _, opt := range opts {
		opt(&l)
	}
	return l
}

func (l Lexer[T]) Source() span.Source {
	return l.src
}

// Pos is the cursor: the position just after everything consumed so far,
// filtered tokens included.
func (l Lexer[T]) Pos() span.Pos {
	return l.cursor
}

// Taken counts the visible tokens consumed so far, plus every rune of
// unrecognised text passed over by Skip. It grows exactly when the cursor
// moves past something a parser saw, which makes it the measure of progress
// between two snapshots of the same lexer.
func (l Lexer[T]) Taken() int {
	return l.taken
}

// Faulted reports whether the scanner failed to recognise the text at the
// cursor.
func (l Lexer[T]) Faulted() bool {
	return l.fault
}

// AtEnd reports whether only filtered tokens remain.
func (l Lexer[T]) AtEnd() bool {
	_, err := l.Peek()
	return errors.Is(err, io.EOF)
}

// SetFilter installs a predicate selecting the visible tokens. Tokens for
// which keep returns false are still consumed, but never returned by Peek or
// Next. A nil predicate keeps every token.
func (l *Lexer[T]) SetFilter(keep func(T) bool) {
	l.keep = keep
}

// TakeFilter removes the filter and returns it.
func (l *Lexer[T]) TakeFilter() func(T) bool {
	keep := l.keep
	l.keep = nil
	return keep
}

// Peek returns the next visible token without consuming it.
func (l Lexer[T]) Peek() (Token[T], error) {
	return l.Next()
}

// Next consumes and returns the next visible token. It returns io.EOF at the
// end of the text and a *Error of kind KindUnrecognized when the scanner
// does not recognise the text at the cursor; the lexer then stays faulted at
// that position until Skip moves past it.
func (l *Lexer[T]) Next() (Token[T], error) {
	for {
		tok, err := l.scan()
		if err != nil {
			return tok, err
		}
		if l.keep != nil && !l.keep(tok.Kind) {
			continue
		}
		l.taken++
		if !l.scope.entered {
			l.scope.first = tok.Span.Start
			l.scope.entered = true
		}
		l.scope.last = tok.Span.End
		return tok, nil
	}
}

// Skip discards the next visible token, or a single rune of unrecognised
// text when the lexer is faulted. It returns io.EOF at the end of the text.
func (l *Lexer[T]) Skip() error {
	_, err := l.Next()
	if err == nil || errors.Is(err, io.EOF) {
		return err
	}
	t := l.src.Text()
	_, size := utf8.DecodeRuneInString(t[l.cursor.Byte:])
	next := l.src.Advance(l.cursor, size)
	if !l.scope.entered {
		l.scope.first = l.cursor
		l.scope.entered = true
	}
	l.scope.last = next
	l.cursor = next
	l.fault = false
	l.taken++
	return nil
}

func (l *Lexer[T]) scan() (Token[T], error) {
	var zero Token[T]
	if l.cursor.Byte >= l.src.Len() {
		return zero, io.EOF
	}
	if l.fault || l.scanner == nil {
		l.fault = true
		return zero, l.unrecognized()
	}
	kind, end, ok := l.scanner.Scan(l.src, l.cursor)
	if !ok || end.Byte <= l.cursor.Byte || end.Byte > l.src.Len() {
		l.fault = true
		return zero, l.unrecognized()
	}
	tok := Token[T]{Kind: kind, Span: l.src.Span(l.cursor, end)}
	l.cursor = end
	return tok, nil
}

func (l *Lexer[T]) unrecognized() *Error {
	t := l.src.Text()
	_, size := utf8.DecodeRuneInString(t[l.cursor.Byte:])
	return &Error{
		Kind:    KindUnrecognized,
		Message: "unrecognized token",
		Label:   "symbol not recognized",
		Span:    l.src.Span(l.cursor, l.src.Advance(l.cursor, size)),
	}
}

// Sub returns a copy of l that starts a new accounting scope. Consumed on
// the copy reports only what was consumed after the call.
func (l Lexer[T]) Sub() Lexer[T] {
	l.scope = scope{start: l.cursor}
	return l
}

// Join resumes from sub, which must descend from l through Sub, and folds the
// span consumed in sub back into the scope of l.
func (l Lexer[T]) Join(sub Lexer[T]) Lexer[T] {
	outer := l.scope
	if sub.scope.entered {
		if !outer.entered {
			outer.first = sub.scope.first
			outer.entered = true
		}
		outer.last = sub.scope.last
	}
	sub.scope = outer
	return sub
}

// Consumed returns the span from the first to the last visible token
// consumed in the current scope, including filtered tokens between them. It
// is zero-width at the scope start when nothing was consumed.
func (l Lexer[T]) Consumed() span.Span {
	if !l.scope.entered {
		return span.At(l.src, l.scope.start)
	}
	return l.src.Span(l.scope.first, l.scope.last)
}
