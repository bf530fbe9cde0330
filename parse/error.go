package parse

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/dhamidi/combi/diag"
	"github.com/dhamidi/combi/span"
)

// Kind classifies an Error.
type Kind int

const (
	KindCustom Kind = iota

	// Lexer errors
	KindUnrecognized
	KindUnexpected
	KindUnexpectedEnd
	KindExpectedEnd

	// Structural errors
	KindBoundary
	KindCount
	KindNoProgress

	KindValidation
	KindRecoverFailed
)

var kindNames = map[Kind]string{
	KindCustom:        "custom",
	KindUnrecognized:  "unrecognized",
	KindUnexpected:    "unexpected",
	KindUnexpectedEnd: "unexpected-end",
	KindExpectedEnd:   "expected-end",
	KindBoundary:      "boundary",
	KindCount:         "count",
	KindNoProgress:    "no-progress",
	KindValidation:    "validation",
	KindRecoverFailed: "recover-failed",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Level ranks how specific the context of an error is. A more specific
// context replaces a less specific error in PushContext.
type Level int

const (
	// LevelNone is the level of raw lexer errors.
	LevelNone Level = iota
	// LevelUnbounded is the context of a recursive production.
	LevelUnbounded
	// LevelDelimited is the context of an item inside a delimited list.
	LevelDelimited
	// LevelBounded is the context of a construct with a fixed shape.
	LevelBounded
)

// Error is a structured parse error. Errors are never mutated once built;
// operations that decorate them return copies.
type Error struct {
	Kind    Kind
	Level   Level
	Message string
	Label   string
	Span    span.Span

	// Expected and Found describe token mismatches.
	Expected []string
	Found    string

	// Count, Min and Max describe count errors. Max is negative when the
	// repetition is unbounded.
	Count int
	Min   int
	Max   int

	// Cause is the next error of the chain: the error this one replaced, a
	// context recorded under it, or the Go error behind a validation failure.
	Cause error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	b.WriteString(" at ")
	b.WriteString(e.Span.String())
	if e.Label != "" {
		b.WriteString(": ")
		b.WriteString(e.Label)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// PushContext combines e with a context error. When ctx has a strictly
// higher Level it replaces e and e becomes its cause; otherwise e is kept and
// ctx is recorded right below it in the chain. A ctx without a span borrows
// the span of e.
func (e *Error) PushContext(ctx *Error) *Error {
	c := *ctx
	if c.Span.Source() == (span.Source{}) {
		c.Span = e.Span
	}
	if c.Level > e.Level {
		c.Cause = e
		return &c
	}
	c.Cause = e.Cause
	out := *e
	out.Cause = &c
	return &out
}

// Chain yields e followed by every *Error reachable through Cause.
func (e *Error) Chain() iter.Seq[*Error] {
	return func(yield func(*Error) bool) {
		var err error = e
		for err != nil {
			if pe, ok := err.(*Error); ok {
				if !yield(pe) {
					return
				}
			}
			err = errors.Unwrap(err)
		}
	}
}

// Root returns the oldest *Error of the chain.
func (e *Error) Root() *Error {
	root := e
	for pe := range e.Chain() {
		root = pe
	}
	return root
}

// Diagnostic converts e for rendering.
func (e *Error) Diagnostic() diag.Diagnostic {
	return diag.Diagnostic{Message: e.Message, Label: e.Label, Span: e.Span}
}

// DiagnosticWithCauses is Diagnostic with the rest of the chain as notes.
func (e *Error) DiagnosticWithCauses() diag.Diagnostic {
	d := e.Diagnostic()
	first := true
	for pe := range e.Chain() {
		if first {
			first = false
			continue
		}
		d.Notes = append(d.Notes, fmt.Sprintf("%s at %s", pe.Message, pe.Span))
	}
	var err error = e
	for err != nil {
		if _, ok := err.(*Error); !ok {
			d.Notes = append(d.Notes, err.Error())
		}
		err = errors.Unwrap(err)
	}
	return d
}

// IsKind reports whether any *Error in the chain of err has kind k.
func IsKind(err error, k Kind) bool {
	for err != nil {
		if pe, ok := err.(*Error); ok && pe.Kind == k {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Errorf builds a custom error over sp.
func Errorf(sp span.Span, format string, args ...any) *Error {
	return &Error{Kind: KindCustom, Message: fmt.Sprintf(format, args...), Span: sp}
}

func describe[T comparable](kinds []T) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = fmt.Sprint(k)
	}
	return names
}

func expectation(expected []string) string {
	switch len(expected) {
	case 0:
		return ""
	case 1:
		return "expected " + expected[0]
	}
	return "expected one of " + strings.Join(expected, ", ")
}

func unexpected[T comparable](tok Token[T], expected ...T) *Error {
	names := describe(expected)
	found := fmt.Sprint(tok.Kind)
	label := "found " + found
	if exp := expectation(names); exp != "" {
		label = exp + ", " + label
	}
	return &Error{
		Kind:     KindUnexpected,
		Message:  "unexpected token",
		Label:    label,
		Span:     tok.Span,
		Expected: names,
		Found:    found,
	}
}

func unexpectedEnd[T comparable](sp span.Span, expected ...T) *Error {
	names := describe(expected)
	label := expectation(names)
	if label == "" {
		label = "more input expected"
	}
	return &Error{
		Kind:     KindUnexpectedEnd,
		Message:  "unexpected end of text",
		Label:    label,
		Span:     sp,
		Expected: names,
	}
}

func expectedEnd[T comparable](tok Token[T]) *Error {
	return &Error{
		Kind:     KindExpectedEnd,
		Message:  "expected end of text",
		Label:    "unexpected " + fmt.Sprint(tok.Kind),
		Span:     tok.Span,
		Expected: []string{"end of text"},
		Found:    fmt.Sprint(tok.Kind),
	}
}

// lexError converts an error returned by Lexer.Next. after is the lexer the
// call was made on.
func lexError[T comparable](after Lexer[T], err error, expected ...T) *Error {
	if errors.Is(err, io.EOF) {
		return unexpectedEnd(span.At(after.src, after.cursor), expected...)
	}
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Kind: KindCustom, Message: err.Error(), Span: span.At(after.src, after.cursor), Cause: err}
}
