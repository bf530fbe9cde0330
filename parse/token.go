package parse

import (
	"fmt"

	"github.com/dhamidi/combi/span"
)

// Token is a scanned token of kind T.
type Token[T comparable] struct {
	Kind T
	Span span.Span
}

// Text returns the source text of the token.
func (t Token[T]) Text() string {
	return t.Span.Text()
}

func (t Token[T]) String() string {
	return fmt.Sprintf("%v %q %s", t.Kind, t.Text(), t.Span)
}

// Scanner recognises one token starting at a position of the source. It
// returns the kind and the end position of the token, or false when nothing
// is recognised there. The end must lie after at and within the text.
type Scanner[T comparable] interface {
	Scan(src span.Source, at span.Pos) (kind T, end span.Pos, ok bool)
}

// ScanFunc adapts a function to the Scanner interface.
type ScanFunc[T comparable] func(src span.Source, at span.Pos) (T, span.Pos, bool)

func (f ScanFunc[T]) Scan(src span.Source, at span.Pos) (T, span.Pos, bool) {
	return f(src, at)
}

// In returns a predicate matching any of kinds.
func In[T comparable](kinds ...T) func(T) bool {
	return func(k T) bool {
		for _, kind := range kinds {
			if k == kind {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not[T comparable](pred func(T) bool) func(T) bool {
	return func(k T) bool {
		return !pred(k)
	}
}
