package span

import (
	"fmt"
	"iter"
	"unicode/utf8"
)

// Span is the half-open interval [Start, End) over a Source. A zero-width
// span marks an insertion point.
type Span struct {
	Start Pos
	End   Pos
	src   Source
}

// At returns the zero-width span at p.
func At(src Source, p Pos) Span {
	return Span{Start: p, End: p, src: src}
}

func (s Span) Source() Source {
	return s.src
}

func (s Span) Len() int {
	return s.End.Byte - s.Start.Byte
}

func (s Span) IsEmpty() bool {
	return s.End.Byte <= s.Start.Byte
}

// Text returns the covered substring.
func (s Span) Text() string {
	return s.src.Slice(s)
}

// Contains reports whether o lies entirely inside s.
func (s Span) Contains(o Span) bool {
	return s.Start.Byte <= o.Start.Byte && o.End.Byte <= s.End.Byte
}

// Enclose returns the smallest span containing both s and o.
func (s Span) Enclose(o Span) Span {
	return Span{Start: minPos(s.Start, o.Start), End: maxPos(s.End, o.End), src: s.pick(o)}
}

// Intersect returns the overlap of s and o. Spans that only touch intersect in
// a zero-width span.
func (s Span) Intersect(o Span) (Span, bool) {
	start, end := maxPos(s.Start, o.Start), minPos(s.End, o.End)
	if start.Byte > end.Byte {
		return Span{}, false
	}
	return Span{Start: start, End: end, src: s.pick(o)}, true
}

// Union yields the disjoint spans covering exactly s and o: one span when they
// overlap or touch, two in text order otherwise.
func (s Span) Union(o Span) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if _, ok := s.Intersect(o); ok {
			yield(s.Enclose(o))
			return
		}
		first, second := s, o
		if o.Start.Byte < s.Start.Byte {
			first, second = o, s
		}
		if !yield(first) {
			return
		}
		yield(second)
	}
}

// Minus yields what is left of s once o is removed: zero, one or two spans.
func (s Span) Minus(o Span) iter.Seq[Span] {
	return func(yield func(Span) bool) {
		if _, ok := s.Intersect(o); !ok || o.IsEmpty() {
			yield(s)
			return
		}
		if s.Start.Byte < o.Start.Byte {
			if !yield(Span{Start: s.Start, End: o.Start, src: s.src}) {
				return
			}
		}
		if o.End.Byte < s.End.Byte {
			yield(Span{Start: o.End, End: s.End, src: s.src})
		}
	}
}

// WidenToLine extends s backwards to the start of its first line and forwards
// to the end of its last line, line terminator excluded.
func (s Span) WidenToLine() Span {
	t := s.src.Text()
	ls := s.src.LineStart(s.Start.Byte)
	le := s.src.LineEnd(s.End.Byte)
	start := Pos{Byte: ls, Page: Page{Line: s.Start.Page.Line}}
	end := s.End
	if le > end.Byte {
		end = end.Add(s.src.Measure(t[end.Byte:le]))
	}
	return Span{Start: start, End: end, src: s.src}
}

// SplitLines yields the per-line pieces of s in order. Every piece but the
// last ends just after its line terminator, so concatenating the pieces gives
// back Text. The last piece is zero-width when s is empty or ends right after
// a line break.
func (s Span) SplitLines() iter.Seq[Span] {
	return func(yield func(Span) bool) {
		t := s.src.Text()
		le := s.src.Ending()
		end := clamp(s.End.Byte, len(t))
		cur := s.Start
		for i := s.Start.Byte; i < end; {
			if n := breakLen(t, i, le); n > 0 && i+n <= end {
				next := Pos{Byte: i + n, Page: Page{Line: cur.Page.Line + 1}}
				if !yield(Span{Start: cur, End: next, src: s.src}) {
					return
				}
				cur = next
				i += n
				continue
			}
			_, size := utf8.DecodeRuneInString(t[i:])
			i += size
		}
		yield(Span{Start: cur, End: s.End, src: s.src})
	}
}

func (s Span) String() string {
	return fmt.Sprintf("(%d:%d-%d:%d, bytes %d-%d)",
		s.Start.Page.Line, s.Start.Page.Column,
		s.End.Page.Line, s.End.Page.Column,
		s.Start.Byte, s.End.Byte)
}

func (s Span) pick(o Span) Source {
	if s.src.s != nil {
		return s.src
	}
	return o.src
}
