package span

import "unicode/utf8"

// LineEnding selects which byte sequences terminate a line.
type LineEnding int

const (
	// LF treats only "\n" as a line break.
	LF LineEnding = iota
	// CRLF treats only "\r\n" as a line break.
	CRLF
	// Universal accepts "\n", "\r\n" and a lone "\r".
	Universal
)

func (le LineEnding) String() string {
	switch le {
	case LF:
		return "lf"
	case CRLF:
		return "crlf"
	case Universal:
		return "universal"
	}
	return "unknown"
}

type Option func(*source)

// WithName sets the name reported for the source, usually a file path.
func WithName(name string) Option {
	return func(s *source) {
		s.name = name
	}
}

// WithLineEnding sets the line-ending convention used for positions.
func WithLineEnding(le LineEnding) Option {
	return func(s *source) {
		s.ending = le
	}
}

type source struct {
	name   string
	text   string
	ending LineEnding
}

// Source is an immutable handle to the text being parsed. Copying a Source
// is cheap and two copies compare equal.
type Source struct {
	s *source
}

// New returns a Source over text.
func New(text string, opts ...Option) Source {
	s := &source{text: text}
	for _, opt := range opts {
		opt(s)
	}
	return Source{s: s}
}

func (s Source) Text() string {
	if s.s == nil {
		return ""
	}
	return s.s.text
}

func (s Source) Name() string {
	if s.s == nil {
		return ""
	}
	return s.s.name
}

func (s Source) Ending() LineEnding {
	if s.s == nil {
		return LF
	}
	return s.s.ending
}

func (s Source) Len() int {
	return len(s.Text())
}

// Slice returns the text covered by sp.
func (s Source) Slice(sp Span) string {
	t := s.Text()
	start, end := clamp(sp.Start.Byte, len(t)), clamp(sp.End.Byte, len(t))
	if end < start {
		return ""
	}
	return t[start:end]
}

// Measure returns the delta of consuming text: its length in bytes, the
// number of line breaks it contains and the column reached on its last line.
func (s Source) Measure(text string) Pos {
	return measure(text, s.Ending())
}

// Advance returns the position n bytes after at.
func (s Source) Advance(at Pos, n int) Pos {
	t := s.Text()
	end := clamp(at.Byte+n, len(t))
	if end <= at.Byte {
		return at
	}
	return at.Add(s.Measure(t[at.Byte:end]))
}

// PosAt computes the position of byte offset b. It scans from the start of the
// text.
func (s Source) PosAt(b int) Pos {
	t := s.Text()
	return s.Measure(t[:clamp(b, len(t))])
}

// Start is the position of the first byte.
func (s Source) Start() Pos {
	return Pos{}
}

// End is the position just past the last byte.
func (s Source) End() Pos {
	return s.PosAt(s.Len())
}

// Span returns the span [start, end) over s.
func (s Source) Span(start, end Pos) Span {
	return Span{Start: start, End: end, src: s}
}

// SpanBytes returns the span between two byte offsets.
func (s Source) SpanBytes(start, end int) Span {
	from := s.PosAt(start)
	return Span{Start: from, End: s.Advance(from, end-start), src: s}
}

// LineStart returns the byte offset of the start of the line containing b.
func (s Source) LineStart(b int) int {
	t := s.Text()
	le := s.Ending()
	for i := clamp(b, len(t)) - 1; i >= 0; i-- {
		switch t[i] {
		case '\n':
			if le != CRLF || (i > 0 && t[i-1] == '\r') {
				return i + 1
			}
		case '\r':
			if le == Universal && (i+1 >= len(t) || t[i+1] != '\n') {
				return i + 1
			}
		}
	}
	return 0
}

// LineEnd returns the byte offset of the line terminator ending the line
// containing b, or the length of the text on the last line.
func (s Source) LineEnd(b int) int {
	t := s.Text()
	le := s.Ending()
	for i := clamp(b, len(t)); i < len(t); i++ {
		if breakLen(t, i, le) > 0 {
			return i
		}
	}
	return len(t)
}

// LineText returns the text of the given 0-based line without its
// terminator. It reports false when the text has fewer lines.
func (s Source) LineText(line int) (string, bool) {
	t := s.Text()
	le := s.Ending()
	start := 0
	for n := 0; n < line; n++ {
		i := s.LineEnd(start)
		if i >= len(t) {
			return "", false
		}
		start = i + breakLen(t, i, le)
	}
	return t[start:s.LineEnd(start)], true
}

func breakLen(t string, i int, le LineEnding) int {
	switch t[i] {
	case '\n':
		if le != CRLF {
			return 1
		}
	case '\r':
		crlf := i+1 < len(t) && t[i+1] == '\n'
		switch {
		case crlf && le != LF:
			return 2
		case le == Universal:
			return 1
		}
	}
	return 0
}

func measure(text string, le LineEnding) Pos {
	var line, col int
	for i := 0; i < len(text); {
		if n := breakLen(text, i, le); n > 0 {
			line++
			col = 0
			i += n
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		col++
		i += size
	}
	return Pos{Byte: len(text), Page: Page{Line: line, Column: col}}
}

func clamp(v, hi int) int {
	if v < 0 {
		return 0
	}
	if v > hi {
		return hi
	}
	return v
}
