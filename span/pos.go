// Package span provides source positions, half-open spans over source text and
// the interval algebra used to compose them while parsing.
package span

import "fmt"

// Page is the line/column coordinate of a position. Both are 0-based and the
// column counts runes from the start of the line.
type Page struct {
	Line   int `json:"line" yaml:"line"`
	Column int `json:"column" yaml:"column"`
}

// Pos is a location in a Source expressed both as a byte offset and as a
// line/column page.
type Pos struct {
	Byte int
	Page Page
}

// Add advances p by delta, where delta is the measure of the text consumed
// after p (see Source.Measure).
//
// Add is not commutative. A delta that stays on its first line adds to the
// column of p, while a delta that crosses a line break moves p to the new
// line and replaces its column with the delta's column.
func (p Pos) Add(delta Pos) Pos {
	out := Pos{Byte: p.Byte + delta.Byte}
	if delta.Page.Line == 0 {
		out.Page = Page{Line: p.Page.Line, Column: p.Page.Column + delta.Page.Column}
	} else {
		out.Page = Page{Line: p.Page.Line + delta.Page.Line, Column: delta.Page.Column}
	}
	return out
}

// Before reports whether p comes strictly before q in the text.
func (p Pos) Before(q Pos) bool {
	return p.Byte < q.Byte
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Page.Line, p.Page.Column)
}

func minPos(a, b Pos) Pos {
	if b.Byte < a.Byte {
		return b
	}
	return a
}

func maxPos(a, b Pos) Pos {
	if b.Byte > a.Byte {
		return b
	}
	return a
}
