// Package ebnfscan provides token scanning based on EBNF grammars.
//
// Productions whose name starts with an upper-case letter are token
// productions; every other production is a helper that token productions may
// refer to. At each position the scanner tries every token production and
// reports the longest match, ties going to the production name that sorts
// first.
package ebnfscan

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/combi/span"
	"github.com/tliron/commonlog"
	"golang.org/x/exp/ebnf"
)

var log = commonlog.GetLogger("combi.ebnfscan")

// Scanner recognises the token productions of a grammar. It is immutable and
// safe for concurrent use.
type Scanner struct {
	grammar ebnf.Grammar
	kinds   []string
}

// New builds a scanner from a parsed grammar. It fails when the grammar has
// no token production or refers to an undefined production.
func New(grammar ebnf.Grammar) (*Scanner, error) {
	s := &Scanner{grammar: grammar}
	for name, prod := range grammar {
		if err := checkNames(grammar, prod.Expr); err != nil {
			return nil, fmt.Errorf("production %s: %w", name, err)
		}
		if isToken(name) && prod.Expr != nil {
			s.kinds = append(s.kinds, name)
		}
	}
	if len(s.kinds) == 0 {
		return nil, fmt.Errorf("grammar has no token productions")
	}
	sort.Strings(s.kinds)
	log.Debugf("scanner with %d token kinds: %v", len(s.kinds), s.kinds)
	return s, nil
}

// Load parses grammar text and builds a scanner from it.
func Load(name string, r io.Reader) (*Scanner, error) {
	grammar, err := ebnf.Parse(name, r)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}
	return New(grammar)
}

// LoadFile loads a grammar from a file.
func LoadFile(filename string) (*Scanner, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Load(filename, f)
}

// Kinds returns the token production names in sorted order.
func (s *Scanner) Kinds() []string {
	return append([]string(nil), s.kinds...)
}

// Scan implements parse.Scanner.
func (s *Scanner) Scan(src span.Source, at span.Pos) (string, span.Pos, bool) {
	m := matcher{
		grammar:  s.grammar,
		input:    src.Text(),
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
	bestKind, bestLen := "", 0
	for _, name := range s.kinds {
		n := m.name(name, at.Byte)
		if n > bestLen {
			bestKind, bestLen = name, n
		}
	}
	if bestLen <= 0 {
		return "", at, false
	}
	return bestKind, src.Advance(at, bestLen), true
}

func isToken(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

func checkNames(grammar ebnf.Grammar, expr ebnf.Expression) error {
	switch e := expr.(type) {
	case ebnf.Alternative:
		for _, x := range e {
			if err := checkNames(grammar, x); err != nil {
				return err
			}
		}
	case ebnf.Sequence:
		for _, x := range e {
			if err := checkNames(grammar, x); err != nil {
				return err
			}
		}
	case *ebnf.Group:
		return checkNames(grammar, e.Body)
	case *ebnf.Option:
		return checkNames(grammar, e.Body)
	case *ebnf.Repetition:
		return checkNames(grammar, e.Body)
	case *ebnf.Name:
		if _, ok := grammar[e.String]; !ok {
			return fmt.Errorf("undefined production %s", e.String)
		}
	case *ebnf.Range:
		b, _ := utf8.DecodeRuneInString(e.Begin.String)
		f, _ := utf8.DecodeRuneInString(e.End.String)
		if utf8.RuneCountInString(e.Begin.String) != 1 || utf8.RuneCountInString(e.End.String) != 1 || b > f {
			return fmt.Errorf("invalid range %q … %q", e.Begin.String, e.End.String)
		}
	}
	return nil
}

type memoKey struct {
	name   string
	offset int
}

// matcher holds the state of a single Scan call. Match functions return
// the length of the match, or -1 when nothing matches.
type matcher struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int
	visiting map[memoKey]bool
}

func (m *matcher) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case nil:
		return 0
	case *ebnf.Token:
		if len(m.input)-offset >= len(e.String) && m.input[offset:offset+len(e.String)] == e.String {
			return len(e.String)
		}
		return -1

	case *ebnf.Range:
		if offset >= len(m.input) {
			return -1
		}
		r, size := utf8.DecodeRuneInString(m.input[offset:])
		begin, _ := utf8.DecodeRuneInString(e.Begin.String)
		end, _ := utf8.DecodeRuneInString(e.End.String)
		if r >= begin && r <= end {
			return size
		}
		return -1

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := m.match(item, offset+total)
			if n < 0 {
				return -1
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := -1
		for _, alt := range e {
			if n := m.match(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := m.match(e.Body, offset+total)
			if n <= 0 {
				return total
			}
			total += n
		}

	case *ebnf.Option:
		if n := m.match(e.Body, offset); n > 0 {
			return n
		}
		return 0

	case *ebnf.Group:
		return m.match(e.Body, offset)

	case *ebnf.Name:
		return m.name(e.String, offset)
	}
	return -1
}

// name matches a production with memoization. A production reached again at
// the same offset while being matched fails, which cuts left recursion.
func (m *matcher) name(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if n, ok := m.memo[key]; ok {
		return n
	}
	if m.visiting[key] {
		return -1
	}
	prod, ok := m.grammar[name]
	if !ok {
		return -1
	}
	m.visiting[key] = true
	n := m.match(prod.Expr, offset)
	delete(m.visiting, key)
	m.memo[key] = n
	return n
}
