// Package calc is a small calculator language built on the parse
// combinators: assignments, arithmetic with the usual precedence, unary
// minus, parentheses and calls to builtin functions.
//
//	program   = { statement ";" } .
//	statement = ident "=" expr | expr .
//	expr      = term { ( "+" | "-" ) term } .
//	term      = unary { ( "*" | "/" ) unary } .
//	unary     = "-" unary | primary .
//	primary   = number | ident [ "(" [ args ] ")" ] | "(" expr ")" .
//	args      = expr { "," expr } .
//
// Whitespace and comments starting with "#" may appear between tokens.
package calc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dhamidi/combi/span"
)

// Expr is an expression node. A nil Expr stands for an expression that
// failed to parse and was recovered from.
type Expr interface {
	Span() span.Span
	String() string
}

type Number struct {
	Value float64
	At    span.Span
}

type Variable struct {
	Name string
	At   span.Span
}

type Unary struct {
	Op      TokenKind
	Operand Expr
	At      span.Span
}

type Binary struct {
	Op          TokenKind
	Left, Right Expr
	At          span.Span
}

type Call struct {
	Name string
	Args []Expr
	At   span.Span
}

func (n *Number) Span() span.Span   { return n.At }
func (v *Variable) Span() span.Span { return v.At }
func (u *Unary) Span() span.Span    { return u.At }
func (b *Binary) Span() span.Span   { return b.At }
func (c *Call) Span() span.Span     { return c.At }

func (n *Number) String() string {
	return strconv.FormatFloat(n.Value, 'g', -1, 64)
}

func (v *Variable) String() string {
	return v.Name
}

func (u *Unary) String() string {
	return "(-" + exprString(u.Operand) + ")"
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", exprString(b.Left), strings.Trim(b.Op.String(), "'"), exprString(b.Right))
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, arg := range c.Args {
		args[i] = exprString(arg)
	}
	return c.Name + "(" + strings.Join(args, ", ") + ")"
}

func exprString(e Expr) string {
	if e == nil {
		return "<error>"
	}
	return e.String()
}

// Statement is an assignment when Target is set and a bare expression
// otherwise. The zero Statement stands for a statement that failed to parse.
type Statement struct {
	Target string
	Value  Expr
	At     span.Span
}

func (s Statement) String() string {
	if s.Target != "" {
		return s.Target + " = " + exprString(s.Value)
	}
	return exprString(s.Value)
}

// Valid reports whether the statement was parsed without errors.
func (s Statement) Valid() bool {
	return s.Value != nil && valid(s.Value)
}

func valid(e Expr) bool {
	switch e := e.(type) {
	case nil:
		return false
	case *Unary:
		return valid(e.Operand)
	case *Binary:
		return valid(e.Left) && valid(e.Right)
	case *Call:
		for _, arg := range e.Args {
			if !valid(arg) {
				return false
			}
		}
	}
	return true
}

type Program struct {
	Source     span.Source
	Statements []Statement
}

func (p *Program) String() string {
	var b strings.Builder
	for _, s := range p.Statements {
		b.WriteString(s.String())
		b.WriteString(";\n")
	}
	return b.String()
}
