package calc

import (
	"fmt"
	"math"
	"strconv"

	"github.com/dhamidi/combi/parse"
	"github.com/dhamidi/combi/span"
)

// Env holds the values of variables.
type Env map[string]float64

// Output is the value of one evaluated statement.
type Output struct {
	Target string
	Value  float64
	At     span.Span
}

func (o Output) String() string {
	v := strconv.FormatFloat(o.Value, 'g', -1, 64)
	if o.Target != "" {
		return o.Target + " = " + v
	}
	return v
}

type builtin struct {
	min, max int // max < 0 means variadic
	fn       func(args []float64) float64
}

var builtins = map[string]builtin{
	"abs": {1, 1, func(args []float64) float64 { return math.Abs(args[0]) }},
	"min": {1, -1, func(args []float64) float64 {
		m := args[0]
		for _, a := range args[1:] {
			m = math.Min(m, a)
		}
		return m
	}},
	"max": {1, -1, func(args []float64) float64 {
		m := args[0]
		for _, a := range args[1:] {
			m = math.Max(m, a)
		}
		return m
	}},
}

// Eval runs the statements of p in order against env, which assignments
// update. It stops at the first runtime error, which is a *parse.Error
// pointing at the offending expression.
func Eval(p *Program, env Env) ([]Output, error) {
	out := make([]Output, 0, len(p.Statements))
	for _, s := range p.Statements {
		if !s.Valid() {
			at := s.At
			if at.Source() != p.Source {
				at = span.At(p.Source, p.Source.Start())
			}
			return out, runtimeError(at, "cannot evaluate a statement with syntax errors", "")
		}
		v, err := eval(s.Value, env)
		if err != nil {
			return out, err
		}
		if s.Target != "" {
			env[s.Target] = v
		}
		out = append(out, Output{Target: s.Target, Value: v, At: s.At})
	}
	return out, nil
}

func eval(e Expr, env Env) (float64, error) {
	switch e := e.(type) {
	case *Number:
		return e.Value, nil

	case *Variable:
		v, ok := env[e.Name]
		if !ok {
			return 0, runtimeError(e.At, "undefined variable "+e.Name, "not assigned before use")
		}
		return v, nil

	case *Unary:
		v, err := eval(e.Operand, env)
		return -v, err

	case *Binary:
		x, err := eval(e.Left, env)
		if err != nil {
			return 0, err
		}
		y, err := eval(e.Right, env)
		if err != nil {
			return 0, err
		}
		switch e.Op {
		case TokenPlus:
			return x + y, nil
		case TokenMinus:
			return x - y, nil
		case TokenStar:
			return x * y, nil
		case TokenSlash:
			if y == 0 {
				return 0, runtimeError(e.Right.Span(), "division by zero", "this evaluates to 0")
			}
			return x / y, nil
		}
		return 0, runtimeError(e.At, "unknown operator "+e.Op.String(), "")

	case *Call:
		b, ok := builtins[e.Name]
		if !ok {
			return 0, runtimeError(e.At, "unknown function "+e.Name, "expected one of abs, max, min")
		}
		if len(e.Args) < b.min || (b.max >= 0 && len(e.Args) > b.max) {
			return 0, runtimeError(e.At, "wrong number of arguments to "+e.Name, arity(b, len(e.Args)))
		}
		args := make([]float64, len(e.Args))
		for i, arg := range e.Args {
			v, err := eval(arg, env)
			if err != nil {
				return 0, err
			}
			args[i] = v
		}
		return b.fn(args), nil
	}
	return 0, fmt.Errorf("cannot evaluate %T", e)
}

func arity(b builtin, found int) string {
	switch {
	case b.max < 0:
		return fmt.Sprintf("found %d, expected at least %d", found, b.min)
	case b.min == b.max:
		return fmt.Sprintf("found %d, expected %d", found, b.min)
	}
	return fmt.Sprintf("found %d, expected %d to %d", found, b.min, b.max)
}

func runtimeError(at span.Span, message, label string) *parse.Error {
	err := parse.Errorf(at, "%s", message)
	err.Label = label
	return err
}
