package formula

import (
	"math"
	"strconv"
)

// Node is one element of a parsed formula: Literal, Identifier, BinaryOp or
// UnaryOp.
type Node interface {
	Eval(vars map[string]float64) (float64, error)
	String() string
}

// Literal is a numeric constant.
type Literal struct {
	Value float64
}

func (n Literal) Eval(map[string]float64) (float64, error) { return n.Value, nil }

func (n Literal) String() string { return strconv.FormatFloat(n.Value, 'g', -1, 64) }

// Identifier references a variable. Pos is the byte offset in the formula.
type Identifier struct {
	Name string
	Pos  int
}

func (n Identifier) Eval(vars map[string]float64) (float64, error) {
	value, ok := vars[n.Name]
	if !ok {
		return 0, &EvaluationError{Pos: n.Pos, Reason: ReasonUnbound, Identifier: n.Name}
	}
	return value, nil
}

func (n Identifier) String() string { return n.Name }

// BinaryOp applies one of `+ - * / ^` to two operands.
type BinaryOp struct {
	Op    byte
	Left  Node
	Right Node
}

func (n BinaryOp) Eval(vars map[string]float64) (float64, error) {
	left, err := n.Left.Eval(vars)
	if err != nil {
		return 0, err
	}
	right, err := n.Right.Eval(vars)
	if err != nil {
		return 0, err
	}
	switch n.Op {
	case '+':
		return left + right, nil
	case '-':
		return left - right, nil
	case '*':
		return left * right, nil
	case '/':
		if right == 0 {
			return 0, &EvaluationError{Pos: -1, Reason: ReasonDivisionByZero}
		}
		return left / right, nil
	case '^':
		return math.Pow(left, right), nil
	default:
		return 0, &EvaluationError{Pos: -1, Reason: ReasonSyntax, Detail: "unknown operator " + string(n.Op)}
	}
}

func (n BinaryOp) String() string {
	return "(" + n.Left.String() + " " + string(n.Op) + " " + n.Right.String() + ")"
}

// UnaryOp negates (or keeps) its operand.
type UnaryOp struct {
	Op      byte
	Operand Node
}

func (n UnaryOp) Eval(vars map[string]float64) (float64, error) {
	value, err := n.Operand.Eval(vars)
	if err != nil {
		return 0, err
	}
	if n.Op == '-' {
		return -value, nil
	}
	return value, nil
}

func (n UnaryOp) String() string {
	return "(" + string(n.Op) + n.Operand.String() + ")"
}

// Identifiers returns the distinct variable names referenced by node, in the
// order they first appear.
func Identifiers(node Node) []string {
	var (
		out  []string
		seen = make(map[string]struct{})
	)
	var walk func(Node)
	walk = func(n Node) {
		switch typed := n.(type) {
		case Identifier:
			if _, ok := seen[typed.Name]; !ok {
				seen[typed.Name] = struct{}{}
				out = append(out, typed.Name)
			}
		case BinaryOp:
			walk(typed.Left)
			walk(typed.Right)
		case UnaryOp:
			walk(typed.Operand)
		}
	}
	if node != nil {
		walk(node)
	}
	return out
}
