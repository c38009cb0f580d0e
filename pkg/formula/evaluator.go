// Package formula parses and evaluates the arithmetic expressions that derive
// field values from their parent fields.
//
// Supported syntax:
//   - numeric literals: `2`, `1.5`, `.5`, `1e3`
//   - identifiers bound through the variables map: `age`, `unit_price`
//   - binary operators `+ - * / ^` and unary `-`/`+`
//   - parentheses
//
// `+ - * /` are left-associative with the usual precedence. `^` is the one
// exception to left-to-right grouping: it binds tighter than unary minus and
// associates to the right, so `-2^2` is -4 and `2^3^2` is 512. Formulas are parsed into a small AST; nothing is executed through a
// host-language eval.
package formula

import (
	"math"
	"strings"
)

// Evaluate parses formula and evaluates it against vars. Every identifier in
// the formula must be present in vars. The result is always finite.
func Evaluate(formula string, vars map[string]float64) (float64, error) {
	node, err := Parse(formula)
	if err != nil {
		return 0, err
	}
	return evalChecked(formula, node, vars)
}

// Program is a parsed formula ready for repeated evaluation.
type Program struct {
	source string
	root   Node
}

// Compile parses formula once so it can be evaluated many times.
func Compile(formula string) (*Program, error) {
	node, err := Parse(formula)
	if err != nil {
		return nil, err
	}
	return &Program{source: formula, root: node}, nil
}

// Source returns the formula text.
func (p *Program) Source() string { return p.source }

// Root returns the parsed expression tree.
func (p *Program) Root() Node { return p.root }

// Identifiers lists the variable names the formula references.
func (p *Program) Identifiers() []string { return Identifiers(p.root) }

// Eval evaluates the compiled formula against vars.
func (p *Program) Eval(vars map[string]float64) (float64, error) {
	return evalChecked(p.source, p.root, vars)
}

func evalChecked(source string, node Node, vars map[string]float64) (float64, error) {
	result, err := node.Eval(vars)
	if err != nil {
		if evalErr, ok := err.(*EvaluationError); ok && evalErr.Formula == "" {
			evalErr.Formula = source
		}
		return 0, err
	}
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, &EvaluationError{Formula: source, Pos: -1, Reason: ReasonNonFinite}
	}
	return result, nil
}

// Parse builds the expression tree for formula.
func Parse(formula string) (Node, error) {
	trimmed := strings.TrimSpace(formula)
	if trimmed == "" {
		return nil, syntaxError(formula, 0, "empty formula")
	}

	tokens, err := tokenize(formula)
	if err != nil {
		return nil, err
	}

	stream := &tokenStream{source: formula, tokens: tokens}
	node, err := parseExpr(stream)
	if err != nil {
		return nil, err
	}
	if !stream.done() {
		tok := stream.peek()
		return nil, syntaxError(formula, tok.pos, "unexpected "+tok.describe())
	}
	return node, nil
}

func parseExpr(stream *tokenStream) (Node, error) {
	left, err := parseTerm(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.matchOp('+', '-')
		if !ok {
			return left, nil
		}
		right, err := parseTerm(stream)
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func parseTerm(stream *tokenStream) (Node, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for {
		op, ok := stream.matchOp('*', '/')
		if !ok {
			return left, nil
		}
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = BinaryOp{Op: op, Left: left, Right: right}
	}
}

func parseUnary(stream *tokenStream) (Node, error) {
	if op, ok := stream.matchOp('-', '+'); ok {
		operand, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return UnaryOp{Op: op, Operand: operand}, nil
	}
	return parsePower(stream)
}

func parsePower(stream *tokenStream) (Node, error) {
	base, err := parsePrimary(stream)
	if err != nil {
		return nil, err
	}
	if _, ok := stream.matchOp('^'); !ok {
		return base, nil
	}
	// the exponent may carry its own sign: 2^-1
	exponent, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	return BinaryOp{Op: '^', Left: base, Right: exponent}, nil
}

func parsePrimary(stream *tokenStream) (Node, error) {
	if stream.done() {
		return nil, syntaxError(stream.source, len(stream.source), "unexpected end of formula")
	}
	tok := stream.next()
	switch tok.kind {
	case tokenNumber:
		return Literal{Value: tok.num}, nil
	case tokenIdentifier:
		return Identifier{Name: tok.raw, Pos: tok.pos}, nil
	case tokenLParen:
		inner, err := parseExpr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			pos := len(stream.source)
			if !stream.done() {
				pos = stream.peek().pos
			}
			return nil, syntaxError(stream.source, pos, "missing closing ')'")
		}
		return inner, nil
	default:
		return nil, syntaxError(stream.source, tok.pos, "unexpected "+tok.describe())
	}
}

type tokenStream struct {
	source string
	tokens []token
	pos    int
}

func (s *tokenStream) done() bool { return s.pos >= len(s.tokens) }

func (s *tokenStream) peek() token { return s.tokens[s.pos] }

func (s *tokenStream) next() token {
	tok := s.tokens[s.pos]
	s.pos++
	return tok
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.done() || s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) matchOp(ops ...byte) (byte, bool) {
	if s.done() || s.tokens[s.pos].kind != tokenOperator {
		return 0, false
	}
	op := s.tokens[s.pos].raw[0]
	for _, candidate := range ops {
		if op == candidate {
			s.pos++
			return op, true
		}
	}
	return 0, false
}
