package formula

import (
	"fmt"
	"strconv"
)

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdentifier
	tokenOperator
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
	num  float64
	pos  int
}

func (t token) describe() string {
	switch t.kind {
	case tokenNumber:
		return fmt.Sprintf("number %q", t.raw)
	case tokenIdentifier:
		return fmt.Sprintf("identifier %q", t.raw)
	default:
		return fmt.Sprintf("%q", t.raw)
	}
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(input) {
		ch := input[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r':
			i++
		case ch == '(':
			tokens = append(tokens, token{kind: tokenLParen, raw: "(", pos: i})
			i++
		case ch == ')':
			tokens = append(tokens, token{kind: tokenRParen, raw: ")", pos: i})
			i++
		case ch == '+' || ch == '-' || ch == '*' || ch == '/' || ch == '^':
			tokens = append(tokens, token{kind: tokenOperator, raw: string(ch), pos: i})
			i++
		case isDigit(ch) || ch == '.':
			tok, next, err := scanNumber(input, i)
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, tok)
			i = next
		case isIdentStart(ch):
			start := i
			for i < len(input) && isIdentPart(input[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdentifier, raw: input[start:i], pos: start})
		default:
			return nil, syntaxError(input, i, fmt.Sprintf("unexpected character %q", rune(ch)))
		}
	}
	return tokens, nil
}

// scanNumber reads digits, an optional fraction and an optional exponent.
func scanNumber(input string, start int) (token, int, error) {
	i := start
	digits := 0
	for i < len(input) && isDigit(input[i]) {
		i++
		digits++
	}
	if i < len(input) && input[i] == '.' {
		i++
		for i < len(input) && isDigit(input[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return token{}, 0, syntaxError(input, start, "malformed number")
	}
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(input) && isDigit(input[j]) {
			j++
			expDigits++
		}
		if expDigits == 0 {
			return token{}, 0, syntaxError(input, i, "malformed exponent")
		}
		i = j
	}
	if i < len(input) && (isIdentStart(input[i]) || input[i] == '.') {
		return token{}, 0, syntaxError(input, i, "malformed number")
	}

	raw := input[start:i]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return token{}, 0, syntaxError(input, start, fmt.Sprintf("malformed number %q", raw))
	}
	return token{kind: tokenNumber, raw: raw, num: value, pos: start}, i, nil
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }
