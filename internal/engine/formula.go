package engine

// formula.go — arithmetic evaluator for dependency quantity formulas.
// Supported grammar: numbers, the variable "qty" (bound to the triggering
// quantity), + - * /, unary minus, and parentheses. Nothing else: formulas
// are catalog data, not code, and a malformed formula is a configuration
// error reported to the caller rather than a fallback value.

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// EvalFormula evaluates a quantity formula against the triggering quantity.
func EvalFormula(formula string, qty int) (decimal.Decimal, error) {
	p := &formulaParser{input: formula, qty: decimal.NewFromInt(int64(qty))}
	result, err := p.parseExpr()
	if err != nil {
		return decimal.Zero, fmt.Errorf("formula %q: %w", formula, err)
	}
	p.skipSpaces()
	if p.pos != len(p.input) {
		return decimal.Zero, fmt.Errorf("formula %q: unexpected character at position %d", formula, p.pos)
	}
	return result, nil
}

type formulaParser struct {
	input string
	pos   int
	qty   decimal.Decimal
}

func (p *formulaParser) skipSpaces() {
	for p.pos < len(p.input) && p.input[p.pos] == ' ' {
		p.pos++
	}
}

func (p *formulaParser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

// expr := term (('+' | '-') term)*
func (p *formulaParser) parseExpr() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '+' && c != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return decimal.Zero, err
		}
		if c == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

// term := factor (('*' | '/') factor)*
func (p *formulaParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		c, ok := p.peek()
		if !ok || (c != '*' && c != '/') {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		if c == '*' {
			left = left.Mul(right)
		} else {
			if right.IsZero() {
				return decimal.Zero, fmt.Errorf("division by zero")
			}
			left = left.Div(right)
		}
	}
}

// factor := number | "qty" | '-' factor | '(' expr ')'
func (p *formulaParser) parseFactor() (decimal.Decimal, error) {
	c, ok := p.peek()
	if !ok {
		return decimal.Zero, fmt.Errorf("unexpected end of formula")
	}
	switch {
	case c == '-':
		p.pos++
		v, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		return v.Neg(), nil
	case c == '(':
		p.pos++
		v, err := p.parseExpr()
		if err != nil {
			return decimal.Zero, err
		}
		if c2, ok := p.peek(); !ok || c2 != ')' {
			return decimal.Zero, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	case c >= '0' && c <= '9' || c == '.':
		return p.parseNumber()
	case unicode.IsLetter(rune(c)):
		return p.parseIdent()
	default:
		return decimal.Zero, fmt.Errorf("unexpected character %q", c)
	}
}

func (p *formulaParser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	for p.pos < len(p.input) && (p.input[p.pos] >= '0' && p.input[p.pos] <= '9' || p.input[p.pos] == '.') {
		p.pos++
	}
	v, err := decimal.NewFromString(p.input[start:p.pos])
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid number %q", p.input[start:p.pos])
	}
	return v, nil
}

func (p *formulaParser) parseIdent() (decimal.Decimal, error) {
	start := p.pos
	for p.pos < len(p.input) && unicode.IsLetter(rune(p.input[p.pos])) {
		p.pos++
	}
	name := strings.ToLower(p.input[start:p.pos])
	if name != "qty" {
		return decimal.Zero, fmt.Errorf("unknown variable %q", name)
	}
	return p.qty, nil
}
