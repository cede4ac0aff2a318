package costing

import (
	"regexp"
	"strings"

	"github.com/printcloud/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Cost formulas are arithmetic over plain numbers: digits, + - * / and
// parentheses, whitespace tolerated. Validation runs before evaluation
// so the API can reject bad input without computing anything.

var formulaCharset = regexp.MustCompile(`^[0-9+\-*/().\s]+$`)

// ValidateFormula checks a formula string without evaluating it.
// It rejects empty input, illegal characters, unbalanced parentheses,
// misplaced operators and empty groups.
func ValidateFormula(expr string) error {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return shared.NewDomainError("EMPTY_FORMULA", "Formula cannot be empty")
	}
	if !formulaCharset.MatchString(trimmed) {
		return shared.NewDomainError("ILLEGAL_CHARACTER", "Formula may only contain digits, + - * / and parentheses")
	}

	depth := 0
	var prev rune // Last significant rune, 0 at start
	for _, r := range trimmed {
		switch {
		case r == ' ' || r == '\t':
			continue
		case r == '(':
			if prev == ')' || isDigitRune(prev) || prev == '.' {
				return shared.NewDomainError("MALFORMED_FORMULA", "Missing operator before '('")
			}
			depth++
		case r == ')':
			if depth == 0 {
				return shared.NewDomainError("UNBALANCED_PARENTHESES", "Unexpected ')'")
			}
			if prev == '(' {
				return shared.NewDomainError("EMPTY_GROUP", "Empty parentheses are not allowed")
			}
			if isOperatorRune(prev) {
				return shared.NewDomainError("MALFORMED_FORMULA", "Operator before ')'")
			}
			depth--
		case isOperatorRune(r):
			if prev == 0 || prev == '(' || isOperatorRune(prev) {
				return shared.NewDomainError("MALFORMED_FORMULA", "Operator in an invalid position")
			}
		case isDigitRune(r) || r == '.':
			if prev == ')' {
				return shared.NewDomainError("MALFORMED_FORMULA", "Missing operator after ')'")
			}
		}
		prev = r
	}
	if depth != 0 {
		return shared.NewDomainError("UNBALANCED_PARENTHESES", "Unclosed '('")
	}
	if isOperatorRune(prev) {
		return shared.NewDomainError("MALFORMED_FORMULA", "Formula cannot end with an operator")
	}
	return nil
}

// EvaluateFormula validates and evaluates a formula, returning the amount
// rounded to the nearest integer.
func EvaluateFormula(expr string) (decimal.Decimal, error) {
	if err := ValidateFormula(expr); err != nil {
		return decimal.Zero, err
	}

	p := &formulaParser{input: []rune(strings.TrimSpace(expr))}
	result, err := p.parseExpression()
	if err != nil {
		return decimal.Zero, err
	}
	p.skipSpace()
	if p.pos < len(p.input) {
		return decimal.Zero, shared.NewDomainError("MALFORMED_FORMULA", "Unexpected trailing input")
	}
	return result.Round(0), nil
}

func isOperatorRune(r rune) bool {
	return r == '+' || r == '-' || r == '*' || r == '/'
}

func isDigitRune(r rune) bool {
	return r >= '0' && r <= '9'
}

// formulaParser is a recursive-descent parser with standard precedence:
// expression := term (('+'|'-') term)*
// term       := factor (('*'|'/') factor)*
// factor     := number | '(' expression ')'
type formulaParser struct {
	input []rune
	pos   int
}

func (p *formulaParser) parseExpression() (decimal.Decimal, error) {
	left, err := p.parseTerm()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		if op != '+' && op != '-' {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '+' {
			left = left.Add(right)
		} else {
			left = left.Sub(right)
		}
	}
}

func (p *formulaParser) parseTerm() (decimal.Decimal, error) {
	left, err := p.parseFactor()
	if err != nil {
		return decimal.Zero, err
	}
	for {
		p.skipSpace()
		if p.pos >= len(p.input) {
			return left, nil
		}
		op := p.input[p.pos]
		if op != '*' && op != '/' {
			return left, nil
		}
		p.pos++
		right, err := p.parseFactor()
		if err != nil {
			return decimal.Zero, err
		}
		if op == '*' {
			left = left.Mul(right)
		} else {
			if right.IsZero() {
				return decimal.Zero, shared.NewDomainError("DIVISION_BY_ZERO", "Formula divides by zero")
			}
			left = left.DivRound(right, 10)
		}
	}
}

func (p *formulaParser) parseFactor() (decimal.Decimal, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return decimal.Zero, shared.NewDomainError("MALFORMED_FORMULA", "Unexpected end of formula")
	}
	if p.input[p.pos] == '(' {
		p.pos++
		inner, err := p.parseExpression()
		if err != nil {
			return decimal.Zero, err
		}
		p.skipSpace()
		if p.pos >= len(p.input) || p.input[p.pos] != ')' {
			return decimal.Zero, shared.NewDomainError("UNBALANCED_PARENTHESES", "Expected ')'")
		}
		p.pos++
		return inner, nil
	}
	return p.parseNumber()
}

func (p *formulaParser) parseNumber() (decimal.Decimal, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		r := p.input[p.pos]
		if isDigitRune(r) {
			p.pos++
			continue
		}
		if r == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return decimal.Zero, shared.NewDomainError("MALFORMED_FORMULA", "Expected a number")
	}
	value, err := decimal.NewFromString(string(p.input[start:p.pos]))
	if err != nil {
		return decimal.Zero, shared.NewDomainError("MALFORMED_FORMULA", "Invalid number in formula")
	}
	return value, nil
}

func (p *formulaParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
