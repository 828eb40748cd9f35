package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/sandrolain/goexpr/pkg/types"
)

// Parser implements a recursive descent parser for expressions.
// It uses Pratt's "Top Down Operator Precedence" algorithm to handle
// operator precedence correctly.
type Parser struct {
	input   string
	tokens  []Token
	pos     int
	current Token
	lexErr  error
	depth   int
	// base offsets positions when parsing a template fragment.
	base int
	opts CompileOptions
}

// NewParser creates a new parser for the given input string.
func NewParser(input string, opts ...CompileOption) *Parser {
	options := CompileOptions{
		MaxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Lookup == nil {
		options.Lookup = DefaultLookup
	}
	return newParser(input, 0, options)
}

func newParser(input string, base int, opts CompileOptions) *Parser {
	p := &Parser{input: input, base: base, opts: opts}
	tokens, err := Tokenize(input)
	if err != nil {
		p.lexErr = shift(err, base)
		tokens = []Token{{Type: TokenEOF}}
	}
	p.tokens = tokens
	p.current = tokens[0]
	return p
}

// shift moves a lexer error into the coordinates of the enclosing input.
func shift(err error, base int) error {
	var terr *types.Error
	if base > 0 && errors.As(err, &terr) && terr.Position >= 0 {
		terr.Position += base
	}
	return err
}

// Parse parses the entire expression and returns the root node.
// Empty input is the empty string constant.
func (p *Parser) Parse() (*types.Expression, error) {
	if p.lexErr == nil && p.current.Type == TokenEOF {
		return types.NewConstant(""), nil
	}
	return p.parseAll()
}

func (p *Parser) parseAll() (*types.Expression, error) {
	if p.lexErr != nil {
		return nil, p.lexErr
	}
	if p.opts.Lookup == nil {
		return nil, types.NewError(types.ErrUnknownFunction, "no operator lookup configured", -1)
	}
	if p.current.Type == TokenEOF {
		return nil, p.error(types.ErrSyntaxError, "Empty expression")
	}

	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", p.current))
	}
	return expr, nil
}

// Binding powers. Binary operators use ten times their declared
// precedence; prefix operators bind tighter than any binary operator and
// path steps tighter still.
const (
	unaryPrecedence   = 90
	postfixPrecedence = 100
)

// binaryOperator resolves an infix symbol, including the <> alias.
func binaryOperator(t Token) (types.BinaryOperator, bool) {
	if t.Type != TokenOperator {
		return types.BinaryOperator{}, false
	}
	if t.Value == "<>" {
		return types.BinaryBySymbol("!=")
	}
	return types.BinaryBySymbol(t.Value)
}

// getPrecedence returns the left binding power of a token.
func (p *Parser) getPrecedence(t Token) int {
	if op, ok := binaryOperator(t); ok {
		return op.Precedence * 10
	}
	if t.Is(".") || t.Is("[") {
		return postfixPrecedence
	}
	return 0
}

// advance moves to the next token.
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.current = p.tokens[p.pos]
}

// peek returns the token after the current one.
func (p *Parser) peek() Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}

// expect checks that the current token is the symbol s and advances.
func (p *Parser) expect(s string) error {
	if !p.current.Is(s) {
		return p.error(types.ErrExpectedToken, fmt.Sprintf("Expected %s but got %s", s, p.current))
	}
	p.advance()
	return nil
}

// error creates a parser error at the current token.
func (p *Parser) error(code types.ErrorCode, message string) error {
	return p.errorAt(p.current, code, message)
}

func (p *Parser) errorAt(t Token, code types.ErrorCode, message string) *types.Error {
	return types.NewError(code, message, p.base+t.Position).WithToken(t.Value)
}

// positioned attaches the token position to a validation error.
func (p *Parser) positioned(err error, t Token) error {
	var terr *types.Error
	if errors.As(err, &terr) {
		if terr.Position < 0 {
			terr.Position = p.base + t.Position
		}
		if terr.Token == "" {
			terr.Token = t.Value
		}
		return terr
	}
	return p.errorAt(t, types.ErrInvalidExpression, err.Error()).WithCause(err)
}

// build resolves kind and constructs a validated node.
func (p *Parser) build(t Token, kind string, children ...*types.Expression) (*types.Expression, error) {
	def, ok := p.opts.Lookup(kind)
	if !ok {
		return nil, p.errorAt(t, types.ErrUnknownFunction,
			fmt.Sprintf("%s does not have an evaluator, it's not a built-in function or a custom function", kind))
	}
	expr, err := types.MakeExpression(def, children...)
	if err != nil {
		return nil, p.positioned(err, t)
	}
	return expr, nil
}

// parseExpression parses an expression with operator precedence.
// rbp is the right binding power (minimum precedence).
func (p *Parser) parseExpression(rbp int) (*types.Expression, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.opts.MaxDepth > 0 && p.depth > p.opts.MaxDepth {
		return nil, p.error(types.ErrSyntaxError,
			fmt.Sprintf("Expression nesting exceeds maximum depth %d", p.opts.MaxDepth))
	}

	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for rbp < p.getPrecedence(p.current) {
		left, err = p.parseInfix(left)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

// parsePrefix parses an expression that does not require a left-hand side.
func (p *Parser) parsePrefix() (*types.Expression, error) {
	token := p.current

	switch token.Type {
	case TokenString:
		return p.parseString()
	case TokenTemplate:
		return p.parseTemplate()
	case TokenInt, TokenFloat:
		return p.parseNumber("")
	case TokenIdent:
		switch token.Value {
		case "true", "false":
			p.advance()
			return types.NewConstant(token.Value == "true"), nil
		case "null":
			p.advance()
			return types.NewConstant(nil), nil
		}
		if p.peek().Is("(") {
			return p.parseFunctionCall()
		}
		p.advance()
		return p.build(token, types.KindAccessor, types.NewConstant(token.Value))
	case TokenOperator:
		if _, ok := types.UnaryOperators[token.Value]; ok {
			return p.parseUnary()
		}
	case TokenPunct:
		switch token.Value {
		case "(":
			return p.parseGrouping()
		case "[":
			return p.parseArrayConstructor()
		case "{":
			return p.parseObjectConstructor()
		}
	}
	return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected token: %s", token))
}

// parseInfix parses an expression that requires a left-hand side.
func (p *Parser) parseInfix(left *types.Expression) (*types.Expression, error) {
	token := p.current

	switch {
	case token.Is("."):
		return p.parsePath(left)
	case token.Is("["):
		return p.parseElement(left)
	}
	if op, ok := binaryOperator(token); ok {
		return p.parseBinaryOp(left, op)
	}
	return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("Unexpected infix token: %s", token))
}

// unescapeString processes escape sequences in a literal body.
// Handles standard escapes (\n, \t, etc.) and Unicode escapes (\uXXXX),
// including UTF-16 surrogate pairs.
func unescapeString(s string) (string, error) {
	if !strings.Contains(s, "\\") {
		return s, nil
	}

	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			result.WriteByte(s[i])
			continue
		}

		i++
		if i >= len(s) {
			return "", fmt.Errorf("invalid escape sequence at end of string")
		}

		switch s[i] {
		case 'n':
			result.WriteByte('\n')
		case 't':
			result.WriteByte('\t')
		case 'r':
			result.WriteByte('\r')
		case 'b':
			result.WriteByte('\b')
		case 'f':
			result.WriteByte('\f')
		case '\\', '"', '\'', '/', '`', '$':
			result.WriteByte(s[i])
		case 'u':
			if i+4 >= len(s) {
				return "", fmt.Errorf("invalid \\u escape: not enough characters")
			}
			hex := s[i+1 : i+5]
			codePoint, err := strconv.ParseUint(hex, 16, 16)
			if err != nil {
				return "", fmt.Errorf("invalid \\u escape: %s", hex)
			}
			i += 4
			r := rune(codePoint)
			if r >= 0xD800 && r <= 0xDBFF && i+6 < len(s) && s[i+1] == '\\' && s[i+2] == 'u' {
				if low, err := strconv.ParseUint(s[i+3:i+7], 16, 16); err == nil && low >= 0xDC00 && low <= 0xDFFF {
					result.WriteRune(utf16.DecodeRune(r, rune(low)))
					i += 6
					continue
				}
			}
			result.WriteRune(r)
		default:
			return "", fmt.Errorf("invalid escape sequence: \\%c", s[i])
		}
	}
	return result.String(), nil
}

// parseString parses a quoted string literal.
func (p *Parser) parseString() (*types.Expression, error) {
	raw := p.current.Value
	unescaped, err := unescapeString(raw[1 : len(raw)-1])
	if err != nil {
		return nil, p.error(types.ErrUnsupportedEscape, fmt.Sprintf("Invalid string literal: %v", err))
	}
	p.advance()
	return types.NewConstant(unescaped), nil
}

// parseNumber parses a numeric literal. Integers are int64, everything
// with a fraction or exponent is float64.
func (p *Parser) parseNumber(sign string) (*types.Expression, error) {
	token := p.current
	text := sign + token.Value
	if token.Type == TokenInt {
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("Number out of range: %s", text))
		}
		p.advance()
		return types.NewConstant(n), nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, p.error(types.ErrNumberOutOfRange, fmt.Sprintf("Number out of range: %s", text))
	}
	p.advance()
	return types.NewConstant(f), nil
}

// parseUnary parses a prefix operator. A minus directly followed by a
// number literal becomes a negative constant.
func (p *Parser) parseUnary() (*types.Expression, error) {
	token := p.current
	p.advance()

	if token.Value == "-" && (p.current.Type == TokenInt || p.current.Type == TokenFloat) {
		return p.parseNumber("-")
	}

	operand, err := p.parseExpression(unaryPrecedence)
	if err != nil {
		return nil, err
	}
	return p.build(token, types.UnaryOperators[token.Value], operand)
}

// parseGrouping parses a parenthesized expression.
func (p *Parser) parseGrouping() (*types.Expression, error) {
	p.advance()
	expr, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return expr, nil
}

// parseArrayConstructor parses [a, b, ...] into createArray.
func (p *Parser) parseArrayConstructor() (*types.Expression, error) {
	token := p.current
	p.advance()

	var items []*types.Expression
	if !p.current.Is("]") {
		for {
			item, err := p.parseExpression(0)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.current.Is(",") {
				break
			}
			p.advance()
		}
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return p.build(token, types.KindCreateArray, items...)
}

// parseObjectConstructor parses {key: value, ...} into a chain of
// setProperty calls over json('{}').
func (p *Parser) parseObjectConstructor() (*types.Expression, error) {
	token := p.current
	p.advance()

	obj, err := p.build(token, types.KindJSON, types.NewConstant("{}"))
	if err != nil {
		return nil, err
	}
	if p.current.Is("}") {
		p.advance()
		return obj, nil
	}

	for {
		keyToken := p.current
		var key string
		switch keyToken.Type {
		case TokenIdent:
			key = keyToken.Value
		case TokenString:
			if key, err = unescapeString(keyToken.Value[1 : len(keyToken.Value)-1]); err != nil {
				return nil, p.error(types.ErrUnsupportedEscape, fmt.Sprintf("Invalid string literal: %v", err))
			}
		default:
			return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected property name but got %s", keyToken))
		}
		p.advance()
		if err := p.expect(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpression(0)
		if err != nil {
			return nil, err
		}
		if obj, err = p.build(keyToken, types.KindSetProperty, obj, types.NewConstant(key), value); err != nil {
			return nil, err
		}
		if !p.current.Is(",") {
			break
		}
		p.advance()
	}
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return obj, nil
}

// parsePath parses .name after an expression.
func (p *Parser) parsePath(left *types.Expression) (*types.Expression, error) {
	p.advance()
	token := p.current
	if token.Type != TokenIdent {
		return nil, p.error(types.ErrExpectedToken, fmt.Sprintf("Expected property name but got %s", token))
	}
	if p.peek().Is("(") {
		return nil, p.error(types.ErrSyntaxError, fmt.Sprintf("%s.%s is not a function", left, token.Value))
	}
	p.advance()
	return p.build(token, types.KindAccessor, types.NewConstant(token.Value), left)
}

// parseElement parses [index] after an expression.
func (p *Parser) parseElement(left *types.Expression) (*types.Expression, error) {
	token := p.current
	p.advance()
	index, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	if err := p.expect("]"); err != nil {
		return nil, err
	}
	return p.build(token, types.KindElement, left, index)
}

// parseBinaryOp parses the right operand of an infix operator.
func (p *Parser) parseBinaryOp(left *types.Expression, op types.BinaryOperator) (*types.Expression, error) {
	token := p.current
	p.advance()

	rbp := op.Precedence * 10
	if op.RightAssoc {
		rbp--
	}
	right, err := p.parseExpression(rbp)
	if err != nil {
		return nil, err
	}
	return p.build(token, op.Kind, left, right)
}

// parseFunctionCall parses name(args...). An argument of the form
// x => body is a lambda.
func (p *Parser) parseFunctionCall() (*types.Expression, error) {
	nameToken := p.current
	p.advance() // name
	p.advance() // (

	var args []*types.Expression
	if !p.current.Is(")") {
		for {
			var (
				arg *types.Expression
				err error
			)
			if p.current.Type == TokenIdent && p.peek().Type == TokenArrow {
				arg, err = p.parseLambda()
			} else {
				arg, err = p.parseExpression(0)
			}
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.current.Is(",") {
				break
			}
			p.advance()
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return p.build(nameToken, nameToken.Value, args...)
}

// parseLambda parses x => body.
func (p *Parser) parseLambda() (*types.Expression, error) {
	nameToken := p.current
	p.advance() // name
	arrow := p.current
	p.advance() // =>

	param, err := p.build(nameToken, types.KindAccessor, types.NewConstant(nameToken.Value))
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression(0)
	if err != nil {
		return nil, err
	}
	return p.build(arrow, types.KindLambda, param, body)
}

// parseTemplate parses a backtick template into concat over its literal
// text and ${...} fragments.
func (p *Parser) parseTemplate() (*types.Expression, error) {
	token := p.current
	body := token.Value[1 : len(token.Value)-1]
	bodyBase := p.base + token.Position + 1

	var (
		parts []*types.Expression
		lit   strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, types.NewConstant(lit.String()))
			lit.Reset()
		}
	}

	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			switch e := body[i+1]; e {
			case 'n':
				lit.WriteByte('\n')
			case 't':
				lit.WriteByte('\t')
			case 'r':
				lit.WriteByte('\r')
			case '`', '$', '\\':
				lit.WriteByte(e)
			default:
				lit.WriteByte(c)
				lit.WriteByte(e)
			}
			i += 2
		case c == '$' && i+1 < len(body) && body[i+1] == '{':
			end := matchingBrace(body, i+2)
			if end < 0 {
				return nil, types.NewError(types.ErrExpectedToken,
					"Expected } to close template expression", bodyBase+i).WithToken("${")
			}
			flush()
			sub := newParser(body[i+2:end], bodyBase+i+2, p.opts)
			sub.depth = p.depth
			expr, err := sub.parseAll()
			if err != nil {
				return nil, err
			}
			parts = append(parts, expr)
			i = end + 1
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	p.advance()

	switch {
	case len(parts) == 0:
		return types.NewConstant(""), nil
	case len(parts) == 1 && parts[0].IsConstant():
		return parts[0], nil
	}
	return p.build(token, types.KindConcat, parts...)
}

// matchingBrace returns the index of the } closing a ${ whose body starts
// at start, skipping quoted strings, or -1.
func matchingBrace(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			for i++; i < len(s) && s[i] != c; i++ {
				if s[i] == '\\' {
					i++
				}
			}
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
