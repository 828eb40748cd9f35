package parser

import (
	"errors"
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"

	"github.com/sandrolain/goexpr/pkg/types"
)

// definition is the token grammar. Rules are tried in order at each offset,
// so String and Template must precede Unterminated, and Float must precede
// Int.
var definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Template", Pattern: "`(?:\\\\[\\s\\S]|[^`\\\\])*`"},
	{Name: "String", Pattern: `'(?:\\[\s\S]|[^'\\])*'|"(?:\\[\s\S]|[^"\\])*"`},
	{Name: "Unterminated", Pattern: "['\"`][\\s\\S]*"},
	{Name: "Float", Pattern: `\d+\.\d+(?:[eE][-+]?\d+)?|\d+[eE][-+]?\d+`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_@$#][a-zA-Z0-9_]*`},
	{Name: "Arrow", Pattern: `=>`},
	{Name: "Operator", Pattern: `\|\||&&|==|!=|<>|<=|>=|[-+*/%^&<>!]`},
	{Name: "Punct", Pattern: `[()\[\]{},.:]`},
})

var tokenTypes = func() map[lexer.TokenType]TokenType {
	byName := map[string]TokenType{
		"Template":     TokenTemplate,
		"String":       TokenString,
		"Unterminated": TokenUnterminated,
		"Float":        TokenFloat,
		"Int":          TokenInt,
		"Ident":        TokenIdent,
		"Arrow":        TokenArrow,
		"Operator":     TokenOperator,
		"Punct":        TokenPunct,
	}
	out := make(map[lexer.TokenType]TokenType, len(byName))
	for name, sym := range definition.Symbols() {
		if tt, ok := byName[name]; ok {
			out[sym] = tt
		}
	}
	return out
}()

var whitespace = definition.Symbols()["Whitespace"]

// Tokenize splits input into tokens, dropping whitespace. The last token is
// always TokenEOF. An unterminated string literal yields an S0101 error;
// any other unrecognized character yields S0201.
func Tokenize(input string) ([]Token, error) {
	lex, err := definition.LexString("", input)
	if err != nil {
		return nil, lexError(err, input)
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, lexError(err, input)
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		switch {
		case t.EOF():
			tokens = append(tokens, Token{Type: TokenEOF, Position: t.Pos.Offset})
		case t.Type == whitespace:
			continue
		default:
			tt := tokenTypes[t.Type]
			if tt == TokenUnterminated {
				return nil, types.NewError(types.ErrStringNotClosed,
					"string literal is not closed", t.Pos.Offset).WithToken(t.Value[:1])
			}
			tokens = append(tokens, Token{Type: tt, Value: t.Value, Position: t.Pos.Offset})
		}
	}
	if len(tokens) == 0 || tokens[len(tokens)-1].Type != TokenEOF {
		tokens = append(tokens, Token{Type: TokenEOF, Position: len(input)})
	}
	return tokens, nil
}

func lexError(err error, input string) error {
	var lexErr *lexer.Error
	if errors.As(err, &lexErr) {
		offset := lexErr.Pos.Offset
		token := ""
		if offset < len(input) {
			token = input[offset : offset+1]
		}
		return types.NewError(types.ErrSyntaxError,
			fmt.Sprintf("unexpected character %q", token), offset).WithToken(token).WithCause(err)
	}
	return types.NewError(types.ErrSyntaxError, err.Error(), -1).WithCause(err)
}
