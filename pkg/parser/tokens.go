package parser

// TokenType represents the type of a lexical token.
type TokenType uint8

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenString       // 'hello' or "hello"
	TokenTemplate     // `hello ${name}`
	TokenInt          // 123
	TokenFloat        // 3.14, 1e-10
	TokenIdent        // user, $index, @entity, #intent
	TokenUnterminated // a quote that never closes

	// Symbols
	TokenArrow    // =>
	TokenOperator // + - * / % ^ & ! && || == != <> < <= > >=
	TokenPunct    // ( ) [ ] { } , . :
)

// String returns a string representation of the token type.
func (tt TokenType) String() string {
	switch tt {
	case TokenEOF:
		return "(eof)"
	case TokenError:
		return "(error)"
	case TokenString:
		return "(string)"
	case TokenTemplate:
		return "(template)"
	case TokenInt:
		return "(integer)"
	case TokenFloat:
		return "(float)"
	case TokenIdent:
		return "(identifier)"
	case TokenUnterminated:
		return "(unterminated string)"
	case TokenArrow:
		return "=>"
	case TokenOperator:
		return "(operator)"
	case TokenPunct:
		return "(punctuation)"
	}
	return "(unknown)"
}

// Token is a lexical token with its byte offset in the source.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}

// Is reports whether t is the symbol s.
func (t Token) Is(s string) bool {
	return (t.Type == TokenOperator || t.Type == TokenPunct || t.Type == TokenArrow) && t.Value == s
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return t.Type.String()
	}
	return t.Value
}
