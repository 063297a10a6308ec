package compiler

import "fmt"

// ---------------------------------------------------------------------------
// Token types for the s-expression lexer
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Literals
	TokenNumber    // 42, -1.5, 1e3
	TokenString    // "hello"
	TokenCharacter // 'a'
	TokenSymbol    // foo, +, <=

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenQuote  // `
)

var tokenNames = map[TokenType]string{
	TokenEOF:       "EOF",
	TokenError:     "ERROR",
	TokenNumber:    "NUMBER",
	TokenString:    "STRING",
	TokenCharacter: "CHARACTER",
	TokenSymbol:    "SYMBOL",
	TokenLParen:    "(",
	TokenRParen:    ")",
	TokenQuote:     "`",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Position is a location in source text.
type Position struct {
	Offset int // byte offset (0-based)
	Line   int // 1-based
	Column int // 1-based
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token. For strings and characters Literal
// holds the decoded text, escapes already applied.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	if len(t.Literal) > 20 {
		return fmt.Sprintf("%s(%q...)", t.Type, t.Literal[:20])
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// isDelimiter reports whether r ends a bare token.
func isDelimiter(r rune) bool {
	switch r {
	case 0, '(', ')', '"', '`', ';', ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
