package compiler

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for s-expression syntax
// ---------------------------------------------------------------------------

// Lexer tokenizes s-expression source code.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar reads the next character.
func (l *Lexer) readChar() {
	if l.ch == '\n' {
		l.line++
		l.col = 0
	}
	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += size
	l.col++
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *Lexer) position() Position {
	return Position{Offset: l.pos, Line: l.line, Column: l.col}
}

func (l *Lexer) atEOF() bool {
	return l.pos >= len(l.input)
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipWhitespaceAndComments()

	pos := l.position()

	switch {
	case l.atEOF():
		return Token{Type: TokenEOF, Pos: pos}

	case l.ch == '(':
		l.readChar()
		return Token{Type: TokenLParen, Literal: "(", Pos: pos}

	case l.ch == ')':
		l.readChar()
		return Token{Type: TokenRParen, Literal: ")", Pos: pos}

	case l.ch == '`':
		l.readChar()
		return Token{Type: TokenQuote, Literal: "`", Pos: pos}

	case l.ch == '"':
		return l.readString(pos)

	case l.ch == '\'':
		return l.readCharacter(pos)

	default:
		return l.readAtom(pos)
	}
}

// skipWhitespaceAndComments skips whitespace and ;-comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for !l.atEOF() {
		switch l.ch {
		case ' ', '\t', '\n', '\r':
			l.readChar()
		case ';':
			for l.ch != '\n' && !l.atEOF() {
				l.readChar()
			}
		default:
			return
		}
	}
}

// readString reads a double-quoted string literal.
func (l *Lexer) readString(pos Position) Token {
	l.readChar() // consume opening "

	var sb strings.Builder
	for !l.atEOF() && l.ch != '"' {
		if l.ch == '\\' {
			r, err := l.readEscape()
			if err != nil {
				return Token{Type: TokenError, Literal: err.Error(), Pos: pos}
			}
			sb.WriteRune(r)
			continue
		}
		sb.WriteRune(l.ch)
		l.readChar()
	}

	if l.atEOF() {
		return Token{Type: TokenError, Literal: "unterminated string", Pos: pos}
	}
	l.readChar() // consume closing "
	return Token{Type: TokenString, Literal: sb.String(), Pos: pos}
}

// readCharacter reads a character literal: 'a' or '\n'.
func (l *Lexer) readCharacter(pos Position) Token {
	l.readChar() // consume opening '

	if l.atEOF() {
		return Token{Type: TokenError, Literal: "unterminated character", Pos: pos}
	}

	var r rune
	if l.ch == '\\' {
		var err error
		if r, err = l.readEscape(); err != nil {
			return Token{Type: TokenError, Literal: err.Error(), Pos: pos}
		}
	} else {
		r = l.ch
		l.readChar()
	}

	if l.ch != '\'' {
		return Token{Type: TokenError, Literal: "character literal must hold exactly one character", Pos: pos}
	}
	l.readChar() // consume closing '
	return Token{Type: TokenCharacter, Literal: string(r), Pos: pos}
}

// readEscape decodes one backslash escape. The current character is the
// backslash; on return the lexer is past the escape.
func (l *Lexer) readEscape() (rune, error) {
	l.readChar() // consume backslash
	ch := l.ch
	if l.atEOF() {
		return 0, fmt.Errorf("unexpected end of input after '\\'")
	}
	l.readChar()

	switch ch {
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case '0':
		return 0, nil
	case '\\', '"', '\'':
		return ch, nil
	case 'u':
		if l.ch != '{' {
			return 0, fmt.Errorf("expected '{' after \\u")
		}
		l.readChar()
		start := l.pos
		for !l.atEOF() && l.ch != '}' {
			l.readChar()
		}
		if l.atEOF() {
			return 0, fmt.Errorf("unterminated \\u{...} escape")
		}
		digits := l.input[start:l.pos]
		l.readChar() // consume }
		n, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || !utf8.ValidRune(rune(n)) {
			return 0, fmt.Errorf("invalid code point \\u{%s}", digits)
		}
		return rune(n), nil
	default:
		return 0, fmt.Errorf("unexpected escape sequence \\%c", ch)
	}
}

// readAtom reads a bare token: a number if it looks like one, otherwise a
// symbol.
func (l *Lexer) readAtom(pos Position) Token {
	start := l.pos
	for !l.atEOF() && !isDelimiter(l.ch) && l.ch != '\'' {
		l.readChar()
	}
	text := l.input[start:l.pos]
	if text == "" {
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character: %q", ch), Pos: pos}
	}

	if looksNumeric(text) {
		if _, err := strconv.ParseFloat(text, 64); err != nil {
			return Token{Type: TokenError, Literal: fmt.Sprintf("malformed number: %s", text), Pos: pos}
		}
		return Token{Type: TokenNumber, Literal: text, Pos: pos}
	}
	return Token{Type: TokenSymbol, Literal: text, Pos: pos}
}

// looksNumeric reports whether an atom should be read as a number: it
// starts with a digit, or with a sign or '.' followed by a digit. This
// keeps symbols such as +, -, inf and nan out of strconv.
func looksNumeric(s string) bool {
	if s == "" {
		return false
	}
	i := 0
	if s[0] == '+' || s[0] == '-' {
		i++
	}
	if i < len(s) && s[i] == '.' {
		i++
	}
	return i < len(s) && isDigit(rune(s[i]))
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
