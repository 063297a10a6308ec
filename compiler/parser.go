package compiler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/chazu/lispbc/value"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for s-expressions
// ---------------------------------------------------------------------------

// SyntaxError is a parse failure at a source position.
type SyntaxError struct {
	Pos     Position
	Message string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d:%d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// ParseErrors collects every syntax error found in one input.
type ParseErrors []*SyntaxError

func (e ParseErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

// Parser builds value trees from source text.
type Parser struct {
	lexer    *Lexer
	curToken Token
	errors   ParseErrors
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	return p
}

func (p *Parser) nextToken() {
	p.curToken = p.lexer.NextToken()
}

func (p *Parser) errorf(pos Position, format string, args ...interface{}) {
	p.errors = append(p.errors, &SyntaxError{Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() ParseErrors {
	return p.errors
}

// ParseProgram parses every top-level form until EOF.
func (p *Parser) ParseProgram() []value.Value {
	var forms []value.Value
	for p.curToken.Type != TokenEOF {
		if v, ok := p.parseForm(); ok {
			forms = append(forms, v)
		}
	}
	return forms
}

// parseForm parses one form starting at the current token.
func (p *Parser) parseForm() (value.Value, bool) {
	tok := p.curToken

	switch tok.Type {
	case TokenNumber:
		p.nextToken()
		f, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorf(tok.Pos, "malformed number: %s", tok.Literal)
			return nil, false
		}
		return value.Number(f), true

	case TokenString:
		p.nextToken()
		return value.String(tok.Literal), true

	case TokenCharacter:
		p.nextToken()
		r := []rune(tok.Literal)
		return value.Char(r[0]), true

	case TokenSymbol:
		p.nextToken()
		return value.Symbol(tok.Literal), true

	case TokenQuote:
		p.nextToken()
		if p.curToken.Type == TokenEOF || p.curToken.Type == TokenRParen {
			p.errorf(tok.Pos, "quote must be followed by a form")
			return nil, false
		}
		inner, ok := p.parseForm()
		if !ok {
			return nil, false
		}
		return value.Quote(inner), true

	case TokenLParen:
		return p.parseList()

	case TokenRParen:
		p.errorf(tok.Pos, "unexpected )")
		p.nextToken()
		return nil, false

	case TokenError:
		p.errorf(tok.Pos, "%s", tok.Literal)
		p.nextToken()
		return nil, false

	default:
		p.errorf(tok.Pos, "unexpected %s", tok.Type)
		p.nextToken()
		return nil, false
	}
}

// parseList parses ( form* ).
func (p *Parser) parseList() (value.Value, bool) {
	open := p.curToken.Pos
	p.nextToken() // consume (

	list := value.List{}
	ok := true
	for p.curToken.Type != TokenRParen {
		if p.curToken.Type == TokenEOF {
			p.errorf(open, "unterminated list")
			return nil, false
		}
		v, itemOK := p.parseForm()
		if !itemOK {
			ok = false
			continue
		}
		list = append(list, v)
	}
	p.nextToken() // consume )
	return list, ok
}

// Parse parses source text into top-level forms.
func Parse(input string) ([]value.Value, error) {
	p := NewParser(input)
	forms := p.ParseProgram()
	if len(p.errors) > 0 {
		return nil, p.errors
	}
	return forms, nil
}
