// Package scanner extracts class and mixin declaration records from the text
// of one source unit. It recognizes only the partial grammar needed to drive
// generation: declaration headers, directives, field lists, property tables,
// and method boundaries. Everything inside a method body is kept as a typed
// token stream so the rewriter can do exact token-equality substitution.
package scanner

import (
	"github.com/zig-whatwg/zoop/zooperr"
)

// TokenType classifies a lexer token.
type TokenType string

const (
	TokenIdent    TokenType = "IDENT"
	TokenNumber   TokenType = "NUMBER"
	TokenString   TokenType = "STRING"
	TokenLBrace   TokenType = "LBRACE"
	TokenRBrace   TokenType = "RBRACE"
	TokenLParen   TokenType = "LPAREN"
	TokenRParen   TokenType = "RPAREN"
	TokenLBracket TokenType = "LBRACKET"
	TokenRBracket TokenType = "RBRACKET"
	TokenColon    TokenType = "COLON"
	TokenSemi     TokenType = "SEMI"
	TokenComma    TokenType = "COMMA"
	TokenDot      TokenType = "DOT"
	TokenEquals   TokenType = "EQUALS"
	TokenStar     TokenType = "STAR"
	TokenOp       TokenType = "OP"
)

// Token is one lexical token with its position in the unit source.
// Offset is the byte offset of the token's first character, End the byte
// offset one past its last character; both index into the text that was
// lexed, so raw spans can be sliced back out without re-rendering.
type Token struct {
	Type   TokenType
	Value  string
	Line   int
	Col    int
	Offset int
	End    int
}

// Lex tokenizes source text. Line comments and whitespace are dropped.
// The unit name is only used for error reporting.
func Lex(unit, src string) ([]Token, error) {
	var toks []Token
	line, col := 1, 1
	i := 0

	advance := func(n int) {
		for k := 0; k < n; k++ {
			if src[i+k] == '\n' {
				line++
				col = 1
			} else {
				col++
			}
		}
		i += n
	}

	for i < len(src) {
		c := src[i]

		// Whitespace
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			advance(1)
			continue
		}

		// Line comment
		if c == '/' && i+1 < len(src) && src[i+1] == '/' {
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			advance(j - i)
			continue
		}

		// Multiline string line: \\ ... to end of line
		if c == '\\' && i+1 < len(src) && src[i+1] == '\\' {
			start, startLine, startCol := i, line, col
			j := i
			for j < len(src) && src[j] != '\n' {
				j++
			}
			advance(j - i)
			toks = append(toks, Token{Type: TokenString, Value: src[start:j], Line: startLine, Col: startCol, Offset: start, End: j})
			continue
		}

		// String and character literals
		if c == '"' || c == '\'' {
			quote := c
			start, startLine, startCol := i, line, col
			j := i + 1
			terminated := false
			for j < len(src) {
				if src[j] == '\\' && j+1 < len(src) {
					j += 2
					continue
				}
				if src[j] == quote {
					j++
					terminated = true
					break
				}
				if src[j] == '\n' {
					break
				}
				j++
			}
			if !terminated {
				return nil, &zooperr.ParseError{Unit: unit, Line: startLine, Column: startCol, Msg: "unterminated string literal"}
			}
			advance(j - i)
			toks = append(toks, Token{Type: TokenString, Value: src[start:j], Line: startLine, Col: startCol, Offset: start, End: j})
			continue
		}

		// Identifiers, including builtins like @import
		if isIdentStart(c) || (c == '@' && i+1 < len(src) && isIdentStart(src[i+1])) {
			start, startLine, startCol := i, line, col
			j := i
			if src[j] == '@' {
				j++
			}
			for j < len(src) && isIdentPart(src[j]) {
				j++
			}
			advance(j - i)
			toks = append(toks, Token{Type: TokenIdent, Value: src[start:j], Line: startLine, Col: startCol, Offset: start, End: j})
			continue
		}

		// Numbers: digits plus alphanumeric suffixes (0x1f, 1_000) and a
		// fractional part when the dot is followed by a digit.
		if c >= '0' && c <= '9' {
			start, startLine, startCol := i, line, col
			j := i
			for j < len(src) && (isIdentPart(src[j]) || (src[j] == '.' && j+1 < len(src) && src[j+1] >= '0' && src[j+1] <= '9')) {
				j++
			}
			advance(j - i)
			toks = append(toks, Token{Type: TokenNumber, Value: src[start:j], Line: startLine, Col: startCol, Offset: start, End: j})
			continue
		}

		// Punctuation
		typ := TokenOp
		switch c {
		case '{':
			typ = TokenLBrace
		case '}':
			typ = TokenRBrace
		case '(':
			typ = TokenLParen
		case ')':
			typ = TokenRParen
		case '[':
			typ = TokenLBracket
		case ']':
			typ = TokenRBracket
		case ':':
			typ = TokenColon
		case ';':
			typ = TokenSemi
		case ',':
			typ = TokenComma
		case '.':
			typ = TokenDot
		case '=':
			typ = TokenEquals
		case '*':
			typ = TokenStar
		}
		toks = append(toks, Token{Type: typ, Value: string(c), Line: line, Col: col, Offset: i, End: i + 1})
		advance(1)
	}

	return toks, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
