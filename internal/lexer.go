package internal

import (
	"strconv"
	"unicode/utf8"
)

type lexer struct {
	source  string
	start   int
	current int
	line    int
	done    bool

	state *interpreterState
}

var keywords = map[string]TokenType{
	"and":    AND,
	"class":  CLASS,
	"else":   ELSE,
	"false":  FALSE,
	"for":    FOR,
	"fun":    FUN,
	"if":     IF,
	"nil":    NIL,
	"or":     OR,
	"print":  PRINT,
	"return": RETURN,
	"super":  SUPER,
	"this":   THIS,
	"true":   TRUE,
	"var":    VAR,
	"while":  WHILE,
}

func newLexer(state *interpreterState) *lexer {
	return &lexer{
		source: state.source,
		line:   1,
		state:  state,
	}
}

// scan drains the lexer into state.tokens. The slice always ends with EOF.
func (l *lexer) scan() {
	for {
		tk, ok := l.next()
		if !ok {
			break
		}
		l.state.tokens = append(l.state.tokens, tk)
	}
}

// next returns the following token. Once EOF has been returned, ok is false.
// Unexpected characters are recorded and skipped so a single pass reports
// every lexical error.
func (l *lexer) next() (Token, bool) {
	if l.done {
		return Token{}, false
	}
	for !l.isAtEnd() {
		l.start = l.current
		if tk, emitted := l.scanToken(); emitted {
			return tk, true
		}
	}
	l.done = true
	return Token{Type: EOF, Line: l.line}, true
}

func (l *lexer) scanToken() (Token, bool) {
	c := l.advance()
	switch c {
	case '(':
		return l.emit(LEFT_PAREN, nil), true
	case ')':
		return l.emit(RIGHT_PAREN, nil), true
	case '{':
		return l.emit(LEFT_BRACE, nil), true
	case '}':
		return l.emit(RIGHT_BRACE, nil), true
	case ',':
		return l.emit(COMMA, nil), true
	case '.':
		return l.emit(DOT, nil), true
	case '-':
		return l.emit(MINUS, nil), true
	case '+':
		return l.emit(PLUS, nil), true
	case ';':
		return l.emit(SEMICOLON, nil), true
	case '*':
		return l.emit(STAR, nil), true
	case '!':
		return l.emit(l.either('=', BANG_EQUAL, BANG), nil), true
	case '=':
		return l.emit(l.either('=', EQUAL_EQUAL, EQUAL), nil), true
	case '<':
		return l.emit(l.either('=', LESS_EQUAL, LESS), nil), true
	case '>':
		return l.emit(l.either('=', GREATER_EQUAL, GREATER), nil), true
	case '/':
		if l.match('/') {
			for l.peek() != '\n' && !l.isAtEnd() {
				l.advance()
			}
			return Token{}, false
		}
		return l.emit(SLASH, nil), true

	// Ignore whitespace
	case ' ', '\r', '\t':
		return Token{}, false

	case '\n':
		l.line++
		return Token{}, false

	case '"':
		return l.string()

	default:
		if isDigit(c) {
			return l.number(), true
		}
		if isAlpha(c) {
			return l.identifier(), true
		}
		r, size := utf8.DecodeRuneInString(l.source[l.start:])
		l.current = l.start + size
		l.state.setError(ErrUnexpectedCharacter, l.line, "", "Unexpected character: "+string(r))
		return Token{}, false
	}
}

func (l *lexer) string() (Token, bool) {
	for l.peek() != '"' && !l.isAtEnd() {
		if l.peek() == '\n' {
			l.line++
		}
		l.advance()
	}

	if l.isAtEnd() {
		l.state.setError(ErrUnterminatedString, l.line, "", "Unterminated string.")
		return Token{}, false
	}

	// Consume ending "
	l.advance()

	literal := l.source[l.start+1 : l.current-1]
	return l.emit(STRING, literal), true
}

func (l *lexer) number() Token {
	for isDigit(l.peek()) {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekNext()) {
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}

	literal, _ := strconv.ParseFloat(l.source[l.start:l.current], 64)

	return l.emit(NUMBER, literal)
}

func (l *lexer) identifier() Token {
	for isAlpha(l.peek()) || isDigit(l.peek()) {
		l.advance()
	}

	identifier := l.source[l.start:l.current]

	tokenType, ok := keywords[identifier]
	if !ok {
		tokenType = IDENTIFIER
	}

	return l.emit(tokenType, nil)
}

func (l *lexer) advance() byte {
	current := l.source[l.current]
	l.current++
	return current
}

func (l *lexer) match(c byte) bool {
	if l.isAtEnd() || l.source[l.current] != c {
		return false
	}
	l.current++
	return true
}

func (l *lexer) either(c byte, matched, otherwise TokenType) TokenType {
	if l.match(c) {
		return matched
	}
	return otherwise
}

func (l *lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.source[l.current]
}

func (l *lexer) peekNext() byte {
	if l.current+1 >= len(l.source) {
		return 0
	}
	return l.source[l.current+1]
}

func (l *lexer) emit(token TokenType, literal interface{}) Token {
	return Token{
		Type:    token,
		Lexeme:  l.source[l.start:l.current],
		Literal: literal,
		Line:    l.line,
	}
}

func (l *lexer) isAtEnd() bool {
	return l.current >= len(l.source)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isAlpha(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}
