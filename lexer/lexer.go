package lexer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"grol.io/jsi/token"
)

// Lexer is a lazy token stream over a complete source buffer.
// Only the read position is kept; tokens are produced on demand.
type Lexer struct {
	input string
	pos   int
}

// Error is returned for input that no token rule accepts.
type Error struct {
	Char string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid character %s at %d", e.Char, e.Line)
}

func New(input string) *Lexer {
	return &Lexer{input: input}
}

// Reset restarts the stream on a new input.
func (l *Lexer) Reset(input string) {
	l.input = input
	l.pos = 0
}

func (l *Lexer) Pos() int {
	return l.pos
}

// Line returns the 1-based line number of the given byte offset.
func (l *Lexer) Line(offset int) int {
	offset = min(max(offset, 0), len(l.input))
	return strings.Count(l.input[:offset], "\n") + 1
}

// ErrorAt converts an ILLEGAL token into an [Error].
func (l *Lexer) ErrorAt(t token.Token) *Error {
	return &Error{Char: t.Literal, Line: l.Line(t.Offset)}
}

// NextToken returns the following token, EOF at the end of input and
// ILLEGAL (holding the offending character) for unrecognized input.
// Rules are tried in order: whitespace and line comments, numbers,
// words, strings, regexps, 3 then 2 character operators, single
// character operators and punctuation.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()
	start := l.pos
	ch := l.readChar()
	nextChar := l.peekChar()
	switch {
	case ch == 0 && start >= len(l.input):
		l.pos = start
		return token.Token{Type: token.EOF, Offset: start}
	case isDigit(ch):
		return l.emit(token.NUMBER, start, l.readNumber())
	case isWordChar(ch):
		l.readWord()
		word := l.input[start:l.pos]
		return l.emit(token.LookupIdent(word), start, l.pos)
	case ch == '"' || ch == '\'':
		if !l.readQuoted(ch) {
			break
		}
		return l.emit(token.STRING, start, l.pos)
	case ch == '/':
		if !l.readRegexp() {
			break
		}
		return l.emit(token.REGEXP, start, l.pos)
	case (ch == '!' || ch == '=') && nextChar == '=' && l.peekCharAt(1) == '=':
		l.pos += 2
		return l.emit(token.LookupOperator(l.input[start:l.pos]), start, l.pos)
	case (ch == '<' || ch == '>') && nextChar == '=':
		l.pos++
		return l.emit(token.LookupOperator(l.input[start:l.pos]), start, l.pos)
	default:
		if t := token.LookupOperator(string(ch)); t != token.ILLEGAL {
			return l.emit(t, start, l.pos)
		}
	}
	_, size := utf8.DecodeRuneInString(l.input[start:])
	l.pos = start + size
	return token.Token{Type: token.ILLEGAL, Literal: l.input[start:l.pos], Offset: start}
}

func (l *Lexer) emit(t token.Type, start, end int) token.Token {
	l.pos = end
	return token.Token{Type: t, Literal: l.input[start:end], Offset: start}
}

func isWhiteSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == '\v' || ch == '\f'
}

func (l *Lexer) skipWhitespaceAndComments() {
	for {
		ch := l.peekChar()
		switch {
		case isWhiteSpace(ch):
			l.pos++
		case ch == '/' && l.peekCharAt(1) == '/':
			for notEOL(l.peekChar()) {
				l.pos++
			}
		default:
			return
		}
	}
}

func (l *Lexer) readChar() byte {
	ch := l.peekChar()
	l.pos++
	return ch
}

func (l *Lexer) peekChar() byte {
	return l.peekCharAt(0)
}

func (l *Lexer) peekCharAt(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

// readQuoted consumes up to and including the closing quote. Escapes are
// skipped over, not decoded. Returns false if the string isn't terminated.
func (l *Lexer) readQuoted(sep byte) bool {
	for l.pos < len(l.input) {
		ch := l.readChar()
		switch {
		case ch == '\\' && l.pos < len(l.input):
			l.pos++
		case ch == sep:
			return true
		}
	}
	return false
}

// readRegexp reads a non empty /body/ followed by optional g, m, i flags
// (in that order).
func (l *Lexer) readRegexp() bool {
	start := l.pos
	for l.pos < len(l.input) {
		ch := l.readChar()
		switch {
		case ch == '\\' && l.pos < len(l.input):
			l.pos++
		case ch == '/':
			if l.pos-1 == start {
				return false // empty body
			}
			for _, f := range []byte("gmi") {
				if l.peekChar() == f {
					l.pos++
				}
			}
			return true
		}
	}
	return false
}

func (l *Lexer) readWord() {
	for isWordChar(l.peekChar()) {
		l.pos++
	}
}

func notEOL(ch byte) bool {
	return ch != '\n' && ch != 0
}

// readNumber returns the end of digits[.digits*][(e|E)[+-]digits].
func (l *Lexer) readNumber() int {
	for isDigit(l.peekChar()) {
		l.pos++
	}
	if l.peekChar() == '.' {
		l.pos++
		for isDigit(l.peekChar()) {
			l.pos++
		}
	}
	end := l.pos
	peek := l.peekChar()
	if peek != 'e' && peek != 'E' {
		return end
	}
	l.pos++
	peek = l.peekChar()
	if peek == '+' || peek == '-' {
		l.pos++
	}
	if !isDigit(l.peekChar()) {
		// not an exponent, the e starts the next token
		return end
	}
	for isDigit(l.peekChar()) {
		l.pos++
	}
	return l.pos
}

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isWordChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
