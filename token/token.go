package token

import (
	"strconv"

	"fortio.org/log"
	"fortio.org/sets"
)

type Type uint8

// Token is one lexeme. Literal is the raw source slice (quotes, slashes and
// flags included); Offset is the byte position of its first character.
type Token struct {
	Type    Type
	Literal string
	Offset  int
}

const (
	ILLEGAL Type = iota
	EOF

	// Identifiers + literals.
	IDENT  // add, foobar, x, y, ...
	NUMBER // 1343456, 1.5, 2e-3
	STRING // 'abc' or "abc", quotes kept
	REGEXP // /ab+c/gi, slashes and flags kept

	// Operators.
	ASSIGN
	PLUS
	MINUS
	BANG
	ASTERISK

	LT
	GT
	LTEQ
	GTEQ

	EQ    // ===
	NOTEQ // !==

	// Delimiters.
	COMMA
	SEMICOLON
	COLON
	DOT

	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET

	// Keywords.
	startKeywords
	VAR
	FUNCTION
	IF
	ELSE
	WHILE
	BREAK
	THROW
	RETURN
	TRUE
	FALSE
	NULL
	endKeywords
)

var names = [...]string{
	ILLEGAL:   "ILLEGAL",
	EOF:       "EOF",
	IDENT:     "IDENT",
	NUMBER:    "NUMBER",
	STRING:    "STRING",
	REGEXP:    "REGEXP",
	ASSIGN:    "ASSIGN",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	BANG:      "BANG",
	ASTERISK:  "ASTERISK",
	LT:        "LT",
	GT:        "GT",
	LTEQ:      "LTEQ",
	GTEQ:      "GTEQ",
	EQ:        "EQ",
	NOTEQ:     "NOTEQ",
	COMMA:     "COMMA",
	SEMICOLON: "SEMICOLON",
	COLON:     "COLON",
	DOT:       "DOT",
	LPAREN:    "LPAREN",
	RPAREN:    "RPAREN",
	LBRACE:    "LBRACE",
	RBRACE:    "RBRACE",
	LBRACKET:  "LBRACKET",
	RBRACKET:  "RBRACKET",
	VAR:       "VAR",
	FUNCTION:  "FUNCTION",
	IF:        "IF",
	ELSE:      "ELSE",
	WHILE:     "WHILE",
	BREAK:     "BREAK",
	THROW:     "THROW",
	RETURN:    "RETURN",
	TRUE:      "TRUE",
	FALSE:     "FALSE",
	NULL:      "NULL",
}

func (t Type) String() string {
	if int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

var keywords = map[string]Type{
	"var":      VAR,
	"function": FUNCTION,
	"if":       IF,
	"else":     ELSE,
	"while":    WHILE,
	"break":    BREAK,
	"throw":    THROW,
	"return":   RETURN,
	"true":     TRUE,
	"false":    FALSE,
	"null":     NULL,
}

// Fixed spelling tokens, keyed by literal.
var operators = map[string]Type{
	"=":   ASSIGN,
	"+":   PLUS,
	"-":   MINUS,
	"!":   BANG,
	"*":   ASTERISK,
	"<":   LT,
	">":   GT,
	"<=":  LTEQ,
	">=":  GTEQ,
	"===": EQ,
	"!==": NOTEQ,
	",":   COMMA,
	";":   SEMICOLON,
	":":   COLON,
	".":   DOT,
	"(":   LPAREN,
	")":   RPAREN,
	"{":   LBRACE,
	"}":   RBRACE,
	"[":   LBRACKET,
	"]":   RBRACKET,
}

func init() {
	info.Keywords = sets.New[string]()
	for k := range keywords {
		info.Keywords.Add(k)
	}
	info.Tokens = sets.New[string]()
	for op := range operators {
		info.Tokens.Add(op)
	}
}

func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		log.Debugf("LookupIdent(%s) found %s", ident, tok)
		return tok
	}
	return IDENT
}

// LookupOperator returns the type for an operator or punctuation literal,
// ILLEGAL if it isn't one.
func LookupOperator(op string) Type {
	if tok, ok := operators[op]; ok {
		return tok
	}
	return ILLEGAL
}

func (t Type) IsKeyword() bool {
	return t > startKeywords && t < endKeywords
}

func (t Token) String() string {
	return t.Type.String() + ":" + t.Literal
}
