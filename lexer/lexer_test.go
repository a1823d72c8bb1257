package lexer

import (
	"errors"
	"testing"

	"grol.io/jsi/token"
)

func TestNextToken(t *testing.T) { //nolint:funlen // this is a test function with many cases back to back.
	input := `var five = 5; // five
var ten = 10.5e+2;

function add(x, y) {
  return x + y;
}

var result = add(five, ten);
!-*5;
5 < 10 > 5 <= 1 >= 2;
a === b !== c == d;
'foo"bar' "it\"s" 'a\nb'
/ab\/c+/gi /x/m
o.p[0]:{};
1e 2.
`
	tests := []struct {
		expectedType    token.Type
		expectedLiteral string
	}{
		{token.VAR, "var"},
		{token.IDENT, "five"},
		{token.ASSIGN, "="},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.VAR, "var"},
		{token.IDENT, "ten"},
		{token.ASSIGN, "="},
		{token.NUMBER, "10.5e+2"},
		{token.SEMICOLON, ";"},
		{token.FUNCTION, "function"},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "x"},
		{token.COMMA, ","},
		{token.IDENT, "y"},
		{token.RPAREN, ")"},
		{token.LBRACE, "{"},
		{token.RETURN, "return"},
		{token.IDENT, "x"},
		{token.PLUS, "+"},
		{token.IDENT, "y"},
		{token.SEMICOLON, ";"},
		{token.RBRACE, "}"},
		{token.VAR, "var"},
		{token.IDENT, "result"},
		{token.ASSIGN, "="},
		{token.IDENT, "add"},
		{token.LPAREN, "("},
		{token.IDENT, "five"},
		{token.COMMA, ","},
		{token.IDENT, "ten"},
		{token.RPAREN, ")"},
		{token.SEMICOLON, ";"},
		{token.BANG, "!"},
		{token.MINUS, "-"},
		{token.ASTERISK, "*"},
		{token.NUMBER, "5"},
		{token.SEMICOLON, ";"},
		{token.NUMBER, "5"},
		{token.LT, "<"},
		{token.NUMBER, "10"},
		{token.GT, ">"},
		{token.NUMBER, "5"},
		{token.LTEQ, "<="},
		{token.NUMBER, "1"},
		{token.GTEQ, ">="},
		{token.NUMBER, "2"},
		{token.SEMICOLON, ";"},
		{token.IDENT, "a"},
		{token.EQ, "==="},
		{token.IDENT, "b"},
		{token.NOTEQ, "!=="},
		{token.IDENT, "c"},
		{token.ASSIGN, "="},
		{token.ASSIGN, "="},
		{token.IDENT, "d"},
		{token.SEMICOLON, ";"},
		{token.STRING, `'foo"bar'`},
		{token.STRING, `"it\"s"`},
		{token.STRING, `'a\nb'`},
		{token.REGEXP, `/ab\/c+/gi`},
		{token.REGEXP, `/x/m`},
		{token.IDENT, "o"},
		{token.DOT, "."},
		{token.IDENT, "p"},
		{token.LBRACKET, "["},
		{token.NUMBER, "0"},
		{token.RBRACKET, "]"},
		{token.COLON, ":"},
		{token.LBRACE, "{"},
		{token.RBRACE, "}"},
		{token.SEMICOLON, ";"},
		{token.NUMBER, "1"},
		{token.IDENT, "e"},
		{token.NUMBER, "2."},
		{token.EOF, ""},
		{token.EOF, ""},
	}

	l := New(input)

	for i, tt := range tests {
		tok := l.NextToken()

		if tok.Type != tt.expectedType {
			t.Fatalf("tests[%d] - tokentype wrong. expected=%q, got=%q (%q)",
				i, tt.expectedType, tok.Type, tok.Literal)
		}

		if tok.Literal != tt.expectedLiteral {
			t.Fatalf("tests[%d] - literal wrong. expected=%q, got=%q",
				i, tt.expectedLiteral, tok.Literal)
		}
	}
}

func TestLineNumbers(t *testing.T) {
	l := New("a\nb\n\n  c")
	expected := []int{1, 2, 4}
	for i, line := range expected {
		tok := l.NextToken()
		if got := l.Line(tok.Offset); got != line {
			t.Errorf("token %d %v: line %d, expected %d", i, tok, got, line)
		}
	}
}

func TestIllegal(t *testing.T) {
	tests := []struct {
		input string
		char  string
		line  int
	}{
		{"@", "@", 1},
		{"a\n#", "#", 2},
		{"'unterminated", "'", 1},
		{"x = \"abc", `"`, 1},
		{"a // comment\n\n%", "%", 3},
		{"é", "é", 1},
		{"//", "", 0}, // only a comment: no error
	}
	for _, tt := range tests {
		l := New(tt.input)
		var tok token.Token
		for tok = l.NextToken(); tok.Type != token.EOF && tok.Type != token.ILLEGAL; tok = l.NextToken() {
		}
		if tt.char == "" {
			if tok.Type != token.EOF {
				t.Errorf("%q: expected EOF, got %v", tt.input, tok)
			}
			continue
		}
		if tok.Type != token.ILLEGAL {
			t.Errorf("%q: expected ILLEGAL, got %v", tt.input, tok)
			continue
		}
		var err error = l.ErrorAt(tok)
		var lexErr *Error
		if !errors.As(err, &lexErr) {
			t.Fatalf("expected *Error, got %T", err)
		}
		if lexErr.Char != tt.char || lexErr.Line != tt.line {
			t.Errorf("%q: got %q line %d, expected %q line %d", tt.input, lexErr.Char, lexErr.Line, tt.char, tt.line)
		}
	}
}

func TestReset(t *testing.T) {
	l := New("a b")
	l.NextToken()
	l.Reset("c")
	if tok := l.NextToken(); tok.Literal != "c" || tok.Offset != 0 {
		t.Errorf("after Reset got %v", tok)
	}
	if l.Pos() != 1 {
		t.Errorf("Pos() = %d", l.Pos())
	}
}
