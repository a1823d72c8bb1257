package parser_test

import (
	"errors"
	"math"
	"strings"
	"testing"

	"grol.io/jsi/ast"
	"grol.io/jsi/lexer"
	"grol.io/jsi/parser"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	l := lexer.New(input)
	p := parser.New(l)
	program := p.ParseProgram()
	checkParserErrors(t, p)
	return program
}

func checkParserErrors(t *testing.T, p *parser.Parser) {
	t.Helper()
	errs := p.Errors()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errs))
	for _, msg := range errs {
		t.Errorf("parser error: %q", msg)
	}
	t.FailNow()
}

func Test_VarStatements(t *testing.T) {
	program := parse(t, `
var x = 5;
var y;
var foobar = 838383;
`)
	tests := []struct {
		name     string
		hasValue bool
	}{
		{"x", true},
		{"y", false},
		{"foobar", true},
	}
	if len(program.Statements) != len(tests) {
		t.Fatalf("program.Statements does not contain %d statements. got=%d", len(tests), len(program.Statements))
	}
	for i, tt := range tests {
		stmt, ok := program.Statements[i].(*ast.VarStatement)
		if !ok {
			t.Fatalf("stmt %d not *ast.VarStatement. got=%T", i, program.Statements[i])
		}
		if stmt.Name != tt.name {
			t.Errorf("stmt.Name not %q. got=%q", tt.name, stmt.Name)
		}
		if (stmt.Value != nil) != tt.hasValue {
			t.Errorf("stmt %q value presence: got %v", tt.name, stmt.Value)
		}
	}
}

func Test_FunctionStatementIsVar(t *testing.T) {
	program := parse(t, "function add(a, b) { return a + b; }")
	stmt, ok := program.Statements[0].(*ast.VarStatement)
	if !ok {
		t.Fatalf("not *ast.VarStatement. got=%T", program.Statements[0])
	}
	fn, ok := stmt.Value.(*ast.FunctionLiteral)
	if !ok {
		t.Fatalf("value not *ast.FunctionLiteral. got=%T", stmt.Value)
	}
	if stmt.Name != "add" || fn.Name != "add" {
		t.Errorf("names: var %q, function %q", stmt.Name, fn.Name)
	}
	if len(fn.Parameters) != 2 || fn.Parameters[0] != "a" || fn.Parameters[1] != "b" {
		t.Errorf("parameters wrong: %v", fn.Parameters)
	}
	if len(fn.Body.Statements) != 1 {
		t.Errorf("body should have 1 statement, got %d", len(fn.Body.Statements))
	}
}

func Test_OperatorPrecedenceParsing(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-a * b;", "((-a) * b);"},
		{"!-a;", "(!(-a));"},
		{"a + b + c;", "((a + b) + c);"},
		{"a + b * c;", "(a + (b * c));"},
		{"a * b * c;", "((a * b) * c);"},
		{"a + b < c * d;", "((a + b) < (c * d));"},
		{"a < b === c < d;", "((a < b) === (c < d));"},
		{"x === 1;", "(x === 1);"},
		{"(a + b) * c;", "((a + b) * c);"},
		{"-(5 + 5);", "(-(5 + 5));"},
		{"a.b.c;", "a.b.c;"},
		{"a[1 + 2];", "a[(1 + 2)];"},
		{"a.b(c)(d);", "a.b(c)(d);"},
		{"-a.b(1);", "(-a.b(1));"},
		{"add(a, b + c, add(6, 7 * 8));", "add(a, (b + c), add(6, (7 * 8)));"},
		{"[1, 2 * 2, 'x'][1];", "[1, (2 * 2), 'x'][1];"},
		{"o.if;", "o.if;"},
	}
	for _, tt := range tests {
		program := parse(t, tt.input)
		actual := program.String()
		if actual != tt.expected {
			t.Errorf("for %q expected=%q, got=%q", tt.input, tt.expected, actual)
		}
	}
}

func Test_Literals(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.5e3;", "1.5e3;"},
		{`"a\"b";`, `"a\"b";`},
		{"'it';", "'it';"},
		{"true;", "true;"},
		{"null;", "null;"},
		{"/a+b/gi;", "/a+b/gi;"},
		{"({a: 1, 'b': 2, 3: x});", `{"a": 1, 'b': 2, 3: x};`},
		{"({});", "{};"},
		{"[];", "[];"},
		{"f();", "f();"},
		{"(function (a) { return a; });", "function(a) {\nreturn a;\n};"},
		{"var f = function f() {};", "function f() {}"},
	}
	for _, tt := range tests {
		program := parse(t, tt.input)
		actual := program.String()
		if actual != tt.expected {
			t.Errorf("for %q expected=%q, got=%q", tt.input, tt.expected, actual)
		}
	}
}

func Test_StringLiteralKeepsEscapes(t *testing.T) {
	program := parse(t, `'a\nb';`)
	stmt := program.Statements[0].(*ast.ExpressionStatement)
	lit, ok := stmt.Val.(*ast.StringLiteral)
	if !ok {
		t.Fatalf("not *ast.StringLiteral. got=%T", stmt.Val)
	}
	if lit.Val != `a\nb` {
		t.Errorf("escapes should be kept as written, got %q", lit.Val)
	}
}

func Test_NumberLiteral(t *testing.T) {
	program := parse(t, "0.25; 1e400;")
	lit := program.Statements[0].(*ast.ExpressionStatement).Val.(*ast.NumberLiteral)
	if lit.Val != 0.25 {
		t.Errorf("got %v expected 0.25", lit.Val)
	}
	lit = program.Statements[1].(*ast.ExpressionStatement).Val.(*ast.NumberLiteral)
	if !math.IsInf(lit.Val, 1) {
		t.Errorf("overflowing literal should be +Inf, got %v", lit.Val)
	}
}

func Test_RegexpLiteralIsCompiled(t *testing.T) {
	program := parse(t, `/^(\w+)\s/m;`)
	lit, ok := program.Statements[0].(*ast.ExpressionStatement).Val.(*ast.RegexpLiteral)
	if !ok {
		t.Fatalf("not *ast.RegexpLiteral. got=%T", program.Statements[0])
	}
	if lit.Pattern != `^(\w+)\s` || lit.Flags != "m" {
		t.Errorf("pattern/flags wrong: %q %q", lit.Pattern, lit.Flags)
	}
	if lit.Re == nil {
		t.Fatalf("regexp not compiled")
	}
	if ok, _ := lit.Re.MatchString("abc def"); !ok {
		t.Errorf("compiled regexp should match")
	}
}

func Test_IfElseIfDesugars(t *testing.T) {
	sugared := parse(t, "if (a) { x = 1; } else if (b) { x = 2; } else { x = 3; }")
	explicit := parse(t, "if (a) { x = 1; } else { if (b) { x = 2; } else { x = 3; } }")
	if sugared.String() != explicit.String() {
		t.Errorf("else if should desugar:\n%s\nvs\n%s", sugared, explicit)
	}
	stmt := sugared.Statements[0].(*ast.IfStatement)
	if len(stmt.Alternative.Statements) != 1 {
		t.Fatalf("alternative should hold one statement, got %d", len(stmt.Alternative.Statements))
	}
	if _, ok := stmt.Alternative.Statements[0].(*ast.IfStatement); !ok {
		t.Errorf("alternative should hold an if, got %T", stmt.Alternative.Statements[0])
	}
}

func Test_WhileBreakThrowReturn(t *testing.T) {
	program := parse(t, "while (i < 3) { if (x) { break; } i = i + 1; } throw 'boom'; return; return 1;")
	if _, ok := program.Statements[0].(*ast.WhileStatement); !ok {
		t.Errorf("not a while: %T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*ast.ThrowStatement); !ok {
		t.Errorf("not a throw: %T", program.Statements[1])
	}
	if r := program.Statements[2].(*ast.ReturnStatement); r.ReturnValue != nil {
		t.Errorf("bare return should have nil value")
	}
	if r := program.Statements[3].(*ast.ReturnStatement); r.ReturnValue == nil {
		t.Errorf("return 1 should have a value")
	}
}

func Test_Assignments(t *testing.T) {
	program := parse(t, "x = 1; o.a = 2; o['b'] = 3;")
	for i, s := range program.Statements {
		if _, ok := s.(*ast.AssignStatement); !ok {
			t.Errorf("statement %d not *ast.AssignStatement: %T", i, s)
		}
	}
	if program.String() != "x = 1;\no.a = 2;\no['b'] = 3;" {
		t.Errorf("unexpected %q", program.String())
	}
}

func Test_ParseErrors(t *testing.T) {
	tests := []struct {
		input string
		msg   string
	}{
		{"var x = 1", "expected ; but found end of input at line 1"},
		{"x\n=\n;", "unexpected ; at line 3"},
		{"a === b === c;", "expected ; but found === at line 1"},
		{"a < b < c;", "expected ; but found < at line 1"},
		{"a > b;", "expected ; but found > at line 1"},
		{"a <= b;", "expected ; but found <= at line 1"},
		{"a !== b;", "expected ; but found !== at line 1"},
		{"function () {}", "function statement requires a name at line 1"},
		{"var 1 = 2;", "name expected but found 1 at line 1"},
		{"function f(a, if) {}", "name expected but found if at line 1"},
		{"if (a) { x = 1;", "expected } but found end of input at line 1"},
		{"f() = 1;", "invalid assignment target f() at line 1"},
		{"1 + 2 = 3;", "invalid assignment target (1 + 2) at line 1"},
		{"o.;", "name expected but found ; at line 1"},
		{"else;", "unexpected else at line 1"},
		{"/a/gg;", "expected ; but found g at line 1"},
	}
	for _, tt := range tests {
		_, err := parser.Parse(tt.input)
		if err == nil {
			t.Errorf("expected error for %q", tt.input)
			continue
		}
		var syntaxErr *parser.SyntaxError
		if !errors.As(err, &syntaxErr) {
			t.Errorf("for %q expected *parser.SyntaxError, got %T: %v", tt.input, err, err)
			continue
		}
		if err.Error() != tt.msg {
			t.Errorf("for %q expected error %q, got %q", tt.input, tt.msg, err.Error())
		}
	}
}

func Test_BadRegexpIsSyntaxError(t *testing.T) {
	_, err := parser.Parse("var r = /a(/;")
	var syntaxErr *parser.SyntaxError
	if !errors.As(err, &syntaxErr) {
		t.Fatalf("expected *parser.SyntaxError, got %T: %v", err, err)
	}
	if !strings.HasPrefix(syntaxErr.Msg, "invalid regular expression /a(/") {
		t.Errorf("unexpected message %q", syntaxErr.Msg)
	}
}

func Test_LexErrorAbortsParse(t *testing.T) {
	p := parser.New(lexer.New("var a = 1;\nvar b = #;"))
	program := p.ParseProgram()
	var lexErr *lexer.Error
	if !errors.As(p.Err(), &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T: %v", p.Err(), p.Err())
	}
	if lexErr.Char != "#" || lexErr.Line != 2 {
		t.Errorf("unexpected lex error %+v", lexErr)
	}
	if len(p.Errors()) != 1 {
		t.Errorf("expected exactly one error, got %v", p.Errors())
	}
	if len(program.Statements) != 1 {
		t.Errorf("statements before the error are kept, got %d", len(program.Statements))
	}
}

func Test_LexErrorOnFirstToken(t *testing.T) {
	_, err := parser.Parse("@")
	var lexErr *lexer.Error
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected *lexer.Error, got %T: %v", err, err)
	}
}

func Test_FirstErrorStopsParsing(t *testing.T) {
	input := "var a = 1;\nfunction f(x) { if (x { return 1; } }\nvar = 2;"
	p := parser.New(lexer.New(input))
	program := p.ParseProgram()
	errs := p.Errors()
	if len(errs) != 1 || errs[0] != "expected ) but found { at line 2" {
		t.Errorf("expected only the first error, got %q", errs)
	}
	if len(program.Statements) != 1 {
		t.Errorf("only the statement before the error is kept, got %d", len(program.Statements))
	}
	if program.Statements[0].String() != "var a = 1;" {
		t.Errorf("kept statement got %s", program.Statements[0])
	}
}
