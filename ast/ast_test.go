package ast_test

import (
	"strings"
	"testing"

	"grol.io/jsi/ast"
	"grol.io/jsi/token"
)

func ident(name string) *ast.Identifier {
	return &ast.Identifier{Base: ast.Base{Token: token.Token{Type: token.IDENT, Literal: name}}, Val: name}
}

func TestString(t *testing.T) {
	program := &ast.Program{
		Statements: []ast.Node{
			&ast.VarStatement{
				Name: "myVar",
				Value: &ast.InfixExpression{
					Base:     ast.Base{Token: token.Token{Type: token.PLUS, Literal: "+"}},
					Left:     ident("anotherVar"),
					Operator: token.PLUS,
					Right:    &ast.NumberLiteral{Base: ast.Base{Token: token.Token{Type: token.NUMBER, Literal: "1"}}, Val: 1},
				},
			},
			&ast.AssignStatement{
				Target: &ast.IndexExpression{
					Left:  ident("o"),
					Index: &ast.StringLiteral{Base: ast.Base{Token: token.Token{Type: token.IDENT, Literal: "p"}}, Val: "p"},
					Dot:   true,
				},
				Value: &ast.StringLiteral{Base: ast.Base{Token: token.Token{Type: token.STRING, Literal: `'x\n'`}}, Val: `x\n`},
			},
		},
	}
	expected := "var myVar = (anotherVar + 1);\no.p = 'x\\n';"
	if program.String() != expected {
		t.Errorf("program.String() wrong. got=%q, want=%q", program.String(), expected)
	}
}

func TestOperatorTag(t *testing.T) {
	for op, tag := range map[token.Type]string{
		token.EQ: "eq", token.LT: "lt", token.PLUS: "add", token.ASTERISK: "mul",
		token.MINUS: "neg", token.BANG: "not", token.COMMA: "COMMA",
	} {
		if got := ast.OperatorTag(op); got != tag {
			t.Errorf("OperatorTag(%s) = %q, want %q", op, got, tag)
		}
	}
}

func TestToYAML(t *testing.T) {
	fn := &ast.FunctionLiteral{
		Name:       "f",
		Parameters: []string{"a", "b"},
		Body: &ast.BlockStatement{Program: ast.Program{Statements: []ast.Node{
			&ast.ReturnStatement{ReturnValue: ident("a")},
		}}},
	}
	program := &ast.Program{Statements: []ast.Node{&ast.VarStatement{Name: "f", Value: fn}}}
	b, err := ast.ToYAML(program)
	if err != nil {
		t.Fatalf("ToYAML error: %v", err)
	}
	out := string(b)
	for _, want := range []string{"type: block", "type: var", "name: f", "type: function", "params: [a, b]", "type: return", "type: name"} {
		if !strings.Contains(out, want) {
			t.Errorf("ToYAML output missing %q:\n%s", want, out)
		}
	}
	if program.String() != "function f(a, b) {\nreturn a;\n}" {
		t.Errorf("function sugar String() got %q", program.String())
	}
}
