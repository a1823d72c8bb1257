package ast

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	"grol.io/jsi/token"
)

type Node interface {
	TokenLiteral() string
	String() string // normalized source representation of the expression/statement.
}

// Common to all nodes that have a token and avoids repeating the same TokenLiteral() methods.
type Base struct {
	token.Token
}

func (b *Base) TokenLiteral() string {
	return b.Literal
}

func (b *Base) String() string {
	return b.Literal
}

type Program struct {
	Statements []Node
}

func (p *Program) TokenLiteral() string {
	return ""
}

func (p *Program) String() string {
	if len(p.Statements) == 0 {
		return "<empty>"
	}
	buf := strings.Builder{}
	for i, s := range p.Statements {
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(s.String())
	}
	return buf.String()
}

// BlockStatement is a braced statement list. It does not open a scope.
type BlockStatement struct {
	Base // holds {
	Program
}

func (bs *BlockStatement) TokenLiteral() string {
	return bs.Base.TokenLiteral()
}

func (bs *BlockStatement) String() string {
	if len(bs.Statements) == 0 {
		return "{}"
	}
	return "{\n" + bs.Program.String() + "\n}"
}

type VarStatement struct {
	Base
	Name  string
	Value Node // nil when there is no initializer.
}

func (vs *VarStatement) String() string {
	if fn, ok := vs.Value.(*FunctionLiteral); ok && fn.Name == vs.Name {
		return fn.String()
	}
	if vs.Value == nil {
		return "var " + vs.Name + ";"
	}
	return "var " + vs.Name + " = " + vs.Value.String() + ";"
}

type FunctionLiteral struct {
	Base       // The 'function' token
	Name       string
	Parameters []string
	Body       *BlockStatement
}

func (fl *FunctionLiteral) String() string {
	out := strings.Builder{}
	out.WriteString("function")
	if fl.Name != "" {
		out.WriteString(" ")
		out.WriteString(fl.Name)
	}
	out.WriteString("(")
	out.WriteString(strings.Join(fl.Parameters, ", "))
	out.WriteString(") ")
	out.WriteString(fl.Body.String())
	return out.String()
}

type IfStatement struct {
	Base
	Condition   Node
	Consequence *BlockStatement
	Alternative *BlockStatement // nil without else.
}

func (is *IfStatement) String() string {
	out := strings.Builder{}
	out.WriteString("if (")
	out.WriteString(is.Condition.String())
	out.WriteString(") ")
	out.WriteString(is.Consequence.String())
	if is.Alternative != nil {
		out.WriteString(" else ")
		out.WriteString(is.Alternative.String())
	}
	return out.String()
}

type WhileStatement struct {
	Base
	Condition Node
	Body      *BlockStatement
}

func (ws *WhileStatement) String() string {
	return "while (" + ws.Condition.String() + ") " + ws.Body.String()
}

type BreakStatement struct {
	Base
}

func (bs *BreakStatement) String() string {
	return "break;"
}

type ThrowStatement struct {
	Base
	Value Node
}

func (ts *ThrowStatement) String() string {
	return "throw " + ts.Value.String() + ";"
}

type ReturnStatement struct {
	Base
	ReturnValue Node // nil for a bare return.
}

func (rs *ReturnStatement) String() string {
	if rs.ReturnValue == nil {
		return "return;"
	}
	return "return " + rs.ReturnValue.String() + ";"
}

type ExpressionStatement struct {
	Base
	Val Node
}

func (es *ExpressionStatement) String() string {
	return es.Val.String() + ";"
}

// AssignStatement target is either an *Identifier or an *IndexExpression.
type AssignStatement struct {
	Base   // the = token
	Target Node
	Value  Node
}

func (as *AssignStatement) String() string {
	return as.Target.String() + " = " + as.Value.String() + ";"
}

// InfixExpression operator is one of EQ, LT, PLUS, ASTERISK.
type InfixExpression struct {
	Base
	Left     Node
	Operator token.Type
	Right    Node
}

func (ie *InfixExpression) String() string {
	return "(" + ie.Left.String() + " " + ie.Literal + " " + ie.Right.String() + ")"
}

// OperatorTag is the short node tag for an operator: eq, lt, add, mul, neg or not.
func OperatorTag(op token.Type) string {
	switch op { //nolint:exhaustive // only operators the parser builds nodes for.
	case token.EQ:
		return "eq"
	case token.LT:
		return "lt"
	case token.PLUS:
		return "add"
	case token.ASTERISK:
		return "mul"
	case token.MINUS:
		return "neg"
	case token.BANG:
		return "not"
	default:
		return op.String()
	}
}

// PrefixExpression operator is MINUS or BANG.
type PrefixExpression struct {
	Base
	Operator token.Type
	Right    Node
}

func (pe *PrefixExpression) String() string {
	return "(" + pe.Literal + pe.Right.String() + ")"
}

type NumberLiteral struct {
	Base
	Val float64
}

type StringLiteral struct {
	Base
	Val string // content between the quotes, escapes left as written.
}

func (sl *StringLiteral) String() string {
	if sl.Type == token.STRING {
		return sl.Literal
	}
	// synthesized from a .name or a bare object key.
	return strconv.Quote(sl.Val)
}

type Boolean struct {
	Base
	Val bool
}

type NullLiteral struct {
	Base
}

type RegexpLiteral struct {
	Base
	Pattern string
	Flags   string
	Re      *regexp2.Regexp // compiled at parse time.
}

type Identifier struct {
	Base
	Val string
}

// IndexExpression covers both o.name (Dot set, Index is a *StringLiteral)
// and o[expr].
type IndexExpression struct {
	Base
	Left  Node
	Index Node
	Dot   bool
}

func (ie *IndexExpression) String() string {
	if sl, ok := ie.Index.(*StringLiteral); ok && ie.Dot {
		return ie.Left.String() + "." + sl.Val
	}
	return ie.Left.String() + "[" + ie.Index.String() + "]"
}

type CallExpression struct {
	Base      // The '(' token
	Function  Node
	Arguments []Node
}

func (ce *CallExpression) String() string {
	out := strings.Builder{}
	out.WriteString(ce.Function.String())
	out.WriteString("(")
	WriteStrings(&out, ce.Arguments, ", ")
	out.WriteString(")")
	return out.String()
}

type ArrayLiteral struct {
	Base     // The [ token
	Elements []Node
}

func (al *ArrayLiteral) String() string {
	out := strings.Builder{}
	out.WriteString("[")
	WriteStrings(&out, al.Elements, ", ")
	out.WriteString("]")
	return out.String()
}

// ObjectLiteral keeps its pairs in source order, Keys[i] goes with Values[i].
type ObjectLiteral struct {
	Base   // the '{' token
	Keys   []Node
	Values []Node
}

func (ol *ObjectLiteral) String() string {
	out := strings.Builder{}
	out.WriteString("{")
	for i, k := range ol.Keys {
		if i > 0 {
			out.WriteString(", ")
		}
		out.WriteString(k.String())
		out.WriteString(": ")
		out.WriteString(ol.Values[i].String())
	}
	out.WriteString("}")
	return out.String()
}

func WriteStrings[T fmt.Stringer](out *strings.Builder, list []T, sep string) {
	for i, p := range list {
		if i > 0 {
			out.WriteString(sep)
		}
		out.WriteString(p.String())
	}
}
