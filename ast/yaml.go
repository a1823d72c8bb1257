package ast

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ToYAML renders the tree as a YAML document, one mapping per node with
// its tag under "type" followed by the node's fields in source order.
func ToYAML(n Node) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(n))
}

func scalar(tag, v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: v}
}

func str(v string) *yaml.Node {
	return scalar("!!str", v)
}

type fields struct {
	m *yaml.Node
}

func newFields(nodeType string) fields {
	f := fields{m: &yaml.Node{Kind: yaml.MappingNode}}
	f.add("type", str(nodeType))
	return f
}

func (f fields) add(key string, v *yaml.Node) {
	f.m.Content = append(f.m.Content, str(key), v)
}

func (f fields) node(key string, n Node) {
	if n == nil {
		return
	}
	f.add(key, toYAMLNode(n))
}

func list(nodes []Node) *yaml.Node {
	seq := &yaml.Node{Kind: yaml.SequenceNode}
	for _, n := range nodes {
		seq.Content = append(seq.Content, toYAMLNode(n))
	}
	return seq
}

func blockStatements(b *BlockStatement) *yaml.Node {
	return list(b.Statements)
}

func toYAMLNode(n Node) *yaml.Node { //nolint:funlen // one case per node type.
	switch n := n.(type) {
	case *Program:
		f := newFields("block")
		f.add("stmts", list(n.Statements))
		return f.m
	case *BlockStatement:
		f := newFields("block")
		f.add("stmts", blockStatements(n))
		return f.m
	case *VarStatement:
		f := newFields("var")
		f.add("name", str(n.Name))
		f.node("expr", n.Value)
		return f.m
	case *FunctionLiteral:
		f := newFields("function")
		if n.Name != "" {
			f.add("name", str(n.Name))
		}
		params := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range n.Parameters {
			params.Content = append(params.Content, str(p))
		}
		f.add("params", params)
		f.add("body", blockStatements(n.Body))
		return f.m
	case *IfStatement:
		f := newFields("if")
		f.node("cond", n.Condition)
		f.add("then", blockStatements(n.Consequence))
		if n.Alternative != nil {
			f.add("else", blockStatements(n.Alternative))
		}
		return f.m
	case *WhileStatement:
		f := newFields("while")
		f.node("cond", n.Condition)
		f.add("body", blockStatements(n.Body))
		return f.m
	case *BreakStatement:
		return newFields("break").m
	case *ThrowStatement:
		f := newFields("throw")
		f.node("expr", n.Value)
		return f.m
	case *ReturnStatement:
		f := newFields("return")
		f.node("expr", n.ReturnValue)
		return f.m
	case *ExpressionStatement:
		f := newFields("stmt")
		f.node("expr", n.Val)
		return f.m
	case *AssignStatement:
		f := newFields("set")
		f.node("target", n.Target)
		f.node("expr", n.Value)
		return f.m
	case *InfixExpression:
		f := newFields(OperatorTag(n.Operator))
		f.node("left", n.Left)
		f.node("right", n.Right)
		return f.m
	case *PrefixExpression:
		f := newFields(OperatorTag(n.Operator))
		f.node("expr", n.Right)
		return f.m
	case *NumberLiteral:
		f := newFields("lit")
		f.add("value", scalar("!!float", strconv.FormatFloat(n.Val, 'g', -1, 64)))
		return f.m
	case *StringLiteral:
		f := newFields("lit")
		f.add("value", str(n.Val))
		return f.m
	case *Boolean:
		f := newFields("lit")
		f.add("value", scalar("!!bool", strconv.FormatBool(n.Val)))
		return f.m
	case *NullLiteral:
		f := newFields("lit")
		f.add("value", scalar("!!null", "null"))
		return f.m
	case *RegexpLiteral:
		f := newFields("lit")
		f.add("regexp", str(n.Pattern))
		if n.Flags != "" {
			f.add("flags", str(n.Flags))
		}
		return f.m
	case *Identifier:
		f := newFields("name")
		f.add("name", str(n.Val))
		return f.m
	case *IndexExpression:
		f := newFields("ref")
		f.node("expr", n.Left)
		f.node("index", n.Index)
		return f.m
	case *CallExpression:
		f := newFields("inv")
		f.node("expr", n.Function)
		f.add("args", list(n.Arguments))
		return f.m
	case *ArrayLiteral:
		f := newFields("array")
		f.add("args", list(n.Elements))
		return f.m
	case *ObjectLiteral:
		f := newFields("object")
		pairs := &yaml.Node{Kind: yaml.SequenceNode}
		for i, k := range n.Keys {
			p := &yaml.Node{Kind: yaml.MappingNode}
			p.Content = append(p.Content, str("key"), toYAMLNode(k), str("value"), toYAMLNode(n.Values[i]))
			pairs.Content = append(pairs.Content, p)
		}
		f.add("pairs", pairs)
		return f.m
	default:
		return str(fmt.Sprintf("<unknown node %T>", n))
	}
}
