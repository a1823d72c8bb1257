package eval

import (
	"fmt"

	"fortio.org/log"
	"grol.io/jsi/ast"
	"grol.io/jsi/object"
	"grol.io/jsi/token"
)

func (s *State) evalInternal(node ast.Node) (object.Object, error) { //nolint:funlen,gocyclo // one case per node.
	switch node := node.(type) {
	// Statements
	case *ast.Program:
		return s.evalStatements(node.Statements)
	case *ast.BlockStatement:
		return s.evalStatements(node.Statements)
	case *ast.VarStatement:
		var val object.Object = object.UNDEFINED
		if node.Value != nil {
			v, err := s.evalInternal(node.Value)
			if err != nil {
				return nil, err
			}
			val = v
		}
		s.env.Define(node.Name, val)
		return object.UNDEFINED, nil
	case *ast.IfStatement:
		cond, err := s.evalInternal(node.Condition)
		if err != nil {
			return nil, err
		}
		if object.Truthy(cond) {
			return s.evalInternal(node.Consequence)
		}
		if node.Alternative != nil {
			return s.evalInternal(node.Alternative)
		}
		return object.UNDEFINED, nil
	case *ast.WhileStatement:
		return s.evalWhile(node)
	case *ast.BreakStatement:
		return object.BREAKING, nil
	case *ast.ThrowStatement:
		val, err := s.evalInternal(node.Value)
		if err != nil {
			return nil, err
		}
		log.LogVf("throw %s", val.Inspect())
		return nil, s.thrown(val)
	case *ast.ReturnStatement:
		if node.ReturnValue == nil {
			return object.ReturnValue{Value: object.UNDEFINED}, nil
		}
		val, err := s.evalInternal(node.ReturnValue)
		if err != nil {
			return nil, err
		}
		return object.ReturnValue{Value: val}, nil
	case *ast.ExpressionStatement:
		return s.evalInternal(node.Val)
	case *ast.AssignStatement:
		return s.evalAssign(node)

	// Expressions
	case *ast.InfixExpression:
		return s.evalInfix(node)
	case *ast.PrefixExpression:
		right, err := s.evalInternal(node.Right)
		if err != nil {
			return nil, err
		}
		if node.Operator == token.MINUS {
			return object.Negate(right), nil
		}
		return object.Not(right), nil
	case *ast.NumberLiteral:
		return object.Number{Value: node.Val}, nil
	case *ast.StringLiteral:
		return object.String{Value: node.Val}, nil
	case *ast.Boolean:
		return object.NativeBoolToBooleanObject(node.Val), nil
	case *ast.NullLiteral:
		return object.NULL, nil
	case *ast.RegexpLiteral:
		// each evaluation is a new value with its own lastIndex.
		return &object.Regexp{Source: node.Pattern, Flags: node.Flags, Re: node.Re}, nil
	case *ast.Identifier:
		val, ok := s.env.Get(node.Val)
		if !ok {
			log.Debugf("read of undeclared %q is undefined", node.Val)
		}
		return val, nil
	case *ast.FunctionLiteral:
		return &object.Function{Literal: node, Env: s.env}, nil
	case *ast.IndexExpression:
		obj, key, err := s.evalRef(node)
		if err != nil {
			return nil, err
		}
		return s.getProperty(obj, key)
	case *ast.CallExpression:
		return s.evalCall(node)
	case *ast.ArrayLiteral:
		elements, err := s.evalExpressions(node.Elements)
		if err != nil {
			return nil, err
		}
		return object.NewArray(elements), nil
	case *ast.ObjectLiteral:
		res := object.NewMap()
		for i, k := range node.Keys {
			key, err := s.evalInternal(k)
			if err != nil {
				return nil, err
			}
			val, err := s.evalInternal(node.Values[i])
			if err != nil {
				return nil, err
			}
			res.Set(object.ToString(key), val)
		}
		return res, nil
	}
	return nil, fmt.Errorf("unknown node type: %T", node)
}

// evalStatements runs statements in the current scope. It stops at the first
// return or break, handing the signal to the enclosing loop or call.
func (s *State) evalStatements(stmts []ast.Node) (object.Object, error) {
	var result object.Object = object.UNDEFINED
	for _, statement := range stmts {
		res, err := s.evalInternal(statement)
		if err != nil {
			return nil, err
		}
		switch res.(type) {
		case object.ReturnValue, object.BreakSignal:
			return res, nil
		}
		result = res
	}
	return result, nil
}

// evalWhile consumes a break from its body; a return goes through.
func (s *State) evalWhile(node *ast.WhileStatement) (object.Object, error) {
	var result object.Object = object.UNDEFINED
	for {
		cond, err := s.evalInternal(node.Condition)
		if err != nil {
			return nil, err
		}
		if !object.Truthy(cond) {
			return result, nil
		}
		res, err := s.evalInternal(node.Body)
		if err != nil {
			return nil, err
		}
		switch res.(type) {
		case object.ReturnValue:
			return res, nil
		case object.BreakSignal:
			return result, nil
		}
		result = res
	}
}

func (s *State) evalInfix(node *ast.InfixExpression) (object.Object, error) {
	left, err := s.evalInternal(node.Left)
	if err != nil {
		return nil, err
	}
	right, err := s.evalInternal(node.Right)
	if err != nil {
		return nil, err
	}
	switch node.Operator { //nolint:exhaustive // the parser only builds these.
	case token.EQ:
		return object.NativeBoolToBooleanObject(object.StrictEquals(left, right)), nil
	case token.LT:
		return object.Less(left, right), nil
	case token.PLUS:
		return object.Add(left, right), nil
	case token.ASTERISK:
		return object.Multiply(left, right), nil
	}
	return nil, fmt.Errorf("unknown operator: %s", node.Literal)
}

func (s *State) evalExpressions(exps []ast.Node) ([]object.Object, error) {
	result, err := object.MakeObjectSlice(len(exps))
	if err != nil {
		return nil, err
	}
	for _, e := range exps {
		evaluated, err := s.evalInternal(e)
		if err != nil {
			return nil, err
		}
		result = append(result, evaluated)
	}
	return result, nil
}

// evalRef evaluates the object then the index of a member access.
func (s *State) evalRef(node *ast.IndexExpression) (object.Object, object.Object, error) {
	obj, err := s.evalInternal(node.Left)
	if err != nil {
		return nil, nil, err
	}
	key, err := s.evalInternal(node.Index)
	if err != nil {
		return nil, nil, err
	}
	return obj, key, nil
}

func (s *State) evalAssign(node *ast.AssignStatement) (object.Object, error) {
	val, err := s.evalInternal(node.Value)
	if err != nil {
		return nil, err
	}
	switch target := node.Target.(type) {
	case *ast.Identifier:
		ok, found := s.env.Assign(target.Val, val)
		if !ok {
			return nil, s.unknownName(target.Val, found)
		}
	case *ast.IndexExpression:
		obj, key, err := s.evalRef(target)
		if err != nil {
			return nil, err
		}
		if err = s.setProperty(obj, key, val); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("invalid assignment target %s", node.Target)
	}
	return val, nil
}

// evalCall: a member call passes the object as this, any other call passes
// the global object. Arguments are evaluated before the callee is checked.
func (s *State) evalCall(node *ast.CallExpression) (object.Object, error) {
	var fn, this object.Object
	if ref, ok := node.Function.(*ast.IndexExpression); ok {
		obj, key, err := s.evalRef(ref)
		if err != nil {
			return nil, err
		}
		if fn, err = s.getProperty(obj, key); err != nil {
			return nil, err
		}
		this = obj
	} else {
		var err error
		if fn, err = s.evalInternal(node.Function); err != nil {
			return nil, err
		}
		this = s.Global
	}
	args, err := s.evalExpressions(node.Arguments)
	if err != nil {
		return nil, err
	}
	return s.apply(fn, this, args, node.Function.String())
}

func (s *State) apply(fn object.Object, this object.Object, args []object.Object, callee string) (object.Object, error) {
	switch f := fn.(type) {
	case *object.Function:
		return s.callFunction(f, this, args)
	case *object.Extension:
		if err := f.CheckArgs(args); err != nil {
			return nil, err
		}
		if f.MaxArgs >= 0 && len(args) > f.MaxArgs {
			args = args[:f.MaxArgs]
		}
		return f.Callback(s, this, args)
	}
	return nil, s.notCallable(callee, fn)
}

// callFunction runs the body in a new child scope of the closure's scope,
// binding this, arguments and the parameters (missing ones are undefined).
func (s *State) callFunction(f *object.Function, this object.Object, args []object.Object) (object.Object, error) {
	if err := s.push(f.Name()); err != nil {
		return nil, err
	}
	env := object.NewEnclosedEnvironment(f.Env, f.Name())
	saved := s.env
	defer func() {
		s.env = saved
		s.pop()
	}()
	env.Define("this", this)
	env.Define("arguments", object.NewArray(append([]object.Object(nil), args...)))
	for i, name := range f.Literal.Parameters {
		if i < len(args) {
			env.Define(name, args[i])
		} else {
			env.Define(name, object.UNDEFINED)
		}
	}
	s.env = env
	res, err := s.evalInternal(f.Literal.Body)
	if err != nil {
		return nil, err
	}
	if rv, ok := res.(object.ReturnValue); ok {
		return rv.Value, nil
	}
	return object.UNDEFINED, nil
}
