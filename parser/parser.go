package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"fortio.org/log"
	"grol.io/jsi/ast"
	"grol.io/jsi/lexer"
	"grol.io/jsi/object"
	"grol.io/jsi/token"
)

// SyntaxError is an unexpected token (or unparsable literal) with the
// 1-based line where it was found.
type SyntaxError struct {
	Msg  string
	Line int
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at line %d", e.Msg, e.Line)
}

// Parser is a recursive descent parser with a single token of lookahead.
// Parsing stops at the first error, there is no recovery: once err is set
// the lookahead stays at EOF so every level returns right away.
type Parser struct {
	l   *lexer.Lexer
	cur token.Token
	err error
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	return p
}

// Parse is the one shot convenience: lex and parse a whole program.
func Parse(input string) (*ast.Program, error) {
	p := New(lexer.New(input))
	program := p.ParseProgram()
	if p.err != nil {
		return nil, p.err
	}
	return program, nil
}

// Err returns the error that stopped parsing, either a [*SyntaxError] or
// a [*lexer.Error]; nil if the program parsed.
func (p *Parser) Err() error {
	return p.err
}

// Errors returns the error message(s), at most one since parsing aborts.
func (p *Parser) Errors() []string {
	if p.err == nil {
		return nil
	}
	return []string{p.err.Error()}
}

// next loads the following token as the lookahead.
func (p *Parser) next() {
	if p.err != nil {
		return
	}
	p.cur = p.l.NextToken()
	if p.cur.Type == token.ILLEGAL {
		p.fail(p.l.ErrorAt(p.cur))
	}
}

// fail records the first error and ends the token stream.
func (p *Parser) fail(err error) {
	if p.err != nil {
		return
	}
	p.err = err
	log.LogVf("parse error: %v", err)
	p.cur = token.Token{Type: token.EOF, Offset: p.cur.Offset}
}

func (p *Parser) errorf(format string, args ...any) {
	p.fail(&SyntaxError{Msg: fmt.Sprintf(format, args...), Line: p.l.Line(p.cur.Offset)})
}

func describe(t token.Token) string {
	if t.Type == token.EOF {
		return "end of input"
	}
	return t.Literal
}

// at consumes the lookahead and returns true iff it is of type t.
func (p *Parser) at(t token.Type) bool {
	if p.cur.Type != t {
		return false
	}
	log.Debugf("at(%s) matched %q", t, p.cur.Literal)
	p.next()
	return true
}

// consume returns the lookahead and advances past it.
func (p *Parser) consume() token.Token {
	tok := p.cur
	p.next()
	return tok
}

func (p *Parser) expect(t token.Type, what string) token.Token {
	tok := p.cur
	if !p.at(t) {
		p.errorf("expected %s but found %s", what, describe(p.cur))
	}
	return tok
}

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{}
	for p.cur.Type != token.EOF {
		stmt := p.parseStatement()
		if p.err != nil {
			return program
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program
}

func (p *Parser) parseStatement() ast.Node {
	if p.err != nil {
		return nil
	}
	tok := p.cur
	switch {
	case p.at(token.VAR):
		stmt := &ast.VarStatement{Base: ast.Base{Token: tok}, Name: p.parseName()}
		if p.at(token.ASSIGN) {
			stmt.Value = p.parseExpression()
		}
		p.expect(token.SEMICOLON, ";")
		return stmt
	case p.at(token.FUNCTION):
		fn := p.parseFunction(tok)
		if fn.Name == "" && p.err == nil {
			p.errorf("function statement requires a name")
		}
		return &ast.VarStatement{Base: ast.Base{Token: tok}, Name: fn.Name, Value: fn}
	case p.at(token.IF):
		return p.parseIf(tok)
	case p.at(token.WHILE):
		stmt := &ast.WhileStatement{Base: ast.Base{Token: tok}}
		p.expect(token.LPAREN, "(")
		stmt.Condition = p.parseExpression()
		p.expect(token.RPAREN, ")")
		stmt.Body = p.parseBlock()
		return stmt
	case p.at(token.BREAK):
		p.expect(token.SEMICOLON, ";")
		return &ast.BreakStatement{Base: ast.Base{Token: tok}}
	case p.at(token.THROW):
		stmt := &ast.ThrowStatement{Base: ast.Base{Token: tok}, Value: p.parseExpression()}
		p.expect(token.SEMICOLON, ";")
		return stmt
	case p.at(token.RETURN):
		stmt := &ast.ReturnStatement{Base: ast.Base{Token: tok}}
		if !p.at(token.SEMICOLON) {
			stmt.ReturnValue = p.parseExpression()
			p.expect(token.SEMICOLON, ";")
		}
		return stmt
	}
	expr := p.parseExpression()
	if assign := p.cur; p.at(token.ASSIGN) {
		switch expr.(type) {
		case *ast.Identifier, *ast.IndexExpression:
		default:
			p.errorf("invalid assignment target %s", expr)
		}
		stmt := &ast.AssignStatement{Base: ast.Base{Token: assign}, Target: expr, Value: p.parseExpression()}
		p.expect(token.SEMICOLON, ";")
		return stmt
	}
	p.expect(token.SEMICOLON, ";")
	return &ast.ExpressionStatement{Base: ast.Base{Token: tok}, Val: expr}
}

// parseIf is called after the if keyword. else if is parsed as an else
// block holding a single if statement.
func (p *Parser) parseIf(tok token.Token) ast.Node {
	stmt := &ast.IfStatement{Base: ast.Base{Token: tok}}
	p.expect(token.LPAREN, "(")
	stmt.Condition = p.parseExpression()
	p.expect(token.RPAREN, ")")
	stmt.Consequence = p.parseBlock()
	if elseTok := p.cur; p.at(token.ELSE) {
		if ifTok := p.cur; p.at(token.IF) {
			stmt.Alternative = &ast.BlockStatement{
				Base:    ast.Base{Token: elseTok},
				Program: ast.Program{Statements: []ast.Node{p.parseIf(ifTok)}},
			}
		} else {
			stmt.Alternative = p.parseBlock()
		}
	}
	return stmt
}

func (p *Parser) parseBlock() *ast.BlockStatement {
	block := &ast.BlockStatement{Base: ast.Base{Token: p.expect(token.LBRACE, "{")}}
	for !p.at(token.RBRACE) {
		if p.cur.Type == token.EOF {
			p.errorf("expected } but found end of input")
			return block
		}
		block.Statements = append(block.Statements, p.parseStatement())
	}
	return block
}

// parseExpression is the equality level: at most one ===.
func (p *Parser) parseExpression() ast.Node {
	expr := p.parseComparison()
	if tok := p.cur; p.at(token.EQ) {
		expr = &ast.InfixExpression{Base: ast.Base{Token: tok}, Left: expr, Operator: token.EQ, Right: p.parseComparison()}
	}
	return expr
}

// parseComparison: at most one <.
func (p *Parser) parseComparison() ast.Node {
	expr := p.parseTerm()
	if tok := p.cur; p.at(token.LT) {
		expr = &ast.InfixExpression{Base: ast.Base{Token: tok}, Left: expr, Operator: token.LT, Right: p.parseTerm()}
	}
	return expr
}

func (p *Parser) parseTerm() ast.Node {
	expr := p.parseFactor()
	for tok := p.cur; p.at(token.PLUS); tok = p.cur {
		expr = &ast.InfixExpression{Base: ast.Base{Token: tok}, Left: expr, Operator: token.PLUS, Right: p.parseFactor()}
	}
	return expr
}

func (p *Parser) parseFactor() ast.Node {
	expr := p.parseUnary()
	for tok := p.cur; p.at(token.ASTERISK); tok = p.cur {
		expr = &ast.InfixExpression{Base: ast.Base{Token: tok}, Left: expr, Operator: token.ASTERISK, Right: p.parseUnary()}
	}
	return expr
}

func (p *Parser) parseUnary() ast.Node {
	tok := p.cur
	if p.at(token.MINUS) || p.at(token.BANG) {
		return &ast.PrefixExpression{Base: ast.Base{Token: tok}, Operator: tok.Type, Right: p.parseUnary()}
	}
	return p.parsePostfix(p.parsePrimary())
}

// parsePostfix handles the .name, [index] and (args) chains.
func (p *Parser) parsePostfix(expr ast.Node) ast.Node {
	for {
		tok := p.cur
		switch {
		case p.at(token.DOT):
			nameTok := p.cur
			if nameTok.Type != token.IDENT && !nameTok.Type.IsKeyword() {
				p.errorf("name expected but found %s", describe(nameTok))
				return nil
			}
			p.next()
			index := &ast.StringLiteral{Base: ast.Base{Token: nameTok}, Val: nameTok.Literal}
			expr = &ast.IndexExpression{Base: ast.Base{Token: tok}, Left: expr, Index: index, Dot: true}
		case p.at(token.LBRACKET):
			expr = &ast.IndexExpression{Base: ast.Base{Token: tok}, Left: expr, Index: p.parseExpression()}
			p.expect(token.RBRACKET, "]")
		case p.at(token.LPAREN):
			expr = &ast.CallExpression{Base: ast.Base{Token: tok}, Function: expr, Arguments: p.parseList(token.RPAREN, ")")}
		default:
			return expr
		}
	}
}

// parseList parses comma separated expressions up to and including the end token,
// the opening token having been consumed.
func (p *Parser) parseList(end token.Type, what string) []ast.Node {
	var list []ast.Node
	if p.at(end) {
		return list
	}
	list = append(list, p.parseExpression())
	for p.at(token.COMMA) {
		list = append(list, p.parseExpression())
	}
	p.expect(end, what)
	return list
}

func (p *Parser) parsePrimary() ast.Node { //nolint:funlen // one case per primary.
	if p.err != nil {
		return nil
	}
	tok := p.cur
	base := ast.Base{Token: tok}
	switch tok.Type { //nolint:exhaustive // everything else is an error.
	case token.LPAREN:
		p.next()
		expr := p.parseExpression()
		p.expect(token.RPAREN, ")")
		return expr
	case token.TRUE, token.FALSE:
		p.next()
		return &ast.Boolean{Base: base, Val: tok.Type == token.TRUE}
	case token.NULL:
		p.next()
		return &ast.NullLiteral{Base: base}
	case token.FUNCTION:
		p.next()
		return p.parseFunction(tok)
	case token.STRING:
		p.next()
		return &ast.StringLiteral{Base: base, Val: tok.Literal[1 : len(tok.Literal)-1]}
	case token.REGEXP:
		lastSlash := strings.LastIndexByte(tok.Literal, '/')
		lit := &ast.RegexpLiteral{Base: base, Pattern: tok.Literal[1:lastSlash], Flags: tok.Literal[lastSlash+1:]}
		re, err := object.CompileRegexp(lit.Pattern, lit.Flags)
		if err != nil {
			p.errorf("%v", err)
			return nil
		}
		lit.Re = re
		p.next()
		return lit
	case token.NUMBER:
		value, err := strconv.ParseFloat(tok.Literal, 64)
		var numErr *strconv.NumError
		if err != nil && (!errors.As(err, &numErr) || !errors.Is(numErr.Err, strconv.ErrRange)) {
			p.errorf("could not parse %q as number", tok.Literal)
			return nil
		}
		p.next()
		return &ast.NumberLiteral{Base: base, Val: value}
	case token.IDENT:
		p.next()
		return &ast.Identifier{Base: base, Val: tok.Literal}
	case token.LBRACKET:
		p.next()
		return &ast.ArrayLiteral{Base: base, Elements: p.parseList(token.RBRACKET, "]")}
	case token.LBRACE:
		p.next()
		return p.parseObject(base)
	}
	p.errorf("unexpected %s", describe(tok))
	return nil
}

// parseObject parses {k: v, ...} after the {. Bare identifier keys are
// string literals; any other key is an expression.
func (p *Parser) parseObject(base ast.Base) ast.Node {
	obj := &ast.ObjectLiteral{Base: base}
	if p.at(token.RBRACE) {
		return obj
	}
	for {
		key := p.parseExpression()
		if id, ok := key.(*ast.Identifier); ok {
			key = &ast.StringLiteral{Base: id.Base, Val: id.Val}
		}
		p.expect(token.COLON, ":")
		obj.Keys = append(obj.Keys, key)
		obj.Values = append(obj.Values, p.parseExpression())
		if !p.at(token.COMMA) {
			break
		}
	}
	p.expect(token.RBRACE, "}")
	return obj
}

// parseFunction is called after the function keyword; the name is optional.
func (p *Parser) parseFunction(tok token.Token) *ast.FunctionLiteral {
	fn := &ast.FunctionLiteral{Base: ast.Base{Token: tok}}
	if !p.at(token.LPAREN) {
		fn.Name = p.parseName()
		p.expect(token.LPAREN, "(")
	}
	if !p.at(token.RPAREN) {
		fn.Parameters = append(fn.Parameters, p.parseName())
		for p.at(token.COMMA) {
			fn.Parameters = append(fn.Parameters, p.parseName())
		}
		p.expect(token.RPAREN, ")")
	}
	fn.Body = p.parseBlock()
	return fn
}

func (p *Parser) parseName() string {
	if p.cur.Type != token.IDENT {
		p.errorf("name expected but found %s", describe(p.cur))
		return ""
	}
	return p.consume().Literal
}
