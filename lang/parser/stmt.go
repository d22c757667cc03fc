package parser

import (
	"github.com/nanolang/nano/lang/ast"
	"github.com/nanolang/nano/lang/token"
)

func (p *parser) parseStmt() ast.Stmt {
	switch p.tok.Token {
	case token.LET:
		return p.parseVariableDeclaration()
	case token.FUNCTION:
		return p.parseFunctionDeclaration()
	case token.IF:
		return p.parseIfStatement()
	case token.WHILE:
		return p.parseWhileStatement()
	case token.FOR:
		return p.parseForStatement()
	case token.RETURN:
		return p.parseReturnStatement()
	case token.LBRACE:
		return p.parseBlockStatement()
	default:
		return p.parseExpressionStatement()
	}
}

func (p *parser) parseVariableDeclaration() ast.Stmt {
	pos := p.expect(token.LET)
	id := p.parseIdentifier()

	var init ast.Expr
	if p.tok.Token == token.ASSIGN {
		p.next()
		init = p.parseExpr()
	}
	p.expectStmtEnd()
	return &ast.VariableDeclaration{Position: pos, ID: id, Initializer: init}
}

func (p *parser) parseFunctionDeclaration() ast.Stmt {
	pos := p.expect(token.FUNCTION)

	name := "?"
	if p.tok.Token == token.IDENT {
		name = p.tok.Lit
		p.next()
	} else {
		p.errorf(p.pos(), "expected function name, found %s", describeTok(p.tok))
	}

	p.expect(token.LPAREN)
	var params []*ast.Identifier
	if p.tok.Token != token.RPAREN {
		params = append(params, p.parseIdentifier())
		for p.tok.Token == token.COMMA {
			p.next()
			params = append(params, p.parseIdentifier())
		}
	}
	p.expect(token.RPAREN)

	body := p.parseBlockStatement().(*ast.BlockStatement)
	return &ast.FunctionDeclaration{Position: pos, Name: name, Params: params, Body: body}
}

func (p *parser) parseIfStatement() ast.Stmt {
	pos := p.expect(token.IF)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	cons := p.parseStmt()

	var alt ast.Stmt
	if p.tok.Token == token.ELSE {
		p.next()
		alt = p.parseStmt()
	}
	return &ast.IfStatement{Position: pos, Cond: cond, Consequent: cons, Alternate: alt}
}

func (p *parser) parseWhileStatement() ast.Stmt {
	pos := p.expect(token.WHILE)
	p.expect(token.LPAREN)
	cond := p.parseExpr()
	p.expect(token.RPAREN)
	body := p.parseStmt()
	return &ast.WhileStatement{Position: pos, Cond: cond, Body: body}
}

func (p *parser) parseForStatement() ast.Stmt {
	pos := p.expect(token.FOR)
	p.expect(token.LPAREN)

	var init ast.Stmt
	if p.tok.Token == token.LET {
		init = p.parseVariableDeclaration()
	} else if p.tok.Token != token.SEMI {
		init = p.parseExpressionStatement()
	} else {
		p.expect(token.SEMI)
	}

	var test ast.Expr
	if p.tok.Token != token.SEMI {
		test = p.parseExpr()
	}
	p.expect(token.SEMI)

	var update ast.Expr
	if p.tok.Token != token.RPAREN {
		update = p.parseExpr()
	}
	p.expect(token.RPAREN)

	body := p.parseStmt()
	return &ast.ForStatement{Position: pos, Init: init, Test: test, Update: update, Body: body}
}

func (p *parser) parseReturnStatement() ast.Stmt {
	pos := p.expect(token.RETURN)
	var arg ast.Expr
	if p.tok.Token != token.SEMI {
		arg = p.parseExpr()
	}
	p.expectStmtEnd()
	return &ast.ReturnStatement{Position: pos, Argument: arg}
}

func (p *parser) parseBlockStatement() ast.Stmt {
	pos := p.expect(token.LBRACE)
	var body []ast.Stmt
	for p.tok.Token != token.RBRACE && p.tok.Token != token.EOF {
		body = append(body, p.parseStmt())
	}
	p.expect(token.RBRACE)
	return &ast.BlockStatement{Position: pos, Body: body}
}

func (p *parser) parseExpressionStatement() ast.Stmt {
	pos := p.pos()
	expr := p.parseExpr()
	p.expectStmtEnd()
	return &ast.ExpressionStatement{Position: pos, Expr: expr}
}

// expectStmtEnd consumes the terminating ';', reporting and recovering via
// synchronize on failure so later statements remain parseable.
func (p *parser) expectStmtEnd() {
	if p.tok.Token == token.SEMI {
		p.next()
		return
	}
	p.errorf(p.pos(), "expected ';', found %s", describeTok(p.tok))
	p.synchronize()
}

func (p *parser) parseIdentifier() *ast.Identifier {
	pos := p.pos()
	if p.tok.Token != token.IDENT {
		p.errorf(pos, "expected identifier, found %s", describeTok(p.tok))
		return &ast.Identifier{Position: pos, Name: "?"}
	}
	name := p.tok.Lit
	p.next()
	return &ast.Identifier{Position: pos, Name: name}
}
