package parser

import (
	"github.com/nanolang/nano/lang/ast"
	"github.com/nanolang/nano/lang/token"
)

// precedence, low to high: assignment < or < and < equality < comparison <
// additive < multiplicative < unary < primary. Assignment is handled
// separately in parseExpr (right-associative, LHS restricted to an
// identifier); the rest is ordinary left-associative precedence climbing.
var binPrec = map[token.Token]int{
	token.OR:      1,
	token.AND:     2,
	token.EQL:     3,
	token.NEQ:     3,
	token.LT:      4,
	token.GT:      4,
	token.LE:      4,
	token.GE:      4,
	token.PLUS:    5,
	token.MINUS:   5,
	token.STAR:    6,
	token.SLASH:   6,
	token.PERCENT: 6,
}

func (p *parser) parseExpr() ast.Expr {
	left := p.parseBinary(1)

	if p.tok.Token == token.ASSIGN {
		id, ok := left.(*ast.Identifier)
		if !ok {
			p.errorf(p.pos(), "invalid assignment target")
			p.next()
			return p.parseExpr()
		}
		pos := p.pos()
		p.next()
		right := p.parseExpr() // right-associative
		return &ast.AssignmentExpression{Position: pos, Left: id, Right: right}
	}
	return left
}

func (p *parser) parseBinary(minPrec int) ast.Expr {
	left := p.parseUnary()

	for {
		prec, ok := binPrec[p.tok.Token]
		if !ok || prec < minPrec {
			return left
		}
		op := p.tok.Token
		pos := p.pos()
		p.next()
		right := p.parseBinary(prec + 1) // left-associative: next level excludes current prec
		left = &ast.BinaryExpression{Position: pos, Left: left, Op: op, Right: right}
	}
}

func (p *parser) parseUnary() ast.Expr {
	if p.tok.Token == token.MINUS {
		pos := p.pos()
		p.next()
		operand := p.parseUnary()
		zero := &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: 0}
		return &ast.BinaryExpression{Position: pos, Left: zero, Op: token.MINUS, Right: operand}
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() ast.Expr {
	pos := p.pos()

	switch p.tok.Token {
	case token.NUMBER:
		n := p.tok.Num
		p.next()
		return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: n}

	case token.STRING:
		s := p.tok.Str
		p.next()
		return &ast.Literal{Position: pos, Kind: ast.StringLiteral, Str: s}

	case token.TRUE:
		p.next()
		return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: true}

	case token.FALSE:
		p.next()
		return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: false}

	case token.IDENT:
		name := p.tok.Lit
		p.next()
		if p.tok.Token == token.LPAREN {
			return p.parseCallExpression(pos, name)
		}
		return &ast.Identifier{Position: pos, Name: name}

	case token.LPAREN:
		p.next()
		expr := p.parseExpr()
		p.expect(token.RPAREN)
		return expr

	default:
		p.errorf(pos, "unexpected token %s", describeTok(p.tok))
		p.next()
		return placeholderExpr(pos)
	}
}

func (p *parser) parseCallExpression(pos token.Position, calleeName string) ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	if p.tok.Token != token.RPAREN {
		args = append(args, p.parseExpr())
		for p.tok.Token == token.COMMA {
			p.next()
			args = append(args, p.parseExpr())
		}
	}
	p.expect(token.RPAREN)
	return &ast.CallExpression{
		Position: pos,
		Callee:   &ast.Identifier{Position: pos, Name: calleeName},
		Args:     args,
	}
}
