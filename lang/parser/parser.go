// Package parser implements the recursive-descent, precedence-climbing
// parser that turns a nano token stream into an AST.
package parser

import (
	"fmt"
	"go/scanner"

	"github.com/nanolang/nano/lang/ast"
	nscanner "github.com/nanolang/nano/lang/scanner"
	"github.com/nanolang/nano/lang/token"
)

// Parse parses a complete nano source file and returns the resulting AST
// along with any syntax errors encountered. The parser recovers from
// errors by synchronizing to the next statement boundary, so a non-nil
// *ast.Program is always returned even when err is non-nil — callers must
// check err before handing the program to the code generator (see
// spec.md §7: "code generation is skipped if any error is recorded").
//
// The returned error, when non-nil, is always a scanner.ErrorList.
func Parse(filename string, src []byte) (*ast.Program, error) {
	var p parser
	p.filename = filename
	p.sc.Init(filename, src)
	p.next()

	prog := &ast.Program{}
	for p.tok.Token != token.EOF {
		prog.Body = append(prog.Body, p.parseStmt())
	}

	if scanErrs, ok := p.sc.Errors().(scanner.ErrorList); ok {
		p.errs = append(p.errs, scanErrs...)
	}
	p.errs.Sort()
	return prog, p.errs.Err()
}

type parser struct {
	filename string
	sc       nscanner.Scanner
	errs     scanner.ErrorList

	tok  nscanner.TokenValue // current token
	prev nscanner.TokenValue // previous token (for end-position bookkeeping)
}

func (p *parser) next() {
	p.prev = p.tok
	p.tok = p.sc.Scan()
}

func (p *parser) pos() token.Position { return p.tok.Pos }

func (p *parser) errorf(pos token.Position, format string, args ...any) {
	p.errs.Add(scanner.Position{Filename: p.filename, Line: pos.Line, Column: pos.Col}, fmt.Sprintf(format, args...))
}

// expect consumes the current token if it matches tok, reporting an error
// and leaving the token stream unchanged otherwise.
func (p *parser) expect(tok token.Token) token.Position {
	pos := p.pos()
	if p.tok.Token != tok {
		p.errorf(pos, "expected %s, found %s", tok, describeTok(p.tok))
		return pos
	}
	p.next()
	return pos
}

func describeTok(tv nscanner.TokenValue) string {
	if tv.Token == token.IDENT || tv.Token == token.NUMBER || tv.Token == token.STRING {
		return fmt.Sprintf("%s %q", tv.Token, tv.Lit)
	}
	return tv.Token.String()
}

// synchronize skips tokens until a likely statement boundary is found: past
// the next ';', or just before a keyword that begins a new statement, or at
// EOF. This lets parsing continue after an error so later statements can
// still be reported (spec.md §4.2).
func (p *parser) synchronize() {
	for p.tok.Token != token.EOF {
		if p.tok.Token == token.SEMI {
			p.next()
			return
		}
		switch p.tok.Token {
		case token.LET, token.FUNCTION, token.IF, token.WHILE, token.FOR, token.RETURN, token.LBRACE, token.RBRACE:
			return
		}
		p.next()
	}
}

// placeholderExpr substitutes for a missing expression so that later
// statements can still be parsed and reported, per spec.md §4.2.
func placeholderExpr(pos token.Position) ast.Expr {
	return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: 0}
}
