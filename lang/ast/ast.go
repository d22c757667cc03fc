// Package ast defines the abstract syntax tree produced by the parser: a
// closed set of statement and expression node variants, each carrying its
// source position, plus a Walk-based visitor and a JSON printer.
package ast

import "github.com/nanolang/nano/lang/token"

// Node is implemented by every AST node.
type Node interface {
	// Pos returns the source position where the node begins.
	Pos() token.Position
	// Walk visits the node's direct children, in evaluation order.
	Walk(v Visitor)
}

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root of every parsed nano source file.
type Program struct {
	Body []Stmt
}

func (n *Program) Pos() token.Position {
	if len(n.Body) == 0 {
		return token.Position{}
	}
	return n.Body[0].Pos()
}
func (n *Program) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}
