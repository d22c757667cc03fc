package ast

import "github.com/nanolang/nano/lang/token"

type (
	// BinaryExpression is `left op right`.
	BinaryExpression struct {
		Position token.Position
		Left     Expr
		Op       token.Token
		Right    Expr
	}

	// CallExpression is `callee(args...)`. The callee is always an Identifier:
	// nano has no first-class function values at the call site, only named
	// function references and intrinsics.
	CallExpression struct {
		Position token.Position
		Callee   *Identifier
		Args     []Expr
	}

	// AssignmentExpression is `left = right`.
	AssignmentExpression struct {
		Position token.Position
		Left     *Identifier
		Right    Expr
	}

	// Identifier is a bare name reference.
	Identifier struct {
		Position token.Position
		Name     string
	}

	// LiteralKind distinguishes the Go type backing a Literal node's value.
	LiteralKind int

	// Literal is a number, string, or boolean constant.
	Literal struct {
		Position token.Position
		Kind     LiteralKind
		Num      float64
		Str      string
		Bool     bool
	}
)

const (
	NumberLiteral LiteralKind = iota
	StringLiteral
	BoolLiteral
)

func (n *BinaryExpression) Pos() token.Position { return n.Position }
func (n *BinaryExpression) exprNode()           {}
func (n *BinaryExpression) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *CallExpression) Pos() token.Position { return n.Position }
func (n *CallExpression) exprNode()           {}
func (n *CallExpression) Walk(v Visitor) {
	Walk(v, n.Callee)
	for _, a := range n.Args {
		Walk(v, a)
	}
}

func (n *AssignmentExpression) Pos() token.Position { return n.Position }
func (n *AssignmentExpression) exprNode()           {}
func (n *AssignmentExpression) Walk(v Visitor) {
	Walk(v, n.Left)
	Walk(v, n.Right)
}

func (n *Identifier) Pos() token.Position { return n.Position }
func (n *Identifier) exprNode()           {}
func (n *Identifier) Walk(Visitor)        {}

func (n *Literal) Pos() token.Position { return n.Position }
func (n *Literal) exprNode()           {}
func (n *Literal) Walk(Visitor)        {}

// HasSideEffects reports whether evaluating e can have an effect beyond
// producing a value — used by the dead-code eliminator to decide whether an
// unused variable's initializer must be kept as a bare expression statement.
func HasSideEffects(e Expr) bool {
	has := false
	var visit VisitorFunc
	visit = func(n Node, dir VisitDirection) Visitor {
		if dir != VisitEnter || has {
			return nil
		}
		switch n.(type) {
		case *CallExpression, *AssignmentExpression:
			has = true
			return nil
		}
		return visit
	}
	Walk(visit, e)
	return has
}
