package ast

import "github.com/nanolang/nano/lang/token"

type (
	// VariableDeclaration is `let id = initializer;` (initializer optional).
	VariableDeclaration struct {
		Position    token.Position
		ID          *Identifier
		Initializer Expr // nil if absent
	}

	// FunctionDeclaration is `function name(params) { body }`.
	FunctionDeclaration struct {
		Position token.Position
		Name     string
		Params   []*Identifier
		Body     *BlockStatement
	}

	// IfStatement is `if (cond) consequent [else alternate]`.
	IfStatement struct {
		Position   token.Position
		Cond       Expr
		Consequent Stmt
		Alternate  Stmt // nil if absent
	}

	// WhileStatement is `while (cond) body`.
	WhileStatement struct {
		Position token.Position
		Cond     Expr
		Body     Stmt
	}

	// ForStatement is `for (init; test; update) body`, each of init/test/update
	// optional.
	ForStatement struct {
		Position token.Position
		Init     Stmt // VariableDeclaration or ExpressionStatement, or nil
		Test     Expr // nil if absent
		Update   Expr // nil if absent
		Body     Stmt
	}

	// ReturnStatement is `return [argument];`.
	ReturnStatement struct {
		Position token.Position
		Argument Expr // nil if absent
	}

	// BlockStatement is `{ body }`.
	BlockStatement struct {
		Position token.Position
		Body     []Stmt
	}

	// ExpressionStatement is an expression evaluated for its side effect.
	ExpressionStatement struct {
		Position token.Position
		Expr     Expr
	}
)

func (n *VariableDeclaration) Pos() token.Position { return n.Position }
func (n *VariableDeclaration) stmtNode()           {}
func (n *VariableDeclaration) Walk(v Visitor) {
	Walk(v, n.ID)
	if n.Initializer != nil {
		Walk(v, n.Initializer)
	}
}

func (n *FunctionDeclaration) Pos() token.Position { return n.Position }
func (n *FunctionDeclaration) stmtNode()           {}
func (n *FunctionDeclaration) Walk(v Visitor) {
	for _, p := range n.Params {
		Walk(v, p)
	}
	Walk(v, n.Body)
}

func (n *IfStatement) Pos() token.Position { return n.Position }
func (n *IfStatement) stmtNode()           {}
func (n *IfStatement) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Consequent)
	if n.Alternate != nil {
		Walk(v, n.Alternate)
	}
}

func (n *WhileStatement) Pos() token.Position { return n.Position }
func (n *WhileStatement) stmtNode()           {}
func (n *WhileStatement) Walk(v Visitor) {
	Walk(v, n.Cond)
	Walk(v, n.Body)
}

func (n *ForStatement) Pos() token.Position { return n.Position }
func (n *ForStatement) stmtNode()           {}
func (n *ForStatement) Walk(v Visitor) {
	if n.Init != nil {
		Walk(v, n.Init)
	}
	if n.Test != nil {
		Walk(v, n.Test)
	}
	if n.Update != nil {
		Walk(v, n.Update)
	}
	Walk(v, n.Body)
}

func (n *ReturnStatement) Pos() token.Position { return n.Position }
func (n *ReturnStatement) stmtNode()           {}
func (n *ReturnStatement) Walk(v Visitor) {
	if n.Argument != nil {
		Walk(v, n.Argument)
	}
}

func (n *BlockStatement) Pos() token.Position { return n.Position }
func (n *BlockStatement) stmtNode()           {}
func (n *BlockStatement) Walk(v Visitor) {
	for _, s := range n.Body {
		Walk(v, s)
	}
}

func (n *ExpressionStatement) Pos() token.Position { return n.Position }
func (n *ExpressionStatement) stmtNode()           {}
func (n *ExpressionStatement) Walk(v Visitor)      { Walk(v, n.Expr) }
