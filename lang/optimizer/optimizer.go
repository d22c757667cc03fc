// Package optimizer implements the two optional, idempotent AST-level
// optimization passes described in spec.md §4.3: constant folding and
// dead-code elimination. Both passes preserve the observable output of a
// successful program and never turn a program that fails at runtime into
// a successful one (or vice versa). A compile-time error inside code the
// passes remove or splice into its parent (statements after a return, a
// branch that never runs, the block of an always-true if) can disappear
// with it.
package optimizer

import (
	"math"

	"github.com/nanolang/nano/lang/ast"
	"github.com/nanolang/nano/lang/token"
)

// Optimize runs constant folding followed by dead-code elimination over
// prog and returns the rewritten program. The statement and expression
// nodes of prog are rewritten in place; only the returned *ast.Program
// itself is new.
func Optimize(prog *ast.Program) *ast.Program {
	body := foldStmts(prog.Body)
	body = eliminateDeadCode(body)
	return &ast.Program{Body: body}
}

// --- constant folding -------------------------------------------------

func foldStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, len(stmts))
	for i, s := range stmts {
		out[i] = foldStmt(s)
	}
	return out
}

func foldStmt(s ast.Stmt) ast.Stmt {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Initializer != nil {
			n.Initializer = foldExpr(n.Initializer)
		}
		return n
	case *ast.FunctionDeclaration:
		n.Body = foldStmt(n.Body).(*ast.BlockStatement)
		return n
	case *ast.IfStatement:
		n.Cond = foldExpr(n.Cond)
		n.Consequent = foldStmt(n.Consequent)
		if n.Alternate != nil {
			n.Alternate = foldStmt(n.Alternate)
		}
		return n
	case *ast.WhileStatement:
		n.Cond = foldExpr(n.Cond)
		n.Body = foldStmt(n.Body)
		return n
	case *ast.ForStatement:
		if n.Init != nil {
			n.Init = foldStmt(n.Init)
		}
		if n.Test != nil {
			n.Test = foldExpr(n.Test)
		}
		if n.Update != nil {
			n.Update = foldExpr(n.Update)
		}
		n.Body = foldStmt(n.Body)
		return n
	case *ast.ReturnStatement:
		if n.Argument != nil {
			n.Argument = foldExpr(n.Argument)
		}
		return n
	case *ast.BlockStatement:
		n.Body = foldStmts(n.Body)
		return n
	case *ast.ExpressionStatement:
		n.Expr = foldExpr(n.Expr)
		return n
	default:
		return s
	}
}

func foldExpr(e ast.Expr) ast.Expr {
	switch n := e.(type) {
	case *ast.BinaryExpression:
		n.Left = foldExpr(n.Left)
		n.Right = foldExpr(n.Right)
		if folded := tryFoldBinary(n); folded != nil {
			return folded
		}
		return n
	case *ast.CallExpression:
		for i, a := range n.Args {
			n.Args[i] = foldExpr(a)
		}
		return n
	case *ast.AssignmentExpression:
		n.Right = foldExpr(n.Right)
		return n
	default:
		return e
	}
}

// tryFoldBinary attempts to replace a binary expression over two literal
// operands with the computed literal result. It returns nil when the
// expression cannot be safely folded (non-literal operand, division or
// modulo by zero — preserved so the runtime error remains observable — or
// an operand-type combination that would be a runtime type error, which
// must also remain observable rather than be silently resolved here).
func tryFoldBinary(n *ast.BinaryExpression) ast.Expr {
	a, ok := n.Left.(*ast.Literal)
	if !ok {
		return nil
	}
	b, ok := n.Right.(*ast.Literal)
	if !ok {
		return nil
	}

	pos := n.Position
	switch n.Op {
	case token.PLUS:
		if a.Kind == ast.NumberLiteral && b.Kind == ast.NumberLiteral {
			return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: a.Num + b.Num}
		}
		if a.Kind == ast.StringLiteral && b.Kind == ast.StringLiteral {
			return &ast.Literal{Position: pos, Kind: ast.StringLiteral, Str: a.Str + b.Str}
		}
		return nil
	case token.MINUS, token.STAR:
		if a.Kind != ast.NumberLiteral || b.Kind != ast.NumberLiteral {
			return nil
		}
		var v float64
		if n.Op == token.MINUS {
			v = a.Num - b.Num
		} else {
			v = a.Num * b.Num
		}
		return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: v}
	case token.SLASH:
		if a.Kind != ast.NumberLiteral || b.Kind != ast.NumberLiteral || b.Num == 0 {
			return nil // division by zero is not folded (spec.md §4.3)
		}
		return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: a.Num / b.Num}
	case token.PERCENT:
		if a.Kind != ast.NumberLiteral || b.Kind != ast.NumberLiteral || b.Num == 0 {
			return nil
		}
		return &ast.Literal{Position: pos, Kind: ast.NumberLiteral, Num: math.Mod(a.Num, b.Num)}
	case token.LT, token.GT, token.LE, token.GE:
		if a.Kind == ast.NumberLiteral && b.Kind == ast.NumberLiteral {
			return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: numCompare(n.Op, a.Num, b.Num)}
		}
		if a.Kind == ast.StringLiteral && b.Kind == ast.StringLiteral {
			return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: strCompare(n.Op, a.Str, b.Str)}
		}
		return nil
	case token.EQL, token.NEQ:
		if a.Kind != b.Kind {
			// different tags are never equal (spec.md §3), always safe to fold
			return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: n.Op == token.NEQ}
		}
		eq := literalsEqual(a, b)
		if n.Op == token.NEQ {
			eq = !eq
		}
		return &ast.Literal{Position: pos, Kind: ast.BoolLiteral, Bool: eq}
	default:
		return nil
	}
}

func numCompare(op token.Token, a, b float64) bool {
	switch op {
	case token.LT:
		return a < b
	case token.GT:
		return a > b
	case token.LE:
		return a <= b
	case token.GE:
		return a >= b
	}
	return false
}

func strCompare(op token.Token, a, b string) bool {
	switch op {
	case token.LT:
		return a < b
	case token.GT:
		return a > b
	case token.LE:
		return a <= b
	case token.GE:
		return a >= b
	}
	return false
}

func literalsEqual(a, b *ast.Literal) bool {
	switch a.Kind {
	case ast.NumberLiteral:
		return a.Num == b.Num
	case ast.StringLiteral:
		return a.Str == b.Str
	case ast.BoolLiteral:
		return a.Bool == b.Bool
	}
	return false
}
