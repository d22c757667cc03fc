package optimizer

import "github.com/nanolang/nano/lang/ast"

// eliminateDeadCode applies the four dead-code rules of spec.md §4.3 to a
// statement list and recurses into nested blocks/functions. It must run
// after folding so that literal-condition tests (produced by folding, or
// already literal in the source) are recognized.
func eliminateDeadCode(stmts []ast.Stmt) []ast.Stmt {
	// Recurse into children first so nested blocks are already trimmed
	// before this list-level pass runs.
	for _, s := range stmts {
		recurseDeadCode(s)
	}

	out := make([]ast.Stmt, 0, len(stmts))
	for _, s := range stmts {
		switch n := s.(type) {
		case *ast.IfStatement:
			if lit, ok := literalBool(n.Cond); ok {
				if lit {
					out = append(out, flattenInto(n.Consequent)...)
				} else if n.Alternate != nil {
					out = append(out, flattenInto(n.Alternate)...)
				}
				// falsy without alternate: drop entirely
				continue
			}
			out = append(out, n)

		case *ast.WhileStatement:
			if lit, ok := literalBool(n.Cond); ok && !lit {
				continue // literal-false test: drop the loop
			}
			out = append(out, n)

		case *ast.ForStatement:
			if n.Test != nil {
				if lit, ok := literalBool(n.Test); ok && !lit {
					continue
				}
			}
			out = append(out, n)

		case *ast.VariableDeclaration:
			if isReferenced(n.ID.Name, stmts) {
				out = append(out, n)
				continue
			}
			if n.Initializer != nil && ast.HasSideEffects(n.Initializer) {
				out = append(out, &ast.ExpressionStatement{Position: n.Position, Expr: n.Initializer})
			} else if _, isLit := n.Initializer.(*ast.Literal); n.Initializer != nil && !isLit {
				// an unfolded operation or a name lookup can still fail at
				// runtime: keep the declaration so that failure stays observable
				out = append(out, n)
			}
			// else: drop entirely, no side effects or failure to preserve

		default:
			out = append(out, n)
		}

		// rule 1: everything after a return statement in this list is
		// unreachable.
		if _, ok := s.(*ast.ReturnStatement); ok {
			break
		}
	}
	return out
}

// flattenInto returns the statements that should replace an if-branch when
// it is spliced directly into the parent list: a block's own body, or the
// single statement itself if it isn't a block.
func flattenInto(s ast.Stmt) []ast.Stmt {
	if blk, ok := s.(*ast.BlockStatement); ok {
		return eliminateDeadCode(blk.Body)
	}
	return eliminateDeadCode([]ast.Stmt{s})
}

func recurseDeadCode(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.FunctionDeclaration:
		n.Body.Body = eliminateDeadCode(n.Body.Body)
	case *ast.BlockStatement:
		n.Body = eliminateDeadCode(n.Body)
	case *ast.IfStatement:
		recurseDeadCode(n.Consequent)
		if n.Alternate != nil {
			recurseDeadCode(n.Alternate)
		}
	case *ast.WhileStatement:
		recurseDeadCode(n.Body)
	case *ast.ForStatement:
		recurseDeadCode(n.Body)
	}
}

func literalBool(e ast.Expr) (value bool, ok bool) {
	lit, isLit := e.(*ast.Literal)
	if !isLit {
		return false, false
	}
	switch lit.Kind {
	case ast.BoolLiteral:
		return lit.Bool, true
	case ast.NumberLiteral:
		return lit.Num != 0, true
	case ast.StringLiteral:
		return lit.Str != "", true
	}
	return false, false
}

// isReferenced reports whether name is read or assigned to anywhere in
// stmts (the statement list enclosing the declaration), other than in a
// nested declaration that shadows it with a new `let`.
func isReferenced(name string, stmts []ast.Stmt) bool {
	found := false
	var visit ast.VisitorFunc
	visit = func(n ast.Node, dir ast.VisitDirection) ast.Visitor {
		if dir != ast.VisitEnter || found {
			return nil
		}
		switch id := n.(type) {
		case *ast.Identifier:
			if id.Name == name {
				found = true
				return nil
			}
		case *ast.VariableDeclaration:
			if id.ID.Name == name {
				// a nested redeclaration shadows: don't walk into its own ID node,
				// but do walk its initializer (evaluated in the outer scope).
				if id.Initializer != nil {
					ast.Walk(visit, id.Initializer)
				}
				return nil
			}
		}
		return visit
	}
	for _, s := range stmts {
		ast.Walk(visit, s)
		if found {
			return true
		}
	}
	return false
}
