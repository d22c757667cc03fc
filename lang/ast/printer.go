package ast

import "encoding/json"

// ToJSON renders prog as the `.ast.json` document format described in
// spec.md §6: every node is an object with a "type" field naming its Go
// node variant, plus its children.
func ToJSON(prog *Program) ([]byte, error) {
	return json.MarshalIndent(jsonProgram(prog), "", "  ")
}

func jsonProgram(n *Program) map[string]any {
	body := make([]any, len(n.Body))
	for i, s := range n.Body {
		body[i] = jsonStmt(s)
	}
	return map[string]any{"type": "Program", "body": body}
}

func jsonStmt(s Stmt) map[string]any {
	switch n := s.(type) {
	case *VariableDeclaration:
		m := map[string]any{"type": "VariableDeclaration", "id": jsonExpr(n.ID)}
		if n.Initializer != nil {
			m["initializer"] = jsonExpr(n.Initializer)
		}
		return m
	case *FunctionDeclaration:
		params := make([]any, len(n.Params))
		for i, p := range n.Params {
			params[i] = jsonExpr(p)
		}
		return map[string]any{
			"type": "FunctionDeclaration", "name": n.Name, "params": params,
			"body": jsonStmt(n.Body),
		}
	case *IfStatement:
		m := map[string]any{
			"type": "IfStatement", "cond": jsonExpr(n.Cond), "consequent": jsonStmt(n.Consequent),
		}
		if n.Alternate != nil {
			m["alternate"] = jsonStmt(n.Alternate)
		}
		return m
	case *WhileStatement:
		return map[string]any{"type": "WhileStatement", "cond": jsonExpr(n.Cond), "body": jsonStmt(n.Body)}
	case *ForStatement:
		m := map[string]any{"type": "ForStatement", "body": jsonStmt(n.Body)}
		if n.Init != nil {
			m["init"] = jsonStmt(n.Init)
		}
		if n.Test != nil {
			m["test"] = jsonExpr(n.Test)
		}
		if n.Update != nil {
			m["update"] = jsonExpr(n.Update)
		}
		return m
	case *ReturnStatement:
		m := map[string]any{"type": "ReturnStatement"}
		if n.Argument != nil {
			m["argument"] = jsonExpr(n.Argument)
		}
		return m
	case *BlockStatement:
		body := make([]any, len(n.Body))
		for i, st := range n.Body {
			body[i] = jsonStmt(st)
		}
		return map[string]any{"type": "BlockStatement", "body": body}
	case *ExpressionStatement:
		return map[string]any{"type": "ExpressionStatement", "expr": jsonExpr(n.Expr)}
	default:
		return map[string]any{"type": "UnknownStatement"}
	}
}

func jsonExpr(e Expr) map[string]any {
	switch n := e.(type) {
	case *BinaryExpression:
		return map[string]any{
			"type": "BinaryExpression", "op": n.Op.String(),
			"left": jsonExpr(n.Left), "right": jsonExpr(n.Right),
		}
	case *CallExpression:
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			args[i] = jsonExpr(a)
		}
		return map[string]any{"type": "CallExpression", "callee": jsonExpr(n.Callee), "args": args}
	case *AssignmentExpression:
		return map[string]any{"type": "AssignmentExpression", "left": jsonExpr(n.Left), "right": jsonExpr(n.Right)}
	case *Identifier:
		return map[string]any{"type": "Identifier", "name": n.Name}
	case *Literal:
		m := map[string]any{"type": "Literal"}
		switch n.Kind {
		case NumberLiteral:
			m["value"] = n.Num
		case StringLiteral:
			m["value"] = n.Str
		case BoolLiteral:
			m["value"] = n.Bool
		}
		return m
	default:
		return map[string]any{"type": "UnknownExpression"}
	}
}
