package compiler

import (
	"fmt"
	"go/scanner"

	"github.com/nanolang/nano/lang/ast"
	"github.com/nanolang/nano/lang/symtab"
	"github.com/nanolang/nano/lang/token"
)

// Generate lowers an (optionally optimized) AST to a Program, following the
// rules of spec.md §4.5. The returned error, if non-nil, is a
// scanner.ErrorList of semantic errors (undeclared names, undeclared call
// targets, unsupported operators); the generator keeps going after an error
// to collect as many as possible, the same recovery posture as the parser.
func Generate(prog *ast.Program) (*Program, error) {
	g := &generator{
		syms:      symtab.New(),
		functions: make(map[string]*FunctionRef),
		labels:    make(map[string]int),
	}
	g.hoistFunctions(prog.Body)
	for _, s := range prog.Body {
		g.genStmt(s)
	}
	g.emit(HALT, nil)
	g.patchJumps()

	g.errs.Sort()
	if err := g.errs.Err(); err != nil {
		return nil, err
	}
	return &Program{Instructions: g.instrs, Functions: g.functions}, nil
}

type pendingJump struct {
	index int
	label string
}

type generator struct {
	instrs    []Instruction
	syms      *symtab.Table
	functions map[string]*FunctionRef
	labels    map[string]int
	pending   []pendingJump
	labelSeq  int
	errs      scanner.ErrorList

	// currentFunctionLocals is nil at top level; while generating a
	// function's body it collects every name `let`-declared anywhere in
	// that body, so the VM can tell a local from a global at runtime
	// without repeating scope analysis (see FunctionRef.LocalNames).
	currentFunctionLocals map[string]bool
}

func (g *generator) errorf(pos token.Position, format string, args ...any) {
	g.errs.Add(scanner.Position{Line: pos.Line, Column: pos.Col}, fmt.Sprintf(format, args...))
}

func (g *generator) emit(op Opcode, operand any) int {
	g.instrs = append(g.instrs, Instruction{Op: op, Operand: operand})
	return len(g.instrs) - 1
}

func (g *generator) newLabel(prefix string) string {
	g.labelSeq++
	return fmt.Sprintf("_%s%d", prefix, g.labelSeq)
}

// markLabel records the current instruction address as the target for
// label.
func (g *generator) markLabel(label string) {
	g.labels[label] = len(g.instrs)
}

// emitJump reserves a jump instruction with a placeholder operand, to be
// patched once the label's address is known.
func (g *generator) emitJump(op Opcode, label string) {
	idx := g.emit(op, label)
	g.pending = append(g.pending, pendingJump{index: idx, label: label})
}

func (g *generator) patchJumps() {
	for _, p := range g.pending {
		addr, ok := g.labels[p.label]
		if !ok {
			// Can only happen from a generator bug: every label reserved by
			// emitJump must be marked before Generate returns.
			continue
		}
		g.instrs[p.index].Operand = addr
	}
}

// hoistFunctions pre-registers every top-level function's name and arity
// so forward and mutually-recursive calls resolve during generation, the
// same way JavaScript hoists function declarations.
func (g *generator) hoistFunctions(stmts []ast.Stmt) {
	for _, s := range stmts {
		if fn, ok := s.(*ast.FunctionDeclaration); ok {
			names := make([]string, len(fn.Params))
			for i, p := range fn.Params {
				names[i] = p.Name
			}
			g.functions[fn.Name] = &FunctionRef{Name: fn.Name, ParameterNames: names, Arity: len(names)}
			g.syms.Declare(fn.Name, symtab.Function)
		}
	}
}

func (g *generator) genStmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.VariableDeclaration:
		if n.Initializer != nil {
			g.genExpr(n.Initializer)
		} else {
			g.emit(PUSH, 0.0)
		}
		g.emit(STORE, n.ID.Name)
		g.syms.Declare(n.ID.Name, symtab.Unknown)
		if g.currentFunctionLocals != nil {
			g.currentFunctionLocals[n.ID.Name] = true
		}

	case *ast.FunctionDeclaration:
		g.genFunctionDeclaration(n)

	case *ast.IfStatement:
		g.genIf(n)

	case *ast.WhileStatement:
		g.genWhile(n)

	case *ast.ForStatement:
		g.genFor(n)

	case *ast.ReturnStatement:
		if n.Argument != nil {
			g.genExpr(n.Argument)
		} else {
			g.emit(PUSH, 0.0)
		}
		g.emit(RETURN, nil)

	case *ast.BlockStatement:
		g.syms.EnterScope()
		for _, stmt := range n.Body {
			g.genStmt(stmt)
		}
		g.syms.ExitScope()

	case *ast.ExpressionStatement:
		g.genExprStatement(n.Expr)

	default:
		g.errorf(s.Pos(), "unsupported statement")
	}
}

// genExprStatement emits an expression evaluated purely for its effect.
// print leaves nothing on the stack, and a statement-level assignment
// stores without keeping a copy; every other expression form, including
// any other call, pushes a value that is then popped.
func (g *generator) genExprStatement(e ast.Expr) {
	switch n := e.(type) {
	case *ast.CallExpression:
		if n.Callee.Name == "print" {
			g.genPrintCall(n)
			return
		}
		g.genCallExpression(n)
		g.emit(POP, nil)
	case *ast.AssignmentExpression:
		g.genAssignment(n, false)
	default:
		g.genExpr(n)
		g.emit(POP, nil)
	}
}

func (g *generator) genIf(n *ast.IfStatement) {
	g.genExpr(n.Cond)
	if n.Alternate == nil {
		end := g.newLabel("end")
		g.emitJump(JUMP_IF_FALSE, end)
		g.genStmt(n.Consequent)
		g.markLabel(end)
		return
	}
	elseLabel := g.newLabel("else")
	end := g.newLabel("end")
	g.emitJump(JUMP_IF_FALSE, elseLabel)
	g.genStmt(n.Consequent)
	g.emitJump(JUMP, end)
	g.markLabel(elseLabel)
	g.genStmt(n.Alternate)
	g.markLabel(end)
}

func (g *generator) genWhile(n *ast.WhileStatement) {
	start := g.newLabel("start")
	end := g.newLabel("end")
	g.markLabel(start)
	g.genExpr(n.Cond)
	g.emitJump(JUMP_IF_FALSE, end)
	g.genStmt(n.Body)
	g.emitJump(JUMP, start)
	g.markLabel(end)
}

func (g *generator) genFor(n *ast.ForStatement) {
	g.syms.EnterScope()
	if n.Init != nil {
		g.genStmt(n.Init)
	}
	start := g.newLabel("start")
	end := g.newLabel("end")
	g.markLabel(start)
	if n.Test != nil {
		g.genExpr(n.Test)
	} else {
		g.emit(PUSH, true)
	}
	g.emitJump(JUMP_IF_FALSE, end)
	g.genStmt(n.Body)
	if n.Update != nil {
		g.genExprStatement(n.Update)
	}
	g.emitJump(JUMP, start)
	g.markLabel(end)
	g.syms.ExitScope()
}

func (g *generator) genFunctionDeclaration(n *ast.FunctionDeclaration) {
	after := g.newLabel("after")
	g.emitJump(JUMP, after)

	start := len(g.instrs)
	ref, ok := g.functions[n.Name]
	if !ok {
		// only top-level declarations are hoisted; a nested one is
		// registered where it is declared
		names := make([]string, len(n.Params))
		for i, p := range n.Params {
			names[i] = p.Name
		}
		ref = &FunctionRef{Name: n.Name, ParameterNames: names, Arity: len(names)}
		g.functions[n.Name] = ref
		g.syms.Declare(n.Name, symtab.Function)
	}
	ref.StartAddress = start

	outerLocals := g.currentFunctionLocals
	locals := make(map[string]bool, len(n.Params))
	g.currentFunctionLocals = locals

	g.syms.EnterScope()
	for _, p := range n.Params {
		g.syms.Declare(p.Name, symtab.Unknown)
		locals[p.Name] = true
	}
	for _, stmt := range n.Body.Body {
		g.genStmt(stmt)
	}
	if !endsInReturn(n.Body.Body) {
		g.emit(PUSH, 0.0)
		g.emit(RETURN, nil)
	}
	g.syms.ExitScope()
	g.currentFunctionLocals = outerLocals

	ref.LocalNames = make([]string, 0, len(locals))
	for name := range locals {
		ref.LocalNames = append(ref.LocalNames, name)
	}

	ref.EndAddress = len(g.instrs)
	g.markLabel(after)
}

func endsInReturn(stmts []ast.Stmt) bool {
	if len(stmts) == 0 {
		return false
	}
	_, ok := stmts[len(stmts)-1].(*ast.ReturnStatement)
	return ok
}

// genAssignment emits the assignment's right-hand side and a STORE. When
// keepValue is set (the assignment is used as a sub-expression, e.g. the
// right side of another assignment) the stored value is duplicated first
// so it remains on the stack as the expression's result; a statement-level
// assignment needs no such copy.
func (g *generator) genAssignment(n *ast.AssignmentExpression, keepValue bool) {
	if _, ok := g.syms.Lookup(n.Left.Name); !ok {
		g.errorf(n.Left.Pos(), "assignment to undeclared variable %q", n.Left.Name)
	}
	g.genExpr(n.Right)
	if keepValue {
		g.emit(DUP, nil)
	}
	g.emit(STORE, n.Left.Name)
}

// genLogicalAnd short-circuits: the left value is left on the stack and the
// right side is never evaluated once the left is falsy.
func (g *generator) genLogicalAnd(n *ast.BinaryExpression) {
	g.genExpr(n.Left)
	end := g.newLabel("and_end")
	g.emit(DUP, nil)
	g.emitJump(JUMP_IF_FALSE, end)
	g.emit(POP, nil)
	g.genExpr(n.Right)
	g.markLabel(end)
}

// genLogicalOr short-circuits: the left value is left on the stack and the
// right side is never evaluated once the left is truthy.
func (g *generator) genLogicalOr(n *ast.BinaryExpression) {
	g.genExpr(n.Left)
	evalRight := g.newLabel("or_right")
	end := g.newLabel("or_end")
	g.emit(DUP, nil)
	g.emitJump(JUMP_IF_FALSE, evalRight)
	g.emitJump(JUMP, end)
	g.markLabel(evalRight)
	g.emit(POP, nil)
	g.genExpr(n.Right)
	g.markLabel(end)
}

func (g *generator) genExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal:
		switch n.Kind {
		case ast.NumberLiteral:
			g.emit(PUSH, n.Num)
		case ast.StringLiteral:
			g.emit(PUSH, n.Str)
		case ast.BoolLiteral:
			g.emit(PUSH, n.Bool)
		}

	case *ast.Identifier:
		if _, ok := g.syms.Lookup(n.Name); !ok {
			g.errorf(n.Pos(), "undeclared variable %q", n.Name)
		}
		g.emit(LOAD, n.Name)

	case *ast.AssignmentExpression:
		g.genAssignment(n, true)

	case *ast.BinaryExpression:
		switch n.Op {
		case token.AND:
			g.genLogicalAnd(n)
			return
		case token.OR:
			g.genLogicalOr(n)
			return
		}
		g.genExpr(n.Left)
		g.genExpr(n.Right)
		op, ok := binaryOpcode(n.Op)
		if !ok {
			g.errorf(n.Pos(), "unsupported operator")
			return
		}
		g.emit(op, nil)

	case *ast.CallExpression:
		if n.Callee.Name == "print" {
			// print has no return value (PRINT leaves nothing on the stack); used
			// here as an expression it would desync whatever consumes this value
			// (e.g. a STORE from an enclosing assignment). Reject it and still
			// emit a balanced placeholder so generation can keep looking for
			// further errors.
			g.errorf(n.Pos(), "print has no value and cannot be used as an expression")
			g.genPrintCall(n)
			g.emit(PUSH, 0.0)
			return
		}
		g.genCallExpression(n)

	default:
		g.errorf(e.Pos(), "unsupported expression")
	}
}

// genPrintCall emits the single argument followed by the dedicated PRINT
// opcode, the chosen resolution of print's special-cased call semantics.
// As an expression (not a statement), it leaves nothing on the stack; the
// sole caller in expression position (genExpr's CallExpression case, above)
// rejects that usage at compile time and pads the stack itself.
func (g *generator) genPrintCall(n *ast.CallExpression) {
	if len(n.Args) != 1 {
		g.errorf(n.Pos(), "print expects exactly 1 argument, got %d", len(n.Args))
	}
	for _, a := range n.Args {
		g.genExpr(a)
	}
	g.emit(PRINT, nil)
}

func (g *generator) genCallExpression(n *ast.CallExpression) {
	name := n.Callee.Name
	if arity, ok := Intrinsics[name]; ok {
		if len(n.Args) != arity {
			g.errorf(n.Pos(), "%s expects %d argument(s), got %d", name, arity, len(n.Args))
		}
		for _, a := range n.Args {
			g.genExpr(a)
		}
		g.emit(CALL, name)
		return
	}
	ref, ok := g.functions[name]
	if !ok {
		g.errorf(n.Pos(), "call to undeclared function %q", name)
		for _, a := range n.Args {
			g.genExpr(a)
		}
		g.emit(CALL, name)
		return
	}
	if len(n.Args) != ref.Arity {
		g.errorf(n.Pos(), "%s expects %d argument(s), got %d", name, ref.Arity, len(n.Args))
	}
	for _, a := range n.Args {
		g.genExpr(a)
	}
	g.emit(CALL, name)
}

func binaryOpcode(op token.Token) (Opcode, bool) {
	switch op {
	case token.PLUS:
		return ADD, true
	case token.MINUS:
		return SUB, true
	case token.STAR:
		return MUL, true
	case token.SLASH:
		return DIV, true
	case token.PERCENT:
		return MOD, true
	case token.EQL:
		return EQ, true
	case token.NEQ:
		return NE, true
	case token.LT:
		return LT, true
	case token.GT:
		return GT, true
	case token.LE:
		return LE, true
	case token.GE:
		return GE, true
	default:
		return NOP, false
	}
}
