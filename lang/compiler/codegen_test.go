package compiler_test

import (
	"testing"

	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/parser"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T, src string) *compiler.Program {
	t.Helper()
	prog, err := parser.Parse("t.nano", []byte(src))
	require.NoError(t, err)
	p, err := compiler.Generate(prog)
	require.NoError(t, err)
	return p
}

func lastOp(p *compiler.Program) compiler.Opcode {
	return p.Instructions[len(p.Instructions)-1].Op
}

func TestProgramEndsWithHalt(t *testing.T) {
	p := generate(t, `let x = 1;`)
	require.Equal(t, compiler.HALT, lastOp(p))
}

func TestLiteralEmitsPush(t *testing.T) {
	p := generate(t, `let x = 5;`)
	require.Equal(t, compiler.PUSH, p.Instructions[0].Op)
	require.Equal(t, 5.0, p.Instructions[0].Operand)
	require.Equal(t, compiler.STORE, p.Instructions[1].Op)
	require.Equal(t, "x", p.Instructions[1].Operand)
}

func TestBinaryExpressionEmitsOperatorOpcode(t *testing.T) {
	p := generate(t, `let x = 1 + 2;`)
	var ops []compiler.Opcode
	for _, instr := range p.Instructions {
		ops = append(ops, instr.Op)
	}
	require.Contains(t, ops, compiler.ADD)
}

func TestPrintCompilesToDedicatedOpcode(t *testing.T) {
	p := generate(t, `print(42);`)
	var sawPrint bool
	for _, instr := range p.Instructions {
		if instr.Op == compiler.PRINT {
			sawPrint = true
		}
		require.NotEqual(t, compiler.CALL, instr.Op, "print must not compile through CALL")
	}
	require.True(t, sawPrint)
}

func TestIfWithoutElseGeneratesSingleJump(t *testing.T) {
	p := generate(t, `if (true) { print(1); }`)
	count := 0
	for _, instr := range p.Instructions {
		if instr.Op == compiler.JUMP_IF_FALSE {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestIfWithElseGeneratesTwoJumps(t *testing.T) {
	p := generate(t, `if (true) { print(1); } else { print(2); }`)
	var jif, jmp int
	for _, instr := range p.Instructions {
		switch instr.Op {
		case compiler.JUMP_IF_FALSE:
			jif++
		case compiler.JUMP:
			jmp++
		}
	}
	require.Equal(t, 1, jif)
	require.GreaterOrEqual(t, jmp, 1)
}

func TestWhileLoopJumpsBackToStart(t *testing.T) {
	p := generate(t, `let i = 0; while (i < 3) { i = i + 1; }`)
	sawBackwardJump := false
	for idx, instr := range p.Instructions {
		if instr.Op == compiler.JUMP {
			if target, ok := instr.Operand.(int); ok && target < idx {
				sawBackwardJump = true
			}
		}
	}
	require.True(t, sawBackwardJump)
}

func TestFunctionDeclarationSkipJumpAndReturn(t *testing.T) {
	p := generate(t, `function f(a,b){ return a+b; } print(f(1,2));`)
	ref, ok := p.Functions["f"]
	require.True(t, ok)
	require.Equal(t, 2, ref.Arity)
	require.Equal(t, []string{"a", "b"}, ref.ParameterNames)
	require.Equal(t, compiler.JUMP, p.Instructions[0].Op, "body must be skipped by a leading jump")
	require.Equal(t, compiler.RETURN, p.Instructions[ref.StartAddress+3].Op)
}

func TestFunctionWithoutExplicitReturnGetsSynthesizedOne(t *testing.T) {
	p := generate(t, `function f(){ let x = 1; } f();`)
	ref := p.Functions["f"]
	require.Equal(t, compiler.PUSH, p.Instructions[ref.StartAddress+2].Op)
	require.Equal(t, compiler.RETURN, p.Instructions[ref.StartAddress+3].Op)
}

func TestCallExpressionEmitsCallWithCalleeName(t *testing.T) {
	p := generate(t, `function f(a){ return a; } let x = f(9);`)
	found := false
	for _, instr := range p.Instructions {
		if instr.Op == compiler.CALL && instr.Operand == "f" {
			found = true
		}
	}
	require.True(t, found)
}

func TestIntrinsicCallEmitsCall(t *testing.T) {
	p := generate(t, `let x = sqrt(9);`)
	found := false
	for _, instr := range p.Instructions {
		if instr.Op == compiler.CALL && instr.Operand == "sqrt" {
			found = true
		}
	}
	require.True(t, found)
}

func TestUndeclaredVariableIsSemanticError(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`print(y);`))
	require.NoError(t, err)
	_, genErr := compiler.Generate(prog)
	require.Error(t, genErr)
}

func TestCallToUndeclaredFunctionIsSemanticError(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`let x = nope(1);`))
	require.NoError(t, err)
	_, genErr := compiler.Generate(prog)
	require.Error(t, genErr)
}

func TestForwardCallToLaterFunctionResolves(t *testing.T) {
	p := generate(t, `function a(){ return b(); } function b(){ return 1; } print(a());`)
	require.NotNil(t, p.Functions["a"])
	require.NotNil(t, p.Functions["b"])
}

func TestRecursiveCallResolves(t *testing.T) {
	p := generate(t, `function fact(n){ if (n <= 1) { return 1; } return n * fact(n - 1); } print(fact(5));`)
	require.NotNil(t, p.Functions["fact"])
	var found bool
	for _, instr := range p.Instructions {
		if instr.Op == compiler.CALL && instr.Operand == "fact" {
			found = true
		}
	}
	require.True(t, found)
}

func TestPrintUsedAsExpressionIsSemanticError(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`let x = print(5);`))
	require.NoError(t, err)
	_, genErr := compiler.Generate(prog)
	require.Error(t, genErr)
}

func TestPrintAsCallArgumentIsSemanticError(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`function f(a){ return a; } print(f(print(5)));`))
	require.NoError(t, err)
	_, genErr := compiler.Generate(prog)
	require.Error(t, genErr)
}

func TestFunctionRefTracksEndAddress(t *testing.T) {
	p := generate(t, `function f(a,b){ return a+b; } print(f(1,2));`)
	ref := p.Functions["f"]
	require.Greater(t, ref.EndAddress, ref.StartAddress)
	require.LessOrEqual(t, ref.EndAddress, len(p.Instructions))
}

func TestAllJumpTargetsAreValidAddresses(t *testing.T) {
	p := generate(t, `function fact(n){ if (n <= 1) { return 1; } return n * fact(n - 1); }
		let i = 0; while (i < 10) { i = i + 1; } print(fact(i));`)
	for _, instr := range p.Instructions {
		if instr.Op == compiler.JUMP || instr.Op == compiler.JUMP_IF_FALSE {
			addr, ok := instr.Operand.(int)
			require.True(t, ok, "jump operand must be resolved to an int address")
			require.GreaterOrEqual(t, addr, 0)
			require.LessOrEqual(t, addr, len(p.Instructions))
		}
	}
}
