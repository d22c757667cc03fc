package machine_test

import (
	"bytes"
	"testing"

	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/machine"
	"github.com/nanolang/nano/lang/optimizer"
	"github.com/nanolang/nano/lang/parser"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse("t.nano", []byte(src))
	require.NoError(t, err)
	prog = optimizer.Optimize(prog)
	compiled, err := compiler.Generate(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	opts := machine.DefaultOptions()
	opts.Output = &out
	vm := machine.New(compiled, opts)
	runErr := vm.Run()
	return out.String(), runErr
}

func TestArithmeticAndPrint(t *testing.T) {
	out, err := run(t, `print(3 + 5);`)
	require.NoError(t, err)
	require.Equal(t, "8\n", out)
}

func TestFunctionCall(t *testing.T) {
	out, err := run(t, `
		function add(a, b) {
			return a + b;
		}
		print(add(10, 20));
	`)
	require.NoError(t, err)
	require.Equal(t, "30\n", out)
}

func TestIfElse(t *testing.T) {
	out, err := run(t, `
		let x = 5;
		if (x > 0) {
			print("positive");
		} else {
			print("non-positive");
		}
	`)
	require.NoError(t, err)
	require.Equal(t, "positive\n", out)
}

func TestWhileLoop(t *testing.T) {
	out, err := run(t, `
		let i = 0;
		let sum = 0;
		while (i < 4) {
			sum = sum + i;
			i = i + 1;
		}
		print(sum);
	`)
	require.NoError(t, err)
	require.Equal(t, "6\n", out)
}

func TestRecursiveFib(t *testing.T) {
	out, err := run(t, `
		function fib(n) {
			if (n < 2) {
				return n;
			}
			return fib(n - 1) + fib(n - 2);
		}
		print(fib(10));
	`)
	require.NoError(t, err)
	require.Equal(t, "55\n", out)
}

func TestDivisionByZeroFailsKeepingPriorOutput(t *testing.T) {
	out, err := run(t, `
		print(1);
		print(1 / 0);
	`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.DivisionByZero, rerr.Kind)
	require.Equal(t, "1\n", out)
}

// TestUndefinedVariable exercises the VM's own undefined_variable check
// directly: the code generator statically rejects an undeclared identifier
// before this path is ever reached, so a hand-built program (as an
// assembler or a foreign tool might produce) is the only way to reach it.
func TestUndefinedVariable(t *testing.T) {
	prog := &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.LOAD, Operand: "y"},
			{Op: compiler.PRINT},
			{Op: compiler.HALT},
		},
		Functions: map[string]*compiler.FunctionRef{},
	}
	vm := machine.New(prog, machine.DefaultOptions())
	err := vm.Run()
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.UndefinedVariable, rerr.Kind)
}

func TestTypeMismatchStringVersusNumberComparison(t *testing.T) {
	_, err := run(t, `print("x" < 3);`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.TypeMismatch, rerr.Kind)
}

func TestStackOverflowFromUnboundedRecursion(t *testing.T) {
	_, err := run(t, `
		function f() {
			return f();
		}
		f();
	`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.StackOverflow, rerr.Kind)
}

func TestStringConcatenationViaAdd(t *testing.T) {
	out, err := run(t, `print("foo" + "bar");`)
	require.NoError(t, err)
	require.Equal(t, "foobar\n", out)
}

func TestIntrinsics(t *testing.T) {
	out, err := run(t, `
		print(abs(-4));
		print(sqrt(9));
		print(pow(2, 5));
		print(length("hello"));
		print(substring("hello", 1, 3));
		print(concat("foo", "bar"));
		print(toString(42));
		print(toNumber("3.5"));
		print(toBoolean(0));
	`)
	require.NoError(t, err)
	require.Equal(t, "4\n3\n32\n5\nel\nfoobar\n42\n3.5\nfalse\n", out)
}

func TestToNumberOnNonNumericStringIsTypeMismatch(t *testing.T) {
	_, err := run(t, `print(toNumber("abc"));`)
	require.Error(t, err)
	var rerr *machine.RuntimeError
	require.ErrorAs(t, err, &rerr)
	require.Equal(t, machine.TypeMismatch, rerr.Kind)
}

func TestLogicalAndShortCircuits(t *testing.T) {
	out, err := run(t, `
		function sideEffect() {
			print("called");
			return true;
		}
		print(false && sideEffect());
		print(true && 5);
	`)
	require.NoError(t, err)
	require.Equal(t, "false\n5\n", out)
}

func TestLogicalOrShortCircuits(t *testing.T) {
	out, err := run(t, `
		function sideEffect() {
			print("called");
			return true;
		}
		print(true || sideEffect());
		print(false || 7);
	`)
	require.NoError(t, err)
	require.Equal(t, "true\n7\n", out)
}

func TestGlobalAndLocalShareNameIndependently(t *testing.T) {
	out, err := run(t, `
		let x = 1;
		function f() {
			let x = 2;
			return x;
		}
		print(f());
		print(x);
	`)
	require.NoError(t, err)
	require.Equal(t, "2\n1\n", out)
}

func TestFunctionNamePrintsWithoutCalling(t *testing.T) {
	out, err := run(t, `
		function add(a, b) {
			return a + b;
		}
		print(add);
	`)
	require.NoError(t, err)
	require.Equal(t, "function add(a, b)\n", out)
}

func TestFunctionNameIsStableAcrossLoads(t *testing.T) {
	out, err := run(t, `
		function add(a, b) {
			return a + b;
		}
		print(add == add);
	`)
	require.NoError(t, err)
	require.Equal(t, "true\n", out)
}

func TestResetClearsStateButKeepsProgram(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`
		let x = 1;
		print(x);
	`))
	require.NoError(t, err)
	prog = optimizer.Optimize(prog)
	compiled, err := compiler.Generate(prog)
	require.NoError(t, err)

	var out bytes.Buffer
	opts := machine.DefaultOptions()
	opts.Output = &out
	vm := machine.New(compiled, opts)
	require.NoError(t, vm.Run())
	require.Equal(t, "1\n", out.String())

	vm.Reset()
	out.Reset()
	require.NoError(t, vm.Run())
	require.Equal(t, "1\n", out.String())
	require.Equal(t, int64(0), vm.GCRuns())
}

func TestMemoryAccountingInvariants(t *testing.T) {
	prog, err := parser.Parse("t.nano", []byte(`print(1 + 2);`))
	require.NoError(t, err)
	prog = optimizer.Optimize(prog)
	compiled, err := compiler.Generate(prog)
	require.NoError(t, err)

	vm := machine.New(compiled, machine.DefaultOptions())
	require.Greater(t, vm.TotalMemory(), int64(0))
	require.NoError(t, vm.Run())
	require.LessOrEqual(t, vm.UsedMemory()+vm.FreeMemory(), vm.TotalMemory())
	require.GreaterOrEqual(t, vm.GCRuns(), int64(0))
}
