package maincmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/machine"
)

// Debug compiles a single source file, prints the disassembly of each
// declared function, then runs the program — a diagnostic middle ground
// between 'compile' (no execution) and 'run' (no disassembly).
func (c *Cmd) Debug(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("debug: expected exactly one source file")
	}
	prog, err := c.compileFile(args[0])
	if err != nil {
		return err
	}

	names := make([]string, 0, len(prog.Functions))
	for name := range prog.Functions {
		names = append(names, name)
	}
	sort.Strings(names)

	opts := compiler.DefaultDisasmOptions()
	for _, name := range names {
		ref := prog.Functions[name]
		fmt.Fprintf(stdio.Stderr, "-- function %s(%s) --\n", ref.Name, joinNames(ref.ParameterNames))
		body := &compiler.Program{
			Instructions: prog.Instructions[ref.StartAddress:ref.EndAddress],
			Functions:    prog.Functions,
		}
		fmt.Fprint(stdio.Stderr, compiler.Disassemble(body, opts))
	}

	vmOpts := machine.DefaultOptions()
	vmOpts.Output = stdio.Stdout
	if c.MemorySize > 0 {
		vmOpts.TotalMemory = c.MemorySize
	}
	if c.GCThreshold > 0 {
		vmOpts.GCThreshold = c.GCThreshold
	}
	vm := machine.New(prog, vmOpts)
	return vm.Run()
}

func joinNames(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
