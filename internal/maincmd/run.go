package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/machine"
	"github.com/nanolang/nano/lang/optimizer"
	"github.com/nanolang/nano/lang/parser"
)

func (c *Cmd) Run(ctx context.Context, stdio mainer.Stdio, args []string) error {
	for _, path := range args {
		if err := c.runFile(stdio, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			return err
		}
	}
	return nil
}

func (c *Cmd) runFile(stdio mainer.Stdio, path string) error {
	prog, err := c.compileFile(path)
	if err != nil {
		return err
	}

	opts := machine.DefaultOptions()
	opts.Output = stdio.Stdout
	if c.MemorySize > 0 {
		opts.TotalMemory = c.MemorySize
	}
	if c.GCThreshold > 0 {
		opts.GCThreshold = c.GCThreshold
	}
	vm := machine.New(prog, opts)
	runErr := vm.Run()

	if c.Verbose {
		fmt.Fprintf(stdio.Stderr, "memory: used=%d free=%d total=%d gc_runs=%d gc_time=%s\n",
			vm.UsedMemory(), vm.FreeMemory(), vm.TotalMemory(), vm.GCRuns(), vm.GCTime())
	}
	return runErr
}

// compileFile runs the parser, the optimizer (unless disabled) and the
// code generator over the source file at path.
func (c *Cmd) compileFile(path string) (*compiler.Program, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	prog, err := parser.Parse(path, src)
	if err != nil {
		return nil, err
	}
	if !c.NoOptimize {
		prog = optimizer.Optimize(prog)
	}
	return compiler.Generate(prog)
}
