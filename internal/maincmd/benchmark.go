package maincmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/machine"
)

const defaultIterations = 10

func (c *Cmd) Benchmark(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("benchmark: expected exactly one source file")
	}
	iterations := c.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}

	compileStart := time.Now()
	prog, err := c.compileFile(args[0])
	if err != nil {
		return err
	}
	compileElapsed := time.Since(compileStart)

	opts := machine.DefaultOptions()
	opts.Output = io.Discard
	if c.MemorySize > 0 {
		opts.TotalMemory = c.MemorySize
	}
	if c.GCThreshold > 0 {
		opts.GCThreshold = c.GCThreshold
	}

	var total time.Duration
	for i := 0; i < iterations; i++ {
		vm := machine.New(prog, opts)
		start := time.Now()
		if err := vm.Run(); err != nil {
			return fmt.Errorf("benchmark: iteration %d: %w", i, err)
		}
		total += time.Since(start)
	}

	fmt.Fprintf(stdio.Stdout, "compile: %s\niterations: %d\ntotal run: %s\naverage run: %s\n",
		compileElapsed, iterations, total, total/time.Duration(iterations))
	return nil
}
