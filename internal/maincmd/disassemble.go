package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
)

func (c *Cmd) Disassemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("disassemble: expected exactly one bytecode file")
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var prog *compiler.Program
	if strings.HasSuffix(args[0], ".json") {
		prog, err = compiler.DecodeJSON(data)
	} else {
		prog, err = compiler.DecodeBinary(data)
	}
	if err != nil {
		return fmt.Errorf("disassemble: %w", err)
	}

	fmt.Fprint(stdio.Stdout, compiler.Disassemble(prog, compiler.DefaultDisasmOptions()))

	if c.Verbose {
		stats := compiler.Analyze(prog)
		fmt.Fprintf(stdio.Stderr, "instructions=%d distinct_jump_targets=%d estimated_max_stack=%d\n",
			stats.TotalInstructions, stats.DistinctJumpTargets, stats.EstimatedMaxStackDepth)
	}
	return nil
}
