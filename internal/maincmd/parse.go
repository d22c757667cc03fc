package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/ast"
	"github.com/nanolang/nano/lang/optimizer"
	"github.com/nanolang/nano/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	var failed bool
	for _, path := range args {
		if err := parseFile(c, stdio, path); err != nil {
			fmt.Fprintln(stdio.Stderr, err)
			failed = true
		}
	}
	if failed {
		return fmt.Errorf("parse: one or more files failed")
	}
	return nil
}

func parseFile(c *Cmd, stdio mainer.Stdio, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	prog, err := parser.Parse(path, src)
	if err != nil {
		return err
	}
	if !c.NoOptimize {
		prog = optimizer.Optimize(prog)
	}
	out, err := ast.ToJSON(prog)
	if err != nil {
		return err
	}
	_, err = stdio.Stdout.Write(append(out, '\n'))
	return err
}
