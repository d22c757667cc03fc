package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
)

func (c *Cmd) Assemble(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("assemble: expected exactly one assembly source file")
	}
	src, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	prog, err := compiler.Assemble(src, compiler.DefaultOptions())
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	out, closeFn, err := c.outputWriter(stdio)
	if err != nil {
		return err
	}
	defer closeFn()

	format := c.format()
	if format == "text" {
		format = "binary"
	}
	switch format {
	case "json":
		var data []byte
		data, err = compiler.EncodeJSON(prog)
		if err == nil {
			_, err = out.Write(append(data, '\n'))
		}
	case "binary":
		var data []byte
		data, err = compiler.EncodeBinary(prog)
		if err == nil {
			_, err = out.Write(data)
		}
	default:
		return fmt.Errorf("assemble: unknown --format %q", c.Format)
	}
	return err
}
