package maincmd

import (
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
)

func (c *Cmd) Compile(ctx context.Context, stdio mainer.Stdio, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("compile: expected exactly one source file")
	}
	prog, err := c.compileFile(args[0])
	if err != nil {
		return err
	}

	out, closeFn, err := c.outputWriter(stdio)
	if err != nil {
		return err
	}
	defer closeFn()

	switch c.format() {
	case "text":
		_, err = fmt.Fprint(out, compiler.Disassemble(prog, compiler.DefaultDisasmOptions()))
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
		return fmt.Errorf("compile: unknown --format %q", c.Format)
	}
	return err
}
