package maincmd

import (
	"bufio"
	"bytes"
	"context"
	"fmt"

	"github.com/mna/mainer"
	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/machine"
	"github.com/nanolang/nano/lang/optimizer"
	"github.com/nanolang/nano/lang/parser"
)

// Repl runs an interactive loop: each accepted line is appended to a
// growing source buffer that is re-parsed, re-compiled and re-run from
// scratch on every line, since the compiler has no notion of incremental
// compilation. A line that fails to parse, compile or run is dropped from
// the buffer and reported, so one bad line doesn't poison the session.
func (c *Cmd) Repl(ctx context.Context, stdio mainer.Stdio, args []string) error {
	fmt.Fprintf(stdio.Stdout, "%s repl — one statement per line, ctrl-d to exit\n", binName)

	var buf bytes.Buffer
	printed := 0
	scanner := bufio.NewScanner(stdio.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		candidate := buf.String() + line + "\n"

		out, err := c.evalSource(candidate)
		if err != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", err)
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
		if len(out) > printed {
			fmt.Fprint(stdio.Stdout, out[printed:])
		}
		printed = len(out)
	}
	return scanner.Err()
}

func (c *Cmd) evalSource(src string) (string, error) {
	prog, err := parser.Parse("<repl>", []byte(src))
	if err != nil {
		return "", err
	}
	if !c.NoOptimize {
		prog = optimizer.Optimize(prog)
	}
	compiled, err := compiler.Generate(prog)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	opts := machine.DefaultOptions()
	opts.Output = &out
	vm := machine.New(compiled, opts)
	if err := vm.Run(); err != nil {
		return "", err
	}
	return out.String(), nil
}
