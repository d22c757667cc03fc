// Package maincmd implements the nano command-line tool: the run, compile,
// disassemble, assemble, debug, tokenize, parse, repl and benchmark
// subcommands that drive the lexer/parser/optimizer/compiler/VM pipeline.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
)

const binName = "nano"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> [<path>...]
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> [<path>...]
       %[1]s -h|--help
       %[1]s -v|--version

Compiler, assembler and virtual machine for the %[1]s programming language.

The <command> can be one of:
       run                       Parse, compile and execute the given
                                 source files.
       compile                   Parse and compile a source file, printing
                                 the resulting bytecode.
       disassemble               Read a compiled bytecode file and print
                                 its disassembly.
       assemble                  Read a textual bytecode listing and
                                 print the assembled bytecode.
       debug                     Compile a source file, print the
                                 disassembly of each function to stderr,
                                 then run it.
       tokenize                  Run only the scanner phase and print the
                                 resulting tokens.
       parse                     Run the parser (and, unless
                                 --no-optimize, the AST optimizer) and
                                 print the resulting AST as JSON.
       repl                      Start an interactive read-compile-run
                                 loop.
       benchmark                 Compile and run a source file
                                 --iterations times, reporting timings.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.
       --verbose                 Print VM memory/GC accounting after
                                 'run', and static statistics after
                                 'disassemble'.
       --no-optimize             Skip the AST optimizer pass.
       -o --output <path>        Write 'compile'/'assemble' output to
                                 <path> instead of stdout.
       --format <fmt>            Bytecode format for 'compile'/
                                 'assemble' output: text, json or binary
                                 (default text; 'assemble' writes binary
                                 unless json is given).
       --memory-size <bytes>     VM total memory budget (default 16MiB).
       --gc-threshold <bytes>    VM used-memory level that triggers a GC
                                 pass (default 1MiB).
       --iterations <n>          Iterations for 'benchmark' (default 10).

More information on the %[1]s repository:
       https://github.com/nanolang/nano
`, binName)
)

// Cmd is the flag/argument target parsed by mainer.Parser and dispatched to
// one of the exported command methods below.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	Verbose     bool   `flag:"verbose"`
	NoOptimize  bool   `flag:"no-optimize"`
	Output      string `flag:"o,output"`
	Format      string `flag:"format"`
	MemorySize  int64  `flag:"memory-size"`
	GCThreshold int64  `flag:"gc-threshold"`
	Iterations  int    `flag:"iterations"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]

	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", c.args[0])
	}

	switch cmdName {
	case "run", "tokenize", "parse", "compile", "disassemble", "assemble", "debug", "benchmark":
		if len(c.args[1:]) == 0 {
			return fmt.Errorf("%s: at least one file must be provided", cmdName)
		}
	}

	if c.Format != "" && cmdName != "compile" && cmdName != "assemble" {
		return fmt.Errorf("%s: invalid flag '--format'", cmdName)
	}

	return nil
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success

	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings
// as input and return an error as output.
func buildCmds(v any) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

func (c *Cmd) outputWriter(stdio mainer.Stdio) (w *os.File, closeFn func(), err error) {
	if c.Output == "" || c.Output == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(c.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("creating %s: %w", c.Output, err)
	}
	return f, func() { f.Close() }, nil
}

func (c *Cmd) format() string {
	if c.Format == "" {
		return "text"
	}
	return c.Format
}
