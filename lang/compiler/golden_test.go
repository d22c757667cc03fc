package compiler_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/nanolang/nano/internal/filetest"
	"github.com/nanolang/nano/lang/compiler"
	"github.com/nanolang/nano/lang/optimizer"
	"github.com/nanolang/nano/lang/parser"
)

var updateGolden = flag.Bool("test.update-disasm-golden", false, "update lang/compiler disassembly golden files")

// TestDisassembleGolden compiles every testdata/*.nano source and checks its
// disassembly against the matching testdata/*.nano.want golden file.
func TestDisassembleGolden(t *testing.T) {
	const dir = "testdata"
	for _, fi := range filetest.SourceFiles(t, dir, ".nano") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			src, err := os.ReadFile(filepath.Join(dir, fi.Name()))
			if err != nil {
				t.Fatal(err)
			}
			prog, err := parser.Parse(fi.Name(), src)
			if err != nil {
				t.Fatal(err)
			}
			prog = optimizer.Optimize(prog)
			compiled, err := compiler.Generate(prog)
			if err != nil {
				t.Fatal(err)
			}
			out := compiler.Disassemble(compiled, compiler.DefaultDisasmOptions())
			filetest.DiffOutput(t, fi, out, dir, updateGolden)
		})
	}
}
