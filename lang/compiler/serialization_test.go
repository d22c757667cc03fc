package compiler_test

import (
	"testing"

	"github.com/nanolang/nano/lang/compiler"
	"github.com/stretchr/testify/require"
)

func sampleProgram() *compiler.Program {
	return &compiler.Program{
		Instructions: []compiler.Instruction{
			{Op: compiler.PUSH, Operand: 5.0},
			{Op: compiler.PUSH, Operand: 3.0},
			{Op: compiler.ADD},
			{Op: compiler.STORE, Operand: "result"},
			{Op: compiler.LOAD, Operand: "result"},
			{Op: compiler.PRINT},
			{Op: compiler.HALT},
		},
	}
}

func TestAssembleTextProgram(t *testing.T) {
	src := `
		push 5
		push 3
		add
		store result
		load result
		print
		halt
	`
	p, err := compiler.Assemble([]byte(src), compiler.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, sampleProgram().Instructions, p.Instructions)
}

func TestAssembleWithLabelsAndComments(t *testing.T) {
	src := `
		push true          ; condition
	start:
		jump_if_false end
		push 1
		print
		jump start
	end:
		halt
	`
	p, err := compiler.Assemble([]byte(src), compiler.DefaultOptions())
	require.NoError(t, err)

	var jif, jmp int
	for _, instr := range p.Instructions {
		switch instr.Op {
		case compiler.JUMP_IF_FALSE:
			jif++
			require.IsType(t, int(0), instr.Operand)
		case compiler.JUMP:
			jmp++
			require.IsType(t, int(0), instr.Operand)
		}
	}
	require.Equal(t, 1, jif)
	require.Equal(t, 1, jmp)
}

func TestAssembleUndefinedLabelIsError(t *testing.T) {
	_, err := compiler.Assemble([]byte("jump nowhere\nhalt"), compiler.DefaultOptions())
	require.Error(t, err)
}

func TestAssembleDuplicateLabelIsError(t *testing.T) {
	src := "start:\nhalt\nstart:\nhalt"
	_, err := compiler.Assemble([]byte(src), compiler.DefaultOptions())
	require.Error(t, err)
}

func TestAssembleStrictModeRejectsExtraneousOperand(t *testing.T) {
	_, err := compiler.Assemble([]byte("halt 1"), compiler.DefaultOptions())
	require.Error(t, err)
}

func TestAssembleHexBinOctNumbers(t *testing.T) {
	src := "push 0x10\npush 0b101\npush 0o17\nhalt"
	p, err := compiler.Assemble([]byte(src), compiler.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 16.0, p.Instructions[0].Operand)
	require.Equal(t, 5.0, p.Instructions[1].Operand)
	require.Equal(t, 15.0, p.Instructions[2].Operand)
}

func TestDisassembleThenAssembleRoundtrips(t *testing.T) {
	orig := sampleProgram()
	text := compiler.Disassemble(orig, compiler.DisasmOptions{})
	reassembled, err := compiler.Assemble([]byte(text), compiler.DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, orig.Instructions, reassembled.Instructions)
}

func TestDisassembleWithAddressesAndHex(t *testing.T) {
	out := compiler.Disassemble(sampleProgram(), compiler.DisasmOptions{ShowAddresses: true, ShowHex: true})
	require.Contains(t, out, "0000")
	require.Contains(t, out, "0x")
}

func TestAnalyzeCountsOpcodesAndStack(t *testing.T) {
	stats := compiler.Analyze(sampleProgram())
	require.Equal(t, 7, stats.TotalInstructions)
	require.Equal(t, 2, stats.OpcodeFrequency["push"])
	require.GreaterOrEqual(t, stats.EstimatedMaxStackDepth, 1)
}

func TestBinaryRoundtrip(t *testing.T) {
	orig := sampleProgram()
	b, err := compiler.EncodeBinary(orig)
	require.NoError(t, err)
	decoded, err := compiler.DecodeBinary(b)
	require.NoError(t, err)
	require.Equal(t, orig.Instructions, decoded.Instructions)
}

func TestJSONRoundtrip(t *testing.T) {
	orig := sampleProgram()
	data, err := compiler.EncodeJSON(orig)
	require.NoError(t, err)
	decoded, err := compiler.DecodeJSON(data)
	require.NoError(t, err)
	require.Equal(t, orig.Instructions, decoded.Instructions)
}

func TestJSONAcceptsNumericOpcode(t *testing.T) {
	data := []byte(`[{"opcode": ` + "0" + `}]`)
	p, err := compiler.DecodeJSON(data)
	require.NoError(t, err)
	require.Equal(t, compiler.NOP, p.Instructions[0].Op)
}
