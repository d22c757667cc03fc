package compiler

// Instruction is the bytecode model shared by the generator, the VM, the
// assembler and the disassembler: an opcode with an optional operand that
// is always a number, a string or a boolean (spec.md §3).
type Instruction struct {
	Op      Opcode
	Operand any
}

// FunctionRef describes a user-defined function as recorded by the code
// generator: its name, its parameter names in declaration order, the
// address of its first body instruction, and its arity.
//
// LocalNames additionally records every name `let`-declared anywhere in
// the function's body (at any nesting level) — this is how the VM
// resolves spec.md §4.6's STORE/LOAD rule ("if a call frame is active and
// name is a parameter or locally declared, write to the frame; else write
// to globals") without re-running scope analysis at runtime.
type FunctionRef struct {
	Name           string
	ParameterNames []string
	StartAddress   int
	EndAddress     int
	Arity          int
	LocalNames     []string
}

// Program is the output of code generation: a flat instruction stream plus
// the function table the VM consults on CALL.
type Program struct {
	Instructions []Instruction
	Functions    map[string]*FunctionRef
}
