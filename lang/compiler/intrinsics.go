package compiler

// Intrinsics lists the built-in functions callable via CALL (spec.md §6),
// together with their fixed arity. print is deliberately absent: it
// compiles to the dedicated PRINT opcode instead of a CALL (the resolved
// reading of the "print as sole side-effecting call" open question), so it
// never needs an entry here.
var Intrinsics = map[string]int{
	"abs":       1,
	"sqrt":      1,
	"pow":       2,
	"length":    1,
	"substring": 3,
	"concat":    2,
	"toString":  1,
	"toNumber":  1,
	"toBoolean": 1,
}
