package compiler

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DisasmOptions configures the disassembler's rendering (spec.md §4.9).
type DisasmOptions struct {
	ShowAddresses bool // prefix each line with its instruction address
	ShowHex       bool // render the opcode's numeric value alongside its name
	LabelJumps    bool // replace numeric jump operands with L1:/L2: references
	ShowComments  bool // append a one-line per-opcode explanation
}

// DefaultDisasmOptions matches the assembler's own output shape: addresses
// shown, no hex, no label mode, no comments.
func DefaultDisasmOptions() DisasmOptions {
	return DisasmOptions{ShowAddresses: true}
}

// Disassemble renders p as annotated text.
func Disassemble(p *Program, opts DisasmOptions) string {
	var labels map[int]string
	if opts.LabelJumps {
		labels = jumpLabels(p.Instructions)
	}

	var b strings.Builder
	for addr, instr := range p.Instructions {
		if opts.LabelJumps {
			if name, ok := labels[addr]; ok {
				b.WriteString(name)
				b.WriteString(":\n")
			}
		}
		if opts.ShowAddresses {
			fmt.Fprintf(&b, "%04d ", addr)
		}
		if opts.ShowHex {
			fmt.Fprintf(&b, "0x%02x ", byte(instr.Op))
		}
		b.WriteString(strings.ToUpper(instr.Op.String()))
		if instr.Op.HasOperand() {
			b.WriteString(" ")
			if isJumpOpcode(instr.Op) && opts.LabelJumps {
				if target, ok := instr.Operand.(int); ok {
					if name, ok := labels[target]; ok {
						b.WriteString(name)
					} else {
						b.WriteString(strconv.Itoa(target))
					}
				}
			} else {
				b.WriteString(formatOperand(instr.Operand))
			}
		}
		if opts.ShowComments {
			if c := opcodeComment(instr.Op); c != "" {
				b.WriteString("  ; ")
				b.WriteString(c)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatOperand(v any) string {
	switch x := v.(type) {
	case string:
		return strconv.Quote(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		return fmt.Sprintf("%v", x)
	}
}

// jumpLabels assigns L1, L2, ... names to every distinct jump target, in
// ascending address order, for label rendering mode.
func jumpLabels(instrs []Instruction) map[int]string {
	labels := make(map[int]string)
	var order []int
	for _, instr := range instrs {
		if !isJumpOpcode(instr.Op) {
			continue
		}
		target, ok := instr.Operand.(int)
		if !ok {
			continue
		}
		if _, ok := labels[target]; !ok {
			labels[target] = ""
			order = append(order, target)
		}
	}
	sort.Ints(order)
	for i, addr := range order {
		labels[addr] = fmt.Sprintf("L%d", i+1)
	}
	return labels
}

func opcodeComment(op Opcode) string {
	switch op {
	case PUSH:
		return "Push the operand"
	case POP:
		return "Discard the top value"
	case DUP:
		return "Duplicate the top value"
	case ADD:
		return "Pop two values, push sum"
	case SUB:
		return "Pop two values, push difference"
	case MUL:
		return "Pop two values, push product"
	case DIV:
		return "Pop two values, push quotient"
	case MOD:
		return "Pop two values, push remainder"
	case EQ:
		return "Pop two values, push equality"
	case NE:
		return "Pop two values, push inequality"
	case LT:
		return "Pop two values, push less-than"
	case GT:
		return "Pop two values, push greater-than"
	case LE:
		return "Pop two values, push less-or-equal"
	case GE:
		return "Pop two values, push greater-or-equal"
	case JUMP:
		return "Unconditional jump"
	case JUMP_IF_FALSE:
		return "Pop condition, jump if falsy"
	case CALL:
		return "Invoke intrinsic or function"
	case RETURN:
		return "Pop return value, return to caller"
	case LOAD:
		return "Push the named variable's value"
	case STORE:
		return "Pop value, bind to the named variable"
	case PRINT:
		return "Pop value, write its string form"
	case HALT:
		return "Stop execution"
	default:
		return ""
	}
}

// Stats summarizes a program for diagnostic display (spec.md §4.9).
type Stats struct {
	TotalInstructions      int
	OpcodeFrequency        map[string]int
	DistinctJumpTargets    int
	EstimatedMaxStackDepth int
}

// Analyze computes static statistics over p without executing it.
func Analyze(p *Program) Stats {
	freq := make(map[string]int)
	targets := make(map[int]bool)
	depth, maxDepth := 0, 0

	for _, instr := range p.Instructions {
		freq[instr.Op.String()]++
		if isJumpOpcode(instr.Op) {
			if t, ok := instr.Operand.(int); ok {
				targets[t] = true
			}
		}
		depth += opcodeStackDelta(instr, p)
		if depth > maxDepth {
			maxDepth = depth
		}
	}

	return Stats{
		TotalInstructions:      len(p.Instructions),
		OpcodeFrequency:        freq,
		DistinctJumpTargets:    len(targets),
		EstimatedMaxStackDepth: maxDepth,
	}
}

// opcodeStackDelta implements the per-opcode stack-effect table specified
// for the disassembler's stack-depth estimate (spec.md §4.9), which is
// deliberately simpler than compiler.StackEffect: CALL's effect is only
// computed when the callee's arity is statically known.
func opcodeStackDelta(instr Instruction, p *Program) int {
	switch instr.Op {
	case PUSH, LOAD, DUP:
		return +1
	case POP, STORE, PRINT, JUMP_IF_FALSE,
		ADD, SUB, MUL, DIV, MOD, EQ, NE, LT, GT, LE, GE:
		return -1
	case RETURN, JUMP, HALT:
		return 0
	case CALL:
		name, _ := instr.Operand.(string)
		if arity, ok := Intrinsics[name]; ok {
			return 1 - arity
		}
		if p != nil {
			if ref, ok := p.Functions[name]; ok {
				return 1 - ref.Arity
			}
		}
		return 0
	default:
		return 0
	}
}
