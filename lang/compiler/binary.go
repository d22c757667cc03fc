package compiler

import (
	"encoding/binary"
	"fmt"
)

// Binary tags for the operand that follows an opcode byte (spec.md §4.7).
const (
	tagNone    = 0
	tagNumber  = 1
	tagString  = 2
	tagBoolean = 3
)

// EncodeBinary serializes p to the fixed byte format: one opcode byte,
// one tag byte, then the tag-specific payload.
func EncodeBinary(p *Program) ([]byte, error) {
	var out []byte
	for _, instr := range p.Instructions {
		out = append(out, byte(instr.Op))
		switch v := instr.Operand.(type) {
		case nil:
			out = append(out, tagNone)
		case float64:
			out = append(out, tagNumber)
			out = binary.BigEndian.AppendUint32(out, uint32(int32(v)))
		case int:
			out = append(out, tagNumber)
			out = binary.BigEndian.AppendUint32(out, uint32(int32(v)))
		case string:
			if len(v) > 255 {
				return nil, fmt.Errorf("operand string %q exceeds 255 bytes", v)
			}
			out = append(out, tagString, byte(len(v)))
			out = append(out, v...)
		case bool:
			out = append(out, tagBoolean)
			if v {
				out = append(out, 1)
			} else {
				out = append(out, 0)
			}
		default:
			return nil, fmt.Errorf("unsupported operand type %T", v)
		}
	}
	return out, nil
}

// DecodeBinary parses the fixed byte format produced by EncodeBinary back
// into a Program. Jump operands decode as int (instruction addresses);
// they are not validated here, and the VM only reports an out-of-range
// program counter when a jump actually lands outside the program.
func DecodeBinary(b []byte) (*Program, error) {
	var instrs []Instruction
	i := 0
	for i < len(b) {
		op := Opcode(b[i])
		i++
		if i >= len(b) {
			return nil, fmt.Errorf("truncated instruction at byte %d: missing tag", i-1)
		}
		tag := b[i]
		i++

		var operand any
		switch tag {
		case tagNone:
			// no payload
		case tagNumber:
			if i+4 > len(b) {
				return nil, fmt.Errorf("truncated number operand at byte %d", i)
			}
			n := int32(binary.BigEndian.Uint32(b[i : i+4]))
			i += 4
			if isJumpOpcode(op) {
				operand = int(n)
			} else {
				operand = float64(n)
			}
		case tagString:
			if i >= len(b) {
				return nil, fmt.Errorf("truncated string operand at byte %d: missing length", i)
			}
			n := int(b[i])
			i++
			if i+n > len(b) {
				return nil, fmt.Errorf("truncated string operand at byte %d", i)
			}
			operand = string(b[i : i+n])
			i += n
		case tagBoolean:
			if i >= len(b) {
				return nil, fmt.Errorf("truncated boolean operand at byte %d", i)
			}
			operand = b[i] != 0
			i++
		default:
			return nil, fmt.Errorf("unknown operand tag %d at byte %d", tag, i-1)
		}
		instrs = append(instrs, Instruction{Op: op, Operand: operand})
	}
	return &Program{Instructions: instrs}, nil
}
