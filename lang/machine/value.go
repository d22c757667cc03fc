// Package machine implements the stack-based virtual machine that executes
// compiled bytecode (spec.md §4.6), along with the runtime value model it
// operates on.
package machine

import (
	"fmt"
	"strconv"
)

// Value is the interface implemented by every runtime value. The variant
// set is closed: Number, String, Boolean, Function, Undefined — spec.md §3
// permits no others.
type Value interface {
	String() string
	Type() string
	Truthy() bool
}

// An Ordered value supports <, >, <=, >=. Only Number and String implement
// it; comparing across types or against a non-Ordered value is a
// type_mismatch error at the call site.
type Ordered interface {
	Value
	Cmp(y Value) (int, error)
}

type Number float64

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (Number) Type() string     { return "number" }
func (n Number) Truthy() bool   { return n != 0 }

func (n Number) Cmp(y Value) (int, error) {
	o, ok := y.(Number)
	if !ok {
		return 0, fmt.Errorf("type_mismatch: cannot compare number and %s", y.Type())
	}
	switch {
	case n < o:
		return -1, nil
	case n > o:
		return 1, nil
	default:
		return 0, nil
	}
}

type String string

func (s String) String() string { return string(s) }
func (String) Type() string     { return "string" }
func (s String) Truthy() bool   { return s != "" }

func (s String) Cmp(y Value) (int, error) {
	o, ok := y.(String)
	if !ok {
		return 0, fmt.Errorf("type_mismatch: cannot compare string and %s", y.Type())
	}
	switch {
	case s < o:
		return -1, nil
	case s > o:
		return 1, nil
	default:
		return 0, nil
	}
}

type Boolean bool

func (b Boolean) String() string { return strconv.FormatBool(bool(b)) }
func (Boolean) Type() string     { return "boolean" }
func (b Boolean) Truthy() bool   { return bool(b) }

// Function is the runtime value produced by a FunctionDeclaration: a
// reference to its compiled body, never itself executable without a
// VM to run it on.
type Function struct {
	Name           string
	ParameterNames []string
	StartAddress   int
}

func (f *Function) String() string {
	return fmt.Sprintf("function %s(%s)", f.Name, joinParams(f.ParameterNames))
}
func (*Function) Type() string { return "function" }
func (*Function) Truthy() bool { return true }

func joinParams(names []string) string {
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}

// Undefined is the sole value of type undefined.
type undefinedType struct{}

func (undefinedType) String() string { return "undefined" }
func (undefinedType) Type() string   { return "undefined" }
func (undefinedType) Truthy() bool   { return false }

// Undefined is the singleton undefined value. The code generator
// substitutes a literal 0 for a declaration or return without a value, so
// Undefined only comes from VM bookkeeping: a call frame's `let`-declared
// locals hold it until their declaration runs, and a PUSH whose operand is
// not a number, string or boolean pushes it.
var Undefined Value = undefinedType{}

// Equals implements spec.md §3's strict equality: different tags are
// never equal; same tag compares underlying Go equality, except Function,
// which compares by identity.
func Equals(x, y Value) bool {
	switch a := x.(type) {
	case Number:
		b, ok := y.(Number)
		return ok && a == b
	case String:
		b, ok := y.(String)
		return ok && a == b
	case Boolean:
		b, ok := y.(Boolean)
		return ok && a == b
	case *Function:
		b, ok := y.(*Function)
		return ok && a == b
	case undefinedType:
		_, ok := y.(undefinedType)
		return ok
	default:
		return false
	}
}
