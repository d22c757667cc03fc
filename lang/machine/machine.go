package machine

import (
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nanolang/nano/lang/compiler"
)

const (
	defaultMaxCallDepth = 1024
	defaultTotalMemory  = 16 * 1024 * 1024
	defaultGCThreshold  = 1 * 1024 * 1024
)

// approximate per-value byte costs for the GC accounting model; the model
// is implementation-defined (spec.md §4.6) so these are nominal, not an
// attempt at exact runtime footprint.
const (
	costNumber    = 8
	costBoolean   = 1
	costFunction  = 16
	costUndefined = 0
)

// Options configures a VM instance.
type Options struct {
	Output       io.Writer // host sink for PRINT; defaults to os.Stdout
	TotalMemory  int64     // total heap budget in bytes; must be > 0
	GCThreshold  int64     // usedMemory level that triggers a GC pass
	MaxCallDepth int       // call stack depth before stack_overflow
}

// DefaultOptions returns sensible defaults matching the CLI's own defaults.
func DefaultOptions() Options {
	return Options{
		Output:       os.Stdout,
		TotalMemory:  defaultTotalMemory,
		GCThreshold:  defaultGCThreshold,
		MaxCallDepth: defaultMaxCallDepth,
	}
}

// VM is a stack-based interpreter for a compiled Program. It is not a
// singleton: callers construct one per program and must Reset before
// reusing an instance (spec.md §9 "Global mutable state").
type VM struct {
	program *compiler.Program

	stack   []Value
	frames  []*CallFrame
	globals map[string]Value
	pc      int

	// functionValues caches one *Function per declared function so that an
	// identifier naming a function (rather than calling it) resolves to a
	// stable Value — spec.md §3's function(FunctionRef) tag, toString
	// "function NAME(p1, p2)". Built once in New from program.Functions;
	// Equals compares *Function values by pointer identity, so the same
	// name must always yield the same pointer.
	functionValues map[string]*Function

	output       io.Writer
	maxCallDepth int

	totalMemory int64
	gcThreshold int64
	usedMemory  int64
	gcRuns      int64
	gcTime      time.Duration
}

// New constructs a VM ready to run program.
func New(program *compiler.Program, opts Options) *VM {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.TotalMemory <= 0 {
		opts.TotalMemory = defaultTotalMemory
	}
	if opts.GCThreshold <= 0 {
		opts.GCThreshold = defaultGCThreshold
	}
	if opts.MaxCallDepth <= 0 {
		opts.MaxCallDepth = defaultMaxCallDepth
	}
	vm := &VM{
		program:      program,
		globals:      make(map[string]Value),
		output:       opts.Output,
		maxCallDepth: opts.MaxCallDepth,
		totalMemory:  opts.TotalMemory,
		gcThreshold:  opts.GCThreshold,
	}
	vm.functionValues = make(map[string]*Function, len(program.Functions))
	for name, ref := range program.Functions {
		vm.functionValues[name] = &Function{
			Name:           ref.Name,
			ParameterNames: ref.ParameterNames,
			StartAddress:   ref.StartAddress,
		}
	}
	return vm
}

// Reset clears the operand stack, call frames and globals and rewinds pc
// to 0; the loaded instructions are untouched (spec.md §4.6 invariant d).
func (vm *VM) Reset() {
	vm.stack = vm.stack[:0]
	vm.frames = vm.frames[:0]
	vm.globals = make(map[string]Value)
	vm.pc = 0
	vm.usedMemory = 0
}

// TotalMemory, UsedMemory, FreeMemory, GCRuns and GCTime report the VM's
// memory accounting counters (spec.md §4.6).
func (vm *VM) TotalMemory() int64    { return vm.totalMemory }
func (vm *VM) UsedMemory() int64     { return vm.usedMemory }
func (vm *VM) FreeMemory() int64     { return vm.totalMemory - vm.usedMemory }
func (vm *VM) GCRuns() int64         { return vm.gcRuns }
func (vm *VM) GCTime() time.Duration { return vm.gcTime }

// Run executes the loaded program from the current pc until HALT or a
// runtime error. HALT stops the dispatch loop (spec.md §4.6 "Dispatch").
func (vm *VM) Run() error {
	instrs := vm.program.Instructions
	for {
		if vm.pc < 0 || vm.pc >= len(instrs) {
			return vm.fail(TypeMismatch, "program counter out of range")
		}
		instr := instrs[vm.pc]

		switch instr.Op {
		case compiler.HALT:
			return nil

		case compiler.PUSH:
			vm.push(operandToValue(instr.Operand))
			vm.pc++

		case compiler.POP:
			if _, err := vm.pop(); err != nil {
				return err
			}
			vm.pc++

		case compiler.DUP:
			v, err := vm.peek()
			if err != nil {
				return err
			}
			vm.push(v)
			vm.pc++

		case compiler.ADD, compiler.SUB, compiler.MUL, compiler.DIV, compiler.MOD:
			if err := vm.arith(instr.Op); err != nil {
				return err
			}
			vm.pc++

		case compiler.EQ, compiler.NE, compiler.LT, compiler.GT, compiler.LE, compiler.GE:
			if err := vm.compare(instr.Op); err != nil {
				return err
			}
			vm.pc++

		case compiler.JUMP:
			addr, err := operandAddr(instr.Operand)
			if err != nil {
				return vm.fail(TypeMismatch, err.Error())
			}
			vm.pc = addr

		case compiler.JUMP_IF_FALSE:
			cond, err := vm.pop()
			if err != nil {
				return err
			}
			addr, err := operandAddr(instr.Operand)
			if err != nil {
				return vm.fail(TypeMismatch, err.Error())
			}
			if !cond.Truthy() {
				vm.pc = addr
			} else {
				vm.pc++
			}

		case compiler.LOAD:
			name, _ := instr.Operand.(string)
			v, err := vm.load(name)
			if err != nil {
				return err
			}
			vm.push(v)
			vm.pc++

		case compiler.STORE:
			name, _ := instr.Operand.(string)
			v, err := vm.pop()
			if err != nil {
				return err
			}
			vm.store(name, v)
			vm.pc++

		case compiler.CALL:
			name, _ := instr.Operand.(string)
			if err := vm.call(name); err != nil {
				return err
			}

		case compiler.RETURN:
			if err := vm.ret(); err != nil {
				return err
			}

		case compiler.PRINT:
			v, err := vm.pop()
			if err != nil {
				return err
			}
			fmt.Fprintln(vm.output, v.String())
			vm.pc++

		default:
			return vm.fail(TypeMismatch, fmt.Sprintf("illegal opcode %s", instr.Op))
		}

		vm.maybeGC()
	}
}

func operandToValue(operand any) Value {
	switch v := operand.(type) {
	case float64:
		return Number(v)
	case string:
		return String(v)
	case bool:
		return Boolean(v)
	default:
		return Undefined
	}
}

func operandAddr(operand any) (int, error) {
	addr, ok := operand.(int)
	if !ok {
		return 0, fmt.Errorf("jump operand is not a resolved address: %v", operand)
	}
	return addr, nil
}

func (vm *VM) push(v Value) {
	vm.stack = append(vm.stack, v)
	vm.usedMemory += valueCost(v)
}

func (vm *VM) pop() (Value, error) {
	if len(vm.stack) == 0 {
		return nil, vm.fail(TypeMismatch, "operand stack underflow")
	}
	v := vm.stack[len(vm.stack)-1]
	vm.stack = vm.stack[:len(vm.stack)-1]
	return v, nil
}

func (vm *VM) peek() (Value, error) {
	if len(vm.stack) == 0 {
		return nil, vm.fail(TypeMismatch, "operand stack underflow")
	}
	return vm.stack[len(vm.stack)-1], nil
}

func valueCost(v Value) int64 {
	switch v.(type) {
	case Number:
		return costNumber
	case String:
		return int64(len(v.String()))
	case Boolean:
		return costBoolean
	case *Function:
		return costFunction
	default:
		return costUndefined
	}
}

func (vm *VM) maybeGC() {
	if vm.usedMemory < vm.gcThreshold {
		return
	}
	start := time.Now()
	// The VM never holds a Value beyond what the stack, frames and globals
	// still reference, so a "collection" is just recomputing the live set;
	// there is nothing unreachable to reclaim by construction.
	var live int64
	for _, v := range vm.stack {
		live += valueCost(v)
	}
	for _, fr := range vm.frames {
		for _, v := range fr.Locals {
			live += valueCost(v)
		}
	}
	for _, v := range vm.globals {
		live += valueCost(v)
	}
	vm.usedMemory = live
	vm.gcRuns++
	vm.gcTime += time.Since(start)
}

func (vm *VM) load(name string) (Value, error) {
	if len(vm.frames) > 0 {
		fr := vm.frames[len(vm.frames)-1]
		if v, ok := fr.Locals[name]; ok {
			return v, nil
		}
	}
	if v, ok := vm.globals[name]; ok {
		return v, nil
	}
	if fn, ok := vm.functionValues[name]; ok {
		return fn, nil
	}
	return nil, vm.fail(UndefinedVariable, fmt.Sprintf("undefined variable %q", name))
}

func (vm *VM) store(name string, v Value) {
	if len(vm.frames) > 0 {
		fr := vm.frames[len(vm.frames)-1]
		if _, ok := fr.Locals[name]; ok {
			fr.Locals[name] = v
			return
		}
	}
	vm.globals[name] = v
}

func (vm *VM) callStackNames() []string {
	names := make([]string, 0, len(vm.frames)+1)
	names = append(names, "<top-level>")
	for _, fr := range vm.frames {
		names = append(names, fr.FunctionName)
	}
	return names
}

func (vm *VM) fail(kind ErrorKind, msg string) error {
	return &RuntimeError{Kind: kind, Message: msg, CallStack: vm.callStackNames()}
}

func (vm *VM) popArgs(n int) ([]Value, error) {
	if len(vm.stack) < n {
		return nil, vm.fail(TypeMismatch, "operand stack underflow")
	}
	args := make([]Value, n)
	copy(args, vm.stack[len(vm.stack)-n:])
	vm.stack = vm.stack[:len(vm.stack)-n]
	return args, nil
}

func (vm *VM) call(name string) error {
	if arity, ok := compiler.Intrinsics[name]; ok {
		args, err := vm.popArgs(arity)
		if err != nil {
			return err
		}
		result, err := vm.callIntrinsic(name, args)
		if err != nil {
			return err
		}
		vm.push(result)
		vm.pc++
		return nil
	}

	ref, ok := vm.program.Functions[name]
	if !ok {
		return vm.fail(UndefinedVariable, fmt.Sprintf("call to undefined function %q", name))
	}
	args, err := vm.popArgs(ref.Arity)
	if err != nil {
		return err
	}
	if len(vm.frames) >= vm.maxCallDepth {
		return vm.fail(StackOverflow, fmt.Sprintf("call depth exceeded %d", vm.maxCallDepth))
	}

	locals := make(map[string]Value, len(ref.ParameterNames)+len(ref.LocalNames))
	for _, n := range ref.LocalNames {
		locals[n] = Undefined
	}
	for i, p := range ref.ParameterNames {
		locals[p] = args[i]
	}
	vm.frames = append(vm.frames, &CallFrame{
		ReturnAddress: vm.pc + 1,
		Locals:        locals,
		FunctionName:  name,
	})
	vm.pc = ref.StartAddress
	return nil
}

func (vm *VM) ret() error {
	v, err := vm.pop()
	if err != nil {
		return err
	}
	if len(vm.frames) == 0 {
		return vm.fail(TypeMismatch, "return outside any call frame")
	}
	fr := vm.frames[len(vm.frames)-1]
	vm.frames = vm.frames[:len(vm.frames)-1]
	vm.push(v)
	vm.pc = fr.ReturnAddress
	return nil
}

func (vm *VM) arith(op compiler.Opcode) error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}

	if op == compiler.ADD {
		if ls, ok := l.(String); ok {
			if rs, ok := r.(String); ok {
				vm.push(ls + rs)
				return nil
			}
		}
	}

	ln, lok := l.(Number)
	rn, rok := r.(Number)
	if !lok || !rok {
		return vm.fail(TypeMismatch, fmt.Sprintf("%s requires two numbers, got %s and %s", op, l.Type(), r.Type()))
	}

	switch op {
	case compiler.ADD:
		vm.push(ln + rn)
	case compiler.SUB:
		vm.push(ln - rn)
	case compiler.MUL:
		vm.push(ln * rn)
	case compiler.DIV:
		if rn == 0 {
			return vm.fail(DivisionByZero, "division by zero")
		}
		vm.push(ln / rn)
	case compiler.MOD:
		if rn == 0 {
			return vm.fail(DivisionByZero, "division by zero")
		}
		vm.push(Number(math.Mod(float64(ln), float64(rn))))
	}
	return nil
}

func (vm *VM) compare(op compiler.Opcode) error {
	r, err := vm.pop()
	if err != nil {
		return err
	}
	l, err := vm.pop()
	if err != nil {
		return err
	}

	if op == compiler.EQ {
		vm.push(Boolean(Equals(l, r)))
		return nil
	}
	if op == compiler.NE {
		vm.push(Boolean(!Equals(l, r)))
		return nil
	}

	lo, ok := l.(Ordered)
	if !ok {
		return vm.fail(TypeMismatch, fmt.Sprintf("%s not ordered", l.Type()))
	}
	cmp, err := lo.Cmp(r)
	if err != nil {
		return vm.fail(TypeMismatch, err.Error())
	}
	switch op {
	case compiler.LT:
		vm.push(Boolean(cmp < 0))
	case compiler.GT:
		vm.push(Boolean(cmp > 0))
	case compiler.LE:
		vm.push(Boolean(cmp <= 0))
	case compiler.GE:
		vm.push(Boolean(cmp >= 0))
	}
	return nil
}

func (vm *VM) callIntrinsic(name string, args []Value) (Value, error) {
	switch name {
	case "abs":
		n, err := vm.asNumber(args[0])
		if err != nil {
			return nil, err
		}
		return Number(math.Abs(float64(n))), nil

	case "sqrt":
		n, err := vm.asNumber(args[0])
		if err != nil {
			return nil, err
		}
		return Number(math.Sqrt(float64(n))), nil

	case "pow":
		x, err := vm.asNumber(args[0])
		if err != nil {
			return nil, err
		}
		y, err := vm.asNumber(args[1])
		if err != nil {
			return nil, err
		}
		return Number(math.Pow(float64(x), float64(y))), nil

	case "length":
		s, err := vm.asString(args[0])
		if err != nil {
			return nil, err
		}
		return Number(len([]rune(string(s)))), nil

	case "substring":
		s, err := vm.asString(args[0])
		if err != nil {
			return nil, err
		}
		start, err := vm.asNumber(args[1])
		if err != nil {
			return nil, err
		}
		end, err := vm.asNumber(args[2])
		if err != nil {
			return nil, err
		}
		runes := []rune(string(s))
		lo, hi := int(start), int(end)
		if lo < 0 || hi > len(runes) || lo > hi {
			return nil, vm.fail(TypeMismatch, "substring bounds out of range")
		}
		return String(string(runes[lo:hi])), nil

	case "concat":
		a, err := vm.asString(args[0])
		if err != nil {
			return nil, err
		}
		b, err := vm.asString(args[1])
		if err != nil {
			return nil, err
		}
		return a + b, nil

	case "toString":
		return String(args[0].String()), nil

	case "toNumber":
		return vm.toNumber(args[0])

	case "toBoolean":
		return Boolean(args[0].Truthy()), nil

	default:
		return nil, vm.fail(UndefinedVariable, fmt.Sprintf("unknown intrinsic %q", name))
	}
}

func (vm *VM) asNumber(v Value) (Number, error) {
	n, ok := v.(Number)
	if !ok {
		return 0, vm.fail(TypeMismatch, fmt.Sprintf("expected number, got %s", v.Type()))
	}
	return n, nil
}

func (vm *VM) asString(v Value) (String, error) {
	s, ok := v.(String)
	if !ok {
		return "", vm.fail(TypeMismatch, fmt.Sprintf("expected string, got %s", v.Type()))
	}
	return s, nil
}

// toNumber implements the intrinsic's documented coercions (spec.md §6):
// numbers pass through, booleans become 1/0, and a string is parsed —
// a non-numeric string is a type_mismatch, never NaN (the resolved
// reading of that open question).
func (vm *VM) toNumber(v Value) (Value, error) {
	switch x := v.(type) {
	case Number:
		return x, nil
	case Boolean:
		if x {
			return Number(1), nil
		}
		return Number(0), nil
	case String:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(x)), 64)
		if err != nil {
			return nil, vm.fail(TypeMismatch, fmt.Sprintf("cannot convert %q to a number", string(x)))
		}
		return Number(f), nil
	default:
		return nil, vm.fail(TypeMismatch, fmt.Sprintf("cannot convert %s to a number", v.Type()))
	}
}
