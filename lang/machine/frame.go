package machine

// CallFrame records one in-progress function invocation: where to resume
// the caller, the callee's local bindings (parameters plus any further
// let-declarations inside its body), and the callee's name for stack
// traces (spec.md §3 "VM state").
type CallFrame struct {
	ReturnAddress int
	Locals        map[string]Value
	FunctionName  string
}
