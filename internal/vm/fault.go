package vm

import "fmt"

// Fault is an engine invariant violation (§7.3): an unreachable path, a
// stack underflow, a missing binding the compiler was supposed to
// guarantee. Faults are deliberately never recovered from — the caller
// (cmd/burn, or an embedding host) lets the panic terminate the process,
// since a Fault means the engine or compiler has a bug, not that the
// running script did something wrong.
type Fault struct {
	Message string
}

func (f *Fault) Error() string { return "engine fault: " + f.Message }

func fault(format string, args ...any) {
	panic(&Fault{Message: fmt.Sprintf(format, args...)})
}
