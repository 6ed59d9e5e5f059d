// Package trace implements the engine's ambient tracing (SPEC_FULL.md
// "Logging & tracing"): a Tracer writes one-line-per-event records for
// opcode dispatch, GC sweeps and use-resolution steps to an io.Writer, and
// renders structured bytecode/frame snapshots as trees with
// github.com/xlab/treeprint. It is gated entirely by whether a Tracer is
// installed (cmd/burn wires one in only under -d/--debug) rather than by an
// internal level check, mirroring yaegi's all-or-nothing
// opt.astDot/cfgDot/YAEGI_* env toggles.
package trace

import (
	"fmt"
	"io"

	"github.com/rainbow-alex/burn/internal/bytecode"
)

// Tracer writes trace events to an underlying io.Writer. The zero value is
// not usable; construct with New. A nil *Tracer is valid everywhere a
// Tracer parameter is accepted and every method is a no-op, so call sites
// never need to guard against tracing being disabled.
type Tracer struct {
	w io.Writer
}

// New returns a Tracer writing to w.
func New(w io.Writer) *Tracer { return &Tracer{w: w} }

func (t *Tracer) printf(format string, args ...any) {
	if t == nil || t.w == nil {
		return
	}
	fmt.Fprintf(t.w, format+"\n", args...)
}

// Opcode logs one instruction about to dispatch: frame depth, pc and the
// decoded instruction.
func (t *Tracer) Opcode(frameDepth, pc int, instr bytecode.Instruction) {
	t.printf("opcode depth=%d pc=%d op=%s int=%d", frameDepth, pc, instr.Op, instr.Int)
}

// FlowTransition logs a flow-machine state change (§4.7).
func (t *Tracer) FlowTransition(from, to string) {
	t.printf("flow %s -> %s", from, to)
}

// GCSweep logs one mark/sweep pass: objects registered before and after.
func (t *Tracer) GCSweep(before, after int) {
	t.printf("gc sweep live=%d->%d freed=%d", before, after, before-after)
}

// UseStep logs one resumption of a module.UseOperation's state machine.
func (t *Tracer) UseStep(path []string, state string) {
	t.printf("use %v state=%s", path, state)
}
