package vm

import (
	"github.com/rainbow-alex/burn/internal/bytecode"
	"github.com/rainbow-alex/burn/internal/value"
)

// FrameKind distinguishes a burn frame (decoding bytecode.Code) from a host
// frame (stepping a HostOperation), the two frame shapes a fiber's frame
// stack can hold (§4.7, §6).
type FrameKind int

const (
	BurnFrame FrameKind = iota
	HostFrame
)

// Frame is one activation on a fiber's frame stack. Only the fields for its
// own Kind are populated.
type Frame struct {
	Kind FrameKind

	// Burn frame fields.
	Code        *bytecode.Code
	PC          int
	Local       []value.Value
	SharedLocal []value.Cell
	StaticBound []value.Value
	SharedBound []value.Cell
	Fn          *value.Function // nil for a root/module-source frame.

	// Host frame fields.
	Op HostOperation
}

// FlowKind is the fiber's flow machine state (§4.7 "Flow").
type FlowKind int

const (
	Running FlowKind = iota
	Catching
	Throwing
	Returning
	Jumping
)

func (k FlowKind) String() string {
	switch k {
	case Running:
		return "Running"
	case Catching:
		return "Catching"
	case Throwing:
		return "Throwing"
	case Returning:
		return "Returning"
	case Jumping:
		return "Jumping"
	default:
		return "Flow(?)"
	}
}

// Flow is the fiber's single current flow-machine state. Value carries the
// caught/thrown/returned value for the kinds that produce one. N and PC
// are reserved for a Jumping flow; no instruction currently enters Jumping
// (FlowJump pops its flow points and jumps directly), so they stay zero.
type Flow struct {
	Kind  FlowKind
	Value value.Value
	N     int
	PC    int
}

// FlowPointKind tags one entry on the fiber-wide flow-point stack (§4.7
// "flow-point stack").
type FlowPointKind int

const (
	FPCatch FlowPointKind = iota
	FPFinally
	FPPopFrame
	FPPopFrameAndRestoreFlow
)

// FlowPoint is one pending interception point: a pc a Throwing/Returning/
// Jumping flow may be redirected to (Catch, Finally), or a frame boundary
// the flow must cross (PopFrame, PopFrameAndRestoreFlow). The fiber keeps a
// single shared stack of these across every frame, so propagation that
// crosses a call boundary falls out of popping one entry at a time rather
// than needing a separate per-frame search (§4.7, §4.8).
type FlowPoint struct {
	Kind FlowPointKind
	PC   int

	// SavedFlow is populated only for FPPopFrameAndRestoreFlow: the ambient
	// flow (always Catching in practice — Call only dispatches under
	// Running or Catching, §4.7) at the moment the callee was pushed. A
	// callee that Returns normally restores this ambient flow instead of
	// resetting to Running, so dispatch of the enclosing catch-clause test
	// continues to see the right thrown value (§4.6 "Try").
	SavedFlow Flow
}
