// Package analysis implements the four variable-lifetime analysis passes
// that decide how each variable is stored (§4.4): resolution & time
// stamping, storage classification, allocation, and name resolution.
package analysis

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/rainbow-alex/burn/internal/ast"
)

// Error is an analysis failure: unknown variable or duplicate declaration,
// each carrying the source offset of the offending mention (§4.4, §7.1).
type Error struct {
	Message string
	Offset  ast.Offset
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (at offset %d)", e.Message, e.Offset)
}

func newError(offset ast.Offset, format string, args ...any) error {
	return errors.WithStack(&Error{Message: fmt.Sprintf(format, args...), Offset: offset})
}

// StorageClass is the in-frame storage discipline for a variable (§3).
type StorageClass int

const (
	Local StorageClass = iota
	SharedLocal
)

func (s StorageClass) String() string {
	if s == SharedLocal {
		return "SharedLocal"
	}
	return "Local"
}

// BoundClass is the closure-capture discipline for a variable, set only
// when the variable is captured at least once (§3).
type BoundClass int

const (
	NotBound BoundClass = iota
	StaticBound
	SharedBound
)

func (b BoundClass) String() string {
	switch b {
	case StaticBound:
		return "StaticBound"
	case SharedBound:
		return "SharedBound"
	default:
		return "NotBound"
	}
}

// Mark is one timestamped read, write or bind event (§3 "Variables and
// storage classes").
type Mark struct {
	Time    int
	Mutable bool // meaningful only for bind marks
}

// Binding is one frame's capture of a variable declared in an ancestor
// frame: "a description of how one slot in an outer frame becomes one slot
// in an inner function's capture array" (GLOSSARY).
type Binding struct {
	Decl    *ast.VariableDecl
	Mutable bool
	Time    int

	// Filled in by pass 3 (allocation).
	SourceIsLocal bool // true: read enclosing frame's Local/SharedLocal array; false: enclosing frame's own StaticBound/SharedBound (binding forwarded across >1 nesting level)
	SourceShared  bool // whether the enclosing-frame source slot is itself shared (SharedLocal or SharedBound)
	SourceSlot    int
	TargetShared  bool // true -> SharedBound, false -> StaticBound
	TargetSlot    int
}

// Frame is one burn frame's analysis state: the root script, or one
// function body.
type Frame struct {
	Fn     *ast.Function // nil for the root frame
	Parent *Frame        // nil for the root frame

	Scope []*ast.VariableDecl // variables declared directly in this frame

	Bindings     []*Binding
	bindingIndex map[*ast.VariableDecl]int

	NLocalVariables       int
	NSharedLocalVariables int
	NStaticBoundVariables int
	NSharedBoundVariables int
}

func newFrame(fn *ast.Function) *Frame {
	return &Frame{Fn: fn, bindingIndex: map[*ast.VariableDecl]int{}}
}

// BindingFor returns the frame's own capture record for decl, if it has
// one; used by the compiler to emit LoadStaticBound/LoadSharedBound (and
// their Store variants) for a mention of a captured variable (§4.6).
func (f *Frame) BindingFor(decl *ast.VariableDecl) (*Binding, bool) {
	i, ok := f.bindingIndex[decl]
	if !ok {
		return nil, false
	}
	return f.Bindings[i], true
}

func (f *Frame) binding(decl *ast.VariableDecl, time int, mutable bool) *Binding {
	if i, ok := f.bindingIndex[decl]; ok {
		b := f.Bindings[i]
		if mutable {
			b.Mutable = true
		}
		return b
	}
	b := &Binding{Decl: decl, Mutable: mutable, Time: time}
	f.bindingIndex[decl] = len(f.Bindings)
	f.Bindings = append(f.Bindings, b)
	return b
}

// VariableInfo is the per-declaration analysis payload, stored on
// ast.VariableDecl.Analysis.
type VariableInfo struct {
	Decl      *ast.VariableDecl
	Frame     *Frame
	Reads     []Mark
	Writes    []Mark
	RootBinds []*Binding // this variable's bindings in its frame's immediate nested children

	// ForceShared marks a variable the host forces to SharedLocal+SharedBound
	// regardless of capture analysis: REPL top-level bindings (§4.4 bullet
	// "REPL top-level variables are forced to SharedLocal+SharedBound").
	ForceShared bool

	Storage StorageClass
	Bound   BoundClass
	Slot    int // allocated index; meaning depends on Storage
}

func info(decl *ast.VariableDecl) *VariableInfo {
	vi, _ := decl.Analysis.(*VariableInfo)
	return vi
}

// Result is the completed analysis of one compilation unit (a root script
// or, recursively, a nested function literal compiled along with it).
type Result struct {
	RootFrame *Frame
	Frames    map[*ast.Function]*Frame // nested function -> its Frame, in discovery order via FrameOrder
	FrameOrder []*Frame
}

// Options configures the analysis driver.
type Options struct {
	// ReplTopLevel, when true, forces every variable declared directly in
	// the root frame to SharedLocal+SharedBound, since future REPL entries
	// may re-bind them (§4.4, §6 "REPL persistence").
	ReplTopLevel bool
}

// Analyze runs all four passes to a fixed point and returns per-frame
// allocation counts, or the accumulated list of analysis errors.
func Analyze(root *ast.Root, opts Options) (*Result, []error) {
	r := newResolver()
	rootFrame := newFrame(nil)
	r.frames = append(r.frames, rootFrame)
	r.pushScope()
	for _, decl := range root.Scope {
		r.declare(rootFrame, decl, 0)
	}
	r.resolveStmts(root.Statements)
	r.popScope()

	if len(r.errors) > 0 {
		return nil, r.errors
	}

	if opts.ReplTopLevel {
		for _, decl := range root.Scope {
			info(decl).ForceShared = true
		}
	}

	allFrames := append([]*Frame{rootFrame}, r.frameOrder...)

	for _, f := range allFrames {
		for _, decl := range f.Scope {
			classifyStorage(info(decl))
		}
	}

	for _, f := range allFrames {
		allocateFrame(f)
	}

	return &Result{RootFrame: rootFrame, Frames: r.fnFrame, FrameOrder: r.frameOrder}, nil
}

// Info exposes the analysis payload for a declared variable. Returned nil
// if decl was never analyzed (a bug in the caller).
func Info(decl *ast.VariableDecl) *VariableInfo { return info(decl) }
