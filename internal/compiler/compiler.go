// Package compiler lowers an analyzed AST into bytecode.Code (§4.6). It has
// no dependency on the module tree or the vm: `use` resolution is left as
// unwired bookkeeping (bytecode.Code.UsePoints) for package module to link
// once a tree is available.
package compiler

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/rainbow-alex/burn/internal/analysis"
	"github.com/rainbow-alex/burn/internal/ast"
	"github.com/rainbow-alex/burn/internal/bytecode"
)

// Diagnostic is a compile-time failure carrying a source offset, matching
// the parse/analysis error shape from spec §7.1. The compiler itself
// raises one only for conditions the resolver cannot already rule out
// (none currently reachable from a well-formed, already-analyzed AST); it
// exists so a future relaxation of analysis has somewhere to report into.
type Diagnostic struct {
	Message string
	Offset  ast.Offset
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s (at offset %d)", d.Message, d.Offset)
}

func newDiagnostic(offset ast.Offset, format string, args ...any) error {
	return errors.WithStack(&Diagnostic{Message: fmt.Sprintf(format, args...), Offset: offset})
}

// Compile runs variable-lifetime analysis over root and, on success, emits
// bytecode for the root frame and every nested function literal (§4.4,
// §4.6). On analysis failure the accumulated analysis errors are returned
// unchanged.
func Compile(root *ast.Root, opts analysis.Options) (*bytecode.Code, []error) {
	result, errs := analysis.Analyze(root, opts)
	if len(errs) > 0 {
		return nil, errs
	}
	c := &compiler{result: result}
	code := c.compileFrame(result.RootFrame, root.Statements)
	if len(c.errors) > 0 {
		return nil, c.errors
	}
	return code, nil
}

type compiler struct {
	result *analysis.Result
	errors []error

	// useScopes is shared by every emitter across the whole traversal (one
	// per Code, one per nested Function), exactly as the resolver's own
	// scope stack is shared across frame pushes: a `use` declared in an
	// outer function is visible to a Name mention inside a nested closure
	// compiled while that scope is still open (§4.4 pass 4).
	useScopes []map[string]*bytecode.UsePoint
}

func (c *compiler) compileFrame(f *analysis.Frame, stmts []ast.Stmt) *bytecode.Code {
	code := &bytecode.Code{
		NLocalVariables:       f.NLocalVariables,
		NSharedLocalVariables: f.NSharedLocalVariables,
	}
	e := &emitter{c: c, code: code, frame: f}
	e.pushUseScope()
	e.stmts(stmts)
	e.popUseScope()
	e.emit(bytecode.Instruction{Op: bytecode.ReturnNothing})
	return code
}

// emitter holds the mutable state for compiling one Code (one burn frame's
// worth of instructions): the instruction/constant-pool builder and the
// analysis.Frame it is compiling against. The use-resolution scope stack
// lives on the shared compiler (c.useScopes), not on the emitter.
type emitter struct {
	c     *compiler
	code  *bytecode.Code
	frame *analysis.Frame
}

func (e *emitter) emit(instr bytecode.Instruction) int {
	e.code.Instructions = append(e.code.Instructions, instr)
	return len(e.code.Instructions) - 1
}

func (e *emitter) here() int { return len(e.code.Instructions) }

// patchJump backfills a previously emitted placeholder (§4.6 "reserve a Nop
// slot, keep its index, backfill once the target pc is known").
func (e *emitter) patchJump(at int, op bytecode.Op, target int) {
	e.code.Patch(at, bytecode.Instruction{Op: op, Int: target})
}

func (e *emitter) pushUseScope() {
	e.c.useScopes = append(e.c.useScopes, map[string]*bytecode.UsePoint{})
}
func (e *emitter) popUseScope() { e.c.useScopes = e.c.useScopes[:len(e.c.useScopes)-1] }

func (e *emitter) registerUse(trailing string, up *bytecode.UsePoint) {
	e.c.useScopes[len(e.c.useScopes)-1][trailing] = up
}

func (e *emitter) lookupUse(trailing string) (*bytecode.UsePoint, bool) {
	for i := len(e.c.useScopes) - 1; i >= 0; i-- {
		if up, ok := e.c.useScopes[i][trailing]; ok {
			return up, true
		}
	}
	return nil, false
}
