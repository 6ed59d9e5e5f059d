package analysis

import (
	"github.com/rainbow-alex/burn/internal/ast"
)

// scope is one lexical block: control-flow blocks (if/while/try bodies)
// push only a scope, not a frame (§4.4 pass 1).
type scope struct {
	vars map[string]*ast.VariableDecl
	uses map[string]bool // trailing identifiers introduced by `use` in this scope
}

type resolver struct {
	time int

	frames     []*Frame
	frameOrder []*Frame
	fnFrame    map[*ast.Function]*Frame

	scopes []*scope

	errors []error
}

func newResolver() *resolver {
	return &resolver{fnFrame: map[*ast.Function]*Frame{}}
}

func (r *resolver) tick() int {
	r.time++
	return r.time
}

func (r *resolver) pushScope() {
	r.scopes = append(r.scopes, &scope{vars: map[string]*ast.VariableDecl{}, uses: map[string]bool{}})
}

func (r *resolver) popScope() {
	r.scopes = r.scopes[:len(r.scopes)-1]
}

func (r *resolver) currentFrame() *Frame { return r.frames[len(r.frames)-1] }

func (r *resolver) frameIndexOf(f *Frame) int {
	for i, cand := range r.frames {
		if cand == f {
			return i
		}
	}
	return -1
}

// declare introduces decl in the innermost scope and registers it with
// frame f, erroring if the name is already declared in that same scope.
// Re-declaring the very same decl (a Root.Scope entry that Analyze already
// declared, reached again through its Let) is a no-op.
func (r *resolver) declare(f *Frame, decl *ast.VariableDecl, offset ast.Offset) {
	top := r.scopes[len(r.scopes)-1]
	if existing, dup := top.vars[decl.Name]; dup {
		if existing == decl {
			return
		}
		r.errors = append(r.errors, newError(offset, "duplicate declaration of %q in the same scope", decl.Name))
		return
	}
	top.vars[decl.Name] = decl
	f.Scope = append(f.Scope, decl)
	decl.Analysis = &VariableInfo{Decl: decl, Frame: f}
}

// lookup finds decl for name in the lexical scope stack, innermost first.
func (r *resolver) lookup(name string) (*ast.VariableDecl, bool) {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if d, ok := r.scopes[i].vars[name]; ok {
			return d, true
		}
	}
	return nil, false
}

func (r *resolver) markUse(identifier string) {
	r.scopes[len(r.scopes)-1].uses[identifier] = true
}

func (r *resolver) isUsed(identifier string) bool {
	for i := len(r.scopes) - 1; i >= 0; i-- {
		if r.scopes[i].uses[identifier] {
			return true
		}
	}
	return false
}

// resolveMention resolves a Variable mention (read if !write, else write)
// against the scope stack, recording the reference-time mark on the
// declaring variable and, when the mention crosses one or more frame
// boundaries, a Binding on each crossed frame plus a root bind on the
// declaring variable (§4.4 pass 1).
func (r *resolver) resolveMention(v *ast.Variable, write bool) {
	t := r.tick()
	decl, ok := r.lookup(v.Identifier)
	if !ok {
		r.errors = append(r.errors, newError(v.Pos(), "unknown variable %q", v.Identifier))
		return
	}
	v.Annotation.Variable = decl

	vi := info(decl)
	di := r.frameIndexOf(vi.Frame)
	ci := len(r.frames) - 1

	if di == ci {
		if write {
			vi.Writes = append(vi.Writes, Mark{Time: t})
		} else {
			vi.Reads = append(vi.Reads, Mark{Time: t})
		}
		return
	}

	// Crossing frames outward from the mention's frame to (but not
	// including) the declaring frame; each crossed frame records a
	// deduplicated Binding. The binding created in the frame immediately
	// enclosing the declaration (index di+1) is the variable's root bind.
	for j := ci; j > di; j-- {
		b := r.frames[j].binding(decl, t, write)
		if j == di+1 {
			found := false
			for _, existing := range vi.RootBinds {
				if existing == b {
					found = true
					break
				}
			}
			if !found {
				vi.RootBinds = append(vi.RootBinds, b)
			}
		}
	}
}

func (r *resolver) resolveStmts(stmts []ast.Stmt) {
	for _, s := range stmts {
		r.resolveStmt(s)
	}
}

func (r *resolver) resolveStmt(s ast.Stmt) {
	r.tick()
	switch n := s.(type) {
	case *ast.If:
		r.resolveExpr(n.Test)
		r.pushScope()
		r.resolveStmts(n.Then)
		r.popScope()
		for _, clause := range n.ElseIf {
			r.resolveExpr(clause.Test)
			r.pushScope()
			r.resolveStmts(clause.Then)
			r.popScope()
		}
		if n.HasElse {
			r.pushScope()
			r.resolveStmts(n.Else)
			r.popScope()
		}

	case *ast.While:
		loopStart := r.time
		r.resolveExpr(n.Test)
		r.pushScope()
		r.resolveStmts(n.Body)
		r.popScope()
		if n.HasElse {
			r.pushScope()
			r.resolveStmts(n.Else)
			r.popScope()
		}
		r.duplicateLoopMarks(loopStart, r.tick())

	case *ast.Try:
		r.pushScope()
		r.resolveStmts(n.Body)
		r.popScope()
		for _, c := range n.Catches {
			if c.Type != nil {
				r.resolveExpr(c.Type)
			}
			r.pushScope()
			if c.Decl != nil {
				r.declare(r.currentFrame(), c.Decl, n.Pos())
			}
			r.resolveStmts(c.Body)
			r.popScope()
		}
		if n.Finally != nil {
			r.pushScope()
			r.resolveStmts(n.Finally)
			r.popScope()
		}

	case *ast.Let:
		if n.Default != nil {
			r.resolveExpr(n.Default)
		}
		r.declare(r.currentFrame(), n.Decl, n.Pos())

	case *ast.Assignment:
		r.resolveExpr(n.Value)
		r.resolveMention(n.Target, true)

	case *ast.Print:
		r.resolveExpr(n.Value)

	case *ast.Return:
		if n.Value != nil {
			r.resolveExpr(n.Value)
		}

	case *ast.Throw:
		r.resolveExpr(n.Value)

	case *ast.Use:
		if len(n.Path) > 0 {
			r.markUse(n.Path[len(n.Path)-1])
		}

	case *ast.ExpressionStatement:
		r.resolveExpr(n.Value)
	}
}

func (r *resolver) resolveExpr(e ast.Expr) {
	switch n := e.(type) {
	case *ast.Variable:
		r.resolveMention(n, false)
	case *ast.Name:
		if r.isUsed(n.Identifier) {
			n.Annotation.Kind = ast.ResolvedUse
			n.Annotation.Use = n.Identifier
		} else {
			n.Annotation.Kind = ast.Implicit
		}
	case *ast.DotAccess:
		r.resolveExpr(n.Target)
	case *ast.ItemAccess:
		r.resolveExpr(n.Target)
		r.resolveExpr(n.Item)
	case *ast.Call:
		r.resolveExpr(n.Callee)
		for _, a := range n.Args {
			r.resolveExpr(a)
		}
	case *ast.Binary:
		r.resolveExpr(n.Left)
		r.resolveExpr(n.Right)
	case *ast.Unary:
		r.resolveExpr(n.Operand)
	case *ast.Function:
		r.resolveFunction(n)
	}
}

func (r *resolver) resolveFunction(fn *ast.Function) {
	f := newFrame(fn)
	f.Parent = r.currentFrame()
	r.fnFrame[fn] = f
	r.frameOrder = append(r.frameOrder, f)
	r.frames = append(r.frames, f)
	r.pushScope()

	for _, p := range fn.Parameters {
		r.declare(f, p, fn.Pos())
	}
	r.resolveStmts(fn.Body)

	r.popScope()
	r.frames = r.frames[:len(r.frames)-1]
}

// duplicateLoopMarks models repeated execution of a while body: every
// in-scope variable (declared in the current frame or any enclosing one)
// that recorded a read or write mark during [start, end) gets a duplicate
// of each such mark stamped at `end`, so a second iteration's before/after
// relationships are visible to storage classification (§4.4 "while-loops
// duplicate...", §9 "Mutable-after-capture detection").
func (r *resolver) duplicateLoopMarks(start, end int) {
	seen := map[*ast.VariableDecl]bool{}
	for _, sc := range r.scopes {
		for _, decl := range sc.vars {
			if seen[decl] {
				continue
			}
			seen[decl] = true
			vi := info(decl)
			if vi == nil {
				continue
			}
			for _, m := range append([]Mark(nil), vi.Reads...) {
				if m.Time >= start && m.Time < end {
					vi.Reads = append(vi.Reads, Mark{Time: end})
				}
			}
			for _, m := range append([]Mark(nil), vi.Writes...) {
				if m.Time >= start && m.Time < end {
					vi.Writes = append(vi.Writes, Mark{Time: end})
				}
			}
		}
	}
}
