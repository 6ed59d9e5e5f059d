package analysis

// allocateFrame implements §4.4 pass 3. Within f, dense indices 0..N are
// assigned to Local variables and 0..M to SharedLocal variables; within
// each Binding captured into f, dense indices are assigned into f's own
// StaticBound/SharedBound arrays, and each Binding's source (a slot in the
// enclosing frame, or a forwarded capture already present in the
// enclosing frame's own bound arrays) is resolved (§4.6 "Function" /
// §4.9).
//
// Callers must process frames in an order where a frame's Parent has
// already been allocated (Analyze does this by construction: the root
// frame first, then nested function frames in pre-order discovery order).
func allocateFrame(f *Frame) {
	for _, decl := range f.Scope {
		vi := info(decl)
		switch vi.Storage {
		case Local:
			vi.Slot = f.NLocalVariables
			f.NLocalVariables++
		case SharedLocal:
			vi.Slot = f.NSharedLocalVariables
			f.NSharedLocalVariables++
		}
	}

	for _, b := range f.Bindings {
		vi := info(b.Decl)
		b.TargetShared = vi.Bound == SharedBound
		if b.TargetShared {
			b.TargetSlot = f.NSharedBoundVariables
			f.NSharedBoundVariables++
		} else {
			b.TargetSlot = f.NStaticBoundVariables
			f.NStaticBoundVariables++
		}

		if isRootBind(vi, b) {
			b.SourceIsLocal = true
			b.SourceShared = vi.Storage == SharedLocal
			b.SourceSlot = vi.Slot
			continue
		}

		// Forwarded: f.Parent itself holds a Binding for the same
		// declaration (every frame between the mention and the
		// declaration gets one, §4.4 pass 1), whose own target slot in
		// f.Parent's bound arrays is this binding's source.
		parent := f.Parent
		idx, ok := parent.bindingIndex[b.Decl]
		if !ok {
			// Engine invariant violation: the resolver guarantees every
			// crossed frame records a binding.
			panic("analysis: missing forwarding binding in parent frame")
		}
		parentBinding := parent.Bindings[idx]
		b.SourceIsLocal = false
		b.SourceShared = parentBinding.TargetShared
		b.SourceSlot = parentBinding.TargetSlot
	}
}

func isRootBind(vi *VariableInfo, b *Binding) bool {
	for _, rb := range vi.RootBinds {
		if rb == b {
			return true
		}
	}
	return false
}
