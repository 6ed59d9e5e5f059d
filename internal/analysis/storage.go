package analysis

// classifyStorage implements §4.4 pass 2, following
// original_source/src/libburn/compile/analysis/3_determine_variable_lifetime_and_storage_type.rs
// decision tree exactly, including its one observable simplification
// documented in DESIGN.md Open Question 1.
func classifyStorage(vi *VariableInfo) {
	if vi.ForceShared {
		// REPL top-level variables are forced to SharedLocal+SharedBound
		// because future REPL entries may re-bind them.
		vi.Storage = SharedLocal
		vi.Bound = SharedBound
		return
	}

	switch len(vi.RootBinds) {
	case 0:
		vi.Storage = Local
		vi.Bound = NotBound

	case 1:
		bind := vi.RootBinds[0]

		for _, w := range vi.Writes {
			if w.Time > bind.Time {
				vi.Storage = SharedLocal
				vi.Bound = SharedBound
				return
			}
		}

		if !bind.Mutable {
			// Never assigned to after binding: effectively immutable.
			vi.Storage = Local
			vi.Bound = StaticBound
			return
		}

		for _, rd := range vi.Reads {
			if rd.Time > bind.Time {
				// Assigned to inside the binding function, but also read
				// after binding in the declaring frame.
				vi.Storage = SharedLocal
				vi.Bound = SharedBound
				return
			}
		}

		// Dead in the declarer after binding; only the callee mutates it.
		// The original falls through a dead StaticBound branch here (see
		// DESIGN.md Open Question 1) and always lands on SharedBound,
		// since the single declaring-frame holder can't be relied on to
		// outlive the shared mutation.
		vi.Storage = Local
		vi.Bound = SharedBound

	default:
		for _, bind := range vi.RootBinds {
			if bind.Mutable {
				vi.Storage = SharedLocal
				vi.Bound = SharedBound
				return
			}
		}

		first := vi.RootBinds[0]
		for _, w := range vi.Writes {
			if w.Time > first.Time {
				vi.Storage = SharedLocal
				vi.Bound = SharedBound
				return
			}
		}

		// Never assigned to after the first binding: effectively immutable.
		vi.Storage = Local
		vi.Bound = StaticBound
	}
}
