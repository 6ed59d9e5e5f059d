// Package ident implements process-wide string interning producing stable
// handles. Two identifiers with equal content compare equal by pointer,
// which keeps every name comparison O(1) inside hot dispatch paths such as
// LoadImplicit, GetProperty and module lookup.
package ident

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Handle is a stable, comparable-by-pointer identifier handle.
type Handle struct {
	id   uint32
	name string
}

// String returns the original identifier text.
func (h *Handle) String() string {
	if h == nil {
		return ""
	}
	return h.name
}

var (
	mu     sync.RWMutex
	byName = map[string]*Handle{}
	group  singleflight.Group
	nextID uint32
)

// Intern returns the stable handle for name, inserting it on first sight.
func Intern(name string) *Handle {
	mu.RLock()
	h, ok := byName[name]
	mu.RUnlock()
	if ok {
		return h
	}

	// Concurrent first-sight interns of the same string are collapsed into
	// a single allocation; this matters because host operations resuming
	// from independently scheduled callbacks (§5) may intern names without
	// any other synchronization between them.
	v, _, _ := group.Do(name, func() (interface{}, error) {
		mu.Lock()
		defer mu.Unlock()
		if h, ok := byName[name]; ok {
			return h, nil
		}
		h := &Handle{id: atomic.AddUint32(&nextID, 1), name: name}
		byName[name] = h
		return h, nil
	})
	return v.(*Handle)
}

// Equal reports whether a and b are the same interned identifier.
func Equal(a, b *Handle) bool { return a == b }

// Count returns the number of distinct interned identifiers. Exposed for
// tests and diagnostics only.
func Count() int {
	mu.RLock()
	defer mu.RUnlock()
	return len(byName)
}
