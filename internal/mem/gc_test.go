package mem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rainbow-alex/burn/internal/mem"
)

type node struct {
	refs []*node
	died bool
}

func (n *node) Mark(visit func(mem.GcObject)) {
	for _, r := range n.refs {
		visit(r)
	}
}

func (n *node) Die() { n.died = true }

func TestReleaseFreesNonCyclicObjectAtZero(t *testing.T) {
	m := mem.NewManager()
	n := &node{}
	m.Register(n)

	m.Release(n)

	assert.False(t, m.Live(n))
	assert.True(t, n.died)
}

func TestRetainDelaysRelease(t *testing.T) {
	m := mem.NewManager()
	n := &node{}
	m.Register(n)
	m.Retain(n)

	m.Release(n)
	assert.True(t, m.Live(n), "one retain outstanding must keep the object alive")
	assert.False(t, n.died)

	m.Release(n)
	assert.False(t, m.Live(n))
}

// TestSweepCollectsUnreachableCycle builds a two-node cycle with no
// external refcount drop ever reaching zero (both hold a reference to the
// other) and confirms Sweep still frees both when neither is reachable
// from roots.
func TestSweepCollectsUnreachableCycle(t *testing.T) {
	m := mem.NewManager()
	a := &node{}
	b := &node{}
	a.refs = []*node{b}
	b.refs = []*node{a}
	m.Register(a)
	m.Register(b)

	m.Sweep(nil)

	assert.False(t, m.Live(a))
	assert.False(t, m.Live(b))
	assert.True(t, a.died)
	assert.True(t, b.died)
}

func TestSweepRetainsObjectsReachableFromRoots(t *testing.T) {
	m := mem.NewManager()
	root := &node{}
	child := &node{}
	root.refs = []*node{child}
	m.Register(root)
	m.Register(child)

	m.Sweep([]mem.GcObject{root})

	assert.True(t, m.Live(root))
	assert.True(t, m.Live(child))
}

func TestPromoteSurvivesSweepRegardlessOfReachability(t *testing.T) {
	m := mem.NewManager()
	n := &node{}
	m.Register(n)
	m.Promote(n)

	m.Sweep(nil)

	assert.True(t, m.Live(n), "an immortal object must survive a sweep with no roots")
}

func TestCountReflectsRegisteredObjects(t *testing.T) {
	m := mem.NewManager()
	assert.Equal(t, 0, m.Count())
	m.Register(&node{})
	m.Register(&node{})
	assert.Equal(t, 2, m.Count())
}
