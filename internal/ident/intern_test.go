package ident_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainbow-alex/burn/internal/ident"
)

func TestInternReturnsSameHandleForEqualNames(t *testing.T) {
	a := ident.Intern("foo")
	b := ident.Intern("foo")
	assert.True(t, a == b, "equal names must intern to the same pointer")
	assert.True(t, ident.Equal(a, b))
}

func TestInternDistinguishesDifferentNames(t *testing.T) {
	a := ident.Intern("foo")
	b := ident.Intern("bar")
	assert.False(t, ident.Equal(a, b))
}

func TestHandleStringRoundTrips(t *testing.T) {
	h := ident.Intern("roundtrip")
	assert.Equal(t, "roundtrip", h.String())
}

func TestNilHandleStringIsEmpty(t *testing.T) {
	var h *ident.Handle
	assert.Equal(t, "", h.String())
}

// TestInternIsSafeForConcurrentFirstSight exercises the singleflight
// collapse path: many goroutines racing to intern the same brand-new
// name must all observe the same handle.
func TestInternIsSafeForConcurrentFirstSight(t *testing.T) {
	const n = 64
	var wg sync.WaitGroup
	handles := make([]*ident.Handle, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i] = ident.Intern("concurrent-name")
		}(i)
	}
	wg.Wait()

	for i := 1; i < n; i++ {
		require.True(t, handles[0] == handles[i], "every goroutine must observe the same interned handle")
	}
}

func TestCountGrowsOnlyForNewNames(t *testing.T) {
	before := ident.Count()
	ident.Intern("a-name-not-seen-before-xyz")
	ident.Intern("a-name-not-seen-before-xyz")
	after := ident.Count()
	assert.Equal(t, before+1, after)
}
