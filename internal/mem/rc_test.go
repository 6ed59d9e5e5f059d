package mem_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rainbow-alex/burn/internal/mem"
)

func TestNewRcStartsAtCountOne(t *testing.T) {
	r := mem.NewRc("hello")
	assert.Equal(t, 1, r.Count())
	assert.Equal(t, "hello", *r.Get())
}

func TestCloneIncrementsCountAndSharesBox(t *testing.T) {
	r := mem.NewRc(1)
	clone := r.Clone()

	assert.Equal(t, 2, r.Count())
	*clone.Get() = 2
	assert.Equal(t, 2, *r.Get(), "clones must share the same backing box")
}

func TestDropReportsLastHolder(t *testing.T) {
	r := mem.NewRc("x")
	clone := r.Clone()

	assert.False(t, r.Drop(), "first drop of two holders is not the last")
	assert.True(t, clone.Drop(), "second drop is the last holder")
}

func TestZeroValueRcIsInvalid(t *testing.T) {
	var r mem.Rc[int]
	assert.False(t, r.Valid())
	assert.Nil(t, r.Get())
	assert.Equal(t, 0, r.Count())
	assert.False(t, r.Drop())
}
