package dbg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	a, b := new(int), new(int)
	assert.Equal(t, Name(a), Name(a))
	assert.NotEmpty(t, Name(a))
	assert.Equal(t, "Ø", Name(nil))

	var nilPointer *int
	assert.Equal(t, "Ø", Name(nilPointer))

	// Names are random, so two objects could in principle get the same one,
	// but each is memoized under its own key
	Name(b)
	assert.Contains(t, memo, interface{}(b))
}

func TestColored(t *testing.T) {
	a := new(int)
	assert.Contains(t, Colored(a), Name(a))
	assert.Equal(t, Colored(a), Colored(a))
}
