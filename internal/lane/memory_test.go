package lane

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMemory_Resolve(t *testing.T) {
	left := []Segment{{X1: 100, Y1: 300, X2: 180, Y2: 200}}
	right := []Segment{{X1: 220, Y1: 200, X2: 300, Y2: 300}}
	newLeft := []Segment{{X1: 90, Y1: 300, X2: 170, Y2: 200}}

	var mem Memory
	assert.True(t, mem.Empty())

	// First frame with nothing: nothing to fit, memory stays empty.
	used, mem := mem.Resolve(Candidates{})
	assert.Empty(t, used.Left)
	assert.Empty(t, used.Right)
	assert.True(t, mem.Empty())

	// Both sides seen.
	used, mem = mem.Resolve(Candidates{Left: left, Right: right})
	assert.Equal(t, left, used.Left)
	assert.Equal(t, right, used.Right)
	assert.Equal(t, Memory{Left: left, Right: right}, mem)

	// Left lost: falls back, right unchanged.
	used, mem = mem.Resolve(Candidates{Right: right})
	assert.Equal(t, left, used.Left)
	assert.Equal(t, right, used.Right)
	assert.Equal(t, left, mem.Left)

	// Left lost twice in a row: still the last non-empty set.
	used, mem = mem.Resolve(Candidates{})
	assert.Equal(t, left, used.Left)
	assert.Equal(t, right, used.Right)

	// Left reappears and replaces memory.
	used, mem = mem.Resolve(Candidates{Left: newLeft})
	assert.Equal(t, newLeft, used.Left)
	assert.Equal(t, right, used.Right)
	assert.Equal(t, Memory{Left: newLeft, Right: right}, mem)
}

func TestMemory_ResolveDoesNotMutateReceiver(t *testing.T) {
	left := []Segment{{X1: 1, Y1: 2, X2: 3, Y2: 4}}
	mem := Memory{Left: left}

	_, next := mem.Resolve(Candidates{Left: []Segment{{X1: 9}}})

	assert.Equal(t, left, mem.Left)
	assert.NotEqual(t, mem.Left, next.Left)
}
