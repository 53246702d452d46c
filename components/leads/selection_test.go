package leads

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelectionSetToggleIsInvolution(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("LD-1")
	assert.True(t, s.Contains("LD-1"))
	assert.Equal(t, 1, s.Size())

	s.Toggle("LD-1")
	assert.False(t, s.Contains("LD-1"))
	assert.Equal(t, 0, s.Size())
}

func TestSelectionSetSetAllReplaces(t *testing.T) {
	s := NewSelectionSet()
	s.Toggle("LD-9")
	s.SetAll([]string{"LD-2", "LD-1", "LD-2"})

	assert.Equal(t, []string{"LD-1", "LD-2"}, s.Values())
	assert.False(t, s.Contains("LD-9"))

	s.Clear()
	assert.Empty(t, s.Values())
}

func TestSelectionSetZeroValueUsable(t *testing.T) {
	var s SelectionSet
	assert.False(t, s.Contains("x"))
	s.Toggle("x")
	assert.True(t, s.Contains("x"))
}
