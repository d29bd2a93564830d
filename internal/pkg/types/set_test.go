package types

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSet(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		set := NewSet[int]()
		assert.Empty(t, set)
	})

	t.Run("duplicate elements collapse", func(t *testing.T) {
		set := NewSet(1, 2, 2, 3, 3, 3)
		assert.Len(t, set, 3)
		for i := 1; i <= 3; i++ {
			assert.Contains(t, set, i)
		}
	})
}

func TestSet_Add(t *testing.T) {
	set := NewSet("a")
	set.Add("b", "c", "b")

	assert.Len(t, set, 3)
	assert.Contains(t, set, "c")
}

func TestSet_Delete(t *testing.T) {
	set := NewSet(1, 2, 3)
	set.Delete(2, 99)

	assert.Len(t, set, 2)
	assert.NotContains(t, set, 2)
}

func TestSet_Has(t *testing.T) {
	set := NewSet("x")

	assert.True(t, set.Has("x"))
	assert.False(t, set.Has("y"))
}

func TestSet_ToSlice(t *testing.T) {
	set := NewSet(3, 1, 2)

	got := set.ToSlice()
	slices.Sort(got)
	assert.Equal(t, []int{1, 2, 3}, got)
}
