package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBatchPreservesOrder(t *testing.T) {
	got := Batch([]string{"a", "b", "c", "d", "e"}, 2)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}, {"e"}}, got)
}

func TestBatchExactMultiple(t *testing.T) {
	got := Batch([]int{1, 2, 3, 4}, 2)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}}, got)
}

func TestBatchEmptyAndNonPositiveSize(t *testing.T) {
	assert.Nil(t, Batch([]int{}, 3))
	assert.Equal(t, [][]int{{1, 2, 3}}, Batch([]int{1, 2, 3}, 0))
}

func TestTail(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{4, 5}, Tail(items, 2))
	assert.Equal(t, items, Tail(items, 10))
	assert.Nil(t, Tail(items, 0))
}
