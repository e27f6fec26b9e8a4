package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceHelpers(t *testing.T) {
	nums := []int{1, 2, 3, 4, 2}

	assert.Equal(t, []int{2, 4, 2}, Filter(nums, func(n int) bool { return n%2 == 0 }))
	assert.Equal(t, []string{"1", "2", "3", "4", "2"}, Map(nums, func(n int) string { return FormatHours(float64(n)) }))
	assert.Equal(t, []int{1, 2, 3, 4}, Unique(nums))

	found := Find(nums, func(n int) bool { return n > 2 })
	if assert.NotNil(t, found) {
		assert.Equal(t, 3, *found)
	}
	assert.Nil(t, Find(nums, func(n int) bool { return n > 10 }))

	assert.Equal(t, map[int]int{1: 1, 2: 2, 3: 3, 4: 4}, KeyBy(nums, func(n int) int { return n }))
}

func TestFormatHours(t *testing.T) {
	assert.Equal(t, "8", FormatHours(8))
	assert.Equal(t, "7.5", FormatHours(7.5))
	assert.Equal(t, "0", FormatHours(0))
	assert.Equal(t, "32", FormatHours(32))
}

func TestDeref(t *testing.T) {
	assert.Equal(t, "", Deref[string](nil))
	assert.Equal(t, "x", Deref(Ptr("x")))
	assert.Nil(t, NilIfEmpty(""))
	assert.Equal(t, "a", *NilIfEmpty("a"))
}
