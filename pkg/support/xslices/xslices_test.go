// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtAndLast(t *testing.T) {
	slice := []int{0, 1, 2, 3, 4, 5}
	assert.Equal(t, 5, At(slice, -1))
	assert.Equal(t, 4, At(slice, -2))
	assert.Equal(t, 1, At(slice, 1))
	assert.Equal(t, 5, Last(slice))
}

func TestCopy(t *testing.T) {
	slice := []int{1, 2, 3}
	slice2 := Copy(slice)
	slice2[0] = 7
	assert.Equal(t, []int{1, 2, 3}, slice)
	assert.Equal(t, []int{7, 2, 3}, slice2)
	assert.Nil(t, Copy([]int(nil)))
}

func TestMap(t *testing.T) {
	count := 17
	in := make([]int, count)
	for ii := 0; ii < count; ii++ {
		in[ii] = ii
	}
	out := Map(in, func(v int) int32 { return int32(v + 1) })
	for ii := 0; ii < count; ii++ {
		assert.Equalf(t, int32(ii+1), out[ii], "element %d doesn't match", ii)
	}
}

func TestSliceWithValue(t *testing.T) {
	assert.Equal(t, []int64{1, 1, 1}, SliceWithValue[int64](3, 1))
	assert.Empty(t, SliceWithValue[int64](0, 1))
}

func TestIota(t *testing.T) {
	assert.Equal(t, []int{3, 4, 5, 6}, Iota(3, 4))
}

func TestMaxMin(t *testing.T) {
	slice := []int{3, 1, 4, 1, 5}
	assert.Equal(t, 5, Max(slice))
	assert.Equal(t, 1, Min(slice))
}
