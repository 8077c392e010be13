// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provides missing functionality to the standard slices package.
package xslices

import (
	"golang.org/x/exp/constraints"
)

// At takes an element at the given `index`, where `index` can be negative, in which case it takes from the end
// of the slice.
func At[T any](slice []T, index int) T {
	if index < 0 {
		index = len(slice) + index
	}
	return slice[index]
}

// Last returns the last element of a slice.
func Last[T any](slice []T) T {
	return At(slice, -1)
}

// Copy creates a new (shallow) copy of T. A short cut to a call to `make` and then `copy`.
func Copy[T any](slice []T) []T {
	if len(slice) == 0 {
		return nil
	}
	slice2 := make([]T, len(slice))
	copy(slice2, slice)
	return slice2
}

// FillSlice fills the slice with the given value.
func FillSlice[T any](slice []T, value T) {
	for ii := range slice {
		slice[ii] = value
	}
}

// SliceWithValue creates a slice of the given size filled with the given value.
func SliceWithValue[T any](size int, value T) []T {
	slice := make([]T, size)
	FillSlice(slice, value)
	return slice
}

// Iota returns a slice of incremental values, starting with start and of the given size.
func Iota[T interface {
	constraints.Integer | constraints.Float
}](start T, size int) (slice []T) {
	slice = make([]T, size)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Max scans the slice and returns the largest value. It panics if the slice is empty.
func Max[T constraints.Ordered](slice []T) (max T) {
	if len(slice) == 0 {
		panic("xslices.Max of empty slice")
	}
	max = slice[0]
	for _, value := range slice[1:] {
		if value > max {
			max = value
		}
	}
	return
}

// Min scans the slice and returns the smallest value. It panics if the slice is empty.
func Min[T constraints.Ordered](slice []T) (min T) {
	if len(slice) == 0 {
		panic("xslices.Min of empty slice")
	}
	min = slice[0]
	for _, value := range slice[1:] {
		if value < min {
			min = value
		}
	}
	return
}
