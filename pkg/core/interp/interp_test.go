// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilir/tilir/pkg/core/ir"
	"github.com/tilir/tilir/pkg/core/shapes"
)

func indexTensor(value int64) *Tensor {
	return NewTensor(shapes.Index(), []float64{float64(value)})
}

func TestRunScale(t *testing.T) {
	b := ir.NewBuilder("scale")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 2, 3))
	dest := b.Empty(shapes.Make(dtypes.Float32, 2, 3))
	b.Return(b.Scale(x, dest, 2.5))

	xT := NewTensor(shapes.Make(dtypes.Float32, 2, 3), []float64{1, 2, 3, 4, 5, 6})
	results, err := Run(b.Func(), map[string]*Tensor{"x": xT})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []float64{2.5, 5, 7.5, 10, 12.5, 15}, results[0].Data())
	// The input is untouched.
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, xT.Data())
}

func TestRunIndexArithmetic(t *testing.T) {
	b := ir.NewBuilder("arith")
	x := b.Parameter("x", shapes.Index())
	y := b.ConstantIndex(7)
	b.Return(b.Min(b.Add(x, y), b.Mul(x, b.Sub(y, x))))

	// min(3+7, 3*(7-3)) = min(10, 12) = 10.
	results, err := Run(b.Func(), map[string]*Tensor{"x": indexTensor(3)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []float64{10}, results[0].Data())
}

func TestRunForLoop(t *testing.T) {
	// Copies x into an empty destination two rows at a time.
	b := ir.NewBuilder("copy")
	x := b.Parameter("x", shapes.Make(dtypes.Float64, 4, 2))
	dest := b.Empty(shapes.Make(dtypes.Float64, 4, 2))
	forNode, err := b.For(b.ConstantIndex(0), b.ConstantIndex(4), b.ConstantIndex(2),
		[]*ir.Node{dest}, func(iv *ir.Node, args []*ir.Node) error {
			offsets := []ir.Extent{ir.ValueExtent(iv), ir.StaticExtent(0)}
			sizes := ir.StaticExtents(2, 2)
			strides := ir.UnitStrides(2)
			tile := b.ExtractSlice(x, offsets, sizes, strides)
			b.Yield(b.InsertSlice(tile, args[0], offsets, sizes, strides))
			return nil
		})
	require.NoError(t, err)
	b.Return(forNode.Result(0))

	data := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	results, err := Run(b.Func(), map[string]*Tensor{
		"x": NewTensor(shapes.Make(dtypes.Float64, 4, 2), data),
	})
	require.NoError(t, err)
	assert.Equal(t, data, results[0].Data())
}

func TestRunForZeroIterations(t *testing.T) {
	b := ir.NewBuilder("empty-loop")
	init := b.Empty(shapes.Make(dtypes.Float32, 2))
	forNode, err := b.For(b.ConstantIndex(0), b.ConstantIndex(0), b.ConstantIndex(1),
		[]*ir.Node{init}, func(iv *ir.Node, args []*ir.Node) error {
			b.Yield(b.Scale(args[0], b.Empty(shapes.Make(dtypes.Float32, 2)), 3))
			return nil
		})
	require.NoError(t, err)
	b.Return(forNode.Result(0))

	results, err := Run(b.Func(), nil)
	require.NoError(t, err)
	// The loop never ran: the result is the initial carried value.
	assert.Equal(t, []float64{0, 0}, results[0].Data())
}

func TestRunForRejectsNonPositiveStep(t *testing.T) {
	b := ir.NewBuilder("bad-step")
	forNode, err := b.For(b.ConstantIndex(0), b.ConstantIndex(4), b.ConstantIndex(0),
		nil, func(iv *ir.Node, args []*ir.Node) error { return nil })
	require.NoError(t, err)
	_ = forNode

	_, err = Run(b.Func(), nil)
	require.ErrorContains(t, err, "step must be positive")
}

func TestRunScatterValue(t *testing.T) {
	b := ir.NewBuilder("scatter")
	updates := b.Parameter("updates", shapes.Make(dtypes.Float32, 2, 2))
	indices := b.Parameter("indices", shapes.Make(dtypes.Int64, 2))
	dest := b.Parameter("dest", shapes.Make(dtypes.Float32, 3, 2))
	b.Return(b.Scatter(updates, indices, dest))

	destT := Full(shapes.Make(dtypes.Float32, 3, 2), -1)
	results, err := Run(b.Func(), map[string]*Tensor{
		"updates": NewTensor(shapes.Make(dtypes.Float32, 2, 2), []float64{10, 11, 20, 21}),
		"indices": NewTensor(shapes.Make(dtypes.Int64, 2), []float64{2, 0}),
		"dest":    destT,
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{20, 21, -1, -1, 10, 11}, results[0].Data())
	// Value semantics: the destination operand is untouched.
	assert.Equal(t, []float64{-1, -1, -1, -1, -1, -1}, destT.Data())
}

func TestRunScatterBufferMutatesInPlace(t *testing.T) {
	b := ir.NewBuilder("scatter-buffer")
	updates := b.Parameter("updates", shapes.Make(dtypes.Float32, 2, 2))
	indices := b.Parameter("indices", shapes.Make(dtypes.Int64, 2))
	dest := b.Parameter("dest", shapes.MakeBuffer(dtypes.Float32, 3, 2))
	scatter := b.Scatter(updates, indices, dest)
	require.Equal(t, 0, scatter.NumResults())

	destT := Full(shapes.MakeBuffer(dtypes.Float32, 3, 2), -1)
	results, err := Run(b.Func(), map[string]*Tensor{
		"updates": NewTensor(shapes.Make(dtypes.Float32, 2, 2), []float64{10, 11, 20, 21}),
		"indices": NewTensor(shapes.Make(dtypes.Int64, 2), []float64{2, 0}),
		"dest":    destT,
	})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, []float64{20, 21, -1, -1, 10, 11}, destT.Data())
}

func TestRunSort(t *testing.T) {
	b := ir.NewBuilder("sort")
	x := b.Parameter("x", shapes.Make(dtypes.Float64, 2, 3))
	b.Return(b.Sort(x, 1))

	results, err := Run(b.Func(), map[string]*Tensor{
		"x": NewTensor(shapes.Make(dtypes.Float64, 2, 3), []float64{3, 1, 2, 6, 5, 4}),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, results[0].Data())
}

func TestRunSortAxis0(t *testing.T) {
	b := ir.NewBuilder("sort0")
	x := b.Parameter("x", shapes.Make(dtypes.Float64, 3, 2))
	b.Return(b.Sort(x, 0))

	results, err := Run(b.Func(), map[string]*Tensor{
		"x": NewTensor(shapes.Make(dtypes.Float64, 3, 2), []float64{5, 0, 1, 4, 3, 2}),
	})
	require.NoError(t, err)
	// Each column sorted independently.
	assert.Equal(t, []float64{1, 0, 3, 2, 5, 4}, results[0].Data())
}

func TestRunExtractSliceStrided(t *testing.T) {
	b := ir.NewBuilder("extract")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 6))
	b.Return(b.ExtractSlice(x,
		[]ir.Extent{ir.StaticExtent(1)}, []ir.Extent{ir.StaticExtent(2)}, []ir.Extent{ir.StaticExtent(2)}))

	results, err := Run(b.Func(), map[string]*Tensor{
		"x": NewTensor(shapes.Make(dtypes.Float32, 6), []float64{0, 1, 2, 3, 4, 5}),
	})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3}, results[0].Data())
}

func TestRunWorkerGrid(t *testing.T) {
	b := ir.NewBuilder("worker")
	b.Return(b.WorkerID(0), b.WorkerCount(0), b.WorkerID(1))

	results, err := Run(b.Func(), nil, WithWorker(0, 2, 4))
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, []float64{2}, results[0].Data())
	assert.Equal(t, []float64{4}, results[1].Data())
	// Unbound grid dimensions run as a single worker.
	assert.Equal(t, []float64{0}, results[2].Data())
}

func TestRunMissingParameter(t *testing.T) {
	b := ir.NewBuilder("missing")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 2))
	b.Return(x)

	_, err := Run(b.Func(), nil)
	require.ErrorContains(t, err, `no value fed for parameter "x"`)
}

func TestTensorAt(t *testing.T) {
	x := NewTensor(shapes.Make(dtypes.Float64, 2, 3), []float64{0, 1, 2, 3, 4, 5})
	assert.Equal(t, 0.0, x.At(0, 0))
	assert.Equal(t, 2.0, x.At(0, 2))
	assert.Equal(t, 5.0, x.At(1, 2))
	x.Set(7, 1, 0)
	assert.Equal(t, 7.0, x.At(1, 0))
	require.Panics(t, func() { x.At(2, 0) })
	require.Panics(t, func() { x.At(0) })
}

func TestTensorNewChecksSize(t *testing.T) {
	require.Panics(t, func() { NewTensor(shapes.Make(dtypes.Float32, 2, 2), []float64{1}) })
	require.Panics(t, func() {
		NewTensor(shapes.Make(dtypes.Float32, 2, shapes.DynamicDim), nil)
	})
}

func TestIterIndices(t *testing.T) {
	var visited [][]int64
	iterIndices([]int64{2, 3}, func(indices []int64) {
		visited = append(visited, append([]int64{}, indices...))
	})
	require.Len(t, visited, 6)
	assert.Equal(t, []int64{0, 0}, visited[0])
	assert.Equal(t, []int64{0, 2}, visited[2])
	assert.Equal(t, []int64{1, 2}, visited[5])

	count := 0
	iterIndices([]int64{2, 0, 3}, func([]int64) { count++ })
	assert.Zero(t, count)

	iterIndices(nil, func([]int64) { count++ })
	assert.Equal(t, 1, count)
}
