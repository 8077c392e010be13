// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilir/tilir/pkg/core/shapes"
)

func TestBuilderBasicOps(t *testing.T) {
	b := NewBuilder("basic")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 4, 8))
	require.Equal(t, "x", x.ParamName())
	require.Equal(t, OpParameter, x.Type())
	require.Equal(t, 1, x.NumResults())

	c := b.ConstantIndex(42)
	assert.Equal(t, int64(42), c.IntValue())
	assert.True(t, c.Shape().IsIndex())

	sum := b.Add(c, b.ConstantIndex(1))
	assert.Equal(t, OpAdd, sum.Type())
	assert.Same(t, c, sum.Inputs()[0])

	// Dim on a static axis folds to a constant.
	d := b.Dim(x, 1)
	assert.Equal(t, OpConstant, d.Type())
	assert.Equal(t, int64(8), d.IntValue())
}

func TestBuilderChecksOperands(t *testing.T) {
	b := NewBuilder("a")
	other := NewBuilder("b")
	foreign := other.ConstantIndex(1)

	require.Panics(t, func() { b.Add(foreign, b.ConstantIndex(2)) })
	require.Panics(t, func() { b.Add(nil, b.ConstantIndex(2)) })
	require.Panics(t, func() { b.Add(b.ConstantIndex(1), b.Parameter("x", shapes.Make(dtypes.Float32, 2))) })
}

func TestBuilderFor(t *testing.T) {
	b := NewBuilder("loop")
	init := b.Empty(shapes.Make(dtypes.Float32, 8))
	var seenIV *Node
	forNode, err := b.For(b.ConstantIndex(0), b.ConstantIndex(8), b.ConstantIndex(2),
		[]*Node{init}, func(iv *Node, args []*Node) error {
			seenIV = iv
			require.Len(t, args, 1)
			assert.True(t, args[0].IsBlockArg())
			assert.True(t, args[0].Shape().Equal(init.Shape()))
			b.Yield(b.Scale(args[0], b.Empty(shapes.Make(dtypes.Float32, 8)), 2))
			return nil
		})
	require.NoError(t, err)

	assert.True(t, seenIV.Shape().IsIndex())
	require.Equal(t, 1, forNode.NumResults())
	result := forNode.Result(0)
	assert.Same(t, forNode, result.IsResultOf())
	assert.True(t, result.Shape().Equal(init.Shape()))

	lb, ub, step := forNode.LoopBoundsOperands()
	assert.Equal(t, int64(0), lb.IntValue())
	assert.Equal(t, int64(8), ub.IntValue())
	assert.Equal(t, int64(2), step.IntValue())
	assert.Equal(t, []*Node{init}, forNode.LoopIterOperands())

	body := forNode.Body()
	assert.Same(t, forNode, body.Owner())
	assert.Equal(t, OpYield, body.Nodes()[len(body.Nodes())-1].Type())
}

func TestBuilderForRequiresYield(t *testing.T) {
	b := NewBuilder("loop")
	init := b.Empty(shapes.Make(dtypes.Float32, 8))
	require.Panics(t, func() {
		_, _ = b.For(b.ConstantIndex(0), b.ConstantIndex(8), b.ConstantIndex(1),
			[]*Node{init}, func(iv *Node, args []*Node) error {
				// Missing terminator.
				return nil
			})
	})
}

func TestBuilderForPropagatesBodyError(t *testing.T) {
	b := NewBuilder("loop")
	mark := b.Mark()
	wantErr := errors.New("body failed")
	_, err := b.For(b.ConstantIndex(0), b.ConstantIndex(8), b.ConstantIndex(1),
		nil, func(iv *Node, args []*Node) error {
			return wantErr
		})
	require.ErrorIs(t, err, wantErr)
	b.ResetTo(mark)
	assert.Empty(t, b.Func().Entry().Nodes())
}

func TestYieldOutsideLoopPanics(t *testing.T) {
	b := NewBuilder("f")
	require.Panics(t, func() { b.Yield() })
}

func TestReturnInsideLoopPanics(t *testing.T) {
	b := NewBuilder("f")
	_, err := b.For(b.ConstantIndex(0), b.ConstantIndex(1), b.ConstantIndex(1),
		nil, func(iv *Node, args []*Node) error {
			require.Panics(t, func() { b.Return() })
			return nil
		})
	require.NoError(t, err)
}

func TestMarkResetDropsNodes(t *testing.T) {
	b := NewBuilder("f")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 4))
	mark := b.Mark()
	b.Scale(x, b.Empty(shapes.Make(dtypes.Float32, 4)), 2)
	b.ConstantIndex(1)
	require.Len(t, b.Func().Entry().Nodes(), 4)

	b.ResetTo(mark)
	require.Len(t, b.Func().Entry().Nodes(), 1)
	assert.Same(t, x, b.Func().Entry().Nodes()[0])
}

func TestInsertionPoint(t *testing.T) {
	b := NewBuilder("f")
	first := b.ConstantIndex(1)
	last := b.ConstantIndex(2)

	b.SetInsertionPoint(last)
	mid := b.ConstantIndex(3)
	b.ClearInsertionPoint()
	appended := b.ConstantIndex(4)

	assert.Equal(t, []*Node{first, mid, last, appended}, b.Func().Entry().Nodes())
}

func TestReplaceAllUsesAndErase(t *testing.T) {
	b := NewBuilder("f")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 4))
	old := b.Scale(x, b.Empty(shapes.Make(dtypes.Float32, 4)), 2)
	use := b.Scale(old, b.Empty(shapes.Make(dtypes.Float32, 4)), 3)
	b.Return(use)

	replacement := b.Scale(x, b.Empty(shapes.Make(dtypes.Float32, 4)), 2)
	b.ReplaceAllUses(old, replacement)
	assert.Same(t, replacement, use.Inputs()[0])

	b.EraseNode(old)
	assert.Nil(t, old.Block())
	assert.NotContains(t, b.Func().Entry().Nodes(), old)
}

func TestWalkVisitsLoopBodies(t *testing.T) {
	b := NewBuilder("f")
	init := b.Empty(shapes.Make(dtypes.Float32, 2))
	_, err := b.For(b.ConstantIndex(0), b.ConstantIndex(2), b.ConstantIndex(1),
		[]*Node{init}, func(iv *Node, args []*Node) error {
			b.Yield(b.Scale(args[0], b.Empty(shapes.Make(dtypes.Float32, 2)), 2))
			return nil
		})
	require.NoError(t, err)

	var visited []OpType
	b.Func().Walk(func(n *Node) { visited = append(visited, n.Type()) })
	assert.Contains(t, visited, OpScale)
	assert.Contains(t, visited, OpYield)
	assert.Contains(t, visited, OpFor)
}

func TestNodeAttrs(t *testing.T) {
	b := NewBuilder("f")
	n := b.ConstantIndex(1)
	_, found := n.GetAttr("k")
	assert.False(t, found)
	n.SetAttr("k", "v")
	value, found := n.GetAttr("k")
	assert.True(t, found)
	assert.Equal(t, "v", value)
}

func TestExtentFolding(t *testing.T) {
	b := NewBuilder("f")
	assert.Equal(t, int64(7), AddExtents(b, StaticExtent(3), StaticExtent(4)).Static())
	assert.Equal(t, int64(-1), SubExtents(b, StaticExtent(3), StaticExtent(4)).Static())
	assert.Equal(t, int64(12), MulExtents(b, StaticExtent(3), StaticExtent(4)).Static())
	assert.Equal(t, int64(3), MinExtents(b, StaticExtent(3), StaticExtent(4)).Static())

	// Identity shortcuts keep dynamic extents node-free.
	dyn := ValueExtent(b.WorkerID(0))
	assert.Equal(t, dyn, AddExtents(b, StaticExtent(0), dyn))
	assert.Equal(t, dyn, MulExtents(b, dyn, StaticExtent(1)))
	assert.Equal(t, dyn, SubExtents(b, dyn, StaticExtent(0)))

	// ValueExtent folds constant nodes back to static.
	folded := ValueExtent(b.ConstantIndex(9))
	assert.True(t, folded.IsStatic())
	assert.Equal(t, int64(9), folded.Static())

	// No new nodes were created by any of the folded operations.
	require.Len(t, b.Func().Entry().Nodes(), 2)
}

func TestExtentValue(t *testing.T) {
	b := NewBuilder("f")
	v := StaticExtent(5).Value(b)
	assert.Equal(t, OpConstant, v.Type())
	assert.Equal(t, int64(5), v.IntValue())

	id := b.WorkerID(0)
	assert.Same(t, id, ValueExtent(id).Value(b))
}

func TestExtractSliceShape(t *testing.T) {
	b := NewBuilder("f")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 10, 20))
	static := b.ExtractSlice(x, ZeroOffsets(2), StaticExtents(3, 4), UnitStrides(2))
	assert.True(t, static.Shape().Equal(shapes.Make(dtypes.Float32, 3, 4)))

	dynSize := ValueExtent(b.WorkerCount(0))
	dynamic := b.ExtractSlice(x, ZeroOffsets(2), []Extent{StaticExtent(3), dynSize}, UnitStrides(2))
	assert.False(t, dynamic.Shape().IsDynamicDim(0))
	assert.True(t, dynamic.Shape().IsDynamicDim(1))
}

func TestSliceSpecValidation(t *testing.T) {
	b := NewBuilder("f")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 10, 20))
	buf := b.Parameter("buf", shapes.MakeBuffer(dtypes.Float32, 10))
	require.Panics(t, func() { b.ExtractSlice(x, ZeroOffsets(1), StaticExtents(3), UnitStrides(1)) })
	require.Panics(t, func() { b.ExtractSlice(buf, ZeroOffsets(1), StaticExtents(3), UnitStrides(1)) })
	require.Panics(t, func() {
		b.InsertSlice(x, buf, ZeroOffsets(1), StaticExtents(3), UnitStrides(1))
	})
}

func TestScatterResultSemantics(t *testing.T) {
	b := NewBuilder("f")
	updates := b.Parameter("updates", shapes.Make(dtypes.Float32, 4, 2))
	indices := b.Parameter("indices", shapes.Make(dtypes.Int64, 4))

	value := b.Scatter(updates, indices, b.Parameter("dest", shapes.Make(dtypes.Float32, 8, 2)))
	assert.Equal(t, 1, value.NumResults())

	effect := b.Scatter(updates, indices, b.Parameter("buf", shapes.MakeBuffer(dtypes.Float32, 8, 2)))
	assert.Equal(t, 0, effect.NumResults())
	assert.Empty(t, effect.Results())

	require.Panics(t, func() {
		b.Scatter(updates, b.Parameter("bad", shapes.Make(dtypes.Float32, 4)), value)
	})
}

func TestAsTileable(t *testing.T) {
	b := NewBuilder("f")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 6, 4))
	scale := b.Scale(x, b.Empty(shapes.Make(dtypes.Float32, 6, 4)), 2)
	sorted := b.Sort(x, 1)

	tileable, ok := AsTileable(scale)
	require.True(t, ok)
	assert.Equal(t, []IteratorKind{IteratorParallel, IteratorParallel}, tileable.IteratorKinds())
	bounds := tileable.LoopBounds(b)
	require.Len(t, bounds, 2)
	assert.Equal(t, int64(6), bounds[0].Size.Static())
	assert.Equal(t, int64(4), bounds[1].Size.Static())
	assert.True(t, bounds[0].Offset.IsStaticZero())
	assert.True(t, bounds[1].Stride.IsStaticOne())

	tileable, ok = AsTileable(sorted)
	require.True(t, ok)
	assert.Equal(t, []IteratorKind{IteratorParallel, IteratorReduction}, tileable.IteratorKinds())

	_, ok = AsTileable(x)
	assert.False(t, ok)
}

func TestPrint(t *testing.T) {
	b := NewBuilder("example")
	x := b.Parameter("x", shapes.Make(dtypes.Float32, 8))
	dest := b.Empty(shapes.Make(dtypes.Float32, 8))
	forNode, err := b.For(b.ConstantIndex(0), b.ConstantIndex(8), b.ConstantIndex(4),
		[]*Node{dest}, func(iv *Node, args []*Node) error {
			offsets := []Extent{ValueExtent(iv)}
			tile := b.ExtractSlice(x, offsets, StaticExtents(4), UnitStrides(1))
			destTile := b.ExtractSlice(args[0], offsets, StaticExtents(4), UnitStrides(1))
			scaled := b.Scale(tile, destTile, 2)
			scaled.SetAttr("transform.marker", "tiled")
			b.Yield(b.InsertSlice(scaled, args[0], offsets, StaticExtents(4), UnitStrides(1)))
			return nil
		})
	require.NoError(t, err)
	b.Return(forNode.Result(0))

	got := b.Func().String()
	assert.Contains(t, got, "func @example {")
	assert.Contains(t, got, `%x = Parameter "x" : (Float32)[8]`)
	assert.Contains(t, got, "Empty : (Float32)[8]")
	assert.Contains(t, got, "to %2 step %3 iter(")
	assert.Contains(t, got, "ExtractSlice %x [")
	assert.Contains(t, got, `factor=2 {transform.marker="tiled"}`)
	assert.Contains(t, got, "InsertSlice")
	assert.Contains(t, got, "Return ")
}

func TestOpTypeStrings(t *testing.T) {
	assert.Equal(t, "Scale", OpScale.String())
	assert.Equal(t, "For", OpFor.String())
	assert.Equal(t, "Parallel", IteratorParallel.String())
	assert.Equal(t, "Reduction", IteratorReduction.String())

	parsed, err := OpTypeString("Scatter")
	require.NoError(t, err)
	assert.Equal(t, OpScatter, parsed)
}
