// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"

	"github.com/tilir/tilir/pkg/core/shapes"
	"github.com/tilir/tilir/pkg/support/xslices"
)

type paramData struct {
	name string
}

// Parameter creates an input to the function: a tensor, a buffer or an index
// scalar, depending on the shape. Parameters are fed by name at execution time.
func (b *Builder) Parameter(name string, shape shapes.Shape) *Node {
	if !shape.Ok() {
		exceptions.Panicf("Parameter(%q): invalid shape", name)
	}
	n := b.newNode(OpParameter, shape)
	n.data = paramData{name: name}
	return n
}

// ParamName returns the name of an OpParameter node.
func (n *Node) ParamName() string {
	if n.opType != OpParameter {
		exceptions.Panicf("ParamName called on %s node", n.opType)
	}
	return n.data.(paramData).name
}

// ConstantIndex creates an index (Int64 scalar) constant.
func (b *Builder) ConstantIndex(value int64) *Node {
	n := b.newNode(OpConstant, shapes.Index())
	n.data = value
	return n
}

// IntValue returns the value of an OpConstant node.
func (n *Node) IntValue() int64 {
	if n.opType != OpConstant {
		exceptions.Panicf("IntValue called on %s node", n.opType)
	}
	return n.data.(int64)
}

// Empty allocates an uninitialized tensor of the given shape, to be used as the
// destination operand of value-semantics operations.
func (b *Builder) Empty(shape shapes.Shape) *Node {
	if !shape.Ok() || shape.IsBuffer {
		exceptions.Panicf("Empty(%s): expected a valid tensor shape", shape)
	}
	return b.newNode(OpEmpty, shape)
}

func (b *Builder) indexBinaryOp(opType OpType, x, y *Node) *Node {
	b.checkNodes(opType.String(), x, y)
	if !x.Shape().IsIndex() || !y.Shape().IsIndex() {
		exceptions.Panicf("%s: operands must be index scalars, got %s and %s", opType, x.Shape(), y.Shape())
	}
	return b.newNode(opType, shapes.Index(), x, y)
}

// Add returns x+y over index scalars.
func (b *Builder) Add(x, y *Node) *Node { return b.indexBinaryOp(OpAdd, x, y) }

// Sub returns x-y over index scalars.
func (b *Builder) Sub(x, y *Node) *Node { return b.indexBinaryOp(OpSub, x, y) }

// Mul returns x*y over index scalars.
func (b *Builder) Mul(x, y *Node) *Node { return b.indexBinaryOp(OpMul, x, y) }

// Min returns min(x, y) over index scalars.
func (b *Builder) Min(x, y *Node) *Node { return b.indexBinaryOp(OpMin, x, y) }

// Dim reads the dimension of the given axis of x as an index value. For static
// axes it folds to a constant.
func (b *Builder) Dim(x *Node, axis int) *Node {
	b.checkNodes("Dim", x)
	if axis < 0 || axis >= x.Shape().Rank() {
		exceptions.Panicf("Dim: axis %d out of range for rank %d", axis, x.Shape().Rank())
	}
	if !x.Shape().IsDynamicDim(axis) {
		return b.ConstantIndex(int64(x.Shape().Dim(axis)))
	}
	n := b.newNode(OpDim, shapes.Index(), x)
	n.data = axis
	return n
}

// Axis returns the axis attribute of an OpDim or OpSort node.
func (n *Node) Axis() int {
	if n.opType != OpDim && n.opType != OpSort {
		exceptions.Panicf("Axis called on %s node", n.opType)
	}
	if n.opType == OpSort {
		return n.data.(sortData).axis
	}
	return n.data.(int)
}

// WorkerID reads the id of the executing worker along one grid dimension. It
// only takes a concrete value at execution time.
func (b *Builder) WorkerID(gridDim int) *Node {
	n := b.newNode(OpWorkerID, shapes.Index())
	n.data = gridDim
	return n
}

// WorkerCount reads the total number of workers along one grid dimension.
func (b *Builder) WorkerCount(gridDim int) *Node {
	n := b.newNode(OpWorkerCount, shapes.Index())
	n.data = gridDim
	return n
}

// GridDim returns the worker-grid dimension of an OpWorkerID or OpWorkerCount node.
func (n *Node) GridDim() int {
	if n.opType != OpWorkerID && n.opType != OpWorkerCount {
		exceptions.Panicf("GridDim called on %s node", n.opType)
	}
	return n.data.(int)
}

type forData struct {
	body *Block
}

// For creates a sequential loop over [lb, ub) with the given step.
//
// iterArgs are the loop-carried values: the loop produces one result per entry,
// and the body receives the current iteration's value for each. The body is
// built by bodyFn, which is given the induction value and the carried values,
// and must terminate the body with Yield (unless there are no carried values).
//
// If bodyFn returns an error the loop body is left without a terminator and the
// error is returned; callers are expected to roll the builder back (see Mark).
func (b *Builder) For(lb, ub, step *Node, iterArgs []*Node, bodyFn func(iv *Node, args []*Node) error) (*Node, error) {
	b.checkNodes("For", append([]*Node{lb, ub, step}, iterArgs...)...)
	for _, bound := range []*Node{lb, ub, step} {
		if !bound.Shape().IsIndex() {
			exceptions.Panicf("For: bounds must be index scalars, got %s", bound.Shape())
		}
	}
	node := b.newNode(OpFor, shapes.Invalid(), append([]*Node{lb, ub, step}, iterArgs...)...)

	body := &Block{fn: b.fn, owner: node}
	node.data = &forData{body: body}
	iv := newBlockArg(body, shapes.Index())
	args := make([]*Node, len(iterArgs))
	for idx, iterArg := range iterArgs {
		if iterArg.Shape().IsBuffer {
			exceptions.Panicf("For: loop-carried value #%d is a buffer; buffers are referenced directly", idx)
		}
		args[idx] = newBlockArg(body, iterArg.Shape())
	}
	node.outputs = make([]*Node, len(iterArgs))
	for idx, iterArg := range iterArgs {
		node.outputs[idx] = &Node{opType: OpFor, shape: iterArg.Shape(), selectOf: node, selectIdx: idx}
	}

	b.pushBlock(body)
	err := bodyFn(iv, args)
	b.popBlock()
	if err != nil {
		return nil, err
	}
	if len(iterArgs) > 0 {
		if len(body.nodes) == 0 || xslices.Last(body.nodes).opType != OpYield ||
			len(xslices.Last(body.nodes).inputs) != len(iterArgs) {
			exceptions.Panicf("For: body must yield exactly %d values", len(iterArgs))
		}
	}
	return node, nil
}

// Body returns the body block of an OpFor node.
func (n *Node) Body() *Block {
	if n.opType != OpFor {
		exceptions.Panicf("Body called on %s node", n.opType)
	}
	return n.data.(*forData).body
}

// LoopBoundsOperands returns the (lb, ub, step) operands of an OpFor node.
func (n *Node) LoopBoundsOperands() (lb, ub, step *Node) {
	if n.opType != OpFor {
		exceptions.Panicf("LoopBoundsOperands called on %s node", n.opType)
	}
	return n.inputs[0], n.inputs[1], n.inputs[2]
}

// LoopIterOperands returns the initial loop-carried values of an OpFor node.
func (n *Node) LoopIterOperands() []*Node {
	if n.opType != OpFor {
		exceptions.Panicf("LoopIterOperands called on %s node", n.opType)
	}
	return n.inputs[3:]
}

// Yield terminates the current loop body, forwarding the per-iteration values.
func (b *Builder) Yield(values ...*Node) *Node {
	if b.currentBlock().owner == nil {
		exceptions.Panicf("Yield outside of a loop body")
	}
	return b.newNode(OpYield, shapes.Invalid(), values...)
}

// Return terminates the function, recording its results.
func (b *Builder) Return(values ...*Node) *Node {
	if b.currentBlock().owner != nil {
		exceptions.Panicf("Return inside a loop body")
	}
	n := b.newNode(OpReturn, shapes.Invalid(), values...)
	b.fn.returns = values
	return n
}

type sliceData struct {
	offsets, sizes, strides []Extent
}

func checkSliceSpec(opName string, rank int, offsets, sizes, strides []Extent) {
	if len(offsets) != rank || len(sizes) != rank || len(strides) != rank {
		exceptions.Panicf("%s: expected %d offsets/sizes/strides, got %d/%d/%d",
			opName, rank, len(offsets), len(sizes), len(strides))
	}
}

// ExtractSlice extracts the sub-region of tensor x described by the given
// offsets, sizes and strides, one per axis. Static sizes become static result
// dimensions; dynamic sizes become dynamic dimensions.
func (b *Builder) ExtractSlice(x *Node, offsets, sizes, strides []Extent) *Node {
	b.checkNodes("ExtractSlice", x)
	if x.Shape().IsBuffer {
		exceptions.Panicf("ExtractSlice: cannot slice buffer %s", x.Shape())
	}
	rank := x.Shape().Rank()
	checkSliceSpec("ExtractSlice", rank, offsets, sizes, strides)
	dims := make([]int, rank)
	for axis, size := range sizes {
		if size.IsStatic() {
			dims[axis] = int(size.Static())
		} else {
			dims[axis] = shapes.DynamicDim
		}
	}
	n := b.newNode(OpExtractSlice, shapes.Make(x.Shape().DType, dims...), x)
	n.data = sliceData{offsets: offsets, sizes: sizes, strides: strides}
	return n
}

// InsertSlice inserts tensor src into the sub-region of tensor dest described
// by the given offsets, sizes and strides, producing the updated dest.
func (b *Builder) InsertSlice(src, dest *Node, offsets, sizes, strides []Extent) *Node {
	b.checkNodes("InsertSlice", src, dest)
	if dest.Shape().IsBuffer {
		exceptions.Panicf("InsertSlice: cannot insert into buffer %s; buffer ops write in place", dest.Shape())
	}
	if src.Shape().DType != dest.Shape().DType {
		exceptions.Panicf("InsertSlice: dtype mismatch, %s into %s", src.Shape(), dest.Shape())
	}
	checkSliceSpec("InsertSlice", dest.Shape().Rank(), offsets, sizes, strides)
	n := b.newNode(OpInsertSlice, dest.Shape().Clone(), src, dest)
	n.data = sliceData{offsets: offsets, sizes: sizes, strides: strides}
	return n
}

// SliceSpec returns the offsets, sizes and strides of an OpExtractSlice or
// OpInsertSlice node.
func (n *Node) SliceSpec() (offsets, sizes, strides []Extent) {
	if n.opType != OpExtractSlice && n.opType != OpInsertSlice {
		exceptions.Panicf("SliceSpec called on %s node", n.opType)
	}
	data := n.data.(sliceData)
	return data.offsets, data.sizes, data.strides
}

// DType is a short cut for the element type of the node's result shape.
func (n *Node) DType() dtypes.DType { return n.shape.DType }
