// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

// OpType enumerates every operation kind of the IR.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=Op -output=gen_optype_enumer.go optype.go

const (
	OpInvalid OpType = iota

	// OpParameter is an input to the function: a tensor, a buffer or an index scalar.
	OpParameter

	// OpConstant is an index (Int64 scalar) constant.
	OpConstant

	// OpEmpty allocates an uninitialized tensor of a given shape, used as the
	// destination operand of value-semantics operations.
	OpEmpty

	// Index arithmetic over Int64 scalars.
	OpAdd
	OpSub
	OpMul
	OpMin

	// OpDim reads the dimension of one axis of a tensor as an index value.
	OpDim

	// OpWorkerID and OpWorkerCount read the id / total count of the worker grid
	// along one grid dimension. They only take concrete values at execution time.
	OpWorkerID
	OpWorkerCount

	// OpFor is a sequential loop [lb, ub) with the given step. It owns a body
	// block whose arguments are the induction value followed by one argument per
	// loop-carried value, and it produces one result per loop-carried value.
	OpFor

	// OpYield terminates a loop body, forwarding the per-iteration values.
	OpYield

	// OpReturn terminates the function entry block.
	OpReturn

	// OpExtractSlice extracts a sub-region of a tensor.
	OpExtractSlice

	// OpInsertSlice inserts a tensor into a sub-region of a larger tensor,
	// producing the updated tensor.
	OpInsertSlice

	// Domain operations. They expose the Tileable capability, see tileable.go.
	OpScale
	OpScatter
	OpSort
)
