// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

// IteratorKind classifies one dimension of an operation's iteration space.
type IteratorKind int

//go:generate go tool enumer -type=IteratorKind -trimprefix=Iterator -output=gen_iteratorkind_enumer.go tileable.go

const (
	// IteratorParallel dimensions can be freely split into tiles.
	IteratorParallel IteratorKind = iota

	// IteratorReduction dimensions carry a dependency across iterations and are
	// never split by the tiling transformation.
	IteratorReduction
)

// Range describes the full extent of one iteration-space dimension:
// [Offset, Size) advancing by Stride. Size is the exclusive upper bound; with a
// zero offset it equals the dimension's extent.
type Range struct {
	Offset, Size, Stride Extent
}

// Tileable is the capability an operation exposes to be rewritten by the tiling
// transformation: it reports its iteration space and builds the sub-operation
// for an arbitrary tile of it.
//
// See pkg/core/tiling.Tile for the transformation consuming this capability.
type Tileable interface {
	// Op returns the operation node exposing the capability.
	Op() *Node

	// IteratorKinds returns the kind of each iteration-space dimension, in order.
	IteratorKinds() []IteratorKind

	// LoopBounds returns one Range per iteration-space dimension, in the same
	// order as IteratorKinds.
	LoopBounds(b *Builder) []Range

	// Outputs returns the accumulator operands: tile results are progressively
	// composed into them.
	Outputs() []*Node

	// BuildTile builds the sub-operation processing the tile at the given
	// per-dimension offsets and sizes, reading from and writing to the given
	// outputs. It returns the sub-operation and, for each of its results, the
	// per-dimension offset locating the tile's contribution within the full
	// result. It returns an error if the sub-operation cannot be built.
	BuildTile(b *Builder, outputs []*Node, offsets, sizes []Extent) (*Node, [][]Extent, error)
}

// AsTileable returns the Tileable capability of the node, dispatching on the
// operation kind. The second result is false for operations that cannot be
// tiled.
func AsTileable(n *Node) (Tileable, bool) {
	switch n.Type() {
	case OpScale:
		return scaleTileable{n}, true
	case OpScatter:
		return scatterTileable{n}, true
	case OpSort:
		return sortTileable{n}, true
	default:
		return nil, false
	}
}

// shapeLoopBounds builds [0, dim) unit-stride ranges for every axis of the
// node's shape. Dynamic axes (e.g. when re-tiling a tile) read the dimension
// through an OpDim value.
func shapeLoopBounds(b *Builder, of *Node) []Range {
	bounds := make([]Range, of.Shape().Rank())
	for axis := range bounds {
		bounds[axis] = Range{
			Offset: StaticExtent(0),
			Size:   b.DimExtent(of, axis),
			Stride: StaticExtent(1),
		}
	}
	return bounds
}
