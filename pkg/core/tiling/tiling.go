// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/tilir/tilir/pkg/core/ir"
	"github.com/tilir/tilir/pkg/support/xslices"
)

// Error taxonomy of the transformation. Every failure is detected
// synchronously and wraps one of these sentinels (check with errors.Is); the
// operation being tiled is left unmodified.
var (
	// ErrUnsupportedOptions: the configuration requests interchange, padding,
	// a non-sequential loop form or a non-cyclic distribution.
	ErrUnsupportedOptions = errors.New("unsupported tiling options")

	// ErrUnsupportedIteratorTiling: a nonzero tile size was requested for a
	// reduction dimension.
	ErrUnsupportedIteratorTiling = errors.New("unsupported tiling of non-parallel loop iterator")

	// ErrMalformedBounds: a dimension being tiled has a stride other than 1.
	ErrMalformedBounds = errors.New("malformed loop bounds")

	// ErrTileConstruction: the operation's own tile builder could not produce a
	// sub-operation.
	ErrTileConstruction = errors.New("failed to build tiled implementation")
)

// TiledOp is the result of tiling one operation.
type TiledOp struct {
	// Op is the tiled operation: the innermost sub-operation processing one
	// tile, or the original operation when tiling was a no-op.
	Op *ir.Node

	// Loops are the generated loops, outermost first. Loops[0] corresponds to
	// the first tiled dimension in iteration order.
	Loops []*ir.Node

	// Results are the stitched-together values replacing the original
	// operation's results. Empty for buffer (purely effectful) operations and
	// for no-op tilings.
	Results []*ir.Node
}

// Tile rewrites op into a nest of sequential loops, each processing one tile of
// op's iteration space, per the given options.
//
// If op does not expose the ir.Tileable capability, Tile succeeds with the
// operation unchanged. If every resolved tile size is 0, Tile succeeds with the
// operation unchanged and an empty loop list, so repeated application by an
// external driver is a no-op.
//
// On failure the builder is rolled back to its state at entry: the invocation
// is all-or-nothing.
func Tile(b *ir.Builder, op *ir.Node, opts Options) (TiledOp, error) {
	if err := ValidateOptions(op, opts); err != nil {
		return TiledOp{}, err
	}
	tileable, ok := ir.AsTileable(op)
	if !ok {
		return TiledOp{Op: op}, nil
	}
	mark := b.Mark()
	tiled, err := tileOperation(b, tileable, opts)
	if err != nil {
		b.ResetTo(mark)
		return TiledOp{}, err
	}
	return tiled, nil
}

// tileOperation resolves tile sizes, iterator kinds and loop bounds, assigns
// workers to the distributed dimensions and starts the recursive nest build.
func tileOperation(b *ir.Builder, tileable ir.Tileable, opts Options) (TiledOp, error) {
	op := tileable.Op()
	kinds := tileable.IteratorKinds()

	// Resolve tile sizes to the operation's rank: truncate extras, pad missing
	// trailing entries with 0 (untiled).
	sizes := opts.TileSizes(b, op)
	if len(sizes) > len(kinds) {
		sizes = sizes[:len(kinds)]
	}
	for len(sizes) < len(kinds) {
		sizes = append(sizes, ir.StaticExtent(0))
	}

	// This transformation never splits reduction dimensions.
	allUntiled := true
	for dim, kind := range kinds {
		if !sizes[dim].IsStaticZero() {
			allUntiled = false
			if kind != ir.IteratorParallel {
				return TiledOp{}, errors.Wrapf(ErrUnsupportedIteratorTiling,
					"%s: dimension %d is %s with tile size %s", op.Type(), dim, kind, sizes[dim])
			}
		}
	}

	// Trivial early exit with all tile sizes zero: a valid no-op.
	if allUntiled {
		klog.V(1).Infof("tiling %s: all tile sizes are 0, nothing to do", op.Type())
		return TiledOp{Op: op}, nil
	}

	bounds := tileable.LoopBounds(b)
	if len(bounds) != len(kinds) {
		return TiledOp{}, errors.Wrapf(ErrMalformedBounds,
			"%s: %d loop bounds for %d iterator kinds", op.Type(), len(bounds), len(kinds))
	}

	procInfo, err := assignProcInfo(b, opts.Distribution, sizes, kinds, bounds)
	if err != nil {
		return TiledOp{}, err
	}
	klog.V(1).Infof("tiling %s: tile sizes %v, %d distributed loops", op.Type(), sizes, len(procInfo))
	return tileLoopNest(b, tileable, tileable.Outputs(), sizes, kinds, bounds, 0, nil, procInfo, 0)
}

// tileLoopNest descends one iteration-space dimension per call, emitting a
// sequential loop for each tiled dimension; at the innermost depth it invokes
// the operation's tile builder and stitches the tile's results into the
// accumulator outputs.
//
// The recursion is purely functional: offsets and sizes are copied, never
// mutated in place, and procInfo is consumed through the procCursor index.
// Failure at any depth propagates without emitting the current level's loop
// terminator; Tile rolls the builder back.
func tileLoopNest(b *ir.Builder, tileable ir.Tileable, outputs []*ir.Node,
	sizes []ir.Extent, kinds []ir.IteratorKind, bounds []ir.Range,
	depth int, offsets []ir.Extent, procInfo []ProcInfo, procCursor int) (TiledOp, error) {
	op := tileable.Op()

	// Innermost depth: build the tile and stitch its results.
	if depth == len(sizes) {
		klog.V(2).Infof("tiling %s: leaf tile at offsets %v sizes %v", op.Type(), offsets, sizes)
		tiled, resultOffsets, err := tileable.BuildTile(b, outputs, offsets, sizes)
		if err != nil {
			return TiledOp{}, errors.Wrapf(ErrTileConstruction, "%s: %v", op.Type(), err)
		}
		results := tiled.Results()
		if len(resultOffsets) != len(results) {
			return TiledOp{}, errors.Wrapf(ErrTileConstruction,
				"%s: capability reported %d result offsets for %d results",
				op.Type(), len(resultOffsets), len(results))
		}
		ret := TiledOp{Op: tiled}
		for idx, result := range results {
			// The insert is sized to the produced extents, not the nominal tile
			// size, so boundary tiles stitch correctly.
			rank := result.Shape().Rank()
			resultSizes := make([]ir.Extent, rank)
			for axis := range resultSizes {
				resultSizes[axis] = b.DimExtent(result, axis)
			}
			insert := b.InsertSlice(result, outputs[idx], resultOffsets[idx], resultSizes, ir.UnitStrides(rank))
			ret.Results = append(ret.Results, insert)
		}
		return ret, nil
	}

	// Untiled dimension: no loop; the dimension's whole extent becomes the tile.
	if sizes[depth].IsStaticZero() {
		if !bounds[depth].Offset.IsStaticZero() {
			return TiledOp{}, errors.Wrapf(ErrMalformedBounds,
				"%s: dimension %d: untiled loop bounds must have a zero lower bound", op.Type(), depth)
		}
		newOffsets := append(xslices.Copy(offsets), ir.StaticExtent(0))
		newSizes := xslices.Copy(sizes)
		newSizes[depth] = bounds[depth].Size
		return tileLoopNest(b, tileable, outputs, newSizes, kinds, bounds, depth+1, newOffsets, procInfo, procCursor)
	}

	// Tiled dimension: emit one sequential loop over it.
	if !bounds[depth].Stride.IsStaticOne() {
		return TiledOp{}, errors.Wrapf(ErrMalformedBounds,
			"%s: dimension %d: expected stride to be 1, got %s", op.Type(), depth, bounds[depth].Stride)
	}
	lb, ub, step := bounds[depth].Offset, bounds[depth].Size, sizes[depth]
	if procCursor < len(procInfo) && kinds[depth] == ir.IteratorParallel {
		lb, step = cyclicDistribution(b, procInfo[procCursor], lb, step)
		procCursor++
	}

	// Value-semantics operations thread the outputs as loop-carried values;
	// buffer operations reference them directly.
	isBufferTiling := op.NumResults() == 0
	var iterArgs []*ir.Node
	if !isBufferTiling {
		iterArgs = outputs
	}
	var inner TiledOp
	forNode, err := b.For(lb.Value(b), ub.Value(b), step.Value(b), iterArgs,
		func(iv *ir.Node, args []*ir.Node) error {
			newOffsets := append(xslices.Copy(offsets), ir.ValueExtent(iv))
			// Clamp the tile to min(tileSize, ub-iv): the final tile of a
			// dimension the tile size does not divide is smaller.
			newSizes := xslices.Copy(sizes)
			newSizes[depth] = ir.MinExtents(b, sizes[depth],
				ir.SubExtents(b, ub, ir.ValueExtent(iv)))
			bodyOutputs := outputs
			if !isBufferTiling {
				bodyOutputs = args
			}
			var err error
			inner, err = tileLoopNest(b, tileable, bodyOutputs, newSizes, kinds, bounds,
				depth+1, newOffsets, procInfo, procCursor)
			if err != nil {
				return err
			}
			b.Yield(inner.Results...)
			return nil
		})
	if err != nil {
		return TiledOp{}, err
	}

	// Keep the ordered loop list outermost-first, and replace the accumulated
	// results with the loop's final results.
	inner.Loops = append([]*ir.Node{forNode}, inner.Loops...)
	if !isBufferTiling {
		inner.Results = forNode.Results()
	}
	return inner, nil
}
