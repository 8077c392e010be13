// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package tiling rewrites an operation exposing the ir.Tileable capability
// into an equivalent nest of sequential loops, each processing one tile of the
// operation's iteration space, with partial results stitched back into the
// accumulator outputs.
//
// See Tile for the transformation and Options for its configuration. The
// transformation is single-threaded and synchronous: it constructs a
// description of a future computation, it does not execute data. The only
// concurrency concept modeled is cyclic distribution of tiled parallel
// dimensions across a fixed worker grid.
package tiling

import (
	"github.com/pkg/errors"

	"github.com/tilir/tilir/pkg/core/ir"
)

// LoopForm selects the kind of loops generated by the transformation.
// Only SequentialLoops is supported.
type LoopForm int

const (
	// SequentialLoops generates plain sequential ir.For loops.
	SequentialLoops LoopForm = iota

	// ParallelLoops and AffineLoops are recognized but unsupported forms.
	ParallelLoops
	AffineLoops
)

// String implements fmt.Stringer.
func (f LoopForm) String() string {
	switch f {
	case SequentialLoops:
		return "sequential"
	case ParallelLoops:
		return "parallel"
	case AffineLoops:
		return "affine"
	}
	return "unknown"
}

// DistributionMethod selects how a tiled parallel dimension is distributed
// across workers. Only Cyclic is supported.
type DistributionMethod int

const (
	// Cyclic is fixed-stride worker assignment: each worker starts at its id
	// and advances by the worker count.
	Cyclic DistributionMethod = iota

	// CyclicNumWorkersGeIterations and CyclicNumWorkersEqIterations are
	// recognized but unsupported specializations.
	CyclicNumWorkersGeIterations
	CyclicNumWorkersEqIterations
)

// String implements fmt.Stringer.
func (m DistributionMethod) String() string {
	switch m {
	case Cyclic:
		return "cyclic"
	case CyclicNumWorkersGeIterations:
		return "cyclic-workers-ge-iterations"
	case CyclicNumWorkersEqIterations:
		return "cyclic-workers-eq-iterations"
	}
	return "unknown"
}

// ProcInfo is the worker assignment of one distributed loop: the values of the
// executing worker's id and of the total worker count.
type ProcInfo struct {
	WorkerID    *ir.Node
	WorkerCount *ir.Node
}

// ProcInfoFn builds one ProcInfo per distributed loop, given the bounds of the
// loops being distributed (the tiled parallel dimensions, in dimension order).
type ProcInfoFn func(b *ir.Builder, distributedRanges []ir.Range) []ProcInfo

// DistributionOptions configures distribution of tiled parallel loops across a
// worker grid.
type DistributionOptions struct {
	// Methods is the per-distributed-dimension method. Every entry must be
	// Cyclic; extra entries beyond the number of distributed dimensions are
	// ignored.
	Methods []DistributionMethod

	// ProcInfo provides the worker assignments.
	ProcInfo ProcInfoFn
}

// TileSizesFn computes the tile sizes for an operation, one per iteration-space
// dimension. A static 0 means "do not tile this dimension". Missing trailing
// entries are treated as 0.
type TileSizesFn func(b *ir.Builder, op *ir.Node) []ir.Extent

// PaddingValueFn would compute the value used to pad partial tiles to the
// nominal tile size. Padding is unsupported: setting it fails validation.
type PaddingValueFn func(b *ir.Builder, op *ir.Node) *ir.Node

// Options configures the tiling transformation. The zero value is not usable:
// at least TileSizes must be set, e.g. with WithTileSizes.
type Options struct {
	// TileSizes computes the per-dimension tile sizes.
	TileSizes TileSizesFn

	// Interchange would reorder loop dimensions. Unsupported: must be empty.
	Interchange []int

	// PaddingValue would enable tile padding. Unsupported: must be nil.
	PaddingValue PaddingValueFn

	// LoopForm must be SequentialLoops.
	LoopForm LoopForm

	// Distribution, if set, distributes tiled parallel loops across workers.
	Distribution *DistributionOptions
}

// WithTileSizes returns a copy of the options using the given static tile
// sizes.
func (o Options) WithTileSizes(sizes ...int64) Options {
	o.TileSizes = func(b *ir.Builder, op *ir.Node) []ir.Extent {
		return ir.StaticExtents(sizes...)
	}
	return o
}

// WithTileSizesFn returns a copy of the options using the given tile size
// computation function.
func (o Options) WithTileSizesFn(fn TileSizesFn) Options {
	o.TileSizes = fn
	return o
}

// WithDistribution returns a copy of the options with the given distribution
// configuration.
func (o Options) WithDistribution(distribution DistributionOptions) Options {
	o.Distribution = &distribution
	return o
}

// ValidateOptions rejects unsupported configuration combinations before any IR
// is built. All rejections are ErrUnsupportedOptions.
func ValidateOptions(op *ir.Node, opts Options) error {
	if opts.TileSizes == nil {
		return errors.Wrapf(ErrUnsupportedOptions, "%s: no tile size computation function", op.Type())
	}
	if len(opts.Interchange) > 0 {
		return errors.Wrapf(ErrUnsupportedOptions, "%s: unsupported interchange during tiling", op.Type())
	}
	if opts.PaddingValue != nil {
		return errors.Wrapf(ErrUnsupportedOptions, "%s: unsupported tile + pad option", op.Type())
	}
	if opts.LoopForm != SequentialLoops {
		return errors.Wrapf(ErrUnsupportedOptions, "%s: only tiling with sequential loops is supported", op.Type())
	}
	if opts.Distribution != nil {
		for _, method := range opts.Distribution.Methods {
			if method != Cyclic {
				return errors.Wrapf(ErrUnsupportedOptions, "%s: only cyclic distribution is allowed", op.Type())
			}
		}
	}
	return nil
}
