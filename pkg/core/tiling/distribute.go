// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package tiling

import (
	"github.com/pkg/errors"

	"github.com/tilir/tilir/pkg/core/ir"
)

// assignProcInfo maps each dimension that is both parallel and actually tiled
// to a worker assignment, in dimension order. Dimensions that are untiled or
// reductions consume no ProcInfo. The returned slice is consumed front-to-back
// by the loop nest builder, through an index cursor.
func assignProcInfo(b *ir.Builder, distribution *DistributionOptions,
	sizes []ir.Extent, kinds []ir.IteratorKind, bounds []ir.Range) ([]ProcInfo, error) {
	if distribution == nil {
		return nil, nil
	}
	var distributedRanges []ir.Range
	for dim := range sizes {
		if sizes[dim].IsStaticZero() {
			continue
		}
		if kinds[dim] != ir.IteratorParallel {
			continue
		}
		distributedRanges = append(distributedRanges, bounds[dim])
	}
	procInfo := distribution.ProcInfo(b, distributedRanges)
	if len(procInfo) != len(distributedRanges) {
		return nil, errors.Wrapf(ErrUnsupportedOptions,
			"distribution provided %d worker assignments for %d distributed loops",
			len(procInfo), len(distributedRanges))
	}
	return procInfo, nil
}

// cyclicDistribution rewrites a loop's lower bound and step for fixed-stride
// worker assignment: lb' = lb + workerID*step, step' = step*workerCount. The
// upper bound is unchanged.
func cyclicDistribution(b *ir.Builder, info ProcInfo, lb, step ir.Extent) (newLb, newStep ir.Extent) {
	newLb = ir.AddExtents(b, lb, ir.MulExtents(b, ir.ValueExtent(info.WorkerID), step))
	newStep = ir.MulExtents(b, step, ir.ValueExtent(info.WorkerCount))
	return newLb, newStep
}

// WorkerGridProcInfo is a ready-made ProcInfoFn assigning the worker grid to
// the distributed loops: grid dimension 0 to the innermost distributed loop,
// and so on outwards, reading the assignments from ir.WorkerID/ir.WorkerCount
// operations.
func WorkerGridProcInfo(b *ir.Builder, distributedRanges []ir.Range) []ProcInfo {
	numParallelDims := len(distributedRanges)
	procInfo := make([]ProcInfo, numParallelDims)
	for dim := 0; dim < numParallelDims; dim++ {
		procInfo[numParallelDims-dim-1] = ProcInfo{
			WorkerID:    b.WorkerID(dim),
			WorkerCount: b.WorkerCount(dim),
		}
	}
	return procInfo
}
