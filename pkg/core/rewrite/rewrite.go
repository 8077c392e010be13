// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package rewrite applies tiling patterns to whole functions under a greedy
// rewrite loop, with transformation markers supporting staged, idempotent
// multi-pass application.
package rewrite

import (
	"github.com/gomlx/exceptions"
	"k8s.io/klog/v2"

	"github.com/tilir/tilir/pkg/core/ir"
	"github.com/tilir/tilir/pkg/core/tiling"
	"github.com/tilir/tilir/pkg/support/sets"
)

// MarkerAttr is the node attribute carrying the transformation marker.
const MarkerAttr = "transform.marker"

// Filter gates a pattern on transformation markers and re-marks the produced
// operation, so staged pipelines can hand operations from one pass to the next.
type Filter struct {
	// MatchMarkers are the marker values the pattern applies to. When empty,
	// the pattern applies only to unmarked operations.
	MatchMarkers []string

	// ReplaceMarker is set on the produced operation, handing it to the next
	// stage. An empty marker still counts as marked, so a pattern never
	// re-matches its own output.
	ReplaceMarker string
}

// Check returns whether the operation passes the filter.
func (f Filter) Check(n *ir.Node) bool {
	marker, found := n.GetAttr(MarkerAttr)
	if len(f.MatchMarkers) == 0 {
		return !found
	}
	if !found {
		return false
	}
	for _, match := range f.MatchMarkers {
		if marker == match {
			return true
		}
	}
	return false
}

// Mark re-marks the produced operation.
func (f Filter) Mark(n *ir.Node) {
	n.SetAttr(MarkerAttr, f.ReplaceMarker)
}

// Pattern is one rewrite: it either applies to the operation, changing the
// function, or leaves it untouched.
type Pattern interface {
	MatchAndRewrite(b *ir.Builder, op *ir.Node) bool
}

// TilingPattern tiles operations of one kind with fixed options, gated by a
// marker filter.
type TilingPattern struct {
	opType ir.OpType
	opts   tiling.Options
	filter Filter
}

// NewTilingPattern returns a tiling pattern for operations of the given kind.
func NewTilingPattern(opType ir.OpType, opts tiling.Options, filter Filter) *TilingPattern {
	return &TilingPattern{opType: opType, opts: opts, filter: filter}
}

// MatchAndRewrite tiles the operation if it matches. On success the original
// operation is replaced by the stitched results (or erased, for purely
// effectful operations) and the produced operation is re-marked. A failed or
// no-op tiling leaves the operation untouched.
func (p *TilingPattern) MatchAndRewrite(b *ir.Builder, op *ir.Node) bool {
	if op.Type() != p.opType || op.Block() == nil {
		return false
	}
	if !p.filter.Check(op) {
		return false
	}

	// The replacement IR is inserted before the operation, so every later use
	// still follows its definitions in program order.
	b.SetInsertionPoint(op)
	defer b.ClearInsertionPoint()

	res, err := tiling.Tile(b, op, p.opts)
	if err != nil {
		klog.V(1).Infof("tiling pattern did not apply to %s: %v", op.Type(), err)
		return false
	}
	if res.Op == nil {
		return false
	}
	p.filter.Mark(res.Op)
	if res.Op == op {
		// No-op tiling (e.g. all tile sizes 0): only the marker advanced.
		return true
	}
	if len(res.Results) > 0 {
		b.ReplaceAllUses(op, res.Results[0])
	}
	b.EraseNode(op)
	klog.V(1).Infof("tiled %s into %d loops", p.opType, len(res.Loops))
	return true
}

const maxSweeps = 10

// Apply greedily applies the patterns over the whole function until a sweep
// changes nothing (or maxSweeps is hit). It returns the number of rewrites
// performed. Builder-usage panics from pattern bodies are converted to errors.
func Apply(b *ir.Builder, patterns ...Pattern) (rewrites int, err error) {
	err = exceptions.TryCatch[error](func() {
		for sweep := 0; sweep < maxSweeps; sweep++ {
			rewritten := sets.Make[*ir.Node]()
			var worklist []*ir.Node
			b.Func().Walk(func(n *ir.Node) {
				worklist = append(worklist, n)
			})
			for _, n := range worklist {
				if n.Block() == nil || rewritten.Has(n) {
					// Erased or already rewritten during this sweep.
					continue
				}
				for _, pattern := range patterns {
					if pattern.MatchAndRewrite(b, n) {
						rewritten.Insert(n)
						rewrites++
						break
					}
				}
			}
			if len(rewritten) == 0 {
				return
			}
		}
	})
	return
}
