// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package interp is a reference interpreter for ir.Func: it walks the blocks in
// program order evaluating one node at a time. It exists to pin down the
// semantics of the IR -- in particular that transformed functions compute the
// same values as the originals -- and makes no attempt at being fast.
package interp

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/tilir/tilir/pkg/core/ir"
	"github.com/tilir/tilir/pkg/core/shapes"
)

// Option configures one execution, see Run.
type Option func(*config)

type config struct {
	workerIDs    map[int]int64
	workerCounts map[int]int64
}

// WithWorker binds the worker grid along one grid dimension: the executing
// worker's id and the total worker count read by ir.WorkerID/ir.WorkerCount.
// Unbound grid dimensions behave as a single worker (id 0, count 1).
func WithWorker(gridDim int, id, count int64) Option {
	return func(c *config) {
		c.workerIDs[gridDim] = id
		c.workerCounts[gridDim] = count
	}
}

// Run executes the function with the given parameter values, keyed by
// parameter name, and returns the values of its returns.
//
// Buffer parameters are written in place: the caller observes the effects on
// the tensors it passed in. Index-shaped parameters are scalar tensors.
func Run(f *ir.Func, params map[string]*Tensor, options ...Option) ([]*Tensor, error) {
	cfg := &config{workerIDs: make(map[int]int64), workerCounts: make(map[int]int64)}
	for _, option := range options {
		option(cfg)
	}
	m := &machine{cfg: cfg, params: params, env: make(map[*ir.Node]any)}
	if err := m.runBlock(f.Entry()); err != nil {
		return nil, err
	}
	results := make([]*Tensor, 0, len(f.Returns()))
	for _, r := range f.Returns() {
		t, err := m.resultTensor(r)
		if err != nil {
			return nil, err
		}
		results = append(results, t)
	}
	return results, nil
}

// resultTensor converts a returned value to a tensor, wrapping index scalars.
func (m *machine) resultTensor(n *ir.Node) (*Tensor, error) {
	value, found := m.env[n]
	if !found {
		return nil, errors.Errorf("interp: returned %s value was not evaluated", n.Type())
	}
	if index, ok := value.(int64); ok {
		return NewTensor(shapes.Index(), []float64{float64(index)}), nil
	}
	return value.(*Tensor), nil
}

// machine holds the execution state: the value environment mapping nodes to
// either *Tensor or int64 (index scalars).
type machine struct {
	cfg    *config
	params map[string]*Tensor
	env    map[*ir.Node]any
}

func (m *machine) runBlock(blk *ir.Block) error {
	for _, n := range blk.Nodes() {
		if err := m.evalNode(n); err != nil {
			return err
		}
	}
	return nil
}

func (m *machine) evalNode(n *ir.Node) error {
	switch n.Type() {
	case ir.OpYield, ir.OpReturn:
		// Handled by the enclosing loop / by Run.
		return nil
	case ir.OpParameter:
		return m.evalParameter(n)
	case ir.OpConstant:
		m.env[n] = n.IntValue()
	case ir.OpEmpty:
		m.env[n] = Zeros(n.Shape())
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpMin:
		return m.evalIndexBinary(n)
	case ir.OpDim:
		t, err := m.tensor(n.Inputs()[0])
		if err != nil {
			return err
		}
		m.env[n] = int64(t.Shape().Dim(n.Axis()))
	case ir.OpWorkerID:
		m.env[n] = m.gridValue(m.cfg.workerIDs, n.GridDim(), 0)
	case ir.OpWorkerCount:
		m.env[n] = m.gridValue(m.cfg.workerCounts, n.GridDim(), 1)
	case ir.OpFor:
		return m.evalFor(n)
	case ir.OpExtractSlice:
		return m.evalExtractSlice(n)
	case ir.OpInsertSlice:
		return m.evalInsertSlice(n)
	case ir.OpScale:
		return m.evalScale(n)
	case ir.OpScatter:
		return m.evalScatter(n)
	case ir.OpSort:
		return m.evalSort(n)
	default:
		return errors.Errorf("interp: unsupported operation %s", n.Type())
	}
	return nil
}

func (m *machine) evalParameter(n *ir.Node) error {
	name := n.ParamName()
	t, found := m.params[name]
	if !found {
		return errors.Errorf("interp: no value fed for parameter %q", name)
	}
	if n.Shape().IsIndex() {
		m.env[n] = int64(t.Data()[0])
		return nil
	}
	m.env[n] = t
	return nil
}

func (m *machine) evalIndexBinary(n *ir.Node) error {
	x, err := m.index(n.Inputs()[0])
	if err != nil {
		return err
	}
	y, err := m.index(n.Inputs()[1])
	if err != nil {
		return err
	}
	switch n.Type() {
	case ir.OpAdd:
		m.env[n] = x + y
	case ir.OpSub:
		m.env[n] = x - y
	case ir.OpMul:
		m.env[n] = x * y
	case ir.OpMin:
		m.env[n] = min(x, y)
	}
	return nil
}

func (m *machine) evalFor(n *ir.Node) error {
	lbN, ubN, stepN := n.LoopBoundsOperands()
	lb, err := m.index(lbN)
	if err != nil {
		return err
	}
	ub, err := m.index(ubN)
	if err != nil {
		return err
	}
	step, err := m.index(stepN)
	if err != nil {
		return err
	}
	if step <= 0 {
		return errors.Errorf("interp: loop step must be positive, got %d", step)
	}

	body := n.Body()
	carried := make([]any, len(n.LoopIterOperands()))
	for idx, init := range n.LoopIterOperands() {
		value, found := m.env[init]
		if !found {
			return errors.Errorf("interp: loop-carried init #%d not evaluated", idx)
		}
		carried[idx] = value
	}
	for iv := lb; iv < ub; iv += step {
		m.env[body.Args()[0]] = iv
		for idx, arg := range body.Args()[1:] {
			m.env[arg] = carried[idx]
		}
		if err := m.runBlock(body); err != nil {
			return err
		}
		if len(carried) > 0 {
			yield := body.Nodes()[len(body.Nodes())-1]
			for idx, value := range yield.Inputs() {
				carried[idx] = m.env[value]
			}
		}
	}
	for idx, result := range n.Results() {
		m.env[result] = carried[idx]
	}
	return nil
}

// sliceSpec resolves a node's slice offsets/sizes/strides to concrete values.
func (m *machine) sliceSpec(n *ir.Node) (offsets, sizes, strides []int64, err error) {
	offsetExts, sizeExts, strideExts := n.SliceSpec()
	resolve := func(exts []ir.Extent) ([]int64, error) {
		values := make([]int64, len(exts))
		for idx, e := range exts {
			if e.IsStatic() {
				values[idx] = e.Static()
				continue
			}
			value, err := m.index(e.Node())
			if err != nil {
				return nil, err
			}
			values[idx] = value
		}
		return values, nil
	}
	if offsets, err = resolve(offsetExts); err != nil {
		return
	}
	if sizes, err = resolve(sizeExts); err != nil {
		return
	}
	strides, err = resolve(strideExts)
	return
}

func (m *machine) evalExtractSlice(n *ir.Node) error {
	src, err := m.tensor(n.Inputs()[0])
	if err != nil {
		return err
	}
	offsets, sizes, strides, err := m.sliceSpec(n)
	if err != nil {
		return err
	}
	dims := make([]int, len(sizes))
	for axis, size := range sizes {
		dims[axis] = int(size)
	}
	out := Zeros(shapes.Make(n.DType(), dims...))
	iterIndices(sizes, func(indices []int64) {
		srcIndices := make([]int64, len(indices))
		for axis, index := range indices {
			srcIndices[axis] = offsets[axis] + index*strides[axis]
		}
		out.Set(src.At(srcIndices...), indices...)
	})
	m.env[n] = out
	return nil
}

func (m *machine) evalInsertSlice(n *ir.Node) error {
	src, err := m.tensor(n.Inputs()[0])
	if err != nil {
		return err
	}
	dest, err := m.tensor(n.Inputs()[1])
	if err != nil {
		return err
	}
	offsets, sizes, strides, err := m.sliceSpec(n)
	if err != nil {
		return err
	}
	out := dest.Clone()
	iterIndices(sizes, func(indices []int64) {
		destIndices := make([]int64, len(indices))
		for axis, index := range indices {
			destIndices[axis] = offsets[axis] + index*strides[axis]
		}
		out.Set(src.At(indices...), destIndices...)
	})
	m.env[n] = out
	return nil
}

func (m *machine) evalScale(n *ir.Node) error {
	x, err := m.tensor(n.Inputs()[0])
	if err != nil {
		return err
	}
	out := x.Clone()
	factor := n.ScaleFactor()
	for idx := range out.Data() {
		out.Data()[idx] *= factor
	}
	m.env[n] = out
	return nil
}

func (m *machine) evalScatter(n *ir.Node) error {
	updates, err := m.tensor(n.Inputs()[0])
	if err != nil {
		return err
	}
	indices, err := m.tensor(n.Inputs()[1])
	if err != nil {
		return err
	}
	dest, err := m.tensor(n.Inputs()[2])
	if err != nil {
		return err
	}
	inPlace := n.NumResults() == 0
	out := dest
	if !inPlace {
		out = dest.Clone()
	}
	numRows := int64(updates.Shape().Dim(0))
	if int64(indices.Shape().Dim(0)) != numRows {
		return errors.Errorf("interp: scatter has %d update rows but %d indices",
			numRows, indices.Shape().Dim(0))
	}
	rowDims := make([]int64, updates.Shape().Rank()-1)
	for axis := range rowDims {
		rowDims[axis] = int64(updates.Shape().Dim(axis + 1))
	}
	for row := int64(0); row < numRows; row++ {
		destRow := int64(indices.At(row))
		iterIndices(rowDims, func(indices []int64) {
			updIndices := append([]int64{row}, indices...)
			destIndices := append([]int64{destRow}, indices...)
			out.Set(updates.At(updIndices...), destIndices...)
		})
	}
	if !inPlace {
		m.env[n] = out
	}
	return nil
}

func (m *machine) evalSort(n *ir.Node) error {
	x, err := m.tensor(n.Inputs()[0])
	if err != nil {
		return err
	}
	out := x.Clone()
	axis := n.Axis()
	laneDims := make([]int64, 0, out.Shape().Rank()-1)
	for a := 0; a < out.Shape().Rank(); a++ {
		if a == axis {
			continue
		}
		laneDims = append(laneDims, int64(out.Shape().Dim(a)))
	}
	laneLen := out.Shape().Dim(axis)
	iterIndices(laneDims, func(lane []int64) {
		full := make([]int64, out.Shape().Rank())
		at := 0
		for a := range full {
			if a == axis {
				continue
			}
			full[a] = lane[at]
			at++
		}
		values := make([]float64, laneLen)
		for pos := 0; pos < laneLen; pos++ {
			full[axis] = int64(pos)
			values[pos] = out.At(full...)
		}
		sort.Float64s(values)
		for pos := 0; pos < laneLen; pos++ {
			full[axis] = int64(pos)
			out.Set(values[pos], full...)
		}
	})
	m.env[n] = out
	return nil
}

func (m *machine) gridValue(values map[int]int64, gridDim int, missing int64) int64 {
	if value, found := values[gridDim]; found {
		return value
	}
	return missing
}

func (m *machine) index(n *ir.Node) (int64, error) {
	value, found := m.env[n]
	if !found {
		return 0, errors.Errorf("interp: %s value was not evaluated before use", n.Type())
	}
	index, ok := value.(int64)
	if !ok {
		return 0, errors.Errorf("interp: %s is not an index scalar", n.Type())
	}
	return index, nil
}

func (m *machine) tensor(n *ir.Node) (*Tensor, error) {
	value, found := m.env[n]
	if !found {
		return nil, errors.Errorf("interp: %s value was not evaluated before use", n.Type())
	}
	t, ok := value.(*Tensor)
	if !ok {
		return nil, errors.Errorf("interp: %s is not a tensor", n.Type())
	}
	return t, nil
}
