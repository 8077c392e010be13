// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package ir implements a small tensor IR: a Builder constructs a Func out of
// Nodes, transformations (see pkg/core/tiling and pkg/core/rewrite) rewrite the
// Func, and pkg/core/interp executes it.
//
// The IR is a sequence of operations per block. Nodes are only created when
// their inputs have already been created, so each block is a natural
// topological ordering of its sub-graph; the interpreter relies on this
// invariance. Loop operations (OpFor) own a nested body block with block
// arguments for the induction value and the loop-carried values.
//
// Errors in graph construction are builder-usage bugs and panic with a stack
// trace (see github.com/gomlx/exceptions); data-dependent failures of
// transformations are returned as errors instead.
package ir

import (
	"slices"

	"github.com/gomlx/exceptions"

	"github.com/tilir/tilir/pkg/core/shapes"
)

// Func is a function under construction or transformation: an entry Block plus
// the returned values, set by Builder.Return.
type Func struct {
	name    string
	entry   *Block
	returns []*Node
}

// Name of the function.
func (f *Func) Name() string { return f.name }

// Entry returns the entry block.
func (f *Func) Entry() *Block { return f.entry }

// Returns are the values returned by the function, nil before Builder.Return
// is called (valid for functions that only mutate buffer parameters).
func (f *Func) Returns() []*Node { return f.returns }

// Walk visits every node of the function in program order, recursing into loop
// bodies before continuing with the nodes that follow the loop.
func (f *Func) Walk(visit func(n *Node)) {
	f.entry.walk(visit)
}

// Block is a sequence of nodes. The entry block belongs to the Func directly;
// every other block is the body of an OpFor node.
type Block struct {
	fn    *Func
	owner *Node // OpFor owning this block, nil for the entry block.
	args  []*Node
	nodes []*Node
}

// Args returns the block arguments. For a loop body, args[0] is the induction
// value and the remaining ones are the loop-carried values.
func (b *Block) Args() []*Node { return b.args }

// Nodes returns the operations of the block, in program order.
func (b *Block) Nodes() []*Node { return b.nodes }

// Owner returns the OpFor node this block is the body of, or nil for the entry block.
func (b *Block) Owner() *Node { return b.owner }

func (b *Block) walk(visit func(n *Node)) {
	for _, n := range b.nodes {
		visit(n)
		if n.opType == OpFor {
			n.Body().walk(visit)
		}
	}
}

// Node is one operation of a Func.
//
// Most nodes produce exactly one result, the node itself. OpFor produces one
// result per loop-carried value, accessible through Results; operations on
// buffers and block terminators produce none.
type Node struct {
	block  *Block
	opType OpType
	shape  shapes.Shape
	inputs []*Node

	// data for the specific node type.
	data any

	// attrs carry transformation markers, see pkg/core/rewrite.
	attrs map[string]string

	// outputs are the per-result select nodes of a multi-result node (OpFor).
	outputs   []*Node
	selectOf  *Node
	selectIdx int
}

// Type returns the operation kind.
func (n *Node) Type() OpType { return n.opType }

// Shape of the node's (single) result. Invalid for zero- and multi-result nodes.
func (n *Node) Shape() shapes.Shape { return n.shape }

// Inputs are the operands of the node.
func (n *Node) Inputs() []*Node { return n.inputs }

// Block returns the block this node belongs to.
func (n *Node) Block() *Block { return n.block }

// IsBlockArg returns whether this node is a block argument rather than an operation.
func (n *Node) IsBlockArg() bool { return n.opType == OpBlockArg }

// NumResults returns how many values the node produces.
func (n *Node) NumResults() int {
	switch n.opType {
	case OpYield, OpReturn:
		return 0
	case OpFor:
		return len(n.outputs)
	case OpScatter:
		if n.Inputs()[2].Shape().IsBuffer {
			return 0
		}
		return 1
	default:
		return 1
	}
}

// Results returns the values produced by the node. For single-result nodes
// that is the node itself; for OpFor these are its per-carried-value results.
func (n *Node) Results() []*Node {
	if n.opType == OpFor {
		return n.outputs
	}
	if n.NumResults() == 0 {
		return nil
	}
	return []*Node{n}
}

// Result returns the i-th result of the node.
func (n *Node) Result(i int) *Node {
	results := n.Results()
	if i < 0 || i >= len(results) {
		exceptions.Panicf("Node(%s).Result(%d): node has %d results", n.opType, i, len(results))
	}
	return results[i]
}

// IsResultOf returns the multi-result node this node selects a result of, or
// nil if this node is not a result-select.
func (n *Node) IsResultOf() *Node { return n.selectOf }

// SetAttr attaches a string attribute, used for transformation markers.
func (n *Node) SetAttr(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
}

// GetAttr returns the attribute value for key, if set.
func (n *Node) GetAttr(key string) (string, bool) {
	value, found := n.attrs[key]
	return value, found
}

// OpBlockArg is not part of the public OpType enum order on purpose: block
// arguments are not operations, they never appear in Block.Nodes.
const OpBlockArg = OpType(-1)

// Builder constructs and rewrites one Func.
type Builder struct {
	fn *Func

	// blockStack: nodes are appended to the top block; OpFor bodies push/pop.
	blockStack []*Block

	// insertBefore, when set, makes new nodes be inserted before that node
	// instead of appended, as long as the current block is its block.
	insertBefore *Node
}

// NewBuilder creates a Builder with an empty Func of the given name.
func NewBuilder(name string) *Builder {
	fn := &Func{name: name}
	fn.entry = &Block{fn: fn}
	return &Builder{fn: fn, blockStack: []*Block{fn.entry}}
}

// Func returns the function being built.
func (b *Builder) Func() *Func { return b.fn }

func (b *Builder) currentBlock() *Block {
	return b.blockStack[len(b.blockStack)-1]
}

func (b *Builder) pushBlock(blk *Block) { b.blockStack = append(b.blockStack, blk) }

func (b *Builder) popBlock() {
	if len(b.blockStack) == 1 {
		exceptions.Panicf("Builder %q: cannot pop the entry block", b.fn.name)
	}
	b.blockStack = b.blockStack[:len(b.blockStack)-1]
}

// SetInsertionPoint makes the given node's block the current block, with
// subsequently created nodes inserted immediately before the node. Loop bodies
// opened after this are unaffected (they always append). Call
// ClearInsertionPoint to restore the previous current block.
func (b *Builder) SetInsertionPoint(before *Node) {
	if b.insertBefore != nil {
		exceptions.Panicf("Builder %q: insertion point already set", b.fn.name)
	}
	if before == nil || before.block == nil {
		exceptions.Panicf("Builder %q: insertion point node is not inside a block", b.fn.name)
	}
	b.insertBefore = before
	b.pushBlock(before.block)
}

// ClearInsertionPoint restores appending at the end of the previous current
// block. It is a no-op when no insertion point is set.
func (b *Builder) ClearInsertionPoint() {
	if b.insertBefore == nil {
		return
	}
	b.insertBefore = nil
	b.popBlock()
}

// newNode adds a new node of the given opType and shape to the current block.
// It's used by the other ops when creating new nodes.
func (b *Builder) newNode(opType OpType, shape shapes.Shape, inputs ...*Node) *Node {
	b.checkNodes(opType.String(), inputs...)
	n := &Node{
		block:  b.currentBlock(),
		opType: opType,
		shape:  shape,
		inputs: slices.Clone(inputs),
	}
	blk := b.currentBlock()
	if b.insertBefore != nil && b.insertBefore.block == blk {
		at := slices.Index(blk.nodes, b.insertBefore)
		if at < 0 {
			exceptions.Panicf("Builder %q: insertion point no longer in its block", b.fn.name)
		}
		blk.nodes = slices.Insert(blk.nodes, at, n)
	} else {
		blk.nodes = append(blk.nodes, n)
	}
	return n
}

func newBlockArg(blk *Block, shape shapes.Shape) *Node {
	arg := &Node{block: blk, opType: OpBlockArg, shape: shape, data: len(blk.args)}
	blk.args = append(blk.args, arg)
	return arg
}

// checkNodes validates that the nodes are non-nil and belong to this builder's Func.
func (b *Builder) checkNodes(opName string, nodes ...*Node) {
	if b == nil {
		exceptions.Panicf("%s: Builder is nil (!?), cannot build a function", opName)
	}
	for idx, n := range nodes {
		if n == nil {
			exceptions.Panicf("%s: operand #%d is nil", opName, idx)
		}
		blockFn := n.block
		for blockFn == nil && n.selectOf != nil {
			blockFn = n.selectOf.block
			n = n.selectOf
		}
		if blockFn == nil || blockFn.fn != b.fn {
			exceptions.Panicf("%s: operand #%d was not created by builder of %q", opName, idx, b.fn.name)
		}
	}
}

// Mark is a snapshot of the current block used to roll back partially built IR.
type Mark struct {
	block *Block
	nodes []*Node
}

// Mark snapshots the current block so a failed transformation can restore it.
func (b *Builder) Mark() Mark {
	blk := b.currentBlock()
	return Mark{block: blk, nodes: slices.Clone(blk.nodes)}
}

// ResetTo restores the block to the given snapshot, dropping every node created
// since -- including any loop bodies hanging off them.
func (b *Builder) ResetTo(m Mark) {
	m.block.nodes = m.nodes
}

// ReplaceAllUses replaces every use of each old node by the corresponding new
// node, everywhere in the function (including loop bodies and returns).
func (b *Builder) ReplaceAllUses(old, new *Node) {
	b.fn.Walk(func(n *Node) {
		for idx, input := range n.inputs {
			if input == old {
				n.inputs[idx] = new
			}
		}
	})
	for idx, r := range b.fn.returns {
		if r == old {
			b.fn.returns[idx] = new
		}
	}
}

// EraseNode removes the node from its block. The caller must have replaced or
// dropped all of its uses first.
func (b *Builder) EraseNode(n *Node) {
	if n.block == nil {
		exceptions.Panicf("EraseNode: node %s is not inside a block", n.opType)
	}
	at := slices.Index(n.block.nodes, n)
	if at < 0 {
		exceptions.Panicf("EraseNode: node %s no longer in its block", n.opType)
	}
	n.block.nodes = slices.Delete(n.block.nodes, at, at+1)
	n.block = nil
}
