// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"
	"sort"
	"strings"
)

// String pretty-prints the function, one operation per line, loop bodies
// indented. Value names are assigned in program order; parameters print under
// their given name.
func (f *Func) String() string {
	p := &printer{names: make(map[*Node]string)}
	var b strings.Builder
	fmt.Fprintf(&b, "func @%s {\n", f.name)
	p.printBlock(&b, f.entry, 1)
	b.WriteString("}\n")
	return b.String()
}

type printer struct {
	names map[*Node]string
	next  int
}

func (p *printer) name(n *Node) string {
	if name, found := p.names[n]; found {
		return name
	}
	var name string
	switch {
	case n.opType == OpParameter:
		name = "%" + n.ParamName()
	case n.selectOf != nil:
		base := p.name(n.selectOf)
		if len(n.selectOf.outputs) == 1 {
			name = base
		} else {
			name = fmt.Sprintf("%s#%d", base, n.selectIdx)
		}
	default:
		name = fmt.Sprintf("%%%d", p.next)
		p.next++
	}
	p.names[n] = name
	return name
}

func (p *printer) extent(e Extent) string {
	if e.IsStatic() {
		return fmt.Sprintf("%d", e.Static())
	}
	return p.name(e.node)
}

func (p *printer) extents(es []Extent) string {
	parts := make([]string, len(es))
	for idx, e := range es {
		parts[idx] = p.extent(e)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (p *printer) operands(nodes []*Node) string {
	parts := make([]string, len(nodes))
	for idx, n := range nodes {
		parts[idx] = p.name(n)
	}
	return strings.Join(parts, ", ")
}

func (p *printer) printBlock(b *strings.Builder, blk *Block, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, n := range blk.nodes {
		b.WriteString(indent)
		p.printNode(b, n, depth)
		b.WriteString("\n")
	}
}

func (p *printer) printNode(b *strings.Builder, n *Node, depth int) {
	switch n.opType {
	case OpParameter:
		fmt.Fprintf(b, "%s = Parameter %q : %s", p.name(n), n.ParamName(), n.shape)
	case OpConstant:
		fmt.Fprintf(b, "%s = Constant %d : %s", p.name(n), n.IntValue(), n.shape)
	case OpEmpty:
		fmt.Fprintf(b, "%s = Empty : %s", p.name(n), n.shape)
	case OpAdd, OpSub, OpMul, OpMin:
		fmt.Fprintf(b, "%s = %s %s", p.name(n), n.opType, p.operands(n.inputs))
	case OpDim:
		fmt.Fprintf(b, "%s = Dim %s axis=%d", p.name(n), p.name(n.inputs[0]), n.Axis())
	case OpWorkerID, OpWorkerCount:
		fmt.Fprintf(b, "%s = %s dim=%d", p.name(n), n.opType, n.GridDim())
	case OpFor:
		p.printFor(b, n, depth)
	case OpYield:
		fmt.Fprintf(b, "Yield %s", p.operands(n.inputs))
	case OpReturn:
		fmt.Fprintf(b, "Return %s", p.operands(n.inputs))
	case OpExtractSlice:
		offsets, sizes, strides := n.SliceSpec()
		fmt.Fprintf(b, "%s = ExtractSlice %s %s%s%s : %s", p.name(n), p.name(n.inputs[0]),
			p.extents(offsets), p.extents(sizes), p.extents(strides), n.shape)
	case OpInsertSlice:
		offsets, sizes, strides := n.SliceSpec()
		fmt.Fprintf(b, "%s = InsertSlice %s into %s %s%s%s", p.name(n), p.name(n.inputs[0]),
			p.name(n.inputs[1]), p.extents(offsets), p.extents(sizes), p.extents(strides))
	case OpScale:
		fmt.Fprintf(b, "%s = Scale %s factor=%v", p.name(n), p.operands(n.inputs), n.ScaleFactor())
	case OpScatter:
		if n.NumResults() == 0 {
			fmt.Fprintf(b, "Scatter %s, %s into %s", p.name(n.inputs[0]), p.name(n.inputs[1]), p.name(n.inputs[2]))
		} else {
			fmt.Fprintf(b, "%s = Scatter %s, %s into %s", p.name(n), p.name(n.inputs[0]),
				p.name(n.inputs[1]), p.name(n.inputs[2]))
		}
	case OpSort:
		fmt.Fprintf(b, "%s = Sort %s axis=%d", p.name(n), p.name(n.inputs[0]), n.Axis())
	default:
		fmt.Fprintf(b, "%s = %s %s", p.name(n), n.opType, p.operands(n.inputs))
	}
	p.printAttrs(b, n)
}

func (p *printer) printFor(b *strings.Builder, n *Node, depth int) {
	lb, ub, step := n.LoopBoundsOperands()
	body := n.Body()
	if len(n.outputs) > 0 {
		fmt.Fprintf(b, "%s = ", p.name(n))
	}
	fmt.Fprintf(b, "For %s = %s to %s step %s", p.name(body.args[0]), p.name(lb), p.name(ub), p.name(step))
	if iters := n.LoopIterOperands(); len(iters) > 0 {
		pairs := make([]string, len(iters))
		for idx, init := range iters {
			pairs[idx] = fmt.Sprintf("%s = %s", p.name(body.args[idx+1]), p.name(init))
		}
		fmt.Fprintf(b, " iter(%s)", strings.Join(pairs, ", "))
	}
	p.printAttrs(b, n)
	b.WriteString(" {\n")
	p.printBlock(b, body, depth+1)
	b.WriteString(strings.Repeat("  ", depth) + "}")
}

func (p *printer) printAttrs(b *strings.Builder, n *Node) {
	if len(n.attrs) == 0 {
		return
	}
	keys := make([]string, 0, len(n.attrs))
	for key := range n.attrs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for idx, key := range keys {
		parts[idx] = fmt.Sprintf("%s=%q", key, n.attrs[key])
	}
	fmt.Fprintf(b, " {%s}", strings.Join(parts, ", "))
}
