// Copyright 2025 Jonathan Amsterdam. All rights reserved.
// Use of this source code is governed by a
// license that can be found in the LICENSE file.

package huffpack

import "container/heap"

// maxNodes is the size of a full tree over 256 leaves.
const maxNodes = 2*256 - 1

// A tree is a Huffman tree stored as an arena.
// The 256 leaves occupy indexes 0 through 255, with leaf i holding symbol i.
// Internal nodes follow in the order they were created.
type tree struct {
	nodes []node
	root  int16
}

type node struct {
	freq        uint64 // sum of the leaf counts below
	left, right int16  // -1 for leaves
	sym         byte   // leaves only
}

func (n *node) isLeaf() bool { return n.left < 0 }

// buildTree constructs the Huffman tree for f by repeatedly merging the two
// lowest-frequency nodes. Equal frequencies are broken by arena index, which
// puts leaves in symbol order ahead of every internal node and internal nodes
// in creation order. The first node taken from the queue becomes the left child.
// Encoders and decoders must agree on this order to produce the same codes.
func buildTree(f *Frequencies) *tree {
	t := &tree{nodes: make([]node, 0, maxNodes)}
	q := &nodeQueue{t: t, idx: make([]int16, 0, len(f))}
	for s, c := range f {
		t.nodes = append(t.nodes, node{freq: uint64(c), left: -1, right: -1, sym: byte(s)})
		q.idx = append(q.idx, int16(s))
	}
	heap.Init(q)
	for q.Len() > 1 {
		l := heap.Pop(q).(int16)
		r := heap.Pop(q).(int16)
		t.nodes = append(t.nodes, node{
			freq:  t.nodes[l].freq + t.nodes[r].freq,
			left:  l,
			right: r,
		})
		heap.Push(q, int16(len(t.nodes)-1))
	}
	t.root = heap.Pop(q).(int16)
	return t
}

// walk calls visit for every leaf with the path from the root to that leaf,
// left branches contributing 0 and right branches 1.
// Paths longer than 64 bits are truncated in the val field, but len is exact.
func (t *tree) walk(visit func(sym byte, c bitcode)) {
	var rec func(i int16, c bitcode)
	rec = func(i int16, c bitcode) {
		n := &t.nodes[i]
		if n.isLeaf() {
			visit(n.sym, c)
			return
		}
		rec(n.left, c.append(0))
		rec(n.right, c.append(1))
	}
	rec(t.root, bitcode{})
}

// A nodeQueue is a min-heap of arena indexes.
type nodeQueue struct {
	t   *tree
	idx []int16
}

func (q *nodeQueue) Len() int { return len(q.idx) }

func (q *nodeQueue) Less(i, j int) bool {
	a, b := q.idx[i], q.idx[j]
	fa, fb := q.t.nodes[a].freq, q.t.nodes[b].freq
	if fa != fb {
		return fa < fb
	}
	return a < b
}

func (q *nodeQueue) Swap(i, j int) { q.idx[i], q.idx[j] = q.idx[j], q.idx[i] }

func (q *nodeQueue) Push(x any) { q.idx = append(q.idx, x.(int16)) }

func (q *nodeQueue) Pop() any {
	n := len(q.idx)
	x := q.idx[n-1]
	q.idx = q.idx[:n-1]
	return x
}
