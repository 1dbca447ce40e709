// Package huffman builds optimal prefix codes from a symbol distribution and
// encodes and decodes text with them.
package huffman

import (
	"container/heap"

	"github.com/harlequix/infopipe/internal/model"
)

const none = -1

type node struct {
	sym    rune
	weight float64
	leaf   bool
	left   int
	right  int
}

// Tree is a Huffman tree stored as an arena. Nodes refer to their children
// by index and are never modified once Build returns.
type Tree struct {
	nodes []node
	root  int
}

// Table maps a symbol to its code, a string of '0' and '1'.
type Table map[rune]string

type item struct {
	index int
	seq   int
}

type queue struct {
	items []item
	nodes []node
}

func (q *queue) Len() int { return len(q.items) }

func (q *queue) Less(i, j int) bool {
	wi, wj := q.nodes[q.items[i].index].weight, q.nodes[q.items[j].index].weight
	if wi != wj {
		return wi < wj
	}
	return q.items[i].seq < q.items[j].seq
}

func (q *queue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }

func (q *queue) Push(x interface{}) { q.items = append(q.items, x.(item)) }

func (q *queue) Pop() interface{} {
	old := q.items
	n := len(old)
	it := old[n-1]
	q.items = old[:n-1]
	return it
}

// Build returns the Huffman tree of d, or nil when d is empty.
// Leaves are seeded in ascending symbol order and ties between equal weights
// go to the node queued first.
func Build(d model.Distribution) *Tree {
	if len(d) == 0 {
		return nil
	}
	t := &Tree{nodes: make([]node, 0, 2*len(d))}
	q := &queue{}
	seq := 0
	for _, sym := range model.Symbols(d) {
		t.nodes = append(t.nodes, node{sym: sym, weight: d[sym], leaf: true, left: none, right: none})
		q.items = append(q.items, item{index: len(t.nodes) - 1, seq: seq})
		seq++
	}

	if len(q.items) == 1 {
		only := t.nodes[0]
		t.nodes = append(t.nodes, node{weight: only.weight, left: 0, right: none})
		t.root = len(t.nodes) - 1
		return t
	}

	q.nodes = t.nodes
	heap.Init(q)
	for q.Len() > 1 {
		first := heap.Pop(q).(item)
		second := heap.Pop(q).(item)
		t.nodes = append(t.nodes, node{
			weight: t.nodes[first.index].weight + t.nodes[second.index].weight,
			left:   first.index,
			right:  second.index,
		})
		q.nodes = t.nodes
		heap.Push(q, item{index: len(t.nodes) - 1, seq: seq})
		seq++
	}
	t.root = heap.Pop(q).(item).index
	return t
}

func (t *Tree) Root() int {
	return t.root
}

// Len is the number of nodes in the arena.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Leaf reports the symbol stored at node i, if i is a leaf.
func (t *Tree) Leaf(i int) (rune, bool) {
	n := t.nodes[i]
	return n.sym, n.leaf
}

// Child follows the edge labelled bit from node i. It returns -1 when the
// edge does not exist.
func (t *Tree) Child(i int, bit byte) int {
	if bit == '0' {
		return t.nodes[i].left
	}
	return t.nodes[i].right
}

func (t *Tree) Weight(i int) float64 {
	return t.nodes[i].weight
}

// Codes derives the code table by walking every root-to-leaf path.
func (t *Tree) Codes() Table {
	codes := make(Table)
	if t == nil {
		return codes
	}
	var walk func(i int, prefix []byte)
	walk = func(i int, prefix []byte) {
		n := t.nodes[i]
		if n.leaf {
			if len(prefix) == 0 {
				codes[n.sym] = "0"
			} else {
				codes[n.sym] = string(prefix)
			}
			return
		}
		if n.left != none {
			walk(n.left, append(prefix, '0'))
		}
		if n.right != none {
			walk(n.right, append(prefix, '1'))
		}
	}
	walk(t.root, make([]byte, 0, len(t.nodes)))
	return codes
}

// AverageLength is the expected code length in bits per symbol under d,
// summed in symbol order.
func (tb Table) AverageLength(d model.Distribution) float64 {
	avg := 0.0
	for _, sym := range model.Symbols(d) {
		avg += d[sym] * float64(len(tb[sym]))
	}
	return avg
}
