package xform

import "github.com/npillmayer/parsekit/cst"

// Visit is one stop of a tree walk: the node itself, its parent (nil at
// the root), and the node's index among its parent's children (-1 at the
// root).
type Visit struct {
	Node   *cst.Node
	Parent *cst.Node
	Index  int
}

// postOrder walks root depth-first, children before parent, delivering
// each Visit over the returned channel. The walk runs in its own
// goroutine; a caller that abandons the channel before draining it will
// leak that goroutine, exactly as with any unbuffered generator — Apply
// always drains to completion, so this only matters for direct callers.
func postOrder(root *cst.Node) <-chan Visit {
	ch := make(chan Visit)
	go func() {
		defer close(ch)
		var walk func(n, parent *cst.Node, idx int)
		walk = func(n, parent *cst.Node, idx int) {
			if n == nil || cst.IsEmptyNode(n) {
				return
			}
			for i, c := range n.Children() {
				walk(c, n, i)
			}
			ch <- Visit{Node: n, Parent: parent, Index: idx}
		}
		walk(root, nil, -1)
	}()
	return ch
}

// preOrder walks root depth-first, parent before children.
func preOrder(root *cst.Node) <-chan Visit {
	ch := make(chan Visit)
	go func() {
		defer close(ch)
		var walk func(n, parent *cst.Node, idx int)
		walk = func(n, parent *cst.Node, idx int) {
			if n == nil || cst.IsEmptyNode(n) {
				return
			}
			ch <- Visit{Node: n, Parent: parent, Index: idx}
			for i, c := range n.Children() {
				walk(c, n, i)
			}
		}
		walk(root, nil, -1)
	}()
	return ch
}
