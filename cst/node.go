package cst

import (
	"fmt"
	"sort"
	"strings"

	"github.com/npillmayer/parsekit"
)

// Node is the concrete-syntax-tree / abstract-syntax-tree unit. A Node
// with children always has empty text, and vice versa — exactly one of
// the two is populated.
type Node struct {
	Tag        string
	pos        int
	text       string
	children   []*Node
	attrs      map[string]string
	errs       []parsekit.ErrorRecord
	anonymous  bool // tag is disposable: inlined into parent rather than retained
	sentinel   bool
}

// EmptyNode is a sentinel distinct from a Node whose content is the empty
// string: it has no position and must never be retained in a tree. Parsers
// return EmptyNode to signal "matched, but nothing to keep" (e.g. Drop, or
// an Option whose child failed).
var EmptyNode = &Node{pos: -1, sentinel: true}

// IsEmptyNode reports whether n is the EmptyNode sentinel.
func IsEmptyNode(n *Node) bool {
	return n == EmptyNode
}

// Leaf creates a leaf node holding literal text.
func Leaf(tag, text string, pos int) *Node {
	return &Node{Tag: tag, text: text, pos: pos}
}

// Branch creates a branch node from an ordered list of children. Per the
// position-monotonicity invariant, a non-empty branch's position is taken
// from its first child, overriding pos; pos is only used verbatim for a
// childless branch (e.g. a ZeroOrMore that matched zero repetitions).
func Branch(tag string, children []*Node, pos int) *Node {
	n := &Node{Tag: tag, children: children, pos: pos}
	if len(children) > 0 {
		n.pos = children[0].Position()
	}
	return n
}

// Position returns the byte offset in the source where n begins.
func (n *Node) Position() int {
	return n.pos
}

// IsLeaf reports whether n holds text directly rather than children.
func (n *Node) IsLeaf() bool {
	return n.children == nil
}

// Children returns n's direct children, or nil for a leaf.
func (n *Node) Children() []*Node {
	return n.children
}

// SetChildren replaces n's children in place; used by xform operations.
func (n *Node) SetChildren(children []*Node) {
	n.children = children
	if len(children) > 0 {
		n.text = ""
	}
}

// Text returns a leaf's literal text, or "" for a branch.
func (n *Node) Text() string {
	return n.text
}

// SetText replaces a leaf's text in place; used by xform's transform_content
// and replace_content_with operations. Calling it on a branch clears its
// children, preserving the node invariant.
func (n *Node) SetText(s string) {
	n.text = s
	n.children = nil
}

// Anonymous reports whether n's tag is disposable — its tag must never
// leak into a final serialized tree; it is either inlined into its parent
// or reduced away.
func (n *Node) Anonymous() bool {
	return n.anonymous
}

// SetAnonymous marks n as disposable. Called by package peg when it builds
// a node for a disposable parser — one named in the grammar's `disposable`
// configuration or carrying a `_`-prefixed name.
func (n *Node) SetAnonymous(v bool) {
	n.anonymous = v
}

// Content returns the full source text a node covers: for a leaf, its own
// text; for a branch, the concatenation of all descendant leaves in order.
func (n *Node) Content() string {
	if n.IsLeaf() {
		return n.text
	}
	var b strings.Builder
	for _, c := range n.children {
		b.WriteString(c.Content())
	}
	return b.String()
}

// Len returns the byte length of n's content, computed rather than stored.
func (n *Node) Len() int {
	return len(n.Content())
}

// AttachError records an error at n for later collection; it does not
// alter the tree shape or position of n.
func (n *Node) AttachError(err parsekit.ErrorRecord) {
	n.errs = append(n.errs, err)
}

// Errors returns the error records attached directly to n (not its
// descendants).
func (n *Node) Errors() []parsekit.ErrorRecord {
	return n.errs
}

// SetAttribute sets a serialization attribute on n.
func (n *Node) SetAttribute(key, value string) {
	if n.attrs == nil {
		n.attrs = make(map[string]string)
	}
	n.attrs[key] = value
}

// Attribute returns the value for key and whether it was present.
func (n *Node) Attribute(key string) (string, bool) {
	v, ok := n.attrs[key]
	return v, ok
}

// AttributeKV is a single sorted-order attribute pair, as emitted by
// serialization.
type AttributeKV struct {
	Key, Value string
}

// Attributes returns n's attributes sorted by key, for deterministic
// serialization.
func (n *Node) Attributes() []AttributeKV {
	if len(n.attrs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(n.attrs))
	for k := range n.attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]AttributeKV, len(keys))
	for i, k := range keys {
		out[i] = AttributeKV{Key: k, Value: n.attrs[k]}
	}
	return out
}

// WithTag returns a shallow copy of n retagged to tag. Used by Synonym,
// which preserves a child's content but reports it under its own name —
// cloning avoids mutating a node that the memoization cache may still
// hold under the child parser's own identity.
func (n *Node) WithTag(tag string) *Node {
	if n == nil || n.sentinel {
		return n
	}
	clone := *n
	clone.Tag = tag
	return &clone
}

func (n *Node) String() string {
	if n.sentinel {
		return "<empty>"
	}
	if n.IsLeaf() {
		return fmt.Sprintf("(%s %q)", n.Tag, n.text)
	}
	return fmt.Sprintf("(%s <%d children>)", n.Tag, len(n.children))
}
