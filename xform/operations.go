package xform

import (
	"strings"

	"github.com/npillmayer/parsekit/cst"
)

// Operation rewrites a single visited node, already post-order (its own
// children, if any, have already had their rules applied). Returning nil
// removes the node from its parent's children entirely; returning a node
// other than n replaces it in place — typically one of n's own children,
// promoted up.
type Operation func(n *cst.Node) *cst.Node

// Flatten inlines the children of every disposable (anonymous) branch
// child of n into n's own child list, one level deep.
func Flatten(n *cst.Node) *cst.Node {
	if n.IsLeaf() {
		return n
	}
	var out []*cst.Node
	for _, c := range n.Children() {
		if c.Anonymous() && !c.IsLeaf() {
			out = append(out, c.Children()...)
		} else {
			out = append(out, c)
		}
	}
	n.SetChildren(out)
	return n
}

// ReduceSingleChild promotes n's only child in its place, but only if
// that child is itself disposable — an undecorated single child is left
// wrapped in n.
func ReduceSingleChild(n *cst.Node) *cst.Node {
	children := n.Children()
	if len(children) == 1 && children[0].Anonymous() {
		return children[0]
	}
	return n
}

// ReplaceBySingleChild unconditionally promotes n's only child, if it has
// exactly one, in place of n.
func ReplaceBySingleChild(n *cst.Node) *cst.Node {
	children := n.Children()
	if len(children) == 1 {
		return children[0]
	}
	return n
}

// RemoveChildrenIf filters n's children in place, dropping every child
// for which pred returns true. A no-op on a leaf.
func RemoveChildrenIf(pred func(*cst.Node) bool) Operation {
	return func(n *cst.Node) *cst.Node {
		if n.IsLeaf() {
			return n
		}
		var out []*cst.Node
		for _, c := range n.Children() {
			if !pred(c) {
				out = append(out, c)
			}
		}
		n.SetChildren(out)
		return n
	}
}

func isAllWhitespace(s string) bool {
	if s == "" {
		return false
	}
	return strings.TrimFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) == ""
}

// RemoveWhitespace drops any child whose entire content is whitespace —
// the common case of a grammar that never wrapped its whitespace
// production in Drop.
var RemoveWhitespace Operation = RemoveChildrenIf(func(c *cst.Node) bool {
	return isAllWhitespace(c.Content())
})

// RemoveEmpty drops any child with no content at all (an empty leaf or a
// childless branch).
var RemoveEmpty Operation = RemoveChildrenIf(func(c *cst.Node) bool {
	return c.Len() == 0
})

// RemoveTokens drops any child whose tag is one of tags — typically
// syntactic punctuation (keywords, brackets, separators) a grammar kept
// in the CST for error reporting but has no place in the AST.
func RemoveTokens(tags ...string) Operation {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return RemoveChildrenIf(func(c *cst.Node) bool { return set[c.Tag] })
}

// Collapse drops n itself (signaling removal from its own parent) once it
// has been reduced to an empty leaf by earlier operations in the same
// rule — it never touches a node that still carries children or content.
func Collapse(n *cst.Node) *cst.Node {
	if n.IsLeaf() && n.Len() == 0 {
		return nil
	}
	return n
}

// RemoveBrackets drops n's first and last child unconditionally — the
// positional `remove_brackets` operation, for a production that always
// wraps its real content in exactly one opening and one closing token
// (whatever their tag or text happens to be). With a single child, that
// child is both first and last and is dropped entirely; with none, it is
// a no-op.
func RemoveBrackets(n *cst.Node) *cst.Node {
	children := n.Children()
	switch len(children) {
	case 0:
		return n
	case 1:
		n.SetChildren(nil)
	default:
		n.SetChildren(children[1 : len(children)-1])
	}
	return n
}

// Strip removes n's leading and trailing children that match pred,
// stopping at the first non-matching child from each end — the
// `strip(pred)` edge-trim operation. Children in the interior are left
// untouched even if they also match pred.
func Strip(pred func(*cst.Node) bool) Operation {
	return func(n *cst.Node) *cst.Node {
		children := n.Children()
		start := 0
		for start < len(children) && pred(children[start]) {
			start++
		}
		end := len(children)
		for end > start && pred(children[end-1]) {
			end--
		}
		n.SetChildren(children[start:end])
		return n
	}
}

// TransformContent rewrites a leaf's text through fn; a no-op on a branch.
func TransformContent(fn func(string) string) Operation {
	return func(n *cst.Node) *cst.Node {
		if !n.IsLeaf() {
			return n
		}
		n.SetText(fn(n.Text()))
		return n
	}
}

// ReplaceContentWith unconditionally overwrites a leaf's text with value,
// discarding any children in the process (per Node's leaf/branch
// invariant). Typically used to canonicalize a family of token variants
// (e.g. every quote style) down to one representation.
func ReplaceContentWith(value string) Operation {
	return func(n *cst.Node) *cst.Node {
		n.SetText(value)
		return n
	}
}

// ApplyUnless wraps op so it is skipped whenever guard(n) is true.
func ApplyUnless(guard func(*cst.Node) bool, op Operation) Operation {
	return func(n *cst.Node) *cst.Node {
		if guard(n) {
			return n
		}
		return op(n)
	}
}
