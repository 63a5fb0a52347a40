package xform

import (
	"strings"

	"github.com/npillmayer/parsekit/cst"
)

// rule pairs a compiled selector with the ordered operations applied to
// every node it matches.
type rule struct {
	selector Selector
	ops      []Operation
}

// Table is an ordered list of rules, tried top to bottom: the first rule
// whose selector matches a visited node runs its operations; later rules
// are not consulted for that node. This is the "typed list of
// (selector, operation) pairs" shape — a slice walked in order, rather
// than a map keyed by tag, so two rules may legitimately overlap and the
// first one declared wins. preRules holds the rules registered under a
// bare `<`, run in their own pre-order pass ahead of the post-order pass
// that drives everything else.
type Table struct {
	rules    []rule
	preRules []rule
}

// NewTable creates an empty transformation table.
func NewTable() *Table {
	return &Table{}
}

// Add appends a rule matching selectorExpr (see ParseSelector) with the
// given operations, applied in order. A bare "<" is routed to the table's
// pre-order pass rather than the post-order one — everything else is
// matched post-order regardless of selector shape. Returns the table for
// chaining.
func (t *Table) Add(selectorExpr string, ops ...Operation) *Table {
	if strings.TrimSpace(selectorExpr) == "<" {
		return t.AddPreSelector(Wildcard(), ops...)
	}
	t.rules = append(t.rules, rule{selector: ParseSelector(selectorExpr), ops: ops})
	return t
}

// AddSelector is like Add but takes an already-compiled Selector, for
// callers that need ChildOf/TagSelector/Wildcard composition beyond what
// a selector expression string can express. It always registers a
// post-order rule; use AddPreSelector for pre-order timing.
func (t *Table) AddSelector(sel Selector, ops ...Operation) *Table {
	t.rules = append(t.rules, rule{selector: sel, ops: ops})
	return t
}

// AddPreSelector registers ops to run in the table's pre-order pass —
// before descent into a matched node's children — rather than the
// default post-order pass every other rule runs in.
func (t *Table) AddPreSelector(sel Selector, ops ...Operation) *Table {
	t.preRules = append(t.preRules, rule{selector: sel, ops: ops})
	return t
}

func (t *Table) firstMatch(tag, parentTagName string) []Operation {
	for _, r := range t.rules {
		if r.selector(tag, parentTagName) {
			return r.ops
		}
	}
	return nil
}

func (t *Table) firstMatchPre(tag, parentTagName string) []Operation {
	for _, r := range t.preRules {
		if r.selector(tag, parentTagName) {
			return r.ops
		}
	}
	return nil
}

// applyPreOrder runs t's pre-order rules over root ahead of Apply's own
// post-order pass, visiting parent before children. An operation that
// mutates its node in place (e.g. TransformContent) sees that mutation
// reflected in the children the walk descends into next, since the
// generator blocks on this same goroutine until each Visit is consumed.
// An operation that replaces its node with an unrelated one still
// descends through the original node's children — this pass exists for
// early rewrites ahead of descent, not for restructuring what descent
// sees. A pre-order operation cannot remove a node: returning nil is
// treated as a no-op here, since the single streaming pass has no room to
// also splice a parent's children without invalidating the indices of
// not-yet-visited siblings; removal stays a post-order-only capability.
func (t *Table) applyPreOrder(root *cst.Node) *cst.Node {
	result := root
	for v := range preOrder(root) {
		n := v.Node
		rewritten := n
		for _, op := range t.firstMatchPre(n.Tag, parentTag(v.Parent)) {
			if rewritten == nil {
				rewritten = n
				break
			}
			rewritten = op(rewritten)
		}
		if rewritten == nil || rewritten == n {
			continue
		}
		if v.Parent == nil {
			result = rewritten
			continue
		}
		children := v.Parent.Children()
		children[v.Index] = rewritten
		v.Parent.SetChildren(children)
	}
	return result
}

func parentTag(parent *cst.Node) string {
	if parent == nil {
		return ""
	}
	return parent.Tag
}

// Apply runs t against root in a single post-order pass, producing the
// AST in place: each node is visited only after its children have
// already been rewritten, so operations that inspect or promote children
// (Flatten, ReplaceBySingleChild, ...) see the rewritten shape. If any
// rules were registered under a bare `<`, they run first in their own
// pre-order pass over the whole tree. It returns the (possibly different)
// node that replaces root, or nil if root itself was removed.
func (t *Table) Apply(root *cst.Node) *cst.Node {
	if root == nil || cst.IsEmptyNode(root) {
		return root
	}
	if len(t.preRules) > 0 {
		root = t.applyPreOrder(root)
		if root == nil || cst.IsEmptyNode(root) {
			return root
		}
	}
	// pending[p] accumulates the rewritten children of parent p, indexed
	// exactly like p's original Children() — nil entries mark a removed
	// child, filtered out once p itself is visited.
	pending := make(map[*cst.Node][]*cst.Node)

	var result *cst.Node
	for v := range postOrder(root) {
		n := v.Node
		if v.Parent != nil {
			slot := pending[v.Parent]
			if slot == nil {
				slot = make([]*cst.Node, len(v.Parent.Children()))
				pending[v.Parent] = slot
			}
			// n's own children (if any) were already synced from
			// `pending` the moment n itself was visited, a few lines
			// below, before this slot assignment for n's parent runs.
		}

		if !n.IsLeaf() {
			if synced, ok := pending[n]; ok {
				out := make([]*cst.Node, 0, len(synced))
				for _, c := range synced {
					if c != nil {
						out = append(out, c)
					}
				}
				n.SetChildren(out)
				delete(pending, n)
			}
		}

		rewritten := n
		for _, op := range t.firstMatch(n.Tag, parentTag(v.Parent)) {
			if rewritten == nil {
				break
			}
			rewritten = op(rewritten)
		}

		if v.Parent == nil {
			result = rewritten
			continue
		}
		pending[v.Parent][v.Index] = rewritten
	}
	return result
}
