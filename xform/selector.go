package xform

import "strings"

// Selector decides whether a rule's operations apply to a visited node,
// given its own tag and its parent's tag (empty at the root).
type Selector func(tag, parentTag string) bool

// Wildcard matches every node.
func Wildcard() Selector {
	return func(tag, parentTag string) bool { return true }
}

// TagSelector matches any node whose tag is one of tags.
func TagSelector(tags ...string) Selector {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return func(tag, parentTag string) bool { return set[tag] }
}

// ChildOf matches any node whose immediate parent has the given tag —
// the `<parentTag` selector form.
func ChildOf(parentTag string) Selector {
	return func(tag, pt string) bool { return pt == parentTag }
}

// ParseSelector compiles a selector expression as written in a grammar's
// transformation table:
//
//	*          matches every node, applied post-order
//	<          matches every node, applied pre-order (before descent)
//	<tag       matches nodes whose parent is tagged tag
//	a,b,c      matches nodes tagged a, b, or c
//	a          matches nodes tagged a
//
// A bare "<" and "*" both match unconditionally; Table.Add gives them
// their distinct timing by routing a bare "<" to the pre-order rule list
// before ever reaching ParseSelector, so the Selector returned here for
// "<" is only ever consulted as a Wildcard.
func ParseSelector(expr string) Selector {
	expr = strings.TrimSpace(expr)
	switch {
	case expr == "*" || expr == "<":
		return Wildcard()
	case strings.HasPrefix(expr, "<"):
		return ChildOf(strings.TrimSpace(expr[1:]))
	case strings.Contains(expr, ","):
		parts := strings.Split(expr, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		return TagSelector(parts...)
	default:
		return TagSelector(expr)
	}
}
