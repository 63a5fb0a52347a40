package cst

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// SerializeSExpr renders n and its descendants as a deterministic
// S-expression: `(tag "content")` for a leaf, `(tag (child …))` for a
// branch. Reserializing an unmodified CST reproduces the original input
// verbatim when the leaf texts are concatenated in order (the round-trip
// property); the S-expression form itself is for inspection, not for
// reparsing.
func (n *Node) SerializeSExpr() string {
	var b bytes.Buffer
	n.writeSExpr(&b)
	return b.String()
}

func (n *Node) writeSExpr(b *bytes.Buffer) {
	if n == nil || n.sentinel {
		b.WriteString("()")
		return
	}
	b.WriteString("(")
	b.WriteString(n.Tag)
	if n.IsLeaf() {
		fmt.Fprintf(b, " %q", n.text)
	} else {
		for _, c := range n.children {
			b.WriteString(" ")
			c.writeSExpr(b)
		}
	}
	b.WriteString(")")
}

// XMLConfig holds the tag predicates SerializeXML consults. InlineTags
// reports whether tag should be rendered as a single-line XML element.
// EmptyTags always render as `<tag/>` regardless
// of content; StringTags always render their content inline even if the
// node is technically a branch (used for grammars that model string-typed
// leaves as single-child branches).
type XMLConfig struct {
	InlineTags func(tag string) bool
	EmptyTags  func(tag string) bool
	StringTags func(tag string) bool
}

func defaultXMLConfig() XMLConfig {
	return XMLConfig{
		InlineTags: func(string) bool { return false },
		EmptyTags:  func(string) bool { return false },
		StringTags: func(string) bool { return false },
	}
}

// SerializeXML renders n as XML, governed by cfg's inline/empty/string tag
// predicates (grammar-level configuration). Attributes are emitted sorted
// by key for deterministic output. Pass a zero XMLConfig to get the
// conservative default (no tag treated specially).
func (n *Node) SerializeXML(cfg XMLConfig) string {
	if cfg.InlineTags == nil {
		cfg = defaultXMLConfig()
	}
	var b bytes.Buffer
	n.writeXML(&b, cfg, 0)
	return b.String()
}

func (n *Node) writeXML(b *bytes.Buffer, cfg XMLConfig, depth int) {
	if n == nil || n.sentinel {
		return
	}
	attrs := n.Attributes()
	if cfg.EmptyTags(n.Tag) {
		writeOpenTag(b, n.Tag, attrs, true)
		return
	}
	inline := cfg.InlineTags(n.Tag) || cfg.StringTags(n.Tag) || n.IsLeaf()
	writeOpenTag(b, n.Tag, attrs, false)
	if cfg.StringTags(n.Tag) || n.IsLeaf() {
		b.WriteString(xmlEscape(n.Content()))
	} else {
		for _, c := range n.children {
			if !inline {
				b.WriteString("\n")
			}
			c.writeXML(b, cfg, depth+1)
		}
		if !inline {
			b.WriteString("\n")
		}
	}
	fmt.Fprintf(b, "</%s>", n.Tag)
}

func writeOpenTag(b *bytes.Buffer, tag string, attrs []AttributeKV, selfClose bool) {
	b.WriteString("<")
	b.WriteString(tag)
	for _, kv := range attrs {
		fmt.Fprintf(b, " %s=%q", kv.Key, xmlEscape(kv.Value))
	}
	if selfClose {
		b.WriteString("/>")
		return
	}
	b.WriteString(">")
}

func xmlEscape(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DumpTree writes a human-readable indented tree of n to w, using pterm's
// tree renderer. Unlike SerializeSExpr/SerializeXML this is not a
// round-trippable form — it exists for debugging, the same role pterm
// plays in rendering a TeREx term as a tree.
func (n *Node) DumpTree(w io.Writer) {
	root := n.ptermNode()
	pterm.DefaultTree.WithRoot(root).WithWriter(w).Render()
}

func (n *Node) ptermNode() pterm.TreeNode {
	if n == nil || n.sentinel {
		return pterm.TreeNode{Text: "<empty>"}
	}
	label := n.Tag
	if n.IsLeaf() {
		label = fmt.Sprintf("%s %q", n.Tag, n.text)
	}
	node := pterm.TreeNode{Text: label}
	for _, c := range n.children {
		node.Children = append(node.Children, c.ptermNode())
	}
	return node
}
