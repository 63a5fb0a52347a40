package xform

import (
	"strings"
	"testing"

	"github.com/npillmayer/parsekit/cst"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func leaf(tag, text string) *cst.Node {
	return cst.Leaf(tag, text, 0)
}

func branch(tag string, children ...*cst.Node) *cst.Node {
	return cst.Branch(tag, children, 0)
}

func TestRemoveTokensDropsMatchingChildren(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parsekit.xform")
	defer teardown()

	tree := branch("stmt",
		leaf("kw_if", "if"),
		leaf("cond", "x"),
		leaf("semi", ";"),
	)
	table := NewTable().Add("stmt", RemoveTokens("kw_if", "semi"))
	out := table.Apply(tree)
	if len(out.Children()) != 1 {
		t.Fatalf("expected 1 remaining child, got %d", len(out.Children()))
	}
	if out.Children()[0].Tag != "cond" {
		t.Errorf("expected remaining child to be 'cond', got %q", out.Children()[0].Tag)
	}
}

func TestReplaceBySingleChildPromotes(t *testing.T) {
	inner := leaf("num", "42")
	tree := branch("wrapped", inner)
	table := NewTable().Add("wrapped", ReplaceBySingleChild)
	out := table.Apply(tree)
	if out != inner {
		t.Errorf("expected promoted child to replace wrapper")
	}
}

func TestFlattenInlinesAnonymousBranchChildren(t *testing.T) {
	inner := branch("_group", leaf("a", "1"), leaf("b", "2"))
	inner.SetAnonymous(true)
	tree := branch("list", inner, leaf("c", "3"))
	table := NewTable().Add("list", Flatten)
	out := table.Apply(tree)
	if len(out.Children()) != 3 {
		t.Fatalf("expected 3 flattened children, got %d", len(out.Children()))
	}
	if out.Children()[0].Tag != "a" || out.Children()[2].Tag != "c" {
		t.Errorf("expected flattened order a,b,c, got %v", out.Children())
	}
}

func TestRemoveWhitespaceAndEmptyCombine(t *testing.T) {
	tree := branch("line",
		leaf("word", "hello"),
		leaf("ws", "   "),
		leaf("empty", ""),
		leaf("word", "world"),
	)
	table := NewTable().Add("line", RemoveWhitespace, RemoveEmpty)
	out := table.Apply(tree)
	if len(out.Children()) != 2 {
		t.Fatalf("expected 2 children after stripping ws/empty, got %d", len(out.Children()))
	}
}

func TestTransformContentLowercases(t *testing.T) {
	tree := leaf("kw", "IF")
	table := NewTable().Add("kw", TransformContent(strings.ToLower))
	out := table.Apply(tree)
	if out.Text() != "if" {
		t.Errorf("expected lowercased text, got %q", out.Text())
	}
}

func TestChildOfSelectorMatchesByParentTag(t *testing.T) {
	tree := branch("args", leaf("sep", ","), leaf("sep", ","), leaf("num", "1"))
	table := NewTable().AddSelector(ChildOf("args"), func(n *cst.Node) *cst.Node {
		if n.Tag == "sep" {
			return nil
		}
		return n
	})
	out := table.Apply(tree)
	if len(out.Children()) != 1 {
		t.Fatalf("expected separators removed via ChildOf selector, got %d children", len(out.Children()))
	}
}

func TestRuleOrderFirstMatchWins(t *testing.T) {
	tree := leaf("num", "1")
	calledA, calledB := false, false
	table := NewTable().
		Add("num", func(n *cst.Node) *cst.Node { calledA = true; return n }).
		Add("*", func(n *cst.Node) *cst.Node { calledB = true; return n })
	table.Apply(tree)
	if !calledA || calledB {
		t.Errorf("expected only the first matching rule to run, got calledA=%v calledB=%v", calledA, calledB)
	}
}

func TestBarePreOrderSelectorUppercasesEveryLeafBeforePostOrderRuns(t *testing.T) {
	tree := branch("outer", leaf("inner", "x"), leaf("inner", "y"))
	table := NewTable().Add("<", TransformContent(strings.ToUpper))
	out := table.Apply(tree)
	for _, c := range out.Children() {
		if c.Text() != strings.ToUpper(c.Text()) {
			t.Errorf("expected %q's text upper-cased by the pre-order pass, got %q", c.Tag, c.Text())
		}
	}
}

func TestBareLessThanSelectorMatchesEveryNodePreOrder(t *testing.T) {
	var order []string
	tree := branch("top", leaf("a", "1"), branch("mid", leaf("b", "2")))
	table := NewTable().Add("<", func(n *cst.Node) *cst.Node {
		order = append(order, n.Tag)
		return n
	})
	table.Apply(tree)
	if len(order) != 4 {
		t.Fatalf("expected every node visited by the pre-order pass, got %v", order)
	}
	want := []string{"top", "a", "mid", "b"}
	for i, tag := range want {
		if order[i] != tag {
			t.Errorf("expected pre-order visitation %v, got %v", want, order)
			break
		}
	}
}

func TestRemoveBracketsDropsFirstAndLastChildOnly(t *testing.T) {
	tree := branch("group",
		leaf("open", "("),
		leaf("mid_open", "("),
		leaf("inner", "42"),
		leaf("mid_close", ")"),
		leaf("close", ")"),
	)
	table := NewTable().Add("group", RemoveBrackets)
	out := table.Apply(tree)
	if len(out.Children()) != 3 {
		t.Fatalf("expected only the true first/last children dropped, got %d: %v", len(out.Children()), out.Children())
	}
	wantTags := []string{"mid_open", "inner", "mid_close"}
	for i, c := range out.Children() {
		if c.Tag != wantTags[i] {
			t.Errorf("child %d: expected tag %q, got %q", i, wantTags[i], c.Tag)
		}
	}
}

func TestStripTrimsOnlyLeadingAndTrailingMatches(t *testing.T) {
	isParen := func(c *cst.Node) bool { return c.Content() == "(" || c.Content() == ")" }
	// The true edge tokens are the outer pair; the inner pair shares the
	// same literal text but sits behind a non-matching neighbor on each
	// side, so a correct edge-trim must leave it untouched.
	tree := branch("group",
		leaf("open", "("),
		leaf("before", "x"),
		leaf("mid_open", "("),
		leaf("inner", "42"),
		leaf("mid_close", ")"),
		leaf("after", "y"),
		leaf("close", ")"),
	)
	table := NewTable().Add("group", Strip(isParen))
	out := table.Apply(tree)
	wantTags := []string{"before", "mid_open", "inner", "mid_close", "after"}
	if len(out.Children()) != len(wantTags) {
		t.Fatalf("expected edge-trim to stop at the first non-match from each end, got %d: %v", len(out.Children()), out.Children())
	}
	for i, c := range out.Children() {
		if c.Tag != wantTags[i] {
			t.Errorf("child %d: expected tag %q, got %q", i, wantTags[i], c.Tag)
		}
	}
}

func TestApplyUnlessSkipsGuardedNodes(t *testing.T) {
	tree := branch("list", leaf("num", "0"), leaf("num", "1"))
	removeZero := func(n *cst.Node) *cst.Node {
		if n.Content() == "0" {
			return nil
		}
		return n
	}
	guarded := ApplyUnless(func(n *cst.Node) bool { return n.Content() == "1" }, removeZero)
	table := NewTable().AddSelector(ChildOf("list"), guarded)
	out := table.Apply(tree)
	if len(out.Children()) != 1 || out.Children()[0].Content() != "1" {
		t.Errorf("expected only '0' removed, '1' left untouched, got %v", out.Children())
	}
}
