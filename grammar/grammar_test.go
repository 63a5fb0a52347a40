package grammar

import (
	"testing"

	"github.com/npillmayer/parsekit/peg"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func buildSimpleExprGrammar(t *testing.T) *Grammar {
	t.Helper()
	g := New("expr", DropNames("ws"))

	num, err := peg.NewRegExp("num", `[0-9]+`)
	if err != nil {
		t.Fatal(err)
	}
	plus := peg.NewText("plus", "+")
	ws, err := peg.NewWhitespace("ws", `[ \t]+`)
	if err != nil {
		t.Fatal(err)
	}
	wsOpt := peg.NewOption("ws_opt", ws)
	sum := peg.NewSeries("sum", []*peg.Parser{num, wsOpt, plus, wsOpt, num}, -1, "")

	if err := g.Rule("num", num); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("plus", plus); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("ws", ws); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("ws_opt", wsOpt); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("sum", sum); err != nil {
		t.Fatal(err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestFinalizeAssignsDistinctIDs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "parsekit.grammar")
	defer teardown()

	g := buildSimpleExprGrammar(t)
	seen := make(map[int32]bool)
	for _, name := range g.order {
		p, _ := g.Lookup(name)
		if seen[p.ID()] {
			t.Errorf("duplicate parser ID %d for %q", p.ID(), name)
		}
		seen[p.ID()] = true
	}
}

func TestParseSumExpression(t *testing.T) {
	g := buildSimpleExprGrammar(t)
	node, errs := g.Parse("12 + 7", "sum", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if node == nil {
		t.Fatalf("expected a parse tree")
	}
	if node.Content() != "12+7" {
		t.Errorf("expected content '12+7' (whitespace dropped), got %q", node.Content())
	}
}

func TestParseIncompleteMatchReportsTrailingInput(t *testing.T) {
	g := buildSimpleExprGrammar(t)
	_, errs := g.Parse("12 + 7 extra", "sum", true)
	if len(errs) == 0 {
		t.Fatalf("expected an error about trailing input")
	}
}

func TestDuplicateRuleNameRejected(t *testing.T) {
	g := New("dup")
	p1 := peg.NewText("a", "a")
	p2 := peg.NewText("a", "a")
	if err := g.Rule("a", p1); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("a", p2); err == nil {
		t.Errorf("expected an error registering a duplicate rule name")
	}
}

func TestUnresolvedForwardFailsFinalize(t *testing.T) {
	g := New("cyclic")
	fwd, err := g.Forward("expr")
	if err != nil {
		t.Fatal(err)
	}
	_ = fwd
	if err := g.Finalize(); err == nil {
		t.Errorf("expected Finalize to fail on an unresolved Forward")
	}
}

func TestFingerprintStableAcrossEquivalentGrammars(t *testing.T) {
	g1 := buildSimpleExprGrammar(t)
	g2 := buildSimpleExprGrammar(t)
	fp1, err := g1.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	fp2, err := g2.Fingerprint()
	if err != nil {
		t.Fatal(err)
	}
	if fp1 != fp2 {
		t.Errorf("expected identical fingerprints for identically-built grammars, got %q vs %q", fp1, fp2)
	}
}

func TestNewRegExpUsesConfiguredBackend(t *testing.T) {
	g := New("lexmachine-backed", Regex(RegexBackendLexmachine))
	digits, err := g.NewRegExp("digits", `[0-9]+`)
	if err != nil {
		t.Fatal(err)
	}
	if digits.Kind() != peg.KindRegExpLexmachine {
		t.Errorf("expected KindRegExpLexmachine, got %v", digits.Kind())
	}
	if err := g.Rule("digits", digits); err != nil {
		t.Fatal(err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	node, errs := g.Parse("123", "digits", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if node.Content() != "123" {
		t.Errorf("expected content '123', got %q", node.Content())
	}
}

func TestContextSensitivePropagatesToAncestor(t *testing.T) {
	g := New("tagged")
	tagName, err := peg.NewRegExp("tagname", `[a-z]+`)
	if err != nil {
		t.Fatal(err)
	}
	cap := peg.NewCapture("opentag", "tags", tagName)
	wrapper := peg.NewOption("maybe_tag", cap)

	if err := g.Rule("tagname", tagName); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("opentag", cap); err != nil {
		t.Fatal(err)
	}
	if err := g.Rule("maybe_tag", wrapper); err != nil {
		t.Fatal(err)
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}
	if !wrapper.ContextSensitive() {
		t.Errorf("expected context-sensitivity to propagate from Capture up through Option")
	}
}

// TestContextSensitiveParserBypassesCacheAcrossAlternativeBranches exercises
// Finalize's cache wiring end to end: a shared Retrieve parser is reached
// at the very same (parser, position) key from both Alternative branches,
// each under a different capture-stack top. Branch A pushes "ab" and fails
// the backreference (only "a" remains in the input); Alternative rolls the
// push back and tries branch B, which pushes "a" and succeeds. Without
// Finalize marking the backreference context-sensitive on the Grammar's
// memo.Cache, branch A's cached failure at that key would incorrectly
// replay for branch B and the whole parse would fail.
func TestContextSensitiveParserBypassesCacheAcrossAlternativeBranches(t *testing.T) {
	g := New("backref")

	litAB := peg.NewText("lit_ab", "ab")
	openAB := peg.NewCapture("openAB", "s", litAB)
	restAB := peg.NewText("rest_xyz", "XYZ")

	litA := peg.NewText("lit_a", "a")
	openA := peg.NewCapture("openA", "s", litA)
	restA := peg.NewText("rest_bxyz", "bXYZ")

	backref := peg.NewRetrieve("backref", "s")

	branchA := peg.NewSeries("branchA", []*peg.Parser{openAB, restAB, backref}, -1, "")
	branchB := peg.NewSeries("branchB", []*peg.Parser{openA, restA, backref}, -1, "")
	top := peg.NewAlternative("top", []*peg.Parser{branchA, branchB})

	rules := []struct {
		name string
		p    *peg.Parser
	}{
		{"lit_ab", litAB}, {"openAB", openAB}, {"rest_xyz", restAB},
		{"lit_a", litA}, {"openA", openA}, {"rest_bxyz", restA},
		{"backref", backref}, {"branchA", branchA}, {"branchB", branchB},
		{"top", top},
	}
	for _, r := range rules {
		if err := g.Rule(r.name, r.p); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}

	node, errs := g.Parse("abXYZa", "top", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if node == nil || node.Tag != "branchB" {
		t.Fatalf("expected branch B to succeed via a freshly-evaluated backreference, got %v", node)
	}
}

// TestDisposableNamesInlinesNonUnderscorePrefixedRule exercises the
// disposable-by-configuration path: "paren" carries no `_` prefix, so
// only DisposableNames makes it eligible for Reduction's flattening.
func TestDisposableNamesInlinesNonUnderscorePrefixedRule(t *testing.T) {
	g := New("wrapped", DisposableNames("paren"))

	open := peg.NewText("open", "(")
	inner, err := peg.NewRegExp("inner", `[0-9]+`)
	if err != nil {
		t.Fatal(err)
	}
	closeParen := peg.NewText("close", ")")
	paren := peg.NewSeries("paren", []*peg.Parser{open, inner, closeParen}, -1, "")
	top := peg.NewSeries("top", []*peg.Parser{paren}, -1, "")

	rules := []struct {
		name string
		p    *peg.Parser
	}{
		{"open", open}, {"inner", inner}, {"close", closeParen}, {"paren", paren}, {"top", top},
	}
	for _, r := range rules {
		if err := g.Rule(r.name, r.p); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}

	node, errs := g.Parse("(42)", "top", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, c := range node.Children() {
		if c.Tag == "paren" {
			t.Errorf("expected DisposableNames(%q) to inline its children under the default Reduction, found a surviving %q node", "paren", c.Tag)
		}
	}
}

// TestDropCategoriesDropsEveryWhitespaceRuleByKind exercises the
// category-based drop path: two differently-named whitespace productions
// both vanish from the tree via a single DropCategories(DropWhitespace),
// without either being enumerated by name.
func TestDropCategoriesDropsEveryWhitespaceRuleByKind(t *testing.T) {
	g := New("spaced", DropCategories(DropWhitespace))

	num, err := peg.NewRegExp("num", `[0-9]+`)
	if err != nil {
		t.Fatal(err)
	}
	wsA, err := peg.NewWhitespace("ws_a", `[ ]+`)
	if err != nil {
		t.Fatal(err)
	}
	wsB, err := peg.NewWhitespace("ws_b", `[\t]+`)
	if err != nil {
		t.Fatal(err)
	}
	sum := peg.NewSeries("sum", []*peg.Parser{num, wsA, wsB, num}, -1, "")

	rules := []struct {
		name string
		p    *peg.Parser
	}{
		{"num", num}, {"ws_a", wsA}, {"ws_b", wsB}, {"sum", sum},
	}
	for _, r := range rules {
		if err := g.Rule(r.name, r.p); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.Finalize(); err != nil {
		t.Fatal(err)
	}

	node, errs := g.Parse("12 \t7", "sum", true)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(node.Children()) != 2 {
		t.Errorf("expected both whitespace rules dropped by category, leaving only the two numbers, got %d children", len(node.Children()))
	}
}
