package recovery

import (
	"regexp"
	"testing"
)

func TestTemplateRenderSubstitutesPlaceholders(t *testing.T) {
	tpl := NewTemplate("unexpected {1}, expected a tag name")
	got := tpl.Render("'y'")
	want := "unexpected 'y', expected a tag name"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestTemplateRenderLeavesMissingPlaceholderLiteral(t *testing.T) {
	tpl := NewTemplate("saw {1} then {2}")
	got := tpl.Render("x")
	want := "saw x then {2}"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRegistryAttemptFirstMatchWins(t *testing.T) {
	r := NewRegistry()
	r.Register("Tag",
		RegexResumer{Name: "comma", Pattern: regexp.MustCompile(`,`)},
		RegexResumer{Name: "close", Pattern: regexp.MustCompile(`>`)},
	)
	pos, name, ok := r.Attempt("Tag", "abc>def", 0)
	if !ok || pos != 3 || name != "close" {
		t.Errorf("got pos=%d name=%q ok=%v", pos, name, ok)
	}
}

func TestRegistryAttemptNoMatch(t *testing.T) {
	r := NewRegistry()
	r.Register("Tag", RegexResumer{Pattern: regexp.MustCompile(`Z`)})
	_, _, ok := r.Attempt("Tag", "abc", 0)
	if ok {
		t.Error("expected no resume point to match")
	}
}

func TestMessageFallsBackToDefault(t *testing.T) {
	r := NewRegistry()
	msg := r.Message("N", `/[a-z]+/`, "'1'")
	want := "expected /[a-z]+/, found '1'"
	if msg != want {
		t.Errorf("got %q, want %q", msg, want)
	}
}
