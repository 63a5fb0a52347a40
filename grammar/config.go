package grammar

import (
	"regexp"

	"github.com/npillmayer/parsekit/peg"
)

// Config holds a Grammar's finalization-time policy, assembled by Option
// functions passed to New. It mirrors the grammar directives a `.peg`
// source file would declare: literal whitespace handling, CST reduction,
// which tags are disposable or dropped, and whether a parse records its
// call history.
type Config struct {
	literalWS         *regexp.Regexp
	reduction         peg.ReductionMode
	dropNames         map[string]bool
	dropCategories    map[DropCategory]bool
	disposableNames   map[string]bool
	disposablePattern *regexp.Regexp
	historyTracking   bool
	resumeNotices     bool
	regexBackend      RegexBackend
}

// DropCategory names a class of production that DropCategories drops as a
// whole, rather than by enumerating every rule name that belongs to it.
type DropCategory int8

const (
	// DropStrings drops every literal-text (Kind Text) production.
	DropStrings DropCategory = iota + 1
	// DropWhitespace drops every whitespace production.
	DropWhitespace
	// DropRegexps drops every RegExp production, regardless of backend.
	DropRegexps
)

// RegexBackend selects which engine backs a Grammar's RegExp rules. It is
// fixed by New and consulted by every subsequent call to
// (*Grammar).NewRegExp.
type RegexBackend int8

const (
	// RegexBackendStdlib compiles RegExp rules with Go's regexp package
	// (RE2 semantics). The default.
	RegexBackendStdlib RegexBackend = iota
	// RegexBackendLexmachine compiles RegExp rules with a lexmachine DFA
	// instead, for grammars whose token patterns benefit from
	// lexmachine's own regex dialect or its scanner-generator
	// performance profile. (*Grammar).NewRegExp builds every rule with the
	// one backend the Grammar selected; Rule itself accepts a RegExp
	// parser of either kind and does not check which backend built it.
	RegexBackendLexmachine
)

func defaultConfig() Config {
	return Config{
		literalWS:       regexp.MustCompile(`\A[ \t\r\n]+`),
		reduction:       peg.ReductionFlatten,
		dropNames:       make(map[string]bool),
		dropCategories:  make(map[DropCategory]bool),
		disposableNames: make(map[string]bool),
		historyTracking: false,
		resumeNotices:   true,
		regexBackend:    RegexBackendStdlib,
	}
}

// Regex selects the RegExp engine the Grammar's NewRegExp helper compiles
// against.
func Regex(backend RegexBackend) Option {
	return func(c *Config) {
		c.regexBackend = backend
	}
}

// Option configures a Grammar at construction time.
type Option func(*Config)

// LiteralWhitespace sets the pattern Text parsers absorb on their right —
// the grammar-wide "skip trailing whitespace after every keyword/punctuation
// token" policy. Passing nil disables right-side absorption entirely.
func LiteralWhitespace(pattern *regexp.Regexp) Option {
	return func(c *Config) {
		c.literalWS = pattern
	}
}

// Reduction sets the CST compression policy applied as Series,
// ZeroOrMore and OneOrMore branches are assembled.
func Reduction(mode peg.ReductionMode) Option {
	return func(c *Config) {
		c.reduction = mode
	}
}

// DropNames marks the named parsers' matches as dropped entirely: the
// match still advances position but produces no node (typically used for
// whitespace and comment productions).
func DropNames(names ...string) Option {
	return func(c *Config) {
		for _, n := range names {
			c.dropNames[n] = true
		}
	}
}

// DropCategories marks every production of the given Kind-based categories
// as dropped, without having to enumerate each rule name individually —
// e.g. DropCategories(DropWhitespace) drops all whitespace productions at
// once.
func DropCategories(categories ...DropCategory) Option {
	return func(c *Config) {
		for _, cat := range categories {
			c.dropCategories[cat] = true
		}
	}
}

// DisposableNames marks the named parsers as disposable: a disposable
// branch is eligible for inlining/removal under the grammar's Reduction
// policy even though its name doesn't carry the `_` prefix Disposable()
// checks by default.
func DisposableNames(names ...string) Option {
	return func(c *Config) {
		for _, n := range names {
			c.disposableNames[n] = true
		}
	}
}

// DisposablePattern marks every production whose name matches pattern as
// disposable, alongside DisposableNames' exact-name form.
func DisposablePattern(pattern *regexp.Regexp) Option {
	return func(c *Config) {
		c.disposablePattern = pattern
	}
}

// HistoryTracking enables per-call tracing on every ParseState a Parse
// call creates. Off by default; tracing has a real, if modest, cost.
func HistoryTracking(b bool) Option {
	return func(c *Config) {
		c.historyTracking = b
	}
}

// ResumeNotices controls whether a successful mandatory-marker recovery
// is itself recorded as a Warning-severity note (in addition to the
// triggering error). Defaults to true.
func ResumeNotices(b bool) Option {
	return func(c *Config) {
		c.resumeNotices = b
	}
}
