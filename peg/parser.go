package peg

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
)

// Kind discriminates the parser variants: atomic matchers, unary and
// n-ary combinators, and the Forward reference. A single Kind-dispatched
// struct replaces a family of duck-typed `parse()` objects.
type Kind int8

const (
	KindRegExp Kind = iota
	KindRegExpLexmachine
	KindText
	KindWhitespace
	KindEOF
	KindOption
	KindZeroOrMore
	KindOneOrMore
	KindDrop
	KindLookahead
	KindNegativeLookahead
	KindLookbehind
	KindNegativeLookbehind
	KindSynonym
	KindCapture
	KindPop
	KindRetrieve
	KindSeries
	KindAlternative
	KindForward
)

func (k Kind) String() string {
	switch k {
	case KindRegExp:
		return "RegExp"
	case KindRegExpLexmachine:
		return "RegExpLexmachine"
	case KindText:
		return "Text"
	case KindWhitespace:
		return "Whitespace"
	case KindEOF:
		return "EOF"
	case KindOption:
		return "Option"
	case KindZeroOrMore:
		return "ZeroOrMore"
	case KindOneOrMore:
		return "OneOrMore"
	case KindDrop:
		return "Drop"
	case KindLookahead:
		return "Lookahead"
	case KindNegativeLookahead:
		return "NegativeLookahead"
	case KindLookbehind:
		return "Lookbehind"
	case KindNegativeLookbehind:
		return "NegativeLookbehind"
	case KindSynonym:
		return "Synonym"
	case KindCapture:
		return "Capture"
	case KindPop:
		return "Pop"
	case KindRetrieve:
		return "Retrieve"
	case KindSeries:
		return "Series"
	case KindAlternative:
		return "Alternative"
	case KindForward:
		return "Forward"
	default:
		return "?"
	}
}

// Parser is a polymorphic matcher exposing Parse, SetName and
// TraverseDescendants, realized as one struct carrying only the fields
// its Kind uses.
type Parser struct {
	kind Kind
	id   int32 // arena index, assigned by the owning Grammar (Rule, or Finalize for inline parsers)
	name string

	// atomic
	pattern *regexp.Regexp    // RegExp, Whitespace (anchored at match start)
	lexer   *lexmachine.Lexer // RegExpLexmachine
	literal string            // Text

	// Text literalws absorption, configured by the owning Grammar
	rightWS   bool
	wsPattern *regexp.Regexp

	// unary
	child *Parser // Option, ZeroOrMore, OneOrMore, Drop, Lookahead,
	// NegativeLookahead, Synonym, Capture

	// Lookbehind / NegativeLookbehind: pattern is compiled with a
	// trailing "$" so a match, wherever it starts, always ends at the
	// current position; window bounds how far back it may start (0 =
	// unbounded, scanning safely to start-of-input).
	behindWindow int

	// Capture / Pop / Retrieve
	stackName string

	// n-ary
	seq            []*Parser // Series, Alternative
	mandatoryIndex int       // Series; -1 means no `§` marker
	errorTemplate  string    // name under which a recovery template/resume is registered

	// Forward
	target   *Parser
	resolved bool

	// grammar-finalization metadata
	contextSensitive bool
	disposable       bool
	dropped          bool
}

// Name returns the parser's declared (or anonymous, grammar-assigned) name.
func (p *Parser) Name() string {
	return p.name
}

// SetName implements the `set_name` capability: grammar finalization uses
// it to assign anonymous names to unnamed inline parsers.
func (p *Parser) SetName(name string) {
	p.name = name
}

// ID returns the small-integer arena identity assigned by the owning
// Grammar. Zero until assigned.
func (p *Parser) ID() int32 {
	return p.id
}

// SetID assigns the arena identity; called once by the owning Grammar,
// from Rule for a registered production or from Finalize for an inline one.
func (p *Parser) SetID(id int32) {
	p.id = id
}

// Kind returns the parser variant.
func (p *Parser) Kind() Kind {
	return p.kind
}

// SetContextSensitive marks p as touching a named capture stack — either
// directly (Capture/Pop/Retrieve) or transitively through a descendant —
// excluding it from memoization.
func (p *Parser) SetContextSensitive(v bool) {
	p.contextSensitive = v
}

// ContextSensitive reports the flag SetContextSensitive set.
func (p *Parser) ContextSensitive() bool {
	return p.contextSensitive
}

// SetDisposable marks p's resulting nodes as disposable (their tag must
// never leak into the final tree — children are promoted to the parent
// instead). Grammar finalization sets this from the `disposable`
// configuration; a `_`-prefixed name is disposable regardless.
func (p *Parser) SetDisposable(v bool) {
	p.disposable = v
}

// Disposable reports whether p's nodes are anonymous/inlineable.
func (p *Parser) Disposable() bool {
	return p.disposable || strings.HasPrefix(p.name, "_")
}

// SetDropped marks p's nodes as dropped entirely (the `drop` category
// configuration): the match still advances position, but no node is
// retained at all.
func (p *Parser) SetDropped(v bool) {
	p.dropped = v
}

// SetWhitespace configures Text's right-side whitespace absorption
// (`literalws = right` in the grammar's configuration).
func (p *Parser) SetWhitespace(rightWS bool, pattern *regexp.Regexp) {
	p.rightWS = rightWS
	p.wsPattern = pattern
}

// ImmediateChildren returns p's direct parser children (not descendants),
// used by grammar finalization's fixed-point context-sensitivity pass.
func (p *Parser) ImmediateChildren() []*Parser {
	switch p.kind {
	case KindForward:
		if p.target == nil {
			return nil
		}
		return []*Parser{p.target}
	case KindSeries, KindAlternative:
		return p.seq
	default:
		if p.child != nil {
			return []*Parser{p.child}
		}
		return nil
	}
}

// TraverseDescendants visits p and every descendant exactly once,
// tolerating cycles introduced by Forward.
func (p *Parser) TraverseDescendants(visit func(*Parser)) {
	visited := make(map[*Parser]bool)
	var walk func(*Parser)
	walk = func(q *Parser) {
		if q == nil || visited[q] {
			return
		}
		visited[q] = true
		visit(q)
		for _, c := range q.ImmediateChildren() {
			walk(c)
		}
	}
	walk(p)
}

// --- Constructors -----------------------------------------------------

// NewRegExp creates an atomic RegExp matcher. pattern is anchored at the
// current position internally; callers write it exactly as they would in
// a grammar's `/…/` literal.
func NewRegExp(name, pattern string) (*Parser, error) {
	anchored, err := regexp.Compile(`\A(?:` + pattern + `)`)
	if err != nil {
		return nil, fmt.Errorf("peg: invalid RegExp pattern for %q: %w", name, err)
	}
	return &Parser{kind: KindRegExp, name: name, pattern: anchored}, nil
}

// NewRegExpByLexmachine creates an atomic matcher backed by a compiled
// lexmachine DFA rather than Go's regexp/RE2 engine — the alternate RegExp
// backend a Grammar selects via Regex(RegexBackendLexmachine). pattern is
// written in lexmachine's own regex dialect; a match must start at the
// parser's current position, exactly like the stdlib backend.
func NewRegExpByLexmachine(name, pattern string) (*Parser, error) {
	lx := lexmachine.NewLexer()
	err := lx.Add([]byte(pattern), func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(0, string(m.Bytes), m), nil
	})
	if err != nil {
		return nil, fmt.Errorf("peg: invalid lexmachine pattern for %q: %w", name, err)
	}
	if err := lx.Compile(); err != nil {
		return nil, fmt.Errorf("peg: lexmachine DFA compile failed for %q: %w", name, err)
	}
	return &Parser{kind: KindRegExpLexmachine, name: name, lexer: lx}, nil
}

// NewText creates an atomic literal matcher.
func NewText(name, literal string) *Parser {
	return &Parser{kind: KindText, name: name, literal: literal}
}

// NewWhitespace creates a Whitespace matcher: like RegExp, but grammars
// typically wrap it in Drop (or mark its name in the `drop` category) so
// its match is discarded rather than retained.
func NewWhitespace(name, pattern string) (*Parser, error) {
	p, err := NewRegExp(name, pattern)
	if err != nil {
		return nil, err
	}
	p.kind = KindWhitespace
	return p, nil
}

// NewEOF creates the zero-width end-of-input matcher.
func NewEOF(name string) *Parser {
	return &Parser{kind: KindEOF, name: name}
}

// NewOption creates an Option combinator: always succeeds.
func NewOption(name string, child *Parser) *Parser {
	return &Parser{kind: KindOption, name: name, child: child}
}

// NewZeroOrMore creates a ZeroOrMore combinator.
func NewZeroOrMore(name string, child *Parser) *Parser {
	return &Parser{kind: KindZeroOrMore, name: name, child: child}
}

// NewOneOrMore creates a OneOrMore combinator.
func NewOneOrMore(name string, child *Parser) *Parser {
	return &Parser{kind: KindOneOrMore, name: name, child: child}
}

// NewDrop wraps child so a successful match produces no retained node
// (position still advances; failure propagates).
func NewDrop(name string, child *Parser) *Parser {
	return &Parser{kind: KindDrop, name: name, child: child}
}

// NewLookahead creates a zero-width positive lookahead.
func NewLookahead(name string, child *Parser) *Parser {
	return &Parser{kind: KindLookahead, name: name, child: child}
}

// NewNegativeLookahead creates a zero-width negative lookahead.
func NewNegativeLookahead(name string, child *Parser) *Parser {
	return &Parser{kind: KindNegativeLookahead, name: name, child: child}
}

// NewLookbehind creates a zero-width positive lookbehind. window bounds
// how many bytes before the current position are considered; 0 means
// unbounded, scanning back to the start of input.
func NewLookbehind(name, pattern string, window int) (*Parser, error) {
	re, err := regexp.Compile("(?:" + pattern + ")$")
	if err != nil {
		return nil, fmt.Errorf("peg: invalid Lookbehind pattern for %q: %w", name, err)
	}
	return &Parser{kind: KindLookbehind, name: name, pattern: re, behindWindow: window}, nil
}

// NewNegativeLookbehind creates a zero-width negative lookbehind.
func NewNegativeLookbehind(name, pattern string, window int) (*Parser, error) {
	p, err := NewLookbehind(name, pattern, window)
	if err != nil {
		return nil, err
	}
	p.kind = KindNegativeLookbehind
	return p, nil
}

// NewSynonym creates a transparent indirection that preserves a distinct
// name for tree reporting: the child's match is retagged with name.
func NewSynonym(name string, child *Parser) *Parser {
	return &Parser{kind: KindSynonym, name: name, child: child}
}

// NewCapture creates a Capture(name, child): on success, child's matched
// content is pushed onto the named stack.
func NewCapture(name, stackName string, child *Parser) *Parser {
	return &Parser{kind: KindCapture, name: name, stackName: stackName, child: child}
}

// NewPop creates a Pop(name): matches the literal string at the top of
// stack name, removing it on success.
func NewPop(name, stackName string) *Parser {
	return &Parser{kind: KindPop, name: name, stackName: stackName}
}

// NewRetrieve creates a Retrieve(name): matches the literal string at the
// top of stack name without removing it.
func NewRetrieve(name, stackName string) *Parser {
	return &Parser{kind: KindRetrieve, name: name, stackName: stackName}
}

// NewSeries creates an ordered concatenation. mandatoryIndex is the index
// (within children) of the first element the grammar marked with `§`;
// pass -1 if the series has no mandatory marker. errorTemplate names the
// recovery-registry entry consulted once a mandatory failure occurs —
// pass "" to use name itself.
func NewSeries(name string, children []*Parser, mandatoryIndex int, errorTemplate string) *Parser {
	if errorTemplate == "" {
		errorTemplate = name
	}
	return &Parser{kind: KindSeries, name: name, seq: children, mandatoryIndex: mandatoryIndex, errorTemplate: errorTemplate}
}

// NewAlternative creates an ordered choice: first success wins.
func NewAlternative(name string, children []*Parser) *Parser {
	return &Parser{kind: KindAlternative, name: name, seq: children}
}

// NewForward creates an unresolved Forward reference, for cyclic grammars.
func NewForward(name string) *Parser {
	return &Parser{kind: KindForward, name: name}
}

// Set resolves a Forward to target. It may be called exactly once;
// calling it again returns an error — re-setting a Forward is forbidden.
func (p *Parser) Set(target *Parser) error {
	if p.kind != KindForward {
		return fmt.Errorf("peg: Set called on non-Forward parser %q", p.name)
	}
	if p.resolved {
		return fmt.Errorf("peg: Forward %q already resolved, cannot re-set", p.name)
	}
	p.target = target
	p.resolved = true
	return nil
}

// Target returns the parser a Forward has been resolved to, or nil.
func (p *Parser) Target() *Parser {
	return p.target
}
