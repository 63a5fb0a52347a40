package grammar

import (
	"fmt"
	"sort"

	"github.com/cnf/structhash"
	"golang.org/x/exp/rand"

	"github.com/npillmayer/parsekit"
	"github.com/npillmayer/parsekit/cst"
	"github.com/npillmayer/parsekit/peg"
	"github.com/npillmayer/parsekit/peg/recovery"
)

// Grammar is a named collection of peg.Parsers, together with the
// recovery registry and finalization policy they share. Build one with
// New, register productions with Rule and Forward, then call Finalize
// before the first Parse.
type Grammar struct {
	name      string
	config    Config
	parsers   map[string]*peg.Parser
	order     []string // registration order, for deterministic Fingerprint/finalization
	nextID    int32
	recovery  *recovery.Registry
	finalized bool

	// contextSensitiveIDs lists every parser ID Finalize found to be
	// context-sensitive, for Parse to mark on each fresh memo.Cache before
	// the first Parse call runs against it.
	contextSensitiveIDs []int32
}

// New creates an empty Grammar. Parsers are added with Rule and Forward;
// call Finalize once every production has been registered and every
// Forward resolved.
func New(name string, opts ...Option) *Grammar {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Grammar{
		name:     name,
		config:   cfg,
		parsers:  make(map[string]*peg.Parser),
		nextID:   1, // 0 is reserved as "no identity assigned"
		recovery: recovery.NewRegistry(),
	}
}

// Rule registers a named parser with the grammar, assigning it its arena
// identity. Registering the same name twice is an error: grammars are
// built incrementally but each production is defined exactly once.
func (g *Grammar) Rule(name string, p *peg.Parser) error {
	if g.finalized {
		return fmt.Errorf("grammar %q: cannot register %q after Finalize", g.name, name)
	}
	if _, exists := g.parsers[name]; exists {
		return fmt.Errorf("grammar %q: rule %q already defined", g.name, name)
	}
	p.SetName(name)
	p.SetID(g.nextID)
	g.nextID++
	g.parsers[name] = p
	g.order = append(g.order, name)
	return nil
}

// Forward registers and returns a new unresolved Forward reference under
// name, for use in recursive or forward-referencing productions. Resolve
// it with its own Set before Finalize.
func (g *Grammar) Forward(name string) (*peg.Parser, error) {
	fwd := peg.NewForward(name)
	if err := g.Rule(name, fwd); err != nil {
		return nil, err
	}
	return fwd, nil
}

// NewRegExp builds a RegExp rule using whichever engine g.Config's Regex
// option selected, so a grammar can switch its whole rule set between Go's
// regexp and a lexmachine DFA without touching call sites.
func (g *Grammar) NewRegExp(name, pattern string) (*peg.Parser, error) {
	if g.config.regexBackend == RegexBackendLexmachine {
		return peg.NewRegExpByLexmachine(name, pattern)
	}
	return peg.NewRegExp(name, pattern)
}

// RegisterRecovery adds resume points for the named production, consulted
// when a Series mandatory element fails past that name.
func (g *Grammar) RegisterRecovery(parserName string, resumers ...recovery.Resumer) {
	g.recovery.Register(parserName, resumers...)
}

// RegisterErrorTemplate sets the error-message template for the named
// production's mandatory-marker failures.
func (g *Grammar) RegisterErrorTemplate(parserName, template string) {
	g.recovery.RegisterTemplate(parserName, template)
}

// anonymousName synthesizes a unique name for an inline parser that was
// never passed to Rule — e.g. a Series built ad-hoc inside another
// production. The prefix keeps it recognizably synthetic in tree dumps.
func (g *Grammar) anonymousName() string {
	return fmt.Sprintf("_anon%d", rand.Uint32())
}

// dropCategoryOf maps a parser's Kind to the DropCategory it belongs to,
// if any. Combinators (Series, Alternative, ZeroOrMore, ...) belong to no
// category: only atomic matchers are ever dropped wholesale.
func dropCategoryOf(k peg.Kind) (DropCategory, bool) {
	switch k {
	case peg.KindText:
		return DropStrings, true
	case peg.KindWhitespace:
		return DropWhitespace, true
	case peg.KindRegExp, peg.KindRegExpLexmachine:
		return DropRegexps, true
	default:
		return 0, false
	}
}

// Finalize walks every registered production, verifying all Forwards were
// resolved, assigning identities and anonymous names to any inline parser
// reachable only as a descendant, propagating context-sensitivity to a
// fixed point, and applying the disposable/drop naming policy. It must be
// called exactly once, after every Rule/Forward registration.
func (g *Grammar) Finalize() error {
	if g.finalized {
		return fmt.Errorf("grammar %q: already finalized", g.name)
	}

	// Pass 1: reach every descendant, assigning identity/name to inline
	// parsers and checking Forward resolution.
	seen := make(map[*peg.Parser]bool)
	var unresolved []string
	for _, name := range g.order {
		root := g.parsers[name]
		root.TraverseDescendants(func(p *peg.Parser) {
			if seen[p] {
				return
			}
			seen[p] = true
			if p.Kind() == peg.KindForward && p.Target() == nil {
				unresolved = append(unresolved, p.Name())
				return // reported below
			}
			if p.ID() == 0 {
				p.SetID(g.nextID)
				g.nextID++
			}
			if p.Name() == "" {
				p.SetName(g.anonymousName())
			}
		})
	}
	for _, name := range g.order {
		if fwd := g.parsers[name]; fwd.Kind() == peg.KindForward && fwd.Target() == nil {
			return fmt.Errorf("grammar %q: forward %q was never resolved", g.name, name)
		}
	}
	if len(unresolved) > 0 {
		return fmt.Errorf("grammar %q: forward %q was never resolved", g.name, unresolved[0])
	}

	// Pass 2: fixed-point propagation of context-sensitivity. A parser is
	// context-sensitive if it is Capture/Pop/Retrieve itself, or if any
	// immediate child is — iterate until no more parsers change.
	changed := true
	for changed {
		changed = false
		for _, name := range g.order {
			g.parsers[name].TraverseDescendants(func(p *peg.Parser) {
				if p.ContextSensitive() {
					return
				}
				sensitive := false
				switch p.Kind() {
				case peg.KindCapture, peg.KindPop, peg.KindRetrieve:
					sensitive = true
				default:
					for _, c := range p.ImmediateChildren() {
						if c.ContextSensitive() {
							sensitive = true
							break
						}
					}
				}
				if sensitive {
					p.SetContextSensitive(true)
					changed = true
				}
			})
		}
	}

	// Pass 3: disposable/drop naming and category policy, and collection
	// of every context-sensitive ID for Parse to mark on its memo.Cache.
	seen = make(map[*peg.Parser]bool)
	for _, name := range g.order {
		g.parsers[name].TraverseDescendants(func(p *peg.Parser) {
			if seen[p] {
				return
			}
			seen[p] = true

			if p.ContextSensitive() {
				g.contextSensitiveIDs = append(g.contextSensitiveIDs, p.ID())
			}

			drop := g.config.dropNames[p.Name()]
			if cat, ok := dropCategoryOf(p.Kind()); ok && g.config.dropCategories[cat] {
				drop = true
			}
			if drop {
				p.SetDropped(true)
			}
			if g.config.disposableNames[p.Name()] {
				p.SetDisposable(true)
			}
			if g.config.disposablePattern != nil && g.config.disposablePattern.MatchString(p.Name()) {
				p.SetDisposable(true)
			}
			if p.Kind() == peg.KindText && g.config.literalWS != nil {
				p.SetWhitespace(true, g.config.literalWS)
			}
		})
	}

	g.finalized = true
	return nil
}

// Fingerprint returns a stable content hash over the grammar's rule names
// and parser kinds, in registration order — a cheap way for a caller to
// detect whether two Grammar values were built from the same productions
// without comparing them structurally.
func (g *Grammar) Fingerprint() (string, error) {
	type ruleDigest struct {
		Name string
		Kind string
	}
	digests := make([]ruleDigest, 0, len(g.order))
	for _, name := range g.order {
		digests = append(digests, ruleDigest{Name: name, Kind: g.parsers[name].Kind().String()})
	}
	hash, err := structhash.Hash(digests, 1)
	if err != nil {
		return "", fmt.Errorf("grammar %q: fingerprint: %w", g.name, err)
	}
	return hash, nil
}

// Names returns every registered rule name, sorted, for diagnostics.
func (g *Grammar) Names() []string {
	names := make([]string, 0, len(g.parsers))
	for name := range g.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a registered production by name.
func (g *Grammar) Lookup(name string) (*peg.Parser, bool) {
	p, ok := g.parsers[name]
	return p, ok
}

// Parse runs the grammar's startName production against source. If
// completeMatch is true, a successful parse must also consume the entire
// input (an implicit EOF check); otherwise a prefix match succeeds. It
// returns the resulting tree (nil on failure) and every error record
// accumulated during the attempt.
func (g *Grammar) Parse(source, startName string, completeMatch bool) (*cst.Node, []parsekit.ErrorRecord) {
	start, ok := g.parsers[startName]
	if !ok {
		return nil, []parsekit.ErrorRecord{{
			Severity: parsekit.SeverityFatal,
			Message:  fmt.Sprintf("grammar %q: no such start rule %q", g.name, startName),
		}}
	}
	state := peg.NewParseState(source, g.nextID, g.recovery, &peg.Reduction{Mode: g.config.reduction}, g.config.historyTracking, g.config.resumeNotices)
	for _, id := range g.contextSensitiveIDs {
		state.Cache.MarkContextSensitive(id)
	}

	node, success := start.Parse(state)
	if !success {
		pos, parserName := state.Farthest()
		if pos < 0 {
			pos, parserName = 0, startName
		}
		return nil, append(state.Errors, parsekit.ErrorRecord{
			Position: pos,
			Severity: parsekit.SeverityFatal,
			Message:  fmt.Sprintf("no match for %q", parserName),
			Parser:   parserName,
		})
	}
	if completeMatch && state.Pos != len(source) {
		return node, append(state.Errors, parsekit.ErrorRecord{
			Position: state.Pos,
			Severity: parsekit.SeverityError,
			Message:  "trailing input after successful parse",
			Parser:   startName,
		})
	}
	tracer().Debugf("grammar %q: parse of %q succeeded, consumed %d/%d bytes", g.name, startName, state.Pos, len(source))
	return node, state.Errors
}
