/*
Package recovery implements the mandatory-marker error and resume
machinery. Once a Series has crossed a `§` mandatory element, a
subsequent failure is no longer a silent backtrack: it is recorded as an
error and the Series attempts to resume parsing at the nearest input
position matching a registered resume pattern.

It is kept separate from package peg so peg's combinators can depend on
a narrow Resumer/Registry surface without peg/recovery needing to know
about the Parser variant type.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package recovery

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.recovery'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.recovery")
}

// Resumer locates the nearest input position, at or after pos, from
// which parsing may continue after a mandatory-element failure.
// Implementations report -1 when no match exists.
type Resumer interface {
	FindResume(source string, pos int) int
	String() string
}

// RegexResumer resumes at the nearest match of a compiled pattern.
type RegexResumer struct {
	Name    string
	Pattern *regexp.Regexp
}

// FindResume implements Resumer.
func (r RegexResumer) FindResume(source string, pos int) int {
	if pos > len(source) {
		return -1
	}
	loc := r.Pattern.FindStringIndex(source[pos:])
	if loc == nil {
		return -1
	}
	return pos + loc[0]
}

func (r RegexResumer) String() string {
	if r.Name != "" {
		return r.Name
	}
	return r.Pattern.String()
}

// Template is an error-message template parsed once at grammar load time,
// with numeric placeholders such as `{1}` substituted at error-rendering
// time. A missing placeholder's argument is treated as a literal — it is
// left untouched rather than failing the render.
type Template struct {
	raw string
}

// NewTemplate parses a template string. Parsing never fails: any `{n}`
// token is valid syntax, substituted or not at Render time.
func NewTemplate(raw string) Template {
	return Template{raw: raw}
}

// Render substitutes args[i] for every occurrence of `{i+1}` in the
// template. Placeholders referencing an index beyond len(args) are left
// as literal text.
func (t Template) Render(args ...string) string {
	out := t.raw
	for i, a := range args {
		placeholder := "{" + strconv.Itoa(i+1) + "}"
		out = strings.ReplaceAll(out, placeholder, a)
	}
	return out
}

// Registry holds, per originating-parser name, the resume points and the
// optional error-message template a grammar registered for it (the `@
// <name>_error = '<resume_regex>', '<message>'` directive).
type Registry struct {
	resumers  map[string][]Resumer
	templates map[string]Template
}

// NewRegistry creates an empty recovery registry.
func NewRegistry() *Registry {
	return &Registry{
		resumers:  make(map[string][]Resumer),
		templates: make(map[string]Template),
	}
}

// Register adds resume points for parserName, tried in registration order
// — first match wins, exactly like Alternative.
func (r *Registry) Register(parserName string, resumers ...Resumer) {
	r.resumers[parserName] = append(r.resumers[parserName], resumers...)
}

// RegisterTemplate sets the error-message template for parserName.
func (r *Registry) RegisterTemplate(parserName string, template string) {
	r.templates[parserName] = NewTemplate(template)
}

// Attempt tries every resumer registered for parserName, in order, and
// returns the first successful resume position along with the resumer's
// name. ok is false if no resumer matched (or none were registered) —
// the failure is then fatal for the enclosing Series, though parsing may
// still continue at an ancestor boundary.
func (r *Registry) Attempt(parserName, source string, pos int) (resumePos int, resumerName string, ok bool) {
	for _, resumer := range r.resumers[parserName] {
		if p := resumer.FindResume(source, pos); p >= 0 {
			tracer().Debugf("recovery for %q resumes at %d via %s", parserName, p, resumer)
			return p, resumer.String(), true
		}
	}
	return -1, "", false
}

// Message renders the error message for a mandatory-element failure at
// parserName: the registered template if one exists, otherwise a default
// "expected <expected>, found <actual>" message.
func (r *Registry) Message(parserName, expected, actual string) string {
	if t, ok := r.templates[parserName]; ok {
		return t.Render(expected, actual)
	}
	if actual == "" {
		return "expected " + expected
	}
	return "expected " + expected + ", found " + actual
}
