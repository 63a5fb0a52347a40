/*
Package memo implements the per-(parser, position) memoization cache
backing packrat parsing: a successful or failed verdict for a given
parser at a given input position is recorded once and replayed on any
later lookup, with an explicit carve-out for the context-sensitive
subset (parsers that read or write a Capture/Pop/Retrieve stack) which
cannot be cached without breaking referential transparency.

The cache is keyed by a small integer parser identity rather than a
pointer or name, and is backed by a slice-of-maps arena indexed by that
identity for cache locality.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package memo

import (
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/npillmayer/parsekit/cst"
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'parsekit.memo'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.memo")
}

// Status is the outcome recorded for a (parser, position) pair.
type Status int8

const (
	// Miss means no verdict has been cached yet for this key.
	Miss Status = iota
	// Failure means the parser is known to fail at this position.
	Failure
	// Found means the parser is known to succeed at this position.
	Found
)

// Entry is a cached verdict: a Miss and a Failure carry nothing beyond
// their Status, and a Found carries the resulting node and the position
// just past it. StackDelta holds a net change in capture-stack depth; the
// peg runtime never sets it, since it never caches a context-sensitive
// parser.
type Entry struct {
	Status     Status
	Node       *cst.Node
	NewPos     int
	StackDelta int
}

// Cache maps (parser identity, position) to an Entry. Its lifetime is one
// parse call — a fresh Cache is created per ParseState and discarded with
// it.
type Cache struct {
	arena             []map[int]Entry
	contextSensitive  map[int32]bool
	farthestFailures  *treeset.Set
}

// New creates a Cache sized for a grammar with numParsers distinct parser
// identities (small integers assigned at grammar finalization).
func New(numParsers int32) *Cache {
	return &Cache{
		arena:            make([]map[int]Entry, numParsers),
		contextSensitive: make(map[int32]bool),
		farthestFailures: treeset.NewWith(utils.IntComparator),
	}
}

// MarkContextSensitive excludes parserID from caching entirely: its
// subtree references a named capture stack, so repeated lookups are not
// referentially transparent.
func (c *Cache) MarkContextSensitive(parserID int32) {
	c.contextSensitive[parserID] = true
}

// IsContextSensitive reports whether parserID was marked as such.
func (c *Cache) IsContextSensitive(parserID int32) bool {
	return c.contextSensitive[parserID]
}

// Get looks up the cached verdict for (parserID, pos). The second return
// value is false both for an uncached key and for a context-sensitive
// parser, which is never considered cacheable.
func (c *Cache) Get(parserID int32, pos int) (Entry, bool) {
	if c.contextSensitive[parserID] {
		return Entry{}, false
	}
	row := c.row(parserID)
	if row == nil {
		return Entry{}, false
	}
	e, ok := row[pos]
	return e, ok
}

// Put records a verdict for (parserID, pos). It is a no-op for a
// context-sensitive parser.
func (c *Cache) Put(parserID int32, pos int, e Entry) {
	if c.contextSensitive[parserID] {
		return
	}
	if int(parserID) >= len(c.arena) {
		grown := make([]map[int]Entry, parserID+1)
		copy(grown, c.arena)
		c.arena = grown
	}
	if c.arena[parserID] == nil {
		c.arena[parserID] = make(map[int]Entry)
	}
	c.arena[parserID][pos] = e
	tracer().Debugf("memo[parser=%d, pos=%d] = %v", parserID, pos, e.Status)
}

func (c *Cache) row(parserID int32) map[int]Entry {
	if int(parserID) >= len(c.arena) || parserID < 0 {
		return nil
	}
	return c.arena[parserID]
}

// RecordFailurePosition tracks a distinct failure position for the
// "farthest failure" diagnostic a ParseState keeps across a parse (used
// by Alternative to report the deepest-reaching candidate, not just the
// first).
func (c *Cache) RecordFailurePosition(pos int) {
	c.farthestFailures.Add(pos)
}

// FarthestFailure returns the greatest recorded failure position, or -1
// if none were recorded.
func (c *Cache) FarthestFailure() int {
	if c.farthestFailures.Empty() {
		return -1
	}
	values := c.farthestFailures.Values()
	max := -1
	for _, v := range values {
		if p := v.(int); p > max {
			max = p
		}
	}
	return max
}
