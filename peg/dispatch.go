package peg

import (
	"github.com/npillmayer/parsekit/cst"
	"github.com/npillmayer/parsekit/peg/memo"
)

// Parse executes p against state at state.Pos, advancing state.Pos on
// success and leaving it untouched on failure (every parseXxx method
// below honors that contract). It wraps the Kind-specific logic with
// three cross-cutting concerns: packrat memoization, left-recursion
// short-circuiting, and call tracing.
func (p *Parser) Parse(state *ParseState) (*cst.Node, bool) {
	pos := state.Pos
	key := recKey(p.id, pos)

	if state.activeCalls[key] {
		// Re-entering the same parser at the same position without having
		// consumed anything: a left-recursive cycle. We short-circuit by
		// failing rather than growing a seed Warth-style.
		return nil, false
	}

	if entry, ok := state.Cache.Get(p.id, pos); ok {
		switch entry.Status {
		case memo.Found:
			state.Pos = entry.NewPos
			return entry.Node, true
		case memo.Failure:
			return nil, false
		}
	}

	depth := state.Trace.Enter()
	state.activeCalls[key] = true

	var node *cst.Node
	var ok bool
	switch p.kind {
	case KindRegExp:
		node, ok = p.parseRegExp(state)
	case KindRegExpLexmachine:
		node, ok = p.parseRegExpLexmachine(state)
	case KindText:
		node, ok = p.parseText(state)
	case KindWhitespace:
		node, ok = p.parseWhitespace(state)
	case KindEOF:
		node, ok = p.parseEOF(state)
	case KindOption:
		node, ok = p.parseOption(state)
	case KindZeroOrMore:
		node, ok = p.parseZeroOrMore(state)
	case KindOneOrMore:
		node, ok = p.parseOneOrMore(state)
	case KindDrop:
		node, ok = p.parseDrop(state)
	case KindLookahead:
		node, ok = p.parseLookahead(state)
	case KindNegativeLookahead:
		node, ok = p.parseNegativeLookahead(state)
	case KindLookbehind:
		node, ok = p.parseLookbehind(state)
	case KindNegativeLookbehind:
		node, ok = p.parseNegativeLookbehind(state)
	case KindSynonym:
		node, ok = p.parseSynonym(state)
	case KindCapture:
		node, ok = p.parseCapture(state)
	case KindPop:
		node, ok = p.parsePop(state)
	case KindRetrieve:
		node, ok = p.parseRetrieve(state)
	case KindSeries:
		node, ok = p.parseSeries(state)
	case KindAlternative:
		node, ok = p.parseAlternative(state)
	case KindForward:
		node, ok = p.parseForward(state)
	default:
		panic("peg: InternalError: unhandled Kind in Parse dispatch")
	}

	delete(state.activeCalls, key)

	var consumed string
	if ok {
		consumed = state.Source[pos:state.Pos]
	}
	state.Trace.Exit(depth, p.name, pos, state.Pos, ok, consumed)

	if !ok {
		state.RecordFailure(pos, p.name)
		state.Cache.Put(p.id, pos, memo.Entry{Status: memo.Failure})
		return nil, false
	}

	state.Cache.Put(p.id, pos, memo.Entry{
		Status: memo.Found,
		Node:   node,
		NewPos: state.Pos,
	})
	return node, true
}
