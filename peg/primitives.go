package peg

import (
	"github.com/npillmayer/parsekit/cst"
	"github.com/timtadh/lexmachine"
)

// tagNode applies the grammar's `drop` and `disposable` policy to a
// freshly synthesized node: a dropped parser's match advances position
// but retains nothing; a disposable parser's node is marked anonymous so
// later reduction/transformation inlines it instead of keeping its tag.
func (p *Parser) tagNode(n *cst.Node) *cst.Node {
	if n == nil || cst.IsEmptyNode(n) {
		return n
	}
	if p.dropped {
		return cst.EmptyNode
	}
	n.SetAnonymous(p.Disposable())
	return n
}

func (p *Parser) parseRegExp(state *ParseState) (*cst.Node, bool) {
	if state.Pos > len(state.Source) {
		return nil, false
	}
	sub := state.Source[state.Pos:]
	loc := p.pattern.FindStringIndex(sub)
	if loc == nil {
		return nil, false
	}
	text := sub[loc[0]:loc[1]]
	node := cst.Leaf(p.name, text, state.Pos)
	state.Pos += len(text)
	return p.tagNode(node), true
}

// parseRegExpLexmachine matches like parseRegExp but through a compiled
// lexmachine DFA. A single-pattern lexer either matches at the scanner's
// current position or reports an UnconsumedInput error — there is no
// silent skip-ahead, so an error here means "no match here", not "retry
// further on".
func (p *Parser) parseRegExpLexmachine(state *ParseState) (*cst.Node, bool) {
	if state.Pos > len(state.Source) {
		return nil, false
	}
	sc, err := p.lexer.Scanner([]byte(state.Source[state.Pos:]))
	if err != nil {
		return nil, false
	}
	raw, scanErr, eof := sc.Next()
	if eof || scanErr != nil {
		return nil, false
	}
	tok := raw.(*lexmachine.Token)
	text := string(tok.Lexeme)
	node := cst.Leaf(p.name, text, state.Pos)
	state.Pos += len(text)
	return p.tagNode(node), true
}

// parseWhitespace matches exactly like RegExp; it is distinguished only
// so a Grammar can drop every whitespace production at once through its
// whitespace drop category, without callers having to name each one.
func (p *Parser) parseWhitespace(state *ParseState) (*cst.Node, bool) {
	return p.parseRegExp(state)
}

func (p *Parser) parseText(state *ParseState) (*cst.Node, bool) {
	sub := state.Source[state.Pos:]
	if len(sub) < len(p.literal) || sub[:len(p.literal)] != p.literal {
		return nil, false
	}
	pos := state.Pos
	newPos := pos + len(p.literal)
	if p.rightWS && p.wsPattern != nil && newPos <= len(state.Source) {
		if loc := p.wsPattern.FindStringIndex(state.Source[newPos:]); loc != nil && loc[0] == 0 {
			newPos += loc[1]
		}
	}
	node := cst.Leaf(p.name, p.literal, pos)
	state.Pos = newPos
	return p.tagNode(node), true
}

func (p *Parser) parseEOF(state *ParseState) (*cst.Node, bool) {
	if state.Pos != len(state.Source) {
		return nil, false
	}
	return p.tagNode(cst.Leaf(p.name, "", state.Pos)), true
}

func (p *Parser) matchLiteral(state *ParseState, literal string) (*cst.Node, bool) {
	sub := state.Source[state.Pos:]
	if len(sub) < len(literal) || sub[:len(literal)] != literal {
		return nil, false
	}
	pos := state.Pos
	node := cst.Leaf(p.name, literal, pos)
	state.Pos += len(literal)
	return p.tagNode(node), true
}
