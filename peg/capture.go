package peg

import (
	"github.com/npillmayer/parsekit/cst"
)

func (p *Parser) parseCapture(state *ParseState) (*cst.Node, bool) {
	start := state.Pos
	node, ok := p.child.Parse(state)
	if !ok {
		state.Pos = start
		return nil, false
	}
	state.PushCapture(p.stackName, node.Content())
	return node, true
}

func (p *Parser) parsePop(state *ParseState) (*cst.Node, bool) {
	top, ok := state.PeekCapture(p.stackName)
	if !ok {
		return nil, false
	}
	node, matched := p.matchLiteral(state, top)
	if !matched {
		return nil, false
	}
	state.PopCapture(p.stackName)
	return node, true
}

func (p *Parser) parseRetrieve(state *ParseState) (*cst.Node, bool) {
	top, ok := state.PeekCapture(p.stackName)
	if !ok {
		return nil, false
	}
	return p.matchLiteral(state, top)
}
