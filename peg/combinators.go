package peg

import (
	"github.com/npillmayer/parsekit/cst"
)

func (p *Parser) parseOption(state *ParseState) (*cst.Node, bool) {
	start := state.Pos
	mark := state.CaptureMark()
	node, ok := p.child.Parse(state)
	if ok {
		return node, true
	}
	state.Pos = start
	state.CaptureRollback(mark)
	return cst.EmptyNode, true
}

func (p *Parser) parseZeroOrMore(state *ParseState) (*cst.Node, bool) {
	pos := state.Pos
	var children []*cst.Node
	for {
		before := state.Pos
		mark := state.CaptureMark()
		node, ok := p.child.Parse(state)
		if !ok {
			state.Pos = before
			state.CaptureRollback(mark)
			break
		}
		if !cst.IsEmptyNode(node) {
			children = append(children, node)
		}
		if state.Pos == before {
			// Zero-width success: stop rather than spin forever by
			// requiring strict advancement between iterations.
			break
		}
	}
	return p.tagNode(cst.Branch(p.name, state.Reduce.Apply(children), pos)), true
}

func (p *Parser) parseOneOrMore(state *ParseState) (*cst.Node, bool) {
	pos := state.Pos
	var children []*cst.Node
	count := 0
	for {
		before := state.Pos
		mark := state.CaptureMark()
		node, ok := p.child.Parse(state)
		if !ok {
			state.Pos = before
			state.CaptureRollback(mark)
			break
		}
		count++
		if !cst.IsEmptyNode(node) {
			children = append(children, node)
		}
		if state.Pos == before {
			break
		}
	}
	if count == 0 {
		return nil, false
	}
	return p.tagNode(cst.Branch(p.name, state.Reduce.Apply(children), pos)), true
}

func (p *Parser) parseDrop(state *ParseState) (*cst.Node, bool) {
	_, ok := p.child.Parse(state)
	if !ok {
		return nil, false
	}
	return cst.EmptyNode, true
}

func (p *Parser) parseLookahead(state *ParseState) (*cst.Node, bool) {
	before := state.Pos
	mark := state.CaptureMark()
	_, ok := p.child.Parse(state)
	state.Pos = before
	state.CaptureRollback(mark)
	if !ok {
		return nil, false
	}
	return cst.EmptyNode, true
}

func (p *Parser) parseNegativeLookahead(state *ParseState) (*cst.Node, bool) {
	before := state.Pos
	mark := state.CaptureMark()
	_, ok := p.child.Parse(state)
	state.Pos = before
	state.CaptureRollback(mark)
	if ok {
		return nil, false
	}
	return cst.EmptyNode, true
}

func (p *Parser) matchesBehind(state *ParseState) bool {
	end := state.Pos
	start := 0
	if p.behindWindow > 0 && end-p.behindWindow > start {
		start = end - p.behindWindow
	}
	if start > end || end > len(state.Source) {
		return false
	}
	return p.pattern.MatchString(state.Source[start:end])
}

func (p *Parser) parseLookbehind(state *ParseState) (*cst.Node, bool) {
	if !p.matchesBehind(state) {
		return nil, false
	}
	return cst.EmptyNode, true
}

func (p *Parser) parseNegativeLookbehind(state *ParseState) (*cst.Node, bool) {
	if p.matchesBehind(state) {
		return nil, false
	}
	return cst.EmptyNode, true
}

func (p *Parser) parseSynonym(state *ParseState) (*cst.Node, bool) {
	node, ok := p.child.Parse(state)
	if !ok {
		return nil, false
	}
	if cst.IsEmptyNode(node) {
		return node, true
	}
	return p.tagNode(node.WithTag(p.name)), true
}

func (p *Parser) parseForward(state *ParseState) (*cst.Node, bool) {
	if p.target == nil {
		panic("peg: InternalError: Forward " + p.name + " was never resolved")
	}
	return p.target.Parse(state)
}
