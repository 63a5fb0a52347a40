package peg

import (
	"strings"

	"github.com/npillmayer/parsekit"
	"github.com/npillmayer/parsekit/cst"
)

// lookaheadSnippet returns a short prefix of the unconsumed input for use
// as the "actual" half of an error message, stopping at the first
// newline so multi-line messages stay readable.
func lookaheadSnippet(source string, pos int) string {
	const maxLen = 24
	if pos >= len(source) {
		return "<EOF>"
	}
	end := pos + maxLen
	if end > len(source) {
		end = len(source)
	}
	snippet := source[pos:end]
	if i := strings.IndexByte(snippet, '\n'); i >= 0 {
		snippet = snippet[:i]
	}
	return snippet
}

// parseSeries runs children in order. A failure before mandatoryIndex is
// a plain backtrack — the whole Series fails silently. A failure at or
// after mandatoryIndex is recorded as an error and recovery is attempted
// at the Series' registered resume points.
func (p *Parser) parseSeries(state *ParseState) (*cst.Node, bool) {
	start := state.Pos
	mark := state.CaptureMark()
	var children []*cst.Node
	mandatoryCrossed := false

	for i, child := range p.seq {
		if i == p.mandatoryIndex {
			mandatoryCrossed = true
		}
		before := state.Pos
		childMark := state.CaptureMark()
		node, ok := child.Parse(state)
		if ok {
			if !cst.IsEmptyNode(node) {
				children = append(children, node)
			}
			continue
		}

		if !mandatoryCrossed {
			state.Pos = start
			state.CaptureRollback(mark)
			return nil, false
		}

		// Mandatory failure: plain backtrack is no longer an option.
		state.Pos = before
		state.CaptureRollback(childMark)
		expected := child.Name()
		actual := lookaheadSnippet(state.Source, before)
		msg := state.Recovery.Message(p.errorTemplate, expected, actual)
		errRec := parsekit.ErrorRecord{
			Position:  before,
			Severity:  parsekit.SeverityError,
			Message:   msg,
			Parser:    p.name,
			Offending: actual,
		}

		resumePos, resumerName, found := state.Recovery.Attempt(p.errorTemplate, state.Source, before)
		if !found {
			errRec.Severity = parsekit.SeverityFatal
			state.AddError(errRec)
			state.Pos = start
			state.CaptureRollback(mark)
			// Fatal for this Series: parsing continues at an ancestor
			// boundary, i.e. this Series itself reports failure.
			return nil, false
		}
		errRec.Recovery = resumerName
		state.AddError(errRec)
		if state.ResumeNotices {
			state.AddError(parsekit.ErrorRecord{
				Position: resumePos,
				Severity: parsekit.SeverityWarning,
				Message:  "resumed parsing via " + resumerName + " after the error above",
				Parser:   p.name,
				Recovery: resumerName,
			})
		}

		truncated := cst.Leaf(child.Name(), state.Source[before:resumePos], before)
		truncated.SetAnonymous(child.Disposable())
		truncated.AttachError(errRec)
		children = append(children, truncated)
		state.Pos = resumePos
	}

	return p.tagNode(cst.Branch(p.name, state.Reduce.Apply(children), start)), true
}

// parseAlternative tries each alternative in declaration order at the
// same position; ties are broken by order, and the farthest-reaching
// failure across all tried alternatives is recorded for diagnostics.
func (p *Parser) parseAlternative(state *ParseState) (*cst.Node, bool) {
	start := state.Pos
	mark := state.CaptureMark()
	for _, alt := range p.seq {
		node, ok := alt.Parse(state)
		if ok {
			return node, true
		}
		state.Pos = start
		state.CaptureRollback(mark)
		state.RecordFailure(start, alt.Name())
	}
	return nil, false
}
