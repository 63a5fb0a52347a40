package peg

import (
	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/npillmayer/parsekit"
	"github.com/npillmayer/parsekit/cst"
	"github.com/npillmayer/parsekit/peg/memo"
	"github.com/npillmayer/parsekit/peg/recovery"
	"github.com/npillmayer/parsekit/peg/trace"
)

// ReductionMode selects the CST compression policy a Grammar applies
// while assembling Series/ZeroOrMore/OneOrMore branches (the grammar's
// `reduction` configuration option).
type ReductionMode int8

const (
	// ReductionNone retains every child verbatim.
	ReductionNone ReductionMode = iota
	// ReductionMergeTreetops collapses a disposable child with exactly
	// one grandchild into that grandchild.
	ReductionMergeTreetops
	// ReductionFlatten inlines a disposable branch child's own children
	// in place of it; a disposable leaf child is kept as-is.
	ReductionFlatten
)

// Reduction applies a ReductionMode while assembling a branch's children,
// inlining or dropping disposable/empty nodes as configured. It is the
// in-parse counterpart to xform's post-parse transformation table — this
// runs automatically as each branch is built, before any xform pass.
type Reduction struct {
	Mode ReductionMode
}

// Apply filters and inlines children according to r's mode. A nil
// *Reduction behaves as ReductionNone.
func (r *Reduction) Apply(children []*cst.Node) []*cst.Node {
	if r == nil || r.Mode == ReductionNone {
		return dropEmpty(children)
	}
	out := make([]*cst.Node, 0, len(children))
	for _, c := range children {
		if cst.IsEmptyNode(c) {
			continue
		}
		if !c.Anonymous() {
			out = append(out, c)
			continue
		}
		switch r.Mode {
		case ReductionMergeTreetops:
			if grandchildren := c.Children(); len(grandchildren) == 1 {
				out = append(out, grandchildren[0])
				continue
			}
			out = append(out, c)
		case ReductionFlatten:
			if c.IsLeaf() {
				out = append(out, c)
			} else {
				out = append(out, c.Children()...)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

func dropEmpty(children []*cst.Node) []*cst.Node {
	out := make([]*cst.Node, 0, len(children))
	for _, c := range children {
		if !cst.IsEmptyNode(c) {
			out = append(out, c)
		}
	}
	return out
}

// captureOpKind distinguishes a journal entry undoing a push from one
// undoing a pop.
type captureOpKind int8

const (
	opPush captureOpKind = iota
	opPop
)

type captureOp struct {
	name  string
	kind  captureOpKind
	value string
}

// ParseState is the mutable context for one top-level parse call. It is
// created fresh per parse and discarded with it; Grammars, by contrast,
// are long-lived and shared.
type ParseState struct {
	Source   string
	Pos      int
	Errors   []parsekit.ErrorRecord
	Trace    *trace.Log
	Reduce   *Reduction
	Recovery *recovery.Registry
	Cache    *memo.Cache

	captures map[string]*arraystack.Stack
	journal  *arraystack.Stack

	activeCalls map[int64]bool

	farthestPos    int
	farthestParser string

	// ResumeNotices controls whether a successful mandatory-marker
	// recovery also appends a Warning-severity note alongside the
	// triggering error (the grammar's `resume_notices` configuration).
	ResumeNotices bool
}

// NewParseState creates a ParseState for a single parse call.
// historyTracking enables Trace; resumeNotices controls whether a
// successful mandatory-marker recovery also records a Warning note; a nil
// recovery registry is treated as empty (no resume points registered
// anywhere).
func NewParseState(source string, numParsers int32, rec *recovery.Registry, reduce *Reduction, historyTracking, resumeNotices bool) *ParseState {
	if rec == nil {
		rec = recovery.NewRegistry()
	}
	s := &ParseState{
		Source:        source,
		Cache:         memo.New(numParsers),
		Recovery:      rec,
		Reduce:        reduce,
		captures:      make(map[string]*arraystack.Stack),
		journal:       arraystack.New(),
		activeCalls:   make(map[int64]bool),
		farthestPos:   -1,
		ResumeNotices: resumeNotices,
	}
	if historyTracking {
		s.Trace = trace.NewLog()
	}
	return s
}

func (s *ParseState) stackFor(name string) *arraystack.Stack {
	st, ok := s.captures[name]
	if !ok {
		st = arraystack.New()
		s.captures[name] = st
	}
	return st
}

// PushCapture pushes value onto the named stack (Capture's effect).
func (s *ParseState) PushCapture(name, value string) {
	s.stackFor(name).Push(value)
	s.journal.Push(captureOp{name: name, kind: opPush, value: value})
	tracer().P("stack", name).Debugf("push %q", value)
}

// PopCapture removes and returns the top of the named stack (Pop's effect).
func (s *ParseState) PopCapture(name string) (string, bool) {
	v, ok := s.stackFor(name).Pop()
	if !ok {
		return "", false
	}
	value := v.(string)
	s.journal.Push(captureOp{name: name, kind: opPop, value: value})
	tracer().P("stack", name).Debugf("pop %q", value)
	return value, true
}

// PeekCapture returns the top of the named stack without removing it
// (Retrieve's effect).
func (s *ParseState) PeekCapture(name string) (string, bool) {
	v, ok := s.stackFor(name).Peek()
	if !ok {
		return "", false
	}
	return v.(string), true
}

// CaptureMark returns a journal position suitable for CaptureRollback.
func (s *ParseState) CaptureMark() int {
	return s.journal.Size()
}

// CaptureRollback undoes every capture-stack push and pop recorded since
// mark, in reverse order — backtracking through a Capture must undo the
// push it made.
func (s *ParseState) CaptureRollback(mark int) {
	for s.journal.Size() > mark {
		v, _ := s.journal.Pop()
		op := v.(captureOp)
		switch op.kind {
		case opPush:
			s.stackFor(op.name).Pop()
		case opPop:
			s.stackFor(op.name).Push(op.value)
		}
	}
}

// AllCaptureStacksEmpty reports whether every named capture stack is
// empty — the capture-balance invariant expected to hold at the end of
// every successful top-level parse.
func (s *ParseState) AllCaptureStacksEmpty() bool {
	for _, st := range s.captures {
		if !st.Empty() {
			return false
		}
	}
	return true
}

// AddError appends rec to the parse's accumulated error log.
func (s *ParseState) AddError(rec parsekit.ErrorRecord) {
	s.Errors = append(s.Errors, rec)
}

// RecordFailure tracks the farthest-reaching failure seen so far, for
// diagnostic reporting when every Alternative branch fails.
func (s *ParseState) RecordFailure(pos int, parserName string) {
	s.Cache.RecordFailurePosition(pos)
	if pos > s.farthestPos {
		s.farthestPos = pos
		s.farthestParser = parserName
	}
}

// Farthest returns the deepest-reaching failure position and the name of
// the parser that reached it, or (-1, "") if no failure was recorded.
func (s *ParseState) Farthest() (int, string) {
	return s.farthestPos, s.farthestParser
}

func recKey(id int32, pos int) int64 {
	return int64(id)<<32 | int64(uint32(pos))
}
