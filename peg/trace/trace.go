/*
Package trace implements the optional per-call history a parse can
record. When enabled, every parser invocation appends an Entry with
nesting depth, parser name, position, outcome, and the slice of input it
consumed. Tracing never alters parse results — it is purely a
side-channel for post-mortem inspection.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package trace

import (
	"fmt"
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// tracer traces with key 'parsekit.trace'.
func tracer() tracing.Trace {
	return tracing.Select("parsekit.trace")
}

// Entry records one parser invocation.
type Entry struct {
	Depth    int
	Parser   string
	PosIn    int
	PosOut   int  // only meaningful if Success
	Success  bool
	Consumed string
}

// Log is an ordered history of parser invocations for a single parse.
// A nil *Log is valid and behaves as if tracing were disabled — callers
// need not check for nil before calling Enter/Exit.
type Log struct {
	Entries []Entry
	depth   int
}

// NewLog creates an enabled, empty Log.
func NewLog() *Log {
	return &Log{}
}

// Enter returns the nesting depth to pass to the matching Exit call, and
// bumps the running depth counter. It records nothing by itself — Exit
// does, once the outcome is known.
func (l *Log) Enter() int {
	if l == nil {
		return 0
	}
	d := l.depth
	l.depth++
	return d
}

// Exit records the outcome of an invocation entered at depth d.
func (l *Log) Exit(d int, parser string, posIn, posOut int, success bool, consumed string) {
	if l == nil {
		return
	}
	l.depth = d
	l.Entries = append(l.Entries, Entry{
		Depth:    d,
		Parser:   parser,
		PosIn:    posIn,
		PosOut:   posOut,
		Success:  success,
		Consumed: consumed,
	})
	tracer().P("parser", parser).Debugf("[%d] pos %d -> %d success=%v", d, posIn, posOut, success)
}

// Dump writes an indented, pterm-styled rendering of the call history to
// w: one line per invocation, indented by nesting depth, failures styled
// dim and successes printed unstyled with the consumed slice quoted.
func (l *Log) Dump(w io.Writer) {
	if l == nil {
		return
	}
	for _, e := range l.Entries {
		indent := ""
		for i := 0; i < e.Depth; i++ {
			indent += "  "
		}
		var line string
		if e.Success {
			line = fmt.Sprintf("%s%s @%d-%d %q", indent, e.Parser, e.PosIn, e.PosOut, e.Consumed)
		} else {
			line = pterm.NewStyle(pterm.FgGray).Sprintf("%s%s @%d FAIL", indent, e.Parser, e.PosIn)
		}
		fmt.Fprintln(w, line)
	}
}
