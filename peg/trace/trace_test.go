package trace

import (
	"bytes"
	"testing"
)

func TestNilLogIsSafe(t *testing.T) {
	var l *Log
	d := l.Enter()
	l.Exit(d, "RegExp", 0, 1, true, "a")
	var buf bytes.Buffer
	l.Dump(&buf)
	if buf.Len() != 0 {
		t.Errorf("nil log should produce no output, got %q", buf.String())
	}
}

func TestLogRecordsNesting(t *testing.T) {
	l := NewLog()
	outer := l.Enter()
	inner := l.Enter()
	l.Exit(inner, "ID", 0, 1, true, "a")
	l.Exit(outer, "Series", 0, 1, true, "a")
	if len(l.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(l.Entries))
	}
	if l.Entries[0].Depth != 1 || l.Entries[1].Depth != 0 {
		t.Errorf("unexpected depths: %+v", l.Entries)
	}
}
