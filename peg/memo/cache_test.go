package memo

import "testing"

func TestMissByDefault(t *testing.T) {
	c := New(4)
	if _, ok := c.Get(0, 10); ok {
		t.Error("expected miss on empty cache")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	c := New(4)
	c.Put(2, 5, Entry{Status: Found, NewPos: 8})
	e, ok := c.Get(2, 5)
	if !ok || e.Status != Found || e.NewPos != 8 {
		t.Errorf("unexpected cache entry: %+v, ok=%v", e, ok)
	}
}

func TestContextSensitiveNeverCached(t *testing.T) {
	c := New(4)
	c.MarkContextSensitive(1)
	c.Put(1, 0, Entry{Status: Found})
	if _, ok := c.Get(1, 0); ok {
		t.Error("context-sensitive parser must never be cached")
	}
}

func TestGrowsArenaForLargeParserID(t *testing.T) {
	c := New(1)
	c.Put(10, 0, Entry{Status: Failure})
	if _, ok := c.Get(10, 0); !ok {
		t.Error("expected cache to grow its arena for an out-of-range parser id")
	}
}

func TestFarthestFailure(t *testing.T) {
	c := New(1)
	if c.FarthestFailure() != -1 {
		t.Error("expected -1 with no recorded failures")
	}
	c.RecordFailurePosition(3)
	c.RecordFailurePosition(11)
	c.RecordFailurePosition(7)
	if got := c.FarthestFailure(); got != 11 {
		t.Errorf("expected farthest failure 11, got %d", got)
	}
}
