package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestMemoryLoggerSequencesEvents(t *testing.T) {
	l := NewMemoryLogger()
	if got := l.LastEvent(); got.Type != EventSessionStart || got.Seq != 0 {
		t.Errorf("Expected zero event from empty logger, got %+v", got)
	}

	l.Log(NewSessionStartEvent(3, "study"))
	l.Log(NewAdvanceEvent(1, "study"))
	l.Log(NewAdvanceEvent(2, "study"))
	l.Log(NewLevelUpEvent("abcd1234", 9, 1, 2, "study"))

	if n := len(l.Events()); n != 4 {
		t.Fatalf("Expected 4 events, got %d", n)
	}
	if n := len(l.EventsOfType(EventAdvance)); n != 2 {
		t.Errorf("Expected 2 advance events, got %d", n)
	}
	last := l.LastEvent()
	if last.Seq != 4 || last.Type != EventLevelUp || last.Rank != 1 {
		t.Errorf("Unexpected last event %+v", last)
	}
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewLayoutChangeEvent("study", "grid", 0))
	l.Log(NewResetEvent(14, "grid"))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("Expected 2 lines, got %q", buf.String())
	}
	if !strings.HasPrefix(lines[0], "#1   grid   @0 |") {
		t.Errorf("Unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "14 cards back in play") {
		t.Errorf("Unexpected second line %q", lines[1])
	}
	if len(l.Events()) != 2 {
		t.Error("Expected TextLogger to keep events in memory")
	}
	if FormatAll(l.Events()) != buf.String() {
		t.Error("Expected FormatAll to match the written log")
	}
}
