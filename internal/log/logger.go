package log

import (
	"fmt"
	"io"
	"strings"
)

// EventLogger is the interface for logging session events.
type EventLogger interface {
	Log(event SessionEvent)
	Events() []SessionEvent
}

// --- MemoryLogger: stores events in memory for test assertions ---

type MemoryLogger struct {
	events []SessionEvent
	seq    int
}

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) Log(event SessionEvent) {
	l.seq++
	event.Seq = l.seq
	l.events = append(l.events, event)
}

func (l *MemoryLogger) Events() []SessionEvent {
	return l.events
}

// EventsOfType returns all events matching the given type.
func (l *MemoryLogger) EventsOfType(t EventType) []SessionEvent {
	var result []SessionEvent
	for _, e := range l.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// LastEvent returns the most recent event, or a zero event if none.
func (l *MemoryLogger) LastEvent() SessionEvent {
	if len(l.events) == 0 {
		return SessionEvent{}
	}
	return l.events[len(l.events)-1]
}

// --- TextLogger: writes human-readable lines to an io.Writer ---

type TextLogger struct {
	MemoryLogger
	w io.Writer
}

func NewTextLogger(w io.Writer) *TextLogger {
	return &TextLogger{w: w}
}

func (l *TextLogger) Log(event SessionEvent) {
	l.MemoryLogger.Log(event)
	fmt.Fprintln(l.w, FormatEvent(event))
}

// --- Formatting ---

// FormatEvent formats a single event as a human-readable line.
func FormatEvent(e SessionEvent) string {
	layout := e.Layout
	// Pad layout to 6 chars for alignment
	for len(layout) < 6 {
		layout += " "
	}
	return fmt.Sprintf("#%-3d %s @%-2d| %s", e.Seq, layout, e.Index, e.Details)
}

// FormatAll formats all events as a multi-line string.
func FormatAll(events []SessionEvent) string {
	var sb strings.Builder
	for _, e := range events {
		sb.WriteString(FormatEvent(e))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// --- Helper constructors for common events ---

func NewSessionStartEvent(cards int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventSessionStart,
		Layout:  layout,
		Details: fmt.Sprintf("=== Session started with %d cards ===", cards),
	}
}

func NewAdvanceEvent(index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventAdvance,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("Cursor → %d", index),
	}
}

func NewLevelUpEvent(card string, from, to, index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventLevelUp,
		Card:    card,
		Rank:    to,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("%s levels up %d → %d", card, from, to),
	}
}

func NewCompleteEvent(card string, rank, completed, index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventComplete,
		Card:    card,
		Rank:    rank,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("%s completed at rank %d (%d done)", card, rank, completed),
	}
}

func NewResetEvent(active int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventReset,
		Layout:  layout,
		Details: fmt.Sprintf("Reset: %d cards back in play", active),
	}
}

func NewLayoutChangeEvent(from, to string, index int) SessionEvent {
	return SessionEvent{
		Type:    EventLayoutChange,
		Index:   index,
		Layout:  to,
		Details: fmt.Sprintf("Layout %s → %s", from, to),
	}
}

func NewCompletionCancelledEvent(reason string, index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventCompletionCancelled,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("Pending completion cancelled by %s", reason),
	}
}

func NewStaleCompletionEvent(token uint64, index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventStaleCompletion,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("Ignored stale completion #%d", token),
	}
}

func NewCompletionFailedEvent(err error, index int, layout string) SessionEvent {
	return SessionEvent{
		Type:    EventCompletionFailed,
		Index:   index,
		Layout:  layout,
		Details: fmt.Sprintf("Scheduled completion failed: %v", err),
	}
}
