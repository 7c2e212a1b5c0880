package log

// EventType enumerates all observable session events.
type EventType int

const (
	EventSessionStart EventType = iota
	EventAdvance
	EventLevelUp
	EventComplete
	EventReset
	EventLayoutChange
	EventCompletionCancelled // pending completion invalidated by a later command
	EventStaleCompletion     // timer fired for a completion that was already invalidated
	EventCompletionFailed    // timer fired but there was no card to complete
)

func (e EventType) String() string {
	switch e {
	case EventSessionStart:
		return "SessionStart"
	case EventAdvance:
		return "Advance"
	case EventLevelUp:
		return "LevelUp"
	case EventComplete:
		return "Complete"
	case EventReset:
		return "Reset"
	case EventLayoutChange:
		return "LayoutChange"
	case EventCompletionCancelled:
		return "CompletionCancelled"
	case EventStaleCompletion:
		return "StaleCompletion"
	case EventCompletionFailed:
		return "CompletionFailed"
	default:
		return "Unknown"
	}
}

// SessionEvent represents a single observable event in a study session.
type SessionEvent struct {
	Seq     int       // monotonic sequence number
	Type    EventType // event type
	Card    string    // short card id (if applicable)
	Rank    int       // card rank after the event (if applicable)
	Index   int       // cursor position after the event
	Layout  string    // active layout name
	Details string    // human-readable detail string
}
