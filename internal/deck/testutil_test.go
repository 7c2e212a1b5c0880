package deck

import (
	"testing"

	"github.com/google/uuid"
	"github.com/peterkuimelis/omen/internal/log"
)

// namedCard builds a card whose ID is derived from name so tests can refer
// to cards by letter.
func namedCard(name string, rank int) Card {
	return Card{ID: uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)), Rank: rank}
}

// newTestSession creates a session over the given cards with a manual clock.
func newTestSession(t *testing.T, stale StalePolicy, cards ...Card) (*Session, *ManualScheduler, *log.MemoryLogger) {
	t.Helper()
	sched := NewManualScheduler()
	logger := log.NewMemoryLogger()
	s := NewSession(SessionConfig{
		Cards:     cards,
		Stale:     stale,
		Scheduler: sched,
		Logger:    logger,
	})
	return s, sched, logger
}

func ids(cards []Card) []uuid.UUID {
	out := make([]uuid.UUID, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func assertSameCards(t *testing.T, label string, got []Card, want ...Card) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("%s: expected %d cards, got %d (%v)", label, len(want), len(got), got)
	}
	for i := range want {
		if !got[i].Same(want[i]) {
			t.Errorf("%s[%d]: expected %v, got %v", label, i, want[i], got[i])
		}
	}
}
