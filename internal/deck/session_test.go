package deck

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/peterkuimelis/omen/internal/log"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession(SessionConfig{Seed: 42, Scheduler: NewManualScheduler()})
	snap := s.Snapshot()
	if len(snap.Cards) != DefaultCardCount || len(snap.Completed) != 0 {
		t.Fatalf("Expected %d active and 0 completed, got %d/%d", DefaultCardCount, len(snap.Cards), len(snap.Completed))
	}
	if snap.Index != 0 || snap.LevelingUp || snap.Layout != LayoutStudy {
		t.Errorf("unexpected initial state: %+v", snap)
	}
	seen := make(map[uuid.UUID]bool)
	for _, c := range snap.Cards {
		if seen[c.ID] {
			t.Errorf("duplicate id %s", c.ID)
		}
		seen[c.ID] = true
		if c.Rank < MinRank || c.Rank > MaxRank || c.IsComplete {
			t.Errorf("bad initial card %+v", c)
		}
	}

	// Same seed, same ranks.
	again := NewSession(SessionConfig{Seed: 42, Scheduler: NewManualScheduler()}).Cards()
	for i, c := range again {
		if c.Rank != snap.Cards[i].Rank {
			t.Fatalf("seeded ranks differ at %d: %d vs %d", i, c.Rank, snap.Cards[i].Rank)
		}
	}
}

// TestLevelUpScenario: A(9) levels up to 1 and completes 300ms later.
func TestLevelUpScenario(t *testing.T) {
	a, b, c := namedCard("A", 9), namedCard("B", 3), namedCard("C", 5)
	s, sched, logger := newTestSession(t, StaleCancel, a, b, c)

	if err := s.LevelUp(); err != nil {
		t.Fatal(err)
	}
	snap := s.Snapshot()
	if snap.Cards[0].Rank != 1 {
		t.Errorf("Expected A rank 1, got %d", snap.Cards[0].Rank)
	}
	if !snap.LevelingUp || !snap.Pending {
		t.Error("Expected leveling up with a pending completion")
	}
	assertSameCards(t, "buffer", snap.Cards, a, b, c)

	sched.Advance(299 * time.Millisecond)
	if len(s.Completed()) != 0 {
		t.Fatal("completion fired before the delay elapsed")
	}
	sched.Advance(time.Millisecond)

	snap = s.Snapshot()
	assertSameCards(t, "completed", snap.Completed, a)
	if snap.Completed[0].Rank != 1 || !snap.Completed[0].IsComplete {
		t.Errorf("Expected A(rank=1, complete), got %+v", snap.Completed[0])
	}
	assertSameCards(t, "buffer", snap.Cards, b, c)
	if snap.Index != 0 || snap.LevelingUp || snap.Pending {
		t.Errorf("unexpected state after completion: %+v", snap)
	}
	if len(logger.EventsOfType(log.EventComplete)) != 1 {
		t.Error("Expected one Complete event")
	}
}

func TestCompleteMovesCurrentToFront(t *testing.T) {
	a, b, c := namedCard("A", 1), namedCard("B", 2), namedCard("C", 3)
	s, _, _ := newTestSession(t, StaleCancel, a, b, c)

	s.Advance()
	if err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	assertSameCards(t, "completed", s.Completed(), b)
	assertSameCards(t, "buffer", s.Cards(), a, c)
	if s.Snapshot().Index != 1 {
		t.Errorf("Expected cursor to stay at 1, got %d", s.Snapshot().Index)
	}

	if err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	assertSameCards(t, "completed", s.Completed(), c, b)
	if s.Snapshot().Index != 0 {
		t.Errorf("Expected cursor to wrap to 0, got %d", s.Snapshot().Index)
	}
}

func TestResetScenario(t *testing.T) {
	a, b, c := namedCard("A", 1), namedCard("B", 2), namedCard("C", 3)
	s, _, _ := newTestSession(t, StaleCancel, a, b, c)
	if err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	s.Advance()

	s.Reset()
	snap := s.Snapshot()
	assertSameCards(t, "buffer", snap.Cards, b, c, a)
	if len(snap.Completed) != 0 || snap.Index != 0 {
		t.Errorf("unexpected state after reset: %+v", snap)
	}
	if !snap.Cards[2].IsComplete {
		t.Error("reset must keep the completion flag of returning cards")
	}

	// Second reset changes nothing but the cursor.
	s.Advance()
	s.Reset()
	again := s.Snapshot()
	assertSameCards(t, "buffer", again.Cards, b, c, a)
	if again.Index != 0 || len(again.Completed) != 0 {
		t.Errorf("second reset: unexpected state %+v", again)
	}
}

func TestCommandsOnEmptyBuffer(t *testing.T) {
	s, sched, _ := newTestSession(t, StaleCancel, namedCard("A", 1))
	if err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	s.Advance()
	if err := s.Complete(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState from Complete, got %v", err)
	}
	if err := s.LevelUp(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Expected ErrInvalidState from LevelUp, got %v", err)
	}
	if sched.Pending() != 0 {
		t.Error("a failed level-up must not schedule a completion")
	}
	if len(s.Completed()) != 1 {
		t.Errorf("Expected 1 completed card, got %d", len(s.Completed()))
	}
}

func TestStaleCompletionCancelled(t *testing.T) {
	a, b, c := namedCard("A", 1), namedCard("B", 2), namedCard("C", 3)
	s, sched, logger := newTestSession(t, StaleCancel, a, b, c)

	if err := s.LevelUp(); err != nil {
		t.Fatal(err)
	}
	s.Advance()
	if s.Snapshot().LevelingUp {
		t.Error("Advance must clear the leveling-up state when it cancels the completion")
	}
	sched.Advance(time.Second)

	if len(s.Completed()) != 0 {
		t.Errorf("cancelled completion still ran: %v", s.Completed())
	}
	if got := s.Cards()[0].Rank; got != 2 {
		t.Errorf("Expected the rank-up to stick, got %d", got)
	}
	if len(logger.EventsOfType(log.EventCompletionCancelled)) != 1 {
		t.Error("Expected a CompletionCancelled event")
	}
}

func TestRepeatedLevelUpCompletesOnce(t *testing.T) {
	a, b := namedCard("A", 1), namedCard("B", 2)
	s, sched, _ := newTestSession(t, StaleCancel, a, b)

	_ = s.LevelUp()
	sched.Advance(100 * time.Millisecond)
	_ = s.LevelUp()
	sched.Advance(250 * time.Millisecond)
	if len(s.Completed()) != 0 {
		t.Fatal("first completion should have been superseded")
	}
	sched.Advance(50 * time.Millisecond)

	done := s.Completed()
	assertSameCards(t, "completed", done, a)
	if done[0].Rank != 3 {
		t.Errorf("Expected two rank-ups, got rank %d", done[0].Rank)
	}
	assertSameCards(t, "buffer", s.Cards(), b)
}

func TestStaleCompletionFires(t *testing.T) {
	a, b, c := namedCard("A", 1), namedCard("B", 2), namedCard("C", 3)
	s, sched, _ := newTestSession(t, StaleFire, a, b, c)

	_ = s.LevelUp()
	s.Advance()
	sched.Advance(DefaultLevelUpDelay)

	// The timer completes whatever is current when it fires.
	assertSameCards(t, "completed", s.Completed(), b)
	assertSameCards(t, "buffer", s.Cards(), a, c)
}

func TestStaleFireOnEmptyBufferLogsFailure(t *testing.T) {
	a := namedCard("A", 1)
	s, sched, logger := newTestSession(t, StaleFire, a)

	_ = s.LevelUp()
	if err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	sched.Advance(DefaultLevelUpDelay)

	if len(logger.EventsOfType(log.EventCompletionFailed)) != 1 {
		t.Error("Expected a CompletionFailed event")
	}
	assertSameCards(t, "completed", s.Completed(), a)
}

func TestCycleLayout(t *testing.T) {
	s, _, _ := newTestSession(t, StaleCancel, letterCards(4)...)
	want := []CardLayout{LayoutGrid, LayoutStack, LayoutStudy}
	for _, w := range want {
		s.CycleLayout()
		if got := s.Snapshot().Layout; got != w {
			t.Fatalf("Expected %s, got %s", w, got)
		}
	}
	s.SetLayout(LayoutStack)
	pos := s.LayoutPositions(200)
	if len(pos) != 4 || pos[1].ShadowIntensity != 0.2 {
		t.Errorf("Expected stack placement, got %+v", pos)
	}
}

func TestConservationUnderRandomCommands(t *testing.T) {
	for _, policy := range []StalePolicy{StaleCancel, StaleFire} {
		rng := rand.New(rand.NewSource(7))
		sched := NewManualScheduler()
		s := NewSession(SessionConfig{Seed: 3, Stale: policy, Scheduler: sched})
		initial := ids(s.Cards())

		for step := 0; step < 2000; step++ {
			switch rng.Intn(6) {
			case 0:
				s.Advance()
			case 1:
				_ = s.Complete()
			case 2:
				_ = s.LevelUp()
			case 3:
				s.Reset()
			case 4:
				s.CycleLayout()
			case 5:
				sched.Advance(time.Duration(rng.Intn(400)) * time.Millisecond)
			}

			snap := s.Snapshot()
			all := snap.All()
			if len(all) != DefaultCardCount {
				t.Fatalf("%s step %d: expected %d cards, got %d", policy, step, DefaultCardCount, len(all))
			}
			seen := make(map[uuid.UUID]int)
			for _, c := range all {
				seen[c.ID]++
			}
			for _, id := range initial {
				if seen[id] != 1 {
					t.Fatalf("%s step %d: card %s appears %d times", policy, step, id, seen[id])
				}
			}
			if len(snap.Cards) > 0 && (snap.Index < 0 || snap.Index >= len(snap.Cards)) {
				t.Fatalf("%s step %d: cursor %d out of range", policy, step, snap.Index)
			}
		}
	}
}

func TestSubscribeNotifiesAndCoalesces(t *testing.T) {
	s, sched, _ := newTestSession(t, StaleCancel, letterCards(3)...)
	ch, unsubscribe := s.Subscribe()

	s.Advance()
	s.Advance()
	select {
	case <-ch:
	default:
		t.Fatal("Expected a notification after Advance")
	}
	select {
	case <-ch:
		t.Fatal("Expected notifications to coalesce")
	default:
	}

	_ = s.LevelUp()
	<-ch
	sched.Advance(DefaultLevelUpDelay)
	select {
	case <-ch:
	default:
		t.Fatal("Expected a notification when the scheduled completion runs")
	}

	unsubscribe()
	unsubscribe()
	if _, ok := <-ch; ok {
		t.Error("Expected the channel to be closed after unsubscribe")
	}
	s.Advance()
}

func TestLevelUpWithRealTimer(t *testing.T) {
	s := NewSession(SessionConfig{
		Cards:        []Card{namedCard("A", 4), namedCard("B", 5)},
		LevelUpDelay: 10 * time.Millisecond,
	})
	defer s.Close()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if err := s.LevelUp(); err != nil {
		t.Fatal(err)
	}
	<-ch
	deadline := time.After(2 * time.Second)
	for len(s.Completed()) == 0 {
		select {
		case <-ch:
		case <-deadline:
			t.Fatal("timed out waiting for the scheduled completion")
		}
	}
	if got := s.Completed()[0]; got.Rank != 5 || !got.IsComplete {
		t.Errorf("unexpected completed card %+v", got)
	}
}

func TestLevelUpOnMockClock(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(SessionConfig{
		Cards:     []Card{namedCard("A", 4), namedCard("B", 5)},
		Scheduler: ClockScheduler{Clock: mock},
	})
	defer s.Close()
	ch, unsubscribe := s.Subscribe()
	defer unsubscribe()

	if err := s.LevelUp(); err != nil {
		t.Fatal(err)
	}
	<-ch
	mock.Add(DefaultLevelUpDelay - time.Millisecond)
	if len(s.Completed()) != 0 {
		t.Fatal("Expected no completion before the delay elapses")
	}

	mock.Add(time.Millisecond)
	deadline := time.After(2 * time.Second)
	for len(s.Completed()) == 0 {
		select {
		case <-ch:
		case <-deadline:
			t.Fatal("timed out waiting for the scheduled completion")
		}
	}
	if got := s.Completed()[0]; got.Rank != 5 || !got.Same(namedCard("A", 0)) {
		t.Errorf("unexpected completed card %+v", got)
	}
}

func TestCancelledCompletionStopsClockTimer(t *testing.T) {
	mock := clock.NewMock()
	s := NewSession(SessionConfig{
		Cards:     []Card{namedCard("A", 4), namedCard("B", 5)},
		Scheduler: ClockScheduler{Clock: mock},
	})
	defer s.Close()

	if err := s.LevelUp(); err != nil {
		t.Fatal(err)
	}
	s.Advance()
	mock.Add(time.Second)

	if len(s.Completed()) != 0 {
		t.Errorf("Expected the stopped timer not to complete a card, got %v", s.Completed())
	}
	if snap := s.Snapshot(); snap.Pending || snap.LevelingUp {
		t.Errorf("Expected no pending completion, got %+v", snap)
	}
}
