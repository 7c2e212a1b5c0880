package deck

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/peterkuimelis/omen/internal/log"
)

const (
	DefaultCardCount    = 14
	DefaultLevelUpDelay = 300 * time.Millisecond
)

// StalePolicy decides what happens to a scheduled completion when another
// command runs before its timer fires.
type StalePolicy int

const (
	// StaleCancel invalidates the pending completion on advance, reset,
	// complete, or a further level-up.
	StaleCancel StalePolicy = iota
	// StaleFire lets every scheduled completion run against whatever card
	// is current when its timer fires.
	StaleFire
)

func (p StalePolicy) String() string {
	switch p {
	case StaleCancel:
		return "cancel"
	case StaleFire:
		return "fire"
	default:
		return "unknown"
	}
}

// ParseStalePolicy maps a policy name back to its StalePolicy.
func ParseStalePolicy(s string) (StalePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cancel", "":
		return StaleCancel, nil
	case "fire":
		return StaleFire, nil
	default:
		return StaleCancel, fmt.Errorf("unknown stale completion policy %q", s)
	}
}

// SessionConfig holds configuration for creating a new session.
type SessionConfig struct {
	Cards        []Card        // explicit starting deck (overrides CardCount)
	CardCount    int           // number of random cards (0 = DefaultCardCount)
	Seed         int64         // RNG seed for ranks (0 for random)
	LevelUpDelay time.Duration // delay before a level-up completes (0 = DefaultLevelUpDelay)
	Stale        StalePolicy
	Layout       CardLayout
	Scheduler    Scheduler // nil = wall-clock ClockScheduler
	Logger       log.EventLogger
}

// Snapshot is a consistent copy of session state.
type Snapshot struct {
	Cards      []Card // active cards in ring order
	Completed  []Card // most recently completed first
	Index      int
	LevelingUp bool
	Pending    bool // a completion is scheduled
	Layout     CardLayout
}

// All returns the active cards followed by the completed ones.
func (s Snapshot) All() []Card {
	out := make([]Card, 0, len(s.Cards)+len(s.Completed))
	out = append(out, s.Cards...)
	return append(out, s.Completed...)
}

// Current returns the card under the cursor, if any.
func (s Snapshot) Current() (Card, bool) {
	if len(s.Cards) == 0 {
		return Card{}, false
	}
	return s.Cards[s.Index], true
}

// Session owns the active ring of cards, the completed pile, and the active
// layout. All methods are safe for concurrent use; commands are serialised
// so the session behaves like a single event queue.
type Session struct {
	mu         sync.Mutex
	buffer     *RingBuffer[Card]
	completed  []Card
	levelingUp bool
	layout     CardLayout

	delay  time.Duration
	stale  StalePolicy
	sched  Scheduler
	logger log.EventLogger

	// token of the most recent level-up whose completion is still live (0 = none)
	pendingToken uint64
	pendingTask  Task
	tokens       uint64

	subs    map[int]chan struct{}
	nextSub int
}

// NewSession creates a session from the given config.
func NewSession(cfg SessionConfig) *Session {
	cards := cfg.Cards
	if cards == nil {
		n := cfg.CardCount
		if n <= 0 {
			n = DefaultCardCount
		}
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng := rand.New(rand.NewSource(seed))
		cards = make([]Card, n)
		for i := range cards {
			cards[i] = NewCard(rng)
		}
	}

	s := &Session{
		buffer: NewRingBuffer(cards...),
		layout: cfg.Layout,
		delay:  cfg.LevelUpDelay,
		stale:  cfg.Stale,
		sched:  cfg.Scheduler,
		logger: cfg.Logger,
		subs:   make(map[int]chan struct{}),
	}
	if s.delay <= 0 {
		s.delay = DefaultLevelUpDelay
	}
	if s.sched == nil {
		s.sched = NewClockScheduler()
	}
	if s.logger == nil {
		s.logger = log.NewMemoryLogger()
	}
	s.logger.Log(log.NewSessionStartEvent(len(cards), s.layout.String()))
	return s
}

// Cards returns a copy of the active cards.
func (s *Session) Cards() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffer.Items()
}

// Completed returns a copy of the completed cards, most recent first.
func (s *Session) Completed() []Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Card(nil), s.completed...)
}

// Snapshot returns a consistent copy of the session state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Cards:      s.buffer.Items(),
		Completed:  append([]Card(nil), s.completed...),
		Index:      s.buffer.Index(),
		LevelingUp: s.levelingUp,
		Pending:    s.pendingToken != 0,
		Layout:     s.layout,
	}
}

// StalePolicy returns how the session treats superseded completions.
func (s *Session) StalePolicy() StalePolicy {
	return s.stale
}

// LayoutPositions computes the target placement of every card for the
// active layout and the given viewport width.
func (s *Session) LayoutPositions(viewportWidth float64) []PositionedCard {
	return Positions(s.Snapshot(), viewportWidth)
}

// Events returns a copy of the session event log.
func (s *Session) Events() []log.SessionEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]log.SessionEvent(nil), s.logger.Events()...)
}

// --- Commands ---

// Advance moves the cursor to the next active card.
func (s *Session) Advance() {
	s.mu.Lock()
	s.cancelPendingLocked("advance")
	s.buffer.Advance()
	s.logger.Log(log.NewAdvanceEvent(s.buffer.Index(), s.layout.String()))
	s.mu.Unlock()
	s.publish()
}

// Reset returns every completed card to the end of the active ring and
// rewinds the cursor. Ranks and completion flags are kept.
func (s *Session) Reset() {
	s.mu.Lock()
	s.cancelPendingLocked("reset")
	s.buffer.Append(s.completed...)
	s.buffer.Rewind()
	s.completed = nil
	s.logger.Log(log.NewResetEvent(s.buffer.Len(), s.layout.String()))
	s.mu.Unlock()
	s.publish()
}

// Complete moves the current card to the front of the completed pile.
func (s *Session) Complete() error {
	s.mu.Lock()
	s.cancelPendingLocked("complete")
	err := s.completeLocked()
	s.mu.Unlock()
	s.publish()
	return err
}

// LevelUp increments the current card's rank and schedules its completion
// after the level-up delay. Until then the session reports LevelingUp.
func (s *Session) LevelUp() error {
	s.mu.Lock()
	cur, err := s.buffer.Current()
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("level up: %w", err)
	}
	s.cancelPendingLocked("level up")

	next := cur.RankUp()
	_ = s.buffer.SetCurrent(next)
	s.levelingUp = true

	s.tokens++
	token := s.tokens
	s.pendingToken = token
	s.pendingTask = s.sched.AfterFunc(s.delay, func() { s.fireCompletion(token) })

	s.logger.Log(log.NewLevelUpEvent(shortID(next), cur.Rank, next.Rank, s.buffer.Index(), s.layout.String()))
	s.mu.Unlock()
	s.publish()
	return nil
}

// CycleLayout switches to the next layout in the study → grid → stack cycle.
func (s *Session) CycleLayout() {
	s.mu.Lock()
	s.setLayoutLocked(s.layout.Next())
	s.mu.Unlock()
	s.publish()
}

// SetLayout switches directly to the given layout.
func (s *Session) SetLayout(l CardLayout) {
	s.mu.Lock()
	s.setLayoutLocked(l)
	s.mu.Unlock()
	s.publish()
}

func (s *Session) setLayoutLocked(l CardLayout) {
	from := s.layout
	s.layout = l
	s.logger.Log(log.NewLayoutChangeEvent(from.String(), l.String(), s.buffer.Index()))
}

// Close stops any pending completion and closes all subscriber channels.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pendingTask != nil {
		s.pendingTask.Stop()
	}
	s.pendingTask = nil
	s.pendingToken = 0
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
}

func (s *Session) completeLocked() error {
	s.levelingUp = false
	c, err := s.buffer.PopCurrent()
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	c.IsComplete = true
	s.completed = append([]Card{c}, s.completed...)
	s.logger.Log(log.NewCompleteEvent(shortID(c), c.Rank, len(s.completed), s.buffer.Index(), s.layout.String()))
	return nil
}

// cancelPendingLocked invalidates a scheduled completion under StaleCancel.
// Under StaleFire the timer is left to run.
func (s *Session) cancelPendingLocked(reason string) {
	if s.stale != StaleCancel || s.pendingToken == 0 {
		return
	}
	if s.pendingTask != nil {
		s.pendingTask.Stop()
	}
	s.pendingTask = nil
	s.pendingToken = 0
	s.levelingUp = false
	s.logger.Log(log.NewCompletionCancelledEvent(reason, s.buffer.Index(), s.layout.String()))
}

func (s *Session) fireCompletion(token uint64) {
	s.mu.Lock()
	if s.stale == StaleCancel && token != s.pendingToken {
		s.logger.Log(log.NewStaleCompletionEvent(token, s.buffer.Index(), s.layout.String()))
		s.mu.Unlock()
		return
	}
	if token == s.pendingToken {
		s.pendingToken = 0
		s.pendingTask = nil
	}
	if err := s.completeLocked(); err != nil {
		s.logger.Log(log.NewCompletionFailedEvent(err, s.buffer.Index(), s.layout.String()))
	}
	s.mu.Unlock()
	s.publish()
}

// --- Notifications ---

// Subscribe registers for state-change notifications. Signals are coalesced:
// a slow reader sees at most one pending signal. The returned function
// unsubscribes and closes the channel.
func (s *Session) Subscribe() (<-chan struct{}, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if c, ok := s.subs[id]; ok {
				close(c)
				delete(s.subs, id)
			}
		})
	}
}

func (s *Session) publish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

func shortID(c Card) string {
	return c.ID.String()[:8]
}
