package anim

import (
	"sort"

	"github.com/peterkuimelis/omen/internal/deck"
)

// Frame is the interpolated state of one card for a single rendered frame.
type Frame struct {
	Card       deck.Card
	X          float64
	Y          float64
	Shadow     float64
	StackOrder float64
	Rank       []Glyph
}

type cardAnim struct {
	target deck.PositionedCard
	x      Motion
	y      Motion
	shadow Motion
	spring Spring
	wait   float64 // seconds of delay left before the spring starts
	rank   *RankValue
}

func (a *cardAnim) settled() bool {
	return a.wait <= 0 &&
		a.x.Settled(a.target.X) &&
		a.y.Settled(a.target.Y) &&
		a.shadow.Settled(a.target.ShadowIntensity) &&
		a.rank.Settled()
}

// Animator tweens positioned cards toward their latest targets. Each card
// springs with its own response and starts after its own delay, so a layout
// change ripples across the deck.
type Animator struct {
	cards map[string]*cardAnim
}

// NewAnimator creates an empty animator.
func NewAnimator() *Animator {
	return &Animator{cards: make(map[string]*cardAnim)}
}

// Retarget installs a new set of targets. Cards seen for the first time
// appear at their target; known cards start moving after their delay;
// cards missing from targets are dropped.
func (an *Animator) Retarget(targets []deck.PositionedCard) {
	seen := make(map[string]bool, len(targets))
	for _, t := range targets {
		id := t.ID()
		seen[id] = true

		a, ok := an.cards[id]
		if !ok {
			an.cards[id] = &cardAnim{
				target: t,
				x:      At(t.X),
				y:      At(t.Y),
				shadow: At(t.ShadowIntensity),
				spring: Spring{Response: t.AnimationResponse, DampingFraction: DefaultDampingFraction},
				rank:   NewRankValue(t.Card.Rank),
			}
			continue
		}

		moved := a.target.X != t.X || a.target.Y != t.Y || a.target.ShadowIntensity != t.ShadowIntensity
		a.target = t
		a.spring = Spring{Response: t.AnimationResponse, DampingFraction: DefaultDampingFraction}
		if moved {
			a.wait = t.AnimationDelay
		}
		a.rank.Set(t.Card.Rank)
	}
	for id := range an.cards {
		if !seen[id] {
			delete(an.cards, id)
		}
	}
}

// Step advances every card by dt seconds.
func (an *Animator) Step(dt float64) {
	for _, a := range an.cards {
		a.rank.Step(dt)

		move := dt
		if a.wait > 0 {
			a.wait -= dt
			if a.wait > 0 {
				continue
			}
			move = -a.wait
			a.wait = 0
		}
		a.x = a.spring.Step(a.x, a.target.X, move)
		a.y = a.spring.Step(a.y, a.target.Y, move)
		a.shadow = a.spring.Step(a.shadow, a.target.ShadowIntensity, move)
	}
}

// Settled reports whether every card is at rest on its target.
func (an *Animator) Settled() bool {
	for _, a := range an.cards {
		if !a.settled() {
			return false
		}
	}
	return true
}

// Frames returns the current interpolated cards in draw order: lowest
// stack order first, so later frames paint over earlier ones.
func (an *Animator) Frames() []Frame {
	out := make([]Frame, 0, len(an.cards))
	for _, a := range an.cards {
		out = append(out, Frame{
			Card:       a.target.Card,
			X:          a.x.Value,
			Y:          a.y.Value,
			Shadow:     a.shadow.Value,
			StackOrder: a.target.StackOrder,
			Rank:       a.rank.Glyphs(),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StackOrder != out[j].StackOrder {
			return out[i].StackOrder < out[j].StackOrder
		}
		return out[i].Card.ID.String() < out[j].Card.ID.String()
	})
	return out
}
