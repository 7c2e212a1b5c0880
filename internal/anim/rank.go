package anim

import "math"

// Edge is the side a rank digit enters or leaves through.
type Edge int

const (
	EdgeTop Edge = iota
	EdgeBottom
)

func (e Edge) String() string {
	if e == EdgeTop {
		return "top"
	}
	return "bottom"
}

// Transition describes how a digit enters or leaves the rank label.
type Transition struct {
	Edge   Edge
	Insert bool // true for the incoming digit, false for the outgoing one
	Spring Spring
}

var (
	// RankInsertion slides the new digit in from the top while fading in.
	RankInsertion = Transition{Edge: EdgeTop, Insert: true, Spring: Spring{Response: 0.2, DampingFraction: 0.825}}
	// RankRemoval slides the old digit out of the bottom while fading out.
	RankRemoval = Transition{Edge: EdgeBottom, Spring: Spring{Response: DefaultResponse, DampingFraction: 1}}
)

// Offset returns the digit's displacement as a fraction of the label
// height at the given progress. Negative is toward the top.
func (t Transition) Offset(progress float64) float64 {
	sign := 1.0
	if t.Edge == EdgeTop {
		sign = -1
	}
	if t.Insert {
		return sign * (1 - progress)
	}
	return sign * progress
}

// Opacity returns the digit's opacity at the given progress.
func (t Transition) Opacity(progress float64) float64 {
	p := math.Max(0, math.Min(1, progress))
	if t.Insert {
		return p
	}
	return 1 - p
}

// Glyph is one digit of a rank label as it should be drawn this frame.
type Glyph struct {
	Digit   int
	Offset  float64
	Opacity float64
}

type glyphAnim struct {
	digit      int
	transition Transition
	progress   Motion
}

func (g glyphAnim) glyph() Glyph {
	return Glyph{
		Digit:   g.digit,
		Offset:  g.transition.Offset(g.progress.Value),
		Opacity: g.transition.Opacity(g.progress.Value),
	}
}

// RankValue is an animatable card rank. The continuous display value
// follows the integer target on a spring; the label shows
// min(target, ceil(display)) so the digit never runs ahead of the motion
// and never shows a value past the target.
type RankValue struct {
	target  int
	display Motion
	spring  Spring
	shown   int
	glyphs  []glyphAnim
}

// NewRankValue creates a rank resting at rank.
func NewRankValue(rank int) *RankValue {
	return &RankValue{
		target:  rank,
		display: At(float64(rank)),
		spring:  Spring{Response: DefaultResponse, DampingFraction: DefaultDampingFraction},
		shown:   rank,
	}
}

// Target returns the rank being animated toward.
func (r *RankValue) Target() int {
	return r.target
}

// Display returns the continuous display value.
func (r *RankValue) Display() float64 {
	return r.display.Value
}

// Set retargets the rank. The label changes on the next Step.
func (r *RankValue) Set(rank int) {
	r.target = rank
}

// Displayed returns the integer currently shown in the label.
func (r *RankValue) Displayed() int {
	return min(r.target, int(math.Ceil(r.display.Value)))
}

// Step advances the animation by dt seconds. It reports whether the shown
// digit changed during this step.
func (r *RankValue) Step(dt float64) bool {
	r.display = r.spring.Step(r.display, float64(r.target), dt)

	live := r.glyphs[:0]
	for _, g := range r.glyphs {
		g.progress = g.transition.Spring.Step(g.progress, 1, dt)
		if !g.progress.Settled(1) {
			live = append(live, g)
		}
	}
	r.glyphs = live

	next := r.Displayed()
	if next == r.shown {
		return false
	}
	// Only the most recent incoming digit stays; older ones are on their way out.
	kept := r.glyphs[:0]
	for _, g := range r.glyphs {
		if !g.transition.Insert {
			kept = append(kept, g)
		}
	}
	r.glyphs = append(kept,
		glyphAnim{digit: r.shown, transition: RankRemoval},
		glyphAnim{digit: next, transition: RankInsertion},
	)
	r.shown = next
	return true
}

// Settled reports whether the value and every digit transition are at rest.
func (r *RankValue) Settled() bool {
	if !r.display.Settled(float64(r.target)) {
		return false
	}
	for _, g := range r.glyphs {
		if !g.progress.Settled(1) {
			return false
		}
	}
	return true
}

// Glyphs returns the digits to draw this frame, outgoing digits first.
// A resting label is a single fully opaque digit.
func (r *RankValue) Glyphs() []Glyph {
	out := make([]Glyph, 0, len(r.glyphs)+1)
	incoming := false
	for _, g := range r.glyphs {
		if !g.transition.Insert {
			out = append(out, g.glyph())
		}
	}
	for _, g := range r.glyphs {
		if g.transition.Insert {
			out = append(out, g.glyph())
			incoming = true
		}
	}
	if !incoming {
		out = append(out, Glyph{Digit: r.shown, Opacity: 1})
	}
	return out
}
