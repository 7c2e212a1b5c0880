// Package anim interpolates the target values emitted by the deck layouts.
// The deck package only ever produces targets; everything that moves over
// time lives here and is owned by a renderer.
package anim

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

const (
	// DefaultDampingFraction matches the damping of card placement springs.
	DefaultDampingFraction = 0.8
	// DefaultResponse is used when a spring is built with a zero response.
	DefaultResponse = 0.55

	settleEpsilon = 1e-3
)

// Spring is a damped harmonic spring described by its response (the period
// of the undamped oscillation, in seconds) and damping fraction (1 is
// critically damped).
type Spring struct {
	Response        float64
	DampingFraction float64
}

// Motion is the state of one animated scalar.
type Motion struct {
	Value    float64
	Velocity float64
}

// At returns a motion resting at v.
func At(v float64) Motion {
	return Motion{Value: v}
}

// Settled reports whether m has come to rest at target.
func (m Motion) Settled(target float64) bool {
	return math.Abs(m.Value-target) < settleEpsilon && math.Abs(m.Velocity) < settleEpsilon
}

// harmonic builds the library spring for one step of dt seconds.
func (s Spring) harmonic(dt float64) harmonica.Spring {
	response := s.Response
	if response <= 0 {
		response = DefaultResponse
	}
	return harmonica.NewSpring(dt, 2*math.Pi/response, s.DampingFraction)
}

// Step advances m toward target by dt seconds. The spring is solved in
// closed form, so the result does not depend on how dt is sliced into
// frames. Once settled, m snaps exactly to target.
func (s Spring) Step(m Motion, target, dt float64) Motion {
	if dt <= 0 {
		return m
	}
	m.Value, m.Velocity = s.harmonic(dt).Update(m.Value, m.Velocity, target)
	if m.Settled(target) {
		return At(target)
	}
	return m
}
