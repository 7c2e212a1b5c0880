package deck

import (
	"fmt"
	"math"
	"strings"
)

// Presentation tuning for the three layouts.
const (
	CardSize         = 35.0
	CardSpacing      = CardSize / 4
	CardGap          = CardSize + CardSpacing
	MaxVisibleOffset = 4.0

	GridColumns = 3

	DefaultResponse   = 0.6
	LevelingResponse  = 0.4
	DampingFraction   = 0.8
	selectedLift      = -10.0
	studyDimShadow    = 0.3
	passedDimShadow   = 0.6
	overflowRate      = 0.3
	overflowShadow    = 0.2
	studyDelayPerSlot = 0.02
	stackShadow       = 0.2
	sidebarShadow     = 0.3
)

// CardLayout selects how the session arranges its cards.
type CardLayout int

const (
	LayoutStudy CardLayout = iota
	LayoutStack
	LayoutGrid
)

func (l CardLayout) String() string {
	switch l {
	case LayoutStudy:
		return "study"
	case LayoutStack:
		return "stack"
	case LayoutGrid:
		return "grid"
	default:
		return "unknown"
	}
}

// Next returns the following layout in the cycle study → grid → stack → study.
func (l CardLayout) Next() CardLayout {
	switch l {
	case LayoutStudy:
		return LayoutGrid
	case LayoutGrid:
		return LayoutStack
	default:
		return LayoutStudy
	}
}

// ParseLayout maps a layout name back to its CardLayout.
func ParseLayout(s string) (CardLayout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "study", "":
		return LayoutStudy, nil
	case "stack":
		return LayoutStack, nil
	case "grid":
		return LayoutGrid, nil
	default:
		return LayoutStudy, fmt.Errorf("unknown layout %q", s)
	}
}

// PositionedCard is the render-ready target placement of one card. It is
// derived on every layout query and never stored.
type PositionedCard struct {
	X                 float64
	Y                 float64
	AnimationDelay    float64 // seconds
	AnimationResponse float64 // spring response, seconds
	ShadowIntensity   float64
	StackOrder        float64 // higher draws on top
	Card              Card
}

// ID returns the identity of the positioned card.
func (p PositionedCard) ID() string {
	return p.Card.ID.String()
}

// Positions computes the placement of every card in snap for the given
// viewport width, dispatching on snap.Layout.
func Positions(snap Snapshot, viewportWidth float64) []PositionedCard {
	switch snap.Layout {
	case LayoutGrid:
		return gridPositions(snap)
	case LayoutStack:
		return stackPositions(snap)
	default:
		return studyPositions(snap, viewportWidth)
	}
}

func studyPositions(snap Snapshot, viewportWidth float64) []PositionedCard {
	out := make([]PositionedCard, 0, len(snap.Cards)+len(snap.Completed))
	for i, c := range snap.Cards {
		out = append(out, StudyPosition(c, i, snap.Index, snap.LevelingUp))
	}
	for j, c := range snap.Completed {
		out = append(out, CompletedPosition(c, j, viewportWidth))
	}
	return out
}

func gridPositions(snap Snapshot) []PositionedCard {
	all := snap.All()
	out := make([]PositionedCard, 0, len(all))
	for i, c := range all {
		out = append(out, GridPosition(c, i))
	}
	return out
}

func stackPositions(snap Snapshot) []PositionedCard {
	all := snap.All()
	out := make([]PositionedCard, 0, len(all))
	for i, c := range all {
		out = append(out, StackPosition(c, i))
	}
	return out
}

// StudyPosition places an active card in the study carousel. Cards before
// the cursor sit to the left and are dimmed; cards beyond MaxVisibleOffset
// compress together on the right.
func StudyPosition(c Card, index, current int, levelingUp bool) PositionedCard {
	selected := index == current
	rel := float64(index - current)

	shadow := studyDimShadow
	if selected {
		shadow = 0
	}

	overflow := math.Max(0, rel-MaxVisibleOffset)
	rel = math.Min(rel, MaxVisibleOffset)
	rel += overflow * overflowRate
	shadow += math.Min(1, overflow*overflowShadow)
	if rel < 0 {
		shadow += passedDimShadow
	}

	y := 0.0
	if selected {
		y += selectedLift
		if levelingUp {
			y += selectedLift
		}
	}

	response := DefaultResponse
	if levelingUp {
		response = LevelingResponse
	}

	return PositionedCard{
		X:                 rel * CardGap,
		Y:                 y,
		AnimationDelay:    math.Abs(rel) * studyDelayPerSlot,
		AnimationResponse: response,
		ShadowIntensity:   shadow,
		StackOrder:        -float64(index),
		Card:              c,
	}
}

// CompletedPosition fans a completed card down the right edge of the viewport.
func CompletedPosition(c Card, index int, viewportWidth float64) PositionedCard {
	c.IsComplete = true
	return PositionedCard{
		X:                 viewportWidth - CardSize,
		Y:                 float64(index) * (CardSize / 3),
		AnimationResponse: DefaultResponse,
		ShadowIntensity:   float64(index) * sidebarShadow,
		StackOrder:        -float64(index),
		Card:              c,
	}
}

// GridPosition places a card in a fixed three-column grid.
func GridPosition(c Card, index int) PositionedCard {
	row := index / GridColumns
	col := index % GridColumns
	return PositionedCard{
		X:                 float64(col) * CardGap,
		Y:                 float64(row) * CardGap,
		AnimationResponse: DefaultResponse,
		StackOrder:        -float64(index),
		Card:              c,
	}
}

// StackPosition piles every card at the origin, earlier cards on top.
func StackPosition(c Card, index int) PositionedCard {
	shadow := 0.0
	if index > 0 {
		shadow = stackShadow
	}
	return PositionedCard{
		AnimationResponse: DefaultResponse,
		ShadowIntensity:   shadow,
		StackOrder:        -float64(index),
		Card:              c,
	}
}
