package net

import (
	"fmt"

	"github.com/peterkuimelis/omen/internal/deck"
	"github.com/peterkuimelis/omen/internal/log"
)

// BuildStateView positions every card of the session for the given
// viewport width. Positions and counters come from one snapshot, so the
// view is consistent even while a scheduled completion is racing it.
func BuildStateView(s *deck.Session, width float64) *StateView {
	snap := s.Snapshot()
	positions := deck.Positions(snap, width)

	sv := &StateView{
		Layout:        snap.Layout.String(),
		Index:         snap.Index,
		LevelingUp:    snap.LevelingUp,
		Pending:       snap.Pending,
		ViewportWidth: width,
		ActiveCount:   len(snap.Cards),
		DoneCount:     len(snap.Completed),
		Cards:         make([]CardView, 0, len(positions)),
	}
	cur, hasCur := snap.Current()
	for _, p := range positions {
		sv.Cards = append(sv.Cards, CardView{
			ID:       p.ID(),
			Rank:     p.Card.Rank,
			Complete: p.Card.IsComplete,
			Current:  hasCur && p.Card.Same(cur),
			X:        p.X,
			Y:        p.Y,
			Delay:    p.AnimationDelay,
			Response: p.AnimationResponse,
			Shadow:   p.ShadowIntensity,
			Order:    p.StackOrder,
		})
	}
	return sv
}

// EventViews converts session events for the wire.
func EventViews(events []log.SessionEvent) []EventView {
	views := make([]EventView, 0, len(events))
	for _, e := range events {
		views = append(views, EventView{
			Seq:     e.Seq,
			Type:    e.Type.String(),
			Card:    e.Card,
			Rank:    e.Rank,
			Index:   e.Index,
			Layout:  e.Layout,
			Details: e.Details,
		})
	}
	return views
}

// Apply runs the command named by msg against the session. "state" is a
// no-op so clients can poll with the same envelope.
func Apply(s *deck.Session, msg ClientMessage) error {
	switch msg.Type {
	case CmdState:
		return nil
	case CmdAdvance:
		s.Advance()
	case CmdLevelUp:
		return s.LevelUp()
	case CmdComplete:
		return s.Complete()
	case CmdReset:
		s.Reset()
	case CmdCycleLayout:
		s.CycleLayout()
	case CmdSetLayout:
		l, err := deck.ParseLayout(msg.Layout)
		if err != nil {
			return err
		}
		s.SetLayout(l)
	default:
		return fmt.Errorf("unknown command %q", msg.Type)
	}
	return nil
}
