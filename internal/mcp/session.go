package mcp

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/peterkuimelis/omen/internal/config"
	"github.com/peterkuimelis/omen/internal/deck"
	"github.com/peterkuimelis/omen/internal/log"
	omennet "github.com/peterkuimelis/omen/internal/net"
)

// ToolResponse is the JSON envelope returned by all MCP tools.
type ToolResponse struct {
	Events []omennet.EventView `json:"events"`
	State  *omennet.StateView  `json:"state,omitempty"`
}

// DeckSession holds the state of a single MCP study session.
type DeckSession struct {
	session *deck.Session
	width   float64

	mu   sync.Mutex
	seen int // events already reported to the caller
}

// NewDeckSession creates a session from cfg using the given scheduler.
func NewDeckSession(cfg config.Config, sched deck.Scheduler) *DeckSession {
	return &DeckSession{
		session: deck.NewSession(cfg.SessionConfig(log.NewMemoryLogger(), sched)),
		width:   cfg.ViewportWidth,
	}
}

// Close stops any pending completion.
func (d *DeckSession) Close() {
	d.session.Close()
}

// drainEvents returns the events logged since the last call.
func (d *DeckSession) drainEvents() []omennet.EventView {
	d.mu.Lock()
	defer d.mu.Unlock()
	events := d.session.Events()
	if d.seen > len(events) {
		d.seen = 0
	}
	fresh := events[d.seen:]
	d.seen = len(events)
	return omennet.EventViews(fresh)
}

// setWidth updates the viewport width used for state views.
func (d *DeckSession) setWidth(w float64) {
	if w < deck.CardSize {
		return
	}
	d.mu.Lock()
	d.width = w
	d.mu.Unlock()
}

// respond builds a ToolResponse with new events and the current layout.
func (d *DeckSession) respond() *ToolResponse {
	d.mu.Lock()
	width := d.width
	d.mu.Unlock()

	resp := &ToolResponse{
		Events: d.drainEvents(),
		State:  omennet.BuildStateView(d.session, width),
	}
	// Ensure events is never null in JSON
	if resp.Events == nil {
		resp.Events = []omennet.EventView{}
	}
	return resp
}

// respondJSON marshals a ToolResponse to a JSON string.
func respondJSON(resp *ToolResponse) string {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
