package net

// Message types for the JSON protocol shared by the web, MCP and REPL
// front-ends.

// --- Session → client messages ---

// ServerMessage is the envelope for all session-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "state"
	State *StateView `json:"state,omitempty"`

	// For "events"
	Events []EventView `json:"events,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// StateView is the session state plus the positioned cards for one viewport.
type StateView struct {
	Layout        string     `json:"layout"`
	Index         int        `json:"index"`
	LevelingUp    bool       `json:"leveling_up"`
	Pending       bool       `json:"pending"`
	ViewportWidth float64    `json:"viewport_width"`
	ActiveCount   int        `json:"active_count"`
	DoneCount     int        `json:"done_count"`
	Cards         []CardView `json:"cards"`
}

// CardView is one positioned card. Position fields are animation targets.
type CardView struct {
	ID       string  `json:"id"`
	Rank     int     `json:"rank"`
	Complete bool    `json:"complete,omitempty"`
	Current  bool    `json:"current,omitempty"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Delay    float64 `json:"delay"`
	Response float64 `json:"response"`
	Shadow   float64 `json:"shadow"`
	Order    float64 `json:"order"`
}

// EventView is a simplified session event for the client.
type EventView struct {
	Seq     int    `json:"seq"`
	Type    string `json:"type"`
	Card    string `json:"card,omitempty"`
	Rank    int    `json:"rank,omitempty"`
	Index   int    `json:"index"`
	Layout  string `json:"layout"`
	Details string `json:"details"`
}

// --- Client → session messages ---

// Command names accepted in ClientMessage.Type.
const (
	CmdState       = "state"
	CmdAdvance     = "advance"
	CmdLevelUp     = "level_up"
	CmdComplete    = "complete"
	CmdReset       = "reset"
	CmdCycleLayout = "cycle_layout"
	CmdSetLayout   = "set_layout"
)

// ClientMessage is the envelope for all client-to-session messages.
type ClientMessage struct {
	Type string `json:"type"`

	// Viewport width for the state reply (0 keeps the current width)
	Width float64 `json:"width,omitempty"`

	// For "set_layout"
	Layout string `json:"layout,omitempty"`
}
