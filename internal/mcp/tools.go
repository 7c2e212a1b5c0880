package mcp

import (
	"context"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/peterkuimelis/omen/internal/config"
	"github.com/peterkuimelis/omen/internal/deck"
	omennet "github.com/peterkuimelis/omen/internal/net"
)

var (
	sessionMu sync.Mutex
	// activeSession is the singleton study session (one per stdio process).
	activeSession *DeckSession
	// sessionConfig is the configuration new sessions start from, set by main.
	sessionConfig = config.Default()
	// newScheduler builds the scheduler for new sessions.
	newScheduler = func() deck.Scheduler { return deck.NewClockScheduler() }
)

// SetConfig sets the configuration used for new sessions.
func SetConfig(cfg config.Config) {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	sessionConfig = cfg
}

// ensureSession returns the active session, starting one if needed.
func ensureSession() *DeckSession {
	sessionMu.Lock()
	defer sessionMu.Unlock()
	if activeSession == nil {
		activeSession = NewDeckSession(sessionConfig, newScheduler())
	}
	return activeSession
}

// RegisterTools adds all session tools to the MCP server.
func RegisterTools(s *server.MCPServer) {
	s.AddTool(startSessionTool(), handleStartSession)
	s.AddTool(getLayoutTool(), handleGetLayout)
	s.AddTool(getEventsTool(), handleGetEvents)
	s.AddTool(commandTool(omennet.CmdAdvance, "Move the cursor to the next active card (wraps around)."), commandHandler(omennet.CmdAdvance))
	s.AddTool(commandTool(omennet.CmdLevelUp, "Increment the current card's rank (9 wraps to 1). The card moves to the completed pile shortly afterwards."), commandHandler(omennet.CmdLevelUp))
	s.AddTool(commandTool("complete_now", "Move the current card to the completed pile immediately."), commandHandler(omennet.CmdComplete))
	s.AddTool(commandTool(omennet.CmdReset, "Return all completed cards to the end of the deck and rewind the cursor."), commandHandler(omennet.CmdReset))
	s.AddTool(commandTool(omennet.CmdCycleLayout, "Switch layout: study → grid → stack → study."), commandHandler(omennet.CmdCycleLayout))
	s.AddTool(setLayoutTool(), commandHandler(omennet.CmdSetLayout))
}

// --- Tool definitions ---

func widthOption() mcp.ToolOption {
	return mcp.WithNumber("width", mcp.Description("Viewport width used to position the completed pile (optional)"))
}

func startSessionTool() mcp.Tool {
	return mcp.NewTool("start_session",
		mcp.WithDescription("Start a fresh study session, discarding the current one. Returns the initial layout."),
		mcp.WithNumber("cards", mcp.Description("Number of cards (defaults to the configured count)")),
		mcp.WithNumber("seed", mcp.Description("Seed for card ranks (0 for random)")),
		widthOption(),
	)
}

func getLayoutTool() mcp.Tool {
	return mcp.NewTool("get_layout",
		mcp.WithDescription("Get the positioned cards for the active layout plus any new events. Read-only."),
		widthOption(),
	)
}

func getEventsTool() mcp.Tool {
	return mcp.NewTool("get_events",
		mcp.WithDescription("Get the full session event log. Read-only."),
	)
}

func commandTool(name, description string) mcp.Tool {
	return mcp.NewTool(name,
		mcp.WithDescription(description+" Returns the new layout."),
		widthOption(),
	)
}

func setLayoutTool() mcp.Tool {
	return mcp.NewTool(omennet.CmdSetLayout,
		mcp.WithDescription("Switch directly to a layout. Returns the new layout."),
		mcp.WithString("layout", mcp.Required(), mcp.Enum("study", "grid", "stack"), mcp.Description("Layout name")),
		widthOption(),
	)
}

// --- Tool handlers ---

func handleStartSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cards := request.GetInt("cards", 0)
	if cards < 0 {
		return mcp.NewToolResultError("cards must be >= 1"), nil
	}

	sessionMu.Lock()
	cfg := sessionConfig
	if cards > 0 {
		cfg.Cards = cards
		cfg.Ranks = nil
	}
	cfg.Seed = int64(request.GetInt("seed", int(cfg.Seed)))
	if activeSession != nil {
		activeSession.Close()
	}
	sess := NewDeckSession(cfg, newScheduler())
	activeSession = sess
	sessionMu.Unlock()

	sess.setWidth(request.GetFloat("width", 0))
	return mcp.NewToolResultText(respondJSON(sess.respond())), nil
}

func handleGetLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := ensureSession()
	sess.setWidth(request.GetFloat("width", 0))
	return mcp.NewToolResultText(respondJSON(sess.respond())), nil
}

func handleGetEvents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sess := ensureSession()
	resp := &ToolResponse{Events: omennet.EventViews(sess.session.Events())}
	return mcp.NewToolResultText(respondJSON(resp)), nil
}
