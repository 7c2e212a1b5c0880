package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	omennet "github.com/peterkuimelis/omen/internal/net"
)

// commandHandler returns a tool handler that runs one session command and
// replies with the events it produced and the resulting layout.
func commandHandler(cmd string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sess := ensureSession()
		sess.setWidth(request.GetFloat("width", 0))

		msg := omennet.ClientMessage{
			Type:   cmd,
			Layout: request.GetString("layout", ""),
		}
		if err := omennet.Apply(sess.session, msg); err != nil {
			return mcp.NewToolResultErrorf("%s failed: %v", cmd, err), nil
		}
		return mcp.NewToolResultText(respondJSON(sess.respond())), nil
	}
}
