// Package mcpapi exposes the draft as Model Context Protocol tools so an
// assistant can read the board and submit commands.
package mcpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/DoyleJ11/fa-bid-backend/internal/dispatch"
	"github.com/DoyleJ11/fa-bid-backend/internal/engine"
	"github.com/DoyleJ11/fa-bid-backend/internal/httpapi"
	"github.com/DoyleJ11/fa-bid-backend/internal/types"
)

const DefaultChannel engine.ChannelID = "mcp"

type NoArgs struct{}

type CommandArgs struct {
	Text      string `json:"text" jsonschema:"chat command, e.g. !bid TT 12k"`
	ChannelID string `json:"channel_id,omitempty" jsonschema:"channel to record as the last active one; defaults to mcp"`
}

func NewServer(v httpapi.Viewer, d *dispatch.Dispatcher, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "fa-bid-draft", Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_status",
		Description: "Who is on the clock, the standing bid, or who introduces next.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
		view, err := v.View(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolText(d.Presenter().Status(view.State)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_recap",
		Description: "Every team's claim and remaining budget, plus the current bidding queue.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
		view, err := v.View(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolText(d.Presenter().Recap(view.State)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_snapshot",
		Description: "The raw draft snapshot as JSON, with phase and version.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
		view, err := v.View(ctx)
		if err != nil {
			return toolError(err), nil, nil
		}
		b, err := json.MarshalIndent(types.DraftView{
			Version:   view.Version,
			Phase:     engine.DerivePhase(view.State),
			State:     view.State,
			Reminding: view.Reminding,
		}, "", "  ")
		if err != nil {
			return toolError(err), nil, nil
		}
		return toolText(string(b)), nil, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "draft_command",
		Description: "Run a draft chat command (startdraft, introduce, bid, draftstatus, draftrecap, drafthelp).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args CommandArgs) (*mcp.CallToolResult, any, error) {
		if strings.TrimSpace(args.Text) == "" {
			return toolError(fmt.Errorf("text is required")), nil, nil
		}
		channel := engine.ChannelID(args.ChannelID)
		if channel == "" {
			channel = DefaultChannel
		}
		reply, err := d.Handle(ctx, channel, args.Text)
		if err != nil {
			return toolError(err), nil, nil
		}
		res := toolText(strings.Join(reply.Lines, "\n"))
		res.IsError = reply.Outcome == dispatch.OutcomeRejected || reply.Outcome == dispatch.OutcomeFailed
		if reply.Outcome == dispatch.OutcomeIgnored {
			res = toolError(fmt.Errorf("%q is not a draft command", args.Text))
		}
		return res, nil, nil
	})

	return server
}

// Handler serves server over streamable HTTP.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func toolText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
