package mcpadapter

import (
	"context"
	"errors"
	"strings"

	"github.com/Reics/MAGI-01/internal/models"
	"github.com/Reics/MAGI-01/internal/orchestrator"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// DebateInput is the MCP tool input schema (matches HTTP API field names).
type DebateInput struct {
	Directive string `json:"directive" jsonschema:"decision prompt to put before the agent roster"`
}

// NewDebateHandler returns a tool handler that runs a full two-round
// debate on the given orchestrator. Pass the returned function to
// mcp.AddTool.
func NewDebateHandler(orch *orchestrator.Orchestrator) func(context.Context, *mcp.CallToolRequest, DebateInput) (*mcp.CallToolResult, *models.DebateSession, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input DebateInput) (*mcp.CallToolResult, *models.DebateSession, error) {
		return RunDebate(ctx, orch, req, input)
	}
}

// RunDebate runs the debate and returns the full session, including
// both rounds and the consensus report.
func RunDebate(
	ctx context.Context,
	orch *orchestrator.Orchestrator,
	req *mcp.CallToolRequest,
	input DebateInput,
) (*mcp.CallToolResult, *models.DebateSession, error) {
	directive := strings.TrimSpace(input.Directive)
	if directive == "" {
		return nil, nil, errors.New("directive must not be empty")
	}

	session, err := orch.Run(ctx, directive)
	if err != nil {
		return nil, nil, err
	}
	return nil, session, nil
}
