package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	domainconfig "github.com/felixgeelhaar/goap/domain/config"
	"github.com/felixgeelhaar/goap/domain/planning"
)

// ToolCaller invokes MCP tools. *Client implements it.
type ToolCaller interface {
	CallTool(ctx context.Context, call ToolCall) (*ToolResult, error)
}

// RemotePlanner is a planner.Planner that delegates to the plan tool of
// a PlannerServer.
type RemotePlanner struct {
	caller ToolCaller
}

// NewRemotePlanner creates a RemotePlanner.
func NewRemotePlanner(caller ToolCaller) *RemotePlanner {
	return &RemotePlanner{caller: caller}
}

// Plan sends req as a configuration document and decodes the returned plan.
func (p *RemotePlanner) Plan(ctx context.Context, req planning.Request) (*planning.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args, err := json.Marshal(domainconfig.FromRequest(req))
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	result, err := p.caller.CallTool(ctx, ToolCall{Name: ToolPlan, Arguments: args})
	if err != nil {
		return nil, err
	}
	if result.IsError {
		return nil, fmt.Errorf("%w: %s", ErrToolFailed, result.Text())
	}

	var doc planning.Document
	if err := json.Unmarshal([]byte(result.Text()), &doc); err != nil {
		return nil, fmt.Errorf("%w: decode plan: %v", ErrToolFailed, err)
	}
	return doc.Plan()
}
