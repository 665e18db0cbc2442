// Package mcp serves the planner over the Model Context Protocol and
// calls remote planner servers. It wraps github.com/felixgeelhaar/mcp-go.
package mcp

import (
	mcpgo "github.com/felixgeelhaar/mcp-go"
)

// Re-exported mcp-go types.
type (
	// ServeOption configures server behavior.
	ServeOption = mcpgo.ServeOption

	// HTTPOption configures HTTP transport.
	HTTPOption = mcpgo.HTTPOption

	// Middleware wraps request handling.
	Middleware = mcpgo.Middleware
)

// Re-exported mcp-go middleware constructors.
var (
	// WithMiddleware adds middleware to serve options.
	WithMiddleware = mcpgo.WithMiddleware

	Recover   = mcpgo.Recover
	RequestID = mcpgo.RequestID
)
