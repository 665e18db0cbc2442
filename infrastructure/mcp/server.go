package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpgo "github.com/felixgeelhaar/mcp-go"

	domainconfig "github.com/felixgeelhaar/goap/domain/config"
	"github.com/felixgeelhaar/goap/domain/planning"
	"github.com/felixgeelhaar/goap/infrastructure/config"
	"github.com/felixgeelhaar/goap/infrastructure/planner"
)

// Tool names registered by PlannerServer.
const (
	ToolPlan     = "plan"
	ToolValidate = "validate"
	ToolSchema   = "schema"
)

// DefaultInstructions describes the tools to MCP clients.
const DefaultInstructions = `Call "plan" with a planner configuration object ` +
	`(state, goals, actions, plan) to get the cheapest action sequence that reduces discontentment. ` +
	`Call "validate" to check a configuration without searching, and "schema" for its JSON Schema.`

// PlannerServer exposes a planner over MCP.
type PlannerServer struct {
	srv        *mcpgo.Server
	planner    planner.Planner
	loader     *config.Loader
	middleware []Middleware
}

// ServerConfig configures a PlannerServer.
type ServerConfig struct {
	Name        string
	Version     string
	Description string

	// Instructions default to DefaultInstructions.
	Instructions string

	// Planner answers plan calls. Defaults to a search engine.
	Planner planner.Planner

	// Loader decodes tool input. Defaults to config.NewLoader().
	Loader *config.Loader
}

// NewPlannerServer creates an MCP server with the plan, validate and
// schema tools registered.
func NewPlannerServer(cfg ServerConfig) *PlannerServer {
	if cfg.Name == "" {
		cfg.Name = "goap"
	}
	if cfg.Instructions == "" {
		cfg.Instructions = DefaultInstructions
	}
	if cfg.Planner == nil {
		cfg.Planner = planner.New()
	}
	if cfg.Loader == nil {
		cfg.Loader = config.NewLoader()
	}

	info := mcpgo.ServerInfo{
		Name:         cfg.Name,
		Version:      cfg.Version,
		Description:  cfg.Description,
		Capabilities: mcpgo.Capabilities{Tools: true},
	}

	s := &PlannerServer{
		srv:     mcpgo.NewServer(info, mcpgo.WithInstructions(cfg.Instructions)),
		planner: cfg.Planner,
		loader:  cfg.Loader,
	}

	s.srv.Tool(ToolPlan).
		Description("Plan a sequence of actions for a configuration object and return the plan as JSON.").
		Handler(s.handlePlan)
	s.srv.Tool(ToolValidate).
		Description("Validate a configuration object and list every problem found.").
		Handler(s.handleValidate)
	s.srv.Tool(ToolSchema).
		Description("Return the JSON Schema of the configuration object.").
		Handler(s.handleSchema)

	return s
}

func (s *PlannerServer) handlePlan(ctx context.Context, input json.RawMessage) (string, error) {
	req, err := s.request(input)
	if err != nil {
		return "", err
	}
	plan, err := s.planner.Plan(ctx, req)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(planning.NewDocument(plan))
	if err != nil {
		return "", fmt.Errorf("encode plan: %w", err)
	}
	return string(out), nil
}

// ValidationResult is the output of the validate tool.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

func (s *PlannerServer) handleValidate(_ context.Context, input json.RawMessage) (string, error) {
	var result ValidationResult
	if _, err := s.request(input); err != nil {
		var verrs domainconfig.ValidationErrors
		if errors.As(err, &verrs) {
			for _, v := range verrs {
				result.Errors = append(result.Errors, v.Error())
			}
		} else {
			result.Errors = []string{err.Error()}
		}
	} else {
		result.Valid = true
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (s *PlannerServer) handleSchema(context.Context, json.RawMessage) (string, error) {
	return config.SchemaJSON()
}

func (s *PlannerServer) request(input json.RawMessage) (planning.Request, error) {
	if len(input) == 0 {
		return planning.Request{}, fmt.Errorf("%w: empty arguments", domainconfig.ErrInvalidFormat)
	}
	doc, err := s.loader.LoadBytes(input, config.FormatJSON)
	if err != nil {
		return planning.Request{}, err
	}
	return doc.Request()
}

// Server returns the underlying mcp-go server.
func (s *PlannerServer) Server() *mcpgo.Server {
	return s.srv
}

// Use adds middleware to the request chain of both transports.
func (s *PlannerServer) Use(middleware ...Middleware) {
	s.middleware = append(s.middleware, middleware...)
}

// ServeStdio runs the server over stdin/stdout.
func (s *PlannerServer) ServeStdio(ctx context.Context, opts ...ServeOption) error {
	return mcpgo.ServeStdio(ctx, s.srv, s.serveOptions(opts)...)
}

// ServeHTTP runs the server over HTTP with SSE.
func (s *PlannerServer) ServeHTTP(ctx context.Context, addr string, opts ...HTTPOption) error {
	return mcpgo.ServeHTTPWithMiddleware(ctx, s.srv, addr, opts, s.serveOptions(nil)...)
}

func (s *PlannerServer) serveOptions(opts []ServeOption) []ServeOption {
	if len(s.middleware) == 0 {
		return opts
	}
	return append([]ServeOption{WithMiddleware(s.middleware...)}, opts...)
}
