package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"sync"
	"sync/atomic"
)

var (
	// ErrNotConnected indicates the client is not connected.
	ErrNotConnected = errors.New("client not connected")

	// ErrAlreadyConnected indicates the client is already connected.
	ErrAlreadyConnected = errors.New("client already connected")

	// ErrConnectionFailed indicates the connection to the server failed.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrToolFailed indicates the server reported a tool error.
	ErrToolFailed = errors.New("tool call failed")
)

// protocolVersion is the MCP revision announced on initialize.
const protocolVersion = "2024-11-05"

// ToolDef is a tool advertised by a server.
type ToolDef struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	InputSchema json.RawMessage `json:"inputSchema,omitempty"`
}

// ToolCall is a tool invocation.
type ToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolResult is the outcome of a tool invocation.
type ToolResult struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Text returns the first text content, or "".
func (r *ToolResult) Text() string {
	for _, c := range r.Content {
		if c.Type == "text" {
			return c.Text
		}
	}
	return ""
}

// Content is one content block of a tool result.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// ServerInfo identifies a connected server.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Name    string
	Version string

	// Command starts the server; it must speak MCP on stdin/stdout.
	Command []string
}

// ClientOption configures a client.
type ClientOption func(*ClientConfig)

// WithClientName sets the client name.
func WithClientName(name string) ClientOption {
	return func(c *ClientConfig) {
		c.Name = name
	}
}

// WithClientVersion sets the client version.
func WithClientVersion(version string) ClientOption {
	return func(c *ClientConfig) {
		c.Version = version
	}
}

// WithServerCommand sets the server command.
func WithServerCommand(cmd ...string) ClientOption {
	return func(c *ClientConfig) {
		c.Command = cmd
	}
}

// Client calls tools on an MCP server over stdio.
type Client struct {
	config     ClientConfig
	serverInfo *ServerInfo
	connected  bool
	mu         sync.RWMutex

	cmd     *exec.Cmd
	stdin   io.WriteCloser
	stdout  io.ReadCloser
	encoder *json.Encoder
	writeMu sync.Mutex

	reqID     atomic.Int64
	responses map[int64]chan *rpcResponse
	respMu    sync.Mutex
}

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      any             `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initParams struct {
	ProtocolVersion string     `json:"protocolVersion"`
	Capabilities    struct{}   `json:"capabilities"`
	ClientInfo      ServerInfo `json:"clientInfo"`
}

type initResult struct {
	ProtocolVersion string     `json:"protocolVersion"`
	ServerInfo      ServerInfo `json:"serverInfo"`
}

type listToolsResult struct {
	Tools []ToolDef `json:"tools"`
}

// NewClient creates a client. Connect starts the session.
func NewClient(opts ...ClientOption) *Client {
	cfg := ClientConfig{
		Name:    "goap-client",
		Version: "1.0.0",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Client{
		config:    cfg,
		responses: make(map[int64]chan *rpcResponse),
	}
}

// Connect starts the server command and performs the MCP handshake.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return ErrAlreadyConnected
	}
	if len(c.config.Command) == 0 {
		return fmt.Errorf("%w: no command specified", ErrConnectionFailed)
	}

	c.cmd = exec.CommandContext(ctx, c.config.Command[0], c.config.Command[1:]...)
	stdin, err := c.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %v", ErrConnectionFailed, err)
	}
	stdout, err := c.cmd.StdoutPipe()
	if err != nil {
		_ = stdin.Close()
		return fmt.Errorf("%w: stdout pipe: %v", ErrConnectionFailed, err)
	}
	if err := c.cmd.Start(); err != nil {
		_ = stdin.Close()
		_ = stdout.Close()
		return fmt.Errorf("%w: start command: %v", ErrConnectionFailed, err)
	}

	return c.attach(ctx, stdout, stdin)
}

// attach runs the handshake over r and w. The caller holds c.mu.
func (c *Client) attach(ctx context.Context, r io.ReadCloser, w io.WriteCloser) error {
	c.stdout = r
	c.stdin = w
	c.encoder = json.NewEncoder(w)
	go c.readResponses(r)

	if err := c.initialize(ctx); err != nil {
		c.teardown()
		return err
	}
	c.connected = true
	return nil
}

func (c *Client) readResponses(r io.Reader) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var resp rpcResponse
		if err := json.Unmarshal(line, &resp); err != nil {
			continue
		}
		id, ok := resp.ID.(float64)
		if !ok {
			continue
		}

		c.respMu.Lock()
		if ch, exists := c.responses[int64(id)]; exists {
			ch <- &resp
			delete(c.responses, int64(id))
		}
		c.respMu.Unlock()
	}
}

func (c *Client) initialize(ctx context.Context) error {
	params := initParams{
		ProtocolVersion: protocolVersion,
		ClientInfo:      ServerInfo{Name: c.config.Name, Version: c.config.Version},
	}

	var result initResult
	if err := c.call(ctx, "initialize", params, &result); err != nil {
		return fmt.Errorf("%w: initialize: %w", ErrConnectionFailed, err)
	}
	c.serverInfo = &result.ServerInfo

	return c.send(rpcRequest{JSONRPC: "2.0", Method: "notifications/initialized"})
}

func (c *Client) send(req rpcRequest) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.encoder.Encode(req)
}

// call sends a request and decodes its result into out.
func (c *Client) call(ctx context.Context, method string, params, out any) error {
	id := c.reqID.Add(1)

	raw, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}

	respCh := make(chan *rpcResponse, 1)
	c.respMu.Lock()
	c.responses[id] = respCh
	c.respMu.Unlock()

	forget := func() {
		c.respMu.Lock()
		delete(c.responses, id)
		c.respMu.Unlock()
	}

	if err := c.send(rpcRequest{JSONRPC: "2.0", ID: id, Method: method, Params: raw}); err != nil {
		forget()
		return fmt.Errorf("send request: %w", err)
	}

	select {
	case resp := <-respCh:
		if resp.Error != nil {
			return fmt.Errorf("%s: %s (code %d)", method, resp.Error.Message, resp.Error.Code)
		}
		if out == nil {
			return nil
		}
		if err := json.Unmarshal(resp.Result, out); err != nil {
			return fmt.Errorf("parse %s result: %w", method, err)
		}
		return nil
	case <-ctx.Done():
		forget()
		return ctx.Err()
	}
}

// Close ends the session and stops the server process.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	c.teardown()
	return nil
}

func (c *Client) teardown() {
	if c.stdin != nil {
		_ = c.stdin.Close()
	}
	if c.stdout != nil {
		_ = c.stdout.Close()
	}
	if c.cmd != nil && c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
}

func (c *Client) isConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// ListTools returns the tools the server advertises.
func (c *Client) ListTools(ctx context.Context) ([]ToolDef, error) {
	if !c.isConnected() {
		return nil, ErrNotConnected
	}
	var result listToolsResult
	if err := c.call(ctx, "tools/list", struct{}{}, &result); err != nil {
		return nil, err
	}
	return result.Tools, nil
}

// CallTool invokes a tool on the server.
func (c *Client) CallTool(ctx context.Context, call ToolCall) (*ToolResult, error) {
	if !c.isConnected() {
		return nil, ErrNotConnected
	}
	var result ToolResult
	if err := c.call(ctx, "tools/call", call, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ServerInfo returns the identity of the connected server.
func (c *Client) ServerInfo() *ServerInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.serverInfo
}
