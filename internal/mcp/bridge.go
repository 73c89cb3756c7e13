// Package mcp implements the tool bridge: it connects to configured
// tool servers over an MCP-style JSON-RPC protocol, keeps the per-server
// tool catalog, dispatches tool invocations, and degrades to direct
// vault operations when no suitable tool is available.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"inkwell/internal/logger"
	"inkwell/internal/vault"
	"inkwell/pkg/inktypes"
)

// DefaultEndpoint is the local tool-server gateway the bridge talks to.
// The protocol exposes tools/list at <endpoint>/list and tools/call at
// <endpoint>/call.
const DefaultEndpoint = "http://localhost:3000"

// defaultHTTPTimeout bounds each tool-server request.
const defaultHTTPTimeout = 30 * time.Second

// FileOperation names one of the brokered file operations.
type FileOperation string

// Brokered file operations.
const (
	OpRead  FileOperation = "read"
	OpWrite FileOperation = "write"
	OpList  FileOperation = "list"
)

// ToolCallError reports a failed tool invocation, carrying the HTTP
// status of the transport reply.
type ToolCallError struct {
	Tool   string
	Status int
	Body   string
}

// Error implements the error interface.
func (e *ToolCallError) Error() string {
	return fmt.Sprintf("tool call %s failed (HTTP %d): %s", e.Tool, e.Status, e.Body)
}

// Bridge maintains the catalog of tools exposed by configured tool
// servers and dispatches invocations. The catalog is rebuilt wholesale
// on each connect cycle; a server whose listing fails stays on the
// roster with an empty catalog entry.
type Bridge struct {
	endpoint   string
	httpClient *http.Client
	store      vault.Store
	launch     bool
	log        *log.Logger

	mu        sync.RWMutex
	servers   []inktypes.ToolServerConfig
	catalog   map[string][]inktypes.ToolDescriptor
	processes map[string]*exec.Cmd
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithEndpoint points the bridge at a different tool-server gateway.
func WithEndpoint(endpoint string) Option {
	return func(b *Bridge) { b.endpoint = endpoint }
}

// WithHTTPClient replaces the HTTP client used for tool-server calls.
func WithHTTPClient(client *http.Client) Option {
	return func(b *Bridge) { b.httpClient = client }
}

// WithLaunch makes Connect start the configured server commands and own
// their process handles until Disconnect.
func WithLaunch(launch bool) Option {
	return func(b *Bridge) { b.launch = launch }
}

// NewBridge creates a disconnected bridge whose local fallback operates
// on the given vault store.
func NewBridge(store vault.Store, opts ...Option) *Bridge {
	b := &Bridge{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		store:      store,
		log:        logger.NewStyledLogger("ToolBridge"),
		catalog:    make(map[string][]inktypes.ToolDescriptor),
		processes:  make(map[string]*exec.Cmd),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Connect rebuilds the catalog: one tools/list request per configured
// server. A server whose listing fails in any way (network, status,
// malformed reply) gets an empty catalog entry; one failing server
// never blocks the others.
func (b *Bridge) Connect(ctx context.Context, configs []inktypes.ToolServerConfig) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.servers = configs
	b.catalog = make(map[string][]inktypes.ToolDescriptor)

	for _, cfg := range configs {
		if b.launch && cfg.Command != "" {
			b.startServer(cfg)
		}

		tools, err := b.listTools(ctx)
		if err != nil {
			b.log.Warn("Tool listing failed", "server", cfg.Name, "error", err)
			b.catalog[cfg.Name] = []inktypes.ToolDescriptor{}
			continue
		}
		b.catalog[cfg.Name] = tools
		b.log.Debug("Tool listing succeeded", "server", cfg.Name, "tools", len(tools))
	}
}

// startServer launches a configured server command. Failure to start is
// logged only; the subsequent listing failure leaves the server
// connected but toolless. Callers must hold the write lock.
func (b *Bridge) startServer(cfg inktypes.ToolServerConfig) {
	cmd := exec.Command(cfg.Command, cfg.Args...)
	cmd.Env = os.Environ()
	for k, v := range cfg.Env {
		cmd.Env = append(cmd.Env, k+"="+v)
	}
	if err := cmd.Start(); err != nil {
		b.log.Warn("Tool server failed to start", "server", cfg.Name, "error", err)
		return
	}
	b.processes[cfg.Name] = cmd
	b.log.Info("Tool server started", "server", cfg.Name, "pid", cmd.Process.Pid)
}

// Disconnect terminates owned server processes and clears the catalog.
// It is idempotent: disconnecting a disconnected bridge is a no-op.
func (b *Bridge) Disconnect() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for name, cmd := range b.processes {
		if cmd.Process != nil {
			if err := cmd.Process.Kill(); err != nil {
				b.log.Warn("Failed to kill tool server", "server", name, "error", err)
			}
		}
	}
	b.processes = make(map[string]*exec.Cmd)
	b.catalog = make(map[string][]inktypes.ToolDescriptor)
}

// Tools returns every catalogued tool across all connected servers.
func (b *Bridge) Tools() []inktypes.ToolDescriptor {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var all []inktypes.ToolDescriptor
	for _, name := range b.serverOrder() {
		all = append(all, b.catalog[name]...)
	}
	return all
}

// serverOrder returns catalogued server names in roster order, so the
// aggregate listing is deterministic. Callers must hold a lock.
func (b *Bridge) serverOrder() []string {
	names := make([]string, 0, len(b.catalog))
	for _, cfg := range b.servers {
		if _, ok := b.catalog[cfg.Name]; ok {
			names = append(names, cfg.Name)
		}
	}
	return names
}

// CallTool issues one tools/call request. A transport or status failure
// yields a ToolCallError; success returns the raw result payload, which
// is opaque to the bridge.
func (b *Bridge) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (json.RawMessage, error) {
	b.log.Debug("Calling tool", "server", serverName, "tool", toolName)
	return b.rpc(ctx, "/call", rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  callParams{Name: toolName, Arguments: args},
	}, toolName)
}

// ExecuteFileOperation brokers a file operation through the tool
// catalog with a three-tier fallback: the canonical tool name anywhere
// in the catalog, then any tool of a filesystem-named server, then the
// local vault store. A tier is skipped only when no matching descriptor
// exists; a failing call at an available tier propagates its error
// rather than advancing the chain.
func (b *Bridge) ExecuteFileOperation(ctx context.Context, op FileOperation, path, content string) (string, error) {
	toolName := canonicalToolName(op)
	args := map[string]any{"path": path, "content": content}

	if b.hasTool(toolName) {
		result, err := b.CallTool(ctx, "filesystem", toolName, args)
		if err != nil {
			return "", err
		}
		return string(result), nil
	}

	if fallback, ok := b.filesystemFallbackTool(); ok {
		result, err := b.CallTool(ctx, "filesystem", fallback.Name, args)
		if err != nil {
			return "", err
		}
		return string(result), nil
	}

	return b.localFileOperation(op, path, content)
}

// canonicalToolName maps an operation to the tool name looked for in
// the catalog.
func canonicalToolName(op FileOperation) string {
	if op == OpList {
		return "directory_list"
	}
	return "filesystem_" + string(op)
}

// hasTool reports whether any connected server exposes the named tool.
func (b *Bridge) hasTool(name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, tools := range b.catalog {
		for _, tool := range tools {
			if tool.Name == name {
				return true
			}
		}
	}
	return false
}

// filesystemFallbackTool returns the first tool of a server named
// "filesystem" or "filesystem-server", the second fallback tier.
func (b *Bridge) filesystemFallbackTool() (inktypes.ToolDescriptor, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, name := range []string{"filesystem", "filesystem-server"} {
		if tools := b.catalog[name]; len(tools) > 0 {
			return tools[0], true
		}
	}
	return inktypes.ToolDescriptor{}, false
}

// localFileOperation is the last fallback tier: direct vault access.
func (b *Bridge) localFileOperation(op FileOperation, path, content string) (string, error) {
	switch op {
	case OpRead:
		text, err := b.store.ReadFile(path)
		if err != nil {
			return "File not found", nil
		}
		return text, nil
	case OpWrite:
		if err := b.store.WriteFile(path, content); err != nil {
			return "", err
		}
		return "File written", nil
	case OpList:
		files := b.store.ListFilesWithPrefix(path)
		if files == nil {
			files = []vault.FileInfo{}
		}
		data, err := json.Marshal(files)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "Unknown operation", nil
	}
}

// ServerStatus reports the bridge's view of each configured server.
// Connected means a catalog entry exists, even an empty one.
func (b *Bridge) ServerStatus() []inktypes.ServerStatus {
	b.mu.RLock()
	defer b.mu.RUnlock()

	statuses := make([]inktypes.ServerStatus, 0, len(b.servers))
	for _, cfg := range b.servers {
		tools, connected := b.catalog[cfg.Name]
		statuses = append(statuses, inktypes.ServerStatus{
			Name:      cfg.Name,
			Connected: connected,
			ToolCount: len(tools),
		})
	}
	return statuses
}

// rpcRequest is the JSON-RPC 2.0 envelope both methods share.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
}

// rpcResponse carries the result payload of a JSON-RPC reply.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
}

// callParams is the tools/call parameter shape.
type callParams struct {
	Name      string         `json:"name"`
	Arguments map[string]any `json:"arguments"`
}

// listResult is the tools/list result shape.
type listResult struct {
	Tools []inktypes.ToolDescriptor `json:"tools"`
}

// listTools issues one tools/list request against the gateway.
func (b *Bridge) listTools(ctx context.Context) ([]inktypes.ToolDescriptor, error) {
	raw, err := b.rpc(ctx, "/list", rpcRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/list",
		Params:  struct{}{},
	}, "tools/list")
	if err != nil {
		return nil, err
	}

	var result listResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("malformed tool listing: %w", err)
	}
	return result.Tools, nil
}

// rpc posts one JSON-RPC request and returns the raw result payload.
func (b *Bridge) rpc(ctx context.Context, path string, reqBody rpcRequest, tool string) (json.RawMessage, error) {
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.endpoint+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ToolCallError{Tool: tool, Status: resp.StatusCode, Body: string(body)}
	}

	var rpcResp rpcResponse
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("malformed response: %w", err)
	}
	return rpcResp.Result, nil
}
