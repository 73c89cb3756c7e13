package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inkwell/internal/vault"
	"inkwell/pkg/inktypes"
)

// toolServer fakes the tool-server gateway. Each handler receives the
// decoded JSON-RPC request and writes its own reply.
func toolServer(t *testing.T, handler func(w http.ResponseWriter, method string, params json.RawMessage)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		handler(w, req.Method, req.Params)
	}))
}

func listReply(w http.ResponseWriter, tools ...inktypes.ToolDescriptor) {
	if tools == nil {
		tools = []inktypes.ToolDescriptor{}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"jsonrpc": "2.0", "id": 1,
		"result": map[string]any{"tools": tools},
	})
}

func TestParseServerConfigs(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected int
	}{
		{name: "empty string", input: "", expected: 0},
		{name: "empty list", input: "[]", expected: 0},
		{name: "one server", input: `[{"name":"filesystem","command":"npx","args":["-y","server-filesystem"]}]`, expected: 1},
		{name: "malformed", input: `{"not":"a list"`, expected: 0},
		{name: "wrong shape", input: `{"name":"x"}`, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configs := ParseServerConfigs(tt.input)
			assert.Len(t, configs, tt.expected)
		})
	}
}

func TestConnect_PartialAvailability(t *testing.T) {
	// First listing succeeds, second fails: the failing server stays on
	// the roster with an empty catalog entry.
	var calls atomic.Int32
	srv := toolServer(t, func(w http.ResponseWriter, method string, _ json.RawMessage) {
		assert.Equal(t, "tools/list", method)
		if calls.Add(1) == 1 {
			listReply(w, inktypes.ToolDescriptor{Name: "filesystem_read"})
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{
		{Name: "good"},
		{Name: "bad"},
	})

	statuses := bridge.ServerStatus()
	require.Len(t, statuses, 2)
	assert.Equal(t, inktypes.ServerStatus{Name: "good", Connected: true, ToolCount: 1}, statuses[0])
	assert.Equal(t, inktypes.ServerStatus{Name: "bad", Connected: true, ToolCount: 0}, statuses[1])
	assert.Len(t, bridge.Tools(), 1)
}

func TestConnect_UnreachableGateway(t *testing.T) {
	bridge := NewBridge(vault.NewMemStore(), WithEndpoint("http://127.0.0.1:1"))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{{Name: "offline"}})

	statuses := bridge.ServerStatus()
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Connected)
	assert.Zero(t, statuses[0].ToolCount)
}

func TestCallTool(t *testing.T) {
	srv := toolServer(t, func(w http.ResponseWriter, method string, params json.RawMessage) {
		assert.Equal(t, "tools/call", method)
		var p struct {
			Name      string         `json:"name"`
			Arguments map[string]any `json:"arguments"`
		}
		require.NoError(t, json.Unmarshal(params, &p))
		assert.Equal(t, "filesystem_read", p.Name)
		assert.Equal(t, "notes/a.md", p.Arguments["path"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"jsonrpc": "2.0", "id": 1, "result": map[string]any{"text": "hello"},
		})
	})
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	result, err := bridge.CallTool(context.Background(), "filesystem", "filesystem_read", map[string]any{"path": "notes/a.md"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hello"}`, string(result))
}

func TestCallTool_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "tool exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	_, err := bridge.CallTool(context.Background(), "filesystem", "filesystem_read", nil)

	var callErr *ToolCallError
	require.ErrorAs(t, err, &callErr)
	assert.Equal(t, http.StatusBadGateway, callErr.Status)
	assert.Contains(t, callErr.Body, "tool exploded")
}

func TestExecuteFileOperation_ExactTool(t *testing.T) {
	srv := toolServer(t, func(w http.ResponseWriter, method string, params json.RawMessage) {
		switch method {
		case "tools/list":
			listReply(w, inktypes.ToolDescriptor{Name: "filesystem_read"})
		case "tools/call":
			var p struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(params, &p))
			assert.Equal(t, "filesystem_read", p.Name)
			_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"content": "from server"}})
		}
	})
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{{Name: "tools"}})

	out, err := bridge.ExecuteFileOperation(context.Background(), OpRead, "notes/a.md", "")
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"from server"}`, out)
}

func TestExecuteFileOperation_FilesystemServerFallback(t *testing.T) {
	// No canonical tool names anywhere, but the server named
	// "filesystem" has a generic tool: its first tool substitutes.
	srv := toolServer(t, func(w http.ResponseWriter, method string, params json.RawMessage) {
		switch method {
		case "tools/list":
			listReply(w, inktypes.ToolDescriptor{Name: "fs_generic"})
		case "tools/call":
			var p struct {
				Name string `json:"name"`
			}
			require.NoError(t, json.Unmarshal(params, &p))
			assert.Equal(t, "fs_generic", p.Name)
			_ = json.NewEncoder(w).Encode(map[string]any{"result": "ok"})
		}
	})
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{{Name: "filesystem"}})

	out, err := bridge.ExecuteFileOperation(context.Background(), OpWrite, "notes/a.md", "content")
	require.NoError(t, err)
	assert.Equal(t, `"ok"`, out)
}

func TestExecuteFileOperation_NoFallbackOnCallFailure(t *testing.T) {
	// The chain advances on absence only: when the exact tool exists but
	// its invocation fails, the error propagates instead of degrading to
	// the local store.
	store := vault.NewMemStore()
	require.NoError(t, store.WriteFile("notes/a.md", "local copy"))

	srv := toolServer(t, func(w http.ResponseWriter, method string, _ json.RawMessage) {
		switch method {
		case "tools/list":
			listReply(w, inktypes.ToolDescriptor{Name: "filesystem_read"})
		case "tools/call":
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	defer srv.Close()

	bridge := NewBridge(store, WithEndpoint(srv.URL))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{{Name: "tools"}})

	_, err := bridge.ExecuteFileOperation(context.Background(), OpRead, "notes/a.md", "")
	var callErr *ToolCallError
	require.ErrorAs(t, err, &callErr)
}

func TestExecuteFileOperation_LocalFallback(t *testing.T) {
	store := vault.NewMemStore()
	require.NoError(t, store.WriteFile("notes/a.md", "note content"))
	bridge := NewBridge(store)

	t.Run("read existing", func(t *testing.T) {
		out, err := bridge.ExecuteFileOperation(context.Background(), OpRead, "notes/a.md", "")
		require.NoError(t, err)
		assert.Equal(t, "note content", out)
	})

	t.Run("read missing", func(t *testing.T) {
		out, err := bridge.ExecuteFileOperation(context.Background(), OpRead, "notes/missing.md", "")
		require.NoError(t, err)
		assert.Equal(t, "File not found", out)
	})

	t.Run("write", func(t *testing.T) {
		out, err := bridge.ExecuteFileOperation(context.Background(), OpWrite, "notes/new.md", "fresh")
		require.NoError(t, err)
		assert.Equal(t, "File written", out)

		content, err := store.ReadFile("notes/new.md")
		require.NoError(t, err)
		assert.Equal(t, "fresh", content)
	})

	t.Run("list by prefix", func(t *testing.T) {
		out, err := bridge.ExecuteFileOperation(context.Background(), OpList, "notes/", "")
		require.NoError(t, err)

		var files []vault.FileInfo
		require.NoError(t, json.Unmarshal([]byte(out), &files))
		assert.GreaterOrEqual(t, len(files), 2)
	})

	t.Run("unknown operation", func(t *testing.T) {
		out, err := bridge.ExecuteFileOperation(context.Background(), FileOperation("move"), "a", "")
		require.NoError(t, err)
		assert.Equal(t, "Unknown operation", out)
	})
}

func TestDisconnect_Idempotent(t *testing.T) {
	srv := toolServer(t, func(w http.ResponseWriter, _ string, _ json.RawMessage) {
		listReply(w, inktypes.ToolDescriptor{Name: "filesystem_read"})
	})
	defer srv.Close()

	bridge := NewBridge(vault.NewMemStore(), WithEndpoint(srv.URL))
	bridge.Connect(context.Background(), []inktypes.ToolServerConfig{{Name: "tools"}})
	require.NotEmpty(t, bridge.Tools())

	bridge.Disconnect()
	assert.Empty(t, bridge.Tools())

	statuses := bridge.ServerStatus()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Connected)

	// A second disconnect is a no-op, not an error.
	bridge.Disconnect()
}
