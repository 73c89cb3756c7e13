package inktypes

// ToolServerConfig declares an external tool server. It is parsed from
// the JSON server list in the settings; a malformed list yields zero
// servers rather than an error.
type ToolServerConfig struct {
	Name    string            `json:"name"`
	Command string            `json:"command"`
	Args    []string          `json:"args"`
	Env     map[string]string `json:"env,omitempty"`
}

// ToolDescriptor describes one callable tool exposed by a tool server.
// The input schema is opaque to Inkwell and passed through unchanged.
type ToolDescriptor struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// ServerStatus reports the bridge's view of one configured server.
// Connected means a catalog entry exists for the server, even an empty
// one; it does not mean the last call succeeded.
type ServerStatus struct {
	Name      string `json:"name"`
	Connected bool   `json:"connected"`
	ToolCount int    `json:"tools"`
}
