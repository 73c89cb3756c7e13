package mcp

import (
	"encoding/json"

	"inkwell/internal/logger"
	"inkwell/pkg/inktypes"
)

// ParseServerConfigs parses the JSON tool-server list from the
// settings. A malformed list is logged and yields zero servers; it is
// never a fatal error.
func ParseServerConfigs(jsonText string) []inktypes.ToolServerConfig {
	if jsonText == "" {
		return nil
	}

	var configs []inktypes.ToolServerConfig
	if err := json.Unmarshal([]byte(jsonText), &configs); err != nil {
		logger.Warn("Ignoring malformed tool server list", "error", err)
		return nil
	}
	return configs
}
