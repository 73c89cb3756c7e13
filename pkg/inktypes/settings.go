package inktypes

// Provider selects which backend answers a submission.
type Provider string

// Supported providers. Local invokes an executable on this machine; the
// others are HTTP chat-completion APIs.
const (
	ProviderLocal     Provider = "local"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderCustom    Provider = "custom"
)

// Settings is the process-wide assistant configuration. It is owned and
// persisted by the host; the core reads it and validates values lazily
// at the point of use.
type Settings struct {
	Provider     Provider `json:"provider" mapstructure:"provider"`
	APIKey       string   `json:"api_key" mapstructure:"api_key"`
	CustomURL    string   `json:"custom_url" mapstructure:"custom_url"`
	Model        string   `json:"model" mapstructure:"model"`
	MaxTokens    int      `json:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64  `json:"temperature" mapstructure:"temperature"`
	SystemPrompt string   `json:"system_prompt" mapstructure:"system_prompt"`
	SkillsDir    string   `json:"skills_dir" mapstructure:"skills_dir"`
	EnableMCP    bool     `json:"enable_mcp" mapstructure:"enable_mcp"`
	MCPServers   string   `json:"mcp_servers" mapstructure:"mcp_servers"`
	MCPEndpoint  string   `json:"mcp_endpoint" mapstructure:"mcp_endpoint"`
	LocalCommand string   `json:"local_command" mapstructure:"local_command"`
}
