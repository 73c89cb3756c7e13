package inktypes

// Skill is a named bundle of instructions and trigger phrases that
// augments the system prompt when a user message matches one of its
// triggers. Name is the registry key: adding a skill with an existing
// name replaces it.
type Skill struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Version      string   `json:"version"`
	Instructions string   `json:"instructions"`
	Triggers     []string `json:"triggers"`
	Enabled      bool     `json:"enabled"`
}
