// Package config loads the assistant settings from config files,
// dotenv files, and INKWELL_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"inkwell/internal/logger"
	"inkwell/internal/mcp"
	"inkwell/internal/provider"
	"inkwell/pkg/inktypes"
)

// Defaults applied when neither config file nor environment sets a key.
const (
	DefaultSkillsDir    = ".inkwell/skills"
	DefaultMaxTokens    = 4096
	DefaultTemperature  = 0.7
	DefaultModel        = "minimax-m2.5-free"
	DefaultSystemPrompt = "You are Inkwell, an AI assistant integrated into your notes vault. " +
		"You help users with their notes, code, and workflows. Be concise and helpful."
)

// Load reads the settings. configFile, when non-empty, must exist and
// parse; otherwise an inkwell.yaml is searched in the working directory
// and ~/.config/inkwell, and its absence is fine.
func Load(configFile string) (inktypes.Settings, error) {
	// A .env next to the working directory feeds the environment
	// before viper reads it. Missing files are expected.
	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env file")
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("INKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return inktypes.Settings{}, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("inkwell")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/inkwell")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return inktypes.Settings{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var settings inktypes.Settings
	if err := v.Unmarshal(&settings); err != nil {
		return inktypes.Settings{}, fmt.Errorf("failed to unmarshal settings: %w", err)
	}

	logger.Debug("Settings loaded", "provider", settings.Provider, "model", settings.Model, "config_file", v.ConfigFileUsed())
	return settings, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(inktypes.ProviderLocal))
	v.SetDefault("api_key", "")
	v.SetDefault("custom_url", "")
	v.SetDefault("model", DefaultModel)
	v.SetDefault("max_tokens", DefaultMaxTokens)
	v.SetDefault("temperature", DefaultTemperature)
	v.SetDefault("system_prompt", DefaultSystemPrompt)
	v.SetDefault("skills_dir", DefaultSkillsDir)
	v.SetDefault("enable_mcp", false)
	v.SetDefault("mcp_servers", "[]")
	v.SetDefault("mcp_endpoint", mcp.DefaultEndpoint)
	v.SetDefault("local_command", provider.DefaultLocalCommand)
}
