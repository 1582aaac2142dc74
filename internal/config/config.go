package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port int `koanf:"port"`
	} `koanf:"server"`

	AI struct {
		Provider    string  `koanf:"provider"`
		APIKey      string  `koanf:"api_key"`
		BaseURL     string  `koanf:"base_url"`
		Model       string  `koanf:"model"`
		Temperature float64 `koanf:"temperature"`
		MaxTokens   int     `koanf:"max_tokens"`
		// Generate calls admitted per second across the process.
		RequestsPerSecond float64 `koanf:"requests_per_second"`
	} `koanf:"ai"`

	Filter struct {
		// Preset selects "conservative" or "permissive".
		Preset string `koanf:"preset"`
	} `koanf:"filter"`

	Enrich struct {
		GitHubToken string `koanf:"github_token"`
		GitLabURL   string `koanf:"gitlab_url"`
		GitLabToken string `koanf:"gitlab_token"`
	} `koanf:"enrich"`

	Database struct {
		// URL enables the note archive when set.
		URL string `koanf:"url"`
	} `koanf:"database"`

	Sanitize struct {
		RedactSecrets bool `koanf:"redact_secrets"`
	} `koanf:"sanitize"`
}

// LoadConfig loads the configuration from a file
func LoadConfig(configPath string) (*Config, error) {
	var k = koanf.New(".")

	// Set up default configuration
	k.Load(confmap.Provider(map[string]interface{}{
		"server.port":             8088,
		"ai.provider":             "openai",
		"ai.model":                "gpt-4o-mini",
		"ai.temperature":          0.2,
		"ai.requests_per_second":  1.0,
		"filter.preset":           "conservative",
		"sanitize.redact_secrets": true,
	}, "."), nil)

	// Load from TOML file if it exists
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), toml.Parser()); err != nil {
			return nil, fmt.Errorf("error loading config: %w", err)
		}
	} else {
		// Try to load from default locations
		defaultPaths := []string{"./notewire.toml", "$HOME/.notewire.toml"}
		for _, path := range defaultPaths {
			path = os.ExpandEnv(path)
			if _, err := os.Stat(path); err == nil {
				if err := k.Load(file.Provider(path), toml.Parser()); err == nil {
					break
				}
			}
		}
	}

	// Load from environment variables with prefix NOTEWIRE_
	k.Load(env.Provider("NOTEWIRE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "NOTEWIRE_")), "_", ".", 1)
	}), nil)

	// Unmarshal into Config struct
	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	return &config, nil
}

// InitConfig initializes a new configuration file
func InitConfig(configPath string) error {
	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("configuration file already exists at %s", configPath)
	}

	sampleConfig := `# Notewire Configuration

[server]
port = 8088

[ai]
provider = "openai"
api_key = "your-api-key"
model = "gpt-4o-mini"
temperature = 0.2
requests_per_second = 1.0

[filter]
preset = "conservative"

[enrich]
github_token = ""
gitlab_url = ""
gitlab_token = ""

[database]
url = ""

[sanitize]
redact_secrets = true
`

	return os.WriteFile(configPath, []byte(sampleConfig), 0644)
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.AI.Provider == "" {
		return fmt.Errorf("ai provider is required")
	}

	switch config.AI.Provider {
	case "openai", "gemini":
		if config.AI.APIKey == "" {
			return fmt.Errorf("%s api_key is required", config.AI.Provider)
		}
	case "ollama":
		// Local provider, no key needed.
	default:
		return fmt.Errorf("unsupported ai provider %q", config.AI.Provider)
	}

	if config.Filter.Preset != "" &&
		config.Filter.Preset != "conservative" && config.Filter.Preset != "permissive" {
		return fmt.Errorf("unknown filter preset %q", config.Filter.Preset)
	}

	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", config.Server.Port)
	}

	return nil
}
