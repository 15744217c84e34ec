package gateway

import (
	"errors"
	"os"

	"github.com/goccy/go-yaml"
)

// Config configures the relay server.
type Config struct {
	// Listen is the HTTP listen address, default ":8787".
	Listen string `yaml:"listen"`
	// Path is the websocket endpoint path, default "/live".
	Path string `yaml:"path"`
	// Model is the upstream live model name.
	Model string `yaml:"model"`
	// APIKey authenticates against the Gemini API; falls back to the
	// GEMINI_API_KEY environment variable.
	APIKey string `yaml:"api_key"`
	// SystemPrompt overrides the built-in walkthrough prompt.
	SystemPrompt string `yaml:"system_prompt"`
}

const defaultModel = "gemini-2.0-flash-live-001"

// LoadConfig reads a yaml config file and applies defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, wrapError(err, "read config")
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, wrapError(err, "parse config")
	}
	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = ":8787"
	}
	if c.Path == "" {
		c.Path = "/live"
	}
	if c.Model == "" {
		c.Model = defaultModel
	}
	if c.APIKey == "" {
		c.APIKey = os.Getenv("GEMINI_API_KEY")
	}
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return errors.New("gateway: missing API key")
	}
	return nil
}
