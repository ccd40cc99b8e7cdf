package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAddr             = ":8080"
	DefaultEndpoint         = "https://openrouter.ai/api/v1/chat/completions"
	DefaultModel            = "google/gemini-flash-1.5-8b"
	DefaultMaxTokens        = 5000
	DefaultTemperature      = 1.0
	DefaultAppTitle         = "Nifty Agent Starter"
	DefaultReferer          = "http://localhost:3000"
	DefaultStreamTimeout    = 2 * time.Minute
	DefaultMaxResponseBytes = 1 << 20
	DefaultRelayURL         = "http://localhost:8080/api/chat"
)

// DefaultPersona is the system prompt template. {userName} and {userId} are
// replaced verbatim.
const DefaultPersona = `You are an AI agent named "Agent X", living in Nifty Island. You are friendly, helpful, and aware that you're talking to players in the game.
Your personality is funny and sarcastic.
You are replying in a virtual world, so keep your responses short and concise, but can be long if necessary too.

You are currently talking to player "{userName}" (userId = "{userId}").
You will receive their messages and should respond naturally as if you're a character in the game, while being helpful and engaging.`

// Config is built once at startup and shared read-only.
type Config struct {
	Addr             string        `yaml:"addr"`
	Endpoint         string        `yaml:"endpoint"`
	APIKey           string        `yaml:"-"`
	Model            string        `yaml:"model"`
	MaxTokens        int           `yaml:"max_tokens"`
	Temperature      float64       `yaml:"temperature"`
	AppTitle         string        `yaml:"app_title"`
	Referer          string        `yaml:"referer"`
	Persona          string        `yaml:"persona"`
	StreamTimeout    time.Duration `yaml:"stream_timeout"`
	MaxResponseBytes int           `yaml:"max_response_bytes"`

	// Widget side.
	RelayURL string `yaml:"relay_url"`
	UserName string `yaml:"user_name"`
	UserID   string `yaml:"user_id"`
	Version  string `yaml:"version"`
}

func Default() *Config {
	return &Config{
		Addr:             DefaultAddr,
		Endpoint:         DefaultEndpoint,
		Model:            DefaultModel,
		MaxTokens:        DefaultMaxTokens,
		Temperature:      DefaultTemperature,
		AppTitle:         DefaultAppTitle,
		Referer:          DefaultReferer,
		Persona:          DefaultPersona,
		StreamTimeout:    DefaultStreamTimeout,
		MaxResponseBytes: DefaultMaxResponseBytes,
		RelayURL:         DefaultRelayURL,
		UserName:         "User",
		UserID:           "1",
		Version:          "1.0",
	}
}

// Load layers defaults, the optional YAML file at path, then the
// environment (including a .env file in the working directory).
func Load(path string) (*Config, error) {
	// a missing .env is the common case
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read config %s", path)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config %s", path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.APIKey = os.Getenv("OPENROUTER_API_KEY")
	overrides := map[string]*string{
		"RELAY_REFERER":  &c.Referer,
		"RELAY_ADDR":     &c.Addr,
		"RELAY_ENDPOINT": &c.Endpoint,
		"RELAY_MODEL":    &c.Model,
		"RELAY_URL":      &c.RelayURL,
	}
	for key, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*field = v
		}
	}
	if c.Referer == "" {
		c.Referer = DefaultReferer
	}
}

// Validate rejects values the relay cannot run with. A missing API key is
// not an error: the upstream rejects the call instead.
func (c *Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("endpoint is required")
	}
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.MaxTokens <= 0 {
		return errors.Errorf("max_tokens must be positive, got %d", c.MaxTokens)
	}
	if c.StreamTimeout <= 0 {
		return errors.Errorf("stream_timeout must be positive, got %s", c.StreamTimeout)
	}
	if c.MaxResponseBytes <= 0 {
		return errors.Errorf("max_response_bytes must be positive, got %d", c.MaxResponseBytes)
	}
	return nil
}
