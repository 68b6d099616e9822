package config

import (
	"fmt"
	"os"
	"time"

	"nexum/internal/llm"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when NEXUM_CONFIG is not set.
const DefaultPath = "configs/config.yml"

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port     string `yaml:"port"`
		Mode     string `yaml:"mode"`     // "debug" or "release"
		Timezone string `yaml:"timezone"` // IANA name used for proposed meetup times
	} `yaml:"server"`

	Database struct {
		Driver string `yaml:"driver"` // "postgres" or "sqlite"
		URL    string `yaml:"url"`
	} `yaml:"database"`

	LLM struct {
		Providers    []llm.ProviderConfig `yaml:"providers"`
		MaxFailures  int                  `yaml:"max_failures_before_switch"`
		Timeout      time.Duration        `yaml:"timeout"`
		SystemPrompt string               `yaml:"system_prompt"`
	} `yaml:"llm"`

	Places struct {
		Provider string        `yaml:"provider"` // "stub" or "nominatim"
		BaseURL  string        `yaml:"base_url"`
		Limit    int           `yaml:"limit"`
		Timeout  time.Duration `yaml:"timeout"`
	} `yaml:"places"`

	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`

	Auth struct {
		JWTSecret       string        `yaml:"jwt_secret"`
		AllowDemoHeader bool          `yaml:"allow_demo_header"`
		TokenTTL        time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Scheduler struct {
		Enabled  bool          `yaml:"enabled"`
		Interval time.Duration `yaml:"interval"`
	} `yaml:"scheduler"`

	RateLimit struct {
		ChatPerMinute int `yaml:"chat_per_minute"`
		Burst         int `yaml:"burst"`
	} `yaml:"rate_limit"`
}

// Path returns the config file location, honouring NEXUM_CONFIG.
func Path() string {
	if p := os.Getenv("NEXUM_CONFIG"); p != "" {
		return p
	}
	return DefaultPath
}

// LoadConfig reads configuration from the specified YAML file.
// A .env file in the working directory, if present, is loaded first so that
// ${VAR} references in the YAML can be resolved from it.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	config := &Config{}
	config.Auth.AllowDemoHeader = true

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyDefaults()
	config.expandEnv()

	if _, err := time.LoadLocation(config.Server.Timezone); err != nil {
		return nil, fmt.Errorf("invalid server.timezone %q: %w", config.Server.Timezone, err)
	}

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "5175"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "debug"
	}
	if c.Server.Timezone == "" {
		c.Server.Timezone = "Local"
	}

	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.URL == "" && c.Database.Driver == "sqlite" {
		c.Database.URL = "./data/nexum.db"
	}

	if c.LLM.MaxFailures == 0 {
		c.LLM.MaxFailures = 3
	}
	if c.LLM.Timeout == 0 {
		c.LLM.Timeout = 30 * time.Second
	}
	if c.LLM.SystemPrompt == "" {
		c.LLM.SystemPrompt = "You are Nexum’s planning assistant. Be concise and actionable."
	}
	if len(c.LLM.Providers) == 0 {
		c.LLM.Providers = []llm.ProviderConfig{{
			Type:      llm.ProviderOpenAI,
			APIKey:    "${OPENAI_API_KEY}",
			ModelName: "gpt-4o-mini",
		}}
	}

	if c.Places.Provider == "" {
		c.Places.Provider = "stub"
	}
	if c.Places.Limit == 0 {
		c.Places.Limit = 5
	}
	if c.Places.Timeout == 0 {
		c.Places.Timeout = 10 * time.Second
	}

	if c.Redis.TTL == 0 {
		c.Redis.TTL = 15 * time.Minute
	}

	if c.Auth.TokenTTL == 0 {
		c.Auth.TokenTTL = 24 * time.Hour
	}

	if c.Scheduler.Interval == 0 {
		c.Scheduler.Interval = time.Hour
	}

	if c.RateLimit.ChatPerMinute == 0 {
		c.RateLimit.ChatPerMinute = 20
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 5
	}
}

// expandEnv resolves ${VAR} references in secrets and connection strings.
func (c *Config) expandEnv() {
	for i := range c.LLM.Providers {
		c.LLM.Providers[i].APIKey = os.ExpandEnv(c.LLM.Providers[i].APIKey)
		c.LLM.Providers[i].BaseURL = os.ExpandEnv(c.LLM.Providers[i].BaseURL)
	}
	c.Database.URL = os.ExpandEnv(c.Database.URL)
	c.Redis.Password = os.ExpandEnv(c.Redis.Password)
	c.Auth.JWTSecret = os.ExpandEnv(c.Auth.JWTSecret)
	c.Telegram.BotToken = os.ExpandEnv(c.Telegram.BotToken)
}

// Location returns the time zone proposed meetup slots are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
