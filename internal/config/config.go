package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Postgres struct {
		URL string `yaml:"url"`
	} `yaml:"postgres"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Question struct {
		TTL string `yaml:"ttl"`
	} `yaml:"question"`
	AI struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
		Timeout string `yaml:"timeout"`
	} `yaml:"ai"`
	RateLimit struct {
		MaxRequests int    `yaml:"max_requests"`
		Window      string `yaml:"window"`
	} `yaml:"ratelimit"`
	Leaderboard struct {
		Size int `yaml:"size"`
	} `yaml:"leaderboard"`
}

// Load reads YAML config from path. The AI API key may also come from the
// GROQ_API_KEY environment variable, which wins over the file.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if key := os.Getenv("GROQ_API_KEY"); key != "" {
		cfg.AI.APIKey = key
	}
	return cfg, nil
}

// TTLDuration parses a duration string or returns the fallback if empty or
// malformed.
func TTLDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	return fallback
}

// RateLimitSettings returns the configured limit with defaults of 10 requests
// per minute, matching what the explanation endpoint shipped with.
func (c Config) RateLimitSettings() (int, time.Duration) {
	max := c.RateLimit.MaxRequests
	if max <= 0 {
		max = 10
	}
	return max, TTLDuration(c.RateLimit.Window, time.Minute)
}

// LeaderboardSize returns the configured top-N size, defaulting to 50.
func (c Config) LeaderboardSize() int {
	if c.Leaderboard.Size <= 0 {
		return 50
	}
	return c.Leaderboard.Size
}
