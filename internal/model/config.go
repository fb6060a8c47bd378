package model

import "time"

// Config is the complete xpbridge configuration
type Config struct {
	API          APIConfig          `mapstructure:"api" yaml:"api"`
	ClaimContext ClaimContextConfig `mapstructure:"claim_context" yaml:"claim_context"`
	Wizard       WizardConfig       `mapstructure:"wizard" yaml:"wizard"`
	Log          LogConfig          `mapstructure:"log" yaml:"log"`
}

// APIConfig configures the web app client
type APIConfig struct {
	BaseURL    string        `mapstructure:"base_url" yaml:"base_url"`
	Token      string        `mapstructure:"token" yaml:"token,omitempty"`
	Timeout    time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent  string        `mapstructure:"user_agent" yaml:"user_agent"`
	RateLimit  float64       `mapstructure:"rate_limit" yaml:"rate_limit"` // requests per second per host
	RateBurst  int           `mapstructure:"rate_burst" yaml:"rate_burst"`
	HTTPProxy  string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
}

// ClaimContextConfig configures caching and retry of the claim context
type ClaimContextConfig struct {
	CacheTTL     time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
	StaleIfError time.Duration `mapstructure:"stale_if_error" yaml:"stale_if_error"`
	MaxRetries   int           `mapstructure:"max_retries" yaml:"max_retries"`
	RetryBase    time.Duration `mapstructure:"retry_base" yaml:"retry_base"`
}

// WizardConfig configures claim wizard sessions
type WizardConfig struct {
	SessionTTL      time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	PageSize        int           `mapstructure:"page_size" yaml:"page_size"`
	ModalFieldLimit int           `mapstructure:"modal_field_limit" yaml:"modal_field_limit"`
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"` // json or console
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:5001",
			Timeout:   10 * time.Second,
			UserAgent: "xpbridge/0.3",
			RateLimit: 10,
			RateBurst: 5,
		},
		ClaimContext: ClaimContextConfig{
			CacheTTL:     30 * time.Second,
			StaleIfError: 5 * time.Minute,
			MaxRetries:   2,
			RetryBase:    250 * time.Millisecond,
		},
		Wizard: WizardConfig{
			SessionTTL:      30 * time.Minute,
			PageSize:        25,
			ModalFieldLimit: 5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Durations are written as Go duration strings so config files round-trip through viper.

func (c APIConfig) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{
		"base_url":   c.BaseURL,
		"timeout":    c.Timeout.String(),
		"user_agent": c.UserAgent,
		"rate_limit": c.RateLimit,
		"rate_burst": c.RateBurst,
	}
	if c.Token != "" {
		out["token"] = "********"
	}
	if c.HTTPProxy != "" {
		out["http_proxy"] = c.HTTPProxy
	}
	if c.HTTPSProxy != "" {
		out["https_proxy"] = c.HTTPSProxy
	}
	return out, nil
}

func (c ClaimContextConfig) MarshalYAML() (interface{}, error) {
	return map[string]interface{}{
		"cache_ttl":      c.CacheTTL.String(),
		"stale_if_error": c.StaleIfError.String(),
		"max_retries":    c.MaxRetries,
		"retry_base":     c.RetryBase.String(),
	}, nil
}

func (c WizardConfig) MarshalYAML() (interface{}, error) {
	return map[string]interface{}{
		"session_ttl":       c.SessionTTL.String(),
		"page_size":         c.PageSize,
		"modal_field_limit": c.ModalFieldLimit,
	}, nil
}
