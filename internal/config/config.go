// Package config assembles model.Config from defaults, the YAML config file,
// XPBRIDGE_* environment, the legacy deployment environment and CLI flags.
package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/viper"

	"github.com/ppiankov/xpbridge/internal/model"
)

// EnvPrefix prefixes environment overrides read through viper
const EnvPrefix = "XPBRIDGE"

const (
	maxPageSize        = 25
	maxModalFieldLimit = 5
)

// legacyEnv holds the environment names used by earlier deployments.
// Millisecond values match what those deployments already export.
type legacyEnv struct {
	BaseURL          *string `env:"WEB_APP_BASE_URL"`
	Token            *string `env:"WEB_APP_API_TOKEN"`
	RequestTimeoutMs *int    `env:"REQUEST_TIMEOUT_MS"`
	CacheTTLMs       *int    `env:"CLAIM_CONTEXT_CACHE_TTL_MS"`
	StaleIfErrorMs   *int    `env:"CLAIM_CONTEXT_STALE_IF_ERROR_MS"`
	MaxRetries       *int    `env:"CLAIM_CONTEXT_MAX_RETRIES"`
	RetryBaseMs      *int    `env:"CLAIM_CONTEXT_RETRY_BASE_MS"`
	SessionTTLMs     *int    `env:"SESSION_TTL_MS"`
	WizardPageSize   *int    `env:"WIZARD_PAGE_SIZE"`
	ModalFieldLimit  *int    `env:"MODAL_FIELD_LIMIT"`
}

// Overrides carries values given explicitly on the command line
type Overrides struct {
	BaseURL *string
	Token   *string
}

// SetDefaults registers every key with its default so viper can resolve
// XPBRIDGE_* environment variables for it
func SetDefaults(v *viper.Viper) {
	d := model.DefaultConfig()

	v.SetDefault("api.base_url", d.API.BaseURL)
	v.SetDefault("api.token", d.API.Token)
	v.SetDefault("api.timeout", d.API.Timeout)
	v.SetDefault("api.user_agent", d.API.UserAgent)
	v.SetDefault("api.rate_limit", d.API.RateLimit)
	v.SetDefault("api.rate_burst", d.API.RateBurst)
	v.SetDefault("api.http_proxy", d.API.HTTPProxy)
	v.SetDefault("api.https_proxy", d.API.HTTPSProxy)

	v.SetDefault("claim_context.cache_ttl", d.ClaimContext.CacheTTL)
	v.SetDefault("claim_context.stale_if_error", d.ClaimContext.StaleIfError)
	v.SetDefault("claim_context.max_retries", d.ClaimContext.MaxRetries)
	v.SetDefault("claim_context.retry_base", d.ClaimContext.RetryBase)

	v.SetDefault("wizard.session_ttl", d.Wizard.SessionTTL)
	v.SetDefault("wizard.page_size", d.Wizard.PageSize)
	v.SetDefault("wizard.modal_field_limit", d.Wizard.ModalFieldLimit)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load resolves the configuration. v must have had SetDefaults applied
// and, when present, the config file read.
func Load(v *viper.Viper, overrides Overrides) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	var legacy legacyEnv
	if err := env.Parse(&legacy); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	applyLegacy(cfg, legacy)

	if overrides.BaseURL != nil {
		cfg.API.BaseURL = *overrides.BaseURL
	}
	if overrides.Token != nil {
		cfg.API.Token = *overrides.Token
	}

	base, err := NormalizeBaseURL(cfg.API.BaseURL)
	if err != nil {
		return nil, err
	}
	cfg.API.BaseURL = base

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyLegacy(cfg *model.Config, l legacyEnv) {
	ms := func(n int) time.Duration { return time.Duration(n) * time.Millisecond }

	if l.BaseURL != nil {
		cfg.API.BaseURL = *l.BaseURL
	}
	if l.Token != nil {
		cfg.API.Token = *l.Token
	}
	if l.RequestTimeoutMs != nil {
		cfg.API.Timeout = ms(*l.RequestTimeoutMs)
	}
	if l.CacheTTLMs != nil {
		cfg.ClaimContext.CacheTTL = ms(*l.CacheTTLMs)
	}
	if l.StaleIfErrorMs != nil {
		cfg.ClaimContext.StaleIfError = ms(*l.StaleIfErrorMs)
	}
	if l.MaxRetries != nil {
		cfg.ClaimContext.MaxRetries = *l.MaxRetries
	}
	if l.RetryBaseMs != nil {
		cfg.ClaimContext.RetryBase = ms(*l.RetryBaseMs)
	}
	if l.SessionTTLMs != nil {
		cfg.Wizard.SessionTTL = ms(*l.SessionTTLMs)
	}
	if l.WizardPageSize != nil {
		cfg.Wizard.PageSize = *l.WizardPageSize
	}
	if l.ModalFieldLimit != nil {
		cfg.Wizard.ModalFieldLimit = *l.ModalFieldLimit
	}
}

// NormalizeBaseURL trims trailing slashes and requires https for
// anything but local hosts
func NormalizeBaseURL(raw string) (string, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(raw), "/")
	if trimmed == "" {
		return "", errors.New("api.base_url: required")
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("api.base_url: %w", err)
	}
	if u.Host == "" {
		return "", fmt.Errorf("api.base_url: missing host in %q", raw)
	}

	switch u.Scheme {
	case "https":
	case "http":
		if !isLocalHost(u.Hostname()) {
			return "", fmt.Errorf("api.base_url: https required for non-local host %q", u.Hostname())
		}
	default:
		return "", fmt.Errorf("api.base_url: unsupported scheme %q", u.Scheme)
	}

	return trimmed, nil
}

func isLocalHost(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".local") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// Validate checks value ranges
func Validate(cfg *model.Config) error {
	var errs []error

	if cfg.API.Timeout <= 0 {
		errs = append(errs, errors.New("api.timeout: must be positive"))
	}
	if cfg.API.RateLimit <= 0 {
		errs = append(errs, errors.New("api.rate_limit: must be positive"))
	}
	if cfg.API.RateBurst < 1 {
		errs = append(errs, errors.New("api.rate_burst: must be at least 1"))
	}
	if cfg.ClaimContext.CacheTTL <= 0 {
		errs = append(errs, errors.New("claim_context.cache_ttl: must be positive"))
	}
	if cfg.ClaimContext.StaleIfError <= 0 {
		errs = append(errs, errors.New("claim_context.stale_if_error: must be positive"))
	}
	if cfg.ClaimContext.MaxRetries < 0 {
		errs = append(errs, errors.New("claim_context.max_retries: must not be negative"))
	}
	if cfg.ClaimContext.RetryBase <= 0 {
		errs = append(errs, errors.New("claim_context.retry_base: must be positive"))
	}
	if cfg.Wizard.SessionTTL <= 0 {
		errs = append(errs, errors.New("wizard.session_ttl: must be positive"))
	}
	if cfg.Wizard.PageSize < 1 || cfg.Wizard.PageSize > maxPageSize {
		errs = append(errs, fmt.Errorf("wizard.page_size: must be between 1 and %d", maxPageSize))
	}
	if cfg.Wizard.ModalFieldLimit < 1 || cfg.Wizard.ModalFieldLimit > maxModalFieldLimit {
		errs = append(errs, fmt.Errorf("wizard.modal_field_limit: must be between 1 and %d", maxModalFieldLimit))
	}

	return errors.Join(errs...)
}
