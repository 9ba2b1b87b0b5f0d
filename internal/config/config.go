package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	BaseURL             string        `yaml:"base_url"`
	RequestTimeout      time.Duration `yaml:"request_timeout"`
	LogFile             string        `yaml:"log_file"`
	LogLevel            string        `yaml:"log_level"`
	DiscardStaleRefresh bool          `yaml:"discard_stale_refresh"`
	RefreshInterval     time.Duration `yaml:"refresh_interval"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		BaseURL:             "http://localhost:8000",
		RequestTimeout:      0,
		LogFile:             "todosync.log",
		LogLevel:            "info",
		DiscardStaleRefresh: true,
		RefreshInterval:     0,
	}
}

func RuntimeConfigFromEnv(base RuntimeConfig) RuntimeConfig {
	cfg := base
	if v, ok := getEnvString("TODOSYNC_BASE_URL"); ok {
		cfg.BaseURL = v
	}
	if v, ok := getEnvDuration("TODOSYNC_REQUEST_TIMEOUT"); ok && v >= 0 {
		cfg.RequestTimeout = v
	}
	if v, ok := os.LookupEnv("TODOSYNC_LOG_FILE"); ok {
		// An empty value is meaningful: it turns logging off.
		cfg.LogFile = strings.TrimSpace(v)
	}
	if v, ok := getEnvString("TODOSYNC_LOG_LEVEL"); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := getEnvBool("TODOSYNC_DISCARD_STALE_REFRESH"); ok {
		cfg.DiscardStaleRefresh = v
	}
	if v, ok := getEnvDuration("TODOSYNC_REFRESH_INTERVAL"); ok && v >= 0 {
		cfg.RefreshInterval = v
	}
	return cfg
}

// LoadFile overlays the YAML file at path onto base. A missing file is not
// an error; keys absent from the file keep their base value.
func LoadFile(path string, base RuntimeConfig) (RuntimeConfig, error) {
	cfg := base
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(trimmed)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", trimmed, err)
	}
	if strings.TrimSpace(string(raw)) == "" {
		return cfg, nil
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return base, fmt.Errorf("config: parse %s: %w", trimmed, err)
	}
	return cfg, nil
}

func (c RuntimeConfig) Validate() error {
	u, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return fmt.Errorf("config: base_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("config: base_url must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("config: base_url has no host: %q", c.BaseURL)
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("config: request_timeout must not be negative, got %s", c.RequestTimeout)
	}
	if c.RefreshInterval < 0 {
		return fmt.Errorf("config: refresh_interval must not be negative, got %s", c.RefreshInterval)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func getEnvString(name string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return "", false
	}
	return raw, true
}

func getEnvDuration(name string) (time.Duration, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	// Bare integers are seconds.
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, true
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
