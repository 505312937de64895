// Package config holds the host settings for the poevm CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"gopkg.in/yaml.v3"

	"github.com/thesecretlab-dev/poevm/consts"
)

const (
	EnvLogLevel  = "POEVM_LOG_LEVEL"
	EnvLogFormat = "POEVM_LOG_FORMAT"
	EnvMetrics   = "POEVM_METRICS"
)

type Config struct {
	LogLevel  string `json:"logLevel"  yaml:"logLevel"`
	LogFormat string `json:"logFormat" yaml:"logFormat"`
	Metrics   bool   `json:"metrics"   yaml:"metrics"`
}

func NewDefaultConfig() Config {
	return Config{
		LogLevel:  "info",
		LogFormat: "auto",
		Metrics:   false,
	}
}

// Load reads the config at [path] over the defaults, then applies environment
// overrides. An empty [path] skips the file. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func Load(path string) (Config, error) {
	cfg := NewDefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
		if err := unmarshal(path, b, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	return resolveEnv(cfg), nil
}

func unmarshal(path string, b []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(b, cfg)
	default:
		return json.Unmarshal(b, cfg)
	}
}

func resolveEnv(cfg Config) Config {
	if v, ok := getEnv(EnvLogLevel); ok {
		cfg.LogLevel = v
	}
	if v, ok := getEnv(EnvLogFormat); ok {
		cfg.LogFormat = v
	}
	if v, ok := parseEnvBool(EnvMetrics); ok {
		cfg.Metrics = v
	}
	return cfg
}

// NewLogger writes to stderr so stdout stays free for command output.
func NewLogger(cfg Config) (logging.Logger, error) {
	level, err := logging.ToLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ToFormat(cfg.LogFormat, os.Stderr.Fd())
	if err != nil {
		return nil, err
	}
	return logging.NewLogger(
		consts.Name,
		logging.NewWrappedCore(level, os.Stderr, format.ConsoleEncoder()),
	), nil
}

func parseEnvBool(name string) (bool, bool) {
	v, ok := getEnv(name)
	if !ok {
		return false, false
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true, true
	case "0", "false", "f", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}

func getEnv(name string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return "", false
	}
	return v, true
}
