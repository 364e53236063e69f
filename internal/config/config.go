package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures mapgrid's runtime settings.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	LogLevel  string
	LogFormat string
	StateDir  string
}

const (
	defaultConfigPath = "~/.config/mapgrid/config.toml"
	defaultStateDir   = "~/.local/state/mapgrid"
	defaultBaseURL    = "https://localhost:7219"
	defaultTimeout    = 15 * time.Second
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"

	// BaseURLEnv overrides base_url when set.
	BaseURLEnv = "MAPGRID_BASE_URL"
)

// Load locates and parses the mapgrid config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		BaseURL:   defaultBaseURL,
		Timeout:   defaultTimeout,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
		StateDir:  mustExpand(defaultStateDir),
	}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL   string `toml:"base_url"`
		Timeout   string `toml:"timeout"`
		LogLevel  string `toml:"log_level"`
		LogFormat string `toml:"log_format"`
		StateDir  string `toml:"state_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil || timeout <= 0 {
			return Config{}, fmt.Errorf("parse timeout %q: must be a positive duration", v)
		}
		cfg.Timeout = timeout
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogLevel)); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.ToLower(strings.TrimSpace(raw.LogFormat)); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(raw.StateDir); v != "" {
		cfg.StateDir = mustExpand(v)
	}

	applyEnv(&cfg)
	return cfg, nil
}

// LogPath returns the file the TUI logs to while it owns the terminal.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.StateDir) == "" {
		return mustExpand(defaultStateDir + "/mapgrid.log")
	}
	return filepath.Join(c.StateDir, "mapgrid.log")
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(BaseURLEnv)); v != "" {
		cfg.BaseURL = v
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
