package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v11"
	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the settings kickoff needs to reach the search service and
// keep its own files.
type Config struct {
	APIBind     string `toml:"api_bind" env:"API_BIND"`
	RequestFile string `toml:"request_file" env:"REQUEST_FILE"`
	DownloadDir string `toml:"download_dir" env:"DOWNLOAD_DIR"`
	LogFile     string `toml:"log_file" env:"LOG_FILE"`
	LogLevel    string `toml:"log_level" env:"LOG_LEVEL"`
}

const (
	defaultConfigPath  = "~/.config/kickoff/config.toml"
	defaultAPIBind     = "127.0.0.1:8899"
	defaultRequestFile = "~/.config/kickoff/request.toml"
	defaultDownloadDir = "~/Downloads"
	defaultLogFile     = "~/.local/state/kickoff/kickoff.log"
	defaultLogLevel    = "info"

	envPrefix = "KICKOFF_"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		APIBind:     defaultAPIBind,
		RequestFile: defaultRequestFile,
		DownloadDir: defaultDownloadDir,
		LogFile:     defaultLogFile,
		LogLevel:    defaultLogLevel,
	}
}

// Load parses the config file at path (or the default location), falls back to
// defaults when it is missing, then applies KICKOFF_* environment overrides.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	var raw Config
	file, err := os.Open(resolved)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("open config: %w", err)
	default:
		defer func() { _ = file.Close() }()
		bytes, err := io.ReadAll(file)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(bytes, &raw); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := env.ParseWithOptions(&raw, env.Options{Prefix: envPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}

	return raw.normalize(), nil
}

func (c Config) normalize() Config {
	def := Default()
	c.APIBind = orDefault(c.APIBind, def.APIBind)
	c.LogLevel = strings.ToLower(orDefault(c.LogLevel, def.LogLevel))
	c.RequestFile = mustExpand(orDefault(c.RequestFile, def.RequestFile))
	c.DownloadDir = mustExpand(orDefault(c.DownloadDir, def.DownloadDir))
	c.LogFile = mustExpand(orDefault(c.LogFile, def.LogFile))
	return c
}

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and makes the path absolute.
func ExpandPath(path string) (string, error) {
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
