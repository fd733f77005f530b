// Package config loads the launcher deployment configuration: where the game
// lives on disk and which servers to patch and authenticate against.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures everything the launcher needs to drive a patch cycle.
type Config struct {
	GamePath      string
	GameBinary    string
	HashFileURL   string
	FileServerURL string
	LoginURL      string
	LogDir        string
}

const (
	defaultConfigPath = "~/.config/teralaunch/config.toml"
	defaultLogDir     = "~/.local/share/teralaunch/logs"
	defaultGameBinary = "Binaries/Tera.exe"
)

// Load locates and parses the launcher config, falling back to defaults when
// the file is missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{GameBinary: defaultGameBinary, LogDir: defaultLogDir}

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.LogDir = mustExpand(defaultLogDir)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Game struct {
			Path   string `toml:"path"`
			Binary string `toml:"binary"`
		} `toml:"game"`
		Server struct {
			HashFileURL   string `toml:"hash_file_url"`
			FileServerURL string `toml:"file_server_url"`
			LoginURL      string `toml:"login_url"`
		} `toml:"server"`
		LogDir string `toml:"log_dir"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.GamePath = mustExpand(strings.TrimSpace(raw.Game.Path))
	if strings.TrimSpace(raw.Game.Binary) != "" {
		cfg.GameBinary = strings.TrimSpace(raw.Game.Binary)
	}
	cfg.HashFileURL = strings.TrimSpace(raw.Server.HashFileURL)
	cfg.FileServerURL = strings.TrimRight(strings.TrimSpace(raw.Server.FileServerURL), "/")
	cfg.LoginURL = strings.TrimSpace(raw.Server.LoginURL)

	cfg.LogDir = strings.TrimSpace(raw.LogDir)
	if cfg.LogDir == "" {
		cfg.LogDir = defaultLogDir
	}
	cfg.LogDir = mustExpand(cfg.LogDir)

	return cfg, nil
}

// GameExecutable returns the absolute path of the game binary.
func (c Config) GameExecutable() string {
	return filepath.Join(c.GamePath, filepath.FromSlash(c.GameBinary))
}

// HashCachePath returns where the file-check hash cache is persisted.
func (c Config) HashCachePath() string {
	return filepath.Join(c.GamePath, "file_cache.json")
}

// HashFilePath returns where generated hash manifests are written.
func (c Config) HashFilePath() string {
	return filepath.Join(c.GamePath, "hash-file.json")
}

// LauncherLogPath returns the path of the launcher's own log file.
func (c Config) LauncherLogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/launcher.log")
	}
	return filepath.Join(c.LogDir, "launcher.log")
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	if strings.TrimSpace(path) == "" {
		return ""
	}
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
