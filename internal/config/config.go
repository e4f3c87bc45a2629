/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"gowhiteboard/internal/shape"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.

type CanvasConfig struct {
	Width      int     `yaml:"width"`
	Height     int     `yaml:"height"`
	LineWidth  float64 `yaml:"line_width"`
	Foreground string  `yaml:"foreground"` // #rrggbb or #rrggbbaa
	Background string  `yaml:"background"` // also the eraser colour
}

// StorageConfig selects the key-value backend holding the drawing.
type StorageConfig struct {
	Backend    string `yaml:"backend"` // "prefs" | "file" | "sqlite" | "memory"
	Path       string `yaml:"path"`    // file/sqlite location; empty = next to config.yaml
	Key        string `yaml:"key"`
	QuotaBytes int    `yaml:"quota_bytes"` // 0 disables the quota
	TimeoutMs  int    `yaml:"timeout_ms"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Storage backends.
const (
	BackendPrefs  = "prefs"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// DefaultKey is the store key holding the serialized drawing.
const DefaultKey = "whiteboard.drawing"

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas: CanvasConfig{
			Width: 1024, Height: 768, LineWidth: 5,
			Foreground: "#000000", Background: "#ffffff",
		},
		Storage: StorageConfig{
			Backend: BackendFile, Key: DefaultKey,
			QuotaBytes: 5 << 20, TimeoutMs: 2000,
		},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath = "GWB_CONFIG"

	EnvCanvasWidth      = "GWB_CANVAS_WIDTH"
	EnvCanvasHeight     = "GWB_CANVAS_HEIGHT"
	EnvCanvasForeground = "GWB_CANVAS_FOREGROUND"
	EnvCanvasBackground = "GWB_CANVAS_BACKGROUND"

	EnvStorageBackend = "GWB_STORAGE_BACKEND"
	EnvStoragePath    = "GWB_STORAGE_PATH"
	EnvStorageKey     = "GWB_STORAGE_KEY"
	EnvStorageQuota   = "GWB_STORAGE_QUOTA_BYTES"
	EnvStorageTimeout = "GWB_STORAGE_TIMEOUT_MS"

	// EnvLogLevel Logging envs
	EnvLogLevel  = "GWB_LOG_LEVEL"
	EnvLogFormat = "GWB_LOG_FORMAT"
	EnvLogSource = "GWB_LOG_SOURCE"
	EnvLogFile   = "GWB_LOG_FILE"
)

// ConfigDir returns the per-user directory for config and default data files.
func ConfigDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoWhiteboard")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoWhiteboard")
	default:
		base = filepath.Join(os.Getenv("HOME"), ".config", "gowhiteboard")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// ConfigPath returns the config file path. GWB_CONFIG wins over the per-user location.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges environment overrides.
// A malformed file is reported but the defaults plus env are still returned.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	var parseErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		} else {
			parseErr = fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnvOverrides(&cfg)
	return cfg, parseErr
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports the first configuration problem that would break startup.
func (c AppConfig) Validate() error {
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		return fmt.Errorf("canvas size must be positive, got %dx%d", c.Canvas.Width, c.Canvas.Height)
	}
	if c.Canvas.LineWidth <= 0 {
		return fmt.Errorf("canvas.line_width must be positive, got %v", c.Canvas.LineWidth)
	}
	if _, err := shape.ParseHex(c.Canvas.Foreground); err != nil {
		return fmt.Errorf("canvas.foreground: %w", err)
	}
	if _, err := shape.ParseHex(c.Canvas.Background); err != nil {
		return fmt.Errorf("canvas.background: %w", err)
	}
	switch c.Storage.Backend {
	case BackendPrefs, BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("unknown storage.backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Key) == "" {
		return errors.New("storage.key must not be empty")
	}
	if c.Storage.QuotaBytes < 0 {
		return fmt.Errorf("storage.quota_bytes must not be negative, got %d", c.Storage.QuotaBytes)
	}
	return nil
}

// Timeout is the per-operation deadline applied to store calls.
func (s StorageConfig) Timeout() time.Duration {
	if s.TimeoutMs <= 0 {
		return time.Duration(Defaults().Storage.TimeoutMs) * time.Millisecond
	}
	return time.Duration(s.TimeoutMs) * time.Millisecond
}

// ResolvedPath returns the data file location for file-based backends.
func (s StorageConfig) ResolvedPath() (string, error) {
	if p := strings.TrimSpace(s.Path); p != "" {
		return p, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	name := "drawing.json"
	if s.Backend == BackendSQLite {
		name = "drawing.db"
	}
	return filepath.Join(dir, name), nil
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// canvas
	if src.Canvas.Width > 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height > 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if src.Canvas.LineWidth > 0 {
		dst.Canvas.LineWidth = src.Canvas.LineWidth
	}
	if v := strings.TrimSpace(src.Canvas.Foreground); v != "" {
		dst.Canvas.Foreground = v
	}
	if v := strings.TrimSpace(src.Canvas.Background); v != "" {
		dst.Canvas.Background = v
	}
	// storage
	if v := strings.TrimSpace(src.Storage.Backend); v != "" {
		dst.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Storage.Path); v != "" {
		dst.Storage.Path = v
	}
	if v := strings.TrimSpace(src.Storage.Key); v != "" {
		dst.Storage.Key = v
	}
	if src.Storage.QuotaBytes != 0 {
		dst.Storage.QuotaBytes = src.Storage.QuotaBytes
	}
	if src.Storage.TimeoutMs != 0 {
		dst.Storage.TimeoutMs = src.Storage.TimeoutMs
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	envInt := func(name string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	envInt(EnvCanvasWidth, &cfg.Canvas.Width)
	envInt(EnvCanvasHeight, &cfg.Canvas.Height)
	if v := strings.TrimSpace(os.Getenv(EnvCanvasForeground)); v != "" {
		cfg.Canvas.Foreground = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvCanvasBackground)); v != "" {
		cfg.Canvas.Background = v
	}

	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStoragePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageKey)); v != "" {
		cfg.Storage.Key = v
	}
	envInt(EnvStorageQuota, &cfg.Storage.QuotaBytes)
	envInt(EnvStorageTimeout, &cfg.Storage.TimeoutMs)

	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"canvas.width":        EnvCanvasWidth,
	"canvas.height":       EnvCanvasHeight,
	"canvas.foreground":   EnvCanvasForeground,
	"canvas.background":   EnvCanvasBackground,
	"storage.backend":     EnvStorageBackend,
	"storage.path":        EnvStoragePath,
	"storage.key":         EnvStorageKey,
	"storage.quota_bytes": EnvStorageQuota,
	"storage.timeout_ms":  EnvStorageTimeout,
	"logging.level":       EnvLogLevel,
	"logging.format":      EnvLogFormat,
	"logging.source":      EnvLogSource,
	"logging.file":        EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envByKey[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
