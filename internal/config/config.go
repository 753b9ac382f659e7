package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const appName = "playcore"

type Config struct {
	// Logging settings
	Log LogConfig `koanf:"log"`

	// Player defaults
	Player PlayerConfig `koanf:"player"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `koanf:"level"`  // logrus level name (default: "info")
	Format string `koanf:"format"` // "text" or "json" (default: "text")
	File   string `koanf:"file"`   // append to this file instead of stderr
}

// PlayerConfig holds the settings a Player starts with.
type PlayerConfig struct {
	TimeoutMS          int      `koanf:"timeout_ms"`          // per-operation timeout, negative = infinite (default: 10000)
	PreloadImmediately *bool    `koanf:"preload_immediately"` // open media as soon as it is set (default: true)
	BufferMinMS        int      `koanf:"buffer_min_ms"`       // (default: 1000)
	BufferMaxMS        int      `koanf:"buffer_max_ms"`       // (default: 4000)
	BufferDrop         bool     `koanf:"buffer_drop"`         // drop old data when the buffer is full
	AudioDecoders      []string `koanf:"audio_decoders"`      // decoder names in priority order
	VideoDecoders      []string `koanf:"video_decoders"`
	AudioBackends      []string `koanf:"audio_backends"`
	AspectRatio        string   `koanf:"aspect_ratio"` // "keep", "crop", "stretch" or "W:H" (default: "keep")
	Background         string   `koanf:"background"`   // hex color, "none" disables fill (default: "#000000")
	Volume             *float64 `koanf:"volume"`       // 0.0-1.0 (default: 1.0)
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{}
}

// Load reads the configuration files in order of priority (last wins).
func Load() (*Config, error) {
	k := koanf.New(".")

	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}

	return unmarshal(k)
}

// LoadFile reads a single configuration file.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(expandPath(path)), toml.Parser()); err != nil {
		return nil, err
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	// Expand ~ in log file
	if cfg.Log.File != "" {
		cfg.Log.File = expandPath(cfg.Log.File)
	}
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return cfg, nil
}

func getConfigPaths() []string {
	return []string{
		// 1. $XDG_CONFIG_HOME/playcore/config.toml
		filepath.Join(xdg.ConfigHome, appName, "config.toml"),
		// 2. ./config.toml (pwd, highest priority)
		"config.toml",
	}
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetLogConfig returns the logging configuration with defaults applied.
func (c *Config) GetLogConfig() LogConfig {
	cfg := c.Log
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format != "json" {
		cfg.Format = "text"
	}
	return cfg
}

// GetPlayerConfig returns the player configuration with defaults applied.
func (c *Config) GetPlayerConfig() PlayerConfig {
	cfg := c.Player

	// Apply defaults
	if cfg.TimeoutMS == 0 {
		cfg.TimeoutMS = 10000
	}
	if cfg.PreloadImmediately == nil {
		preload := true
		cfg.PreloadImmediately = &preload
	}
	if cfg.BufferMinMS <= 0 {
		cfg.BufferMinMS = 1000
	}
	if cfg.BufferMaxMS <= 0 {
		cfg.BufferMaxMS = 4000
	}
	if cfg.BufferMaxMS < cfg.BufferMinMS {
		cfg.BufferMaxMS = cfg.BufferMinMS
	}
	if cfg.AspectRatio == "" {
		cfg.AspectRatio = "keep"
	}
	if cfg.Background == "" {
		cfg.Background = "#000000"
	}
	if cfg.Volume == nil || *cfg.Volume < 0 || *cfg.Volume > 1 {
		volume := 1.0
		cfg.Volume = &volume
	}

	return cfg
}

// Timeout returns the per-operation timeout. Negative means infinite.
func (c PlayerConfig) Timeout() time.Duration {
	if c.TimeoutMS < 0 {
		return -1
	}
	return time.Duration(c.TimeoutMS) * time.Millisecond
}

// Preload reports whether media opens as soon as it is set.
func (c PlayerConfig) Preload() bool {
	return c.PreloadImmediately == nil || *c.PreloadImmediately
}

// BufferRange returns the buffer bounds.
func (c PlayerConfig) BufferRange() (time.Duration, time.Duration) {
	return time.Duration(c.BufferMinMS) * time.Millisecond, time.Duration(c.BufferMaxMS) * time.Millisecond
}
