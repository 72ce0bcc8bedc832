package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mllpctl/internal/echo"
	"github.com/danmuck/mllpctl/internal/logging"
)

type fileConfig struct {
	ListenAddr    string    `toml:"listen_addr"`
	Mode          string    `toml:"mode"`
	StaticReply   string    `toml:"static_reply"`
	MinReplyDelay int64     `toml:"min_reply_delay_ms"`
	MaxReplyDelay int64     `toml:"max_reply_delay_ms"`
	DropPercent   int       `toml:"drop_percent"`
	MaxFrameBytes int       `toml:"max_frame_bytes"`
	Multicore     bool      `toml:"multicore"`
	PoolSize      int       `toml:"pool_size"`
	OpsAddr       string    `toml:"ops_addr"`
	Log           logConfig `toml:"log"`
}

type logConfig struct {
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days"`
	Compress   bool   `toml:"compress"`
}

// loadConfig merges the TOML file at path over the responder defaults. An
// empty path returns the defaults untouched.
func loadConfig(path string) (echo.Config, logging.FileConfig, error) {
	cfg := echo.DefaultConfig()
	var logFile logging.FileConfig
	if strings.TrimSpace(path) == "" {
		return cfg, logFile, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return echo.Config{}, logging.FileConfig{}, fmt.Errorf("load echo config: %w", err)
	}

	if meta.IsDefined("listen_addr") {
		cfg.ListenAddr = strings.TrimSpace(raw.ListenAddr)
	}
	if meta.IsDefined("mode") {
		cfg.Mode = echo.Mode(strings.TrimSpace(raw.Mode))
	}
	if meta.IsDefined("static_reply") {
		cfg.StaticReply = raw.StaticReply
	}
	if meta.IsDefined("min_reply_delay_ms") {
		cfg.MinReplyDelay = time.Duration(raw.MinReplyDelay) * time.Millisecond
	}
	if meta.IsDefined("max_reply_delay_ms") {
		cfg.MaxReplyDelay = time.Duration(raw.MaxReplyDelay) * time.Millisecond
	}
	if meta.IsDefined("drop_percent") {
		cfg.DropPercent = raw.DropPercent
	}
	if meta.IsDefined("max_frame_bytes") {
		cfg.MaxFrameBytes = raw.MaxFrameBytes
	}
	if meta.IsDefined("multicore") {
		cfg.Multicore = raw.Multicore
	}
	if meta.IsDefined("pool_size") {
		cfg.PoolSize = raw.PoolSize
	}
	if meta.IsDefined("ops_addr") {
		cfg.OpsAddr = strings.TrimSpace(raw.OpsAddr)
	}

	if meta.IsDefined("log", "file") {
		logFile = logging.FileConfig{
			Path:       strings.TrimSpace(raw.Log.File),
			MaxSizeMB:  raw.Log.MaxSizeMB,
			MaxBackups: raw.Log.MaxBackups,
			MaxAgeDays: raw.Log.MaxAgeDays,
			Compress:   raw.Log.Compress,
		}
	}
	return cfg, logFile, nil
}
