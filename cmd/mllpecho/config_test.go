package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danmuck/mllpctl/internal/echo"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "echo.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaultsWithoutPath(t *testing.T) {
	cfg, logFile, err := loadConfig("")
	require.NoError(t, err)
	require.Equal(t, echo.DefaultConfig(), cfg)
	require.Empty(t, logFile.Path)
}

func TestLoadConfigMergesOverDefaults(t *testing.T) {
	path := writeConfig(t, `
listen_addr = "0.0.0.0:2575"
mode = "static"
static_reply = "NAK|maintenance"
min_reply_delay_ms = 50
max_reply_delay_ms = 250
drop_percent = 10
max_frame_bytes = 65536
multicore = true
pool_size = 64
ops_addr = "127.0.0.1:9632"

[log]
file = "/var/log/mllpecho.log"
max_size_mb = 100
max_backups = 3
max_age_days = 7
compress = true
`)

	cfg, logFile, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:2575", cfg.ListenAddr)
	require.Equal(t, echo.ModeStatic, cfg.Mode)
	require.Equal(t, "NAK|maintenance", cfg.StaticReply)
	require.Equal(t, 50*time.Millisecond, cfg.MinReplyDelay)
	require.Equal(t, 250*time.Millisecond, cfg.MaxReplyDelay)
	require.Equal(t, 10, cfg.DropPercent)
	require.Equal(t, 65536, cfg.MaxFrameBytes)
	require.True(t, cfg.Multicore)
	require.Equal(t, 64, cfg.PoolSize)
	require.Equal(t, "127.0.0.1:9632", cfg.OpsAddr)

	require.Equal(t, "/var/log/mllpecho.log", logFile.Path)
	require.Equal(t, 100, logFile.MaxSizeMB)
	require.Equal(t, 3, logFile.MaxBackups)
	require.Equal(t, 7, logFile.MaxAgeDays)
	require.True(t, logFile.Compress)
}

func TestLoadConfigPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `mode = "echo"`)

	cfg, logFile, err := loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, echo.ModeEcho, cfg.Mode)
	require.Equal(t, echo.DefaultConfig().ListenAddr, cfg.ListenAddr)
	require.Equal(t, echo.DefaultConfig().MaxFrameBytes, cfg.MaxFrameBytes)
	require.Equal(t, echo.DefaultConfig().PoolSize, cfg.PoolSize)
	require.Empty(t, logFile.Path)
}

func TestLoadConfigRejectsMalformedFile(t *testing.T) {
	path := writeConfig(t, `mode = [`)

	_, _, err := loadConfig(path)
	require.ErrorContains(t, err, "load echo config")
}
