package main

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

type fileConfig struct {
	Host           string `toml:"host"`
	Port           int    `toml:"port"`
	TimeoutSeconds uint   `toml:"timeout_seconds"`
	Charset        string `toml:"charset"`
	Message        string `toml:"message"`
}

// resolveOptions overlays config file values onto flags the user left at
// their defaults. Explicitly set flags always win; changed reports whether
// the named flag was set on the command line.
func resolveOptions(opts options, changed func(name string) bool) (options, error) {
	if strings.TrimSpace(opts.configPath) == "" {
		return opts, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(opts.configPath, &raw)
	if err != nil {
		return options{}, fmt.Errorf("load send config: %w", err)
	}

	if meta.IsDefined("host") && !changed("host") {
		if v := strings.TrimSpace(raw.Host); v != "" {
			opts.host = v
		}
	}
	if meta.IsDefined("port") && !changed("port") {
		if raw.Port < 0 || raw.Port > 65535 {
			return options{}, fmt.Errorf("config port out of range: %d", raw.Port)
		}
		opts.port = uint16(raw.Port)
	}
	if meta.IsDefined("timeout_seconds") && !changed("timeout") {
		opts.timeoutSecs = raw.TimeoutSeconds
	}
	if meta.IsDefined("charset") && !changed("charset") {
		opts.charsetName = strings.TrimSpace(raw.Charset)
	}
	if meta.IsDefined("message") && !changed("message") {
		opts.messagePath = strings.TrimSpace(raw.Message)
	}
	return opts, nil
}
