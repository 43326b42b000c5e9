package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is the demo binary's on-disk configuration, loaded from a TOML file.
type Config struct {
	BotToken       string `toml:"bot_token"`
	PollingTimeout int    `toml:"polling_timeout"`
	UpdateLimit    int    `toml:"update_limit"`
	DropPending    bool   `toml:"drop_pending_updates"`
	MessagesFile   string `toml:"messages_file"`
}

// LoadConfig reads and parses path as TOML.
func LoadConfig(path string) (Config, error) {
	var cfg Config

	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Config{}, fmt.Errorf("loading config from %s: %w", path, err)
	}

	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("config %s: bot_token is required", path)
	}

	return cfg, nil
}
