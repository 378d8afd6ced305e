// Package config resolves process configuration from the environment once
// at startup. Both service credentials are required before the catalog is
// servable; a missing one is a startup error, not a first-use failure.
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variable names.
const (
	EnvFalKey         = "FAL_KEY"
	EnvSlackBotToken  = "SLACK_BOT_TOKEN"
	EnvDefaultChannel = "SLACK_DEFAULT_CHANNEL"
	EnvPort           = "PORT"
)

// Config is the immutable process-wide configuration. It is constructed
// once and passed into each component's constructor; nothing mutates it
// after startup.
type Config struct {
	// FalKey authenticates against the image service.
	FalKey string
	// SlackBotToken authenticates against the messaging service.
	SlackBotToken string
	// DefaultChannel is the fallback destination when an invocation names
	// no channel. May be empty.
	DefaultChannel string
	// Port selects the HTTP deployment mode when non-zero.
	Port int
}

// FromEnv reads configuration from the environment.
func FromEnv() (Config, error) {
	cfg := Config{
		FalKey:         os.Getenv(EnvFalKey),
		SlackBotToken:  os.Getenv(EnvSlackBotToken),
		DefaultChannel: os.Getenv(EnvDefaultChannel),
	}

	if cfg.FalKey == "" {
		return Config{}, fmt.Errorf("config: %s environment variable is required", EnvFalKey)
	}

	if cfg.SlackBotToken == "" {
		return Config{}, fmt.Errorf("config: %s environment variable is required", EnvSlackBotToken)
	}

	if raw := os.Getenv(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil || port <= 0 || port > 65535 {
			return Config{}, fmt.Errorf("config: invalid %s value %q", EnvPort, raw)
		}
		cfg.Port = port
	}

	return cfg, nil
}
