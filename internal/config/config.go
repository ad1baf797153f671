// Copyright 2025 The Prscribe Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads prscribe settings from defaults, an optional YAML file,
// a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/mikelane/prscribe/internal/describe"
	"github.com/mikelane/prscribe/internal/summary"
	"github.com/mikelane/prscribe/internal/webhook"
)

// Defaults
const (
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 3000
	DefaultShutdownTimeout = 30 * time.Second
	DefaultWebhookPath     = "/webhook"
	DefaultMaxDeliveries   = webhook.DefaultMaxDeliveries
	DefaultMaxTokens       = 256
	DefaultTemperature     = 0.7
	DefaultMaxChars        = summary.DefaultMaxChars
	DefaultMaxPatch        = summary.DefaultMaxPatch
	DefaultLogLevel        = "info"
)

// Config holds the application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Webhook WebhookConfig `mapstructure:"webhook"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Summary SummaryConfig `mapstructure:"summary"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig holds listener settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// WebhookConfig holds webhook intake settings
type WebhookConfig struct {
	Path          string `mapstructure:"path"`
	Secret        string `mapstructure:"secret"`
	MaxDeliveries int    `mapstructure:"max_deliveries"`
	// RateLimit is the number of pull request events accepted per repository
	// per second. Zero disables limiting.
	RateLimit int `mapstructure:"rate_limit"`
}

// GitHubConfig holds GitHub App or token credentials
type GitHubConfig struct {
	AppID          int64  `mapstructure:"app_id"`
	PrivateKey     string `mapstructure:"private_key"`
	PrivateKeyPath string `mapstructure:"private_key_path"`
	Token          string `mapstructure:"token"`
	BaseURL        string `mapstructure:"base_url"`
}

// LLMConfig selects and tunes the description model
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// SummaryConfig bounds the diff summary sent to the model
type SummaryConfig struct {
	MaxChars int `mapstructure:"max_chars"`
	MaxPatch int `mapstructure:"max_patch"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server.shutdown_timeout must not be negative, got %s", c.Server.ShutdownTimeout))
	}
	if !strings.HasPrefix(c.Webhook.Path, "/") {
		errs = append(errs, fmt.Errorf("webhook.path must start with /, got %q", c.Webhook.Path))
	}
	if c.Webhook.MaxDeliveries <= 0 {
		errs = append(errs, fmt.Errorf("webhook.max_deliveries must be positive, got %d", c.Webhook.MaxDeliveries))
	}
	if c.Webhook.RateLimit < 0 {
		errs = append(errs, fmt.Errorf("webhook.rate_limit must not be negative, got %d", c.Webhook.RateLimit))
	}
	if c.Summary.MaxChars <= 0 {
		errs = append(errs, fmt.Errorf("summary.max_chars must be positive, got %d", c.Summary.MaxChars))
	}
	if c.Summary.MaxPatch <= 0 {
		errs = append(errs, fmt.Errorf("summary.max_patch must be positive, got %d", c.Summary.MaxPatch))
	}

	switch strings.ToLower(c.LLM.Provider) {
	case describe.ProviderOpenAI, describe.ProviderGemini:
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be %q or %q, got %q",
			describe.ProviderOpenAI, describe.ProviderGemini, c.LLM.Provider))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}

	if _, err := c.Log.ZapLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// ZapLevel parses the configured log level
func (c LogConfig) ZapLevel() (zapcore.Level, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return level, fmt.Errorf("log.level %q is not a valid level: %w", c.Level, err)
	}
	return level, nil
}

