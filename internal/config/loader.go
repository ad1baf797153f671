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

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	configName = ".prscribe"
	configType = "yaml"
	envPrefix  = "PRSCRIBE"
	dotenvFile = ".env"
)

// legacyEnv maps config keys to the unprefixed variable names existing
// deployments already set.
var legacyEnv = map[string][]string{
	"server.port":        {"PORT"},
	"webhook.secret":     {"GITHUB_WEBHOOK_SECRET"},
	"github.app_id":      {"GITHUB_APP_ID"},
	"github.private_key": {"GITHUB_APP_PRIVATE_KEY"},
	"github.token":       {"GITHUB_TOKEN"},
}

// providerKeyEnv names the provider specific API key variables consulted
// when llm.api_key is unset.
var providerKeyEnv = map[string]string{
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

// Load reads configuration from defaults, the config file, a .env file in the
// working directory and environment variables, in increasing precedence.
// An empty configPath searches for .prscribe.yaml in CWD and $HOME; a missing
// file is not an error.
func Load(configPath string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(dotenvFile)

	v := viper.New()
	applyDefaults(v)

	v.SetConfigType(configType)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, names := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(append([]string{key, prefixed}, names...)...); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if configPath != "" {
		// an explicit file must exist
		if _, err := os.Stat(configPath); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(providerKeyEnv[cfg.LLM.Provider])
	}

	if cfg.GitHub.PrivateKey == "" && cfg.GitHub.PrivateKeyPath != "" {
		key, err := os.ReadFile(cfg.GitHub.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read GitHub App private key: %w", err)
		}
		cfg.GitHub.PrivateKey = string(key)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.host", DefaultHost)
	v.SetDefault("server.port", DefaultPort)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("webhook.path", DefaultWebhookPath)
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.max_deliveries", DefaultMaxDeliveries)
	v.SetDefault("webhook.rate_limit", 0)

	v.SetDefault("github.app_id", 0)
	v.SetDefault("github.private_key", "")
	v.SetDefault("github.private_key_path", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.base_url", "")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.max_tokens", DefaultMaxTokens)
	v.SetDefault("llm.temperature", DefaultTemperature)

	v.SetDefault("summary.max_chars", DefaultMaxChars)
	v.SetDefault("summary.max_patch", DefaultMaxPatch)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.development", false)
}
