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

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/mikelane/prscribe/internal/config"
	"github.com/mikelane/prscribe/internal/describe"
	"github.com/mikelane/prscribe/internal/github"
	"github.com/mikelane/prscribe/internal/relay"
	"github.com/mikelane/prscribe/internal/summary"
	"github.com/mikelane/prscribe/internal/webhook"
)

func newServeCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config file (default .prscribe.yaml in CWD or $HOME)")
	return cmd
}

func newLogger(cfg config.LogConfig) (logr.Logger, error) {
	level, err := cfg.ZapLevel()
	if err != nil {
		return logr.Discard(), err
	}
	return zap.New(zap.UseDevMode(cfg.Development), zap.Level(level)), nil
}

// newServer assembles the relay from cfg without starting it.
func newServer(ctx context.Context, cfg *config.Config) (*webhook.Server, error) {
	deliveries, err := webhook.NewDeliveryTracker(cfg.Webhook.MaxDeliveries)
	if err != nil {
		return nil, err
	}

	clients := github.NewClientFactory(github.Credentials{
		AppID:      cfg.GitHub.AppID,
		PrivateKey: []byte(cfg.GitHub.PrivateKey),
		Token:      cfg.GitHub.Token,
		BaseURL:    cfg.GitHub.BaseURL,
	})

	describer, err := describe.New(ctx, describe.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create describer: %w", err)
	}

	pipeline := relay.NewPipeline(clients, summary.New(cfg.Summary.MaxChars, cfg.Summary.MaxPatch), describer)

	opts := []webhook.Option{
		webhook.WithPath(cfg.Webhook.Path),
		webhook.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
	}
	if cfg.Webhook.RateLimit > 0 {
		opts = append(opts, webhook.WithRateLimiter(webhook.NewRateLimiter(cfg.Webhook.RateLimit, time.Second)))
	}

	return webhook.NewServer(cfg.Server.Host, cfg.Server.Port, cfg.Webhook.Secret, deliveries, pipeline, opts...), nil
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	log.SetLogger(logger)
	setupLog := log.Log.WithName("setup")

	if cfg.Webhook.Secret == "" {
		setupLog.Info("Webhook secret is not configured; webhook requests will fail until it is set")
	}
	if cfg.LLM.APIKey == "" {
		setupLog.Info("LLM API key is not configured; descriptions will use fallback text", "provider", cfg.LLM.Provider)
	}

	server, err := newServer(ctx, cfg)
	if err != nil {
		return err
	}

	setupLog.Info("Starting prscribe", "version", version, "port", cfg.Server.Port, "path", cfg.Webhook.Path)
	return server.Start(ctx)
}
