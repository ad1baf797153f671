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

// Package describe asks a language model to write a pull request description
// from a change summary.
//
// Describe never fails: model errors, including a missing API key, are logged
// and replaced by a fixed fallback text so the caller can still update the PR.
package describe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"sigs.k8s.io/controller-runtime/pkg/log"
)

// Fallback descriptions
const (
	FallbackEmpty = "Could not generate a description."
	FallbackError = "Error generating description."
)

// Supported providers
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// ErrMissingAPIKey is logged when a description is requested without an API key
var ErrMissingAPIKey = errors.New("LLM API key is not set")

// Describer turns a change summary into a PR description
type Describer interface {
	Describe(ctx context.Context, diff string) string
}

// Config selects and tunes the model backend
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// completeFunc sends one prompt and returns the raw model text
type completeFunc func(ctx context.Context, prompt string) (string, error)

type describer struct {
	provider string
	complete completeFunc
}

// New builds the Describer for cfg.Provider.
func New(ctx context.Context, cfg Config) (Describer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderOpenAI:
		return NewOpenAI(cfg), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

// Prompt wraps diff in the instructions sent to the model
func Prompt(diff string) string {
	return "Analyze the following PR diff and generate a concise, professional description.\n" +
		"The description should include a summary of the changes, the key modifications,\n" +
		"and the potential impact.\n\n" +
		"Diff:\n" + diff
}

// Describe implements Describer
func (d *describer) Describe(ctx context.Context, diff string) string {
	logger := log.FromContext(ctx).WithValues("provider", d.provider)

	text, err := d.complete(ctx, Prompt(diff))
	if err != nil {
		logger.Error(err, "Failed to generate PR description")
		return FallbackError
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logger.Info("Model returned an empty description")
		return FallbackEmpty
	}
	return text
}
