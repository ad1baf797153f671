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

package describe

import (
	"context"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured for Gemini
const DefaultGeminiModel = "gemini-2.0-flash"

// NewGemini creates a Describer backed by the Gemini API.
func NewGemini(ctx context.Context, cfg Config) (Describer, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultGeminiModel
	}

	var client *genai.Client
	if cfg.APIKey != "" {
		var err error
		client, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:      cfg.APIKey,
			Backend:     genai.BackendGeminiAPI,
			HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(cfg.Temperature),
	}
	if cfg.MaxTokens > 0 {
		genCfg.MaxOutputTokens = int32(cfg.MaxTokens)
	}

	return &describer{
		provider: ProviderGemini,
		complete: func(ctx context.Context, prompt string) (string, error) {
			if client == nil {
				return "", ErrMissingAPIKey
			}

			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
			if err != nil {
				return "", fmt.Errorf("failed to generate content: %w", err)
			}

			if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
				return "", nil
			}
			var b strings.Builder
			for _, part := range resp.Candidates[0].Content.Parts {
				if part != nil {
					b.WriteString(part.Text)
				}
			}
			return b.String(), nil
		},
	}, nil
}
