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

	openai "github.com/sashabaranov/go-openai"
)

// NewOpenAI creates a Describer backed by the OpenAI chat completions API.
// An empty model defaults to gpt-3.5-turbo.
func NewOpenAI(cfg Config) Describer {
	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}

	return &describer{
		provider: ProviderOpenAI,
		complete: func(ctx context.Context, prompt string) (string, error) {
			if client == nil {
				return "", ErrMissingAPIKey
			}

			resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
				Model: model,
				Messages: []openai.ChatCompletionMessage{
					{Role: openai.ChatMessageRoleUser, Content: prompt},
				},
				MaxTokens:   cfg.MaxTokens,
				Temperature: cfg.Temperature,
			})
			if err != nil {
				return "", fmt.Errorf("failed to create chat completion: %w", err)
			}

			if len(resp.Choices) == 0 {
				return "", nil
			}
			return resp.Choices[0].Message.Content, nil
		},
	}
}
