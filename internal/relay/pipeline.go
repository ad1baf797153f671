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

// Package relay writes generated descriptions onto newly opened pull requests.
package relay

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/prscribe/internal/describe"
	"github.com/mikelane/prscribe/internal/github"
	"github.com/mikelane/prscribe/internal/metrics"
	"github.com/mikelane/prscribe/internal/summary"
	"github.com/mikelane/prscribe/internal/webhook"
)

// ErrMissingInstallation is returned for events that carry no installation ID
var ErrMissingInstallation = errors.New("installation ID is missing from the payload")

// Pipeline summarizes a pull request, asks for a description and writes it
// back as the PR body. It implements webhook.PullRequestHandler.
type Pipeline struct {
	clients    github.ClientFactory
	summarizer *summary.Summarizer
	describer  describe.Describer
}

var _ webhook.PullRequestHandler = (*Pipeline)(nil)

// NewPipeline creates a Pipeline
func NewPipeline(clients github.ClientFactory, summarizer *summary.Summarizer, describer describe.Describer) *Pipeline {
	return &Pipeline{
		clients:    clients,
		summarizer: summarizer,
		describer:  describer,
	}
}

// HandlePullRequestOpened runs the pipeline once for event. Errors are
// returned for the caller to log; nothing is retried.
func (p *Pipeline) HandlePullRequestOpened(ctx context.Context, event *webhook.PullRequestEvent) error {
	err := p.run(ctx, event)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(metrics.ResultFailure).Inc()
		return err
	}
	metrics.PipelineRuns.WithLabelValues(metrics.ResultSuccess).Inc()
	return nil
}

func (p *Pipeline) run(ctx context.Context, event *webhook.PullRequestEvent) error {
	logger := log.FromContext(ctx)

	if event.Installation == nil || event.Installation.ID == 0 {
		return ErrMissingInstallation
	}

	client, err := p.clients.ForInstallation(event.Installation.ID)
	if err != nil {
		return fmt.Errorf("failed to create GitHub client: %w", err)
	}

	owner := event.Repository.Owner.Login
	repo := event.Repository.Name
	number := event.PullRequest.Number

	digest, err := p.summarizer.Summarize(number, owner, repo, client.ListPRFiles(ctx, owner, repo, number))
	if err != nil {
		return err
	}
	logger.V(1).Info("Summarized pull request", "chars", len(digest))

	description := p.describer.Describe(ctx, digest)

	if err := client.UpdatePRBody(ctx, owner, repo, number, description); err != nil {
		return err
	}

	logger.Info("Updated pull request description")
	return nil
}
