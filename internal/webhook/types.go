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

package webhook

import "context"

// GitHub webhook headers
const (
	HeaderSignature = "X-Hub-Signature-256"
	HeaderEvent     = "X-GitHub-Event"
	HeaderDelivery  = "X-GitHub-Delivery"
)

// EventPing and EventPullRequest are the X-GitHub-Event values the server acts on
const (
	EventPing        = "ping"
	EventPullRequest = "pull_request"
)

// PullRequestHandler performs the slow work for an accepted pull request event.
// It is called on a background goroutine after the HTTP response is written.
type PullRequestHandler interface {
	HandlePullRequestOpened(ctx context.Context, event *PullRequestEvent) error
}

// PullRequestHandlerFunc adapts a function to PullRequestHandler
type PullRequestHandlerFunc func(ctx context.Context, event *PullRequestEvent) error

// HandlePullRequestOpened calls f(ctx, event)
func (f PullRequestHandlerFunc) HandlePullRequestOpened(ctx context.Context, event *PullRequestEvent) error {
	return f(ctx, event)
}

// PullRequestEvent represents a GitHub pull_request webhook event
type PullRequestEvent struct {
	PullRequest  PullRequest   `json:"pull_request"`
	Repository   Repository    `json:"repository"`
	Installation *Installation `json:"installation,omitempty"`
	Action       string        `json:"action"`
	Number       int           `json:"number"`
}

// PullRequest contains PR metadata
type PullRequest struct {
	User   User   `json:"user"`
	Title  string `json:"title"`
	Number int    `json:"number"`
}

// Repository contains repository metadata
type Repository struct {
	FullName string `json:"full_name"`
	Name     string `json:"name"`
	Owner    User   `json:"owner"`
}

// Slug returns "owner/name", falling back to FullName when the owner is absent
func (r Repository) Slug() string {
	if r.Owner.Login == "" || r.Name == "" {
		return r.FullName
	}
	return r.Owner.Login + "/" + r.Name
}

// User represents a repository owner or PR author
type User struct {
	Login string `json:"login"`
}

// Installation identifies the GitHub App installation that sent the event
type Installation struct {
	ID int64 `json:"id"`
}
