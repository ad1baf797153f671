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

package github

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"strings"

	"github.com/google/go-github/v66/github"
)

// filesPerPage is the largest page size the PR files endpoint accepts
const filesPerPage = 100

// githubClient implements the Client interface using go-github
type githubClient struct {
	client *github.Client
}

// NewClient creates a new GitHub client with the provided token
func NewClient(token string) (Client, error) {
	return newClient(nil, token, "")
}

func newClient(httpClient *http.Client, token, baseURL string) (*githubClient, error) {
	client := github.NewClient(httpClient)
	if token != "" {
		client = client.WithAuthToken(token)
	}

	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		parsed, err := client.BaseURL.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse GitHub base URL: %w", err)
		}
		client.BaseURL = parsed
	}

	return &githubClient{client: client}, nil
}

// ListPRFiles retrieves the files changed in a pull request page by page
func (c *githubClient) ListPRFiles(ctx context.Context, owner, repo string, number int) iter.Seq2[[]*File, error] {
	return func(yield func([]*File, error) bool) {
		opts := &github.ListOptions{
			PerPage: filesPerPage,
		}

		for {
			files, resp, err := c.client.PullRequests.ListFiles(ctx, owner, repo, number, opts)
			if err != nil {
				yield(nil, fmt.Errorf("failed to list PR files: %w", err))
				return
			}

			page := make([]*File, 0, len(files))
			for _, file := range files {
				if f := c.convertFile(file); f != nil {
					page = append(page, f)
				}
			}

			if !yield(page, nil) {
				return
			}

			if resp.NextPage == 0 {
				return
			}
			opts.Page = resp.NextPage
		}
	}
}

// UpdatePRBody overwrites the body of a pull request
func (c *githubClient) UpdatePRBody(ctx context.Context, owner, repo string, number int, body string) error {
	_, _, err := c.client.PullRequests.Edit(ctx, owner, repo, number, &github.PullRequest{
		Body: github.String(body),
	})
	if err != nil {
		return fmt.Errorf("failed to update pull request body: %w", err)
	}
	return nil
}

// convertFile converts a GitHub CommitFile to our domain model
func (c *githubClient) convertFile(file *github.CommitFile) *File {
	if file == nil {
		return nil
	}

	return &File{
		Filename:  file.GetFilename(),
		Status:    file.GetStatus(),
		Additions: file.GetAdditions(),
		Deletions: file.GetDeletions(),
		Changes:   file.GetChanges(),
		Patch:     file.GetPatch(),
	}
}
