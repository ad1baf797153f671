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

package relay

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/mikelane/prscribe/internal/describe"
	"github.com/mikelane/prscribe/internal/github"
	"github.com/mikelane/prscribe/internal/metrics"
	"github.com/mikelane/prscribe/internal/summary"
	"github.com/mikelane/prscribe/internal/webhook"
)

type bodyUpdate struct {
	owner, repo string
	number      int
	body        string
}

type fakeClient struct {
	mu        sync.Mutex
	pages     [][]*github.File
	pageErr   error
	updateErr error
	fetched   int
	updates   []bodyUpdate
}

func (c *fakeClient) ListPRFiles(_ context.Context, _, _ string, _ int) iter.Seq2[[]*github.File, error] {
	return func(yield func([]*github.File, error) bool) {
		for _, page := range c.pages {
			c.mu.Lock()
			c.fetched++
			c.mu.Unlock()
			if !yield(page, nil) {
				return
			}
		}
		if c.pageErr != nil {
			yield(nil, c.pageErr)
		}
	}
}

func (c *fakeClient) UpdatePRBody(_ context.Context, owner, repo string, number int, body string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.updateErr != nil {
		return c.updateErr
	}
	c.updates = append(c.updates, bodyUpdate{owner: owner, repo: repo, number: number, body: body})
	return nil
}

type fakeFactory struct {
	client      *fakeClient
	err         error
	requestedID int64
}

func (f *fakeFactory) ForInstallation(id int64) (github.Client, error) {
	f.requestedID = id
	if f.err != nil {
		return nil, f.err
	}
	return f.client, nil
}

type fakeDescriber struct {
	reply string
	diffs []string
}

func (d *fakeDescriber) Describe(_ context.Context, diff string) string {
	d.diffs = append(d.diffs, diff)
	return d.reply
}

func openedEvent() *webhook.PullRequestEvent {
	return &webhook.PullRequestEvent{
		Action: "opened",
		Number: 7,
		PullRequest: webhook.PullRequest{
			Number: 7,
			Title:  "Add relay",
			User:   webhook.User{Login: "octocat"},
		},
		Repository: webhook.Repository{
			FullName: "octo/widgets",
			Name:     "widgets",
			Owner:    webhook.User{Login: "octo"},
		},
		Installation: &webhook.Installation{ID: 42},
	}
}

var _ = Describe("Pipeline", func() {
	var (
		ctx       context.Context
		client    *fakeClient
		factory   *fakeFactory
		describer *fakeDescriber
		pipeline  *Pipeline
	)

	BeforeEach(func() {
		ctx = context.Background()
		client = &fakeClient{
			pages: [][]*github.File{
				{
					{Filename: "main.go", Status: "modified", Additions: 3, Deletions: 1, Changes: 4, Patch: "@@ -1 +1 @@\n-a\n+b"},
				},
				{
					{Filename: "logo.png", Status: "added", Additions: 0, Deletions: 0, Changes: 0},
				},
			},
		}
		factory = &fakeFactory{client: client}
		describer = &fakeDescriber{reply: "Adds the relay."}
		pipeline = NewPipeline(factory, summary.New(0, 0), describer)
	})

	Context("when a pull request is opened", func() {
		It("writes the generated description back to the pull request", func() {
			Expect(pipeline.HandlePullRequestOpened(ctx, openedEvent())).To(Succeed())

			Expect(factory.requestedID).To(Equal(int64(42)))
			Expect(client.updates).To(ConsistOf(bodyUpdate{
				owner:  "octo",
				repo:   "widgets",
				number: 7,
				body:   "Adds the relay.",
			}))
		})

		It("hands the describer a summary of every changed file", func() {
			Expect(pipeline.HandlePullRequestOpened(ctx, openedEvent())).To(Succeed())

			Expect(describer.diffs).To(HaveLen(1))
			diff := describer.diffs[0]
			Expect(diff).To(HavePrefix("PR #7 in octo/widgets\n"))
			Expect(diff).To(ContainSubstring("file: main.go"))
			Expect(diff).To(ContainSubstring("file: logo.png"))
			Expect(strings.Count(diff, "patch:\n")).To(Equal(1))
		})

		It("writes fallback text when the describer has nothing to say", func() {
			describer.reply = describe.FallbackEmpty

			Expect(pipeline.HandlePullRequestOpened(ctx, openedEvent())).To(Succeed())
			Expect(client.updates).To(HaveLen(1))
			Expect(client.updates[0].body).To(Equal(describe.FallbackEmpty))
		})

		It("counts successful runs", func() {
			before := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.ResultSuccess))

			Expect(pipeline.HandlePullRequestOpened(ctx, openedEvent())).To(Succeed())

			Expect(testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.ResultSuccess))).To(Equal(before + 1))
		})
	})

	Context("when the summary reaches its size cap", func() {
		It("stops fetching further pages", func() {
			big := strings.Repeat("x", 600)
			client.pages = [][]*github.File{
				{{Filename: "a.go", Status: "modified", Patch: big}},
				{{Filename: "b.go", Status: "modified", Patch: big}},
				{{Filename: "c.go", Status: "modified", Patch: big}},
			}
			pipeline = NewPipeline(factory, summary.New(100, 0), describer)

			Expect(pipeline.HandlePullRequestOpened(ctx, openedEvent())).To(Succeed())

			Expect(client.fetched).To(Equal(1))
			Expect(describer.diffs[0]).NotTo(ContainSubstring("file: b.go"))
		})
	})

	Context("when the run cannot complete", func() {
		It("rejects events without an installation", func() {
			event := openedEvent()
			event.Installation = nil

			err := pipeline.HandlePullRequestOpened(ctx, event)
			Expect(err).To(MatchError(ErrMissingInstallation))
			Expect(describer.diffs).To(BeEmpty())
		})

		It("returns client construction errors", func() {
			factory.err = github.ErrMissingCredentials

			err := pipeline.HandlePullRequestOpened(ctx, openedEvent())
			Expect(err).To(MatchError(github.ErrMissingCredentials))
			Expect(describer.diffs).To(BeEmpty())
		})

		It("does not describe or update when listing files fails", func() {
			client.pageErr = errors.New("502 bad gateway")

			err := pipeline.HandlePullRequestOpened(ctx, openedEvent())
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("502 bad gateway"))
			Expect(describer.diffs).To(BeEmpty())
			Expect(client.updates).To(BeEmpty())
		})

		It("returns update errors and counts the failure", func() {
			client.updateErr = errors.New("failed to update pull request body: 403")
			before := testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.ResultFailure))

			err := pipeline.HandlePullRequestOpened(ctx, openedEvent())
			Expect(err).To(MatchError(ContainSubstring("403")))
			Expect(testutil.ToFloat64(metrics.PipelineRuns.WithLabelValues(metrics.ResultFailure))).To(Equal(before + 1))
		})
	})
})
