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

// Package summary turns the changed files of a pull request into a
// size-capped text digest for the description model.
//
// The digest starts with a "PR #<n> in <owner>/<repo>" header followed by one
// block per file:
//
//	---
//	file: internal/server.go
//	status: modified, additions: 10, deletions: 2, changes: 12
//	patch:
//	@@ -1,4 +1,12 @@
//	...
//
// The size cap is checked before each file is appended, so the digest can
// overshoot it by at most one file block. Files are consumed page by page and
// no further pages are requested once the cap is reached.
//
// Lengths are counted in Unicode code points.
package summary

import (
	"fmt"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/mikelane/prscribe/internal/github"
	"github.com/mikelane/prscribe/internal/metrics"
)

const (
	// DefaultMaxChars caps the digest to bound model cost and latency.
	DefaultMaxChars = 20000
	// DefaultMaxPatch is the longest patch kept verbatim.
	DefaultMaxPatch = 800

	truncationMarker = "\n... truncated ...\n"
)

// Summarizer builds pull request digests
type Summarizer struct {
	maxChars int
	maxPatch int
}

// New creates a Summarizer. Non-positive limits fall back to the defaults.
func New(maxChars, maxPatch int) *Summarizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if maxPatch <= 0 {
		maxPatch = DefaultMaxPatch
	}
	return &Summarizer{maxChars: maxChars, maxPatch: maxPatch}
}

// Summarize consumes pages of changed files and returns the digest. An error
// from the page sequence aborts the summary.
func (s *Summarizer) Summarize(number int, owner, repo string, pages iter.Seq2[[]*github.File, error]) (string, error) {
	var b strings.Builder
	length := 0
	write := func(text string) {
		b.WriteString(text)
		length += utf8.RuneCountInString(text)
	}

	write(fmt.Sprintf("PR #%d in %s/%s\n", number, owner, repo))

	for files, err := range pages {
		if err != nil {
			return "", fmt.Errorf("failed to summarize PR #%d: %w", number, err)
		}

		for _, f := range files {
			if length >= s.maxChars {
				break
			}
			write(s.block(f))
			metrics.SummaryFiles.Inc()
		}

		if length >= s.maxChars {
			break
		}
	}

	return b.String(), nil
}

func (s *Summarizer) block(f *github.File) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n---\nfile: %s\nstatus: %s, additions: %d, deletions: %d, changes: %d\n",
		f.Filename, f.Status, f.Additions, f.Deletions, f.Changes)

	if f.Patch != "" {
		snippet, truncated := Snippet(f.Patch, s.maxPatch)
		if truncated {
			metrics.TruncatedPatches.Inc()
		}
		b.WriteString("patch:\n")
		b.WriteString(snippet)
		b.WriteString("\n")
	}
	return b.String()
}

// Snippet shortens patch to its first and last max/2 code points when it is
// longer than max. The second result reports whether it was shortened.
func Snippet(patch string, max int) (string, bool) {
	if utf8.RuneCountInString(patch) <= max {
		return patch, false
	}

	runes := []rune(patch)
	half := max / 2
	return string(runes[:half]) + truncationMarker + string(runes[len(runes)-half:]), true
}
