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
	"iter"
)

// Client interface defines the contract for interacting with GitHub API
type Client interface {
	// ListPRFiles returns the files changed in a pull request one API page
	// at a time. Pages are fetched lazily; breaking out of the range loop
	// stops further requests. A failed request yields a single error and
	// ends the sequence.
	ListPRFiles(ctx context.Context, owner, repo string, number int) iter.Seq2[[]*File, error]
	// UpdatePRBody overwrites the description of a pull request
	UpdatePRBody(ctx context.Context, owner, repo string, number int, body string) error
}

// ClientFactory hands out clients authenticated for a GitHub App installation
type ClientFactory interface {
	ForInstallation(installationID int64) (Client, error)
}

// File represents a file changed in a pull request
type File struct {
	Filename  string
	Status    string // added, removed, modified, renamed, copied, changed, unchanged
	Additions int
	Deletions int
	Changes   int
	Patch     string // empty for binary or oversized diffs
}

// Credentials selects how clients authenticate. App credentials win over a
// token when both are present.
type Credentials struct {
	AppID      int64
	PrivateKey []byte
	Token      string
	BaseURL    string // GitHub Enterprise API root, e.g. https://ghe.example.com/api/v3/
}
