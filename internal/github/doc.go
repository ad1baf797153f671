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

// Package github provides GitHub API integration for prscribe.
//
// This package implements a client for listing the files changed in a pull
// request and rewriting the pull request description.
//
// Key features:
//   - Lazy, page-at-a-time listing of PR files (100 per page)
//   - PR body updates
//   - GitHub App installation authentication, with a token fallback
//   - GitHub Enterprise base URLs
//
// Authentication:
//
// When an App ID and private key are configured, each webhook's installation
// ID gets its own client backed by an installation access token. Otherwise a
// personal access token with the repo scope is used for every installation.
//
// Example usage:
//
//	factory := github.NewClientFactory(github.Credentials{AppID: 1234, PrivateKey: pem})
//	client, err := factory.ForInstallation(event.Installation.ID)
//	if err != nil {
//	    return err
//	}
//
//	for files, err := range client.ListPRFiles(ctx, "owner", "repo", 42) {
//	    if err != nil {
//	        return err
//	    }
//	    // consume files; break to stop paging
//	}
//
//	err = client.UpdatePRBody(ctx, "owner", "repo", 42, description)
//
// Failed requests are not retried.
package github
