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

// Package webhook provides GitHub webhook admission for prscribe.
//
// This package implements an HTTP server that receives GitHub webhook
// deliveries, authenticates them, drops redeliveries and hands newly opened
// pull requests to a PullRequestHandler for description generation.
//
// Webhook Security:
//
// Every request must carry an X-Hub-Signature-256 header containing an
// HMAC-SHA256 of the raw body computed with the webhook secret. A missing
// header and a bad signature are both answered with HTTP 401 and logged with
// different reasons. A server started without a secret answers signed
// requests with HTTP 500.
//
// Redeliveries:
//
// The X-GitHub-Delivery ID of every pull request whose processing starts is
// kept in a DeliveryTracker holding the last 1000 IDs. A repeated ID is
// answered with HTTP 200 "Duplicate delivery" and no work is done.
//
// Event Handling:
//
//   - ping: 200 "pong"
//   - pull_request opened: 202 "Accepted", then the handler runs in the background
//   - anything else: 200 "Event received"
//
// The handler runs after the response is written, so its failures are only
// logged.
//
// Example usage:
//
//	tracker, _ := webhook.NewDeliveryTracker(webhook.DefaultMaxDeliveries)
//	server := webhook.NewServer("0.0.0.0", 3000, secret, tracker, pipeline)
//	if err := server.Start(ctx); err != nil {
//		log.Fatal(err)
//	}
package webhook
