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

// Package metrics holds the Prometheus collectors exported by prscribe.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "prscribe"

// Delivery outcomes recorded by the webhook server
const (
	OutcomeMissingSignature = "rejected_missing_signature"
	OutcomeInvalidSignature = "rejected_invalid_signature"
	OutcomeMisconfigured    = "misconfigured"
	OutcomeBadRequest       = "bad_request"
	OutcomeDuplicate        = "duplicate"
	OutcomePing             = "ping"
	OutcomeAccepted         = "accepted"
	OutcomeRateLimited      = "rate_limited"
	OutcomeIgnored          = "ignored"
)

// Pipeline results
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	// Registry is the registry served on /metrics.
	Registry = prometheus.NewRegistry()

	// Deliveries counts webhook deliveries by admission outcome.
	Deliveries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "deliveries_total",
		Help:      "Webhook deliveries by admission outcome.",
	}, []string{"outcome"})

	// PipelineRuns counts completed pull request pipelines by result.
	PipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Pull request description pipelines by result.",
	}, []string{"result"})

	// SummaryFiles counts file blocks written into summaries.
	SummaryFiles = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "files_total",
		Help:      "Changed files included in PR summaries.",
	})

	// TruncatedPatches counts patches shortened to head and tail.
	TruncatedPatches = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "summary",
		Name:      "truncated_patches_total",
		Help:      "Patches truncated to their head and tail.",
	})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		Deliveries,
		PipelineRuns,
		SummaryFiles,
		TruncatedPatches,
	)
}

// Handler serves the metrics in Registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
