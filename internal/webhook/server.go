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

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/mikelane/prscribe/internal/metrics"
)

// GitHub caps webhook payloads at 25 MB.
const maxPayloadBytes = 25 << 20

// ErrSecretNotConfigured is logged when a signed request arrives but no
// webhook secret is configured.
var ErrSecretNotConfigured = errors.New("webhook secret is not configured")

// Server handles GitHub webhook requests
type Server struct {
	addr            string
	port            int
	path            string
	webhookSecret   string
	deliveries      *DeliveryTracker
	handler         PullRequestHandler
	rateLimiter     *RateLimiter
	shutdownTimeout time.Duration
	server          *http.Server

	inflight sync.WaitGroup
}

// Option configures optional Server behavior
type Option func(*Server)

// WithPath mounts the webhook handler at path instead of /webhook.
func WithPath(path string) Option {
	return func(s *Server) { s.path = path }
}

// WithRateLimiter limits accepted pull request events per repository.
func WithRateLimiter(rl *RateLimiter) Option {
	return func(s *Server) { s.rateLimiter = rl }
}

// WithShutdownTimeout bounds how long Start waits for in-flight work on shutdown.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *Server) { s.shutdownTimeout = d }
}

// NewServer creates a new webhook server. Accepted pull request events are
// handed to handler on a background goroutine.
func NewServer(addr string, port int, webhookSecret string, deliveries *DeliveryTracker, handler PullRequestHandler, opts ...Option) *Server {
	s := &Server{
		addr:            addr,
		port:            port,
		path:            "/webhook",
		webhookSecret:   webhookSecret,
		deliveries:      deliveries,
		handler:         handler,
		shutdownTimeout: 30 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebhook)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", metrics.Handler())
	return mux
}

// Start starts the webhook server and blocks until ctx is canceled or the
// listener fails.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.addr, s.port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Log.Info("Starting webhook server", "addr", s.server.Addr, "path", s.path)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting requests and waits for in-flight pull request
// work until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		log.Log.Info("Shutting down webhook server")
		if err := s.server.Shutdown(ctx); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("abandoned in-flight pull request work: %w", ctx.Err())
	}
}

// Wait blocks until every dispatched pull request handler has returned.
func (s *Server) Wait() {
	s.inflight.Wait()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// handleWebhook authenticates, deduplicates and classifies a GitHub delivery.
func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.Header.Get(HeaderEvent)
	deliveryID := r.Header.Get(HeaderDelivery)
	logger := log.FromContext(r.Context()).WithValues("event", eventType, "delivery", deliveryID)

	signature := r.Header.Get(HeaderSignature)
	if signature == "" {
		logger.Info("Webhook rejected", "reason", "missing signature")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeMissingSignature).Inc()
		http.Error(w, "No signature found", http.StatusUnauthorized)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		logger.Error(err, "Failed to read request body")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeBadRequest).Inc()
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if s.webhookSecret == "" {
		logger.Error(ErrSecretNotConfigured, "Webhook secret is not configured")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeMisconfigured).Inc()
		http.Error(w, "Webhook secret is not configured", http.StatusInternalServerError)
		return
	}

	if !ValidateSignature(payload, signature, s.webhookSecret) {
		logger.Info("Webhook rejected", "reason", "invalid signature")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeInvalidSignature).Inc()
		http.Error(w, "Invalid signature", http.StatusUnauthorized)
		return
	}

	if deliveryID != "" && s.deliveries.Seen(deliveryID) {
		logger.Info("Skipping duplicate delivery")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeDuplicate).Inc()
		writeText(w, http.StatusOK, "Duplicate delivery")
		return
	}

	switch eventType {
	case EventPing:
		metrics.Deliveries.WithLabelValues(metrics.OutcomePing).Inc()
		writeText(w, http.StatusOK, "pong")
		return

	case EventPullRequest:
		var event PullRequestEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			logger.Error(err, "Failed to parse JSON payload")
			metrics.Deliveries.WithLabelValues(metrics.OutcomeBadRequest).Inc()
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		if event.Action == "opened" {
			s.acceptPullRequest(w, logger, deliveryID, &event)
			return
		}
		logger.V(1).Info("Ignoring PR action", "action", event.Action)

	default:
		logger.V(1).Info("Ignoring event")
	}

	metrics.Deliveries.WithLabelValues(metrics.OutcomeIgnored).Inc()
	writeText(w, http.StatusOK, "Event received")
}

// acceptPullRequest answers 202 and then starts the pull request handler in
// the background. Nothing the handler does can reach the response.
func (s *Server) acceptPullRequest(w http.ResponseWriter, logger logr.Logger, deliveryID string, event *PullRequestEvent) {
	repo := event.Repository.Slug()
	logger = logger.WithValues("repository", repo, "pr", event.PullRequest.Number)

	if s.rateLimiter != nil && !s.rateLimiter.Allow(repo) {
		logger.Info("Rate limit exceeded")
		metrics.Deliveries.WithLabelValues(metrics.OutcomeRateLimited).Inc()
		http.Error(w, "Too many requests", http.StatusTooManyRequests)
		return
	}

	metrics.Deliveries.WithLabelValues(metrics.OutcomeAccepted).Inc()
	writeText(w, http.StatusAccepted, "Accepted")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	if deliveryID != "" && !s.deliveries.Remember(deliveryID) {
		logger.Info("Delivery was remembered by a concurrent request, skipping")
		return
	}

	s.dispatch(logger, event)
}

func (s *Server) dispatch(logger logr.Logger, event *PullRequestEvent) {
	ctx := log.IntoContext(context.Background(), logger)

	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error(fmt.Errorf("panic: %v", r), "Pull request handler panicked")
			}
		}()

		if err := s.handler.HandlePullRequestOpened(ctx, event); err != nil {
			logger.Error(err, "Failed to handle pull request event")
		}
	}()
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	w.Write([]byte(body))
}
