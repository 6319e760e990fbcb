// Package webhooks delivers platform events to external workflow
// automation endpoints.
package webhooks

import (
	"context"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/mindhouselabs/miod/internal/config"
)

const defaultTimeout = 10 * time.Second

// Event is one outbound webhook payload.
type Event struct {
	Name       string            `json:"event"`
	OccurredAt time.Time         `json:"occurred_at"`
	Fields     map[string]string `json:"fields,omitempty"`
}

// Dispatcher posts events to configured endpoints. Delivery is
// fire-and-forget: failures are logged and swallowed, and events whose
// name has no endpoint are dropped.
type Dispatcher struct {
	mu        sync.RWMutex
	endpoints map[string]string

	http    *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds a dispatcher from config.
func New(cfg config.WebhooksConfig, logger *zap.Logger) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limit := rate.Limit(cfg.RatePerSecond)
	if cfg.RatePerSecond <= 0 {
		limit = rate.Inf
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}

	endpoints := make(map[string]string, len(cfg.Endpoints))
	for name, url := range cfg.Endpoints {
		endpoints[name] = url
	}

	return &Dispatcher{
		endpoints: endpoints,
		http:      resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		limiter:   rate.NewLimiter(limit, burst),
		logger:    logger,
	}
}

// SetEndpoints replaces the endpoint map. Used by the config watcher.
func (d *Dispatcher) SetEndpoints(endpoints map[string]string) {
	copied := make(map[string]string, len(endpoints))
	for name, url := range endpoints {
		copied[name] = url
	}

	d.mu.Lock()
	d.endpoints = copied
	d.mu.Unlock()

	d.logger.Info("webhook endpoints reloaded", zap.Int("count", len(copied)))
}

// Fire delivers one event. It blocks on the rate limiter, then posts.
// Failures are logged, never returned.
func (d *Dispatcher) Fire(ctx context.Context, event Event) {
	d.mu.RLock()
	url, ok := d.endpoints[event.Name]
	d.mu.RUnlock()
	if !ok {
		d.logger.Debug("webhook event has no endpoint, dropped", zap.String("event", event.Name))
		return
	}

	if err := d.limiter.Wait(ctx); err != nil {
		d.logger.Warn("webhook rate wait aborted",
			zap.String("event", event.Name),
			zap.Error(err))
		return
	}

	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	resp, err := d.http.R().
		SetContext(ctx).
		SetBody(event).
		Post(url)
	if err != nil {
		d.logger.Warn("webhook delivery failed",
			zap.String("event", event.Name),
			zap.Error(err))
		return
	}
	if resp.IsError() {
		d.logger.Warn("webhook endpoint rejected event",
			zap.String("event", event.Name),
			zap.Int("status", resp.StatusCode()))
		return
	}

	d.logger.Debug("webhook delivered",
		zap.String("event", event.Name),
		zap.Int("status", resp.StatusCode()))
}
