package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"alumni-match/internal/common/errors"
	"alumni-match/internal/common/logger"
	"alumni-match/internal/common/metrics"
)

// Fallback policies applied when the shared store fails mid-request.
const (
	PolicyFallbackLocal = "fallback_local"
	PolicyFailOpen      = "fail_open"
	PolicyFailClosed    = "fail_closed"
)

// Controller is the admission controller fronting both backends. It starts
// degraded-but-available on the local backend and upgrades to the shared
// store once a connectivity probe succeeds. A shared-store failure during a
// request is handled per the configured policy and marks the store unready
// until the probe reconfirms it.
type Controller struct {
	local       *LocalLimiter
	shared      *RedisLimiter
	policy      string
	logger      logger.Logger
	sharedReady atomic.Bool
}

// NewController builds a controller. shared may be nil, leaving the local
// backend authoritative.
func NewController(local *LocalLimiter, shared *RedisLimiter, policy string, log logger.Logger) *Controller {
	return &Controller{
		local:  local,
		shared: shared,
		policy: policy,
		logger: log.WithFields(map[string]interface{}{"component": "admission"}),
	}
}

// StartProbe runs the connectivity probe until ctx is cancelled. While the
// shared store is unready it pings every interval and flips the controller
// over once a ping succeeds.
func (c *Controller) StartProbe(ctx context.Context, interval time.Duration) {
	if c.shared == nil {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		c.probe(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !c.sharedReady.Load() {
					c.probe(ctx)
				}
			}
		}
	}()
}

func (c *Controller) probe(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := c.shared.Ping(pingCtx); err != nil {
		c.logger.Warn("shared rate limit store unreachable, using local admission", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	if c.sharedReady.CompareAndSwap(false, true) {
		c.logger.Info("shared rate limit store connected", nil)
	}
}

// Backend reports which backend currently serves admission checks.
func (c *Controller) Backend() string {
	if c.shared != nil && c.sharedReady.Load() {
		return BackendRedis
	}
	return BackendLocal
}

// Allow runs one admission check. Denials are recorded per backend; shared
// store failures never crash the pipeline.
func (c *Controller) Allow(ctx context.Context, key string) (Decision, error) {
	if c.shared != nil && c.sharedReady.Load() {
		d, err := c.shared.Allow(ctx, key)
		if err == nil {
			if !d.Allowed {
				metrics.RateLimitDenials.WithLabelValues(d.Backend).Inc()
			}
			return d, nil
		}
		c.sharedReady.Store(false)
		metrics.RateLimitFallbacks.WithLabelValues(c.policy).Inc()
		c.logger.Warn("shared rate limit store failed, applying fallback policy", map[string]interface{}{
			"policy": c.policy,
			"error":  err.Error(),
		})

		switch c.policy {
		case PolicyFailOpen:
			return Decision{Allowed: true, Backend: BackendRedis}, nil
		case PolicyFailClosed:
			return Decision{}, errors.NewDependencyUnavailableError("rate limit store", err)
		}
		// PolicyFallbackLocal: fall through to local admission for this request.
	}

	d, err := c.local.Allow(ctx, key)
	if err == nil && !d.Allowed {
		metrics.RateLimitDenials.WithLabelValues(d.Backend).Inc()
	}
	return d, err
}
