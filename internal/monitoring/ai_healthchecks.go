package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

const (
	HEALTHCHECK_TIMER = 15 * time.Second
	// Remote backends bill every probe.
	REMOTE_HEALTHCHECK_TIMER = 15 * time.Minute
)

// HealthCheckInterval picks the probe interval. A configured interval wins.
func HealthCheckInterval(configured time.Duration, remote bool) time.Duration {
	switch {
	case configured > 0:
		return configured
	case remote:
		return REMOTE_HEALTHCHECK_TIMER
	default:
		return HEALTHCHECK_TIMER
	}
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorClassifierHealth probes the classifier right away and then on every
// tick until ctx is done.
func MonitorClassifierHealth(ctx context.Context, checker HealthChecker, healthy *atomic.Bool, interval time.Duration) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe := func() {
		isHealthy := checker.HealthCheck(ctx)
		if healthy.Swap(isHealthy) != isHealthy || !isHealthy {
			if isHealthy {
				slog.Info("[HealthCheck] Classifier is healthy")
			} else {
				slog.Warn("[HealthCheck] Classifier is unhealthy")
			}
		}
	}

	probe()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe()
		}
	}
}
