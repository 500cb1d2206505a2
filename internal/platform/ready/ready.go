// Package ready implements bounded readiness polling for backing services.
package ready

import (
	"context"
	"fmt"
	"time"

	"github.com/altegra/catalog-backend/internal/platform/logger"
)

// Probe reports nil once the dependency is reachable.
type Probe func(ctx context.Context) error

// Wait polls probe every interval until it succeeds, the timeout elapses or
// ctx is cancelled. The first probe runs immediately.
func Wait(ctx context.Context, log *logger.Logger, name string, probe Probe, timeout, interval time.Duration) error {
	if probe == nil {
		return fmt.Errorf("ready: probe required for %s", name)
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastErr error
	for {
		if err := probe(waitCtx); err == nil {
			log.Info("dependency ready", "name", name)
			return nil
		} else {
			lastErr = err
		}

		log.Debug("waiting for dependency", "name", name, "error", lastErr)
		select {
		case <-waitCtx.Done():
			return fmt.Errorf("ready: %s not reachable within %s: %w", name, timeout, lastErr)
		case <-time.After(interval):
		}
	}
}
