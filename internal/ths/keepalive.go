package ths

import (
	"context"
	"time"
)

// Querier is the part of Client the keepalive loop uses.
type Querier interface {
	QueryData(category QueryCategory) ([]byte, error)
}

// RunKeepalive queries holdings every interval until ctx is done, so the
// broker gateway does not drop an idle session. Failures are logged and the
// loop continues; it never re-logs on.
func RunKeepalive(ctx context.Context, q Querier, interval time.Duration, logger Logger) {
	if interval <= 0 {
		return
	}
	if logger == nil {
		logger = noopLogger{}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := q.QueryData(QueryHoldings); err != nil {
				logger.Warn("keepalive query failed", "error", err)
			}
		}
	}
}
