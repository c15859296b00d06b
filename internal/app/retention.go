package app

import (
	"context"
	"log"
	"time"
)

// RetentionInterval is how often trigger history is pruned.
const RetentionInterval = time.Hour

// Pruner deletes history recorded before a cutoff.
type Pruner interface {
	PruneBefore(cutoff time.Time) (int64, error)
}

// RunRetention prunes history older than retention right away and then every
// interval until ctx is done. A zero retention disables pruning.
func RunRetention(ctx context.Context, p Pruner, retention, interval time.Duration) {
	if retention <= 0 {
		return
	}
	if interval <= 0 {
		interval = RetentionInterval
	}

	prune := func() {
		n, err := p.PruneBefore(time.Now().Add(-retention))
		if err != nil {
			log.Printf("failed to prune trigger history: %v", err)
			return
		}
		if n > 0 {
			log.Printf("pruned %d triggers older than %v", n, retention)
		}
	}

	prune()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			prune()
		}
	}
}
