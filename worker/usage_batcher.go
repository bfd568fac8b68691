package worker

import (
	"context"
	"time"

	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/store"
)

type UsageUpdate struct {
	UserId string
	Day    string // YYYY-MM-DD, UTC
	Metric string
	Delta  int
}

type usageKey struct {
	userId string
	day    string
	metric string
}

// UsageBatcher coalesces usage increments in memory and writes them to the
// store on a ticker, when 100 distinct counters are pending, or on shutdown.
type UsageBatcher struct {
	UpdateCh           chan UsageUpdate
	dashboardStore     store.DashboardStore
	logger             logging.Logger
	tickerMilliseconds int
}

func NewUsageBatcher(dashboardStore store.DashboardStore, logger logging.Logger, tickerMilliseconds int) *UsageBatcher {
	return &UsageBatcher{
		UpdateCh:           make(chan UsageUpdate, 1024),
		dashboardStore:     dashboardStore,
		logger:             logger,
		tickerMilliseconds: tickerMilliseconds,
	}
}

// Record queues an update without blocking the request path; when the buffer
// is full the update is dropped and logged.
func (b *UsageBatcher) Record(ctx context.Context, update UsageUpdate) {
	select {
	case b.UpdateCh <- update:
	default:
		b.logger.Warn(ctx, "usage update dropped", "user_id", update.UserId, "metric", update.Metric)
	}
}

func (b *UsageBatcher) Run(shutdownCtx context.Context) {
	ticker := time.NewTicker(time.Duration(b.tickerMilliseconds) * time.Millisecond)
	defer ticker.Stop()

	pending := make(map[usageKey]int)

	flush := func() {
		if len(pending) == 0 {
			return
		}
		batch := pending
		pending = make(map[usageKey]int)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for key, count := range batch {
			if count == 0 {
				continue
			}
			if err := b.dashboardStore.IncrementUsage(ctx, key.userId, key.day, key.metric, count); err != nil {
				b.logger.Error(ctx, "usage flush failed", "user_id", key.userId, "metric", key.metric, "error", err)
			}
		}
	}

	for {
		select {
		case update := <-b.UpdateCh:
			addUpdate(pending, update)

			if len(pending) >= 100 {
				flush()
			}

		case <-ticker.C:
			flush()

		case <-shutdownCtx.Done():
			// Drain whatever is already buffered before the final flush
		drain:
			for {
				select {
				case update := <-b.UpdateCh:
					addUpdate(pending, update)
				default:
					break drain
				}
			}
			flush()
			return
		}
	}
}

func addUpdate(pending map[usageKey]int, update UsageUpdate) {
	if update.UserId == "" || update.Metric == "" {
		return
	}
	pending[usageKey{update.UserId, update.Day, update.Metric}] += update.Delta
}
