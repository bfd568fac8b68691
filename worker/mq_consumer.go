package worker

import (
	"context"
	"errors"
	"time"

	"github.com/zlnvch/seodash/cache"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/mq"
	"github.com/zlnvch/seodash/store"
)

// MQConsumer drains the account purge queue. A message is deleted only after
// both the store and the cache have been cleared, so a failed purge is retried
// when the visibility timeout lapses.
type MQConsumer struct {
	purgeQueue     mq.MessageQueue
	dashboardStore store.DashboardStore
	dashboardCache cache.DashboardCache
	logger         logging.Logger
}

func NewMQConsumer(purgeQueue mq.MessageQueue, dashboardStore store.DashboardStore, dashboardCache cache.DashboardCache, logger logging.Logger) *MQConsumer {
	return &MQConsumer{
		purgeQueue:     purgeQueue,
		dashboardStore: dashboardStore,
		dashboardCache: dashboardCache,
		logger:         logger,
	}
}

// Allow up to 5 minutes for the throttled batch deletion of a large account
const visibilityTimeout = 300

func (mqConsumer *MQConsumer) Run(shutdownCtx context.Context) {
	for {
		msg, err := mqConsumer.purgeQueue.Receive(shutdownCtx, visibilityTimeout)

		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return
			}
			mqConsumer.logger.Error(shutdownCtx, "purge queue receive failed", "error", err)
			continue
		}

		if msg == nil {
			if shutdownCtx.Err() != nil {
				return
			}
			continue
		}

		mqConsumer.handle(msg)
	}
}

func (mqConsumer *MQConsumer) handle(msg *mq.Message) {
	// a little less than the queue visibility timeout
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(visibilityTimeout-1)*time.Second)
	defer cancel()

	req, err := mq.DecodePurgeRequest(msg.Body)
	if err != nil {
		// Poison message; drop it rather than redeliver forever
		mqConsumer.logger.Warn(ctx, "dropping malformed purge message", "error", err)
		if err := mqConsumer.purgeQueue.Delete(ctx, msg); err != nil {
			mqConsumer.logger.Error(ctx, "purge message delete failed", "error", err)
		}
		return
	}

	log := mqConsumer.logger.With("user_id", req.UserId)

	if err := mqConsumer.dashboardStore.DeleteUserData(ctx, req.UserId); err != nil {
		log.Error(ctx, "user data purge failed", "error", err)
		return
	}

	if err := mqConsumer.dashboardCache.InvalidateUser(ctx, req.UserId); err != nil {
		log.Error(ctx, "user cache invalidation failed", "error", err)
		return
	}

	if err := mqConsumer.purgeQueue.Delete(ctx, msg); err != nil {
		log.Error(ctx, "purge message delete failed", "error", err)
		return
	}

	log.Info(ctx, "account purged", "requested_at", req.RequestedAt)
}
