package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	cachemocks "github.com/zlnvch/seodash/cache/mocks"
	"github.com/zlnvch/seodash/logging"
	"github.com/zlnvch/seodash/models"
	"github.com/zlnvch/seodash/mq"
	mqmocks "github.com/zlnvch/seodash/mq/mocks"
	storemocks "github.com/zlnvch/seodash/store/mocks"
)

func signal(call *mock.Call) chan struct{} {
	done := make(chan struct{})
	call.Run(func(args mock.Arguments) { close(done) })
	return done
}

func waitFor(t *testing.T, done chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(time.Second):
		assert.Fail(t, "timed out waiting for "+what)
	}
}

func TestMQConsumer_PurgesAndDeletes(t *testing.T) {
	queue := new(mqmocks.MockMQ)
	st := new(storemocks.MockStore)
	ca := new(cachemocks.MockCache)
	consumer := NewMQConsumer(queue, st, ca, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msg := &mq.Message{Id: "rh-1", Body: `{"userId":"u1","requestedAt":5}`}
	queue.On("Receive", ctx, int32(visibilityTimeout)).Return(msg, nil).Once()
	queue.On("Receive", ctx, int32(visibilityTimeout)).Return(nil, context.Canceled)

	st.On("DeleteUserData", mock.Anything, "u1").Return(nil)
	ca.On("InvalidateUser", mock.Anything, "u1").Return(nil)
	deleted := signal(queue.On("Delete", mock.Anything, msg).Return(nil))

	go consumer.Run(ctx)
	waitFor(t, deleted, "message delete")

	st.AssertExpectations(t)
	ca.AssertExpectations(t)
}

func TestMQConsumer_KeepsMessageOnStoreFailure(t *testing.T) {
	queue := new(mqmocks.MockMQ)
	st := new(storemocks.MockStore)
	ca := new(cachemocks.MockCache)
	consumer := NewMQConsumer(queue, st, ca, logging.Discard())

	msg := &mq.Message{Id: "rh-1", Body: `{"userId":"u1"}`}
	st.On("DeleteUserData", mock.Anything, "u1").Return(errors.New("db down"))

	consumer.handle(msg)

	ca.AssertNotCalled(t, "InvalidateUser", mock.Anything, mock.Anything)
	queue.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestMQConsumer_DropsMalformedMessage(t *testing.T) {
	queue := new(mqmocks.MockMQ)
	st := new(storemocks.MockStore)
	ca := new(cachemocks.MockCache)
	consumer := NewMQConsumer(queue, st, ca, logging.Discard())

	msg := &mq.Message{Id: "rh-2", Body: `garbage`}
	queue.On("Delete", mock.Anything, msg).Return(nil)

	consumer.handle(msg)

	queue.AssertExpectations(t)
	st.AssertNotCalled(t, "DeleteUserData", mock.Anything, mock.Anything)
}

func TestUsageBatcher_CoalescesOnTick(t *testing.T) {
	st := new(storemocks.MockStore)
	b := NewUsageBatcher(st, logging.Discard(), 20)

	flushed := signal(st.On("IncrementUsage", mock.Anything, "u1", "2026-10-15", models.UsageAuditsRun, 3).Return(nil).Once())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go b.Run(ctx)

	for i := 0; i < 3; i++ {
		b.Record(ctx, UsageUpdate{UserId: "u1", Day: "2026-10-15", Metric: models.UsageAuditsRun, Delta: 1})
	}

	waitFor(t, flushed, "usage flush")
}

func TestUsageBatcher_FlushesOnShutdown(t *testing.T) {
	st := new(storemocks.MockStore)
	b := NewUsageBatcher(st, logging.Discard(), 60_000)

	st.On("IncrementUsage", mock.Anything, "u1", "2026-10-15", models.UsageContentGenerated, 1).Return(nil).Once()

	b.UpdateCh <- UsageUpdate{UserId: "u1", Day: "2026-10-15", Metric: models.UsageContentGenerated, Delta: 1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		b.Run(ctx)
		close(done)
	}()
	waitFor(t, done, "batcher shutdown")

	st.AssertExpectations(t)
}

func TestUsageBatcher_RecordDropsWhenFull(t *testing.T) {
	st := new(storemocks.MockStore)
	b := &UsageBatcher{UpdateCh: make(chan UsageUpdate, 1), dashboardStore: st, logger: logging.Discard(), tickerMilliseconds: 1000}

	b.Record(context.Background(), UsageUpdate{UserId: "u1", Metric: "m", Delta: 1})
	b.Record(context.Background(), UsageUpdate{UserId: "u2", Metric: "m", Delta: 1})

	assert.Len(t, b.UpdateCh, 1)
}
