package process

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/lo"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/push"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/safe"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

const PUSH_CALL_TIMEOUT = 15 * time.Second

type dispatchQueueStore interface {
	ListDue(ctx context.Context, now int64, limit uint64) ([]types.QueuedNotification, error)
	ExtendSchedule(ctx context.Context, ids []string, scheduledFor int64, updatedAt int64) error
	MarkStatus(ctx context.Context, ids []string, status types.NotificationStatus, updatedAt int64) error
	Reschedule(ctx context.Context, id string, scheduledFor int64, attempts int, updatedAt int64) error
}

type dispatchDeviceStore interface {
	ListActiveByUser(ctx context.Context, userID string) ([]types.DeviceToken, error)
	Deactivate(ctx context.Context, tokens []string) error
}

type dispatchMetrics interface {
	PushBatchTimer() *prometheus.Timer
	PushResultInc(status string)
}

// Dispatcher drains the pending notification queue in batches. A cycle first
// claims its due rows in a short transaction by pushing their schedule past
// the provider calls, so parallel instances pick disjoint batches and no row
// lock is held while pushes are in flight. A crash mid-cycle leaves the rows
// pending and they come back after the lease, which keeps delivery
// at-least-once.
type Dispatcher struct {
	queue       dispatchQueueStore
	devices     dispatchDeviceStore
	pusher      push.Pusher
	metrics     dispatchMetrics
	cfg         core.NotificationConfig
	transaction func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewDispatcher(core *core.Core) *Dispatcher {
	return &Dispatcher{
		queue:       core.Store().NotificationQueueStore(),
		devices:     core.Store().DeviceTokenStore(),
		pusher:      core.Pusher(),
		metrics:     core.Metrics(),
		cfg:         core.Cfg().Notification.WithDefaults(),
		transaction: core.Store().Transaction,
	}
}

// DispatchOnce runs a single batch cycle and reports how many notifications
// were picked up.
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	timer := d.metrics.PushBatchTimer()
	defer timer.ObserveDuration()

	now := time.Now()
	var due []types.QueuedNotification
	err := d.transaction(ctx, func(ctx context.Context) error {
		var err error
		due, err = d.queue.ListDue(ctx, now.Unix(), d.cfg.BatchSize)
		if err != nil {
			return err
		}
		if len(due) == 0 {
			return nil
		}
		// lease the rows past the provider calls: parallel instances and the
		// next cycle skip them, and a crash here retries after the backoff
		ids := lo.Map(due, func(n types.QueuedNotification, _ int) string { return n.ID })
		return d.queue.ExtendSchedule(ctx, ids, now.Unix()+d.cfg.RetryBackoffSeconds, now.Unix())
	})
	if err != nil || len(due) == 0 {
		return 0, err
	}

	// per-recipient groups push concurrently so one slow provider call never
	// delays the others in the batch
	byUser := lo.GroupBy(due, func(n types.QueuedNotification) string { return n.UserID })
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for userID, items := range byUser {
		wg.Add(1)
		go func(userID string, items []types.QueuedNotification) {
			defer wg.Done()
			safe.Run(func() {
				if err := d.dispatchForUser(ctx, userID, items, now); err != nil {
					mu.Lock()
					errs = append(errs, err)
					mu.Unlock()
				}
			})
		}(userID, items)
	}
	wg.Wait()

	if len(errs) > 0 {
		return len(due), errs[0]
	}
	return len(due), nil
}

func (d *Dispatcher) dispatchForUser(ctx context.Context, userID string, items []types.QueuedNotification, now time.Time) error {
	ids := lo.Map(items, func(n types.QueuedNotification, _ int) string { return n.ID })

	devices, err := d.devices.ListActiveByUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		d.metrics.PushResultInc("no_device")
		return d.queue.MarkStatus(ctx, ids, types.NOTIFICATION_STATUS_FAILED, now.Unix())
	}
	tokens := lo.Map(devices, func(t types.DeviceToken, _ int) string { return t.Token })

	pushCtx, cancel := context.WithTimeout(ctx, PUSH_CALL_TIMEOUT)
	result, err := d.pusher.SendMulticast(pushCtx, tokens, collapse(items))
	cancel()
	if err != nil {
		slog.Error("push provider call failed",
			slog.String("user_id", userID), slog.String("error", err.Error()))
		d.metrics.PushResultInc("provider_error")
		return d.retryOrFail(ctx, items, now)
	}

	invalid := lo.FilterMap(result.Results, func(r push.TokenResult, _ int) (string, bool) {
		return r.Token, r.Invalid
	})
	if len(invalid) > 0 {
		if err := d.devices.Deactivate(ctx, invalid); err != nil {
			return err
		}
		slog.Info("deactivated invalid device tokens",
			slog.String("user_id", userID), slog.Int("count", len(invalid)))
	}

	if result.SuccessCount > 0 {
		d.metrics.PushResultInc("sent")
		return d.queue.MarkStatus(ctx, ids, types.NOTIFICATION_STATUS_SENT, now.Unix())
	}
	return d.retryOrFail(ctx, items, now)
}

// retryOrFail pushes each row back with backoff until its attempts run
// out.
func (d *Dispatcher) retryOrFail(ctx context.Context, items []types.QueuedNotification, now time.Time) error {
	var exhausted []string
	for _, item := range items {
		attempts := item.Attempts + 1
		if attempts >= item.MaxAttempts {
			exhausted = append(exhausted, item.ID)
			continue
		}
		if err := d.queue.Reschedule(ctx, item.ID, now.Unix()+d.cfg.RetryBackoffSeconds, attempts, now.Unix()); err != nil {
			return err
		}
		d.metrics.PushResultInc("retried")
	}
	if len(exhausted) > 0 {
		d.metrics.PushResultInc("failed")
		return d.queue.MarkStatus(ctx, exhausted, types.NOTIFICATION_STATUS_FAILED, now.Unix())
	}
	return nil
}

// collapse folds several due notifications for one user into a single push.
// The newest entry keeps its payload so tapping the push opens the right
// conversation.
func collapse(items []types.QueuedNotification) push.Notification {
	latest := items[len(items)-1]
	if len(items) == 1 {
		return push.Notification{
			Title: latest.Title,
			Body:  latest.Body,
			Data:  latest.Data,
		}
	}
	return push.Notification{
		Title: latest.Title,
		Body:  fmt.Sprintf("You have %d new messages", len(items)),
		Data:  latest.Data,
	}
}

// RunDispatcher loops batch cycles until the context ends.
func RunDispatcher(ctx context.Context, core *core.Core) {
	dispatcher := NewDispatcher(core)
	interval := time.Duration(dispatcher.cfg.CycleSeconds) * time.Second

	safe.Go(func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				safe.Run(func() {
					if _, err := dispatcher.DispatchOnce(ctx); err != nil {
						slog.Error("notification dispatch cycle failed", slog.String("error", err.Error()))
					}
				})
			}
		}
	})
}
