package process

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/push"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

type fakeQueueStore struct {
	mu           sync.Mutex
	due          []types.QueuedNotification
	claimed      map[string]int64
	statuses     map[string]types.NotificationStatus
	rescheduled  map[string]int64
	attemptsSeen map[string]int
}

func newFakeQueueStore(due ...types.QueuedNotification) *fakeQueueStore {
	return &fakeQueueStore{
		due:          due,
		claimed:      map[string]int64{},
		statuses:     map[string]types.NotificationStatus{},
		rescheduled:  map[string]int64{},
		attemptsSeen: map[string]int{},
	}
}

func (s *fakeQueueStore) ListDue(ctx context.Context, now int64, limit uint64) ([]types.QueuedNotification, error) {
	return s.due, nil
}

func (s *fakeQueueStore) ExtendSchedule(ctx context.Context, ids []string, scheduledFor int64, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.claimed[id] = scheduledFor
	}
	return nil
}

func (s *fakeQueueStore) MarkStatus(ctx context.Context, ids []string, status types.NotificationStatus, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.statuses[id] = status
	}
	return nil
}

func (s *fakeQueueStore) Reschedule(ctx context.Context, id string, scheduledFor int64, attempts int, updatedAt int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rescheduled[id] = scheduledFor
	s.attemptsSeen[id] = attempts
	return nil
}

type fakeDeviceStore struct {
	tokens      []types.DeviceToken
	deactivated []string
}

func (s *fakeDeviceStore) ListActiveByUser(ctx context.Context, userID string) ([]types.DeviceToken, error) {
	return s.tokens, nil
}

func (s *fakeDeviceStore) Deactivate(ctx context.Context, tokens []string) error {
	s.deactivated = append(s.deactivated, tokens...)
	return nil
}

type fakePusher struct {
	result *push.MulticastResult
	err    error

	gotTokens       []string
	gotNotification push.Notification
}

func (f *fakePusher) SendMulticast(ctx context.Context, tokens []string, notification push.Notification) (*push.MulticastResult, error) {
	f.gotTokens = tokens
	f.gotNotification = notification
	return f.result, f.err
}

type noopMetrics struct{}

func (noopMetrics) PushBatchTimer() *prometheus.Timer {
	return prometheus.NewTimer(prometheus.ObserverFunc(func(float64) {}))
}

func (noopMetrics) PushResultInc(status string) {}

func newTestDispatcher(queue *fakeQueueStore, devices *fakeDeviceStore, pusher *fakePusher) *Dispatcher {
	return &Dispatcher{
		queue:   queue,
		devices: devices,
		pusher:  pusher,
		metrics: noopMetrics{},
		cfg: core.NotificationConfig{
			BatchSize:           100,
			MaxAttempts:         3,
			RetryBackoffSeconds: 60,
			CycleSeconds:        10,
		}.WithDefaults(),
		transaction: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return fn(ctx)
		},
	}
}

func queued(id, userID, body string, attempts int) types.QueuedNotification {
	return types.QueuedNotification{
		ID:          id,
		UserID:      userID,
		Type:        types.NOTIFICATION_TYPE_MESSAGE,
		Title:       "alice",
		Body:        body,
		Data:        types.NotificationData{"conversation_id": "c1", "message_id": id},
		Attempts:    attempts,
		MaxAttempts: 3,
		Status:      types.NOTIFICATION_STATUS_PENDING,
	}
}

func TestDispatchOnce_SendsAndMarksSent(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 0))
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1", Platform: types.DEVICE_PLATFORM_IOS}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		SuccessCount: 1,
		Results:      []push.TokenResult{{Token: "tok-1", Success: true}},
	}}

	picked, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, picked)
	assert.Equal(t, []string{"tok-1"}, pusher.gotTokens)
	assert.Equal(t, "hello", pusher.gotNotification.Body)
	assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses["n1"])
	assert.Empty(t, devices.deactivated)
}

func TestDispatchOnce_CollapsesMultiplePerUser(t *testing.T) {
	queue := newFakeQueueStore(
		queued("n1", "u1", "first", 0),
		queued("n2", "u1", "second", 0),
		queued("n3", "u1", "third", 0),
	)
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1"}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		SuccessCount: 1,
		Results:      []push.TokenResult{{Token: "tok-1", Success: true}},
	}}

	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "You have 3 new messages", pusher.gotNotification.Body)
	assert.Equal(t, "n3", pusher.gotNotification.Data["message_id"])
	for _, id := range []string{"n1", "n2", "n3"} {
		assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses[id])
	}
}

func TestDispatchOnce_NoDevicesFailsImmediately(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 0))
	devices := &fakeDeviceStore{}
	pusher := &fakePusher{}

	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.NOTIFICATION_STATUS_FAILED, queue.statuses["n1"])
	assert.Nil(t, pusher.gotTokens)
}

func TestDispatchOnce_DeactivatesInvalidTokens(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 0))
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-dead"}, {Token: "tok-live"}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		SuccessCount: 1,
		FailureCount: 1,
		Results: []push.TokenResult{
			{Token: "tok-dead", Invalid: true, Err: errors.New("NotRegistered")},
			{Token: "tok-live", Success: true},
		},
	}}

	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"tok-dead"}, devices.deactivated)
	assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses["n1"])
}

func TestDispatchOnce_ProviderErrorReschedulesWithBackoff(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 0))
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1"}}}
	pusher := &fakePusher{err: errors.New("fcm unavailable")}

	before := time.Now().Unix()
	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	require.Contains(t, queue.rescheduled, "n1")
	assert.GreaterOrEqual(t, queue.rescheduled["n1"], before+60)
	assert.Equal(t, 1, queue.attemptsSeen["n1"])
	assert.NotContains(t, queue.statuses, "n1")
}

func TestDispatchOnce_ExhaustedAttemptsFail(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 2))
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1"}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		FailureCount: 1,
		Results:      []push.TokenResult{{Token: "tok-1", Err: errors.New("Unavailable")}},
	}}

	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, types.NOTIFICATION_STATUS_FAILED, queue.statuses["n1"])
	assert.Empty(t, queue.rescheduled)
}

func TestDispatchOnce_LeasesRowsBeforePush(t *testing.T) {
	queue := newFakeQueueStore(queued("n1", "u1", "hello", 0))
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1"}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		SuccessCount: 1,
		Results:      []push.TokenResult{{Token: "tok-1", Success: true}},
	}}

	before := time.Now().Unix()
	_, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)

	require.Contains(t, queue.claimed, "n1")
	assert.GreaterOrEqual(t, queue.claimed["n1"], before+60, "the claim must outlast the push call window")
	assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses["n1"])
}

func TestDispatchOnce_DispatchesUsersIndependently(t *testing.T) {
	queue := newFakeQueueStore(
		queued("n1", "u1", "hello", 0),
		queued("n2", "u2", "hola", 0),
	)
	devices := &fakeDeviceStore{tokens: []types.DeviceToken{{Token: "tok-1"}}}
	pusher := &fakePusher{result: &push.MulticastResult{
		SuccessCount: 1,
		Results:      []push.TokenResult{{Token: "tok-1", Success: true}},
	}}

	picked, err := newTestDispatcher(queue, devices, pusher).DispatchOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, picked)
	assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses["n1"])
	assert.Equal(t, types.NOTIFICATION_STATUS_SENT, queue.statuses["n2"])
}

func TestCollapse_SingleKeepsOriginalBody(t *testing.T) {
	n := collapse([]types.QueuedNotification{queued("n1", "u1", "just one", 0)})
	assert.Equal(t, "just one", n.Body)
	assert.Equal(t, "alice", n.Title)
}
