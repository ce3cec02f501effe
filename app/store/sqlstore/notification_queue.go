package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.NotificationQueueStore = NewNotificationQueueStore(provider)
	})
}

type NotificationQueueStore struct {
	CommonFields
}

func NewNotificationQueueStore(provider SqlProviderAchieve) *NotificationQueueStore {
	repo := &NotificationQueueStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_NOTIFICATION_QUEUE)
	repo.SetAllColumns("id", "user_id", "type", "title", "body", "data", "scheduled_for", "attempts", "max_attempts", "status", "created_at", "updated_at")
	return repo
}

func (s *NotificationQueueStore) Create(ctx context.Context, data types.QueuedNotification) error {
	now := types.NowUnix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}
	if data.ScheduledFor == 0 {
		data.ScheduledFor = now
	}
	if data.Status == "" {
		data.Status = types.NOTIFICATION_STATUS_PENDING
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "user_id", "type", "title", "body", "data", "scheduled_for", "attempts", "max_attempts", "status", "created_at", "updated_at").
		Values(data.ID, data.UserID, data.Type, data.Title, data.Body, data.Data.String(), data.ScheduledFor, data.Attempts, data.MaxAttempts, data.Status, data.CreatedAt, data.UpdatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *NotificationQueueStore) GetNotification(ctx context.Context, id string) (*types.QueuedNotification, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.QueuedNotification
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// ListDue should run inside a transaction so the SKIP LOCKED row locks hold
// until the caller has claimed the batch.
func (s *NotificationQueueStore) ListDue(ctx context.Context, now int64, limit uint64) ([]types.QueuedNotification, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"status": types.NOTIFICATION_STATUS_PENDING}).
		Where(sq.LtOrEq{"scheduled_for": now}).
		OrderBy("scheduled_for ASC").
		Limit(limit).
		Suffix("FOR UPDATE SKIP LOCKED")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.QueuedNotification
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

// ExtendSchedule pushes scheduled_for forward without touching attempts. The
// dispatcher uses it as a lease over rows whose pushes are in flight.
func (s *NotificationQueueStore) ExtendSchedule(ctx context.Context, ids []string, scheduledFor int64, updatedAt int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": ids}).
		Set("scheduled_for", scheduledFor).
		Set("updated_at", updatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *NotificationQueueStore) MarkStatus(ctx context.Context, ids []string, status types.NotificationStatus, updatedAt int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": ids}).
		Set("status", status).
		Set("updated_at", updatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *NotificationQueueStore) Reschedule(ctx context.Context, id string, scheduledFor int64, attempts int, updatedAt int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": id}).
		Set("scheduled_for", scheduledFor).
		Set("attempts", attempts).
		Set("status", types.NOTIFICATION_STATUS_PENDING).
		Set("updated_at", updatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

// CancelPendingForUser drops queued pushes that became stale because the user
// read the conversation before the dispatcher got to them.
func (s *NotificationQueueStore) CancelPendingForUser(ctx context.Context, userID string, conversationID string) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "status": types.NOTIFICATION_STATUS_PENDING}).
		Set("status", types.NOTIFICATION_STATUS_CANCELLED).
		Set("updated_at", types.NowUnix())

	if conversationID != "" {
		query = query.Where(sq.Expr("data->>'conversation_id' = ?", conversationID))
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *NotificationQueueStore) DeleteBefore(ctx context.Context, statuses []types.NotificationStatus, before int64) (int64, error) {
	query := sq.Delete(s.GetTable()).
		Where(sq.Eq{"status": statuses}).
		Where(sq.Lt{"updated_at": before})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	res, err := s.GetMaster(ctx).Exec(queryString, args...)
	if err != nil {
		return 0, err
	}
	affected, _ := res.RowsAffected()
	return affected, nil
}

func (s *NotificationQueueStore) ListByUser(ctx context.Context, userID string, page, pageSize uint64) ([]types.QueuedNotification, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("created_at DESC")

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.QueuedNotification
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}
