package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.OfflineQueueStore = NewOfflineQueueStore(provider)
	})
}

type OfflineQueueStore struct {
	CommonFields
}

func NewOfflineQueueStore(provider SqlProviderAchieve) *OfflineQueueStore {
	repo := &OfflineQueueStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_OFFLINE_QUEUE)
	repo.SetAllColumns("id", "recipient_user_id", "conversation_id", "message_id", "enqueued_at")
	return repo
}

func (s *OfflineQueueStore) BatchCreate(ctx context.Context, entries []types.OfflineQueueEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns("recipient_user_id", "conversation_id", "message_id", "enqueued_at")
	for _, entry := range entries {
		if entry.EnqueuedAt == 0 {
			entry.EnqueuedAt = types.NowUnix()
		}
		query = query.Values(entry.RecipientUserID, entry.ConversationID, entry.MessageID, entry.EnqueuedAt)
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

// ListForReplay must run inside a transaction. FOR UPDATE pins the rows until
// the caller has handed them off and deleted them, so two connections of the
// same user cannot both replay the backlog. The scope is one conversation:
// joining room A never drains rows queued for room B.
func (s *OfflineQueueStore) ListForReplay(ctx context.Context, recipientUserID, conversationID string) ([]types.OfflineQueueEntry, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"recipient_user_id": recipientUserID, "conversation_id": conversationID}).
		OrderBy("id ASC").
		Suffix("FOR UPDATE")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.OfflineQueueEntry
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *OfflineQueueStore) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": ids})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *OfflineQueueStore) CountForUser(ctx context.Context, recipientUserID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"recipient_user_id": recipientUserID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var total int64
	if err = s.GetReplica(ctx).Get(&total, queryString, args...); err != nil {
		return 0, err
	}
	return total, nil
}
