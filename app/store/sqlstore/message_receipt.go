package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.MessageReceiptStore = NewMessageReceiptStore(provider)
	})
}

type MessageReceiptStore struct {
	CommonFields
}

func NewMessageReceiptStore(provider SqlProviderAchieve) *MessageReceiptStore {
	repo := &MessageReceiptStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_MESSAGE_RECEIPT)
	repo.SetAllColumns("message_id", "user_id", "delivered_at", "read_at")
	return repo
}

// MarkDelivered keeps the earliest delivery time on conflict, so repeated
// acks from multiple devices never move the timestamp.
func (s *MessageReceiptStore) MarkDelivered(ctx context.Context, messageIDs []string, userID string, deliveredAt int64) error {
	if len(messageIDs) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns("message_id", "user_id", "delivered_at", "read_at")
	for _, messageID := range messageIDs {
		query = query.Values(messageID, userID, deliveredAt, 0)
	}
	query = query.Suffix(`ON CONFLICT (message_id, user_id) DO UPDATE SET
delivered_at = CASE WHEN ` + s.GetTable() + `.delivered_at = 0 THEN EXCLUDED.delivered_at ELSE ` + s.GetTable() + `.delivered_at END`)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

// MarkRead fills both marks. A read message is by definition delivered, so
// the upsert also backfills delivered_at when the delivery ack was lost.
func (s *MessageReceiptStore) MarkRead(ctx context.Context, messageIDs []string, userID string, readAt int64) error {
	if len(messageIDs) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns("message_id", "user_id", "delivered_at", "read_at")
	for _, messageID := range messageIDs {
		query = query.Values(messageID, userID, readAt, readAt)
	}
	query = query.Suffix(`ON CONFLICT (message_id, user_id) DO UPDATE SET
delivered_at = CASE WHEN ` + s.GetTable() + `.delivered_at = 0 THEN EXCLUDED.delivered_at ELSE ` + s.GetTable() + `.delivered_at END,
read_at = CASE WHEN ` + s.GetTable() + `.read_at = 0 THEN EXCLUDED.read_at ELSE ` + s.GetTable() + `.read_at END`)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *MessageReceiptStore) ListByMessages(ctx context.Context, messageIDs []string) ([]*types.MessageReceipt, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"message_id": messageIDs})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []*types.MessageReceipt
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MessageReceiptStore) GetReceipt(ctx context.Context, messageID, userID string) (*types.MessageReceipt, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"message_id": messageID, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.MessageReceipt
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}
