package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.MessageStore = NewMessageStore(provider)
	})
}

type MessageStore struct {
	CommonFields
}

func NewMessageStore(provider SqlProviderAchieve) *MessageStore {
	repo := &MessageStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_MESSAGE)
	repo.SetAllColumns("id", "conversation_id", "user_id", "msg_type", "content", "reply_to", "sequence", "send_time", "edited_at", "is_deleted")
	return repo
}

func (s *MessageStore) Create(ctx context.Context, data types.Message) error {
	if data.SendTime == 0 {
		data.SendTime = types.NowUnix()
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "conversation_id", "user_id", "msg_type", "content", "reply_to", "sequence", "send_time", "edited_at", "is_deleted").
		Values(data.ID, data.ConversationID, data.UserID, data.MsgType, data.Content, data.ReplyTo, data.Sequence, data.SendTime, data.EditedAt, data.IsDeleted)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *MessageStore) GetMessage(ctx context.Context, id string) (*types.Message, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Message
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *MessageStore) LatestSequence(ctx context.Context, conversationID string) (int64, error) {
	query := sq.Select("COALESCE(MAX(sequence), 0)").From(s.GetTable()).
		Where(sq.Eq{"conversation_id": conversationID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return 0, ErrorSqlBuild(err)
	}

	var seq int64
	if err = s.GetReplica(ctx).Get(&seq, queryString, args...); err != nil {
		return 0, err
	}
	return seq, nil
}

func (s *MessageStore) ListMessages(ctx context.Context, opts types.ListMessageOptions) ([]*types.Message, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"conversation_id": opts.ConversationID}).
		OrderBy("sequence ASC")

	if opts.AfterSequence > 0 {
		query = query.Where(sq.Gt{"sequence": opts.AfterSequence})
	}
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []*types.Message
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MessageStore) ListByIDs(ctx context.Context, ids []string) ([]*types.Message, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"id": ids}).
		OrderBy("sequence ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []*types.Message
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *MessageStore) UpdateContent(ctx context.Context, id, content string, editedAt int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": id}).
		Set("content", content).
		Set("edited_at", editedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *MessageStore) MarkDeleted(ctx context.Context, id string, deletedAt int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": id}).
		Set("is_deleted", types.MESSAGE_IS_DELETED).
		Set("edited_at", deletedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *MessageStore) Total(ctx context.Context, conversationID string) (int64, error) {
	query := sq.Select("COUNT(*)").From(s.GetTable()).Where(sq.Eq{"conversation_id": conversationID})

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
