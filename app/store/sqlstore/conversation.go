package sqlstore

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ConversationStore = NewConversationStore(provider)
	})
}

type ConversationStore struct {
	CommonFields
}

func NewConversationStore(provider SqlProviderAchieve) *ConversationStore {
	repo := &ConversationStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONVERSATION)
	repo.SetAllColumns("id", "type", "title", "avatar", "creator", "last_activity", "created_at")
	return repo
}

func (s *ConversationStore) Create(ctx context.Context, data types.Conversation) error {
	if data.CreatedAt == 0 {
		data.CreatedAt = time.Now().Unix()
	}
	if data.LastActivity == 0 {
		data.LastActivity = data.CreatedAt
	}

	query := sq.Insert(s.GetTable()).
		Columns("id", "type", "title", "avatar", "creator", "last_activity", "created_at").
		Values(data.ID, data.Type, data.Title, data.Avatar, data.Creator, data.LastActivity, data.CreatedAt)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ConversationStore) GetConversation(ctx context.Context, id string) (*types.Conversation, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Conversation
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

// GetConversationForUpdate must run inside a transaction. The row lock it
// takes serializes every writer that assigns message sequence numbers.
func (s *ConversationStore) GetConversationForUpdate(ctx context.Context, id string) (*types.Conversation, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"id": id}).
		Suffix("FOR UPDATE")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.Conversation
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ConversationStore) List(ctx context.Context, opts types.ListConversationOptions, page, pageSize uint64) ([]types.Conversation, error) {
	query := sq.Select(s.GetAllColumnsWithPrefix("c")...).
		From(s.GetTable() + " c").
		Join(types.TABLE_CONVERSATION_PARTICIPANT.Name() + " p ON p.conversation_id = c.id").
		Where(sq.Eq{"p.user_id": opts.UserID}).
		OrderBy("c.last_activity DESC")

	if opts.Type != nil {
		query = query.Where(sq.Eq{"c.type": *opts.Type})
	}

	if page != types.NO_PAGING || pageSize != types.NO_PAGING {
		query = query.Limit(pageSize).Offset((page - 1) * pageSize)
	}

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.Conversation
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ConversationStore) UpdateLastActivity(ctx context.Context, id string, lastActivity int64) error {
	query := sq.Update(s.GetTable()).Where(sq.Eq{"id": id}).Set("last_activity", lastActivity)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ConversationStore) Delete(ctx context.Context, id string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"id": id})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
