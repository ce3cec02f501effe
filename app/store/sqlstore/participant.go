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
		provider.stores.ConversationParticipantStore = NewConversationParticipantStore(provider)
	})
}

type ConversationParticipantStore struct {
	CommonFields
}

func NewConversationParticipantStore(provider SqlProviderAchieve) *ConversationParticipantStore {
	repo := &ConversationParticipantStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONVERSATION_PARTICIPANT)
	repo.SetAllColumns("conversation_id", "user_id", "role", "joined_at")
	return repo
}

func (s *ConversationParticipantStore) Create(ctx context.Context, data types.ConversationParticipant) error {
	return s.BatchCreate(ctx, []types.ConversationParticipant{data})
}

func (s *ConversationParticipantStore) BatchCreate(ctx context.Context, datas []types.ConversationParticipant) error {
	if len(datas) == 0 {
		return nil
	}

	query := sq.Insert(s.GetTable()).Columns("conversation_id", "user_id", "role", "joined_at")
	for _, data := range datas {
		if data.JoinedAt == 0 {
			data.JoinedAt = time.Now().Unix()
		}
		query = query.Values(data.ConversationID, data.UserID, data.Role, data.JoinedAt)
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

func (s *ConversationParticipantStore) GetParticipant(ctx context.Context, conversationID, userID string) (*types.ConversationParticipant, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"conversation_id": conversationID, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ConversationParticipant
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ConversationParticipantStore) ListParticipants(ctx context.Context, conversationID string) ([]types.ConversationParticipant, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"conversation_id": conversationID}).
		OrderBy("joined_at ASC")

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ConversationParticipant
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ConversationParticipantStore) ListUserConversationIDs(ctx context.Context, userID string) ([]string, error) {
	query := sq.Select("conversation_id").From(s.GetTable()).Where(sq.Eq{"user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var ids []string
	if err = s.GetReplica(ctx).Select(&ids, queryString, args...); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *ConversationParticipantStore) UpdateRole(ctx context.Context, conversationID, userID string, role types.ParticipantRole) error {
	query := sq.Update(s.GetTable()).
		Where(sq.Eq{"conversation_id": conversationID, "user_id": userID}).
		Set("role", role)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *ConversationParticipantStore) Delete(ctx context.Context, conversationID, userID string) error {
	query := sq.Delete(s.GetTable()).
		Where(sq.Eq{"conversation_id": conversationID, "user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
