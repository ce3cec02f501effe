package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.ConversationSettingStore = NewConversationSettingStore(provider)
	})
}

type ConversationSettingStore struct {
	CommonFields
}

func NewConversationSettingStore(provider SqlProviderAchieve) *ConversationSettingStore {
	repo := &ConversationSettingStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_CONVERSATION_SETTING)
	repo.SetAllColumns("user_id", "conversation_id", "is_muted", "muted_until", "updated_at")
	return repo
}

func (s *ConversationSettingStore) Get(ctx context.Context, userID, conversationID string) (*types.ConversationNotificationSetting, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "conversation_id": conversationID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.ConversationNotificationSetting
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *ConversationSettingStore) ListForUser(ctx context.Context, userID string) ([]types.ConversationNotificationSetting, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.ConversationNotificationSetting
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *ConversationSettingStore) Upsert(ctx context.Context, data types.ConversationNotificationSetting) error {
	if data.UpdatedAt == 0 {
		data.UpdatedAt = types.NowUnix()
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.UserID, data.ConversationID, data.IsMuted, data.MutedUntil, data.UpdatedAt).
		Suffix(`ON CONFLICT (user_id, conversation_id) DO UPDATE SET
is_muted = EXCLUDED.is_muted,
muted_until = EXCLUDED.muted_until,
updated_at = EXCLUDED.updated_at`)

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
