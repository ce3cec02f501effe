package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.NotificationPreferencesStore = NewNotificationPreferencesStore(provider)
	})
}

type NotificationPreferencesStore struct {
	CommonFields
}

func NewNotificationPreferencesStore(provider SqlProviderAchieve) *NotificationPreferencesStore {
	repo := &NotificationPreferencesStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_NOTIFICATION_PREFERENCES)
	repo.SetAllColumns("user_id", "push_enabled", "message_notifications", "group_notifications", "mention_notifications",
		"quiet_hours_enabled", "quiet_hours_start", "quiet_hours_end", "timezone", "updated_at")
	return repo
}

func (s *NotificationPreferencesStore) Get(ctx context.Context, userID string) (*types.NotificationPreferences, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).Where(sq.Eq{"user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var res types.NotificationPreferences
	if err = s.GetReplica(ctx).Get(&res, queryString, args...); err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *NotificationPreferencesStore) Upsert(ctx context.Context, data types.NotificationPreferences) error {
	if data.UpdatedAt == 0 {
		data.UpdatedAt = types.NowUnix()
	}

	query := sq.Insert(s.GetTable()).
		Columns(s.GetAllColumns()...).
		Values(data.UserID, data.PushEnabled, data.MessageNotifications, data.GroupNotifications, data.MentionNotifications,
			data.QuietHoursEnabled, data.QuietHoursStart, data.QuietHoursEnd, data.Timezone, data.UpdatedAt).
		Suffix(`ON CONFLICT (user_id) DO UPDATE SET
push_enabled = EXCLUDED.push_enabled,
message_notifications = EXCLUDED.message_notifications,
group_notifications = EXCLUDED.group_notifications,
mention_notifications = EXCLUDED.mention_notifications,
quiet_hours_enabled = EXCLUDED.quiet_hours_enabled,
quiet_hours_start = EXCLUDED.quiet_hours_start,
quiet_hours_end = EXCLUDED.quiet_hours_end,
timezone = EXCLUDED.timezone,
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
