package sqlstore

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

func init() {
	register.RegisterFunc[*Provider](RegisterKey{}, func(provider *Provider) {
		provider.stores.DeviceTokenStore = NewDeviceTokenStore(provider)
	})
}

type DeviceTokenStore struct {
	CommonFields
}

func NewDeviceTokenStore(provider SqlProviderAchieve) *DeviceTokenStore {
	repo := &DeviceTokenStore{}
	repo.SetProvider(provider)
	repo.SetTable(types.TABLE_DEVICE_TOKEN)
	repo.SetAllColumns("id", "user_id", "token", "platform", "is_active", "created_at", "updated_at")
	return repo
}

// Register upserts on the token value. The same device re-registering under a
// new account is rebound and reactivated in place.
func (s *DeviceTokenStore) Register(ctx context.Context, data types.DeviceToken) error {
	now := types.NowUnix()
	if data.CreatedAt == 0 {
		data.CreatedAt = now
	}
	if data.UpdatedAt == 0 {
		data.UpdatedAt = now
	}

	query := sq.Insert(s.GetTable()).
		Columns("user_id", "token", "platform", "is_active", "created_at", "updated_at").
		Values(data.UserID, data.Token, data.Platform, types.DEVICE_TOKEN_ACTIVE, data.CreatedAt, data.UpdatedAt).
		Suffix(`ON CONFLICT (token) DO UPDATE SET
user_id = EXCLUDED.user_id,
platform = EXCLUDED.platform,
is_active = EXCLUDED.is_active,
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

func (s *DeviceTokenStore) ListActiveByUser(ctx context.Context, userID string) ([]types.DeviceToken, error) {
	query := sq.Select(s.GetAllColumns()...).From(s.GetTable()).
		Where(sq.Eq{"user_id": userID, "is_active": types.DEVICE_TOKEN_ACTIVE})

	queryString, args, err := query.ToSql()
	if err != nil {
		return nil, ErrorSqlBuild(err)
	}

	var list []types.DeviceToken
	if err = s.GetReplica(ctx).Select(&list, queryString, args...); err != nil {
		return nil, err
	}
	return list, nil
}

func (s *DeviceTokenStore) Deactivate(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	query := sq.Update(s.GetTable()).Where(sq.Eq{"token": tokens}).
		Set("is_active", types.DEVICE_TOKEN_INACTIVE).
		Set("updated_at", types.NowUnix())

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}

func (s *DeviceTokenStore) DeleteByUser(ctx context.Context, userID string) error {
	query := sq.Delete(s.GetTable()).Where(sq.Eq{"user_id": userID})

	queryString, args, err := query.ToSql()
	if err != nil {
		return ErrorSqlBuild(err)
	}

	if _, err = s.GetMaster(ctx).Exec(queryString, args...); err != nil {
		return err
	}
	return nil
}
