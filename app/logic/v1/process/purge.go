package process

import (
	"context"
	"log/slog"
	"time"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/register"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/types"
)

type PurgeProcess struct {
	core *core.Core
}

func NewPurgeProcess(core *core.Core) *PurgeProcess {
	return &PurgeProcess{core: core}
}

// PurgeNotifications removes settled queue rows older than the retention
// window. Pending rows are never touched.
func (p *PurgeProcess) PurgeNotifications(ctx context.Context) (int64, error) {
	retention := p.core.Cfg().Notification.WithDefaults().RetentionDays
	before := time.Now().AddDate(0, 0, -retention).Unix()

	return p.core.Store().NotificationQueueStore().DeleteBefore(ctx, []types.NotificationStatus{
		types.NOTIFICATION_STATUS_SENT,
		types.NOTIFICATION_STATUS_FAILED,
		types.NOTIFICATION_STATUS_CANCELLED,
	}, before)
}

func (p *PurgeProcess) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return p.core.Store().AccessTokenStore().DeleteExpired(ctx, time.Now().Unix())
}

func init() {
	register.RegisterFunc(ProcessKey{}, func(provider *Process) {
		provider.Cron().AddFunc("30 4 * * *", func() {
			deleted, err := NewPurgeProcess(provider.Core()).PurgeNotifications(context.Background())
			if err != nil {
				slog.Error("Failed to purge settled notifications", slog.String("error", err.Error()))
			} else {
				slog.Info("Purged settled notifications", slog.Int64("deleted", deleted))
			}
		})

		provider.Cron().AddFunc("0 5 * * *", func() {
			if _, err := NewPurgeProcess(provider.Core()).PurgeExpiredTokens(context.Background()); err != nil {
				slog.Error("Failed to purge expired access tokens", slog.String("error", err.Error()))
			}
		})
	})
}
