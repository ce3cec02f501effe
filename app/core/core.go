package core

import (
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/core/srv"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/app/store/sqlstore"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/push"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/realtime"
	"github.com/fahadkhalid695/whatsapp-chat-app-sub001/pkg/utils"
)

type Core struct {
	cfg CoreConfig
	srv *srv.Srv

	stores     func() *sqlstore.Provider
	cache      *RedisCache
	httpClient *http.Client
	httpEngine *gin.Engine

	registry *realtime.Registry
	typing   *realtime.TypingTable
	pusher   push.Pusher

	metrics *Metrics
}

func MustSetupCore(cfg CoreConfig) *Core {
	{
		var writer io.Writer = os.Stdout
		if cfg.Log.Path != "" {
			writer = &lumberjack.Logger{
				Filename:   cfg.Log.Path,
				MaxSize:    500, // megabytes
				MaxBackups: 3,
				MaxAge:     28, // days
				Compress:   true,
			}
		}
		l := slog.New(slog.NewJSONHandler(writer, &slog.HandlerOptions{
			Level: cfg.Log.SlogLevel(),
		}))
		slog.SetDefault(l)
	}

	utils.SetupIDWorker(1)

	core := &Core{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Second * 3},
		metrics:    NewMetrics("chatapp", "core"),
		httpEngine: gin.New(),
		cache:      NewRedisCache(cfg.Redis),
		registry:   realtime.NewRegistry(),
		typing:     realtime.NewTypingTable(cfg.Realtime.TypingTTL()),
		pusher:     push.NewFCMPusher(cfg.Push),
	}

	setupSqlStore(core)

	core.srv = srv.SetupSrvs(srv.ApplyTower())

	return core
}

func setupSqlStore(core *Core) {
	core.stores = sqlstore.MustSetup(core.cfg.Postgres)
	if err := core.stores().Install(); err != nil {
		panic(err)
	}
}

func (s *Core) Cfg() CoreConfig {
	return s.cfg
}

func (s *Core) HttpEngine() *gin.Engine {
	return s.httpEngine
}

func (s *Core) Metrics() *Metrics {
	return s.metrics
}

func (s *Core) Store() *sqlstore.Provider {
	return s.stores()
}

func (s *Core) Srv() *srv.Srv {
	return s.srv
}

func (s *Core) Cache() *RedisCache {
	return s.cache
}

func (s *Core) Registry() *realtime.Registry {
	return s.registry
}

func (s *Core) Typing() *realtime.TypingTable {
	return s.typing
}

func (s *Core) Pusher() push.Pusher {
	return s.pusher
}

// SetPusher swaps the push provider, used by tests and the dry-run mode.
func (s *Core) SetPusher(p push.Pusher) {
	s.pusher = p
}
