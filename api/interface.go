package api

import (
	appconfig "inbox-pilot/pkg/config"
	connsvc "inbox-pilot/service/connection"
	inboxsvc "inbox-pilot/service/inbox"
	"inbox-pilot/service/pipeline"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/config"
	dbpkg "github.com/Plaud-AI/plaud-go-scaffold/pkg/db"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/rdb"
)

// Services API服务依赖的服务
type Services interface {
	GetAppConfigGetter() config.AppConfigGetter[*appconfig.AppConfig]
	GetRedisClient() *rdb.Client
	GetDBClient() *dbpkg.Client
	GetSyncService() *pipeline.SyncService
	GetInboxService() *inboxsvc.InboxService
	GetConnectionService() *connsvc.ConnectionService
}
