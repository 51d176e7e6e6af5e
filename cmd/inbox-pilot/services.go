package main

import (
	"context"

	"inbox-pilot/dao"
	appconfig "inbox-pilot/pkg/config"
	"inbox-pilot/service/completion"
	connsvc "inbox-pilot/service/connection"
	"inbox-pilot/service/credential"
	inboxsvc "inbox-pilot/service/inbox"
	"inbox-pilot/service/mailsource"
	"inbox-pilot/service/pipeline"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/app"
)

type Services struct {
	*app.Services[*appconfig.AppConfig]
	SyncService       *pipeline.SyncService
	InboxService      *inboxsvc.InboxService
	ConnectionService *connsvc.ConnectionService
}

func (p *Services) GetSyncService() *pipeline.SyncService {
	return p.SyncService
}

func (p *Services) GetInboxService() *inboxsvc.InboxService {
	return p.InboxService
}

func (p *Services) GetConnectionService() *connsvc.ConnectionService {
	return p.ConnectionService
}

// BuildBizServices 构建业务服务
func BuildBizServices(ctx context.Context, services *app.Services[*appconfig.AppConfig]) (*Services, error) {
	conf := services.AppConfigGetter.GetConfig()
	db := services.DBClient.GetDB()

	generator, err := services.Snowflake.Create()
	if err != nil {
		return nil, err
	}

	connDao := dao.NewConnectionDao(db)
	emailDao := dao.NewEmailDao(db)
	itemDao := dao.NewInboxItemDao(db)

	credentialService := credential.New(conf.GetGoogleConfig())
	completionClient := completion.NewClient(conf.GetOpenAIConfig())
	mailSource := mailsource.NewGmailSource(conf.GetGmailBaseURL())

	syncService := pipeline.NewSyncService(
		connDao, emailDao, itemDao,
		credentialService, mailSource,
		pipeline.NewTriage(completionClient),
		pipeline.NewPreparer(completionClient),
		services.RedisClient,
		generator,
		conf.GetSyncLockTTL(),
	)
	inboxService := inboxsvc.NewInboxService(itemDao, connDao, credentialService, mailSource)
	connectionService := connsvc.NewConnectionService(connDao, credentialService, generator)

	return &Services{
		Services:          services,
		SyncService:       syncService,
		InboxService:      inboxService,
		ConnectionService: connectionService,
	}, nil
}
