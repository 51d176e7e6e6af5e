package api

import (
	"net/http"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/ginutil"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/middleware"

	"github.com/gin-gonic/gin"
	otelgin "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

var (
	publicRouter  *gin.Engine
	privateRouter *gin.Engine
)

func init() {
	publicRouter = gin.New()
	privateRouter = gin.New()
	publicRouter.Use(gin.Recovery())
	privateRouter.Use(gin.Recovery())
}

// InitRouter 初始化路由
func InitRouter(services Services) (public http.Handler, private http.Handler) {
	ginutil.SetGinMode()
	appConfigGetter := services.GetAppConfigGetter()
	conf := appConfigGetter.GetConfig()
	appName := conf.AppName

	publicRouter.Use(otelgin.Middleware(appName))
	privateRouter.Use(otelgin.Middleware(appName + "-private"))

	publicRouter.Use(middleware.RequestAuditMiddleware)
	privateRouter.Use(middleware.RequestAuditMiddleware)

	healthHandler := NewHealthHandler(services.GetRedisClient(), services.GetDBClient())
	inboxHandler := NewInboxHandler(services.GetInboxService())
	connectionHandler := NewConnectionHandler(services.GetConnectionService())
	syncHandler := NewSyncHandler(services.GetSyncService())

	// 初始化鉴权服务
	// 优先从配置文件 services.auth_api.base_url 读取，否则从环境变量 AUTH_API_URL 兜底
	if authAPIURL := conf.GetAuthAPIBaseURL(); authAPIURL != "" {
		logger.Infof("using HTTPAuthService with base URL: %s", authAPIURL)
		SetAuthService(NewHTTPAuthService(authAPIURL))
	} else {
		logger.Warnf("auth_api base_url not configured (config or AUTH_API_URL env), user routes will return 500")
	}

	// public
	publicRouter.GET("/health", healthHandler.Health)

	// 收件箱审批
	inboxGroup := publicRouter.Group("/v1/inbox")
	inboxGroup.Use(ReqIDMiddleware(), AuthMiddleware())
	{
		inboxGroup.GET("", inboxHandler.List)
		inboxGroup.GET("/:id", inboxHandler.Get)
		inboxGroup.POST("/:id/approve", inboxHandler.Approve)
		inboxGroup.POST("/:id/reject", inboxHandler.Reject)
	}

	// 邮箱连接管理
	connGroup := publicRouter.Group("/v1/connections")
	connGroup.Use(ReqIDMiddleware(), AuthMiddleware())
	{
		connGroup.POST("", connectionHandler.Connect)
		connGroup.GET("", connectionHandler.List)
		connGroup.DELETE("/:id", connectionHandler.Disconnect)
		connGroup.PUT("/:id/sync-settings", connectionHandler.UpdateSyncSettings)
	}

	// private - 定时任务触发同步，共享密钥鉴权
	cronGroup := privateRouter.Group("/internal/cron")
	cronGroup.Use(CronAuthMiddleware(conf.GetCronSecret))
	{
		cronGroup.POST("/sync", syncHandler.RunSync)
	}
	privateRouter.GET("/health", healthHandler.Health)

	return publicRouter, privateRouter
}
