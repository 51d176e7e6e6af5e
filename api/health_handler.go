package api

import (
	"net/http"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/common"
	dbpkg "github.com/Plaud-AI/plaud-go-scaffold/pkg/db"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/rdb"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	redisClient *rdb.Client
	dbClient    *dbpkg.Client
}

// NewHealthHandler 创建 HealthHandler
func NewHealthHandler(redisClient *rdb.Client, dbClient *dbpkg.Client) *HealthHandler {
	return &HealthHandler{
		redisClient: redisClient,
		dbClient:    dbClient,
	}
}

type HealthResp struct {
	RedisStatus string `json:"redis"`
	DBStatus    string `json:"db"`
}

// Health health check
func (p *HealthHandler) Health(c *gin.Context) {
	resp := HealthResp{RedisStatus: "ok", DBStatus: "ok"}

	if p.redisClient != nil {
		if err := p.redisClient.GetClient().Ping(c.Request.Context()).Err(); err != nil {
			logger.Errorf("redis ping failed: %v", err)
			resp.RedisStatus = "fail"
		}
	}
	if p.dbClient != nil {
		sqlDB, err := p.dbClient.GetDB().DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			logger.Errorf("db ping failed: %v", err)
			resp.DBStatus = "fail"
		}
	}

	if resp.RedisStatus != "ok" || resp.DBStatus != "ok" {
		c.JSON(http.StatusServiceUnavailable, common.NewFailResp("unhealthy", -1))
		return
	}
	common.JSONSuccessResponse(c, "", resp)
}
