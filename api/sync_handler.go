package api

import (
	"errors"
	"net/http"

	"inbox-pilot/service/pipeline"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/common"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SyncHandler 同步触发处理器
type SyncHandler struct {
	svc *pipeline.SyncService
}

// NewSyncHandler 创建 SyncHandler
func NewSyncHandler(svc *pipeline.SyncService) *SyncHandler {
	return &SyncHandler{svc: svc}
}

// RunSync 触发一轮同步，由定时任务经内部端口调用
// POST /internal/cron/sync
func (h *SyncHandler) RunSync(c *gin.Context) {
	report, err := h.svc.RunSync(c.Request.Context())
	if err != nil {
		if errors.Is(err, pipeline.ErrSyncInProgress) {
			c.JSON(http.StatusConflict, common.NewFailResp("sync already in progress", -1))
			return
		}
		logger.ErrorfCtx(c.Request.Context(), "run sync error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewFailResp("run sync failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("report", report))
}
