package api

import (
	"errors"
	"net/http"
	"strconv"

	"inbox-pilot/service/inbox"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/common"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"

	"github.com/gin-gonic/gin"
)

// 列表分页上限，防止把任意大的 limit 透传给 SQL
const (
	defaultListLimit = 50
	maxListLimit     = 200
)

// InboxHandler 收件箱处理器
type InboxHandler struct {
	svc *inbox.InboxService
}

// parseListLimit 解析 limit 查询参数：空值取默认，非正数拒绝，超上限截断
func parseListLimit(raw string) (int, bool) {
	if raw == "" {
		return defaultListLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, false
	}
	if n > maxListLimit {
		n = maxListLimit
	}
	return n, true
}

// NewInboxHandler 创建 InboxHandler
func NewInboxHandler(svc *inbox.InboxService) *InboxHandler {
	return &InboxHandler{svc: svc}
}

// List 查询收件箱条目
// GET /v1/inbox?status=pending&limit=50
func (h *InboxHandler) List(c *gin.Context) {
	userID := GetUserID(c)
	status := c.Query("status")

	limit, ok := parseListLimit(c.Query("limit"))
	if !ok {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid limit", -1))
		return
	}

	items, err := h.svc.List(c.Request.Context(), userID, status, limit)
	if err != nil {
		logger.ErrorfCtx(c.Request.Context(), "list inbox items error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewFailResp("list inbox items failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("items", items))
}

// Get 查询单个条目
// GET /v1/inbox/:id
func (h *InboxHandler) Get(c *gin.Context) {
	userID := GetUserID(c)
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid item id", -1))
		return
	}

	item, err := h.svc.Get(c.Request.Context(), userID, itemID)
	if err != nil {
		if errors.Is(err, inbox.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, common.NewFailResp("inbox item not found", -1))
			return
		}
		logger.ErrorfCtx(c.Request.Context(), "get inbox item error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewFailResp("get inbox item failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("item", item))
}

// Approve 审批通过
// POST /v1/inbox/:id/approve
func (h *InboxHandler) Approve(c *gin.Context) {
	userID := GetUserID(c)
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid item id", -1))
		return
	}

	result, err := h.svc.Approve(c.Request.Context(), userID, itemID)
	if err != nil {
		logger.ErrorfCtx(c.Request.Context(), "approve inbox item error: %v", err)

		// 根据错误类型返回不同的状态码
		switch {
		case errors.Is(err, inbox.ErrItemNotFound):
			c.JSON(http.StatusNotFound, common.NewFailResp("inbox item not found", -1))
			return
		case errors.Is(err, inbox.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, common.NewFailResp("inbox item already processed", -1))
			return
		case errors.Is(err, inbox.ErrConnectionMissing):
			c.JSON(http.StatusPreconditionFailed, common.NewFailResp("no active connection, reconnect and retry", -1))
			return
		case errors.Is(err, inbox.ErrSendFailed):
			c.JSON(http.StatusBadGateway, common.NewFailResp("send reply failed, item remains pending", -1))
			return
		default:
			c.JSON(http.StatusInternalServerError, common.NewFailResp("approve failed", -1))
			return
		}
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("result", result))
}

// Reject 驳回
// POST /v1/inbox/:id/reject
func (h *InboxHandler) Reject(c *gin.Context) {
	userID := GetUserID(c)
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid item id", -1))
		return
	}

	result, err := h.svc.Reject(c.Request.Context(), userID, itemID)
	if err != nil {
		logger.ErrorfCtx(c.Request.Context(), "reject inbox item error: %v", err)

		switch {
		case errors.Is(err, inbox.ErrItemNotFound):
			c.JSON(http.StatusNotFound, common.NewFailResp("inbox item not found", -1))
			return
		case errors.Is(err, inbox.ErrAlreadyProcessed):
			c.JSON(http.StatusConflict, common.NewFailResp("inbox item already processed", -1))
			return
		default:
			c.JSON(http.StatusInternalServerError, common.NewFailResp("reject failed", -1))
			return
		}
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("result", result))
}
