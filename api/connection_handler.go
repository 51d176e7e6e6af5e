package api

import (
	"errors"
	"net/http"
	"strconv"

	"inbox-pilot/service/connection"
	"inbox-pilot/service/credential"

	"github.com/Plaud-AI/plaud-go-scaffold/pkg/common"
	"github.com/Plaud-AI/plaud-go-scaffold/pkg/logger"

	"github.com/gin-gonic/gin"
)

// ConnectionHandler 邮箱连接处理器
type ConnectionHandler struct {
	svc *connection.ConnectionService
}

// NewConnectionHandler 创建 ConnectionHandler
func NewConnectionHandler(svc *connection.ConnectionService) *ConnectionHandler {
	return &ConnectionHandler{svc: svc}
}

// ConnectReq 建立连接请求
type ConnectReq struct {
	Code string `json:"code" binding:"required"`
}

// Connect 用 OAuth 授权码建立邮箱连接
// POST /v1/connections
func (h *ConnectionHandler) Connect(c *gin.Context) {
	var req ConnectReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid request: "+err.Error(), -1))
		return
	}

	conn, err := h.svc.Connect(c.Request.Context(), GetUserID(c), req.Code)
	if err != nil {
		logger.ErrorfCtx(c.Request.Context(), "connect error: %v", err)

		if errors.Is(err, credential.ErrExchangeFailed) {
			c.JSON(http.StatusBadRequest, common.NewFailResp("authorization code exchange failed", -1))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewFailResp("connect failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("connection", conn))
}

// List 查询用户的连接
// GET /v1/connections
func (h *ConnectionHandler) List(c *gin.Context) {
	conns, err := h.svc.ListByUser(c.Request.Context(), GetUserID(c))
	if err != nil {
		logger.ErrorfCtx(c.Request.Context(), "list connections error: %v", err)
		c.JSON(http.StatusInternalServerError, common.NewFailResp("list connections failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("connections", conns))
}

// Disconnect 断开连接
// DELETE /v1/connections/:id
func (h *ConnectionHandler) Disconnect(c *gin.Context) {
	connID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid connection id", -1))
		return
	}

	if err := h.svc.Disconnect(c.Request.Context(), GetUserID(c), connID); err != nil {
		logger.ErrorfCtx(c.Request.Context(), "disconnect error: %v", err)

		if errors.Is(err, connection.ErrConnectionNotFound) {
			c.JSON(http.StatusNotFound, common.NewFailResp("connection not found", -1))
			return
		}
		c.JSON(http.StatusInternalServerError, common.NewFailResp("disconnect failed", -1))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("disconnected", true))
}

// UpdateSyncSettingsReq 更新同步设置请求
type UpdateSyncSettingsReq struct {
	MaxEmailsPerSync int `json:"max_emails_per_sync" binding:"required"`
}

// UpdateSyncSettings 更新单次同步拉取上限
// PUT /v1/connections/:id/sync-settings
func (h *ConnectionHandler) UpdateSyncSettings(c *gin.Context) {
	connID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid connection id", -1))
		return
	}

	var req UpdateSyncSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewFailResp("invalid request: "+err.Error(), -1))
		return
	}

	if err := h.svc.UpdateSyncSettings(c.Request.Context(), GetUserID(c), connID, req.MaxEmailsPerSync); err != nil {
		logger.ErrorfCtx(c.Request.Context(), "update sync settings error: %v", err)

		switch {
		case errors.Is(err, connection.ErrInvalidMaxEmails):
			c.JSON(http.StatusBadRequest, common.NewFailResp(err.Error(), -1))
			return
		case errors.Is(err, connection.ErrConnectionNotFound):
			c.JSON(http.StatusNotFound, common.NewFailResp("connection not found", -1))
			return
		default:
			c.JSON(http.StatusInternalServerError, common.NewFailResp("update sync settings failed", -1))
			return
		}
	}
	c.JSON(http.StatusOK, common.NewSuccessResp("updated", true))
}
