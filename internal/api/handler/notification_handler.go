package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/response"
)

const codeNotificationNotFound = 60001

// NotificationHandler 站内通知与提醒偏好 HTTP 处理器
type NotificationHandler struct {
	svc    service.NotificationService
	logger *zap.Logger
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(svc service.NotificationService, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{svc: svc, logger: logger}
}

// List 最近通知（最多 50 条）与未读数
// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.svc.List(c.Request.Context(), userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.OK(c, resp)
}

// Create 创建通知
// POST /api/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateNotificationRequest
	if !bindJSON(c, &req) {
		return
	}

	resp, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.Created(c, resp)
}

// MarkRead 标记单条已读
// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.OKWithMessage(c, "Notification marked as read", nil)
}

// MarkAllRead 全部已读
// PUT /api/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	n, err := h.svc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.OKWithMessage(c, "All notifications marked as read", gin.H{"updated": n})
}

// GetPreferences 外部提醒渠道
// GET /api/notifications/preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	pref, err := h.svc.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.OK(c, pref)
}

// UpdatePreferences 修改外部提醒渠道
// PUT /api/notifications/preferences
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePreferenceRequest
	if !bindJSON(c, &req) {
		return
	}

	pref, err := h.svc.UpdatePreferences(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleNotificationError(c, err)
		return
	}
	response.OK(c, pref)
}

func (h *NotificationHandler) handleNotificationError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrNotificationNotFound) {
		response.NotFound(c, codeNotificationNotFound, err.Error())
		return
	}
	internalError(c, h.logger, err)
}
