package dto

import "time"

// ── 通知模块 DTO ──

// CreateNotificationRequest 创建通知
type CreateNotificationRequest struct {
	Title       string         `json:"title"       binding:"required,max=200"`
	Description string         `json:"description" binding:"required"`
	Type        string         `json:"type"        binding:"omitempty,oneof=opportunity application certification reminder system welcome"`
	ActionURL   string         `json:"action_url"  binding:"omitempty,max=500"`
	Metadata    map[string]any `json:"metadata"`
}

// UpdatePreferenceRequest 更新外部提醒渠道
type UpdatePreferenceRequest struct {
	EmailEnabled    *bool `json:"email_enabled"`
	SMSEnabled      *bool `json:"sms_enabled"`
	WhatsAppEnabled *bool `json:"whatsapp_enabled"`
}

// NotificationResponse 通知（带相对时间）
type NotificationResponse struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Type        string         `json:"type"`
	IsRead      bool           `json:"is_read"`
	ActionURL   string         `json:"action_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   string         `json:"timestamp"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NotificationListResponse 通知列表
type NotificationListResponse struct {
	List        []NotificationResponse `json:"list"`
	UnreadCount int64                  `json:"unread_count"`
}
