package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 通知类型
const (
	NotificationOpportunity   = "opportunity"
	NotificationApplication   = "application"
	NotificationCertification = "certification"
	NotificationReminder      = "reminder"
	NotificationSystem        = "system"
	NotificationWelcome       = "welcome"
)

// Notification 站内通知 — 对应 notifications
type Notification struct {
	NotificationID string            `gorm:"type:uuid;primaryKey"                          json:"notification_id"`
	UserID         string            `gorm:"type:uuid;not null;index"                      json:"user_id"`
	Type           string            `gorm:"type:varchar(20);not null;default:'system'"    json:"type"`
	Title          string            `gorm:"type:varchar(200);not null"                    json:"title"`
	Description    string            `gorm:"type:text;not null"                            json:"description"`
	IsRead         bool              `gorm:"not null;default:false"                        json:"is_read"`
	ActionURL      string            `gorm:"column:action_url;type:varchar(500);not null;default:''" json:"action_url"`
	Metadata       datatypes.JSONMap `gorm:"not null;default:'{}'"                         json:"metadata"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// BeforeCreate 生成主键
func (n *Notification) BeforeCreate(*gorm.DB) error {
	ensureID(&n.NotificationID)
	return nil
}

// NotificationPreference 外部提醒渠道偏好 — 对应 notification_preferences（与 users 1:1）
type NotificationPreference struct {
	UserID          string `gorm:"type:uuid;primaryKey"   json:"user_id"`
	EmailEnabled    bool   `gorm:"not null"              json:"email_enabled"`
	SMSEnabled      bool   `gorm:"column:sms_enabled;not null;default:false"      json:"sms_enabled"`
	WhatsAppEnabled bool   `gorm:"column:whatsapp_enabled;not null;default:false" json:"whatsapp_enabled"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// DefaultNotificationPreference 用户未设置偏好时的默认值：只发邮件
func DefaultNotificationPreference(userID string) NotificationPreference {
	return NotificationPreference{UserID: userID, EmailEnabled: true}
}
