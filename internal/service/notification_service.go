package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
)

// ErrNotificationNotFound 通知不存在或不属于当前用户
var ErrNotificationNotFound = errors.New("Notification not found")

const notificationListLimit = 50

// NotificationService 站内通知与提醒偏好业务接口
type NotificationService interface {
	// List 最近 50 条，倒序，附相对时间
	List(ctx context.Context, userID string) (*dto.NotificationListResponse, error)
	Create(ctx context.Context, userID string, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	// GetPreferences 未设置时返回默认值（仅邮件）
	GetPreferences(ctx context.Context, userID string) (*model.NotificationPreference, error)
	UpdatePreferences(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*model.NotificationPreference, error)
}

type notificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(repo *repository.Repository, logger *zap.Logger) NotificationService {
	return newNotificationService(repo, logger)
}

func newNotificationService(repo *repository.Repository, logger *zap.Logger) *notificationService {
	return &notificationService{repo: repo, logger: logger, now: time.Now}
}

func (s *notificationService) List(ctx context.Context, userID string) (*dto.NotificationListResponse, error) {
	list, err := s.repo.Notification.ListLatest(ctx, userID, notificationListLimit)
	if err != nil {
		s.logger.Error("查询通知失败", zap.Error(err))
		return nil, err
	}
	unread, err := s.repo.Notification.CountUnread(ctx, userID)
	if err != nil {
		s.logger.Error("统计未读通知失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	items := make([]dto.NotificationResponse, 0, len(list))
	for i := range list {
		items = append(items, toNotificationResponse(&list[i], now))
	}
	return &dto.NotificationListResponse{List: items, UnreadCount: unread}, nil
}

func (s *notificationService) Create(ctx context.Context, userID string, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	kind := req.Type
	if kind == "" {
		kind = model.NotificationSystem
	}
	metadata := req.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	n := &model.Notification{
		UserID:      userID,
		Type:        kind,
		Title:       req.Title,
		Description: req.Description,
		ActionURL:   req.ActionURL,
		Metadata:    metadata,
	}
	n.CreatedAt = s.now()
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err))
		return nil, err
	}
	resp := toNotificationResponse(n, s.now())
	return &resp, nil
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.repo.Notification.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		s.logger.Error("标记通知已读失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		s.logger.Error("全部标记已读失败", zap.Error(err))
		return 0, err
	}
	return n, nil
}

// ── 提醒偏好 ──

func (s *notificationService) GetPreferences(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	return loadPreference(ctx, s.repo, userID)
}

func (s *notificationService) UpdatePreferences(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*model.NotificationPreference, error) {
	pref, err := loadPreference(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("查询提醒偏好失败", zap.Error(err))
		return nil, err
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.SMSEnabled != nil {
		pref.SMSEnabled = *req.SMSEnabled
	}
	if req.WhatsAppEnabled != nil {
		pref.WhatsAppEnabled = *req.WhatsAppEnabled
	}
	pref.UpdatedAt = s.now()

	if err := s.repo.Preference.Upsert(ctx, pref); err != nil {
		s.logger.Error("保存提醒偏好失败", zap.Error(err))
		return nil, err
	}
	return pref, nil
}

func loadPreference(ctx context.Context, repo *repository.Repository, userID string) (*model.NotificationPreference, error) {
	pref, err := repo.Preference.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		def := model.DefaultNotificationPreference(userID)
		return &def, nil
	}
	return nil, err
}

// ── 异步任务 ──

// handleUserRegistered user.registered 订阅方：写入欢迎通知
func (s *notificationService) handleUserRegistered(ctx context.Context, payload []byte) error {
	evt, err := decodeEvent[UserEvent](payload)
	if err != nil {
		return err
	}
	n := &model.Notification{
		UserID:      evt.UserID,
		Type:        model.NotificationWelcome,
		Title:       "Welcome to EduCareer AI!",
		Description: "Start by uploading your timetable to get personalized course and career recommendations.",
		ActionURL:   "/timetable",
		Metadata:    map[string]any{},
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		return fmt.Errorf("创建欢迎通知失败: %w", err)
	}
	return nil
}

// ── 辅助函数 ──

func toNotificationResponse(n *model.Notification, now time.Time) dto.NotificationResponse {
	return dto.NotificationResponse{
		ID:          n.NotificationID,
		Title:       n.Title,
		Description: n.Description,
		Type:        n.Type,
		IsRead:      n.IsRead,
		ActionURL:   n.ActionURL,
		Metadata:    n.Metadata,
		Timestamp:   relativeTime(n.CreatedAt, now),
		CreatedAt:   n.CreatedAt,
	}
}

// relativeTime "Just now" / "N minutes ago" … 四周以上显示日期
func relativeTime(t, now time.Time) string {
	diff := now.Sub(t)
	mins := int(diff / time.Minute)
	hours := int(diff / time.Hour)
	days := int(diff / (24 * time.Hour))
	weeks := days / 7

	switch {
	case mins < 1:
		return "Just now"
	case mins < 60:
		return plural(mins, "minute") + " ago"
	case hours < 24:
		return plural(hours, "hour") + " ago"
	case days < 7:
		return plural(days, "day") + " ago"
	case weeks < 4:
		return plural(weeks, "week") + " ago"
	default:
		return t.Format("Jan 2, 2006")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
