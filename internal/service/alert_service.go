package service

import (
	"context"
	"errors"
	"fmt"
	"html"

	"go.uber.org/zap"

	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
	"educareer/backend/pkg/mailer"
	"educareer/backend/pkg/twilio"
)

const defaultAlertSubject = "EduCareer AI Notification"

// Alert 一条多渠道提醒
type Alert struct {
	Subject string
	Message string
}

// AlertService 外部提醒（邮件 / 短信 / WhatsApp）
//
// 渠道由用户提醒偏好决定；某渠道未配置凭据时跳过并记日志，
// 其余渠道的失败合并返回。
type AlertService interface {
	Send(ctx context.Context, userID string, alert Alert) error
}

type alertService struct {
	repo   *repository.Repository
	mail   mailer.Mailer
	sms    twilio.Client
	logger *zap.Logger
}

// NewAlertService 创建 AlertService 实例
func NewAlertService(repo *repository.Repository, mail mailer.Mailer, sms twilio.Client, logger *zap.Logger) AlertService {
	return newAlertService(repo, mail, sms, logger)
}

func newAlertService(repo *repository.Repository, mail mailer.Mailer, sms twilio.Client, logger *zap.Logger) *alertService {
	return &alertService{repo: repo, mail: mail, sms: sms, logger: logger}
}

func (s *alertService) Send(ctx context.Context, userID string, alert Alert) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("查询用户失败: %w", err)
	}
	pref, err := loadPreference(ctx, s.repo, userID)
	if err != nil {
		return fmt.Errorf("查询提醒偏好失败: %w", err)
	}
	if alert.Subject == "" {
		alert.Subject = defaultAlertSubject
	}

	var errs []error

	// ── 邮件 ──
	if pref.EmailEnabled && user.Email != "" && s.mail != nil {
		if err := s.mail.Send(user.Email, alert.Subject, alertHTML(alert)); err != nil {
			errs = append(errs, fmt.Errorf("email: %w", err))
		}
	}

	// ── 短信 ──
	if pref.SMSEnabled && user.Phone != "" && s.sms != nil {
		_, err := s.sms.SendSMS(ctx, user.Phone, alert.Message)
		errs = s.collect(errs, "sms", userID, err)
	}

	// ── WhatsApp ──
	if pref.WhatsAppEnabled && s.sms != nil {
		if to := whatsappTarget(user); to != "" {
			_, err := s.sms.SendWhatsApp(ctx, to, alert.Message)
			errs = s.collect(errs, "whatsapp", userID, err)
		}
	}

	return errors.Join(errs...)
}

// collect 未配置凭据不算失败
func (s *alertService) collect(errs []error, channel, userID string, err error) []error {
	switch {
	case err == nil:
		return errs
	case errors.Is(err, twilio.ErrNotConfigured):
		s.logger.Info("Twilio 未配置，跳过提醒", zap.String("channel", channel), zap.String("user_id", userID))
		return errs
	default:
		return append(errs, fmt.Errorf("%s: %w", channel, err))
	}
}

func whatsappTarget(u *model.User) string {
	if u.WhatsAppNumber != "" {
		return u.WhatsAppNumber
	}
	return u.Phone
}

func alertHTML(a Alert) string {
	return fmt.Sprintf(
		`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto"><h2>%s</h2><p>%s</p><p style="color:#888;font-size:12px">EduCareer AI</p></div>`,
		html.EscapeString(a.Subject), html.EscapeString(a.Message),
	)
}

// ── 异步任务 ──

func (s *alertService) handleUserRegistered(ctx context.Context, payload []byte) error {
	evt, err := decodeEvent[UserEvent](payload)
	if err != nil {
		return err
	}
	name, err := s.displayName(ctx, evt.UserID)
	if err != nil {
		return err
	}
	return s.Send(ctx, evt.UserID, Alert{
		Subject: "🎉 Welcome to EduCareer AI!",
		Message: fmt.Sprintf("Welcome to EduCareer AI, %s! We're excited to help you bridge the gap between education and career. Start by uploading your timetable to get personalized recommendations!", name),
	})
}

func (s *alertService) handleUserLoggedIn(ctx context.Context, payload []byte) error {
	evt, err := decodeEvent[UserEvent](payload)
	if err != nil {
		return err
	}
	name, err := s.displayName(ctx, evt.UserID)
	if err != nil {
		return err
	}
	return s.Send(ctx, evt.UserID, Alert{
		Subject: "🔐 Login Alert - EduCareer AI",
		Message: fmt.Sprintf("Hello %s! You've successfully logged into EduCareer AI. If this wasn't you, please secure your account immediately.", name),
	})
}

func (s *alertService) handleTimetableSaved(ctx context.Context, payload []byte) error {
	evt, err := decodeEvent[TimetableSavedEvent](payload)
	if err != nil {
		return err
	}
	return s.Send(ctx, evt.UserID, Alert{
		Subject: "✅ Timetable Processed - EduCareer AI",
		Message: fmt.Sprintf("Great! Your timetable has been processed successfully. We found %d courses and are now finding the best recommendations for you. Check your Opportunities page!", len(evt.Courses)),
	})
}

func (s *alertService) displayName(ctx context.Context, userID string) (string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("查询用户失败: %w", err)
	}
	if user.FirstName != "" {
		return user.FirstName, nil
	}
	return "there", nil
}
