package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"educareer/backend/config"
	"educareer/backend/internal/repository"
	"educareer/backend/pkg/aiclient"
	"educareer/backend/pkg/events"
	"educareer/backend/pkg/jwt"
	"educareer/backend/pkg/mailer"
	"educareer/backend/pkg/twilio"
)

// Cache Service 层依赖的缓存能力（pkg/redis.Client 实现）
//
// Redis 不可用时传 nil：注销只依赖客户端丢弃 Token，推荐结果每次实时拉取。
type Cache interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	GetJSON(ctx context.Context, key string, dest any) error
}

// Subscriber 异步任务订阅接口（pkg/events.Bus 实现）
type Subscriber interface {
	Subscribe(topic, name string, handler events.Handler) error
}

// Clients 外部依赖集合
type Clients struct {
	Cache  Cache
	AI     aiclient.Client
	Bus    events.Publisher
	Mailer mailer.Mailer
	SMS    twilio.Client
}

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Timetable    TimetableService
	Export       ExportService
	Course       CourseService
	Job          JobService
	Resume       ResumeService
	Notification NotificationService
	Alert        AlertService

	tasks []task
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	clients Clients,
	logger *zap.Logger,
) *Service {
	notification := newNotificationService(repo, logger)
	alert := newAlertService(repo, clients.Mailer, clients.SMS, logger)
	timetable := newTimetableService(cfg, repo, clients.AI, clients.Cache, clients.Bus, logger)

	s := &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, clients.Cache, clients.Bus, logger),
		User:         NewUserService(repo, logger),
		Timetable:    timetable,
		Export:       NewExportService(repo, logger),
		Course:       NewCourseService(repo, logger),
		Job:          NewJobService(repo, logger),
		Resume:       NewResumeService(repo, logger),
		Notification: notification,
		Alert:        alert,
	}

	s.tasks = []task{
		{TopicUserRegistered, "welcome-notification", notification.handleUserRegistered},
		{TopicUserRegistered, "welcome-alert", alert.handleUserRegistered},
		{TopicUserLoggedIn, "login-alert", alert.handleUserLoggedIn},
		{TopicTimetableSaved, "fetch-recommendations", timetable.handleTimetableSaved},
		{TopicTimetableSaved, "timetable-alert", alert.handleTimetableSaved},
	}
	return s
}

// RegisterTasks 把所有异步任务挂到总线上，需在启动 HTTP 服务前调用
func (s *Service) RegisterTasks(sub Subscriber) error {
	for _, t := range s.tasks {
		if err := sub.Subscribe(t.topic, t.name, t.handler); err != nil {
			return err
		}
	}
	return nil
}
