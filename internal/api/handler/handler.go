package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/internal/api/middleware"
	"educareer/backend/internal/service"
	"educareer/backend/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Timetable    *TimetableHandler
	Course       *CourseHandler
	Job          *JobHandler
	Notification *NotificationHandler
	Health       *HealthHandler
}

// Options Handler 层的可选参数
type Options struct {
	MaxUploadBytes int64
	HealthChecks   map[string]HealthCheck
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, opts Options, logger *zap.Logger) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, logger),
		User:         NewUserHandler(svc.User, logger),
		Timetable:    NewTimetableHandler(svc.Timetable, svc.Export, opts.MaxUploadBytes, logger),
		Course:       NewCourseHandler(svc.Course, logger),
		Job:          NewJobHandler(svc.Job, svc.Resume, logger),
		Notification: NewNotificationHandler(svc.Notification, logger),
		Health:       NewHealthHandler(opts.HealthChecks),
	}
}

// internalError 记录未预期错误，客户端只收到通用提示
func internalError(c *gin.Context, logger *zap.Logger, err error) {
	logger.Error("请求处理异常",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString(middleware.CtxRequestID)),
		zap.Error(err),
	)
	_ = c.Error(err)
	response.InternalError(c)
}
