package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"educareer/backend/config"
	"educareer/backend/internal/api/handler"
	"educareer/backend/internal/api/middleware"
)

// Deps 路由依赖；Limiter 为 nil 时登录 / 注册不限流
type Deps struct {
	Auth    middleware.Authenticator
	Limiter middleware.RateLimiter
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, deps Deps, logger *zap.Logger) *gin.Engine {
	handler.RegisterValidators()

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(bodyLimitBytes(cfg)))

	api := r.Group("/api")
	{
		api.GET("/health", h.Health.Health)

		// 认证模块（无需认证）
		authLimit := middleware.RateLimit(deps.Limiter, cfg.Redis.LoginRateLimit, time.Minute, logger)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authLimit, h.Auth.Register)
			auth.POST("/login", authLimit, h.Auth.Login)
		}

		// 模板不含用户数据
		api.GET("/timetable/template", h.Timetable.Template)

		// 需要认证的路由
		authorized := api.Group("")
		authorized.Use(middleware.JWTAuth(deps.Auth))
		{
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.POST("/auth/logout", h.Auth.Logout)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("/profile", h.User.GetProfile)
				users.PUT("/profile", h.User.UpdateProfile)
				users.GET("/profile/strength", h.User.ProfileStrength)
				users.GET("/dashboard", h.User.Dashboard)
				users.POST("/timetable", h.Timetable.Save)
				users.GET("/timetable", h.Timetable.Get)
			}

			// 课表模块
			timetable := authorized.Group("/timetable")
			{
				timetable.POST("/parse", h.Timetable.Parse)
				timetable.POST("/upload", h.Timetable.Upload)
				timetable.GET("/export", h.Timetable.Export)
				timetable.GET("/certifications", h.Timetable.Certifications)
				timetable.GET("/recommendations", h.Timetable.Recommendations)
			}

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.List)
				courses.POST("", h.Course.Create)
				courses.GET("/enrollments", h.Course.ListEnrollments)
				courses.POST("/enroll", h.Course.Enroll)
				courses.GET("/timetable", h.Course.Timetable)
				courses.GET("/assignments", h.Course.ListAssignments)
				courses.POST("/assignments/:assignmentId/submit", h.Course.Submit)
				courses.POST("/:courseId/slots", h.Course.CreateSlot)
				courses.POST("/:courseId/assignments", h.Course.CreateAssignment)
			}

			// 职位 / 简历模块
			jobs := authorized.Group("/jobs")
			{
				jobs.GET("", h.Job.List)
				jobs.POST("", h.Job.Create)
				jobs.GET("/applications", h.Job.ListApplications)
				jobs.POST("/:jobId/apply", h.Job.Apply)
				jobs.GET("/resumes", h.Job.ListResumes)
				jobs.POST("/resumes", h.Job.CreateResume)
				jobs.PUT("/resumes/:resumeId", h.Job.UpdateResume)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.POST("", h.Notification.Create)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.GET("/preferences", h.Notification.GetPreferences)
				notifications.PUT("/preferences", h.Notification.UpdatePreferences)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
			}
		}
	}

	return r
}

// bodyLimitBytes 全局请求体上限，至少容纳一个上传文件
func bodyLimitBytes(cfg *config.Config) int64 {
	limit := cfg.Server.BodyLimitMB << 20
	if upload := (cfg.Upload.MaxFileMB + 1) << 20; upload > limit {
		limit = upload
	}
	return limit
}
