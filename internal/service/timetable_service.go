package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"educareer/backend/config"
	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
	"educareer/backend/pkg/aiclient"
	"educareer/backend/pkg/events"
	"educareer/backend/pkg/redis"
)

// ErrRecommendationUnavailable 外部推荐服务不可用
var ErrRecommendationUnavailable = errors.New("Recommendation service is unavailable")

const (
	recommendCachePrefix = "recommend:"
	recommendLimit       = 10
	defaultRecommendTTL  = time.Hour
)

// ── TimetableService 接口 ──────────────────────────────────
//
//   - Parse 只解析不落库，供前端预览
//   - Save 单条 UPDATE 写入 timetable + courses，随后发布 timetable.saved
//   - 推荐拉取与通知由 timetable.saved 的订阅方异步完成，失败不回滚保存
// ─────────────────────────────────────────────────────────────

// TimetableService 课表模块业务接口
type TimetableService interface {
	// Parse 解析上传文件，返回预览
	Parse(ctx context.Context, userID, filename string, data []byte) (*dto.ParseTimetableResponse, error)
	// Upload 解析并保存
	Upload(ctx context.Context, userID, filename string, data []byte) (*dto.UploadTimetableResponse, error)
	// Save 保存课表，courses 由服务端派生
	Save(ctx context.Context, userID string, timetable []model.DaySchedule) (*dto.TimetableResponse, error)
	// Get 当前已保存的课表
	Get(ctx context.Context, userID string) (*dto.TimetableResponse, error)
	// Certifications 根据已保存课程推荐认证
	Certifications(ctx context.Context, userID string) ([]model.CertificationRecommendation, error)
	// Recommendations 外部个性化推荐（优先读缓存）
	Recommendations(ctx context.Context, userID string) (*dto.RecommendationsResponse, error)
}

type timetableService struct {
	repo         *repository.Repository
	ai           aiclient.Client
	cache        Cache
	bus          events.Publisher
	recommendTTL time.Duration
	logger       *zap.Logger
	now          func() time.Time
}

// NewTimetableService 创建 TimetableService 实例
func NewTimetableService(
	cfg *config.Config,
	repo *repository.Repository,
	ai aiclient.Client,
	cache Cache,
	bus events.Publisher,
	logger *zap.Logger,
) TimetableService {
	return newTimetableService(cfg, repo, ai, cache, bus, logger)
}

func newTimetableService(
	cfg *config.Config,
	repo *repository.Repository,
	ai aiclient.Client,
	cache Cache,
	bus events.Publisher,
	logger *zap.Logger,
) *timetableService {
	ttl := cfg.Redis.RecommendTTL
	if ttl <= 0 {
		ttl = defaultRecommendTTL
	}
	return &timetableService{
		repo:         repo,
		ai:           ai,
		cache:        cache,
		bus:          bus,
		recommendTTL: ttl,
		logger:       logger,
		now:          time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Parse / Upload
// ════════════════════════════════════════════════════════════

func (s *timetableService) Parse(ctx context.Context, userID, filename string, data []byte) (*dto.ParseTimetableResponse, error) {
	timetable, source, err := s.parse(ctx, userID, filename, data)
	if err != nil {
		return nil, err
	}
	return &dto.ParseTimetableResponse{
		Source:       source,
		TotalClasses: countClasses(timetable),
		Timetable:    timetable,
	}, nil
}

func (s *timetableService) Upload(ctx context.Context, userID, filename string, data []byte) (*dto.UploadTimetableResponse, error) {
	timetable, source, err := s.parse(ctx, userID, filename, data)
	if err != nil {
		return nil, err
	}
	saved, err := s.Save(ctx, userID, timetable)
	if err != nil {
		return nil, err
	}
	return &dto.UploadTimetableResponse{
		Source:       source,
		TotalClasses: countClasses(saved.Timetable),
		Timetable:    saved.Timetable,
		Courses:      saved.Courses,
	}, nil
}

func (s *timetableService) parse(ctx context.Context, userID, filename string, data []byte) ([]model.DaySchedule, string, error) {
	rows, source, err := ingestFile(ctx, s.ai, filename, data, userID)
	if err != nil {
		if errors.Is(err, ErrAIExtractionFailed) || errors.Is(err, ErrICSParseFailed) {
			s.logger.Warn("课表文件解析失败",
				zap.String("user_id", userID),
				zap.String("filename", filename),
				zap.Error(err),
			)
		}
		return nil, "", err
	}
	if len(rows) == 0 {
		return nil, "", ErrTimetableEmpty
	}
	return normalizeSchedule(rows, s.now()), source, nil
}

// ════════════════════════════════════════════════════════════
// Save / Get
// ════════════════════════════════════════════════════════════

func (s *timetableService) Save(ctx context.Context, userID string, timetable []model.DaySchedule) (*dto.TimetableResponse, error) {
	today := s.now()
	for i := range timetable {
		classes := make([]model.ClassSlot, 0, len(timetable[i].Classes))
		for _, c := range timetable[i].Classes {
			classes = append(classes, normalizeClassSlot(c))
		}
		sortClasses(classes)
		timetable[i].Classes = classes
		if timetable[i].Date == "" {
			timetable[i].Date = dateForWeekday(timetable[i].Day, today)
		}
	}
	courses := deriveCourses(timetable)

	if err := s.repo.User.UpdateTimetable(ctx, userID, timetable, courses); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("保存课表失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	publish(ctx, s.bus, s.logger, TopicTimetableSaved, TimetableSavedEvent{UserID: userID, Courses: courses})

	return &dto.TimetableResponse{Timetable: timetable, Courses: courses}, nil
}

func (s *timetableService) Get(ctx context.Context, userID string) (*dto.TimetableResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	timetable := []model.DaySchedule(user.Timetable)
	if timetable == nil {
		timetable = []model.DaySchedule{}
	}
	courses := []string(user.Courses)
	if courses == nil {
		courses = []string{}
	}
	return &dto.TimetableResponse{Timetable: timetable, Courses: courses}, nil
}

func (s *timetableService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

// ════════════════════════════════════════════════════════════
// 推荐
// ════════════════════════════════════════════════════════════

func (s *timetableService) Certifications(ctx context.Context, userID string) ([]model.CertificationRecommendation, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return RecommendCertifications(user.Courses), nil
}

func (s *timetableService) Recommendations(ctx context.Context, userID string) (*dto.RecommendationsResponse, error) {
	if s.cache != nil {
		var cached dto.RecommendationsResponse
		err := s.cache.GetJSON(ctx, recommendCachePrefix+userID, &cached)
		switch {
		case err == nil:
			cached.Cached = true
			return &cached, nil
		case !errors.Is(err, redis.ErrCacheMiss):
			s.logger.Warn("读取推荐缓存失败", zap.String("user_id", userID), zap.Error(err))
		}
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Courses) == 0 {
		return emptyRecommendations(), nil
	}

	resp, err := s.fetchRecommendations(ctx, userID, user.Courses)
	if err != nil {
		s.logger.Error("拉取个性化推荐失败", zap.String("user_id", userID), zap.Error(err))
		return nil, ErrRecommendationUnavailable
	}
	return resp, nil
}

// fetchRecommendations 调用外部推荐并写缓存（缓存失败只记日志）
func (s *timetableService) fetchRecommendations(ctx context.Context, userID string, courses []string) (*dto.RecommendationsResponse, error) {
	rec, err := s.ai.PersonalizedRecommendations(ctx, aiclient.RecommendationRequest{
		UserID:         userID,
		Courses:        courses,
		IncludeCourses: true,
		IncludeJobs:    false,
		Limit:          recommendLimit,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.RecommendationsResponse{
		Courses:              toItemMaps(rec.Courses),
		Jobs:                 toItemMaps(rec.Jobs),
		UserKeywords:         rec.UserKeywords,
		TotalRecommendations: rec.TotalRecommendations,
	}
	if resp.UserKeywords == nil {
		resp.UserKeywords = []string{}
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, recommendCachePrefix+userID, resp, s.recommendTTL); err != nil {
			s.logger.Warn("写入推荐缓存失败", zap.String("user_id", userID), zap.Error(err))
		}
	}
	return resp, nil
}

// handleTimetableSaved timetable.saved 订阅方：拉取推荐，有课程推荐时写一条站内通知
func (s *timetableService) handleTimetableSaved(ctx context.Context, payload []byte) error {
	evt, err := decodeEvent[TimetableSavedEvent](payload)
	if err != nil {
		return err
	}
	if len(evt.Courses) == 0 {
		return nil
	}

	resp, err := s.fetchRecommendations(ctx, evt.UserID, evt.Courses)
	if err != nil {
		return fmt.Errorf("拉取个性化推荐失败: %w", err)
	}
	n := len(resp.Courses)
	if n == 0 {
		return nil
	}

	notification := &model.Notification{
		UserID:      evt.UserID,
		Type:        model.NotificationCertification,
		Title:       "New Course Recommendations Available!",
		Description: fmt.Sprintf("Based on your timetable, we found %d relevant courses for you", n),
		ActionURL:   "/certifications",
		Metadata:    map[string]any{"recommendation_count": n},
	}
	if err := s.repo.Notification.Create(ctx, notification); err != nil {
		return fmt.Errorf("创建推荐通知失败: %w", err)
	}
	return nil
}

func emptyRecommendations() *dto.RecommendationsResponse {
	return &dto.RecommendationsResponse{
		Courses:      []map[string]any{},
		Jobs:         []map[string]any{},
		UserKeywords: []string{},
	}
}

func toItemMaps(items []aiclient.RecommendedItem) []map[string]any {
	out := make([]map[string]any, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]any(it))
	}
	return out
}
