package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
	pkgerrors "educareer/backend/pkg/errors"
)

// ── 简历模块业务错误 ──

var (
	ErrResumeNotFound        = errors.New("Resume not found")
	ErrResumeVersionRequired = errors.New("version is required when updating a resume")
)

// ResumeService 简历业务接口
//
//   - 用户的第一份简历自动设为默认
//   - 更新走乐观锁：请求携带读取时的 version，不一致返回 pkgerrors.ErrOptimisticLock
type ResumeService interface {
	List(ctx context.Context, userID string) ([]model.Resume, error)
	Create(ctx context.Context, userID string, req *dto.ResumeRequest) (*model.Resume, error)
	Update(ctx context.Context, userID, resumeID string, req *dto.ResumeRequest) (*model.Resume, error)
}

type resumeService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewResumeService 创建 ResumeService 实例
func NewResumeService(repo *repository.Repository, logger *zap.Logger) ResumeService {
	return &resumeService{repo: repo, logger: logger}
}

func (s *resumeService) List(ctx context.Context, userID string) ([]model.Resume, error) {
	resumes, err := s.repo.Resume.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询简历失败", zap.Error(err))
		return nil, err
	}
	return resumes, nil
}

func (s *resumeService) Create(ctx context.Context, userID string, req *dto.ResumeRequest) (*model.Resume, error) {
	count, err := s.repo.Resume.CountByUser(ctx, userID)
	if err != nil {
		s.logger.Error("统计简历数量失败", zap.Error(err))
		return nil, err
	}

	resume := &model.Resume{UserID: userID}
	resume.Version = 1
	applyResumeRequest(resume, req)
	if strings.TrimSpace(resume.Title) == "" {
		resume.Title = "My Resume"
	}
	// 旧默认的取消与插入在同一事务内完成
	resume.IsDefault = count == 0 || (req.IsDefault != nil && *req.IsDefault)

	if err := s.repo.Resume.Create(ctx, resume); err != nil {
		s.logger.Error("创建简历失败", zap.Error(err))
		return nil, err
	}
	return resume, nil
}

func (s *resumeService) Update(ctx context.Context, userID, resumeID string, req *dto.ResumeRequest) (*model.Resume, error) {
	if req.Version == 0 {
		return nil, ErrResumeVersionRequired
	}

	resume, err := s.repo.Resume.GetByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResumeNotFound
		}
		s.logger.Error("查询简历失败", zap.Error(err))
		return nil, err
	}
	if resume.UserID != userID {
		return nil, ErrResumeNotFound
	}

	wasDefault := resume.IsDefault
	applyResumeRequest(resume, req)
	// is_default 只能经 SetDefault 置为 true，避免出现多个默认
	resume.IsDefault = wasDefault
	resume.Version = req.Version

	if err := s.repo.Resume.Update(ctx, resume); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新简历失败", zap.Error(err))
		}
		return nil, err
	}

	if req.IsDefault != nil && *req.IsDefault && !wasDefault {
		if err := s.repo.Resume.SetDefault(ctx, userID, resume.ResumeID); err != nil {
			s.logger.Error("设置默认简历失败", zap.Error(err))
			return nil, err
		}
		resume.IsDefault = true
	}
	return resume, nil
}

// applyResumeRequest nil 的板块保持原值
func applyResumeRequest(r *model.Resume, req *dto.ResumeRequest) {
	if req.Title != "" {
		r.Title = strings.TrimSpace(req.Title)
	}
	if req.Summary != "" {
		r.Summary = req.Summary
	}
	if req.Education != nil {
		r.Education = datatypes.NewJSONSlice(req.Education)
	}
	if req.Experience != nil {
		r.Experience = datatypes.NewJSONSlice(req.Experience)
	}
	if req.Skills != nil {
		r.Skills = datatypes.NewJSONSlice(req.Skills)
	}
	if req.Projects != nil {
		r.Projects = datatypes.NewJSONSlice(req.Projects)
	}
	if req.Certifications != nil {
		r.Certifications = datatypes.NewJSONSlice(req.Certifications)
	}
	if req.Languages != nil {
		r.Languages = datatypes.NewJSONSlice(req.Languages)
	}

	// 新建时未提供的板块写空数组
	if r.Education == nil {
		r.Education = datatypes.NewJSONSlice([]model.EducationEntry{})
	}
	if r.Experience == nil {
		r.Experience = datatypes.NewJSONSlice([]model.ExperienceEntry{})
	}
	if r.Skills == nil {
		r.Skills = datatypes.NewJSONSlice([]model.SkillEntry{})
	}
	if r.Projects == nil {
		r.Projects = datatypes.NewJSONSlice([]model.ProjectEntry{})
	}
	if r.Certifications == nil {
		r.Certifications = datatypes.NewJSONSlice([]model.CertificationEntry{})
	}
	if r.Languages == nil {
		r.Languages = datatypes.NewJSONSlice([]model.LanguageEntry{})
	}
}
