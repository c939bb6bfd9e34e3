package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
)

// ── 职位模块业务错误 ──

var (
	ErrJobNotFound    = errors.New("Job not found")
	ErrAlreadyApplied = errors.New("Already applied for this job")
)

// JobService 职位 / 投递业务接口
type JobService interface {
	List(ctx context.Context, req *dto.JobListRequest) ([]model.JobOpportunity, int64, error)
	// Create posted_by 记为当前用户
	Create(ctx context.Context, userID string, req *dto.CreateJobRequest) (*model.JobOpportunity, error)
	// Apply 职位不存在或已下架返回 ErrJobNotFound，重复投递返回 ErrAlreadyApplied
	Apply(ctx context.Context, userID, jobID string, req *dto.ApplyJobRequest) (*model.JobApplication, error)
	ListApplications(ctx context.Context, userID string) ([]model.JobApplication, error)
}

type jobService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewJobService 创建 JobService 实例
func NewJobService(repo *repository.Repository, logger *zap.Logger) JobService {
	return &jobService{repo: repo, logger: logger, now: time.Now}
}

func (s *jobService) List(ctx context.Context, req *dto.JobListRequest) ([]model.JobOpportunity, int64, error) {
	filter := repository.JobFilter{
		JobType:  req.JobType,
		Location: strings.TrimSpace(req.Location),
		Keyword:  strings.TrimSpace(req.Keyword),
	}
	jobs, total, err := s.repo.Job.ListActive(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询职位列表失败", zap.Error(err))
		return nil, 0, err
	}
	return jobs, total, nil
}

func (s *jobService) Create(ctx context.Context, userID string, req *dto.CreateJobRequest) (*model.JobOpportunity, error) {
	requirements := req.Requirements
	if requirements == nil {
		requirements = []string{}
	}
	job := &model.JobOpportunity{
		Title:          strings.TrimSpace(req.Title),
		Company:        strings.TrimSpace(req.Company),
		Description:    req.Description,
		Requirements:   datatypes.NewJSONSlice(requirements),
		Location:       req.Location,
		JobType:        req.JobType,
		SalaryRange:    req.SalaryRange,
		ApplicationURL: req.ApplicationURL,
		ContactEmail:   req.ContactEmail,
		IsActive:       true,
		PostedBy:       &userID,
	}
	if req.ApplicationDeadline != "" {
		// binding 已校验格式
		deadline, _ := time.Parse("2006-01-02", req.ApplicationDeadline)
		job.ApplicationDeadline = &deadline
	}

	if err := s.repo.Job.Create(ctx, job); err != nil {
		s.logger.Error("发布职位失败", zap.Error(err))
		return nil, err
	}
	return job, nil
}

func (s *jobService) Apply(ctx context.Context, userID, jobID string, req *dto.ApplyJobRequest) (*model.JobApplication, error) {
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询职位失败", zap.Error(err))
		return nil, err
	}
	if !job.IsActive {
		return nil, ErrJobNotFound
	}

	application := &model.JobApplication{
		UserID:      userID,
		JobID:       jobID,
		CoverLetter: req.CoverLetter,
		ResumeURL:   req.ResumeURL,
		Status:      model.ApplicationApplied,
		AppliedAt:   s.now(),
	}
	if err := s.repo.Application.Create(ctx, application); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyApplied
		}
		s.logger.Error("投递职位失败", zap.Error(err))
		return nil, err
	}
	application.Job = job
	return application, nil
}

func (s *jobService) ListApplications(ctx context.Context, userID string) ([]model.JobApplication, error) {
	applications, err := s.repo.Application.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询投递记录失败", zap.Error(err))
		return nil, err
	}
	return applications, nil
}
