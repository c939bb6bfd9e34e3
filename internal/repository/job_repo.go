package repository

import (
	"context"

	"gorm.io/gorm"

	"educareer/backend/internal/model"
)

// JobFilter 职位列表过滤条件
type JobFilter struct {
	JobType  string
	Location string
	Keyword  string
}

// ── Job Repository ──

// JobRepository 职位数据访问接口
type JobRepository interface {
	Create(ctx context.Context, job *model.JobOpportunity) error
	GetByID(ctx context.Context, id string) (*model.JobOpportunity, error)
	// ListActive 只返回 is_active 的职位，按发布时间倒序
	ListActive(ctx context.Context, filter JobFilter, offset, limit int) ([]model.JobOpportunity, int64, error)
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) Create(ctx context.Context, job *model.JobOpportunity) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.JobOpportunity, error) {
	var job model.JobOpportunity
	err := r.db.WithContext(ctx).
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) ListActive(ctx context.Context, filter JobFilter, offset, limit int) ([]model.JobOpportunity, int64, error) {
	var jobs []model.JobOpportunity
	var total int64

	db := r.db.WithContext(ctx).
		Model(&model.JobOpportunity{}).
		Where("is_active = ?", true)
	if filter.JobType != "" {
		db = db.Where("job_type = ?", filter.JobType)
	}
	if filter.Location != "" {
		db = db.Where("location LIKE ?", "%"+filter.Location+"%")
	}
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		db = db.Where("title LIKE ? OR company LIKE ?", like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&jobs).Error; err != nil {
		return nil, 0, err
	}

	return jobs, total, nil
}

// ── Application Repository ──

// ApplicationRepository 投递数据访问接口
type ApplicationRepository interface {
	// Create (user_id, job_id) 重复时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, application *model.JobApplication) error
	ListByUser(ctx context.Context, userID string) ([]model.JobApplication, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

type applicationRepo struct {
	db *gorm.DB
}

// NewApplicationRepo 创建 ApplicationRepository 实例
func NewApplicationRepo(db *gorm.DB) ApplicationRepository {
	return &applicationRepo{db: db}
}

func (r *applicationRepo) Create(ctx context.Context, application *model.JobApplication) error {
	return r.db.WithContext(ctx).Create(application).Error
}

func (r *applicationRepo) ListByUser(ctx context.Context, userID string) ([]model.JobApplication, error) {
	var applications []model.JobApplication
	err := r.db.WithContext(ctx).
		Preload("Job").
		Where("user_id = ?", userID).
		Order("applied_at DESC").
		Find(&applications).Error
	return applications, err
}

func (r *applicationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.JobApplication{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}
