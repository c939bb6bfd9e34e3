package repository

import (
	"context"

	"gorm.io/gorm"

	"educareer/backend/internal/model"
	pkgerrors "educareer/backend/pkg/errors"
)

// ResumeRepository 简历数据访问接口
type ResumeRepository interface {
	// Create IsDefault 为 true 时，同一事务内取消该用户其他简历的默认
	Create(ctx context.Context, resume *model.Resume) error
	GetByID(ctx context.Context, id string) (*model.Resume, error)
	ListByUser(ctx context.Context, userID string) ([]model.Resume, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	// Update 乐观锁更新，version 不匹配返回 ErrOptimisticLock
	Update(ctx context.Context, resume *model.Resume) error
	// SetDefault 将指定简历设为默认，同用户其他简历取消默认
	SetDefault(ctx context.Context, userID, resumeID string) error
}

type resumeRepo struct {
	db *gorm.DB
}

// NewResumeRepo 创建 ResumeRepository 实例
func NewResumeRepo(db *gorm.DB) ResumeRepository {
	return &resumeRepo{db: db}
}

func (r *resumeRepo) Create(ctx context.Context, resume *model.Resume) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if resume.IsDefault {
			if err := tx.Model(&model.Resume{}).
				Where("user_id = ? AND is_default = ?", resume.UserID, true).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(resume).Error
	})
}

func (r *resumeRepo) GetByID(ctx context.Context, id string) (*model.Resume, error) {
	var resume model.Resume
	err := r.db.WithContext(ctx).
		Where("resume_id = ?", id).
		First(&resume).Error
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

func (r *resumeRepo) ListByUser(ctx context.Context, userID string) ([]model.Resume, error) {
	var resumes []model.Resume
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, updated_at DESC").
		Find(&resumes).Error
	return resumes, err
}

func (r *resumeRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.Resume{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

func (r *resumeRepo) Update(ctx context.Context, resume *model.Resume) error {
	oldVersion := resume.Version
	result := r.db.WithContext(ctx).
		Model(&model.Resume{}).
		Where("resume_id = ? AND version = ?", resume.ResumeID, oldVersion).
		Updates(map[string]interface{}{
			"title":          resume.Title,
			"summary":        resume.Summary,
			"education":      resume.Education,
			"experience":     resume.Experience,
			"skills":         resume.Skills,
			"projects":       resume.Projects,
			"certifications": resume.Certifications,
			"languages":      resume.Languages,
			"is_default":     resume.IsDefault,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	resume.Version = oldVersion + 1
	return nil
}

func (r *resumeRepo) SetDefault(ctx context.Context, userID, resumeID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Resume{}).
			Where("user_id = ? AND resume_id <> ?", userID, resumeID).
			Update("is_default", false).Error; err != nil {
			return err
		}
		return tx.Model(&model.Resume{}).
			Where("user_id = ? AND resume_id = ?", userID, resumeID).
			Update("is_default", true).Error
	})
}
