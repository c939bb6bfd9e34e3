package repository

import (
	"context"

	"gorm.io/gorm"

	"educareer/backend/internal/model"
)

// ── Assignment Repository ──

// AssignmentRepository 作业数据访问接口
type AssignmentRepository interface {
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.Assignment, error)
}

type assignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo 创建 AssignmentRepository 实例
func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var assignment model.Assignment
	err := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *assignmentRepo) ListByCourses(ctx context.Context, courseIDs []string) ([]model.Assignment, error) {
	if len(courseIDs) == 0 {
		return []model.Assignment{}, nil
	}
	var assignments []model.Assignment
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ?", courseIDs).
		Order("due_date ASC").
		Find(&assignments).Error
	return assignments, err
}

// ── Submission Repository ──

// SubmissionRepository 作业提交数据访问接口
type SubmissionRepository interface {
	// Create (assignment_id, user_id) 重复时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, submission *model.Submission) error
}

type submissionRepo struct {
	db *gorm.DB
}

// NewSubmissionRepo 创建 SubmissionRepository 实例
func NewSubmissionRepo(db *gorm.DB) SubmissionRepository {
	return &submissionRepo{db: db}
}

func (r *submissionRepo) Create(ctx context.Context, submission *model.Submission) error {
	return r.db.WithContext(ctx).Create(submission).Error
}
