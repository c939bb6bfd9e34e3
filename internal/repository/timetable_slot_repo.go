package repository

import (
	"context"

	"gorm.io/gorm"

	"educareer/backend/internal/model"
)

// TimetableSlotRepository 课程时段数据访问接口
type TimetableSlotRepository interface {
	Create(ctx context.Context, slot *model.TimetableSlot) error
	ListByCourses(ctx context.Context, courseIDs []string) ([]model.TimetableSlot, error)
}

type timetableSlotRepo struct {
	db *gorm.DB
}

// NewTimetableSlotRepo 创建 TimetableSlotRepository 实例
func NewTimetableSlotRepo(db *gorm.DB) TimetableSlotRepository {
	return &timetableSlotRepo{db: db}
}

func (r *timetableSlotRepo) Create(ctx context.Context, slot *model.TimetableSlot) error {
	return r.db.WithContext(ctx).Create(slot).Error
}

func (r *timetableSlotRepo) ListByCourses(ctx context.Context, courseIDs []string) ([]model.TimetableSlot, error) {
	if len(courseIDs) == 0 {
		return []model.TimetableSlot{}, nil
	}
	var slots []model.TimetableSlot
	err := r.db.WithContext(ctx).
		Preload("Course").
		Where("course_id IN ?", courseIDs).
		Order("day_of_week ASC, start_time ASC").
		Find(&slots).Error
	return slots, err
}
