package repository

import (
	"context"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educareer/backend/internal/model"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	// UpdateProfile 只写资料列，不触碰 timetable / courses / password_hash
	UpdateProfile(ctx context.Context, user *model.User) error
	// UpdateTimetable 单条 UPDATE 同时写入 timetable 与 courses
	UpdateTimetable(ctx context.Context, id string, timetable []model.DaySchedule, courses []string) error
}

// userRepo UserRepository 的 GORM 实现
type userRepo struct {
	db *gorm.DB
}

// NewUserRepo 创建 UserRepository 实例
func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// profileColumns 资料接口可修改的列
var profileColumns = []string{
	"first_name", "last_name", "bio", "company", "date_of_birth", "experience_level",
	"location", "occupation", "phone", "preferred_work_type",
	"student_id", "roll_number", "institution_name", "department", "branch",
	"current_year", "current_semester", "cgpa", "current_percentage",
	"whatsapp_number", "linkedin", "github", "skills",
}

func (r *userRepo) UpdateProfile(ctx context.Context, user *model.User) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", user.UserID).
		Select(profileColumns).
		Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) UpdateTimetable(ctx context.Context, id string, timetable []model.DaySchedule, courses []string) error {
	result := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"timetable": datatypes.NewJSONSlice(timetable),
			"courses":   datatypes.NewJSONSlice(courses),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
