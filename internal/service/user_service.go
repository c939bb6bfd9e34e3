package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
)

// UserService 用户资料业务接口
type UserService interface {
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	// ProfileStrength 资料强度（加权）与完整度（必填项）
	ProfileStrength(ctx context.Context, userID string) (*dto.ProfileStrengthResponse, error)
	// Dashboard 首页汇总，各计数并发查询
	Dashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	setString(&user.FirstName, req.FirstName)
	setString(&user.LastName, req.LastName)
	setString(&user.Bio, req.Bio)
	setString(&user.Company, req.Company)
	setString(&user.ExperienceLevel, req.ExperienceLevel)
	setString(&user.Location, req.Location)
	setString(&user.Occupation, req.Occupation)
	setString(&user.Phone, req.Phone)
	setString(&user.PreferredWorkType, req.PreferredWorkType)
	setString(&user.StudentID, req.StudentID)
	setString(&user.RollNumber, req.RollNumber)
	setString(&user.InstitutionName, req.InstitutionName)
	setString(&user.Department, req.Department)
	setString(&user.Branch, req.Branch)
	setString(&user.WhatsAppNumber, req.WhatsAppNumber)
	setString(&user.LinkedIn, req.LinkedIn)
	setString(&user.GitHub, req.GitHub)

	if req.CurrentYear != nil {
		user.CurrentYear = req.CurrentYear
	}
	if req.CurrentSemester != nil {
		user.CurrentSemester = req.CurrentSemester
	}
	if req.CGPA != nil {
		user.CGPA = req.CGPA
	}
	if req.CurrentPercentage != nil {
		user.CurrentPercentage = req.CurrentPercentage
	}

	if req.DateOfBirth != nil {
		if *req.DateOfBirth == "" {
			user.DateOfBirth = nil
		} else {
			// binding 已校验格式
			dob, _ := time.Parse("2006-01-02", *req.DateOfBirth)
			user.DateOfBirth = &dob
		}
	}

	if req.Skills != nil {
		skills := make([]string, 0, len(*req.Skills))
		for _, sk := range *req.Skills {
			if sk = strings.TrimSpace(sk); sk != "" {
				skills = append(skills, sk)
			}
		}
		user.Skills = datatypes.NewJSONSlice(skills)
	}

	if err := s.repo.User.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("更新用户资料失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}

func (s *userService) ProfileStrength(ctx context.Context, userID string) (*dto.ProfileStrengthResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profileStrength(user), nil
}

func (s *userService) Dashboard(ctx context.Context, userID string) (*dto.DashboardResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		ProfileStrength:  profileStrength(user).Strength,
		TimetableCourses: len(user.Courses),
		Certifications:   len(RecommendCertifications(user.Courses)),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.Enrollment.CountActive(gctx, userID)
		resp.ActiveEnrollments = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Application.CountByUser(gctx, userID)
		resp.Applications = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.Notification.CountUnread(gctx, userID)
		resp.UnreadNotifications = n
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("汇总首页数据失败", zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}
	return resp, nil
}

func (s *userService) getUser(ctx context.Context, userID string) (*model.User, error) {
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

// ── 资料强度 ──

// profileStrength 强度按字段加权求和；完整度看 6 个必填项
func profileStrength(u *model.User) *dto.ProfileStrengthResponse {
	strength := 0
	if u.FirstName != "" {
		strength += 25
	}
	if u.LastName != "" {
		strength += 25
	}
	if u.Phone != "" {
		strength += 15
	}
	if u.Occupation != "" {
		strength += 15
	}
	if u.Location != "" {
		strength += 10
	}
	if len(u.Skills) > 0 {
		strength += 10
	}

	required := []struct {
		name   string
		filled bool
	}{
		{"first_name", u.FirstName != ""},
		{"last_name", u.LastName != ""},
		{"bio", u.Bio != ""},
		{"skills", len(u.Skills) > 0},
		{"experience_level", u.ExperienceLevel != ""},
		{"occupation", u.Occupation != ""},
	}
	missing := make([]string, 0)
	for _, f := range required {
		if !f.filled {
			missing = append(missing, f.name)
		}
	}

	return &dto.ProfileStrengthResponse{
		Strength:      strength,
		Completeness:  (len(required) - len(missing)) * 100 / len(required),
		MissingFields: missing,
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
