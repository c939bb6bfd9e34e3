package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
)

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound     = errors.New("Course not found")
	ErrCourseCodeExists   = errors.New("Course code already exists")
	ErrAlreadyEnrolled    = errors.New("Already enrolled in this course")
	ErrSlotTimeRange      = errors.New("End time must be after start time")
	ErrInvalidDueDate     = errors.New("Invalid due date, use RFC3339 or YYYY-MM-DD")
	ErrAssignmentNotFound = errors.New("Assignment not found")
	ErrAlreadySubmitted   = errors.New("Assignment already submitted")
)

// CourseService 课程 / 选课 / 作业业务接口
type CourseService interface {
	List(ctx context.Context, req *dto.CourseListRequest) ([]model.Course, int64, error)
	Create(ctx context.Context, req *dto.CreateCourseRequest) (*model.Course, error)
	// Enroll 同一课程重复选课返回 ErrAlreadyEnrolled
	Enroll(ctx context.Context, userID, courseID string) (*model.Enrollment, error)
	ListEnrollments(ctx context.Context, userID string) ([]model.Enrollment, error)
	// Timetable 在读课程的固定时段
	Timetable(ctx context.Context, userID string) ([]model.TimetableSlot, error)
	CreateSlot(ctx context.Context, courseID string, req *dto.CreateSlotRequest) (*model.TimetableSlot, error)
	// ListAssignments 在读课程的作业，按截止时间升序
	ListAssignments(ctx context.Context, userID string) ([]model.Assignment, error)
	CreateAssignment(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest) (*model.Assignment, error)
	// Submit 每份作业每人一次
	Submit(ctx context.Context, userID, assignmentID string, req *dto.SubmitAssignmentRequest) (*model.Submission, error)
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger, now: time.Now}
}

func (s *courseService) List(ctx context.Context, req *dto.CourseListRequest) ([]model.Course, int64, error) {
	filter := repository.CourseFilter{
		Department: req.Department,
		Semester:   req.Semester,
		Keyword:    strings.TrimSpace(req.Keyword),
	}
	courses, total, err := s.repo.Course.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询课程列表失败", zap.Error(err))
		return nil, 0, err
	}
	return courses, total, nil
}

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest) (*model.Course, error) {
	credits := req.Credits
	if credits == 0 {
		credits = 3
	}
	course := &model.Course{
		Name:        strings.TrimSpace(req.Name),
		Code:        strings.ToUpper(strings.TrimSpace(req.Code)),
		Description: req.Description,
		Credits:     credits,
		Department:  req.Department,
		Instructor:  req.Instructor,
		Semester:    req.Semester,
		Year:        req.Year,
	}
	if err := s.repo.Course.Create(ctx, course); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrCourseCodeExists
		}
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}
	return course, nil
}

// ════════════════════════════════════════════════════════════
// 选课
// ════════════════════════════════════════════════════════════

func (s *courseService) Enroll(ctx context.Context, userID, courseID string) (*model.Enrollment, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	enrollment := &model.Enrollment{
		UserID:         userID,
		CourseID:       course.CourseID,
		EnrollmentDate: s.now(),
		Status:         model.EnrollmentActive,
	}
	// 重复选课由 (user_id, course_id) 唯一索引拦截
	if err := s.repo.Enrollment.Create(ctx, enrollment); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyEnrolled
		}
		s.logger.Error("选课失败", zap.Error(err))
		return nil, err
	}
	enrollment.Course = course
	return enrollment, nil
}

func (s *courseService) ListEnrollments(ctx context.Context, userID string) ([]model.Enrollment, error) {
	enrollments, err := s.repo.Enrollment.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	return enrollments, nil
}

// ════════════════════════════════════════════════════════════
// 课程时段
// ════════════════════════════════════════════════════════════

func (s *courseService) Timetable(ctx context.Context, userID string) ([]model.TimetableSlot, error) {
	ids, err := s.repo.Enrollment.ActiveCourseIDs(ctx, userID)
	if err != nil {
		s.logger.Error("查询在读课程失败", zap.Error(err))
		return nil, err
	}
	slots, err := s.repo.Slot.ListByCourses(ctx, ids)
	if err != nil {
		s.logger.Error("查询课程时段失败", zap.Error(err))
		return nil, err
	}
	return slots, nil
}

func (s *courseService) CreateSlot(ctx context.Context, courseID string, req *dto.CreateSlotRequest) (*model.TimetableSlot, error) {
	// 小时允许一位，按时刻比较并统一存为 HH:MM
	start, okStart := parseClock(req.StartTime)
	end, okEnd := parseClock(req.EndTime)
	if !okStart || !okEnd || !end.After(start) {
		return nil, ErrSlotTimeRange
	}
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	slotType := req.SlotType
	if slotType == "" {
		slotType = model.ClassTypeLecture
	}
	slot := &model.TimetableSlot{
		CourseID:  courseID,
		DayOfWeek: *req.DayOfWeek,
		StartTime: start.Format(clockLayout),
		EndTime:   end.Format(clockLayout),
		Room:      req.Room,
		SlotType:  slotType,
	}
	if err := s.repo.Slot.Create(ctx, slot); err != nil {
		s.logger.Error("创建课程时段失败", zap.Error(err))
		return nil, err
	}
	return slot, nil
}

// ════════════════════════════════════════════════════════════
// 作业
// ════════════════════════════════════════════════════════════

func (s *courseService) ListAssignments(ctx context.Context, userID string) ([]model.Assignment, error) {
	ids, err := s.repo.Enrollment.ActiveCourseIDs(ctx, userID)
	if err != nil {
		s.logger.Error("查询在读课程失败", zap.Error(err))
		return nil, err
	}
	assignments, err := s.repo.Assignment.ListByCourses(ctx, ids)
	if err != nil {
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}
	return assignments, nil
}

func (s *courseService) CreateAssignment(ctx context.Context, courseID string, req *dto.CreateAssignmentRequest) (*model.Assignment, error) {
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		return nil, ErrInvalidDueDate
	}
	if _, err := s.repo.Course.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}

	points := req.TotalPoints
	if points == 0 {
		points = 100
	}
	kind := req.AssignmentType
	if kind == "" {
		kind = "homework"
	}
	assignment := &model.Assignment{
		CourseID:       courseID,
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		DueDate:        due,
		TotalPoints:    points,
		AssignmentType: kind,
	}
	if err := s.repo.Assignment.Create(ctx, assignment); err != nil {
		s.logger.Error("布置作业失败", zap.Error(err))
		return nil, err
	}
	return assignment, nil
}

func (s *courseService) Submit(ctx context.Context, userID, assignmentID string, req *dto.SubmitAssignmentRequest) (*model.Submission, error) {
	if _, err := s.repo.Assignment.GetByID(ctx, assignmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询作业失败", zap.Error(err))
		return nil, err
	}

	submission := &model.Submission{
		AssignmentID:   assignmentID,
		UserID:         userID,
		SubmissionText: req.SubmissionText,
		FileURL:        req.FileURL,
		SubmittedAt:    s.now(),
		Status:         model.SubmissionSubmitted,
	}
	if err := s.repo.Submission.Create(ctx, submission); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadySubmitted
		}
		s.logger.Error("提交作业失败", zap.Error(err))
		return nil, err
	}
	return submission, nil
}

// parseDueDate 支持 RFC3339 与 YYYY-MM-DD（当天 23:59:59 UTC）
func parseDueDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Second), nil
}
