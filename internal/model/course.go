package model

import (
	"time"

	"gorm.io/gorm"
)

// 选课状态
const (
	EnrollmentActive    = "active"
	EnrollmentCompleted = "completed"
	EnrollmentDropped   = "dropped"
	EnrollmentWithdrawn = "withdrawn"
)

// 作业提交状态
const (
	SubmissionDraft     = "draft"
	SubmissionSubmitted = "submitted"
	SubmissionGraded    = "graded"
	SubmissionReturned  = "returned"
)

// Course 课程目录 — 对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey"                       json:"course_id"`
	Name        string `gorm:"type:varchar(200);not null"                 json:"name"`
	Code        string `gorm:"type:varchar(50);not null;uniqueIndex"      json:"code"`
	Description string `gorm:"type:text;not null;default:''"              json:"description"`
	Credits     int    `gorm:"type:smallint;not null;default:3"           json:"credits"`
	Department  string `gorm:"type:varchar(200);not null"                 json:"department"`
	Instructor  string `gorm:"type:varchar(200);not null"                 json:"instructor"`
	Semester    string `gorm:"type:varchar(50);not null"                  json:"semester"`
	Year        int    `gorm:"type:smallint;not null"                     json:"year"`
	BaseModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// BeforeCreate 生成主键
func (c *Course) BeforeCreate(*gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// Enrollment 选课记录 — 对应 enrollments，(user_id, course_id) 唯一
type Enrollment struct {
	EnrollmentID   string    `gorm:"type:uuid;primaryKey"                                json:"enrollment_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uk_enrollment_user_course" json:"user_id"`
	CourseID       string    `gorm:"type:uuid;not null;uniqueIndex:uk_enrollment_user_course" json:"course_id"`
	EnrollmentDate time.Time `gorm:"not null"                                            json:"enrollment_date"`
	Status         string    `gorm:"type:varchar(20);not null;default:'active'"          json:"status"`
	Grade          string    `gorm:"type:varchar(10);not null;default:''"                json:"grade"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// BeforeCreate 生成主键
func (e *Enrollment) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EnrollmentID)
	return nil
}

// TimetableSlot 课程固定上课时段 — 对应 timetable_slots
type TimetableSlot struct {
	SlotID    string `gorm:"type:uuid;primaryKey"                        json:"slot_id"`
	CourseID  string `gorm:"type:uuid;not null;index"                    json:"course_id"`
	DayOfWeek int    `gorm:"type:smallint;not null"                      json:"day_of_week"` // 0=Sunday … 6=Saturday
	StartTime string `gorm:"type:varchar(5);not null"                    json:"start_time"`
	EndTime   string `gorm:"type:varchar(5);not null"                    json:"end_time"`
	Room      string `gorm:"type:varchar(100);not null;default:''"       json:"room"`
	SlotType  string `gorm:"type:varchar(20);not null;default:'lecture'" json:"slot_type"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (TimetableSlot) TableName() string { return "timetable_slots" }

// BeforeCreate 生成主键
func (s *TimetableSlot) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SlotID)
	return nil
}

// Assignment 作业 — 对应 assignments
type Assignment struct {
	AssignmentID   string    `gorm:"type:uuid;primaryKey"                         json:"assignment_id"`
	CourseID       string    `gorm:"type:uuid;not null;index"                     json:"course_id"`
	Title          string    `gorm:"type:varchar(200);not null"                   json:"title"`
	Description    string    `gorm:"type:text;not null;default:''"                json:"description"`
	DueDate        time.Time `gorm:"not null"                                     json:"due_date"`
	TotalPoints    int       `gorm:"not null;default:100"                         json:"total_points"`
	AssignmentType string    `gorm:"type:varchar(20);not null;default:'homework'" json:"assignment_type"`
	BaseModel

	// 关联
	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// BeforeCreate 生成主键
func (a *Assignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// Submission 作业提交 — 对应 submissions，(assignment_id, user_id) 唯一
type Submission struct {
	SubmissionID   string    `gorm:"type:uuid;primaryKey"                                        json:"submission_id"`
	AssignmentID   string    `gorm:"type:uuid;not null;uniqueIndex:uk_submission_assignment_user" json:"assignment_id"`
	UserID         string    `gorm:"type:uuid;not null;uniqueIndex:uk_submission_assignment_user" json:"user_id"`
	SubmissionText string    `gorm:"type:text;not null;default:''"                               json:"submission_text"`
	FileURL        string    `gorm:"column:file_url;type:varchar(500);not null;default:''"      json:"file_url"`
	SubmittedAt    time.Time `gorm:"not null"                                                    json:"submitted_at"`
	PointsEarned   *int      `json:"points_earned,omitempty"`
	Feedback       string    `gorm:"type:text;not null;default:''"                               json:"feedback"`
	Status         string    `gorm:"type:varchar(20);not null;default:'submitted'"               json:"status"`
	BaseModel
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// BeforeCreate 生成主键
func (s *Submission) BeforeCreate(*gorm.DB) error {
	ensureID(&s.SubmissionID)
	return nil
}
