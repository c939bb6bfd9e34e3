package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Course       CourseRepository
	Enrollment   EnrollmentRepository
	Slot         TimetableSlotRepository
	Assignment   AssignmentRepository
	Submission   SubmissionRepository
	Job          JobRepository
	Application  ApplicationRepository
	Resume       ResumeRepository
	Notification NotificationRepository
	Preference   PreferenceRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Course:       NewCourseRepo(db),
		Enrollment:   NewEnrollmentRepo(db),
		Slot:         NewTimetableSlotRepo(db),
		Assignment:   NewAssignmentRepo(db),
		Submission:   NewSubmissionRepo(db),
		Job:          NewJobRepo(db),
		Application:  NewApplicationRepo(db),
		Resume:       NewResumeRepo(db),
		Notification: NewNotificationRepo(db),
		Preference:   NewPreferenceRepo(db),
	}
}
