package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// 职位类型
const (
	JobTypeFullTime   = "full-time"
	JobTypePartTime   = "part-time"
	JobTypeInternship = "internship"
	JobTypeContract   = "contract"
	JobTypeRemote     = "remote"
)

// 投递状态
const (
	ApplicationApplied            = "applied"
	ApplicationUnderReview        = "under_review"
	ApplicationInterviewScheduled = "interview_scheduled"
	ApplicationRejected           = "rejected"
	ApplicationAccepted           = "accepted"
)

// JobOpportunity 职位 — 对应 job_opportunities
type JobOpportunity struct {
	JobID               string                      `gorm:"type:uuid;primaryKey"                   json:"job_id"`
	Title               string                      `gorm:"type:varchar(200);not null"             json:"title"`
	Company             string                      `gorm:"type:varchar(200);not null"             json:"company"`
	Description         string                      `gorm:"type:text;not null"                     json:"description"`
	Requirements        datatypes.JSONSlice[string] `gorm:"not null;default:'[]'"                  json:"requirements"`
	Location            string                      `gorm:"type:varchar(200);not null"             json:"location"`
	JobType             string                      `gorm:"type:varchar(20);not null"              json:"job_type"`
	SalaryRange         string                      `gorm:"type:varchar(100);not null;default:''"  json:"salary_range"`
	ApplicationDeadline *time.Time                  `json:"application_deadline,omitempty"`
	ApplicationURL      string                      `gorm:"column:application_url;type:varchar(500);not null;default:''" json:"application_url"`
	ContactEmail        string                      `gorm:"type:varchar(255);not null;default:''"  json:"contact_email"`
	IsActive            bool                        `gorm:"not null"                               json:"is_active"`
	PostedBy            *string                     `gorm:"type:uuid"                              json:"posted_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (JobOpportunity) TableName() string { return "job_opportunities" }

// BeforeCreate 生成主键
func (j *JobOpportunity) BeforeCreate(*gorm.DB) error {
	ensureID(&j.JobID)
	return nil
}

// JobApplication 职位投递 — 对应 job_applications，(user_id, job_id) 唯一
type JobApplication struct {
	ApplicationID string    `gorm:"type:uuid;primaryKey"                                    json:"application_id"`
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex:uk_application_user_job"  json:"user_id"`
	JobID         string    `gorm:"type:uuid;not null;uniqueIndex:uk_application_user_job"  json:"job_id"`
	CoverLetter   string    `gorm:"type:text;not null;default:''"                           json:"cover_letter"`
	ResumeURL     string    `gorm:"column:resume_url;type:varchar(500);not null;default:''" json:"resume_url"`
	Status        string    `gorm:"type:varchar(30);not null;default:'applied'"             json:"status"`
	AppliedAt     time.Time `gorm:"not null"                                                json:"applied_at"`
	Notes         string    `gorm:"type:text;not null;default:''"                           json:"notes"`
	BaseModel

	// 关联
	Job *JobOpportunity `gorm:"foreignKey:JobID;references:JobID" json:"job,omitempty"`
}

// TableName 指定表名
func (JobApplication) TableName() string { return "job_applications" }

// BeforeCreate 生成主键
func (a *JobApplication) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ApplicationID)
	return nil
}
