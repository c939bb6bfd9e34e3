package dto

import "educareer/backend/internal/model"

// ── 职位 / 简历模块 DTO ──

// JobListRequest 职位列表查询
type JobListRequest struct {
	PaginationRequest
	JobType  string `form:"job_type" binding:"omitempty,oneof=full-time part-time internship contract remote"`
	Location string `form:"location" binding:"omitempty,max=200"`
	Keyword  string `form:"keyword"  binding:"omitempty,max=100"`
}

// CreateJobRequest 发布职位
type CreateJobRequest struct {
	Title               string   `json:"title"                binding:"required,max=200"`
	Company             string   `json:"company"              binding:"required,max=200"`
	Description         string   `json:"description"          binding:"required"`
	Requirements        []string `json:"requirements"         binding:"omitempty,max=50,dive,max=500"`
	Location            string   `json:"location"             binding:"required,max=200"`
	JobType             string   `json:"job_type"             binding:"required,oneof=full-time part-time internship contract remote"`
	SalaryRange         string   `json:"salary_range"         binding:"omitempty,max=100"`
	ApplicationDeadline string   `json:"application_deadline" binding:"omitempty,datetime=2006-01-02"`
	ApplicationURL      string   `json:"application_url"      binding:"omitempty,url,max=500"`
	ContactEmail        string   `json:"contact_email"        binding:"omitempty,email"`
}

// ApplyJobRequest 投递职位
type ApplyJobRequest struct {
	CoverLetter string `json:"cover_letter" binding:"omitempty,max=10000"`
	ResumeURL   string `json:"resume_url"   binding:"omitempty,url,max=500"`
}

// ResumeRequest 新建 / 更新简历；更新时 Version 必填（乐观锁）
type ResumeRequest struct {
	Title          string                     `json:"title"          binding:"omitempty,max=200"`
	Summary        string                     `json:"summary"        binding:"omitempty,max=5000"`
	Education      []model.EducationEntry     `json:"education"      binding:"omitempty,dive"`
	Experience     []model.ExperienceEntry    `json:"experience"     binding:"omitempty,dive"`
	Skills         []model.SkillEntry         `json:"skills"         binding:"omitempty,dive"`
	Projects       []model.ProjectEntry       `json:"projects"       binding:"omitempty,dive"`
	Certifications []model.CertificationEntry `json:"certifications" binding:"omitempty,dive"`
	Languages      []model.LanguageEntry      `json:"languages"      binding:"omitempty,dive"`
	IsDefault      *bool                      `json:"is_default"`
	Version        int                        `json:"version"        binding:"omitempty,min=1"`
}
