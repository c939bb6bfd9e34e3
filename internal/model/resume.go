package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ── 简历各板块的强类型条目 ──

// EducationEntry 教育经历
type EducationEntry struct {
	ID          string `json:"id"`
	Institution string `json:"institution" binding:"required"`
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	GPA         string `json:"gpa"`
	Description string `json:"description"`
}

// ExperienceEntry 工作 / 实习经历
type ExperienceEntry struct {
	ID          string `json:"id"`
	Company     string `json:"company"  binding:"required"`
	Position    string `json:"position" binding:"required"`
	Location    string `json:"location"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// SkillEntry 技能
type SkillEntry struct {
	ID    string `json:"id"`
	Name  string `json:"name"  binding:"required"`
	Level string `json:"level" binding:"omitempty,oneof=Beginner Intermediate Advanced"`
}

// ProjectEntry 项目
type ProjectEntry struct {
	ID           string   `json:"id"`
	Title        string   `json:"title" binding:"required"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link"`
}

// CertificationEntry 证书
type CertificationEntry struct {
	ID     string `json:"id"`
	Name   string `json:"name" binding:"required"`
	Issuer string `json:"issuer"`
	Date   string `json:"date"`
}

// LanguageEntry 语言能力
type LanguageEntry struct {
	Name        string `json:"name" binding:"required"`
	Proficiency string `json:"proficiency"`
}

// Resume 简历 — 对应 resumes
type Resume struct {
	ResumeID       string                                  `gorm:"type:uuid;primaryKey"                            json:"resume_id"`
	UserID         string                                  `gorm:"type:uuid;not null;index"                        json:"user_id"`
	Title          string                                  `gorm:"type:varchar(200);not null;default:'My Resume'"  json:"title"`
	Summary        string                                  `gorm:"type:text;not null;default:''"                   json:"summary"`
	Education      datatypes.JSONSlice[EducationEntry]     `gorm:"not null;default:'[]'"                           json:"education"`
	Experience     datatypes.JSONSlice[ExperienceEntry]    `gorm:"not null;default:'[]'"                           json:"experience"`
	Skills         datatypes.JSONSlice[SkillEntry]         `gorm:"not null;default:'[]'"                           json:"skills"`
	Projects       datatypes.JSONSlice[ProjectEntry]       `gorm:"not null;default:'[]'"                           json:"projects"`
	Certifications datatypes.JSONSlice[CertificationEntry] `gorm:"not null;default:'[]'"                           json:"certifications"`
	Languages      datatypes.JSONSlice[LanguageEntry]      `gorm:"not null;default:'[]'"                           json:"languages"`
	IsDefault      bool                                    `gorm:"not null;default:false"                          json:"is_default"`
	VersionedModel
}

// TableName 指定表名
func (Resume) TableName() string { return "resumes" }

// BeforeCreate 生成主键
func (r *Resume) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ResumeID)
	return nil
}
