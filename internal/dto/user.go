package dto

import "educareer/backend/internal/model"

// ── 用户模块 DTO ──

// UpdateProfileRequest 更新个人资料（字段均可选，nil 表示不修改）
type UpdateProfileRequest struct {
	FirstName         *string   `json:"first_name"          binding:"omitempty,max=100"`
	LastName          *string   `json:"last_name"           binding:"omitempty,max=100"`
	Bio               *string   `json:"bio"                 binding:"omitempty,max=2000"`
	Company           *string   `json:"company"             binding:"omitempty,max=200"`
	DateOfBirth       *string   `json:"date_of_birth"       binding:"omitempty,datetime=2006-01-02"`
	ExperienceLevel   *string   `json:"experience_level"    binding:"omitempty,max=50"`
	Location          *string   `json:"location"            binding:"omitempty,max=200"`
	Occupation        *string   `json:"occupation"          binding:"omitempty,max=200"`
	Phone             *string   `json:"phone"               binding:"omitempty,max=30"`
	PreferredWorkType *string   `json:"preferred_work_type" binding:"omitempty,max=50"`
	Skills            *[]string `json:"skills"              binding:"omitempty,max=50,dive,max=100"`

	StudentID         *string  `json:"student_id"         binding:"omitempty,max=50"`
	RollNumber        *string  `json:"roll_number"        binding:"omitempty,max=50"`
	InstitutionName   *string  `json:"institution_name"   binding:"omitempty,max=200"`
	Department        *string  `json:"department"         binding:"omitempty,max=200"`
	Branch            *string  `json:"branch"             binding:"omitempty,max=200"`
	CurrentYear       *int     `json:"current_year"       binding:"omitempty,min=1,max=5"`
	CurrentSemester   *int     `json:"current_semester"   binding:"omitempty,min=1,max=10"`
	CGPA              *float64 `json:"cgpa"               binding:"omitempty,min=0,max=10"`
	CurrentPercentage *float64 `json:"current_percentage" binding:"omitempty,min=0,max=100"`

	WhatsAppNumber *string `json:"whatsapp_number" binding:"omitempty,max=30"`
	LinkedIn       *string `json:"linkedin"        binding:"omitempty,max=255"`
	GitHub         *string `json:"github"          binding:"omitempty,max=255"`
}

// SaveTimetableRequest 保存课表；courses 由服务端从 timetable 派生
type SaveTimetableRequest struct {
	Timetable []model.DaySchedule `json:"timetable" binding:"required,dive"`
}
