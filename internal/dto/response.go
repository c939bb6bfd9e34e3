package dto

import "educareer/backend/internal/model"

// ── 认证模块响应 ──

// AuthResponse 注册 / 登录响应
type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // 秒
	User      UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息（不含密码哈希）
type UserResponse struct {
	ID                string   `json:"id"`
	Email             string   `json:"email"`
	FirstName         string   `json:"first_name"`
	LastName          string   `json:"last_name"`
	Bio               string   `json:"bio"`
	Company           string   `json:"company"`
	DateOfBirth       string   `json:"date_of_birth,omitempty"`
	ExperienceLevel   string   `json:"experience_level"`
	Location          string   `json:"location"`
	Occupation        string   `json:"occupation"`
	Phone             string   `json:"phone"`
	PreferredWorkType string   `json:"preferred_work_type"`
	Skills            []string `json:"skills"`

	StudentID         string   `json:"student_id"`
	RollNumber        string   `json:"roll_number"`
	InstitutionName   string   `json:"institution_name"`
	Department        string   `json:"department"`
	Branch            string   `json:"branch"`
	CurrentYear       *int     `json:"current_year,omitempty"`
	CurrentSemester   *int     `json:"current_semester,omitempty"`
	CGPA              *float64 `json:"cgpa,omitempty"`
	CurrentPercentage *float64 `json:"current_percentage,omitempty"`

	WhatsAppNumber string `json:"whatsapp_number"`
	LinkedIn       string `json:"linkedin"`
	GitHub         string `json:"github"`

	Courses   []string `json:"courses"`
	CreatedAt string   `json:"created_at"`
}

// NewUserResponse 由 model.User 构造响应
func NewUserResponse(u *model.User) UserResponse {
	resp := UserResponse{
		ID:                u.UserID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		Bio:               u.Bio,
		Company:           u.Company,
		ExperienceLevel:   u.ExperienceLevel,
		Location:          u.Location,
		Occupation:        u.Occupation,
		Phone:             u.Phone,
		PreferredWorkType: u.PreferredWorkType,
		Skills:            nonNil(u.Skills),
		StudentID:         u.StudentID,
		RollNumber:        u.RollNumber,
		InstitutionName:   u.InstitutionName,
		Department:        u.Department,
		Branch:            u.Branch,
		CurrentYear:       u.CurrentYear,
		CurrentSemester:   u.CurrentSemester,
		CGPA:              u.CGPA,
		CurrentPercentage: u.CurrentPercentage,
		WhatsAppNumber:    u.WhatsAppNumber,
		LinkedIn:          u.LinkedIn,
		GitHub:            u.GitHub,
		Courses:           nonNil(u.Courses),
		CreatedAt:         u.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if u.DateOfBirth != nil {
		resp.DateOfBirth = u.DateOfBirth.Format("2006-01-02")
	}
	return resp
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ProfileStrengthResponse 资料完整度
type ProfileStrengthResponse struct {
	Strength      int      `json:"strength"`      // 0-100
	Completeness  int      `json:"completeness"`  // 0-100
	MissingFields []string `json:"missing_fields"`
}

// DashboardResponse 首页汇总
type DashboardResponse struct {
	ProfileStrength     int   `json:"profile_strength"`
	ActiveEnrollments   int64 `json:"active_enrollments"`
	Applications        int64 `json:"applications"`
	UnreadNotifications int64 `json:"unread_notifications"`
	TimetableCourses    int   `json:"timetable_courses"`
	Certifications      int   `json:"certifications"`
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 20
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
