package dto

// ── 课程模块 DTO ──

// CourseListRequest 课程目录查询
type CourseListRequest struct {
	PaginationRequest
	Department string `form:"department" binding:"omitempty,max=200"`
	Semester   string `form:"semester"   binding:"omitempty,max=50"`
	Keyword    string `form:"keyword"    binding:"omitempty,max=100"`
}

// CreateCourseRequest 新建课程
type CreateCourseRequest struct {
	Name        string `json:"name"        binding:"required,max=200"`
	Code        string `json:"code"        binding:"required,max=50"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	Credits     int    `json:"credits"     binding:"omitempty,min=1,max=10"`
	Department  string `json:"department"  binding:"required,max=200"`
	Instructor  string `json:"instructor"  binding:"required,max=200"`
	Semester    string `json:"semester"    binding:"required,max=50"`
	Year        int    `json:"year"        binding:"required,min=2000,max=2100"`
}

// EnrollRequest 选课
type EnrollRequest struct {
	CourseID string `json:"course_id" binding:"required,uuid"`
}

// CreateSlotRequest 新增课程时段
type CreateSlotRequest struct {
	DayOfWeek *int   `json:"day_of_week" binding:"required,min=0,max=6"`
	StartTime string `json:"start_time"  binding:"required,hhmm"`
	EndTime   string `json:"end_time"    binding:"required,hhmm"`
	Room      string `json:"room"        binding:"omitempty,max=100"`
	SlotType  string `json:"slot_type"   binding:"omitempty,oneof=lecture lab tutorial seminar"`
}

// CreateAssignmentRequest 布置作业
type CreateAssignmentRequest struct {
	Title          string `json:"title"           binding:"required,max=200"`
	Description    string `json:"description"     binding:"omitempty,max=10000"`
	DueDate        string `json:"due_date"        binding:"required"` // RFC3339 或 YYYY-MM-DD
	TotalPoints    int    `json:"total_points"    binding:"omitempty,min=1,max=1000"`
	AssignmentType string `json:"assignment_type" binding:"omitempty,oneof=homework quiz exam project lab"`
}

// SubmitAssignmentRequest 提交作业
type SubmitAssignmentRequest struct {
	SubmissionText string `json:"submission_text" binding:"required_without=FileURL,max=20000"`
	FileURL        string `json:"file_url"        binding:"omitempty,url,max=500"`
}
