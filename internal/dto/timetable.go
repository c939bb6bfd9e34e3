package dto

import "educareer/backend/internal/model"

// ── 课表模块 DTO ──

// 课表来源
const (
	TimetableSourceCSV = "csv"
	TimetableSourceAI  = "ai"
	TimetableSourceICS = "ics"
)

// ExportTimetableRequest 导出格式
type ExportTimetableRequest struct {
	Format string `form:"format" binding:"omitempty,oneof=csv xlsx ics"`
}

// TimetableResponse 已保存的课表
type TimetableResponse struct {
	Timetable []model.DaySchedule `json:"timetable"`
	Courses   []string            `json:"courses"`
}

// ParseTimetableResponse 上传文件的解析预览（未保存）
type ParseTimetableResponse struct {
	Source       string              `json:"source"`
	TotalClasses int                 `json:"total_classes"`
	Timetable    []model.DaySchedule `json:"timetable"`
}

// UploadTimetableResponse 解析并保存
type UploadTimetableResponse struct {
	Source       string              `json:"source"`
	TotalClasses int                 `json:"total_classes"`
	Timetable    []model.DaySchedule `json:"timetable"`
	Courses      []string            `json:"courses"`
}

// RecommendationsResponse 外部推荐缓存
type RecommendationsResponse struct {
	Courses              []map[string]any `json:"courses"`
	Jobs                 []map[string]any `json:"jobs"`
	UserKeywords         []string         `json:"user_keywords"`
	TotalRecommendations int              `json:"total_recommendations"`
	Cached               bool             `json:"cached"`
}
