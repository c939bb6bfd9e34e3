package model

// ── 课表（存于 users.timetable 的强类型 JSON） ──

// 课程类型
const (
	ClassTypeLecture  = "lecture"
	ClassTypeLab      = "lab"
	ClassTypeTutorial = "tutorial"
	ClassTypeSeminar  = "seminar"
)

// 课程难度
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// ClassSlot 单节课。解析时生成，写入课表后不再修改
type ClassSlot struct {
	ID         string `json:"id"`
	Subject    string `json:"subject"    binding:"required"`
	Professor  string `json:"professor"`
	Room       string `json:"room"`
	Time       string `json:"time"       binding:"required,hhmm"`                                  // HH:MM
	Duration   int    `json:"duration"   binding:"min=0"`                                          // 分钟，0 视为 60
	Type       string `json:"type"       binding:"omitempty,oneof=lecture lab tutorial seminar"`
	Difficulty string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// DaySchedule 某个星期几的课程（按 Time 升序）
type DaySchedule struct {
	Day     string      `json:"day"     binding:"required,weekday"`
	Date    string      `json:"date"`
	Classes []ClassSlot `json:"classes" binding:"dive"`
}

// CertificationRecommendation 由课程名派生的认证推荐，不落库
type CertificationRecommendation struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Provider         string   `json:"provider"`
	Duration         string   `json:"duration"`
	Difficulty       string   `json:"difficulty"`
	RelevantSubjects []string `json:"relevant_subjects"`
	Priority         string   `json:"priority"`
}
