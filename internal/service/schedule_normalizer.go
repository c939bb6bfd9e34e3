package service

import (
	"sort"
	"strings"
	"time"

	"educareer/backend/internal/model"
)

var weekdayIndex = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// normalizeSchedule 按星期名分组（首次出现顺序），每天按 HH:MM 稳定排序
func normalizeSchedule(rows []classRow, today time.Time) []model.DaySchedule {
	index := make(map[string]int)
	days := make([]model.DaySchedule, 0)

	for _, r := range rows {
		i, ok := index[r.day]
		if !ok {
			i = len(days)
			index[r.day] = i
			days = append(days, model.DaySchedule{
				Day:     r.day,
				Date:    dateForWeekday(r.day, today),
				Classes: []model.ClassSlot{},
			})
		}
		slot := r.slot
		slot.Time = canonicalClock(slot.Time)
		days[i].Classes = append(days[i].Classes, slot)
	}

	for i := range days {
		sortClasses(days[i].Classes)
	}
	return days
}

// sortClasses 按 HH:MM 稳定排序；时间须已规整为零填充格式
func sortClasses(classes []model.ClassSlot) {
	sort.SliceStable(classes, func(a, b int) bool {
		return classes[a].Time < classes[b].Time
	})
}

// clockLayout 课表时间统一为零填充的 24 小时制
const clockLayout = "15:04"

// parseClock 解析 H:MM 或 HH:MM
func parseClock(s string) (time.Time, bool) {
	t, err := time.Parse(clockLayout, strings.TrimSpace(s))
	return t, err == nil
}

// canonicalClock 9:05 → 09:05；无法解析时原样返回
func canonicalClock(s string) string {
	if t, ok := parseClock(s); ok {
		return t.Format(clockLayout)
	}
	return s
}

// normalizeClassSlot 客户端直接提交的课程补齐与文件导入一致的默认值
func normalizeClassSlot(c model.ClassSlot) model.ClassSlot {
	c.Subject = orDefault(strings.TrimSpace(c.Subject), "Unknown Subject")
	c.Professor = orDefault(strings.TrimSpace(c.Professor), "TBA")
	c.Room = orDefault(strings.TrimSpace(c.Room), "TBA")
	c.Time = canonicalClock(c.Time)
	if c.Duration <= 0 {
		c.Duration = 60
	}
	c.Type = orDefault(strings.ToLower(strings.TrimSpace(c.Type)), model.ClassTypeLecture)
	c.Difficulty = orDefault(strings.ToLower(strings.TrimSpace(c.Difficulty)), model.DifficultyMedium)
	return c
}

// dateForWeekday today 起 7 天内该星期几对应的日期（YYYY-MM-DD），未知星期名按周一
func dateForWeekday(day string, today time.Time) string {
	target, ok := weekdayIndex[strings.ToLower(strings.TrimSpace(day))]
	if !ok {
		target = time.Monday
	}
	offset := (int(target) - int(today.Weekday()) + 7) % 7
	return today.AddDate(0, 0, offset).Format("2006-01-02")
}

// deriveCourses 课表中出现过的课程名，去重并保持首次出现顺序
func deriveCourses(timetable []model.DaySchedule) []string {
	seen := make(map[string]bool)
	courses := make([]string, 0)
	for _, day := range timetable {
		for _, c := range day.Classes {
			name := strings.TrimSpace(c.Subject)
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			courses = append(courses, name)
		}
	}
	return courses
}

func countClasses(timetable []model.DaySchedule) int {
	n := 0
	for _, day := range timetable {
		n += len(day.Classes)
	}
	return n
}
