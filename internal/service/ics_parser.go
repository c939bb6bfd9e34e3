package service

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"

	"educareer/backend/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 课表转为课表行：
//   - DTSTART 确定星期几与上课时间，DTEND - DTSTART 为时长（缺失按 60 分钟）
//   - SUMMARY → 课程名，LOCATION → 教室
//   - DESCRIPTION 中的 "Professor: / Type: / Difficulty:" 行由导出写入，导入时读回
//   - 重复规则不展开；同名同星期同时间的多个实例只保留一节
// ─────────────────────────────────────────────────────────────

// ErrICSParseFailed ICS 内容无法解析
var ErrICSParseFailed = errors.New("Failed to parse ICS file")

type icsSlotKey struct {
	subject string
	day     string
	time    string
}

func parseTimetableICS(reader io.Reader) ([]classRow, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrICSParseFailed, err)
	}

	var rows []classRow
	seen := make(map[icsSlotKey]bool)
	for _, evt := range cal.Events() {
		row, ok := parseVEvent(evt, time.Local)
		if !ok {
			continue
		}
		k := icsSlotKey{subject: row.slot.Subject, day: row.day, time: row.slot.Time}
		if seen[k] {
			continue
		}
		seen[k] = true
		row.slot.ID = fmt.Sprintf("ics-%d", len(rows)+1)
		rows = append(rows, row)
	}
	return rows, nil
}

// parseVEvent 解析单个 VEVENT，无标题或无开始时间的事件跳过
func parseVEvent(evt *ics.VEvent, loc *time.Location) (classRow, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return classRow{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return classRow{}, false
	}
	duration := 60
	if dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc); err == nil {
		if mins := int(dtEnd.Sub(dtStart).Minutes()); mins > 0 {
			duration = mins
		}
	}

	slot := model.ClassSlot{
		Subject:    strings.TrimSpace(summary.Value),
		Professor:  "TBA",
		Room:       "TBA",
		Time:       dtStart.Format("15:04"),
		Duration:   duration,
		Type:       model.ClassTypeLecture,
		Difficulty: model.DifficultyMedium,
	}
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil && strings.TrimSpace(p.Value) != "" {
		slot.Room = strings.TrimSpace(p.Value)
	}
	if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		applyICSDescription(&slot, p.Value)
	}

	return classRow{day: dtStart.Weekday().String(), slot: slot}, true
}

// applyICSDescription 读回导出时写入的 "Key: Value" 行
func applyICSDescription(slot *model.ClassSlot, desc string) {
	for _, line := range strings.Split(desc, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "professor":
			slot.Professor = value
		case "type":
			slot.Type = strings.ToLower(value)
		case "difficulty":
			slot.Difficulty = strings.ToLower(value)
		}
	}
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
//
// UTC 时间转换到 loc；带 TZID 的按该时区解释后转换到 loc；浮动时间按墙上时间解释。
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}

	tzid := ""
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			tzid = v[0]
		}
	}

	for _, layout := range formats {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}

	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
