package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/pkg/aiclient"
)

// ════════════════════════════════════════════════════════════
// CSV 解析
// ════════════════════════════════════════════════════════════

func TestParseTimetableCSV_AppliesDefaults(t *testing.T) {
	rows, err := parseTimetableCSV([]byte("Day,Subject,Time\nMonday,CS101,09:00\n"))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("期望 1 行，实际 %d 行", len(rows))
	}

	r := rows[0]
	if r.day != "Monday" {
		t.Errorf("期望 day=Monday，实际 %s", r.day)
	}
	want := model.ClassSlot{
		ID:         "1",
		Subject:    "CS101",
		Professor:  "TBA",
		Room:       "TBA",
		Time:       "09:00",
		Duration:   60,
		Type:       "lecture",
		Difficulty: "medium",
	}
	if r.slot != want {
		t.Errorf("期望 %+v，实际 %+v", want, r.slot)
	}
}

func TestParseTimetableCSV_FullRowsAndHeaderCase(t *testing.T) {
	content := "\ufeff DAY , Subject,Professor,Room,TIME,Duration,Type,Difficulty\r\n" +
		"Tuesday,Data Structures,Dr. Smith,Room 101,10:30,90,LAB,Hard\r\n" +
		"\r\n" +
		"Tuesday,Networks,,,08:00,abc,,\r\n"

	rows, err := parseTimetableCSV([]byte(content))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d 行", len(rows))
	}

	ds := rows[0].slot
	if ds.Professor != "Dr. Smith" || ds.Room != "Room 101" || ds.Duration != 90 {
		t.Errorf("可选列未正确读取: %+v", ds)
	}
	if ds.Type != "lab" || ds.Difficulty != "hard" {
		t.Errorf("type/difficulty 应转小写，实际 %s/%s", ds.Type, ds.Difficulty)
	}

	nw := rows[1].slot
	if nw.Professor != "TBA" || nw.Room != "TBA" {
		t.Errorf("空字段应取默认值 TBA，实际 %s/%s", nw.Professor, nw.Room)
	}
	if nw.Duration != 60 {
		t.Errorf("非法 duration 应取 60，实际 %d", nw.Duration)
	}
	if nw.ID != "2" {
		t.Errorf("行 ID 应忽略空行，期望 2，实际 %s", nw.ID)
	}
}

func TestParseTimetableCSV_DropsMismatchedRows(t *testing.T) {
	content := "day,subject,time\n" +
		"Monday,CS101\n" +
		"Monday,CS102,09:00,extra\n" +
		",CS103,11:00\n" +
		"Friday,CS104,13:00\n"

	rows, err := parseTimetableCSV([]byte(content))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("列数不符及 day 为空的行应丢弃，期望 1 行，实际 %d 行", len(rows))
	}
	if rows[0].slot.Subject != "CS104" {
		t.Errorf("期望 CS104，实际 %s", rows[0].slot.Subject)
	}
}

func TestParseTimetableCSV_QuotedFields(t *testing.T) {
	content := "Day,Subject,Room,Time\nWednesday,\"Algorithms, Part I\",\"Hall \"\"A\"\"\",14:00\n"

	rows, err := parseTimetableCSV([]byte(content))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("期望 1 行，实际 %d 行", len(rows))
	}
	if rows[0].slot.Subject != "Algorithms, Part I" {
		t.Errorf("引号内逗号不应拆分，实际 %q", rows[0].slot.Subject)
	}
	if rows[0].slot.Room != `Hall "A"` {
		t.Errorf("转义引号解析错误，实际 %q", rows[0].slot.Room)
	}
}

func TestParseTimetableCSV_MissingColumns(t *testing.T) {
	_, err := parseTimetableCSV([]byte("Day,Subject\nMonday,CS101\n"))
	if !errors.Is(err, ErrCSVMissingColumns) {
		t.Fatalf("期望 ErrCSVMissingColumns，实际: %v", err)
	}
	if !strings.Contains(err.Error(), "time") {
		t.Errorf("错误信息应列出缺失列，实际: %s", err.Error())
	}
}

func TestParseTimetableCSV_TooShort(t *testing.T) {
	cases := []string{"", "Day,Subject,Time\n", "\n\nDay,Subject,Time\n\n"}
	for _, c := range cases {
		if _, err := parseTimetableCSV([]byte(c)); !errors.Is(err, ErrCSVTooShort) {
			t.Errorf("输入 %q 期望 ErrCSVTooShort，实际: %v", c, err)
		}
	}
}

func TestParseDuration(t *testing.T) {
	cases := map[string]int{"": 60, "0": 60, "-5": 60, "1.5": 60, "x": 60, "45": 45, "120": 120}
	for in, want := range cases {
		if got := parseDuration(in); got != want {
			t.Errorf("parseDuration(%q) 期望 %d，实际 %d", in, want, got)
		}
	}
}

// ════════════════════════════════════════════════════════════
// 格式分派
// ════════════════════════════════════════════════════════════

func TestIngestFile_ExcelRejected(t *testing.T) {
	for _, name := range []string{"timetable.xlsx", "OLD.XLS"} {
		_, _, err := ingestFile(context.Background(), &fakeAI{}, name, []byte("PK"), "u1")
		if !errors.Is(err, ErrExcelUnsupported) {
			t.Errorf("%s 期望 ErrExcelUnsupported，实际: %v", name, err)
		}
	}
}

func TestIngestFile_UnsupportedFormat(t *testing.T) {
	for _, name := range []string{"notes.txt", "noext", "doc.docx"} {
		_, _, err := ingestFile(context.Background(), &fakeAI{}, name, []byte("x"), "u1")
		if !errors.Is(err, ErrUnsupportedFormat) {
			t.Errorf("%s 期望 ErrUnsupportedFormat，实际: %v", name, err)
		}
	}
}

func TestIngestFile_CSVSource(t *testing.T) {
	rows, source, err := ingestFile(context.Background(), nil, "My.CSV", []byte("day,subject,time\nMonday,CS101,09:00"), "u1")
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if source != dto.TimetableSourceCSV || len(rows) != 1 {
		t.Errorf("期望 source=csv 且 1 行，实际 %s / %d", source, len(rows))
	}
}

func TestIngestFile_AIExtraction(t *testing.T) {
	ai := &fakeAI{extracted: []aiclient.ExtractedCourse{
		{Name: "Linear Algebra", Days: []string{"Monday", "Thursday"}, Times: []string{"09:00"}, Confidence: 0.92},
		{Name: "", Days: nil, Times: nil, Confidence: 0.3},
	}}

	rows, source, err := ingestFile(context.Background(), ai, "scan.png", []byte{0x89, 'P', 'N', 'G'}, "u1")
	if err != nil {
		t.Fatalf("AI 解析失败: %v", err)
	}
	if source != dto.TimetableSourceAI {
		t.Errorf("期望 source=ai，实际 %s", source)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 3 行（2 天 + 1 默认周一），实际 %d", len(rows))
	}

	if rows[1].day != "Thursday" || rows[1].slot.Time != "09:00" {
		t.Errorf("缺失时间应回退到第一个时间，实际 %s %s", rows[1].day, rows[1].slot.Time)
	}
	if rows[0].slot.Difficulty != model.DifficultyMedium {
		t.Errorf("高置信度期望 medium，实际 %s", rows[0].slot.Difficulty)
	}
	if rows[0].slot.ID != "ai-0-0" || rows[1].slot.ID != "ai-0-1" {
		t.Errorf("ID 格式错误: %s %s", rows[0].slot.ID, rows[1].slot.ID)
	}

	unknown := rows[2]
	if unknown.day != "Monday" || unknown.slot.Subject != "Unknown Subject" || unknown.slot.Time != "09:00" {
		t.Errorf("空识别结果应取默认值，实际 %+v", unknown)
	}
	if unknown.slot.Difficulty != model.DifficultyEasy {
		t.Errorf("低置信度期望 easy，实际 %s", unknown.slot.Difficulty)
	}
}

func TestIngestFile_AIFailureWrapped(t *testing.T) {
	ai := &fakeAI{extractFn: func() error { return errors.New("connection refused") }}

	_, _, err := ingestFile(context.Background(), ai, "timetable.pdf", []byte("%PDF"), "u1")
	if !errors.Is(err, ErrAIExtractionFailed) {
		t.Fatalf("期望 ErrAIExtractionFailed，实际: %v", err)
	}
}

// ════════════════════════════════════════════════════════════
// 归一化
// ════════════════════════════════════════════════════════════

func TestDateForWeekday(t *testing.T) {
	// 2025-03-05 是周三
	today := time.Date(2025, 3, 5, 15, 0, 0, 0, time.UTC)

	cases := map[string]string{
		"Wednesday": "2025-03-05",
		"thursday":  "2025-03-06",
		"Sunday":    "2025-03-09",
		"Monday":    "2025-03-10",
		"Tuesday":   "2025-03-11",
		" FRIDAY ":  "2025-03-07",
		"Funday":    "2025-03-10",
	}
	for day, want := range cases {
		if got := dateForWeekday(day, today); got != want {
			t.Errorf("dateForWeekday(%q) 期望 %s，实际 %s", day, want, got)
		}
	}
}

func TestDateForWeekday_FloatsWithToday(t *testing.T) {
	first := dateForWeekday("Monday", time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC))
	second := dateForWeekday("Monday", time.Date(2025, 3, 12, 0, 0, 0, 0, time.UTC))
	if first == second {
		t.Errorf("同一星期名在不同上传日期应得到不同日期，均为 %s", first)
	}
}

func TestNormalizeSchedule_GroupsAndSorts(t *testing.T) {
	today := time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC) // 周一
	rows := []classRow{
		{day: "Tuesday", slot: model.ClassSlot{ID: "a", Subject: "B", Time: "13:00"}},
		{day: "Monday", slot: model.ClassSlot{ID: "b", Subject: "A", Time: "10:00"}},
		{day: "Tuesday", slot: model.ClassSlot{ID: "c", Subject: "C", Time: "09:00"}},
		{day: "Tuesday", slot: model.ClassSlot{ID: "d", Subject: "D", Time: "09:00"}},
	}

	days := normalizeSchedule(rows, today)
	if len(days) != 2 {
		t.Fatalf("期望 2 天，实际 %d", len(days))
	}
	if days[0].Day != "Tuesday" || days[1].Day != "Monday" {
		t.Errorf("应保持首次出现顺序，实际 %s, %s", days[0].Day, days[1].Day)
	}
	if days[0].Date != "2025-03-04" || days[1].Date != "2025-03-03" {
		t.Errorf("日期错误: %s, %s", days[0].Date, days[1].Date)
	}

	var ids []string
	for _, c := range days[0].Classes {
		ids = append(ids, c.ID)
	}
	if strings.Join(ids, ",") != "c,d,a" {
		t.Errorf("同一天应按时间稳定排序，实际 %v", ids)
	}
}

func TestDeriveCourses(t *testing.T) {
	timetable := []model.DaySchedule{
		{Day: "Monday", Classes: []model.ClassSlot{{Subject: "Math"}, {Subject: " Physics "}}},
		{Day: "Tuesday", Classes: []model.ClassSlot{{Subject: "Math"}, {Subject: ""}}},
		{Day: "Friday", Classes: []model.ClassSlot{{Subject: "Chemistry"}}},
	}

	got := deriveCourses(timetable)
	if strings.Join(got, "|") != "Math|Physics|Chemistry" {
		t.Errorf("期望 Math|Physics|Chemistry，实际 %v", got)
	}
	if empty := deriveCourses(nil); empty == nil || len(empty) != 0 {
		t.Errorf("空课表应返回空切片，实际 %v", empty)
	}
}

// ════════════════════════════════════════════════════════════
// 认证推荐
// ════════════════════════════════════════════════════════════

func TestRecommendCertifications(t *testing.T) {
	recs := RecommendCertifications([]string{"Data Science", "Web Programming", "Database Systems"})

	titles := make(map[string][]string)
	for _, r := range recs {
		titles[r.Title] = r.RelevantSubjects
	}

	if len(recs) != 3 {
		t.Fatalf("期望 3 条推荐，实际 %d: %v", len(recs), titles)
	}
	if _, ok := titles["Certified ScrumMaster (CSM)"]; ok {
		t.Error("无 software/engineering 课程时不应推荐 CSM")
	}

	data := titles["Google Data Analytics Professional Certificate"]
	if strings.Join(data, "|") != "Data Science|Database Systems" {
		t.Errorf("数据分析证书相关课程错误: %v", data)
	}
	if aws := titles["AWS Certified Developer Associate"]; strings.Join(aws, "|") != "Web Programming" {
		t.Errorf("AWS 证书相关课程错误: %v", aws)
	}
	if dba := titles["Microsoft Azure Database Administrator"]; strings.Join(dba, "|") != "Database Systems" {
		t.Errorf("DBA 证书相关课程错误: %v", dba)
	}
}

func TestRecommendCertifications_CaseInsensitiveAndOncePerRule(t *testing.T) {
	recs := RecommendCertifications([]string{"MACHINE LEARNING", "Big DATA", "Software Engineering"})
	if len(recs) != 2 {
		t.Fatalf("期望 2 条推荐，实际 %d", len(recs))
	}
	if recs[0].ID != "1" || recs[1].ID != "3" {
		t.Errorf("期望规则 1、3 命中，实际 %s、%s", recs[0].ID, recs[1].ID)
	}
	if len(recs[0].RelevantSubjects) != 2 {
		t.Errorf("期望 2 门相关课程，实际 %v", recs[0].RelevantSubjects)
	}
}

func TestRecommendCertifications_NoMatch(t *testing.T) {
	recs := RecommendCertifications([]string{"History", "Art"})
	if recs == nil || len(recs) != 0 {
		t.Errorf("无命中应返回空切片，实际 %v", recs)
	}
}
