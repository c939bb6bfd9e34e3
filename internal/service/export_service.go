package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"educareer/backend/internal/model"
	"educareer/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoTimetable  = errors.New("No timetable to export")
	ErrExportUnknownType  = errors.New("Unsupported export format")
	ErrExportGenerateFail = errors.New("Failed to generate export file")
)

// 导出格式
const (
	ExportFormatCSV  = "csv"
	ExportFormatXLSX = "xlsx"
	ExportFormatICS  = "ics"
)

var timetableCSVHeader = []string{"Day", "Subject", "Professor", "Room", "Time", "Duration", "Type", "Difficulty"}

// ExportFile 导出结果，由 Handler 设置响应头后写出
type ExportFile struct {
	Filename    string
	ContentType string
	Content     *bytes.Buffer
}

// ExportService 课表导出业务接口
//
// 三种格式共用同一份行数据：
//   - CSV 与上传格式一致，可直接重新导入
//   - XLSX 单 Sheet，表头加粗着色
//   - ICS 每节课一个按周重复的事件，DESCRIPTION 携带教师 / 类型 / 难度
type ExportService interface {
	// Export 导出当前用户已保存的课表
	Export(ctx context.Context, userID, format string) (*ExportFile, error)
	// Template 可直接填写的 CSV 模板
	Template() *ExportFile
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

func (s *exportService) Export(ctx context.Context, userID, format string) (*ExportFile, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	timetable := []model.DaySchedule(user.Timetable)
	if countClasses(timetable) == 0 {
		return nil, ErrExportNoTimetable
	}

	var file *ExportFile
	switch format {
	case "", ExportFormatCSV:
		file, err = exportCSV(timetable)
	case ExportFormatXLSX:
		file, err = exportXLSX(timetable)
	case ExportFormatICS:
		file, err = exportICS(timetable, s.now())
	default:
		return nil, ErrExportUnknownType
	}
	if err != nil {
		s.logger.Error("生成导出文件失败", zap.String("format", format), zap.Error(err))
		return nil, ErrExportGenerateFail
	}
	return file, nil
}

func (s *exportService) Template() *ExportFile {
	rows := [][]string{
		timetableCSVHeader,
		{"Monday", "Data Structures", "Dr. Smith", "Room 101", "09:00", "60", "lecture", "medium"},
		{"Monday", "Database Management Systems", "Dr. Codd", "Lab 2", "11:00", "90", "lab", "hard"},
		{"Wednesday", "Web Programming", "Prof. Lee", "Room 204", "14:00", "60", "tutorial", "easy"},
	}
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.WriteAll(rows)
	return &ExportFile{Filename: "timetable-template.csv", ContentType: "text/csv; charset=utf-8", Content: buf}
}

// ── CSV ──

func exportCSV(timetable []model.DaySchedule) (*ExportFile, error) {
	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	if err := w.Write(timetableCSVHeader); err != nil {
		return nil, err
	}
	for _, day := range timetable {
		for _, c := range day.Classes {
			if err := w.Write(classRecord(day.Day, c)); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return &ExportFile{Filename: "my-timetable.csv", ContentType: "text/csv; charset=utf-8", Content: buf}, nil
}

func classRecord(day string, c model.ClassSlot) []string {
	return []string{day, c.Subject, c.Professor, c.Room, c.Time, strconv.Itoa(c.Duration), c.Type, c.Difficulty}
}

// ── XLSX ──

func exportXLSX(timetable []model.DaySchedule) (*ExportFile, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Timetable"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 32)
	f.SetColWidth(sheetName, "C", "D", 18)
	f.SetColWidth(sheetName, "E", "H", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range timetableCSVHeader {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(timetableCSVHeader)-1), 1), headerStyle)

	row := 2
	for _, day := range timetable {
		for _, c := range day.Classes {
			values := []any{day.Day, c.Subject, c.Professor, c.Room, c.Time, c.Duration, c.Type, c.Difficulty}
			for i, v := range values {
				f.SetCellValue(sheetName, cell(colName(i), row), v)
			}
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return &ExportFile{
		Filename:    "my-timetable.xlsx",
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     buf,
	}, nil
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// ── ICS ──

const icsLocalLayout = "20060102T150405"

func exportICS(timetable []model.DaySchedule, now time.Time) (*ExportFile, error) {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//EduCareer AI//Timetable//EN")
	cal.SetXWRCalName("My Timetable")

	for _, day := range timetable {
		date := day.Date
		if date == "" {
			date = dateForWeekday(day.Day, now)
		}
		for i, c := range day.Classes {
			start, err := time.ParseInLocation("2006-01-02 15:04", date+" "+c.Time, time.Local)
			if err != nil {
				// 时间格式不合法的课无法放进日历
				continue
			}
			duration := c.Duration
			if duration <= 0 {
				duration = 60
			}
			end := start.Add(time.Duration(duration) * time.Minute)

			evt := cal.AddEvent(fmt.Sprintf("%s-%d-%s@educareer", strings.ToLower(day.Day), i, c.ID))
			evt.SetDtStampTime(now)
			evt.SetProperty(ics.ComponentPropertyDtStart, start.Format(icsLocalLayout))
			evt.SetProperty(ics.ComponentPropertyDtEnd, end.Format(icsLocalLayout))
			evt.AddRrule("FREQ=WEEKLY")
			evt.SetSummary(c.Subject)
			evt.SetLocation(c.Room)
			evt.SetDescription(fmt.Sprintf("Professor: %s\nType: %s\nDifficulty: %s", c.Professor, c.Type, c.Difficulty))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	return &ExportFile{Filename: "my-timetable.ics", ContentType: "text/calendar; charset=utf-8", Content: buf}, nil
}
