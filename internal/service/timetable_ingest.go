package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"educareer/backend/internal/dto"
	"educareer/backend/internal/model"
	"educareer/backend/pkg/aiclient"
)

// ── 课表文件解析错误 ──

var (
	ErrExcelUnsupported   = errors.New("Excel file parsing is not supported. Open the file, use Save As -> CSV (Comma delimited) and upload the CSV file instead.")
	ErrUnsupportedFormat  = errors.New("Unsupported file format. Please upload CSV, Excel, PDF, or Image files (JPG, PNG).")
	ErrCSVTooShort        = errors.New("CSV file must have at least a header row and one data row")
	ErrCSVMissingColumns  = errors.New("Missing required columns")
	ErrAIExtractionFailed = errors.New("Failed to extract timetable from file")
	ErrTimetableEmpty     = errors.New("No classes found in the uploaded file")
)

// classRow 解析结果的中间形态：一节课 + 它所在的星期名
type classRow struct {
	day  string
	slot model.ClassSlot
}

// ingestFile 按扩展名分派解析器，只做内存解析
func ingestFile(ctx context.Context, ai aiclient.Client, filename string, data []byte, userID string) ([]classRow, string, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		rows, err := parseTimetableCSV(data)
		return rows, dto.TimetableSourceCSV, err
	case ".xlsx", ".xls":
		return nil, "", ErrExcelUnsupported
	case ".ics":
		rows, err := parseTimetableICS(bytes.NewReader(data))
		return rows, dto.TimetableSourceICS, err
	case ".pdf", ".jpg", ".jpeg", ".png", ".bmp", ".tiff":
		courses, err := ai.ExtractTimetable(ctx, filename, bytes.NewReader(data), userID)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %w", ErrAIExtractionFailed, err)
		}
		return convertExtractedCourses(courses), dto.TimetableSourceAI, nil
	default:
		return nil, "", ErrUnsupportedFormat
	}
}

// ════════════════════════════════════════════════════════════
// CSV
// ════════════════════════════════════════════════════════════
//
// 规则：
//   - 空行忽略，剩余不足 2 行（表头 + 1 行数据）直接报错
//   - 表头去空格、转小写；day / subject / time 必须存在
//   - 列数与表头不一致的数据行静默丢弃
//   - 行 ID 为该行在非空行中的下标（表头为 0）

var requiredCSVColumns = []string{"day", "subject", "time"}

func parseTimetableCSV(data []byte) ([]classRow, error) {
	text := strings.TrimPrefix(string(data), "\ufeff")

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) < 2 {
		return nil, ErrCSVTooShort
	}

	header, err := splitCSVLine(lines[0])
	if err != nil {
		return nil, ErrCSVTooShort
	}
	present := make(map[string]bool, len(header))
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(header[i]))
		present[header[i]] = true
	}

	var missing []string
	for _, col := range requiredCSVColumns {
		if !present[col] {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrCSVMissingColumns, strings.Join(missing, ", "))
	}

	rows := make([]classRow, 0, len(lines)-1)
	for i := 1; i < len(lines); i++ {
		values, err := splitCSVLine(lines[i])
		if err != nil || len(values) != len(header) {
			continue
		}
		record := make(map[string]string, len(header))
		for j, h := range header {
			record[h] = strings.TrimSpace(values[j])
		}

		day := record["day"]
		if day == "" {
			continue
		}
		rows = append(rows, classRow{
			day: day,
			slot: model.ClassSlot{
				ID:         strconv.Itoa(i),
				Subject:    orDefault(record["subject"], "Unknown Subject"),
				Professor:  orDefault(record["professor"], "TBA"),
				Room:       orDefault(record["room"], "TBA"),
				Time:       orDefault(record["time"], "00:00"),
				Duration:   parseDuration(record["duration"]),
				Type:       orDefault(strings.ToLower(record["type"]), model.ClassTypeLecture),
				Difficulty: orDefault(strings.ToLower(record["difficulty"]), model.DifficultyMedium),
			},
		})
	}
	return rows, nil
}

// splitCSVLine 单行解析，支持导出时加引号的字段
func splitCSVLine(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// parseDuration 非正整数一律按 60 分钟
func parseDuration(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 60
	}
	return n
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// ════════════════════════════════════════════════════════════
// AI 识别结果转换
// ════════════════════════════════════════════════════════════

const aiConfidenceMedium = 0.7

func convertExtractedCourses(courses []aiclient.ExtractedCourse) []classRow {
	var rows []classRow
	for i, c := range courses {
		days := c.Days
		if len(days) == 0 {
			days = []string{"Monday"}
		}

		difficulty := model.DifficultyEasy
		if c.Confidence >= aiConfidenceMedium {
			difficulty = model.DifficultyMedium
		}

		for j, day := range days {
			rows = append(rows, classRow{
				day: day,
				slot: model.ClassSlot{
					ID:         fmt.Sprintf("ai-%d-%d", i, j),
					Subject:    orDefault(strings.TrimSpace(c.Name), "Unknown Subject"),
					Professor:  "TBA",
					Room:       "TBA",
					Time:       pickTime(c.Times, j),
					Duration:   60,
					Type:       model.ClassTypeLecture,
					Difficulty: difficulty,
				},
			})
		}
	}
	return rows
}

// pickTime 第 j 天对应的时间，缺失时退回第一个时间，再退回 09:00
func pickTime(times []string, j int) string {
	if j < len(times) && times[j] != "" {
		return times[j]
	}
	if len(times) > 0 && times[0] != "" {
		return times[0]
	}
	return "09:00"
}
