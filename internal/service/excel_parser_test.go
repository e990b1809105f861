package service

import (
	"errors"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"

	"skilltrack/backend/internal/model"
)

// buildReportFile 在内存中生成测试用 Excel（第一个工作表）
func buildReportFile(t *testing.T, rows [][]interface{}) io.Reader {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		for j, v := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("计算单元格坐标失败: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cellRef, v); err != nil {
				t.Fatalf("写入单元格失败: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("生成测试 Excel 失败: %v", err)
	}
	return buf
}

func TestParseSkillReportFile_Basic(t *testing.T) {
	reader := buildReportFile(t, [][]interface{}{
		{"Roll Number", "Course Name", "Venue", "Score", "Status", "Attendance", "Slot Date", "Start Time", "End Time"},
		{"R001", "Freestyle", "主泳池", 85.5, "Cleared", "Present", "2025-08-20", "09:00", "10:00"},
		{"R002", "Backstroke", "主泳池", "abc", "pending", "late", "", "", ""},
	})

	rows, detected, err := ParseSkillReportFile(reader, 5000)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望2行数据，实际=%d", len(rows))
	}

	first := rows[0]
	if first.Row != 2 {
		t.Errorf("期望Row=2，实际=%d", first.Row)
	}
	if first.RollNumber != "R001" {
		t.Errorf("期望RollNumber=R001，实际=%s", first.RollNumber)
	}
	if first.Score != 85.5 {
		t.Errorf("期望Score=85.5，实际=%v", first.Score)
	}
	if first.Status != model.StatusCleared {
		t.Errorf("期望Status=Cleared，实际=%s", first.Status)
	}
	if first.Attendance != model.AttendancePresent {
		t.Errorf("期望Attendance=Present，实际=%s", first.Attendance)
	}
	if first.SlotDate == nil || first.SlotDate.Format("2006-01-02") != "2025-08-20" {
		t.Errorf("期望SlotDate=2025-08-20，实际=%v", first.SlotDate)
	}
	if first.StartTime == nil || *first.StartTime != "09:00:00" {
		t.Errorf("期望StartTime=09:00:00，实际=%v", first.StartTime)
	}

	// 无法解析的值按默认处理
	second := rows[1]
	if second.Score != 0 {
		t.Errorf("非数字成绩应为0，实际=%v", second.Score)
	}
	if second.Status != model.StatusOngoing {
		t.Errorf("未知状态应归一化为Ongoing，实际=%s", second.Status)
	}
	if second.Attendance != "" {
		t.Errorf("未知出勤应置空，实际=%s", second.Attendance)
	}
	if second.SlotDate != nil {
		t.Errorf("空日期应为nil，实际=%v", second.SlotDate)
	}

	for _, col := range []string{"roll_number", "course_name", "venue", "score", "status", "attendance", "slot_date", "start_time", "end_time"} {
		if !detected[col] {
			t.Errorf("期望检出列 %s", col)
		}
	}
}

func TestParseSkillReportFile_RollNumberAliases(t *testing.T) {
	aliases := []string{
		"Roll Number", "Roll No", "RollNo", "Student ID",
		"Reg No", "Registration Number", "ID", "User ID",
	}
	for _, alias := range aliases {
		t.Run(alias, func(t *testing.T) {
			reader := buildReportFile(t, [][]interface{}{
				{alias, "Course Name"},
				{"R001", "Freestyle"},
			})

			rows, detected, err := ParseSkillReportFile(reader, 5000)
			if err != nil {
				t.Fatalf("别名 %s 应被识别: %v", alias, err)
			}
			if rows[0].RollNumber != "R001" {
				t.Errorf("期望RollNumber=R001，实际=%s", rows[0].RollNumber)
			}
			if !detected["roll_number"] {
				t.Error("期望检出 roll_number 列")
			}
		})
	}
}

func TestParseSkillReportFile_SerialDate(t *testing.T) {
	// 序列值 45900 = 1899-12-30 纪元起第 45900 天 = 2025-08-31
	reader := buildReportFile(t, [][]interface{}{
		{"Roll Number", "Course Name", "Slot Date"},
		{"R001", "Freestyle", "45900"},
	})

	rows, _, err := ParseSkillReportFile(reader, 5000)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if rows[0].SlotDate == nil {
		t.Fatal("期望日期序列值被解析")
	}
	if got := rows[0].SlotDate.Format("2006-01-02"); got != "2025-08-31" {
		t.Errorf("期望SlotDate=2025-08-31，实际=%s", got)
	}
}

func TestParseSkillReportFile_TimeFormats(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"24小时制", "14:30", "14:30:00"},
		{"带秒", "14:30:45", "14:30:45"},
		{"12小时制", "2:30 PM", "14:30:00"},
		{"12小时制带秒", "2:30:15 pm", "14:30:15"},
		{"小数比例", "0.5", "12:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := buildReportFile(t, [][]interface{}{
				{"Roll Number", "Course Name", "Start Time"},
				{"R001", "Freestyle", tt.raw},
			})

			rows, _, err := ParseSkillReportFile(reader, 5000)
			if err != nil {
				t.Fatalf("解析应成功: %v", err)
			}
			if rows[0].StartTime == nil {
				t.Fatalf("期望时间 %q 被解析", tt.raw)
			}
			if *rows[0].StartTime != tt.want {
				t.Errorf("期望StartTime=%s，实际=%s", tt.want, *rows[0].StartTime)
			}
		})
	}
}

func TestParseSkillReportFile_TooManyRows(t *testing.T) {
	data := [][]interface{}{{"Roll Number", "Course Name"}}
	for i := 0; i < 4; i++ {
		data = append(data, []interface{}{"R001", "Freestyle"})
	}
	reader := buildReportFile(t, data)

	_, _, err := ParseSkillReportFile(reader, 3)
	if !errors.Is(err, ErrImportTooManyRows) {
		t.Errorf("期望 ErrImportTooManyRows，实际: %v", err)
	}
}

func TestParseSkillReportFile_MissingRequiredColumns(t *testing.T) {
	// 缺少学号列
	reader := buildReportFile(t, [][]interface{}{
		{"Course Name", "Score"},
		{"Freestyle", 80},
	})
	if _, _, err := ParseSkillReportFile(reader, 5000); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("缺少学号列应返回 ErrImportBadHeader，实际: %v", err)
	}

	// 缺少课程名列
	reader = buildReportFile(t, [][]interface{}{
		{"Roll Number", "Score"},
		{"R001", 80},
	})
	if _, _, err := ParseSkillReportFile(reader, 5000); !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("缺少课程名列应返回 ErrImportBadHeader，实际: %v", err)
	}
}

func TestParseSkillReportFile_NoData(t *testing.T) {
	reader := buildReportFile(t, [][]interface{}{
		{"Roll Number", "Course Name"},
	})
	if _, _, err := ParseSkillReportFile(reader, 5000); !errors.Is(err, ErrImportNoData) {
		t.Errorf("仅表头应返回 ErrImportNoData，实际: %v", err)
	}
}

func TestParseSkillReportFile_SkipEmptyRows(t *testing.T) {
	reader := buildReportFile(t, [][]interface{}{
		{"Roll Number", "Course Name"},
		{"R001", "Freestyle"},
		{}, // 空行
		{"R002", "Backstroke"},
	})

	rows, _, err := ParseSkillReportFile(reader, 5000)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("空行应被跳过，期望2行，实际=%d", len(rows))
	}
	// 行号保持表格可见行号
	if rows[1].Row != 4 {
		t.Errorf("期望第二条数据Row=4，实际=%d", rows[1].Row)
	}
}

func TestNextStatus(t *testing.T) {
	tests := []struct {
		existing string
		incoming string
		want     string
	}{
		{model.StatusOngoing, model.StatusCleared, model.StatusCleared},
		{model.StatusCleared, model.StatusNotCleared, model.StatusCleared},
		{model.StatusCleared, model.StatusOngoing, model.StatusCleared},
		{model.StatusNotCleared, model.StatusOngoing, model.StatusOngoing},
		{model.StatusOngoing, model.StatusNotCleared, model.StatusNotCleared},
	}
	for _, tt := range tests {
		if got := NextStatus(tt.existing, tt.incoming); got != tt.want {
			t.Errorf("NextStatus(%s, %s) = %s，期望 %s", tt.existing, tt.incoming, got, tt.want)
		}
	}
}
