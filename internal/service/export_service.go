package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"skilltrack/backend/internal/model"
	"skilltrack/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoRecords    = errors.New("该场地暂无技能记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - Excel 格式：单 Sheet，每行一条 学生×技能 记录，附表头样式
type ExportService interface {
	// ExportSkillReports 导出场地技能报告为 Excel
	ExportSkillReports(ctx context.Context, venueID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportSkillReports — 导出场地技能报告为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "技能报告"
//   - 列：学号 | 姓名 | 课程 | 尝试次数 | 最高分 | 最新分 | 状态 | 出勤 | 课次日期 | 开始 | 结束
//   - 行序：学号升序，同一学生按课程名升序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportSkillReports(ctx context.Context, venueID string) (*bytes.Buffer, string, error) {
	// 1. 查询场地
	venue, err := s.repo.Venue.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrVenueNotFound
		}
		s.logger.Error("查询场地失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询记录
	records, err := s.repo.SkillRecord.ListByVenue(ctx, venueID)
	if err != nil {
		s.logger.Error("查询场地技能记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(records) == 0 {
		return nil, "", ErrExportNoRecords
	}

	sort.Slice(records, func(i, j int) bool {
		ri, rj := recordRoll(&records[i]), recordRoll(&records[j])
		if ri != rj {
			return ri < rj
		}
		return records[i].CourseName < records[j].CourseName
	})

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "技能报告"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 16)
	f.SetColWidth(sheetName, "C", "C", 24)
	f.SetColWidth(sheetName, "D", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 12)
	f.SetColWidth(sheetName, "H", "H", 10)
	f.SetColWidth(sheetName, "I", "K", 12)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 技能报告", venue.Name))
	f.MergeCell(sheetName, "A1", "K1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"学号", "姓名", "课程", "尝试次数", "最高分", "最新分", "状态", "出勤", "课次日期", "开始时间", "结束时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(len(headers)-1), 2), headerStyle)

	// 数据行
	row := 3
	for i := range records {
		r := &records[i]
		name := ""
		if r.Student != nil {
			name = r.Student.Name
		}
		slotDate := ""
		if r.LastSlotDate != nil {
			slotDate = r.LastSlotDate.Format("2006-01-02")
		}
		startTime, endTime := "", ""
		if r.LastStartTime != nil {
			startTime = *r.LastStartTime
		}
		if r.LastEndTime != nil {
			endTime = *r.LastEndTime
		}

		values := []interface{}{
			recordRoll(r), name, r.CourseName, r.TotalAttempts,
			r.BestScore, r.LatestScore, r.Status, r.LastAttendance,
			slotDate, startTime, endTime,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("技能报告_%s.xlsx", venue.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func recordRoll(r *model.SkillRecord) string {
	if r.Student != nil {
		return r.Student.RollNumber
	}
	return ""
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
