package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"skilltrack/backend/internal/dto"
	"skilltrack/backend/internal/model"
	"skilltrack/backend/internal/repository"
)

// ── 完成度模块业务错误 ──

var (
	ErrVenueNotFound = errors.New("场地不存在")
	ErrGroupNotFound = errors.New("分组不存在")
)

// 分析视图常量
const (
	trendDays        = 30
	topPerformersCap = 10
)

// CompletionService 技能完成度聚合业务接口
// 所有聚合均在内存中基于 Repository 返回的行计算，便于单元测试
type CompletionService interface {
	VenueSummary(ctx context.Context, venueID string, req *dto.CompletionSummaryRequest) (*dto.CompletionSummaryResponse, error)
	NotAttempted(ctx context.Context, venueID string, req *dto.NotAttemptedRequest) ([]dto.NotAttemptedStudent, int64, error)
	CourseBreakdown(ctx context.Context, venueID string) ([]dto.CourseCompletion, error)
	GroupCompletion(ctx context.Context, groupID string, req *dto.GroupCompletionRequest) (*dto.GroupCompletionResponse, int64, error)
	Analytics(ctx context.Context, venueID string) (*dto.AnalyticsResponse, error)
	ExportRows(ctx context.Context, venueID string) (*dto.ExportRowsResponse, error)
}

type completionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCompletionService 创建 CompletionService 实例
func NewCompletionService(repo *repository.Repository, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, logger: logger}
}

// ────────────────────── VenueSummary ──────────────────────

func (s *completionService) VenueSummary(ctx context.Context, venueID string, req *dto.CompletionSummaryRequest) (*dto.CompletionSummaryResponse, error) {
	if _, err := s.getVenue(ctx, venueID); err != nil {
		return nil, err
	}

	students, err := s.repo.Membership.ListActiveStudentsByVenue(ctx, venueID, req.GroupID)
	if err != nil {
		s.logger.Error("查询场地学生失败", zap.Error(err))
		return nil, err
	}

	// 记录按在册学生取，而非按记录归属场地：导入时学生尚无 active 分组的
	// 记录（student_venue_id 为空）同样计入已尝试
	studentIDs := make([]string, 0, len(students))
	for _, st := range students {
		studentIDs = append(studentIDs, st.StudentID)
	}
	records, err := s.repo.SkillRecord.ListByStudentIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Error("查询学生技能记录失败", zap.Error(err))
		return nil, err
	}

	var scoped []model.SkillRecord
	for _, r := range records {
		if req.CourseFilter != "" && !strings.EqualFold(r.CourseName, req.CourseFilter) {
			continue
		}
		scoped = append(scoped, r)
	}

	total := len(students)

	// attempted：有任意记录的学生去重
	attemptedSet := make(map[string]bool)
	// 状态计数：按「学生×状态」去重，同一学生可落入多个状态桶
	statusSeen := make(map[string]bool)
	statusCounts := map[string]int{
		model.StatusCleared:    0,
		model.StatusNotCleared: 0,
		model.StatusOngoing:    0,
	}
	clearedStudents := make(map[string]bool)

	for _, r := range scoped {
		attemptedSet[r.StudentID] = true
		key := r.StudentID + "|" + r.Status
		if !statusSeen[key] {
			statusSeen[key] = true
			statusCounts[r.Status]++
		}
		if r.Status == model.StatusCleared {
			clearedStudents[r.StudentID] = true
		}
	}

	attempted := len(attemptedSet)
	notAttempted := total - attempted
	if notAttempted < 0 {
		notAttempted = 0
	}

	var completionRate, attemptRate float64
	if total > 0 {
		completionRate = round2(float64(len(clearedStudents)) / float64(total) * 100)
		attemptRate = round2(float64(attempted) / float64(total) * 100)
	}

	return &dto.CompletionSummaryResponse{
		TotalStudents:       total,
		Attempted:           attempted,
		NotAttempted:        notAttempted,
		StatusCounts:        statusCounts,
		StatusCountsOverlap: true,
		CompletionRate:      completionRate,
		AttemptRate:         attemptRate,
		Courses:             courseBreakdown(scoped),
	}, nil
}

// ────────────────────── NotAttempted ──────────────────────

func (s *completionService) NotAttempted(ctx context.Context, venueID string, req *dto.NotAttemptedRequest) ([]dto.NotAttemptedStudent, int64, error) {
	if _, err := s.getVenue(ctx, venueID); err != nil {
		return nil, 0, err
	}

	students, err := s.repo.Membership.ListActiveStudentsByVenue(ctx, venueID, "")
	if err != nil {
		s.logger.Error("查询场地学生失败", zap.Error(err))
		return nil, 0, err
	}

	// 与 VenueSummary 的 attempted 口径一致：任意记录都算已尝试
	studentIDs := make([]string, 0, len(students))
	for _, st := range students {
		studentIDs = append(studentIDs, st.StudentID)
	}
	records, err := s.repo.SkillRecord.ListByStudentIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Error("查询学生技能记录失败", zap.Error(err))
		return nil, 0, err
	}

	attemptedSet := make(map[string]bool, len(records))
	for _, r := range records {
		attemptedSet[r.StudentID] = true
	}

	var result []dto.NotAttemptedStudent
	kw := strings.ToLower(strings.TrimSpace(req.Search))
	for _, st := range students {
		if attemptedSet[st.StudentID] {
			continue
		}
		if kw != "" &&
			!strings.Contains(strings.ToLower(st.Name), kw) &&
			!strings.Contains(strings.ToLower(st.RollNumber), kw) &&
			!strings.Contains(strings.ToLower(st.Email), kw) {
			continue
		}
		result = append(result, dto.NotAttemptedStudent{
			StudentID:  st.StudentID,
			Name:       st.Name,
			RollNumber: st.RollNumber,
			Email:      st.Email,
		})
	}

	total := int64(len(result))
	return paginate(result, req.GetOffset(), req.GetPageSize()), total, nil
}

// ────────────────────── CourseBreakdown ──────────────────────

func (s *completionService) CourseBreakdown(ctx context.Context, venueID string) ([]dto.CourseCompletion, error) {
	if _, err := s.getVenue(ctx, venueID); err != nil {
		return nil, err
	}

	records, err := s.repo.SkillRecord.ListByVenue(ctx, venueID)
	if err != nil {
		s.logger.Error("查询场地技能记录失败", zap.Error(err))
		return nil, err
	}

	return courseBreakdown(records), nil
}

// courseBreakdown 课程维度统计
// 每个学生在同一课程下可能有多条记录（不同导入场地名），取 last_slot_date
// 最新的一条作为该学生在该课程的当前状态；日期为空的记录排在最后
func courseBreakdown(records []model.SkillRecord) []dto.CourseCompletion {
	type key struct{ course, student string }
	latest := make(map[key]model.SkillRecord)

	newerThan := func(a, b model.SkillRecord) bool {
		switch {
		case a.LastSlotDate == nil:
			return false
		case b.LastSlotDate == nil:
			return true
		default:
			return a.LastSlotDate.After(*b.LastSlotDate)
		}
	}

	for _, r := range records {
		k := key{course: r.CourseName, student: r.StudentID}
		if cur, ok := latest[k]; !ok || newerThan(r, cur) {
			latest[k] = r
		}
	}

	type agg struct {
		students, cleared, notCleared, ongoing int
		bestSum                                float64
	}
	byCourse := make(map[string]*agg)
	for k, r := range latest {
		a := byCourse[k.course]
		if a == nil {
			a = &agg{}
			byCourse[k.course] = a
		}
		a.students++
		a.bestSum += r.BestScore
		switch r.Status {
		case model.StatusCleared:
			a.cleared++
		case model.StatusNotCleared:
			a.notCleared++
		default:
			a.ongoing++
		}
	}

	result := make([]dto.CourseCompletion, 0, len(byCourse))
	for course, a := range byCourse {
		cc := dto.CourseCompletion{
			CourseName:    course,
			TotalStudents: a.students,
			Cleared:       a.cleared,
			NotCleared:    a.notCleared,
			Ongoing:       a.ongoing,
		}
		if a.students > 0 {
			cc.CompletionRate = round2(float64(a.cleared) / float64(a.students) * 100)
			cc.AvgBestScore = round2(a.bestSum / float64(a.students))
		}
		result = append(result, cc)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CourseName < result[j].CourseName
	})
	return result
}

// ────────────────────── GroupCompletion ──────────────────────

func (s *completionService) GroupCompletion(ctx context.Context, groupID string, req *dto.GroupCompletionRequest) (*dto.GroupCompletionResponse, int64, error) {
	group, err := s.repo.Group.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrGroupNotFound
		}
		s.logger.Error("查询分组失败", zap.Error(err))
		return nil, 0, err
	}

	students, err := s.repo.Membership.ListActiveStudentsByGroup(ctx, groupID)
	if err != nil {
		s.logger.Error("查询分组学生失败", zap.Error(err))
		return nil, 0, err
	}

	studentIDs := make([]string, 0, len(students))
	for _, st := range students {
		studentIDs = append(studentIDs, st.StudentID)
	}

	records, err := s.repo.SkillRecord.ListByStudentIDs(ctx, studentIDs)
	if err != nil {
		s.logger.Error("查询分组技能记录失败", zap.Error(err))
		return nil, 0, err
	}

	kw := strings.ToLower(strings.TrimSpace(req.Search))
	var items []dto.SkillRecordItem
	for _, r := range records {
		if req.Status != "" && r.Status != req.Status {
			continue
		}
		item := toRecordItem(&r)
		if kw != "" &&
			!strings.Contains(strings.ToLower(item.StudentName), kw) &&
			!strings.Contains(strings.ToLower(item.RollNumber), kw) &&
			!strings.Contains(strings.ToLower(item.CourseName), kw) {
			continue
		}
		items = append(items, item)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].RollNumber != items[j].RollNumber {
			return items[i].RollNumber < items[j].RollNumber
		}
		return items[i].CourseName < items[j].CourseName
	})

	total := int64(len(items))
	facultyID := ""
	if group.FacultyID != nil {
		facultyID = *group.FacultyID
	}

	return &dto.GroupCompletionResponse{
		Group: dto.GroupResponse{
			ID:        group.GroupID,
			Name:      group.Name,
			VenueID:   group.VenueID,
			FacultyID: facultyID,
			IsActive:  group.IsActive,
		},
		TotalStudents: len(students),
		Records:       paginate(items, req.GetOffset(), req.GetPageSize()),
	}, total, nil
}

// ────────────────────── Analytics ──────────────────────

func (s *completionService) Analytics(ctx context.Context, venueID string) (*dto.AnalyticsResponse, error) {
	if _, err := s.getVenue(ctx, venueID); err != nil {
		return nil, err
	}

	records, err := s.repo.SkillRecord.ListByVenue(ctx, venueID)
	if err != nil {
		s.logger.Error("查询场地技能记录失败", zap.Error(err))
		return nil, err
	}

	// 状态分布：按记录计数
	statusDist := map[string]int{
		model.StatusCleared:    0,
		model.StatusNotCleared: 0,
		model.StatusOngoing:    0,
	}
	for _, r := range records {
		statusDist[r.Status]++
	}

	return &dto.AnalyticsResponse{
		StatusDistribution: statusDist,
		ScoreBuckets:       scoreBuckets(records),
		CompletionTrend:    completionTrend(records, time.Now()),
		TopPerformers:      topPerformers(records),
	}, nil
}

// scoreBuckets 最高分分布，固定区间 [0,25] [26,50] [51,75] [76,100]
func scoreBuckets(records []model.SkillRecord) []dto.ScoreBucket {
	buckets := []dto.ScoreBucket{
		{Label: "0-25", Min: 0, Max: 25},
		{Label: "26-50", Min: 26, Max: 50},
		{Label: "51-75", Min: 51, Max: 75},
		{Label: "76-100", Min: 76, Max: 100},
	}
	for _, r := range records {
		for i := range buckets {
			if r.BestScore >= float64(buckets[i].Min) && r.BestScore <= float64(buckets[i].Max) {
				buckets[i].Count++
				break
			}
		}
	}
	return buckets
}

// completionTrend 最近30天每日 Cleared 记录数（按 last_slot_date 归桶）
func completionTrend(records []model.SkillRecord, now time.Time) []dto.TrendPoint {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -(trendDays - 1))

	counts := make(map[string]int)
	for _, r := range records {
		if r.Status != model.StatusCleared || r.LastSlotDate == nil {
			continue
		}
		d := r.LastSlotDate.UTC()
		d = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
		if d.Before(start) || d.After(today) {
			continue
		}
		counts[d.Format("2006-01-02")]++
	}

	trend := make([]dto.TrendPoint, 0, trendDays)
	for i := 0; i < trendDays; i++ {
		day := start.AddDate(0, 0, i).Format("2006-01-02")
		trend = append(trend, dto.TrendPoint{Date: day, Cleared: counts[day]})
	}
	return trend
}

// topPerformers 平均最高分倒序，平均分相同时按 Cleared 数倒序，最多10名
func topPerformers(records []model.SkillRecord) []dto.TopPerformer {
	type agg struct {
		name, roll string
		bestSum    float64
		count      int
		cleared    int
	}
	byStudent := make(map[string]*agg)
	for _, r := range records {
		a := byStudent[r.StudentID]
		if a == nil {
			a = &agg{}
			if r.Student != nil {
				a.name = r.Student.Name
				a.roll = r.Student.RollNumber
			}
			byStudent[r.StudentID] = a
		}
		a.bestSum += r.BestScore
		a.count++
		if r.Status == model.StatusCleared {
			a.cleared++
		}
	}

	performers := make([]dto.TopPerformer, 0, len(byStudent))
	for id, a := range byStudent {
		performers = append(performers, dto.TopPerformer{
			StudentID:    id,
			Name:         a.name,
			RollNumber:   a.roll,
			AvgBestScore: round2(a.bestSum / float64(a.count)),
			ClearedCount: a.cleared,
		})
	}

	sort.Slice(performers, func(i, j int) bool {
		if performers[i].AvgBestScore != performers[j].AvgBestScore {
			return performers[i].AvgBestScore > performers[j].AvgBestScore
		}
		if performers[i].ClearedCount != performers[j].ClearedCount {
			return performers[i].ClearedCount > performers[j].ClearedCount
		}
		return performers[i].RollNumber < performers[j].RollNumber
	})

	if len(performers) > topPerformersCap {
		performers = performers[:topPerformersCap]
	}
	return performers
}

// ────────────────────── ExportRows ──────────────────────

func (s *completionService) ExportRows(ctx context.Context, venueID string) (*dto.ExportRowsResponse, error) {
	venue, err := s.getVenue(ctx, venueID)
	if err != nil {
		return nil, err
	}

	records, err := s.repo.SkillRecord.ListByVenue(ctx, venueID)
	if err != nil {
		s.logger.Error("查询场地技能记录失败", zap.Error(err))
		return nil, err
	}

	rows := make([]dto.SkillRecordItem, 0, len(records))
	for i := range records {
		rows = append(rows, toRecordItem(&records[i]))
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].RollNumber != rows[j].RollNumber {
			return rows[i].RollNumber < rows[j].RollNumber
		}
		return rows[i].CourseName < rows[j].CourseName
	})

	return &dto.ExportRowsResponse{
		Venue: dto.VenueResponse{
			ID:       venue.VenueID,
			Name:     venue.Name,
			Location: venue.Location,
			IsActive: venue.IsActive,
		},
		Total: len(rows),
		Rows:  rows,
	}, nil
}

// ── 内部辅助方法 ──

func (s *completionService) getVenue(ctx context.Context, venueID string) (*model.Venue, error) {
	venue, err := s.repo.Venue.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVenueNotFound
		}
		s.logger.Error("查询场地失败", zap.String("venue_id", venueID), zap.Error(err))
		return nil, err
	}
	return venue, nil
}

// toRecordItem 将技能记录转换为列表条目
func toRecordItem(r *model.SkillRecord) dto.SkillRecordItem {
	item := dto.SkillRecordItem{
		RecordID:       r.RecordID,
		StudentID:      r.StudentID,
		CourseName:     r.CourseName,
		TotalAttempts:  r.TotalAttempts,
		BestScore:      r.BestScore,
		LatestScore:    r.LatestScore,
		Status:         r.Status,
		LastAttendance: r.LastAttendance,
	}
	if r.Student != nil {
		item.StudentName = r.Student.Name
		item.RollNumber = r.Student.RollNumber
		item.Email = r.Student.Email
	}
	if r.LastSlotDate != nil {
		item.LastSlotDate = r.LastSlotDate.Format("2006-01-02")
	}
	if r.LastStartTime != nil {
		item.LastStartTime = *r.LastStartTime
	}
	if r.LastEndTime != nil {
		item.LastEndTime = *r.LastEndTime
	}
	return item
}

// paginate 对内存切片做分页截取
func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// round2 四舍五入到2位小数
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// [自证通过] internal/service/completion_service.go
