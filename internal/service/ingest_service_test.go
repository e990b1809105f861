package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"skilltrack/backend/config"
	"skilltrack/backend/internal/model"
	"skilltrack/backend/internal/repository"
)

type ingestFixture struct {
	svc     SkillReportService
	student *mockStudentRepo
	venue   *mockVenueRepo
	group   *mockGroupRepo
	member  *mockMembershipRepo
	record  *mockSkillRecordRepo
}

func newIngestFixture() *ingestFixture {
	students := newMockStudentRepo()
	venues := newMockVenueRepo()
	groups := newMockGroupRepo()
	members := newMockMembershipRepo(groups, students)
	records := newMockSkillRecordRepo(students)

	repo := &repository.Repository{
		Student:     students,
		Venue:       venues,
		Group:       groups,
		Membership:  members,
		SkillRecord: records,
	}
	cfg := &config.Config{}
	cfg.Upload.MaxRows = 5000

	return &ingestFixture{
		svc:     NewSkillReportService(cfg, repo, zap.NewNop()),
		student: students,
		venue:   venues,
		group:   groups,
		member:  members,
		record:  records,
	}
}

// seedStudentWithGroup 注册一名学生并分配到指定场地下的分组
func (f *ingestFixture) seedStudentWithGroup(roll, venueID, facultyID string) *model.Student {
	ctx := context.Background()
	student := &model.Student{RollNumber: roll, Name: "学生" + roll}
	f.student.Create(ctx, student)

	f.venue.Create(ctx, &model.Venue{VenueID: venueID, Name: venueID, IsActive: true})
	group := &model.StudentGroup{
		GroupID:  "group-" + roll,
		Name:     "组-" + roll,
		VenueID:  venueID,
		IsActive: true,
	}
	if facultyID != "" {
		group.FacultyID = &facultyID
	}
	f.group.Create(ctx, group)
	f.member.Create(ctx, &model.GroupMembership{
		GroupID:     group.GroupID,
		StudentID:   student.StudentID,
		IsActive:    true,
		AllocatedAt: time.Now(),
	})
	return student
}

func attemptRow(rowNum int, roll, course string, score float64, status string) SkillAttemptRow {
	return SkillAttemptRow{
		Row:        rowNum,
		RollNumber: roll,
		CourseName: course,
		Venue:      "主泳池",
		Score:      score,
		Status:     status,
		Attendance: model.AttendancePresent,
	}
}

// ────────────────────── 导入测试 ──────────────────────

func TestImportSkillReports_InsertNew(t *testing.T) {
	f := newIngestFixture()
	f.seedStudentWithGroup("R001", "venue-1", "faculty-1")

	resp, err := f.svc.ImportSkillReports(context.Background(),
		[]SkillAttemptRow{attemptRow(2, "R001", "Freestyle", 72.5, model.StatusOngoing)},
		map[string]bool{"roll_number": true, "course_name": true})
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}

	if resp.Inserted != 1 || resp.Updated != 0 || resp.Errors != 0 {
		t.Errorf("期望 inserted=1 updated=0 errors=0，实际=%d/%d/%d",
			resp.Inserted, resp.Updated, resp.Errors)
	}
	if resp.Processed != 1 || resp.TotalRecords != 1 {
		t.Errorf("期望 processed=1 total=1，实际=%d/%d", resp.Processed, resp.TotalRecords)
	}

	if len(f.record.records) != 1 {
		t.Fatalf("期望1条技能记录，实际=%d", len(f.record.records))
	}
	rec := f.record.records[0]
	if rec.TotalAttempts != 1 {
		t.Errorf("期望尝试次数=1，实际=%d", rec.TotalAttempts)
	}
	if rec.BestScore != 72.5 || rec.LatestScore != 72.5 {
		t.Errorf("期望最高分=最新分=72.5，实际=%v/%v", rec.BestScore, rec.LatestScore)
	}
	if rec.StudentVenueID == nil || *rec.StudentVenueID != "venue-1" {
		t.Errorf("期望归属场地=venue-1，实际=%v", rec.StudentVenueID)
	}
	if rec.FacultyID == nil || *rec.FacultyID != "faculty-1" {
		t.Errorf("期望负责教师=faculty-1，实际=%v", rec.FacultyID)
	}
}

func TestImportSkillReports_MergeExisting(t *testing.T) {
	f := newIngestFixture()
	f.seedStudentWithGroup("R001", "venue-1", "")
	ctx := context.Background()

	// 第一次导入：通过，85分
	if _, err := f.svc.ImportSkillReports(ctx,
		[]SkillAttemptRow{attemptRow(2, "R001", "Freestyle", 85, model.StatusCleared)}, nil); err != nil {
		t.Fatalf("首次导入应成功: %v", err)
	}

	// 第二次导入：同一业务主键，低分且未通过
	resp, err := f.svc.ImportSkillReports(ctx,
		[]SkillAttemptRow{attemptRow(2, "R001", "Freestyle", 60, model.StatusNotCleared)}, nil)
	if err != nil {
		t.Fatalf("二次导入应成功: %v", err)
	}

	if resp.Inserted != 0 || resp.Updated != 1 {
		t.Errorf("期望 inserted=0 updated=1，实际=%d/%d", resp.Inserted, resp.Updated)
	}
	if len(f.record.records) != 1 {
		t.Fatalf("重复导入不应新增记录，实际=%d条", len(f.record.records))
	}
	rec := f.record.records[0]
	if rec.TotalAttempts != 2 {
		t.Errorf("期望尝试次数=2，实际=%d", rec.TotalAttempts)
	}
	if rec.BestScore != 85 {
		t.Errorf("最高分不应被低分覆盖，期望85，实际=%v", rec.BestScore)
	}
	if rec.LatestScore != 60 {
		t.Errorf("最新分应被覆盖为60，实际=%v", rec.LatestScore)
	}
	if rec.Status != model.StatusCleared {
		t.Errorf("Cleared 状态不应被降级，实际=%s", rec.Status)
	}
}

func TestImportSkillReports_RowErrors(t *testing.T) {
	f := newIngestFixture()
	f.seedStudentWithGroup("R001", "venue-1", "")

	noVenue := attemptRow(4, "R001", "Freestyle", 50, model.StatusOngoing)
	noVenue.Venue = ""

	rows := []SkillAttemptRow{
		attemptRow(2, "", "Freestyle", 50, model.StatusOngoing), // 缺学号
		attemptRow(3, "R001", "", 50, model.StatusOngoing),      // 缺课程名
		noVenue, // 缺场地名
		attemptRow(5, "R999", "Freestyle", 50, model.StatusOngoing), // 学生不存在
		attemptRow(6, "R001", "Freestyle", 50, model.StatusOngoing), // 正常行
	}
	resp, err := f.svc.ImportSkillReports(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("行级错误不应终止导入: %v", err)
	}

	if resp.Errors != 4 || resp.Processed != 1 {
		t.Errorf("期望 errors=4 processed=1，实际=%d/%d", resp.Errors, resp.Processed)
	}
	if resp.Inserted != 1 {
		t.Errorf("期望 inserted=1，实际=%d", resp.Inserted)
	}
	if len(resp.ErrorDetails) != 4 {
		t.Fatalf("期望4条错误详情，实际=%d", len(resp.ErrorDetails))
	}

	wantReasons := map[int]string{
		2: "Missing required field: roll_number",
		3: "Missing required field: course_name",
		4: "Missing required field: venue",
		5: "Student not found: R999",
	}
	for _, detail := range resp.ErrorDetails {
		if want, ok := wantReasons[detail.Row]; !ok || detail.Reason != want {
			t.Errorf("第%d行错误原因不符: %s", detail.Row, detail.Reason)
		}
	}
}

func TestImportSkillReports_ErrorDetailsCapped(t *testing.T) {
	f := newIngestFixture()

	var rows []SkillAttemptRow
	for i := 0; i < 60; i++ {
		rows = append(rows, attemptRow(i+2, fmt.Sprintf("R%03d", i), "Freestyle", 0, model.StatusOngoing))
	}
	resp, err := f.svc.ImportSkillReports(context.Background(), rows, nil)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}

	if resp.Errors != 60 {
		t.Errorf("错误计数应为全量60，实际=%d", resp.Errors)
	}
	if len(resp.ErrorDetails) != 50 {
		t.Errorf("错误详情应截断为50条，实际=%d", len(resp.ErrorDetails))
	}
}

func TestImportSkillReports_RollNormalization(t *testing.T) {
	f := newIngestFixture()
	f.seedStudentWithGroup("R001", "venue-1", "")

	// 学号大小写、首尾空白不影响匹配
	resp, err := f.svc.ImportSkillReports(context.Background(),
		[]SkillAttemptRow{attemptRow(2, "  r001 ", "Freestyle", 70, model.StatusOngoing)}, nil)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if resp.Inserted != 1 || resp.Errors != 0 {
		t.Errorf("宽松匹配应命中学生，实际 inserted=%d errors=%d", resp.Inserted, resp.Errors)
	}
}

func TestImportSkillReports_NoAllocation(t *testing.T) {
	f := newIngestFixture()
	// 学生存在但没有任何分组
	f.student.Create(context.Background(), &model.Student{RollNumber: "R002", Name: "无分组学生"})

	resp, err := f.svc.ImportSkillReports(context.Background(),
		[]SkillAttemptRow{attemptRow(2, "R002", "Backstroke", 55, model.StatusOngoing)}, nil)
	if err != nil {
		t.Fatalf("导入应成功: %v", err)
	}
	if resp.Inserted != 1 {
		t.Fatalf("无分组学生仍应入库，实际 inserted=%d", resp.Inserted)
	}

	rec := f.record.records[0]
	if rec.StudentVenueID != nil || rec.FacultyID != nil {
		t.Errorf("无分组时归属应为空，实际 venue=%v faculty=%v", rec.StudentVenueID, rec.FacultyID)
	}
}

func TestImportSkillReports_LatestAllocationWins(t *testing.T) {
	f := newIngestFixture()
	ctx := context.Background()
	student := f.seedStudentWithGroup("R001", "venue-old", "")

	// 更晚分配到新场地的分组
	f.venue.Create(ctx, &model.Venue{VenueID: "venue-new", Name: "venue-new", IsActive: true})
	f.group.Create(ctx, &model.StudentGroup{
		GroupID: "group-new", Name: "新组", VenueID: "venue-new", IsActive: true,
	})
	f.member.Create(ctx, &model.GroupMembership{
		GroupID:     "group-new",
		StudentID:   student.StudentID,
		IsActive:    true,
		AllocatedAt: time.Now().Add(time.Hour),
	})

	if _, err := f.svc.ImportSkillReports(ctx,
		[]SkillAttemptRow{attemptRow(2, "R001", "Freestyle", 70, model.StatusOngoing)}, nil); err != nil {
		t.Fatalf("导入应成功: %v", err)
	}

	rec := f.record.records[0]
	if rec.StudentVenueID == nil || *rec.StudentVenueID != "venue-new" {
		t.Errorf("应取最新分配的场地 venue-new，实际=%v", rec.StudentVenueID)
	}
}

func TestImportSkillReports_WriteFailure(t *testing.T) {
	f := newIngestFixture()
	f.seedStudentWithGroup("R001", "venue-1", "")
	f.record.createErr = errors.New("duplicate entry")

	_, err := f.svc.ImportSkillReports(context.Background(),
		[]SkillAttemptRow{attemptRow(2, "R001", "Freestyle", 70, model.StatusOngoing)}, nil)
	if err == nil {
		t.Fatal("写入失败应返回错误")
	}
	if !errors.Is(err, f.record.createErr) {
		t.Errorf("期望包装底层写入错误，实际: %v", err)
	}
}
