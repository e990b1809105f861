package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"skilltrack/backend/internal/model"
	"skilltrack/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Email
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var result []model.User
	for _, u := range m.users {
		result = append(result, *u)
	}
	total := int64(len(result))
	if offset >= len(result) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], total, nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students map[string]*model.Student
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = "stu-" + student.RollNumber
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRoll(_ context.Context, rollNumber string) (*model.Student, error) {
	for _, s := range m.students {
		if s.RollNumber == rollNumber {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByRollLoose(_ context.Context, rollNumber string) (*model.Student, error) {
	want := strings.ToLower(strings.TrimSpace(rollNumber))
	for _, s := range m.students {
		if strings.ToLower(strings.TrimSpace(s.RollNumber)) == want {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) ListAll(_ context.Context) ([]model.Student, error) {
	var result []model.Student
	for _, s := range m.students {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockStudentRepo) List(_ context.Context, offset, limit int) ([]model.Student, int64, error) {
	all, _ := m.ListAll(context.Background())
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock VenueRepository ──

type mockVenueRepo struct {
	venues map[string]*model.Venue
	// facultyVenues faculty_id -> 其负责的场地 ID 列表
	facultyVenues map[string][]string
}

func newMockVenueRepo() *mockVenueRepo {
	return &mockVenueRepo{
		venues:        make(map[string]*model.Venue),
		facultyVenues: make(map[string][]string),
	}
}

func (m *mockVenueRepo) Create(_ context.Context, venue *model.Venue) error {
	if venue.VenueID == "" {
		venue.VenueID = "venue-" + venue.Name
	}
	m.venues[venue.VenueID] = venue
	return nil
}

func (m *mockVenueRepo) GetByID(_ context.Context, id string) (*model.Venue, error) {
	if v, ok := m.venues[id]; ok {
		return v, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockVenueRepo) List(_ context.Context, activeOnly bool) ([]model.Venue, error) {
	var result []model.Venue
	for _, v := range m.venues {
		if activeOnly && !v.IsActive {
			continue
		}
		result = append(result, *v)
	}
	return result, nil
}

func (m *mockVenueRepo) ListByFaculty(_ context.Context, facultyID string) ([]model.Venue, error) {
	var result []model.Venue
	for _, vid := range m.facultyVenues[facultyID] {
		if v, ok := m.venues[vid]; ok {
			result = append(result, *v)
		}
	}
	return result, nil
}

// ── Mock GroupRepository ──

type mockGroupRepo struct {
	groups map[string]*model.StudentGroup
}

func newMockGroupRepo() *mockGroupRepo {
	return &mockGroupRepo{groups: make(map[string]*model.StudentGroup)}
}

func (m *mockGroupRepo) Create(_ context.Context, group *model.StudentGroup) error {
	if group.GroupID == "" {
		group.GroupID = "group-" + group.Name
	}
	m.groups[group.GroupID] = group
	return nil
}

func (m *mockGroupRepo) GetByID(_ context.Context, id string) (*model.StudentGroup, error) {
	if g, ok := m.groups[id]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockGroupRepo) ListByVenue(_ context.Context, venueID string) ([]model.StudentGroup, error) {
	var result []model.StudentGroup
	for _, g := range m.groups {
		if g.VenueID == venueID && g.IsActive {
			result = append(result, *g)
		}
	}
	return result, nil
}

// ── Mock MembershipRepository ──

type mockMembershipRepo struct {
	memberships []model.GroupMembership
	groups      *mockGroupRepo
	students    *mockStudentRepo
}

func newMockMembershipRepo(groups *mockGroupRepo, students *mockStudentRepo) *mockMembershipRepo {
	return &mockMembershipRepo{groups: groups, students: students}
}

func (m *mockMembershipRepo) Create(_ context.Context, ms *model.GroupMembership) error {
	if ms.MembershipID == "" {
		ms.MembershipID = fmt.Sprintf("mem-%d", len(m.memberships)+1)
	}
	m.memberships = append(m.memberships, *ms)
	return nil
}

func (m *mockMembershipRepo) GetCurrentByStudent(_ context.Context, studentID string) (*model.GroupMembership, error) {
	var best *model.GroupMembership
	for i := range m.memberships {
		ms := &m.memberships[i]
		if ms.StudentID != studentID || !ms.IsActive {
			continue
		}
		if best == nil || ms.AllocatedAt.After(best.AllocatedAt) {
			best = ms
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	result := *best
	if g, ok := m.groups.groups[best.GroupID]; ok {
		result.Group = g
	}
	return &result, nil
}

func (m *mockMembershipRepo) ListActiveStudentsByVenue(_ context.Context, venueID, groupID string) ([]model.Student, error) {
	seen := make(map[string]bool)
	var result []model.Student
	for _, ms := range m.memberships {
		if !ms.IsActive || seen[ms.StudentID] {
			continue
		}
		g, ok := m.groups.groups[ms.GroupID]
		if !ok || g.VenueID != venueID {
			continue
		}
		if groupID != "" && ms.GroupID != groupID {
			continue
		}
		if s, ok := m.students.students[ms.StudentID]; ok {
			seen[ms.StudentID] = true
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockMembershipRepo) ListActiveStudentsByGroup(_ context.Context, groupID string) ([]model.Student, error) {
	seen := make(map[string]bool)
	var result []model.Student
	for _, ms := range m.memberships {
		if !ms.IsActive || ms.GroupID != groupID || seen[ms.StudentID] {
			continue
		}
		if s, ok := m.students.students[ms.StudentID]; ok {
			seen[ms.StudentID] = true
			result = append(result, *s)
		}
	}
	return result, nil
}

// ── Mock SkillRecordRepository ──

type mockSkillRecordRepo struct {
	records   []model.SkillRecord
	students  *mockStudentRepo
	idCounter int

	createErr error // 注入写入失败
	updateErr error
}

func newMockSkillRecordRepo(students *mockStudentRepo) *mockSkillRecordRepo {
	return &mockSkillRecordRepo{students: students}
}

func (m *mockSkillRecordRepo) Create(_ context.Context, record *model.SkillRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	if record.RecordID == "" {
		m.idCounter++
		record.RecordID = fmt.Sprintf("rec-%d", m.idCounter)
	}
	record.CreatedAt = time.Now()
	record.UpdatedAt = time.Now()
	m.records = append(m.records, *record)
	return nil
}

func (m *mockSkillRecordRepo) Update(_ context.Context, record *model.SkillRecord) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	for i := range m.records {
		if m.records[i].RecordID == record.RecordID {
			record.UpdatedAt = time.Now()
			m.records[i] = *record
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockSkillRecordRepo) GetByKey(_ context.Context, studentID, courseName, excelVenueName string) (*model.SkillRecord, error) {
	for i := range m.records {
		r := &m.records[i]
		if r.StudentID == studentID && r.CourseName == courseName && r.ExcelVenueName == excelVenueName {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillRecordRepo) ListByStudent(_ context.Context, studentID string) ([]model.SkillRecord, error) {
	var result []model.SkillRecord
	for _, r := range m.records {
		if r.StudentID == studentID {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockSkillRecordRepo) ListByStudentIDs(_ context.Context, studentIDs []string) ([]model.SkillRecord, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	want := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		want[id] = true
	}
	var result []model.SkillRecord
	for _, r := range m.records {
		if want[r.StudentID] {
			result = append(result, m.withStudent(r))
		}
	}
	return result, nil
}

func (m *mockSkillRecordRepo) ListByVenue(_ context.Context, venueID string) ([]model.SkillRecord, error) {
	var result []model.SkillRecord
	for _, r := range m.records {
		if r.StudentVenueID != nil && *r.StudentVenueID == venueID {
			result = append(result, m.withStudent(r))
		}
	}
	return result, nil
}

func (m *mockSkillRecordRepo) ListWithFilters(_ context.Context, filters *repository.SkillRecordFilters, offset, limit int) ([]model.SkillRecord, int64, error) {
	var filtered []model.SkillRecord
	for _, r := range m.records {
		if filters.VenueID != "" && (r.StudentVenueID == nil || *r.StudentVenueID != filters.VenueID) {
			continue
		}
		if filters.Status != "" && r.Status != filters.Status {
			continue
		}
		if filters.Course != "" && r.CourseName != filters.Course {
			continue
		}
		if filters.Date != "" {
			if r.LastSlotDate == nil || r.LastSlotDate.Format("2006-01-02") != filters.Date {
				continue
			}
		}
		rec := m.withStudent(r)
		if filters.Search != "" {
			needle := strings.ToLower(filters.Search)
			name, roll := "", ""
			if rec.Student != nil {
				name = strings.ToLower(rec.Student.Name)
				roll = strings.ToLower(rec.Student.RollNumber)
			}
			if !strings.Contains(name, needle) && !strings.Contains(roll, needle) &&
				!strings.Contains(strings.ToLower(rec.CourseName), needle) {
				continue
			}
		}
		filtered = append(filtered, rec)
	}

	// 按学号升序保证分页稳定
	sort.Slice(filtered, func(i, j int) bool {
		ri, rj := "", ""
		if filtered[i].Student != nil {
			ri = filtered[i].Student.RollNumber
		}
		if filtered[j].Student != nil {
			rj = filtered[j].Student.RollNumber
		}
		if ri != rj {
			return ri < rj
		}
		return filtered[i].CourseName < filtered[j].CourseName
	})

	total := int64(len(filtered))
	if offset >= len(filtered) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[offset:end], total, nil
}

func (m *mockSkillRecordRepo) withStudent(r model.SkillRecord) model.SkillRecord {
	if s, ok := m.students.students[r.StudentID]; ok {
		r.Student = s
	}
	return r
}

// ── Mock SkillOrderRepository ──

type mockSkillOrderRepo struct {
	orders    map[string]*model.SkillOrder
	idCounter int
}

func newMockSkillOrderRepo() *mockSkillOrderRepo {
	return &mockSkillOrderRepo{orders: make(map[string]*model.SkillOrder)}
}

func (m *mockSkillOrderRepo) Create(_ context.Context, order *model.SkillOrder) error {
	if order.SkillOrderID == "" {
		m.idCounter++
		order.SkillOrderID = fmt.Sprintf("order-%d", m.idCounter)
	}
	order.CreatedAt = time.Now()
	order.UpdatedAt = time.Now()
	m.orders[order.SkillOrderID] = order
	return nil
}

func (m *mockSkillOrderRepo) GetByID(_ context.Context, id string) (*model.SkillOrder, error) {
	if o, ok := m.orders[id]; ok {
		return o, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillOrderRepo) GetByTypeAndName(_ context.Context, courseType, skillName string) (*model.SkillOrder, error) {
	for _, o := range m.orders {
		if o.CourseType == courseType && o.SkillName == skillName {
			return o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSkillOrderRepo) Update(_ context.Context, order *model.SkillOrder) error {
	order.UpdatedAt = time.Now()
	m.orders[order.SkillOrderID] = order
	return nil
}

func (m *mockSkillOrderRepo) Delete(_ context.Context, id string) error {
	delete(m.orders, id)
	return nil
}

func (m *mockSkillOrderRepo) ListByCourseType(_ context.Context, courseType string) ([]model.SkillOrder, error) {
	var result []model.SkillOrder
	for _, o := range m.orders {
		if o.CourseType == courseType {
			result = append(result, *o)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

func (m *mockSkillOrderRepo) ListAll(_ context.Context) ([]model.SkillOrder, error) {
	var result []model.SkillOrder
	for _, o := range m.orders {
		result = append(result, *o)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CourseType != result[j].CourseType {
			return result[i].CourseType < result[j].CourseType
		}
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

func (m *mockSkillOrderRepo) UpdateDisplayOrder(_ context.Context, id string, displayOrder int) error {
	o, ok := m.orders[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	o.DisplayOrder = displayOrder
	o.UpdatedAt = time.Now()
	return nil
}
