package dto

// ── 技能顺序 / 进阶模块 DTO ──

// CreateSkillOrderRequest 创建技能顺序请求
type CreateSkillOrderRequest struct {
	CourseType     string `json:"course_type"     binding:"required,min=1,max=100"`
	SkillName      string `json:"skill_name"      binding:"required,min=1,max=150"`
	DisplayOrder   int    `json:"display_order"   binding:"omitempty,min=0"`
	IsPrerequisite bool   `json:"is_prerequisite"`
	Description    string `json:"description"     binding:"omitempty,max=500"`
}

// UpdateSkillOrderRequest 更新技能顺序请求
type UpdateSkillOrderRequest struct {
	SkillName      *string `json:"skill_name"      binding:"omitempty,min=1,max=150"`
	DisplayOrder   *int    `json:"display_order"   binding:"omitempty,min=0"`
	IsPrerequisite *bool   `json:"is_prerequisite"`
	Description    *string `json:"description"     binding:"omitempty,max=500"`
}

// SkillOrderListRequest 技能顺序列表查询参数
type SkillOrderListRequest struct {
	CourseType string `form:"course_type"`
}

// ReorderItem 单条重排项
type ReorderItem struct {
	ID           string `json:"id"            binding:"required"`
	DisplayOrder int    `json:"display_order" binding:"min=0"`
}

// ReorderSkillOrderRequest 批量重排请求
type ReorderSkillOrderRequest struct {
	Items []ReorderItem `json:"items" binding:"required,min=1,dive"`
}

// SkillOrderResponse 技能顺序信息响应
type SkillOrderResponse struct {
	ID             string `json:"id"`
	CourseType     string `json:"course_type"`
	SkillName      string `json:"skill_name"`
	DisplayOrder   int    `json:"display_order"`
	IsPrerequisite bool   `json:"is_prerequisite"`
	Description    string `json:"description,omitempty"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// ── 进阶视图 ──

// 进阶条目状态
const (
	ProgressionCleared   = "Cleared"
	ProgressionLocked    = "Locked"
	ProgressionAvailable = "Available"
)

// ProgressionSkill 学生视角的单个技能进阶状态
type ProgressionSkill struct {
	SkillName      string   `json:"skill_name"`
	DisplayOrder   int      `json:"display_order"`
	IsPrerequisite bool     `json:"is_prerequisite"`
	Status         string   `json:"status"` // Cleared | Locked | Available
	BestScore      *float64 `json:"best_score,omitempty"`
	LatestScore    *float64 `json:"latest_score,omitempty"`
	TotalAttempts  int      `json:"total_attempts"`
}

// ProgressionResponse 学生进阶视图响应
type ProgressionResponse struct {
	StudentID  string             `json:"student_id"`
	CourseType string             `json:"course_type"`
	Skills     []ProgressionSkill `json:"skills"`
}

// [自证通过] internal/dto/skill_order.go
