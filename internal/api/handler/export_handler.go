package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"skilltrack/backend/internal/service"
	"skilltrack/backend/pkg/response"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSkillReports 导出场地技能报告 Excel
// GET /api/v1/export/skill-reports?venue_id=xxx
func (h *ExportHandler) ExportSkillReports(c *gin.Context) {
	venueID := c.Query("venue_id")
	if venueID == "" {
		response.BadRequest(c, 10001, "venue_id 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.ExportSkillReports(c.Request.Context(), venueID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVenueNotFound):
		response.NotFound(c, 16001, "场地不存在")
	case errors.Is(err, service.ErrExportNoRecords):
		response.NotFound(c, 16101, "该场地暂无技能记录")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
