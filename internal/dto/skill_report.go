package dto

// ── 技能报告导入 / 教师报告 DTO ──

// ImportRowError 单行导入失败详情
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportSummaryResponse 批量导入汇总
// ErrorDetails 最多返回 50 条，Errors 仍为全量失败计数
type ImportSummaryResponse struct {
	TotalRecords    int              `json:"total_records"`
	Processed       int              `json:"processed"`
	Inserted        int              `json:"inserted"`
	Updated         int              `json:"updated"`
	Errors          int              `json:"errors"`
	ErrorDetails    []ImportRowError `json:"error_details"`
	ColumnsDetected map[string]bool  `json:"columns_detected"`
}

// FacultyReportRequest 教师场地报告查询请求
type FacultyReportRequest struct {
	VenueID   string `json:"venueId"   binding:"required"`
	Page      int    `json:"page"      binding:"omitempty,min=1"`
	Limit     int    `json:"limit"     binding:"omitempty,min=1,max=100"`
	Status    string `json:"status"`
	Date      string `json:"date"` // YYYY-MM-DD，匹配 last_slot_date
	Search    string `json:"search"`
	SortBy    string `json:"sortBy"`
	SortOrder string `json:"sortOrder"` // "asc" | "desc"
}

// GetPage 获取页码（含默认值）
func (r *FacultyReportRequest) GetPage() int {
	if r.Page <= 0 {
		return 1
	}
	return r.Page
}

// GetLimit 获取每页数量（含默认值）
func (r *FacultyReportRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 20
	}
	return r.Limit
}

// GetOffset 计算偏移量
func (r *FacultyReportRequest) GetOffset() int {
	return (r.GetPage() - 1) * r.GetLimit()
}

// ReportStatistics 报告列表附带的整体统计
type ReportStatistics struct {
	TotalRecords  int `json:"total_records"`
	ClearedCount  int `json:"cleared_count"`
	OngoingCount  int `json:"ongoing_count"`
	NotClearedCnt int `json:"not_cleared_count"`
}

// ReportPagination 报告列表分页信息
type ReportPagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// FacultyReportResponse 教师场地报告响应
type FacultyReportResponse struct {
	Venue      VenueResponse     `json:"venue"`
	Reports    []SkillRecordItem `json:"reports"`
	Statistics ReportStatistics  `json:"statistics"`
	Pagination ReportPagination  `json:"pagination"`
}

// [自证通过] internal/dto/skill_report.go
