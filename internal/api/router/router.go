package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"skilltrack/backend/config"
	"skilltrack/backend/internal/api/handler"
	"skilltrack/backend/internal/api/middleware"
	"skilltrack/backend/internal/model"
	"skilltrack/backend/pkg/jwt"
	"skilltrack/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Upload.MaxFileBytes + 1<<20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录接口限流）
		auth := v1.Group("/auth")
		{
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", middleware.RateLimit(rdb, 20, time.Minute), h.Auth.Refresh)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)

			// 场地模块
			venues := authorized.Group("/venues")
			{
				venues.GET("", h.Venue.ListVenues)
				venues.GET("/:id/groups", h.Venue.ListGroups)
			}

			// 技能报告模块（Excel 导入 + 教师报告）
			skillReports := authorized.Group("/skill-reports")
			{
				skillReports.POST("/upload", middleware.RoleAuth(model.RoleAdmin), h.SkillReport.UploadSkillReports)
				skillReports.POST("/faculty/venue/reports", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillReport.FacultyVenueReports)
			}

			// 技能完成度模块
			skillCompletion := authorized.Group("/skill-completion")
			skillCompletion.Use(middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty))
			{
				skillCompletion.GET("/venue/:venueId/summary", h.SkillCompletion.VenueSummary)
				skillCompletion.GET("/venue/:venueId/not-attempted", h.SkillCompletion.NotAttempted)
				skillCompletion.GET("/venue/:venueId/records", h.SkillCompletion.VenueRecords)
				skillCompletion.GET("/venue/:venueId/courses", h.SkillCompletion.CourseBreakdown)
				skillCompletion.GET("/venue/:venueId/analytics", h.SkillCompletion.Analytics)
				skillCompletion.GET("/venue/:venueId/export", h.SkillCompletion.ExportRows)
				skillCompletion.GET("/group/:groupId/completion", h.SkillCompletion.GroupCompletion)
			}

			// 技能顺序/进阶模块
			skillOrder := authorized.Group("/skill-order")
			{
				skillOrder.GET("", h.SkillOrder.ListSkillOrders)
				skillOrder.GET("/:id", h.SkillOrder.GetSkillOrder)
				skillOrder.POST("", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillOrder.CreateSkillOrder)
				skillOrder.PUT("/reorder", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillOrder.ReorderSkillOrders)
				skillOrder.PUT("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillOrder.UpdateSkillOrder)
				skillOrder.DELETE("/:id", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillOrder.DeleteSkillOrder)
				skillOrder.GET("/progression/:studentId", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.SkillOrder.StudentProgression)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/skill-reports", middleware.RoleAuth(model.RoleAdmin, model.RoleFaculty), h.Export.ExportSkillReports)
			}
		}
	}

	return r
}
