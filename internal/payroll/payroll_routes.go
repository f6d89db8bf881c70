package payroll

import (
	"govpay/internal/middleware"
	"govpay/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service, rdb *redis.Client) {
	runs := r.Group("/payroll-runs")
	runs.Use(middleware.AuthMiddleware())
	{
		runs.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "create"),
			middleware.RateLimitByUser(0.1, 1),
			middleware.Idempotency(rdb),
			handler.StartRun,
		)
		runs.POST("/:id/approve",
			middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "approve"),
			middleware.RateLimitByUser(0.5, 2),
			handler.Approve,
		)
		runs.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "read"), handler.GetRuns)
		runs.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "read"), handler.GetRunById)
		runs.GET("/:id/payslips", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "read"), handler.GetRunPayslips)
	}

	payslips := r.Group("/payslips")
	payslips.Use(middleware.AuthMiddleware())
	{
		payslips.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "read"), handler.GetPayslipBreakdown)
		payslips.GET("/staff/:staffId", middleware.RBACAuthorize(rbacService, rbac.ResourcePayroll, "read"), handler.GetStaffHistory)
	}
}
