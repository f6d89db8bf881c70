package adjustment

import (
	"govpay/internal/middleware"
	"govpay/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	adjustments := r.Group("/adjustments")
	adjustments.Use(middleware.AuthMiddleware())
	{
		adjustments.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "read"), handler.GetAll)
		adjustments.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "read"), handler.GetById)
		adjustments.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "create"),
			middleware.RateLimitByUser(1, 5),
			handler.Create,
		)
		adjustments.POST("/:id/approve", middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "approve"), handler.Approve)
		adjustments.POST("/:id/reject", middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "approve"), handler.Reject)
		adjustments.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, rbac.ResourceAdjustment, "update"), handler.Cancel)
	}
}
