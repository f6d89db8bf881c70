package staff

import (
	"govpay/internal/middleware"
	"govpay/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	staffs := r.Group("/staff")
	staffs.Use(middleware.AuthMiddleware())
	{
		staffs.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "read"), handler.GetAll)
		staffs.GET("/options", middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "read"), handler.GetOptions)
		staffs.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "read"), handler.GetById)
		staffs.POST("",
			middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "create"),
			middleware.RateLimitByUser(2, 10),
			handler.Create,
		)
		staffs.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "update"), handler.Update)
		staffs.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceStaff, "delete"),
			middleware.RateLimitByUser(0.1, 1),
			handler.Delete,
		)
	}
}
