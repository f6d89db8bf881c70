package department

import (
	"govpay/internal/middleware"
	"govpay/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	departments := r.Group("/departments")
	departments.Use(middleware.AuthMiddleware())
	{
		departments.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceDepartment, "read"), handler.GetAll)
		departments.GET("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceDepartment, "read"), handler.GetById)
		departments.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceDepartment, "create"), handler.Create)
		departments.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceDepartment, "update"), handler.Update)
		departments.DELETE("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceDepartment, "delete"), handler.Delete)
	}
}
