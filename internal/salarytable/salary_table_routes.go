package salarytable

import (
	"govpay/internal/middleware"
	"govpay/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, rbacService rbac.Service) {
	grades := r.Group("/salary-table")
	grades.Use(middleware.AuthMiddleware())
	{
		grades.GET("", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTable, "read"), handler.GetAll)
		grades.GET("/lookup", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTable, "read"), handler.Lookup)
		grades.POST("", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTable, "create"), handler.Create)
		grades.PUT("/:id", middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTable, "update"), handler.Update)
		grades.DELETE("/:id",
			middleware.RBACAuthorize(rbacService, rbac.ResourceSalaryTable, "delete"),
			middleware.RateLimitByUser(0.1, 1),
			handler.Delete,
		)
	}
}
