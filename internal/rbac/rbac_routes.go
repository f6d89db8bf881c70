package rbac

import (
	"govpay/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler) {
	roles := r.Group("/rbac")
	roles.Use(middleware.AuthMiddleware())
	{
		roles.GET("/roles", handler.ListRoles)
		roles.GET("/permissions", handler.ListPermissions)
		roles.POST("/reload", handler.ReloadPolicy)
	}
}
