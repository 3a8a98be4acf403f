package calendar

import (
	"go-leave/internal/middleware"
	"go-leave/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	cal := r.Group("/calendar")
	cal.Use(middleware.AuthMiddleware())
	{
		cal.GET("/departments/:departmentId", middleware.RBACAuthorize(rbacService, "calendar", "read"), handler.DepartmentMonth)
		cal.GET("/departments/:departmentId/conflicts", middleware.RBACAuthorize(rbacService, "calendar", "read"), handler.TeamConflicts)
	}
}
