package approval

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
	delegations := r.Group("/delegations")
	delegations.Use(middleware.AuthMiddleware())
	{
		delegations.GET("", middleware.RBACAuthorize(rbacService, "delegation", "read"), handler.ListMine)
		delegations.POST("", middleware.RBACAuthorize(rbacService, "delegation", "manage"), handler.Grant)
		delegations.DELETE("/:id", middleware.RBACAuthorize(rbacService, "delegation", "manage"), handler.Revoke)
	}
}
