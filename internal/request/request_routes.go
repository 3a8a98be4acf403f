package request

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
	requests := r.Group("/requests")
	requests.Use(middleware.AuthMiddleware())
	{
		requests.GET("", middleware.RBACAuthorize(rbacService, "request", "read"), handler.ListMine)
		requests.GET("/:id", middleware.RBACAuthorize(rbacService, "request", "read"), handler.Get)
		requests.POST("", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Create)
		requests.POST("/:id/submit", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Submit)
		requests.POST("/:id/decision", middleware.RBACAuthorize(rbacService, "request", "decide"), handler.Decide)
		requests.POST("/:id/cancel", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Cancel)
		requests.POST("/:id/withdraw", middleware.RBACAuthorize(rbacService, "request", "create"), handler.Withdraw)
	}
}
