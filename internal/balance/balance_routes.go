package balance

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
	balances := r.Group("/balances")
	balances.Use(middleware.AuthMiddleware())
	{
		balances.GET("", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetSummary)
		balances.GET("/history", middleware.RBACAuthorize(rbacService, "balance", "read"), handler.GetHistory)
		balances.POST("", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Provision)
		balances.POST("/:employeeId/adjust", middleware.RBACAuthorize(rbacService, "balance", "manage"), handler.Adjust)
	}
}
