package app

import (
	"database/sql"
	"path/filepath"

	"go-leave/internal/approval"
	"go-leave/internal/balance"
	"go-leave/internal/calendar"
	"go-leave/internal/directory"
	"go-leave/internal/entitlement"
	"go-leave/internal/holiday"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/rbac"
	"go-leave/internal/rbac/infra"
	"go-leave/internal/request"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
) error {
	// --- Repositories ---
	rbacRepo := rbac.NewRepository(gormDB)
	directoryRepo := directory.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	balanceRepo := balance.NewRepository(db, gormDB)
	chainRepo := approval.NewChainRepository(db, gormDB)
	delegationRepo := approval.NewDelegationRepository(gormDB)
	requestRepo := request.NewRepository(db, gormDB)
	calendarRepo := calendar.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Static configuration ---
	catalog := entitlement.NewCatalog()
	validator := entitlement.NewValidator()
	matrix := approval.DefaultMatrix()

	// --- Services ---
	directoryService := directory.NewService(directoryRepo)
	holidayProvider := holiday.NewProvider(holidayRepo)
	balanceService := balance.NewService(db, balanceRepo, catalog, outboxRepo)
	delegationService := approval.NewDelegationService(delegationRepo)
	approvalRouter := approval.NewRouter(matrix, delegationRepo)
	projector := calendar.NewProjector(calendarRepo)
	requestService := request.NewService(
		db,
		requestRepo,
		chainRepo,
		approvalRouter,
		outboxRepo,
		balanceService,
		catalog,
		validator,
		directoryService,
		holidayProvider,
		projector,
	)

	// --- Handlers ---
	balanceHandler := balance.NewHandler(balanceService, rdb)
	approvalHandler := approval.NewHandler(delegationService)
	requestHandler := request.NewHandler(requestService)
	calendarHandler := calendar.NewHandler(projector)
	holidayHandler := holiday.NewHandler(holidayRepo)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		balance.RegisterRoutes(api, balanceHandler, rbacService)
		approval.RegisterRoutes(api, approvalHandler, rbacService)
		request.RegisterRoutes(api, requestHandler, rbacService)
		calendar.RegisterRoutes(api, calendarHandler, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, rbacService)
	}

	return nil
}
