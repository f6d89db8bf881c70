package app

import (
	"database/sql"
	"path/filepath"

	"govpay/internal/adjustment"
	"govpay/internal/department"
	"govpay/internal/messaging/kafka"
	"govpay/internal/notification"
	"govpay/internal/payroll"
	"govpay/internal/rbac"
	"govpay/internal/rbac/infra"
	"govpay/internal/salarytable"
	"govpay/internal/shared/counter"
	"govpay/internal/staff"

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
	counterRepo := counter.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	departmentRepo := department.NewRepository(gormDB)
	staffRepo := staff.NewRepository(gormDB)
	salaryTableRepo := salarytable.NewRepository(gormDB)
	adjustmentRepo := adjustment.NewRepository(gormDB)
	payrollRepo := payroll.NewRepository(gormDB)
	notificationRepo := notification.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(filepath.Join("internal", "rbac", "infra", "model.conf"))
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(rbacRepo, enforcer)

	// --- Services ---
	departmentService := department.NewService(db, departmentRepo)
	staffService := staff.NewServiceWithOutbox(db, staffRepo, counterRepo, outboxRepo, rdb)
	salaryTableService := salarytable.NewService(db, salaryTableRepo, rdb)
	adjustmentService := adjustment.NewServiceWithOutbox(db, adjustmentRepo, outboxRepo)
	payrollService := payroll.NewService(
		db,
		payrollRepo,
		adjustmentRepo,
		staffRepo,
		salaryTableService,
		counterRepo,
		outboxRepo,
		statutoryRatesFromEnv(),
	)
	notificationService := notification.NewService(notificationRepo)

	// --- Handlers ---
	departmentHandler := department.NewHandler(departmentService)
	staffHandler := staff.NewHandler(staffService)
	salaryTableHandler := salarytable.NewHandler(salaryTableService)
	adjustmentHandler := adjustment.NewHandler(adjustmentService)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rdb)
	notificationHandler := notification.NewHandler(notificationService)
	rbacHandler := rbac.NewHandler(rbacService, rbacRepo)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		department.RegisterRoutes(api, departmentHandler, rbacService)
		staff.RegisterRoutes(api, staffHandler, rbacService)
		salarytable.RegisterRoutes(api, salaryTableHandler, rbacService)
		adjustment.RegisterRoutes(api, adjustmentHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
		notification.RegisterRoutes(api, notificationHandler)
	}

	rbac.RegisterRoutes(api, rbacHandler)

	return nil
}
