package app

import (
	"os"
	"strconv"

	"govpay/internal/adjustment"
	"govpay/internal/department"
	"govpay/internal/messaging/kafka"
	"govpay/internal/middleware"
	"govpay/internal/notification"
	"govpay/internal/payroll"
	"govpay/internal/salarytable"
	"govpay/internal/shared/connection"
	"govpay/internal/staff"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func BuildApp(router *gin.Engine) error {
	logger := zap.L().Named("app")

	gormDB, err := connection.ConnectGORMWithRetry(
		os.Getenv("DB_HOST"),
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_NAME"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_SSLMODE"),
		5,
	)
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	if os.Getenv("DB_AUTO_MIGRATE") == "true" {
		if err := gormDB.AutoMigrate(
			&department.Department{},
			&staff.Staff{},
			&salarytable.SalaryGrade{},
			&adjustment.Adjustment{},
			&payroll.PayrollRun{},
			&payroll.Payslip{},
			&payroll.PayslipComponent{},
			&notification.Notification{},
			&kafka.OutboxEvent{},
		); err != nil {
			return err
		}
		logger.Info("schema migration applied")
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(os.Getenv("REDIS_ADDR"), 5)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	router.Use(middleware.RequestID())
	router.Use(middleware.ContextLogger(zap.L()))

	return registerModules(router, sqlDB, gormDB, redisClient)
}

// statutoryRatesFromEnv returns the mandated rates with per-line env
// overrides, so revisions ship without a rebuild. Runs freeze their own
// copy, so changing these never rewrites history.
func statutoryRatesFromEnv() payroll.StatutoryRates {
	rates := payroll.DefaultStatutoryRates()

	override := func(key string, target *int64) {
		if v := os.Getenv(key); v != "" {
			if bps, err := strconv.ParseInt(v, 10, 64); err == nil && bps >= 0 {
				*target = bps
			}
		}
	}

	override("PAYROLL_HOUSING_BPS", &rates.HousingBps)
	override("PAYROLL_TRANSPORT_BPS", &rates.TransportBps)
	override("PAYROLL_MEDICAL_BPS", &rates.MedicalBps)
	override("PAYROLL_PENSION_BPS", &rates.PensionBps)
	override("PAYROLL_TAX_BPS", &rates.TaxBps)
	override("PAYROLL_HOUSING_FUND_BPS", &rates.HousingFundBps)

	return rates
}
