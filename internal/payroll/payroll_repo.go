package payroll

import (
	"context"
	"database/sql"
	"fmt"

	"govpay/internal/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_repo.go -destination=mock/payroll_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository

	// AcquireRunScopeLock takes a pg advisory transaction lock on the
	// (period, scopeKey) pair. It must be called inside a transaction;
	// the lock releases on commit or rollback.
	AcquireRunScopeLock(ctx context.Context, period, scopeKey string) error

	CreateRun(ctx context.Context, run *PayrollRun) error
	UpdateRun(ctx context.Context, run *PayrollRun) error
	FindRunByScope(ctx context.Context, period, scopeKey string) (*PayrollRun, error)
	FindRunByID(ctx context.Context, id string) (*PayrollRun, error)
	FindRuns(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRun, error)

	CreatePayslip(ctx context.Context, slip *Payslip) error
	// FindPaidStaffIDs returns every staff id that already holds a
	// payslip for the period, across all runs and scopes.
	FindPaidStaffIDs(ctx context.Context, period string) ([]uuid.UUID, error)
	FindPayslipsByRun(ctx context.Context, runID string) ([]Payslip, error)
	FindPayslipByID(ctx context.Context, id string) (*Payslip, error)
	FindPayslipsByStaff(ctx context.Context, staffID string) ([]Payslip, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{
		db: r.db,
		tx: tx,
	}
}

// conn routes statements through the bound transaction when present so
// a payslip insert and its adjustment decrements commit together.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db = db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) AcquireRunScopeLock(ctx context.Context, period, scopeKey string) error {
	key := fmt.Sprintf("payroll_run:%s:%s", period, scopeKey)
	if r.tx != nil {
		_, err := r.tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtext($1))", key)
		return err
	}
	return r.db.WithContext(ctx).Exec("SELECT pg_advisory_xact_lock(hashtext(?))", key).Error
}

func (r *repository) CreateRun(ctx context.Context, run *PayrollRun) error {
	return r.conn(ctx).Create(run).Error
}

func (r *repository) UpdateRun(ctx context.Context, run *PayrollRun) error {
	return r.conn(ctx).Save(run).Error
}

func (r *repository) FindRunByScope(ctx context.Context, period, scopeKey string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.conn(ctx).
		Where("period = ? AND scope_key = ?", period, scopeKey).
		First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindRunByID(ctx context.Context, id string) (*PayrollRun, error) {
	var run PayrollRun
	err := r.conn(ctx).First(&run, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *repository) FindRuns(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRun, error) {
	db := r.conn(ctx).Model(&PayrollRun{}).
		Scopes(scope.Period(filter.Period))

	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.DepartmentID != "" {
		db = db.Where("scope_key = ?", filter.DepartmentID)
	}

	var runs []PayrollRun
	err := db.Order("created_at DESC").Find(&runs).Error
	return runs, err
}

func (r *repository) CreatePayslip(ctx context.Context, slip *Payslip) error {
	return r.conn(ctx).Create(slip).Error
}

func (r *repository) FindPaidStaffIDs(ctx context.Context, period string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.conn(ctx).Model(&Payslip{}).
		Where("period = ?", period).
		Pluck("staff_id", &ids).Error
	return ids, err
}

func (r *repository) FindPayslipsByRun(ctx context.Context, runID string) ([]Payslip, error) {
	var slips []Payslip
	err := r.conn(ctx).
		Where("payroll_run_id = ?", runID).
		Order("created_at ASC").
		Find(&slips).Error
	return slips, err
}

func (r *repository) FindPayslipByID(ctx context.Context, id string) (*Payslip, error) {
	var slip Payslip
	err := r.conn(ctx).
		Preload("Components").
		First(&slip, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &slip, nil
}

func (r *repository) FindPayslipsByStaff(ctx context.Context, staffID string) ([]Payslip, error) {
	var slips []Payslip
	err := r.conn(ctx).
		Where("staff_id = ?", staffID).
		Order("period DESC").
		Find(&slips).Error
	return slips, err
}
