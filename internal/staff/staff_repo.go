package staff

import (
	"context"
	"database/sql"

	"govpay/internal/scope"

	"gorm.io/gorm"
)

//go:generate mockgen -source=staff_repo.go -destination=mock/staff_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, st *Staff) error
	FindAll(ctx context.Context) ([]Staff, error)
	FindByID(ctx context.Context, id string) (*Staff, error)
	FindActive(ctx context.Context, departmentID string) ([]Staff, error)
	Update(ctx context.Context, st *Staff) error
	Delete(ctx context.Context, id string) error
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

// conn routes statements through the bound transaction when present.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.conn(ctx)
	if r.tx != nil {
		db = db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, st *Staff) error {
	return r.conn(ctx).Create(st).Error
}

func (r *repository) FindAll(ctx context.Context) ([]Staff, error) {
	var staffs []Staff
	err := r.conn(ctx).
		Order("staff_number ASC").
		Find(&staffs).Error
	return staffs, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Staff, error) {
	var st Staff
	err := r.conn(ctx).
		First(&st, "id = ?", id).Error
	return &st, err
}

// FindActive resolves the roster for a payroll run. An empty
// departmentID means all departments.
func (r *repository) FindActive(ctx context.Context, departmentID string) ([]Staff, error) {
	var staffs []Staff
	err := r.conn(ctx).
		Where("status = ?", StatusActive).
		Scopes(scope.Department(departmentID)).
		Order("staff_number ASC").
		Find(&staffs).Error
	return staffs, err
}

func (r *repository) Update(ctx context.Context, st *Staff) error {
	return r.conn(ctx).Save(st).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).
		Delete(&Staff{}, "id = ?", id).Error
}
