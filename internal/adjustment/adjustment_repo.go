package adjustment

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=adjustment_repo.go -destination=mock/adjustment_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, adj *Adjustment) error
	FindAll(ctx context.Context, filter QueryFilter) ([]Adjustment, error)
	FindByID(ctx context.Context, id string) (*Adjustment, error)
	// FindEffectiveForPeriod returns ACTIVE adjustments of one direction
	// whose window covers the period. Amortizing rows keep flowing from
	// their anchor period until they transition out of ACTIVE.
	FindEffectiveForPeriod(ctx context.Context, direction, period string) ([]Adjustment, error)
	Update(ctx context.Context, adj *Adjustment) error
}

type QueryFilter struct {
	StaffID   string
	Direction string
	Status    string
	Period    string
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
// a balance decrement commits together with the payslip that caused it.
func (r *repository) conn(ctx context.Context) *gorm.DB {
	db := r.db.WithContext(ctx)
	if r.tx != nil {
		db = db.Session(&gorm.Session{NewDB: true}).WithContext(ctx)
		db.Statement.ConnPool = r.tx
	}
	return db
}

func (r *repository) Create(ctx context.Context, adj *Adjustment) error {
	return r.conn(ctx).Create(adj).Error
}

func (r *repository) FindAll(ctx context.Context, filter QueryFilter) ([]Adjustment, error) {
	db := r.conn(ctx).Model(&Adjustment{})

	if filter.StaffID != "" {
		db = db.Where("staff_id = ?", filter.StaffID)
	}
	if filter.Direction != "" {
		db = db.Where("direction = ?", filter.Direction)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.Period != "" {
		db = db.Where("period = ?", filter.Period)
	}

	var adjs []Adjustment
	err := db.Order("created_at DESC").Find(&adjs).Error
	return adjs, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Adjustment, error) {
	var adj Adjustment
	err := r.conn(ctx).
		First(&adj, "id = ?", id).Error
	return &adj, err
}

func (r *repository) FindEffectiveForPeriod(ctx context.Context, direction, period string) ([]Adjustment, error) {
	var adjs []Adjustment
	err := r.conn(ctx).
		Where("direction = ? AND status = ?", direction, StatusActive).
		Where(`
			(start_period IS NOT NULL AND start_period <= ? AND (end_period IS NULL OR end_period >= ?))
			OR (start_period IS NULL AND period <= ?)
		`, period, period, period).
		Order("created_at ASC").
		Find(&adjs).Error
	return adjs, err
}

func (r *repository) Update(ctx context.Context, adj *Adjustment) error {
	return r.conn(ctx).Save(adj).Error
}
