package salarytable

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=salary_table_repo.go -destination=mock/salary_table_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, grade *SalaryGrade) error
	FindAll(ctx context.Context) ([]SalaryGrade, error)
	FindByID(ctx context.Context, id string) (*SalaryGrade, error)
	FindByGradeStep(ctx context.Context, gradeLevel, step int) (*SalaryGrade, error)
	Update(ctx context.Context, grade *SalaryGrade) error
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

func (r *repository) Create(ctx context.Context, grade *SalaryGrade) error {
	return r.conn(ctx).Create(grade).Error
}

func (r *repository) FindAll(ctx context.Context) ([]SalaryGrade, error) {
	var grades []SalaryGrade
	err := r.conn(ctx).
		Order("grade_level ASC, step ASC").
		Find(&grades).Error
	return grades, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*SalaryGrade, error) {
	var grade SalaryGrade
	err := r.conn(ctx).
		First(&grade, "id = ?", id).Error
	return &grade, err
}

func (r *repository) FindByGradeStep(ctx context.Context, gradeLevel, step int) (*SalaryGrade, error) {
	var grade SalaryGrade
	err := r.conn(ctx).
		Where("grade_level = ? AND step = ?", gradeLevel, step).
		First(&grade).Error
	return &grade, err
}

func (r *repository) Update(ctx context.Context, grade *SalaryGrade) error {
	return r.conn(ctx).Save(grade).Error
}

func (r *repository) Delete(ctx context.Context, id string) error {
	return r.conn(ctx).
		Delete(&SalaryGrade{}, "id = ?", id).Error
}
