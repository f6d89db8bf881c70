package salarytable

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"testing"
	"time"

	salarytableerrors "govpay/internal/salarytable/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeGradeRepo struct {
	createFunc          func(ctx context.Context, grade *SalaryGrade) error
	findAllFunc         func(ctx context.Context) ([]SalaryGrade, error)
	findByIDFunc        func(ctx context.Context, id string) (*SalaryGrade, error)
	findByGradeStepFunc func(ctx context.Context, gradeLevel, step int) (*SalaryGrade, error)
	updateFunc          func(ctx context.Context, grade *SalaryGrade) error
	deleteFunc          func(ctx context.Context, id string) error

	lookups int
}

func (f *fakeGradeRepo) WithTx(_ *sql.Tx) Repository { return f }

func (f *fakeGradeRepo) Create(ctx context.Context, grade *SalaryGrade) error {
	if f.createFunc != nil {
		return f.createFunc(ctx, grade)
	}
	return nil
}

func (f *fakeGradeRepo) FindAll(ctx context.Context) ([]SalaryGrade, error) {
	if f.findAllFunc != nil {
		return f.findAllFunc(ctx)
	}
	return nil, nil
}

func (f *fakeGradeRepo) FindByID(ctx context.Context, id string) (*SalaryGrade, error) {
	if f.findByIDFunc != nil {
		return f.findByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGradeRepo) FindByGradeStep(ctx context.Context, gradeLevel, step int) (*SalaryGrade, error) {
	f.lookups++
	if f.findByGradeStepFunc != nil {
		return f.findByGradeStepFunc(ctx, gradeLevel, step)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGradeRepo) Update(ctx context.Context, grade *SalaryGrade) error {
	if f.updateFunc != nil {
		return f.updateFunc(ctx, grade)
	}
	return nil
}

func (f *fakeGradeRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFunc != nil {
		return f.deleteFunc(ctx, id)
	}
	return nil
}

func newGradeService(t *testing.T, repo Repository) Service {
	t.Helper()
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, repo, nil)
}

func TestLookupBasicSalary_Found(t *testing.T) {
	repo := &fakeGradeRepo{
		findByGradeStepFunc: func(_ context.Context, gradeLevel, step int) (*SalaryGrade, error) {
			return &SalaryGrade{
				ID:          uuid.New(),
				GradeLevel:  gradeLevel,
				Step:        step,
				BasicSalary: 250_000,
			}, nil
		},
	}
	svc := newGradeService(t, repo)

	v, err := svc.LookupBasicSalary(context.Background(), 9, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(250_000), v)
}

func TestLookupBasicSalary_MissingPairIsConfigurationFault(t *testing.T) {
	svc := newGradeService(t, &fakeGradeRepo{})

	_, err := svc.LookupBasicSalary(context.Background(), 9, 4)
	assert.True(t, errors.Is(err, salarytableerrors.ErrSalaryGradeNotFound))
}

func TestLookupBasicSalary_OutOfRangePairs(t *testing.T) {
	repo := &fakeGradeRepo{}
	svc := newGradeService(t, repo)

	for _, pair := range [][2]int{{0, 1}, {18, 1}, {1, 0}, {1, 16}} {
		_, err := svc.LookupBasicSalary(context.Background(), pair[0], pair[1])
		assert.True(t, errors.Is(err, salarytableerrors.ErrSalaryGradeNotFound))
	}
	// Range checks reject before touching storage.
	assert.Equal(t, 0, repo.lookups)
}

func TestLookupBasicSalary_CacheHitSkipsRepository(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("salarytable:lookup:9:4").SetVal("250000")

	repo := &fakeGradeRepo{}
	svc := NewService(db, repo, rdb)

	v, err := svc.LookupBasicSalary(context.Background(), 9, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(250_000), v)
	assert.Equal(t, 0, repo.lookups)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestLookupBasicSalary_CacheMissFillsCache(t *testing.T) {
	db, _, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet("salarytable:lookup:9:4").RedisNil()
	rmock.ExpectSet("salarytable:lookup:9:4", strconv.FormatInt(250_000, 10), time.Hour).SetVal("OK")

	repo := &fakeGradeRepo{
		findByGradeStepFunc: func(_ context.Context, _, _ int) (*SalaryGrade, error) {
			return &SalaryGrade{ID: uuid.New(), GradeLevel: 9, Step: 4, BasicSalary: 250_000}, nil
		},
	}
	svc := NewService(db, repo, rdb)

	v, err := svc.LookupBasicSalary(context.Background(), 9, 4)
	assert.NoError(t, err)
	assert.Equal(t, int64(250_000), v)
	assert.Equal(t, 1, repo.lookups)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestCreate_ValidatesGradeAndSalary(t *testing.T) {
	svc := newGradeService(t, &fakeGradeRepo{})

	_, err := svc.Create(context.Background(), CreateSalaryGradeRequest{GradeLevel: 18, Step: 1, BasicSalary: 100})
	assert.True(t, errors.Is(err, salarytableerrors.ErrInvalidGradeStep))

	_, err = svc.Create(context.Background(), CreateSalaryGradeRequest{GradeLevel: 1, Step: 1, BasicSalary: 0})
	assert.True(t, errors.Is(err, salarytableerrors.ErrInvalidBasicSalary))
}

func TestCreate_PersistsGrade(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.ExpectBegin()
	mock.ExpectCommit()

	var created *SalaryGrade
	repo := &fakeGradeRepo{
		createFunc: func(_ context.Context, grade *SalaryGrade) error {
			created = grade
			return nil
		},
	}
	svc := NewService(db, repo, nil)

	resp, err := svc.Create(context.Background(), CreateSalaryGradeRequest{
		GradeLevel: 12, Step: 7, BasicSalary: 310_500,
	})

	assert.NoError(t, err)
	assert.Equal(t, 12, created.GradeLevel)
	assert.Equal(t, int64(310_500), resp.BasicSalary)
	assert.NoError(t, mock.ExpectationsWereMet())
}
