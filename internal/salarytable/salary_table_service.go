package salarytable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	salarytableerrors "govpay/internal/salarytable/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	GradeLevelMax = 17
	StepMax       = 15
)

const lookupCacheKeyPrefix = "salarytable:lookup:"

//go:generate mockgen -source=salary_table_service.go -destination=mock/salary_table_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateSalaryGradeRequest) (SalaryGradeResponse, error)
	GetAll(ctx context.Context) ([]SalaryGradeResponse, error)
	LookupBasicSalary(ctx context.Context, gradeLevel, step int) (int64, error)
	Update(ctx context.Context, id string, req UpdateSalaryGradeRequest) (SalaryGradeResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	sf     *singleflight.Group
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	l := zap.L().Named("salarytable.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("salarytable.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, req CreateSalaryGradeRequest) (SalaryGradeResponse, error) {
	if !validGradeStep(req.GradeLevel, req.Step) {
		return SalaryGradeResponse{}, salarytableerrors.ErrInvalidGradeStep
	}
	if req.BasicSalary <= 0 {
		return SalaryGradeResponse{}, salarytableerrors.ErrInvalidBasicSalary
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryGradeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	grade := &SalaryGrade{
		ID:          uuid.New(),
		GradeLevel:  req.GradeLevel,
		Step:        req.Step,
		BasicSalary: req.BasicSalary,
	}

	if err := qtx.Create(ctx, grade); err != nil {
		return SalaryGradeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryGradeResponse{}, err
	}

	s.invalidateLookupCache(ctx, grade.GradeLevel, grade.Step)

	return mapToResponse(*grade), nil
}

func (s *service) GetAll(ctx context.Context) ([]SalaryGradeResponse, error) {
	grades, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(grades), nil
}

// LookupBasicSalary resolves the basic salary for a roster position.
// A missing pair is a configuration fault and always an error: the
// caller must exclude the staff member rather than guess a salary.
// Reference data changes rarely, so hits are cached in redis and cold
// misses are collapsed with singleflight.
func (s *service) LookupBasicSalary(ctx context.Context, gradeLevel, step int) (int64, error) {
	if !validGradeStep(gradeLevel, step) {
		return 0, salarytableerrors.ErrSalaryGradeNotFound.WithDetail(
			"grade level %d step %d is out of range", gradeLevel, step)
	}

	cacheKey := lookupCacheKey(gradeLevel, step)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			if v, err := strconv.ParseInt(cached, 10, 64); err == nil {
				return v, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		grade, err := s.repo.FindByGradeStep(ctx, gradeLevel, step)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return int64(0), salarytableerrors.ErrSalaryGradeNotFound.WithDetail(
					"grade level %d step %d", gradeLevel, step)
			}
			return int64(0), err
		}

		if s.rdb != nil {
			_ = s.rdb.Set(ctx, cacheKey, strconv.FormatInt(grade.BasicSalary, 10), time.Hour).Err()
		}
		return grade.BasicSalary, nil
	})
	if err != nil {
		return 0, err
	}

	return v.(int64), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateSalaryGradeRequest) (SalaryGradeResponse, error) {
	if req.BasicSalary <= 0 {
		return SalaryGradeResponse{}, salarytableerrors.ErrInvalidBasicSalary
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SalaryGradeResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	grade, err := qtx.FindByID(ctx, id)
	if err != nil {
		return SalaryGradeResponse{}, mapRepositoryError(err)
	}

	grade.BasicSalary = req.BasicSalary

	if err := qtx.Update(ctx, grade); err != nil {
		return SalaryGradeResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return SalaryGradeResponse{}, err
	}

	s.invalidateLookupCache(ctx, grade.GradeLevel, grade.Step)

	return mapToResponse(*grade), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	grade, err := qtx.FindByID(ctx, id)
	if err != nil {
		return mapRepositoryError(err)
	}

	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateLookupCache(ctx, grade.GradeLevel, grade.Step)

	return nil
}

func (s *service) invalidateLookupCache(ctx context.Context, gradeLevel, step int) {
	if s.rdb == nil {
		return
	}
	key := lookupCacheKey(gradeLevel, step)
	if err := s.rdb.Del(ctx, key).Err(); err != nil {
		s.logger.Error("failed to invalidate salary lookup cache",
			zap.Error(err),
			zap.String("key", key),
		)
	}
}

func lookupCacheKey(gradeLevel, step int) string {
	return fmt.Sprintf("%s%d:%d", lookupCacheKeyPrefix, gradeLevel, step)
}

func validGradeStep(gradeLevel, step int) bool {
	return gradeLevel >= 1 && gradeLevel <= GradeLevelMax && step >= 1 && step <= StepMax
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return salarytableerrors.ErrSalaryGradeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return salarytableerrors.ErrSalaryGradeExists
	}

	return err
}
