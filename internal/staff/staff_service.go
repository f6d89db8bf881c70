package staff

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"govpay/internal/events"
	"govpay/internal/messaging/kafka"
	"govpay/internal/shared/contextutil"
	"govpay/internal/shared/counter"
	stafferrors "govpay/internal/staff/errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

const (
	StatusActive     = "ACTIVE"
	StatusOnLeave    = "ON_LEAVE"
	StatusRetired    = "RETIRED"
	StatusTerminated = "TERMINATED"
)

const (
	GradeLevelMax = 17
	StepMax       = 15
)

const OptionsCacheKey = "staff:options"

//go:generate mockgen -source=staff_service.go -destination=mock/staff_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, req CreateStaffRequest) (StaffResponse, error)
	GetAll(ctx context.Context) ([]StaffResponse, error)
	GetOptions(ctx context.Context) ([]StaffResponse, error)
	GetByID(ctx context.Context, id string) (StaffResponse, error)
	Update(ctx context.Context, id string, req UpdateStaffRequest) (StaffResponse, error)
	Delete(ctx context.Context, id string) error
}

type service struct {
	db      *sql.DB
	repo    Repository
	counter counter.Repository
	outbox  kafka.OutboxRepository
	rdb     *redis.Client
	sf      *singleflight.Group
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, counterRepo counter.Repository, rdb *redis.Client, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, counterRepo, nil, rdb, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rdb *redis.Client,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("staff.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("staff.service")
	}
	return &service{
		db:      db,
		repo:    repo,
		counter: counterRepo,
		outbox:  outboxRepo,
		rdb:     rdb,
		sf:      &singleflight.Group{},
		logger:  l,
	}
}

func (s *service) Create(ctx context.Context, req CreateStaffRequest) (StaffResponse, error) {
	rid := contextutil.GetRequestID(ctx)
	s.logger.Debug("create staff requested",
		zap.String("request_id", rid),
		zap.String("email", req.Email),
	)

	if !validGradeStep(req.GradeLevel, req.Step) {
		return StaffResponse{}, stafferrors.ErrInvalidGradeStep
	}

	var departmentUUID *uuid.UUID
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		parsed, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return StaffResponse{}, stafferrors.ErrInvalidStaffID.WithDetail("department_id is not a uuid")
		}
		departmentUUID = &parsed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StaffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	seq, err := s.counter.GetNextValue(ctx, counter.TypeStaffNumber)
	if err != nil {
		return StaffResponse{}, err
	}

	st := &Staff{
		ID:           uuid.New(),
		StaffNumber:  fmt.Sprintf("ST-%06d", seq),
		FullName:     req.FullName,
		Email:        req.Email,
		GradeLevel:   req.GradeLevel,
		Step:         req.Step,
		DepartmentID: departmentUUID,
		Status:       StatusActive,
	}

	if err := qtx.Create(ctx, st); err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}

	if s.outbox != nil {
		event := events.StaffCreatedEvent{
			EventType:   "staff.created",
			StaffID:     st.ID.String(),
			StaffNumber: st.StaffNumber,
			OccurredAt:  time.Now().UTC(),
		}
		if st.DepartmentID != nil {
			event.DepartmentID = st.DepartmentID.String()
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return StaffResponse{}, err
		}

		outboxEvent := kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     rid,
			AggregateType: "staff",
			AggregateID:   st.ID.String(),
			EventType:     event.EventType,
			Topic:         events.StaffCreatedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}
		if err := s.outbox.WithTx(tx).Create(ctx, outboxEvent); err != nil {
			return StaffResponse{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return StaffResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	s.logger.Info("create staff success",
		zap.String("request_id", rid),
		zap.String("staff_id", st.ID.String()),
		zap.String("staff_number", st.StaffNumber),
	)

	return mapToResponse(*st), nil
}

func (s *service) GetAll(ctx context.Context) ([]StaffResponse, error) {
	staffs, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(staffs), nil
}

// GetOptions serves the roster dropdown. It is read far more often than
// the roster changes, so the list is cached in redis with singleflight
// collapsing concurrent cold reads.
func (s *service) GetOptions(ctx context.Context) ([]StaffResponse, error) {
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, OptionsCacheKey).Result(); err == nil {
			var resp []StaffResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(OptionsCacheKey, func() (interface{}, error) {
		staffs, err := s.repo.FindActive(ctx, "")
		if err != nil {
			return nil, err
		}
		resp := mapToListResponse(staffs)

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				_ = s.rdb.Set(ctx, OptionsCacheKey, payload, 10*time.Minute).Err()
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}

	return v.([]StaffResponse), nil
}

func (s *service) GetByID(ctx context.Context, id string) (StaffResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return StaffResponse{}, stafferrors.ErrInvalidStaffID
	}

	st, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*st), nil
}

func (s *service) Update(ctx context.Context, id string, req UpdateStaffRequest) (StaffResponse, error) {
	if !validGradeStep(req.GradeLevel, req.Step) {
		return StaffResponse{}, stafferrors.ErrInvalidGradeStep
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return StaffResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	st, err := qtx.FindByID(ctx, id)
	if err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}

	var departmentUUID *uuid.UUID
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		parsed, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return StaffResponse{}, stafferrors.ErrInvalidStaffID.WithDetail("department_id is not a uuid")
		}
		departmentUUID = &parsed
	}

	st.FullName = req.FullName
	st.Email = req.Email
	st.GradeLevel = req.GradeLevel
	st.Step = req.Step
	st.DepartmentID = departmentUUID
	st.Status = req.Status

	if err := qtx.Update(ctx, st); err != nil {
		return StaffResponse{}, mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return StaffResponse{}, err
	}

	s.invalidateOptionsCache(ctx)

	return mapToResponse(*st), nil
}

func (s *service) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Delete(ctx, id); err != nil {
		return mapRepositoryError(err)
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateOptionsCache(ctx)
	return nil
}

func (s *service) invalidateOptionsCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, OptionsCacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate staff options cache",
			zap.Error(err),
			zap.String("key", OptionsCacheKey),
		)
	}
}

func validGradeStep(gradeLevel, step int) bool {
	return gradeLevel >= 1 && gradeLevel <= GradeLevelMax && step >= 1 && step <= StepMax
}

func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return stafferrors.ErrStaffNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "uq_staff_number":
				return stafferrors.ErrStaffNumberTaken
			case "uq_staff_email":
				return stafferrors.ErrStaffEmailTaken
			}
		}
	}

	return err
}
