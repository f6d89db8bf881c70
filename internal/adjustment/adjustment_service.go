package adjustment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	adjustmenterrors "govpay/internal/adjustment/errors"
	"govpay/internal/domain"
	"govpay/internal/events"
	"govpay/internal/messaging/kafka"
	"govpay/internal/shared/contextutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=adjustment_service.go -destination=mock/adjustment_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, actorID string, req CreateAdjustmentRequest) (AdjustmentResponse, error)
	GetAll(ctx context.Context, filter GetAdjustmentsFilterRequest) ([]AdjustmentResponse, error)
	GetByID(ctx context.Context, id string) (AdjustmentResponse, error)
	Approve(ctx context.Context, actorID, id string) (AdjustmentResponse, error)
	Reject(ctx context.Context, actorID, id string) (AdjustmentResponse, error)
	Cancel(ctx context.Context, actorID, id string) (AdjustmentResponse, error)
	ActiveAllowancesForPeriod(ctx context.Context, period string) ([]Adjustment, error)
	ActiveDeductionsForPeriod(ctx context.Context, period string) ([]Adjustment, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, logger ...*zap.Logger) Service {
	return NewServiceWithOutbox(db, repo, nil, logger...)
}

func NewServiceWithOutbox(
	db *sql.DB,
	repo Repository,
	outboxRepo kafka.OutboxRepository,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("adjustment.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("adjustment.service")
	}
	return &service{
		db:     db,
		repo:   repo,
		outbox: outboxRepo,
		logger: l,
	}
}

func (s *service) Create(ctx context.Context, actorID string, req CreateAdjustmentRequest) (AdjustmentResponse, error) {
	s.logger.Debug("create adjustment requested",
		zap.String("actor_id", actorID),
		zap.String("staff_id", req.StaffID),
		zap.String("direction", req.Direction),
		zap.String("type", req.Type),
	)

	adj, err := buildAdjustment(actorID, req)
	if err != nil {
		s.logger.Warn("create adjustment validation failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.Create(ctx, adj); err != nil {
		s.logger.Error("create adjustment persist failed", zap.Error(err))
		return AdjustmentResponse{}, err
	}

	if err := s.queueLifecycleEvent(ctx, tx, adj, events.AdjustmentCreated); err != nil {
		return AdjustmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AdjustmentResponse{}, err
	}

	s.logger.Info("create adjustment success",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("staff_id", adj.StaffID.String()),
		zap.String("status", adj.Status),
	)

	return mapToResponse(*adj), nil
}

func (s *service) GetAll(ctx context.Context, filter GetAdjustmentsFilterRequest) ([]AdjustmentResponse, error) {
	adjs, err := s.repo.FindAll(ctx, QueryFilter{
		StaffID:   filter.StaffID,
		Direction: filter.Direction,
		Status:    filter.Status,
		Period:    filter.Period,
	})
	if err != nil {
		return nil, err
	}
	return mapToListResponse(adjs), nil
}

func (s *service) GetByID(ctx context.Context, id string) (AdjustmentResponse, error) {
	adj, err := s.findByID(ctx, s.repo, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	return mapToResponse(*adj), nil
}

// Approve releases a pending allowance into the active pool. Deductions
// never pass through here: they are created active because several
// types are externally mandated.
func (s *service) Approve(ctx context.Context, actorID, id string) (AdjustmentResponse, error) {
	return s.review(ctx, actorID, id, StatusActive, events.AdjustmentApproved)
}

func (s *service) Reject(ctx context.Context, actorID, id string) (AdjustmentResponse, error) {
	return s.review(ctx, actorID, id, StatusCancelled, events.AdjustmentRejected)
}

func (s *service) review(ctx context.Context, actorID, id, targetStatus, eventType string) (AdjustmentResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidAdjustmentID.WithDetail("actor id is not a uuid")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	adj, err := s.findByID(ctx, qtx, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}

	if adj.Status != StatusPending {
		return AdjustmentResponse{}, adjustmenterrors.ErrNotPending
	}

	adj.Status = targetStatus
	approverID := uuid.MustParse(actorID)
	now := time.Now().UTC()
	adj.ApprovedBy = &approverID
	adj.ApprovedAt = &now

	if err := qtx.Update(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}

	if err := s.queueLifecycleEvent(ctx, tx, adj, eventType); err != nil {
		return AdjustmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AdjustmentResponse{}, err
	}

	s.logger.Info("adjustment reviewed",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("status", adj.Status),
		zap.String("approved_by", actorID),
	)

	return mapToResponse(*adj), nil
}

func (s *service) Cancel(ctx context.Context, actorID, id string) (AdjustmentResponse, error) {
	if _, err := uuid.Parse(actorID); err != nil {
		return AdjustmentResponse{}, adjustmenterrors.ErrInvalidAdjustmentID.WithDetail("actor id is not a uuid")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return AdjustmentResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	adj, err := s.findByID(ctx, qtx, id)
	if err != nil {
		return AdjustmentResponse{}, err
	}

	if adj.Status != StatusPending && adj.Status != StatusActive {
		return AdjustmentResponse{}, adjustmenterrors.ErrNotCancellable
	}

	adj.Status = StatusCancelled

	if err := qtx.Update(ctx, adj); err != nil {
		return AdjustmentResponse{}, err
	}

	if err := s.queueLifecycleEvent(ctx, tx, adj, events.AdjustmentCancelled); err != nil {
		return AdjustmentResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return AdjustmentResponse{}, err
	}

	s.logger.Info("adjustment cancelled",
		zap.String("adjustment_id", adj.ID.String()),
		zap.String("actor_id", actorID),
	)

	return mapToResponse(*adj), nil
}

func (s *service) ActiveAllowancesForPeriod(ctx context.Context, period string) ([]Adjustment, error) {
	if !domain.ValidPeriod(period) {
		return nil, adjustmenterrors.ErrInvalidPeriodFormat
	}
	return s.repo.FindEffectiveForPeriod(ctx, DirectionAllowance, period)
}

func (s *service) ActiveDeductionsForPeriod(ctx context.Context, period string) ([]Adjustment, error) {
	if !domain.ValidPeriod(period) {
		return nil, adjustmenterrors.ErrInvalidPeriodFormat
	}
	return s.repo.FindEffectiveForPeriod(ctx, DirectionDeduction, period)
}

func (s *service) findByID(ctx context.Context, repo Repository, id string) (*Adjustment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, adjustmenterrors.ErrInvalidAdjustmentID
	}

	adj, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, adjustmenterrors.ErrAdjustmentNotFound
		}
		return nil, err
	}
	return adj, nil
}

func (s *service) queueLifecycleEvent(ctx context.Context, tx *sql.Tx, adj *Adjustment, eventType string) error {
	if s.outbox == nil {
		return nil
	}

	event := events.AdjustmentLifecycleEvent{
		EventType:    eventType,
		AdjustmentID: adj.ID.String(),
		StaffID:      adj.StaffID.String(),
		Direction:    adj.Direction,
		Type:         adj.Type,
		Amount:       adj.Amount,
		Period:       adj.Period,
		OccurredAt:   time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
		ID:            uuid.New().String(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "adjustment",
		AggregateID:   adj.ID.String(),
		EventType:     eventType,
		Topic:         events.AdjustmentLifecycleTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	})
}

func buildAdjustment(actorID string, req CreateAdjustmentRequest) (*Adjustment, error) {
	staffUUID, err := uuid.Parse(req.StaffID)
	if err != nil {
		return nil, adjustmenterrors.ErrInvalidStaffID
	}

	createdByUUID, err := uuid.Parse(actorID)
	if err != nil {
		return nil, adjustmenterrors.ErrInvalidStaffID.WithDetail("actor id is not a uuid")
	}

	if req.Direction != DirectionAllowance && req.Direction != DirectionDeduction {
		return nil, adjustmenterrors.ErrInvalidDirection
	}
	if !IsValidType(req.Type) {
		return nil, adjustmenterrors.ErrInvalidType
	}
	if req.Amount <= 0 {
		return nil, adjustmenterrors.ErrInvalidAmount
	}

	if !domain.ValidPeriod(req.Period) {
		return nil, adjustmenterrors.ErrInvalidPeriodFormat
	}
	if req.StartPeriod != nil && !domain.ValidPeriod(*req.StartPeriod) {
		return nil, adjustmenterrors.ErrInvalidPeriodFormat
	}
	if req.EndPeriod != nil && !domain.ValidPeriod(*req.EndPeriod) {
		return nil, adjustmenterrors.ErrInvalidPeriodFormat
	}
	if req.StartPeriod != nil && req.EndPeriod != nil && *req.StartPeriod > *req.EndPeriod {
		return nil, adjustmenterrors.ErrInvalidPeriodRange
	}

	adj := &Adjustment{
		ID:          uuid.New(),
		StaffID:     staffUUID,
		Direction:   req.Direction,
		Type:        req.Type,
		Amount:      req.Amount,
		Period:      req.Period,
		StartPeriod: req.StartPeriod,
		EndPeriod:   req.EndPeriod,
		Description: req.Description,
		CreatedBy:   createdByUUID,
	}

	if IsAmortizingType(req.Type) {
		if req.TotalAmount == nil || *req.TotalAmount <= 0 {
			return nil, adjustmenterrors.ErrTotalAmountRequired
		}
		if *req.TotalAmount < req.Amount {
			return nil, adjustmenterrors.ErrTotalAmountTooSmall
		}
		total := *req.TotalAmount
		// The balance always starts at the full total; the first
		// instalment is taken when the first payslip applies it.
		remaining := total
		adj.TotalAmount = &total
		adj.RemainingBalance = &remaining
	}

	// Allowances wait for a reviewer; deductions are live immediately
	// because garnishments and fines are externally mandated.
	if req.Direction == DirectionAllowance {
		adj.Status = StatusPending
	} else {
		adj.Status = StatusActive
	}

	return adj, nil
}
