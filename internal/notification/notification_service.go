package notification

import (
	"context"
	"fmt"

	"govpay/internal/events"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

//go:generate mockgen -source=notification_service.go -destination=mock/notification_service_mock.go -package=mock
type Service interface {
	NotifyRunProcessed(ctx context.Context, event events.PayrollRunProcessedEvent) error
	NotifyAdjustment(ctx context.Context, event events.AdjustmentLifecycleEvent) error
	GetForStaff(ctx context.Context, staffID string, unreadOnly bool) ([]NotificationResponse, error)
	MarkRead(ctx context.Context, staffID, id string) error
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("notification.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("notification.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) NotifyRunProcessed(ctx context.Context, event events.PayrollRunProcessedEvent) error {
	body := fmt.Sprintf(
		"Payroll run %s for %s processed: %d staff paid, %d skipped, %d failed.",
		event.Reference, event.Period,
		event.ProcessedStaff, event.SkippedStaff, event.FailedStaff,
	)

	n := &Notification{
		ID:       uuid.New(),
		StaffID:  nil, // broadcast
		Category: CategoryPayrollRun,
		Title:    fmt.Sprintf("Payroll run %s processed", event.Reference),
		Body:     body,
	}

	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("create run notification failed",
			zap.String("run_id", event.RunID),
			zap.Error(err),
		)
		return err
	}

	return nil
}

func (s *service) NotifyAdjustment(ctx context.Context, event events.AdjustmentLifecycleEvent) error {
	staffUUID, err := uuid.Parse(event.StaffID)
	if err != nil {
		return fmt.Errorf("invalid staff id in adjustment event: %w", err)
	}

	n := &Notification{
		ID:       uuid.New(),
		StaffID:  &staffUUID,
		Category: CategoryAdjustment,
		Title:    fmt.Sprintf("Adjustment %s", event.EventType),
		Body: fmt.Sprintf(
			"A %s of type %s for period %s is now %s.",
			event.Direction, event.Type, event.Period, event.EventType,
		),
	}

	return s.repo.Create(ctx, n)
}

func (s *service) GetForStaff(ctx context.Context, staffID string, unreadOnly bool) ([]NotificationResponse, error) {
	ns, err := s.repo.FindForStaff(ctx, staffID, unreadOnly)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(ns), nil
}

func (s *service) MarkRead(ctx context.Context, staffID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid notification id")
	}
	return s.repo.MarkRead(ctx, staffID, id)
}
