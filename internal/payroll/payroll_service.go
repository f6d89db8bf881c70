package payroll

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"govpay/internal/adjustment"
	"govpay/internal/domain"
	"govpay/internal/events"
	"govpay/internal/messaging/kafka"
	payrollerrors "govpay/internal/payroll/errors"
	"govpay/internal/shared/contextutil"
	"govpay/internal/shared/counter"
	"govpay/internal/staff"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=payroll_service.go -destination=mock/payroll_service_mock.go -package=mock
type Service interface {
	StartRun(ctx context.Context, actorID string, req StartRunRequest) (RunResult, error)
	Approve(ctx context.Context, actorID, runID string) (PayrollRunResponse, error)
	GetRuns(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRunResponse, error)
	GetRunByID(ctx context.Context, id string) (PayrollRunResponse, error)
	GetRunPayslips(ctx context.Context, runID string) ([]PayslipResponse, error)
	GetPayslipBreakdown(ctx context.Context, payslipID string) (PayslipResponse, error)
	GetStaffPayslipHistory(ctx context.Context, staffID string) ([]PayslipResponse, error)
}

// StaffDirectory is the roster read contract the orchestrator needs.
type StaffDirectory interface {
	FindActive(ctx context.Context, departmentID string) ([]staff.Staff, error)
}

// SalaryLookup resolves a (grade level, step) pair to a basic salary.
type SalaryLookup interface {
	LookupBasicSalary(ctx context.Context, gradeLevel, step int) (int64, error)
}

type service struct {
	db       *sql.DB
	repo     Repository
	adjRepo  adjustment.Repository
	staffDir StaffDirectory
	salaries SalaryLookup
	counter  counter.Repository
	outbox   kafka.OutboxRepository
	rates    StatutoryRates
	logger   *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	adjRepo adjustment.Repository,
	staffDir StaffDirectory,
	salaries SalaryLookup,
	counterRepo counter.Repository,
	outboxRepo kafka.OutboxRepository,
	rates StatutoryRates,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("payroll.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("payroll.service")
	}
	return &service{
		db:       db,
		repo:     repo,
		adjRepo:  adjRepo,
		staffDir: staffDir,
		salaries: salaries,
		counter:  counterRepo,
		outbox:   outboxRepo,
		rates:    rates,
		logger:   l,
	}
}

// StartRun executes one payroll batch for a period and optional
// department scope. Failures before the run row exists abort with no
// persistent state; per-staff assembly failures are collected in the
// result and never abort the batch.
func (s *service) StartRun(ctx context.Context, actorID string, req StartRunRequest) (RunResult, error) {
	createdBy, departmentID, scopeKey, err := validateStartRequest(actorID, req)
	if err != nil {
		return RunResult{}, err
	}

	s.logger.Info("payroll run requested",
		zap.String("period", req.Period),
		zap.String("scope", scopeKey),
		zap.String("actor_id", actorID),
	)

	// The ledger is read before the run row exists: a ledger outage here
	// aborts with nothing persisted instead of stranding a PROCESSING run.
	allowancesByStaff, deductionsByStaff, err := s.loadAdjustments(ctx, req.Period)
	if err != nil {
		return RunResult{}, err
	}

	run, toProcess, skipped, err := s.openRun(ctx, createdBy, departmentID, scopeKey, req.Period)
	if err != nil {
		return RunResult{}, err
	}

	var (
		processed []string
		failed    []FailedStaff
	)

	for i := range toProcess {
		st := &toProcess[i]
		slip, staffErr := s.processStaff(ctx, run, st,
			allowancesByStaff[st.ID], deductionsByStaff[st.ID])
		if staffErr != nil {
			s.logger.Warn("payslip assembly failed",
				zap.String("run_id", run.ID.String()),
				zap.String("staff_id", st.ID.String()),
				zap.Error(staffErr),
			)
			failed = append(failed, FailedStaff{
				StaffID: st.ID.String(),
				Reason:  staffErr.Error(),
			})
			continue
		}

		processed = append(processed, st.ID.String())
		run.GrossAmount += slip.GrossPay
		run.TotalDeductions += slip.TotalDeductions
		run.NetAmount += slip.NetPay
	}

	if err := s.finalizeRun(ctx, run, len(processed), len(skipped), len(failed)); err != nil {
		s.logger.Error("run finalization failed, run is stuck in PROCESSING until its status is repaired",
			zap.String("run_id", run.ID.String()),
			zap.String("reference", run.Reference),
			zap.String("period", run.Period),
			zap.String("scope", run.ScopeKey),
			zap.Error(err),
		)
		return RunResult{}, err
	}

	s.logger.Info("payroll run completed",
		zap.String("run_id", run.ID.String()),
		zap.String("reference", run.Reference),
		zap.String("status", run.Status),
		zap.Int("processed", len(processed)),
		zap.Int("skipped", len(skipped)),
		zap.Int("failed", len(failed)),
		zap.Int64("net_amount", run.NetAmount),
	)

	return RunResult{
		Run:               mapRunToResponse(*run),
		ProcessedStaffIDs: processed,
		SkippedStaffIDs:   skipped,
		FailedStaff:       failed,
	}, nil
}

// openRun serializes against concurrent starts, partitions the roster
// and inserts the run row in PROCESSING. Nothing is persisted unless a
// non-empty batch exists.
func (s *service) openRun(
	ctx context.Context,
	createdBy uuid.UUID,
	departmentID *uuid.UUID,
	scopeKey, period string,
) (*PayrollRun, []staff.Staff, []string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	if err := qtx.AcquireRunScopeLock(ctx, period, scopeKey); err != nil {
		return nil, nil, nil, err
	}

	existing, err := qtx.FindRunByScope(ctx, period, scopeKey)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, nil, err
	}
	if existing != nil {
		if existing.Status == StatusProcessing || existing.Status == StatusDraft {
			return nil, nil, nil, payrollerrors.ErrRunInProgress.WithDetail(
				"run %s is %s", existing.ID, existing.Status)
		}
		return nil, nil, nil, payrollerrors.ErrDuplicateRun.WithDetail(
			"conflicting run %s", existing.ID)
	}

	deptFilter := ""
	if departmentID != nil {
		deptFilter = departmentID.String()
	}
	roster, err := s.staffDir.FindActive(ctx, deptFilter)
	if err != nil {
		return nil, nil, nil, err
	}

	paidIDs, err := qtx.FindPaidStaffIDs(ctx, period)
	if err != nil {
		return nil, nil, nil, err
	}
	alreadyPaid := make(map[uuid.UUID]bool, len(paidIDs))
	for _, id := range paidIDs {
		alreadyPaid[id] = true
	}

	var (
		toProcess []staff.Staff
		skipped   []string
	)
	for _, st := range roster {
		if alreadyPaid[st.ID] {
			skipped = append(skipped, st.ID.String())
			continue
		}
		toProcess = append(toProcess, st)
	}

	if len(toProcess) == 0 {
		return nil, nil, nil, payrollerrors.ErrNothingToProcess.WithDetail(
			"period %s scope %s", period, scopeKey)
	}

	seq, err := s.counter.GetNextValue(ctx, counter.TypePayrollRun)
	if err != nil {
		return nil, nil, nil, err
	}

	run := &PayrollRun{
		ID:           uuid.New(),
		Reference:    fmt.Sprintf("PR-%s-%04d", period, seq),
		Period:       period,
		DepartmentID: departmentID,
		ScopeKey:     scopeKey,
		Status:       StatusProcessing,
		Rates:        s.rates,
		TotalStaff:   len(toProcess),
		CreatedBy:    createdBy,
	}

	if err := qtx.CreateRun(ctx, run); err != nil {
		if isUniqueViolation(err) {
			return nil, nil, nil, payrollerrors.ErrDuplicateRun
		}
		return nil, nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, nil, err
	}

	return run, toProcess, skipped, nil
}

func (s *service) loadAdjustments(
	ctx context.Context,
	period string,
) (map[uuid.UUID][]adjustment.Adjustment, map[uuid.UUID][]adjustment.Adjustment, error) {
	allowances, err := s.adjRepo.FindEffectiveForPeriod(ctx, adjustment.DirectionAllowance, period)
	if err != nil {
		return nil, nil, err
	}
	deductions, err := s.adjRepo.FindEffectiveForPeriod(ctx, adjustment.DirectionDeduction, period)
	if err != nil {
		return nil, nil, err
	}
	return groupByStaff(allowances), groupByStaff(deductions), nil
}

func groupByStaff(adjs []adjustment.Adjustment) map[uuid.UUID][]adjustment.Adjustment {
	grouped := make(map[uuid.UUID][]adjustment.Adjustment)
	for _, adj := range adjs {
		grouped[adj.StaffID] = append(grouped[adj.StaffID], adj)
	}
	return grouped
}

// processStaff assembles and persists one payslip. The insert and every
// adjustment balance decrement share one transaction, so a failure
// between assembling and persisting never loses balance.
func (s *service) processStaff(
	ctx context.Context,
	run *PayrollRun,
	st *staff.Staff,
	allowances, deductions []adjustment.Adjustment,
) (*Payslip, error) {
	basic, err := s.salaries.LookupBasicSalary(ctx, st.GradeLevel, st.Step)
	if err != nil {
		return nil, err
	}

	structural := ComputeStructural(basic, run.Rates)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	adjTx := s.adjRepo.WithTx(tx)

	slip := &Payslip{
		ID:           uuid.New(),
		PayrollRunID: run.ID,
		StaffID:      st.ID,
		Period:       run.Period,
		BasicSalary:  basic,
	}
	slip.Components = structuralComponents(slip.ID, structural)

	individualAllowances, err := s.applyAdjustments(ctx, adjTx, slip, allowances)
	if err != nil {
		return nil, err
	}
	individualDeductions, err := s.applyAdjustments(ctx, adjTx, slip, deductions)
	if err != nil {
		return nil, err
	}

	slip.GrossPay = basic + structural.TotalAllowances() + individualAllowances
	slip.TotalDeductions = structural.TotalDeductions() + individualDeductions
	if slip.TotalDeductions > slip.GrossPay {
		slip.TotalDeductions = slip.GrossPay
		slip.DeductionsCapped = true
		s.logger.Warn("deductions capped at gross pay",
			zap.String("run_id", run.ID.String()),
			zap.String("staff_id", st.ID.String()),
			zap.Int64("gross_pay", slip.GrossPay),
		)
	}
	slip.NetPay = slip.GrossPay - slip.TotalDeductions

	if err := qtx.CreatePayslip(ctx, slip); err != nil {
		if isUniqueViolation(err) {
			// A concurrent run paid this staff member between our
			// partition read and this insert.
			return nil, fmt.Errorf("payslip already exists for period %s", run.Period)
		}
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return slip, nil
}

// applyAdjustments applies each adjustment for the run period, appends
// a breakdown component carrying the actually-applied amount and saves
// the mutated row through the caller's transaction.
func (s *service) applyAdjustments(
	ctx context.Context,
	adjTx adjustment.Repository,
	slip *Payslip,
	adjs []adjustment.Adjustment,
) (int64, error) {
	var total int64

	for i := range adjs {
		adj := &adjs[i]

		applied, err := adj.ApplyForPeriod(slip.Period)
		if err != nil {
			return 0, err
		}

		if err := adjTx.Update(ctx, adj); err != nil {
			return 0, err
		}

		kind := ComponentAllowance
		if adj.Direction == adjustment.DirectionDeduction {
			kind = ComponentDeduction
		}
		adjustmentID := adj.ID
		slip.Components = append(slip.Components, PayslipComponent{
			ID:           uuid.New(),
			PayslipID:    slip.ID,
			Kind:         kind,
			Source:       SourceIndividual,
			Name:         adj.Type,
			Amount:       applied,
			AdjustmentID: &adjustmentID,
		})

		total += applied
	}

	return total, nil
}

func structuralComponents(payslipID uuid.UUID, b StructuralBreakdown) []PayslipComponent {
	lines := []struct {
		kind   string
		name   string
		amount int64
	}{
		{ComponentAllowance, "HOUSING", b.Housing},
		{ComponentAllowance, "TRANSPORT", b.Transport},
		{ComponentAllowance, "MEDICAL", b.Medical},
		{ComponentDeduction, "PENSION", b.Pension},
		{ComponentDeduction, "TAX", b.Tax},
		{ComponentDeduction, "HOUSING_FUND", b.HousingFund},
	}

	components := make([]PayslipComponent, 0, len(lines))
	for _, line := range lines {
		components = append(components, PayslipComponent{
			ID:        uuid.New(),
			PayslipID: payslipID,
			Kind:      line.kind,
			Source:    SourceStructural,
			Name:      line.name,
			Amount:    line.amount,
		})
	}
	return components
}

// finalizeRun persists totals and the terminal status, and queues the
// run-processed event in the same transaction.
func (s *service) finalizeRun(ctx context.Context, run *PayrollRun, processed, skipped, failed int) error {
	now := time.Now().UTC()
	run.ProcessedAt = &now
	run.Status = StatusProcessed
	if failed > 0 {
		run.Status = StatusPendingReview
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.repo.WithTx(tx).UpdateRun(ctx, run); err != nil {
		return err
	}

	if s.outbox != nil {
		event := events.PayrollRunProcessedEvent{
			EventType:       events.PayrollRunProcessed,
			RunID:           run.ID.String(),
			Reference:       run.Reference,
			Period:          run.Period,
			ProcessedStaff:  processed,
			SkippedStaff:    skipped,
			FailedStaff:     failed,
			GrossAmount:     run.GrossAmount,
			TotalDeductions: run.TotalDeductions,
			NetAmount:       run.NetAmount,
			OccurredAt:      now,
		}
		if run.DepartmentID != nil {
			event.DepartmentID = run.DepartmentID.String()
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		err = s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.New().String(),
			RequestID:     contextutil.GetRequestID(ctx),
			AggregateType: "payroll_run",
			AggregateID:   run.ID.String(),
			EventType:     events.PayrollRunProcessed,
			Topic:         events.PayrollRunProcessedTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		})
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *service) Approve(ctx context.Context, actorID, runID string) (PayrollRunResponse, error) {
	approverID, err := uuid.Parse(actorID)
	if err != nil {
		return PayrollRunResponse{}, payrollerrors.ErrInvalidActorID
	}
	if _, err := uuid.Parse(runID); err != nil {
		return PayrollRunResponse{}, payrollerrors.ErrInvalidRunID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return PayrollRunResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)

	run, err := qtx.FindRunByID(ctx, runID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunResponse{}, payrollerrors.ErrRunNotFound
		}
		return PayrollRunResponse{}, err
	}

	if run.Status != StatusProcessed {
		return PayrollRunResponse{}, payrollerrors.ErrRunNotProcessed.WithDetail(
			"run %s is %s", run.ID, run.Status)
	}

	now := time.Now().UTC()
	run.Status = StatusApproved
	run.ApprovedBy = &approverID
	run.ApprovedAt = &now

	if err := qtx.UpdateRun(ctx, run); err != nil {
		return PayrollRunResponse{}, err
	}

	if err := tx.Commit(); err != nil {
		return PayrollRunResponse{}, err
	}

	s.logger.Info("payroll run approved",
		zap.String("run_id", run.ID.String()),
		zap.String("approved_by", actorID),
	)

	return mapRunToResponse(*run), nil
}

func (s *service) GetRuns(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRunResponse, error) {
	if filter.Period != "" && !domain.ValidPeriod(filter.Period) {
		return nil, payrollerrors.ErrInvalidPeriodFormat
	}

	runs, err := s.repo.FindRuns(ctx, filter)
	if err != nil {
		return nil, err
	}
	return mapRunsToListResponse(runs), nil
}

func (s *service) GetRunByID(ctx context.Context, id string) (PayrollRunResponse, error) {
	if _, err := uuid.Parse(id); err != nil {
		return PayrollRunResponse{}, payrollerrors.ErrInvalidRunID
	}

	run, err := s.repo.FindRunByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayrollRunResponse{}, payrollerrors.ErrRunNotFound
		}
		return PayrollRunResponse{}, err
	}
	return mapRunToResponse(*run), nil
}

func (s *service) GetRunPayslips(ctx context.Context, runID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, payrollerrors.ErrInvalidRunID
	}

	if _, err := s.repo.FindRunByID(ctx, runID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, payrollerrors.ErrRunNotFound
		}
		return nil, err
	}

	slips, err := s.repo.FindPayslipsByRun(ctx, runID)
	if err != nil {
		return nil, err
	}
	return mapPayslipsToListResponse(slips), nil
}

func (s *service) GetPayslipBreakdown(ctx context.Context, payslipID string) (PayslipResponse, error) {
	if _, err := uuid.Parse(payslipID); err != nil {
		return PayslipResponse{}, payrollerrors.ErrInvalidPayslipID
	}

	slip, err := s.repo.FindPayslipByID(ctx, payslipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return PayslipResponse{}, payrollerrors.ErrPayslipNotFound
		}
		return PayslipResponse{}, err
	}
	return mapPayslipToResponse(*slip), nil
}

func (s *service) GetStaffPayslipHistory(ctx context.Context, staffID string) ([]PayslipResponse, error) {
	if _, err := uuid.Parse(staffID); err != nil {
		return nil, payrollerrors.ErrInvalidStaffID
	}

	slips, err := s.repo.FindPayslipsByStaff(ctx, staffID)
	if err != nil {
		return nil, err
	}
	return mapPayslipsToListResponse(slips), nil
}

func validateStartRequest(actorID string, req StartRunRequest) (uuid.UUID, *uuid.UUID, string, error) {
	createdBy, err := uuid.Parse(actorID)
	if err != nil {
		return uuid.Nil, nil, "", payrollerrors.ErrInvalidActorID
	}

	if !domain.ValidPeriod(req.Period) {
		return uuid.Nil, nil, "", payrollerrors.ErrInvalidPeriodFormat
	}

	scopeKey := ScopeAll
	var departmentID *uuid.UUID
	if req.DepartmentID != nil && *req.DepartmentID != "" {
		deptUUID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return uuid.Nil, nil, "", payrollerrors.ErrInvalidDepartmentID
		}
		departmentID = &deptUUID
		scopeKey = deptUUID.String()
	}

	return createdBy, departmentID, scopeKey, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
