package payroll

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"govpay/internal/adjustment"
	payrollerrors "govpay/internal/payroll/errors"
	salarytableerrors "govpay/internal/salarytable/errors"
	"govpay/internal/staff"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
)

type fakePayrollRepo struct {
	acquireLockFunc      func(ctx context.Context, period, scopeKey string) error
	createRunFunc        func(ctx context.Context, run *PayrollRun) error
	updateRunFunc        func(ctx context.Context, run *PayrollRun) error
	findRunByScopeFunc   func(ctx context.Context, period, scopeKey string) (*PayrollRun, error)
	findRunByIDFunc      func(ctx context.Context, id string) (*PayrollRun, error)
	findRunsFunc         func(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRun, error)
	createPayslipFunc    func(ctx context.Context, slip *Payslip) error
	findPaidStaffIDsFunc func(ctx context.Context, period string) ([]uuid.UUID, error)
}

func (f *fakePayrollRepo) WithTx(_ *sql.Tx) Repository { return f }

func (f *fakePayrollRepo) AcquireRunScopeLock(ctx context.Context, period, scopeKey string) error {
	if f.acquireLockFunc != nil {
		return f.acquireLockFunc(ctx, period, scopeKey)
	}
	return nil
}

func (f *fakePayrollRepo) CreateRun(ctx context.Context, run *PayrollRun) error {
	if f.createRunFunc != nil {
		return f.createRunFunc(ctx, run)
	}
	return nil
}

func (f *fakePayrollRepo) UpdateRun(ctx context.Context, run *PayrollRun) error {
	if f.updateRunFunc != nil {
		return f.updateRunFunc(ctx, run)
	}
	return nil
}

func (f *fakePayrollRepo) FindRunByScope(ctx context.Context, period, scopeKey string) (*PayrollRun, error) {
	if f.findRunByScopeFunc != nil {
		return f.findRunByScopeFunc(ctx, period, scopeKey)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepo) FindRunByID(ctx context.Context, id string) (*PayrollRun, error) {
	if f.findRunByIDFunc != nil {
		return f.findRunByIDFunc(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepo) FindRuns(ctx context.Context, filter GetRunsFilterRequest) ([]PayrollRun, error) {
	if f.findRunsFunc != nil {
		return f.findRunsFunc(ctx, filter)
	}
	return nil, nil
}

func (f *fakePayrollRepo) CreatePayslip(ctx context.Context, slip *Payslip) error {
	if f.createPayslipFunc != nil {
		return f.createPayslipFunc(ctx, slip)
	}
	return nil
}

func (f *fakePayrollRepo) FindPaidStaffIDs(ctx context.Context, period string) ([]uuid.UUID, error) {
	if f.findPaidStaffIDsFunc != nil {
		return f.findPaidStaffIDsFunc(ctx, period)
	}
	return nil, nil
}

func (f *fakePayrollRepo) FindPayslipsByRun(_ context.Context, _ string) ([]Payslip, error) {
	return nil, nil
}

func (f *fakePayrollRepo) FindPayslipByID(_ context.Context, _ string) (*Payslip, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePayrollRepo) FindPayslipsByStaff(_ context.Context, _ string) ([]Payslip, error) {
	return nil, nil
}

type fakeAdjRepo struct {
	findEffectiveFunc func(ctx context.Context, direction, period string) ([]adjustment.Adjustment, error)
	updated           []adjustment.Adjustment
}

func (f *fakeAdjRepo) WithTx(_ *sql.Tx) adjustment.Repository { return f }

func (f *fakeAdjRepo) Create(_ context.Context, _ *adjustment.Adjustment) error { return nil }

func (f *fakeAdjRepo) FindAll(_ context.Context, _ adjustment.QueryFilter) ([]adjustment.Adjustment, error) {
	return nil, nil
}

func (f *fakeAdjRepo) FindByID(_ context.Context, _ string) (*adjustment.Adjustment, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeAdjRepo) FindEffectiveForPeriod(ctx context.Context, direction, period string) ([]adjustment.Adjustment, error) {
	if f.findEffectiveFunc != nil {
		return f.findEffectiveFunc(ctx, direction, period)
	}
	return nil, nil
}

func (f *fakeAdjRepo) Update(_ context.Context, adj *adjustment.Adjustment) error {
	f.updated = append(f.updated, *adj)
	return nil
}

type fakeStaffDir struct {
	roster []staff.Staff
	err    error
}

func (f *fakeStaffDir) FindActive(_ context.Context, _ string) ([]staff.Staff, error) {
	return f.roster, f.err
}

type fakeSalaryLookup struct {
	lookupFunc func(ctx context.Context, gradeLevel, step int) (int64, error)
}

func (f *fakeSalaryLookup) LookupBasicSalary(ctx context.Context, gradeLevel, step int) (int64, error) {
	if f.lookupFunc != nil {
		return f.lookupFunc(ctx, gradeLevel, step)
	}
	return 100_000, nil
}

type fakeCounterRepo struct{ next int64 }

func (f *fakeCounterRepo) GetNextValue(_ context.Context, _ string) (int64, error) {
	f.next++
	return f.next, nil
}

type orchestratorFixture struct {
	svc      Service
	mock     sqlmock.Sqlmock
	runRepo  *fakePayrollRepo
	adjRepo  *fakeAdjRepo
	staffDir *fakeStaffDir
	salaries *fakeSalaryLookup
}

func newOrchestrator(t *testing.T, runRepo *fakePayrollRepo, adjRepo *fakeAdjRepo, dir *fakeStaffDir, salaries *fakeSalaryLookup) orchestratorFixture {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	svc := NewService(db, runRepo, adjRepo, dir, salaries,
		&fakeCounterRepo{}, nil, DefaultStatutoryRates())

	return orchestratorFixture{
		svc:      svc,
		mock:     mock,
		runRepo:  runRepo,
		adjRepo:  adjRepo,
		staffDir: dir,
		salaries: salaries,
	}
}

func activeStaff(gradeLevel, step int) staff.Staff {
	return staff.Staff{
		ID:         uuid.New(),
		GradeLevel: gradeLevel,
		Step:       step,
		Status:     staff.StatusActive,
	}
}

func TestStartRun_DuplicateRunNamesConflict(t *testing.T) {
	existing := &PayrollRun{ID: uuid.New(), Status: StatusProcessed}
	runRepo := &fakePayrollRepo{
		findRunByScopeFunc: func(_ context.Context, _, _ string) (*PayrollRun, error) {
			return existing, nil
		},
	}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{}, &fakeStaffDir{}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.True(t, errors.Is(err, payrollerrors.ErrDuplicateRun))
	assert.Contains(t, err.Error(), existing.ID.String())
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStartRun_ConcurrentRunInProgress(t *testing.T) {
	runRepo := &fakePayrollRepo{
		findRunByScopeFunc: func(_ context.Context, _, _ string) (*PayrollRun, error) {
			return &PayrollRun{ID: uuid.New(), Status: StatusProcessing}, nil
		},
	}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{}, &fakeStaffDir{}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.True(t, errors.Is(err, payrollerrors.ErrRunInProgress))
}

func TestStartRun_NothingToProcessCreatesNoRun(t *testing.T) {
	st := activeStaff(5, 3)
	var runCreated bool
	runRepo := &fakePayrollRepo{
		findPaidStaffIDsFunc: func(_ context.Context, _ string) ([]uuid.UUID, error) {
			return []uuid.UUID{st.ID}, nil
		},
		createRunFunc: func(_ context.Context, _ *PayrollRun) error {
			runCreated = true
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{}, &fakeStaffDir{roster: []staff.Staff{st}}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectRollback()

	_, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.True(t, errors.Is(err, payrollerrors.ErrNothingToProcess))
	assert.False(t, runCreated)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStartRun_SkipsAlreadyPaidStaffAcrossScopes(t *testing.T) {
	paidElsewhere := activeStaff(5, 3)
	fresh := activeStaff(7, 1)

	var slips []*Payslip
	runRepo := &fakePayrollRepo{
		findPaidStaffIDsFunc: func(_ context.Context, _ string) ([]uuid.UUID, error) {
			return []uuid.UUID{paidElsewhere.ID}, nil
		},
		createPayslipFunc: func(_ context.Context, slip *Payslip) error {
			slips = append(slips, slip)
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{},
		&fakeStaffDir{roster: []staff.Staff{paidElsewhere, fresh}}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	result, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.NoError(t, err)
	assert.Equal(t, []string{fresh.ID.String()}, result.ProcessedStaffIDs)
	assert.Equal(t, []string{paidElsewhere.ID.String()}, result.SkippedStaffIDs)
	assert.Empty(t, result.FailedStaff)
	assert.Len(t, slips, 1)
	assert.Equal(t, StatusProcessed, result.Run.Status)
	assert.Equal(t, 1, result.Run.TotalStaff)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStartRun_PayslipAssembledFromTableAndAdjustments(t *testing.T) {
	st := activeStaff(9, 4)
	hazardID := uuid.New()
	loanID := uuid.New()
	remaining := int64(15_000)
	total := int64(55_000)

	adjRepo := &fakeAdjRepo{
		findEffectiveFunc: func(_ context.Context, direction, _ string) ([]adjustment.Adjustment, error) {
			if direction == adjustment.DirectionAllowance {
				return []adjustment.Adjustment{{
					ID:        hazardID,
					StaffID:   st.ID,
					Direction: adjustment.DirectionAllowance,
					Type:      adjustment.TypeOther,
					Amount:    12_000,
					Period:    "2026-01",
					Status:    adjustment.StatusActive,
				}}, nil
			}
			return []adjustment.Adjustment{{
				ID:               loanID,
				StaffID:          st.ID,
				Direction:        adjustment.DirectionDeduction,
				Type:             adjustment.TypeLoanRepayment,
				Amount:           20_000,
				TotalAmount:      &total,
				RemainingBalance: &remaining,
				Period:           "2026-01",
				Status:           adjustment.StatusActive,
			}}, nil
		},
	}

	var slip *Payslip
	runRepo := &fakePayrollRepo{
		createPayslipFunc: func(_ context.Context, s *Payslip) error {
			slip = s
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, adjRepo, &fakeStaffDir{roster: []staff.Staff{st}}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	result, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.NoError(t, err)
	assert.NotNil(t, slip)

	// 100,000 basic + 70,000 structural allowances + 12,000 individual.
	assert.Equal(t, int64(182_000), slip.GrossPay)
	// 18,000 structural deductions + final 15,000 loan instalment.
	assert.Equal(t, int64(33_000), slip.TotalDeductions)
	assert.Equal(t, int64(149_000), slip.NetPay)
	assert.False(t, slip.DeductionsCapped)
	// 6 structural lines + 2 individual lines.
	assert.Len(t, slip.Components, 8)

	var loanLine *PayslipComponent
	for i := range slip.Components {
		if slip.Components[i].AdjustmentID != nil && *slip.Components[i].AdjustmentID == loanID {
			loanLine = &slip.Components[i]
		}
	}
	assert.NotNil(t, loanLine)
	// The breakdown records what was actually taken, not the configured
	// monthly amount.
	assert.Equal(t, int64(15_000), loanLine.Amount)

	// The loan hit zero and transitioned out of the active pool.
	var updatedLoan *adjustment.Adjustment
	for i := range adjRepo.updated {
		if adjRepo.updated[i].ID == loanID {
			updatedLoan = &adjRepo.updated[i]
		}
	}
	assert.NotNil(t, updatedLoan)
	assert.Equal(t, int64(0), *updatedLoan.RemainingBalance)
	assert.Equal(t, adjustment.StatusPaidOff, updatedLoan.Status)

	assert.Equal(t, int64(182_000), result.Run.GrossAmount)
	assert.Equal(t, int64(33_000), result.Run.TotalDeductions)
	assert.Equal(t, int64(149_000), result.Run.NetAmount)
}

func TestStartRun_MissingSalaryEntryFailsOnlyThatStaff(t *testing.T) {
	ok := activeStaff(5, 3)
	broken := activeStaff(17, 15)

	salaries := &fakeSalaryLookup{
		lookupFunc: func(_ context.Context, gradeLevel, _ int) (int64, error) {
			if gradeLevel == broken.GradeLevel {
				return 0, salarytableerrors.ErrSalaryGradeNotFound
			}
			return 100_000, nil
		},
	}
	runRepo := &fakePayrollRepo{}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{},
		&fakeStaffDir{roster: []staff.Staff{ok, broken}}, salaries)
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	// Only the healthy staff member reaches a payslip transaction; the
	// broken one fails at lookup, before any transaction opens.
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	result, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.NoError(t, err)
	assert.Equal(t, []string{ok.ID.String()}, result.ProcessedStaffIDs)
	assert.Len(t, result.FailedStaff, 1)
	assert.Equal(t, broken.ID.String(), result.FailedStaff[0].StaffID)
	assert.Contains(t, result.FailedStaff[0].Reason, "salary table")
	assert.Equal(t, StatusPendingReview, result.Run.Status)
	assert.NoError(t, fx.mock.ExpectationsWereMet())
}

func TestStartRun_CapsDeductionsAtGrossPay(t *testing.T) {
	st := activeStaff(1, 1)

	adjRepo := &fakeAdjRepo{
		findEffectiveFunc: func(_ context.Context, direction, _ string) ([]adjustment.Adjustment, error) {
			if direction != adjustment.DirectionDeduction {
				return nil, nil
			}
			return []adjustment.Adjustment{{
				ID:        uuid.New(),
				StaffID:   st.ID,
				Direction: adjustment.DirectionDeduction,
				Type:      adjustment.TypeGarnishment,
				Amount:    500_000,
				Period:    "2026-01",
				Status:    adjustment.StatusActive,
			}}, nil
		},
	}

	var slip *Payslip
	runRepo := &fakePayrollRepo{
		createPayslipFunc: func(_ context.Context, s *Payslip) error {
			slip = s
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, adjRepo, &fakeStaffDir{roster: []staff.Staff{st}}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	result, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.NoError(t, err)
	assert.True(t, slip.DeductionsCapped)
	assert.Equal(t, slip.GrossPay, slip.TotalDeductions)
	assert.Equal(t, int64(0), slip.NetPay)
	// Capping is a warning, not a failure.
	assert.Len(t, result.ProcessedStaffIDs, 1)
	assert.Equal(t, StatusProcessed, result.Run.Status)
}

func TestStartRun_RejectsInvalidInput(t *testing.T) {
	fx := newOrchestrator(t, &fakePayrollRepo{}, &fakeAdjRepo{}, &fakeStaffDir{}, &fakeSalaryLookup{})

	_, err := fx.svc.StartRun(context.Background(), "nope", StartRunRequest{Period: "2026-02"})
	assert.True(t, errors.Is(err, payrollerrors.ErrInvalidActorID))

	_, err = fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "Feb 2026"})
	assert.True(t, errors.Is(err, payrollerrors.ErrInvalidPeriodFormat))

	bad := "not-a-uuid"
	_, err = fx.svc.StartRun(context.Background(), uuid.NewString(),
		StartRunRequest{Period: "2026-02", DepartmentID: &bad})
	assert.True(t, errors.Is(err, payrollerrors.ErrInvalidDepartmentID))
}

func TestStartRun_AdjustmentLoadFailureLeavesNoRun(t *testing.T) {
	st := activeStaff(5, 3)
	ledgerDown := errors.New("adjustment ledger unavailable")

	adjRepo := &fakeAdjRepo{
		findEffectiveFunc: func(_ context.Context, _, _ string) ([]adjustment.Adjustment, error) {
			return nil, ledgerDown
		},
	}
	var runCreated bool
	runRepo := &fakePayrollRepo{
		createRunFunc: func(_ context.Context, _ *PayrollRun) error {
			runCreated = true
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, adjRepo, &fakeStaffDir{roster: []staff.Staff{st}}, &fakeSalaryLookup{})

	// No transaction expectations: the failure must happen before any
	// run row is opened.
	_, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.True(t, errors.Is(err, ledgerDown))
	assert.False(t, runCreated)
	assert.NoError(t, fx.mock.ExpectationsWereMet())

	// Once the ledger recovers, the same scope starts cleanly instead of
	// reporting a run in progress.
	adjRepo.findEffectiveFunc = nil
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	result, err := fx.svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.NoError(t, err)
	assert.True(t, runCreated)
	assert.Equal(t, []string{st.ID.String()}, result.ProcessedStaffIDs)
}

func TestStartRun_FinalizeFailureLogsRunForRecovery(t *testing.T) {
	st := activeStaff(5, 3)
	updateErr := errors.New("connection reset")

	var run *PayrollRun
	runRepo := &fakePayrollRepo{
		createRunFunc: func(_ context.Context, r *PayrollRun) error {
			run = r
			return nil
		},
		updateRunFunc: func(_ context.Context, _ *PayrollRun) error { return updateErr },
	}

	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	core, logs := observer.New(zap.ErrorLevel)
	svc := NewService(db, runRepo, &fakeAdjRepo{}, &fakeStaffDir{roster: []staff.Staff{st}},
		&fakeSalaryLookup{}, &fakeCounterRepo{}, nil, DefaultStatutoryRates(), zap.New(core))

	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = svc.StartRun(context.Background(), uuid.NewString(), StartRunRequest{Period: "2026-02"})

	assert.True(t, errors.Is(err, updateErr))

	// The log must name the stranded run so an operator can repair it.
	entries := logs.FilterMessageSnippet("finalization failed").All()
	assert.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, run.ID.String(), fields["run_id"])
	assert.Equal(t, run.Reference, fields["reference"])
}

func TestApprove_ProcessedRunOnly(t *testing.T) {
	run := &PayrollRun{ID: uuid.New(), Status: StatusProcessed}
	var updated *PayrollRun
	runRepo := &fakePayrollRepo{
		findRunByIDFunc: func(_ context.Context, _ string) (*PayrollRun, error) { return run, nil },
		updateRunFunc: func(_ context.Context, r *PayrollRun) error {
			updated = r
			return nil
		},
	}
	fx := newOrchestrator(t, runRepo, &fakeAdjRepo{}, &fakeStaffDir{}, &fakeSalaryLookup{})
	fx.mock.ExpectBegin()
	fx.mock.ExpectCommit()

	actorID := uuid.NewString()
	resp, err := fx.svc.Approve(context.Background(), actorID, run.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, StatusApproved, resp.Status)
	assert.Equal(t, actorID, updated.ApprovedBy.String())
	assert.NotNil(t, updated.ApprovedAt)
}

func TestApprove_RejectsNonProcessedRuns(t *testing.T) {
	for _, status := range []string{StatusProcessing, StatusPendingReview, StatusApproved} {
		t.Run(status, func(t *testing.T) {
			run := &PayrollRun{ID: uuid.New(), Status: status}
			runRepo := &fakePayrollRepo{
				findRunByIDFunc: func(_ context.Context, _ string) (*PayrollRun, error) { return run, nil },
			}
			fx := newOrchestrator(t, runRepo, &fakeAdjRepo{}, &fakeStaffDir{}, &fakeSalaryLookup{})
			fx.mock.ExpectBegin()
			fx.mock.ExpectRollback()

			_, err := fx.svc.Approve(context.Background(), uuid.NewString(), run.ID.String())
			assert.True(t, errors.Is(err, payrollerrors.ErrRunNotProcessed))
		})
	}
}
