package adjustment

import (
	"errors"
	"testing"

	adjustmenterrors "govpay/internal/adjustment/errors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func ptrInt64(v int64) *int64 { return &v }

func ptrString(v string) *string { return &v }

func newLoan(amount, total int64) *Adjustment {
	remaining := total
	return &Adjustment{
		ID:               uuid.New(),
		StaffID:          uuid.New(),
		Direction:        DirectionDeduction,
		Type:             TypeLoanRepayment,
		Amount:           amount,
		TotalAmount:      &total,
		RemainingBalance: &remaining,
		Period:           "2026-01",
		Status:           StatusActive,
	}
}

func TestApplyForPeriod_AmortizesUntilPaidOff(t *testing.T) {
	loan := newLoan(20_000, 60_000)

	applied, err := loan.ApplyForPeriod("2026-01")
	assert.NoError(t, err)
	assert.Equal(t, int64(20_000), applied)
	assert.Equal(t, int64(40_000), *loan.RemainingBalance)
	assert.Equal(t, StatusActive, loan.Status)

	applied, err = loan.ApplyForPeriod("2026-02")
	assert.NoError(t, err)
	assert.Equal(t, int64(20_000), applied)
	assert.Equal(t, int64(20_000), *loan.RemainingBalance)

	applied, err = loan.ApplyForPeriod("2026-03")
	assert.NoError(t, err)
	assert.Equal(t, int64(20_000), applied)
	assert.Equal(t, int64(0), *loan.RemainingBalance)
	assert.Equal(t, StatusPaidOff, loan.Status)

	// A paid-off loan never contributes again.
	_, err = loan.ApplyForPeriod("2026-04")
	assert.True(t, errors.Is(err, adjustmenterrors.ErrNotEffective))
}

func TestApplyForPeriod_FinalInstalmentIsPartial(t *testing.T) {
	loan := newLoan(20_000, 50_000)
	loan.RemainingBalance = ptrInt64(10_000)

	applied, err := loan.ApplyForPeriod("2026-01")
	assert.NoError(t, err)
	assert.Equal(t, int64(10_000), applied)
	assert.Equal(t, int64(0), *loan.RemainingBalance)
	assert.Equal(t, StatusPaidOff, loan.Status)
}

func TestApplyForPeriod_NonAmortizingReturnsFlatAmount(t *testing.T) {
	dues := &Adjustment{
		ID:        uuid.New(),
		StaffID:   uuid.New(),
		Direction: DirectionDeduction,
		Type:      TypeUnionDues,
		Amount:    1_500,
		Period:    "2025-10",
		Status:    StatusActive,
	}

	applied, err := dues.ApplyForPeriod("2026-02")
	assert.NoError(t, err)
	assert.Equal(t, int64(1_500), applied)
	assert.Equal(t, StatusActive, dues.Status)
}

func TestApplyForPeriod_BoundedWindowCompletesAtEndPeriod(t *testing.T) {
	hazard := &Adjustment{
		ID:          uuid.New(),
		StaffID:     uuid.New(),
		Direction:   DirectionAllowance,
		Type:        TypeOther,
		Amount:      5_000,
		Period:      "2026-01",
		StartPeriod: ptrString("2026-01"),
		EndPeriod:   ptrString("2026-03"),
		Status:      StatusActive,
	}

	applied, err := hazard.ApplyForPeriod("2026-02")
	assert.NoError(t, err)
	assert.Equal(t, int64(5_000), applied)
	assert.Equal(t, StatusActive, hazard.Status)

	applied, err = hazard.ApplyForPeriod("2026-03")
	assert.NoError(t, err)
	assert.Equal(t, int64(5_000), applied)
	assert.Equal(t, StatusApplied, hazard.Status)
}

func TestApplyForPeriod_RejectsOutOfWindowPeriods(t *testing.T) {
	cases := []struct {
		name string
		adj  *Adjustment
	}{
		{
			name: "before anchor period",
			adj: &Adjustment{
				Type:   TypeUnionDues,
				Amount: 1_000,
				Period: "2026-05",
				Status: StatusActive,
			},
		},
		{
			name: "before window start",
			adj: &Adjustment{
				Type:        TypeOther,
				Amount:      1_000,
				Period:      "2026-03",
				StartPeriod: ptrString("2026-03"),
				EndPeriod:   ptrString("2026-06"),
				Status:      StatusActive,
			},
		},
		{
			name: "after window end",
			adj: &Adjustment{
				Type:        TypeOther,
				Amount:      1_000,
				Period:      "2025-01",
				StartPeriod: ptrString("2025-01"),
				EndPeriod:   ptrString("2025-12"),
				Status:      StatusActive,
			},
		},
		{
			name: "pending",
			adj: &Adjustment{
				Type:   TypeUnionDues,
				Amount: 1_000,
				Period: "2026-01",
				Status: StatusPending,
			},
		},
		{
			name: "cancelled",
			adj: &Adjustment{
				Type:   TypeUnionDues,
				Amount: 1_000,
				Period: "2026-01",
				Status: StatusCancelled,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.adj.ApplyForPeriod("2026-02")
			assert.True(t, errors.Is(err, adjustmenterrors.ErrNotEffective))
		})
	}
}

func TestApplyForPeriod_CorruptedBalanceHalts(t *testing.T) {
	cases := []struct {
		name    string
		balance *int64
	}{
		{name: "missing balance", balance: nil},
		{name: "negative balance", balance: ptrInt64(-100)},
		{name: "balance above total", balance: ptrInt64(70_000)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			loan := newLoan(20_000, 60_000)
			loan.RemainingBalance = tc.balance

			_, err := loan.ApplyForPeriod("2026-01")
			assert.True(t, errors.Is(err, adjustmenterrors.ErrCorruptedBalance))
		})
	}
}
