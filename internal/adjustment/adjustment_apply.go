package adjustment

import (
	adjustmenterrors "govpay/internal/adjustment/errors"
)

// ApplyForPeriod mutates the adjustment as if it were included in a
// payslip for the given period and returns the amount actually applied.
// The caller owns persistence: the mutated row and the payslip it feeds
// must be written in the same database transaction so a failed payslip
// never leaves a decremented balance behind.
func (a *Adjustment) ApplyForPeriod(period string) (int64, error) {
	if !a.EffectiveForPeriod(period) {
		return 0, adjustmenterrors.ErrNotEffective.WithDetail(
			"adjustment %s for period %s", a.ID, period)
	}

	if !a.IsAmortizing() {
		// Recurring adjustments apply their full amount every period.
		// A bounded one completes when its final period is paid.
		if a.EndPeriod != nil && *a.EndPeriod == period {
			a.Status = StatusApplied
		}
		return a.Amount, nil
	}

	if a.TotalAmount == nil || a.RemainingBalance == nil {
		return 0, adjustmenterrors.ErrCorruptedBalance.WithDetail(
			"amortizing adjustment %s has no balance", a.ID)
	}
	if *a.RemainingBalance < 0 || *a.RemainingBalance > *a.TotalAmount {
		return 0, adjustmenterrors.ErrCorruptedBalance.WithDetail(
			"adjustment %s balance %d of total %d", a.ID, *a.RemainingBalance, *a.TotalAmount)
	}

	// Never deduct past the balance: the last instalment may be partial.
	applied := a.Amount
	if applied > *a.RemainingBalance {
		applied = *a.RemainingBalance
	}

	*a.RemainingBalance -= applied
	if *a.RemainingBalance == 0 {
		a.Status = StatusPaidOff
	}

	return applied, nil
}
