package adjustment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DirectionAllowance = "ALLOWANCE"
	DirectionDeduction = "DEDUCTION"
)

const (
	StatusPending   = "PENDING"
	StatusActive    = "ACTIVE"
	StatusApplied   = "APPLIED"
	StatusPaidOff   = "PAID_OFF"
	StatusCancelled = "CANCELLED"
)

const (
	TypeLoanRepayment       = "LOAN_REPAYMENT"
	TypeSalaryAdvance       = "SALARY_ADVANCE"
	TypeCooperative         = "COOPERATIVE"
	TypeFine                = "FINE"
	TypeGarnishment         = "GARNISHMENT"
	TypeInsurancePremium    = "INSURANCE_PREMIUM"
	TypeUnionDues           = "UNION_DUES"
	TypeTrainingCost        = "TRAINING_COST"
	TypeEquipmentDamage     = "EQUIPMENT_DAMAGE"
	TypeOverpaymentRecovery = "OVERPAYMENT_RECOVERY"
	TypeOther               = "OTHER"
)

// amortizingTypes repay a fixed total over multiple periods and track a
// running balance. Everything else recurs until cancelled.
var amortizingTypes = map[string]bool{
	TypeLoanRepayment:       true,
	TypeSalaryAdvance:       true,
	TypeTrainingCost:        true,
	TypeOverpaymentRecovery: true,
	TypeCooperative:         true,
}

var validTypes = map[string]bool{
	TypeLoanRepayment:       true,
	TypeSalaryAdvance:       true,
	TypeCooperative:         true,
	TypeFine:                true,
	TypeGarnishment:         true,
	TypeInsurancePremium:    true,
	TypeUnionDues:           true,
	TypeTrainingCost:        true,
	TypeEquipmentDamage:     true,
	TypeOverpaymentRecovery: true,
	TypeOther:               true,
}

func IsAmortizingType(t string) bool {
	return amortizingTypes[t]
}

func IsValidType(t string) bool {
	return validTypes[t]
}

// Adjustment is a staff-specific allowance or deduction outside the
// structural formula. Amounts are in the smallest currency unit.
type Adjustment struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StaffID uuid.UUID `gorm:"type:uuid;not null;index:idx_adjustments_staff_status"`

	Direction string `gorm:"type:varchar(10);not null;index"`
	Type      string `gorm:"type:varchar(30);not null"`

	// Amount is the per-period value. TotalAmount and RemainingBalance
	// are set only for amortizing types.
	Amount           int64  `gorm:"type:bigint;not null"`
	TotalAmount      *int64 `gorm:"type:bigint"`
	RemainingBalance *int64 `gorm:"type:bigint"`

	// Period anchors the adjustment; Start/EndPeriod bound recurring ones.
	Period      string  `gorm:"type:varchar(7);not null;index"`
	StartPeriod *string `gorm:"type:varchar(7)"`
	EndPeriod   *string `gorm:"type:varchar(7)"`

	Status      string `gorm:"type:varchar(20);not null;index:idx_adjustments_staff_status"`
	Description string `gorm:"type:text"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`
	ApprovedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (a *Adjustment) IsAmortizing() bool {
	return IsAmortizingType(a.Type)
}

// EffectiveForPeriod reports whether an ACTIVE adjustment should
// contribute to a payslip for the given period.
func (a *Adjustment) EffectiveForPeriod(period string) bool {
	if a.Status != StatusActive {
		return false
	}

	if a.StartPeriod != nil {
		if *a.StartPeriod > period {
			return false
		}
		if a.EndPeriod != nil && *a.EndPeriod < period {
			return false
		}
		return true
	}

	// No explicit window: the adjustment runs from its anchor period
	// until paid off or cancelled.
	return a.Period <= period
}
