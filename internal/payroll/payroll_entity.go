package payroll

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusDraft         = "DRAFT"
	StatusProcessing    = "PROCESSING"
	StatusProcessed     = "PROCESSED"
	StatusPendingReview = "PENDING_REVIEW"
	StatusApproved      = "APPROVED"
)

// ScopeAll is the scope key for runs that cover every department.
const ScopeAll = "ALL"

// PayrollRun is one batch execution for a period and an optional
// department scope. The unique (period, scope_key) index plus the
// advisory lock in the repository keep concurrent starts from racing
// two run rows into existence.
type PayrollRun struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Reference string    `gorm:"size:30;not null;uniqueIndex:uq_run_reference"`

	Period       string     `gorm:"type:varchar(7);not null;uniqueIndex:uq_run_period_scope"`
	DepartmentID *uuid.UUID `gorm:"type:uuid"`
	// ScopeKey is the department id, or ScopeAll for unscoped runs.
	// Needed because NULLs never collide in a unique index.
	ScopeKey string `gorm:"type:varchar(40);not null;uniqueIndex:uq_run_period_scope"`

	Status string `gorm:"type:varchar(20);not null;default:'DRAFT';index"`

	// Statutory rates frozen at run start, in basis points. Historical
	// runs reproduce exactly even after the live rates are revised.
	Rates StatutoryRates `gorm:"embedded;embeddedPrefix:rate_"`

	TotalStaff      int   `gorm:"type:int;not null;default:0"`
	GrossAmount     int64 `gorm:"type:bigint;not null;default:0"`
	TotalDeductions int64 `gorm:"type:bigint;not null;default:0"`
	NetAmount       int64 `gorm:"type:bigint;not null;default:0"`

	CreatedBy  uuid.UUID  `gorm:"type:uuid;not null"`
	ApprovedBy *uuid.UUID `gorm:"type:uuid"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time `gorm:"index"`
	ApprovedAt  *time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`

	Payslips []Payslip `gorm:"foreignKey:PayrollRunID;constraint:OnDelete:CASCADE"`
}

// Payslip is the finalized pay computation for one staff member in one
// period. The (staff_id, period) unique index is the anti-double-payment
// invariant: it holds across runs, whatever scope each run used.
type Payslip struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayrollRunID uuid.UUID `gorm:"type:uuid;not null;index"`
	StaffID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_payslip_staff_period"`
	Period       string    `gorm:"type:varchar(7);not null;uniqueIndex:uq_payslip_staff_period"`

	BasicSalary     int64 `gorm:"type:bigint;not null"`
	GrossPay        int64 `gorm:"type:bigint;not null"`
	TotalDeductions int64 `gorm:"type:bigint;not null"`
	NetPay          int64 `gorm:"type:bigint;not null"`

	// DeductionsCapped marks payslips whose deductions were clamped to
	// gross pay to keep net pay non-negative.
	DeductionsCapped bool `gorm:"not null;default:false"`

	CreatedAt time.Time
	UpdatedAt time.Time

	Components []PayslipComponent `gorm:"foreignKey:PayslipID;constraint:OnDelete:CASCADE"`
}

const (
	ComponentAllowance = "ALLOWANCE"
	ComponentDeduction = "DEDUCTION"
)

const (
	SourceStructural = "STRUCTURAL"
	SourceIndividual = "INDIVIDUAL"
)

// PayslipComponent is one typed breakdown line. Individual components
// reference the adjustment that produced them and carry the amount
// actually applied, which for a final loan instalment may be less than
// the configured monthly amount.
type PayslipComponent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PayslipID uuid.UUID `gorm:"type:uuid;not null;index"`

	Kind   string `gorm:"type:varchar(10);not null"`
	Source string `gorm:"type:varchar(12);not null"`
	Name   string `gorm:"size:120;not null"`
	Amount int64  `gorm:"type:bigint;not null"`

	AdjustmentID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time
}
