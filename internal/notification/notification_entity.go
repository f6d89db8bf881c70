package notification

import (
	"time"

	"github.com/google/uuid"
)

type Notification struct {
	ID      uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	StaffID *uuid.UUID `gorm:"type:uuid;index"` // nil = broadcast to administrators

	Category string `gorm:"type:varchar(40);not null;index"`
	Title    string `gorm:"type:varchar(160);not null"`
	Body     string `gorm:"type:text"`

	ReadAt    *time.Time `gorm:"index"`
	CreatedAt time.Time
}

const (
	CategoryPayrollRun = "PAYROLL_RUN"
	CategoryAdjustment = "ADJUSTMENT"
)
