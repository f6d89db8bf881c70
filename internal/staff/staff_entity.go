package staff

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Staff struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	StaffNumber string    `gorm:"size:20;not null;uniqueIndex:uq_staff_number"`
	FullName    string    `gorm:"size:255;not null"`
	Email       string    `gorm:"size:255;uniqueIndex:uq_staff_email"`

	// Position on the consolidated salary scale
	GradeLevel int `gorm:"type:int;not null"`
	Step       int `gorm:"type:int;not null"`

	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	Status       string     `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
