package salarytable

import (
	"time"

	"github.com/google/uuid"
)

// SalaryGrade is one cell of the consolidated salary scale: the basic
// salary for a (grade level, step) position. Amounts are stored in the
// smallest currency unit to avoid floating point error.
type SalaryGrade struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GradeLevel  int       `gorm:"type:int;not null;uniqueIndex:uq_salary_grade_step"`
	Step        int       `gorm:"type:int;not null;uniqueIndex:uq_salary_grade_step"`
	BasicSalary int64     `gorm:"type:bigint;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}
