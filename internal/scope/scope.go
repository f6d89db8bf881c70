package scope

import "gorm.io/gorm"

// Department limits a query to one department. An empty id means
// all departments and leaves the query untouched.
func Department(departmentID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if departmentID == "" {
			return db
		}
		return db.Where("department_id = ?", departmentID)
	}
}

// Period limits a query to one payroll period (YYYY-MM). An empty
// period leaves the query untouched.
func Period(period string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if period == "" {
			return db
		}
		return db.Where("period = ?", period)
	}
}
