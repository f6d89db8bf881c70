package events

import "time"

const PayrollRunProcessedTopic = "gov.payroll.run.processed.v1"

const PayrollRunProcessed = "payroll_run.processed"

type PayrollRunProcessedEvent struct {
	EventType       string    `json:"event_type"`
	RunID           string    `json:"run_id"`
	Reference       string    `json:"reference"`
	Period          string    `json:"period"`
	DepartmentID    string    `json:"department_id,omitempty"`
	ProcessedStaff  int       `json:"processed_staff"`
	SkippedStaff    int       `json:"skipped_staff"`
	FailedStaff     int       `json:"failed_staff"`
	GrossAmount     int64     `json:"gross_amount"`
	TotalDeductions int64     `json:"total_deductions"`
	NetAmount       int64     `json:"net_amount"`
	OccurredAt      time.Time `json:"occurred_at"`
}
