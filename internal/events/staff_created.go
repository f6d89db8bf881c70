package events

import "time"

const StaffCreatedTopic = "gov.staff.lifecycle.v1"

type StaffCreatedEvent struct {
	EventType    string    `json:"event_type"`
	StaffID      string    `json:"staff_id"`
	StaffNumber  string    `json:"staff_number"`
	DepartmentID string    `json:"department_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
