package events

import "time"

const AdjustmentLifecycleTopic = "gov.payroll.adjustment.lifecycle.v1"

const (
	AdjustmentCreated   = "adjustment.created"
	AdjustmentApproved  = "adjustment.approved"
	AdjustmentRejected  = "adjustment.rejected"
	AdjustmentCancelled = "adjustment.cancelled"
	AdjustmentPaidOff   = "adjustment.paid_off"
)

type AdjustmentLifecycleEvent struct {
	EventType    string    `json:"event_type"`
	AdjustmentID string    `json:"adjustment_id"`
	StaffID      string    `json:"staff_id"`
	Direction    string    `json:"direction"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	Period       string    `json:"period"`
	OccurredAt   time.Time `json:"occurred_at"`
}
