package adjustment

import "time"

type CreateAdjustmentRequest struct {
	StaffID     string  `json:"staff_id" binding:"required,uuid"`
	Direction   string  `json:"direction" binding:"required,oneof=ALLOWANCE DEDUCTION"`
	Type        string  `json:"type" binding:"required"`
	Amount      int64   `json:"amount" binding:"required"`
	TotalAmount *int64  `json:"total_amount"`
	Period      string  `json:"period" binding:"required"`
	StartPeriod *string `json:"start_period"`
	EndPeriod   *string `json:"end_period"`
	Description string  `json:"description"`
}

type GetAdjustmentsFilterRequest struct {
	StaffID   string `form:"staff_id"`
	Direction string `form:"direction"`
	Status    string `form:"status"`
	Period    string `form:"period"`
}

type AdjustmentResponse struct {
	ID               string  `json:"id"`
	StaffID          string  `json:"staff_id"`
	Direction        string  `json:"direction"`
	Type             string  `json:"type"`
	Amount           int64   `json:"amount"`
	TotalAmount      *int64  `json:"total_amount,omitempty"`
	RemainingBalance *int64  `json:"remaining_balance,omitempty"`
	Period           string  `json:"period"`
	StartPeriod      *string `json:"start_period,omitempty"`
	EndPeriod        *string `json:"end_period,omitempty"`
	Status           string  `json:"status"`
	Description      string  `json:"description,omitempty"`
	ApprovedBy       *string `json:"approved_by,omitempty"`
	ApprovedAt       *string `json:"approved_at,omitempty"`
	CreatedAt        string  `json:"created_at"`
}

func mapToResponse(adj Adjustment) AdjustmentResponse {
	resp := AdjustmentResponse{
		ID:               adj.ID.String(),
		StaffID:          adj.StaffID.String(),
		Direction:        adj.Direction,
		Type:             adj.Type,
		Amount:           adj.Amount,
		TotalAmount:      adj.TotalAmount,
		RemainingBalance: adj.RemainingBalance,
		Period:           adj.Period,
		StartPeriod:      adj.StartPeriod,
		EndPeriod:        adj.EndPeriod,
		Status:           adj.Status,
		Description:      adj.Description,
		CreatedAt:        adj.CreatedAt.Format(time.RFC3339),
	}

	if adj.ApprovedBy != nil {
		v := adj.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if adj.ApprovedAt != nil {
		v := adj.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}

	return resp
}

func mapToListResponse(adjs []Adjustment) []AdjustmentResponse {
	resp := make([]AdjustmentResponse, len(adjs))
	for i, adj := range adjs {
		resp[i] = mapToResponse(adj)
	}
	return resp
}
