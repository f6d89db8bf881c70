package payroll

import "time"

type StartRunRequest struct {
	Period       string  `json:"period" binding:"required"`
	DepartmentID *string `json:"department_id"`
}

type GetRunsFilterRequest struct {
	Period       string `form:"period"`
	Status       string `form:"status"`
	DepartmentID string `form:"department_id"`
}

// FailedStaff pairs a staff id with the reason its payslip could not be
// assembled.
type FailedStaff struct {
	StaffID string `json:"staff_id"`
	Reason  string `json:"reason"`
}

// RunResult is the summary returned to the caller of StartRun. Skipped
// staff already held a processed payslip for the period; failed staff
// need remediation and a follow-up run.
type RunResult struct {
	Run               PayrollRunResponse `json:"run"`
	ProcessedStaffIDs []string           `json:"processed_staff_ids"`
	SkippedStaffIDs   []string           `json:"skipped_staff_ids"`
	FailedStaff       []FailedStaff      `json:"failed_staff"`
}

type PayrollRunResponse struct {
	ID              string         `json:"id"`
	Reference       string         `json:"reference"`
	Period          string         `json:"period"`
	DepartmentID    *string        `json:"department_id"`
	Status          string         `json:"status"`
	Rates           StatutoryRates `json:"rates"`
	TotalStaff      int            `json:"total_staff"`
	GrossAmount     int64          `json:"gross_amount"`
	TotalDeductions int64          `json:"total_deductions"`
	NetAmount       int64          `json:"net_amount"`
	CreatedBy       string         `json:"created_by"`
	ApprovedBy      *string        `json:"approved_by,omitempty"`
	CreatedAt       string         `json:"created_at"`
	ProcessedAt     *string        `json:"processed_at,omitempty"`
	ApprovedAt      *string        `json:"approved_at,omitempty"`
}

type PayslipResponse struct {
	ID               string                    `json:"id"`
	PayrollRunID     string                    `json:"payroll_run_id"`
	StaffID          string                    `json:"staff_id"`
	Period           string                    `json:"period"`
	BasicSalary      int64                     `json:"basic_salary"`
	GrossPay         int64                     `json:"gross_pay"`
	TotalDeductions  int64                     `json:"total_deductions"`
	NetPay           int64                     `json:"net_pay"`
	DeductionsCapped bool                      `json:"deductions_capped"`
	Components       []PayslipComponentResponse `json:"components,omitempty"`
}

type PayslipComponentResponse struct {
	Kind         string  `json:"kind"`
	Source       string  `json:"source"`
	Name         string  `json:"name"`
	Amount       int64   `json:"amount"`
	AdjustmentID *string `json:"adjustment_id,omitempty"`
}

func mapRunToResponse(run PayrollRun) PayrollRunResponse {
	resp := PayrollRunResponse{
		ID:              run.ID.String(),
		Reference:       run.Reference,
		Period:          run.Period,
		Status:          run.Status,
		Rates:           run.Rates,
		TotalStaff:      run.TotalStaff,
		GrossAmount:     run.GrossAmount,
		TotalDeductions: run.TotalDeductions,
		NetAmount:       run.NetAmount,
		CreatedBy:       run.CreatedBy.String(),
		CreatedAt:       run.CreatedAt.Format(time.RFC3339),
	}

	if run.DepartmentID != nil {
		v := run.DepartmentID.String()
		resp.DepartmentID = &v
	}
	if run.ApprovedBy != nil {
		v := run.ApprovedBy.String()
		resp.ApprovedBy = &v
	}
	if run.ProcessedAt != nil {
		v := run.ProcessedAt.Format(time.RFC3339)
		resp.ProcessedAt = &v
	}
	if run.ApprovedAt != nil {
		v := run.ApprovedAt.Format(time.RFC3339)
		resp.ApprovedAt = &v
	}

	return resp
}

func mapRunsToListResponse(runs []PayrollRun) []PayrollRunResponse {
	resp := make([]PayrollRunResponse, len(runs))
	for i, run := range runs {
		resp[i] = mapRunToResponse(run)
	}
	return resp
}

func mapPayslipToResponse(slip Payslip) PayslipResponse {
	resp := PayslipResponse{
		ID:               slip.ID.String(),
		PayrollRunID:     slip.PayrollRunID.String(),
		StaffID:          slip.StaffID.String(),
		Period:           slip.Period,
		BasicSalary:      slip.BasicSalary,
		GrossPay:         slip.GrossPay,
		TotalDeductions:  slip.TotalDeductions,
		NetPay:           slip.NetPay,
		DeductionsCapped: slip.DeductionsCapped,
	}

	for _, comp := range slip.Components {
		item := PayslipComponentResponse{
			Kind:   comp.Kind,
			Source: comp.Source,
			Name:   comp.Name,
			Amount: comp.Amount,
		}
		if comp.AdjustmentID != nil {
			v := comp.AdjustmentID.String()
			item.AdjustmentID = &v
		}
		resp.Components = append(resp.Components, item)
	}

	return resp
}

func mapPayslipsToListResponse(slips []Payslip) []PayslipResponse {
	resp := make([]PayslipResponse, len(slips))
	for i, slip := range slips {
		resp[i] = mapPayslipToResponse(slip)
	}
	return resp
}
