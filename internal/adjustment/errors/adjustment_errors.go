package adjustmenterrors

import (
	"net/http"

	"govpay/internal/shared/apperror"
)

var (
	ErrAdjustmentNotFound = apperror.New(
		apperror.CodeNotFound,
		"adjustment not found",
		http.StatusNotFound,
	)
	ErrInvalidAdjustmentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid adjustment id",
		http.StatusBadRequest,
	)
	ErrInvalidStaffID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid staff id",
		http.StatusBadRequest,
	)
	ErrInvalidDirection = apperror.New(
		apperror.CodeInvalidInput,
		"direction must be ALLOWANCE or DEDUCTION",
		http.StatusBadRequest,
	)
	ErrInvalidType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown adjustment type",
		http.StatusBadRequest,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be greater than zero",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period format, expected YYYY-MM",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodRange = apperror.New(
		apperror.CodeInvalidInput,
		"start_period must be before or equal end_period",
		http.StatusBadRequest,
	)
	ErrTotalAmountRequired = apperror.New(
		apperror.CodeInvalidInput,
		"total_amount is required for amortizing adjustment types",
		http.StatusBadRequest,
	)
	ErrTotalAmountTooSmall = apperror.New(
		apperror.CodeInvalidInput,
		"total_amount must be at least the per-period amount",
		http.StatusBadRequest,
	)
	ErrNotPending = apperror.New(
		apperror.CodeInvalidState,
		"only pending adjustments can be approved or rejected",
		http.StatusBadRequest,
	)
	ErrNotCancellable = apperror.New(
		apperror.CodeInvalidState,
		"only pending or active adjustments can be cancelled",
		http.StatusBadRequest,
	)
	ErrNotEffective = apperror.New(
		apperror.CodeInvalidState,
		"adjustment is not effective for the requested period",
		http.StatusBadRequest,
	)

	// ErrCorruptedBalance signals ledger corruption: a remaining balance
	// outside [0, total_amount]. The affected staff member's payslip must
	// halt rather than guess at a deduction.
	ErrCorruptedBalance = apperror.New(
		apperror.CodeInvalidState,
		"adjustment balance is inconsistent with its total amount",
		http.StatusUnprocessableEntity,
	)
)
