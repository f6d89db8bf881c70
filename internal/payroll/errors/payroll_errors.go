package payrollerrors

import (
	"net/http"

	"govpay/internal/shared/apperror"
)

var (
	ErrInvalidActorID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid actor id",
		http.StatusBadRequest,
	)
	ErrInvalidRunID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payroll run id",
		http.StatusBadRequest,
	)
	ErrInvalidPayslipID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid payslip id",
		http.StatusBadRequest,
	)
	ErrInvalidStaffID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid staff id",
		http.StatusBadRequest,
	)
	ErrInvalidDepartmentID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid department id",
		http.StatusBadRequest,
	)
	ErrInvalidPeriodFormat = apperror.New(
		apperror.CodeInvalidInput,
		"invalid period format, expected YYYY-MM",
		http.StatusBadRequest,
	)

	ErrRunNotFound = apperror.New(
		apperror.CodeNotFound,
		"payroll run not found",
		http.StatusNotFound,
	)
	ErrPayslipNotFound = apperror.New(
		apperror.CodeNotFound,
		"payslip not found",
		http.StatusNotFound,
	)

	// ErrDuplicateRun names the conflicting run in its detail so the
	// operator can locate it without a second query.
	ErrDuplicateRun = apperror.New(
		apperror.CodeConflict,
		"a processed payroll run already exists for this period and scope",
		http.StatusConflict,
	)
	ErrRunInProgress = apperror.New(
		apperror.CodeConflict,
		"a payroll run for this period and scope is currently processing",
		http.StatusConflict,
	)
	ErrNothingToProcess = apperror.New(
		apperror.CodeInvalidState,
		"no staff left to process for this period and scope",
		http.StatusUnprocessableEntity,
	)
	ErrRunNotProcessed = apperror.New(
		apperror.CodeInvalidState,
		"only processed runs can be approved",
		http.StatusBadRequest,
	)
)
