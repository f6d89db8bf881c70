package stafferrors

import (
	"net/http"

	"govpay/internal/shared/apperror"
)

var (
	ErrStaffNotFound = apperror.New(
		apperror.CodeNotFound,
		"staff member not found",
		http.StatusNotFound,
	)
	ErrStaffEmailTaken = apperror.New(
		apperror.CodeConflict,
		"a staff member with this email already exists",
		http.StatusConflict,
	)
	ErrStaffNumberTaken = apperror.New(
		apperror.CodeConflict,
		"a staff member with this staff number already exists",
		http.StatusConflict,
	)
	ErrInvalidStaffID = apperror.New(
		apperror.CodeInvalidInput,
		"invalid staff id",
		http.StatusBadRequest,
	)
	ErrInvalidGradeStep = apperror.New(
		apperror.CodeInvalidInput,
		"grade level must be 1-17 and step must be 1-15",
		http.StatusBadRequest,
	)
	ErrInvalidStatus = apperror.New(
		apperror.CodeInvalidInput,
		"invalid staff status",
		http.StatusBadRequest,
	)
)
