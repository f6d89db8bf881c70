package salarytableerrors

import (
	"net/http"

	"govpay/internal/shared/apperror"
)

var (
	// ErrSalaryGradeNotFound indicates a roster entry points at a
	// (grade level, step) pair that has no salary table row. Pay must
	// never be silently defaulted, so lookups fail instead.
	ErrSalaryGradeNotFound = apperror.New(
		apperror.CodeInvalidState,
		"no salary table entry for this grade level and step",
		http.StatusUnprocessableEntity,
	)
	ErrSalaryGradeExists = apperror.New(
		apperror.CodeConflict,
		"a salary table entry for this grade level and step already exists",
		http.StatusConflict,
	)
	ErrInvalidGradeStep = apperror.New(
		apperror.CodeInvalidInput,
		"grade level must be 1-17 and step must be 1-15",
		http.StatusBadRequest,
	)
	ErrInvalidBasicSalary = apperror.New(
		apperror.CodeInvalidInput,
		"basic salary must be greater than zero",
		http.StatusBadRequest,
	)
)
