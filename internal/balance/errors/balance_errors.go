package balanceerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrBalanceNotFound = apperror.New(
		apperror.CodeNotFound,
		"no leave balance record exists for this employee, year and leave type",
		http.StatusNotFound,
	)
	ErrInsufficientBalance = apperror.New(
		apperror.CodePolicyViolation,
		"insufficient leave balance",
		http.StatusUnprocessableEntity,
	)
	ErrInvalidAmount = apperror.New(
		apperror.CodeInvalidInput,
		"amount must be a positive number of days",
		http.StatusBadRequest,
	)
	ErrInvalidEmployeeID = apperror.New(
		apperror.CodeInvalidInput,
		"employee id must be a valid UUID",
		http.StatusBadRequest,
	)
	ErrInvalidAdjustmentType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown balance adjustment type",
		http.StatusBadRequest,
	)
	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"balance record was modified concurrently",
		http.StatusConflict,
	)
	ErrDuplicateReference = apperror.New(
		apperror.CodeConflict,
		"a ledger entry with this reference already exists",
		http.StatusConflict,
	)
	ErrBalanceExists = apperror.New(
		apperror.CodeConflict,
		"a balance record already exists for this employee, year and leave type",
		http.StatusConflict,
	)
)
