package entitlementerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
	ErrInsufficientService = apperror.New(
		apperror.CodePolicyViolation,
		"employee has not completed the minimum service period for this leave type",
		http.StatusUnprocessableEntity,
	)
	ErrGenderRestricted = apperror.New(
		apperror.CodePolicyViolation,
		"leave type is not applicable for this employee",
		http.StatusUnprocessableEntity,
	)
	ErrEmploymentTypeRestricted = apperror.New(
		apperror.CodePolicyViolation,
		"leave type requires permanent employment",
		http.StatusUnprocessableEntity,
	)
)
