package requesterrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"leave request not found",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"illegal leave request status transition",
		http.StatusConflict,
	)
	ErrNoWorkingDaysInRange = apperror.New(
		apperror.CodeInvalidInput,
		"date range contains no working days",
		http.StatusBadRequest,
	)
	ErrOverlappingRequest = apperror.New(
		apperror.CodePolicyViolation,
		"an existing leave request overlaps this date range",
		http.StatusConflict,
	)
	ErrInsufficientNotice = apperror.New(
		apperror.CodePolicyViolation,
		"the notice period for this leave type is not met",
		http.StatusUnprocessableEntity,
	)
	ErrExceedsMaxConsecutiveDays = apperror.New(
		apperror.CodePolicyViolation,
		"requested days exceed the maximum consecutive days for this leave type",
		http.StatusUnprocessableEntity,
	)
	ErrNotRequestOwner = apperror.New(
		apperror.CodeForbidden,
		"only the requester may perform this action",
		http.StatusForbidden,
	)
	ErrCancelNotAllowed = apperror.New(
		apperror.CodeForbidden,
		"only the requester or HR may cancel this request",
		http.StatusForbidden,
	)
	ErrCancelAfterStart = apperror.New(
		apperror.CodeInvalidState,
		"an approved leave cannot be cancelled after its start date",
		http.StatusUnprocessableEntity,
	)
	ErrVersionConflict = apperror.New(
		apperror.CodeConflict,
		"leave request was modified concurrently",
		http.StatusConflict,
	)
	ErrInvalidDateRange = apperror.New(
		apperror.CodeInvalidInput,
		"end date must be on or after start date",
		http.StatusBadRequest,
	)
	ErrUnknownLeaveType = apperror.New(
		apperror.CodeInvalidInput,
		"unknown leave type",
		http.StatusBadRequest,
	)
)
