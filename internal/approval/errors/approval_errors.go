package approvalerrors

import (
	"net/http"

	"go-leave/internal/shared/apperror"
)

var (
	ErrNotAuthorizedApprover = apperror.New(
		apperror.CodeForbidden,
		"you are not the pending approver for this request",
		http.StatusForbidden,
	)
	ErrApproverNotConfigured = apperror.New(
		apperror.CodeInvalidState,
		"no approver is configured for a required approval level",
		http.StatusUnprocessableEntity,
	)
	ErrChainExhausted = apperror.New(
		apperror.CodeInvalidState,
		"approval chain has no pending level",
		http.StatusBadRequest,
	)
	ErrInvalidDecisionAction = apperror.New(
		apperror.CodeInvalidInput,
		"unknown decision action",
		http.StatusBadRequest,
	)
	ErrDelegationNotFound = apperror.New(
		apperror.CodeNotFound,
		"delegation not found",
		http.StatusNotFound,
	)
)
