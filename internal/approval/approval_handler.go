package approval

import (
	"net/http"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	delegations DelegationService
	logger      *zap.Logger
}

func NewHandler(delegations DelegationService, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("approval.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.handler")
	}
	return &Handler{delegations: delegations, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("delegation request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Grant(c *gin.Context) {
	var req GrantDelegationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	delegatorID, err := uuid.Parse(c.GetString("employee_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing employee identity", nil)
		return
	}

	d, err := req.toEntity(delegatorID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid delegation payload", nil)
		return
	}

	if err := h.delegations.Grant(c.Request.Context(), d); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, mapToDelegationResponse(d), nil)
}

func (h *Handler) Revoke(c *gin.Context) {
	actorID, err := uuid.Parse(c.GetString("employee_id"))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing employee identity", nil)
		return
	}

	if err := h.delegations.Revoke(c.Request.Context(), c.Param("id"), actorID); err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"revoked": true}, nil)
}

func (h *Handler) ListMine(c *gin.Context) {
	delegatorID := c.GetString("employee_id")
	delegations, err := h.delegations.ListActive(c.Request.Context(), delegatorID, time.Now().UTC())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	out := make([]DelegationResponse, 0, len(delegations))
	for i := range delegations {
		out = append(out, mapToDelegationResponse(&delegations[i]))
	}
	response.Success(c, http.StatusOK, out, nil)
}
