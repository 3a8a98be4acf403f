package balance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go-leave/internal/entitlement"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const summaryCacheTTL = 60 * time.Second

type Handler struct {
	service Service
	rdb     *redis.Client
	group   singleflight.Group
	logger  *zap.Logger
}

// NewHandler caches balance summaries in redis; singleflight collapses
// concurrent cache fills for the same employee/year.
func NewHandler(service Service, rdb *redis.Client, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("balance.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.handler")
	}
	return &Handler{service: service, rdb: rdb, logger: l}
}

func (h *Handler) writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	h.logger.Warn("balance request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", httpErr.Status),
		zap.String("code", httpErr.Code),
	)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func summaryCacheKey(employeeID string, year int) string {
	return fmt.Sprintf("balance:summary:%s:%d", employeeID, year)
}

func (h *Handler) GetSummary(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.DefaultQuery("employee_id", c.GetString("employee_id"))
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().UTC().Year())))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}

	key := summaryCacheKey(employeeID, year)
	if h.rdb != nil {
		if cached, err := h.rdb.Get(ctx, key).Result(); err == nil {
			var resp []BalanceResponse
			if err := json.Unmarshal([]byte(cached), &resp); err == nil {
				response.Success(c, http.StatusOK, resp, nil)
				return
			}
		}
	}

	v, err, _ := h.group.Do(key, func() (interface{}, error) {
		resp, err := h.service.Summary(ctx, employeeID, year)
		if err != nil {
			return nil, err
		}
		if h.rdb != nil {
			if raw, err := json.Marshal(resp); err == nil {
				if err := h.rdb.Set(ctx, key, raw, summaryCacheTTL).Err(); err != nil {
					h.logger.Debug("summary cache set failed", zap.Error(err))
				}
			}
		}
		return resp, nil
	})
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, v, nil)
}

func (h *Handler) GetHistory(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.DefaultQuery("employee_id", c.GetString("employee_id"))
	leaveType := entitlement.LeaveType(c.Query("leave_type"))
	if !leaveType.Valid() {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid leave_type", nil)
		return
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().UTC().Year())))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}

	resp, err := h.service.History(ctx, employeeID, year, leaveType)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()
	employeeID := c.Param("employeeId")
	actorID := c.GetString("employee_id")

	leaveType := entitlement.LeaveType(c.Query("leave_type"))
	if !leaveType.Valid() {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid leave_type", nil)
		return
	}
	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().UTC().Year())))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}

	var req AdjustBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Adjust(ctx, employeeID, year, leaveType, req, actorID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidateSummary(ctx, employeeID, year)
	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Provision(c *gin.Context) {
	ctx := c.Request.Context()

	var req ProvisionBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}
	leaveType := entitlement.LeaveType(req.LeaveType)
	if !leaveType.Valid() {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid leave_type", nil)
		return
	}
	joinDate, err := time.Parse("2006-01-02", req.JoinDate)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid join_date, expected YYYY-MM-DD", nil)
		return
	}

	resp, err := h.service.Provision(ctx, req.EmployeeID, req.LeaveYear, leaveType, joinDate)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	h.invalidateSummary(ctx, req.EmployeeID, req.LeaveYear)
	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) invalidateSummary(ctx context.Context, employeeID string, year int) {
	if h.rdb == nil {
		return
	}
	if err := h.rdb.Del(ctx, summaryCacheKey(employeeID, year)).Err(); err != nil {
		h.logger.Debug("summary cache invalidation failed", zap.Error(err))
	}
}
