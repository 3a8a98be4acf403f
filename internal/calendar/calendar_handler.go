package calendar

import (
	"net/http"
	"strconv"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	projector Projector
	logger    *zap.Logger
}

func NewHandler(projector Projector, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("calendar.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.handler")
	}
	return &Handler{projector: projector, logger: l}
}

type calendarEntryResponse struct {
	RequestID  string `json:"request_id"`
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	DayValue   string `json:"day_value"`
	LeaveType  string `json:"leave_type"`
	Status     string `json:"status"`
}

func (h *Handler) DepartmentMonth(c *gin.Context) {
	departmentID := c.Param("departmentId")
	now := time.Now().UTC()

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(now.Year())))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}
	month, err := strconv.Atoi(c.DefaultQuery("month", strconv.Itoa(int(now.Month()))))
	if err != nil || month < 1 || month > 12 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid month", nil)
		return
	}

	entries, err := h.projector.DepartmentMonth(c.Request.Context(), departmentID, year, time.Month(month))
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("calendar query failed",
			zap.String("department_id", departmentID),
			zap.Int("status", httpErr.Status),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	out := make([]calendarEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, calendarEntryResponse{
			RequestID:  e.RequestID.String(),
			EmployeeID: e.EmployeeID.String(),
			Date:       e.Date.Format("2006-01-02"),
			DayValue:   e.DayValue.StringFixed(2),
			LeaveType:  e.LeaveType,
			Status:     e.Status,
		})
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *Handler) TeamConflicts(c *gin.Context) {
	departmentID := c.Param("departmentId")

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid start, expected YYYY-MM-DD", nil)
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil || end.Before(start) {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid end, expected YYYY-MM-DD on or after start", nil)
		return
	}
	maxAllowed, err := strconv.Atoi(c.DefaultQuery("max_allowed", "0"))
	if err != nil || maxAllowed < 0 {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid max_allowed", nil)
		return
	}

	conflicts, err := h.projector.CheckTeamConflicts(
		c.Request.Context(), departmentID, start, end, c.GetString("employee_id"), maxAllowed,
	)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}
	response.Success(c, http.StatusOK, conflicts, nil)
}
