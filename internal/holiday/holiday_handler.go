package holiday

import (
	"net/http"
	"strconv"
	"time"

	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handler struct {
	repo   Repository
	logger *zap.Logger
}

func NewHandler(repo Repository, logger ...*zap.Logger) *Handler {
	l := zap.L().Named("holiday.handler")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("holiday.handler")
	}
	return &Handler{repo: repo, logger: l}
}

type createHolidayRequest struct {
	SubsidiaryID string `json:"subsidiary_id" binding:"required,uuid"`
	Date         string `json:"date" binding:"required"`
	Name         string `json:"name" binding:"required,max=150"`
}

type holidayResponse struct {
	ID           string `json:"id"`
	SubsidiaryID string `json:"subsidiary_id"`
	Date         string `json:"date"`
	Name         string `json:"name"`
}

func mapToHolidayResponse(h *PublicHoliday) holidayResponse {
	return holidayResponse{
		ID:           h.ID.String(),
		SubsidiaryID: h.SubsidiaryID.String(),
		Date:         h.Date.Format("2006-01-02"),
		Name:         h.Name,
	}
}

func (h *Handler) List(c *gin.Context) {
	subsidiaryID := c.Query("subsidiary_id")
	if _, err := uuid.Parse(subsidiaryID); err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid subsidiary_id", nil)
		return
	}

	year, err := strconv.Atoi(c.DefaultQuery("year", strconv.Itoa(time.Now().UTC().Year())))
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid year", nil)
		return
	}

	holidays, err := h.repo.FindByYear(c.Request.Context(), subsidiaryID, year)
	if err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("holiday list failed",
			zap.String("subsidiary_id", subsidiaryID),
			zap.Int("year", year),
			zap.Int("status", httpErr.Status),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}

	out := make([]holidayResponse, 0, len(holidays))
	for i := range holidays {
		out = append(out, mapToHolidayResponse(&holidays[i]))
	}
	response.Success(c, http.StatusOK, out, nil)
}

func (h *Handler) Create(c *gin.Context) {
	var req createHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	subsidiaryID, err := uuid.Parse(req.SubsidiaryID)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid subsidiary_id", nil)
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, http.StatusBadRequest, apperror.CodeInvalidInput, "invalid date, expected YYYY-MM-DD", nil)
		return
	}

	entity := &PublicHoliday{
		SubsidiaryID: subsidiaryID,
		Date:         date,
		Name:         req.Name,
	}
	if err := h.repo.Create(c.Request.Context(), entity); err != nil {
		httpErr := apperror.ToHTTP(err)
		h.logger.Warn("holiday create failed",
			zap.String("subsidiary_id", req.SubsidiaryID),
			zap.String("date", req.Date),
			zap.Int("status", httpErr.Status),
		)
		response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
		return
	}
	response.Success(c, http.StatusCreated, mapToHolidayResponse(entity), nil)
}
