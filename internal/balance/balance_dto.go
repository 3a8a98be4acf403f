package balance

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdjustBalanceRequest struct {
	AdjustmentType string `json:"adjustment_type" binding:"required,oneof=CREDIT DEBIT CORRECTION ENCASHMENT COMPENSATORY_EARNED"`
	Amount         string `json:"amount" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
	Reference      string `json:"reference"`
}

type ProvisionBalanceRequest struct {
	EmployeeID string `json:"employee_id" binding:"required,uuid"`
	LeaveYear  int    `json:"leave_year" binding:"required"`
	LeaveType  string `json:"leave_type" binding:"required"`
	JoinDate   string `json:"join_date" binding:"required"`
}

type BalanceResponse struct {
	EmployeeID          string          `json:"employee_id"`
	LeaveYear           int             `json:"leave_year"`
	LeaveType           string          `json:"leave_type"`
	AnnualEntitlement   decimal.Decimal `json:"annual_entitlement"`
	ProratedEntitlement decimal.Decimal `json:"prorated_entitlement"`
	AccruedToDate       decimal.Decimal `json:"accrued_to_date"`
	AccrualRate         decimal.Decimal `json:"accrual_rate"`
	CarriedOver         decimal.Decimal `json:"carried_over"`
	CarriedOverUsed     decimal.Decimal `json:"carried_over_used"`
	CarriedOverExpired  decimal.Decimal `json:"carried_over_expired"`
	CarryOverExpiresAt  *string         `json:"carry_over_expires_at,omitempty"`
	Taken               decimal.Decimal `json:"taken"`
	Pending             decimal.Decimal `json:"pending"`
	AdvanceTaken        decimal.Decimal `json:"advance_taken"`
	Encashed            decimal.Decimal `json:"encashed"`
	Available           decimal.Decimal `json:"available"`
}

type HistoryResponse struct {
	ID              string          `json:"id"`
	ChangeType      string          `json:"change_type"`
	AdjustmentType  *string         `json:"adjustment_type,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	FromCarryOver   decimal.Decimal `json:"from_carry_over"`
	BeforeAvailable decimal.Decimal `json:"before_available"`
	AfterAvailable  decimal.Decimal `json:"after_available"`
	Reference       *string         `json:"reference,omitempty"`
	Reason          string          `json:"reason,omitempty"`
	CreatedAt       string          `json:"created_at"`
}

func mapToBalanceResponse(b LeaveTypeBalance) BalanceResponse {
	resp := BalanceResponse{
		EmployeeID:          b.EmployeeID.String(),
		LeaveYear:           b.LeaveYear,
		LeaveType:           b.LeaveType,
		AnnualEntitlement:   b.AnnualEntitlement,
		ProratedEntitlement: b.ProratedEntitlement,
		AccruedToDate:       b.AccruedToDate,
		AccrualRate:         b.AccrualRate,
		CarriedOver:         b.CarriedOver,
		CarriedOverUsed:     b.CarriedOverUsed,
		CarriedOverExpired:  b.CarriedOverExpired,
		Taken:               b.Taken,
		Pending:             b.Pending,
		AdvanceTaken:        b.AdvanceTaken,
		Encashed:            b.Encashed,
		Available:           b.Available,
	}
	if b.CarryOverExpiresAt != nil {
		v := b.CarryOverExpiresAt.Format("2006-01-02")
		resp.CarryOverExpiresAt = &v
	}
	return resp
}

func mapToHistoryResponse(e BalanceHistoryEntry) HistoryResponse {
	return HistoryResponse{
		ID:              e.ID.String(),
		ChangeType:      e.ChangeType,
		AdjustmentType:  e.AdjustmentType,
		Amount:          e.Amount,
		FromCarryOver:   e.FromCarryOver,
		BeforeAvailable: e.BeforeAvailable,
		AfterAvailable:  e.AfterAvailable,
		Reference:       e.Reference,
		Reason:          e.Reason,
		CreatedAt:       e.CreatedAt.Format(time.RFC3339),
	}
}
