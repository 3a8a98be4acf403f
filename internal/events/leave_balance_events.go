package events

import "time"

const LeaveBalanceTopic = "hr.leave.balance.v1"

const (
	LeaveBalanceConsumed = "leave.balance.consumed"
	LeaveBalanceAdjusted = "leave.balance.adjusted"
	LeaveBalanceAccrued  = "leave.balance.accrued"
)

type LeaveBalanceEvent struct {
	EventType  string    `json:"event_type"`
	BalanceID  string    `json:"balance_id"`
	EmployeeID string    `json:"employee_id"`
	LeaveYear  int       `json:"leave_year"`
	LeaveType  string    `json:"leave_type"`
	Amount     string    `json:"amount"`
	Available  string    `json:"available"`
	Reference  string    `json:"reference,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
