package events

import "time"

const LeaveRequestTopic = "hr.leave.request.v1"

const (
	LeaveRequestSubmitted = "leave.request.submitted"
	LeaveRequestDecided   = "leave.request.decided"
	LeaveRequestCancelled = "leave.request.cancelled"
	LeaveRequestWithdrawn = "leave.request.withdrawn"
)

type LeaveRequestEvent struct {
	EventType    string    `json:"event_type"`
	RequestID    string    `json:"request_id"`
	EmployeeID   string    `json:"employee_id"`
	SubsidiaryID string    `json:"subsidiary_id"`
	LeaveType    string    `json:"leave_type"`
	Status       string    `json:"status"`
	StartDate    string    `json:"start_date"`
	EndDate      string    `json:"end_date"`
	TotalDays    string    `json:"total_days"`
	ActorID      string    `json:"actor_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}
