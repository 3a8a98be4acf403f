package request

import (
	"time"

	"go-leave/internal/approval"
)

type CreateLeaveRequest struct {
	LeaveType        string  `json:"leave_type" binding:"required"`
	StartDate        string  `json:"start_date" binding:"required"`
	EndDate          string  `json:"end_date" binding:"required"`
	HalfDayStart     bool    `json:"half_day_start"`
	HalfDayEnd       bool    `json:"half_day_end"`
	Priority         string  `json:"priority" binding:"omitempty,oneof=NORMAL HIGH EMERGENCY"`
	Reason           string  `json:"reason" binding:"required"`
	EmergencyContact string  `json:"emergency_contact" binding:"omitempty,max=150"`
	DutiesDelegateID *string `json:"duties_delegate_id" binding:"omitempty,uuid"`
	AsDraft          bool    `json:"as_draft"`
}

type DecisionRequest struct {
	Action  string `json:"action" binding:"required,oneof=APPROVE REJECT RETURN"`
	Comment string `json:"comment" binding:"omitempty,max=500"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type DayResponse struct {
	Date    string `json:"date"`
	Value   string `json:"value"`
	Weekend bool   `json:"weekend"`
	Holiday bool   `json:"holiday"`
	HalfDay bool   `json:"half_day"`
}

type StatusHistoryResponse struct {
	FromStatus string  `json:"from_status"`
	ToStatus   string  `json:"to_status"`
	ActorID    *string `json:"actor_id,omitempty"`
	Reason     string  `json:"reason,omitempty"`
	CreatedAt  string  `json:"created_at"`
}

type RequestResponse struct {
	ID               string  `json:"id"`
	EmployeeID       string  `json:"employee_id"`
	EmployeeName     string  `json:"employee_name,omitempty"`
	LeaveType        string  `json:"leave_type"`
	StartDate        string  `json:"start_date"`
	EndDate          string  `json:"end_date"`
	TotalDays        string  `json:"total_days"`
	Priority         string  `json:"priority"`
	Status           string  `json:"status"`
	Reason           string  `json:"reason,omitempty"`
	EmergencyContact string  `json:"emergency_contact,omitempty"`
	DutiesDelegateID *string `json:"duties_delegate_id,omitempty"`
	CurrentLevel     int     `json:"current_level"`

	Days          []DayResponse               `json:"days,omitempty"`
	Approvers     []approval.ApproverResponse `json:"approvers,omitempty"`
	StatusHistory []StatusHistoryResponse     `json:"status_history,omitempty"`
}

func mapToRequestResponse(req *LeaveRequest) RequestResponse {
	resp := RequestResponse{
		ID:               req.ID.String(),
		EmployeeID:       req.EmployeeID.String(),
		LeaveType:        req.LeaveType,
		StartDate:        req.StartDate.Format("2006-01-02"),
		EndDate:          req.EndDate.Format("2006-01-02"),
		TotalDays:        req.TotalDays.StringFixed(2),
		Priority:         string(req.Priority),
		Status:           string(req.Status),
		Reason:           req.Reason,
		EmergencyContact: req.EmergencyContact,
		CurrentLevel:     req.CurrentLevel,
	}
	if req.DutiesDelegateID != nil {
		id := req.DutiesDelegateID.String()
		resp.DutiesDelegateID = &id
	}
	return resp
}

func mapToDayResponses(days []RequestDay) []DayResponse {
	out := make([]DayResponse, 0, len(days))
	for _, d := range days {
		out = append(out, DayResponse{
			Date:    d.Date.Format("2006-01-02"),
			Value:   d.Value.StringFixed(2),
			Weekend: d.Weekend,
			Holiday: d.Holiday,
			HalfDay: d.HalfDay,
		})
	}
	return out
}

func mapToStatusHistoryResponses(entries []StatusHistory) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		resp := StatusHistoryResponse{
			FromStatus: e.FromStatus,
			ToStatus:   e.ToStatus,
			Reason:     e.Reason,
			CreatedAt:  e.CreatedAt.Format(time.RFC3339),
		}
		if e.ActorID != nil {
			id := e.ActorID.String()
			resp.ActorID = &id
		}
		out = append(out, resp)
	}
	return out
}
