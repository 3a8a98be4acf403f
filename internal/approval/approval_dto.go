package approval

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type GrantDelegationRequest struct {
	DelegateID   string  `json:"delegate_id" binding:"required,uuid"`
	LeaveType    *string `json:"leave_type" binding:"omitempty"`
	DepartmentID *string `json:"department_id" binding:"omitempty,uuid"`
	MaxDays      *string `json:"max_days" binding:"omitempty"`
	StartsAt     string  `json:"starts_at" binding:"required"`
	EndsAt       string  `json:"ends_at" binding:"required"`
}

type DelegationResponse struct {
	ID           string  `json:"id"`
	DelegatorID  string  `json:"delegator_id"`
	DelegateID   string  `json:"delegate_id"`
	LeaveType    *string `json:"leave_type,omitempty"`
	DepartmentID *string `json:"department_id,omitempty"`
	MaxDays      *string `json:"max_days,omitempty"`
	StartsAt     string  `json:"starts_at"`
	EndsAt       string  `json:"ends_at"`
	Active       bool    `json:"active"`
}

type ApproverResponse struct {
	Sequence   int     `json:"sequence"`
	Level      string  `json:"level"`
	ApproverID string  `json:"approver_id"`
	Status     string  `json:"status"`
	ActedBy    *string `json:"acted_by,omitempty"`
	ActedAt    *string `json:"acted_at,omitempty"`
	Comment    string  `json:"comment,omitempty"`
}

func (req *GrantDelegationRequest) toEntity(delegatorID uuid.UUID) (*ApprovalDelegation, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, err
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, err
	}

	d := &ApprovalDelegation{
		ID:          uuid.New(),
		DelegatorID: delegatorID,
		LeaveType:   req.LeaveType,
		StartsAt:    startsAt,
		EndsAt:      endsAt,
	}
	if d.DelegateID, err = uuid.Parse(req.DelegateID); err != nil {
		return nil, err
	}
	if req.DepartmentID != nil {
		deptID, err := uuid.Parse(*req.DepartmentID)
		if err != nil {
			return nil, err
		}
		d.DepartmentID = &deptID
	}
	if req.MaxDays != nil {
		maxDays, err := decimal.NewFromString(*req.MaxDays)
		if err != nil {
			return nil, err
		}
		d.MaxDays = &maxDays
	}
	return d, nil
}

func mapToDelegationResponse(d *ApprovalDelegation) DelegationResponse {
	resp := DelegationResponse{
		ID:          d.ID.String(),
		DelegatorID: d.DelegatorID.String(),
		DelegateID:  d.DelegateID.String(),
		LeaveType:   d.LeaveType,
		StartsAt:    d.StartsAt.Format(time.RFC3339),
		EndsAt:      d.EndsAt.Format(time.RFC3339),
		Active:      d.Active,
	}
	if d.DepartmentID != nil {
		deptID := d.DepartmentID.String()
		resp.DepartmentID = &deptID
	}
	if d.MaxDays != nil {
		maxDays := d.MaxDays.StringFixed(2)
		resp.MaxDays = &maxDays
	}
	return resp
}

func MapToApproverResponses(approvers []Approver) []ApproverResponse {
	out := make([]ApproverResponse, 0, len(approvers))
	for i := range approvers {
		a := approvers[i]
		resp := ApproverResponse{
			Sequence:   a.Sequence,
			Level:      a.Level,
			ApproverID: a.ApproverID.String(),
			Status:     a.Status,
			Comment:    a.Comment,
		}
		if a.ActedBy != nil {
			actedBy := a.ActedBy.String()
			resp.ActedBy = &actedBy
		}
		if a.ActedAt != nil {
			actedAt := a.ActedAt.Format(time.RFC3339)
			resp.ActedAt = &actedAt
		}
		out = append(out, resp)
	}
	return out
}
