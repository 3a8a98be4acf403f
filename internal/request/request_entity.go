package request

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusPendingHRReview Status = "PENDING_HR_REVIEW"
	StatusApproved        Status = "APPROVED"
	StatusRejected        Status = "REJECTED"
	StatusCancelled       Status = "CANCELLED"
	StatusWithdrawn       Status = "WITHDRAWN"
)

// transitions is the closed edge set of the request state machine. The
// PENDING_APPROVAL -> DRAFT edge exists only for the first approver's
// "return" action.
var transitions = map[Status][]Status{
	StatusDraft:           {StatusPendingApproval, StatusWithdrawn},
	StatusPendingApproval: {StatusPendingHRReview, StatusApproved, StatusRejected, StatusCancelled, StatusDraft},
	StatusPendingHRReview: {StatusApproved, StatusRejected, StatusCancelled, StatusPendingApproval},
	StatusApproved:        {StatusCancelled},
	StatusRejected:        {},
	StatusCancelled:       {},
	StatusWithdrawn:       {},
}

func (s Status) CanTransitionTo(target Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

type Priority string

const (
	PriorityNormal    Priority = "NORMAL"
	PriorityHigh      Priority = "HIGH"
	PriorityEmergency Priority = "EMERGENCY"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

type LeaveRequest struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	SubsidiaryID uuid.UUID  `gorm:"type:uuid;not null"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`

	LeaveType string          `gorm:"type:varchar(30);not null"`
	StartDate time.Time       `gorm:"type:date;not null"`
	EndDate   time.Time       `gorm:"type:date;not null"`
	TotalDays decimal.Decimal `gorm:"type:decimal(6,2);not null"`

	Priority Priority `gorm:"type:varchar(20);not null;default:'NORMAL'"`
	Status   Status   `gorm:"type:varchar(30);not null;index"`

	Reason           string     `gorm:"type:text"`
	EmergencyContact string     `gorm:"type:varchar(150)"`
	DutiesDelegateID *uuid.UUID `gorm:"type:uuid"`

	// CurrentLevel indexes the approval chain: the approver at
	// chain[CurrentLevel] holds the pending decision.
	CurrentLevel int `gorm:"not null;default:0"`
	Version      int `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveRequest) TableName() string { return "leave_requests" }

// RequestDay is the per-day configuration of a request. Value is 1 for a
// full working day, 0.5 for a half day and 0 for weekends and holidays.
type RequestDay struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Date      time.Time       `gorm:"type:date;not null"`
	Value     decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	Weekend   bool            `gorm:"not null;default:false"`
	Holiday   bool            `gorm:"not null;default:false"`
	HalfDay   bool            `gorm:"not null;default:false"`
}

func (RequestDay) TableName() string { return "leave_request_days" }

// StatusHistory is the append-only trail of status edges.
type StatusHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	FromStatus string     `gorm:"type:varchar(30);not null"`
	ToStatus   string     `gorm:"type:varchar(30);not null"`
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	Reason     string     `gorm:"type:text"`
	CreatedAt  time.Time
}

func (StatusHistory) TableName() string { return "leave_request_status_history" }
