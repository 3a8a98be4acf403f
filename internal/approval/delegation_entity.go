package approval

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ApprovalDelegation is a time-bounded, scope-limited grant letting one
// person decide on behalf of another. It never alters the chain itself.
type ApprovalDelegation struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DelegatorID uuid.UUID `gorm:"type:uuid;not null;index"`
	DelegateID  uuid.UUID `gorm:"type:uuid;not null;index"`

	// nil scope fields mean "unrestricted".
	LeaveType    *string          `gorm:"type:varchar(30)"`
	DepartmentID *uuid.UUID       `gorm:"type:uuid"`
	MaxDays      *decimal.Decimal `gorm:"type:decimal(6,2)"`

	StartsAt time.Time `gorm:"not null"`
	EndsAt   time.Time `gorm:"not null"`
	Active   bool      `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (ApprovalDelegation) TableName() string { return "approval_delegations" }

// Covers reports whether this delegation authorizes a decision for the
// given request attributes at the given instant.
func (d *ApprovalDelegation) Covers(leaveType string, departmentID *uuid.UUID, totalDays decimal.Decimal, at time.Time) bool {
	if !d.Active {
		return false
	}
	if at.Before(d.StartsAt) || at.After(d.EndsAt) {
		return false
	}
	if d.LeaveType != nil && *d.LeaveType != leaveType {
		return false
	}
	if d.DepartmentID != nil {
		if departmentID == nil || *d.DepartmentID != *departmentID {
			return false
		}
	}
	if d.MaxDays != nil && totalDays.GreaterThan(*d.MaxDays) {
		return false
	}
	return true
}
