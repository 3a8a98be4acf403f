package approval

import (
	"time"

	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/directory"

	"github.com/google/uuid"
)

const (
	ApproverPending  = "PENDING"
	ApproverApproved = "APPROVED"
	ApproverRejected = "REJECTED"
	ApproverSkipped  = "SKIPPED"
)

// Approver is one required level of a request's approval chain. The chain
// is fixed at creation time; only Status, ActedAt and Comment move.
type Approver struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index"`
	Sequence  int       `gorm:"not null"`
	Level     string    `gorm:"type:varchar(30);not null"`

	ApproverID uuid.UUID  `gorm:"type:uuid;not null"`
	Status     string     `gorm:"type:varchar(20);not null;default:'PENDING'"`
	ActedBy    *uuid.UUID `gorm:"type:uuid"`
	ActedAt    *time.Time
	Comment    string `gorm:"type:text"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Approver) TableName() string { return "request_approvers" }

// BuildChain resolves each required level against the requester's reporting
// line. A level with no configured person is a hard configuration error.
func BuildChain(requestID uuid.UUID, levels []Level, emp *directory.Snapshot) ([]Approver, error) {
	chain := make([]Approver, 0, len(levels))
	for i, level := range levels {
		var approverID *uuid.UUID
		switch level {
		case LevelSupervisor:
			approverID = emp.SupervisorID
		case LevelDepartmentHead:
			approverID = emp.DepartmentHeadID
		case LevelHRManager:
			approverID = emp.HRManagerID
		case LevelGeneralManager:
			approverID = emp.GeneralManagerID
		case LevelCEO:
			approverID = emp.CEOID
		default:
			return nil, approvalerrors.ErrApproverNotConfigured
		}
		if approverID == nil {
			return nil, approvalerrors.ErrApproverNotConfigured
		}

		chain = append(chain, Approver{
			ID:         uuid.New(),
			RequestID:  requestID,
			Sequence:   i + 1,
			Level:      string(level),
			ApproverID: *approverID,
			Status:     ApproverPending,
		})
	}
	return chain, nil
}
