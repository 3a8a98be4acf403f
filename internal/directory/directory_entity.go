package directory

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	GenderMale   = "MALE"
	GenderFemale = "FEMALE"

	EmploymentPermanent = "PERMANENT"
	EmploymentContract  = "CONTRACT"
	EmploymentProbation = "PROBATION"
)

type Employee struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	SubsidiaryID uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	FullName     string     `gorm:"type:varchar(150);not null"`
	Email        string     `gorm:"uniqueIndex"`

	Gender         string    `gorm:"type:varchar(10);not null"`
	JoinDate       time.Time `gorm:"type:date;not null"`
	EmploymentType string    `gorm:"type:varchar(20);not null;default:'PERMANENT'"`

	SupervisorID     *uuid.UUID `gorm:"type:uuid"`
	DepartmentHeadID *uuid.UUID `gorm:"type:uuid"`
	HRManagerID      *uuid.UUID `gorm:"type:uuid"`
	GeneralManagerID *uuid.UUID `gorm:"type:uuid"`
	CEOID            *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

// Snapshot is the read model the engine consumes. Approver ids are kept as
// a level-indexed lookup so the approval chain can resolve "who approves at
// level X" without touching the employee row again.
type Snapshot struct {
	ID               uuid.UUID
	SubsidiaryID     uuid.UUID
	DepartmentID     *uuid.UUID
	FullName         string
	Gender           string
	JoinDate         time.Time
	EmploymentType   string
	SupervisorID     *uuid.UUID
	DepartmentHeadID *uuid.UUID
	HRManagerID      *uuid.UUID
	GeneralManagerID *uuid.UUID
	CEOID            *uuid.UUID
}
