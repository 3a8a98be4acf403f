package calendar

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TeamCalendarEntry is derived data: one row per working day of a pending or
// approved request. Rows are regenerated from the owning request, never
// edited in place.
type TeamCalendarEntry struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	RequestID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	EmployeeID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	DepartmentID *uuid.UUID `gorm:"type:uuid;index"`
	SubsidiaryID uuid.UUID  `gorm:"type:uuid;not null"`

	Date      time.Time       `gorm:"type:date;not null;index"`
	DayValue  decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	LeaveType string          `gorm:"type:varchar(30);not null"`
	Status    string          `gorm:"type:varchar(30);not null"`

	CreatedAt time.Time
}

func (TeamCalendarEntry) TableName() string { return "team_calendar_entries" }
