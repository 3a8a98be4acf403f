package holiday

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublicHoliday struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SubsidiaryID uuid.UUID `gorm:"type:uuid;not null;index:idx_holidays_subsidiary_date"`
	Date         time.Time `gorm:"type:date;not null;index:idx_holidays_subsidiary_date"`
	Name         string    `gorm:"type:varchar(150);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
