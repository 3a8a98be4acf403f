package balance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LeaveTypeBalance is the per (employee, leave year, leave type) ledger head.
// Version guards every mutation: writers update with WHERE version = ? and
// retry from a fresh read when the row moved underneath them.
type LeaveTypeBalance struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_balances_key"`
	LeaveYear  int       `gorm:"not null;uniqueIndex:idx_balances_key"`
	LeaveType  string    `gorm:"type:varchar(30);not null;uniqueIndex:idx_balances_key"`

	AnnualEntitlement   decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	ProratedEntitlement decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	AccruedToDate       decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	AccrualRate         decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	CarriedOver        decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	CarriedOverUsed    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	CarriedOverExpired decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	CarryOverExpiresAt *time.Time      `gorm:"type:date"`

	Taken        decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Pending      decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	AdvanceTaken decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Encashed     decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`
	Available    decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	Version   int `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (LeaveTypeBalance) TableName() string { return "leave_type_balances" }

// Recalculate rederives Available from the component fields. Expired
// carry-over counts as consumed carry-over for the identity.
func (b *LeaveTypeBalance) Recalculate() {
	b.Available = b.AccruedToDate.
		Add(b.CarriedOver).
		Sub(b.CarriedOverUsed).
		Sub(b.CarriedOverExpired).
		Sub(b.Taken).
		Sub(b.Pending).
		Sub(b.AdvanceTaken)
}

// InvariantHolds reports whether the stored Available matches the ledger
// identity. Mutations must leave this true.
func (b *LeaveTypeBalance) InvariantHolds() bool {
	want := b.AccruedToDate.
		Add(b.CarriedOver).
		Sub(b.CarriedOverUsed).
		Sub(b.CarriedOverExpired).
		Sub(b.Taken).
		Sub(b.Pending).
		Sub(b.AdvanceTaken)
	return b.Available.Equal(want)
}

// UnusedCarryOver is the carried balance still alive: not consumed, not expired.
func (b *LeaveTypeBalance) UnusedCarryOver() decimal.Decimal {
	u := b.CarriedOver.Sub(b.CarriedOverUsed).Sub(b.CarriedOverExpired)
	if u.IsNegative() {
		return decimal.Zero
	}
	return u
}

const (
	ChangeProvision       = "PROVISION"
	ChangeAccrual         = "ACCRUAL"
	ChangeConsumption     = "CONSUMPTION"
	ChangeAdjustment      = "ADJUSTMENT"
	ChangeCarryOver       = "CARRY_OVER"
	ChangeCarryOverExpiry = "CARRY_OVER_EXPIRY"
)

const (
	AdjustCredit             = "CREDIT"
	AdjustDebit              = "DEBIT"
	AdjustCorrection         = "CORRECTION"
	AdjustEncashment         = "ENCASHMENT"
	AdjustCompensatoryEarned = "COMPENSATORY_EARNED"
)

// BalanceHistoryEntry is the append-only journal row. Reference, when set,
// is unique and makes the owning operation replay-safe.
type BalanceHistoryEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	BalanceID  uuid.UUID `gorm:"type:uuid;not null;index"`
	EmployeeID uuid.UUID `gorm:"type:uuid;not null;index"`
	LeaveYear  int       `gorm:"not null"`
	LeaveType  string    `gorm:"type:varchar(30);not null"`

	ChangeType     string          `gorm:"type:varchar(30);not null"`
	AdjustmentType *string         `gorm:"type:varchar(30)"`
	Amount         decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	FromCarryOver  decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0"`

	BeforeAvailable decimal.Decimal `gorm:"type:decimal(6,2);not null"`
	AfterAvailable  decimal.Decimal `gorm:"type:decimal(6,2);not null"`

	Reference *string    `gorm:"type:varchar(120);uniqueIndex"`
	Reason    string     `gorm:"type:text"`
	ActorID   *uuid.UUID `gorm:"type:uuid"`

	CreatedAt time.Time
}

func (BalanceHistoryEntry) TableName() string { return "balance_history_entries" }
