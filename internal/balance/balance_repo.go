package balance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	balanceerrors "go-leave/internal/balance/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const pgUniqueViolation = "23505"

//go:generate mockgen -source=balance_repo.go -destination=mock/balance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, b *LeaveTypeBalance) error
	FindByKey(ctx context.Context, employeeID string, leaveYear int, leaveType string) (*LeaveTypeBalance, error)
	FindByEmployeeYear(ctx context.Context, employeeID string, leaveYear int) ([]LeaveTypeBalance, error)
	ListByYear(ctx context.Context, leaveYear int) ([]LeaveTypeBalance, error)
	ListExpirableCarryOver(ctx context.Context, asOf time.Time) ([]LeaveTypeBalance, error)
	UpdateVersioned(ctx context.Context, b *LeaveTypeBalance) error
	AppendHistory(ctx context.Context, e *BalanceHistoryEntry) error
	HistoryReferenceExists(ctx context.Context, reference string) (bool, error)
	HistoryForBalance(ctx context.Context, balanceID string) ([]BalanceHistoryEntry, error)
}

type repository struct {
	db     *sql.DB
	gormDB *gorm.DB
	tx     *sql.Tx
}

// NewRepository reads through gorm and writes the versioned update / history
// append through raw SQL so both can share the caller's transaction.
func NewRepository(db *sql.DB, gormDB *gorm.DB) Repository {
	return &repository{db: db, gormDB: gormDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, gormDB: r.gormDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, b *LeaveTypeBalance) error {
	err := r.gormDB.WithContext(ctx).Create(b).Error
	if isUniqueViolation(err) {
		return balanceerrors.ErrBalanceExists
	}
	return err
}

func (r *repository) FindByKey(ctx context.Context, employeeID string, leaveYear int, leaveType string) (*LeaveTypeBalance, error) {
	var b LeaveTypeBalance
	err := r.gormDB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_year = ?", leaveYear).
		Where("leave_type = ?", leaveType).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repository) FindByEmployeeYear(ctx context.Context, employeeID string, leaveYear int) ([]LeaveTypeBalance, error) {
	var balances []LeaveTypeBalance
	err := r.gormDB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("leave_year = ?", leaveYear).
		Order("leave_type ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) ListByYear(ctx context.Context, leaveYear int) ([]LeaveTypeBalance, error) {
	var balances []LeaveTypeBalance
	err := r.gormDB.WithContext(ctx).
		Where("leave_year = ?", leaveYear).
		Order("employee_id ASC").
		Find(&balances).Error
	return balances, err
}

func (r *repository) ListExpirableCarryOver(ctx context.Context, asOf time.Time) ([]LeaveTypeBalance, error) {
	var balances []LeaveTypeBalance
	err := r.gormDB.WithContext(ctx).
		Where("carry_over_expires_at IS NOT NULL").
		Where("carry_over_expires_at < ?", asOf).
		Where("carried_over - carried_over_used - carried_over_expired > 0").
		Find(&balances).Error
	return balances, err
}

// UpdateVersioned writes the full recomputed record guarded by the version
// read. Zero rows affected means a concurrent writer won the race.
func (r *repository) UpdateVersioned(ctx context.Context, b *LeaveTypeBalance) error {
	query := `
UPDATE leave_type_balances SET
	prorated_entitlement = $2,
	accrued_to_date = $3,
	accrual_rate = $4,
	carried_over = $5,
	carried_over_used = $6,
	carried_over_expired = $7,
	carry_over_expires_at = $8,
	taken = $9,
	pending = $10,
	advance_taken = $11,
	encashed = $12,
	available = $13,
	version = version + 1,
	updated_at = NOW()
WHERE id = $1 AND version = $14
`
	res, err := r.execer().ExecContext(
		ctx, query,
		b.ID,
		b.ProratedEntitlement,
		b.AccruedToDate,
		b.AccrualRate,
		b.CarriedOver,
		b.CarriedOverUsed,
		b.CarriedOverExpired,
		b.CarryOverExpiresAt,
		b.Taken,
		b.Pending,
		b.AdvanceTaken,
		b.Encashed,
		b.Available,
		b.Version,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return balanceerrors.ErrVersionConflict
	}
	b.Version++
	return nil
}

func (r *repository) AppendHistory(ctx context.Context, e *BalanceHistoryEntry) error {
	query := `
INSERT INTO balance_history_entries (
	id, balance_id, employee_id, leave_year, leave_type,
	change_type, adjustment_type, amount, from_carry_over,
	before_available, after_available, reference, reason, actor_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		e.ID, e.BalanceID, e.EmployeeID, e.LeaveYear, e.LeaveType,
		e.ChangeType, e.AdjustmentType, e.Amount, e.FromCarryOver,
		e.BeforeAvailable, e.AfterAvailable, e.Reference, e.Reason, e.ActorID,
	)
	if isUniqueViolation(err) {
		return balanceerrors.ErrDuplicateReference
	}
	return err
}

func (r *repository) HistoryReferenceExists(ctx context.Context, reference string) (bool, error) {
	var count int64
	err := r.gormDB.WithContext(ctx).
		Model(&BalanceHistoryEntry{}).
		Where("reference = ?", reference).
		Count(&count).Error
	return count > 0, err
}

func (r *repository) HistoryForBalance(ctx context.Context, balanceID string) ([]BalanceHistoryEntry, error) {
	var entries []BalanceHistoryEntry
	err := r.gormDB.WithContext(ctx).
		Where("balance_id = ?", balanceID).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
