package request

import (
	"context"
	"database/sql"
	"time"

	requesterrors "go-leave/internal/request/errors"

	"gorm.io/gorm"
)

//go:generate mockgen -source=request_repo.go -destination=mock/request_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, req *LeaveRequest, days []RequestDay) error
	FindByID(ctx context.Context, id string) (*LeaveRequest, error)
	FindDays(ctx context.Context, requestID string) ([]RequestDay, error)
	FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]LeaveRequest, error)
	ListByEmployee(ctx context.Context, employeeID string, page, perPage int) ([]LeaveRequest, int64, error)
	UpdateVersioned(ctx context.Context, req *LeaveRequest) error
	AppendStatusHistory(ctx context.Context, h *StatusHistory) error
	StatusHistoryFor(ctx context.Context, requestID string) ([]StatusHistory, error)
}

type repository struct {
	db     *sql.DB
	gormDB *gorm.DB
	tx     *sql.Tx
}

// NewRepository reads through gorm; the versioned status write and the
// append-only inserts go through raw SQL so they can share one transaction
// with the approval chain and the outbox.
func NewRepository(db *sql.DB, gormDB *gorm.DB) Repository {
	return &repository{db: db, gormDB: gormDB}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, gormDB: r.gormDB, tx: tx}
}

func (r *repository) Create(ctx context.Context, req *LeaveRequest, days []RequestDay) error {
	insertRequest := `
INSERT INTO leave_requests (
	id, employee_id, subsidiary_id, department_id, leave_type,
	start_date, end_date, total_days, priority, status,
	reason, emergency_contact, duties_delegate_id,
	current_level, version, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
`
	if _, err := r.execer().ExecContext(
		ctx, insertRequest,
		req.ID, req.EmployeeID, req.SubsidiaryID, req.DepartmentID, req.LeaveType,
		req.StartDate, req.EndDate, req.TotalDays, req.Priority, req.Status,
		req.Reason, req.EmergencyContact, req.DutiesDelegateID,
		req.CurrentLevel, req.Version,
	); err != nil {
		return err
	}

	insertDay := `
INSERT INTO leave_request_days (
	id, request_id, date, value, weekend, holiday, half_day
) VALUES ($1, $2, $3, $4, $5, $6, $7)
`
	for i := range days {
		d := days[i]
		if _, err := r.execer().ExecContext(
			ctx, insertDay,
			d.ID, d.RequestID, d.Date, d.Value, d.Weekend, d.Holiday, d.HalfDay,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*LeaveRequest, error) {
	var req LeaveRequest
	err := r.gormDB.WithContext(ctx).Where("id = ?", id).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *repository) FindDays(ctx context.Context, requestID string) ([]RequestDay, error) {
	var days []RequestDay
	err := r.gormDB.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("date asc").
		Find(&days).Error
	return days, err
}

// FindOverlapping returns the employee's non-terminal requests touching the
// range. Terminal requests never block a new application.
func (r *repository) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]LeaveRequest, error) {
	q := r.gormDB.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Where("status NOT IN ?", []string{
			string(StatusRejected), string(StatusCancelled), string(StatusWithdrawn),
		}).
		Where("start_date <= ?", end).
		Where("end_date >= ?", start)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var requests []LeaveRequest
	err := q.Find(&requests).Error
	return requests, err
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID string, page, perPage int) ([]LeaveRequest, int64, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	base := r.gormDB.WithContext(ctx).
		Model(&LeaveRequest{}).
		Where("employee_id = ?", employeeID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var requests []LeaveRequest
	err := base.
		Order("created_at desc").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&requests).Error
	return requests, total, err
}

// UpdateVersioned writes the mutable request fields guarded by the version
// read. Zero rows affected means a concurrent writer won.
func (r *repository) UpdateVersioned(ctx context.Context, req *LeaveRequest) error {
	query := `
UPDATE leave_requests SET
	status = $2,
	current_level = $3,
	version = version + 1,
	updated_at = NOW()
WHERE id = $1 AND version = $4
`
	res, err := r.execer().ExecContext(ctx, query, req.ID, req.Status, req.CurrentLevel, req.Version)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return requesterrors.ErrVersionConflict
	}
	req.Version++
	return nil
}

func (r *repository) AppendStatusHistory(ctx context.Context, h *StatusHistory) error {
	query := `
INSERT INTO leave_request_status_history (
	id, request_id, from_status, to_status, actor_id, reason, created_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		h.ID, h.RequestID, h.FromStatus, h.ToStatus, h.ActorID, h.Reason,
	)
	return err
}

func (r *repository) StatusHistoryFor(ctx context.Context, requestID string) ([]StatusHistory, error) {
	var entries []StatusHistory
	err := r.gormDB.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at asc").
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
