package approval

import (
	"context"
	"database/sql"

	"gorm.io/gorm"
)

//go:generate mockgen -source=approval_repo.go -destination=mock/approval_repo_mock.go -package=mock
type ChainRepository interface {
	WithTx(tx *sql.Tx) ChainRepository
	CreateAll(ctx context.Context, approvers []Approver) error
	FindByRequest(ctx context.Context, requestID string) ([]Approver, error)
	SaveAll(ctx context.Context, approvers []Approver) error
}

type chainRepository struct {
	db     *sql.DB
	gormDB *gorm.DB
	tx     *sql.Tx
}

// NewChainRepository reads through gorm and writes through raw SQL so chain
// updates can share the request row's transaction.
func NewChainRepository(db *sql.DB, gormDB *gorm.DB) ChainRepository {
	return &chainRepository{db: db, gormDB: gormDB}
}

func (r *chainRepository) WithTx(tx *sql.Tx) ChainRepository {
	return &chainRepository{db: r.db, gormDB: r.gormDB, tx: tx}
}

func (r *chainRepository) CreateAll(ctx context.Context, approvers []Approver) error {
	query := `
INSERT INTO request_approvers (
	id, request_id, sequence, level, approver_id, status, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
`
	for i := range approvers {
		a := approvers[i]
		if _, err := r.execer().ExecContext(
			ctx, query,
			a.ID, a.RequestID, a.Sequence, a.Level, a.ApproverID, a.Status,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *chainRepository) FindByRequest(ctx context.Context, requestID string) ([]Approver, error) {
	var approvers []Approver
	err := r.gormDB.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("sequence asc").
		Find(&approvers).Error
	return approvers, err
}

func (r *chainRepository) SaveAll(ctx context.Context, approvers []Approver) error {
	query := `
UPDATE request_approvers SET
	status = $2,
	acted_by = $3,
	acted_at = $4,
	comment = $5,
	updated_at = NOW()
WHERE id = $1
`
	for i := range approvers {
		a := approvers[i]
		if _, err := r.execer().ExecContext(
			ctx, query,
			a.ID, a.Status, a.ActedBy, a.ActedAt, a.Comment,
		); err != nil {
			return err
		}
	}
	return nil
}

func (r *chainRepository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
