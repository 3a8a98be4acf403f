package approval

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=delegation_repo.go -destination=mock/delegation_repo_mock.go -package=mock
type DelegationRepository interface {
	Create(ctx context.Context, d *ApprovalDelegation) error
	FindActiveForDelegator(ctx context.Context, delegatorID string, at time.Time) ([]ApprovalDelegation, error)
	Deactivate(ctx context.Context, id string) error
}

type delegationRepository struct {
	db *gorm.DB
}

func NewDelegationRepository(db *gorm.DB) DelegationRepository {
	return &delegationRepository{db: db}
}

func (r *delegationRepository) Create(ctx context.Context, d *ApprovalDelegation) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *delegationRepository) FindActiveForDelegator(ctx context.Context, delegatorID string, at time.Time) ([]ApprovalDelegation, error) {
	var delegations []ApprovalDelegation
	err := r.db.WithContext(ctx).
		Where("delegator_id = ?", delegatorID).
		Where("active = true").
		Where("starts_at <= ?", at).
		Where("ends_at >= ?", at).
		Find(&delegations).Error
	return delegations, err
}

func (r *delegationRepository) Deactivate(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).
		Model(&ApprovalDelegation{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
