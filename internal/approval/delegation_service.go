package approval

import (
	"context"
	"errors"
	"time"

	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/shared/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:generate mockgen -source=delegation_service.go -destination=mock/delegation_service_mock.go -package=mock
type DelegationService interface {
	Grant(ctx context.Context, d *ApprovalDelegation) error
	Revoke(ctx context.Context, id string, actorID uuid.UUID) error
	ListActive(ctx context.Context, delegatorID string, at time.Time) ([]ApprovalDelegation, error)
}

type delegationService struct {
	repo   DelegationRepository
	logger *zap.Logger
}

func NewDelegationService(repo DelegationRepository, logger ...*zap.Logger) DelegationService {
	l := zap.L().Named("approval.delegation.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.delegation.service")
	}
	return &delegationService{repo: repo, logger: l}
}

func (s *delegationService) Grant(ctx context.Context, d *ApprovalDelegation) error {
	if d.DelegatorID == d.DelegateID {
		return apperror.New(apperror.CodeInvalidInput, "cannot delegate approvals to yourself", 400)
	}
	if !d.EndsAt.After(d.StartsAt) {
		return apperror.New(apperror.CodeInvalidInput, "delegation window must end after it starts", 400)
	}
	if d.MaxDays != nil && d.MaxDays.LessThanOrEqual(decimal.Zero) {
		return apperror.New(apperror.CodeInvalidInput, "max_days must be positive", 400)
	}
	d.Active = true
	if err := s.repo.Create(ctx, d); err != nil {
		return err
	}
	s.logger.Info("delegation granted",
		zap.String("delegation_id", d.ID.String()),
		zap.String("delegator_id", d.DelegatorID.String()),
		zap.String("delegate_id", d.DelegateID.String()),
	)
	return nil
}

func (s *delegationService) Revoke(ctx context.Context, id string, actorID uuid.UUID) error {
	if err := s.repo.Deactivate(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return approvalerrors.ErrDelegationNotFound
		}
		return err
	}
	s.logger.Info("delegation revoked",
		zap.String("delegation_id", id),
		zap.String("actor_id", actorID.String()),
	)
	return nil
}

func (s *delegationService) ListActive(ctx context.Context, delegatorID string, at time.Time) ([]ApprovalDelegation, error) {
	return s.repo.FindActiveForDelegator(ctx, delegatorID, at)
}
