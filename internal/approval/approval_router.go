package approval

import (
	"context"
	"time"

	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/entitlement"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type Action string

const (
	ActionApprove Action = "APPROVE"
	ActionReject  Action = "REJECT"
	ActionReturn  Action = "RETURN"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionReturn:
		return true
	}
	return false
}

// ChainState is the router's verdict on where the request goes next. The
// workflow maps it onto the request status machine.
type ChainState string

const (
	ChainPending         ChainState = "PENDING_APPROVAL"
	ChainPendingHRReview ChainState = "PENDING_HR_REVIEW"
	ChainApproved        ChainState = "APPROVED"
	ChainRejected        ChainState = "REJECTED"
	ChainReturnedToDraft ChainState = "RETURNED_TO_DRAFT"
)

type Decision struct {
	ActorID uuid.UUID
	Action  Action
	Comment string
}

// Scope carries the request attributes a delegation may be restricted by.
type Scope struct {
	LeaveType    string
	DepartmentID *uuid.UUID
	TotalDays    decimal.Decimal
}

type Outcome struct {
	State        ChainState
	CurrentLevel int
}

//go:generate mockgen -source=approval_router.go -destination=mock/approval_router_mock.go -package=mock
type Router interface {
	ChainFor(leaveType entitlement.LeaveType, totalDays decimal.Decimal) []Level
	ProcessDecision(ctx context.Context, approvers []Approver, currentLevel int, d Decision, scope Scope, now time.Time) (Outcome, error)
}

type router struct {
	matrix      *Matrix
	delegations DelegationRepository
	logger      *zap.Logger
}

func NewRouter(matrix *Matrix, delegations DelegationRepository, logger ...*zap.Logger) Router {
	l := zap.L().Named("approval.router")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("approval.router")
	}
	return &router{matrix: matrix, delegations: delegations, logger: l}
}

func (r *router) ChainFor(leaveType entitlement.LeaveType, totalDays decimal.Decimal) []Level {
	return r.matrix.ChainFor(leaveType, totalDays)
}

// ProcessDecision applies one decision to the chain in place and reports
// where the request moves. Persistence stays with the caller so the chain
// and the request row commit under one version guard.
func (r *router) ProcessDecision(ctx context.Context, approvers []Approver, currentLevel int, d Decision, scope Scope, now time.Time) (Outcome, error) {
	if !d.Action.Valid() {
		return Outcome{}, approvalerrors.ErrInvalidDecisionAction
	}
	if currentLevel < 0 || currentLevel >= len(approvers) {
		return Outcome{}, approvalerrors.ErrChainExhausted
	}

	current := &approvers[currentLevel]
	if current.Status != ApproverPending {
		return Outcome{}, approvalerrors.ErrChainExhausted
	}

	if err := r.authorize(ctx, current, d.ActorID, scope, now); err != nil {
		return Outcome{}, err
	}

	actor := d.ActorID
	switch d.Action {
	case ActionApprove:
		current.Status = ApproverApproved
		current.ActedBy = &actor
		current.ActedAt = &now
		current.Comment = d.Comment

		if currentLevel == len(approvers)-1 {
			return Outcome{State: ChainApproved, CurrentLevel: currentLevel + 1}, nil
		}
		next := currentLevel + 1
		state := ChainPending
		if approvers[next].Level == string(LevelHRManager) {
			state = ChainPendingHRReview
		}
		return Outcome{State: state, CurrentLevel: next}, nil

	case ActionReject:
		current.Status = ApproverRejected
		current.ActedBy = &actor
		current.ActedAt = &now
		current.Comment = d.Comment
		// Freeze the rest of the chain.
		for i := currentLevel + 1; i < len(approvers); i++ {
			if approvers[i].Status == ApproverPending {
				approvers[i].Status = ApproverSkipped
			}
		}
		return Outcome{State: ChainRejected, CurrentLevel: currentLevel}, nil

	case ActionReturn:
		if currentLevel == 0 {
			// Returned by the first approver: back to the requester.
			current.Comment = d.Comment
			return Outcome{State: ChainReturnedToDraft, CurrentLevel: 0}, nil
		}
		// Reopen the previous level. The original behavior here moved the
		// pointer back two positions; that skips an approver entirely, so
		// the chain steps back exactly one level instead.
		prev := &approvers[currentLevel-1]
		prev.Status = ApproverPending
		prev.ActedBy = nil
		prev.ActedAt = nil
		current.Comment = d.Comment

		state := ChainPending
		if prev.Level == string(LevelHRManager) {
			state = ChainPendingHRReview
		}
		return Outcome{State: state, CurrentLevel: currentLevel - 1}, nil
	}

	return Outcome{}, approvalerrors.ErrInvalidDecisionAction
}

func (r *router) authorize(ctx context.Context, current *Approver, actorID uuid.UUID, scope Scope, now time.Time) error {
	if current.ApproverID == actorID {
		return nil
	}

	delegations, err := r.delegations.FindActiveForDelegator(ctx, current.ApproverID.String(), now)
	if err != nil {
		return err
	}
	for _, dg := range delegations {
		if dg.DelegateID == actorID && dg.Covers(scope.LeaveType, scope.DepartmentID, scope.TotalDays, now) {
			r.logger.Info("decision authorized via delegation",
				zap.String("delegator_id", current.ApproverID.String()),
				zap.String("delegate_id", actorID.String()),
				zap.String("delegation_id", dg.ID.String()),
			)
			return nil
		}
	}
	return approvalerrors.ErrNotAuthorizedApprover
}
