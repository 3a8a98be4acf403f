package approval_test

import (
	"context"
	"testing"
	"time"

	"go-leave/internal/approval"
	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/directory"
	"go-leave/internal/entitlement"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type fakeDelegationRepo struct {
	createFn     func(ctx context.Context, d *approval.ApprovalDelegation) error
	findActiveFn func(ctx context.Context, delegatorID string, at time.Time) ([]approval.ApprovalDelegation, error)
	deactivateFn func(ctx context.Context, id string) error
}

func (f *fakeDelegationRepo) Create(ctx context.Context, d *approval.ApprovalDelegation) error {
	if f.createFn != nil {
		return f.createFn(ctx, d)
	}
	return nil
}

func (f *fakeDelegationRepo) FindActiveForDelegator(ctx context.Context, delegatorID string, at time.Time) ([]approval.ApprovalDelegation, error) {
	if f.findActiveFn != nil {
		return f.findActiveFn(ctx, delegatorID, at)
	}
	return nil, nil
}

func (f *fakeDelegationRepo) Deactivate(ctx context.Context, id string) error {
	if f.deactivateFn != nil {
		return f.deactivateFn(ctx, id)
	}
	return nil
}

func days(n int64) decimal.Decimal { return decimal.NewFromInt(n) }

func TestChainFor(t *testing.T) {
	m := approval.DefaultMatrix()

	t.Run("short annual needs supervisor only", func(t *testing.T) {
		levels := m.ChainFor(entitlement.TypeAnnual, days(2))
		assert.Equal(t, []approval.Level{approval.LevelSupervisor}, levels)
	})

	t.Run("mid annual adds department head", func(t *testing.T) {
		levels := m.ChainFor(entitlement.TypeAnnual, days(7))
		assert.Equal(t, []approval.Level{approval.LevelSupervisor, approval.LevelDepartmentHead}, levels)
	})

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		levels := m.ChainFor(entitlement.TypeAnnual, days(3))
		assert.Equal(t, []approval.Level{approval.LevelSupervisor}, levels)
	})

	t.Run("beyond highest tier falls back to longest chain", func(t *testing.T) {
		levels := m.ChainFor(entitlement.TypeAnnual, days(40))
		assert.Len(t, levels, 3)
		assert.Equal(t, approval.LevelHRManager, levels[2])
	})

	t.Run("unknown type defaults to supervisor", func(t *testing.T) {
		levels := m.ChainFor(entitlement.LeaveType("MYSTERY"), days(5))
		assert.Equal(t, []approval.Level{approval.LevelSupervisor}, levels)
	})
}

func reportingLine() (*directory.Snapshot, uuid.UUID, uuid.UUID, uuid.UUID) {
	supervisor := uuid.New()
	deptHead := uuid.New()
	hr := uuid.New()
	snap := &directory.Snapshot{
		ID:               uuid.New(),
		SupervisorID:     &supervisor,
		DepartmentHeadID: &deptHead,
		HRManagerID:      &hr,
	}
	return snap, supervisor, deptHead, hr
}

func TestBuildChain(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		snap, supervisor, deptHead, _ := reportingLine()
		requestID := uuid.New()

		chain, err := approval.BuildChain(requestID, []approval.Level{approval.LevelSupervisor, approval.LevelDepartmentHead}, snap)
		assert.NoError(t, err)
		assert.Len(t, chain, 2)
		assert.Equal(t, 1, chain[0].Sequence)
		assert.Equal(t, supervisor, chain[0].ApproverID)
		assert.Equal(t, 2, chain[1].Sequence)
		assert.Equal(t, deptHead, chain[1].ApproverID)
		for _, a := range chain {
			assert.Equal(t, requestID, a.RequestID)
			assert.Equal(t, approval.ApproverPending, a.Status)
		}
	})

	t.Run("negative missing reporting line", func(t *testing.T) {
		snap, _, _, _ := reportingLine()
		snap.DepartmentHeadID = nil

		_, err := approval.BuildChain(uuid.New(), []approval.Level{approval.LevelSupervisor, approval.LevelDepartmentHead}, snap)
		assert.ErrorIs(t, err, approvalerrors.ErrApproverNotConfigured)
	})
}

func threeLevelChain(supervisor, deptHead, hr uuid.UUID) []approval.Approver {
	requestID := uuid.New()
	return []approval.Approver{
		{ID: uuid.New(), RequestID: requestID, Sequence: 1, Level: string(approval.LevelSupervisor), ApproverID: supervisor, Status: approval.ApproverPending},
		{ID: uuid.New(), RequestID: requestID, Sequence: 2, Level: string(approval.LevelDepartmentHead), ApproverID: deptHead, Status: approval.ApproverPending},
		{ID: uuid.New(), RequestID: requestID, Sequence: 3, Level: string(approval.LevelHRManager), ApproverID: hr, Status: approval.ApproverPending},
	}
}

func TestProcessDecision(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	supervisor, deptHead, hr := uuid.New(), uuid.New(), uuid.New()
	scope := approval.Scope{LeaveType: string(entitlement.TypeAnnual), TotalDays: days(12)}

	newRouter := func(repo approval.DelegationRepository) approval.Router {
		return approval.NewRouter(approval.DefaultMatrix(), repo)
	}

	t.Run("approve advances to next level", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: supervisor, Action: approval.ActionApprove, Comment: "ok"}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainPending, out.State)
		assert.Equal(t, 1, out.CurrentLevel)
		assert.Equal(t, approval.ApproverApproved, chain[0].Status)
		assert.Equal(t, "ok", chain[0].Comment)
		assert.NotNil(t, chain[0].ActedAt)
	})

	t.Run("approve into HR level reports HR review", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		chain[0].Status = approval.ApproverApproved
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 1, approval.Decision{ActorID: deptHead, Action: approval.ActionApprove}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainPendingHRReview, out.State)
		assert.Equal(t, 2, out.CurrentLevel)
	})

	t.Run("final approval completes the chain", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		chain[0].Status = approval.ApproverApproved
		chain[1].Status = approval.ApproverApproved
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 2, approval.Decision{ActorID: hr, Action: approval.ActionApprove}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainApproved, out.State)
		assert.Equal(t, 3, out.CurrentLevel)
	})

	t.Run("reject skips the remaining levels", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: supervisor, Action: approval.ActionReject, Comment: "no cover"}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainRejected, out.State)
		assert.Equal(t, approval.ApproverRejected, chain[0].Status)
		assert.Equal(t, approval.ApproverSkipped, chain[1].Status)
		assert.Equal(t, approval.ApproverSkipped, chain[2].Status)
	})

	t.Run("return reopens the previous level", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		chain[0].Status = approval.ApproverApproved
		actedBy := supervisor
		chain[0].ActedBy = &actedBy
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 1, approval.Decision{ActorID: deptHead, Action: approval.ActionReturn, Comment: "check dates"}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainPending, out.State)
		assert.Equal(t, 0, out.CurrentLevel)
		assert.Equal(t, approval.ApproverPending, chain[0].Status)
		assert.Nil(t, chain[0].ActedBy)
	})

	t.Run("return at first level goes back to requester", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		out, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: supervisor, Action: approval.ActionReturn}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, approval.ChainReturnedToDraft, out.State)
		assert.Equal(t, approval.ApproverPending, chain[0].Status)
	})

	t.Run("negative wrong actor", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		_, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: deptHead, Action: approval.ActionApprove}, scope, now)
		assert.ErrorIs(t, err, approvalerrors.ErrNotAuthorizedApprover)
		assert.Equal(t, approval.ApproverPending, chain[0].Status)
	})

	t.Run("delegate may act in scope", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		delegate := uuid.New()
		repo := &fakeDelegationRepo{
			findActiveFn: func(ctx context.Context, delegatorID string, at time.Time) ([]approval.ApprovalDelegation, error) {
				assert.Equal(t, supervisor.String(), delegatorID)
				return []approval.ApprovalDelegation{{
					ID:          uuid.New(),
					DelegatorID: supervisor,
					DelegateID:  delegate,
					StartsAt:    now.Add(-24 * time.Hour),
					EndsAt:      now.Add(24 * time.Hour),
					Active:      true,
				}}, nil
			},
		}
		r := newRouter(repo)

		out, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: delegate, Action: approval.ActionApprove}, scope, now)
		assert.NoError(t, err)
		assert.Equal(t, 1, out.CurrentLevel)
		assert.Equal(t, delegate, *chain[0].ActedBy)
	})

	t.Run("negative delegation out of scope", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		delegate := uuid.New()
		maxDays := days(5)
		repo := &fakeDelegationRepo{
			findActiveFn: func(ctx context.Context, delegatorID string, at time.Time) ([]approval.ApprovalDelegation, error) {
				return []approval.ApprovalDelegation{{
					DelegatorID: supervisor,
					DelegateID:  delegate,
					MaxDays:     &maxDays,
					StartsAt:    now.Add(-24 * time.Hour),
					EndsAt:      now.Add(24 * time.Hour),
					Active:      true,
				}}, nil
			},
		}
		r := newRouter(repo)

		_, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: delegate, Action: approval.ActionApprove}, scope, now)
		assert.ErrorIs(t, err, approvalerrors.ErrNotAuthorizedApprover)
	})

	t.Run("negative exhausted chain", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		_, err := r.ProcessDecision(ctx, chain, 3, approval.Decision{ActorID: hr, Action: approval.ActionApprove}, scope, now)
		assert.ErrorIs(t, err, approvalerrors.ErrChainExhausted)
	})

	t.Run("negative unknown action", func(t *testing.T) {
		chain := threeLevelChain(supervisor, deptHead, hr)
		r := newRouter(&fakeDelegationRepo{})

		_, err := r.ProcessDecision(ctx, chain, 0, approval.Decision{ActorID: supervisor, Action: approval.Action("DEFER")}, scope, now)
		assert.ErrorIs(t, err, approvalerrors.ErrInvalidDecisionAction)
	})
}

func TestDelegationCovers(t *testing.T) {
	now := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	dept := uuid.New()
	leaveType := string(entitlement.TypeAnnual)
	maxDays := days(10)

	d := approval.ApprovalDelegation{
		DelegatorID:  uuid.New(),
		DelegateID:   uuid.New(),
		LeaveType:    &leaveType,
		DepartmentID: &dept,
		MaxDays:      &maxDays,
		StartsAt:     now.Add(-time.Hour),
		EndsAt:       now.Add(time.Hour),
		Active:       true,
	}

	assert.True(t, d.Covers(leaveType, &dept, days(10), now))
	assert.False(t, d.Covers(string(entitlement.TypeSick), &dept, days(5), now), "leave type restricted")
	assert.False(t, d.Covers(leaveType, nil, days(5), now), "department restricted")
	assert.False(t, d.Covers(leaveType, &dept, days(11), now), "over max days")
	assert.False(t, d.Covers(leaveType, &dept, days(5), now.Add(2*time.Hour)), "outside window")

	d.Active = false
	assert.False(t, d.Covers(leaveType, &dept, days(5), now), "inactive")
}
