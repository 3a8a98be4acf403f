package balance

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/entitlement"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxMutationAttempts bounds optimistic-lock retries before the conflict is
// surfaced to the caller.
const maxMutationAttempts = 3

//go:generate mockgen -source=balance_service.go -destination=mock/balance_service_mock.go -package=mock
type Service interface {
	Provision(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, joinDate time.Time) (BalanceResponse, error)
	CheckSufficient(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) (bool, decimal.Decimal, error)
	Reserve(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error
	Release(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error
	ConfirmTaken(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal, reference string, actorID *uuid.UUID) error
	Adjust(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, req AdjustBalanceRequest, actorID string) (BalanceResponse, error)
	CarryOver(ctx context.Context, employeeID string, fromYear, toYear int, leaveType entitlement.LeaveType) error
	RunMonthlyAccrual(ctx context.Context, leaveYear int, month time.Month) (int, error)
	RunCarryOver(ctx context.Context, fromYear, toYear int) (int, error)
	RunCarryOverExpiry(ctx context.Context, asOf time.Time) (int, error)
	Summary(ctx context.Context, employeeID string, leaveYear int) ([]BalanceResponse, error)
	History(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType) ([]HistoryResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	catalog *entitlement.Catalog
	outbox  kafka.OutboxRepository
	logger  *zap.Logger
}

// NewService stages one balance event per journal entry through the outbox;
// a nil outbox keeps the ledger local.
func NewService(db *sql.DB, repo Repository, catalog *entitlement.Catalog, outbox kafka.OutboxRepository, logger ...*zap.Logger) Service {
	l := zap.L().Named("balance.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("balance.service")
	}
	return &service{db: db, repo: repo, catalog: catalog, outbox: outbox, logger: l}
}

// mutationFn computes the next state of b in place. It returns an optional
// history entry and whether the record actually changed. Before/after
// availability on the entry is filled in by the mutation driver.
type mutationFn func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error)

func (s *service) mutate(ctx context.Context, employeeID string, leaveYear int, leaveType string, fn mutationFn) (*LeaveTypeBalance, error) {
	var lastErr error
	for attempt := 1; attempt <= maxMutationAttempts; attempt++ {
		b, err := s.applyOnce(ctx, employeeID, leaveYear, leaveType, fn)
		if err == nil {
			return b, nil
		}
		if errors.Is(err, balanceerrors.ErrVersionConflict) {
			s.logger.Warn("balance mutation lost version race, retrying",
				zap.String("employee_id", employeeID),
				zap.Int("leave_year", leaveYear),
				zap.String("leave_type", leaveType),
				zap.Int("attempt", attempt),
			)
			lastErr = err
			continue
		}
		return nil, err
	}
	return nil, lastErr
}

// applyOnce runs a single read-compute-write pass inside one transaction.
// The version guard on the write serializes concurrent mutators.
func (s *service) applyOnce(ctx context.Context, employeeID string, leaveYear int, leaveType string, fn mutationFn) (*LeaveTypeBalance, error) {
	b, err := s.repo.FindByKey(ctx, employeeID, leaveYear, leaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrBalanceNotFound
		}
		return nil, err
	}

	before := b.Available
	entry, mutated, err := fn(b)
	if err != nil {
		return nil, err
	}
	if !mutated {
		return b, nil
	}
	b.Recalculate()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	qtx := s.repo.WithTx(tx)

	if err := qtx.UpdateVersioned(ctx, b); err != nil {
		return nil, err
	}
	if entry != nil {
		entry.ID = uuid.New()
		entry.BalanceID = b.ID
		entry.EmployeeID = b.EmployeeID
		entry.LeaveYear = b.LeaveYear
		entry.LeaveType = b.LeaveType
		entry.BeforeAvailable = before
		entry.AfterAvailable = b.Available
		if err := qtx.AppendHistory(ctx, entry); err != nil {
			return nil, err
		}
		if s.outbox != nil {
			if err := s.stageBalanceEvent(ctx, tx, b, entry); err != nil {
				return nil, err
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

func balanceEventType(changeType string) string {
	switch changeType {
	case ChangeConsumption:
		return events.LeaveBalanceConsumed
	case ChangeAccrual, ChangeCarryOver:
		return events.LeaveBalanceAccrued
	default:
		return events.LeaveBalanceAdjusted
	}
}

func (s *service) stageBalanceEvent(ctx context.Context, tx *sql.Tx, b *LeaveTypeBalance, entry *BalanceHistoryEntry) error {
	reference := ""
	if entry.Reference != nil {
		reference = *entry.Reference
	}
	payload, err := json.Marshal(events.LeaveBalanceEvent{
		EventType:  balanceEventType(entry.ChangeType),
		BalanceID:  b.ID.String(),
		EmployeeID: b.EmployeeID.String(),
		LeaveYear:  b.LeaveYear,
		LeaveType:  b.LeaveType,
		Amount:     entry.Amount.String(),
		Available:  b.Available.String(),
		Reference:  reference,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_balance",
		AggregateID:   b.ID.String(),
		EventType:     balanceEventType(entry.ChangeType),
		Topic:         events.LeaveBalanceTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

func (s *service) Provision(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, joinDate time.Time) (BalanceResponse, error) {
	rule, ok := s.catalog.RuleFor(leaveType)
	if !ok {
		return BalanceResponse{}, balanceerrors.ErrInvalidAdjustmentType
	}
	empUUID, err := uuid.Parse(employeeID)
	if err != nil {
		return BalanceResponse{}, balanceerrors.ErrInvalidEmployeeID
	}

	prorated := ProratedEntitlement(rule.DaysPerYear, joinDate, leaveYear)
	b := &LeaveTypeBalance{
		ID:                  uuid.New(),
		EmployeeID:          empUUID,
		LeaveYear:           leaveYear,
		LeaveType:           string(leaveType),
		AnnualEntitlement:   rule.DaysPerYear,
		ProratedEntitlement: prorated,
		AccrualRate:         rule.AccrualRate,
	}
	// Upfront types grant the full prorated entitlement on day one; monthly
	// types start at zero and earn it through the accrual job.
	if rule.AccrualMethod == entitlement.AccrualUpfront {
		b.AccruedToDate = prorated
	}
	b.Recalculate()

	if err := s.repo.Create(ctx, b); err != nil {
		if errors.Is(err, balanceerrors.ErrBalanceExists) {
			existing, ferr := s.repo.FindByKey(ctx, employeeID, leaveYear, string(leaveType))
			if ferr != nil {
				return BalanceResponse{}, ferr
			}
			return mapToBalanceResponse(*existing), nil
		}
		s.logger.Error("provision balance failed",
			zap.String("employee_id", employeeID),
			zap.String("leave_type", string(leaveType)),
			zap.Error(err),
		)
		return BalanceResponse{}, err
	}

	s.logger.Info("balance provisioned",
		zap.String("employee_id", employeeID),
		zap.Int("leave_year", leaveYear),
		zap.String("leave_type", string(leaveType)),
		zap.String("prorated", prorated.String()),
	)
	return mapToBalanceResponse(*b), nil
}

func (s *service) CheckSufficient(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) (bool, decimal.Decimal, error) {
	b, err := s.repo.FindByKey(ctx, employeeID, leaveYear, string(leaveType))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, decimal.Zero, balanceerrors.ErrBalanceNotFound
		}
		return false, decimal.Zero, err
	}
	return b.Available.GreaterThanOrEqual(days), b.Available, nil
}

func (s *service) Reserve(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error {
	if !days.IsPositive() {
		return balanceerrors.ErrInvalidAmount
	}
	_, err := s.mutate(ctx, employeeID, leaveYear, string(leaveType), func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		if b.Available.LessThan(days) {
			return nil, false, balanceerrors.ErrInsufficientBalance
		}
		b.Pending = b.Pending.Add(days)
		return nil, true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Debug("balance reserved",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.String("days", days.String()),
	)
	return nil
}

// Release reverses a reservation. Pending is clamped at zero so a replayed
// release is a no-op rather than a corruption.
func (s *service) Release(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error {
	if !days.IsPositive() {
		return balanceerrors.ErrInvalidAmount
	}
	_, err := s.mutate(ctx, employeeID, leaveYear, string(leaveType), func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		if b.Pending.IsZero() {
			return nil, false, nil
		}
		b.Pending = b.Pending.Sub(days)
		if b.Pending.IsNegative() {
			b.Pending = decimal.Zero
		}
		return nil, true, nil
	})
	return err
}

// ConfirmTaken moves days from pending to taken on final approval, drawing
// down live carry-over before current-year accrual. The reference makes a
// redelivered approval a no-op.
func (s *service) ConfirmTaken(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal, reference string, actorID *uuid.UUID) error {
	if !days.IsPositive() {
		return balanceerrors.ErrInvalidAmount
	}
	if reference != "" {
		exists, err := s.repo.HistoryReferenceExists(ctx, reference)
		if err != nil {
			return err
		}
		if exists {
			s.logger.Debug("consumption already recorded, skipping",
				zap.String("reference", reference))
			return nil
		}
	}

	_, err := s.mutate(ctx, employeeID, leaveYear, string(leaveType), func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		fromCarry := decimal.Min(b.UnusedCarryOver(), days)
		b.CarriedOverUsed = b.CarriedOverUsed.Add(fromCarry)
		b.Taken = b.Taken.Add(days)
		b.Pending = b.Pending.Sub(days)
		if b.Pending.IsNegative() {
			b.Pending = decimal.Zero
		}

		entry := &BalanceHistoryEntry{
			ChangeType:    ChangeConsumption,
			Amount:        days.Neg(),
			FromCarryOver: fromCarry,
			ActorID:       actorID,
		}
		if reference != "" {
			ref := reference
			entry.Reference = &ref
		}
		return entry, true, nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("balance consumption confirmed",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.String("days", days.String()),
		zap.String("reference", reference),
	)
	return nil
}

func (s *service) Adjust(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, req AdjustBalanceRequest, actorID string) (BalanceResponse, error) {
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil || !amount.IsPositive() {
		return BalanceResponse{}, balanceerrors.ErrInvalidAmount
	}
	var actor *uuid.UUID
	if parsed, err := uuid.Parse(actorID); err == nil {
		actor = &parsed
	}

	b, err := s.mutate(ctx, employeeID, leaveYear, string(leaveType), func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		signed := amount
		switch req.AdjustmentType {
		case AdjustCredit, AdjustCompensatoryEarned:
			b.AccruedToDate = b.AccruedToDate.Add(amount)
		case AdjustDebit:
			b.AccruedToDate = b.AccruedToDate.Sub(amount)
			signed = amount.Neg()
		case AdjustEncashment:
			b.AccruedToDate = b.AccruedToDate.Sub(amount)
			b.Encashed = b.Encashed.Add(amount)
			signed = amount.Neg()
		case AdjustCorrection:
			// Reverses prior consumption, e.g. an approved leave cancelled
			// after its days were confirmed taken.
			b.Taken = b.Taken.Sub(amount)
			if b.Taken.IsNegative() {
				b.Taken = decimal.Zero
			}
		default:
			return nil, false, balanceerrors.ErrInvalidAdjustmentType
		}

		adjType := req.AdjustmentType
		entry := &BalanceHistoryEntry{
			ChangeType:     ChangeAdjustment,
			AdjustmentType: &adjType,
			Amount:         signed,
			Reason:         req.Reason,
			ActorID:        actor,
		}
		if req.Reference != "" {
			ref := req.Reference
			entry.Reference = &ref
		}
		return entry, true, nil
	})
	if err != nil {
		return BalanceResponse{}, err
	}

	s.logger.Info("balance adjusted",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.String("adjustment_type", req.AdjustmentType),
		zap.String("amount", amount.String()),
	)
	return mapToBalanceResponse(*b), nil
}

// accrueMonthly adds at most the monthly rate, capped so accrued never
// exceeds the prorated entitlement. History is written only for a strictly
// positive increment, keyed so a re-run of the job cannot double-accrue.
func (s *service) accrueMonthly(ctx context.Context, b LeaveTypeBalance, leaveYear int, month time.Month) (bool, error) {
	reference := fmt.Sprintf("ACCRUAL:%s:%s:%d-%02d", b.EmployeeID, b.LeaveType, leaveYear, int(month))
	exists, err := s.repo.HistoryReferenceExists(ctx, reference)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	accrued := false
	_, err = s.mutate(ctx, b.EmployeeID.String(), leaveYear, b.LeaveType, func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		headroom := b.ProratedEntitlement.Sub(b.AccruedToDate)
		increment := decimal.Min(b.AccrualRate, headroom)
		if !increment.IsPositive() {
			return nil, false, nil
		}
		b.AccruedToDate = b.AccruedToDate.Add(increment)
		accrued = true
		ref := reference
		return &BalanceHistoryEntry{
			ChangeType: ChangeAccrual,
			Amount:     increment,
			Reference:  &ref,
			Reason:     fmt.Sprintf("monthly accrual %d-%02d", leaveYear, int(month)),
		}, true, nil
	})
	return accrued, err
}

func (s *service) RunMonthlyAccrual(ctx context.Context, leaveYear int, month time.Month) (int, error) {
	balances, err := s.repo.ListByYear(ctx, leaveYear)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, b := range balances {
		rule, ok := s.catalog.RuleFor(entitlement.LeaveType(b.LeaveType))
		if !ok || rule.AccrualMethod != entitlement.AccrualMonthly {
			continue
		}
		accrued, err := s.accrueMonthly(ctx, b, leaveYear, month)
		if err != nil {
			s.logger.Error("monthly accrual failed",
				zap.String("employee_id", b.EmployeeID.String()),
				zap.String("leave_type", b.LeaveType),
				zap.Error(err),
			)
			continue
		}
		if accrued {
			processed++
		}
	}

	s.logger.Info("monthly accrual run complete",
		zap.Int("leave_year", leaveYear),
		zap.Int("month", int(month)),
		zap.Int("accrued", processed),
	)
	return processed, nil
}

// CarryOver rolls min(unused, cap) from fromYear into toYear and stamps the
// carried balance with its expiry date. Types without a carry-over policy
// are left untouched.
func (s *service) CarryOver(ctx context.Context, employeeID string, fromYear, toYear int, leaveType entitlement.LeaveType) error {
	rule, ok := s.catalog.RuleFor(leaveType)
	if !ok || rule.CarryOver == nil {
		return nil
	}

	reference := fmt.Sprintf("CARRYOVER:%s:%s:%d", employeeID, leaveType, toYear)
	exists, err := s.repo.HistoryReferenceExists(ctx, reference)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	prior, err := s.repo.FindByKey(ctx, employeeID, fromYear, string(leaveType))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return balanceerrors.ErrBalanceNotFound
		}
		return err
	}

	amount := decimal.Min(prior.Available, rule.CarryOver.MaxDays)
	if !amount.IsPositive() {
		return nil
	}

	// The target year record may not exist yet for employees provisioned
	// before the rollover job runs.
	if _, err := s.repo.FindByKey(ctx, employeeID, toYear, string(leaveType)); err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		// An employee rolling over was on board the whole prior year, so the
		// new year record gets the full entitlement.
		if _, err := s.Provision(ctx, employeeID, toYear, leaveType, time.Date(fromYear, time.January, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			return err
		}
	}

	expiry := time.Date(toYear, time.Month(rule.CarryOver.ExpiryMonth), rule.CarryOver.ExpiryDay, 0, 0, 0, 0, time.UTC)
	_, err = s.mutate(ctx, employeeID, toYear, string(leaveType), func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
		b.CarriedOver = b.CarriedOver.Add(amount)
		b.CarryOverExpiresAt = &expiry
		ref := reference
		return &BalanceHistoryEntry{
			ChangeType: ChangeCarryOver,
			Amount:     amount,
			Reference:  &ref,
			Reason:     fmt.Sprintf("carry-over from %d", fromYear),
		}, true, nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("carry-over applied",
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.Int("from_year", fromYear),
		zap.Int("to_year", toYear),
		zap.String("amount", amount.String()),
	)
	return nil
}

func (s *service) RunCarryOver(ctx context.Context, fromYear, toYear int) (int, error) {
	balances, err := s.repo.ListByYear(ctx, fromYear)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, b := range balances {
		rule, ok := s.catalog.RuleFor(entitlement.LeaveType(b.LeaveType))
		if !ok || rule.CarryOver == nil {
			continue
		}
		if err := s.CarryOver(ctx, b.EmployeeID.String(), fromYear, toYear, entitlement.LeaveType(b.LeaveType)); err != nil {
			s.logger.Error("carry-over failed",
				zap.String("employee_id", b.EmployeeID.String()),
				zap.String("leave_type", b.LeaveType),
				zap.Error(err),
			)
			continue
		}
		processed++
	}
	return processed, nil
}

// RunCarryOverExpiry forfeits carried balance past its expiry date. This is
// destructive and one-directional; there is no un-expire.
func (s *service) RunCarryOverExpiry(ctx context.Context, asOf time.Time) (int, error) {
	balances, err := s.repo.ListExpirableCarryOver(ctx, asOf)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range balances {
		_, err := s.mutate(ctx, candidate.EmployeeID.String(), candidate.LeaveYear, candidate.LeaveType, func(b *LeaveTypeBalance) (*BalanceHistoryEntry, bool, error) {
			remaining := b.UnusedCarryOver()
			if !remaining.IsPositive() {
				return nil, false, nil
			}
			if b.CarryOverExpiresAt == nil || !b.CarryOverExpiresAt.Before(asOf) {
				return nil, false, nil
			}
			b.CarriedOverExpired = b.CarriedOverExpired.Add(remaining)
			ref := fmt.Sprintf("COEXPIRE:%s", b.ID)
			return &BalanceHistoryEntry{
				ChangeType: ChangeCarryOverExpiry,
				Amount:     remaining.Neg(),
				Reference:  &ref,
				Reason:     "carry-over expired",
			}, true, nil
		})
		if err != nil {
			s.logger.Error("carry-over expiry failed",
				zap.String("balance_id", candidate.ID.String()),
				zap.Error(err),
			)
			continue
		}
		expired++
	}

	s.logger.Info("carry-over expiry run complete",
		zap.Time("as_of", asOf),
		zap.Int("expired", expired),
	)
	return expired, nil
}

func (s *service) Summary(ctx context.Context, employeeID string, leaveYear int) ([]BalanceResponse, error) {
	balances, err := s.repo.FindByEmployeeYear(ctx, employeeID, leaveYear)
	if err != nil {
		return nil, err
	}
	out := make([]BalanceResponse, len(balances))
	for i, b := range balances {
		out[i] = mapToBalanceResponse(b)
	}
	return out, nil
}

func (s *service) History(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType) ([]HistoryResponse, error) {
	b, err := s.repo.FindByKey(ctx, employeeID, leaveYear, string(leaveType))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, balanceerrors.ErrBalanceNotFound
		}
		return nil, err
	}
	entries, err := s.repo.HistoryForBalance(ctx, b.ID.String())
	if err != nil {
		return nil, err
	}
	out := make([]HistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = mapToHistoryResponse(e)
	}
	return out, nil
}

// ProratedEntitlement scales the annual entitlement by the months the
// employee is on board in the leave year. Join years before the leave year
// earn the full entitlement.
func ProratedEntitlement(annual decimal.Decimal, joinDate time.Time, leaveYear int) decimal.Decimal {
	if annual.IsZero() {
		return decimal.Zero
	}
	if joinDate.Year() < leaveYear {
		return annual
	}
	if joinDate.Year() > leaveYear {
		return decimal.Zero
	}
	monthsRemaining := 12 - int(joinDate.Month()) + 1
	return annual.
		Mul(decimal.NewFromInt(int64(monthsRemaining))).
		Div(decimal.NewFromInt(12)).
		Round(2)
}
