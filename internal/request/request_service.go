package request

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go-leave/internal/approval"
	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/calendar"
	"go-leave/internal/directory"
	"go-leave/internal/entitlement"
	"go-leave/internal/events"
	"go-leave/internal/holiday"
	"go-leave/internal/messaging/kafka"
	requesterrors "go-leave/internal/request/errors"
	"go-leave/internal/shared/apperror"
	"go-leave/internal/shared/contextutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// maxDecisionAttempts bounds retries when a decision or cancellation loses
// the request row's version race.
const maxDecisionAttempts = 3

//go:generate mockgen -source=request_service.go -destination=mock/request_service_mock.go -package=mock
type Service interface {
	Create(ctx context.Context, employeeID string, in CreateLeaveRequest) (RequestResponse, error)
	Submit(ctx context.Context, id, actorID string) (RequestResponse, error)
	ProcessApproval(ctx context.Context, id, actorID string, in DecisionRequest) (RequestResponse, error)
	Cancel(ctx context.Context, id, actorID string, actorIsHR bool, reason string) (RequestResponse, error)
	Withdraw(ctx context.Context, id, actorID string) (RequestResponse, error)
	Get(ctx context.Context, id string) (RequestResponse, error)
	ListByEmployee(ctx context.Context, employeeID string, page, perPage int) ([]RequestResponse, int64, error)
}

type service struct {
	db        *sql.DB
	repo      Repository
	chains    approval.ChainRepository
	router    approval.Router
	outbox    kafka.OutboxRepository
	balances  balance.Service
	catalog   *entitlement.Catalog
	validator *entitlement.Validator
	employees directory.Service
	holidays  holiday.Provider
	projector calendar.Projector
	logger    *zap.Logger
}

func NewService(
	db *sql.DB,
	repo Repository,
	chains approval.ChainRepository,
	router approval.Router,
	outbox kafka.OutboxRepository,
	balances balance.Service,
	catalog *entitlement.Catalog,
	validator *entitlement.Validator,
	employees directory.Service,
	holidays holiday.Provider,
	projector calendar.Projector,
	logger ...*zap.Logger,
) Service {
	l := zap.L().Named("request.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("request.service")
	}
	return &service{
		db:        db,
		repo:      repo,
		chains:    chains,
		router:    router,
		outbox:    outbox,
		balances:  balances,
		catalog:   catalog,
		validator: validator,
		employees: employees,
		holidays:  holidays,
		projector: projector,
		logger:    l,
	}
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *service) Create(ctx context.Context, employeeID string, in CreateLeaveRequest) (RequestResponse, error) {
	leaveType := entitlement.LeaveType(in.LeaveType)
	if !leaveType.Valid() {
		return RequestResponse{}, requesterrors.ErrUnknownLeaveType
	}
	rule, ok := s.catalog.RuleFor(leaveType)
	if !ok {
		return RequestResponse{}, requesterrors.ErrUnknownLeaveType
	}

	// A missing employee at creation time is a hard error, unlike display
	// lookups which fail soft.
	emp, err := s.employees.Snapshot(ctx, employeeID)
	if err != nil {
		return RequestResponse{}, err
	}

	now := time.Now().UTC()
	if err := s.validator.Validate(rule, emp, now); err != nil {
		return RequestResponse{}, err
	}

	startDate, err := time.Parse("2006-01-02", in.StartDate)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrInvalidDateRange
	}
	endDate, err := time.Parse("2006-01-02", in.EndDate)
	if err != nil || endDate.Before(startDate) {
		return RequestResponse{}, requesterrors.ErrInvalidDateRange
	}

	priority := Priority(in.Priority)
	if priority == "" {
		priority = PriorityNormal
	}

	holidays, err := s.holidaysForRange(ctx, emp.SubsidiaryID.String(), startDate, endDate)
	if err != nil {
		return RequestResponse{}, err
	}

	requestID := uuid.New()
	days, totalDays := buildDayConfig(requestID, startDate, endDate, in.HalfDayStart, in.HalfDayEnd, holidays)
	if !totalDays.IsPositive() {
		return RequestResponse{}, requesterrors.ErrNoWorkingDaysInRange
	}
	if rule.MaxConsecutiveDays > 0 && totalDays.GreaterThan(decimal.NewFromInt(int64(rule.MaxConsecutiveDays))) {
		return RequestResponse{}, requesterrors.ErrExceedsMaxConsecutiveDays
	}

	overlapping, err := s.repo.FindOverlapping(ctx, employeeID, startDate, endDate, "")
	if err != nil {
		return RequestResponse{}, err
	}
	if len(overlapping) > 0 {
		return RequestResponse{}, requesterrors.ErrOverlappingRequest
	}

	if !in.AsDraft {
		if err := s.checkNotice(rule, priority, startDate); err != nil {
			return RequestResponse{}, err
		}
	}

	leaveYear := startDate.Year()
	if !in.AsDraft && rule.Paid {
		sufficient, _, err := s.balances.CheckSufficient(ctx, employeeID, leaveYear, leaveType, totalDays)
		if err != nil {
			return RequestResponse{}, err
		}
		if !sufficient {
			return RequestResponse{}, balanceerrors.ErrInsufficientBalance
		}
	}

	levels := s.router.ChainFor(leaveType, totalDays)
	chain, err := approval.BuildChain(requestID, levels, emp)
	if err != nil {
		return RequestResponse{}, err
	}

	status := StatusPendingApproval
	if in.AsDraft {
		status = StatusDraft
	}

	req := &LeaveRequest{
		ID:               requestID,
		EmployeeID:       emp.ID,
		SubsidiaryID:     emp.SubsidiaryID,
		DepartmentID:     emp.DepartmentID,
		LeaveType:        string(leaveType),
		StartDate:        startDate,
		EndDate:          endDate,
		TotalDays:        totalDays,
		Priority:         priority,
		Status:           status,
		Reason:           in.Reason,
		EmergencyContact: in.EmergencyContact,
		CurrentLevel:     0,
		Version:          1,
	}
	if in.DutiesDelegateID != nil {
		delegate, err := uuid.Parse(*in.DutiesDelegateID)
		if err != nil {
			return RequestResponse{}, apperror.New(apperror.CodeInvalidInput, "invalid duties_delegate_id", http.StatusBadRequest)
		}
		req.DutiesDelegateID = &delegate
	}

	reserved := false
	if !in.AsDraft && rule.Paid {
		if err := s.balances.Reserve(ctx, employeeID, leaveYear, leaveType, totalDays); err != nil {
			return RequestResponse{}, err
		}
		reserved = true
	}

	if err := s.persistNew(ctx, req, days, chain, emp.ID.String()); err != nil {
		if reserved {
			// Compensate the reservation; release is clamped so a duplicate
			// attempt is harmless.
			if rerr := s.balances.Release(ctx, employeeID, leaveYear, leaveType, totalDays); rerr != nil {
				s.logger.Error("release after failed persist also failed",
					zap.String("request_id", requestID.String()),
					zap.Error(rerr),
				)
			}
		}
		return RequestResponse{}, err
	}

	s.syncCalendar(ctx, req, days)
	s.logger.Info("leave request created",
		zap.String("request_id", requestID.String()),
		zap.String("employee_id", employeeID),
		zap.String("leave_type", string(leaveType)),
		zap.String("status", string(status)),
		zap.String("total_days", totalDays.String()),
	)

	resp := mapToRequestResponse(req)
	resp.Days = mapToDayResponses(days)
	resp.Approvers = approval.MapToApproverResponses(chain)
	return resp, nil
}

func (s *service) persistNew(ctx context.Context, req *LeaveRequest, days []RequestDay, chain []approval.Approver, actorID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.Create(ctx, req, days); err != nil {
		return err
	}
	if err := s.chains.WithTx(tx).CreateAll(ctx, chain); err != nil {
		return err
	}

	actor, _ := uuid.Parse(actorID)
	if err := qtx.AppendStatusHistory(ctx, &StatusHistory{
		ID:        uuid.New(),
		RequestID: req.ID,
		ToStatus:  string(req.Status),
		ActorID:   &actor,
		Reason:    "request created",
	}); err != nil {
		return err
	}

	if req.Status == StatusPendingApproval {
		if err := s.stageEvent(ctx, tx, events.LeaveRequestSubmitted, req, actorID); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *service) Submit(ctx context.Context, id, actorID string) (RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if req.EmployeeID.String() != actorID {
		return RequestResponse{}, requesterrors.ErrNotRequestOwner
	}
	// Only drafts are submittable. The transition table also admits
	// PENDING_HR_REVIEW -> PENDING_APPROVAL for approver returns, and that
	// edge must not be reachable by the owner re-reserving days.
	if req.Status != StatusDraft {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	leaveType := entitlement.LeaveType(req.LeaveType)
	rule, ok := s.catalog.RuleFor(leaveType)
	if !ok {
		return RequestResponse{}, requesterrors.ErrUnknownLeaveType
	}

	// Checks skipped while drafting apply at submission.
	if err := s.checkNotice(rule, req.Priority, req.StartDate); err != nil {
		return RequestResponse{}, err
	}

	leaveYear := req.StartDate.Year()
	if rule.Paid {
		sufficient, _, err := s.balances.CheckSufficient(ctx, req.EmployeeID.String(), leaveYear, leaveType, req.TotalDays)
		if err != nil {
			return RequestResponse{}, err
		}
		if !sufficient {
			return RequestResponse{}, balanceerrors.ErrInsufficientBalance
		}
		if err := s.balances.Reserve(ctx, req.EmployeeID.String(), leaveYear, leaveType, req.TotalDays); err != nil {
			return RequestResponse{}, err
		}
	}

	if err := s.transition(ctx, req, StatusPendingApproval, actorID, "submitted for approval", events.LeaveRequestSubmitted, nil); err != nil {
		if rule.Paid {
			if rerr := s.balances.Release(ctx, req.EmployeeID.String(), leaveYear, leaveType, req.TotalDays); rerr != nil {
				s.logger.Error("release after failed submit also failed",
					zap.String("request_id", id),
					zap.Error(rerr),
				)
			}
		}
		return RequestResponse{}, err
	}

	days, _ := s.repo.FindDays(ctx, id)
	s.syncCalendar(ctx, req, days)
	s.logger.Info("leave request submitted",
		zap.String("request_id", id),
		zap.String("employee_id", actorID),
	)
	return mapToRequestResponse(req), nil
}

func (s *service) ProcessApproval(ctx context.Context, id, actorID string, in DecisionRequest) (RequestResponse, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return RequestResponse{}, requesterrors.ErrNotRequestOwner
	}
	decision := approval.Decision{
		ActorID: actor,
		Action:  approval.Action(in.Action),
		Comment: in.Comment,
	}

	var lastErr error
	for attempt := 1; attempt <= maxDecisionAttempts; attempt++ {
		resp, err := s.decideOnce(ctx, id, actorID, decision)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, requesterrors.ErrVersionConflict) {
			s.logger.Warn("decision lost version race, retrying",
				zap.String("request_id", id),
				zap.Int("attempt", attempt),
			)
			lastErr = err
			continue
		}
		return RequestResponse{}, err
	}
	return RequestResponse{}, lastErr
}

// decideOnce runs one read-decide-write pass. The version guard on the
// request row serializes concurrent decisions and cancellations.
func (s *service) decideOnce(ctx context.Context, id, actorID string, decision approval.Decision) (RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if req.Status != StatusPendingApproval && req.Status != StatusPendingHRReview {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	chain, err := s.chains.FindByRequest(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}

	scope := approval.Scope{
		LeaveType:    req.LeaveType,
		DepartmentID: req.DepartmentID,
		TotalDays:    req.TotalDays,
	}
	outcome, err := s.router.ProcessDecision(ctx, chain, req.CurrentLevel, decision, scope, time.Now().UTC())
	if err != nil {
		return RequestResponse{}, err
	}

	newStatus := statusFromChainState(outcome.State)
	if newStatus != req.Status && !req.Status.CanTransitionTo(newStatus) {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	prevStatus := req.Status
	req.Status = newStatus
	req.CurrentLevel = outcome.CurrentLevel

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return RequestResponse{}, err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.UpdateVersioned(ctx, req); err != nil {
		return RequestResponse{}, err
	}
	if err := s.chains.WithTx(tx).SaveAll(ctx, chain); err != nil {
		return RequestResponse{}, err
	}
	if newStatus != prevStatus {
		if err := qtx.AppendStatusHistory(ctx, &StatusHistory{
			ID:         uuid.New(),
			RequestID:  req.ID,
			FromStatus: string(prevStatus),
			ToStatus:   string(newStatus),
			ActorID:    &decision.ActorID,
			Reason:     decision.Comment,
		}); err != nil {
			return RequestResponse{}, err
		}
	}
	if err := s.stageEvent(ctx, tx, events.LeaveRequestDecided, req, actorID); err != nil {
		return RequestResponse{}, err
	}
	if err := tx.Commit(); err != nil {
		return RequestResponse{}, err
	}

	if err := s.settleBalance(ctx, req, outcome.State, &decision.ActorID); err != nil {
		// The decision is committed but the ledger is not settled. Surface
		// the failure so the caller retries the settlement instead of
		// trusting a balance that still carries the reservation.
		return RequestResponse{}, err
	}

	days, _ := s.repo.FindDays(ctx, id)
	s.syncCalendar(ctx, req, days)
	s.logger.Info("decision processed",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
		zap.String("action", string(decision.Action)),
		zap.String("status", string(req.Status)),
	)

	resp := mapToRequestResponse(req)
	resp.Approvers = approval.MapToApproverResponses(chain)
	return resp, nil
}

// settleBalance applies the ledger consequence of a terminal chain outcome.
// The consumption reference makes a redelivered approval idempotent; release
// is clamped, so both paths tolerate replays and a failed settlement can be
// re-driven by retrying the call.
func (s *service) settleBalance(ctx context.Context, req *LeaveRequest, state approval.ChainState, actorID *uuid.UUID) error {
	leaveType := entitlement.LeaveType(req.LeaveType)
	rule, ok := s.catalog.RuleFor(leaveType)
	if !ok || !rule.Paid {
		return nil
	}
	leaveYear := req.StartDate.Year()
	employeeID := req.EmployeeID.String()

	var err error
	switch state {
	case approval.ChainApproved:
		err = s.balances.ConfirmTaken(ctx, employeeID, leaveYear, leaveType, req.TotalDays, req.ID.String(), actorID)
	case approval.ChainRejected, approval.ChainReturnedToDraft:
		err = s.balances.Release(ctx, employeeID, leaveYear, leaveType, req.TotalDays)
	default:
		return nil
	}
	if err != nil {
		s.logger.Error("balance settlement failed",
			zap.String("request_id", req.ID.String()),
			zap.String("chain_state", string(state)),
			zap.Error(err),
		)
	}
	return err
}

func (s *service) Cancel(ctx context.Context, id, actorID string, actorIsHR bool, reason string) (RequestResponse, error) {
	var lastErr error
	for attempt := 1; attempt <= maxDecisionAttempts; attempt++ {
		resp, err := s.cancelOnce(ctx, id, actorID, actorIsHR, reason)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, requesterrors.ErrVersionConflict) {
			lastErr = err
			continue
		}
		return RequestResponse{}, err
	}
	return RequestResponse{}, lastErr
}

func (s *service) cancelOnce(ctx context.Context, id, actorID string, actorIsHR bool, reason string) (RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if req.EmployeeID.String() != actorID && !actorIsHR {
		return RequestResponse{}, requesterrors.ErrCancelNotAllowed
	}
	if !req.Status.CanTransitionTo(StatusCancelled) {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}
	if req.Status == StatusApproved && !today().Before(req.StartDate) {
		return RequestResponse{}, requesterrors.ErrCancelAfterStart
	}

	wasApproved := req.Status == StatusApproved
	if err := s.transition(ctx, req, StatusCancelled, actorID, reason, events.LeaveRequestCancelled, nil); err != nil {
		return RequestResponse{}, err
	}

	leaveType := entitlement.LeaveType(req.LeaveType)
	if rule, ok := s.catalog.RuleFor(leaveType); ok && rule.Paid {
		leaveYear := req.StartDate.Year()
		if wasApproved {
			// Consumption was already confirmed; reverse it with a correction
			// rather than touching pending.
			_, err = s.balances.Adjust(ctx, req.EmployeeID.String(), leaveYear, leaveType, balance.AdjustBalanceRequest{
				AdjustmentType: balance.AdjustCorrection,
				Amount:         req.TotalDays.String(),
				Reason:         "approved leave cancelled: " + reason,
				Reference:      "CANCEL:" + req.ID.String(),
			}, actorID)
		} else {
			err = s.balances.Release(ctx, req.EmployeeID.String(), leaveYear, leaveType, req.TotalDays)
		}
		if err != nil {
			// The cancellation is committed; surfacing the error tells the
			// caller the ledger reversal still needs attention.
			s.logger.Error("balance reversal on cancel failed",
				zap.String("request_id", id),
				zap.Error(err),
			)
			return RequestResponse{}, err
		}
	}

	s.syncCalendar(ctx, req, nil)
	s.logger.Info("leave request cancelled",
		zap.String("request_id", id),
		zap.String("actor_id", actorID),
		zap.Bool("was_approved", wasApproved),
	)
	return mapToRequestResponse(req), nil
}

func (s *service) Withdraw(ctx context.Context, id, actorID string) (RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}
	if req.EmployeeID.String() != actorID {
		return RequestResponse{}, requesterrors.ErrNotRequestOwner
	}
	if !req.Status.CanTransitionTo(StatusWithdrawn) {
		return RequestResponse{}, requesterrors.ErrInvalidStatusTransition
	}

	if err := s.transition(ctx, req, StatusWithdrawn, actorID, "withdrawn by requester", events.LeaveRequestWithdrawn, nil); err != nil {
		return RequestResponse{}, err
	}

	s.syncCalendar(ctx, req, nil)
	s.logger.Info("leave request withdrawn", zap.String("request_id", id))
	return mapToRequestResponse(req), nil
}

func (s *service) Get(ctx context.Context, id string) (RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return RequestResponse{}, err
	}

	resp := mapToRequestResponse(req)
	resp.EmployeeName = s.employees.DisplayName(ctx, req.EmployeeID.String())

	if days, err := s.repo.FindDays(ctx, id); err == nil {
		resp.Days = mapToDayResponses(days)
	}
	if chain, err := s.chains.FindByRequest(ctx, id); err == nil {
		resp.Approvers = approval.MapToApproverResponses(chain)
	}
	if history, err := s.repo.StatusHistoryFor(ctx, id); err == nil {
		resp.StatusHistory = mapToStatusHistoryResponses(history)
	}
	return resp, nil
}

func (s *service) ListByEmployee(ctx context.Context, employeeID string, page, perPage int) ([]RequestResponse, int64, error) {
	requests, total, err := s.repo.ListByEmployee(ctx, employeeID, page, perPage)
	if err != nil {
		return nil, 0, err
	}
	out := make([]RequestResponse, len(requests))
	for i := range requests {
		out[i] = mapToRequestResponse(&requests[i])
	}
	return out, total, nil
}

// transition performs one version-guarded status change with its history
// row and outbox event in a single transaction.
func (s *service) transition(ctx context.Context, req *LeaveRequest, target Status, actorID, reason, eventType string, currentLevel *int) error {
	prev := req.Status
	req.Status = target
	if currentLevel != nil {
		req.CurrentLevel = *currentLevel
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.UpdateVersioned(ctx, req); err != nil {
		req.Status = prev
		return err
	}

	actor, _ := uuid.Parse(actorID)
	if err := qtx.AppendStatusHistory(ctx, &StatusHistory{
		ID:         uuid.New(),
		RequestID:  req.ID,
		FromStatus: string(prev),
		ToStatus:   string(target),
		ActorID:    &actor,
		Reason:     reason,
	}); err != nil {
		req.Status = prev
		return err
	}
	if err := s.stageEvent(ctx, tx, eventType, req, actorID); err != nil {
		req.Status = prev
		return err
	}
	if err := tx.Commit(); err != nil {
		req.Status = prev
		return err
	}
	return nil
}

func (s *service) stageEvent(ctx context.Context, tx *sql.Tx, eventType string, req *LeaveRequest, actorID string) error {
	payload, err := json.Marshal(events.LeaveRequestEvent{
		EventType:    eventType,
		RequestID:    req.ID.String(),
		EmployeeID:   req.EmployeeID.String(),
		SubsidiaryID: req.SubsidiaryID.String(),
		LeaveType:    req.LeaveType,
		Status:       string(req.Status),
		StartDate:    req.StartDate.Format("2006-01-02"),
		EndDate:      req.EndDate.Format("2006-01-02"),
		TotalDays:    req.TotalDays.StringFixed(2),
		ActorID:      actorID,
		OccurredAt:   time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	event := kafka.OutboxEvent{
		ID:            uuid.NewString(),
		RequestID:     contextutil.GetRequestID(ctx),
		AggregateType: "leave_request",
		AggregateID:   req.ID.String(),
		EventType:     eventType,
		Topic:         events.LeaveRequestTopic,
		Payload:       payload,
		Status:        kafka.OutboxStatusPending,
	}
	if err := kafka.ValidateOutboxEvent(event); err != nil {
		return err
	}
	return s.outbox.WithTx(tx).Create(ctx, event)
}

// syncCalendar is best-effort: the projection is derived data and a failed
// sync must not fail the workflow operation.
func (s *service) syncCalendar(ctx context.Context, req *LeaveRequest, days []RequestDay) {
	projected := make([]calendar.ProjectedDay, 0, len(days))
	for _, d := range days {
		projected = append(projected, calendar.ProjectedDay{Date: d.Date, Value: d.Value})
	}
	err := s.projector.Sync(ctx, calendar.Projection{
		RequestID:    req.ID,
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		SubsidiaryID: req.SubsidiaryID,
		LeaveType:    req.LeaveType,
		Status:       string(req.Status),
		Days:         projected,
	})
	if err != nil {
		s.logger.Error("calendar sync failed",
			zap.String("request_id", req.ID.String()),
			zap.Error(err),
		)
	}
}

func (s *service) checkNotice(rule entitlement.Rule, priority Priority, startDate time.Time) error {
	if rule.NoticeDays == 0 || priority == PriorityEmergency {
		return nil
	}
	earliest := today().AddDate(0, 0, rule.NoticeDays)
	if startDate.Before(earliest) {
		return requesterrors.ErrInsufficientNotice
	}
	return nil
}

func (s *service) holidaysForRange(ctx context.Context, subsidiaryID string, start, end time.Time) (map[string]string, error) {
	holidays, err := s.holidays.Holidays(ctx, subsidiaryID, start.Year())
	if err != nil {
		return nil, err
	}
	if end.Year() != start.Year() {
		next, err := s.holidays.Holidays(ctx, subsidiaryID, end.Year())
		if err != nil {
			return nil, err
		}
		for k, v := range next {
			holidays[k] = v
		}
	}
	return holidays, nil
}

func (s *service) load(ctx context.Context, id string) (*LeaveRequest, error) {
	req, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, requesterrors.ErrRequestNotFound
		}
		return nil, err
	}
	return req, nil
}

func statusFromChainState(state approval.ChainState) Status {
	switch state {
	case approval.ChainApproved:
		return StatusApproved
	case approval.ChainRejected:
		return StatusRejected
	case approval.ChainPendingHRReview:
		return StatusPendingHRReview
	case approval.ChainReturnedToDraft:
		return StatusDraft
	default:
		return StatusPendingApproval
	}
}
