package request_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-leave/internal/approval"
	approvalerrors "go-leave/internal/approval/errors"
	"go-leave/internal/balance"
	balanceerrors "go-leave/internal/balance/errors"
	"go-leave/internal/calendar"
	"go-leave/internal/directory"
	"go-leave/internal/entitlement"
	"go-leave/internal/events"
	"go-leave/internal/messaging/kafka"
	"go-leave/internal/request"
	requesterrors "go-leave/internal/request/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type fakeRequestRepo struct {
	createFn          func(ctx context.Context, req *request.LeaveRequest, days []request.RequestDay) error
	findByIDFn        func(ctx context.Context, id string) (*request.LeaveRequest, error)
	findDaysFn        func(ctx context.Context, requestID string) ([]request.RequestDay, error)
	findOverlappingFn func(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]request.LeaveRequest, error)
	updateVersionedFn func(ctx context.Context, req *request.LeaveRequest) error

	created []request.LeaveRequest
	history []request.StatusHistory
}

func (f *fakeRequestRepo) WithTx(tx *sql.Tx) request.Repository { return f }

func (f *fakeRequestRepo) Create(ctx context.Context, req *request.LeaveRequest, days []request.RequestDay) error {
	if f.createFn != nil {
		return f.createFn(ctx, req, days)
	}
	f.created = append(f.created, *req)
	return nil
}

func (f *fakeRequestRepo) FindByID(ctx context.Context, id string) (*request.LeaveRequest, error) {
	if f.findByIDFn != nil {
		return f.findByIDFn(ctx, id)
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepo) FindDays(ctx context.Context, requestID string) ([]request.RequestDay, error) {
	if f.findDaysFn != nil {
		return f.findDaysFn(ctx, requestID)
	}
	return nil, nil
}

func (f *fakeRequestRepo) FindOverlapping(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]request.LeaveRequest, error) {
	if f.findOverlappingFn != nil {
		return f.findOverlappingFn(ctx, employeeID, start, end, excludeID)
	}
	return nil, nil
}

func (f *fakeRequestRepo) ListByEmployee(ctx context.Context, employeeID string, page, perPage int) ([]request.LeaveRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeRequestRepo) UpdateVersioned(ctx context.Context, req *request.LeaveRequest) error {
	if f.updateVersionedFn != nil {
		return f.updateVersionedFn(ctx, req)
	}
	req.Version++
	return nil
}

func (f *fakeRequestRepo) AppendStatusHistory(ctx context.Context, h *request.StatusHistory) error {
	f.history = append(f.history, *h)
	return nil
}

func (f *fakeRequestRepo) StatusHistoryFor(ctx context.Context, requestID string) ([]request.StatusHistory, error) {
	return f.history, nil
}

type fakeChainRepo struct {
	findByRequestFn func(ctx context.Context, requestID string) ([]approval.Approver, error)

	created []approval.Approver
	saved   []approval.Approver
}

func (f *fakeChainRepo) WithTx(tx *sql.Tx) approval.ChainRepository { return f }

func (f *fakeChainRepo) CreateAll(ctx context.Context, approvers []approval.Approver) error {
	f.created = append(f.created, approvers...)
	return nil
}

func (f *fakeChainRepo) FindByRequest(ctx context.Context, requestID string) ([]approval.Approver, error) {
	if f.findByRequestFn != nil {
		return f.findByRequestFn(ctx, requestID)
	}
	return nil, nil
}

func (f *fakeChainRepo) SaveAll(ctx context.Context, approvers []approval.Approver) error {
	f.saved = append(f.saved, approvers...)
	return nil
}

type fakeOutboxRepo struct {
	events []kafka.OutboxEvent
}

func (f *fakeOutboxRepo) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutboxRepo) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeOutboxRepo) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutboxRepo) MarkSent(ctx context.Context, id string) error { return nil }

func (f *fakeOutboxRepo) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

type balanceCall struct {
	op        string
	leaveType entitlement.LeaveType
	days      decimal.Decimal
	reference string
}

type fakeBalanceService struct {
	sufficient bool
	reserveErr error
	releaseErr error
	confirmErr error

	calls []balanceCall
}

func (f *fakeBalanceService) Provision(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, joinDate time.Time) (balance.BalanceResponse, error) {
	return balance.BalanceResponse{}, nil
}

func (f *fakeBalanceService) CheckSufficient(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) (bool, decimal.Decimal, error) {
	return f.sufficient, decimal.Zero, nil
}

func (f *fakeBalanceService) Reserve(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error {
	if f.reserveErr != nil {
		return f.reserveErr
	}
	f.calls = append(f.calls, balanceCall{op: "reserve", leaveType: leaveType, days: days})
	return nil
}

func (f *fakeBalanceService) Release(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal) error {
	if f.releaseErr != nil {
		return f.releaseErr
	}
	f.calls = append(f.calls, balanceCall{op: "release", leaveType: leaveType, days: days})
	return nil
}

func (f *fakeBalanceService) ConfirmTaken(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, days decimal.Decimal, reference string, actorID *uuid.UUID) error {
	if f.confirmErr != nil {
		return f.confirmErr
	}
	f.calls = append(f.calls, balanceCall{op: "confirm", leaveType: leaveType, days: days, reference: reference})
	return nil
}

func (f *fakeBalanceService) Adjust(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType, req balance.AdjustBalanceRequest, actorID string) (balance.BalanceResponse, error) {
	amount, _ := decimal.NewFromString(req.Amount)
	f.calls = append(f.calls, balanceCall{op: "adjust:" + req.AdjustmentType, leaveType: leaveType, days: amount, reference: req.Reference})
	return balance.BalanceResponse{}, nil
}

func (f *fakeBalanceService) CarryOver(ctx context.Context, employeeID string, fromYear, toYear int, leaveType entitlement.LeaveType) error {
	return nil
}

func (f *fakeBalanceService) RunMonthlyAccrual(ctx context.Context, leaveYear int, month time.Month) (int, error) {
	return 0, nil
}

func (f *fakeBalanceService) RunCarryOver(ctx context.Context, fromYear, toYear int) (int, error) {
	return 0, nil
}

func (f *fakeBalanceService) RunCarryOverExpiry(ctx context.Context, asOf time.Time) (int, error) {
	return 0, nil
}

func (f *fakeBalanceService) Summary(ctx context.Context, employeeID string, leaveYear int) ([]balance.BalanceResponse, error) {
	return nil, nil
}

func (f *fakeBalanceService) History(ctx context.Context, employeeID string, leaveYear int, leaveType entitlement.LeaveType) ([]balance.HistoryResponse, error) {
	return nil, nil
}

func (f *fakeBalanceService) ops() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.op
	}
	return out
}

type fakeDirectoryService struct {
	snapshot *directory.Snapshot
}

func (f *fakeDirectoryService) Snapshot(ctx context.Context, employeeID string) (*directory.Snapshot, error) {
	return f.snapshot, nil
}

func (f *fakeDirectoryService) DisplayName(ctx context.Context, employeeID string) string {
	return f.snapshot.FullName
}

type fakeHolidayProvider struct {
	holidays map[string]string
}

func (f *fakeHolidayProvider) Holidays(ctx context.Context, subsidiaryID string, year int) (map[string]string, error) {
	if f.holidays == nil {
		return map[string]string{}, nil
	}
	return f.holidays, nil
}

type fakeProjector struct {
	projections []calendar.Projection
}

func (f *fakeProjector) Sync(ctx context.Context, p calendar.Projection) error {
	f.projections = append(f.projections, p)
	return nil
}

func (f *fakeProjector) CheckTeamConflicts(ctx context.Context, departmentID string, start, end time.Time, requestingEmployeeID string, maxAllowed int) ([]calendar.ConflictDay, error) {
	return nil, nil
}

func (f *fakeProjector) DepartmentMonth(ctx context.Context, departmentID string, year int, month time.Month) ([]calendar.TeamCalendarEntry, error) {
	return nil, nil
}

type fakeDelegationRepo struct{}

func (f *fakeDelegationRepo) Create(ctx context.Context, d *approval.ApprovalDelegation) error {
	return nil
}

func (f *fakeDelegationRepo) FindActiveForDelegator(ctx context.Context, delegatorID string, at time.Time) ([]approval.ApprovalDelegation, error) {
	return nil, nil
}

func (f *fakeDelegationRepo) Deactivate(ctx context.Context, id string) error { return nil }

type serviceDeps struct {
	db      *sql.DB
	sqlMock sqlmock.Sqlmock
	service request.Service

	repo      *fakeRequestRepo
	chains    *fakeChainRepo
	outbox    *fakeOutboxRepo
	balances  *fakeBalanceService
	employees *fakeDirectoryService
	holidays  *fakeHolidayProvider
	projector *fakeProjector

	supervisor uuid.UUID
	deptHead   uuid.UUID
	hrManager  uuid.UUID
}

func setupServiceTest(t *testing.T) *serviceDeps {
	t.Helper()

	db, sqlMock, err := sqlmock.New()
	assert.NoError(t, err)

	supervisor := uuid.New()
	deptHead := uuid.New()
	hrManager := uuid.New()
	gm := uuid.New()
	ceo := uuid.New()
	deptID := uuid.New()

	emp := &directory.Snapshot{
		ID:               uuid.New(),
		SubsidiaryID:     uuid.New(),
		DepartmentID:     &deptID,
		FullName:         "Amina Diallo",
		Gender:           directory.GenderFemale,
		JoinDate:         time.Date(2020, time.March, 1, 0, 0, 0, 0, time.UTC),
		EmploymentType:   directory.EmploymentPermanent,
		SupervisorID:     &supervisor,
		DepartmentHeadID: &deptHead,
		HRManagerID:      &hrManager,
		GeneralManagerID: &gm,
		CEOID:            &ceo,
	}

	repo := &fakeRequestRepo{}
	chains := &fakeChainRepo{}
	outbox := &fakeOutboxRepo{}
	balances := &fakeBalanceService{sufficient: true}
	employees := &fakeDirectoryService{snapshot: emp}
	holidays := &fakeHolidayProvider{}
	projector := &fakeProjector{}
	router := approval.NewRouter(approval.DefaultMatrix(), &fakeDelegationRepo{})

	svc := request.NewService(
		db, repo, chains, router, outbox, balances,
		entitlement.NewCatalog(), entitlement.NewValidator(),
		employees, holidays, projector,
	)

	return &serviceDeps{
		db:      db,
		sqlMock: sqlMock,
		service: svc,

		repo:      repo,
		chains:    chains,
		outbox:    outbox,
		balances:  balances,
		employees: employees,
		holidays:  holidays,
		projector: projector,

		supervisor: supervisor,
		deptHead:   deptHead,
		hrManager:  hrManager,
	}
}

func expectTx(t *testing.T, mock sqlmock.Sqlmock, commit bool) {
	t.Helper()
	mock.ExpectBegin()
	if commit {
		mock.ExpectCommit()
	} else {
		mock.ExpectRollback()
	}
}

// nextMonday returns the first Monday strictly after t plus the given number
// of days, keeping test date ranges inside a working week.
func nextMonday(t time.Time) time.Time {
	d := t
	for d.Weekday() != time.Monday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func futureWorkingWeek(daysFromNow int) (time.Time, time.Time) {
	start := nextMonday(time.Now().UTC().AddDate(0, 0, daysFromNow))
	return start, start.AddDate(0, 0, 4)
}

func TestServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("success full working week", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		start, end := futureWorkingWeek(21)
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
			Reason:    "family visit",
		})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING_APPROVAL", resp.Status)
		assert.Equal(t, "5.00", resp.TotalDays)
		assert.Equal(t, 0, resp.CurrentLevel)

		// 5 days of annual leave routes through supervisor and department head.
		assert.Len(t, deps.chains.created, 2)
		assert.Equal(t, deps.supervisor, deps.chains.created[0].ApproverID)
		assert.Equal(t, deps.deptHead, deps.chains.created[1].ApproverID)

		assert.Equal(t, []string{"reserve"}, deps.balances.ops())
		assert.Equal(t, "5", deps.balances.calls[0].days.String())

		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveRequestSubmitted, deps.outbox.events[0].EventType)
		assert.Equal(t, events.LeaveRequestTopic, deps.outbox.events[0].Topic)

		assert.Len(t, deps.projector.projections, 1)
		assert.Equal(t, "PENDING_APPROVAL", deps.projector.projections[0].Status)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative no working days in range", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		saturday := nextMonday(time.Now().UTC().AddDate(0, 0, 21)).AddDate(0, 0, 5)
		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: saturday.Format("2006-01-02"),
			EndDate:   saturday.AddDate(0, 0, 1).Format("2006-01-02"),
			Reason:    "weekend trip",
		})

		assert.ErrorIs(t, err, requesterrors.ErrNoWorkingDaysInRange)
		assert.Empty(t, deps.balances.calls)
	})

	t.Run("negative exceeds max consecutive days", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		start := nextMonday(time.Now().UTC().AddDate(0, 0, 7))
		end := start.AddDate(0, 0, 45) // 34 working days, sick allows 30

		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "SICK",
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
			Reason:    "surgery recovery",
		})

		assert.ErrorIs(t, err, requesterrors.ErrExceedsMaxConsecutiveDays)
	})

	t.Run("negative overlapping request", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.findOverlappingFn = func(ctx context.Context, employeeID string, start, end time.Time, excludeID string) ([]request.LeaveRequest, error) {
			return []request.LeaveRequest{{ID: uuid.New()}}, nil
		}

		start, end := futureWorkingWeek(21)
		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
			Reason:    "family visit",
		})

		assert.ErrorIs(t, err, requesterrors.ErrOverlappingRequest)
	})

	t.Run("negative insufficient notice", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		// Next Monday is at most 8 days out, well inside the 14-day notice.
		start := nextMonday(time.Now().UTC().AddDate(0, 0, 2))
		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   start.Format("2006-01-02"),
			Reason:    "short notice",
		})

		assert.ErrorIs(t, err, requesterrors.ErrInsufficientNotice)
	})

	t.Run("emergency priority bypasses notice", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		start := nextMonday(time.Now().UTC().AddDate(0, 0, 2))
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   start.Format("2006-01-02"),
			Priority:  "EMERGENCY",
			Reason:    "family emergency",
		})

		assert.NoError(t, err)
		assert.Equal(t, "EMERGENCY", resp.Priority)
		assert.Equal(t, []string{"reserve"}, deps.balances.ops())
	})

	t.Run("draft skips notice, reservation and event", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		start := nextMonday(time.Now().UTC().AddDate(0, 0, 2))
		expectTx(t, deps.sqlMock, true)

		resp, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   start.Format("2006-01-02"),
			Reason:    "still planning",
			AsDraft:   true,
		})

		assert.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Empty(t, deps.balances.calls)
		assert.Empty(t, deps.outbox.events)
	})

	t.Run("negative unknown leave type", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "GARDENING",
			StartDate: "2025-06-02",
			EndDate:   "2025-06-06",
			Reason:    "weeds",
		})
		assert.ErrorIs(t, err, requesterrors.ErrUnknownLeaveType)
	})

	t.Run("failed persist releases the reservation", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		deps.repo.createFn = func(ctx context.Context, req *request.LeaveRequest, days []request.RequestDay) error {
			return assert.AnError
		}

		start, end := futureWorkingWeek(21)
		expectTx(t, deps.sqlMock, false)

		_, err := deps.service.Create(ctx, deps.employees.snapshot.ID.String(), request.CreateLeaveRequest{
			LeaveType: "ANNUAL",
			StartDate: start.Format("2006-01-02"),
			EndDate:   end.Format("2006-01-02"),
			Reason:    "family visit",
		})

		assert.ErrorIs(t, err, assert.AnError)
		assert.Equal(t, []string{"reserve", "release"}, deps.balances.ops())
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func storedRequest(deps *serviceDeps, leaveType string, status request.Status, totalDays int64, startInDays int) *request.LeaveRequest {
	emp := deps.employees.snapshot
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, startInDays)
	return &request.LeaveRequest{
		ID:           uuid.New(),
		EmployeeID:   emp.ID,
		SubsidiaryID: emp.SubsidiaryID,
		DepartmentID: emp.DepartmentID,
		LeaveType:    leaveType,
		StartDate:    start,
		EndDate:      start.AddDate(0, 0, int(totalDays)-1),
		TotalDays:    decimal.NewFromInt(totalDays),
		Priority:     request.PriorityNormal,
		Status:       status,
		Reason:       "family visit",
		Version:      1,
	}
}

func pendingChain(req *request.LeaveRequest, approvers ...approvalLevel) []approval.Approver {
	chain := make([]approval.Approver, 0, len(approvers))
	for i, a := range approvers {
		chain = append(chain, approval.Approver{
			ID:         uuid.New(),
			RequestID:  req.ID,
			Sequence:   i + 1,
			Level:      a.level,
			ApproverID: a.id,
			Status:     approval.ApproverPending,
		})
	}
	return chain
}

type approvalLevel struct {
	level string
	id    uuid.UUID
}

func TestServiceProcessApproval(t *testing.T) {
	ctx := context.Background()

	t.Run("approve advances to the next level", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req,
				approvalLevel{string(approval.LevelSupervisor), deps.supervisor},
				approvalLevel{string(approval.LevelDepartmentHead), deps.deptHead},
			), nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING_APPROVAL", resp.Status)
		assert.Equal(t, 1, resp.CurrentLevel)
		assert.Equal(t, approval.ApproverApproved, deps.chains.saved[0].Status)
		assert.Empty(t, deps.balances.calls)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveRequestDecided, deps.outbox.events[0].EventType)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("approve into an HR level moves to HR review", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 12, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req,
				approvalLevel{string(approval.LevelSupervisor), deps.supervisor},
				approvalLevel{string(approval.LevelHRManager), deps.hrManager},
			), nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})

		assert.NoError(t, err)
		assert.Equal(t, "PENDING_HR_REVIEW", resp.Status)
		assert.Equal(t, 1, resp.CurrentLevel)
	})

	t.Run("final approval confirms consumption", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 3, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req, approvalLevel{string(approval.LevelSupervisor), deps.supervisor}), nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})

		assert.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Equal(t, []string{"confirm"}, deps.balances.ops())
		assert.Equal(t, req.ID.String(), deps.balances.calls[0].reference)
		assert.Equal(t, "3", deps.balances.calls[0].days.String())
	})

	t.Run("failed consumption settlement surfaces the error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 3, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req, approvalLevel{string(approval.LevelSupervisor), deps.supervisor}), nil
		}
		deps.balances.confirmErr = balanceerrors.ErrVersionConflict

		// The decision commits, but the unsettled ledger must not be
		// reported as success.
		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})

		assert.ErrorIs(t, err, balanceerrors.ErrVersionConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("rejection releases the reservation and skips the rest", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req,
				approvalLevel{string(approval.LevelSupervisor), deps.supervisor},
				approvalLevel{string(approval.LevelDepartmentHead), deps.deptHead},
			), nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action:  "REJECT",
			Comment: "team is at capacity",
		})

		assert.NoError(t, err)
		assert.Equal(t, "REJECTED", resp.Status)
		assert.Equal(t, []string{"release"}, deps.balances.ops())
		assert.Equal(t, approval.ApproverRejected, deps.chains.saved[0].Status)
		assert.Equal(t, approval.ApproverSkipped, deps.chains.saved[1].Status)
	})

	t.Run("negative actor outside the chain", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req, approvalLevel{string(approval.LevelSupervisor), deps.supervisor}), nil
		}

		_, err := deps.service.ProcessApproval(ctx, req.ID.String(), uuid.NewString(), request.DecisionRequest{
			Action: "APPROVE",
		})
		assert.ErrorIs(t, err, approvalerrors.ErrNotAuthorizedApprover)
	})

	t.Run("negative decision on a settled request", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusApproved, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})
		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
	})

	t.Run("version conflict is retried from a fresh read", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 3, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
			return pendingChain(req, approvalLevel{string(approval.LevelSupervisor), deps.supervisor}), nil
		}
		attempts := 0
		deps.repo.updateVersionedFn = func(ctx context.Context, req *request.LeaveRequest) error {
			attempts++
			if attempts == 1 {
				return requesterrors.ErrVersionConflict
			}
			req.Version++
			return nil
		}

		expectTx(t, deps.sqlMock, false)
		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.ProcessApproval(ctx, req.ID.String(), deps.supervisor.String(), request.DecisionRequest{
			Action: "APPROVE",
		})

		assert.NoError(t, err)
		assert.Equal(t, "APPROVED", resp.Status)
		assert.Equal(t, 2, attempts)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})
}

func TestServiceCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owner cancels a pending request", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Cancel(ctx, req.ID.String(), req.EmployeeID.String(), false, "plans changed")

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, []string{"release"}, deps.balances.ops())

		// Cancellation retracts the calendar rows.
		assert.Len(t, deps.projector.projections, 1)
		assert.Equal(t, "CANCELLED", deps.projector.projections[0].Status)
	})

	t.Run("HR cancels an approved future request with a correction", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusApproved, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Cancel(ctx, req.ID.String(), uuid.NewString(), true, "project deadline moved")

		assert.NoError(t, err)
		assert.Equal(t, "CANCELLED", resp.Status)
		assert.Equal(t, []string{"adjust:CORRECTION"}, deps.balances.ops())
		assert.Equal(t, "5", deps.balances.calls[0].days.String())
		assert.Equal(t, "CANCEL:"+req.ID.String(), deps.balances.calls[0].reference)
	})

	t.Run("failed reversal on cancel surfaces the error", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}
		deps.balances.releaseErr = balanceerrors.ErrVersionConflict

		expectTx(t, deps.sqlMock, true)
		_, err := deps.service.Cancel(ctx, req.ID.String(), req.EmployeeID.String(), false, "plans changed")

		assert.ErrorIs(t, err, balanceerrors.ErrVersionConflict)
		assert.NoError(t, deps.sqlMock.ExpectationsWereMet())
	})

	t.Run("negative approved leave already started", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusApproved, 5, 0)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Cancel(ctx, req.ID.String(), req.EmployeeID.String(), false, "too late")
		assert.ErrorIs(t, err, requesterrors.ErrCancelAfterStart)
		assert.Empty(t, deps.balances.calls)
	})

	t.Run("negative stranger cannot cancel", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Cancel(ctx, req.ID.String(), uuid.NewString(), false, "nope")
		assert.ErrorIs(t, err, requesterrors.ErrCancelNotAllowed)
	})

	t.Run("negative terminal request", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusRejected, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Cancel(ctx, req.ID.String(), req.EmployeeID.String(), false, "retry")
		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
	})
}

func TestServiceSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("success draft to pending approval", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusDraft, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Submit(ctx, req.ID.String(), req.EmployeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, "PENDING_APPROVAL", resp.Status)
		assert.Equal(t, []string{"reserve"}, deps.balances.ops())
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveRequestSubmitted, deps.outbox.events[0].EventType)
	})

	t.Run("negative submission by non-owner", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusDraft, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Submit(ctx, req.ID.String(), uuid.NewString())
		assert.ErrorIs(t, err, requesterrors.ErrNotRequestOwner)
	})

	t.Run("negative request under HR review is not submittable", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingHRReview, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		// Days are already reserved; letting the owner re-submit would
		// double-count them and regress the status without any approver.
		_, err := deps.service.Submit(ctx, req.ID.String(), req.EmployeeID.String())
		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
		assert.Empty(t, deps.balances.calls)
		assert.Empty(t, deps.outbox.events)
	})

	t.Run("negative draft with stale notice", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusDraft, 5, 3)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Submit(ctx, req.ID.String(), req.EmployeeID.String())
		assert.ErrorIs(t, err, requesterrors.ErrInsufficientNotice)
		assert.Empty(t, deps.balances.calls)
	})
}

func TestServiceWithdraw(t *testing.T) {
	ctx := context.Background()

	t.Run("success withdraw draft", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusDraft, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		expectTx(t, deps.sqlMock, true)
		resp, err := deps.service.Withdraw(ctx, req.ID.String(), req.EmployeeID.String())

		assert.NoError(t, err)
		assert.Equal(t, "WITHDRAWN", resp.Status)
		assert.Len(t, deps.outbox.events, 1)
		assert.Equal(t, events.LeaveRequestWithdrawn, deps.outbox.events[0].EventType)
	})

	t.Run("negative submitted request cannot be withdrawn", func(t *testing.T) {
		deps := setupServiceTest(t)
		defer deps.db.Close()

		req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
		deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
			fresh := *req
			return &fresh, nil
		}

		_, err := deps.service.Withdraw(ctx, req.ID.String(), req.EmployeeID.String())
		assert.ErrorIs(t, err, requesterrors.ErrInvalidStatusTransition)
	})
}

func TestServiceGet(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	req := storedRequest(deps, "ANNUAL", request.StatusPendingApproval, 5, 30)
	deps.repo.findByIDFn = func(ctx context.Context, id string) (*request.LeaveRequest, error) {
		fresh := *req
		return &fresh, nil
	}
	deps.chains.findByRequestFn = func(ctx context.Context, requestID string) ([]approval.Approver, error) {
		return pendingChain(req, approvalLevel{string(approval.LevelSupervisor), deps.supervisor}), nil
	}

	resp, err := deps.service.Get(context.Background(), req.ID.String())

	assert.NoError(t, err)
	assert.Equal(t, "Amina Diallo", resp.EmployeeName)
	assert.Len(t, resp.Approvers, 1)
}

func TestServiceGetNotFound(t *testing.T) {
	deps := setupServiceTest(t)
	defer deps.db.Close()

	_, err := deps.service.Get(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, requesterrors.ErrRequestNotFound)
}
