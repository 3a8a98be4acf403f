package calendar

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Statuses whose requests appear on the team calendar. Anything else causes
// the request's rows to be retracted.
var projectedStatuses = map[string]struct{}{
	"PENDING_APPROVAL":  {},
	"PENDING_HR_REVIEW": {},
	"APPROVED":          {},
}

type ProjectedDay struct {
	Date  time.Time
	Value decimal.Decimal
}

// Projection is the slice of a leave request the calendar cares about.
type Projection struct {
	RequestID    uuid.UUID
	EmployeeID   uuid.UUID
	DepartmentID *uuid.UUID
	SubsidiaryID uuid.UUID
	LeaveType    string
	Status       string
	Days         []ProjectedDay
}

type ConflictDay struct {
	Date           time.Time
	OnLeaveCount   int
	EmployeeIDs    []uuid.UUID
	ExceedsAllowed bool
}

//go:generate mockgen -source=calendar_projector.go -destination=mock/calendar_projector_mock.go -package=mock
type Projector interface {
	Sync(ctx context.Context, p Projection) error
	CheckTeamConflicts(ctx context.Context, departmentID string, start, end time.Time, requestingEmployeeID string, maxAllowed int) ([]ConflictDay, error)
	DepartmentMonth(ctx context.Context, departmentID string, year int, month time.Month) ([]TeamCalendarEntry, error)
}

type projector struct {
	repo   Repository
	logger *zap.Logger
}

func NewProjector(repo Repository, logger ...*zap.Logger) Projector {
	l := zap.L().Named("calendar.projector")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("calendar.projector")
	}
	return &projector{repo: repo, logger: l}
}

func (s *projector) Sync(ctx context.Context, p Projection) error {
	if _, visible := projectedStatuses[p.Status]; !visible {
		if err := s.repo.DeleteForRequest(ctx, p.RequestID.String()); err != nil {
			return err
		}
		s.logger.Debug("calendar rows retracted",
			zap.String("request_id", p.RequestID.String()),
			zap.String("status", p.Status),
		)
		return nil
	}

	entries := make([]TeamCalendarEntry, 0, len(p.Days))
	for _, day := range p.Days {
		if !day.Value.IsPositive() {
			continue
		}
		entries = append(entries, TeamCalendarEntry{
			ID:           uuid.New(),
			RequestID:    p.RequestID,
			EmployeeID:   p.EmployeeID,
			DepartmentID: p.DepartmentID,
			SubsidiaryID: p.SubsidiaryID,
			Date:         day.Date,
			DayValue:     day.Value,
			LeaveType:    p.LeaveType,
			Status:       p.Status,
		})
	}

	if err := s.repo.ReplaceForRequest(ctx, p.RequestID.String(), entries); err != nil {
		return err
	}
	s.logger.Debug("calendar rows projected",
		zap.String("request_id", p.RequestID.String()),
		zap.String("status", p.Status),
		zap.Int("days", len(entries)),
	)
	return nil
}

// CheckTeamConflicts flags dates where the number of colleagues already on
// leave (the requesting employee excluded) reaches maxAllowed.
func (s *projector) CheckTeamConflicts(ctx context.Context, departmentID string, start, end time.Time, requestingEmployeeID string, maxAllowed int) ([]ConflictDay, error) {
	entries, err := s.repo.FindByDepartmentRange(ctx, departmentID, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]map[uuid.UUID]struct{})
	dates := make(map[string]time.Time)
	for _, e := range entries {
		if e.EmployeeID.String() == requestingEmployeeID {
			continue
		}
		key := e.Date.Format("2006-01-02")
		if byDate[key] == nil {
			byDate[key] = make(map[uuid.UUID]struct{})
			dates[key] = e.Date
		}
		byDate[key][e.EmployeeID] = struct{}{}
	}

	out := make([]ConflictDay, 0, len(byDate))
	for key, employees := range byDate {
		ids := make([]uuid.UUID, 0, len(employees))
		for id := range employees {
			ids = append(ids, id)
		}
		out = append(out, ConflictDay{
			Date:           dates[key],
			OnLeaveCount:   len(employees),
			EmployeeIDs:    ids,
			ExceedsAllowed: maxAllowed > 0 && len(employees) >= maxAllowed,
		})
	}
	return out, nil
}

func (s *projector) DepartmentMonth(ctx context.Context, departmentID string, year int, month time.Month) ([]TeamCalendarEntry, error) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return s.repo.FindByDepartmentRange(ctx, departmentID, start, end)
}
