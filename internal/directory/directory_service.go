package directory

import (
	"context"
	"errors"

	directoryerrors "go-leave/internal/directory/errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service is the employee directory collaborator. Lookups for display fail
// soft (unknown name); lookups during request creation are a hard error.
//go:generate mockgen -source=directory_service.go -destination=mock/directory_service_mock.go -package=mock
type Service interface {
	Snapshot(ctx context.Context, employeeID string) (*Snapshot, error)
	DisplayName(ctx context.Context, employeeID string) string
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger ...*zap.Logger) Service {
	l := zap.L().Named("directory.service")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("directory.service")
	}
	return &service{repo: repo, logger: l}
}

func (s *service) Snapshot(ctx context.Context, employeeID string) (*Snapshot, error) {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, directoryerrors.ErrEmployeeNotFound
		}
		s.logger.Error("employee lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil, err
	}

	return &Snapshot{
		ID:               e.ID,
		SubsidiaryID:     e.SubsidiaryID,
		DepartmentID:     e.DepartmentID,
		FullName:         e.FullName,
		Gender:           e.Gender,
		JoinDate:         e.JoinDate,
		EmploymentType:   e.EmploymentType,
		SupervisorID:     e.SupervisorID,
		DepartmentHeadID: e.DepartmentHeadID,
		HRManagerID:      e.HRManagerID,
		GeneralManagerID: e.GeneralManagerID,
		CEOID:            e.CEOID,
	}, nil
}

func (s *service) DisplayName(ctx context.Context, employeeID string) string {
	e, err := s.repo.FindByID(ctx, employeeID)
	if err != nil {
		s.logger.Debug("display name lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return "Unknown"
	}
	return e.FullName
}
