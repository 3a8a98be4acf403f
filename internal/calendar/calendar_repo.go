package calendar

import (
	"context"
	"time"

	"gorm.io/gorm"
)

//go:generate mockgen -source=calendar_repo.go -destination=mock/calendar_repo_mock.go -package=mock
type Repository interface {
	ReplaceForRequest(ctx context.Context, requestID string, entries []TeamCalendarEntry) error
	DeleteForRequest(ctx context.Context, requestID string) error
	FindByDepartmentRange(ctx context.Context, departmentID string, start, end time.Time) ([]TeamCalendarEntry, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// ReplaceForRequest swaps the request's projection atomically: stale rows
// must never survive next to fresh ones.
func (r *repository) ReplaceForRequest(ctx context.Context, requestID string, entries []TeamCalendarEntry) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("request_id = ?", requestID).Delete(&TeamCalendarEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
}

func (r *repository) DeleteForRequest(ctx context.Context, requestID string) error {
	return r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Delete(&TeamCalendarEntry{}).Error
}

func (r *repository) FindByDepartmentRange(ctx context.Context, departmentID string, start, end time.Time) ([]TeamCalendarEntry, error) {
	var entries []TeamCalendarEntry
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Where("date >= ?", start).
		Where("date <= ?", end).
		Order("date asc").
		Find(&entries).Error
	return entries, err
}
