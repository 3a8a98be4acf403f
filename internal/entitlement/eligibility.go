package entitlement

import (
	"time"

	"go-leave/internal/directory"
	entitlementerrors "go-leave/internal/entitlement/errors"
)

// Validator decides whether an employee may apply for a leave type at all.
// Pure checks over the employee snapshot; no side effects.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Validate(rule Rule, emp *directory.Snapshot, now time.Time) error {
	if rule.MinServiceMonths > 0 && ServiceMonths(emp.JoinDate, now) < rule.MinServiceMonths {
		return entitlementerrors.ErrInsufficientService
	}
	if rule.GenderRestriction != "" && rule.GenderRestriction != emp.Gender {
		return entitlementerrors.ErrGenderRestricted
	}
	if rule.RequiresPermanent && emp.EmploymentType != directory.EmploymentPermanent {
		return entitlementerrors.ErrEmploymentTypeRestricted
	}
	return nil
}

// ServiceMonths is the whole-month difference between join date and now.
// A month only counts once the day-of-month has been reached.
func ServiceMonths(joinDate, now time.Time) int {
	if now.Before(joinDate) {
		return 0
	}
	months := (now.Year()-joinDate.Year())*12 + int(now.Month()) - int(joinDate.Month())
	if now.Day() < joinDate.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
