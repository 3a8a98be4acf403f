package approval

import (
	"go-leave/internal/entitlement"

	"github.com/shopspring/decimal"
)

type Level string

const (
	LevelSupervisor     Level = "SUPERVISOR"
	LevelDepartmentHead Level = "DEPARTMENT_HEAD"
	LevelHRManager      Level = "HR_MANAGER"
	LevelGeneralManager Level = "GENERAL_MANAGER"
	LevelCEO            Level = "CEO"
)

// tier is one step of the duration staircase: requests up to DayThreshold
// days require Levels.
type tier struct {
	DayThreshold int
	Levels       []Level
}

// Matrix maps leave type to its approval staircase. Static configuration,
// ordered lookup only.
type Matrix struct {
	tiers map[entitlement.LeaveType][]tier
}

func DefaultMatrix() *Matrix {
	return &Matrix{tiers: map[entitlement.LeaveType][]tier{
		entitlement.TypeAnnual: {
			{DayThreshold: 3, Levels: []Level{LevelSupervisor}},
			{DayThreshold: 10, Levels: []Level{LevelSupervisor, LevelDepartmentHead}},
			{DayThreshold: 21, Levels: []Level{LevelSupervisor, LevelDepartmentHead, LevelHRManager}},
		},
		entitlement.TypeSick: {
			{DayThreshold: 3, Levels: []Level{LevelSupervisor}},
			{DayThreshold: 30, Levels: []Level{LevelSupervisor, LevelHRManager}},
		},
		entitlement.TypeCasual: {
			{DayThreshold: 3, Levels: []Level{LevelSupervisor}},
		},
		entitlement.TypeMaternity: {
			{DayThreshold: 90, Levels: []Level{LevelSupervisor, LevelDepartmentHead, LevelHRManager}},
		},
		entitlement.TypePaternity: {
			{DayThreshold: 10, Levels: []Level{LevelSupervisor, LevelHRManager}},
		},
		entitlement.TypeUnpaid: {
			{DayThreshold: 5, Levels: []Level{LevelSupervisor, LevelDepartmentHead}},
			{DayThreshold: 30, Levels: []Level{LevelSupervisor, LevelDepartmentHead, LevelHRManager}},
			{DayThreshold: 365, Levels: []Level{LevelSupervisor, LevelDepartmentHead, LevelHRManager, LevelGeneralManager}},
		},
		entitlement.TypeSabbatical: {
			{DayThreshold: 30, Levels: []Level{LevelSupervisor, LevelDepartmentHead, LevelGeneralManager, LevelCEO}},
		},
		entitlement.TypeCompensatory: {
			{DayThreshold: 5, Levels: []Level{LevelSupervisor}},
		},
	}}
}

// ChainFor returns the required levels for the first tier whose threshold
// holds the requested days, falling back to the highest tier. The staircase
// is assumed sorted ascending.
func (m *Matrix) ChainFor(leaveType entitlement.LeaveType, totalDays decimal.Decimal) []Level {
	tiers, ok := m.tiers[leaveType]
	if !ok || len(tiers) == 0 {
		return []Level{LevelSupervisor}
	}

	for _, t := range tiers {
		if totalDays.LessThanOrEqual(decimal.NewFromInt(int64(t.DayThreshold))) {
			return t.Levels
		}
	}
	return tiers[len(tiers)-1].Levels
}
