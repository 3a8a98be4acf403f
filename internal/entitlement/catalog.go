package entitlement

import (
	"github.com/shopspring/decimal"
)

type LeaveType string

const (
	TypeAnnual       LeaveType = "ANNUAL"
	TypeSick         LeaveType = "SICK"
	TypeCasual       LeaveType = "CASUAL"
	TypeMaternity    LeaveType = "MATERNITY"
	TypePaternity    LeaveType = "PATERNITY"
	TypeUnpaid       LeaveType = "UNPAID"
	TypeSabbatical   LeaveType = "SABBATICAL"
	TypeCompensatory LeaveType = "COMPENSATORY"
)

func (t LeaveType) Valid() bool {
	switch t {
	case TypeAnnual, TypeSick, TypeCasual, TypeMaternity,
		TypePaternity, TypeUnpaid, TypeSabbatical, TypeCompensatory:
		return true
	}
	return false
}

type AccrualMethod string

const (
	AccrualUpfront AccrualMethod = "UPFRONT"
	AccrualMonthly AccrualMethod = "MONTHLY"
)

// CarryOverPolicy caps how much unused balance rolls into the next leave
// year and when that rolled balance dies.
type CarryOverPolicy struct {
	MaxDays     decimal.Decimal
	ExpiryMonth int // month in the new year the carried balance expires
	ExpiryDay   int
}

type Rule struct {
	Type               LeaveType
	DaysPerYear        decimal.Decimal
	HalfPayDays        decimal.Decimal // sick leave: portion of DaysPerYear paid at half rate
	AccrualMethod      AccrualMethod
	AccrualRate        decimal.Decimal // days added per month when AccrualMonthly
	MinServiceMonths   int
	GenderRestriction  string // empty = no restriction
	RequiresPermanent  bool
	CarryOver          *CarryOverPolicy // nil = use-it-or-lose-it
	NoticeDays         int
	MaxConsecutiveDays int // 0 = unlimited
	Paid               bool
}

// Catalog is static configuration: one Rule per leave type. Pure lookup.
type Catalog struct {
	rules map[LeaveType]Rule
}

func NewCatalog() *Catalog {
	d := decimal.NewFromInt
	rules := []Rule{
		{
			Type:               TypeAnnual,
			DaysPerYear:        d(21),
			AccrualMethod:      AccrualMonthly,
			AccrualRate:        decimal.NewFromFloat(1.75),
			MinServiceMonths:   3,
			CarryOver:          &CarryOverPolicy{MaxDays: d(10), ExpiryMonth: 3, ExpiryDay: 31},
			NoticeDays:         14,
			MaxConsecutiveDays: 15,
			Paid:               true,
		},
		{
			Type:               TypeSick,
			DaysPerYear:        d(30),
			HalfPayDays:        d(15),
			AccrualMethod:      AccrualUpfront,
			MaxConsecutiveDays: 30,
			Paid:               true,
		},
		{
			Type:               TypeCasual,
			DaysPerYear:        d(7),
			AccrualMethod:      AccrualUpfront,
			NoticeDays:         2,
			MaxConsecutiveDays: 3,
			Paid:               true,
		},
		{
			Type:              TypeMaternity,
			DaysPerYear:       d(90),
			AccrualMethod:     AccrualUpfront,
			MinServiceMonths:  12,
			GenderRestriction: "FEMALE",
			NoticeDays:        30,
			Paid:              true,
		},
		{
			Type:              TypePaternity,
			DaysPerYear:       d(10),
			AccrualMethod:     AccrualUpfront,
			MinServiceMonths:  12,
			GenderRestriction: "MALE",
			NoticeDays:        14,
			Paid:              true,
		},
		{
			Type:          TypeUnpaid,
			DaysPerYear:   decimal.Zero,
			AccrualMethod: AccrualUpfront,
			NoticeDays:    7,
			Paid:          false,
		},
		{
			Type:              TypeSabbatical,
			DaysPerYear:       d(30),
			AccrualMethod:     AccrualUpfront,
			MinServiceMonths:  60,
			RequiresPermanent: true,
			NoticeDays:        90,
			Paid:              true,
		},
		{
			Type:          TypeCompensatory,
			DaysPerYear:   decimal.Zero, // earned via adjustments, not entitlement
			AccrualMethod: AccrualUpfront,
			NoticeDays:    2,
			Paid:          true,
		},
	}

	m := make(map[LeaveType]Rule, len(rules))
	for _, r := range rules {
		m[r.Type] = r
	}
	return &Catalog{rules: m}
}

func (c *Catalog) RuleFor(t LeaveType) (Rule, bool) {
	r, ok := c.rules[t]
	return r, ok
}

func (c *Catalog) Types() []LeaveType {
	out := make([]LeaveType, 0, len(c.rules))
	for t := range c.rules {
		out = append(out, t)
	}
	return out
}
