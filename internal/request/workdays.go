package request

import (
	"time"

	"go-leave/internal/holiday"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	fullDay = decimal.NewFromInt(1)
	halfDay = decimal.NewFromFloat(0.5)
)

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// buildDayConfig expands the date range into per-day rows. A day carries
// value only when it is a working weekday and not a public holiday; the
// half-day flags halve the first and last working day respectively.
func buildDayConfig(
	requestID uuid.UUID,
	start, end time.Time,
	halfDayStart, halfDayEnd bool,
	holidays map[string]string,
) ([]RequestDay, decimal.Decimal) {
	days := make([]RequestDay, 0, int(end.Sub(start).Hours()/24)+1)
	total := decimal.Zero

	var firstWorking, lastWorking = -1, -1
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		weekend := isWeekend(d)
		_, isHoliday := holidays[holiday.DateKey(d)]

		value := decimal.Zero
		if !weekend && !isHoliday {
			value = fullDay
			if firstWorking == -1 {
				firstWorking = len(days)
			}
			lastWorking = len(days)
		}
		days = append(days, RequestDay{
			ID:        uuid.New(),
			RequestID: requestID,
			Date:      d,
			Value:     value,
			Weekend:   weekend,
			Holiday:   isHoliday,
		})
	}

	if halfDayStart && firstWorking >= 0 {
		days[firstWorking].Value = halfDay
		days[firstWorking].HalfDay = true
	}
	if halfDayEnd && lastWorking >= 0 && lastWorking != firstWorking {
		days[lastWorking].Value = halfDay
		days[lastWorking].HalfDay = true
	}

	for i := range days {
		total = total.Add(days[i].Value)
	}
	return days, total
}

// rangesOverlap treats both ranges as date-inclusive.
func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}
