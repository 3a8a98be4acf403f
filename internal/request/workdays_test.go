package request

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildDayConfig(t *testing.T) {
	requestID := uuid.New()
	monday := date(2025, time.June, 2)

	t.Run("full working week", func(t *testing.T) {
		days, total := buildDayConfig(requestID, monday, monday.AddDate(0, 0, 4), false, false, nil)
		assert.Len(t, days, 5)
		assert.Equal(t, "5", total.String())
	})

	t.Run("weekends carry no value", func(t *testing.T) {
		days, total := buildDayConfig(requestID, monday, monday.AddDate(0, 0, 6), false, false, nil)
		assert.Len(t, days, 7)
		assert.Equal(t, "5", total.String())
		assert.True(t, days[5].Weekend)
		assert.True(t, days[5].Value.IsZero())
		assert.True(t, days[6].Weekend)
	})

	t.Run("weekend-only range has zero total", func(t *testing.T) {
		saturday := date(2025, time.June, 7)
		_, total := buildDayConfig(requestID, saturday, saturday.AddDate(0, 0, 1), false, false, nil)
		assert.True(t, total.IsZero())
	})

	t.Run("public holiday is skipped", func(t *testing.T) {
		holidays := map[string]string{"2025-06-03": "Founders Day"}
		days, total := buildDayConfig(requestID, monday, monday.AddDate(0, 0, 2), false, false, holidays)
		assert.Equal(t, "2", total.String())
		assert.True(t, days[1].Holiday)
		assert.True(t, days[1].Value.IsZero())
	})

	t.Run("half days halve first and last working day", func(t *testing.T) {
		days, total := buildDayConfig(requestID, monday, monday.AddDate(0, 0, 4), true, true, nil)
		assert.Equal(t, "4", total.String())
		assert.Equal(t, "0.5", days[0].Value.String())
		assert.True(t, days[0].HalfDay)
		assert.Equal(t, "0.5", days[4].Value.String())
		assert.True(t, days[4].HalfDay)
	})

	t.Run("half flags on a weekend start land on the first working day", func(t *testing.T) {
		saturday := date(2025, time.June, 7)
		days, total := buildDayConfig(requestID, saturday, saturday.AddDate(0, 0, 3), true, false, nil)
		assert.Equal(t, "1.5", total.String())
		// Monday, not Saturday, is halved.
		assert.Equal(t, "0.5", days[2].Value.String())
	})

	t.Run("single working day with both flags halves once", func(t *testing.T) {
		_, total := buildDayConfig(requestID, monday, monday, true, true, nil)
		assert.Equal(t, "0.5", total.String())
	})
}

func TestRangesOverlap(t *testing.T) {
	a := date(2025, time.June, 2)
	b := date(2025, time.June, 6)

	assert.True(t, rangesOverlap(a, b, date(2025, time.June, 6), date(2025, time.June, 10)))
	assert.True(t, rangesOverlap(a, b, date(2025, time.May, 28), date(2025, time.June, 2)))
	assert.True(t, rangesOverlap(a, b, date(2025, time.June, 3), date(2025, time.June, 4)))
	assert.False(t, rangesOverlap(a, b, date(2025, time.June, 7), date(2025, time.June, 10)))
	assert.False(t, rangesOverlap(a, b, date(2025, time.May, 20), date(2025, time.June, 1)))
}
