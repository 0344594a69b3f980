package engine

import (
	"time"

	"github.com/rxtech-lab/argo-options/internal/types"
)

// CheckDates returns the simulated calendar days in [start, end].
// Daily checks every weekday, weekly checks every Monday. Holidays are not skipped;
// days without market data are handled by the data source returning nothing.
func CheckDates(start time.Time, end time.Time, frequency TradeFrequency) []time.Time {
	first := types.Date(start)
	last := types.Date(end)

	var dates []time.Time

	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if isCheckDay(day, frequency) {
			dates = append(dates, day)
		}
	}

	return dates
}

func isCheckDay(day time.Time, frequency TradeFrequency) bool {
	switch frequency {
	case TradeFrequencyWeekly:
		return day.Weekday() == time.Monday
	default:
		return day.Weekday() != time.Saturday && day.Weekday() != time.Sunday
	}
}
