package schedule

import "time"

// QueryDates are the two start dates fetched for a target in one pass.
type QueryDates struct {
	ThisWeek time.Time
	NextWeek time.Time
}

// DatesFor returns the dates to query at now. From the 13:00 cutoff onwards
// the current week starts tomorrow unless nearest is set; next week is
// always seven days from today.
func DatesFor(now time.Time, nearest bool) QueryDates {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	thisWeek := today
	if now.Hour() >= cutoffHour && !nearest {
		thisWeek = today.AddDate(0, 0, 1)
	}
	return QueryDates{
		ThisWeek: thisWeek,
		NextWeek: today.AddDate(0, 0, 7),
	}
}
