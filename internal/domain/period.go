package domain

import "time"

// Periods are YYYY-MM strings. The format sorts lexicographically in
// chronological order, which the repos rely on for range queries.
const PeriodLayout = "2006-01"

func ValidPeriod(p string) bool {
	_, err := time.Parse(PeriodLayout, p)
	return err == nil
}

// CurrentPeriod returns the period containing now, in UTC.
func CurrentPeriod() string {
	return time.Now().UTC().Format(PeriodLayout)
}
