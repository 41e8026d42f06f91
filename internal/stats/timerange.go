package stats

import (
	"time"

	"github.com/mlcounter/draft-companion/internal/storage/models"
)

// TimeRange represents a half-open [Start, End) time period.
type TimeRange struct {
	Start time.Time
	End   time.Time
}

// WeekRange calculates a Monday-to-Sunday week with an offset.
// offset = 0 means the current week, -1 the previous week.
func WeekRange(offset int) TimeRange {
	return WeekRangeFrom(time.Now(), offset)
}

// WeekRangeFrom calculates a week range relative to a reference time.
func WeekRangeFrom(referenceTime time.Time, offset int) TimeRange {
	weekday := int(referenceTime.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday is 7 (ISO 8601)
	}
	currentWeekStart := referenceTime.AddDate(0, 0, -weekday+1).Truncate(24 * time.Hour)
	weekStart := currentWeekStart.AddDate(0, 0, offset*7)
	return TimeRange{Start: weekStart, End: weekStart.AddDate(0, 0, 7)}
}

// MonthRange calculates a calendar month with an offset from the current
// month.
func MonthRange(offset int) TimeRange {
	return MonthRangeFrom(time.Now(), offset)
}

// MonthRangeFrom calculates a month range relative to a reference time.
func MonthRangeFrom(referenceTime time.Time, offset int) TimeRange {
	monthStart := time.Date(referenceTime.Year(), referenceTime.Month(), 1, 0, 0, 0, 0, referenceTime.Location())
	monthStart = monthStart.AddDate(0, offset, 0)
	return TimeRange{Start: monthStart, End: monthStart.AddDate(0, 1, 0)}
}

// Contains reports whether t falls inside the range.
func (r TimeRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// FilterRecords keeps only records whose game date falls inside the range.
// Records with unparseable dates are dropped.
func FilterRecords(records []*models.GameRecord, r TimeRange) []*models.GameRecord {
	out := make([]*models.GameRecord, 0, len(records))
	for _, rec := range records {
		t, err := time.ParseInLocation("2006-01-02", rec.Date, r.Start.Location())
		if err != nil {
			continue
		}
		if r.Contains(t) {
			out = append(out, rec)
		}
	}
	return out
}
