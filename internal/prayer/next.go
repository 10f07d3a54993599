package prayer

import (
	"fmt"
	"time"
)

// NextPrayerInfo describes the upcoming prayer relative to a moment.
type NextPrayerInfo struct {
	Name           Name          `json:"name"`
	Label          string        `json:"label"`
	Time           string        `json:"time"`
	At             time.Time     `json:"at"`
	Remaining      time.Duration `json:"-"`
	RemainingLabel string        `json:"remaining"`
	// ProgressPercent is how far now is through [previous prayer, next prayer].
	ProgressPercent float64 `json:"progress"`
}

// NextPrayer finds the first prayer strictly after now. When every prayer
// of the day has passed it wraps to imsak of the following day.
//
// Times are interpreted on now's calendar date in now's location.
func NextPrayer(times PrayerTime, now time.Time) (NextPrayerInfo, error) {
	moments := make([]time.Time, len(Names))
	for i, n := range Names {
		h, m, err := ParseClock(NormalizeClock(times.Time(n)))
		if err != nil {
			return NextPrayerInfo{}, fmt.Errorf("%s: %w", n, err)
		}
		moments[i] = time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location())
	}

	next := -1
	for i, at := range moments {
		if at.After(now) && (next < 0 || at.Before(moments[next])) {
			next = i
		}
	}

	var nextAt time.Time
	if next < 0 {
		next = 0
		nextAt = moments[0].AddDate(0, 0, 1)
	} else {
		nextAt = moments[next]
	}

	prev := next - 1
	if prev < 0 {
		prev = len(moments) - 1
	}
	prevAt := moments[prev]
	if prevAt.After(nextAt) {
		prevAt = prevAt.AddDate(0, 0, -1)
	}

	remaining := nextAt.Sub(now)

	return NextPrayerInfo{
		Name:            Names[next],
		Label:           Names[next].Label(),
		Time:            nextAt.Format("15:04"),
		At:              nextAt,
		Remaining:       remaining,
		RemainingLabel:  RemainingLabel(remaining),
		ProgressPercent: progress(prevAt, nextAt, now),
	}, nil
}

// RemainingLabel renders a duration as "<hours>s <minutes>dk", floored.
func RemainingLabel(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	minutes := int((d % time.Hour) / time.Minute)
	return fmt.Sprintf("%ds %ddk", hours, minutes)
}

func progress(from, to, now time.Time) float64 {
	total := to.Sub(from)
	if total <= 0 {
		return 0
	}
	pct := float64(now.Sub(from)) / float64(total) * 100
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}
