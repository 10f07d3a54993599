package prayer

import (
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/prayer-times-aggregation/internal/common"
)

var turkishMonths = [...]string{
	"Ocak", "Şubat", "Mart", "Nisan", "Mayıs", "Haziran",
	"Temmuz", "Ağustos", "Eylül", "Ekim", "Kasım", "Aralık",
}

// SelectDay picks the record for now's date out of a multi-day result.
// Providers label dates differently, so an exact ISO match is tried first,
// then the dotted and long Turkish forms, then loose day/month/year containment.
func SelectDay(days ProviderResult, now time.Time) (PrayerTime, bool) {
	iso := now.Format("2006-01-02")
	for _, d := range days {
		if strings.Contains(d.GregorianDate, iso) {
			return d, true
		}
	}

	day := now.Format("02")
	month := now.Format("01")
	year := now.Format("2006")

	for _, d := range days {
		s := d.GregorianDate
		if s == "" {
			continue
		}
		if common.HasAny(s, day+"."+month+"."+year, month+"."+day+"."+year) ||
			hasLongForm(s, now) ||
			common.HasAll(s, day, month, year) {
			return d, true
		}
	}
	return PrayerTime{}, false
}

// hasLongForm reports whether s contains "<day> <Ay> <year>" as whole words,
// e.g. "5 Ekim 2026" or "05 Ekim 2026", so the 5th never matches the 15th.
func hasLongForm(s string, now time.Time) bool {
	month := turkishMonths[now.Month()-1]
	year := strconv.Itoa(now.Year())

	words := strings.Fields(s)
	for i := 0; i+2 < len(words); i++ {
		n, err := strconv.Atoi(words[i])
		if err != nil || n != now.Day() {
			continue
		}
		if strings.EqualFold(words[i+1], month) && strings.TrimRight(words[i+2], ",") == year {
			return true
		}
	}
	return false
}

// SelectDayOrFirst is SelectDay falling back to the first record.
func SelectDayOrFirst(days ProviderResult, now time.Time) (PrayerTime, bool) {
	if d, ok := SelectDay(days, now); ok {
		return d, true
	}
	if len(days) == 0 {
		return PrayerTime{}, false
	}
	return days[0], true
}
